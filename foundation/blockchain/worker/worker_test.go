package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/worker"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func signedTx(t *testing.T, amount uint64) database.Tx {
	t.Helper()

	pk, err := crypto.HexToECDSA("fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959")
	if err != nil {
		t.Fatalf("Should be able to load the private key: %s", err)
	}

	tx, err := database.NewTx(database.PublicKeyToAccountID(pk.PublicKey), "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32", amount)
	if err != nil {
		t.Fatalf("Should be able to construct a transaction: %s", err)
	}

	if err := tx.Sign(pk); err != nil {
		t.Fatalf("Should be able to sign the transaction: %s", err)
	}

	return tx
}

func TestMining(t *testing.T) {
	g := genesis.Genesis{Difficulty: 2, TransPerBlock: 2}

	st, err := state.New(state.Config{Genesis: g, Workers: 2})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %s", err)
	}

	// Submitted before the worker runs, so it must be picked up on start.
	if err := st.SubmitWalletTransaction(signedTx(t, 1)); err != nil {
		t.Fatalf("Should be able to submit a transaction: %s", err)
	}

	worker.Run(st, func(v string, args ...any) {})
	defer st.Shutdown()

	t.Log("Given the need to mine transactions in the background.")
	{
		for _, amount := range []uint64{2, 3, 4, 5} {
			if err := st.SubmitWalletTransaction(signedTx(t, amount)); err != nil {
				t.Fatalf("\t%s\tShould be able to submit a transaction: %v", failed, err)
			}
		}
		t.Logf("\t%s\tShould be able to submit transactions.", success)

		if _, err := st.AppendData(context.Background(), "Alice pays Bob 5"); err != nil {
			t.Fatalf("\t%s\tShould be able to append data while mining: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to append data while mining.", success)

		deadline := time.Now().Add(10 * time.Second)
		for st.QueryMempoolLength() > 0 {
			if time.Now().After(deadline) {
				t.Fatalf("\t%s\tShould mine every transaction: left[%d]", failed, st.QueryMempoolLength())
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Logf("\t%s\tShould mine every transaction.", success)

		var trans int
		for _, b := range st.RetrieveBlocks() {
			trans += len(b.Payload.Trans)
		}
		if trans != 5 {
			t.Fatalf("\t%s\tShould find every transaction in the chain: %d", failed, trans)
		}
		t.Logf("\t%s\tShould find every transaction in the chain.", success)

		if err := st.ValidateChain(); err != nil {
			t.Fatalf("\t%s\tShould validate the chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould validate the chain.", success)
	}
}
