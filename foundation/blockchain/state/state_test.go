package state_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	to       = database.AccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
)

func newState(t *testing.T, difficulty uint, transPerBlock uint16) *state.State {
	t.Helper()

	g := genesis.Genesis{
		Date:          time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ChainID:       1,
		Difficulty:    difficulty,
		TransPerBlock: transPerBlock,
	}

	st, err := state.New(state.Config{Genesis: g, Workers: 2, EvHandler: func(v string, args ...any) { t.Logf(v, args...) }})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %s", err)
	}

	return st
}

func signedTx(t *testing.T, amount uint64) database.Tx {
	t.Helper()

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to load the private key: %s", err)
	}

	tx, err := database.NewTx(database.PublicKeyToAccountID(pk.PublicKey), to, amount)
	if err != nil {
		t.Fatalf("Should be able to construct a transaction: %s", err)
	}

	if err := tx.Sign(pk); err != nil {
		t.Fatalf("Should be able to sign the transaction: %s", err)
	}

	return tx
}

// =============================================================================

func TestMineNewBlock(t *testing.T) {
	st := newState(t, 2, 2)

	t.Log("Given the need to mine submitted transactions.")
	{
		for _, amount := range []uint64{5, 10, 15} {
			if err := st.SubmitWalletTransaction(signedTx(t, amount)); err != nil {
				t.Fatalf("\t%s\tShould be able to submit a transaction: %v", failed, err)
			}
		}
		t.Logf("\t%s\tShould be able to submit transactions.", success)

		bad := signedTx(t, 20)
		bad.Amount = 21
		if err := st.SubmitWalletTransaction(bad); !errors.Is(err, database.ErrUnverifiedTransaction) {
			t.Fatalf("\t%s\tShould reject an unverified transaction: %v", failed, err)
		}
		if st.QueryMempoolLength() != 3 {
			t.Fatalf("\t%s\tShould keep the unverified transaction out of the mempool: %d", failed, st.QueryMempoolLength())
		}
		t.Logf("\t%s\tShould keep the unverified transaction out of the mempool.", success)

		block, err := st.MineNewBlock(context.Background())
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}
		if !strings.HasPrefix(block.Hash, "00") || len(block.Payload.Trans) != 2 {
			t.Fatalf("\t%s\tShould mine the first two transactions: %s", failed, block.Hash)
		}
		if block.Payload.Trans[0].Amount != 5 || block.Payload.Trans[1].Amount != 10 {
			t.Fatalf("\t%s\tShould mine in arrival order.", failed)
		}
		t.Logf("\t%s\tShould mine the first two transactions in arrival order.", success)

		if st.QueryMempoolLength() != 1 {
			t.Fatalf("\t%s\tShould remove mined transactions from the mempool: %d", failed, st.QueryMempoolLength())
		}
		t.Logf("\t%s\tShould remove mined transactions from the mempool.", success)

		if _, err := st.MineNewBlock(context.Background()); err != nil {
			t.Fatalf("\t%s\tShould be able to mine the rest: %v", failed, err)
		}
		if _, err := st.MineNewBlock(context.Background()); !errors.Is(err, state.ErrNoTransactions) {
			t.Fatalf("\t%s\tShould have nothing left to mine: %v", failed, err)
		}
		t.Logf("\t%s\tShould have nothing left to mine.", success)

		if err := st.ValidateChain(); err != nil {
			t.Fatalf("\t%s\tShould validate the chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould validate the chain.", success)

		if n := len(st.QueryBlocksByAccount(to)); n != 2 {
			t.Fatalf("\t%s\tShould find 2 blocks for the receiver: %d", failed, n)
		}
		t.Logf("\t%s\tShould find 2 blocks for the receiver.", success)
	}
}

func TestQueryProof(t *testing.T) {
	st := newState(t, 1, 10)

	var txs []database.Tx
	for _, amount := range []uint64{1, 2, 3} {
		tx := signedTx(t, amount)
		txs = append(txs, tx)
		if err := st.SubmitWalletTransaction(tx); err != nil {
			t.Fatalf("Should be able to submit a transaction: %s", err)
		}
	}

	block, err := st.MineNewBlock(context.Background())
	if err != nil {
		t.Fatalf("Should be able to mine a block: %s", err)
	}

	for i, tx := range txs {
		proof, err := st.QueryProof(block.Header.Number, tx.Hash().Hex())
		if err != nil {
			t.Fatalf("\t%s\tTest %d:\tShould be able to build a proof: %v", failed, i, err)
		}
		if !proof.Verified || proof.BlockHash != block.Hash || len(proof.Path) != len(proof.Order) {
			t.Fatalf("\t%s\tTest %d:\tShould get a verified proof: %+v", failed, i, proof)
		}
	}
	t.Logf("\t%s\tShould get a verified proof for every transaction.", success)

	if _, err := st.QueryProof(block.Header.Number, strings.Repeat("ab", 32)); !errors.Is(err, state.ErrTxNotFound) {
		t.Fatalf("\t%s\tShould not find an unknown transaction: %v", failed, err)
	}
	t.Logf("\t%s\tShould not find an unknown transaction.", success)

	if _, err := st.QueryProof(0, txs[0].Hash().Hex()); !errors.Is(err, state.ErrTxNotFound) {
		t.Fatalf("\t%s\tShould not find a transaction in the genesis block: %v", failed, err)
	}
	t.Logf("\t%s\tShould not find a transaction in the genesis block.", success)
}

func TestAppendData(t *testing.T) {
	st := newState(t, 2, 10)

	block, err := st.AppendData(context.Background(), "Alice pays Bob 5")
	if err != nil {
		t.Fatalf("\t%s\tShould be able to append data: %v", failed, err)
	}
	t.Logf("\t%s\tShould be able to append data.", success)

	latest, err := st.RetrieveLatestBlock()
	if err != nil || latest.Hash != block.Hash || latest.Payload.Data != "Alice pays Bob 5" {
		t.Fatalf("\t%s\tShould get the block back as the latest: %v", failed, err)
	}
	t.Logf("\t%s\tShould get the block back as the latest.", success)
}

func TestMiningTimeout(t *testing.T) {
	g := genesis.Genesis{Difficulty: pow.MaxDifficulty, TransPerBlock: 1}

	st, err := state.New(state.Config{Genesis: g, MiningTimeout: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %s", err)
	}

	_, err = st.AppendData(context.Background(), "never mined")
	if !errors.Is(err, pow.ErrCancelled) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("\t%s\tShould stop mining at the timeout: %v", failed, err)
	}
	t.Logf("\t%s\tShould stop mining at the timeout.", success)

	if blocks := st.RetrieveBlocks(); len(blocks) != 1 {
		t.Fatalf("\t%s\tShould leave the chain unchanged: %d", failed, len(blocks))
	}
	t.Logf("\t%s\tShould leave the chain unchanged.", success)
}

func TestRestore(t *testing.T) {
	st := newState(t, 1, 10)

	if _, err := st.AppendData(context.Background(), "Alice pays Bob 5"); err != nil {
		t.Fatalf("Should be able to append data: %s", err)
	}

	g := st.RetrieveGenesis()

	st2, err := state.New(state.Config{Genesis: g, Blocks: st.RetrieveExport()})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to restore the state: %v", failed, err)
	}
	if len(st2.RetrieveBlocks()) != 2 {
		t.Fatalf("\t%s\tShould restore every block.", failed)
	}
	t.Logf("\t%s\tShould restore every block.", success)

	blocks := st.RetrieveExport()
	blocks[1].Payload.Data = "Alice pays Bob 500"
	if _, err := state.New(state.Config{Genesis: g, Blocks: blocks}); err == nil {
		t.Fatalf("\t%s\tShould refuse a tampered chain.", failed)
	}
	t.Logf("\t%s\tShould refuse a tampered chain.", success)
}

func TestQueryBlock(t *testing.T) {
	st := newState(t, 1, 10)

	if _, err := st.AppendData(context.Background(), "Alice pays Bob 5"); err != nil {
		t.Fatalf("Should be able to append a block: %s", err)
	}

	t.Log("Given the need to look up blocks by number.")
	{
		block, err := st.QueryBlock(1)
		if err != nil || block.Header.Number != 1 {
			t.Fatalf("\t%s\tShould find block 1: %v", failed, err)
		}
		t.Logf("\t%s\tShould find block 1.", success)

		for _, number := range []uint64{2, math.MaxInt64, math.MaxUint64} {
			if _, err := st.QueryBlock(number); !errors.Is(err, chain.ErrBlockNotFound) {
				t.Fatalf("\t%s\tShould not find block %d: %v", failed, number, err)
			}
		}
		t.Logf("\t%s\tShould not find a block past the tip.", success)
	}
}
