package selector_test

import (
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool/selector"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	signPavel = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	signBill  = "9f332e3700d8fc2446eaf6d15034cf96e0c2745e40353deef032a5dbf1dfed93"
	signEd    = "aed31b6b5a341af8f27e66fb0b7633cf20fc27049e3eb7f6f623a4655b719ebb"
)

type testTx struct {
	seq    uint64
	hexKey string
	amount uint64
}

func pending(t *testing.T, tt testTx) selector.Pending {
	t.Helper()

	const to = "0xbEE6ACE826eC3DE1B6349888B9151B92522F7F76"

	pk, err := crypto.HexToECDSA(tt.hexKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the private key: %s", failed, err)
	}

	tx, err := database.NewTx(database.PublicKeyToAccountID(pk.PublicKey), to, tt.amount)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a transaction: %s", failed, err)
	}

	if err := tx.Sign(pk); err != nil {
		t.Fatalf("\t%s\tShould be able to sign the transaction: %s", failed, err)
	}

	return selector.Pending{Seq: tt.seq, Tx: tx}
}

func TestSelect(t *testing.T) {
	txs := []testTx{
		{seq: 0, hexKey: signPavel, amount: 25},
		{seq: 3, hexKey: signPavel, amount: 75},
		{seq: 6, hexKey: signPavel, amount: 50},

		{seq: 1, hexKey: signBill, amount: 10},
		{seq: 4, hexKey: signBill, amount: 5},
		{seq: 7, hexKey: signBill, amount: 80},

		{seq: 2, hexKey: signEd, amount: 5},
		{seq: 5, hexKey: signEd, amount: 60},
		{seq: 8, hexKey: signEd, amount: 15},
	}

	type table struct {
		name     string
		strategy string
		howMany  int
		amounts  []uint64
	}

	tt := []table{
		{name: "arrival-first-four", strategy: selector.StrategyArrival, howMany: 4, amounts: []uint64{25, 10, 5, 75}},
		{name: "arrival-all", strategy: selector.StrategyArrival, howMany: -1, amounts: []uint64{25, 10, 5, 75, 5, 60, 50, 80, 15}},
		{name: "arrival-too-many", strategy: selector.StrategyArrival, howMany: 20, amounts: []uint64{25, 10, 5, 75, 5, 60, 50, 80, 15}},
		{name: "amount-first-two", strategy: selector.StrategyAmount, howMany: 2, amounts: []uint64{25, 10}},
		{name: "amount-one-from-second-row", strategy: selector.StrategyAmount, howMany: 4, amounts: []uint64{25, 10, 5, 75}},
		{name: "amount-two-rows", strategy: selector.StrategyAmount, howMany: 6, amounts: []uint64{25, 10, 5, 75, 60, 5}},
		{name: "amount-all", strategy: selector.StrategyAmount, howMany: -1, amounts: []uint64{25, 10, 5, 75, 60, 5, 80, 50, 15}},
	}

	t.Log("Given the need to pick transactions from the mempool.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen using the %s strategy.", testID, tst.strategy)
				{
					m := make(map[database.AccountID][]selector.Pending)
					for _, tx := range txs {
						p := pending(t, tx)
						m[p.Tx.Sender] = append(m[p.Tx.Sender], p)
					}

					fn, err := selector.Retrieve(tst.strategy)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to get the strategy function: %s", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to get the strategy function.", success, testID)

					got := fn(m, tst.howMany)
					if len(got) != len(tst.amounts) {
						t.Fatalf("\t%s\tTest %d:\tShould get %d transactions, got %d.", failed, testID, len(tst.amounts), len(got))
					}
					t.Logf("\t%s\tTest %d:\tShould get %d transactions.", success, testID, len(tst.amounts))

					for i, tx := range got {
						if tx.Amount != tst.amounts[i] {
							t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, tx.Amount)
							t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, tst.amounts[i])
							t.Fatalf("\t%s\tTest %d:\tShould get the transactions in the right order.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get the transactions in the right order.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func TestRetrieveUnknown(t *testing.T) {
	if _, err := selector.Retrieve("tip"); err == nil {
		t.Fatalf("\t%s\tShould not find an unknown strategy.", failed)
	}
	t.Logf("\t%s\tShould not find an unknown strategy.", success)
}
