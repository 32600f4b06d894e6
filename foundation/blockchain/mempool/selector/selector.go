// Package selector provides different transaction selecting algorithms.
package selector

import (
	"fmt"
	"sort"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// List of different select strategies.
const (
	StrategyArrival = "arrival"
	StrategyAmount  = "amount"
)

// Map of different select strategies with functions.
var strategies = map[string]Func{
	StrategyArrival: arrivalSelect,
	StrategyAmount:  amountSelect,
}

// Pending is a transaction waiting in the mempool along with the order in
// which it arrived.
type Pending struct {
	Seq uint64
	Tx  database.Tx
}

// Func defines a function that takes a mempool of transactions grouped by
// sender and selects howMany of them in an order based on the functions
// strategy. All selector functions MUST respect the arrival order of the
// transactions from a single sender. Receiving -1 for howMany must return
// all the transactions in the strategies ordering.
type Func func(transactions map[database.AccountID][]Pending, howMany int) []database.Tx

// Retrieve returns the specified select strategy function.
func Retrieve(strategy string) (Func, error) {
	fn, exists := strategies[strategy]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}
	return fn, nil
}

// =============================================================================

// arrivalSelect returns the transactions in the order they arrived.
var arrivalSelect = func(m map[database.AccountID][]Pending, howMany int) []database.Tx {
	var all []Pending
	for _, group := range m {
		all = append(all, group...)
	}

	sort.Sort(bySeq(all))

	if howMany < 0 || howMany > len(all) {
		howMany = len(all)
	}

	final := make([]database.Tx, howMany)
	for i := range howMany {
		final[i] = all[i].Tx
	}

	return final
}

// amountSelect returns the transactions with the largest amounts while
// respecting the arrival order for each sender.
var amountSelect = func(m map[database.AccountID][]Pending, howMany int) []database.Tx {
	if howMany < 0 {
		howMany = 0
		for _, group := range m {
			howMany += len(group)
		}
	}

	// Sort the transactions per sender by arrival.
	for key := range m {
		if len(m[key]) > 1 {
			sort.Sort(bySeq(m[key]))
		}
	}

	// Pick the first transaction in the slice for each sender. Each iteration
	// represents a new row of selections. Keep doing that until all the
	// transactions have been selected.
	var rows [][]Pending
	for {
		var row []Pending
		for key := range m {
			if len(m[key]) > 0 {
				row = append(row, m[key][0])
				m[key] = m[key][1:]
			}
		}
		if row == nil {
			break
		}
		rows = append(rows, row)
	}

	// Sort each row by amount and keep pulling transactions from each row
	// until the amount requested is fulfilled or there are no more
	// transactions.
	final := []database.Tx{}
done:
	for _, row := range rows {
		sort.Sort(bySeq(row))
		sort.Stable(byAmount(row))

		for _, p := range row {
			if len(final) == howMany {
				break done
			}
			final = append(final, p.Tx)
		}
	}

	return final
}

// =============================================================================

// bySeq provides sorting support by the arrival order.
type bySeq []Pending

func (bs bySeq) Len() int           { return len(bs) }
func (bs bySeq) Less(i, j int) bool { return bs[i].Seq < bs[j].Seq }
func (bs bySeq) Swap(i, j int)      { bs[i], bs[j] = bs[j], bs[i] }

// byAmount provides sorting support by the transaction amount in
// descending order.
type byAmount []Pending

func (ba byAmount) Len() int           { return len(ba) }
func (ba byAmount) Less(i, j int) bool { return ba[i].Tx.Amount > ba[j].Tx.Amount }
func (ba byAmount) Swap(i, j int)      { ba[i], ba[j] = ba[j], ba[i] }
