// Package mempool maintains the verified transactions waiting to be mined.
package mempool

import (
	"sort"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool/selector"
)

// Mempool represents a cache of transactions keyed by the transaction hash.
// The arrival order is kept so transactions can be mined fairly.
type Mempool struct {
	pool     map[string]selector.Pending
	seq      uint64
	mu       sync.RWMutex
	selectFn selector.Func
}

// New constructs a new mempool using the default select strategy.
func New() (*Mempool, error) {
	return NewWithStrategy(selector.StrategyArrival)
}

// NewWithStrategy constructs a new mempool with specified select strategy.
func NewWithStrategy(strategy string) (*Mempool, error) {
	selectFn, err := selector.Retrieve(strategy)
	if err != nil {
		return nil, err
	}

	mp := Mempool{
		pool:     make(map[string]selector.Pending),
		selectFn: selectFn,
	}

	return &mp, nil
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds or replaces a transaction in the mempool. A replaced
// transaction keeps its original place in line.
func (mp *Mempool) Upsert(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	key := mapKey(tx)

	p, exists := mp.pool[key]
	if !exists {
		p.Seq = mp.seq
		mp.seq++
	}
	p.Tx = tx

	mp.pool[key] = p

	return len(mp.pool)
}

// Delete removes a transaction from the mempool.
func (mp *Mempool) Delete(tx database.Tx) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	delete(mp.pool, mapKey(tx))
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]selector.Pending)
}

// Copy returns all the transactions in the order they arrived.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	all := make([]selector.Pending, 0, len(mp.pool))
	for _, p := range mp.pool {
		all = append(all, p)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Seq < all[j].Seq })

	cpy := make([]database.Tx, len(all))
	for i, p := range all {
		cpy[i] = p.Tx
	}

	return cpy
}

// PickBest uses the configured select strategy to return the next set
// of transactions for the next block. Pass -1 for all the transactions.
func (mp *Mempool) PickBest(howMany int) []database.Tx {

	// Group the transactions by sender.
	m := make(map[database.AccountID][]selector.Pending)
	mp.mu.RLock()
	{
		for _, p := range mp.pool {
			from := p.Tx.Sender.Checksum()
			m[from] = append(m[from], p)
		}
	}
	mp.mu.RUnlock()

	return mp.selectFn(m, howMany)
}

// =============================================================================

// mapKey is used to generate the map key.
func mapKey(tx database.Tx) string {
	return tx.Hash().Hex()
}
