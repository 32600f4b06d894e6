// Package state is the core API for the ledger and implements all the
// business rules and processing.
package state

import (
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining() (done func())
}

// =============================================================================

// Config represents the configuration required to start the ledger.
type Config struct {
	Genesis       genesis.Genesis
	Workers       int                  // Number of G's searching for a nonce.
	MiningTimeout time.Duration        // Zero means mining is only stopped by cancellation.
	Blocks        []database.BlockData // Optional blocks to restore the chain from.
	EvHandler     EventHandler
}

// State manages the ledger.
type State struct {
	evHandler     EventHandler
	miningTimeout time.Duration

	genesis genesis.Genesis
	mempool *mempool.Mempool
	chain   *chain.Chain

	Worker Worker
}

// New constructs a new ledger for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, err
	}

	chainCfg := chain.Config{
		Difficulty: cfg.Genesis.Difficulty,
		Workers:    cfg.Workers,
		EvHandler:  chain.EventHandler(ev),
	}

	// Either start a fresh chain or restore the chain that was handed in.
	var chn *chain.Chain
	var err error
	switch len(cfg.Blocks) {
	case 0:
		chn, err = chain.New(chainCfg)
	default:
		chn, err = chain.Restore(chainCfg, cfg.Blocks)
	}
	if err != nil {
		return nil, err
	}

	// Construct a mempool with the specified select strategy.
	mp, err := mempool.NewWithStrategy(cfg.Genesis.SelectStrategy)
	if err != nil {
		return nil, err
	}

	state := State{
		evHandler:     ev,
		miningTimeout: cfg.MiningTimeout,

		genesis: cfg.Genesis,
		mempool: mp,
		chain:   chn,

		Worker: nopWorker{},
	}

	// The real Worker is not set here. The call to worker.Run will assign
	// itself and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.Worker.Shutdown()

	return nil
}

// Truncate clears the mempool. The chain itself is append only.
func (s *State) Truncate() {
	s.mempool.Truncate()
}

// =============================================================================

// nopWorker is used until a worker registers itself. Transactions are still
// accepted, they are only mined when MineNewBlock is called.
type nopWorker struct{}

func (nopWorker) Shutdown()          {}
func (nopWorker) SignalStartMining() {}
func (nopWorker) SignalCancelMining() (done func()) {
	return func() {}
}
