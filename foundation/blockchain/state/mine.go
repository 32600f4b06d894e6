package state

import (
	"context"
	"errors"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// ErrNoTransactions is returned when a block is requested to be created
// and there are not enough transactions.
var ErrNoTransactions = errors.New("no transactions in mempool")

// =============================================================================

// MineNewBlock attempts to create a new block with a proper hash that can
// become the next block in the chain. The mined transactions are removed
// from the mempool.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: check mempool count")

	// Are there enough transactions in the pool.
	if s.mempool.Count() == 0 {
		return database.Block{}, ErrNoTransactions
	}

	// Drop anything that no longer verifies so one bad transaction can't
	// keep the rest of the pool from being mined.
	trans := s.mempool.PickBest(int(s.genesis.TransPerBlock))
	valid := make([]database.Tx, 0, len(trans))
	for _, tx := range trans {
		if err := tx.Validate(); err != nil {
			s.evHandler("state: MineNewBlock: MINING: WARNING: dropping tx[%s]: %s", tx, err)
			s.mempool.Delete(tx)
			continue
		}
		valid = append(valid, tx)
	}

	if len(valid) == 0 {
		return database.Block{}, ErrNoTransactions
	}

	s.evHandler("state: MineNewBlock: MINING: perform POW: trans[%d]", len(valid))

	ctx, cancel := s.miningContext(ctx)
	defer cancel()

	// Attempt to create a new block by solving the POW puzzle. This can be
	// cancelled.
	block, err := s.chain.Append(ctx, database.NewTxPayload(valid))
	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: MineNewBlock: MINING: remove from mempool")

	for _, tx := range block.Payload.Trans {
		s.mempool.Delete(tx)
	}

	s.evHandler("viewer: block: number[%d]: hash[%s]: effort[%d]", block.Header.Number, block.Hash, block.Effort)

	return block, nil
}

// AppendData mines a block holding an opaque text payload. Any mining of
// transactions in progress is cancelled so this block is written first, the
// worker picks the transactions up again afterwards.
func (s *State) AppendData(ctx context.Context, data string) (database.Block, error) {
	s.evHandler("state: AppendData: started: data[%d bytes]", len(data))
	defer s.evHandler("state: AppendData: completed")

	// If the runMiningOperation function is being executed it needs to stop
	// immediately. The G executing runMiningOperation will not return from the
	// function until done is called.
	done := s.Worker.SignalCancelMining()
	defer func() {
		s.evHandler("state: AppendData: signal runMiningOperation to terminate")
		done()
	}()

	ctx, cancel := s.miningContext(ctx)
	defer cancel()

	block, err := s.chain.AppendData(ctx, data)
	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("viewer: block: number[%d]: hash[%s]: effort[%d]", block.Header.Number, block.Hash, block.Effort)

	return block, nil
}

// miningContext applies the configured mining timeout to the context.
func (s *State) miningContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.miningTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, s.miningTimeout)
}
