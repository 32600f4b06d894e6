package state

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// SubmitWalletTransaction accepts a signed transaction from a wallet for
// inclusion in a future block. Transactions that don't verify are rejected
// with database.ErrUnverifiedTransaction and never reach the mempool.
func (s *State) SubmitWalletTransaction(tx database.Tx) error {
	if err := s.VerifyTransaction(tx); err != nil {
		return err
	}

	n := s.mempool.Upsert(tx)
	s.evHandler("viewer: tx: submitted: tx[%s]: mempool[%d]", tx, n)

	s.Worker.SignalStartMining()

	return nil
}

// VerifyTransaction checks the transaction carries a valid signature from
// its sender.
func (s *State) VerifyTransaction(tx database.Tx) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("%w: %w", database.ErrUnverifiedTransaction, err)
	}

	return nil
}
