package state

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
)

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() (database.Block, error) {
	return s.chain.Latest()
}

// RetrieveMempool returns a copy of the mempool in arrival order.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}

// RetrieveBlocks returns a copy of every block in the chain.
func (s *State) RetrieveBlocks() []database.Block {
	return s.chain.Blocks()
}

// RetrieveExport returns the serialized form of the chain.
func (s *State) RetrieveExport() []database.BlockData {
	return s.chain.Export()
}
