package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/merkle"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
)

// ErrTxNotFound is returned when a transaction is not part of a block.
var ErrTxNotFound = errors.New("transaction not found in block")

// =============================================================================

// Proof represents a merkle inclusion proof for a transaction in a block.
type Proof struct {
	BlockNumber uint64   `json:"block_number"`
	BlockHash   string   `json:"block_hash"`
	TxHash      string   `json:"tx_hash"`
	MerkleRoot  string   `json:"merkle_root"`
	Path        []string `json:"path"`
	Order       []int64  `json:"order"`
	Verified    bool     `json:"verified"`
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryBlock returns the block with the specified number. Use
// RetrieveLatestBlock for the tip of the chain.
func (s *State) QueryBlock(number uint64) (database.Block, error) {
	return s.chain.Block(number)
}

// QueryBlocksByAccount returns the set of blocks holding a transaction sent
// or received by the account.
func (s *State) QueryBlocksByAccount(accountID database.AccountID) []database.Block {
	var out []database.Block

	for _, block := range s.chain.Blocks() {
		for _, tx := range block.Payload.Trans {
			if tx.Sender.Equal(accountID) || tx.Receiver.Equal(accountID) {
				out = append(out, block)
				break
			}
		}
	}

	return out
}

// QueryProof builds the merkle proof that the transaction with the
// specified hash is part of the block.
func (s *State) QueryProof(number uint64, txHash string) (Proof, error) {
	block, err := s.QueryBlock(number)
	if err != nil {
		return Proof{}, err
	}

	var leaf signature.Digest
	var found bool
	for _, tx := range block.Payload.Trans {
		if h := tx.Hash(); h.Hex() == txHash {
			leaf, found = h, true
			break
		}
	}

	if !found {
		return Proof{}, fmt.Errorf("%w: blk[%d]: tx[%s]", ErrTxNotFound, block.Header.Number, txHash)
	}

	tree := block.Payload.Tree()

	path, order, err := tree.Proof(leaf)
	if err != nil {
		return Proof{}, err
	}

	hexPath := make([]string, len(path))
	for i, d := range path {
		hexPath[i] = d.Hex()
	}

	proof := Proof{
		BlockNumber: block.Header.Number,
		BlockHash:   block.Hash,
		TxHash:      txHash,
		MerkleRoot:  tree.RootHex(),
		Path:        hexPath,
		Order:       order,
		Verified:    merkle.VerifyProof(leaf, tree.Root(), path, order),
	}

	return proof, nil
}

// ValidateChain walks the whole chain and returns the first problem found.
func (s *State) ValidateChain() error {
	return s.chain.Verify()
}
