package database

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/merkle"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/rlp"
)

// Payload is the content sealed by a block. A block either carries an
// ordered set of signed transactions or an opaque text payload.
type Payload struct {
	Data  string `json:"data,omitempty"`
	Trans []Tx   `json:"trans,omitempty"`
}

// NewDataPayload constructs a payload holding opaque text.
func NewDataPayload(data string) Payload {
	return Payload{Data: data}
}

// NewTxPayload constructs a payload holding the specified transactions. The
// order of the transactions is preserved.
func NewTxPayload(trans []Tx) Payload {
	return Payload{Trans: trans}.clone()
}

// Validate checks every transaction in the payload is verified. The first
// failing transaction is reported wrapped in ErrUnverifiedTransaction.
func (p Payload) Validate() error {
	for i, tx := range p.Trans {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("%w: tx[%d] %s: %w", ErrUnverifiedTransaction, i, tx, err)
		}
	}

	return nil
}

// Tree returns the merkle tree over the transaction hashes.
func (p Payload) Tree() *merkle.Tree {
	leaves := make([]signature.Digest, len(p.Trans))
	for i, tx := range p.Trans {
		leaves[i] = tx.Hash()
	}

	return merkle.NewTree(leaves)
}

// Root returns the digest that binds the payload into the block hash. It is
// the hash of the RLP list [data, tx count, merkle root]. The count keeps a
// duplicated trailing transaction from producing the same root.
func (p Payload) Root() signature.Digest {
	txRoot := p.Tree().Root()

	w := rlp.NewEncoderBuffer(nil)
	l := w.List()
	w.WriteString(p.Data)
	w.WriteUint64(uint64(len(p.Trans)))
	w.WriteBytes(txRoot[:])
	w.ListEnd(l)

	return signature.Hash(w.ToBytes())
}

// clone returns a deep copy of the payload.
func (p Payload) clone() Payload {
	if p.Trans == nil {
		return p
	}

	trans := make([]Tx, len(p.Trans))
	for i, tx := range p.Trans {
		trans[i] = tx.clone()
	}
	p.Trans = trans

	return p
}
