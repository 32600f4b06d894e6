// Package merkle provides an implementation of a merkle tree for validation
// support for the transactions sealed inside a block.
package merkle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
)

// ErrNotFound is returned when a proof is requested for a leaf that is not
// part of the tree.
var ErrNotFound = errors.New("leaf not found in tree")

// Proof order values. OrderLeft means the proof hash is concatenated before
// the running hash, OrderRight means after it.
const (
	OrderLeft  int64 = 0
	OrderRight int64 = 1
)

// =============================================================================

// Tree represents a merkle tree built from a set of leaf digests. Levels are
// stored bottom up, the last level holds only the root.
type Tree struct {
	levels [][]signature.Digest
}

// NewTree constructs a merkle tree from the leaf digests. When a level holds
// an odd number of nodes, the last node is duplicated. An empty set of leaves
// produces a tree with a zero root.
func NewTree(leaves []signature.Digest) *Tree {
	var t Tree
	if len(leaves) == 0 {
		return &t
	}

	level := make([]signature.Digest, len(leaves))
	copy(level, leaves)

	for {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		t.levels = append(t.levels, level)

		next := make([]signature.Digest, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, hashPair(level[i], level[i+1]))
		}

		if len(next) == 1 {
			t.levels = append(t.levels, next)
			return &t
		}

		level = next
	}
}

// Root returns the merkle root of the tree.
func (t *Tree) Root() signature.Digest {
	if len(t.levels) == 0 {
		return signature.Digest{}
	}

	return t.levels[len(t.levels)-1][0]
}

// RootHex converts the merkle root to a hex encoded string.
func (t *Tree) RootHex() string {
	return t.Root().Hex()
}

// Proof returns the set of hashes and the order of concatenating those
// hashes for proving the leaf is in the tree.
//
// Process the leaf against the proof like this.
//
//	hash = leaf
//	for i := range proof {
//		order[i] == OrderLeft:  hash = sha256(proof[i] + hash)
//		order[i] == OrderRight: hash = sha256(hash + proof[i])
//	}
//
// The calculated hash should match the merkle root.
func (t *Tree) Proof(leaf signature.Digest) ([]signature.Digest, []int64, error) {
	if len(t.levels) == 0 {
		return nil, nil, ErrNotFound
	}

	idx := -1
	for i, d := range t.levels[0] {
		if d == leaf {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, nil, ErrNotFound
	}

	var proof []signature.Digest
	var order []int64
	for _, level := range t.levels[:len(t.levels)-1] {
		switch idx % 2 {
		case 0:
			proof = append(proof, level[idx+1])
			order = append(order, OrderRight)
		default:
			proof = append(proof, level[idx-1])
			order = append(order, OrderLeft)
		}
		idx /= 2
	}

	return proof, order, nil
}

// String returns a string representation of the tree levels.
func (t *Tree) String() string {
	var sb strings.Builder
	for i, level := range t.levels {
		sb.WriteString(fmt.Sprintf("L%d:", i))
		for _, d := range level {
			sb.WriteString(" " + d.Hex()[:8])
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// =============================================================================

// VerifyProof indicates whether the leaf combined with the proof produces
// the specified root.
func VerifyProof(leaf signature.Digest, root signature.Digest, proof []signature.Digest, order []int64) bool {
	if len(proof) != len(order) {
		return false
	}

	hash := leaf
	for i, p := range proof {
		switch order[i] {
		case OrderLeft:
			hash = hashPair(p, hash)
		case OrderRight:
			hash = hashPair(hash, p)
		default:
			return false
		}
	}

	return hash == root
}

// hashPair produces the parent hash for two sibling nodes.
func hashPair(left signature.Digest, right signature.Digest) signature.Digest {
	data := make([]byte, 0, 2*len(left))
	data = append(data, left[:]...)
	data = append(data, right[:]...)

	return signature.Hash(data)
}
