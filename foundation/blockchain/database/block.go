package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/rlp"
)

// Values every genesis block carries.
const (
	GenesisPrevHash = "0"
	GenesisData     = "Genesis Block"
)

// Set of errors returned when a block does not validate.
var (
	ErrBlockNumber  = errors.New("block is not the next number")
	ErrBlockLink    = errors.New("parent block hash doesn't match our known parent")
	ErrBlockHash    = errors.New("block hash doesn't match its content")
	ErrBlockUnmined = errors.New("block hash doesn't solve the puzzle")
	ErrGenesisData  = errors.New("genesis block doesn't carry the genesis payload")
)

// =============================================================================

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	Number        uint64 `json:"number"`          // Position in the chain, genesis is 0.
	TimeStamp     uint64 `json:"timestamp"`       // Time the block was created, seconds since epoch.
	PrevBlockHash string `json:"prev_block_hash"` // Hash of the previous block in the chain.
	Nonce         uint64 `json:"nonce"`           // Value identified to solve the hash solution.
}

// Block represents a sealed block. Values of this type are only produced once
// mining has succeeded or for the genesis block, so the stored hash is never
// empty.
type Block struct {
	Header  BlockHeader
	Payload Payload
	Hash    string // Hash of the header and payload, solving the puzzle.
	Effort  uint64 // Number of nonces tried to find the hash.
}

// ComputeHash recomputes the hash from the block content. It covers the
// number, timestamp, previous hash, payload and nonce, never the stored hash
// or effort.
func (b Block) ComputeHash() string {
	return hashHeader(b.Header, b.Payload.Root())
}

// IsGenesis reports whether this is the first block of a chain.
func (b Block) IsGenesis() bool {
	return b.Header.Number == 0
}

// Clone returns a deep copy of the block.
func (b Block) Clone() Block {
	b.Payload = b.Payload.clone()
	return b
}

// ValidateGenesis checks the block is a well formed genesis block. The genesis
// block is exempt from the proof of work puzzle and carries only GenesisData.
func (b Block) ValidateGenesis() error {
	if b.Header.Number != 0 {
		return fmt.Errorf("%w: got %d, exp 0", ErrBlockNumber, b.Header.Number)
	}

	if b.Header.PrevBlockHash != GenesisPrevHash {
		return fmt.Errorf("%w: got %s, exp %s", ErrBlockLink, b.Header.PrevBlockHash, GenesisPrevHash)
	}

	if hash := b.ComputeHash(); hash != b.Hash {
		return fmt.Errorf("%w: blk[0]: got %s, exp %s", ErrBlockHash, hash, b.Hash)
	}

	if b.Payload.Data != GenesisData || len(b.Payload.Trans) != 0 {
		return fmt.Errorf("%w: data[%q] trans[%d]", ErrGenesisData, b.Payload.Data, len(b.Payload.Trans))
	}

	return nil
}

// ValidateBlock takes a block and validates it to follow the previous block in
// a chain mined at the specified difficulty.
func (b Block) ValidateBlock(previousBlock Block, difficulty uint, evHandler func(v string, args ...any)) error {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	ev("database: ValidateBlock: validate: blk[%d]: check: block number is the next number", b.Header.Number)

	nextNumber := previousBlock.Header.Number + 1
	if b.Header.Number != nextNumber {
		return fmt.Errorf("%w: got %d, exp %d", ErrBlockNumber, b.Header.Number, nextNumber)
	}

	ev("database: ValidateBlock: validate: blk[%d]: check: parent hash does match parent block", b.Header.Number)

	if b.Header.PrevBlockHash != previousBlock.Hash {
		return fmt.Errorf("%w: blk[%d]: got %s, exp %s", ErrBlockLink, b.Header.Number, b.Header.PrevBlockHash, previousBlock.Hash)
	}

	ev("database: ValidateBlock: validate: blk[%d]: check: block hash matches content", b.Header.Number)

	hash := b.ComputeHash()
	if hash != b.Hash {
		return fmt.Errorf("%w: blk[%d]: got %s, exp %s", ErrBlockHash, b.Header.Number, hash, b.Hash)
	}

	ev("database: ValidateBlock: validate: blk[%d]: check: block hash has been solved", b.Header.Number)

	if !pow.IsHashSolved(difficulty, hash) {
		return fmt.Errorf("%w: blk[%d]: difficulty %d, hash %s", ErrBlockUnmined, b.Header.Number, difficulty, hash)
	}

	ev("database: ValidateBlock: validate: blk[%d]: check: transactions are verified", b.Header.Number)

	if err := b.Payload.Validate(); err != nil {
		return fmt.Errorf("blk[%d]: %w", b.Header.Number, err)
	}

	return nil
}

// =============================================================================

// Candidate represents a block that has not been sealed yet. The search
// state for mining lives in the pow package, a candidate only provides the
// content and the hash function.
type Candidate struct {
	header  BlockHeader
	root    signature.Digest
	payload Payload
}

// NewCandidate constructs a block to be mined using the current time. The
// nonce starts at 0.
func NewCandidate(number uint64, payload Payload, prevBlockHash string) Candidate {
	return NewCandidateAt(number, uint64(time.Now().UTC().Unix()), payload, prevBlockHash)
}

// NewCandidateAt constructs a block to be mined with the specified timestamp.
func NewCandidateAt(number uint64, timeStamp uint64, payload Payload, prevBlockHash string) Candidate {
	p := payload.clone()

	return Candidate{
		header: BlockHeader{
			Number:        number,
			TimeStamp:     timeStamp,
			PrevBlockHash: prevBlockHash,
		},
		root:    p.Root(),
		payload: p,
	}
}

// Header returns a copy of the candidate header.
func (c Candidate) Header() BlockHeader {
	return c.header
}

// ComputeHash returns the hash of the candidate for the specified nonce.
func (c Candidate) ComputeHash(nonce uint64) string {
	h := c.header
	h.Nonce = nonce

	return hashHeader(h, c.root)
}

// Seal produces the block without performing any work. This is only used
// for the genesis block, which is exempt from the proof of work puzzle.
func (c Candidate) Seal() Block {
	return Block{
		Header:  c.header,
		Payload: c.payload,
		Hash:    c.ComputeHash(c.header.Nonce),
	}
}

// Mine performs the work to find a nonce that solves the puzzle at the
// specified difficulty and returns the sealed block. No work is performed
// when the payload carries a transaction that doesn't verify.
func (c Candidate) Mine(ctx context.Context, cfg pow.Config) (Block, error) {
	if err := c.payload.Validate(); err != nil {
		return Block{}, err
	}

	cfg.StartNonce = c.header.Nonce

	res, err := pow.Search(ctx, cfg, c.ComputeHash)
	if err != nil {
		return Block{}, err
	}

	h := c.header
	h.Nonce = res.Nonce

	b := Block{
		Header:  h,
		Payload: c.payload,
		Hash:    res.Hash,
		Effort:  res.Effort,
	}

	return b, nil
}

// =============================================================================

// BlockData represents what is serialized when a block leaves the process.
// The hash and signatures are defined over the RLP encodings, so this form
// must carry every field unchanged.
type BlockData struct {
	Hash    string      `json:"hash"`
	Effort  uint64      `json:"effort"`
	Header  BlockHeader `json:"block"`
	Payload Payload     `json:"payload"`
}

// NewBlockData constructs the value to serialize.
func NewBlockData(block Block) BlockData {
	return BlockData{
		Hash:    block.Hash,
		Effort:  block.Effort,
		Header:  block.Header,
		Payload: block.Payload.clone(),
	}
}

// ToBlock converts a BlockData into a Block. The block is not validated.
func ToBlock(blockData BlockData) Block {
	return Block{
		Header:  blockData.Header,
		Payload: blockData.Payload.clone(),
		Hash:    blockData.Hash,
		Effort:  blockData.Effort,
	}
}

// =============================================================================

// hashHeader produces the block hash from the RLP list [number, timestamp,
// prev hash, payload root, nonce].
func hashHeader(h BlockHeader, root signature.Digest) string {
	w := rlp.NewEncoderBuffer(nil)
	l := w.List()
	w.WriteUint64(h.Number)
	w.WriteUint64(h.TimeStamp)
	w.WriteString(h.PrevBlockHash)
	w.WriteBytes(root[:])
	w.WriteUint64(h.Nonce)
	w.ListEnd(l)

	return signature.Hash(w.ToBytes()).Hex()
}
