// Package chain maintains an append only sequence of mined blocks and
// provides validation of the whole chain.
package chain

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
)

// Set of errors returned by the chain.
var (
	ErrEmptyChain    = errors.New("chain has no blocks")
	ErrInvalidChain  = errors.New("invalid chain")
	ErrBlockNotFound = errors.New("block not found")
)

// GenesisData is the fixed payload of every genesis block.
const GenesisData = database.GenesisData

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to construct a chain.
type Config struct {
	Difficulty uint         // Number of leading zero hex digits required for a block hash.
	Workers    int          // Number of G's used to search for a nonce.
	EvHandler  EventHandler // Optional event handler.
}

// Chain manages the ordered set of blocks. The first block is always the
// genesis block. Appends are serialized, reads can happen while a block is
// being mined.
type Chain struct {
	difficulty uint
	workers    int
	evHandler  EventHandler

	write  chan struct{}
	mu     sync.RWMutex
	blocks []database.Block
}

// New constructs a chain with a genesis block. The genesis block hash is
// computed but the block is not mined.
func New(cfg Config) (*Chain, error) {
	c, err := newChain(cfg)
	if err != nil {
		return nil, err
	}

	genesis := database.NewCandidate(0, database.NewDataPayload(GenesisData), database.GenesisPrevHash).Seal()
	c.blocks = append(c.blocks, genesis)

	c.evHandler("chain: New: genesis: blk[%s]: difficulty[%d]", genesis.Hash, c.difficulty)

	return c, nil
}

// Restore constructs a chain from its serialized blocks. The full chain is
// validated before it's returned.
func Restore(cfg Config, blocks []database.BlockData) (*Chain, error) {
	if len(blocks) == 0 {
		return nil, ErrEmptyChain
	}

	c, err := newChain(cfg)
	if err != nil {
		return nil, err
	}

	for _, bd := range blocks {
		c.blocks = append(c.blocks, database.ToBlock(bd))
	}

	if err := c.Verify(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidChain, err)
	}

	c.evHandler("chain: Restore: blocks[%d]: difficulty[%d]", len(c.blocks), c.difficulty)

	return c, nil
}

// newChain validates the configuration and constructs an empty chain.
func newChain(cfg Config) (*Chain, error) {
	if cfg.Difficulty > pow.MaxDifficulty {
		return nil, fmt.Errorf("%w: %d is greater than %d", pow.ErrInvalidDifficulty, cfg.Difficulty, pow.MaxDifficulty)
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	c := Chain{
		difficulty: cfg.Difficulty,
		workers:    cfg.Workers,
		evHandler:  ev,
		write:      make(chan struct{}, 1),
	}

	return &c, nil
}

// =============================================================================

// Difficulty returns the number of leading zeros required for a block.
func (c *Chain) Difficulty() uint {
	return c.difficulty
}

// Len returns the number of blocks including genesis.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.blocks)
}

// Latest returns the last block in the chain. ErrEmptyChain means the chain
// invariants have been broken and should be treated as fatal.
func (c *Chain) Latest() (database.Block, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.blocks) == 0 {
		return database.Block{}, ErrEmptyChain
	}

	return c.blocks[len(c.blocks)-1].Clone(), nil
}

// Block returns the block with the specified number.
func (c *Chain) Block(number uint64) (database.Block, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if number >= uint64(len(c.blocks)) {
		return database.Block{}, fmt.Errorf("%w: blk[%d]", ErrBlockNotFound, number)
	}

	return c.blocks[number].Clone(), nil
}

// Blocks returns a copy of all the blocks in the chain.
func (c *Chain) Blocks() []database.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	blocks := make([]database.Block, len(c.blocks))
	for i, b := range c.blocks {
		blocks[i] = b.Clone()
	}

	return blocks
}

// Export returns the serialized form of every block in the chain.
func (c *Chain) Export() []database.BlockData {
	c.mu.RLock()
	defer c.mu.RUnlock()

	blocks := make([]database.BlockData, len(c.blocks))
	for i, b := range c.blocks {
		blocks[i] = database.NewBlockData(b)
	}

	return blocks
}

// =============================================================================

// Append mines a new block holding the payload and adds it to the end of the
// chain. Either a fully mined block is appended or the chain is unchanged.
// A payload carrying a transaction that doesn't verify is rejected with
// ErrUnverifiedTransaction before any mining takes place.
func (c *Chain) Append(ctx context.Context, payload database.Payload) (database.Block, error) {

	// Only one block can be mined against the latest block at a time.
	select {
	case c.write <- struct{}{}:
	case <-ctx.Done():
		return database.Block{}, fmt.Errorf("%w: %w", pow.ErrCancelled, ctx.Err())
	}
	defer func() { <-c.write }()

	latest, err := c.Latest()
	if err != nil {
		return database.Block{}, err
	}

	c.evHandler("chain: Append: validate payload: trans[%d]", len(payload.Trans))

	if err := payload.Validate(); err != nil {
		return database.Block{}, err
	}

	number := latest.Header.Number + 1
	c.evHandler("chain: Append: MINING: blk[%d]: prevBlk[%s]", number, latest.Hash)

	cfg := pow.Config{
		Difficulty: c.difficulty,
		Workers:    c.workers,
		EvHandler:  c.evHandler,
	}

	block, err := database.NewCandidate(number, payload, latest.Hash).Mine(ctx, cfg)
	if err != nil {
		return database.Block{}, err
	}

	c.mu.Lock()
	c.blocks = append(c.blocks, block)
	c.mu.Unlock()

	c.evHandler("chain: Append: blk[%d]: hash[%s]: effort[%d]", number, block.Hash, block.Effort)

	return block.Clone(), nil
}

// AppendData mines a new block holding an opaque text payload.
func (c *Chain) AppendData(ctx context.Context, data string) (database.Block, error) {
	return c.Append(ctx, database.NewDataPayload(data))
}

// =============================================================================

// Verify walks the whole chain and returns the first problem found. Every
// block's hash is recomputed and every link to its parent is checked.
func (c *Chain) Verify() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.blocks) == 0 {
		return ErrEmptyChain
	}

	if err := c.blocks[0].ValidateGenesis(); err != nil {
		return err
	}

	for i := 1; i < len(c.blocks); i++ {
		if err := c.blocks[i].ValidateBlock(c.blocks[i-1], c.difficulty, nil); err != nil {
			return err
		}
	}

	return nil
}

// Validate reports whether the whole chain is intact.
func (c *Chain) Validate() bool {
	err := c.Verify()
	if err != nil {
		c.evHandler("chain: Validate: ERROR: %s", err)
	}

	return err == nil
}
