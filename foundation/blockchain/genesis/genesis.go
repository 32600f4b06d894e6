// Package genesis maintains access to the genesis file.
package genesis

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/mempool/selector"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
	"gopkg.in/yaml.v3"
)

// ErrInvalidGenesis is returned when the genesis file content can't be used
// to start a chain.
var ErrInvalidGenesis = errors.New("invalid genesis")

// Genesis represents the genesis file.
type Genesis struct {
	Date           time.Time `yaml:"date" json:"date"`
	ChainID        uint16    `yaml:"chain_id" json:"chain_id"`               // The chain id represents an unique id for this running instance.
	Difficulty     uint      `yaml:"difficulty" json:"difficulty"`           // How difficult it needs to be to solve the work problem.
	TransPerBlock  uint16    `yaml:"trans_per_block" json:"trans_per_block"` // The maximum number of transactions that can be in a block.
	SelectStrategy string    `yaml:"select_strategy" json:"select_strategy"` // How transactions are picked from the mempool.
}

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	f, err := os.Open(path)
	if err != nil {
		return Genesis{}, err
	}
	defer f.Close()

	var genesis Genesis
	if err := yaml.NewDecoder(f).Decode(&genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the values can be used to start a chain. An empty select
// strategy is set to the arrival strategy.
func (g *Genesis) Validate() error {
	if g.Difficulty > pow.MaxDifficulty {
		return fmt.Errorf("%w: difficulty %d is greater than %d", ErrInvalidGenesis, g.Difficulty, pow.MaxDifficulty)
	}

	if g.TransPerBlock == 0 {
		return fmt.Errorf("%w: trans_per_block must be greater than 0", ErrInvalidGenesis)
	}

	if g.SelectStrategy == "" {
		g.SelectStrategy = selector.StrategyArrival
	}

	if _, err := selector.Retrieve(g.SelectStrategy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidGenesis, err)
	}

	return nil
}
