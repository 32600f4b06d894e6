// Package pow implements the proof of work search used to seal blocks.
package pow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// Set of errors returned by the search.
var (
	ErrCancelled         = errors.New("mining cancelled")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
)

// MaxDifficulty is the number of hex digits in a sha256 hash. No hash can
// have more leading zeros than that.
const MaxDifficulty = 64

// progressInterval is the number of attempts per worker between progress
// events.
const progressInterval = 1_000_000

// =============================================================================

// HashFunc returns the hex encoded hash of the content being mined for the
// specified nonce. It is called concurrently when more than one worker is
// configured.
type HashFunc func(nonce uint64) string

// Config represents the parameters for a search.
type Config struct {
	Difficulty uint                        // Number of leading zero hex digits required.
	StartNonce uint64                      // First nonce tried.
	Workers    int                         // Number of G's scanning nonces, defaults to 1.
	EvHandler  func(v string, args ...any) // Optional progress events.
}

// Result represents a solved search.
type Result struct {
	Nonce  uint64
	Hash   string
	Effort uint64 // Attempts made across all workers.
}

// Search looks for a nonce that produces a hash with the configured number of
// leading zeros. With a single worker the nonces are tried in order starting
// at StartNonce. With N workers, worker i tries StartNonce+i, StartNonce+i+N
// and so on, and the first worker to solve the puzzle stops the others.
//
// The context is checked before every attempt. If it is cancelled before a
// solution is accepted, ErrCancelled is returned and no result is produced.
func Search(ctx context.Context, cfg Config, hashFn HashFunc) (Result, error) {
	if cfg.Difficulty > MaxDifficulty {
		return Result{}, fmt.Errorf("%w: %d is greater than %d", ErrInvalidDifficulty, cfg.Difficulty, MaxDifficulty)
	}

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	ev("pow: Search: MINING: started: difficulty[%d] workers[%d]", cfg.Difficulty, workers)
	defer ev("pow: Search: MINING: completed")

	// This context is used to stop the other workers once one of them
	// has solved the puzzle.
	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg     sync.WaitGroup
		solved atomic.Bool
		effort atomic.Uint64
		result Result
	)

	wg.Add(workers)
	for w := range workers {
		go func(w int) {
			defer wg.Done()

			var attempts uint64
			defer func() {
				effort.Add(attempts)
			}()

			nonce := cfg.StartNonce + uint64(w)
			for {
				if searchCtx.Err() != nil {
					return
				}

				attempts++
				if attempts%progressInterval == 0 {
					ev("pow: Search: MINING: worker[%d]: attempts[%d]", w, attempts)
				}

				hash := hashFn(nonce)
				if IsHashSolved(cfg.Difficulty, hash) {

					// Only one solution can be accepted per search.
					if solved.CompareAndSwap(false, true) {
						result = Result{Nonce: nonce, Hash: hash}
						cancel()
					}
					return
				}

				nonce += uint64(workers)
			}
		}(w)
	}

	wg.Wait()

	// Did we get cancelled by the caller trying to solve the problem.
	if ctx.Err() != nil {
		ev("pow: Search: MINING: CANCELLED: attempts[%d]", effort.Load())
		return Result{}, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	}

	result.Effort = effort.Load()

	ev("pow: Search: MINING: SOLVED: nonce[%d] hash[%s]", result.Nonce, result.Hash)
	ev("pow: Search: MINING: attempts[%d]", result.Effort)

	return result, nil
}

// IsHashSolved checks the hash to make sure it complies with the POW rules.
// The hex encoded hash must start with difficulty number of 0's.
func IsHashSolved(difficulty uint, hash string) bool {
	if difficulty > MaxDifficulty || len(hash) != MaxDifficulty {
		return false
	}

	return strings.Count(hash[:difficulty], "0") == int(difficulty)
}
