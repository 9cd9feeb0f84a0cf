// internal/challenge/pipeline.go
//
// Retryable generation pipeline.
// Wraps the Generator with an explicit retry policy (bounded attempts,
// exponential backoff) and a deterministic fallback puzzle, so the player
// is never blocked from playing. Validation failures short-circuit to the
// caller without retrying.

package challenge

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

// Policy is the retry policy executed by the pipeline.
type Policy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultPolicy keeps retries short: generation is cheap and the player
// is waiting.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     500 * time.Millisecond,
	}
}

// Pipeline executes generation under the retry policy.
type Pipeline struct {
	gen    *Generator
	policy Policy
}

// NewPipeline constructs a Pipeline. A zero MaxAttempts falls back to the
// default policy.
func NewPipeline(gen *Generator, policy Policy) *Pipeline {
	if policy.MaxAttempts == 0 {
		policy = DefaultPolicy()
	}
	return &Pipeline{gen: gen, policy: policy}
}

// Generate runs the generator with retries and degrades to the fallback
// puzzle when attempts are exhausted. Invalid input is returned as-is.
func (p *Pipeline) Generate(ctx context.Context, req Request) (*Puzzle, error) {
	return p.run(ctx, req, nil)
}

// GenerateSeeded is Generate with a deterministic random source, used by
// the daily mode. The fallback clause still applies.
func (p *Pipeline) GenerateSeeded(ctx context.Context, req Request, seed uint64) (*Puzzle, error) {
	rng := rand.New(rand.NewSource(int64(seed)))
	return p.run(ctx, req, rng)
}

func (p *Pipeline) run(ctx context.Context, req Request, rng *rand.Rand) (*Puzzle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	op := func() (*Puzzle, error) {
		var (
			pz  *Puzzle
			err error
		)
		if rng != nil {
			pz, err = p.gen.GenerateWithRand(ctx, req, rng)
		} else {
			pz, err = p.gen.Generate(ctx, req)
		}
		if err != nil && !Retryable(err) {
			return nil, backoff.Permanent(err)
		}
		return pz, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.policy.InitialInterval
	b.MaxInterval = p.policy.MaxInterval

	pz, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(p.policy.MaxAttempts),
	)
	if err == nil {
		return pz, nil
	}
	if errors.Is(err, ErrInvalidInput) {
		return nil, err
	}

	log.Warn().Err(err).Str("playerId", req.PlayerID).Str("mode", string(req.Mode)).
		Msg("generation attempts exhausted, serving fallback puzzle")
	return FallbackPuzzle(), nil
}
