// internal/challenge/batch.go
//
// Multi-day pack assembly. Each day is generated independently and seeded
// from the pack seed, so a weekly pack is reproducible. Per-day failures
// are logged and skipped; a pack with zero valid days escalates as a
// generation error.

package challenge

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"
)

// GenerateWeekly assembles up to days puzzles for a player. Units that
// fail after the per-unit retry budget are skipped.
func (p *Pipeline) GenerateWeekly(ctx context.Context, req Request, days int, seed uint64) ([]*Puzzle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if days < 1 {
		return nil, fmt.Errorf("%w: %d days", ErrInvalidInput, days)
	}

	out := make([]*Puzzle, 0, days)
	for day := 0; day < days; day++ {
		rng := rand.New(rand.NewSource(int64(seed + uint64(day))))

		var (
			pz  *Puzzle
			err error
		)
		for attempt := uint(0); attempt < p.policy.MaxAttempts; attempt++ {
			pz, err = p.gen.GenerateWithRand(ctx, req, rng)
			if err == nil || !Retryable(err) {
				break
			}
		}
		if err != nil {
			log.Warn().Err(err).Int("day", day).Msg("skipping pack unit")
			continue
		}
		out = append(out, pz)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: weekly pack produced no puzzles", ErrNotEnoughWords)
	}
	return out, nil
}
