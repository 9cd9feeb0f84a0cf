// internal/challenge/errors.go
//
// Error taxonomy for puzzle generation.
//
//   - ErrInvalidInput:    malformed caller input; non-retryable, surfaced
//     immediately with a user-facing message.
//   - ErrNoPatterns:      no catalog pattern survived filtering; retryable.
//   - ErrNotEnoughWords:  could not assemble a viable group or fill the
//     grid; retryable.
//
// The pipeline retries retryable errors with backoff and degrades to the
// deterministic fallback puzzle when attempts are exhausted.

package challenge

import "errors"

var (
	ErrInvalidInput   = errors.New("challenge: invalid input")
	ErrNoPatterns     = errors.New("challenge: no eligible patterns")
	ErrNotEnoughWords = errors.New("challenge: not enough eligible words")
)

// Retryable reports whether the pipeline should retry after err.
func Retryable(err error) bool {
	return err != nil && !errors.Is(err, ErrInvalidInput)
}
