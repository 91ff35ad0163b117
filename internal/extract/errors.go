package extract

import (
	"errors"
	"fmt"
)

// ErrService marks transport-level extraction failures: network errors,
// timeouts, malformed or schema-violating upstream responses. Retryable by
// resubmission; this package never retries on its own.
var ErrService = errors.New("extraction service error")

// RefusalError is the upstream's explicit signal that the input contained
// no identifiable expense data. Not retryable as-is; the reason is meant
// for the user.
type RefusalError struct {
	Reason string
}

func (e *RefusalError) Error() string {
	return "extraction refused: " + e.Reason
}

// IsRefusal reports whether err carries an upstream refusal.
func IsRefusal(err error) (*RefusalError, bool) {
	var r *RefusalError
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

func serviceErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrService, err))
}
