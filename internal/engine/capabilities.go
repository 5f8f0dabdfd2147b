package engine

import (
	"context"
	"time"
)

// Transferer moves native currency between accounts. A returned error means
// nothing moved, so a failed call can be retried with identical effect.
type Transferer interface {
	Transfer(ctx context.Context, from, to string, amount int64) error
}

// Authorizer proves the caller controls principal.
type Authorizer interface {
	RequireAuth(ctx context.Context, principal string) error
}

// Clock is the engine's time source.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}
