package repositories

import (
	"context"
)

// UnitOfWork defines the interface for atomic operations
type UnitOfWork interface {
	// Do runs fn inside one transaction; a non-nil error rolls it back.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	// WithLock makes row reads issued with the returned ctx lock the rows they read
	// until the surrounding transaction ends.
	WithLock(ctx context.Context) context.Context
}
