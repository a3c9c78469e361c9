package shared

import (
	"context"

	"wave-studio-api/internal/infra/db"
)

// UnitOfWork scopes a set of store writes to one transaction. The booking
// and waitlist commands run every multi-statement mutation through it so
// the outbox rows commit atomically with the state change.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error
}
