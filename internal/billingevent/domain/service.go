package domain

import (
	"context"

	"github.com/google/uuid"
)

type Service interface {
	// Record persists a billing event. A duplicate uuid is a no-op and
	// returns nil. Unknown SKUs are stubbed into the catalogue and the
	// insert retried once.
	Record(ctx context.Context, msg *EventMessage) (*uuid.UUID, error)
	// Find returns events, optionally folded into day or month buckets,
	// ordered by (event_start, event_end, workspace, uuid).
	Find(ctx context.Context, q Query) ([]Event, error)
}
