package domain

import (
	"time"

	"github.com/google/uuid"
)

// BillingEvent is a usage charge over a closed time interval. Rows are
// immutable once written; the uuid is chosen by the producer so replays
// collapse onto the same row.
type BillingEvent struct {
	UUID       uuid.UUID  `json:"uuid" gorm:"column:uuid;type:uuid;primaryKey"`
	EventStart time.Time  `json:"event_start" gorm:"column:event_start;not null;index:idx_billing_events_workspace_start,priority:2;index:idx_billing_events_start"`
	EventEnd   time.Time  `json:"event_end" gorm:"column:event_end;not null"`
	ItemID     uuid.UUID  `json:"item_id" gorm:"column:item_id;type:uuid;not null"`
	Workspace  string     `json:"workspace" gorm:"column:workspace;type:text;not null;index:idx_billing_events_workspace_start,priority:1"`
	User       *uuid.UUID `json:"user" gorm:"column:user;type:uuid"`
	Quantity   float64    `json:"quantity" gorm:"column:quantity;not null"`
}

func (BillingEvent) TableName() string { return "billing_events" }

// Event is the read-side row, joined with the catalogue so callers see
// the SKU rather than the internal item id.
type Event struct {
	UUID       uuid.UUID  `json:"uuid" gorm:"column:uuid"`
	EventStart time.Time  `json:"event_start" gorm:"column:event_start"`
	EventEnd   time.Time  `json:"event_end" gorm:"column:event_end"`
	SKU        string     `json:"item" gorm:"column:sku"`
	Workspace  string     `json:"workspace" gorm:"column:workspace"`
	User       *uuid.UUID `json:"user" gorm:"column:user"`
	Quantity   float64    `json:"quantity" gorm:"column:quantity"`
}

// EventMessage is an incoming billing event, already decoded and
// normalised to UTC. The SKU may be unknown to the catalogue.
type EventMessage struct {
	UUID       uuid.UUID
	EventStart time.Time
	EventEnd   time.Time
	SKU        string
	Workspace  string
	User       *uuid.UUID
	Quantity   float64
}

type Aggregation string

const (
	AggregationNone  Aggregation = ""
	AggregationDay   Aggregation = "day"
	AggregationMonth Aggregation = "month"
)

// Query selects events in the total order
// (event_start, event_end, workspace, uuid). All filters are optional.
type Query struct {
	Workspace *string
	Account   *uuid.UUID
	// Start keeps events with event_start >= Start.
	Start *time.Time
	// End keeps events with event_end < End.
	End *time.Time
	// After resumes the stream strictly past the event with this uuid.
	// Unknown uuids are ignored.
	After       *uuid.UUID
	Limit       int
	Aggregation Aggregation
}
