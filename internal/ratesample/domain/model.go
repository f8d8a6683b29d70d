package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConsumptionRateSample is a point observation of a metered rate, in
// units per second. Samples drive the hourly usage estimator; a pair of
// zero samples brackets a gap where nothing was consumed.
type ConsumptionRateSample struct {
	UUID       uuid.UUID  `json:"uuid" gorm:"column:uuid;type:uuid;primaryKey"`
	SampleTime time.Time  `json:"sample_time" gorm:"column:sample_time;not null;index:idx_rate_samples_workspace_time,priority:2;index:idx_rate_samples_time"`
	ItemID     uuid.UUID  `json:"item_id" gorm:"column:item_id;type:uuid;not null"`
	Workspace  string     `json:"workspace" gorm:"column:workspace;type:text;not null;index:idx_rate_samples_workspace_time,priority:1"`
	User       *uuid.UUID `json:"user" gorm:"column:user;type:uuid"`
	Rate       float64    `json:"rate" gorm:"column:rate;not null"`
}

func (ConsumptionRateSample) TableName() string { return "consumption_rate_samples" }

// SampleMessage is an incoming rate sample, decoded and normalised to
// UTC. The SKU may be unknown to the catalogue.
type SampleMessage struct {
	UUID       uuid.UUID
	SampleTime time.Time
	SKU        string
	Workspace  string
	User       *uuid.UUID
	Rate       float64
}
