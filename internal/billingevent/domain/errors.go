package domain

import "errors"

var (
	ErrInvalidInterval    = errors.New("event_start is after event_end")
	ErrInvalidAggregation = errors.New("unknown time aggregation")
)
