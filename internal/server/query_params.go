package server

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	beventdomain "github.com/usageworks/accounting/internal/billingevent/domain"
)

// Callers page with small limits; this is the ceiling, not the page size.
const maxHTTPLimit = 100

type usageParams struct {
	Start       *time.Time
	End         *time.Time
	Limit       int
	After       *uuid.UUID
	Aggregation beventdomain.Aggregation
}

func parseUsageParams(c *gin.Context, allowAggregation bool) (*usageParams, error) {
	params := &usageParams{Limit: maxHTTPLimit}

	start, err := parseTimeParam(c, "start")
	if err != nil {
		return nil, err
	}
	params.Start = start

	end, err := parseTimeParam(c, "end")
	if err != nil {
		return nil, err
	}
	params.End = end

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return nil, fmt.Errorf("%w: bad limit %q", ErrInvalidRequest, raw)
		}
		if limit > maxHTTPLimit {
			limit = maxHTTPLimit
		}
		params.Limit = limit
	}

	if raw := c.Query("after"); raw != "" {
		after, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: bad after %q", ErrInvalidRequest, raw)
		}
		params.After = &after
	}

	if raw := c.Query("time-aggregation"); raw != "" {
		if !allowAggregation {
			return nil, fmt.Errorf("%w: time-aggregation is not supported here", ErrInvalidRequest)
		}
		switch raw {
		case "none":
		case "day":
			params.Aggregation = beventdomain.AggregationDay
		case "month":
			params.Aggregation = beventdomain.AggregationMonth
		default:
			return nil, fmt.Errorf("%w: %q", beventdomain.ErrInvalidAggregation, raw)
		}
	}

	return params, nil
}

func parseTimeParam(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		utc := t.UTC()
		return &utc, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", raw, time.UTC); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("%w: bad %s %q", ErrInvalidRequest, name, raw)
}
