package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	beventdomain "github.com/usageworks/accounting/internal/billingevent/domain"
	ratedomain "github.com/usageworks/accounting/internal/ratesample/domain"
)

// timestamp accepts ISO-8601 with or without a zone. A missing zone
// means UTC; everything is normalised to UTC.
type timestamp struct {
	time.Time
}

func (t *timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := parseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("malformed timestamp %q", s)
}

func parseUUID(field, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed uuid in %s: %w", field, err)
	}
	return id, nil
}

func parseOptionalUUID(field string, s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := parseUUID(field, *s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// decodeStrict rejects unknown fields so schema drift surfaces as a
// permanent error instead of silently dropped data.
func decodeStrict(payload []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

type eventPayload struct {
	UUID       string    `json:"uuid"`
	EventStart timestamp `json:"event_start"`
	EventEnd   timestamp `json:"event_end"`
	SKU        string    `json:"sku"`
	Workspace  string    `json:"workspace"`
	User       *string   `json:"user"`
	Quantity   float64   `json:"quantity"`
}

func decodeEventMessage(payload []byte) (*beventdomain.EventMessage, error) {
	var raw eventPayload
	if err := decodeStrict(payload, &raw); err != nil {
		return nil, Permanent(err)
	}
	id, err := parseUUID("uuid", raw.UUID)
	if err != nil {
		return nil, Permanent(err)
	}
	user, err := parseOptionalUUID("user", raw.User)
	if err != nil {
		return nil, Permanent(err)
	}
	if raw.SKU == "" {
		return nil, Permanent(fmt.Errorf("billing event %s has no sku", id))
	}
	if raw.Workspace == "" {
		return nil, Permanent(fmt.Errorf("billing event %s has no workspace", id))
	}
	// An absent key never reaches the timestamp unmarshaler, so it shows
	// up here as the zero time.
	if raw.EventStart.IsZero() || raw.EventEnd.IsZero() {
		return nil, Permanent(fmt.Errorf("billing event %s has no event interval", id))
	}
	return &beventdomain.EventMessage{
		UUID:       id,
		EventStart: raw.EventStart.Time,
		EventEnd:   raw.EventEnd.Time,
		SKU:        raw.SKU,
		Workspace:  raw.Workspace,
		User:       user,
		Quantity:   raw.Quantity,
	}, nil
}

// workspaceSettingsPayload carries more fields than we care about, so
// unknown keys are tolerated here.
type workspaceSettingsPayload struct {
	Name    string `json:"name"`
	Account string `json:"account"`
}

type workspaceMapping struct {
	Workspace string
	Account   uuid.UUID
}

func decodeWorkspaceSettings(payload []byte) (*workspaceMapping, error) {
	var raw workspaceSettingsPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, Permanent(err)
	}
	account, err := parseUUID("account", raw.Account)
	if err != nil {
		return nil, Permanent(err)
	}
	if raw.Name == "" {
		return nil, Permanent(fmt.Errorf("workspace settings for account %s have no name", account))
	}
	return &workspaceMapping{Workspace: raw.Name, Account: account}, nil
}

type samplePayload struct {
	UUID       string    `json:"uuid"`
	SampleTime timestamp `json:"sample_time"`
	SKU        string    `json:"sku"`
	Workspace  string    `json:"workspace"`
	User       *string   `json:"user"`
	Rate       float64   `json:"rate"`
}

func decodeSampleMessage(payload []byte) (*ratedomain.SampleMessage, error) {
	var raw samplePayload
	if err := decodeStrict(payload, &raw); err != nil {
		return nil, Permanent(err)
	}
	id, err := parseUUID("uuid", raw.UUID)
	if err != nil {
		return nil, Permanent(err)
	}
	user, err := parseOptionalUUID("user", raw.User)
	if err != nil {
		return nil, Permanent(err)
	}
	if raw.SKU == "" {
		return nil, Permanent(fmt.Errorf("rate sample %s has no sku", id))
	}
	if raw.Workspace == "" {
		return nil, Permanent(fmt.Errorf("rate sample %s has no workspace", id))
	}
	// A zero sample_time would drag the estimator frontier back to year 1
	// and trigger millions of hourly windows, so it is dropped here.
	if raw.SampleTime.IsZero() {
		return nil, Permanent(fmt.Errorf("rate sample %s has no sample_time", id))
	}
	return &ratedomain.SampleMessage{
		UUID:       id,
		SampleTime: raw.SampleTime.Time,
		SKU:        raw.SKU,
		Workspace:  raw.Workspace,
		User:       user,
		Rate:       raw.Rate,
	}, nil
}
