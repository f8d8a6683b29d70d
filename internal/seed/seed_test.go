package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
items:
  - sku: wfcpu
    name: Workflow CPU seconds
    unit: s
  - sku: storage
    name: Storage
    unit: GB-months
prices:
  - sku: wfcpu
    valid_from: "2025-01-01T00:00:00"
    price: "12.34"
  - sku: storage
    valid_from: "2025-02-01T00:00:00Z"
    price: 0.5
`))
	assert.NoError(t, err)
	assert.Len(t, cfg.Items, 2)
	if assert.Len(t, cfg.Prices, 2) {
		assert.True(t, cfg.Prices[0].ValidFrom.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, "12.34", cfg.Prices[0].Price.String())
		assert.Equal(t, "0.5", cfg.Prices[1].Price.String())
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse([]byte(""))
	assert.NoError(t, err)
	assert.Len(t, cfg.Items, 0)
	assert.Len(t, cfg.Prices, 0)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(`
items:
  - sku: wfcpu
    colour: blue
`))
	assert.Error(t, err)
}

func TestParseRejectsBadValues(t *testing.T) {
	_, err := Parse([]byte("items:\n  - name: no sku\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("prices:\n  - sku: s\n    valid_from: \"whenever\"\n    price: 1\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("prices:\n  - sku: s\n    valid_from: \"2025-01-01T00:00:00Z\"\n    price: cheap\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("- just\n- a\n- list\n"))
	assert.Error(t, err)
}
