// Package seed loads the pricing configuration into the catalogue at
// startup. The file is the operator's source of truth for SKUs and
// price timelines; a malformed file aborts startup.
package seed

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Item struct {
	SKU  string `yaml:"sku"`
	Name string `yaml:"name"`
	Unit string `yaml:"unit"`
}

type Price struct {
	SKU       string      `yaml:"sku"`
	ValidFrom yamlTime    `yaml:"valid_from"`
	Price     yamlDecimal `yaml:"price"`
}

type Config struct {
	Items  []Item  `yaml:"items"`
	Prices []Price `yaml:"prices"`
}

// yamlTime accepts ISO-8601 with or without a zone; a missing zone
// means UTC.
type yamlTime struct {
	time.Time
}

func (t *yamlTime) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed.UTC()
		return nil
	}
	if parsed, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.UTC); err == nil {
		t.Time = parsed
		return nil
	}
	return fmt.Errorf("malformed timestamp %q", s)
}

// yamlDecimal accepts both quoted and bare numeric scalars.
type yamlDecimal struct {
	decimal.Decimal
}

func (d *yamlDecimal) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("malformed price %q", node.Value)
	}
	d.Decimal = parsed
	return nil
}

func LoadFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pricing config: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse pricing config: %w", err)
	}
	for i, item := range cfg.Items {
		if item.SKU == "" {
			return nil, fmt.Errorf("pricing config: items[%d] has no sku", i)
		}
	}
	for i, price := range cfg.Prices {
		if price.SKU == "" {
			return nil, fmt.Errorf("pricing config: prices[%d] has no sku", i)
		}
		if price.ValidFrom.IsZero() {
			return nil, fmt.Errorf("pricing config: prices[%d] has no valid_from", i)
		}
	}
	return &cfg, nil
}
