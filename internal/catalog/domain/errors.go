package domain

import "errors"

var (
	ErrNotFound        = errors.New("billing item not found")
	ErrInvalidSKU      = errors.New("invalid sku")
	ErrUnknownSKU      = errors.New("unknown sku")
	ErrPriceOutOfOrder = errors.New("price predates the latest configured price")
)
