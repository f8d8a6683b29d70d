package db

import (
	"context"
	"errors"
	"net"
	"strings"

	"gorm.io/gorm"
)

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// PostgreSQL (error code 23505)
	if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
		return true
	}

	// SQLite (error code 2067)
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}

	return false
}

// IsIntegrityErr reports whether err is a foreign-key or not-null violation.
// An insert that resolves a SKU through a scalar subquery hits one of these
// when the referenced billing item does not exist.
func IsIntegrityErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	msg := err.Error()

	// PostgreSQL (error codes 23502, 23503)
	if strings.Contains(msg, "violates not-null constraint") ||
		strings.Contains(msg, "violates foreign key constraint") {
		return true
	}

	// SQLite
	if strings.Contains(msg, "NOT NULL constraint failed") ||
		strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return true
	}

	return false
}

// IsTransientErr reports whether err looks like an operational problem
// (connectivity, timeout, cancellation) rather than a data problem. Callers
// treat transient errors as retryable.
func IsTransientErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := err.Error()
	for _, fragment := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		// PostgreSQL class 08 (connection exception) and 57P (shutdown)
		"SQLSTATE 08",
		"SQLSTATE 57P",
		"the database system is starting up",
		"too many connections",
	} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}

	return false
}
