package util

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsDuplicateKeyError checks if the error is a database constraint violation
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// This string check works for Postgres "SQLSTATE 23505"
	return strings.Contains(err.Error(), "duplicate key value") ||
		strings.Contains(err.Error(), "23505")
}

// IsNotFoundError reports a missing row.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
