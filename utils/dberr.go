package utils

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsDuplicateKeyErr reports whether err is a unique-constraint violation.
// The storage-level unique index is the source of truth for duplicate-action
// conflicts (like, follow, report), so handlers attempt the insert and treat
// this error as the conflict signal instead of trusting a prior existence
// check. The string fallbacks cover drivers that predate TranslateError.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
