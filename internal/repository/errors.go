package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsNotFound reports whether err is GORM's "record not found".
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate reports whether err is a unique or primary key violation.
// Connections are opened with TranslateError, so the string checks only
// catch drivers that do not translate.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// conn picks the transaction when one is in flight.
func conn(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

func paginate(page, limit int) (offset, size int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	return (page - 1) * limit, limit
}
