// Package store is the persistence layer over gorm: the credential store
// plus project, task and token revocation tables.
package store

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// summary narrows a preloaded relation to its id and name.
func summary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name")
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
