package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned instead of gorm.ErrRecordNotFound so callers do not
// depend on gorm.
var ErrNotFound = errors.New("record not found")

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
