package persistence

import (
	"errors"

	"github.com/bizops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// notFound maps gorm's record-not-found to err, passing other errors through
func notFound(err error, nf *shared.DomainError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nf
	}
	return err
}
