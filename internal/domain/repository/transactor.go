package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor runs fn inside a database transaction, committing when fn
// returns nil.
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}
