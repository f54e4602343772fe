package persistence

import (
	"context"

	"gorm.io/gorm"

	appdocument "github.com/warehouse/backend/internal/application/document"
	"github.com/warehouse/backend/internal/domain/document"
	"github.com/warehouse/backend/internal/domain/inventory"
)

// GormTransactionScope implements TransactionScope using GORM transactions
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction. Every
// repository handed to fn is bound to the same transaction, so a returned
// error rolls back all writes together.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appdocument.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides repositories bound to a transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) DocumentRepo() document.Repository {
	return NewGormDocumentRepository(r.tx)
}

func (r *gormTransactionalRepositories) LedgerRepo() inventory.LedgerRepository {
	return NewGormLedgerRepository(r.tx)
}

func (r *gormTransactionalRepositories) MovementRepo() inventory.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

var _ appdocument.TransactionScope = (*GormTransactionScope)(nil)
var _ appdocument.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
