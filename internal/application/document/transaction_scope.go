package document

import (
	"context"

	"github.com/warehouse/backend/internal/domain/document"
	"github.com/warehouse/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the document and ledger
// repositories. When a function runs within a scope, every repository
// operation joins the same database transaction and commits or rolls back
// atomically. This is the unit of work behind every state transition and
// every execution.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a
// transaction. All repositories returned share the same underlying database
// transaction.
type TransactionalRepositories interface {
	// DocumentRepo returns the document repository scoped to the current transaction
	DocumentRepo() document.Repository
	// LedgerRepo returns the stock line repository scoped to the current transaction
	LedgerRepo() inventory.LedgerRepository
	// MovementRepo returns the movement journal repository scoped to the current transaction
	MovementRepo() inventory.MovementRepository
}

// NoOpTransactionScope is a transaction scope without real transactions.
// Useful for tests.
type NoOpTransactionScope struct {
	documentRepo document.Repository
	ledgerRepo   inventory.LedgerRepository
	movementRepo inventory.MovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	documentRepo document.Repository,
	ledgerRepo inventory.LedgerRepository,
	movementRepo inventory.MovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		documentRepo: documentRepo,
		ledgerRepo:   ledgerRepo,
		movementRepo: movementRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// DocumentRepo returns the document repository
func (s *NoOpTransactionScope) DocumentRepo() document.Repository {
	return s.documentRepo
}

// LedgerRepo returns the stock line repository
func (s *NoOpTransactionScope) LedgerRepo() inventory.LedgerRepository {
	return s.ledgerRepo
}

// MovementRepo returns the movement journal repository
func (s *NoOpTransactionScope) MovementRepo() inventory.MovementRepository {
	return s.movementRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
