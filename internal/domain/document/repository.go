package document

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/warehouse/backend/internal/domain/shared"
)

// Repository defines the interface for document persistence
type Repository interface {
	// FindByID finds a document with its lines by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Document, error)

	// FindByIDForUpdate finds a document by ID holding an exclusive row lock
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Document, error)

	// FindByOrderNumber finds a document by its order number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Document, error)

	// FindByStatus finds documents with a specific status
	FindByStatus(ctx context.Context, status ApprovalStatus, filter shared.Filter) ([]Document, error)

	// FindByBusinessType finds documents of a specific business type
	FindByBusinessType(ctx context.Context, businessType BusinessType, filter shared.Filter) ([]Document, error)

	// FindByWarehouse finds documents affecting a warehouse, including
	// transfers where the warehouse is either the source or the target
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]Document, error)

	// FindByApplicant finds documents created by an applicant
	FindByApplicant(ctx context.Context, applicantID uuid.UUID, filter shared.Filter) ([]Document, error)

	// FindPendingApproval finds documents sitting at any approval gate
	FindPendingApproval(ctx context.Context, filter shared.Filter) ([]Document, error)

	// FindByDateRange finds documents applied within a date range
	FindByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]Document, error)

	// FindAll finds documents matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Document, error)

	// Save creates or updates a document with its lines
	Save(ctx context.Context, doc *Document) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, doc *Document) error

	// Delete deletes a document. Only DRAFT documents may be deleted.
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts documents matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts documents with a specific status
	CountByStatus(ctx context.Context, status ApprovalStatus) (int64, error)

	// ExistsByOrderNumber checks if an order number is already taken
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error)
}

// DocumentFilter extends shared.Filter with document-specific filters
type DocumentFilter struct {
	shared.Filter
	WarehouseID  *uuid.UUID
	BusinessType *BusinessType
	Status       *ApprovalStatus
	ApplicantID  *uuid.UUID
	StartDate    *time.Time
	EndDate      *time.Time
}
