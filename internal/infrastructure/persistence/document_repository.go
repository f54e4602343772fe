package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/warehouse/backend/internal/domain/document"
	"github.com/warehouse/backend/internal/domain/shared"
)

// GormDocumentRepository implements document.Repository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByID finds a document with its lines by ID
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	var doc document.Document
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindByIDForUpdate finds a document by ID holding an exclusive row lock.
// The lock serializes concurrent approvals and a cancel racing an execute
// on the same document.
func (r *GormDocumentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	var doc document.Document
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", id).
		Order("created_at asc").
		Find(&doc.Lines).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByOrderNumber finds a document by its order number
func (r *GormDocumentRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*document.Document, error) {
	var doc document.Document
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("order_number = ?", orderNumber).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindByStatus finds documents with a specific status
func (r *GormDocumentRepository) FindByStatus(ctx context.Context, status document.ApprovalStatus, filter shared.Filter) ([]document.Document, error) {
	var docs []document.Document
	query := applyFilter(
		r.db.WithContext(ctx).Model(&document.Document{}).
			Preload("Lines").
			Where("status = ?", status),
		filter,
	)
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// FindByBusinessType finds documents of a specific business type
func (r *GormDocumentRepository) FindByBusinessType(ctx context.Context, businessType document.BusinessType, filter shared.Filter) ([]document.Document, error) {
	var docs []document.Document
	query := applyFilter(
		r.db.WithContext(ctx).Model(&document.Document{}).
			Preload("Lines").
			Where("business_type = ?", businessType),
		filter,
	)
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// FindByWarehouse finds documents affecting a warehouse, including transfers
// where the warehouse is either the source or the target
func (r *GormDocumentRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]document.Document, error) {
	var docs []document.Document
	query := applyFilter(
		r.db.WithContext(ctx).Model(&document.Document{}).
			Preload("Lines").
			Where("warehouse_id = ? OR source_warehouse_id = ? OR target_warehouse_id = ?", warehouseID, warehouseID, warehouseID),
		filter,
	)
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// FindByApplicant finds documents created by an applicant
func (r *GormDocumentRepository) FindByApplicant(ctx context.Context, applicantID uuid.UUID, filter shared.Filter) ([]document.Document, error) {
	var docs []document.Document
	query := applyFilter(
		r.db.WithContext(ctx).Model(&document.Document{}).
			Preload("Lines").
			Where("applicant_id = ?", applicantID),
		filter,
	)
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// FindPendingApproval finds documents sitting at any approval gate
func (r *GormDocumentRepository) FindPendingApproval(ctx context.Context, filter shared.Filter) ([]document.Document, error) {
	var docs []document.Document
	query := applyFilter(
		r.db.WithContext(ctx).Model(&document.Document{}).
			Preload("Lines").
			Where("status IN ?", []string{
				document.StatusPending.String(),
				document.StatusSquadApproved.String(),
				document.StatusTeamApproved.String(),
				document.StatusInProgress.String(),
			}),
		filter,
	)
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// FindByDateRange finds documents applied within a date range
func (r *GormDocumentRepository) FindByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]document.Document, error) {
	var docs []document.Document
	query := applyFilter(
		r.db.WithContext(ctx).Model(&document.Document{}).
			Preload("Lines").
			Where("apply_time >= ? AND apply_time <= ?", start, end),
		filter,
	)
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// FindAll finds documents matching the filter
func (r *GormDocumentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]document.Document, error) {
	var docs []document.Document
	query := applyFilter(
		r.db.WithContext(ctx).Model(&document.Document{}).Preload("Lines"),
		filter,
	)
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// Save creates or updates a document with its lines
func (r *GormDocumentRepository) Save(ctx context.Context, doc *document.Document) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(doc).Error
}

// SaveWithLock saves the header with optimistic locking (checks version) and
// synchronizes the lines: removed lines are deleted, the rest upserted.
func (r *GormDocumentRepository) SaveWithLock(ctx context.Context, doc *document.Document) error {
	result := r.db.WithContext(ctx).
		Model(doc).
		Where("id = ? AND version = ?", doc.ID, doc.Version-1).
		Updates(map[string]interface{}{
			"status":           doc.Status,
			"total_quantity":   doc.TotalQuantity,
			"total_amount":     doc.TotalAmount,
			"planned_date":     doc.PlannedDate,
			"actual_date":      doc.ActualDate,
			"apply_time":       doc.ApplyTime,
			"approver_id":      doc.ApproverID,
			"approval_time":    doc.ApprovalTime,
			"approval_comment": doc.ApprovalComment,
			"cancel_reason":    doc.CancelReason,
			"operator_id":      doc.OperatorID,
			"operation_time":   doc.OperationTime,
			"total_items":      doc.TotalItems,
			"checked_items":    doc.CheckedItems,
			"gain_items":       doc.GainItems,
			"loss_items":       doc.LossItems,
			"gain_amount":      doc.GainAmount,
			"loss_amount":      doc.LossAmount,
			"remark":           doc.Remark,
			"version":          doc.Version,
			"updated_at":       doc.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "Document was modified by another transaction")
	}

	lineIDs := make([]uuid.UUID, 0, len(doc.Lines))
	for idx := range doc.Lines {
		lineIDs = append(lineIDs, doc.Lines[idx].ID)
	}
	deleteQuery := r.db.WithContext(ctx).Where("document_id = ?", doc.ID)
	if len(lineIDs) > 0 {
		deleteQuery = deleteQuery.Where("id NOT IN ?", lineIDs)
	}
	if err := deleteQuery.Delete(&document.DocumentLine{}).Error; err != nil {
		return err
	}
	if len(doc.Lines) > 0 {
		if err := r.db.WithContext(ctx).Save(&doc.Lines).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete deletes a document. Only DRAFT documents may be deleted.
func (r *GormDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND status = ?", id, document.StatusDraft).
			Delete(&document.Document{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Where("document_id = ?", id).Delete(&document.DocumentLine{}).Error
	})
}

// Count counts documents matching the filter
func (r *GormDocumentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&document.Document{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts documents with a specific status
func (r *GormDocumentRepository) CountByStatus(ctx context.Context, status document.ApprovalStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&document.Document{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByOrderNumber checks if an order number is already taken
func (r *GormDocumentRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&document.Document{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ document.Repository = (*GormDocumentRepository)(nil)
