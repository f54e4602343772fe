package document

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warehouse/backend/internal/domain/document"
	"github.com/warehouse/backend/internal/domain/identity"
	"github.com/warehouse/backend/internal/domain/inventory"
	"github.com/warehouse/backend/internal/domain/shared"
)

// DocumentService drives the document lifecycle from creation through the
// approval chain. Every state transition runs in its own transaction that
// locks the document row first, so two concurrent approvals or a cancel
// racing an execute cannot both win.
type DocumentService struct {
	scope   TransactionScope
	numbers OrderNumberGenerator
	logger  *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(scope TransactionScope, numbers OrderNumberGenerator, logger *zap.Logger) *DocumentService {
	return &DocumentService{
		scope:   scope,
		numbers: numbers,
		logger:  logger,
	}
}

// Create creates a new document in DRAFT status with an allocated order number
func (s *DocumentService) Create(ctx context.Context, applicantID uuid.UUID, req CreateDocumentRequest) (*DocumentResponse, error) {
	orderNumber, err := s.numbers.Next(ctx, OrderPrefix(req.BusinessType))
	if err != nil {
		return nil, err
	}

	var doc *document.Document
	if req.BusinessType.IsTransfer() {
		if req.SourceWarehouseID == nil || req.TargetWarehouseID == nil {
			return nil, shared.NewDomainError("INVALID_ARGUMENT", "Transfer requires source and target warehouses")
		}
		doc, err = document.NewTransferDocument(orderNumber, *req.SourceWarehouseID, *req.TargetWarehouseID, applicantID)
	} else {
		if req.WarehouseID == nil {
			return nil, shared.NewDomainError("INVALID_ARGUMENT", "Warehouse ID is required")
		}
		doc, err = document.NewDocument(orderNumber, req.BusinessType, *req.WarehouseID, applicantID)
	}
	if err != nil {
		return nil, err
	}

	if req.PlannedDate != nil {
		if err := doc.SetPlannedDate(*req.PlannedDate); err != nil {
			return nil, err
		}
	}
	doc.SetRemark(req.Remark)

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, lr := range req.Lines {
			if err := s.appendLine(ctx, repos, doc, lr); err != nil {
				return err
			}
		}
		return repos.DocumentRepo().Save(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		zap.String("order_number", doc.OrderNumber),
		zap.String("business_type", doc.BusinessType.String()),
		zap.String("applicant_id", applicantID.String()))

	response := ToDocumentResponse(doc)
	return &response, nil
}

// AddLine adds a line to a DRAFT document
func (s *DocumentService) AddLine(ctx context.Context, documentID uuid.UUID, req LineRequest) (*DocumentResponse, error) {
	return s.mutate(ctx, documentID, func(repos TransactionalRepositories, doc *document.Document) error {
		return s.appendLine(ctx, repos, doc, req)
	})
}

// appendLine adds a request line to a draft document. Stock taking lines
// snapshot the ledger's current quantity and average cost as the book values
// the later count is compared against; goods never stocked at the warehouse
// count against a zero book.
func (s *DocumentService) appendLine(ctx context.Context, repos TransactionalRepositories, doc *document.Document, req LineRequest) error {
	if doc.BusinessType.IsStocktake() {
		book := decimal.Zero
		unitCost := req.UnitPrice
		record, err := repos.LedgerRepo().FindByKey(ctx, *doc.WarehouseID, req.GoodsID, req.BatchNumber)
		switch {
		case err == nil:
			book = record.Quantity
			unitCost = record.AverageCost
		case errors.Is(err, shared.ErrNotFound) || shared.IsCode(err, "NOT_FOUND"):
		default:
			return err
		}
		_, err = doc.AddStocktakeLine(req.GoodsID, req.GoodsName, req.GoodsCode, req.BatchNumber, book, unitCost)
		return err
	}

	line, err := doc.AddLine(req.GoodsID, req.GoodsName, req.GoodsCode, req.BatchNumber, req.Quantity, req.UnitPrice)
	if err != nil {
		return err
	}
	if req.ProductionDate != nil || req.ExpiryDate != nil {
		return line.SetBatchAttributes(req.ProductionDate, req.ExpiryDate)
	}
	return nil
}

// RemoveLine removes a line from a DRAFT document
func (s *DocumentService) RemoveLine(ctx context.Context, documentID, lineID uuid.UUID) (*DocumentResponse, error) {
	return s.mutate(ctx, documentID, func(_ TransactionalRepositories, doc *document.Document) error {
		return doc.RemoveLine(lineID)
	})
}

// Submit moves a DRAFT document into the approval chain
func (s *DocumentService) Submit(ctx context.Context, documentID uuid.UUID) (*DocumentResponse, error) {
	response, err := s.mutate(ctx, documentID, func(_ TransactionalRepositories, doc *document.Document) error {
		return doc.Submit()
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("document submitted", zap.String("order_number", response.OrderNumber))
	return response, nil
}

// Approve advances a document one step along the approval chain. When the
// final gate passes on a transfer, the planned quantities are locked on the
// source warehouse's stock lines in the same transaction.
func (s *DocumentService) Approve(ctx context.Context, documentID, approverID uuid.UUID, role identity.Role, comment string) (*DocumentResponse, error) {
	var response DocumentResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		doc, err := repos.DocumentRepo().FindByIDForUpdate(ctx, documentID)
		if err != nil {
			return err
		}

		if err := doc.Approve(approverID, role, comment); err != nil {
			return err
		}

		if doc.Status == document.StatusApproved && doc.BusinessType.IsTransfer() {
			if err := s.lockTransferSource(ctx, repos, doc, approverID); err != nil {
				return err
			}
		}

		if err := repos.DocumentRepo().SaveWithLock(ctx, doc); err != nil {
			return err
		}

		response = ToDocumentResponse(doc)
		return nil
	})
	if err != nil {
		s.logger.Warn("approval failed",
			zap.String("document_id", documentID.String()),
			zap.String("approver_id", approverID.String()),
			zap.String("role", role.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("document approved",
		zap.String("order_number", response.OrderNumber),
		zap.String("status", response.Status.String()),
		zap.String("approver_id", approverID.String()),
		zap.String("role", role.String()))

	return &response, nil
}

// Reject moves a document at any approval gate to REJECTED
func (s *DocumentService) Reject(ctx context.Context, documentID, approverID uuid.UUID, role identity.Role, comment string) (*DocumentResponse, error) {
	var response DocumentResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		doc, err := repos.DocumentRepo().FindByIDForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if err := doc.Reject(approverID, role, comment); err != nil {
			return err
		}
		if err := repos.DocumentRepo().SaveWithLock(ctx, doc); err != nil {
			return err
		}
		response = ToDocumentResponse(doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document rejected",
		zap.String("order_number", response.OrderNumber),
		zap.String("approver_id", approverID.String()))

	return &response, nil
}

// Cancel moves a document to CANCELLED. Cancelling an APPROVED transfer
// releases the stock locked on the source warehouse at final approval.
func (s *DocumentService) Cancel(ctx context.Context, documentID uuid.UUID, reason string) (*DocumentResponse, error) {
	var response DocumentResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		doc, err := repos.DocumentRepo().FindByIDForUpdate(ctx, documentID)
		if err != nil {
			return err
		}

		wasApproved := doc.Status == document.StatusApproved

		if err := doc.Cancel(reason); err != nil {
			return err
		}

		if wasApproved && doc.BusinessType.IsTransfer() {
			if err := s.unlockTransferSource(ctx, repos, doc); err != nil {
				return err
			}
		}

		if err := repos.DocumentRepo().SaveWithLock(ctx, doc); err != nil {
			return err
		}
		response = ToDocumentResponse(doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document cancelled",
		zap.String("order_number", response.OrderNumber),
		zap.String("reason", reason))

	return &response, nil
}

// RecordCount records a physically counted quantity on a stocktake line
func (s *DocumentService) RecordCount(ctx context.Context, documentID uuid.UUID, req RecordCountRequest) (*DocumentResponse, error) {
	return s.mutate(ctx, documentID, func(_ TransactionalRepositories, doc *document.Document) error {
		return doc.RecordCount(req.LineID, req.ActualQuantity)
	})
}

// GetByID retrieves a document by its ID
func (s *DocumentService) GetByID(ctx context.Context, documentID uuid.UUID) (*DocumentResponse, error) {
	var response DocumentResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		doc, err := repos.DocumentRepo().FindByID(ctx, documentID)
		if err != nil {
			return err
		}
		response = ToDocumentResponse(doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetByOrderNumber retrieves a document by its order number
func (s *DocumentService) GetByOrderNumber(ctx context.Context, orderNumber string) (*DocumentResponse, error) {
	var response DocumentResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		doc, err := repos.DocumentRepo().FindByOrderNumber(ctx, orderNumber)
		if err != nil {
			return err
		}
		response = ToDocumentResponse(doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// List retrieves documents matching the filter with pagination
func (s *DocumentService) List(ctx context.Context, filter ListFilter) ([]DocumentResponse, int64, error) {
	domainFilter := s.toDomainFilter(filter)

	var responses []DocumentResponse
	var total int64
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		docs, err := repos.DocumentRepo().FindAll(ctx, domainFilter)
		if err != nil {
			return err
		}
		total, err = repos.DocumentRepo().Count(ctx, domainFilter)
		if err != nil {
			return err
		}
		responses = make([]DocumentResponse, 0, len(docs))
		for idx := range docs {
			responses = append(responses, ToDocumentResponse(&docs[idx]))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// ListPendingApproval retrieves documents sitting at any approval gate
func (s *DocumentService) ListPendingApproval(ctx context.Context, filter ListFilter) ([]DocumentResponse, error) {
	domainFilter := s.toDomainFilter(filter)

	var responses []DocumentResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		docs, err := repos.DocumentRepo().FindPendingApproval(ctx, domainFilter)
		if err != nil {
			return err
		}
		responses = make([]DocumentResponse, 0, len(docs))
		for idx := range docs {
			responses = append(responses, ToDocumentResponse(&docs[idx]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// mutate runs a document mutation in a transaction with the row locked
func (s *DocumentService) mutate(ctx context.Context, documentID uuid.UUID, fn func(repos TransactionalRepositories, doc *document.Document) error) (*DocumentResponse, error) {
	var response DocumentResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		doc, err := repos.DocumentRepo().FindByIDForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if err := fn(repos, doc); err != nil {
			return err
		}
		if err := repos.DocumentRepo().SaveWithLock(ctx, doc); err != nil {
			return err
		}
		response = ToDocumentResponse(doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// lockTransferSource reserves the planned quantities on the source
// warehouse's stock lines so a later outbound cannot consume them.
func (s *DocumentService) lockTransferSource(ctx context.Context, repos TransactionalRepositories, doc *document.Document, operatorID uuid.UUID) error {
	for idx := range doc.Lines {
		line := &doc.Lines[idx]

		record, err := repos.LedgerRepo().FindByKeyForUpdate(ctx, *doc.SourceWarehouseID, line.GoodsID, line.BatchNumber)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) || shared.IsCode(err, "NOT_FOUND") {
				return shared.NewDomainError("INSUFFICIENT_STOCK", "No stock line for goods "+line.GoodsName)
			}
			return err
		}

		before := record.Quantity
		if err := record.LockStock(line.PlannedQuantity); err != nil {
			return err
		}
		if err := repos.LedgerRepo().SaveWithLock(ctx, record); err != nil {
			return err
		}

		movement, err := inventory.NewStockMovement(record, inventory.MovementLock, line.PlannedQuantity, record.AverageCost, before)
		if err != nil {
			return err
		}
		movement.WithDocument(doc.ID, doc.OrderNumber, operatorID)
		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return err
		}
	}
	return nil
}

// unlockTransferSource releases the reservations taken at final approval
func (s *DocumentService) unlockTransferSource(ctx context.Context, repos TransactionalRepositories, doc *document.Document) error {
	for idx := range doc.Lines {
		line := &doc.Lines[idx]

		record, err := repos.LedgerRepo().FindByKeyForUpdate(ctx, *doc.SourceWarehouseID, line.GoodsID, line.BatchNumber)
		if err != nil {
			return err
		}

		before := record.Quantity
		if err := record.UnlockStock(line.PlannedQuantity); err != nil {
			return err
		}
		if err := repos.LedgerRepo().SaveWithLock(ctx, record); err != nil {
			return err
		}

		movement, err := inventory.NewStockMovement(record, inventory.MovementUnlock, line.PlannedQuantity, record.AverageCost, before)
		if err != nil {
			return err
		}
		movement.WithDocument(doc.ID, doc.OrderNumber, doc.ApplicantID)
		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return err
		}
	}
	return nil
}

func (s *DocumentService) toDomainFilter(filter ListFilter) shared.Filter {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search

	if filter.Status != nil {
		domainFilter.Filters["status"] = filter.Status.String()
	}
	if filter.BusinessType != nil {
		domainFilter.Filters["business_type"] = filter.BusinessType.String()
	}
	if filter.WarehouseID != nil {
		domainFilter.Filters["warehouse_id"] = *filter.WarehouseID
	}
	if filter.ApplicantID != nil {
		domainFilter.Filters["applicant_id"] = *filter.ApplicantID
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	return domainFilter
}
