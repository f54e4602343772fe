package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warehouse/backend/internal/domain/inventory"
	"github.com/warehouse/backend/internal/domain/shared"
)

// QueryService answers read-only questions about stock lines and the
// movement journal. All mutation goes through the document lifecycle.
type QueryService struct {
	ledgerRepo   inventory.LedgerRepository
	movementRepo inventory.MovementRepository
	logger       *zap.Logger
}

// NewQueryService creates a new inventory query service
func NewQueryService(
	ledgerRepo inventory.LedgerRepository,
	movementRepo inventory.MovementRepository,
	logger *zap.Logger,
) *QueryService {
	return &QueryService{
		ledgerRepo:   ledgerRepo,
		movementRepo: movementRepo,
		logger:       logger,
	}
}

// GetStockLine returns the stock line for a (warehouse, goods, batch) triple
func (s *QueryService) GetStockLine(ctx context.Context, warehouseID, goodsID uuid.UUID, batchNumber string) (*LedgerResponse, error) {
	record, err := s.ledgerRepo.FindByKey(ctx, warehouseID, goodsID, batchNumber)
	if err != nil {
		return nil, err
	}
	response := ToLedgerResponse(record)
	return &response, nil
}

// ListByWarehouse lists stock lines in a warehouse
func (s *QueryService) ListByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]LedgerResponse, error) {
	records, err := s.ledgerRepo.FindByWarehouse(ctx, warehouseID, filter)
	if err != nil {
		return nil, err
	}
	return toLedgerResponses(records), nil
}

// ListByGoods lists stock lines for a goods across warehouses
func (s *QueryService) ListByGoods(ctx context.Context, goodsID uuid.UUID, filter shared.Filter) ([]LedgerResponse, error) {
	records, err := s.ledgerRepo.FindByGoods(ctx, goodsID, filter)
	if err != nil {
		return nil, err
	}
	return toLedgerResponses(records), nil
}

// ListLowStock lists stock lines at or below the quantity threshold
func (s *QueryService) ListLowStock(ctx context.Context, threshold decimal.Decimal, filter shared.Filter) ([]LedgerResponse, error) {
	if threshold.IsNegative() {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Threshold cannot be negative")
	}
	records, err := s.ledgerRepo.FindBelowThreshold(ctx, threshold, filter)
	if err != nil {
		return nil, err
	}
	return toLedgerResponses(records), nil
}

// ListNearExpiry lists batches that still hold stock and expire within the window
func (s *QueryService) ListNearExpiry(ctx context.Context, window time.Duration, filter shared.Filter) ([]LedgerResponse, error) {
	if window <= 0 {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Expiry window must be positive")
	}
	records, err := s.ledgerRepo.FindExpiringWithin(ctx, window, filter)
	if err != nil {
		return nil, err
	}
	return toLedgerResponses(records), nil
}

// ListExpired lists batches past their expiry date that still hold stock
func (s *QueryService) ListExpired(ctx context.Context, filter shared.Filter) ([]LedgerResponse, error) {
	records, err := s.ledgerRepo.FindExpired(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toLedgerResponses(records), nil
}

// GoodsSummary returns a goods' total quantity across all warehouses
func (s *QueryService) GoodsSummary(ctx context.Context, goodsID uuid.UUID) (*GoodsSummaryResponse, error) {
	total, err := s.ledgerRepo.SumQuantityByGoods(ctx, goodsID)
	if err != nil {
		return nil, err
	}
	return &GoodsSummaryResponse{GoodsID: goodsID, TotalQuantity: total}, nil
}

// WarehouseValue returns a warehouse's total stock value at average cost
func (s *QueryService) WarehouseValue(ctx context.Context, warehouseID uuid.UUID) (*WarehouseValueResponse, error) {
	total, err := s.ledgerRepo.SumValueByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	return &WarehouseValueResponse{WarehouseID: warehouseID, TotalValue: total}, nil
}

// ListMovementsByDocument lists the journal entries a document produced
func (s *QueryService) ListMovementsByDocument(ctx context.Context, documentID uuid.UUID) ([]MovementResponse, error) {
	movements, err := s.movementRepo.FindByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return toMovementResponses(movements), nil
}

// ListMovementsByWarehouse lists journal entries for a warehouse
func (s *QueryService) ListMovementsByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]MovementResponse, error) {
	movements, err := s.movementRepo.FindByWarehouse(ctx, warehouseID, filter)
	if err != nil {
		return nil, err
	}
	return toMovementResponses(movements), nil
}

// ListMovementsByDateRange lists journal entries within a date range
func (s *QueryService) ListMovementsByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]MovementResponse, error) {
	if end.Before(start) {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "End date cannot precede start date")
	}
	movements, err := s.movementRepo.FindByDateRange(ctx, start, end, filter)
	if err != nil {
		return nil, err
	}
	return toMovementResponses(movements), nil
}

func toLedgerResponses(records []inventory.LedgerRecord) []LedgerResponse {
	responses := make([]LedgerResponse, 0, len(records))
	for idx := range records {
		responses = append(responses, ToLedgerResponse(&records[idx]))
	}
	return responses
}

func toMovementResponses(movements []inventory.StockMovement) []MovementResponse {
	responses := make([]MovementResponse, 0, len(movements))
	for idx := range movements {
		responses = append(responses, ToMovementResponse(&movements[idx]))
	}
	return responses
}
