package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warehouse/backend/internal/domain/inventory"
)

// LedgerResponse is the API shape of a stock line
type LedgerResponse struct {
	ID                uuid.UUID       `json:"id"`
	WarehouseID       uuid.UUID       `json:"warehouse_id"`
	GoodsID           uuid.UUID       `json:"goods_id"`
	BatchNumber       string          `json:"batch_number"`
	Quantity          decimal.Decimal `json:"quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	LockedQuantity    decimal.Decimal `json:"locked_quantity"`
	AverageCost       decimal.Decimal `json:"average_cost"`
	LatestCost        decimal.Decimal `json:"latest_cost"`
	StockValue        decimal.Decimal `json:"stock_value"`
	ProductionDate    *time.Time      `json:"production_date,omitempty"`
	ExpiryDate        *time.Time      `json:"expiry_date,omitempty"`
	LastInboundDate   *time.Time      `json:"last_inbound_date,omitempty"`
	LastOutboundDate  *time.Time      `json:"last_outbound_date,omitempty"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// MovementResponse is the API shape of a movement journal entry
type MovementResponse struct {
	ID             uuid.UUID              `json:"id"`
	LedgerRecordID uuid.UUID              `json:"ledger_record_id"`
	WarehouseID    uuid.UUID              `json:"warehouse_id"`
	GoodsID        uuid.UUID              `json:"goods_id"`
	BatchNumber    string                 `json:"batch_number"`
	MovementType   inventory.MovementType `json:"movement_type"`
	Quantity       decimal.Decimal        `json:"quantity"`
	UnitCost       decimal.Decimal        `json:"unit_cost"`
	QuantityBefore decimal.Decimal        `json:"quantity_before"`
	QuantityAfter  decimal.Decimal        `json:"quantity_after"`
	DocumentID     *uuid.UUID             `json:"document_id,omitempty"`
	OrderNumber    string                 `json:"order_number,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// GoodsSummaryResponse aggregates a goods' stock across warehouses
type GoodsSummaryResponse struct {
	GoodsID       uuid.UUID       `json:"goods_id"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
}

// WarehouseValueResponse is the total stock value of a warehouse at average cost
type WarehouseValueResponse struct {
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	TotalValue  decimal.Decimal `json:"total_value"`
}

// ToLedgerResponse converts a ledger record to its API shape
func ToLedgerResponse(record *inventory.LedgerRecord) LedgerResponse {
	return LedgerResponse{
		ID:                record.ID,
		WarehouseID:       record.WarehouseID,
		GoodsID:           record.GoodsID,
		BatchNumber:       record.BatchNumber,
		Quantity:          record.Quantity,
		AvailableQuantity: record.AvailableQuantity,
		LockedQuantity:    record.LockedQuantity,
		AverageCost:       record.AverageCost,
		LatestCost:        record.LatestCost,
		StockValue:        record.StockValue(),
		ProductionDate:    record.ProductionDate,
		ExpiryDate:        record.ExpiryDate,
		LastInboundDate:   record.LastInboundDate,
		LastOutboundDate:  record.LastOutboundDate,
		UpdatedAt:         record.UpdatedAt,
	}
}

// ToMovementResponse converts a journal entry to its API shape
func ToMovementResponse(movement *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:             movement.ID,
		LedgerRecordID: movement.LedgerRecordID,
		WarehouseID:    movement.WarehouseID,
		GoodsID:        movement.GoodsID,
		BatchNumber:    movement.BatchNumber,
		MovementType:   movement.MovementType,
		Quantity:       movement.Quantity,
		UnitCost:       movement.UnitCost,
		QuantityBefore: movement.QuantityBefore,
		QuantityAfter:  movement.QuantityAfter,
		DocumentID:     movement.DocumentID,
		OrderNumber:    movement.OrderNumber,
		CreatedAt:      movement.CreatedAt,
	}
}
