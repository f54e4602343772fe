package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warehouse/backend/internal/domain/shared"
)

// MovementType classifies an entry in the stock movement journal
type MovementType string

const (
	MovementInbound    MovementType = "INBOUND"
	MovementOutbound   MovementType = "OUTBOUND"
	MovementLock       MovementType = "LOCK"
	MovementUnlock     MovementType = "UNLOCK"
	MovementAdjustment MovementType = "ADJUSTMENT"
)

// IsValid checks if the type is a known MovementType
func (t MovementType) IsValid() bool {
	switch t {
	case MovementInbound, MovementOutbound, MovementLock, MovementUnlock, MovementAdjustment:
		return true
	}
	return false
}

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// StockMovement is one append-only journal entry recording a single ledger
// mutation together with the document that caused it. Entries are never
// updated or deleted.
type StockMovement struct {
	ID             uuid.UUID    `gorm:"type:uuid;primary_key"`
	LedgerRecordID uuid.UUID    `gorm:"type:uuid;not null;index"`
	WarehouseID    uuid.UUID    `gorm:"type:uuid;not null;index"`
	GoodsID        uuid.UUID    `gorm:"type:uuid;not null;index"`
	BatchNumber    string       `gorm:"type:varchar(50);not null;default:''"`
	MovementType   MovementType `gorm:"type:varchar(20);not null;index"`

	// Quantity is signed: positive for inbound and gain adjustments,
	// negative for outbound and loss adjustments.
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QuantityBefore decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityAfter  decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	DocumentID  *uuid.UUID `gorm:"type:uuid;index"`
	OrderNumber string     `gorm:"type:varchar(50);not null;default:''"`
	OperatorID  *uuid.UUID `gorm:"type:uuid"`

	Remark    string    `gorm:"type:varchar(500)"`
	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a journal entry for a ledger mutation
func NewStockMovement(record *LedgerRecord, movementType MovementType, quantity, unitCost, quantityBefore decimal.Decimal) (*StockMovement, error) {
	if record == nil {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Ledger record cannot be nil")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Unknown movement type")
	}
	if quantity.IsZero() {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Movement quantity cannot be zero")
	}

	return &StockMovement{
		ID:             uuid.New(),
		LedgerRecordID: record.ID,
		WarehouseID:    record.WarehouseID,
		GoodsID:        record.GoodsID,
		BatchNumber:    record.BatchNumber,
		MovementType:   movementType,
		Quantity:       quantity,
		UnitCost:       unitCost,
		QuantityBefore: quantityBefore,
		QuantityAfter:  record.Quantity,
		CreatedAt:      time.Now(),
	}, nil
}

// WithDocument attaches the causing document to the journal entry
func (m *StockMovement) WithDocument(documentID uuid.UUID, orderNumber string, operatorID uuid.UUID) *StockMovement {
	m.DocumentID = &documentID
	m.OrderNumber = orderNumber
	m.OperatorID = &operatorID
	return m
}
