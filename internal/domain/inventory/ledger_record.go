package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warehouse/backend/internal/domain/shared"
)

// costPrecision is the number of decimal places kept on the average cost
const costPrecision = 4

// LedgerRecord is the stock line aggregate, one row per
// (warehouse, goods, batch). All quantity mutation happens through its
// methods so the quantity = available + locked invariant always holds.
type LedgerRecord struct {
	shared.BaseAggregateRoot
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ledger_warehouse_goods_batch,priority:1"`
	GoodsID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ledger_warehouse_goods_batch,priority:2"`
	BatchNumber string    `gorm:"type:varchar(50);not null;default:'';uniqueIndex:idx_ledger_warehouse_goods_batch,priority:3"`

	Quantity          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AvailableQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LockedQuantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	AverageCost decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LatestCost  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	ProductionDate   *time.Time
	ExpiryDate       *time.Time
	LastInboundDate  *time.Time
	LastOutboundDate *time.Time
}

// TableName returns the table name for GORM
func (LedgerRecord) TableName() string {
	return "ledger_records"
}

// NewLedgerRecord creates an empty stock line for a (warehouse, goods, batch) triple
func NewLedgerRecord(warehouseID, goodsID uuid.UUID, batchNumber string) (*LedgerRecord, error) {
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Warehouse ID cannot be empty")
	}
	if goodsID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Goods ID cannot be empty")
	}

	return &LedgerRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		WarehouseID:       warehouseID,
		GoodsID:           goodsID,
		BatchNumber:       batchNumber,
		Quantity:          decimal.Zero,
		AvailableQuantity: decimal.Zero,
		LockedQuantity:    decimal.Zero,
		AverageCost:       decimal.Zero,
		LatestCost:        decimal.Zero,
	}, nil
}

// Inbound adds stock and recomputes the weighted average cost. When the line
// is empty the average cost becomes the unit cost; otherwise it is the
// quantity-weighted blend of the old basis and the new cost, half-up rounded.
func (r *LedgerRecord) Inbound(quantity, unitCost decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_ARGUMENT", "Inbound quantity must be positive")
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_ARGUMENT", "Unit cost cannot be negative")
	}

	if r.Quantity.IsZero() {
		r.AverageCost = unitCost.Round(costPrecision)
	} else {
		oldValue := r.Quantity.Mul(r.AverageCost)
		newValue := quantity.Mul(unitCost)
		r.AverageCost = oldValue.Add(newValue).Div(r.Quantity.Add(quantity)).Round(costPrecision)
	}

	now := time.Now()
	r.Quantity = r.Quantity.Add(quantity)
	r.AvailableQuantity = r.AvailableQuantity.Add(quantity)
	r.LatestCost = unitCost
	r.LastInboundDate = &now
	r.UpdatedAt = now

	return r.checkInvariant()
}

// Outbound removes stock from the available portion of the line
func (r *LedgerRecord) Outbound(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_ARGUMENT", "Outbound quantity must be positive")
	}
	if quantity.GreaterThan(r.AvailableQuantity) {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Requested %s but only %s available", quantity.String(), r.AvailableQuantity.String()))
	}

	now := time.Now()
	r.Quantity = r.Quantity.Sub(quantity)
	r.AvailableQuantity = r.AvailableQuantity.Sub(quantity)
	r.LastOutboundDate = &now
	r.UpdatedAt = now

	return r.checkInvariant()
}

// LockStock moves stock from the available to the locked portion
func (r *LedgerRecord) LockStock(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_ARGUMENT", "Lock quantity must be positive")
	}
	if quantity.GreaterThan(r.AvailableQuantity) {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Cannot lock %s, only %s available", quantity.String(), r.AvailableQuantity.String()))
	}

	r.AvailableQuantity = r.AvailableQuantity.Sub(quantity)
	r.LockedQuantity = r.LockedQuantity.Add(quantity)
	r.UpdatedAt = time.Now()

	return r.checkInvariant()
}

// UnlockStock moves stock from the locked back to the available portion
func (r *LedgerRecord) UnlockStock(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_ARGUMENT", "Unlock quantity must be positive")
	}
	if quantity.GreaterThan(r.LockedQuantity) {
		return shared.NewDomainError("INVALID_ARGUMENT",
			fmt.Sprintf("Cannot unlock %s, only %s locked", quantity.String(), r.LockedQuantity.String()))
	}

	r.LockedQuantity = r.LockedQuantity.Sub(quantity)
	r.AvailableQuantity = r.AvailableQuantity.Add(quantity)
	r.UpdatedAt = time.Now()

	return r.checkInvariant()
}

// AdjustTo reconciles the line to a physically counted quantity. The signed
// difference is applied as an inbound or outbound of its absolute value at
// the line's current average cost, so the cost basis is unchanged.
func (r *LedgerRecord) AdjustTo(actualQuantity decimal.Decimal) (decimal.Decimal, error) {
	if actualQuantity.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_ARGUMENT", "Actual quantity cannot be negative")
	}

	diff := actualQuantity.Sub(r.Quantity)
	if diff.IsZero() {
		return diff, nil
	}

	if diff.IsPositive() {
		if err := r.Inbound(diff, r.AverageCost); err != nil {
			return decimal.Zero, err
		}
		return diff, nil
	}

	loss := diff.Abs()
	if loss.GreaterThan(r.AvailableQuantity) {
		return decimal.Zero, shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Loss of %s exceeds available quantity %s", loss.String(), r.AvailableQuantity.String()))
	}
	if err := r.Outbound(loss); err != nil {
		return decimal.Zero, err
	}
	return diff, nil
}

// SetBatchDates records production and expiry dates for the batch
func (r *LedgerRecord) SetBatchDates(productionDate, expiryDate *time.Time) error {
	if productionDate != nil && expiryDate != nil && expiryDate.Before(*productionDate) {
		return shared.NewDomainError("INVALID_ARGUMENT", "Expiry date cannot precede production date")
	}
	r.ProductionDate = productionDate
	r.ExpiryDate = expiryDate
	r.UpdatedAt = time.Now()
	return nil
}

// IsLowStock returns true when quantity has fallen to or below the goods'
// minimum stock threshold. A zero or unset threshold disables the check.
func (r *LedgerRecord) IsLowStock(minStock decimal.Decimal) bool {
	if minStock.LessThanOrEqual(decimal.Zero) {
		return false
	}
	return r.Quantity.LessThanOrEqual(minStock)
}

// IsNearExpiry returns true when the batch expires within the given window
func (r *LedgerRecord) IsNearExpiry(window time.Duration) bool {
	if r.ExpiryDate == nil {
		return false
	}
	now := time.Now()
	return r.ExpiryDate.After(now) && r.ExpiryDate.Before(now.Add(window))
}

// IsExpired returns true when the batch expiry date has passed
func (r *LedgerRecord) IsExpired() bool {
	if r.ExpiryDate == nil {
		return false
	}
	return r.ExpiryDate.Before(time.Now())
}

// HasStock returns true when the line holds any quantity
func (r *LedgerRecord) HasStock() bool {
	return r.Quantity.IsPositive()
}

// CanDelete returns true when the line is empty and may be logically removed
func (r *LedgerRecord) CanDelete() bool {
	return r.Quantity.IsZero() && r.LockedQuantity.IsZero()
}

// StockValue returns the line's value at its average cost
func (r *LedgerRecord) StockValue() decimal.Decimal {
	return r.Quantity.Mul(r.AverageCost)
}

// checkInvariant re-asserts the ledger invariant after a mutation. A failure
// here is a logic defect, not a user input problem, and must abort the
// enclosing transaction.
func (r *LedgerRecord) checkInvariant() error {
	if r.Quantity.IsNegative() || r.AvailableQuantity.IsNegative() || r.LockedQuantity.IsNegative() {
		return shared.NewDomainError("INVARIANT_VIOLATION",
			fmt.Sprintf("Negative stock on ledger %s: quantity=%s available=%s locked=%s",
				r.ID, r.Quantity.String(), r.AvailableQuantity.String(), r.LockedQuantity.String()))
	}
	if !r.Quantity.Equal(r.AvailableQuantity.Add(r.LockedQuantity)) {
		return shared.NewDomainError("INVARIANT_VIOLATION",
			fmt.Sprintf("Ledger %s out of balance: quantity=%s available=%s locked=%s",
				r.ID, r.Quantity.String(), r.AvailableQuantity.String(), r.LockedQuantity.String()))
	}
	if r.AverageCost.IsNegative() {
		return shared.NewDomainError("INVARIANT_VIOLATION",
			fmt.Sprintf("Negative average cost on ledger %s: %s", r.ID, r.AverageCost.String()))
	}
	return nil
}
