package document

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warehouse/backend/internal/domain/identity"
	"github.com/warehouse/backend/internal/domain/shared"
)

// DocumentLine represents a line item on a business document
type DocumentLine struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	DocumentID  uuid.UUID `gorm:"type:uuid;not null;index"`
	GoodsID     uuid.UUID `gorm:"type:uuid;not null"`
	GoodsName   string    `gorm:"type:varchar(200);not null"`
	GoodsCode   string    `gorm:"type:varchar(50);not null"`
	BatchNumber string    `gorm:"type:varchar(50);not null;default:''"`

	PlannedQuantity decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	ActualQuantity  *decimal.Decimal `gorm:"type:decimal(18,4)"` // nil until recorded
	UnitPrice       decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Amount          decimal.Decimal  `gorm:"type:decimal(18,4);not null"` // PlannedQuantity * UnitPrice

	// Batch attributes, recorded on inbound lines
	ProductionDate *time.Time
	ExpiryDate     *time.Time

	// Stock taking fields
	BookQuantity       *decimal.Decimal `gorm:"type:decimal(18,4)"`
	DifferenceQuantity *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Adjusted           bool             `gorm:"not null;default:false"`

	Remark    string    `gorm:"type:varchar(500)"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentLine) TableName() string {
	return "document_lines"
}

// NewDocumentLine creates a new document line
func NewDocumentLine(documentID, goodsID uuid.UUID, goodsName, goodsCode, batchNumber string, plannedQuantity, unitPrice decimal.Decimal) (*DocumentLine, error) {
	if goodsID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Goods ID cannot be empty")
	}
	if goodsName == "" {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Goods name cannot be empty")
	}
	if plannedQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Planned quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Unit price cannot be negative")
	}

	now := time.Now()
	return &DocumentLine{
		ID:              uuid.New(),
		DocumentID:      documentID,
		GoodsID:         goodsID,
		GoodsName:       goodsName,
		GoodsCode:       goodsCode,
		BatchNumber:     batchNumber,
		PlannedQuantity: plannedQuantity,
		UnitPrice:       unitPrice,
		Amount:          plannedQuantity.Mul(unitPrice),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// UpdateQuantity updates the planned quantity and recalculates the amount
func (l *DocumentLine) UpdateQuantity(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_ARGUMENT", "Planned quantity must be positive")
	}
	l.PlannedQuantity = quantity
	l.Amount = quantity.Mul(l.UnitPrice)
	l.UpdatedAt = time.Now()
	return nil
}

// UpdateUnitPrice updates the unit price and recalculates the amount
func (l *DocumentLine) UpdateUnitPrice(unitPrice decimal.Decimal) error {
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_ARGUMENT", "Unit price cannot be negative")
	}
	l.UnitPrice = unitPrice
	l.Amount = l.PlannedQuantity.Mul(unitPrice)
	l.UpdatedAt = time.Now()
	return nil
}

// SetBatchAttributes records production and expiry dates for an inbound line
func (l *DocumentLine) SetBatchAttributes(productionDate, expiryDate *time.Time) error {
	if productionDate != nil && expiryDate != nil && expiryDate.Before(*productionDate) {
		return shared.NewDomainError("INVALID_ARGUMENT", "Expiry date cannot precede production date")
	}
	l.ProductionDate = productionDate
	l.ExpiryDate = expiryDate
	l.UpdatedAt = time.Now()
	return nil
}

// EffectiveQuantity returns the quantity the execution engine applies to the
// ledger: the recorded actual count when present, the planned quantity otherwise.
func (l *DocumentLine) EffectiveQuantity() decimal.Decimal {
	if l.ActualQuantity != nil {
		return *l.ActualQuantity
	}
	return l.PlannedQuantity
}

// IsCounted returns true once an actual count has been recorded on the line
func (l *DocumentLine) IsCounted() bool {
	return l.ActualQuantity != nil
}

// Document is the aggregate root for all warehouse business documents:
// receipts, issues, inter-warehouse transfers and stock taking orders share
// one shape and differ only in business type and line semantics.
type Document struct {
	shared.BaseAggregateRoot
	OrderNumber  string         `gorm:"type:varchar(50);not null;uniqueIndex"`
	BusinessType BusinessType   `gorm:"type:varchar(30);not null;index"`
	Status       ApprovalStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`

	// WarehouseID holds the single affected warehouse for inbound, outbound
	// and stocktake documents. Transfers use the source/target pair instead.
	WarehouseID       *uuid.UUID `gorm:"type:uuid;index"`
	SourceWarehouseID *uuid.UUID `gorm:"type:uuid;index"`
	TargetWarehouseID *uuid.UUID `gorm:"type:uuid;index"`

	Lines []DocumentLine `gorm:"foreignKey:DocumentID;references:ID"`

	TotalQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	PlannedDate *time.Time
	ActualDate  *time.Time

	ApplicantID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	ApplyTime       *time.Time
	ApproverID      *uuid.UUID `gorm:"type:uuid"`
	ApprovalTime    *time.Time
	ApprovalComment string     `gorm:"type:varchar(500)"`
	CancelReason    string     `gorm:"type:varchar(500)"`
	OperatorID      *uuid.UUID `gorm:"type:uuid"`
	OperationTime   *time.Time

	// Stock taking statistics, derived from the lines
	TotalItems   int             `gorm:"not null;default:0"`
	CheckedItems int             `gorm:"not null;default:0"`
	GainItems    int             `gorm:"not null;default:0"`
	LossItems    int             `gorm:"not null;default:0"`
	GainAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LossAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	Remark string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Document) TableName() string {
	return "documents"
}

// NewDocument creates a new single-warehouse document in DRAFT status
func NewDocument(orderNumber string, businessType BusinessType, warehouseID, applicantID uuid.UUID) (*Document, error) {
	if err := validateHeader(orderNumber, businessType, applicantID); err != nil {
		return nil, err
	}
	if businessType.IsTransfer() {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Transfer documents require a source and target warehouse")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Warehouse ID cannot be empty")
	}

	return &Document{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		BusinessType:      businessType,
		Status:            StatusDraft,
		WarehouseID:       &warehouseID,
		Lines:             make([]DocumentLine, 0),
		TotalQuantity:     decimal.Zero,
		TotalAmount:       decimal.Zero,
		GainAmount:        decimal.Zero,
		LossAmount:        decimal.Zero,
		ApplicantID:       applicantID,
	}, nil
}

// NewTransferDocument creates a new inter-warehouse transfer document in DRAFT status
func NewTransferDocument(orderNumber string, sourceWarehouseID, targetWarehouseID, applicantID uuid.UUID) (*Document, error) {
	if err := validateHeader(orderNumber, BusinessWarehouseTransfer, applicantID); err != nil {
		return nil, err
	}
	if sourceWarehouseID == uuid.Nil || targetWarehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Source and target warehouse IDs cannot be empty")
	}
	if sourceWarehouseID == targetWarehouseID {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Source and target warehouses must differ")
	}

	return &Document{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		BusinessType:      BusinessWarehouseTransfer,
		Status:            StatusDraft,
		SourceWarehouseID: &sourceWarehouseID,
		TargetWarehouseID: &targetWarehouseID,
		Lines:             make([]DocumentLine, 0),
		TotalQuantity:     decimal.Zero,
		TotalAmount:       decimal.Zero,
		GainAmount:        decimal.Zero,
		LossAmount:        decimal.Zero,
		ApplicantID:       applicantID,
	}, nil
}

func validateHeader(orderNumber string, businessType BusinessType, applicantID uuid.UUID) error {
	if orderNumber == "" {
		return shared.NewDomainError("INVALID_ARGUMENT", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return shared.NewDomainError("INVALID_ARGUMENT", "Order number cannot exceed 50 characters")
	}
	if !businessType.IsValid() {
		return shared.NewDomainError("INVALID_ARGUMENT", fmt.Sprintf("Unknown business type %s", businessType))
	}
	if applicantID == uuid.Nil {
		return shared.NewDomainError("INVALID_ARGUMENT", "Applicant ID cannot be empty")
	}
	return nil
}

// AddLine adds a line to the document. Only allowed in DRAFT status.
func (d *Document) AddLine(goodsID uuid.UUID, goodsName, goodsCode, batchNumber string, plannedQuantity, unitPrice decimal.Decimal) (*DocumentLine, error) {
	if d.Status != StatusDraft {
		return nil, shared.NewDomainError("INVALID_TRANSITION", "Cannot add lines to a non-draft document")
	}

	line, err := NewDocumentLine(d.ID, goodsID, goodsName, goodsCode, batchNumber, plannedQuantity, unitPrice)
	if err != nil {
		return nil, err
	}

	d.Lines = append(d.Lines, *line)
	d.recalculateTotal()
	d.touch()
	d.IncrementVersion()

	return &d.Lines[len(d.Lines)-1], nil
}

// AddStocktakeLine adds a line carrying the current book quantity for a stock
// taking document. Only allowed in DRAFT status.
func (d *Document) AddStocktakeLine(goodsID uuid.UUID, goodsName, goodsCode, batchNumber string, bookQuantity, unitCost decimal.Decimal) (*DocumentLine, error) {
	if !d.BusinessType.IsStocktake() {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Book quantity lines only apply to stock taking documents")
	}
	if d.Status != StatusDraft {
		return nil, shared.NewDomainError("INVALID_TRANSITION", "Cannot add lines to a non-draft document")
	}
	if bookQuantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Book quantity cannot be negative")
	}
	if goodsID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Goods ID cannot be empty")
	}

	book := bookQuantity
	now := time.Now()
	line := DocumentLine{
		ID:              uuid.New(),
		DocumentID:      d.ID,
		GoodsID:         goodsID,
		GoodsName:       goodsName,
		GoodsCode:       goodsCode,
		BatchNumber:     batchNumber,
		PlannedQuantity: bookQuantity,
		UnitPrice:       unitCost,
		Amount:          bookQuantity.Mul(unitCost),
		BookQuantity:    &book,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	d.Lines = append(d.Lines, line)
	d.recalculateTotal()
	d.RecalculateStatistics()
	d.touch()
	d.IncrementVersion()

	return &d.Lines[len(d.Lines)-1], nil
}

// RemoveLine removes a line from the document. Only allowed in DRAFT status.
func (d *Document) RemoveLine(lineID uuid.UUID) error {
	if d.Status != StatusDraft {
		return shared.NewDomainError("INVALID_TRANSITION", "Cannot remove lines from a non-draft document")
	}

	for idx, line := range d.Lines {
		if line.ID == lineID {
			d.Lines = append(d.Lines[:idx], d.Lines[idx+1:]...)
			d.recalculateTotal()
			if d.BusinessType.IsStocktake() {
				d.RecalculateStatistics()
			}
			d.touch()
			d.IncrementVersion()
			return nil
		}
	}

	return shared.NewDomainError("NOT_FOUND", "Document line not found")
}

// GetLine returns a line by its ID
func (d *Document) GetLine(lineID uuid.UUID) *DocumentLine {
	for idx := range d.Lines {
		if d.Lines[idx].ID == lineID {
			return &d.Lines[idx]
		}
	}
	return nil
}

// Submit moves the document from DRAFT to PENDING and stamps the apply time
func (d *Document) Submit() error {
	if d.Status != StatusDraft {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot submit document in %s status", d.Status))
	}
	if len(d.Lines) == 0 {
		return shared.NewDomainError("INVALID_ARGUMENT", "Cannot submit a document without lines")
	}
	if d.BusinessType.IsTransfer() {
		if err := d.ValidateTransfer(); err != nil {
			return err
		}
	}

	now := time.Now()
	d.Status = StatusPending
	d.ApplyTime = &now
	d.touch()
	d.IncrementVersion()

	return nil
}

// Approve advances the document one step along the approval chain.
// The acting role must clear the current gate; an under-privileged role is
// rejected without changing state.
func (d *Document) Approve(approverID uuid.UUID, role identity.Role, comment string) error {
	if !d.Status.CanApprove() {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot approve document in %s status", d.Status))
	}
	if !d.Status.RoleMayApprove(role) {
		return shared.NewDomainError("FORBIDDEN", fmt.Sprintf("Role %s cannot approve document in %s status", role, d.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_ARGUMENT", "Approver ID cannot be empty")
	}

	next := d.Status.Next()
	if next == StatusApproved && d.BusinessType.IsTransfer() {
		if err := d.ValidateTransfer(); err != nil {
			return err
		}
	}

	now := time.Now()
	d.Status = next
	d.ApproverID = &approverID
	d.ApprovalTime = &now
	d.ApprovalComment = comment
	d.touch()
	d.IncrementVersion()

	return nil
}

// Reject moves the document to REJECTED from any approvable status
func (d *Document) Reject(approverID uuid.UUID, role identity.Role, comment string) error {
	if !d.Status.CanApprove() {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot reject document in %s status", d.Status))
	}
	if !d.Status.RoleMayApprove(role) {
		return shared.NewDomainError("FORBIDDEN", fmt.Sprintf("Role %s cannot reject document in %s status", role, d.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_ARGUMENT", "Approver ID cannot be empty")
	}
	if comment == "" {
		return shared.NewDomainError("INVALID_ARGUMENT", "Rejection comment is required")
	}

	now := time.Now()
	d.Status = StatusRejected
	d.ApproverID = &approverID
	d.ApprovalTime = &now
	d.ApprovalComment = comment
	d.touch()
	d.IncrementVersion()

	return nil
}

// Cancel moves the document to CANCELLED. Legal at any point before execution.
func (d *Document) Cancel(reason string) error {
	if !d.Status.CanCancel() {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot cancel document in %s status", d.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_ARGUMENT", "Cancel reason is required")
	}

	d.Status = StatusCancelled
	d.CancelReason = reason
	d.touch()
	d.IncrementVersion()

	return nil
}

// MarkExecuted records the execution outcome and moves the document to EXECUTED.
// Callers must have applied the ledger effects first; the status gate makes a
// second execution impossible.
func (d *Document) MarkExecuted(operatorID uuid.UUID) error {
	if !d.Status.CanExecute() {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot execute document in %s status", d.Status))
	}
	if operatorID == uuid.Nil {
		return shared.NewDomainError("INVALID_ARGUMENT", "Operator ID cannot be empty")
	}

	now := time.Now()
	d.Status = StatusExecuted
	d.OperatorID = &operatorID
	d.OperationTime = &now
	d.ActualDate = &now
	d.touch()
	d.IncrementVersion()

	return nil
}

// ValidateTransfer checks the transfer warehouse pair
func (d *Document) ValidateTransfer() error {
	if d.SourceWarehouseID == nil || d.TargetWarehouseID == nil {
		return shared.NewDomainError("INVALID_TRANSITION", "Transfer document requires both source and target warehouses")
	}
	if *d.SourceWarehouseID == *d.TargetWarehouseID {
		return shared.NewDomainError("INVALID_TRANSITION", "Transfer source and target warehouses must differ")
	}
	return nil
}

// IsValidTransfer returns true when the transfer warehouse pair is well formed
func (d *Document) IsValidTransfer() bool {
	return d.ValidateTransfer() == nil
}

// RecordCount records the physically counted quantity on a stock taking line
// and derives its signed difference from the book quantity.
func (d *Document) RecordCount(lineID uuid.UUID, actualQuantity decimal.Decimal) error {
	if !d.BusinessType.IsStocktake() {
		return shared.NewDomainError("INVALID_ARGUMENT", "Counts can only be recorded on stock taking documents")
	}
	if d.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot record counts on a %s document", d.Status))
	}
	if actualQuantity.IsNegative() {
		return shared.NewDomainError("INVALID_ARGUMENT", "Actual quantity cannot be negative")
	}

	line := d.GetLine(lineID)
	if line == nil {
		return shared.NewDomainError("NOT_FOUND", "Document line not found")
	}
	if line.BookQuantity == nil {
		return shared.NewDomainError("INVALID_ARGUMENT", "Line carries no book quantity")
	}

	actual := actualQuantity
	diff := actualQuantity.Sub(*line.BookQuantity)
	line.ActualQuantity = &actual
	line.DifferenceQuantity = &diff
	line.UpdatedAt = time.Now()

	d.RecalculateStatistics()
	d.touch()
	d.IncrementVersion()

	return nil
}

// RecalculateStatistics derives the stock taking summary from the lines:
// counted line totals, gain/loss line counts and the amounts of the signed
// differences valued at each line's unit cost.
func (d *Document) RecalculateStatistics() {
	total := len(d.Lines)
	checked, gainItems, lossItems := 0, 0, 0
	gainAmount, lossAmount := decimal.Zero, decimal.Zero

	for idx := range d.Lines {
		line := &d.Lines[idx]
		if !line.IsCounted() {
			continue
		}
		checked++
		if line.DifferenceQuantity == nil {
			continue
		}
		switch {
		case line.DifferenceQuantity.IsPositive():
			gainItems++
			gainAmount = gainAmount.Add(line.DifferenceQuantity.Mul(line.UnitPrice))
		case line.DifferenceQuantity.IsNegative():
			lossItems++
			lossAmount = lossAmount.Add(line.DifferenceQuantity.Abs().Mul(line.UnitPrice))
		}
	}

	d.TotalItems = total
	d.CheckedItems = checked
	d.GainItems = gainItems
	d.LossItems = lossItems
	d.GainAmount = gainAmount
	d.LossAmount = lossAmount
}

// SetPlannedDate sets the planned business date
func (d *Document) SetPlannedDate(plannedDate time.Time) error {
	if d.Status != StatusDraft {
		return shared.NewDomainError("INVALID_TRANSITION", "Cannot change planned date on a non-draft document")
	}
	d.PlannedDate = &plannedDate
	d.touch()
	return nil
}

// SetRemark sets the document remark
func (d *Document) SetRemark(remark string) {
	d.Remark = remark
	d.touch()
}

// EffectDirection returns the inventory effect of this document's business type
func (d *Document) EffectDirection() EffectDirection {
	return d.BusinessType.Direction()
}

// IsExecuted returns true once the document's ledger effects have been applied
func (d *Document) IsExecuted() bool {
	return d.Status == StatusExecuted
}

// IsTerminal returns true if the document permits no further transitions
func (d *Document) IsTerminal() bool {
	return d.Status.IsTerminal()
}

// LineCount returns the number of lines on the document
func (d *Document) LineCount() int {
	return len(d.Lines)
}

// recalculateTotal recomputes the header totals from the lines
func (d *Document) recalculateTotal() {
	totalQuantity := decimal.Zero
	totalAmount := decimal.Zero
	for _, line := range d.Lines {
		totalQuantity = totalQuantity.Add(line.PlannedQuantity)
		totalAmount = totalAmount.Add(line.Amount)
	}
	d.TotalQuantity = totalQuantity
	d.TotalAmount = totalAmount
}

func (d *Document) touch() {
	d.UpdatedAt = time.Now()
}
