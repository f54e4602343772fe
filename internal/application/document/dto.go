package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warehouse/backend/internal/domain/document"
)

// CreateDocumentRequest is the request to create a business document
type CreateDocumentRequest struct {
	BusinessType      document.BusinessType `json:"business_type" binding:"required"`
	WarehouseID       *uuid.UUID            `json:"warehouse_id,omitempty"`
	SourceWarehouseID *uuid.UUID            `json:"source_warehouse_id,omitempty"`
	TargetWarehouseID *uuid.UUID            `json:"target_warehouse_id,omitempty"`
	PlannedDate       *time.Time            `json:"planned_date,omitempty"`
	Remark            string                `json:"remark,omitempty"`
	Lines             []LineRequest         `json:"lines,omitempty"`
}

// LineRequest is one line item on a create or add-line request
type LineRequest struct {
	GoodsID        uuid.UUID       `json:"goods_id" binding:"required"`
	GoodsName      string          `json:"goods_name" binding:"required"`
	GoodsCode      string          `json:"goods_code,omitempty"`
	BatchNumber    string          `json:"batch_number,omitempty"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	ProductionDate *time.Time      `json:"production_date,omitempty"`
	ExpiryDate     *time.Time      `json:"expiry_date,omitempty"`
}

// ApprovalRequest carries the approver's decision details
type ApprovalRequest struct {
	Comment string `json:"comment,omitempty"`
}

// CancelRequest carries the cancellation reason
type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RecordCountRequest records a physically counted quantity on a stocktake line
type RecordCountRequest struct {
	LineID         uuid.UUID       `json:"line_id" binding:"required"`
	ActualQuantity decimal.Decimal `json:"actual_quantity"`
}

// ListFilter carries query options for document listings
type ListFilter struct {
	Page         int
	PageSize     int
	OrderBy      string
	OrderDir     string
	Search       string
	Status       *document.ApprovalStatus
	BusinessType *document.BusinessType
	WarehouseID  *uuid.UUID
	ApplicantID  *uuid.UUID
	StartDate    *time.Time
	EndDate      *time.Time
}

// LineResponse is the API shape of a document line
type LineResponse struct {
	ID                 uuid.UUID        `json:"id"`
	GoodsID            uuid.UUID        `json:"goods_id"`
	GoodsName          string           `json:"goods_name"`
	GoodsCode          string           `json:"goods_code"`
	BatchNumber        string           `json:"batch_number"`
	PlannedQuantity    decimal.Decimal  `json:"planned_quantity"`
	ActualQuantity     *decimal.Decimal `json:"actual_quantity,omitempty"`
	UnitPrice          decimal.Decimal  `json:"unit_price"`
	Amount             decimal.Decimal  `json:"amount"`
	ProductionDate     *time.Time       `json:"production_date,omitempty"`
	ExpiryDate         *time.Time       `json:"expiry_date,omitempty"`
	BookQuantity       *decimal.Decimal `json:"book_quantity,omitempty"`
	DifferenceQuantity *decimal.Decimal `json:"difference_quantity,omitempty"`
	Adjusted           bool             `json:"adjusted"`
}

// DocumentResponse is the API shape of a business document
type DocumentResponse struct {
	ID                uuid.UUID               `json:"id"`
	OrderNumber       string                  `json:"order_number"`
	BusinessType      document.BusinessType   `json:"business_type"`
	Status            document.ApprovalStatus `json:"status"`
	WarehouseID       *uuid.UUID              `json:"warehouse_id,omitempty"`
	SourceWarehouseID *uuid.UUID              `json:"source_warehouse_id,omitempty"`
	TargetWarehouseID *uuid.UUID              `json:"target_warehouse_id,omitempty"`
	TotalQuantity     decimal.Decimal         `json:"total_quantity"`
	TotalAmount       decimal.Decimal         `json:"total_amount"`
	PlannedDate       *time.Time              `json:"planned_date,omitempty"`
	ActualDate        *time.Time              `json:"actual_date,omitempty"`
	ApplicantID       uuid.UUID               `json:"applicant_id"`
	ApplyTime         *time.Time              `json:"apply_time,omitempty"`
	ApproverID        *uuid.UUID              `json:"approver_id,omitempty"`
	ApprovalTime      *time.Time              `json:"approval_time,omitempty"`
	ApprovalComment   string                  `json:"approval_comment,omitempty"`
	CancelReason      string                  `json:"cancel_reason,omitempty"`
	OperatorID        *uuid.UUID              `json:"operator_id,omitempty"`
	OperationTime     *time.Time              `json:"operation_time,omitempty"`
	TotalItems        int                     `json:"total_items,omitempty"`
	CheckedItems      int                     `json:"checked_items,omitempty"`
	GainItems         int                     `json:"gain_items,omitempty"`
	LossItems         int                     `json:"loss_items,omitempty"`
	GainAmount        decimal.Decimal         `json:"gain_amount"`
	LossAmount        decimal.Decimal         `json:"loss_amount"`
	Remark            string                  `json:"remark,omitempty"`
	Lines             []LineResponse          `json:"lines"`
	Version           int                     `json:"version"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

// ToLineResponse converts a document line to its API shape
func ToLineResponse(line *document.DocumentLine) LineResponse {
	return LineResponse{
		ID:                 line.ID,
		GoodsID:            line.GoodsID,
		GoodsName:          line.GoodsName,
		GoodsCode:          line.GoodsCode,
		BatchNumber:        line.BatchNumber,
		PlannedQuantity:    line.PlannedQuantity,
		ActualQuantity:     line.ActualQuantity,
		UnitPrice:          line.UnitPrice,
		Amount:             line.Amount,
		ProductionDate:     line.ProductionDate,
		ExpiryDate:         line.ExpiryDate,
		BookQuantity:       line.BookQuantity,
		DifferenceQuantity: line.DifferenceQuantity,
		Adjusted:           line.Adjusted,
	}
}

// ToDocumentResponse converts a document to its API shape
func ToDocumentResponse(doc *document.Document) DocumentResponse {
	lines := make([]LineResponse, 0, len(doc.Lines))
	for idx := range doc.Lines {
		lines = append(lines, ToLineResponse(&doc.Lines[idx]))
	}

	return DocumentResponse{
		ID:                doc.ID,
		OrderNumber:       doc.OrderNumber,
		BusinessType:      doc.BusinessType,
		Status:            doc.Status,
		WarehouseID:       doc.WarehouseID,
		SourceWarehouseID: doc.SourceWarehouseID,
		TargetWarehouseID: doc.TargetWarehouseID,
		TotalQuantity:     doc.TotalQuantity,
		TotalAmount:       doc.TotalAmount,
		PlannedDate:       doc.PlannedDate,
		ActualDate:        doc.ActualDate,
		ApplicantID:       doc.ApplicantID,
		ApplyTime:         doc.ApplyTime,
		ApproverID:        doc.ApproverID,
		ApprovalTime:      doc.ApprovalTime,
		ApprovalComment:   doc.ApprovalComment,
		CancelReason:      doc.CancelReason,
		OperatorID:        doc.OperatorID,
		OperationTime:     doc.OperationTime,
		TotalItems:        doc.TotalItems,
		CheckedItems:      doc.CheckedItems,
		GainItems:         doc.GainItems,
		LossItems:         doc.LossItems,
		GainAmount:        doc.GainAmount,
		LossAmount:        doc.LossAmount,
		Remark:            doc.Remark,
		Lines:             lines,
		Version:           doc.Version,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}
}
