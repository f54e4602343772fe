package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	documentapp "github.com/warehouse/backend/internal/application/document"
	"github.com/warehouse/backend/internal/domain/document"
	"github.com/warehouse/backend/internal/interfaces/http/dto"
	"github.com/warehouse/backend/internal/interfaces/http/middleware"
)

// DocumentHandler handles the business document lifecycle endpoints
type DocumentHandler struct {
	BaseHandler
	documentService *documentapp.DocumentService
	executionEngine *documentapp.ExecutionEngine
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(
	documentService *documentapp.DocumentService,
	executionEngine *documentapp.ExecutionEngine,
) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		executionEngine: executionEngine,
	}
}

// RegisterRoutes registers document routes on the given group
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	documents := rg.Group("/documents")
	{
		documents.POST("", h.Create)
		documents.GET("", h.List)
		documents.GET("/pending-approval", h.ListPendingApproval)
		documents.GET("/by-number/:orderNumber", h.GetByOrderNumber)
		documents.GET("/:id", h.GetByID)
		documents.POST("/:id/lines", h.AddLine)
		documents.DELETE("/:id/lines/:lineId", h.RemoveLine)
		documents.POST("/:id/submit", h.Submit)
		documents.POST("/:id/approve", h.Approve)
		documents.POST("/:id/reject", h.Reject)
		documents.POST("/:id/cancel", h.Cancel)
		documents.POST("/:id/execute", h.Execute)
		documents.POST("/:id/counts", h.RecordCount)
	}
}

// Create creates a new draft document
func (h *DocumentHandler) Create(c *gin.Context) {
	ident, ok := middleware.GetIdentity(c)
	if !ok {
		h.BadRequest(c, "Authentication required")
		return
	}

	var req documentapp.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	response, err := h.documentService.Create(c.Request.Context(), ident.UserID, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, response)
}

// GetByID returns a document with its lines
func (h *DocumentHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	response, err := h.documentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, response)
}

// GetByOrderNumber returns a document by its order number
func (h *DocumentHandler) GetByOrderNumber(c *gin.Context) {
	response, err := h.documentService.GetByOrderNumber(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, response)
}

// List returns documents matching the query filters
func (h *DocumentHandler) List(c *gin.Context) {
	filter, err := h.bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	responses, total, err := h.documentService.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.SuccessWithMeta(c, responses, total, filter.Page, filter.PageSize)
}

// ListPendingApproval returns documents waiting at any approval gate
func (h *DocumentHandler) ListPendingApproval(c *gin.Context) {
	filter, err := h.bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	responses, err := h.documentService.ListPendingApproval(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, responses)
}

// AddLine adds a line to a draft document
func (h *DocumentHandler) AddLine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	var req documentapp.LineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	response, err := h.documentService.AddLine(c.Request.Context(), id, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, response)
}

// RemoveLine removes a line from a draft document
func (h *DocumentHandler) RemoveLine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}
	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID")
		return
	}

	response, err := h.documentService.RemoveLine(c.Request.Context(), id, lineID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, response)
}

// Submit submits a draft into the approval chain
func (h *DocumentHandler) Submit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	response, err := h.documentService.Submit(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, response)
}

// Approve advances the document one approval step
func (h *DocumentHandler) Approve(c *gin.Context) {
	ident, ok := middleware.GetIdentity(c)
	if !ok {
		h.BadRequest(c, "Authentication required")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	var req documentapp.ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BadRequest(c, err.Error())
		return
	}

	response, err := h.documentService.Approve(c.Request.Context(), id, ident.UserID, ident.Role, req.Comment)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, response)
}

// Reject rejects the document at its current gate
func (h *DocumentHandler) Reject(c *gin.Context) {
	ident, ok := middleware.GetIdentity(c)
	if !ok {
		h.BadRequest(c, "Authentication required")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	var req documentapp.ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	response, err := h.documentService.Reject(c.Request.Context(), id, ident.UserID, ident.Role, req.Comment)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, response)
}

// Cancel cancels an unexecuted document
func (h *DocumentHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	var req documentapp.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	response, err := h.documentService.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, response)
}

// Execute applies an approved document to the stock ledger
func (h *DocumentHandler) Execute(c *gin.Context) {
	ident, ok := middleware.GetIdentity(c)
	if !ok {
		h.BadRequest(c, "Authentication required")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	response, err := h.executionEngine.Execute(c.Request.Context(), id, ident.UserID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, response)
}

// RecordCount records a counted quantity on a stocktake line
func (h *DocumentHandler) RecordCount(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	var req documentapp.RecordCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	response, err := h.documentService.RecordCount(c.Request.Context(), id, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, response)
}

func (h *DocumentHandler) bindListFilter(c *gin.Context) (documentapp.ListFilter, error) {
	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		return documentapp.ListFilter{}, err
	}
	if listReq.Page == 0 {
		listReq.Page = 1
	}
	if listReq.PageSize == 0 {
		listReq.PageSize = 20
	}

	filter := documentapp.ListFilter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
		OrderBy:  listReq.OrderBy,
		OrderDir: listReq.OrderDir,
		Search:   listReq.Search,
	}

	if value := c.Query("status"); value != "" {
		status := document.ApprovalStatus(value)
		filter.Status = &status
	}
	if value := c.Query("business_type"); value != "" {
		businessType := document.BusinessType(value)
		filter.BusinessType = &businessType
	}
	if value := c.Query("warehouse_id"); value != "" {
		warehouseID, err := uuid.Parse(value)
		if err != nil {
			return documentapp.ListFilter{}, err
		}
		filter.WarehouseID = &warehouseID
	}
	if value := c.Query("applicant_id"); value != "" {
		applicantID, err := uuid.Parse(value)
		if err != nil {
			return documentapp.ListFilter{}, err
		}
		filter.ApplicantID = &applicantID
	}
	if value := c.Query("start_date"); value != "" {
		start, err := parseDateTime(value)
		if err != nil {
			return documentapp.ListFilter{}, err
		}
		filter.StartDate = &start
	}
	if value := c.Query("end_date"); value != "" {
		end, err := parseDateTime(value)
		if err != nil {
			return documentapp.ListFilter{}, err
		}
		filter.EndDate = &end
	}

	return filter, nil
}

// parseDateTime parses a datetime in RFC3339 or plain date form
func parseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
