package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	inventoryapp "github.com/warehouse/backend/internal/application/inventory"
	"github.com/warehouse/backend/internal/domain/shared"
	"github.com/warehouse/backend/internal/interfaces/http/dto"
)

// InventoryHandler handles stock ledger and movement journal queries.
// Stock only changes through document execution; these endpoints are reads.
type InventoryHandler struct {
	BaseHandler
	queryService *inventoryapp.QueryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(queryService *inventoryapp.QueryService) *InventoryHandler {
	return &InventoryHandler{queryService: queryService}
}

// RegisterRoutes registers inventory routes on the given group
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	{
		stock.GET("/warehouses/:warehouseId", h.ListByWarehouse)
		stock.GET("/warehouses/:warehouseId/value", h.WarehouseValue)
		stock.GET("/goods/:goodsId", h.ListByGoods)
		stock.GET("/goods/:goodsId/summary", h.GoodsSummary)
		stock.GET("/line", h.GetStockLine)
		stock.GET("/low", h.ListLowStock)
		stock.GET("/near-expiry", h.ListNearExpiry)
		stock.GET("/expired", h.ListExpired)
	}
	movements := rg.Group("/movements")
	{
		movements.GET("", h.ListMovements)
		movements.GET("/documents/:documentId", h.ListMovementsByDocument)
	}
}

// GetStockLine returns one stock line by warehouse, goods and batch
func (h *InventoryHandler) GetStockLine(c *gin.Context) {
	warehouseID, err := uuid.Parse(c.Query("warehouse_id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse_id")
		return
	}
	goodsID, err := uuid.Parse(c.Query("goods_id"))
	if err != nil {
		h.BadRequest(c, "Invalid goods_id")
		return
	}

	response, err := h.queryService.GetStockLine(c.Request.Context(), warehouseID, goodsID, c.Query("batch_number"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, response)
}

// ListByWarehouse lists stock lines in a warehouse
func (h *InventoryHandler) ListByWarehouse(c *gin.Context) {
	warehouseID, err := uuid.Parse(c.Param("warehouseId"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}
	filter, err := h.bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	responses, err := h.queryService.ListByWarehouse(c.Request.Context(), warehouseID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, responses)
}

// ListByGoods lists stock lines for a goods across warehouses
func (h *InventoryHandler) ListByGoods(c *gin.Context) {
	goodsID, err := uuid.Parse(c.Param("goodsId"))
	if err != nil {
		h.BadRequest(c, "Invalid goods ID")
		return
	}
	filter, err := h.bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	responses, err := h.queryService.ListByGoods(c.Request.Context(), goodsID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, responses)
}

// GoodsSummary returns a goods' total quantity across warehouses
func (h *InventoryHandler) GoodsSummary(c *gin.Context) {
	goodsID, err := uuid.Parse(c.Param("goodsId"))
	if err != nil {
		h.BadRequest(c, "Invalid goods ID")
		return
	}

	response, err := h.queryService.GoodsSummary(c.Request.Context(), goodsID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, response)
}

// WarehouseValue returns a warehouse's stock value at average cost
func (h *InventoryHandler) WarehouseValue(c *gin.Context) {
	warehouseID, err := uuid.Parse(c.Param("warehouseId"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	response, err := h.queryService.WarehouseValue(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, response)
}

// ListLowStock lists stock lines at or below the threshold query parameter
func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	threshold, err := decimal.NewFromString(c.DefaultQuery("threshold", "0"))
	if err != nil {
		h.BadRequest(c, "Invalid threshold")
		return
	}
	filter, err := h.bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	responses, err := h.queryService.ListLowStock(c.Request.Context(), threshold, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, responses)
}

// ListNearExpiry lists batches expiring within the window query parameter (days)
func (h *InventoryHandler) ListNearExpiry(c *gin.Context) {
	days, err := decimal.NewFromString(c.DefaultQuery("days", "30"))
	if err != nil || !days.IsPositive() {
		h.BadRequest(c, "Invalid days")
		return
	}
	filter, err := h.bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	window := time.Duration(days.IntPart()) * 24 * time.Hour
	responses, err := h.queryService.ListNearExpiry(c.Request.Context(), window, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, responses)
}

// ListExpired lists expired batches that still hold stock
func (h *InventoryHandler) ListExpired(c *gin.Context) {
	filter, err := h.bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	responses, err := h.queryService.ListExpired(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, responses)
}

// ListMovements lists journal entries by warehouse or date range
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	filter, err := h.bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if value := c.Query("warehouse_id"); value != "" {
		warehouseID, err := uuid.Parse(value)
		if err != nil {
			h.BadRequest(c, "Invalid warehouse_id")
			return
		}
		responses, err := h.queryService.ListMovementsByWarehouse(c.Request.Context(), warehouseID, filter)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.Success(c, responses)
		return
	}

	start, err := parseDateTime(c.DefaultQuery("start_date", time.Now().AddDate(0, 0, -7).Format("2006-01-02")))
	if err != nil {
		h.BadRequest(c, "Invalid start_date")
		return
	}
	end, err := parseDateTime(c.DefaultQuery("end_date", time.Now().Format(time.RFC3339)))
	if err != nil {
		h.BadRequest(c, "Invalid end_date")
		return
	}

	responses, err := h.queryService.ListMovementsByDateRange(c.Request.Context(), start, end, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, responses)
}

// ListMovementsByDocument lists the journal entries a document produced
func (h *InventoryHandler) ListMovementsByDocument(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("documentId"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	responses, err := h.queryService.ListMovementsByDocument(c.Request.Context(), documentID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, responses)
}

func (h *InventoryHandler) bindFilter(c *gin.Context) (shared.Filter, error) {
	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		return shared.Filter{}, err
	}
	if listReq.Page == 0 {
		listReq.Page = 1
	}
	if listReq.PageSize == 0 {
		listReq.PageSize = 20
	}

	filter := shared.DefaultFilter()
	filter.Page = listReq.Page
	filter.PageSize = listReq.PageSize
	if listReq.OrderBy != "" {
		filter.OrderBy = listReq.OrderBy
	}
	if listReq.OrderDir != "" {
		filter.OrderDir = listReq.OrderDir
	}
	filter.Search = listReq.Search
	return filter, nil
}
