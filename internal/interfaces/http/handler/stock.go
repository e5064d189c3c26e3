package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/inventra/backend/internal/application/ledger"
)

// StockHandler handles stock ledger endpoints
type StockHandler struct {
	BaseHandler
	stock *ledgerapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stock *ledgerapp.StockService) *StockHandler {
	return &StockHandler{stock: stock}
}

// IdempotencyKeyHeader deduplicates retried adjustments
const IdempotencyKeyHeader = "Idempotency-Key"

// Adjust handles POST /products/:id/stock/adjustments
func (h *StockHandler) Adjust(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Missing or invalid tenant")
		return
	}
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var req ledgerapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.ProductID = productID
	req.CreatedBy = getUserID(c)
	if key := c.GetHeader(IdempotencyKeyHeader); key != "" {
		req.IdempotencyKey = key
	}

	resp, err := h.stock.Adjust(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetQuantity handles GET /products/:id/stock. The quantity is derived from
// the ledger, not read from the cached product column.
func (h *StockHandler) GetQuantity(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Missing or invalid tenant")
		return
	}
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	resp, err := h.stock.GetQuantity(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListEntries handles GET /products/:id/stock/entries
func (h *StockHandler) ListEntries(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Missing or invalid tenant")
		return
	}
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.stock.ListEntries(c.Request.Context(), tenantID, productID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
