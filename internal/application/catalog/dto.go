package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/backend/internal/domain/catalog"
)

// CreateProductRequest creates a new product
type CreateProductRequest struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	MinQuantity  int64           `json:"min_quantity"`
	MaxQuantity  int64           `json:"max_quantity"`
	Perishable   bool            `json:"perishable"`
	Seasonal     bool            `json:"seasonal"`
	CreatedBy    *uuid.UUID      `json:"-"`
}

// UpdateProductRequest updates a product's pricing, thresholds and flags
type UpdateProductRequest struct {
	Name         *string          `json:"name,omitempty"`
	CostPrice    *decimal.Decimal `json:"cost_price,omitempty"`
	SellingPrice *decimal.Decimal `json:"selling_price,omitempty"`
	TaxRate      *decimal.Decimal `json:"tax_rate,omitempty"`
	MinQuantity  *int64           `json:"min_quantity,omitempty"`
	MaxQuantity  *int64           `json:"max_quantity,omitempty"`
	Perishable   *bool            `json:"perishable,omitempty"`
	Seasonal     *bool            `json:"seasonal,omitempty"`
}

// ProductResponse is the outward representation of a product
type ProductResponse struct {
	ID             uuid.UUID       `json:"id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Unit           string          `json:"unit"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	SellingPrice   decimal.Decimal `json:"selling_price"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	MinQuantity    int64           `json:"min_quantity"`
	MaxQuantity    int64           `json:"max_quantity"`
	OnHandQuantity int64           `json:"on_hand_quantity"`
	Perishable     bool            `json:"perishable"`
	Seasonal       bool            `json:"seasonal"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func toProductResponse(p *catalog.Product) *ProductResponse {
	return &ProductResponse{
		ID:             p.ID,
		SKU:            p.SKU,
		Name:           p.Name,
		Unit:           p.Unit,
		CostPrice:      p.CostPrice,
		SellingPrice:   p.SellingPrice,
		TaxRate:        p.TaxRate,
		MinQuantity:    p.MinQuantity,
		MaxQuantity:    p.MaxQuantity,
		OnHandQuantity: p.OnHandQuantity,
		Perishable:     p.Perishable,
		Seasonal:       p.Seasonal,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
