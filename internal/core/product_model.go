package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item. SKU is unique within a company.
type Product struct {
	ID           int             `json:"id"`
	CompanyID    int             `json:"companyId"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  *string         `json:"description,omitempty"`
	Category     *string         `json:"category,omitempty"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	CostPrice    decimal.Decimal `json:"costPrice"`
	Barcode      *string         `json:"barcode,omitempty"`
	QRCode       *string         `json:"qrCode,omitempty"`
	ReorderLevel int             `json:"reorderLevel"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// WarehouseStock is one warehouse's share of a product's stock.
type WarehouseStock struct {
	WarehouseID      int    `json:"warehouseId"`
	WarehouseName    string `json:"warehouseName"`
	Quantity         int    `json:"quantity"`
	ReservedQuantity int    `json:"reservedQuantity"`
}

// ProductWithStock is the catalog read view: the product plus aggregated stock.
type ProductWithStock struct {
	Product
	TotalStock       int              `json:"totalStock"`
	StockByWarehouse []WarehouseStock `json:"stockByWarehouse"`
	LowStock         bool             `json:"lowStock"`
}

// IsLowStock reports whether total on-hand stock is at or below the reorder level.
func IsLowStock(totalStock, reorderLevel int) bool {
	return totalStock <= reorderLevel
}

type ProductInput struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Category     string          `json:"category,omitempty"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	CostPrice    decimal.Decimal `json:"costPrice"`
	Barcode      string          `json:"barcode,omitempty"`
	QRCode       string          `json:"qrCode,omitempty"`
	ReorderLevel int             `json:"reorderLevel"`
}

// ProductPatch is a partial update; nil fields are left unchanged. SKU is immutable.
type ProductPatch struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Category     *string          `json:"category"`
	UnitPrice    *decimal.Decimal `json:"unitPrice"`
	CostPrice    *decimal.Decimal `json:"costPrice"`
	Barcode      *string          `json:"barcode"`
	QRCode       *string          `json:"qrCode"`
	ReorderLevel *int             `json:"reorderLevel"`
}

// ProductFilter narrows ListProducts.
type ProductFilter struct {
	LowStockOnly bool
}

// CatalogService manages the company product catalog.
type CatalogService interface {
	// CreateProduct fails with ErrAlreadyExists when the SKU is taken in the company.
	CreateProduct(ctx context.Context, companyID int, input ProductInput) (*Product, error)
	// ListProducts returns products ordered by name with aggregated stock.
	ListProducts(ctx context.Context, companyID int, filter ProductFilter) ([]ProductWithStock, error)
	GetProduct(ctx context.Context, companyID, id int) (*ProductWithStock, error)
	UpdateProduct(ctx context.Context, companyID, id int, patch ProductPatch) (*Product, error)
	// DeleteProduct hard-deletes the product. It fails with ErrFailedPrecondition
	// while stock movements or order items reference it.
	DeleteProduct(ctx context.Context, companyID, id int) error
}
