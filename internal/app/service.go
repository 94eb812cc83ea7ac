package app

import (
	"context"

	"inventory-manager/internal/core"
)

// ContactKind selects which contact directory an operation targets.
type ContactKind string

const (
	Customers ContactKind = "customers"
	Suppliers ContactKind = "suppliers"
)

// ApplicationService is the single interface all adapters (Web, CLI) call.
// Every company-scoped method takes the caller's companyID, resolved once per
// request by ResolveCompany. Implementations contain no HTTP or display logic.
type ApplicationService interface {
	// Health pings the database.
	Health(ctx context.Context) error

	// ── Tenant directory ──

	// ResolveCompany maps an authenticated user to their company id (cached).
	ResolveCompany(ctx context.Context, userID string) (int, error)
	// CreateCompany registers a company with userID as admin.
	CreateCompany(ctx context.Context, userID string, input core.CompanyInput) (*core.Company, error)
	// GetMyCompany returns the caller's company.
	GetMyCompany(ctx context.Context, userID string) (*core.Company, error)

	// ── Warehouses ──

	CreateWarehouse(ctx context.Context, companyID int, input core.WarehouseInput) (*core.Warehouse, error)
	ListWarehouses(ctx context.Context, companyID int) (*WarehouseListResult, error)
	GetWarehouse(ctx context.Context, companyID, id int) (*core.Warehouse, error)
	UpdateWarehouse(ctx context.Context, companyID, id int, patch core.WarehousePatch) (*core.Warehouse, error)
	DeleteWarehouse(ctx context.Context, companyID, id int) error

	// ── Catalog ──

	CreateProduct(ctx context.Context, companyID int, input core.ProductInput) (*core.Product, error)
	// ListProducts returns products with stock; lowStockOnly keeps products at or below reorder level.
	ListProducts(ctx context.Context, companyID int, lowStockOnly bool) (*ProductListResult, error)
	GetProduct(ctx context.Context, companyID, id int) (*core.ProductWithStock, error)
	UpdateProduct(ctx context.Context, companyID, id int, patch core.ProductPatch) (*core.Product, error)
	DeleteProduct(ctx context.Context, companyID, id int) error

	// ── Stock ledger ──

	// AdjustStock applies a signed delta and publishes stock.movement.recorded.
	AdjustStock(ctx context.Context, companyID int, input core.AdjustmentInput) (*core.StockLevel, error)
	// RecordMovement records a typed movement and publishes stock.movement.recorded.
	RecordMovement(ctx context.Context, companyID int, input core.MovementInput) (*core.StockMovement, error)
	ListMovements(ctx context.Context, companyID, limit int) (*MovementListResult, error)
	GetStockLevel(ctx context.Context, companyID, productID, warehouseID int) (*core.StockLevel, error)
	// ReplayLevel verifies a stored level against its movement log.
	ReplayLevel(ctx context.Context, companyID, productID, warehouseID int) (*core.LedgerReplay, error)

	// ── Customers and suppliers ──

	CreateContact(ctx context.Context, kind ContactKind, companyID int, input core.ContactInput) (*core.Contact, error)
	ListContacts(ctx context.Context, kind ContactKind, companyID int) (*ContactListResult, error)
	GetContact(ctx context.Context, kind ContactKind, companyID, id int) (*core.Contact, error)
	UpdateContact(ctx context.Context, kind ContactKind, companyID, id int, patch core.ContactPatch) (*core.Contact, error)
	DeleteContact(ctx context.Context, kind ContactKind, companyID, id int) error

	// ── Sales orders ──

	// CreateSalesOrder creates a pending order and publishes sales_order.created.
	CreateSalesOrder(ctx context.Context, companyID int, input core.OrderInput) (*core.SalesOrderWithItems, error)
	// ListSalesOrders returns orders newest first, filtered by status when non-nil.
	ListSalesOrders(ctx context.Context, companyID int, status *core.OrderStatus) (*OrderListResult, error)
	GetSalesOrder(ctx context.Context, companyID, id int) (*core.SalesOrderWithItems, error)
	UpdateSalesOrder(ctx context.Context, companyID, id int, patch core.SalesOrderPatch) (*core.SalesOrder, error)
	// FulfillSalesOrder ships a confirmed order from warehouseID and publishes
	// sales_order.fulfilled plus one stock.movement.recorded per item.
	FulfillSalesOrder(ctx context.Context, companyID, id, warehouseID int) (*core.Fulfillment, error)
}
