package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a sales order.
//
//	pending → confirmed → shipped → delivered
//	any → cancelled
//
// Only fulfillment enforces a transition (confirmed → shipped); updates may set any status.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// SalesOrder is a sales order header. Dates are YYYY-MM-DD strings.
type SalesOrder struct {
	ID             int             `json:"id"`
	CompanyID      int             `json:"companyId"`
	OrderNumber    string          `json:"orderNumber"`
	CustomerID     *int            `json:"customerId,omitempty"`
	CustomerName   *string         `json:"customerName,omitempty"` // joined from customers
	Status         OrderStatus     `json:"status"`
	OrderDate      string          `json:"orderDate"`
	DueDate        *string         `json:"dueDate,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	Notes          *string         `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// SalesOrderItem is one line of a sales order. TotalPrice = Quantity × UnitPrice.
type SalesOrderItem struct {
	ID           int             `json:"id"`
	SalesOrderID int             `json:"salesOrderId"`
	ProductID    int             `json:"productId"`
	ProductName  string          `json:"productName"` // joined from products
	ProductSKU   string          `json:"productSku"`  // joined from products
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// SalesOrderWithItems is the detail view of an order.
type SalesOrderWithItems struct {
	SalesOrder
	Items []SalesOrderItem `json:"items"`
}

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID int             `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// OrderInput creates a sales order. OrderDate defaults to today.
type OrderInput struct {
	CustomerID *int             `json:"customerId,omitempty"`
	OrderDate  string           `json:"orderDate,omitempty"`
	DueDate    *string          `json:"dueDate,omitempty"`
	Notes      string           `json:"notes,omitempty"`
	Items      []OrderItemInput `json:"items"`
}

// SalesOrderPatch is a partial update; nil fields are left unchanged.
type SalesOrderPatch struct {
	CustomerID *int         `json:"customerId,omitempty"`
	Status     *OrderStatus `json:"status,omitempty"`
	OrderDate  *string      `json:"orderDate,omitempty"`
	DueDate    *string      `json:"dueDate,omitempty"`
	Notes      *string      `json:"notes,omitempty"`
}

// Fulfillment is the outcome of shipping an order from one warehouse.
type Fulfillment struct {
	Order       *SalesOrder     `json:"order"`
	WarehouseID int             `json:"warehouseId"`
	Movements   []StockMovement `json:"movements"`
}

// OrderService manages sales orders and their fulfillment against the stock ledger.
type OrderService interface {
	// CreateSalesOrder numbers the order and inserts it with its items in one transaction.
	CreateSalesOrder(ctx context.Context, companyID int, input OrderInput) (*SalesOrderWithItems, error)
	// ListSalesOrders returns orders newest first, optionally filtered by status.
	ListSalesOrders(ctx context.Context, companyID int, status *OrderStatus) ([]SalesOrder, error)
	GetSalesOrder(ctx context.Context, companyID, id int) (*SalesOrderWithItems, error)
	UpdateSalesOrder(ctx context.Context, companyID, id int, patch SalesOrderPatch) (*SalesOrder, error)
	// FulfillSalesOrder deducts every item from warehouseID and marks the order shipped.
	// The order must be confirmed. Stock deductions and the status change commit together.
	FulfillSalesOrder(ctx context.Context, companyID, id, warehouseID int) (*Fulfillment, error)
}
