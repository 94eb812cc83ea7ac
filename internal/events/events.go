package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kafka topics
const (
	TopicStockMovements = "inventory.stock-movements"
	TopicSalesOrders    = "inventory.sales-orders"
)

// Event types
const (
	EventTypeStockMovementRecorded = "stock.movement.recorded"
	EventTypeSalesOrderCreated     = "sales_order.created"
	EventTypeSalesOrderFulfilled   = "sales_order.fulfilled"
)

// Metadata is common to every event. The publisher fills EventID, EventType
// and Timestamp; callers set CompanyID.
type Metadata struct {
	EventID   string    `json:"eventId"`
	EventType string    `json:"eventType"`
	CompanyID int       `json:"companyId"`
	Timestamp time.Time `json:"timestamp"`
}

// StockMovementRecordedEvent is emitted after any stock movement commits,
// including adjustments. Level is the quantity after the movement.
type StockMovementRecordedEvent struct {
	Metadata
	MovementID    int     `json:"movementId,omitempty"`
	ProductID     int     `json:"productId"`
	WarehouseID   int     `json:"warehouseId"`
	MovementType  string  `json:"movementType"`
	Quantity      int     `json:"quantity"`
	ReferenceType *string `json:"referenceType,omitempty"`
	ReferenceID   *int    `json:"referenceId,omitempty"`
	Level         *int    `json:"level,omitempty"`
}

type SalesOrderCreatedEvent struct {
	Metadata
	OrderID     int             `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	CustomerID  *int            `json:"customerId,omitempty"`
	Items       int             `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type SalesOrderFulfilledEvent struct {
	Metadata
	OrderID     int    `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	WarehouseID int    `json:"warehouseId"`
	MovementIDs []int  `json:"movementIds"`
}
