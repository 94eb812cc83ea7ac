package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// MovementType classifies a stock movement.
type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
)

// Valid reports whether t is one of the known movement types.
func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjustment:
		return true
	}
	return false
}

// ReferenceTypeManual marks movements created by a direct stock adjustment.
const ReferenceTypeManual = "manual"

// ReferenceTypeSalesOrder marks movements created by order fulfillment.
const ReferenceTypeSalesOrder = "sales_order"

// DefaultMovementListLimit caps ListMovements.
const DefaultMovementListLimit = 100

// StockLevel is the materialized on-hand quantity of one product in one warehouse.
// Quantity is never negative.
type StockLevel struct {
	ID               int       `json:"id"`
	ProductID        int       `json:"productId"`
	WarehouseID      int       `json:"warehouseId"`
	Quantity         int       `json:"quantity"`
	ReservedQuantity int       `json:"reservedQuantity"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// StockMovement is one append-only ledger entry. For adjustments Quantity is the
// signed delta as requested; for in/out it is the positive amount moved.
type StockMovement struct {
	ID            int          `json:"id"`
	ProductID     int          `json:"productId"`
	WarehouseID   int          `json:"warehouseId"`
	MovementType  MovementType `json:"movementType"`
	Quantity      int          `json:"quantity"`
	ReferenceType *string      `json:"referenceType,omitempty"`
	ReferenceID   *int         `json:"referenceId,omitempty"`
	Notes         *string      `json:"notes,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// StockMovementView is a movement joined with product and warehouse display fields.
type StockMovementView struct {
	StockMovement
	ProductName   string `json:"productName"`
	ProductSKU    string `json:"productSku"`
	WarehouseName string `json:"warehouseName"`
}

// AdjustmentInput applies a signed delta to one stock level.
type AdjustmentInput struct {
	ProductID   int    `json:"productId"`
	WarehouseID int    `json:"warehouseId"`
	Quantity    int    `json:"quantity"`
	Notes       string `json:"notes,omitempty"`
}

// MovementInput records a typed movement against one stock level.
type MovementInput struct {
	ProductID     int          `json:"productId"`
	WarehouseID   int          `json:"warehouseId"`
	MovementType  MovementType `json:"movementType"`
	Quantity      int          `json:"quantity"`
	ReferenceType string       `json:"referenceType,omitempty"`
	ReferenceID   *int         `json:"referenceId,omitempty"`
	Notes         string       `json:"notes,omitempty"`
}

// LedgerReplay compares a stored level with the level rebuilt from the movement log.
type LedgerReplay struct {
	ProductID      int  `json:"productId"`
	WarehouseID    int  `json:"warehouseId"`
	StoredQuantity int  `json:"storedQuantity"`
	ReplayQuantity int  `json:"replayQuantity"`
	Movements      int  `json:"movements"`
	Consistent     bool `json:"consistent"`
}

// StockLedger keeps StockLevel rows and the StockMovement log consistent.
// Every write locks the level row, clamps at zero and appends to the log in one transaction.
type StockLedger interface {
	// Standalone operations (manage their own transactions).

	// AdjustStock applies input.Quantity as a signed delta and logs an adjustment movement.
	AdjustStock(ctx context.Context, companyID int, input AdjustmentInput) (*StockLevel, error)
	// RecordMovement logs a movement and applies its delta to the stock level.
	RecordMovement(ctx context.Context, companyID int, input MovementInput) (*StockMovement, error)
	// GetStockLevel returns the level for the pair; a zero level when none exists yet.
	GetStockLevel(ctx context.Context, companyID, productID, warehouseID int) (*StockLevel, error)
	// ListMovements returns the newest movements first, at most limit (default 100).
	ListMovements(ctx context.Context, companyID, limit int) ([]StockMovementView, error)
	// ReplayLevel rebuilds the level for the pair from its movement log.
	ReplayLevel(ctx context.Context, companyID, productID, warehouseID int) (*LedgerReplay, error)

	// TX-scoped operations: work within a caller-provided transaction.
	// Used by OrderService to keep stock deductions atomic with order status changes.

	RecordMovementTx(ctx context.Context, tx pgx.Tx, companyID int, input MovementInput) (*StockMovement, error)
}
