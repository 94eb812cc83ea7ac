package app

import (
	"encoding/json"

	"inventory-manager/internal/core"
)

// WarehouseListResult is returned by ListWarehouses.
type WarehouseListResult struct {
	Warehouses []core.Warehouse `json:"warehouses"`
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.ProductWithStock `json:"products"`
}

// MovementListResult is returned by ListMovements.
type MovementListResult struct {
	Movements []core.StockMovementView `json:"movements"`
	Limit     int                      `json:"limit"`
}

// ContactListResult is returned by ListContacts. Kind names the directory and
// is the JSON key of the list: {"customers": [...]} or {"suppliers": [...]}.
type ContactListResult struct {
	Kind     ContactKind
	Contacts []core.Contact
}

func (r ContactListResult) MarshalJSON() ([]byte, error) {
	contacts := r.Contacts
	if contacts == nil {
		contacts = []core.Contact{}
	}
	return json.Marshal(map[string][]core.Contact{string(r.Kind): contacts})
}

// OrderListResult is returned by ListSalesOrders.
type OrderListResult struct {
	Orders []core.SalesOrder `json:"orders"`
}
