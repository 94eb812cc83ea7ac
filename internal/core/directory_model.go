package core

import (
	"context"
	"time"
)

// Warehouse is a physical storage location within a company.
type Warehouse struct {
	ID        int       `json:"id"`
	CompanyID int       `json:"companyId"`
	Name      string    `json:"name"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type WarehouseInput struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// WarehousePatch is a partial update; nil fields are left unchanged.
type WarehousePatch struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

// WarehouseService provides company-scoped warehouse master data.
type WarehouseService interface {
	CreateWarehouse(ctx context.Context, companyID int, input WarehouseInput) (*Warehouse, error)
	// ListWarehouses returns the company's warehouses ordered by name.
	ListWarehouses(ctx context.Context, companyID int) ([]Warehouse, error)
	GetWarehouse(ctx context.Context, companyID, id int) (*Warehouse, error)
	UpdateWarehouse(ctx context.Context, companyID, id int, patch WarehousePatch) (*Warehouse, error)
	// DeleteWarehouse fails with ErrFailedPrecondition while stock movements reference it.
	DeleteWarehouse(ctx context.Context, companyID, id int) error
}

// Contact is a customer or supplier record. Both share one shape.
type Contact struct {
	ID        int       `json:"id"`
	CompanyID int       `json:"companyId"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// ContactPatch is a partial update; nil fields are left unchanged.
type ContactPatch struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// ContactService is company-scoped CRUD over customers or suppliers.
type ContactService interface {
	Create(ctx context.Context, companyID int, input ContactInput) (*Contact, error)
	// List returns the company's records ordered by name.
	List(ctx context.Context, companyID int) ([]Contact, error)
	Get(ctx context.Context, companyID, id int) (*Contact, error)
	Update(ctx context.Context, companyID, id int, patch ContactPatch) (*Contact, error)
	Delete(ctx context.Context, companyID, id int) error
}
