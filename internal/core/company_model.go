package core

import (
	"context"
	"time"
)

// Role is a CompanyUser's permission level within its company.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// Company is a tenant. Every other entity is scoped to a company id.
type Company struct {
	ID                 int       `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Phone              *string   `json:"phone,omitempty"`
	Address            *string   `json:"address,omitempty"`
	TaxNumber          *string   `json:"taxNumber,omitempty"`
	SubscriptionStatus string    `json:"subscriptionStatus"`
	SubscriptionPlan   string    `json:"subscriptionPlan"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// CompanyUser links an external user identity to exactly one company.
type CompanyUser struct {
	ID        int       `json:"id"`
	CompanyID int       `json:"companyId"`
	UserID    string    `json:"userId"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// CompanyInput holds the fields accepted when registering a company.
type CompanyInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	TaxNumber string `json:"taxNumber,omitempty"`
}

// CompanyService is the tenant directory: it maps users to their single company.
type CompanyService interface {
	// ResolveCompany returns the company id linked to userID, or ErrNotFound.
	ResolveCompany(ctx context.Context, userID string) (int, error)

	// CreateCompany registers a company with userID as its admin. Both rows are
	// written in one transaction. Fails with ErrAlreadyExists if userID already
	// belongs to a company.
	CreateCompany(ctx context.Context, userID string, input CompanyInput) (*Company, error)

	// GetCompanyForUser returns the company userID belongs to.
	GetCompanyForUser(ctx context.Context, userID string) (*Company, error)
}
