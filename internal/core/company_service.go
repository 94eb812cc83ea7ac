package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type companyService struct {
	pool *pgxpool.Pool
}

// NewCompanyService constructs a CompanyService backed by PostgreSQL.
func NewCompanyService(pool *pgxpool.Pool) CompanyService {
	return &companyService{pool: pool}
}

const companyColumns = `id, name, email, phone, address, tax_number,
	subscription_status, subscription_plan, created_at, updated_at`

func scanCompany(row interface{ Scan(...any) error }, c *Company) error {
	return row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.TaxNumber,
		&c.SubscriptionStatus, &c.SubscriptionPlan, &c.CreatedAt, &c.UpdatedAt,
	)
}

func (s *companyService) ResolveCompany(ctx context.Context, userID string) (int, error) {
	var companyID int
	err := s.pool.QueryRow(ctx,
		"SELECT company_id FROM company_users WHERE user_id = $1", userID,
	).Scan(&companyID)
	if err != nil {
		if isNoRows(err) {
			return 0, notFound("user not associated with any company")
		}
		return 0, fmt.Errorf("resolve company for user: %w", err)
	}
	return companyID, nil
}

func (s *companyService) CreateCompany(ctx context.Context, userID string, input CompanyInput) (*Company, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, invalidArgument("user id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, invalidArgument("company name is required")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM company_users WHERE user_id = $1)", userID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check existing company membership: %w", err)
	}
	if exists {
		return nil, alreadyExists("user already associated with a company")
	}

	c := &Company{}
	err = scanCompany(tx.QueryRow(ctx, `
		INSERT INTO companies (name, email, phone, address, tax_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+companyColumns,
		input.Name, input.Email, toPtr(input.Phone), toPtr(input.Address), toPtr(input.TaxNumber),
	), c)
	if err != nil {
		return nil, insertFailed("company "+input.Name, err)
	}

	if _, err := tx.Exec(ctx,
		"INSERT INTO company_users (company_id, user_id, role) VALUES ($1, $2, $3)",
		c.ID, userID, string(RoleAdmin),
	); err != nil {
		// A concurrent CreateCompany for the same user lost the race on the unique key.
		if isUniqueViolation(err) {
			return nil, alreadyExists("user already associated with a company")
		}
		return nil, fmt.Errorf("link admin user to company: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return c, nil
}

func (s *companyService) GetCompanyForUser(ctx context.Context, userID string) (*Company, error) {
	c := &Company{}
	err := scanCompany(s.pool.QueryRow(ctx, `
		SELECT c.id, c.name, c.email, c.phone, c.address, c.tax_number,
		       c.subscription_status, c.subscription_plan, c.created_at, c.updated_at
		FROM companies c
		JOIN company_users cu ON cu.company_id = c.id
		WHERE cu.user_id = $1`,
		userID,
	), c)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("user not associated with any company")
		}
		return nil, fmt.Errorf("get company for user: %w", err)
	}
	return c, nil
}

// toPtr maps an empty optional string to NULL.
func toPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
