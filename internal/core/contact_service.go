package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// contactService serves one contact table; customers and suppliers share it.
type contactService struct {
	pool  *pgxpool.Pool
	table string
	label string
}

// NewCustomerService constructs a ContactService over the customers table.
func NewCustomerService(pool *pgxpool.Pool) ContactService {
	return &contactService{pool: pool, table: "customers", label: "customer"}
}

// NewSupplierService constructs a ContactService over the suppliers table.
func NewSupplierService(pool *pgxpool.Pool) ContactService {
	return &contactService{pool: pool, table: "suppliers", label: "supplier"}
}

const contactColumns = "id, company_id, name, email, phone, address, created_at, updated_at"

func scanContact(row interface{ Scan(...any) error }, c *Contact) error {
	return row.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
}

func (s *contactService) Create(ctx context.Context, companyID int, input ContactInput) (*Contact, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, invalidArgument("%s name is required", s.label)
	}

	c := &Contact{}
	err := scanContact(s.pool.QueryRow(ctx, `
		INSERT INTO `+s.table+` (company_id, name, email, phone, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+contactColumns,
		companyID, input.Name, toPtr(input.Email), toPtr(input.Phone), toPtr(input.Address),
	), c)
	if err != nil {
		return nil, insertFailed(s.label+" "+input.Name, err)
	}
	return c, nil
}

func (s *contactService) List(ctx context.Context, companyID int) ([]Contact, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+contactColumns+`
		FROM `+s.table+`
		WHERE company_id = $1
		ORDER BY name, id`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list %ss: %w", s.label, err)
	}
	defer rows.Close()

	contacts := []Contact{}
	for rows.Next() {
		var c Contact
		if err := scanContact(rows, &c); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.label, err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (s *contactService) Get(ctx context.Context, companyID, id int) (*Contact, error) {
	c := &Contact{}
	err := scanContact(s.pool.QueryRow(ctx, `
		SELECT `+contactColumns+`
		FROM `+s.table+`
		WHERE id = $1 AND company_id = $2`,
		id, companyID,
	), c)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("%s %d not found", s.label, id)
		}
		return nil, fmt.Errorf("get %s %d: %w", s.label, id, err)
	}
	return c, nil
}

func (s *contactService) Update(ctx context.Context, companyID, id int, patch ContactPatch) (*Contact, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, invalidArgument("%s name cannot be empty", s.label)
	}

	var b updateBuilder
	setOpt(&b, "name", patch.Name)
	setOpt(&b, "email", patch.Email)
	setOpt(&b, "phone", patch.Phone)
	setOpt(&b, "address", patch.Address)
	if b.empty() {
		return nil, invalidArgument("no fields to update")
	}

	sql, args := b.build(s.table, id, companyID, contactColumns)
	c := &Contact{}
	if err := scanContact(s.pool.QueryRow(ctx, sql, args...), c); err != nil {
		if isNoRows(err) {
			return nil, notFound("%s %d not found", s.label, id)
		}
		return nil, fmt.Errorf("update %s %d: %w", s.label, id, err)
	}
	return c, nil
}

func (s *contactService) Delete(ctx context.Context, companyID, id int) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM "+s.table+" WHERE id = $1 AND company_id = $2", id, companyID)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", s.label, id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("%s %d not found", s.label, id)
	}
	return nil
}
