package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type warehouseService struct {
	pool *pgxpool.Pool
}

// NewWarehouseService constructs a WarehouseService backed by PostgreSQL.
func NewWarehouseService(pool *pgxpool.Pool) WarehouseService {
	return &warehouseService{pool: pool}
}

const warehouseColumns = "id, company_id, name, address, created_at, updated_at"

func scanWarehouse(row interface{ Scan(...any) error }, w *Warehouse) error {
	return row.Scan(&w.ID, &w.CompanyID, &w.Name, &w.Address, &w.CreatedAt, &w.UpdatedAt)
}

func (s *warehouseService) CreateWarehouse(ctx context.Context, companyID int, input WarehouseInput) (*Warehouse, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, invalidArgument("warehouse name is required")
	}

	w := &Warehouse{}
	err := scanWarehouse(s.pool.QueryRow(ctx, `
		INSERT INTO warehouses (company_id, name, address)
		VALUES ($1, $2, $3)
		RETURNING `+warehouseColumns,
		companyID, input.Name, toPtr(input.Address),
	), w)
	if err != nil {
		return nil, insertFailed("warehouse "+input.Name, err)
	}
	return w, nil
}

func (s *warehouseService) ListWarehouses(ctx context.Context, companyID int) ([]Warehouse, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+warehouseColumns+`
		FROM warehouses
		WHERE company_id = $1
		ORDER BY name, id`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query warehouses: %w", err)
	}
	defer rows.Close()

	warehouses := []Warehouse{}
	for rows.Next() {
		var w Warehouse
		if err := scanWarehouse(rows, &w); err != nil {
			return nil, fmt.Errorf("failed to scan warehouse: %w", err)
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, rows.Err()
}

func (s *warehouseService) GetWarehouse(ctx context.Context, companyID, id int) (*Warehouse, error) {
	w := &Warehouse{}
	err := scanWarehouse(s.pool.QueryRow(ctx, `
		SELECT `+warehouseColumns+`
		FROM warehouses
		WHERE id = $1 AND company_id = $2`,
		id, companyID,
	), w)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("warehouse %d not found", id)
		}
		return nil, fmt.Errorf("get warehouse %d: %w", id, err)
	}
	return w, nil
}

func (s *warehouseService) UpdateWarehouse(ctx context.Context, companyID, id int, patch WarehousePatch) (*Warehouse, error) {
	var b updateBuilder
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, invalidArgument("warehouse name cannot be empty")
	}
	setOpt(&b, "name", patch.Name)
	setOpt(&b, "address", patch.Address)
	if b.empty() {
		return nil, invalidArgument("no fields to update")
	}

	sql, args := b.build("warehouses", id, companyID, warehouseColumns)
	w := &Warehouse{}
	if err := scanWarehouse(s.pool.QueryRow(ctx, sql, args...), w); err != nil {
		if isNoRows(err) {
			return nil, notFound("warehouse %d not found", id)
		}
		return nil, fmt.Errorf("update warehouse %d: %w", id, err)
	}
	return w, nil
}

func (s *warehouseService) DeleteWarehouse(ctx context.Context, companyID, id int) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM warehouses WHERE id = $1 AND company_id = $2", id, companyID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return failedPrecondition("warehouse %d has stock movements", id)
		}
		return fmt.Errorf("delete warehouse %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("warehouse %d not found", id)
	}
	return nil
}
