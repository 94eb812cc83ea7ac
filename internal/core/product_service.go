package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type catalogService struct {
	pool *pgxpool.Pool
}

// NewCatalogService constructs a CatalogService backed by PostgreSQL.
func NewCatalogService(pool *pgxpool.Pool) CatalogService {
	return &catalogService{pool: pool}
}

const productColumns = `id, company_id, sku, name, description, category, unit_price, cost_price,
	barcode, qr_code, reorder_level, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }, p *Product) error {
	return row.Scan(
		&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Description, &p.Category,
		&p.UnitPrice, &p.CostPrice, &p.Barcode, &p.QRCode, &p.ReorderLevel,
		&p.CreatedAt, &p.UpdatedAt,
	)
}

func (s *catalogService) CreateProduct(ctx context.Context, companyID int, input ProductInput) (*Product, error) {
	if strings.TrimSpace(input.SKU) == "" {
		return nil, invalidArgument("sku is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, invalidArgument("product name is required")
	}
	if err := validatePrice("unit price", input.UnitPrice); err != nil {
		return nil, err
	}
	if err := validatePrice("cost price", input.CostPrice); err != nil {
		return nil, err
	}
	if input.ReorderLevel < 0 {
		return nil, invalidArgument("reorder level cannot be negative")
	}

	p := &Product{}
	err := scanProduct(s.pool.QueryRow(ctx, `
		INSERT INTO products (company_id, sku, name, description, category, unit_price, cost_price,
		                      barcode, qr_code, reorder_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+productColumns,
		companyID, input.SKU, input.Name, toPtr(input.Description), toPtr(input.Category),
		input.UnitPrice, input.CostPrice, toPtr(input.Barcode), toPtr(input.QRCode), input.ReorderLevel,
	), p)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, alreadyExists("product with sku %q already exists", input.SKU)
		}
		return nil, insertFailed("product "+input.SKU, err)
	}
	return p, nil
}

func (s *catalogService) ListProducts(ctx context.Context, companyID int, filter ProductFilter) ([]ProductWithStock, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE company_id = $1
		ORDER BY name, id`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []ProductWithStock
	index := make(map[int]int)
	for rows.Next() {
		var p ProductWithStock
		if err := scanProduct(rows, &p.Product); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.StockByWarehouse = []WarehouseStock{}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	rows.Close()

	stock, err := s.pool.Query(ctx, `
		SELECT sl.product_id, sl.warehouse_id, w.name, sl.quantity, sl.reserved_quantity
		FROM stock_levels sl
		JOIN products p   ON p.id = sl.product_id
		JOIN warehouses w ON w.id = sl.warehouse_id
		WHERE p.company_id = $1
		ORDER BY w.name, w.id`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock levels: %w", err)
	}
	defer stock.Close()

	for stock.Next() {
		var productID int
		var ws WarehouseStock
		if err := stock.Scan(&productID, &ws.WarehouseID, &ws.WarehouseName, &ws.Quantity, &ws.ReservedQuantity); err != nil {
			return nil, fmt.Errorf("failed to scan stock level: %w", err)
		}
		if i, ok := index[productID]; ok {
			products[i].StockByWarehouse = append(products[i].StockByWarehouse, ws)
			products[i].TotalStock += ws.Quantity
		}
	}
	if err := stock.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stock levels: %w", err)
	}

	out := make([]ProductWithStock, 0, len(products))
	for _, p := range products {
		p.LowStock = IsLowStock(p.TotalStock, p.ReorderLevel)
		if filter.LowStockOnly && !p.LowStock {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *catalogService) GetProduct(ctx context.Context, companyID, id int) (*ProductWithStock, error) {
	p := &ProductWithStock{StockByWarehouse: []WarehouseStock{}}
	err := scanProduct(s.pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1 AND company_id = $2`,
		id, companyID,
	), &p.Product)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("product %d not found", id)
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT sl.warehouse_id, w.name, sl.quantity, sl.reserved_quantity
		FROM stock_levels sl
		JOIN warehouses w ON w.id = sl.warehouse_id
		WHERE sl.product_id = $1
		ORDER BY w.name, w.id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock for product %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var ws WarehouseStock
		if err := rows.Scan(&ws.WarehouseID, &ws.WarehouseName, &ws.Quantity, &ws.ReservedQuantity); err != nil {
			return nil, fmt.Errorf("failed to scan stock level: %w", err)
		}
		p.StockByWarehouse = append(p.StockByWarehouse, ws)
		p.TotalStock += ws.Quantity
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stock levels: %w", err)
	}
	p.LowStock = IsLowStock(p.TotalStock, p.ReorderLevel)
	return p, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, companyID, id int, patch ProductPatch) (*Product, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, invalidArgument("product name cannot be empty")
	}
	if patch.UnitPrice != nil {
		if err := validatePrice("unit price", *patch.UnitPrice); err != nil {
			return nil, err
		}
	}
	if patch.CostPrice != nil {
		if err := validatePrice("cost price", *patch.CostPrice); err != nil {
			return nil, err
		}
	}
	if patch.ReorderLevel != nil && *patch.ReorderLevel < 0 {
		return nil, invalidArgument("reorder level cannot be negative")
	}

	var b updateBuilder
	setOpt(&b, "name", patch.Name)
	setOpt(&b, "description", patch.Description)
	setOpt(&b, "category", patch.Category)
	setOpt(&b, "unit_price", patch.UnitPrice)
	setOpt(&b, "cost_price", patch.CostPrice)
	setOpt(&b, "barcode", patch.Barcode)
	setOpt(&b, "qr_code", patch.QRCode)
	setOpt(&b, "reorder_level", patch.ReorderLevel)
	if b.empty() {
		return nil, invalidArgument("no fields to update")
	}

	sql, args := b.build("products", id, companyID, productColumns)
	p := &Product{}
	if err := scanProduct(s.pool.QueryRow(ctx, sql, args...), p); err != nil {
		if isNoRows(err) {
			return nil, notFound("product %d not found", id)
		}
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	return p, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, companyID, id int) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM products WHERE id = $1 AND company_id = $2", id, companyID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return failedPrecondition("product %d is referenced by stock movements or sales orders", id)
		}
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("product %d not found", id)
	}
	return nil
}
