package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type stockLedger struct {
	pool *pgxpool.Pool
}

func NewStockLedger(pool *pgxpool.Pool) StockLedger {
	return &stockLedger{pool: pool}
}

const stockLevelColumns = "id, product_id, warehouse_id, quantity, reserved_quantity, created_at, updated_at"

const movementColumns = `id, product_id, warehouse_id, movement_type, quantity,
	reference_type, reference_id, notes, created_at`

func scanMovement(row interface{ Scan(...any) error }, m *StockMovement) error {
	return row.Scan(
		&m.ID, &m.ProductID, &m.WarehouseID, &m.MovementType, &m.Quantity,
		&m.ReferenceType, &m.ReferenceID, &m.Notes, &m.CreatedAt,
	)
}

func pairAttrs(productID, warehouseID int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int("product.id", productID),
		attribute.Int("warehouse.id", warehouseID),
	}
}

// ── Standalone operations ─────────────────────────────────────────────────────

func (s *stockLedger) AdjustStock(ctx context.Context, companyID int, input AdjustmentInput) (level *StockLevel, err error) {
	ctx, span := startSpan(ctx, "StockLedger.AdjustStock", companyID,
		append(pairAttrs(input.ProductID, input.WarehouseID), attribute.Int("stock.delta", input.Quantity))...)
	defer func() { endSpan(span, err) }()

	if input.Quantity == 0 {
		return nil, invalidArgument("adjustment quantity must be non-zero")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := ensurePairOwned(ctx, tx, companyID, input.ProductID, input.WarehouseID); err != nil {
		return nil, err
	}

	current, err := lockLevelTx(ctx, tx, input.ProductID, input.WarehouseID)
	if err != nil {
		return nil, err
	}

	// The log keeps the requested delta even when the level was clamped.
	ref := ReferenceTypeManual
	if _, err := insertMovementTx(ctx, tx, MovementInput{
		ProductID:     input.ProductID,
		WarehouseID:   input.WarehouseID,
		MovementType:  MovementAdjustment,
		Quantity:      input.Quantity,
		ReferenceType: ref,
		Notes:         input.Notes,
	}); err != nil {
		return nil, err
	}

	level, err = writeLevelTx(ctx, tx, current, input.Quantity)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return level, nil
}

func (s *stockLedger) RecordMovement(ctx context.Context, companyID int, input MovementInput) (*StockMovement, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	m, err := s.RecordMovementTx(ctx, tx, companyID, input)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return m, nil
}

func (s *stockLedger) GetStockLevel(ctx context.Context, companyID, productID, warehouseID int) (*StockLevel, error) {
	if err := ensurePairOwned(ctx, s.pool, companyID, productID, warehouseID); err != nil {
		return nil, err
	}
	return readLevel(ctx, s.pool, productID, warehouseID, false)
}

func (s *stockLedger) ListMovements(ctx context.Context, companyID, limit int) ([]StockMovementView, error) {
	if limit <= 0 || limit > DefaultMovementListLimit {
		limit = DefaultMovementListLimit
	}

	rows, err := s.pool.Query(ctx, `
		SELECT sm.id, sm.product_id, sm.warehouse_id, sm.movement_type, sm.quantity,
		       sm.reference_type, sm.reference_id, sm.notes, sm.created_at,
		       p.name, p.sku, w.name
		FROM stock_movements sm
		JOIN products p   ON p.id = sm.product_id
		JOIN warehouses w ON w.id = sm.warehouse_id
		WHERE p.company_id = $1
		ORDER BY sm.created_at DESC, sm.id DESC
		LIMIT $2`,
		companyID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock movements: %w", err)
	}
	defer rows.Close()

	movements := []StockMovementView{}
	for rows.Next() {
		var v StockMovementView
		if err := rows.Scan(
			&v.ID, &v.ProductID, &v.WarehouseID, &v.MovementType, &v.Quantity,
			&v.ReferenceType, &v.ReferenceID, &v.Notes, &v.CreatedAt,
			&v.ProductName, &v.ProductSKU, &v.WarehouseName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		movements = append(movements, v)
	}
	return movements, rows.Err()
}

// ReplayLevel reads the log and the level from one snapshot so concurrent writers
// cannot make a consistent ledger look inconsistent.
func (s *stockLedger) ReplayLevel(ctx context.Context, companyID, productID, warehouseID int) (*LedgerReplay, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := ensurePairOwned(ctx, tx, companyID, productID, warehouseID); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+movementColumns+`
		FROM stock_movements
		WHERE product_id = $1 AND warehouse_id = $2
		ORDER BY id`,
		productID, warehouseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query movement log: %w", err)
	}
	var log []StockMovement
	for rows.Next() {
		var m StockMovement
		if err := scanMovement(rows, &m); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		log = append(log, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate movement log: %w", err)
	}

	level, err := readLevel(ctx, tx, productID, warehouseID, false)
	if err != nil {
		return nil, err
	}

	replayed := FoldMovements(log)
	return &LedgerReplay{
		ProductID:      productID,
		WarehouseID:    warehouseID,
		StoredQuantity: level.Quantity,
		ReplayQuantity: replayed,
		Movements:      len(log),
		Consistent:     replayed == level.Quantity,
	}, nil
}

// ── TX-scoped operations ──────────────────────────────────────────────────────

// RecordMovementTx locks the level, inserts the movement, then applies its delta.
// The movement id is allocated under the row lock, so id order on a pair is the
// order in which deltas were applied and ReplayLevel folds the same sequence.
func (s *stockLedger) RecordMovementTx(ctx context.Context, tx pgx.Tx, companyID int, input MovementInput) (m *StockMovement, err error) {
	ctx, span := startSpan(ctx, "StockLedger.RecordMovement", companyID,
		append(pairAttrs(input.ProductID, input.WarehouseID),
			attribute.String("stock.movement_type", string(input.MovementType)),
			attribute.Int("stock.quantity", input.Quantity))...)
	defer func() { endSpan(span, err) }()

	if !input.MovementType.Valid() {
		return nil, invalidArgument("unknown movement type %q", input.MovementType)
	}
	switch {
	case input.MovementType != MovementAdjustment && input.Quantity <= 0:
		return nil, invalidArgument("%s movement quantity must be positive", input.MovementType)
	case input.Quantity == 0:
		return nil, invalidArgument("movement quantity must be non-zero")
	}

	if err := ensurePairOwned(ctx, tx, companyID, input.ProductID, input.WarehouseID); err != nil {
		return nil, err
	}

	current, err := lockLevelTx(ctx, tx, input.ProductID, input.WarehouseID)
	if err != nil {
		return nil, err
	}

	m, err = insertMovementTx(ctx, tx, input)
	if err != nil {
		return nil, err
	}

	if _, err := writeLevelTx(ctx, tx, current, MovementDelta(input.MovementType, input.Quantity)); err != nil {
		return nil, err
	}
	return m, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// ensurePairOwned fails with ErrNotFound unless both product and warehouse belong to companyID.
func ensurePairOwned(ctx context.Context, q pgxQuerier, companyID, productID, warehouseID int) error {
	if err := ensureOwned(ctx, q, "products", "product", companyID, productID); err != nil {
		return fmt.Errorf("verify product ownership: %w", err)
	}
	if err := ensureOwned(ctx, q, "warehouses", "warehouse", companyID, warehouseID); err != nil {
		return fmt.Errorf("verify warehouse ownership: %w", err)
	}
	return nil
}

// lockLevelTx creates the level row for the pair at zero on first use and locks
// it. Writers on the same pair serialize on this lock until their tx ends.
func lockLevelTx(ctx context.Context, tx pgx.Tx, productID, warehouseID int) (*StockLevel, error) {
	if _, err := tx.Exec(ctx, `
		INSERT INTO stock_levels (product_id, warehouse_id, quantity, reserved_quantity)
		VALUES ($1, $2, 0, 0)
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`,
		productID, warehouseID,
	); err != nil {
		return nil, fmt.Errorf("failed to create stock level: %w", err)
	}
	return readLevel(ctx, tx, productID, warehouseID, true)
}

// writeLevelTx stores max(0, current+delta) on a row locked by lockLevelTx.
func writeLevelTx(ctx context.Context, tx pgx.Tx, current *StockLevel, delta int) (*StockLevel, error) {
	level := &StockLevel{}
	err := tx.QueryRow(ctx, `
		UPDATE stock_levels
		SET quantity = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+stockLevelColumns,
		ClampedAdd(current.Quantity, delta), current.ID,
	).Scan(&level.ID, &level.ProductID, &level.WarehouseID, &level.Quantity,
		&level.ReservedQuantity, &level.CreatedAt, &level.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update stock level: %w", err)
	}
	return level, nil
}

// readLevel returns the level row for the pair, or a zero level if none exists.
// forUpdate takes a row lock and requires q to be a transaction.
func readLevel(ctx context.Context, q pgxQuerier, productID, warehouseID int, forUpdate bool) (*StockLevel, error) {
	sql := `SELECT ` + stockLevelColumns + ` FROM stock_levels WHERE product_id = $1 AND warehouse_id = $2`
	if forUpdate {
		sql += " FOR UPDATE"
	}

	l := &StockLevel{}
	err := q.QueryRow(ctx, sql, productID, warehouseID).Scan(
		&l.ID, &l.ProductID, &l.WarehouseID, &l.Quantity, &l.ReservedQuantity, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return &StockLevel{ProductID: productID, WarehouseID: warehouseID}, nil
		}
		return nil, fmt.Errorf("failed to read stock level: %w", err)
	}
	return l, nil
}

func insertMovementTx(ctx context.Context, tx pgx.Tx, input MovementInput) (*StockMovement, error) {
	m := &StockMovement{}
	err := scanMovement(tx.QueryRow(ctx, `
		INSERT INTO stock_movements (product_id, warehouse_id, movement_type, quantity,
		                             reference_type, reference_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+movementColumns,
		input.ProductID, input.WarehouseID, string(input.MovementType), input.Quantity,
		toPtr(input.ReferenceType), input.ReferenceID, toPtr(input.Notes),
	), m)
	if err != nil {
		return nil, insertFailed("stock movement", err)
	}
	return m, nil
}
