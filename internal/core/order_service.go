package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const dateLayout = "2006-01-02"

type orderService struct {
	pool   *pgxpool.Pool
	ledger StockLedger
	now    func() time.Time
}

// NewOrderService constructs an OrderService. now supplies the date used for
// order numbering and default order dates; nil means time.Now.
func NewOrderService(pool *pgxpool.Pool, ledger StockLedger, now func() time.Time) OrderService {
	if now == nil {
		now = time.Now
	}
	return &orderService{pool: pool, ledger: ledger, now: now}
}

const orderColumns = `id, company_id, order_number, customer_id, status, order_date::text, due_date::text,
	subtotal, tax_amount, discount_amount, total_amount, notes, created_at, updated_at`

// orderSelect is the read view: the order plus its customer's name.
const orderSelect = `
	SELECT so.id, so.company_id, so.order_number, so.customer_id, c.name, so.status,
	       so.order_date::text, so.due_date::text, so.subtotal, so.tax_amount,
	       so.discount_amount, so.total_amount, so.notes, so.created_at, so.updated_at
	FROM sales_orders so
	LEFT JOIN customers c ON c.id = so.customer_id`

func scanOrder(row interface{ Scan(...any) error }, o *SalesOrder) error {
	return row.Scan(
		&o.ID, &o.CompanyID, &o.OrderNumber, &o.CustomerID, &o.Status, &o.OrderDate, &o.DueDate,
		&o.Subtotal, &o.TaxAmount, &o.DiscountAmount, &o.TotalAmount, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
}

func scanOrderView(row interface{ Scan(...any) error }, o *SalesOrder) error {
	return row.Scan(
		&o.ID, &o.CompanyID, &o.OrderNumber, &o.CustomerID, &o.CustomerName, &o.Status, &o.OrderDate, &o.DueDate,
		&o.Subtotal, &o.TaxAmount, &o.DiscountAmount, &o.TotalAmount, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, invalidArgument("%s %q must be YYYY-MM-DD", field, value)
	}
	return t, nil
}

func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	t, err := parseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// OrderTotals returns the subtotal of items; tax and discount are always zero,
// so the total equals the subtotal.
func OrderTotals(items []OrderItemInput) (subtotal, total decimal.Decimal) {
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return subtotal, subtotal
}

func (s *orderService) CreateSalesOrder(ctx context.Context, companyID int, input OrderInput) (order *SalesOrderWithItems, err error) {
	ctx, span := startSpan(ctx, "OrderService.CreateSalesOrder", companyID,
		attribute.Int("order.items", len(input.Items)))
	defer func() { endSpan(span, err) }()

	if len(input.Items) == 0 {
		return nil, invalidArgument("order must have at least one item")
	}
	for i, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, invalidArgument("item %d: quantity must be positive", i+1)
		}
		if err := validatePrice(fmt.Sprintf("item %d: unit price", i+1), item.UnitPrice); err != nil {
			return nil, err
		}
	}

	today := s.now()
	orderDate := today.Format(dateLayout)
	if input.OrderDate != "" {
		orderDate = input.OrderDate
	}
	parsedOrderDate, err := parseDate("orderDate", orderDate)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseOptionalDate("dueDate", input.DueDate)
	if err != nil {
		return nil, err
	}

	subtotal, total := OrderTotals(input.Items)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if input.CustomerID != nil {
		if err := ensureOwned(ctx, tx, "customers", "customer", companyID, *input.CustomerID); err != nil {
			return nil, err
		}
	}

	number, err := nextOrderNumberTx(ctx, tx, companyID, today)
	if err != nil {
		return nil, err
	}

	order = &SalesOrderWithItems{Items: make([]SalesOrderItem, 0, len(input.Items))}
	err = scanOrder(tx.QueryRow(ctx, `
		INSERT INTO sales_orders (company_id, order_number, customer_id, status, order_date, due_date,
		                          subtotal, tax_amount, discount_amount, total_amount, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0, $8, $9)
		RETURNING `+orderColumns,
		companyID, number, input.CustomerID, string(OrderPending), parsedOrderDate, dueDate,
		subtotal, total, toPtr(input.Notes),
	), &order.SalesOrder)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, alreadyExists("order number %s already exists", number)
		}
		return nil, insertFailed("sales order", err)
	}

	for i, in := range input.Items {
		item := SalesOrderItem{}
		err := tx.QueryRow(ctx,
			"SELECT name, sku FROM products WHERE id = $1 AND company_id = $2",
			in.ProductID, companyID,
		).Scan(&item.ProductName, &item.ProductSKU)
		if err != nil {
			if isNoRows(err) {
				return nil, notFound("item %d: product %d not found", i+1, in.ProductID)
			}
			return nil, fmt.Errorf("item %d: failed to resolve product: %w", i+1, err)
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO sales_order_items (sales_order_id, product_id, quantity, unit_price, total_price)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, sales_order_id, product_id, quantity, unit_price, total_price, created_at`,
			order.ID, in.ProductID, in.Quantity, in.UnitPrice,
			in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity))),
		).Scan(&item.ID, &item.SalesOrderID, &item.ProductID, &item.Quantity,
			&item.UnitPrice, &item.TotalPrice, &item.CreatedAt)
		if err != nil {
			return nil, insertFailed(fmt.Sprintf("order item %d", i+1), err)
		}
		order.Items = append(order.Items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order creation: %w", err)
	}

	if order.CustomerID != nil {
		var name string
		if err := s.pool.QueryRow(ctx, "SELECT name FROM customers WHERE id = $1", *order.CustomerID).Scan(&name); err == nil {
			order.CustomerName = &name
		}
	}
	return order, nil
}

func (s *orderService) ListSalesOrders(ctx context.Context, companyID int, status *OrderStatus) ([]SalesOrder, error) {
	query := orderSelect + " WHERE so.company_id = $1"
	args := []any{companyID}

	if status != nil {
		if !status.Valid() {
			return nil, invalidArgument("unknown order status %q", *status)
		}
		query += " AND so.status = $2"
		args = append(args, string(*status))
	}
	query += " ORDER BY so.created_at DESC, so.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []SalesOrder{}
	for rows.Next() {
		var o SalesOrder
		if err := scanOrderView(rows, &o); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *orderService) GetSalesOrder(ctx context.Context, companyID, id int) (*SalesOrderWithItems, error) {
	order := &SalesOrderWithItems{}
	err := scanOrderView(s.pool.QueryRow(ctx,
		orderSelect+" WHERE so.id = $1 AND so.company_id = $2", id, companyID,
	), &order.SalesOrder)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("sales order %d not found", id)
		}
		return nil, fmt.Errorf("get sales order %d: %w", id, err)
	}

	order.Items, err = fetchOrderItems(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) UpdateSalesOrder(ctx context.Context, companyID, id int, patch SalesOrderPatch) (*SalesOrder, error) {
	var b updateBuilder

	if patch.CustomerID != nil {
		if err := ensureOwned(ctx, s.pool, "customers", "customer", companyID, *patch.CustomerID); err != nil {
			return nil, err
		}
		b.set("customer_id", *patch.CustomerID)
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, invalidArgument("unknown order status %q", *patch.Status)
		}
		b.set("status", string(*patch.Status))
	}
	if patch.OrderDate != nil {
		d, err := parseDate("orderDate", *patch.OrderDate)
		if err != nil {
			return nil, err
		}
		b.set("order_date", d)
	}
	if patch.DueDate != nil {
		d, err := parseDate("dueDate", *patch.DueDate)
		if err != nil {
			return nil, err
		}
		b.set("due_date", d)
	}
	setOpt(&b, "notes", patch.Notes)
	if b.empty() {
		return nil, invalidArgument("no fields to update")
	}

	sql, args := b.build("sales_orders", id, companyID, orderColumns)
	o := &SalesOrder{}
	if err := scanOrder(s.pool.QueryRow(ctx, sql, args...), o); err != nil {
		if isNoRows(err) {
			return nil, notFound("sales order %d not found", id)
		}
		return nil, fmt.Errorf("update sales order %d: %w", id, err)
	}
	return o, nil
}

func (s *orderService) FulfillSalesOrder(ctx context.Context, companyID, id, warehouseID int) (f *Fulfillment, err error) {
	ctx, span := startSpan(ctx, "OrderService.FulfillSalesOrder", companyID,
		attribute.Int("order.id", id), attribute.Int("warehouse.id", warehouseID))
	defer func() { endSpan(span, err) }()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the order so two fulfillments of the same order cannot both pass the status check.
	var status OrderStatus
	err = tx.QueryRow(ctx,
		"SELECT status FROM sales_orders WHERE id = $1 AND company_id = $2 FOR UPDATE",
		id, companyID,
	).Scan(&status)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("sales order %d not found", id)
		}
		return nil, fmt.Errorf("failed to lock sales order %d: %w", id, err)
	}
	if status != OrderConfirmed {
		return nil, failedPrecondition("sales order %d is %s; only confirmed orders can be fulfilled", id, status)
	}

	if err := ensureOwned(ctx, tx, "warehouses", "warehouse", companyID, warehouseID); err != nil {
		return nil, err
	}

	items, err := fetchOrderItems(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	// Level rows are locked in product order so fulfillments sharing products
	// cannot deadlock on each other.
	sortItemsByProduct(items)

	f = &Fulfillment{WarehouseID: warehouseID, Movements: make([]StockMovement, 0, len(items))}
	orderID := id
	notes := fmt.Sprintf("Fulfilled sales order %d", id)
	for _, item := range items {
		m, err := s.ledger.RecordMovementTx(ctx, tx, companyID, MovementInput{
			ProductID:     item.ProductID,
			WarehouseID:   warehouseID,
			MovementType:  MovementOut,
			Quantity:      item.Quantity,
			ReferenceType: ReferenceTypeSalesOrder,
			ReferenceID:   &orderID,
			Notes:         notes,
		})
		if err != nil {
			return nil, fmt.Errorf("fulfill item %d of sales order %d: %w", item.ID, id, err)
		}
		f.Movements = append(f.Movements, *m)
	}

	f.Order = &SalesOrder{}
	err = scanOrder(tx.QueryRow(ctx, `
		UPDATE sales_orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+orderColumns,
		string(OrderShipped), id,
	), f.Order)
	if err != nil {
		return nil, fmt.Errorf("failed to mark sales order %d shipped: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit fulfillment: %w", err)
	}
	return f, nil
}

// fetchOrderItems reads all items of an order, ordered by item id. The rows are
// fully drained before returning so q can be reused inside a transaction.
func fetchOrderItems(ctx context.Context, q pgxQuerier, orderID int) ([]SalesOrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT soi.id, soi.sales_order_id, soi.product_id, p.name, p.sku,
		       soi.quantity, soi.unit_price, soi.total_price, soi.created_at
		FROM sales_order_items soi
		JOIN products p ON p.id = soi.product_id
		WHERE soi.sales_order_id = $1
		ORDER BY soi.id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SalesOrderItem, error) {
		var it SalesOrderItem
		err := row.Scan(&it.ID, &it.SalesOrderID, &it.ProductID, &it.ProductName, &it.ProductSKU,
			&it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.CreatedAt)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan order items: %w", err)
	}
	if items == nil {
		items = []SalesOrderItem{}
	}
	return items, nil
}

// sortItemsByProduct orders items by product id, then item id.
func sortItemsByProduct(items []SalesOrderItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ProductID != items[j].ProductID {
			return items[i].ProductID < items[j].ProductID
		}
		return items[i].ID < items[j].ID
	})
}
