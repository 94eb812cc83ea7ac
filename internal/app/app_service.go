package app

import (
	"context"
	"fmt"

	"inventory-manager/internal/cache"
	"inventory-manager/internal/core"
	"inventory-manager/internal/events"
	"inventory-manager/internal/logger"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps wires the services an appService composes. CompanyCache, Publisher and
// Metrics are optional.
type Deps struct {
	DB           Pinger
	Companies    core.CompanyService
	CompanyCache *cache.CompanyCache
	Warehouses   core.WarehouseService
	Catalog      core.CatalogService
	Ledger       core.StockLedger
	Customers    core.ContactService
	Suppliers    core.ContactService
	Orders       core.OrderService
	Publisher    events.Publisher
	Metrics      *Metrics
}

type appService struct {
	db         Pinger
	companies  core.CompanyService
	resolver   *cache.CompanyCache
	warehouses core.WarehouseService
	catalog    core.CatalogService
	ledger     core.StockLedger
	contacts   map[ContactKind]core.ContactService
	orders     core.OrderService
	publisher  events.Publisher
	metrics    *Metrics
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(d Deps) ApplicationService {
	s := &appService{
		db:         d.DB,
		companies:  d.Companies,
		resolver:   d.CompanyCache,
		warehouses: d.Warehouses,
		catalog:    d.Catalog,
		ledger:     d.Ledger,
		contacts:   map[ContactKind]core.ContactService{Customers: d.Customers, Suppliers: d.Suppliers},
		orders:     d.Orders,
		publisher:  d.Publisher,
		metrics:    d.Metrics,
	}
	if s.resolver == nil {
		s.resolver = cache.NewCompanyCache(nil, d.Companies, 0)
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s
}

func (s *appService) Health(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	return nil
}

// ── Tenant directory ──────────────────────────────────────────────────────────

func (s *appService) ResolveCompany(ctx context.Context, userID string) (int, error) {
	return s.resolver.ResolveCompany(ctx, userID)
}

func (s *appService) CreateCompany(ctx context.Context, userID string, input core.CompanyInput) (*core.Company, error) {
	c, err := s.companies.CreateCompany(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	s.resolver.Prime(ctx, userID, c.ID)
	logger.Info(ctx).
		Int("company_id", c.ID).
		Str("user_id", userID).
		Msg("Company created")
	return c, nil
}

func (s *appService) GetMyCompany(ctx context.Context, userID string) (*core.Company, error) {
	return s.companies.GetCompanyForUser(ctx, userID)
}

// ── Warehouses ────────────────────────────────────────────────────────────────

func (s *appService) CreateWarehouse(ctx context.Context, companyID int, input core.WarehouseInput) (*core.Warehouse, error) {
	return s.warehouses.CreateWarehouse(ctx, companyID, input)
}

func (s *appService) ListWarehouses(ctx context.Context, companyID int) (*WarehouseListResult, error) {
	ws, err := s.warehouses.ListWarehouses(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return &WarehouseListResult{Warehouses: ws}, nil
}

func (s *appService) GetWarehouse(ctx context.Context, companyID, id int) (*core.Warehouse, error) {
	return s.warehouses.GetWarehouse(ctx, companyID, id)
}

func (s *appService) UpdateWarehouse(ctx context.Context, companyID, id int, patch core.WarehousePatch) (*core.Warehouse, error) {
	return s.warehouses.UpdateWarehouse(ctx, companyID, id, patch)
}

func (s *appService) DeleteWarehouse(ctx context.Context, companyID, id int) error {
	return s.warehouses.DeleteWarehouse(ctx, companyID, id)
}

// ── Catalog ───────────────────────────────────────────────────────────────────

func (s *appService) CreateProduct(ctx context.Context, companyID int, input core.ProductInput) (*core.Product, error) {
	return s.catalog.CreateProduct(ctx, companyID, input)
}

func (s *appService) ListProducts(ctx context.Context, companyID int, lowStockOnly bool) (*ProductListResult, error) {
	ps, err := s.catalog.ListProducts(ctx, companyID, core.ProductFilter{LowStockOnly: lowStockOnly})
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: ps}, nil
}

func (s *appService) GetProduct(ctx context.Context, companyID, id int) (*core.ProductWithStock, error) {
	return s.catalog.GetProduct(ctx, companyID, id)
}

func (s *appService) UpdateProduct(ctx context.Context, companyID, id int, patch core.ProductPatch) (*core.Product, error) {
	return s.catalog.UpdateProduct(ctx, companyID, id, patch)
}

func (s *appService) DeleteProduct(ctx context.Context, companyID, id int) error {
	return s.catalog.DeleteProduct(ctx, companyID, id)
}

// ── Stock ledger ──────────────────────────────────────────────────────────────

func (s *appService) AdjustStock(ctx context.Context, companyID int, input core.AdjustmentInput) (*core.StockLevel, error) {
	level, err := s.ledger.AdjustStock(ctx, companyID, input)
	if err != nil {
		return nil, err
	}
	s.metrics.stockMovements.WithLabelValues(string(core.MovementAdjustment)).Inc()

	ref := core.ReferenceTypeManual
	quantity := level.Quantity
	s.publishMovement(ctx, events.StockMovementRecordedEvent{
		Metadata:      events.Metadata{CompanyID: companyID},
		ProductID:     input.ProductID,
		WarehouseID:   input.WarehouseID,
		MovementType:  string(core.MovementAdjustment),
		Quantity:      input.Quantity,
		ReferenceType: &ref,
		Level:         &quantity,
	})
	return level, nil
}

func (s *appService) RecordMovement(ctx context.Context, companyID int, input core.MovementInput) (*core.StockMovement, error) {
	m, err := s.ledger.RecordMovement(ctx, companyID, input)
	if err != nil {
		return nil, err
	}
	s.metrics.stockMovements.WithLabelValues(string(m.MovementType)).Inc()
	s.publishMovement(ctx, movementEvent(companyID, m))
	return m, nil
}

func (s *appService) ListMovements(ctx context.Context, companyID, limit int) (*MovementListResult, error) {
	if limit <= 0 || limit > core.DefaultMovementListLimit {
		limit = core.DefaultMovementListLimit
	}
	ms, err := s.ledger.ListMovements(ctx, companyID, limit)
	if err != nil {
		return nil, err
	}
	return &MovementListResult{Movements: ms, Limit: limit}, nil
}

func (s *appService) GetStockLevel(ctx context.Context, companyID, productID, warehouseID int) (*core.StockLevel, error) {
	return s.ledger.GetStockLevel(ctx, companyID, productID, warehouseID)
}

func (s *appService) ReplayLevel(ctx context.Context, companyID, productID, warehouseID int) (*core.LedgerReplay, error) {
	r, err := s.ledger.ReplayLevel(ctx, companyID, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if !r.Consistent {
		logger.Warn(ctx).
			Int("company_id", companyID).
			Int("product_id", productID).
			Int("warehouse_id", warehouseID).
			Int("stored", r.StoredQuantity).
			Int("replayed", r.ReplayQuantity).
			Msg("Stock level diverges from movement log")
	}
	return r, nil
}

// ── Customers and suppliers ───────────────────────────────────────────────────

func (s *appService) contactService(kind ContactKind) (core.ContactService, error) {
	svc, ok := s.contacts[kind]
	if !ok || svc == nil {
		return nil, fmt.Errorf("unknown contact kind %q: %w", kind, core.ErrInvalidArgument)
	}
	return svc, nil
}

func (s *appService) CreateContact(ctx context.Context, kind ContactKind, companyID int, input core.ContactInput) (*core.Contact, error) {
	svc, err := s.contactService(kind)
	if err != nil {
		return nil, err
	}
	return svc.Create(ctx, companyID, input)
}

func (s *appService) ListContacts(ctx context.Context, kind ContactKind, companyID int) (*ContactListResult, error) {
	svc, err := s.contactService(kind)
	if err != nil {
		return nil, err
	}
	cs, err := svc.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return &ContactListResult{Kind: kind, Contacts: cs}, nil
}

func (s *appService) GetContact(ctx context.Context, kind ContactKind, companyID, id int) (*core.Contact, error) {
	svc, err := s.contactService(kind)
	if err != nil {
		return nil, err
	}
	return svc.Get(ctx, companyID, id)
}

func (s *appService) UpdateContact(ctx context.Context, kind ContactKind, companyID, id int, patch core.ContactPatch) (*core.Contact, error) {
	svc, err := s.contactService(kind)
	if err != nil {
		return nil, err
	}
	return svc.Update(ctx, companyID, id, patch)
}

func (s *appService) DeleteContact(ctx context.Context, kind ContactKind, companyID, id int) error {
	svc, err := s.contactService(kind)
	if err != nil {
		return err
	}
	return svc.Delete(ctx, companyID, id)
}

// ── Sales orders ──────────────────────────────────────────────────────────────

func (s *appService) CreateSalesOrder(ctx context.Context, companyID int, input core.OrderInput) (*core.SalesOrderWithItems, error) {
	order, err := s.orders.CreateSalesOrder(ctx, companyID, input)
	if err != nil {
		return nil, err
	}
	s.metrics.ordersCreated.Inc()

	err = s.publisher.PublishSalesOrderCreated(ctx, events.SalesOrderCreatedEvent{
		Metadata:    events.Metadata{CompanyID: companyID},
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		CustomerID:  order.CustomerID,
		Items:       len(order.Items),
		TotalAmount: order.TotalAmount,
	})
	s.logPublishFailure(ctx, events.EventTypeSalesOrderCreated, err)

	logger.Info(ctx).
		Int("company_id", companyID).
		Int("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Msg("Sales order created")
	return order, nil
}

func (s *appService) ListSalesOrders(ctx context.Context, companyID int, status *core.OrderStatus) (*OrderListResult, error) {
	list, err := s.orders.ListSalesOrders(ctx, companyID, status)
	if err != nil {
		return nil, err
	}
	return &OrderListResult{Orders: list}, nil
}

func (s *appService) GetSalesOrder(ctx context.Context, companyID, id int) (*core.SalesOrderWithItems, error) {
	return s.orders.GetSalesOrder(ctx, companyID, id)
}

func (s *appService) UpdateSalesOrder(ctx context.Context, companyID, id int, patch core.SalesOrderPatch) (*core.SalesOrder, error) {
	return s.orders.UpdateSalesOrder(ctx, companyID, id, patch)
}

func (s *appService) FulfillSalesOrder(ctx context.Context, companyID, id, warehouseID int) (*core.Fulfillment, error) {
	f, err := s.orders.FulfillSalesOrder(ctx, companyID, id, warehouseID)
	if err != nil {
		return nil, err
	}
	s.metrics.ordersFulfilled.Inc()

	ids := make([]int, 0, len(f.Movements))
	for i := range f.Movements {
		m := &f.Movements[i]
		ids = append(ids, m.ID)
		s.metrics.stockMovements.WithLabelValues(string(m.MovementType)).Inc()
		s.publishMovement(ctx, movementEvent(companyID, m))
	}

	err = s.publisher.PublishSalesOrderFulfilled(ctx, events.SalesOrderFulfilledEvent{
		Metadata:    events.Metadata{CompanyID: companyID},
		OrderID:     f.Order.ID,
		OrderNumber: f.Order.OrderNumber,
		WarehouseID: warehouseID,
		MovementIDs: ids,
	})
	s.logPublishFailure(ctx, events.EventTypeSalesOrderFulfilled, err)

	logger.Info(ctx).
		Int("company_id", companyID).
		Int("order_id", id).
		Int("warehouse_id", warehouseID).
		Int("movements", len(f.Movements)).
		Msg("Sales order fulfilled")
	return f, nil
}

// ── Event helpers ─────────────────────────────────────────────────────────────

func movementEvent(companyID int, m *core.StockMovement) events.StockMovementRecordedEvent {
	return events.StockMovementRecordedEvent{
		Metadata:      events.Metadata{CompanyID: companyID},
		MovementID:    m.ID,
		ProductID:     m.ProductID,
		WarehouseID:   m.WarehouseID,
		MovementType:  string(m.MovementType),
		Quantity:      m.Quantity,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
	}
}

func (s *appService) publishMovement(ctx context.Context, e events.StockMovementRecordedEvent) {
	err := s.publisher.PublishStockMovementRecorded(ctx, e)
	s.logPublishFailure(ctx, events.EventTypeStockMovementRecorded, err)
}

// logPublishFailure records a failed publish. The write it describes has
// already committed, so the caller still succeeds.
func (s *appService) logPublishFailure(ctx context.Context, eventType string, err error) {
	if err == nil {
		return
	}
	s.metrics.publishFailures.WithLabelValues(eventType).Inc()
	logger.Error(ctx).
		Err(err).
		Str("event_type", eventType).
		Msg("Failed to publish domain event")
}
