package app

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-manager/internal/core"
	"inventory-manager/internal/events"
)

// ── Fakes ─────────────────────────────────────────────────────────────────────

type fakeCompanies struct {
	core.CompanyService
	byUser   map[string]int
	resolves int
}

func (f *fakeCompanies) ResolveCompany(_ context.Context, userID string) (int, error) {
	f.resolves++
	if id, ok := f.byUser[userID]; ok {
		return id, nil
	}
	return 0, core.ErrNotFound
}

func (f *fakeCompanies) CreateCompany(_ context.Context, userID string, input core.CompanyInput) (*core.Company, error) {
	if _, ok := f.byUser[userID]; ok {
		return nil, core.ErrAlreadyExists
	}
	f.byUser[userID] = 99
	return &core.Company{ID: 99, Name: input.Name}, nil
}

type fakeLedger struct {
	core.StockLedger
	err       error
	lastLimit int
}

func (f *fakeLedger) AdjustStock(_ context.Context, _ int, in core.AdjustmentInput) (*core.StockLevel, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &core.StockLevel{ProductID: in.ProductID, WarehouseID: in.WarehouseID, Quantity: 0}, nil
}

func (f *fakeLedger) RecordMovement(_ context.Context, _ int, in core.MovementInput) (*core.StockMovement, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &core.StockMovement{ID: 5, ProductID: in.ProductID, WarehouseID: in.WarehouseID,
		MovementType: in.MovementType, Quantity: in.Quantity}, nil
}

func (f *fakeLedger) ListMovements(_ context.Context, _, limit int) ([]core.StockMovementView, error) {
	f.lastLimit = limit
	return []core.StockMovementView{}, nil
}

type fakeOrders struct {
	core.OrderService
	fulfillErr error
}

func (f *fakeOrders) CreateSalesOrder(_ context.Context, companyID int, in core.OrderInput) (*core.SalesOrderWithItems, error) {
	subtotal, total := core.OrderTotals(in.Items)
	return &core.SalesOrderWithItems{
		SalesOrder: core.SalesOrder{ID: 1, CompanyID: companyID, OrderNumber: "SO-20240521-001",
			Status: core.OrderPending, Subtotal: subtotal, TotalAmount: total},
		Items: make([]core.SalesOrderItem, len(in.Items)),
	}, nil
}

func (f *fakeOrders) FulfillSalesOrder(_ context.Context, companyID, id, warehouseID int) (*core.Fulfillment, error) {
	if f.fulfillErr != nil {
		return nil, f.fulfillErr
	}
	ref := core.ReferenceTypeSalesOrder
	return &core.Fulfillment{
		Order:       &core.SalesOrder{ID: id, CompanyID: companyID, OrderNumber: "SO-20240521-001", Status: core.OrderShipped},
		WarehouseID: warehouseID,
		Movements: []core.StockMovement{
			{ID: 11, MovementType: core.MovementOut, Quantity: 2, ReferenceType: &ref, ReferenceID: &id},
			{ID: 12, MovementType: core.MovementOut, Quantity: 3, ReferenceType: &ref, ReferenceID: &id},
		},
	}, nil
}

type recordingPublisher struct {
	events.NopPublisher
	fail      error
	movements []events.StockMovementRecordedEvent
	created   []events.SalesOrderCreatedEvent
	fulfilled []events.SalesOrderFulfilledEvent
}

func (p *recordingPublisher) PublishStockMovementRecorded(_ context.Context, e events.StockMovementRecordedEvent) error {
	p.movements = append(p.movements, e)
	return p.fail
}

func (p *recordingPublisher) PublishSalesOrderCreated(_ context.Context, e events.SalesOrderCreatedEvent) error {
	p.created = append(p.created, e)
	return p.fail
}

func (p *recordingPublisher) PublishSalesOrderFulfilled(_ context.Context, e events.SalesOrderFulfilledEvent) error {
	p.fulfilled = append(p.fulfilled, e)
	return p.fail
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestApp(t *testing.T) (*appService, *recordingPublisher, *fakeLedger, *fakeOrders, *fakeCompanies) {
	t.Helper()
	pub := &recordingPublisher{}
	ledger := &fakeLedger{}
	orders := &fakeOrders{}
	companies := &fakeCompanies{byUser: map[string]int{"u1": 1}}
	svc := NewAppService(Deps{
		DB:        pingFunc(func(context.Context) error { return nil }),
		Companies: companies,
		Ledger:    ledger,
		Orders:    orders,
		Publisher: pub,
		Metrics:   NewMetrics(prometheus.NewRegistry()),
	}).(*appService)
	return svc, pub, ledger, orders, companies
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestAppService_AdjustStockPublishesEvent(t *testing.T) {
	svc, pub, _, _, _ := newTestApp(t)

	level, err := svc.AdjustStock(context.Background(), 1, core.AdjustmentInput{ProductID: 2, WarehouseID: 3, Quantity: -10})
	require.NoError(t, err)
	assert.Equal(t, 0, level.Quantity)

	require.Len(t, pub.movements, 1)
	e := pub.movements[0]
	assert.Equal(t, 1, e.CompanyID)
	assert.Equal(t, "adjustment", e.MovementType)
	assert.Equal(t, -10, e.Quantity)
	assert.Equal(t, core.ReferenceTypeManual, *e.ReferenceType)
	assert.Equal(t, 0, *e.Level)
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.stockMovements.WithLabelValues("adjustment")))
}

func TestAppService_FailedWriteDoesNotPublish(t *testing.T) {
	svc, pub, ledger, _, _ := newTestApp(t)
	ledger.err = core.ErrNotFound

	_, err := svc.RecordMovement(context.Background(), 1, core.MovementInput{MovementType: core.MovementIn, Quantity: 1})
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Empty(t, pub.movements)
}

func TestAppService_PublishFailureDoesNotFailRequest(t *testing.T) {
	svc, pub, _, _, _ := newTestApp(t)
	pub.fail = errors.New("kafka down")

	m, err := svc.RecordMovement(context.Background(), 1, core.MovementInput{
		ProductID: 2, WarehouseID: 3, MovementType: core.MovementIn, Quantity: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, m.ID)
	assert.Len(t, pub.movements, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.publishFailures.WithLabelValues(events.EventTypeStockMovementRecorded)))
}

func TestAppService_CreateSalesOrderPublishes(t *testing.T) {
	svc, pub, _, _, _ := newTestApp(t)

	order, err := svc.CreateSalesOrder(context.Background(), 1, core.OrderInput{
		Items: []core.OrderItemInput{{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)
	require.Len(t, pub.created, 1)
	assert.Equal(t, order.ID, pub.created[0].OrderID)
	assert.Equal(t, 1, pub.created[0].Items)
	assert.True(t, pub.created[0].TotalAmount.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.ordersCreated))
}

func TestAppService_FulfillPublishesMovementsAndOrderEvent(t *testing.T) {
	svc, pub, _, _, _ := newTestApp(t)

	f, err := svc.FulfillSalesOrder(context.Background(), 1, 7, 3)
	require.NoError(t, err)
	assert.Equal(t, core.OrderShipped, f.Order.Status)

	require.Len(t, pub.movements, 2)
	assert.Equal(t, core.ReferenceTypeSalesOrder, *pub.movements[0].ReferenceType)
	assert.Equal(t, 7, *pub.movements[1].ReferenceID)

	require.Len(t, pub.fulfilled, 1)
	assert.Equal(t, []int{11, 12}, pub.fulfilled[0].MovementIDs)
	assert.Equal(t, 3, pub.fulfilled[0].WarehouseID)
}

func TestAppService_FulfillFailurePublishesNothing(t *testing.T) {
	svc, pub, _, orders, _ := newTestApp(t)
	orders.fulfillErr = core.ErrFailedPrecondition

	_, err := svc.FulfillSalesOrder(context.Background(), 1, 7, 3)
	assert.ErrorIs(t, err, core.ErrFailedPrecondition)
	assert.Empty(t, pub.movements)
	assert.Empty(t, pub.fulfilled)
}

func TestAppService_ListMovementsClampsLimit(t *testing.T) {
	svc, _, ledger, _, _ := newTestApp(t)
	ctx := context.Background()

	res, err := svc.ListMovements(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultMovementListLimit, res.Limit)

	_, err = svc.ListMovements(ctx, 1, 5000)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultMovementListLimit, ledger.lastLimit)

	res, err = svc.ListMovements(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Limit)
}

func TestAppService_CompanyResolution(t *testing.T) {
	svc, _, _, _, companies := newTestApp(t)
	ctx := context.Background()

	id, err := svc.ResolveCompany(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	_, err = svc.ResolveCompany(ctx, "stranger")
	assert.ErrorIs(t, err, core.ErrNotFound)

	c, err := svc.CreateCompany(ctx, "stranger", core.CompanyInput{Name: "New Co"})
	require.NoError(t, err)
	id, err = svc.ResolveCompany(ctx, "stranger")
	require.NoError(t, err)
	assert.Equal(t, c.ID, id)
	assert.Equal(t, 3, companies.resolves)

	_, err = svc.CreateCompany(ctx, "u1", core.CompanyInput{Name: "Again"})
	assert.ErrorIs(t, err, core.ErrAlreadyExists)
}

func TestAppService_UnknownContactKind(t *testing.T) {
	svc, _, _, _, _ := newTestApp(t)
	_, err := svc.ListContacts(context.Background(), ContactKind("vendors"), 1)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestAppService_Health(t *testing.T) {
	svc, _, _, _, _ := newTestApp(t)
	require.NoError(t, svc.Health(context.Background()))

	svc.db = pingFunc(func(context.Context) error { return pgx.ErrTxClosed })
	assert.ErrorIs(t, svc.Health(context.Background()), pgx.ErrTxClosed)
}
