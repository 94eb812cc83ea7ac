package core

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestUpdateBuilder_Build(t *testing.T) {
	name := "Main"
	var address *string

	var b updateBuilder
	setOpt(&b, "name", &name)
	setOpt(&b, "address", address)
	b.set("reorder_level", 4)

	sql, args := b.build("warehouses", 7, 3, "id")
	assert.Equal(t,
		"UPDATE warehouses SET name = $1, reorder_level = $2, updated_at = NOW() WHERE id = $3 AND company_id = $4 RETURNING id",
		sql)
	assert.Equal(t, []any{"Main", 4, 7, 3}, args)
}

func TestUpdateBuilder_Empty(t *testing.T) {
	var b updateBuilder
	var s *string
	setOpt(&b, "name", s)
	assert.True(t, b.empty())
}

func TestFormatOrderNumber(t *testing.T) {
	d := time.Date(2024, 5, 21, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "SO-20240521-001", FormatOrderNumber(d, 1))
	assert.Equal(t, "SO-20240521-042", FormatOrderNumber(d, 42))
	assert.Equal(t, "SO-20240521-1000", FormatOrderNumber(d, 1000))
}

func TestOrderTotals(t *testing.T) {
	subtotal, total := OrderTotals([]OrderItemInput{
		{Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
		{Quantity: 3, UnitPrice: decimal.RequireFromString("0.35")},
	})
	assert.True(t, subtotal.Equal(decimal.RequireFromString("21.05")), "subtotal = %s", subtotal)
	assert.True(t, total.Equal(subtotal))

	zero, _ := OrderTotals(nil)
	assert.True(t, zero.IsZero())
}

func TestOrderStatus_Valid(t *testing.T) {
	for _, s := range []OrderStatus{OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("fulfilled").Valid())
}

func TestParseDate(t *testing.T) {
	_, err := parseDate("orderDate", "2024-02-30")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	d, err := parseDate("orderDate", "2024-02-29")
	assert.NoError(t, err)
	assert.Equal(t, time.February, d.Month())

	none, err := parseOptionalDate("dueDate", nil)
	assert.NoError(t, err)
	assert.Nil(t, none)
}

func TestErrorHelpers(t *testing.T) {
	err := notFound("product %d not found", 9)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "product 9 not found: not found", err.Error())

	assert.True(t, isNoRows(fmt.Errorf("wrapped: %w", pgx.ErrNoRows)))
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isForeignKeyViolation(fmt.Errorf("delete: %w", &pgconn.PgError{Code: "23503"})))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

func TestValidatePrice(t *testing.T) {
	for _, ok := range []string{"0", "10", "25.50", "0.01", "1.230"} {
		assert.NoError(t, validatePrice("unit price", decimal.RequireFromString(ok)), ok)
	}
	for _, bad := range []string{"-0.01", "0.005", "9.999", "1.0001"} {
		assert.ErrorIs(t, validatePrice("unit price", decimal.RequireFromString(bad)), ErrInvalidArgument, bad)
	}
}

func TestInsertFailed(t *testing.T) {
	err := insertFailed("sales order", pgx.ErrNoRows)
	assert.ErrorIs(t, err, ErrInternal)
	assert.False(t, isNoRows(err))

	cause := errors.New("connection reset")
	err = insertFailed("sales order", cause)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrInternal)
}

func TestSortItemsByProduct(t *testing.T) {
	items := []SalesOrderItem{
		{ID: 1, ProductID: 7},
		{ID: 2, ProductID: 3},
		{ID: 3, ProductID: 7},
		{ID: 4, ProductID: 1},
	}
	sortItemsByProduct(items)

	var got [][2]int
	for _, it := range items {
		got = append(got, [2]int{it.ProductID, it.ID})
	}
	assert.Equal(t, [][2]int{{1, 4}, {3, 2}, {7, 1}, {7, 3}}, got)
}
