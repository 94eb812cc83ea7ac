package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const orderNumberPrefix = "SO"

// FormatOrderNumber renders SO-YYYYMMDD-NNN. The suffix is zero-padded to three
// digits and widens past 999.
func FormatOrderNumber(date time.Time, n int) string {
	return fmt.Sprintf("%s-%s-%03d", orderNumberPrefix, date.Format("20060102"), n)
}

// nextOrderNumberTx increments the company's counter for date and returns the
// formatted number. The upsert holds the counter row lock until tx ends, so
// concurrent creators on the same day are serialized.
func nextOrderNumberTx(ctx context.Context, tx pgx.Tx, companyID int, date time.Time) (string, error) {
	var n int
	err := tx.QueryRow(ctx, `
		INSERT INTO sales_order_sequences (company_id, seq_date, last_number)
		VALUES ($1, $2::date, 1)
		ON CONFLICT (company_id, seq_date)
		DO UPDATE SET last_number = sales_order_sequences.last_number + 1
		RETURNING last_number`,
		companyID, date.Format(dateLayout),
	).Scan(&n)
	if err != nil {
		return "", fmt.Errorf("failed to allocate order number: %w", err)
	}
	return FormatOrderNumber(date, n), nil
}
