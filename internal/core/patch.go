package core

import (
	"fmt"
	"strings"
)

// updateBuilder collects "column = $n" assignments for a partial UPDATE.
// Only fields present in a patch are added, so absent fields keep their values.
type updateBuilder struct {
	sets []string
	args []any
}

func (b *updateBuilder) set(column string, value any) {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

// setOpt adds column only when v is non-nil.
func setOpt[T any](b *updateBuilder, column string, v *T) {
	if v != nil {
		b.set(column, *v)
	}
}

func (b *updateBuilder) empty() bool {
	return len(b.sets) == 0
}

// build renders the UPDATE scoped to one company-owned row and bumps updated_at.
func (b *updateBuilder) build(table string, id, companyID int, returning string) (string, []any) {
	args := append(append([]any{}, b.args...), id, companyID)
	sql := fmt.Sprintf(
		"UPDATE %s SET %s, updated_at = NOW() WHERE id = $%d AND company_id = $%d RETURNING %s",
		table, strings.Join(b.sets, ", "), len(args)-1, len(args), returning,
	)
	return sql, args
}
