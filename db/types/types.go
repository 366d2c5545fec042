package types

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"
)

// Querier exposes only methods for running SQL queries, and some helper functions.
type Querier interface {
	NewContext() context.Context
	TimeNow() time.Time
	ExecContext(ctx context.Context, sql string, arguments ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Filter is used to dynamically modify queries.
type Filter struct {
	Where  string
	Args   []any
	Limit  int
	Offset int
	// Order is the name of the column to sort by. Models validate it against
	// the columns they allow sorting on.
	Order string
}

// NewFilter creates a new query filter.
func NewFilter(where string, args []any) *Filter {
	return &Filter{Where: where, Args: args}
}

// And joins f2 with f1 using an AND condition. Pagination and order values of
// f1 are kept.
func (f1 *Filter) And(f2 *Filter) *Filter {
	if f1 == nil {
		return f2
	}
	return &Filter{
		Where:  fmt.Sprintf("(%s) AND (%s)", f1.Where, f2.Where),
		Args:   slices.Concat(f1.Args, f2.Args),
		Limit:  f1.Limit,
		Offset: f1.Offset,
		Order:  f1.Order,
	}
}

// Or joins f2 with f1 using an OR condition. Pagination and order values of f1
// are kept.
func (f1 *Filter) Or(f2 *Filter) *Filter {
	if f1 == nil {
		return f2
	}
	return &Filter{
		Where:  fmt.Sprintf("(%s) OR (%s)", f1.Where, f2.Where),
		Args:   slices.Concat(f1.Args, f2.Args),
		Limit:  f1.Limit,
		Offset: f1.Offset,
		Order:  f1.Order,
	}
}

// WhereClause renders the WHERE clause of the filter. A nil or empty filter
// matches all rows.
func (f1 *Filter) WhereClause() (string, []any) {
	if f1 == nil || f1.Where == "" {
		return "WHERE 1=1", []any{}
	}
	return fmt.Sprintf("WHERE %s", f1.Where), f1.Args
}

// LimitClause renders the LIMIT and OFFSET clauses of the filter, or an empty
// string if no limit is set.
func (f1 *Filter) LimitClause() string {
	if f1 == nil || f1.Limit <= 0 {
		return ""
	}
	if f1.Offset > 0 {
		return fmt.Sprintf("LIMIT %d OFFSET %d", f1.Limit, f1.Offset)
	}
	return fmt.Sprintf("LIMIT %d", f1.Limit)
}
