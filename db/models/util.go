package models

import (
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"go.hackfix.me/crudkit/db/types"
)

func lastInsertID(result sql.Result) (uint64, error) {
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	if id < 0 {
		return 0, fmt.Errorf("invalid negative ID from database: %d", id)
	}

	return uint64(id), nil
}

// orderClause returns the ORDER BY clause for the filter's order column, if
// it's one of the allowed columns, or for def otherwise. A leading '-' sorts in
// descending order.
func orderClause(filter *types.Filter, alias string, allowed []string, def string) string {
	col, dir := def, "ASC"
	if filter != nil && filter.Order != "" {
		order, desc := strings.CutPrefix(filter.Order, "-")
		if slices.Contains(allowed, order) {
			col = order
			if desc {
				dir = "DESC"
			}
		}
	}

	return fmt.Sprintf("ORDER BY %s.%s %s", alias, col, dir)
}
