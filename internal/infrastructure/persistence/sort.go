package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// sortColumns whitelists the columns a list endpoint may order by. Sort
// input arrives from query strings and is never interpolated unchecked.
type sortColumns struct {
	allowed  map[string]struct{}
	fallback string
}

func newSortColumns(fallback string, columns ...string) sortColumns {
	allowed := make(map[string]struct{}, len(columns)+1)
	allowed[fallback] = struct{}{}
	for _, c := range columns {
		allowed[c] = struct{}{}
	}
	return sortColumns{allowed: allowed, fallback: fallback}
}

var orderSort = newSortColumns("created_at",
	"updated_at", "code", "customer_name", "status", "source", "total_price", "quantity")

// column returns field when whitelisted, the fallback otherwise.
func (s sortColumns) column(field string) string {
	field = strings.TrimSpace(field)
	if _, ok := s.allowed[field]; ok {
		return field
	}
	return s.fallback
}

// orderBy builds the ORDER BY clause. Direction defaults to descending;
// id breaks ties so offset pages stay stable.
func (s sortColumns) orderBy(field, direction string) clause.OrderBy {
	desc := !strings.EqualFold(strings.TrimSpace(direction), "asc")
	return clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: s.column(field)}, Desc: desc},
		{Column: clause.Column{Name: "id"}, Desc: desc},
	}}
}
