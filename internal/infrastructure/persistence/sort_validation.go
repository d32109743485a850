package persistence

import (
	"strings"

	"github.com/bizops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"mobile":     true,
	"city":       true,
}

// MaterialSortFields contains allowed sort fields for catalog materials
var MaterialSortFields = map[string]bool{
	"created_at":         true,
	"name":               true,
	"category":           true,
	"unit_price":         true,
	"remaining_quantity": true,
}

// applyListFilter applies search, ordering and paging. Search is matched
// case-insensitively against searchColumns.
func applyListFilter(q *gorm.DB, f shared.Filter, allowed map[string]bool, defaultSort string, searchColumns ...string) *gorm.DB {
	f = f.Normalize()
	q = applySearch(q, f.Search, searchColumns...)
	field := ValidateSortField(f.OrderBy, allowed, defaultSort)
	return q.Order(field + " " + ValidateSortOrder(f.OrderDir)).
		Offset(f.Offset()).
		Limit(f.PageSize)
}

func applySearch(q *gorm.DB, search string, columns ...string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return q
	}
	pattern := "%" + strings.ToLower(search) + "%"
	clauses := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		clauses[i] = "LOWER(" + col + ") LIKE ?"
		args[i] = pattern
	}
	return q.Where("("+strings.Join(clauses, " OR ")+")", args...)
}
