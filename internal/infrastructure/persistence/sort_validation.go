package persistence

import "strings"

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns the defaultField if the input is empty or not whitelisted.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// DocumentSortFields contains allowed sort fields for documents
var DocumentSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"order_number":   true,
	"business_type":  true,
	"status":         true,
	"total_quantity": true,
	"total_amount":   true,
	"apply_time":     true,
	"approval_time":  true,
	"operation_time": true,
}

// LedgerSortFields contains allowed sort fields for stock lines
var LedgerSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"batch_number":       true,
	"quantity":           true,
	"available_quantity": true,
	"locked_quantity":    true,
	"average_cost":       true,
	"expiry_date":        true,
	"last_inbound_date":  true,
	"last_outbound_date": true,
}

// MovementSortFields contains allowed sort fields for journal entries
var MovementSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"movement_type": true,
	"quantity":      true,
	"order_number":  true,
}

// allSortFields is the union used by the shared filter helper
var allSortFields = func() map[string]bool {
	merged := make(map[string]bool)
	for _, fields := range []map[string]bool{DocumentSortFields, LedgerSortFields, MovementSortFields} {
		for field := range fields {
			merged[field] = true
		}
	}
	return merged
}()
