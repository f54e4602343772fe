package persistence

import (
	"gorm.io/gorm"

	"github.com/warehouse/backend/internal/domain/shared"
)

// applyFilter applies filter options to the query
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering; the field is whitelisted before reaching SQL
	orderBy := ValidateSortField(filter.OrderBy, allSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "goods_id":
			query = query.Where("goods_id = ?", value)
		case "batch_number":
			query = query.Where("batch_number = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "business_type":
			query = query.Where("business_type = ?", value)
		case "applicant_id":
			query = query.Where("applicant_id = ?", value)
		case "has_stock":
			if value == true {
				query = query.Where("quantity > 0")
			}
		case "no_stock":
			if value == true {
				query = query.Where("quantity = 0 AND locked_quantity = 0")
			}
		case "locked":
			if value == true {
				query = query.Where("locked_quantity > 0")
			}
		}
	}

	return query
}
