package document

import (
	"context"

	"github.com/warehouse/backend/internal/domain/document"
)

// OrderNumberGenerator allocates unique human-readable order numbers of the
// form prefix + yyyyMMdd + zero-padded daily sequence, e.g. RK20260831-0001.
type OrderNumberGenerator interface {
	Next(ctx context.Context, prefix string) (string, error)
}

// OrderPrefix returns the order number prefix for a business type
func OrderPrefix(businessType document.BusinessType) string {
	switch businessType.Direction() {
	case document.EffectInbound:
		return "RK"
	case document.EffectOutbound:
		return "CK"
	case document.EffectTransfer:
		return "DB"
	case document.EffectStocktake:
		return "PD"
	}
	return "DN"
}
