package document

// BusinessType identifies the business reason behind a document. The type
// determines which inventory effect the execution engine applies.
type BusinessType string

const (
	// Inbound types
	BusinessPurchaseIn    BusinessType = "PURCHASE_IN"
	BusinessReturnIn      BusinessType = "RETURN_IN"
	BusinessTransferIn    BusinessType = "TRANSFER_IN"
	BusinessInventoryGain BusinessType = "INVENTORY_GAIN"
	BusinessOtherIn       BusinessType = "OTHER_IN"

	// Outbound types
	BusinessSaleOut       BusinessType = "SALE_OUT"
	BusinessTransferOut   BusinessType = "TRANSFER_OUT"
	BusinessInventoryLoss BusinessType = "INVENTORY_LOSS"
	BusinessDamageOut     BusinessType = "DAMAGE_OUT"
	BusinessOtherOut      BusinessType = "OTHER_OUT"

	// Inter-warehouse transfer
	BusinessWarehouseTransfer BusinessType = "WAREHOUSE_TRANSFER"

	// Stock taking
	BusinessRegularCheck BusinessType = "REGULAR_CHECK"
	BusinessSpotCheck    BusinessType = "SPOT_CHECK"
	BusinessAnnualCheck  BusinessType = "ANNUAL_CHECK"
)

// IsValid checks if the type is a known BusinessType
func (t BusinessType) IsValid() bool {
	switch t {
	case BusinessPurchaseIn, BusinessReturnIn, BusinessTransferIn, BusinessInventoryGain, BusinessOtherIn,
		BusinessSaleOut, BusinessTransferOut, BusinessInventoryLoss, BusinessDamageOut, BusinessOtherOut,
		BusinessWarehouseTransfer,
		BusinessRegularCheck, BusinessSpotCheck, BusinessAnnualCheck:
		return true
	}
	return false
}

// String returns the string representation of BusinessType
func (t BusinessType) String() string {
	return string(t)
}

// EffectDirection is the inventory effect a business type produces on execution.
type EffectDirection string

const (
	EffectInbound   EffectDirection = "INBOUND"
	EffectOutbound  EffectDirection = "OUTBOUND"
	EffectTransfer  EffectDirection = "TRANSFER"
	EffectStocktake EffectDirection = "STOCKTAKE"
	EffectUnknown   EffectDirection = "UNKNOWN"
)

// Direction classifies the business type into its inventory effect
func (t BusinessType) Direction() EffectDirection {
	switch t {
	case BusinessPurchaseIn, BusinessReturnIn, BusinessTransferIn, BusinessInventoryGain, BusinessOtherIn:
		return EffectInbound
	case BusinessSaleOut, BusinessTransferOut, BusinessInventoryLoss, BusinessDamageOut, BusinessOtherOut:
		return EffectOutbound
	case BusinessWarehouseTransfer:
		return EffectTransfer
	case BusinessRegularCheck, BusinessSpotCheck, BusinessAnnualCheck:
		return EffectStocktake
	}
	return EffectUnknown
}

// IsInbound returns true for types that add stock to a single warehouse
func (t BusinessType) IsInbound() bool {
	return t.Direction() == EffectInbound
}

// IsOutbound returns true for types that remove stock from a single warehouse
func (t BusinessType) IsOutbound() bool {
	return t.Direction() == EffectOutbound
}

// IsTransfer returns true for the inter-warehouse transfer type
func (t BusinessType) IsTransfer() bool {
	return t.Direction() == EffectTransfer
}

// IsStocktake returns true for stock taking types
func (t BusinessType) IsStocktake() bool {
	return t.Direction() == EffectStocktake
}
