package domain

import "github.com/shopspring/decimal"

// Settings keys holding the discount configuration.
const (
	SettingGlobalDiscount    = "globalDiscount"
	SettingCategoryDiscounts = "categoryDiscounts"
	SettingBrandDiscounts    = "brandDiscounts"
)

// DiscountConfiguration is the externally administered discount setup as read
// from the settings store.
type DiscountConfiguration struct {
	Global     decimal.Decimal            `json:"global"`
	Categories map[string]decimal.Decimal `json:"categories"`
	Brands     map[string]decimal.Decimal `json:"brands"`
}
