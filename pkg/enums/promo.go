package enums

// VoucherType distinguishes how a code-redeemed reduction is computed.
type VoucherType string

const (
	VoucherTypePercentage  VoucherType = "percentage"
	VoucherTypeFixedAmount VoucherType = "fixed_amount"
)

// DiscountType distinguishes how an auto-applied reduction is computed.
type DiscountType string

const (
	DiscountTypePercentage   DiscountType = "percentage"
	DiscountTypeFixedAmount  DiscountType = "fixed_amount"
	DiscountTypeFreeShipping DiscountType = "free_shipping"
)

// DiscountScope declares what a discount attaches to. More specific scopes win
// during resolution.
type DiscountScope string

const (
	DiscountScopeProduct  DiscountScope = "product"
	DiscountScopeCategory DiscountScope = "category"
	DiscountScopeStore    DiscountScope = "store"
	DiscountScopeGlobal   DiscountScope = "global"
)

// Rank orders scopes by specificity; lower ranks win.
func (s DiscountScope) Rank() int {
	switch s {
	case DiscountScopeProduct:
		return 0
	case DiscountScopeCategory:
		return 1
	case DiscountScopeStore:
		return 2
	case DiscountScopeGlobal:
		return 3
	default:
		return 4
	}
}
