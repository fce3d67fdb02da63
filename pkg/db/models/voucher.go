package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lokapasar/backend/pkg/enums"
)

// Voucher is a code-redeemable reduction, usable at most once per user.
// Value is a fraction for percentage vouchers (0.20 = 20%) and a minor-unit
// amount for fixed vouchers.
type Voucher struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code        string            `gorm:"column:code;not null;uniqueIndex"`
	Type        enums.VoucherType `gorm:"column:type;not null"`
	Value       decimal.Decimal   `gorm:"column:value;type:numeric(18,6);not null"`
	MaxDiscount *int64            `gorm:"column:max_discount"`
	MinPurchase *int64            `gorm:"column:min_purchase"`
	UsageLimit  *int              `gorm:"column:usage_limit"`
	Active      bool              `gorm:"column:active;not null;default:true"`
	ExpiresAt   time.Time         `gorm:"column:expires_at;not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
