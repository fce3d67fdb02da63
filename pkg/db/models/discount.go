package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lokapasar/backend/pkg/enums"
)

// Discount is an automatically-applied, scope-ranked reduction. UsedCount is
// only ever advanced through a conditional increment at the storage layer.
type Discount struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string              `gorm:"column:name;not null"`
	Scope       enums.DiscountScope `gorm:"column:scope;not null"`
	Type        enums.DiscountType  `gorm:"column:type;not null"`
	Value       decimal.Decimal     `gorm:"column:value;type:numeric(18,6);not null"`
	ProductID   *uuid.UUID          `gorm:"column:product_id;type:uuid"`
	CategoryID  *uuid.UUID          `gorm:"column:category_id;type:uuid"`
	StoreID     *uuid.UUID          `gorm:"column:store_id;type:uuid"`
	MaxDiscount *int64              `gorm:"column:max_discount"`
	MinPurchase *int64              `gorm:"column:min_purchase"`
	UsageLimit  *int                `gorm:"column:usage_limit"`
	UsedCount   int                 `gorm:"column:used_count;not null;default:0"`
	Active      bool                `gorm:"column:active;not null;default:true"`
	StartsAt    time.Time           `gorm:"column:starts_at;not null"`
	EndsAt      time.Time           `gorm:"column:ends_at;not null"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
