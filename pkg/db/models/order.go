package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lokapasar/backend/pkg/enums"
)

// Order is a committed purchase with a frozen monetary breakdown.
// Invariant: TotalAmount = ItemsAmount + ShippingCost - DiscountAmount >= 0.
type Order struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber    string            `gorm:"column:order_number;not null;uniqueIndex"`
	UserID         uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	LocationID     uuid.UUID         `gorm:"column:location_id;type:uuid;not null"`
	Status         enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	ItemsAmount    int64             `gorm:"column:items_amount;not null"`
	ShippingCost   int64             `gorm:"column:shipping_cost;not null;default:0"`
	DiscountAmount int64             `gorm:"column:discount_amount;not null;default:0"`
	TotalAmount    int64             `gorm:"column:total_amount;not null"`
	VoucherID      *uuid.UUID        `gorm:"column:voucher_id;type:uuid"`
	Notes          *string           `gorm:"column:notes"`
	Items          []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment        *Payment          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Shipment       *Shipment         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Location       *Location         `gorm:"foreignKey:LocationID"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
