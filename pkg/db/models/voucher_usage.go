package models

import (
	"time"

	"github.com/google/uuid"
)

// VoucherUsage records a redemption. The unique (user_id, voucher_id) index is
// the authoritative guard against double redemption.
type VoucherUsage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_voucher_usages_user_voucher"`
	VoucherID uuid.UUID `gorm:"column:voucher_id;type:uuid;not null;uniqueIndex:idx_voucher_usages_user_voucher"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
