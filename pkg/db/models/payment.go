package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lokapasar/backend/pkg/enums"
)

// Payment is the gateway-correlated record of money owed for an order.
// ExternalOrderID is the key webhooks correlate on; exactly one row exists per
// order. Status is only ever advanced by the payment webhook handler.
type Payment struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	ExternalOrderID string              `gorm:"column:external_order_id;not null;uniqueIndex"`
	Status          enums.PaymentStatus `gorm:"column:status;not null;default:'pending'"`
	Amount          int64               `gorm:"column:amount;not null"`
	SnapToken       string              `gorm:"column:snap_token;not null"`
	RedirectURL     string              `gorm:"column:redirect_url;not null"`
	TransactionID   *string             `gorm:"column:transaction_id"`
	PaymentType     *string             `gorm:"column:payment_type"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
