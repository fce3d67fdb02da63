package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lokapasar/backend/pkg/enums"
)

// Shipment is the carrier-correlated record of physical fulfillment. The raw
// booking response and the callback history are retained for audit.
type Shipment struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID            `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	BookingID      string               `gorm:"column:booking_id;not null;uniqueIndex"`
	Status         enums.ShipmentStatus `gorm:"column:status;not null;default:'awaiting_pickup'"`
	Courier        string               `gorm:"column:courier;not null"`
	Price          int64                `gorm:"column:price;not null;default:0"`
	TrackingNumber *string              `gorm:"column:tracking_number"`
	History        ShipmentHistory      `gorm:"column:history;type:jsonb;serializer:json"`
	RawResponse    string               `gorm:"column:raw_response"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// ShipmentHistory accumulates carrier callback snapshots, newest last.
type ShipmentHistory []ShipmentHistoryEntry

type ShipmentHistoryEntry struct {
	Status     string    `json:"status"`
	Note       string    `json:"note,omitempty"`
	ReportedAt time.Time `json:"reported_at"`
}
