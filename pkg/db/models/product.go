package models

import (
	"time"

	"github.com/google/uuid"
)

// Product carries the catalog context needed for discount scoping and
// shipment booking (seller resolution, per-item weight).
type Product struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID     uuid.UUID `gorm:"column:store_id;type:uuid;not null;index"`
	CategoryID  uuid.UUID `gorm:"column:category_id;type:uuid;not null;index"`
	Name        string    `gorm:"column:name;not null"`
	WeightGrams int       `gorm:"column:weight_grams;not null;default:0"`
	Store       *Store    `gorm:"foreignKey:StoreID"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
