package models

import (
	"time"

	"github.com/google/uuid"
)

// Store is a seller. Its origin location is where carrier pickups happen.
type Store struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string     `gorm:"column:name;not null"`
	Phone            string     `gorm:"column:phone;not null"`
	OriginLocationID *uuid.UUID `gorm:"column:origin_location_id;type:uuid"`
	OriginLocation   *Location  `gorm:"foreignKey:OriginLocationID"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
