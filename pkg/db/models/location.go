package models

import (
	"time"

	"github.com/google/uuid"
)

// Location is a shipping address, used both as buyer destination and seller
// pickup origin.
type Location struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	Label       string     `gorm:"column:label;not null"`
	ContactName string     `gorm:"column:contact_name;not null"`
	Phone       string     `gorm:"column:phone;not null"`
	Email       string     `gorm:"column:email"`
	Address     string     `gorm:"column:address;not null"`
	City        string     `gorm:"column:city;not null"`
	Province    string     `gorm:"column:province;not null"`
	PostalCode  string     `gorm:"column:postal_code;not null"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
