package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile mirrors the auth user and links it to a processor customer.
type Profile struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email      *string   `gorm:"column:email"`
	CustomerID *string   `gorm:"column:customer_id;index"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Profile) TableName() string { return "profiles" }
