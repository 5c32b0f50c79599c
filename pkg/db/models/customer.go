package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a CRM record. Tags holds a JSON-encoded list of free-text
// labels; the customers service decodes it leniently so one corrupt row never
// fails a whole listing.
type Customer struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name      string     `gorm:"column:name;not null"`
	Email     string     `gorm:"column:email"`
	Phone     string     `gorm:"column:phone"`
	Points    int        `gorm:"column:points;not null;default:0"`
	Birthday  *time.Time `gorm:"column:birthday;type:date"`
	Tags      string     `gorm:"column:tags;not null;default:'[]'"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
