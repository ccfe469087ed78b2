package models

import (
	"time"

	"github.com/google/uuid"
)

// Listing is a marketplace item. Only the owning user may mutate or delete it;
// its media (records and backing files) never outlive it.
type Listing struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string     `gorm:"size:150;not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Price       *float64   `json:"price"`
	Category    *string    `gorm:"size:50" json:"category"`
	Location    *string    `gorm:"size:100" json:"location"`
	PostedAt    time.Time  `gorm:"not null;index" json:"posted_at"`
	ValidUntil  *time.Time `json:"valid_until"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Author User    `gorm:"foreignKey:UserID" json:"author"`
	Media  []Media `gorm:"foreignKey:ListingID" json:"media"`
}
