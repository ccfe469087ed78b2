package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a marketplace account. Password holds the bcrypt hash, never plaintext.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username    string    `gorm:"size:80;not null;uniqueIndex" json:"username"`
	Email       string    `gorm:"size:120;not null;uniqueIndex" json:"email"`
	Password    string    `gorm:"not null" json:"-"`
	FirstName   *string   `gorm:"size:50" json:"first_name"`
	LastName    *string   `gorm:"size:50" json:"last_name"`
	PhoneNumber *string   `gorm:"size:20" json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
