package dto

import "time"

type CreateListingRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Price       *float64   `json:"price"`
	Category    *string    `json:"category"`
	Location    *string    `json:"location"`
	ValidUntil  *time.Time `json:"valid_until"`
	IsActive    *bool      `json:"is_active"`
}

// UpdateListingRequest is a partial update: nil fields are left unchanged.
type UpdateListingRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Price       *float64   `json:"price"`
	Category    *string    `json:"category"`
	Location    *string    `json:"location"`
	ValidUntil  *time.Time `json:"valid_until"`
	IsActive    *bool      `json:"is_active"`
}

// ListingFilters are combined with AND semantics; the keyword matches title
// OR description, case-insensitive.
type ListingFilters struct {
	Keyword  string
	Category string
	Location string
	MinPrice *float64
	MaxPrice *float64
}
