package models

import (
	"path"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Media kinds.
const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
)

// Media is one image or video attached to a listing. Ordinals within a listing
// are kept dense: 0..n-1 with no gaps or duplicates after every mutation.
type Media struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;index" json:"listing_id"`
	FileName  string    `gorm:"size:255;not null" json:"filename"`
	FileExt   string    `gorm:"size:10;not null" json:"file_extension"`
	MimeType  string    `gorm:"size:50;not null" json:"mimetype"`
	Kind      string    `gorm:"size:20;not null" json:"media_type"`
	Ordinal   int       `gorm:"not null;index" json:"order"`
	CreatedAt time.Time `json:"uploaded_at"`

	URL string `gorm:"-" json:"url"`
}

// Locator is the storage-relative path of the backing file.
func (m *Media) Locator() string {
	return path.Join(m.ListingID.String(), m.Kind, m.FileName)
}

func (m *Media) AfterFind(*gorm.DB) error {
	m.URL = "/media/" + m.Locator()
	return nil
}
