package dto

import (
	"github.com/bazarly/backend/internal/models"
	"github.com/google/uuid"
)

type ReorderMediaRequest struct {
	MediaIDs []uuid.UUID `json:"media_ids"`
}

// SkippedFile reports one file of an upload batch that failed type validation.
// The rest of the batch is still persisted.
type SkippedFile struct {
	FileName string `json:"filename"`
	Reason   string `json:"reason"`
}

type UploadResult struct {
	Uploaded []models.Media `json:"media"`
	Skipped  []SkippedFile  `json:"skipped,omitempty"`
}
