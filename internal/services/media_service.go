package services

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"sync"

	"github.com/bazarly/backend/internal/dto"
	"github.com/bazarly/backend/internal/models"
	"github.com/bazarly/backend/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaService manages the ordered media collection of a listing. Every
// mutation holds the listing's lock and runs in a transaction, so ordinals
// stay dense (0..n-1) and concurrent append/reorder/remove on the same
// listing serialize. Different listings are fully independent.
type MediaService struct {
	db    *gorm.DB
	store storage.Store
	locks sync.Map // listing id -> *sync.Mutex
}

func NewMediaService(db *gorm.DB, store storage.Store) *MediaService {
	return &MediaService{db: db, store: store}
}

func (s *MediaService) lockListing(listingID uuid.UUID) func() {
	v, _ := s.locks.LoadOrStore(listingID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *MediaService) ownedListing(listingID, requesterID uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := s.db.First(&listing, "id = ?", listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}
	if listing.UserID != requesterID {
		return nil, fmt.Errorf("%w: you do not own this listing", ErrForbidden)
	}
	return &listing, nil
}

// Append stores the accepted files and assigns each the next ordinal. Files
// that fail type validation are skipped and reported; the rest of the batch
// is still persisted.
func (s *MediaService) Append(listingID, requesterID uuid.UUID, files []*multipart.FileHeader) (*dto.UploadResult, error) {
	if _, err := s.ownedListing(listingID, requesterID); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files supplied", ErrInvalidInput)
	}

	unlock := s.lockListing(listingID)
	defer unlock()

	result := &dto.UploadResult{Uploaded: []models.Media{}}

	type accepted struct {
		header *multipart.FileHeader
		media  models.Media
	}
	var batch []accepted
	for _, fh := range files {
		ext, mime, kind, err := classifyUpload(fh.Filename)
		if err != nil {
			result.Skipped = append(result.Skipped, dto.SkippedFile{
				FileName: fh.Filename,
				Reason:   err.Error(),
			})
			continue
		}
		batch = append(batch, accepted{
			header: fh,
			media: models.Media{
				ID:        uuid.New(),
				ListingID: listingID,
				FileName:  uuid.New().String() + "." + ext,
				FileExt:   ext,
				MimeType:  mime,
				Kind:      kind,
			},
		})
	}
	if len(batch) == 0 {
		return result, nil
	}

	var saved []string
	cleanup := func() {
		for _, locator := range saved {
			if err := s.store.Delete(locator); err != nil {
				slog.Error("failed to clean up media file", "locator", locator, "error", err)
			}
		}
	}

	for i := range batch {
		src, err := batch[i].header.Open()
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to open uploaded file: %w", err)
		}
		locator, err := s.store.Save(listingID, batch[i].media.Kind, batch[i].media.FileName, src)
		src.Close()
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to store media file: %w", err)
		}
		saved = append(saved, locator)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		next, err := nextOrdinal(tx, listingID)
		if err != nil {
			return err
		}
		for i := range batch {
			batch[i].media.Ordinal = next
			next++
			if err := tx.Create(&batch[i].media).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to record media: %w", err)
	}

	for i := range batch {
		batch[i].media.URL = "/media/" + batch[i].media.Locator()
		result.Uploaded = append(result.Uploaded, batch[i].media)
	}
	return result, nil
}

// Reorder reassigns ordinals 0..n-1 to match the supplied order. The id list
// must be an exact permutation of the listing's current media ids.
func (s *MediaService) Reorder(listingID, requesterID uuid.UUID, mediaIDs []uuid.UUID) ([]models.Media, error) {
	if _, err := s.ownedListing(listingID, requesterID); err != nil {
		return nil, err
	}

	unlock := s.lockListing(listingID)
	defer unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var currentIDs []uuid.UUID
		if err := tx.Model(&models.Media{}).Where("listing_id = ?", listingID).Pluck("id", &currentIDs).Error; err != nil {
			return err
		}
		if err := checkPermutation(mediaIDs, currentIDs); err != nil {
			return err
		}
		for i, id := range mediaIDs {
			if err := tx.Model(&models.Media{}).Where("id = ?", id).UpdateColumn("ordinal", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to reorder media: %w", err)
	}

	return s.ListForListing(listingID)
}

// Remove deletes the backing file and the record, then shifts all later
// ordinals down by one so the sequence stays gap-free.
func (s *MediaService) Remove(mediaID, requesterID uuid.UUID) error {
	var media models.Media
	if err := s.db.First(&media, "id = ?", mediaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load media: %w", err)
	}
	if _, err := s.ownedListing(media.ListingID, requesterID); err != nil {
		return err
	}

	unlock := s.lockListing(media.ListingID)
	defer unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Re-read under the lock: a reorder may have moved the row while we
		// waited, and the shift below must use its current ordinal.
		if err := tx.First(&media, "id = ?", mediaID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&media).Error; err != nil {
			return err
		}
		return tx.Model(&models.Media{}).
			Where("listing_id = ? AND ordinal > ?", media.ListingID, media.Ordinal).
			UpdateColumn("ordinal", gorm.Expr("ordinal - 1")).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to remove media: %w", err)
	}

	if err := s.store.Delete(media.Locator()); err != nil {
		slog.Error("failed to delete media file", "locator", media.Locator(), "error", err)
	}
	return nil
}

func (s *MediaService) GetByID(mediaID uuid.UUID) (*models.Media, error) {
	var media models.Media
	if err := s.db.First(&media, "id = ?", mediaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load media: %w", err)
	}
	return &media, nil
}

// ListAll returns every media record across listings, oldest first.
func (s *MediaService) ListAll() ([]models.Media, error) {
	var media []models.Media
	if err := s.db.Order("created_at ASC").Find(&media).Error; err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	return media, nil
}

func (s *MediaService) ListForListing(listingID uuid.UUID) ([]models.Media, error) {
	var media []models.Media
	if err := s.db.Where("listing_id = ?", listingID).Order("ordinal ASC").Find(&media).Error; err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	return media, nil
}

func nextOrdinal(tx *gorm.DB, listingID uuid.UUID) (int, error) {
	var max int
	err := tx.Model(&models.Media{}).
		Where("listing_id = ?", listingID).
		Select("COALESCE(MAX(ordinal), -1)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// checkPermutation rejects id lists with missing, extra or duplicate ids.
func checkPermutation(supplied, current []uuid.UUID) error {
	if len(supplied) != len(current) {
		return fmt.Errorf("%w: expected %d media ids, got %d", ErrInvalidInput, len(current), len(supplied))
	}
	currentSet := make(map[uuid.UUID]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}
	seen := make(map[uuid.UUID]struct{}, len(supplied))
	for _, id := range supplied {
		if _, ok := currentSet[id]; !ok {
			return fmt.Errorf("%w: media %s does not belong to this listing", ErrInvalidInput, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate media id %s", ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
