package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bazarly/backend/internal/dto"
	"github.com/bazarly/backend/internal/models"
	"github.com/bazarly/backend/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListingService struct {
	db    *gorm.DB
	store storage.Store
}

func NewListingService(db *gorm.DB, store storage.Store) *ListingService {
	return &ListingService{db: db, store: store}
}

func (s *ListingService) Create(ownerID uuid.UUID, req *dto.CreateListingRequest) (*models.Listing, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if req.Price != nil && *req.Price < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", ErrInvalidInput)
	}

	listing := models.Listing{
		ID:          uuid.New(),
		UserID:      ownerID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Location:    req.Location,
		PostedAt:    time.Now().UTC(),
		ValidUntil:  req.ValidUntil,
		IsActive:    true,
	}
	if req.IsActive != nil {
		listing.IsActive = *req.IsActive
	}

	if err := s.db.Create(&listing).Error; err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	if err := s.db.First(&listing.Author, "id = ?", ownerID).Error; err != nil {
		return nil, fmt.Errorf("failed to load author: %w", err)
	}
	listing.Media = []models.Media{}
	return &listing, nil
}

func (s *ListingService) GetByID(id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	err := s.db.
		Preload("Author").
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("ordinal ASC") }).
		First(&listing, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}
	return &listing, nil
}

// List applies the optional filters with AND semantics and returns newest
// first (posted_at descending, id as a stable tiebreak).
func (s *ListingService) List(f *dto.ListingFilters) ([]models.Listing, error) {
	q := s.db.Model(&models.Listing{}).
		Preload("Author").
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("ordinal ASC") })

	if f != nil {
		if f.Keyword != "" {
			p := "%" + strings.ToLower(f.Keyword) + "%"
			q = q.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", p, p)
		}
		if f.Category != "" {
			q = q.Where("LOWER(category) LIKE ?", "%"+strings.ToLower(f.Category)+"%")
		}
		if f.Location != "" {
			q = q.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(f.Location)+"%")
		}
		if f.MinPrice != nil {
			q = q.Where("price >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil {
			q = q.Where("price <= ?", *f.MaxPrice)
		}
	}

	var listings []models.Listing
	if err := q.Order("posted_at DESC, id DESC").Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return listings, nil
}

// Update applies the supplied fields only; nil fields keep their prior value.
func (s *ListingService) Update(id, requesterID uuid.UUID, req *dto.UpdateListingRequest) (*models.Listing, error) {
	var listing models.Listing
	if err := s.db.First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}
	if listing.UserID != requesterID {
		return nil, fmt.Errorf("%w: you can only update your own listings", ErrForbidden)
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
		}
		listing.Title = *req.Title
	}
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			return nil, fmt.Errorf("%w: description must not be empty", ErrInvalidInput)
		}
		listing.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fmt.Errorf("%w: price must be non-negative", ErrInvalidInput)
		}
		listing.Price = req.Price
	}
	if req.Category != nil {
		listing.Category = req.Category
	}
	if req.Location != nil {
		listing.Location = req.Location
	}
	if req.ValidUntil != nil {
		listing.ValidUntil = req.ValidUntil
	}
	if req.IsActive != nil {
		listing.IsActive = *req.IsActive
	}

	if err := s.db.Save(&listing).Error; err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes the listing, its media records and the backing files.
func (s *ListingService) Delete(id, requesterID uuid.UUID) error {
	var listing models.Listing
	if err := s.db.First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load listing: %w", err)
	}
	if listing.UserID != requesterID {
		return fmt.Errorf("%w: you can only delete your own listings", ErrForbidden)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", id).Delete(&models.Media{}).Error; err != nil {
			return err
		}
		return tx.Delete(&listing).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}

	if err := s.store.DeleteListing(id); err != nil {
		slog.Error("failed to delete listing media files", "listing_id", id, "error", err)
	}
	return nil
}
