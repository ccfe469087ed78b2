package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists media blobs. Locators are paths relative to the store root,
// shaped as <listingID>/<kind>/<filename>.
type Store interface {
	Save(listingID uuid.UUID, kind, filename string, r io.Reader) (string, error)
	Delete(locator string) error
	DeleteListing(listingID uuid.UUID) error
}

// Disk stores media files under a root directory on the local filesystem.
type Disk struct {
	root string
}

func NewDisk(root string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	return &Disk{root: root}, nil
}

func (d *Disk) Save(listingID uuid.UUID, kind, filename string, r io.Reader) (string, error) {
	dir := filepath.Join(d.root, listingID.String(), kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media dir: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	return listingID.String() + "/" + kind + "/" + filename, nil
}

func (d *Disk) Delete(locator string) error {
	p, err := d.resolve(locator)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete media file: %w", err)
	}
	return nil
}

func (d *Disk) DeleteListing(listingID uuid.UUID) error {
	return os.RemoveAll(filepath.Join(d.root, listingID.String()))
}

// resolve rejects locators that escape the store root.
func (d *Disk) resolve(locator string) (string, error) {
	p := filepath.Join(d.root, filepath.FromSlash(locator))
	if !strings.HasPrefix(p, filepath.Clean(d.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid media locator: %q", locator)
	}
	return p, nil
}
