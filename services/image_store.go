package services

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// ImageStore persists downloaded catalog images locally.
type ImageStore interface {
	SaveProductImage(productID, imageID int64, data []byte) error
	SaveProductThumbnails(productID, imageID int64, data []byte) []error
	SaveCategoryImage(categoryID int64, data []byte) error
}

// ThumbnailVariant is one resized rendition of a product image.
type ThumbnailVariant struct {
	Name   string
	Width  int
	Height int
}

// DefaultThumbnailVariants mirrors the storefront image sizes.
var DefaultThumbnailVariants = []ThumbnailVariant{
	{Name: "cart", Width: 125, Height: 125},
	{Name: "small", Width: 98, Height: 98},
	{Name: "home", Width: 250, Height: 250},
	{Name: "medium", Width: 452, Height: 452},
	{Name: "large", Width: 800, Height: 800},
}

// DiskImageStore writes originals and thumbnails under a base directory,
// products in p/<product>/ and categories in c/.
type DiskImageStore struct {
	dir      string
	variants []ThumbnailVariant
}

func NewDiskImageStore(dir string, variants []ThumbnailVariant) *DiskImageStore {
	if len(variants) == 0 {
		variants = DefaultThumbnailVariants
	}
	return &DiskImageStore{dir: dir, variants: variants}
}

// SaveProductImage writes the original bytes untouched.
func (s *DiskImageStore) SaveProductImage(productID, imageID int64, data []byte) error {
	dir := filepath.Join(s.dir, "p", fmt.Sprint(productID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, fmt.Sprintf("%d.jpg", imageID)), data, 0o644)
}

// SaveProductThumbnails renders every configured variant. Each variant
// fails independently; the returned slice holds one error per failed
// variant and is empty on full success.
func (s *DiskImageStore) SaveProductThumbnails(productID, imageID int64, data []byte) []error {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return []error{fmt.Errorf("decode image %d: %w", imageID, err)}
	}

	dir := filepath.Join(s.dir, "p", fmt.Sprint(productID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return []error{err}
	}

	var errs []error
	for _, v := range s.variants {
		resized := imaging.Fit(img, v.Width, v.Height, imaging.Lanczos)
		name := filepath.Join(dir, fmt.Sprintf("%d-%s.jpg", imageID, v.Name))
		if err := imaging.Save(resized, name, imaging.JPEGQuality(90)); err != nil {
			errs = append(errs, fmt.Errorf("thumbnail %s for image %d: %w", v.Name, imageID, err))
		}
	}
	return errs
}

// SaveCategoryImage writes the category image original.
func (s *DiskImageStore) SaveCategoryImage(categoryID int64, data []byte) error {
	dir := filepath.Join(s.dir, "c")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, fmt.Sprintf("%d.jpg", categoryID)), data, 0o644)
}
