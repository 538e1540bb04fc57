package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vamlemat/sync-ps-to-ps-importer/models"
)

type ImageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

func (r *ImageRepository) Create(ctx context.Context, image *models.Image) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *ImageRepository) Delete(ctx context.Context, imageID int64) error {
	return r.db.WithContext(ctx).Delete(&models.Image{}, imageID).Error
}

func (r *ImageRepository) HasCover(ctx context.Context, productID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Image{}).
		Where("product_id = ? AND cover", productID).
		Count(&count).Error
	return count > 0, err
}

func (r *ImageRepository) SetCover(ctx context.Context, imageID int64) error {
	return r.db.WithContext(ctx).Model(&models.Image{}).
		Where("id = ?", imageID).
		Update("cover", true).Error
}

func (r *ImageRepository) FirstImageID(ctx context.Context, productID int64) (int64, error) {
	var image models.Image
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position, id").
		First(&image).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return image.ID, nil
}

func (r *ImageRepository) NextPosition(ctx context.Context, productID int64) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).Model(&models.Image{}).
		Where("product_id = ?", productID).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}
