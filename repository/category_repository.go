package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vamlemat/sync-ps-to-ps-importer/models"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// FindByName matches case-insensitively in the given language. When two
// rows share a name the newest wins, matching how duplicate remote
// categories collapse onto one local row.
func (r *CategoryRepository) FindByName(ctx context.Context, name string, langID int) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Joins("JOIN category_langs cl ON cl.category_id = categories.id").
		Where("cl.lang_id = ? AND LOWER(cl.name) = LOWER(?)", langID, name).
		Order("categories.id DESC").
		Preload("Langs").
		First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

type ManufacturerRepository struct {
	db *gorm.DB
}

func NewManufacturerRepository(db *gorm.DB) *ManufacturerRepository {
	return &ManufacturerRepository{db: db}
}

func (r *ManufacturerRepository) FindByName(ctx context.Context, name string) (*models.Manufacturer, error) {
	var m models.Manufacturer
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		Order("id").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *ManufacturerRepository) Create(ctx context.Context, manufacturer *models.Manufacturer) error {
	return r.db.WithContext(ctx).Create(manufacturer).Error
}
