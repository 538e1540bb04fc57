package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vamlemat/sync-ps-to-ps-importer/models"
)

type FeatureRepository struct {
	db *gorm.DB
}

func NewFeatureRepository(db *gorm.DB) *FeatureRepository {
	return &FeatureRepository{db: db}
}

func (r *FeatureRepository) FindByName(ctx context.Context, name string, langID int) (*models.Feature, error) {
	var feature models.Feature
	err := r.db.WithContext(ctx).
		Joins("JOIN feature_langs fl ON fl.feature_id = features.id").
		Where("fl.lang_id = ? AND LOWER(fl.name) = LOWER(?)", langID, name).
		Order("features.id").
		Preload("Langs").
		First(&feature).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &feature, nil
}

func (r *FeatureRepository) Create(ctx context.Context, feature *models.Feature) error {
	return r.db.WithContext(ctx).Create(feature).Error
}

// FindValue scopes the lookup to the parent feature; the same value text
// under two different features is two distinct rows.
func (r *FeatureRepository) FindValue(ctx context.Context, featureID int64, value string, langID int) (*models.FeatureValue, error) {
	var fv models.FeatureValue
	err := r.db.WithContext(ctx).
		Joins("JOIN feature_value_langs fvl ON fvl.feature_value_id = feature_values.id").
		Where("feature_values.feature_id = ? AND fvl.lang_id = ? AND LOWER(fvl.value) = LOWER(?)", featureID, langID, value).
		Order("feature_values.id").
		Preload("Langs").
		First(&fv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fv, nil
}

func (r *FeatureRepository) CreateValue(ctx context.Context, value *models.FeatureValue) error {
	return r.db.WithContext(ctx).Create(value).Error
}

func (r *FeatureRepository) ReplaceProductFeatures(ctx context.Context, productID int64, pairs []models.ProductFeature) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&models.ProductFeature{}).Error; err != nil {
			return err
		}
		if len(pairs) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&pairs).Error
	})
}
