package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vamlemat/sync-ps-to-ps-importer/models"
)

type CombinationRepository struct {
	db *gorm.DB
}

func NewCombinationRepository(db *gorm.DB) *CombinationRepository {
	return &CombinationRepository{db: db}
}

// DeleteForProduct removes a product's combinations, their attribute
// attachments, and their stock lines. Imports rebuild all three.
func (r *CombinationRepository) DeleteForProduct(ctx context.Context, productID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []int64
		if err := tx.Model(&models.Combination{}).
			Where("product_id = ?", productID).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) > 0 {
			if err := tx.Where("combination_id IN ?", ids).Delete(&models.CombinationAttribute{}).Error; err != nil {
				return err
			}
			if err := tx.Where("product_id = ? AND combination_id IN ?", productID, ids).Delete(&models.StockAvailable{}).Error; err != nil {
				return err
			}
		}
		return tx.Where("product_id = ?", productID).Delete(&models.Combination{}).Error
	})
}

func (r *CombinationRepository) Create(ctx context.Context, combination *models.Combination) error {
	return r.db.WithContext(ctx).Create(combination).Error
}

func (r *CombinationRepository) AttachValues(ctx context.Context, combinationID int64, attributeValueIDs []int64) error {
	rows := make([]models.CombinationAttribute, 0, len(attributeValueIDs))
	for _, id := range attributeValueIDs {
		if id > 0 {
			rows = append(rows, models.CombinationAttribute{CombinationID: combinationID, AttributeValueID: id})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

type StockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

func (r *StockRepository) SetQuantity(ctx context.Context, productID, combinationID int64, quantity int) error {
	var existing models.StockAvailable
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND combination_id = ?", productID, combinationID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(&models.StockAvailable{
			ProductID:     productID,
			CombinationID: combinationID,
			Quantity:      quantity,
		}).Error
	}
	if err != nil {
		return err
	}
	existing.Quantity = quantity
	return r.db.WithContext(ctx).Save(&existing).Error
}
