package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vamlemat/sync-ps-to-ps-importer/models"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) FindByReference(ctx context.Context, reference string) (*models.Product, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Langs").
		Where("reference = ?", reference).
		Order("id").
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Save persists the product and fully rewrites its language rows, since
// imports replace every mapped field.
func (r *ProductRepository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		langs := product.Langs
		product.Langs = nil
		if err := tx.Save(product).Error; err != nil {
			product.Langs = langs
			return err
		}
		product.Langs = langs
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductLang{}).Error; err != nil {
			return err
		}
		for i := range langs {
			langs[i].ProductID = product.ID
		}
		if len(langs) == 0 {
			return nil
		}
		return tx.Create(&langs).Error
	})
}

func (r *ProductRepository) ReplaceCategories(ctx context.Context, productID int64, categoryIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&models.ProductCategory{}).Error; err != nil {
			return err
		}
		rows := make([]models.ProductCategory, 0, len(categoryIDs))
		seen := make(map[int64]bool, len(categoryIDs))
		for _, id := range categoryIDs {
			if id <= 0 || seen[id] {
				continue
			}
			seen[id] = true
			rows = append(rows, models.ProductCategory{ProductID: productID, CategoryID: id})
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
}
