package repository

import (
	"context"

	"github.com/vamlemat/sync-ps-to-ps-importer/models"
)

// The repositories use plain Go types so the service layer never sees
// gorm. Lookups by name are case-insensitive and filtered by the default
// language; "not found" is reported as (nil, nil), never as an error.

// ProductRepo resolves and persists products by their reference.
type ProductRepo interface {
	FindByReference(ctx context.Context, reference string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Save(ctx context.Context, product *models.Product) error
	// ReplaceCategories rewires the product's category memberships.
	ReplaceCategories(ctx context.Context, productID int64, categoryIDs []int64) error
}

// CategoryRepo looks up categories by name within one language.
type CategoryRepo interface {
	FindByName(ctx context.Context, name string, langID int) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
}

// ManufacturerRepo looks up manufacturers by their single name.
type ManufacturerRepo interface {
	FindByName(ctx context.Context, name string) (*models.Manufacturer, error)
	Create(ctx context.Context, manufacturer *models.Manufacturer) error
}

// FeatureRepo covers features, their values (scoped to the feature), and
// the product association rows.
type FeatureRepo interface {
	FindByName(ctx context.Context, name string, langID int) (*models.Feature, error)
	Create(ctx context.Context, feature *models.Feature) error
	FindValue(ctx context.Context, featureID int64, value string, langID int) (*models.FeatureValue, error)
	CreateValue(ctx context.Context, value *models.FeatureValue) error
	// ReplaceProductFeatures deletes the product's associations and
	// inserts the given pairs, silently skipping duplicates.
	ReplaceProductFeatures(ctx context.Context, productID int64, pairs []models.ProductFeature) error
}

// AttributeRepo covers attribute groups (matched by public name) and
// their values (scoped to the group).
type AttributeRepo interface {
	FindGroupByPublicName(ctx context.Context, publicName string, langID int) (*models.AttributeGroup, error)
	CreateGroup(ctx context.Context, group *models.AttributeGroup) error
	FindValue(ctx context.Context, groupID int64, name string, langID int) (*models.AttributeValue, error)
	CreateValue(ctx context.Context, value *models.AttributeValue) error
}

// CombinationRepo rebuilds a product's combinations from scratch.
type CombinationRepo interface {
	DeleteForProduct(ctx context.Context, productID int64) error
	Create(ctx context.Context, combination *models.Combination) error
	AttachValues(ctx context.Context, combinationID int64, attributeValueIDs []int64) error
}

// ImageRepo manages product image records; the binaries live in the
// image store.
type ImageRepo interface {
	Create(ctx context.Context, image *models.Image) error
	// Delete removes a record whose binary could not be stored.
	Delete(ctx context.Context, imageID int64) error
	HasCover(ctx context.Context, productID int64) (bool, error)
	SetCover(ctx context.Context, imageID int64) error
	// FirstImageID returns 0 when the product has no images.
	FirstImageID(ctx context.Context, productID int64) (int64, error)
	NextPosition(ctx context.Context, productID int64) (int, error)
}

// StockRepo upserts stock lines; combinationID 0 addresses the
// product-level line.
type StockRepo interface {
	SetQuantity(ctx context.Context, productID, combinationID int64, quantity int) error
}
