package models

// Feature is a product characteristic ("Color", "Thickness"). Deduplicated
// by case-insensitive name in the default language.
type Feature struct {
	ID    int64         `gorm:"primaryKey" json:"id"`
	Langs []FeatureLang `gorm:"constraint:OnDelete:CASCADE" json:"langs"`
}

type FeatureLang struct {
	FeatureID int64  `gorm:"primaryKey" json:"feature_id"`
	LangID    int    `gorm:"primaryKey" json:"lang_id"`
	Name      string `gorm:"size:128;index" json:"name"`
}

// FeatureValue is one value of a feature ("Red"). Uniqueness is scoped to
// its parent feature, not global.
type FeatureValue struct {
	ID        int64              `gorm:"primaryKey" json:"id"`
	FeatureID int64              `gorm:"index" json:"feature_id"`
	Custom    bool               `json:"custom"`
	Langs     []FeatureValueLang `gorm:"constraint:OnDelete:CASCADE" json:"langs"`
}

type FeatureValueLang struct {
	FeatureValueID int64  `gorm:"primaryKey" json:"feature_value_id"`
	LangID         int    `gorm:"primaryKey" json:"lang_id"`
	Value          string `gorm:"size:255" json:"value"`
}

// ProductFeature associates a (feature, value) pair with a product.
type ProductFeature struct {
	ProductID      int64 `gorm:"primaryKey" json:"product_id"`
	FeatureID      int64 `gorm:"primaryKey" json:"feature_id"`
	FeatureValueID int64 `gorm:"primaryKey" json:"feature_value_id"`
}

// AttributeGroup is a combination axis ("Size", "Color"), matched by its
// public display name.
type AttributeGroup struct {
	ID    int64                `gorm:"primaryKey" json:"id"`
	Langs []AttributeGroupLang `gorm:"constraint:OnDelete:CASCADE" json:"langs"`
}

type AttributeGroupLang struct {
	AttributeGroupID int64  `gorm:"primaryKey" json:"attribute_group_id"`
	LangID           int    `gorm:"primaryKey" json:"lang_id"`
	Name             string `gorm:"size:128" json:"name"`
	PublicName       string `gorm:"size:64;index" json:"public_name"`
}

// AttributeValue is one value of an attribute group ("M", "Blue"), scoped
// to its group.
type AttributeValue struct {
	ID      int64                `gorm:"primaryKey" json:"id"`
	GroupID int64                `gorm:"index" json:"group_id"`
	Langs   []AttributeValueLang `gorm:"constraint:OnDelete:CASCADE" json:"langs"`
}

type AttributeValueLang struct {
	AttributeValueID int64  `gorm:"primaryKey" json:"attribute_value_id"`
	LangID           int    `gorm:"primaryKey" json:"lang_id"`
	Name             string `gorm:"size:128" json:"name"`
}

// Combination is a sellable variant of a product. Combinations are rebuilt
// from the remote on every import, never diffed.
type Combination struct {
	ID              int64   `gorm:"primaryKey" json:"id"`
	ProductID       int64   `gorm:"index" json:"product_id"`
	Reference       string  `gorm:"size:64" json:"reference"`
	EAN13           string  `gorm:"size:13" json:"ean13"`
	PriceImpact     float64 `json:"price_impact"`
	Weight          float64 `json:"weight"`
	MinimalQuantity int     `json:"minimal_quantity"`
	DefaultOn       bool    `json:"default_on"`
	Quantity        int     `json:"quantity"`
}

// CombinationAttribute attaches one attribute value to a combination.
type CombinationAttribute struct {
	CombinationID    int64 `gorm:"primaryKey" json:"combination_id"`
	AttributeValueID int64 `gorm:"primaryKey" json:"attribute_value_id"`
}

// Image is a product image record; the binary lives in the image store.
type Image struct {
	ID        int64 `gorm:"primaryKey" json:"id"`
	ProductID int64 `gorm:"index" json:"product_id"`
	Position  int   `json:"position"`
	Cover     bool  `json:"cover"`
}

// StockAvailable tracks quantity per product, or per combination when
// CombinationID is non-zero.
type StockAvailable struct {
	ID            int64 `gorm:"primaryKey" json:"id"`
	ProductID     int64 `gorm:"index" json:"product_id"`
	CombinationID int64 `gorm:"index" json:"combination_id"`
	Quantity      int   `json:"quantity"`
}
