package models

import "time"

// Product is the local catalog product. Identity across imports is resolved
// by Reference (natural key); the remote product id is never stored.
type Product struct {
	ID                int64   `gorm:"primaryKey" json:"id"`
	Reference         string  `gorm:"size:64;index" json:"reference"`
	EAN13             string  `gorm:"size:13" json:"ean13"`
	UPC               string  `gorm:"size:12" json:"upc"`
	Price             float64 `json:"price"`
	WholesalePrice    float64 `json:"wholesale_price"`
	UnitPrice         float64 `json:"unit_price"`
	Active            bool    `json:"active"`
	DefaultCategoryID int64   `json:"default_category_id"`
	ManufacturerID    int64   `json:"manufacturer_id"`

	Langs []ProductLang `gorm:"constraint:OnDelete:CASCADE" json:"langs"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductLang holds the display fields of a product for one language.
type ProductLang struct {
	ProductID        int64  `gorm:"primaryKey" json:"product_id"`
	LangID           int    `gorm:"primaryKey" json:"lang_id"`
	Name             string `gorm:"size:255" json:"name"`
	Description      string `json:"description"`
	DescriptionShort string `json:"description_short"`
	LinkRewrite      string `gorm:"size:255" json:"link_rewrite"`
	MetaTitle        string `gorm:"size:255" json:"meta_title"`
}

// ProductCategory links a product to one of its categories.
type ProductCategory struct {
	ProductID  int64 `gorm:"primaryKey" json:"product_id"`
	CategoryID int64 `gorm:"primaryKey" json:"category_id"`
}
