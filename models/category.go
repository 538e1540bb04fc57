package models

import "time"

// Category is a node in the local category tree, rooted at the configured
// home category. ParentID always references an existing category because
// the importer materializes ancestors before children.
type Category struct {
	ID       int64 `gorm:"primaryKey" json:"id"`
	ParentID int64 `gorm:"index" json:"parent_id"`
	Active   bool  `json:"active"`

	Langs []CategoryLang `gorm:"constraint:OnDelete:CASCADE" json:"langs"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryLang holds the per-language display fields of a category.
// Name is the natural key, matched case-insensitively in the default language.
type CategoryLang struct {
	CategoryID  int64  `gorm:"primaryKey" json:"category_id"`
	LangID      int    `gorm:"primaryKey" json:"lang_id"`
	Name        string `gorm:"size:128;index" json:"name"`
	LinkRewrite string `gorm:"size:128" json:"link_rewrite"`
}

// Manufacturer has a single-language name that doubles as its natural key.
type Manufacturer struct {
	ID     int64  `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:64;index" json:"name"`
	Active bool   `json:"active"`

	CreatedAt time.Time `json:"created_at"`
}
