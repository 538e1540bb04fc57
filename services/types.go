package services

import (
	"context"

	"github.com/vamlemat/sync-ps-to-ps-importer/remote"
)

// RemoteCatalog is the slice of the webservice client the import engine
// uses. The concrete *remote.Client satisfies it; tests substitute fakes.
type RemoteCatalog interface {
	Product(ctx context.Context, id int) (remote.Record, error)
	Category(ctx context.Context, id int) (remote.Record, error)
	Feature(ctx context.Context, id int) (remote.Record, error)
	FeatureValue(ctx context.Context, id int) (remote.Record, error)
	ProductOption(ctx context.Context, id int) (remote.Record, error)
	ProductOptionValue(ctx context.Context, id int) (remote.Record, error)
	Combination(ctx context.Context, id int) (remote.Record, error)
	ProductImageIDs(ctx context.Context, productID int) ([]int, error)
	DownloadProductImage(ctx context.Context, productID, imageID int) ([]byte, error)
	DownloadCategoryImage(ctx context.Context, categoryID int) ([]byte, error)
	StockTotal(ctx context.Context, productID int) (int, []remote.StockRow, error)
}

// LangConfig tells the engine which local languages exist and which
// remote language id is authoritative for natural keys.
type LangConfig struct {
	// DefaultLangID is the language natural keys are matched in.
	DefaultLangID int
	// LangIDs are all local display languages; imported values are
	// replicated across them.
	LangIDs []int
}

// Languages returns the configured language ids, falling back to the
// default language alone.
func (c LangConfig) Languages() []int {
	if len(c.LangIDs) > 0 {
		return c.LangIDs
	}
	return []int{c.DefaultLangID}
}
