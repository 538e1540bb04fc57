package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// maxCategoryDepth bounds the parent recursion. The remote tree should
// be acyclic, but it belongs to an external system we don't control.
const maxCategoryDepth = 32

// CategoryBuilder materializes a remote category and all its ancestors
// locally, parents before children.
type CategoryBuilder struct {
	remote         RemoteCatalog
	resolver       *Resolver
	store          ImageStore
	langs          LangConfig
	homeCategoryID int64
	rootSentinel   int
}

func NewCategoryBuilder(
	remoteCatalog RemoteCatalog,
	resolver *Resolver,
	store ImageStore,
	langs LangConfig,
	homeCategoryID int64,
	rootSentinel int,
) *CategoryBuilder {
	return &CategoryBuilder{
		remote:         remoteCatalog,
		resolver:       resolver,
		store:          store,
		langs:          langs,
		homeCategoryID: homeCategoryID,
		rootSentinel:   rootSentinel,
	}
}

// EnsureCategoryPath returns the local id for a remote category,
// creating it and any missing ancestors. Remote ids at or below the
// root sentinel map to the local home category. Two distinct remote
// categories with the same normalized name collapse onto one local
// category, first writer wins.
func (b *CategoryBuilder) EnsureCategoryPath(ctx context.Context, run *RunContext, remoteCategoryID int) (int64, error) {
	return b.ensure(ctx, run, remoteCategoryID, 0)
}

func (b *CategoryBuilder) ensure(ctx context.Context, run *RunContext, remoteCategoryID, depth int) (int64, error) {
	if remoteCategoryID <= b.rootSentinel {
		return b.homeCategoryID, nil
	}
	if localID, ok := run.lookupRemoteCategory(remoteCategoryID); ok {
		return localID, nil
	}
	if depth >= maxCategoryDepth {
		return 0, fmt.Errorf("category %d: parent chain exceeds %d levels, possible cycle", remoteCategoryID, maxCategoryDepth)
	}

	rec, err := b.remote.Category(ctx, remoteCategoryID)
	if err != nil {
		return 0, fmt.Errorf("fetch remote category %d: %w", remoteCategoryID, err)
	}

	name := rec.String("name", b.langs.DefaultLangID)
	if name == "" {
		return 0, fmt.Errorf("remote category %d has no name", remoteCategoryID)
	}

	// Parents must exist before the child is created.
	parentID, err := b.ensure(ctx, run, rec.Int("id_parent", b.langs.DefaultLangID), depth+1)
	if err != nil {
		return 0, err
	}

	localID, err := b.resolver.Category(ctx, run, name, parentID)
	if err != nil {
		return 0, err
	}
	run.storeRemoteCategory(remoteCategoryID, localID)

	// Best effort: a missing category image never fails the category.
	if data, err := b.remote.DownloadCategoryImage(ctx, remoteCategoryID); err == nil && len(data) > 0 {
		if err := b.store.SaveCategoryImage(localID, data); err != nil {
			zap.L().Warn("failed to store category image",
				zap.Int64("category_id", localID),
				zap.Error(err),
			)
		}
	}

	return localID, nil
}
