package services

import (
	"context"
	"fmt"

	"github.com/gosimple/slug"

	"github.com/vamlemat/sync-ps-to-ps-importer/models"
	"github.com/vamlemat/sync-ps-to-ps-importer/repository"
)

// CreationFailed means the local store rejected a create (typically a
// duplicate race). Callers treat it as a per-item warning, not a fatal
// import failure.
type CreationFailed struct {
	Kind string
	Key  string
	Err  error
}

func (e *CreationFailed) Error() string {
	return fmt.Sprintf("could not create %s %q: %v", e.Kind, e.Key, e.Err)
}

func (e *CreationFailed) Unwrap() error { return e.Err }

// Resolver finds or creates local entities by natural key, memoizing
// results in the RunContext so repeated references inside one import
// cost a single store round-trip.
type Resolver struct {
	categories    repository.CategoryRepo
	manufacturers repository.ManufacturerRepo
	features      repository.FeatureRepo
	attributes    repository.AttributeRepo
	langs         LangConfig
}

func NewResolver(
	categories repository.CategoryRepo,
	manufacturers repository.ManufacturerRepo,
	features repository.FeatureRepo,
	attributes repository.AttributeRepo,
	langs LangConfig,
) *Resolver {
	return &Resolver{
		categories:    categories,
		manufacturers: manufacturers,
		features:      features,
		attributes:    attributes,
		langs:         langs,
	}
}

// Category resolves a category by name, creating it under parentID when
// absent.
func (r *Resolver) Category(ctx context.Context, run *RunContext, name string, parentID int64) (int64, error) {
	key := normalizeKey(name)
	if key == "" {
		return 0, fmt.Errorf("empty category name")
	}
	if id, ok := run.lookup("category", 0, key); ok {
		return id, nil
	}

	existing, err := r.categories.FindByName(ctx, key, r.langs.DefaultLangID)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		run.store("category", 0, key, existing.ID)
		return existing.ID, nil
	}

	category := &models.Category{ParentID: parentID, Active: true}
	rewrite := slug.Make(name)
	for _, langID := range r.langs.Languages() {
		category.Langs = append(category.Langs, models.CategoryLang{
			LangID:      langID,
			Name:        name,
			LinkRewrite: rewrite,
		})
	}
	if err := r.categories.Create(ctx, category); err != nil {
		return 0, &CreationFailed{Kind: "category", Key: name, Err: err}
	}
	run.store("category", 0, key, category.ID)
	return category.ID, nil
}

// Manufacturer resolves a manufacturer by its single name.
func (r *Resolver) Manufacturer(ctx context.Context, run *RunContext, name string) (int64, error) {
	key := normalizeKey(name)
	if key == "" {
		return 0, fmt.Errorf("empty manufacturer name")
	}
	if id, ok := run.lookup("manufacturer", 0, key); ok {
		return id, nil
	}

	existing, err := r.manufacturers.FindByName(ctx, key)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		run.store("manufacturer", 0, key, existing.ID)
		return existing.ID, nil
	}

	m := &models.Manufacturer{Name: name, Active: true}
	if err := r.manufacturers.Create(ctx, m); err != nil {
		return 0, &CreationFailed{Kind: "manufacturer", Key: name, Err: err}
	}
	run.store("manufacturer", 0, key, m.ID)
	return m.ID, nil
}

// Feature resolves a feature by name.
func (r *Resolver) Feature(ctx context.Context, run *RunContext, name string) (int64, error) {
	key := normalizeKey(name)
	if key == "" {
		return 0, fmt.Errorf("empty feature name")
	}
	if id, ok := run.lookup("feature", 0, key); ok {
		return id, nil
	}

	existing, err := r.features.FindByName(ctx, key, r.langs.DefaultLangID)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		run.store("feature", 0, key, existing.ID)
		return existing.ID, nil
	}

	feature := &models.Feature{}
	for _, langID := range r.langs.Languages() {
		feature.Langs = append(feature.Langs, models.FeatureLang{LangID: langID, Name: name})
	}
	if err := r.features.Create(ctx, feature); err != nil {
		return 0, &CreationFailed{Kind: "feature", Key: name, Err: err}
	}
	run.store("feature", 0, key, feature.ID)
	return feature.ID, nil
}

// FeatureValue resolves a value scoped to its parent feature.
func (r *Resolver) FeatureValue(ctx context.Context, run *RunContext, featureID int64, value string) (int64, error) {
	key := normalizeKey(value)
	if key == "" {
		return 0, fmt.Errorf("empty feature value")
	}
	if id, ok := run.lookup("feature_value", featureID, key); ok {
		return id, nil
	}

	existing, err := r.features.FindValue(ctx, featureID, key, r.langs.DefaultLangID)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		run.store("feature_value", featureID, key, existing.ID)
		return existing.ID, nil
	}

	fv := &models.FeatureValue{FeatureID: featureID}
	for _, langID := range r.langs.Languages() {
		fv.Langs = append(fv.Langs, models.FeatureValueLang{LangID: langID, Value: value})
	}
	if err := r.features.CreateValue(ctx, fv); err != nil {
		return 0, &CreationFailed{Kind: "feature value", Key: value, Err: err}
	}
	run.store("feature_value", featureID, key, fv.ID)
	return fv.ID, nil
}

// AttributeGroup resolves an attribute group by its public display name.
func (r *Resolver) AttributeGroup(ctx context.Context, run *RunContext, publicName string) (int64, error) {
	key := normalizeKey(publicName)
	if key == "" {
		return 0, fmt.Errorf("empty attribute group name")
	}
	if id, ok := run.lookup("attribute_group", 0, key); ok {
		return id, nil
	}

	existing, err := r.attributes.FindGroupByPublicName(ctx, key, r.langs.DefaultLangID)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		run.store("attribute_group", 0, key, existing.ID)
		return existing.ID, nil
	}

	group := &models.AttributeGroup{}
	for _, langID := range r.langs.Languages() {
		group.Langs = append(group.Langs, models.AttributeGroupLang{
			LangID:     langID,
			Name:       publicName,
			PublicName: publicName,
		})
	}
	if err := r.attributes.CreateGroup(ctx, group); err != nil {
		return 0, &CreationFailed{Kind: "attribute group", Key: publicName, Err: err}
	}
	run.store("attribute_group", 0, key, group.ID)
	return group.ID, nil
}

// AttributeValue resolves a value scoped to its attribute group.
func (r *Resolver) AttributeValue(ctx context.Context, run *RunContext, groupID int64, name string) (int64, error) {
	key := normalizeKey(name)
	if key == "" {
		return 0, fmt.Errorf("empty attribute value")
	}
	if id, ok := run.lookup("attribute_value", groupID, key); ok {
		return id, nil
	}

	existing, err := r.attributes.FindValue(ctx, groupID, key, r.langs.DefaultLangID)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		run.store("attribute_value", groupID, key, existing.ID)
		return existing.ID, nil
	}

	value := &models.AttributeValue{GroupID: groupID}
	for _, langID := range r.langs.Languages() {
		value.Langs = append(value.Langs, models.AttributeValueLang{LangID: langID, Name: name})
	}
	if err := r.attributes.CreateValue(ctx, value); err != nil {
		return 0, &CreationFailed{Kind: "attribute value", Key: name, Err: err}
	}
	run.store("attribute_value", groupID, key, value.ID)
	return value.ID, nil
}
