package services

import (
	"context"
	"strings"
	"testing"
)

func newTestBuilder(remote *fakeRemote) (*CategoryBuilder, *memCategoryRepo) {
	categories := &memCategoryRepo{}
	resolver := NewResolver(categories, &memManufacturerRepo{}, &memFeatureRepo{}, &memAttributeRepo{}, testLangs())
	builder := NewCategoryBuilder(remote, resolver, &memImageStore{}, testLangs(), 2, 2)
	return builder, categories
}

func remoteCategory(name string, parentID int) map[string]interface{} {
	return map[string]interface{}{
		"name":      name,
		"id_parent": float64(parentID),
	}
}

func TestEnsureCategoryPathBuildsAncestorsFirst(t *testing.T) {
	fr := &fakeRemote{categories: map[int]map[string]interface{}{
		10: remoteCategory("Oak", 5),
		5:  remoteCategory("Flooring", 2),
	}}
	builder, categories := newTestBuilder(fr)

	localID, err := builder.EnsureCategoryPath(context.Background(), NewRunContext(), 10)
	if err != nil {
		t.Fatalf("EnsureCategoryPath: %v", err)
	}

	if len(categories.categories) != 2 {
		t.Fatalf("created %d categories, want 2", len(categories.categories))
	}
	flooring, oak := categories.categories[0], categories.categories[1]
	if flooring.Langs[0].Name != "Flooring" {
		t.Errorf("first created category = %q, want the parent", flooring.Langs[0].Name)
	}
	// The parent hangs off the home category, the child off the parent.
	if flooring.ParentID != 2 {
		t.Errorf("parent of Flooring = %d, want home (2)", flooring.ParentID)
	}
	if oak.ParentID != flooring.ID {
		t.Errorf("parent of Oak = %d, want %d", oak.ParentID, flooring.ID)
	}
	if localID != oak.ID {
		t.Errorf("returned %d, want %d", localID, oak.ID)
	}
}

func TestEnsureCategoryPathMemoizesWithinRun(t *testing.T) {
	fr := &fakeRemote{categories: map[int]map[string]interface{}{
		10: remoteCategory("Oak", 2),
	}}
	builder, categories := newTestBuilder(fr)
	run := NewRunContext()

	if _, err := builder.EnsureCategoryPath(context.Background(), run, 10); err != nil {
		t.Fatalf("EnsureCategoryPath: %v", err)
	}
	fetches := fr.categoryFetches

	if _, err := builder.EnsureCategoryPath(context.Background(), run, 10); err != nil {
		t.Fatalf("EnsureCategoryPath: %v", err)
	}
	if fr.categoryFetches != fetches {
		t.Errorf("second call refetched the remote (%d fetches)", fr.categoryFetches)
	}
	if categories.creates != 1 {
		t.Errorf("creates = %d, want 1", categories.creates)
	}
}

func TestEnsureCategoryPathRootSentinel(t *testing.T) {
	builder, categories := newTestBuilder(&fakeRemote{})

	id, err := builder.EnsureCategoryPath(context.Background(), NewRunContext(), 2)
	if err != nil {
		t.Fatalf("EnsureCategoryPath: %v", err)
	}
	if id != 2 {
		t.Errorf("sentinel mapped to %d, want home category 2", id)
	}
	if len(categories.categories) != 0 {
		t.Error("sentinel should not create anything")
	}
}

func TestEnsureCategoryPathCycleGuard(t *testing.T) {
	// 10 and 11 point at each other.
	fr := &fakeRemote{categories: map[int]map[string]interface{}{
		10: remoteCategory("A", 11),
		11: remoteCategory("B", 10),
	}}
	builder, _ := newTestBuilder(fr)

	_, err := builder.EnsureCategoryPath(context.Background(), NewRunContext(), 10)
	if err == nil {
		t.Fatal("cyclic parent chain should fail")
	}
	if !strings.Contains(err.Error(), "cycle") {
		t.Errorf("err = %v", err)
	}
}

func TestEnsureCategoryPathNameCollapse(t *testing.T) {
	// Two distinct remote ids share a normalized name; the second reuses
	// the first's local row.
	fr := &fakeRemote{categories: map[int]map[string]interface{}{
		10: remoteCategory("Flooring", 2),
		20: remoteCategory("flooring", 2),
	}}
	builder, categories := newTestBuilder(fr)
	run := NewRunContext()

	first, err := builder.EnsureCategoryPath(context.Background(), run, 10)
	if err != nil {
		t.Fatalf("EnsureCategoryPath: %v", err)
	}
	second, err := builder.EnsureCategoryPath(context.Background(), run, 20)
	if err != nil {
		t.Fatalf("EnsureCategoryPath: %v", err)
	}
	if first != second {
		t.Errorf("ids differ: %d vs %d", first, second)
	}
	if categories.creates != 1 {
		t.Errorf("creates = %d, want 1", categories.creates)
	}
}
