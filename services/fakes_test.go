package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vamlemat/sync-ps-to-ps-importer/models"
	"github.com/vamlemat/sync-ps-to-ps-importer/remote"
)

// In-memory repository fakes. They mirror the store contracts: name
// lookups are case-insensitive and "not found" is (nil, nil).

type memIDs struct{ next int64 }

func (m *memIDs) id() int64 {
	m.next++
	return m.next
}

type memCategoryRepo struct {
	ids        memIDs
	categories []*models.Category
	finds      int
	creates    int
}

func (r *memCategoryRepo) FindByName(_ context.Context, name string, langID int) (*models.Category, error) {
	r.finds++
	for i := len(r.categories) - 1; i >= 0; i-- {
		for _, l := range r.categories[i].Langs {
			if l.LangID == langID && strings.EqualFold(l.Name, name) {
				return r.categories[i], nil
			}
		}
	}
	return nil, nil
}

func (r *memCategoryRepo) Create(_ context.Context, category *models.Category) error {
	r.creates++
	category.ID = r.ids.id()
	for i := range category.Langs {
		category.Langs[i].CategoryID = category.ID
	}
	r.categories = append(r.categories, category)
	return nil
}

type memManufacturerRepo struct {
	ids           memIDs
	manufacturers []*models.Manufacturer
	creates       int
}

func (r *memManufacturerRepo) FindByName(_ context.Context, name string) (*models.Manufacturer, error) {
	for _, m := range r.manufacturers {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return nil, nil
}

func (r *memManufacturerRepo) Create(_ context.Context, m *models.Manufacturer) error {
	r.creates++
	m.ID = r.ids.id()
	r.manufacturers = append(r.manufacturers, m)
	return nil
}

type memFeatureRepo struct {
	ids      memIDs
	features []*models.Feature
	values   []*models.FeatureValue
	products map[int64][]models.ProductFeature
	creates  int
}

func (r *memFeatureRepo) FindByName(_ context.Context, name string, langID int) (*models.Feature, error) {
	for _, f := range r.features {
		for _, l := range f.Langs {
			if l.LangID == langID && strings.EqualFold(l.Name, name) {
				return f, nil
			}
		}
	}
	return nil, nil
}

func (r *memFeatureRepo) Create(_ context.Context, f *models.Feature) error {
	r.creates++
	f.ID = r.ids.id()
	r.features = append(r.features, f)
	return nil
}

func (r *memFeatureRepo) FindValue(_ context.Context, featureID int64, value string, langID int) (*models.FeatureValue, error) {
	for _, v := range r.values {
		if v.FeatureID != featureID {
			continue
		}
		for _, l := range v.Langs {
			if l.LangID == langID && strings.EqualFold(l.Value, value) {
				return v, nil
			}
		}
	}
	return nil, nil
}

func (r *memFeatureRepo) CreateValue(_ context.Context, v *models.FeatureValue) error {
	v.ID = r.ids.id()
	r.values = append(r.values, v)
	return nil
}

func (r *memFeatureRepo) ReplaceProductFeatures(_ context.Context, productID int64, pairs []models.ProductFeature) error {
	if r.products == nil {
		r.products = make(map[int64][]models.ProductFeature)
	}
	r.products[productID] = pairs
	return nil
}

type memAttributeRepo struct {
	ids    memIDs
	groups []*models.AttributeGroup
	values []*models.AttributeValue
}

func (r *memAttributeRepo) FindGroupByPublicName(_ context.Context, publicName string, langID int) (*models.AttributeGroup, error) {
	for _, g := range r.groups {
		for _, l := range g.Langs {
			if l.LangID == langID && strings.EqualFold(l.PublicName, publicName) {
				return g, nil
			}
		}
	}
	return nil, nil
}

func (r *memAttributeRepo) CreateGroup(_ context.Context, g *models.AttributeGroup) error {
	g.ID = r.ids.id()
	r.groups = append(r.groups, g)
	return nil
}

func (r *memAttributeRepo) FindValue(_ context.Context, groupID int64, name string, langID int) (*models.AttributeValue, error) {
	for _, v := range r.values {
		if v.GroupID != groupID {
			continue
		}
		for _, l := range v.Langs {
			if l.LangID == langID && strings.EqualFold(l.Name, name) {
				return v, nil
			}
		}
	}
	return nil, nil
}

func (r *memAttributeRepo) CreateValue(_ context.Context, v *models.AttributeValue) error {
	v.ID = r.ids.id()
	r.values = append(r.values, v)
	return nil
}

type memProductRepo struct {
	ids        memIDs
	products   []*models.Product
	categories map[int64][]int64
	saves      int
}

func (r *memProductRepo) FindByReference(_ context.Context, reference string) (*models.Product, error) {
	for _, p := range r.products {
		if strings.EqualFold(p.Reference, reference) {
			return p, nil
		}
	}
	return nil, nil
}

func (r *memProductRepo) Create(_ context.Context, p *models.Product) error {
	p.ID = r.ids.id()
	r.products = append(r.products, p)
	return nil
}

func (r *memProductRepo) Save(_ context.Context, p *models.Product) error {
	r.saves++
	for i, existing := range r.products {
		if existing.ID == p.ID {
			r.products[i] = p
			return nil
		}
	}
	return fmt.Errorf("product %d not found", p.ID)
}

func (r *memProductRepo) ReplaceCategories(_ context.Context, productID int64, categoryIDs []int64) error {
	if r.categories == nil {
		r.categories = make(map[int64][]int64)
	}
	r.categories[productID] = categoryIDs
	return nil
}

type memCombinationRepo struct {
	ids          memIDs
	combinations []*models.Combination
	attached     map[int64][]int64
	deletes      int
}

func (r *memCombinationRepo) DeleteForProduct(_ context.Context, productID int64) error {
	r.deletes++
	kept := r.combinations[:0]
	for _, c := range r.combinations {
		if c.ProductID != productID {
			kept = append(kept, c)
		} else {
			delete(r.attached, c.ID)
		}
	}
	r.combinations = kept
	return nil
}

func (r *memCombinationRepo) Create(_ context.Context, c *models.Combination) error {
	c.ID = r.ids.id()
	r.combinations = append(r.combinations, c)
	return nil
}

func (r *memCombinationRepo) AttachValues(_ context.Context, combinationID int64, valueIDs []int64) error {
	if r.attached == nil {
		r.attached = make(map[int64][]int64)
	}
	r.attached[combinationID] = valueIDs
	return nil
}

type memImageRepo struct {
	ids    memIDs
	images []*models.Image
}

func (r *memImageRepo) Create(_ context.Context, img *models.Image) error {
	img.ID = r.ids.id()
	r.images = append(r.images, img)
	return nil
}

func (r *memImageRepo) Delete(_ context.Context, imageID int64) error {
	kept := r.images[:0]
	for _, img := range r.images {
		if img.ID != imageID {
			kept = append(kept, img)
		}
	}
	r.images = kept
	return nil
}

func (r *memImageRepo) HasCover(_ context.Context, productID int64) (bool, error) {
	for _, img := range r.images {
		if img.ProductID == productID && img.Cover {
			return true, nil
		}
	}
	return false, nil
}

func (r *memImageRepo) SetCover(_ context.Context, imageID int64) error {
	for _, img := range r.images {
		if img.ID == imageID {
			img.Cover = true
			return nil
		}
	}
	return fmt.Errorf("image %d not found", imageID)
}

func (r *memImageRepo) FirstImageID(_ context.Context, productID int64) (int64, error) {
	var first *models.Image
	for _, img := range r.images {
		if img.ProductID != productID {
			continue
		}
		if first == nil || img.Position < first.Position {
			first = img
		}
	}
	if first == nil {
		return 0, nil
	}
	return first.ID, nil
}

func (r *memImageRepo) NextPosition(_ context.Context, productID int64) (int, error) {
	max := 0
	for _, img := range r.images {
		if img.ProductID == productID && img.Position > max {
			max = img.Position
		}
	}
	return max + 1, nil
}

type memStockRepo struct {
	quantities map[[2]int64]int
}

func (r *memStockRepo) SetQuantity(_ context.Context, productID, combinationID int64, quantity int) error {
	if r.quantities == nil {
		r.quantities = make(map[[2]int64]int)
	}
	r.quantities[[2]int64{productID, combinationID}] = quantity
	return nil
}

// fakeRemote serves canned records keyed by entity and id, counting
// fetches so memoization is observable.
type fakeRemote struct {
	products      map[int]map[string]interface{}
	categories    map[int]map[string]interface{}
	features      map[int]map[string]interface{}
	featureValues map[int]map[string]interface{}
	options       map[int]map[string]interface{}
	optionValues  map[int]map[string]interface{}
	combinations  map[int]map[string]interface{}
	imageIDs      map[int][]int
	imageData     map[int][]byte
	stock         map[int]int

	categoryFetches int
	stockErr        error
}

func (f *fakeRemote) record(m map[int]map[string]interface{}, kind string, id int) (remote.Record, error) {
	raw, ok := m[id]
	if !ok {
		return remote.Record{}, &remote.NotFoundError{Resource: kind, ID: id}
	}
	return remote.RecordFrom(raw), nil
}

func (f *fakeRemote) Product(_ context.Context, id int) (remote.Record, error) {
	return f.record(f.products, "product", id)
}

func (f *fakeRemote) Category(_ context.Context, id int) (remote.Record, error) {
	f.categoryFetches++
	return f.record(f.categories, "category", id)
}

func (f *fakeRemote) Feature(_ context.Context, id int) (remote.Record, error) {
	return f.record(f.features, "product_feature", id)
}

func (f *fakeRemote) FeatureValue(_ context.Context, id int) (remote.Record, error) {
	return f.record(f.featureValues, "product_feature_value", id)
}

func (f *fakeRemote) ProductOption(_ context.Context, id int) (remote.Record, error) {
	return f.record(f.options, "product_option", id)
}

func (f *fakeRemote) ProductOptionValue(_ context.Context, id int) (remote.Record, error) {
	return f.record(f.optionValues, "product_option_value", id)
}

func (f *fakeRemote) Combination(_ context.Context, id int) (remote.Record, error) {
	return f.record(f.combinations, "combination", id)
}

func (f *fakeRemote) ProductImageIDs(_ context.Context, productID int) ([]int, error) {
	return f.imageIDs[productID], nil
}

func (f *fakeRemote) DownloadProductImage(_ context.Context, productID, imageID int) ([]byte, error) {
	data, ok := f.imageData[imageID]
	if !ok {
		return nil, &remote.NotFoundError{Resource: "image", ID: imageID}
	}
	return data, nil
}

func (f *fakeRemote) DownloadCategoryImage(_ context.Context, categoryID int) ([]byte, error) {
	return nil, &remote.NotFoundError{Resource: "image", ID: categoryID}
}

func (f *fakeRemote) StockTotal(_ context.Context, productID int) (int, []remote.StockRow, error) {
	if f.stockErr != nil {
		return 0, nil, f.stockErr
	}
	qty := f.stock[productID]
	return qty, []remote.StockRow{{ID: 1, Quantity: qty}}, nil
}

// memImageStore records saved binaries without touching the disk.
type memImageStore struct {
	productImages  map[int64][]int64
	categoryImages []int64
	thumbErrs      []error
	saveErr        error
}

func (s *memImageStore) SaveProductImage(productID, imageID int64, data []byte) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	if s.productImages == nil {
		s.productImages = make(map[int64][]int64)
	}
	s.productImages[productID] = append(s.productImages[productID], imageID)
	return nil
}

func (s *memImageStore) SaveProductThumbnails(productID, imageID int64, data []byte) []error {
	return s.thumbErrs
}

func (s *memImageStore) SaveCategoryImage(categoryID int64, data []byte) error {
	s.categoryImages = append(s.categoryImages, categoryID)
	return nil
}
