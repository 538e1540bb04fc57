package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vamlemat/sync-ps-to-ps-importer/models"
	"github.com/vamlemat/sync-ps-to-ps-importer/remote"
	"github.com/vamlemat/sync-ps-to-ps-importer/repository"
)

// ImporterService pulls one remote product at a time and reconciles it
// into the local catalog. The fetch, identity resolution and first
// persist are fatal; every aspect after that (categories, manufacturer,
// stock, images, features, combinations) degrades to a warning so one
// broken aspect never loses the rest of the product.
type ImporterService struct {
	remote   RemoteCatalog
	resolver *Resolver
	builder  *CategoryBuilder
	mapper   *FieldMapper
	store    ImageStore
	runLog   *RunLog

	products     repository.ProductRepo
	features     repository.FeatureRepo
	combinations repository.CombinationRepo
	images       repository.ImageRepo
	stock        repository.StockRepo

	langs LangConfig
	// coverageFeatureName designates the feature whose value carries the
	// package coverage quantity, e.g. "m2".
	coverageFeatureName string
	minImageBytes       int
	homeCategoryID      int64
}

// ImporterConfig carries the tunables of the import engine.
type ImporterConfig struct {
	Langs               LangConfig
	CoverageFeatureName string
	MinImageBytes       int
	HomeCategoryID      int64
}

const defaultMinImageBytes = 1024

func NewImporterService(
	remoteCatalog RemoteCatalog,
	resolver *Resolver,
	builder *CategoryBuilder,
	mapper *FieldMapper,
	store ImageStore,
	runLog *RunLog,
	products repository.ProductRepo,
	features repository.FeatureRepo,
	combinations repository.CombinationRepo,
	images repository.ImageRepo,
	stock repository.StockRepo,
	cfg ImporterConfig,
) *ImporterService {
	if cfg.MinImageBytes <= 0 {
		cfg.MinImageBytes = defaultMinImageBytes
	}
	return &ImporterService{
		remote:              remoteCatalog,
		resolver:            resolver,
		builder:             builder,
		mapper:              mapper,
		store:               store,
		runLog:              runLog,
		products:            products,
		features:            features,
		combinations:        combinations,
		images:              images,
		stock:               stock,
		langs:               cfg.Langs,
		coverageFeatureName: cfg.CoverageFeatureName,
		minImageBytes:       cfg.MinImageBytes,
		homeCategoryID:      cfg.HomeCategoryID,
	}
}

// importRun accumulates the step log and warnings of one product import.
type importRun struct {
	remoteID int
	steps    []string
	warnings []string
}

func (r *importRun) step(format string, args ...interface{}) {
	r.steps = append(r.steps, fmt.Sprintf("%d. ", len(r.steps)+1)+fmt.Sprintf(format, args...))
}

func (r *importRun) warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.warnings = append(r.warnings, msg)
	r.step("warning: %s", msg)
}

// ImportOne imports a single remote product by its remote id. The run
// log is flushed whatever happens, a panic in an aspect step included.
func (s *ImporterService) ImportOne(ctx context.Context, remoteProductID int) (result models.ImportResult) {
	run := &importRun{remoteID: remoteProductID}
	defer func() {
		result.StepLog = run.steps
		result.Warnings = run.warnings
		s.flushLog(remoteProductID, result)
	}()

	if remoteProductID <= 0 {
		return models.ImportResult{
			Success: false,
			Message: fmt.Sprintf("invalid remote product id %d", remoteProductID),
		}
	}
	return s.importOne(ctx, NewRunContext(), run, remoteProductID)
}

func (s *ImporterService) importOne(ctx context.Context, rc *RunContext, run *importRun, remoteProductID int) models.ImportResult {
	fail := func(format string, args ...interface{}) models.ImportResult {
		msg := fmt.Sprintf(format, args...)
		run.step("fatal: %s", msg)
		return models.ImportResult{Success: false, Message: msg}
	}

	rec, err := s.remote.Product(ctx, remoteProductID)
	if err != nil {
		return fail("fetch remote product %d: %v", remoteProductID, err)
	}
	run.step("fetched remote product %d", remoteProductID)

	// An empty reference means no cross-import identity: the product is
	// imported fresh each time instead of matching an existing row.
	reference := strings.TrimSpace(rec.String("reference", s.langs.DefaultLangID))
	var product *models.Product
	if reference != "" {
		product, err = s.products.FindByReference(ctx, reference)
		if err != nil {
			return fail("look up product by reference %q: %v", reference, err)
		}
	}
	created := product == nil
	switch {
	case !created:
		run.step("matched local product %d by reference %q", product.ID, reference)
	case reference == "":
		product = &models.Product{}
		run.step("remote product %d has no reference, creating without identity match", remoteProductID)
	default:
		product = &models.Product{}
		run.step("no local product with reference %q, creating", reference)
	}

	coverage := s.coverageFromFeatures(ctx, run, rec)
	fields := s.mapper.MapBasicFields(rec, coverage)
	fields.ApplyTo(product)
	if created {
		product.DefaultCategoryID = s.homeCategoryID
	}
	run.step("mapped fields (price %.2f, unit price %.6f, active %v)", fields.Price, fields.UnitPrice, fields.Active)

	if created {
		err = s.products.Create(ctx, product)
	} else {
		err = s.products.Save(ctx, product)
	}
	if err != nil {
		return fail("persist product %q: %v", reference, err)
	}
	run.step("persisted product %d", product.ID)

	// From here on every step is an aspect: failures degrade to
	// warnings and the import still succeeds.
	s.syncCategories(ctx, rc, run, rec, product)
	s.syncManufacturer(ctx, rc, run, rec, product)
	s.syncStock(ctx, run, rec, remoteProductID, product.ID)
	s.syncImages(ctx, run, remoteProductID, product.ID)
	s.syncFeatures(ctx, rc, run, rec, product.ID)
	s.syncCombinations(ctx, rc, run, rec, product.ID)

	verb := "updated"
	if created {
		verb = "created"
	}
	return models.ImportResult{
		Success:   true,
		ProductID: product.ID,
		Message:   fmt.Sprintf("product %d %s from remote %d", product.ID, verb, remoteProductID),
	}
}

// ImportMany imports the given remote ids strictly in order, one at a
// time. A failed id never stops the rest.
func (s *ImporterService) ImportMany(ctx context.Context, remoteProductIDs []int) models.ImportSummary {
	summary := models.ImportSummary{Results: make(map[int]models.ImportResult, len(remoteProductIDs))}
	for _, id := range remoteProductIDs {
		result := s.ImportOne(ctx, id)
		summary.Results[id] = result
		if result.Success {
			summary.Success++
		} else {
			summary.Errors++
		}
		summary.Messages = append(summary.Messages, fmt.Sprintf("remote %d: %s", id, result.Message))
	}
	return summary
}

// coverageFromFeatures scans the product's feature associations for the
// designated coverage feature and parses its quantity. Any failure here
// only costs the coverage-derived unit price.
func (s *ImporterService) coverageFromFeatures(ctx context.Context, run *importRun, rec remote.Record) float64 {
	if s.coverageFeatureName == "" {
		return 0
	}
	want := normalizeKey(s.coverageFeatureName)
	for _, assoc := range rec.Associations("product_features") {
		featureID := assoc.Int("id", s.langs.DefaultLangID)
		valueID := assoc.Int("id_feature_value", s.langs.DefaultLangID)
		if featureID <= 0 || valueID <= 0 {
			continue
		}
		feat, err := s.remote.Feature(ctx, featureID)
		if err != nil {
			run.warn("fetch feature %d for coverage: %v", featureID, err)
			continue
		}
		if normalizeKey(feat.String("name", s.langs.DefaultLangID)) != want {
			continue
		}
		val, err := s.remote.FeatureValue(ctx, valueID)
		if err != nil {
			run.warn("fetch feature value %d for coverage: %v", valueID, err)
			return 0
		}
		coverage := ParseCoverage(val.String("value", s.langs.DefaultLangID))
		if coverage > 0 {
			run.step("coverage %.3f from feature %q", coverage, s.coverageFeatureName)
		}
		return coverage
	}
	return 0
}

func (s *ImporterService) syncCategories(ctx context.Context, rc *RunContext, run *importRun, rec remote.Record, product *models.Product) {
	remoteDefault := rec.Int("id_category_default", s.langs.DefaultLangID)

	var memberships []int64
	seen := make(map[int64]bool)
	add := func(localID int64) {
		if localID > 0 && !seen[localID] {
			seen[localID] = true
			memberships = append(memberships, localID)
		}
	}

	defaultLocal := s.homeCategoryID
	if remoteDefault > 0 {
		id, err := s.builder.EnsureCategoryPath(ctx, rc, remoteDefault)
		if err != nil {
			run.warn("default category %d: %v", remoteDefault, err)
		} else {
			defaultLocal = id
			add(id)
		}
	}

	for _, assoc := range rec.Associations("categories") {
		remoteID := assoc.Int("id", s.langs.DefaultLangID)
		if remoteID <= 0 || remoteID == remoteDefault {
			continue
		}
		id, err := s.builder.EnsureCategoryPath(ctx, rc, remoteID)
		if err != nil {
			run.warn("category %d: %v", remoteID, err)
			continue
		}
		add(id)
	}
	add(s.homeCategoryID)

	if err := s.products.ReplaceCategories(ctx, product.ID, memberships); err != nil {
		run.warn("replace category memberships: %v", err)
		return
	}
	if product.DefaultCategoryID != defaultLocal {
		product.DefaultCategoryID = defaultLocal
		if err := s.products.Save(ctx, product); err != nil {
			run.warn("save default category: %v", err)
			return
		}
	}
	run.step("assigned %d categories, default %d", len(memberships), defaultLocal)
}

func (s *ImporterService) syncManufacturer(ctx context.Context, rc *RunContext, run *importRun, rec remote.Record, product *models.Product) {
	name := strings.TrimSpace(rec.String("manufacturer_name", s.langs.DefaultLangID))
	if name == "" {
		return
	}
	id, err := s.resolver.Manufacturer(ctx, rc, name)
	if err != nil {
		run.warn("manufacturer %q: %v", name, err)
		return
	}
	if product.ManufacturerID != id {
		product.ManufacturerID = id
		if err := s.products.Save(ctx, product); err != nil {
			run.warn("save manufacturer assignment: %v", err)
			return
		}
	}
	run.step("manufacturer %q resolved to %d", name, id)
}

func (s *ImporterService) syncStock(ctx context.Context, run *importRun, rec remote.Record, remoteProductID int, productID int64) {
	total, _, err := s.remote.StockTotal(ctx, remoteProductID)
	if err != nil {
		// The listing payload carries a quantity field that serves as a
		// coarse fallback when the stock endpoint is unreachable.
		total = rec.Int("quantity", s.langs.DefaultLangID)
		run.warn("stock endpoint failed (%v), using quantity field %d", err, total)
	}
	if total < 0 {
		total = 0
	}
	if err := s.stock.SetQuantity(ctx, productID, 0, total); err != nil {
		run.warn("set stock quantity: %v", err)
		return
	}
	run.step("stock quantity set to %d", total)
}

func (s *ImporterService) syncImages(ctx context.Context, run *importRun, remoteProductID int, productID int64) {
	imageIDs, err := s.remote.ProductImageIDs(ctx, remoteProductID)
	if err != nil {
		run.warn("list remote images: %v", err)
		return
	}

	hasCover, err := s.images.HasCover(ctx, productID)
	if err != nil {
		run.warn("check cover image: %v", err)
		hasCover = true
	}

	imported := 0
	for _, remoteImageID := range imageIDs {
		data, err := s.remote.DownloadProductImage(ctx, remoteProductID, remoteImageID)
		if err != nil {
			run.warn("download image %d: %v", remoteImageID, err)
			continue
		}
		if len(data) < s.minImageBytes {
			run.warn("image %d skipped: %d bytes, below minimum %d", remoteImageID, len(data), s.minImageBytes)
			continue
		}

		position, err := s.images.NextPosition(ctx, productID)
		if err != nil {
			run.warn("image %d position: %v", remoteImageID, err)
			continue
		}
		img := &models.Image{ProductID: productID, Position: position, Cover: !hasCover}
		if err := s.images.Create(ctx, img); err != nil {
			run.warn("record image %d: %v", remoteImageID, err)
			continue
		}

		// A record whose binary never landed must not survive, or the
		// catalog points at a missing file (and possibly a ghost cover).
		if err := s.store.SaveProductImage(productID, img.ID, data); err != nil {
			run.warn("store image %d: %v", img.ID, err)
			if derr := s.images.Delete(ctx, img.ID); derr != nil {
				run.warn("remove image record %d: %v", img.ID, derr)
			}
			continue
		}
		if img.Cover {
			hasCover = true
		}
		for _, terr := range s.store.SaveProductThumbnails(productID, img.ID, data) {
			run.warn("image %d: %v", img.ID, terr)
		}
		imported++
	}

	// A product that gained images but still has no cover gets its first
	// image promoted.
	if !hasCover {
		if firstID, err := s.images.FirstImageID(ctx, productID); err == nil && firstID > 0 {
			if err := s.images.SetCover(ctx, firstID); err != nil {
				run.warn("set cover image: %v", err)
			}
		}
	}
	run.step("imported %d of %d images", imported, len(imageIDs))
}

func (s *ImporterService) syncFeatures(ctx context.Context, rc *RunContext, run *importRun, rec remote.Record, productID int64) {
	assocs := rec.Associations("product_features")
	pairs := make([]models.ProductFeature, 0, len(assocs))

	for _, assoc := range assocs {
		remoteFeatureID := assoc.Int("id", s.langs.DefaultLangID)
		remoteValueID := assoc.Int("id_feature_value", s.langs.DefaultLangID)
		if remoteFeatureID <= 0 || remoteValueID <= 0 {
			continue
		}

		feat, err := s.remote.Feature(ctx, remoteFeatureID)
		if err != nil {
			run.warn("fetch feature %d: %v", remoteFeatureID, err)
			continue
		}
		name := feat.String("name", s.langs.DefaultLangID)
		if name == "" {
			run.warn("remote feature %d has no name", remoteFeatureID)
			continue
		}

		val, err := s.remote.FeatureValue(ctx, remoteValueID)
		if err != nil {
			run.warn("fetch feature value %d: %v", remoteValueID, err)
			continue
		}
		value := val.String("value", s.langs.DefaultLangID)
		if value == "" {
			run.warn("remote feature value %d is empty", remoteValueID)
			continue
		}

		featureID, err := s.resolver.Feature(ctx, rc, name)
		if err != nil {
			run.warn("resolve feature %q: %v", name, err)
			continue
		}
		valueID, err := s.resolver.FeatureValue(ctx, rc, featureID, value)
		if err != nil {
			run.warn("resolve feature value %q: %v", value, err)
			continue
		}
		pairs = append(pairs, models.ProductFeature{
			ProductID:      productID,
			FeatureID:      featureID,
			FeatureValueID: valueID,
		})
	}

	if err := s.features.ReplaceProductFeatures(ctx, productID, pairs); err != nil {
		run.warn("replace product features: %v", err)
		return
	}
	run.step("rebuilt %d feature associations", len(pairs))
}

func (s *ImporterService) syncCombinations(ctx context.Context, rc *RunContext, run *importRun, rec remote.Record, productID int64) {
	assocs := rec.Associations("combinations")
	if err := s.combinations.DeleteForProduct(ctx, productID); err != nil {
		run.warn("clear combinations: %v", err)
		return
	}
	if len(assocs) == 0 {
		return
	}

	rebuilt := 0
	for _, assoc := range assocs {
		remoteComboID := assoc.Int("id", s.langs.DefaultLangID)
		if remoteComboID <= 0 {
			continue
		}
		if err := s.importCombination(ctx, rc, run, productID, remoteComboID); err != nil {
			run.warn("combination %d: %v", remoteComboID, err)
			continue
		}
		rebuilt++
	}
	run.step("rebuilt %d of %d combinations", rebuilt, len(assocs))
}

func (s *ImporterService) importCombination(ctx context.Context, rc *RunContext, run *importRun, productID int64, remoteComboID int) error {
	rec, err := s.remote.Combination(ctx, remoteComboID)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	valueIDs, err := s.resolveCombinationValues(ctx, rc, rec)
	if err != nil {
		return err
	}

	combo := &models.Combination{
		ProductID:       productID,
		Reference:       rec.String("reference", s.langs.DefaultLangID),
		EAN13:           rec.String("ean13", s.langs.DefaultLangID),
		PriceImpact:     rec.Float("price", s.langs.DefaultLangID),
		Weight:          rec.Float("weight", s.langs.DefaultLangID),
		MinimalQuantity: rec.Int("minimal_quantity", s.langs.DefaultLangID),
		DefaultOn:       rec.Bool("default_on", s.langs.DefaultLangID),
		Quantity:        rec.Int("quantity", s.langs.DefaultLangID),
	}
	if combo.MinimalQuantity < 1 {
		combo.MinimalQuantity = 1
	}
	if err := s.combinations.Create(ctx, combo); err != nil {
		return fmt.Errorf("create: %w", err)
	}
	if err := s.combinations.AttachValues(ctx, combo.ID, valueIDs); err != nil {
		return fmt.Errorf("attach values: %w", err)
	}
	if err := s.stock.SetQuantity(ctx, productID, combo.ID, combo.Quantity); err != nil {
		run.warn("combination %d stock: %v", remoteComboID, err)
	}
	return nil
}

// resolveCombinationValues maps the combination's remote option values to
// local attribute value ids, resolving each value's group by its public
// name first.
func (s *ImporterService) resolveCombinationValues(ctx context.Context, rc *RunContext, rec remote.Record) ([]int64, error) {
	assocs := rec.Associations("product_option_values")
	valueIDs := make([]int64, 0, len(assocs))
	for _, assoc := range assocs {
		remoteValueID := assoc.Int("id", s.langs.DefaultLangID)
		if remoteValueID <= 0 {
			continue
		}
		val, err := s.remote.ProductOptionValue(ctx, remoteValueID)
		if err != nil {
			return nil, fmt.Errorf("fetch option value %d: %w", remoteValueID, err)
		}
		remoteGroupID := val.Int("id_attribute_group", s.langs.DefaultLangID)
		if remoteGroupID <= 0 {
			return nil, fmt.Errorf("option value %d has no attribute group", remoteValueID)
		}
		group, err := s.remote.ProductOption(ctx, remoteGroupID)
		if err != nil {
			return nil, fmt.Errorf("fetch option group %d: %w", remoteGroupID, err)
		}
		publicName := group.String("public_name", s.langs.DefaultLangID)
		if publicName == "" {
			publicName = group.String("name", s.langs.DefaultLangID)
		}

		groupID, err := s.resolver.AttributeGroup(ctx, rc, publicName)
		if err != nil {
			return nil, err
		}
		name := val.String("name", s.langs.DefaultLangID)
		valueID, err := s.resolver.AttributeValue(ctx, rc, groupID, name)
		if err != nil {
			return nil, err
		}
		valueIDs = append(valueIDs, valueID)
	}
	return valueIDs, nil
}

// flushLog writes the whole step log plus a terminal line, whatever the
// outcome was.
func (s *ImporterService) flushLog(remoteProductID int, result models.ImportResult) {
	if s.runLog == nil {
		return
	}
	for _, step := range result.StepLog {
		if err := s.runLog.Append(remoteProductID, step); err != nil {
			zap.L().Warn("failed to append run log", zap.Error(err))
			return
		}
	}
	status := "OK"
	if !result.Success {
		status = "FAILED"
	}
	line := fmt.Sprintf("%s: %s", status, result.Message)
	if len(result.Warnings) > 0 {
		line += fmt.Sprintf(" (%d warnings)", len(result.Warnings))
	}
	if err := s.runLog.Append(remoteProductID, line); err != nil {
		zap.L().Warn("failed to append run log", zap.Error(err))
	}
}
