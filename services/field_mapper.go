package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gosimple/slug"

	"github.com/vamlemat/sync-ps-to-ps-importer/models"
	"github.com/vamlemat/sync-ps-to-ps-importer/remote"
)

// ProductFields is the mapped field set of one remote product, ready to
// be applied to a local product.
type ProductFields struct {
	Reference      string
	EAN13          string
	UPC            string
	Price          float64
	WholesalePrice float64
	UnitPrice      float64
	Active         bool
	Texts          map[int]ProductText
}

// ProductText holds the per-language display fields.
type ProductText struct {
	Name             string
	Description      string
	DescriptionShort string
	LinkRewrite      string
	MetaTitle        string
}

// FieldMapper converts remote product records into local fields,
// applying the language fallback and unit-price derivation rules.
type FieldMapper struct {
	langs LangConfig
	// unitPriceMax clamps absurd derived unit prices to 0 so the save
	// never fails over this one field.
	unitPriceMax float64
}

const defaultUnitPriceMax = 1e6

func NewFieldMapper(langs LangConfig, unitPriceMax float64) *FieldMapper {
	if unitPriceMax <= 0 {
		unitPriceMax = defaultUnitPriceMax
	}
	return &FieldMapper{langs: langs, unitPriceMax: unitPriceMax}
}

// MapBasicFields maps the scalar and per-language fields of a remote
// product. coverage is the package coverage quantity derived from the
// designated feature, 0 when unknown.
func (m *FieldMapper) MapBasicFields(rec remote.Record, coverage float64) ProductFields {
	defaultLang := m.langs.DefaultLangID

	fields := ProductFields{
		Reference:      rec.String("reference", defaultLang),
		EAN13:          rec.String("ean13", defaultLang),
		UPC:            rec.String("upc", defaultLang),
		Price:          rec.Float("price", defaultLang),
		WholesalePrice: rec.Float("wholesale_price", defaultLang),
		Active:         rec.Bool("active", defaultLang),
		Texts:          make(map[int]ProductText),
	}
	fields.UnitPrice = m.unitPrice(rec, fields.Price, coverage)

	name := rec.Field("name")
	description := rec.Field("description")
	descriptionShort := rec.Field("description_short")
	linkRewrite := rec.Field("link_rewrite")
	metaTitle := rec.Field("meta_title")

	for _, langID := range m.langs.Languages() {
		text := ProductText{
			Name:             localized(name, langID, defaultLang),
			Description:      localized(description, langID, defaultLang),
			DescriptionShort: localized(descriptionShort, langID, defaultLang),
			LinkRewrite:      localized(linkRewrite, langID, defaultLang),
			MetaTitle:        localized(metaTitle, langID, defaultLang),
		}
		if text.LinkRewrite == "" && text.Name != "" {
			text.LinkRewrite = slug.Make(text.Name)
		}
		fields.Texts[langID] = text
	}

	return fields
}

// localized prefers the remote value for the exact language, then the
// remote default-language value.
func localized(f remote.Field, langID, defaultLangID int) string {
	if v, ok := f.Value(langID); ok && v != "" {
		return v
	}
	return f.Normalize(defaultLangID)
}

// unitPrice derives the unit price: explicit remote value when positive,
// else price divided by the coverage quantity, else the plain price.
// Negative or absurdly large results clamp to 0.
func (m *FieldMapper) unitPrice(rec remote.Record, price, coverage float64) float64 {
	up := rec.Float("unit_price", m.langs.DefaultLangID)
	switch {
	case up > 0:
		up = round6(up)
	case coverage > 0:
		up = round6(price / coverage)
	default:
		up = price
	}
	if up < 0 || up > m.unitPriceMax {
		return 0
	}
	return up
}

// ApplyTo writes the mapped fields onto a local product, rebuilding its
// language rows.
func (f ProductFields) ApplyTo(product *models.Product) {
	product.Reference = f.Reference
	product.EAN13 = f.EAN13
	product.UPC = f.UPC
	product.Price = f.Price
	product.WholesalePrice = f.WholesalePrice
	product.UnitPrice = f.UnitPrice
	product.Active = f.Active

	product.Langs = product.Langs[:0]
	for langID, text := range f.Texts {
		product.Langs = append(product.Langs, models.ProductLang{
			ProductID:        product.ID,
			LangID:           langID,
			Name:             text.Name,
			Description:      text.Description,
			DescriptionShort: text.DescriptionShort,
			LinkRewrite:      text.LinkRewrite,
			MetaTitle:        text.MetaTitle,
		})
	}
}

var quantityPattern = regexp.MustCompile(`[-+]?\d+(?:[.,]\d+)?`)

// ParseCoverage extracts the leading quantity out of a feature value
// like "2 m2" or "1,5 m2". Returns 0 when no usable number is present.
func ParseCoverage(text string) float64 {
	match := quantityPattern.FindString(text)
	if match == "" {
		return 0
	}
	match = strings.ReplaceAll(match, ",", ".")
	v, err := strconv.ParseFloat(match, 64)
	if err != nil || v <= 0 {
		return 0
	}
	return v
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
