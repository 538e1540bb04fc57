package remote

import (
	"sort"
	"strconv"
	"strings"
)

// Field is one value of a remote record. The webservice is loosely typed:
// the same field can arrive as a plain scalar, as a map indexed by
// language id, or be absent entirely. Field models those three shapes and
// funnels every read through a single normalization path.
type Field struct {
	kind      fieldKind
	scalar    string
	localized map[int]string
}

type fieldKind int

const (
	fieldMissing fieldKind = iota
	fieldScalar
	fieldLocalized
)

// Missing reports whether the field was absent in the remote payload.
func (f Field) Missing() bool { return f.kind == fieldMissing }

// Value returns the field's value for one language. Scalars answer for
// every language; localized maps answer only for languages they carry.
func (f Field) Value(langID int) (string, bool) {
	switch f.kind {
	case fieldScalar:
		return f.scalar, true
	case fieldLocalized:
		v, ok := f.localized[langID]
		return v, ok
	default:
		return "", false
	}
}

// Normalize collapses the field to a single string: the preferred
// language if present, else the first present value, else "".
func (f Field) Normalize(preferredLangID int) string {
	switch f.kind {
	case fieldScalar:
		return f.scalar
	case fieldLocalized:
		if v, ok := f.localized[preferredLangID]; ok {
			return v
		}
		ids := make([]int, 0, len(f.localized))
		for id := range f.localized {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			if v := f.localized[id]; v != "" {
				return v
			}
		}
		return ""
	default:
		return ""
	}
}

// fieldOf builds a Field from a raw decoded value. It understands the two
// localized wire shapes the webservice produces:
//
//	{"language": [{"id": 1, "value": "..."}, ...]}
//	{"1": "...", "2": "..."}
//
// plus plain scalars (string, number, bool).
func fieldOf(raw interface{}) Field {
	if raw == nil {
		return Field{}
	}
	switch v := raw.(type) {
	case map[string]interface{}:
		if nodes, ok := v["language"]; ok {
			return fieldOfLanguageNodes(nodes)
		}
		loc := make(map[int]string, len(v))
		for k, val := range v {
			id, err := strconv.Atoi(k)
			if err != nil {
				continue
			}
			loc[id] = scalarString(val)
		}
		if len(loc) > 0 {
			return Field{kind: fieldLocalized, localized: loc}
		}
		return Field{}
	case []interface{}:
		// A bare list of language nodes, seen in XML-converted payloads.
		return fieldOfLanguageNodes(v)
	default:
		return Field{kind: fieldScalar, scalar: scalarString(v)}
	}
}

func fieldOfLanguageNodes(raw interface{}) Field {
	loc := make(map[int]string)
	for _, node := range asSlice(raw) {
		m, ok := node.(map[string]interface{})
		if !ok {
			continue
		}
		id := toInt(m["id"])
		if id == 0 {
			// mxj puts XML attributes under -id and the text under #text.
			id = toInt(m["-id"])
		}
		if id == 0 {
			continue
		}
		if v, ok := m["value"]; ok {
			loc[id] = scalarString(v)
		} else if v, ok := m["#text"]; ok {
			loc[id] = scalarString(v)
		}
	}
	if len(loc) == 0 {
		return Field{}
	}
	return Field{kind: fieldLocalized, localized: loc}
}

// Record is one remote entity as a loosely-typed field mapping.
type Record struct {
	raw map[string]interface{}
}

// RecordFrom wraps a decoded entity map.
func RecordFrom(m map[string]interface{}) Record { return Record{raw: m} }

// Field returns the named field, Missing when absent.
func (r Record) Field(key string) Field {
	if r.raw == nil {
		return Field{}
	}
	v, ok := r.raw[key]
	if !ok {
		return Field{}
	}
	return fieldOf(v)
}

// String normalizes the named field to a single string.
func (r Record) String(key string, preferredLangID int) string {
	return r.Field(key).Normalize(preferredLangID)
}

// Float coerces the named field to a float64, 0 on absence or junk.
func (r Record) Float(key string, preferredLangID int) float64 {
	s := strings.TrimSpace(r.String(key, preferredLangID))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// Int coerces the named field to an int, 0 on absence or junk.
func (r Record) Int(key string, preferredLangID int) int {
	s := strings.TrimSpace(r.String(key, preferredLangID))
	if s == "" {
		return 0
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// Bool coerces the named field via the truthy-int convention: any
// non-zero numeric is true, with "true" accepted for safety.
func (r Record) Bool(key string, preferredLangID int) bool {
	s := strings.TrimSpace(strings.ToLower(r.String(key, preferredLangID)))
	if s == "" {
		return false
	}
	if s == "true" {
		return true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f != 0
	}
	return false
}

// Associations returns the rows of the named association list, e.g.
// "categories" or "product_features". Both JSON lists and the
// single-child map shape produced by the XML fallback are handled.
func (r Record) Associations(name string) []Record {
	if r.raw == nil {
		return nil
	}
	assoc, ok := r.raw["associations"].(map[string]interface{})
	if !ok {
		return nil
	}
	rows := assoc[name]
	// XML-converted payloads nest rows one level deeper, keyed by the
	// singular element name: {"categories": {"category": [...]}}.
	if m, ok := rows.(map[string]interface{}); ok && len(m) == 1 {
		for _, inner := range m {
			rows = inner
		}
	}
	out := make([]Record, 0)
	for _, row := range asSlice(rows) {
		if m, ok := row.(map[string]interface{}); ok {
			out = append(out, RecordFrom(m))
		}
	}
	return out
}

func asSlice(v interface{}) []interface{} {
	switch s := v.(type) {
	case []interface{}:
		return s
	case map[string]interface{}:
		return []interface{}{s}
	case nil:
		return nil
	default:
		return []interface{}{s}
	}
}

func scalarString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		if s {
			return "1"
		}
		return "0"
	case nil:
		return ""
	default:
		return ""
	}
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(n))
		return i
	case int:
		return n
	default:
		return 0
	}
}
