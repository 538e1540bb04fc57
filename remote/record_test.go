package remote

import (
	"encoding/json"
	"testing"
)

func recordFromJSON(t *testing.T, raw string) Record {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("bad test payload: %v", err)
	}
	return RecordFrom(m)
}

func TestFieldScalar(t *testing.T) {
	rec := recordFromJSON(t, `{"reference": "ABC-1", "price": "12.50", "active": "1"}`)

	if got := rec.String("reference", 1); got != "ABC-1" {
		t.Errorf("reference = %q, want ABC-1", got)
	}
	if got := rec.Float("price", 1); got != 12.5 {
		t.Errorf("price = %v, want 12.5", got)
	}
	if !rec.Bool("active", 1) {
		t.Error("active should be true for \"1\"")
	}
	if got := rec.Int("price", 1); got != 12 {
		t.Errorf("Int(price) = %d, want 12", got)
	}
	// Scalars answer for any language.
	if v, ok := rec.Field("reference").Value(7); !ok || v != "ABC-1" {
		t.Errorf("Value(7) = %q, %v", v, ok)
	}
}

func TestBoolTruthyInt(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{"1", true},
		{"2", true},
		{"-1", true},
		{"true", true},
		{"0", false},
		{"", false},
		{"false", false},
		{"junk", false},
	}
	for _, c := range cases {
		rec := RecordFrom(map[string]interface{}{"active": c.raw})
		if got := rec.Bool("active", 1); got != c.want {
			t.Errorf("Bool(%q) = %v, want %v", c.raw, got, c.want)
		}
	}
}

func TestFieldLocalizedLanguageNodes(t *testing.T) {
	rec := recordFromJSON(t, `{
		"name": {"language": [
			{"id": 1, "value": "Red chair"},
			{"id": 2, "value": "Chaise rouge"}
		]}
	}`)

	f := rec.Field("name")
	if v, ok := f.Value(2); !ok || v != "Chaise rouge" {
		t.Errorf("Value(2) = %q, %v", v, ok)
	}
	if got := f.Normalize(1); got != "Red chair" {
		t.Errorf("Normalize(1) = %q", got)
	}
	// Absent preferred language falls back to the lowest present id.
	if got := f.Normalize(9); got != "Red chair" {
		t.Errorf("Normalize(9) = %q, want first present value", got)
	}
}

func TestFieldLocalizedIDMap(t *testing.T) {
	rec := recordFromJSON(t, `{"name": {"1": "Table", "2": "Tisch"}}`)

	if got := rec.String("name", 2); got != "Tisch" {
		t.Errorf("name lang 2 = %q", got)
	}
}

func TestFieldMissing(t *testing.T) {
	rec := recordFromJSON(t, `{"reference": "X"}`)

	f := rec.Field("ean13")
	if !f.Missing() {
		t.Error("absent field should be Missing")
	}
	if got := f.Normalize(1); got != "" {
		t.Errorf("Normalize of missing = %q, want empty", got)
	}
	if got := rec.Float("price", 1); got != 0 {
		t.Errorf("Float of missing = %v, want 0", got)
	}
}

func TestFieldXMLAttributeShape(t *testing.T) {
	// mxj puts XML attributes under -id and the element text under #text.
	rec := RecordFrom(map[string]interface{}{
		"name": map[string]interface{}{
			"language": []interface{}{
				map[string]interface{}{"-id": "1", "#text": "Parquet"},
			},
		},
	})

	if got := rec.String("name", 1); got != "Parquet" {
		t.Errorf("name = %q, want Parquet", got)
	}
}

func TestAssociationsJSON(t *testing.T) {
	rec := recordFromJSON(t, `{
		"associations": {
			"categories": [{"id": "3"}, {"id": "7"}]
		}
	}`)

	rows := rec.Associations("categories")
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1].Int("id", 1) != 7 {
		t.Errorf("second row id = %d, want 7", rows[1].Int("id", 1))
	}
}

func TestAssociationsXMLNesting(t *testing.T) {
	// XML payloads nest rows under the singular element name, and a
	// single row arrives as a map rather than a list.
	rec := RecordFrom(map[string]interface{}{
		"associations": map[string]interface{}{
			"categories": map[string]interface{}{
				"category": map[string]interface{}{"id": "5"},
			},
		},
	})

	rows := rec.Associations("categories")
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Int("id", 1) != 5 {
		t.Errorf("row id = %d, want 5", rows[0].Int("id", 1))
	}
}

func TestAssociationsAbsent(t *testing.T) {
	rec := recordFromJSON(t, `{"reference": "X"}`)
	if rows := rec.Associations("categories"); len(rows) != 0 {
		t.Errorf("got %d rows, want none", len(rows))
	}
}
