package filter

import (
	"strings"
	"testing"
)

func TestNew_Valid(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		values []any
		at     ApplicationType
		ft     Type
	}{
		{"brand", "indexed_metadata.brand", []any{"nike", "adidas"}, AtLeastOne, Field},
		{"price", "indexed_metadata.price", []any{"10..20]"}, MustAll, Range},
		{"created", "indexed_metadata.created_at", []any{"now-7d.."}, MustAll, DateRange},
		{"category", "indexed_metadata.category.id", nil, MustAllWithLevels, Field},
		{"color", "indexed_metadata.color", []any{"red"}, Exclude, Field},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.name, tt.field, tt.values, tt.at, tt.ft)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Name() != tt.name || f.Field() != tt.field {
				t.Errorf("got %q/%q", f.Name(), f.Field())
			}
			if f.ApplicationType() != tt.at || f.Type() != tt.ft {
				t.Errorf("got %q/%q", f.ApplicationType(), f.Type())
			}
			if len(f.Values()) != len(tt.values) {
				t.Errorf("values = %v", f.Values())
			}
			if f.HasValues() != (len(tt.values) > 0) {
				t.Errorf("HasValues() = %v", f.HasValues())
			}
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		desc    string
		name    string
		field   string
		values  []any
		at      ApplicationType
		ft      Type
		wantErr string
	}{
		{"empty name", "", "f", nil, MustAll, Field, "name is required"},
		{"bad application type", "n", "f", nil, "sometimes", Field, "invalid application type"},
		{"bad filter type", "n", "f", nil, MustAll, "fuzzy", "invalid filter type"},
		{"missing field", "n", "", nil, MustAll, Field, "field is required"},
		{"range not string", "n", "f", []any{12}, MustAll, Range, "range value must be a string"},
		{"geo not location", "n", "", []any{"here"}, MustAll, Geo, "location range"},
		{"geo two shapes", "n", "", []any{Square{}, Square{}}, MustAll, Geo, "single location range"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, err := New(tt.name, tt.field, tt.values, tt.at, tt.ft)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want contains %q", err, tt.wantErr)
			}
		})
	}
}

func TestNew_CopiesValues(t *testing.T) {
	values := []any{"a"}
	f, err := New("n", "f", values, MustAll, Field)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	values[0] = "b"
	if f.Values()[0] != "a" {
		t.Fatal("filter must not alias the caller's slice")
	}
}

func TestNew_GeoDefaultField(t *testing.T) {
	f, err := New("near", "", []any{Square{}}, MustAll, Geo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Field() != DefaultGeoField {
		t.Errorf("Field() = %q", f.Field())
	}
}

func TestNewQuery(t *testing.T) {
	f := NewQuery("shoes")
	if f.Name() != QueryName || f.Type() != Query {
		t.Fatalf("got %q/%q", f.Name(), f.Type())
	}
	if f.Values()[0] != "shoes" {
		t.Errorf("values = %v", f.Values())
	}
}

func TestRestrictToSubgroup(t *testing.T) {
	f, err := New("category", "indexed_metadata.category.id", nil, MustAllWithLevels, Field)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := RestrictToSubgroup(f); ok {
		t.Fatal("filter without terms must not restrict")
	}

	locked := f.WithTerms("indexed_metadata.category.level", 2)
	if _, ok := f.Terms(); ok {
		t.Fatal("WithTerms must not mutate the receiver")
	}

	sub, ok := RestrictToSubgroup(locked)
	if !ok {
		t.Fatal("expected subgroup filter")
	}
	if sub.Name() != "category" {
		t.Errorf("Name() = %q", sub.Name())
	}
	if sub.Field() != "indexed_metadata.category.level" {
		t.Errorf("Field() = %q", sub.Field())
	}
	if sub.ApplicationType() != AtLeastOne || sub.Type() != Field {
		t.Errorf("got %q/%q", sub.ApplicationType(), sub.Type())
	}
	if len(sub.Values()) != 1 || sub.Values()[0] != 2 {
		t.Errorf("Values() = %v", sub.Values())
	}
	if _, ok := sub.Terms(); ok {
		t.Error("subgroup filter must not carry terms")
	}
}

func TestType_Predicates(t *testing.T) {
	if !RangeWithMinMax.IsRange() || !RangeWithMinMax.HasMinMax() || RangeWithMinMax.IsDate() {
		t.Error("RangeWithMinMax predicates")
	}
	if !DateRange.IsRange() || !DateRange.IsDate() || DateRange.HasMinMax() {
		t.Error("DateRange predicates")
	}
	if Field.IsRange() || Geo.IsRange() {
		t.Error("Field/Geo are not ranges")
	}
}
