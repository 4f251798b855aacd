package sortby

import (
	"testing"

	"github.com/apisearch-io/search-server-sub000/internal/domain/geo"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/filter"
)

func TestSortBy_ScoreOnly(t *testing.T) {
	if !New().IsScoreOnly() {
		t.Error("empty sort is score only")
	}
	if !New(ByScore()).IsScoreOnly() {
		t.Error("single score clause is score only")
	}
	f, _ := ByField("indexed_metadata.price", Asc)
	if New(ByScore(), f).IsScoreOnly() {
		t.Error("score plus field is not score only")
	}
}

func TestSortBy_Random(t *testing.T) {
	f, _ := ByField("indexed_metadata.price", Asc)
	s := New(f, ByRandom())
	if !s.IsRandom() {
		t.Fatal("expected random")
	}
	if New(f).IsRandom() {
		t.Fatal("field sort is not random")
	}
}

func TestByField_Invalid(t *testing.T) {
	if _, err := ByField("", Asc); err == nil {
		t.Error("expected error for empty field")
	}
	if _, err := ByField("f", "up"); err == nil {
		t.Error("expected error for invalid order")
	}
}

func TestByDistance(t *testing.T) {
	c, err := ByDistance(geo.Coordinate{Lat: 41.3, Lon: 2.1}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Unit() != DefaultDistanceUnit || !c.IsAsc() || c.Field() != filter.DefaultGeoField {
		t.Errorf("got %+v", c)
	}
	origin, ok := New(c).DistanceOrigin()
	if !ok || origin.Lat != 41.3 {
		t.Errorf("DistanceOrigin() = %+v,%v", origin, ok)
	}
	if _, err := ByDistance(geo.Coordinate{Lat: 100}, "km"); err == nil {
		t.Error("expected error for invalid coordinate")
	}
}

func TestSortBy_DistancePosition(t *testing.T) {
	price, err := ByField("indexed_metadata.price", Asc)
	if err != nil {
		t.Fatalf("ByField: %v", err)
	}
	dist, err := ByDistance(geo.Coordinate{Lat: 41.3, Lon: 2.1}, "km")
	if err != nil {
		t.Fatalf("ByDistance: %v", err)
	}

	if pos, ok := New(price, dist).DistancePosition(); !ok || pos != 1 {
		t.Errorf("DistancePosition() = %d,%v, want 1,true", pos, ok)
	}
	if _, ok := New(price).DistancePosition(); ok {
		t.Error("no distance clause")
	}
}

func TestByNested(t *testing.T) {
	f, err := filter.New("size", "indexed_metadata.variants.size", []any{"M"}, filter.MustAll, filter.Field)
	if err != nil {
		t.Fatalf("filter.New: %v", err)
	}
	c, err := ByNested("indexed_metadata.variants.price", Asc, "", &f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Mode() != ModeAvg {
		t.Errorf("Mode() = %q", c.Mode())
	}
	if c.NestedPath() != "indexed_metadata.variants" {
		t.Errorf("NestedPath() = %q", c.NestedPath())
	}
	if got, ok := c.Filter(); !ok || got.Name() != "size" {
		t.Errorf("Filter() = %+v,%v", got, ok)
	}
	if _, err := ByNested("price", Asc, "", nil); err == nil {
		t.Error("expected error for field without container")
	}
	if _, err := ByNested("a.b", Asc, "median", nil); err == nil {
		t.Error("expected error for invalid mode")
	}
}
