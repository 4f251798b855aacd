package ranges

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in           string
		from, to     string
		hasFrom      bool
		hasTo        bool
		includeUpper bool
	}{
		{"10..20", "10", "20", true, true, false},
		{"10..20]", "10", "20", true, true, true},
		{"..20", "", "20", false, true, false},
		{"10..", "10", "", true, false, false},
		{"..", "", "", false, false, false},
		{" 5 .. 7 ]", "5", "7", true, true, true},
		{"2020-01-01..2020-12-31", "2020-01-01", "2020-12-31", true, true, false},
		{"42", "42", "", true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r := Parse(tt.in)
			from, hasFrom := r.From()
			to, hasTo := r.To()
			if from != tt.from || hasFrom != tt.hasFrom {
				t.Errorf("From() = %q,%v, want %q,%v", from, hasFrom, tt.from, tt.hasFrom)
			}
			if to != tt.to || hasTo != tt.hasTo {
				t.Errorf("To() = %q,%v, want %q,%v", to, hasTo, tt.to, tt.hasTo)
			}
			if r.IncludesUpper() != tt.includeUpper {
				t.Errorf("IncludesUpper() = %v, want %v", r.IncludesUpper(), tt.includeUpper)
			}
		})
	}
}

func TestParse_Unconstrained(t *testing.T) {
	if !Parse("..").IsUnconstrained() {
		t.Error("'..' should be unconstrained")
	}
	if !Parse("").IsUnconstrained() {
		t.Error("empty string should be unconstrained")
	}
	if Parse("1..").IsUnconstrained() {
		t.Error("'1..' has a lower bound")
	}
}

func TestRange_Values(t *testing.T) {
	r := Parse("500..1501]")
	if r.FromValue() != 500.0 {
		t.Errorf("FromValue() = %v", r.FromValue())
	}
	if r.ToValue() != 1501.0 {
		t.Errorf("ToValue() = %v", r.ToValue())
	}

	d := Parse("now-1d..")
	if d.FromValue() != "now-1d" {
		t.Errorf("FromValue() = %v", d.FromValue())
	}
	if d.ToValue() != nil {
		t.Errorf("ToValue() = %v, want nil", d.ToValue())
	}
}

func TestRange_String(t *testing.T) {
	for _, in := range []string{"1..2", "1..2]", "..2", "1..", ".."} {
		if got := Parse(in).String(); got != in {
			t.Errorf("Parse(%q).String() = %q", in, got)
		}
	}
}

func TestBoundaries(t *testing.T) {
	got := Boundaries(0, 1000, 2000, 3000)
	want := []string{"0..1000", "1000..2000", "2000..3000"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Boundaries = %v, want %v", got, want)
	}
	if Boundaries(1) != nil {
		t.Error("single point should yield no ranges")
	}
	if got := Boundaries(0.5, 1.25); got[0] != "0.5..1.25" {
		t.Errorf("Boundaries(0.5, 1.25) = %v", got)
	}
}
