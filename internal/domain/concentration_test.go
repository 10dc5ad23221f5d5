package domain

import "testing"

func TestParseConcentration(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantValue string
		wantUnit  string
		wantErr   bool
	}{
		{"plain integer", "50mg/ml", "50", "mg", false},
		{"decimal value", "0.5mg/ml", "0.5", "mg", false},
		{"units per ml", "5000UI/ml", "5000", "ui", false},
		{"micrograms", "100mcg/ml", "100", "mcg", false},
		{"spaces tolerated", " 50 mg / ml ", "50", "mg", false},
		{"uppercase ml", "50mg/ML", "50", "mg", false},
		{"zero value rejected", "0mg/ml", "", "", true},
		{"missing denominator", "50mg", "", "", true},
		{"wrong denominator", "50mg/l", "", "", true},
		{"no unit", "50/ml", "", "", true},
		{"negative value", "-50mg/ml", "", "", true},
		{"empty string", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConcentration(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseConcentration(%q) expected error, got %+v", tt.raw, got)
				}
				if !IsKind(err, KindCalculationError) {
					t.Errorf("ParseConcentration(%q) error kind = %s, want %s", tt.raw, KindOf(err), KindCalculationError)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseConcentration(%q) unexpected error: %v", tt.raw, err)
			}
			if got.Value.String() != tt.wantValue {
				t.Errorf("value = %s, want %s", got.Value.String(), tt.wantValue)
			}
			if got.Unit != tt.wantUnit {
				t.Errorf("unit = %s, want %s", got.Unit, tt.wantUnit)
			}
		})
	}
}

func TestMatchesUnit(t *testing.T) {
	c, err := ParseConcentration("50mg/ml")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		unit string
		want bool
	}{
		{"mg", true},
		{"MG", true},
		{" mg ", true},
		{"mcg", false},
		{"ui", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := c.MatchesUnit(tt.unit); got != tt.want {
			t.Errorf("MatchesUnit(%q) = %v, want %v", tt.unit, got, tt.want)
		}
	}
}
