package domain

// ProductionLine distinguishes the two compounding areas.
type ProductionLine string

const (
	LineOnco    ProductionLine = "ONCO"
	LineSterile ProductionLine = "STERILE"
)

// ValidProductionLine reports whether line is a known production line.
func ValidProductionLine(line ProductionLine) bool {
	return line == LineOnco || line == LineSterile
}

// Presentation is one commercial form of a medicine (e.g. a 10ml vial sold
// in boxes of 5).
type Presentation struct {
	Volume float64 `json:"volume"`
	Count  int     `json:"count"`
}

// Medicine is a catalog drug record. Concentration is the raw label string,
// parsed on demand into a Concentration value object.
type Medicine struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Concentration string         `json:"concentration"`
	Presentations []Presentation `json:"presentations"`
	Enabled       bool           `json:"enabled"`
}

// Laboratory is a drug manufacturer record.
type Laboratory struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// Vehicle is a dilution fluid with the production lines it may be used on.
type Vehicle struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	CompatibleLines []ProductionLine `json:"compatible_lines"`
}

// CompatibleWith reports whether the vehicle may be used on line.
func (v Vehicle) CompatibleWith(line ProductionLine) bool {
	for _, l := range v.CompatibleLines {
		if l == line {
			return true
		}
	}
	return false
}

// Container is a final packaging record.
type Container struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Stability records the legal expiry window for an exact
// (medicine, laboratory, vehicle, container) tuple. Partial matches are
// never substituted.
type Stability struct {
	ID           string `json:"id"`
	MedicineID   string `json:"medicine_id"`
	LaboratoryID string `json:"laboratory_id"`
	VehicleID    string `json:"vehicle_id"`
	ContainerID  string `json:"container_id"`
	Hours        int    `json:"hours"`
}
