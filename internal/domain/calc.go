package domain

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/shopspring/decimal"
)

// CalculationInput carries the scalars a dose-to-volume calculation needs.
// Transient; never persisted on its own.
type CalculationInput struct {
	Dose               float64
	DoseUnit           string
	Concentration      string
	VehicleVolume      float64
	PresentationVolume float64
	PresentationCount  int
	StabilityHours     int
	Now                time.Time
}

// CalculationResult carries the derived production quantities.
type CalculationResult struct {
	ExtractionVolume float64   `json:"extraction_volume"`
	FinalVolume      float64   `json:"final_volume"`
	Supplies         int       `json:"supplies"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// round2 rounds to 2 decimal places, half-up. Rounding is applied exactly
// once per derived quantity, never compounded across steps.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// VolumeToExtract converts a prescribed dose into millilitres to draw from
// the supply. The dose unit must match the concentration unit exactly; units
// are never converted.
func VolumeToExtract(dose float64, doseUnit, concentration string) (float64, error) {
	conc, err := ParseConcentration(concentration)
	if err != nil {
		return 0, err
	}
	if !conc.MatchesUnit(doseUnit) {
		return 0, NewCalculationError("dose unit %q does not match concentration unit %q", doseUnit, conc.Unit)
	}
	if dose <= 0 {
		return 0, NewCalculationError("dose must be positive, got %v", dose)
	}

	v := round2(decimal.NewFromFloat(dose).Div(conc.Value))
	return v.InexactFloat64(), nil
}

// SuppliesNeeded returns how many supply units an extraction consumes. A
// partial unit still consumes a full one.
func SuppliesNeeded(volumeToExtract, presentationVolume float64, presentationCount int) (int, error) {
	if presentationVolume <= 0 {
		return 0, NewCalculationError("presentation volume must be positive, got %v", presentationVolume)
	}
	if presentationCount <= 0 {
		return 0, NewCalculationError("presentation count must be positive, got %d", presentationCount)
	}

	n := decimal.NewFromFloat(volumeToExtract).
		Div(decimal.NewFromFloat(presentationVolume)).
		Mul(decimal.NewFromInt(int64(presentationCount))).
		Ceil()
	return int(n.IntPart()), nil
}

// FinalVolume is the total admixture volume: extraction plus vehicle.
func FinalVolume(volumeToExtract, vehicleVolume float64) float64 {
	sum := decimal.NewFromFloat(volumeToExtract).Add(decimal.NewFromFloat(vehicleVolume))
	return round2(sum).InexactFloat64()
}

// ExpiryAt derives the admixture expiry from the stability window.
func ExpiryAt(now time.Time, stabilityHours int) (time.Time, error) {
	if stabilityHours <= 0 {
		return time.Time{}, NewCalculationError("stability hours must be positive, got %d", stabilityHours)
	}
	return now.Add(time.Duration(stabilityHours) * time.Hour), nil
}

// NewLotCode generates a locally-unique lot token from the clock plus a
// random suffix. Uniqueness is probabilistic; callers treat a collision as a
// low-probability retry condition.
func NewLotCode(now time.Time) string {
	suffix := make([]byte, 2)
	if _, err := rand.Read(suffix); err != nil {
		// crypto/rand never fails on supported platforms; fall back to the
		// clock's sub-second bits so the code still varies.
		return "L" + now.Format("0601021504") + "-" + now.Format(".000")[1:]
	}
	return "L" + now.Format("0601021504") + "-" + hex.EncodeToString(suffix)
}

// Calculate orchestrates the pure steps into a CalculationResult. The dose
// gate runs before any sub-calculation is attempted.
func Calculate(in CalculationInput) (CalculationResult, error) {
	if in.Dose <= 0 {
		return CalculationResult{}, NewCalculationError("dose must be positive, got %v", in.Dose)
	}

	extraction, err := VolumeToExtract(in.Dose, in.DoseUnit, in.Concentration)
	if err != nil {
		return CalculationResult{}, err
	}

	supplies, err := SuppliesNeeded(extraction, in.PresentationVolume, in.PresentationCount)
	if err != nil {
		return CalculationResult{}, err
	}

	expiresAt, err := ExpiryAt(in.Now, in.StabilityHours)
	if err != nil {
		return CalculationResult{}, err
	}

	return CalculationResult{
		ExtractionVolume: extraction,
		FinalVolume:      FinalVolume(extraction, in.VehicleVolume),
		Supplies:         supplies,
		ExpiresAt:        expiresAt,
	}, nil
}
