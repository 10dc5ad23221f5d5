package usecase

import (
	"context"
	"fmt"

	"github.com/admixflow/admixflow/internal/domain"
	"github.com/admixflow/admixflow/internal/ports"
)

// CatalogCalculationInput identifies the catalog records and the prescribed
// dose a calculation starts from.
type CatalogCalculationInput struct {
	MedicineID    string  `json:"medicine_id"`
	LaboratoryID  string  `json:"laboratory_id"`
	VehicleID     string  `json:"vehicle_id"`
	ContainerID   string  `json:"container_id"`
	Dose          float64 `json:"dose"`
	DoseUnit      string  `json:"dose_unit"`
	VehicleVolume float64 `json:"vehicle_volume"`
}

// CalculationUseCase is the thin wrapper that resolves catalog data into the
// scalar inputs of the pure calculation engine.
type CalculationUseCase struct {
	catalog ports.CatalogRepository
	clock   ports.Clock
}

func NewCalculationUseCase(catalog ports.CatalogRepository, clock ports.Clock) *CalculationUseCase {
	return &CalculationUseCase{catalog: catalog, clock: clock}
}

// CalculateFromCatalog resolves the medicine's concentration and first
// listed presentation plus the stability window for the exact tuple, then
// delegates to the pure engine.
func (uc *CalculationUseCase) CalculateFromCatalog(ctx context.Context, in CatalogCalculationInput) (*domain.CalculationResult, error) {
	medicine, err := uc.catalog.FindMedicine(ctx, in.MedicineID)
	if err != nil {
		return nil, fmt.Errorf("resolve medicine: %w", err)
	}
	if len(medicine.Presentations) == 0 {
		return nil, domain.NewCalculationError("medicine %s has no presentations", medicine.Name)
	}

	stability, err := uc.catalog.FindStability(ctx, in.MedicineID, in.LaboratoryID, in.VehicleID, in.ContainerID)
	if err != nil {
		return nil, fmt.Errorf("resolve stability: %w", err)
	}

	presentation := medicine.Presentations[0]
	result, err := domain.Calculate(domain.CalculationInput{
		Dose:               in.Dose,
		DoseUnit:           in.DoseUnit,
		Concentration:      medicine.Concentration,
		VehicleVolume:      in.VehicleVolume,
		PresentationVolume: presentation.Volume,
		PresentationCount:  presentation.Count,
		StabilityHours:     stability.Hours,
		Now:                uc.clock.Now(),
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
