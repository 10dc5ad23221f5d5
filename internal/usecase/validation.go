package usecase

import (
	"context"
	"fmt"

	"github.com/admixflow/admixflow/internal/domain"
	"github.com/admixflow/admixflow/internal/ports"
)

// ValidationInput is the tuple a production run must be legal for.
type ValidationInput struct {
	MedicineID   string                `json:"medicine_id"`
	LaboratoryID string                `json:"laboratory_id"`
	VehicleID    string                `json:"vehicle_id"`
	ContainerID  string                `json:"container_id"`
	Line         domain.ProductionLine `json:"line"`
}

// ValidationUseCase decides whether a (drug, lab, vehicle, container, line)
// tuple is legal to produce. Read-only against the catalog; a failed check
// is a violation on the result, not an error. Errors are reserved for
// catalog access failures.
type ValidationUseCase struct {
	catalog ports.CatalogRepository
}

func NewValidationUseCase(catalog ports.CatalogRepository) *ValidationUseCase {
	return &ValidationUseCase{catalog: catalog}
}

// ValidateMedicine checks existence and the enabled flag.
func (uc *ValidationUseCase) ValidateMedicine(ctx context.Context, id string) (*domain.ValidationResult, error) {
	result := domain.OKResult()

	medicine, err := uc.catalog.FindMedicine(ctx, id)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			result.Fail(fmt.Sprintf("medicine %s not found", id))
			return result, nil
		}
		return nil, fmt.Errorf("validate medicine: %w", err)
	}

	if !medicine.Enabled {
		result.Fail(fmt.Sprintf("medicine %s is not enabled", medicine.Name))
	}
	return result, nil
}

// ValidateLaboratory checks existence and the enabled flag.
func (uc *ValidationUseCase) ValidateLaboratory(ctx context.Context, id string) (*domain.ValidationResult, error) {
	result := domain.OKResult()

	lab, err := uc.catalog.FindLaboratory(ctx, id)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			result.Fail(fmt.Sprintf("laboratory %s not found", id))
			return result, nil
		}
		return nil, fmt.Errorf("validate laboratory: %w", err)
	}

	if !lab.Enabled {
		result.Fail(fmt.Sprintf("laboratory %s is not enabled", lab.Name))
	}
	return result, nil
}

// ValidateVehicle checks existence and compatibility with the production
// line.
func (uc *ValidationUseCase) ValidateVehicle(ctx context.Context, id string, line domain.ProductionLine) (*domain.ValidationResult, error) {
	result := domain.OKResult()

	vehicle, err := uc.catalog.FindVehicle(ctx, id)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			result.Fail(fmt.Sprintf("vehicle %s not found", id))
			return result, nil
		}
		return nil, fmt.Errorf("validate vehicle: %w", err)
	}

	if !vehicle.CompatibleWith(line) {
		result.Fail(fmt.Sprintf("vehicle %s is not compatible with line %s", vehicle.Name, line))
	}
	return result, nil
}

// ValidateContainer checks existence only.
func (uc *ValidationUseCase) ValidateContainer(ctx context.Context, id string) (*domain.ValidationResult, error) {
	result := domain.OKResult()

	if _, err := uc.catalog.FindContainer(ctx, id); err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			result.Fail(fmt.Sprintf("container %s not found", id))
			return result, nil
		}
		return nil, fmt.Errorf("validate container: %w", err)
	}
	return result, nil
}

// ValidateStability requires a stability record for the exact four-tuple.
func (uc *ValidationUseCase) ValidateStability(ctx context.Context, medicineID, laboratoryID, vehicleID, containerID string) (*domain.ValidationResult, error) {
	result := domain.OKResult()

	_, err := uc.catalog.FindStability(ctx, medicineID, laboratoryID, vehicleID, containerID)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			result.Fail(fmt.Sprintf("no stability record for medicine %s, laboratory %s, vehicle %s, container %s",
				medicineID, laboratoryID, vehicleID, containerID))
			return result, nil
		}
		return nil, fmt.Errorf("validate stability: %w", err)
	}
	return result, nil
}

// ValidateAll runs all five checks unconditionally and collects every
// violation; it never short-circuits on the first failure.
func (uc *ValidationUseCase) ValidateAll(ctx context.Context, in ValidationInput) (*domain.ValidationResult, error) {
	aggregate := domain.OKResult()

	checks := []func() (*domain.ValidationResult, error){
		func() (*domain.ValidationResult, error) { return uc.ValidateMedicine(ctx, in.MedicineID) },
		func() (*domain.ValidationResult, error) { return uc.ValidateLaboratory(ctx, in.LaboratoryID) },
		func() (*domain.ValidationResult, error) { return uc.ValidateVehicle(ctx, in.VehicleID, in.Line) },
		func() (*domain.ValidationResult, error) { return uc.ValidateContainer(ctx, in.ContainerID) },
		func() (*domain.ValidationResult, error) {
			return uc.ValidateStability(ctx, in.MedicineID, in.LaboratoryID, in.VehicleID, in.ContainerID)
		},
	}

	for _, check := range checks {
		result, err := check()
		if err != nil {
			return nil, err
		}
		aggregate.Merge(result)
	}

	return aggregate, nil
}
