package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/admixflow/admixflow/internal/domain"
	"github.com/admixflow/admixflow/internal/ports"
	"github.com/lib/pq"
)

// PostgresCatalogRepository implements read-only catalog lookup.
type PostgresCatalogRepository struct {
	db *sql.DB
}

func NewPostgresCatalogRepository(db *sql.DB) ports.CatalogRepository {
	return &PostgresCatalogRepository{db: db}
}

func (r *PostgresCatalogRepository) FindMedicine(ctx context.Context, id string) (*domain.Medicine, error) {
	query := `
		SELECT id, name, concentration, presentations, enabled
		FROM medicines
		WHERE id = $1
	`

	var medicine domain.Medicine
	var presentations []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&medicine.ID,
		&medicine.Name,
		&medicine.Concentration,
		&presentations,
		&medicine.Enabled,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFound("medicine", id)
		}
		return nil, fmt.Errorf("find medicine: %w", err)
	}

	if len(presentations) > 0 {
		if err := json.Unmarshal(presentations, &medicine.Presentations); err != nil {
			return nil, fmt.Errorf("unmarshal presentations: %w", err)
		}
	}
	return &medicine, nil
}

func (r *PostgresCatalogRepository) FindLaboratory(ctx context.Context, id string) (*domain.Laboratory, error) {
	query := `SELECT id, name, enabled FROM laboratories WHERE id = $1`

	var lab domain.Laboratory
	err := r.db.QueryRowContext(ctx, query, id).Scan(&lab.ID, &lab.Name, &lab.Enabled)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFound("laboratory", id)
		}
		return nil, fmt.Errorf("find laboratory: %w", err)
	}
	return &lab, nil
}

func (r *PostgresCatalogRepository) FindVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `SELECT id, name, compatible_lines FROM vehicles WHERE id = $1`

	var vehicle domain.Vehicle
	var lines pq.StringArray

	err := r.db.QueryRowContext(ctx, query, id).Scan(&vehicle.ID, &vehicle.Name, &lines)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFound("vehicle", id)
		}
		return nil, fmt.Errorf("find vehicle: %w", err)
	}

	for _, l := range lines {
		vehicle.CompatibleLines = append(vehicle.CompatibleLines, domain.ProductionLine(l))
	}
	return &vehicle, nil
}

func (r *PostgresCatalogRepository) FindContainer(ctx context.Context, id string) (*domain.Container, error) {
	query := `SELECT id, name FROM containers WHERE id = $1`

	var container domain.Container
	err := r.db.QueryRowContext(ctx, query, id).Scan(&container.ID, &container.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFound("container", id)
		}
		return nil, fmt.Errorf("find container: %w", err)
	}
	return &container, nil
}

// FindStability matches the exact four-tuple. No partial fallback.
func (r *PostgresCatalogRepository) FindStability(ctx context.Context, medicineID, laboratoryID, vehicleID, containerID string) (*domain.Stability, error) {
	query := `
		SELECT id, medicine_id, laboratory_id, vehicle_id, container_id, hours
		FROM stabilities
		WHERE medicine_id = $1 AND laboratory_id = $2 AND vehicle_id = $3 AND container_id = $4
	`

	var stability domain.Stability
	err := r.db.QueryRowContext(ctx, query, medicineID, laboratoryID, vehicleID, containerID).Scan(
		&stability.ID,
		&stability.MedicineID,
		&stability.LaboratoryID,
		&stability.VehicleID,
		&stability.ContainerID,
		&stability.Hours,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFound("stability", fmt.Sprintf("%s/%s/%s/%s", medicineID, laboratoryID, vehicleID, containerID))
		}
		return nil, fmt.Errorf("find stability: %w", err)
	}
	return &stability, nil
}
