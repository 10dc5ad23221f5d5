package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/admixflow/admixflow/internal/domain"
	"github.com/admixflow/admixflow/internal/ports"
)

// PostgresAuditRepository implements the append-only audit log. There is no
// update or delete path.
type PostgresAuditRepository struct {
	db *sql.DB
}

func NewPostgresAuditRepository(db *sql.DB) ports.AuditRepository {
	return &PostgresAuditRepository{db: db}
}

func (r *PostgresAuditRepository) Create(ctx context.Context, record *domain.AuditRecord) error {
	query := `
		INSERT INTO audit_records (id, entity_type, entity_id, action, changes, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var changes []byte
	if record.Changes != nil {
		var err error
		changes, err = json.Marshal(record.Changes)
		if err != nil {
			return fmt.Errorf("marshal audit changes: %w", err)
		}
	}

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		string(record.EntityType),
		record.EntityID,
		string(record.Action),
		changes,
		record.ActorID,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

const auditSelect = `
	SELECT id, entity_type, entity_id, action, changes, actor_id, created_at
	FROM audit_records
`

func (r *PostgresAuditRepository) ListByEntity(ctx context.Context, entityType domain.EntityType, entityID string, limit int) ([]*domain.AuditRecord, error) {
	query := auditSelect + `
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	return r.queryRecords(ctx, query, string(entityType), entityID, limit)
}

func (r *PostgresAuditRepository) ListByActor(ctx context.Context, actorID string, limit int) ([]*domain.AuditRecord, error) {
	query := auditSelect + `
		WHERE actor_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.queryRecords(ctx, query, actorID, limit)
}

func (r *PostgresAuditRepository) ListByEntityType(ctx context.Context, entityType domain.EntityType, limit int) ([]*domain.AuditRecord, error) {
	query := auditSelect + `
		WHERE entity_type = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.queryRecords(ctx, query, string(entityType), limit)
}

func (r *PostgresAuditRepository) List(ctx context.Context, limit, offset int) ([]*domain.AuditRecord, error) {
	query := auditSelect + `
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.queryRecords(ctx, query, limit, offset)
}

func (r *PostgresAuditRepository) DistinctEntityTypes(ctx context.Context) ([]domain.EntityType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT entity_type FROM audit_records ORDER BY entity_type`)
	if err != nil {
		return nil, fmt.Errorf("distinct entity types: %w", err)
	}
	defer rows.Close()

	var types []domain.EntityType
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan entity type: %w", err)
		}
		types = append(types, domain.EntityType(t))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entity types: %w", err)
	}
	return types, nil
}

// DistinctActors resolves actor ids to display names through the users
// table; actors without an account keep their raw id.
func (r *PostgresAuditRepository) DistinctActors(ctx context.Context) ([]domain.ActorRef, error) {
	query := `
		SELECT DISTINCT a.actor_id, COALESCE(u.name, a.actor_id)
		FROM audit_records a
		LEFT JOIN users u ON u.id = a.actor_id
		ORDER BY a.actor_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("distinct actors: %w", err)
	}
	defer rows.Close()

	var actors []domain.ActorRef
	for rows.Next() {
		var ref domain.ActorRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("scan actor: %w", err)
		}
		actors = append(actors, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actors: %w", err)
	}
	return actors, nil
}

func (r *PostgresAuditRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]*domain.AuditRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	var records []*domain.AuditRecord
	for rows.Next() {
		var record domain.AuditRecord
		var changes []byte

		err := rows.Scan(
			&record.ID,
			&record.EntityType,
			&record.EntityID,
			&record.Action,
			&changes,
			&record.ActorID,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}

		if len(changes) > 0 {
			if err := json.Unmarshal(changes, &record.Changes); err != nil {
				return nil, fmt.Errorf("unmarshal audit changes: %w", err)
			}
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}
