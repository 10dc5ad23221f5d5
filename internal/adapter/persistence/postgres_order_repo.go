package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/admixflow/admixflow/internal/domain"
	"github.com/admixflow/admixflow/internal/ports"
)

// PostgresOrderRepository implements OrderRepository using PostgreSQL. Mixes
// and the stage maps are stored as JSONB on the order row so the
// state/actor/timestamp update is a single-row atomic write.
type PostgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(db *sql.DB) ports.OrderRepository {
	return &PostgresOrderRepository{db: db}
}

func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.ProductionOrder) error {
	query := `
		INSERT INTO production_orders (id, code, production_line, state, mixes, stage_actors, stage_timestamps, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	mixes, err := json.Marshal(order.Mixes)
	if err != nil {
		return fmt.Errorf("marshal mixes: %w", err)
	}
	actors, err := json.Marshal(order.StageActors)
	if err != nil {
		return fmt.Errorf("marshal stage actors: %w", err)
	}
	stamps, err := json.Marshal(order.StageTimestamps)
	if err != nil {
		return fmt.Errorf("marshal stage timestamps: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		order.ID,
		order.Code,
		string(order.ProductionLine),
		string(order.State),
		mixes,
		actors,
		stamps,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *PostgresOrderRepository) FindByID(ctx context.Context, id string) (*domain.ProductionOrder, error) {
	query := `
		SELECT id, code, production_line, state, mixes, stage_actors, stage_timestamps, created_at, updated_at
		FROM production_orders
		WHERE id = $1
	`
	return r.scanOrder(r.db.QueryRowContext(ctx, query, id), id)
}

func (r *PostgresOrderRepository) scanOrder(row *sql.Row, id string) (*domain.ProductionOrder, error) {
	var order domain.ProductionOrder
	var mixes, actors, stamps []byte

	err := row.Scan(
		&order.ID,
		&order.Code,
		&order.ProductionLine,
		&order.State,
		&mixes,
		&actors,
		&stamps,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFound("order", id)
		}
		return nil, fmt.Errorf("find order: %w", err)
	}

	if err := unmarshalOrderDocs(&order, mixes, actors, stamps); err != nil {
		return nil, err
	}
	return &order, nil
}

func unmarshalOrderDocs(order *domain.ProductionOrder, mixes, actors, stamps []byte) error {
	if len(mixes) > 0 {
		if err := json.Unmarshal(mixes, &order.Mixes); err != nil {
			return fmt.Errorf("unmarshal mixes: %w", err)
		}
	}
	order.StageActors = map[domain.OrderState]string{}
	if len(actors) > 0 {
		if err := json.Unmarshal(actors, &order.StageActors); err != nil {
			return fmt.Errorf("unmarshal stage actors: %w", err)
		}
	}
	order.StageTimestamps = map[domain.OrderState]time.Time{}
	if len(stamps) > 0 {
		if err := json.Unmarshal(stamps, &order.StageTimestamps); err != nil {
			return fmt.Errorf("unmarshal stage timestamps: %w", err)
		}
	}
	return nil
}

func (r *PostgresOrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.ProductionOrder, error) {
	query := `
		SELECT id, code, production_line, state, mixes, stage_actors, stage_timestamps, created_at, updated_at
		FROM production_orders
		WHERE 1=1
	`

	where, args := buildOrderWhere(filter)
	query += where
	query += " ORDER BY created_at DESC"

	argIndex := len(args) + 1
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.ProductionOrder
	for rows.Next() {
		var order domain.ProductionOrder
		var mixes, actors, stamps []byte

		err := rows.Scan(
			&order.ID,
			&order.Code,
			&order.ProductionLine,
			&order.State,
			&mixes,
			&actors,
			&stamps,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if err := unmarshalOrderDocs(&order, mixes, actors, stamps); err != nil {
			return nil, err
		}
		orders = append(orders, &order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

func (r *PostgresOrderRepository) Count(ctx context.Context, filter domain.OrderFilter) (int, error) {
	query := `SELECT COUNT(*) FROM production_orders WHERE 1=1`
	where, args := buildOrderWhere(filter)
	query += where

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return count, nil
}

// UpdateState is the compare-and-swap: the row updates only when the stored
// state still equals expected. State, stage actor and stage timestamp land
// in one statement, so a losing caller changes nothing.
func (r *PostgresOrderRepository) UpdateState(ctx context.Context, id string, expected, next domain.OrderState, actorID string, at time.Time) error {
	query := `
		UPDATE production_orders
		SET state = $3,
			stage_actors = stage_actors || jsonb_build_object($3::text, $4::text),
			stage_timestamps = stage_timestamps || jsonb_build_object($3::text, to_jsonb($5::timestamptz)),
			updated_at = $5
		WHERE id = $1 AND state = $2
	`

	result, err := r.db.ExecContext(ctx, query, id, string(expected), string(next), actorID, at)
	if err != nil {
		return fmt.Errorf("update order state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order state rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Zero rows: either the order is gone or another caller won the race.
	var current string
	err = r.db.QueryRowContext(ctx, `SELECT state FROM production_orders WHERE id = $1`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return domain.NewNotFound("order", id)
	}
	if err != nil {
		return fmt.Errorf("read order state after lost update: %w", err)
	}
	return domain.NewLostTransition(next)
}

func buildOrderWhere(filter domain.OrderFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.Line != nil {
		conditions = append(conditions, fmt.Sprintf("production_line = $%d", argIndex))
		args = append(args, string(*filter.Line))
		argIndex++
	}
	if filter.State != nil {
		conditions = append(conditions, fmt.Sprintf("state = $%d", argIndex))
		args = append(args, string(*filter.State))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " AND " + strings.Join(conditions, " AND "), args
}
