package events

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ejoheza/backend/internal/models"
	"github.com/ejoheza/backend/pkg/database"
)

const columns = `id, title, COALESCE(description,''), event_date, COALESCE(location,''), capacity, status, created_at, updated_at`

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an event repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scan(row pgx.Row) (*models.Event, error) {
	var e models.Event
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.EventDate, &e.Location, &e.Capacity,
		&e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func collect(rows pgx.Rows) ([]models.Event, error) {
	defer rows.Close()
	list := []models.Event{}
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

// Create inserts an event.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (title, description, event_date, location, capacity, status)
		VALUES ($1, NULLIF($2,''), $3, NULLIF($4,''), $5, $6)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, e.Title, e.Description, e.EventDate, e.Location, e.Capacity, e.Status).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// Update replaces every editable field of the event with the given id.
func (r *Repository) Update(ctx context.Context, e *models.Event) error {
	const q = `UPDATE events SET title = $2, description = NULLIF($3,''), event_date = $4, location = NULLIF($5,''),
		capacity = $6, status = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, e.ID, e.Title, e.Description, e.EventDate, e.Location, e.Capacity, e.Status).
		Scan(&e.CreatedAt, &e.UpdatedAt)
	return database.NotFound(err)
}

// Delete removes the event with the given id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

// UpdateStatus sets only the status column.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.EventStatus) (*models.Event, error) {
	e, err := scan(r.pool.QueryRow(ctx,
		`UPDATE events SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING `+columns, id, status))
	if err != nil {
		return nil, database.NotFound(err)
	}
	return e, nil
}

// GetByID returns one event.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	e, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM events WHERE id = $1`, id))
	if err != nil {
		return nil, database.NotFound(err)
	}
	return e, nil
}

// List returns every event ordered by date, undated events last.
func (r *Repository) List(ctx context.Context) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM events ORDER BY event_date ASC NULLS LAST, created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ListActive returns active events ordered by date. limit <= 0 returns all of them.
func (r *Repository) ListActive(ctx context.Context, limit int) ([]models.Event, error) {
	q := `SELECT ` + columns + ` FROM events WHERE status = 'active' ORDER BY event_date ASC NULLS LAST`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}
