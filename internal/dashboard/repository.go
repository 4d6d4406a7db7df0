package dashboard

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads dashboard aggregates.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a dashboard repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Counts returns the per-table totals and the donation sum.
func (r *Repository) Counts(ctx context.Context) (*Counts, error) {
	const q = `SELECT
		(SELECT COUNT(*) FROM volunteers),
		(SELECT COUNT(*) FROM volunteers WHERE status = 'pending'),
		(SELECT COUNT(*) FROM donations),
		(SELECT COALESCE(SUM(amount), 0)::float8 FROM donations),
		(SELECT COUNT(*) FROM events),
		(SELECT COUNT(*) FROM news_posts)`
	var c Counts
	if err := r.pool.QueryRow(ctx, q).Scan(&c.Volunteers, &c.PendingVolunteers, &c.Donations, &c.TotalDonated, &c.Events, &c.NewsPosts); err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}
	return &c, nil
}

// RecentVolunteers returns the newest applications.
func (r *Repository) RecentVolunteers(ctx context.Context, limit int) ([]RecentVolunteer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, full_name, email, status, created_at FROM volunteers ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent volunteers: %w", err)
	}
	defer rows.Close()
	list := []RecentVolunteer{}
	for rows.Next() {
		var v RecentVolunteer
		if err := rows.Scan(&v.ID, &v.FullName, &v.Email, &v.Status, &v.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}
