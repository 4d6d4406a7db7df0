package donations

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ejoheza/backend/internal/models"
	"github.com/ejoheza/backend/pkg/database"
)

const columns = `id, COALESCE(donor_name,''), email, COALESCE(phone,''), amount, donation_type, COALESCE(purpose,''),
	is_anonymous, status, COALESCE(provider_order_id,''), created_at, updated_at`

// Repository handles donation persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a donation repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scan(row pgx.Row) (*models.Donation, error) {
	var d models.Donation
	if err := row.Scan(&d.ID, &d.DonorName, &d.Email, &d.Phone, &d.Amount, &d.DonationType, &d.Purpose,
		&d.IsAnonymous, &d.Status, &d.ProviderOrderID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a donation with the status set on d (pending for every intake path).
func (r *Repository) Create(ctx context.Context, d *models.Donation) error {
	const q = `INSERT INTO donations (donor_name, email, phone, amount, donation_type, purpose, is_anonymous, status, provider_order_id)
		VALUES (NULLIF($1,''), $2, NULLIF($3,''), $4, COALESCE(NULLIF($5,''), 'one-time'), NULLIF($6,''), $7, $8, NULLIF($9,''))
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, d.DonorName, d.Email, d.Phone, d.Amount, string(d.DonationType), d.Purpose,
		d.IsAnonymous, string(d.Status), d.ProviderOrderID).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

// List returns every donation, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Donation, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM donations ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.Donation{}
	for rows.Next() {
		d, err := scan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *d)
	}
	return list, rows.Err()
}

// GetByID returns one donation.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	d, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM donations WHERE id = $1`, id))
	if err != nil {
		return nil, database.NotFound(err)
	}
	return d, nil
}

// UpdateStatus changes only the status of a donation.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DonationStatus) (*models.Donation, error) {
	d, err := scan(r.pool.QueryRow(ctx,
		`UPDATE donations SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING `+columns, id, string(status)))
	if err != nil {
		return nil, database.NotFound(err)
	}
	return d, nil
}
