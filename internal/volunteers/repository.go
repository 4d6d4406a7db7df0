package volunteers

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ejoheza/backend/internal/models"
	"github.com/ejoheza/backend/pkg/database"
)

const columns = `id, user_id, full_name, email, COALESCE(phone,''), date_of_birth, COALESCE(address,''), skills,
	COALESCE(availability,''), COALESCE(motivation,''), COALESCE(experience,''),
	COALESCE(emergency_contact_name,''), COALESCE(emergency_contact_phone,''), status, created_at, updated_at`

// Repository handles volunteer persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a volunteer repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scan(row pgx.Row) (*models.Volunteer, error) {
	var v models.Volunteer
	err := row.Scan(&v.ID, &v.UserID, &v.FullName, &v.Email, &v.Phone, &v.DateOfBirth, &v.Address, &v.Skills,
		&v.Availability, &v.Motivation, &v.Experience, &v.EmergencyContactName, &v.EmergencyContactPhone,
		&v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if v.Skills == nil {
		v.Skills = []string{}
	}
	return &v, nil
}

// Create inserts an application. Status is left to the column default (pending).
func (r *Repository) Create(ctx context.Context, v *models.Volunteer) error {
	const q = `INSERT INTO volunteers (user_id, full_name, email, phone, date_of_birth, address, skills, availability,
		motivation, experience, emergency_contact_name, emergency_contact_phone)
		VALUES ($1, $2, $3, NULLIF($4,''), $5, NULLIF($6,''), $7, NULLIF($8,''), NULLIF($9,''), NULLIF($10,''), NULLIF($11,''), NULLIF($12,''))
		RETURNING id, status, created_at, updated_at`
	skills := v.Skills
	if skills == nil {
		skills = []string{}
	}
	return r.pool.QueryRow(ctx, q, v.UserID, v.FullName, v.Email, v.Phone, v.DateOfBirth, v.Address, skills,
		v.Availability, v.Motivation, v.Experience, v.EmergencyContactName, v.EmergencyContactPhone).
		Scan(&v.ID, &v.Status, &v.CreatedAt, &v.UpdatedAt)
}

// List returns every application, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Volunteer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM volunteers ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.Volunteer{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *v)
	}
	return list, rows.Err()
}

// GetByID returns one application.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Volunteer, error) {
	v, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM volunteers WHERE id = $1`, id))
	if err != nil {
		return nil, database.NotFound(err)
	}
	return v, nil
}

// UpdateStatus changes only the status of an application.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.VolunteerStatus) (*models.Volunteer, error) {
	v, err := scan(r.pool.QueryRow(ctx,
		`UPDATE volunteers SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING `+columns, id, string(status)))
	if err != nil {
		return nil, database.NotFound(err)
	}
	return v, nil
}
