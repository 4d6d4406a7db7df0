package news

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ejoheza/backend/internal/models"
	"github.com/ejoheza/backend/pkg/database"
)

const columns = `id, title, COALESCE(content,''), COALESCE(author,''), published, created_at, updated_at`

// Repository handles news post persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a news repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scan(row pgx.Row) (*models.NewsPost, error) {
	var p models.NewsPost
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Author, &p.Published, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) query(ctx context.Context, q string, args ...any) ([]models.NewsPost, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.NewsPost{}
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

// Create inserts a post.
func (r *Repository) Create(ctx context.Context, p *models.NewsPost) error {
	const q = `INSERT INTO news_posts (title, content, author, published)
		VALUES ($1, NULLIF($2,''), NULLIF($3,''), $4)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, p.Title, p.Content, p.Author, p.Published).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// Update replaces every editable field of the post with the given id.
func (r *Repository) Update(ctx context.Context, p *models.NewsPost) error {
	const q = `UPDATE news_posts SET title = $2, content = NULLIF($3,''), author = NULLIF($4,''), published = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, p.ID, p.Title, p.Content, p.Author, p.Published).Scan(&p.CreatedAt, &p.UpdatedAt)
	return database.NotFound(err)
}

// Delete removes the post with the given id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM news_posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

// SetPublished sets only the published flag.
func (r *Repository) SetPublished(ctx context.Context, id uuid.UUID, published bool) (*models.NewsPost, error) {
	p, err := scan(r.pool.QueryRow(ctx,
		`UPDATE news_posts SET published = $2, updated_at = NOW() WHERE id = $1 RETURNING `+columns, id, published))
	if err != nil {
		return nil, database.NotFound(err)
	}
	return p, nil
}

// GetByID returns one post regardless of its published flag.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.NewsPost, error) {
	p, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM news_posts WHERE id = $1`, id))
	if err != nil {
		return nil, database.NotFound(err)
	}
	return p, nil
}

// GetPublished returns one post only if it is published.
func (r *Repository) GetPublished(ctx context.Context, id uuid.UUID) (*models.NewsPost, error) {
	p, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM news_posts WHERE id = $1 AND published`, id))
	if err != nil {
		return nil, database.NotFound(err)
	}
	return p, nil
}

// List returns every post, newest first.
func (r *Repository) List(ctx context.Context) ([]models.NewsPost, error) {
	return r.query(ctx, `SELECT `+columns+` FROM news_posts ORDER BY created_at DESC`)
}

// ListPublished returns published posts, newest first. limit <= 0 returns all of them.
func (r *Repository) ListPublished(ctx context.Context, limit int) ([]models.NewsPost, error) {
	if limit > 0 {
		return r.query(ctx, `SELECT `+columns+` FROM news_posts WHERE published ORDER BY created_at DESC LIMIT $1`, limit)
	}
	return r.query(ctx, `SELECT `+columns+` FROM news_posts WHERE published ORDER BY created_at DESC`)
}
