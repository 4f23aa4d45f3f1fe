package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/club-billing/models"
)

var ErrClubNotFound = errors.New("club not found")

type ClubRepository interface {
	GetByID(ctx context.Context, id int) (*models.Club, error)
	List(ctx context.Context) ([]models.Club, error)
	UpdateLogoKey(ctx context.Context, clubID int, logoKey *string) error
}

type postgresClubRepository struct {
	db *sql.DB
}

func NewPostgresClubRepository(db *sql.DB) ClubRepository {
	return &postgresClubRepository{db: db}
}

func (r *postgresClubRepository) GetByID(ctx context.Context, id int) (*models.Club, error) {
	query := `SELECT id, name, logo_key, created_at FROM clubs WHERE id = $1`

	c := &models.Club{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.LogoKey, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, wrapStoreError(err)
	}
	return c, nil
}

func (r *postgresClubRepository) List(ctx context.Context) ([]models.Club, error) {
	query := `SELECT id, name, logo_key, created_at FROM clubs ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	defer rows.Close()

	clubs := make([]models.Club, 0)
	for rows.Next() {
		var c models.Club
		if scanErr := rows.Scan(&c.ID, &c.Name, &c.LogoKey, &c.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		clubs = append(clubs, c)
	}
	if err = rows.Err(); err != nil {
		return nil, wrapStoreError(err)
	}
	return clubs, nil
}

func (r *postgresClubRepository) UpdateLogoKey(ctx context.Context, clubID int, logoKey *string) error {
	query := `UPDATE clubs SET logo_key = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, logoKey, clubID)
	if err != nil {
		return wrapStoreError(err)
	}
	return checkAffectedRows(result, ErrClubNotFound)
}
