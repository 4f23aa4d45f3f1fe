package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/club-billing/models"
	"github.com/lib/pq"
)

var (
	ErrStaffNotFound      = errors.New("staff user not found")
	ErrStaffEmailConflict = errors.New("staff email conflict")
)

type StaffRepository interface {
	Create(ctx context.Context, user *models.StaffUser) error
	GetByID(ctx context.Context, id int) (*models.StaffUser, error)
	GetByEmail(ctx context.Context, email string) (*models.StaffUser, error)
}

type postgresStaffRepository struct {
	db *sql.DB
}

func NewPostgresStaffRepository(db *sql.DB) StaffRepository {
	return &postgresStaffRepository{db: db}
}

func (r *postgresStaffRepository) Create(ctx context.Context, u *models.StaffUser) error {
	query := `
		INSERT INTO staff_users (club_id, full_name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		u.ClubID, u.FullName, u.Email, u.PasswordHash, u.Role,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "staff_users_email_key" {
				return ErrStaffEmailConflict
			}
		}
		return wrapStoreError(err)
	}
	return nil
}

func (r *postgresStaffRepository) GetByID(ctx context.Context, id int) (*models.StaffUser, error) {
	query := `
		SELECT id, club_id, full_name, email, password_hash, role, created_at
		FROM staff_users
		WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresStaffRepository) GetByEmail(ctx context.Context, email string) (*models.StaffUser, error) {
	query := `
		SELECT id, club_id, full_name, email, password_hash, role, created_at
		FROM staff_users
		WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *postgresStaffRepository) scanOne(row *sql.Row) (*models.StaffUser, error) {
	u := &models.StaffUser{}
	err := row.Scan(&u.ID, &u.ClubID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStaffNotFound
		}
		return nil, wrapStoreError(err)
	}
	return u, nil
}
