package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Dosada05/club-billing/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound      = errors.New("player not found")
	ErrPlayerPhoneConflict = errors.New("player phone conflict for this club")
	ErrPlayerInvalidClub   = errors.New("invalid club reference")
)

type ListPlayersFilter struct {
	// ClubID == 0 — выборка по всем клубам (только для супер-роли,
	// проверяется на уровне сервиса).
	ClubID int
	Tier   *models.SkillTier
	Limit  int
	Offset int
}

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, clubID, id int) (*models.Player, error)
	List(ctx context.Context, filter ListPlayersFilter) ([]models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	UpdateMembershipEndDate(ctx context.Context, exec SQLExecutor, clubID, playerID int, endDate time.Time) error
	UpdatePhotoKey(ctx context.Context, clubID, playerID int, photoKey *string) error
	Count(ctx context.Context, clubID int) (int, error)
	CountActiveMemberships(ctx context.Context, clubID int, at time.Time) (int, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (club_id, full_name, phone, tier, membership_end_date, photo_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		p.ClubID, p.FullName, p.Phone, p.Tier, p.MembershipEndDate, p.PhotoKey,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "players_club_id_phone_key" {
					return ErrPlayerPhoneConflict
				}
			case "23503":
				return ErrPlayerInvalidClub
			}
		}
		return wrapStoreError(err)
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, clubID, id int) (*models.Player, error) {
	query := `
		SELECT id, club_id, full_name, phone, tier, membership_end_date, photo_key, created_at
		FROM players
		WHERE id = $1 AND ($2 = 0 OR club_id = $2)`

	p := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id, clubID).Scan(
		&p.ID, &p.ClubID, &p.FullName, &p.Phone, &p.Tier, &p.MembershipEndDate, &p.PhotoKey, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, wrapStoreError(err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context, filter ListPlayersFilter) ([]models.Player, error) {
	query := `
		SELECT id, club_id, full_name, phone, tier, membership_end_date, photo_key, created_at
		FROM players
		WHERE ($1 = 0 OR club_id = $1)
		  AND ($2::text IS NULL OR tier = $2)
		ORDER BY full_name ASC
		LIMIT CASE WHEN $3 > 0 THEN $3 ELSE NULL END OFFSET $4`

	var tier *string
	if filter.Tier != nil {
		t := string(*filter.Tier)
		tier = &t
	}

	rows, err := r.db.QueryContext(ctx, query, filter.ClubID, tier, filter.Limit, filter.Offset)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if scanErr := rows.Scan(
			&p.ID, &p.ClubID, &p.FullName, &p.Phone, &p.Tier, &p.MembershipEndDate, &p.PhotoKey, &p.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, wrapStoreError(err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, p *models.Player) error {
	query := `
		UPDATE players
		SET full_name = $1, phone = $2, tier = $3
		WHERE id = $4 AND club_id = $5`

	result, err := r.db.ExecContext(ctx, query, p.FullName, p.Phone, p.Tier, p.ID, p.ClubID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "players_club_id_phone_key" {
				return ErrPlayerPhoneConflict
			}
		}
		return wrapStoreError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdateMembershipEndDate(ctx context.Context, exec SQLExecutor, clubID, playerID int, endDate time.Time) error {
	if exec == nil {
		exec = r.db
	}
	query := `UPDATE players SET membership_end_date = $1 WHERE id = $2 AND club_id = $3`

	result, err := exec.ExecContext(ctx, query, endDate, playerID, clubID)
	if err != nil {
		return wrapStoreError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdatePhotoKey(ctx context.Context, clubID, playerID int, photoKey *string) error {
	query := `UPDATE players SET photo_key = $1 WHERE id = $2 AND club_id = $3`

	result, err := r.db.ExecContext(ctx, query, photoKey, playerID, clubID)
	if err != nil {
		return wrapStoreError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Count(ctx context.Context, clubID int) (int, error) {
	query := `SELECT COUNT(*) FROM players WHERE ($1 = 0 OR club_id = $1)`
	var count int
	if err := r.db.QueryRowContext(ctx, query, clubID).Scan(&count); err != nil {
		return 0, wrapStoreError(err)
	}
	return count, nil
}

func (r *postgresPlayerRepository) CountActiveMemberships(ctx context.Context, clubID int, at time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM players
		WHERE ($1 = 0 OR club_id = $1) AND membership_end_date >= $2`
	var count int
	if err := r.db.QueryRowContext(ctx, query, clubID, at).Scan(&count); err != nil {
		return 0, wrapStoreError(err)
	}
	return count, nil
}
