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
	ErrSessionNotFound = errors.New("session not found")
	// Нарушение частичного уникального индекса
	// sessions_one_playing_per_player: у игрока уже есть открытая сессия.
	ErrSessionPlayingConflict = errors.New("player already has a playing session")
	ErrSessionInvalidPlayer   = errors.New("invalid player reference")
	ErrSessionNotPlaying      = errors.New("session is not in playing state")
)

type ListSessionsFilter struct {
	ClubID   int
	PlayerID *int
	Status   *models.SessionStatus
	From     *time.Time
	To       *time.Time
	// ActiveFrom отбирает сессии, у которых чек-ин ИЛИ чек-аут не раньше
	// заданного момента. Отчёты считают выручку по времени чек-аута,
	// поэтому граница только по чек-ину теряла бы длинные сессии.
	ActiveFrom *time.Time
	Limit      int
	Offset     int
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, clubID, id int) (*models.Session, error)
	// List всегда возвращает сессии вместе с позициями, чтобы любой
	// потребитель мог независимо пересчитать текущую сумму.
	List(ctx context.Context, filter ListSessionsFilter) ([]models.Session, error)
	// GetForUpdate читает строку сессии с блокировкой FOR UPDATE внутри
	// транзакции чек-аута. Позиции не загружает.
	GetForUpdate(ctx context.Context, exec SQLExecutor, clubID, id int) (*models.Session, error)
	// Finish закрывает сессию атомарно: guard WHERE status='playing'
	// превращает повторный чек-аут в ноль затронутых строк.
	Finish(ctx context.Context, exec SQLExecutor, clubID, id int, total int64, checkOutTime time.Time) error
	CountByStatus(ctx context.Context, clubID int, status models.SessionStatus) (int, error)
}

type postgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) Create(ctx context.Context, s *models.Session) error {
	query := `
		INSERT INTO sessions (club_id, player_id, check_in_time, status, total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		s.ClubID, s.PlayerID, s.CheckInTime, s.Status, s.Total,
	).Scan(&s.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "sessions_one_playing_per_player" {
					return ErrSessionPlayingConflict
				}
			case "23503":
				return ErrSessionInvalidPlayer
			}
		}
		return wrapStoreError(err)
	}
	return nil
}

func (r *postgresSessionRepository) GetByID(ctx context.Context, clubID, id int) (*models.Session, error) {
	query := `
		SELECT id, club_id, player_id, check_in_time, check_out_time, status, total
		FROM sessions
		WHERE id = $1 AND ($2 = 0 OR club_id = $2)`

	s := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, id, clubID).Scan(
		&s.ID, &s.ClubID, &s.PlayerID, &s.CheckInTime, &s.CheckOutTime, &s.Status, &s.Total,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, wrapStoreError(err)
	}

	items, err := r.listLineItems(ctx, []int{s.ID})
	if err != nil {
		return nil, err
	}
	s.LineItems = items[s.ID]
	if s.LineItems == nil {
		s.LineItems = []models.SessionLineItem{}
	}
	return s, nil
}

func (r *postgresSessionRepository) List(ctx context.Context, filter ListSessionsFilter) ([]models.Session, error) {
	query := `
		SELECT id, club_id, player_id, check_in_time, check_out_time, status, total
		FROM sessions
		WHERE ($1 = 0 OR club_id = $1)
		  AND ($2::int IS NULL OR player_id = $2)
		  AND ($3::text IS NULL OR status = $3)
		  AND ($4::timestamptz IS NULL OR check_in_time >= $4)
		  AND ($5::timestamptz IS NULL OR check_in_time < $5)
		  AND ($6::timestamptz IS NULL OR check_in_time >= $6 OR check_out_time >= $6)
		ORDER BY check_in_time DESC
		LIMIT CASE WHEN $7 > 0 THEN $7 ELSE NULL END OFFSET $8`

	var status *string
	if filter.Status != nil {
		st := string(*filter.Status)
		status = &st
	}

	rows, err := r.db.QueryContext(ctx, query,
		filter.ClubID, filter.PlayerID, status, filter.From, filter.To, filter.ActiveFrom, filter.Limit, filter.Offset,
	)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	ids := make([]int, 0)
	for rows.Next() {
		var s models.Session
		if scanErr := rows.Scan(
			&s.ID, &s.ClubID, &s.PlayerID, &s.CheckInTime, &s.CheckOutTime, &s.Status, &s.Total,
		); scanErr != nil {
			return nil, scanErr
		}
		sessions = append(sessions, s)
		ids = append(ids, s.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, wrapStoreError(err)
	}
	if len(sessions) == 0 {
		return sessions, nil
	}

	itemsBySession, err := r.listLineItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		sessions[i].LineItems = itemsBySession[sessions[i].ID]
		if sessions[i].LineItems == nil {
			sessions[i].LineItems = []models.SessionLineItem{}
		}
	}
	return sessions, nil
}

func (r *postgresSessionRepository) listLineItems(ctx context.Context, sessionIDs []int) (map[int][]models.SessionLineItem, error) {
	query := `
		SELECT id, club_id, session_id, service_id, service_name, quantity, unit_price, total, created_at
		FROM session_line_items
		WHERE session_id = ANY($1)
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(sessionIDs))
	if err != nil {
		return nil, wrapStoreError(err)
	}
	defer rows.Close()

	items := make(map[int][]models.SessionLineItem, len(sessionIDs))
	for rows.Next() {
		var item models.SessionLineItem
		if scanErr := rows.Scan(
			&item.ID, &item.ClubID, &item.SessionID, &item.ServiceID, &item.ServiceName,
			&item.Quantity, &item.UnitPrice, &item.Total, &item.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		items[item.SessionID] = append(items[item.SessionID], item)
	}
	if err = rows.Err(); err != nil {
		return nil, wrapStoreError(err)
	}
	return items, nil
}

func (r *postgresSessionRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, clubID, id int) (*models.Session, error) {
	if exec == nil {
		exec = r.db
	}
	query := `
		SELECT id, club_id, player_id, check_in_time, check_out_time, status, total
		FROM sessions
		WHERE id = $1 AND ($2 = 0 OR club_id = $2)
		FOR UPDATE`

	s := &models.Session{}
	err := exec.QueryRowContext(ctx, query, id, clubID).Scan(
		&s.ID, &s.ClubID, &s.PlayerID, &s.CheckInTime, &s.CheckOutTime, &s.Status, &s.Total,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, wrapStoreError(err)
	}
	return s, nil
}

func (r *postgresSessionRepository) Finish(ctx context.Context, exec SQLExecutor, clubID, id int, total int64, checkOutTime time.Time) error {
	if exec == nil {
		exec = r.db
	}
	query := `
		UPDATE sessions
		SET status = $1, check_out_time = $2, total = $3
		WHERE id = $4 AND club_id = $5 AND status = $6`

	result, err := exec.ExecContext(ctx, query,
		models.SessionStatusFinished, checkOutTime, total, id, clubID, models.SessionStatusPlaying,
	)
	if err != nil {
		return wrapStoreError(err)
	}
	// Ноль строк: либо сессии нет, либо она уже finished. Различает сервис.
	return checkAffectedRows(result, ErrSessionNotPlaying)
}

func (r *postgresSessionRepository) CountByStatus(ctx context.Context, clubID int, status models.SessionStatus) (int, error) {
	query := `SELECT COUNT(*) FROM sessions WHERE ($1 = 0 OR club_id = $1) AND status = $2`
	var count int
	if err := r.db.QueryRowContext(ctx, query, clubID, status).Scan(&count); err != nil {
		return 0, wrapStoreError(err)
	}
	return count, nil
}
