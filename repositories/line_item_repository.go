package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/club-billing/models"
	"github.com/lib/pq"
)

var (
	ErrLineItemNotFound       = errors.New("session line item not found")
	ErrLineItemInvalidSession = errors.New("invalid session reference")
	ErrLineItemInvalidService = errors.New("invalid service reference")
)

type LineItemRepository interface {
	Create(ctx context.Context, item *models.SessionLineItem) error
	GetByID(ctx context.Context, clubID, id int) (*models.SessionLineItem, error)
	ListBySession(ctx context.Context, clubID, sessionID int) ([]models.SessionLineItem, error)
	UpdateQuantity(ctx context.Context, clubID, id, quantity int, total int64) error
	Delete(ctx context.Context, clubID, id int) error
	// SumBySession — серверный пересчёт итога при чек-ауте; выполняется
	// внутри транзакции закрытия, поэтому принимает SQLExecutor.
	SumBySession(ctx context.Context, exec SQLExecutor, clubID, sessionID int) (int64, error)
}

type postgresLineItemRepository struct {
	db *sql.DB
}

func NewPostgresLineItemRepository(db *sql.DB) LineItemRepository {
	return &postgresLineItemRepository{db: db}
}

func (r *postgresLineItemRepository) Create(ctx context.Context, item *models.SessionLineItem) error {
	query := `
		INSERT INTO session_line_items (club_id, session_id, service_id, service_name, quantity, unit_price, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		item.ClubID, item.SessionID, item.ServiceID, item.ServiceName,
		item.Quantity, item.UnitPrice, item.Total,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "session_line_items_session_id_fkey":
				return ErrLineItemInvalidSession
			case "session_line_items_service_id_fkey":
				return ErrLineItemInvalidService
			}
		}
		return wrapStoreError(err)
	}
	return nil
}

func (r *postgresLineItemRepository) GetByID(ctx context.Context, clubID, id int) (*models.SessionLineItem, error) {
	query := `
		SELECT id, club_id, session_id, service_id, service_name, quantity, unit_price, total, created_at
		FROM session_line_items
		WHERE id = $1 AND ($2 = 0 OR club_id = $2)`

	item := &models.SessionLineItem{}
	err := r.db.QueryRowContext(ctx, query, id, clubID).Scan(
		&item.ID, &item.ClubID, &item.SessionID, &item.ServiceID, &item.ServiceName,
		&item.Quantity, &item.UnitPrice, &item.Total, &item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLineItemNotFound
		}
		return nil, wrapStoreError(err)
	}
	return item, nil
}

func (r *postgresLineItemRepository) ListBySession(ctx context.Context, clubID, sessionID int) ([]models.SessionLineItem, error) {
	query := `
		SELECT id, club_id, session_id, service_id, service_name, quantity, unit_price, total, created_at
		FROM session_line_items
		WHERE session_id = $1 AND ($2 = 0 OR club_id = $2)
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, sessionID, clubID)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	defer rows.Close()

	items := make([]models.SessionLineItem, 0)
	for rows.Next() {
		var item models.SessionLineItem
		if scanErr := rows.Scan(
			&item.ID, &item.ClubID, &item.SessionID, &item.ServiceID, &item.ServiceName,
			&item.Quantity, &item.UnitPrice, &item.Total, &item.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, wrapStoreError(err)
	}
	return items, nil
}

func (r *postgresLineItemRepository) UpdateQuantity(ctx context.Context, clubID, id, quantity int, total int64) error {
	query := `
		UPDATE session_line_items
		SET quantity = $1, total = $2
		WHERE id = $3 AND club_id = $4`

	result, err := r.db.ExecContext(ctx, query, quantity, total, id, clubID)
	if err != nil {
		return wrapStoreError(err)
	}
	return checkAffectedRows(result, ErrLineItemNotFound)
}

func (r *postgresLineItemRepository) Delete(ctx context.Context, clubID, id int) error {
	query := `DELETE FROM session_line_items WHERE id = $1 AND club_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, clubID)
	if err != nil {
		return wrapStoreError(err)
	}
	return checkAffectedRows(result, ErrLineItemNotFound)
}

func (r *postgresLineItemRepository) SumBySession(ctx context.Context, exec SQLExecutor, clubID, sessionID int) (int64, error) {
	if exec == nil {
		exec = r.db
	}
	query := `
		SELECT COALESCE(SUM(total), 0)
		FROM session_line_items
		WHERE session_id = $1 AND ($2 = 0 OR club_id = $2)`

	var sum int64
	if err := exec.QueryRowContext(ctx, query, sessionID, clubID).Scan(&sum); err != nil {
		return 0, wrapStoreError(err)
	}
	return sum, nil
}
