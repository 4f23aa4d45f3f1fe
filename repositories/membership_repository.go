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
	ErrMembershipPaymentNotFound      = errors.New("membership payment not found")
	ErrMembershipPaymentInvalidPlayer = errors.New("invalid player reference")
)

type ListMembershipPaymentsFilter struct {
	ClubID   int
	PlayerID *int
	From     *time.Time
	To       *time.Time
}

type MembershipPaymentRepository interface {
	// Create выполняется в транзакции вместе с продлением кэша
	// membership_end_date игрока, поэтому принимает SQLExecutor.
	Create(ctx context.Context, exec SQLExecutor, payment *models.MembershipPayment) error
	List(ctx context.Context, filter ListMembershipPaymentsFilter) ([]models.MembershipPayment, error)
}

type postgresMembershipPaymentRepository struct {
	db *sql.DB
}

func NewPostgresMembershipPaymentRepository(db *sql.DB) MembershipPaymentRepository {
	return &postgresMembershipPaymentRepository{db: db}
}

func (r *postgresMembershipPaymentRepository) Create(ctx context.Context, exec SQLExecutor, p *models.MembershipPayment) error {
	if exec == nil {
		exec = r.db
	}
	query := `
		INSERT INTO membership_payments (club_id, player_id, amount, payment_date, coverage_start, coverage_end)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		p.ClubID, p.PlayerID, p.Amount, p.PaymentDate, p.CoverageStart, p.CoverageEnd,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrMembershipPaymentInvalidPlayer
		}
		return wrapStoreError(err)
	}
	return nil
}

func (r *postgresMembershipPaymentRepository) List(ctx context.Context, filter ListMembershipPaymentsFilter) ([]models.MembershipPayment, error) {
	query := `
		SELECT id, club_id, player_id, amount, payment_date, coverage_start, coverage_end, created_at
		FROM membership_payments
		WHERE ($1 = 0 OR club_id = $1)
		  AND ($2::int IS NULL OR player_id = $2)
		  AND ($3::timestamptz IS NULL OR payment_date >= $3)
		  AND ($4::timestamptz IS NULL OR payment_date < $4)
		ORDER BY payment_date DESC`

	rows, err := r.db.QueryContext(ctx, query, filter.ClubID, filter.PlayerID, filter.From, filter.To)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	defer rows.Close()

	payments := make([]models.MembershipPayment, 0)
	for rows.Next() {
		var p models.MembershipPayment
		if scanErr := rows.Scan(
			&p.ID, &p.ClubID, &p.PlayerID, &p.Amount, &p.PaymentDate,
			&p.CoverageStart, &p.CoverageEnd, &p.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		payments = append(payments, p)
	}
	if err = rows.Err(); err != nil {
		return nil, wrapStoreError(err)
	}
	return payments, nil
}
