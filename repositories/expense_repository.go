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
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrExpenseInvalidClub = errors.New("invalid club reference")
)

type ListExpensesFilter struct {
	ClubID int
	From   *time.Time
	To     *time.Time
}

type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) error
	GetByID(ctx context.Context, clubID, id int) (*models.Expense, error)
	List(ctx context.Context, filter ListExpensesFilter) ([]models.Expense, error)
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, clubID, id int) error
}

type postgresExpenseRepository struct {
	db *sql.DB
}

func NewPostgresExpenseRepository(db *sql.DB) ExpenseRepository {
	return &postgresExpenseRepository{db: db}
}

func (r *postgresExpenseRepository) Create(ctx context.Context, e *models.Expense) error {
	query := `
		INSERT INTO expenses (club_id, name, amount, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, e.ClubID, e.Name, e.Amount, e.Date).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrExpenseInvalidClub
		}
		return wrapStoreError(err)
	}
	return nil
}

func (r *postgresExpenseRepository) GetByID(ctx context.Context, clubID, id int) (*models.Expense, error) {
	query := `
		SELECT id, club_id, name, amount, date, created_at
		FROM expenses
		WHERE id = $1 AND ($2 = 0 OR club_id = $2)`

	e := &models.Expense{}
	err := r.db.QueryRowContext(ctx, query, id, clubID).Scan(
		&e.ID, &e.ClubID, &e.Name, &e.Amount, &e.Date, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExpenseNotFound
		}
		return nil, wrapStoreError(err)
	}
	return e, nil
}

func (r *postgresExpenseRepository) List(ctx context.Context, filter ListExpensesFilter) ([]models.Expense, error) {
	query := `
		SELECT id, club_id, name, amount, date, created_at
		FROM expenses
		WHERE ($1 = 0 OR club_id = $1)
		  AND ($2::timestamptz IS NULL OR date >= $2)
		  AND ($3::timestamptz IS NULL OR date < $3)
		ORDER BY date DESC`

	rows, err := r.db.QueryContext(ctx, query, filter.ClubID, filter.From, filter.To)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	defer rows.Close()

	expenses := make([]models.Expense, 0)
	for rows.Next() {
		var e models.Expense
		if scanErr := rows.Scan(&e.ID, &e.ClubID, &e.Name, &e.Amount, &e.Date, &e.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		expenses = append(expenses, e)
	}
	if err = rows.Err(); err != nil {
		return nil, wrapStoreError(err)
	}
	return expenses, nil
}

func (r *postgresExpenseRepository) Update(ctx context.Context, e *models.Expense) error {
	query := `UPDATE expenses SET name = $1, amount = $2, date = $3 WHERE id = $4 AND club_id = $5`

	result, err := r.db.ExecContext(ctx, query, e.Name, e.Amount, e.Date, e.ID, e.ClubID)
	if err != nil {
		return wrapStoreError(err)
	}
	return checkAffectedRows(result, ErrExpenseNotFound)
}

func (r *postgresExpenseRepository) Delete(ctx context.Context, clubID, id int) error {
	query := `DELETE FROM expenses WHERE id = $1 AND club_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, clubID)
	if err != nil {
		return wrapStoreError(err)
	}
	return checkAffectedRows(result, ErrExpenseNotFound)
}
