package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/club-billing/models"
	"github.com/Dosada05/club-billing/repositories"
)

type ExpenseService interface {
	CreateExpense(ctx context.Context, input ExpenseInput) (*models.Expense, error)
	ListExpenses(ctx context.Context, filter repositories.ListExpensesFilter) ([]models.Expense, error)
	UpdateExpense(ctx context.Context, clubID, id int, input ExpenseInput) (*models.Expense, error)
	DeleteExpense(ctx context.Context, clubID, id int) error
}

type ExpenseInput struct {
	ClubID int
	Name   string
	Amount int64
	Date   time.Time
}

type expenseService struct {
	expenseRepo repositories.ExpenseRepository
}

func NewExpenseService(expenseRepo repositories.ExpenseRepository) ExpenseService {
	return &expenseService{expenseRepo: expenseRepo}
}

func (s *expenseService) validate(input ExpenseInput) (string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return "", ErrExpenseNameRequired
	}
	if input.Amount <= 0 {
		return "", ErrAmountNotPositive
	}
	return name, nil
}

func (s *expenseService) CreateExpense(ctx context.Context, input ExpenseInput) (*models.Expense, error) {
	name, err := s.validate(input)
	if err != nil {
		return nil, err
	}
	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	expense := &models.Expense{
		ClubID: input.ClubID,
		Name:   name,
		Amount: input.Amount,
		Date:   date,
	}
	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, mapStoreError(err, "failed to create expense")
	}
	return expense, nil
}

func (s *expenseService) ListExpenses(ctx context.Context, filter repositories.ListExpensesFilter) ([]models.Expense, error) {
	expenses, err := s.expenseRepo.List(ctx, filter)
	if err != nil {
		return nil, mapStoreError(err, "failed to list expenses")
	}
	return expenses, nil
}

func (s *expenseService) UpdateExpense(ctx context.Context, clubID, id int, input ExpenseInput) (*models.Expense, error) {
	name, err := s.validate(input)
	if err != nil {
		return nil, err
	}
	expense, err := s.expenseRepo.GetByID(ctx, clubID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrExpenseNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, mapStoreError(err, fmt.Sprintf("failed to get expense %d", id))
	}

	expense.Name = name
	expense.Amount = input.Amount
	if !input.Date.IsZero() {
		expense.Date = input.Date
	}
	if err := s.expenseRepo.Update(ctx, expense); err != nil {
		if errors.Is(err, repositories.ErrExpenseNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, mapStoreError(err, fmt.Sprintf("failed to update expense %d", id))
	}
	return expense, nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, clubID, id int) error {
	expense, err := s.expenseRepo.GetByID(ctx, clubID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrExpenseNotFound) {
			return ErrExpenseNotFound
		}
		return mapStoreError(err, fmt.Sprintf("failed to get expense %d", id))
	}
	if err := s.expenseRepo.Delete(ctx, expense.ClubID, expense.ID); err != nil {
		if errors.Is(err, repositories.ErrExpenseNotFound) {
			return ErrExpenseNotFound
		}
		return mapStoreError(err, fmt.Sprintf("failed to delete expense %d", id))
	}
	return nil
}
