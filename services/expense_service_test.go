package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/club-billing/models"
	"github.com/Dosada05/club-billing/repositories"
)

func TestCreateExpense(t *testing.T) {
	svc := NewExpenseService(newFakeExpenseRepo())

	expense, err := svc.CreateExpense(context.Background(), ExpenseInput{
		ClubID: 1, Name: "Shuttlecocks", Amount: 2000,
	})
	require.NoError(t, err)
	assert.Equal(t, "Shuttlecocks", expense.Name)
	// Дата по умолчанию проставляется сервером.
	assert.False(t, expense.Date.IsZero())
}

func TestCreateExpenseValidation(t *testing.T) {
	svc := NewExpenseService(newFakeExpenseRepo())

	_, err := svc.CreateExpense(context.Background(), ExpenseInput{ClubID: 1, Name: " ", Amount: 100})
	assert.ErrorIs(t, err, ErrExpenseNameRequired)

	_, err = svc.CreateExpense(context.Background(), ExpenseInput{ClubID: 1, Name: "Rent", Amount: 0})
	assert.ErrorIs(t, err, ErrAmountNotPositive)
}

func TestUpdateExpense(t *testing.T) {
	repo := newFakeExpenseRepo()
	svc := NewExpenseService(repo)
	created := &models.Expense{ClubID: 1, Name: "Rent", Amount: 10000, Date: time.Now()}
	require.NoError(t, repo.Create(context.Background(), created))

	updated, err := svc.UpdateExpense(context.Background(), 1, created.ID, ExpenseInput{
		Name: "Rent (court 2)", Amount: 12000,
	})
	require.NoError(t, err)
	assert.Equal(t, "Rent (court 2)", updated.Name)
	assert.Equal(t, int64(12000), updated.Amount)
	// Нулевая дата во входе сохраняет прежнюю.
	assert.Equal(t, created.Date, updated.Date)
}

func TestUpdateExpenseWithCrossClubScope(t *testing.T) {
	repo := newFakeExpenseRepo()
	svc := NewExpenseService(repo)
	created := &models.Expense{ClubID: 2, Name: "Rent", Amount: 10000, Date: time.Now()}
	require.NoError(t, repo.Create(context.Background(), created))

	// Супер-роль передаёт clubID == 0; расход остаётся в своём клубе.
	updated, err := svc.UpdateExpense(context.Background(), 0, created.ID, ExpenseInput{
		Name: "Rent", Amount: 11000,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.ClubID)
	assert.Equal(t, int64(11000), updated.Amount)
}

func TestDeleteExpenseWithCrossClubScope(t *testing.T) {
	repo := newFakeExpenseRepo()
	svc := NewExpenseService(repo)
	created := &models.Expense{ClubID: 2, Name: "Rent", Amount: 10000, Date: time.Now()}
	require.NoError(t, repo.Create(context.Background(), created))

	require.NoError(t, svc.DeleteExpense(context.Background(), 0, created.ID))

	_, err := repo.GetByID(context.Background(), 2, created.ID)
	assert.ErrorIs(t, err, repositories.ErrExpenseNotFound)
}

func TestDeleteExpenseUnknown(t *testing.T) {
	svc := NewExpenseService(newFakeExpenseRepo())
	assert.ErrorIs(t, svc.DeleteExpense(context.Background(), 1, 99), ErrExpenseNotFound)
}
