package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Dosada05/club-billing/models"
	"github.com/Dosada05/club-billing/repositories"
)

type MembershipService interface {
	// RecordPayment атомарно создаёт платёж и продлевает кэш
	// membership_end_date игрока до конца покрытия. Кэш — last-writer-wins,
	// источник истины для отображения — история платежей.
	RecordPayment(ctx context.Context, input RecordPaymentInput) (*models.MembershipPayment, error)
	ListPayments(ctx context.Context, filter repositories.ListMembershipPaymentsFilter) ([]models.MembershipPayment, error)
}

type RecordPaymentInput struct {
	ClubID        int
	PlayerID      int
	Amount        int64
	PaymentDate   time.Time
	CoverageStart time.Time
	CoverageEnd   time.Time
}

type membershipService struct {
	db          *sql.DB
	paymentRepo repositories.MembershipPaymentRepository
	playerRepo  repositories.PlayerRepository
}

func NewMembershipService(
	db *sql.DB,
	paymentRepo repositories.MembershipPaymentRepository,
	playerRepo repositories.PlayerRepository,
) MembershipService {
	return &membershipService{
		db:          db,
		paymentRepo: paymentRepo,
		playerRepo:  playerRepo,
	}
}

func (s *membershipService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*models.MembershipPayment, error) {
	if input.Amount <= 0 {
		return nil, ErrAmountNotPositive
	}
	if !input.CoverageEnd.After(input.CoverageStart) {
		return nil, ErrInvalidCoverageRange
	}
	if _, err := s.playerRepo.GetByID(ctx, input.ClubID, input.PlayerID); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, mapStoreError(err, "failed to load player for membership payment")
	}

	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	payment := &models.MembershipPayment{
		ClubID:        input.ClubID,
		PlayerID:      input.PlayerID,
		Amount:        input.Amount,
		PaymentDate:   paymentDate,
		CoverageStart: input.CoverageStart,
		CoverageEnd:   input.CoverageEnd,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapStoreError(err, "failed to begin membership payment transaction")
	}
	defer tx.Rollback()

	if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
		if errors.Is(err, repositories.ErrMembershipPaymentInvalidPlayer) {
			return nil, ErrPlayerNotFound
		}
		return nil, mapStoreError(err, "failed to create membership payment")
	}
	if err := s.playerRepo.UpdateMembershipEndDate(ctx, tx, input.ClubID, input.PlayerID, input.CoverageEnd); err != nil {
		return nil, mapStoreError(err, "failed to extend player membership end date")
	}

	if err := tx.Commit(); err != nil {
		return nil, mapStoreError(err, "failed to commit membership payment")
	}
	return payment, nil
}

func (s *membershipService) ListPayments(ctx context.Context, filter repositories.ListMembershipPaymentsFilter) ([]models.MembershipPayment, error) {
	payments, err := s.paymentRepo.List(ctx, filter)
	if err != nil {
		return nil, mapStoreError(err, "failed to list membership payments")
	}
	return payments, nil
}
