package services

import (
	"context"
	"time"

	"github.com/Dosada05/club-billing/models"
	"github.com/Dosada05/club-billing/reports"
	"github.com/Dosada05/club-billing/repositories"
	"golang.org/x/sync/errgroup"
)

// ReportService — read-side: собирает снимок данных клуба и отдаёт его
// чистому слою reports. Пустой клуб — валидный вход с нулевыми агрегатами.
type ReportService interface {
	RevenueReport(ctx context.Context, clubID int, granularity string, windowSize int) ([]models.RevenueBucket, error)
	ServiceDistribution(ctx context.Context, clubID int, from, to time.Time) ([]models.ServiceRevenueSlice, error)
	DashboardStats(ctx context.Context, clubID int) (models.DashboardStats, error)
}

type reportService struct {
	sessionRepo repositories.SessionRepository
	paymentRepo repositories.MembershipPaymentRepository
	expenseRepo repositories.ExpenseRepository
	playerRepo  repositories.PlayerRepository
	loc         *time.Location
}

func NewReportService(
	sessionRepo repositories.SessionRepository,
	paymentRepo repositories.MembershipPaymentRepository,
	expenseRepo repositories.ExpenseRepository,
	playerRepo repositories.PlayerRepository,
	loc *time.Location,
) ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &reportService{
		sessionRepo: sessionRepo,
		paymentRepo: paymentRepo,
		expenseRepo: expenseRepo,
		playerRepo:  playerRepo,
		loc:         loc,
	}
}

func (s *reportService) RevenueReport(ctx context.Context, clubID int, granularity string, windowSize int) ([]models.RevenueBucket, error) {
	g, err := reports.ParseGranularity(granularity)
	if err != nil {
		return nil, ErrInvalidReportRange
	}
	if windowSize < 0 {
		return nil, ErrInvalidReportRange
	}
	if windowSize == 0 {
		windowSize = reports.DefaultWindowSize(g)
	}

	now := time.Now().In(s.loc)
	// Нижняя граница с запасом на самое старое окно.
	var from time.Time
	switch g {
	case reports.GranularityWeek:
		from = now.AddDate(0, 0, -7*(windowSize+1))
	case reports.GranularityMonth:
		from = now.AddDate(0, -(windowSize + 1), 0)
	default:
		from = now.AddDate(0, 0, -(windowSize + 1))
	}

	snap, err := s.loadSnapshot(ctx, clubID, from)
	if err != nil {
		return nil, err
	}
	return reports.Bucketize(snap, g, windowSize, now, s.loc), nil
}

func (s *reportService) ServiceDistribution(ctx context.Context, clubID int, from, to time.Time) ([]models.ServiceRevenueSlice, error) {
	var fromPtr, toPtr *time.Time
	if !from.IsZero() {
		fromPtr = &from
	}
	if !to.IsZero() {
		toPtr = &to
	}

	var snap reports.Snapshot
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sessions, err := s.sessionRepo.List(gCtx, repositories.ListSessionsFilter{ClubID: clubID, From: fromPtr, To: toPtr})
		if err != nil {
			return mapStoreError(err, "failed to load sessions for distribution")
		}
		snap.Sessions = sessions
		return nil
	})
	g.Go(func() error {
		payments, err := s.paymentRepo.List(gCtx, repositories.ListMembershipPaymentsFilter{ClubID: clubID, From: fromPtr, To: toPtr})
		if err != nil {
			return mapStoreError(err, "failed to load membership payments for distribution")
		}
		snap.MembershipPayments = payments
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports.ServiceRevenueDistribution(snap), nil
}

func (s *reportService) DashboardStats(ctx context.Context, clubID int) (models.DashboardStats, error) {
	var stats models.DashboardStats
	now := time.Now().In(s.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := s.playerRepo.Count(gCtx, clubID)
		if err != nil {
			return mapStoreError(err, "failed to count players")
		}
		stats.PlayersTotal = count
		return nil
	})
	g.Go(func() error {
		count, err := s.playerRepo.CountActiveMemberships(gCtx, clubID, now)
		if err != nil {
			return mapStoreError(err, "failed to count active memberships")
		}
		stats.ActiveMemberships = count
		return nil
	})
	g.Go(func() error {
		count, err := s.sessionRepo.CountByStatus(gCtx, clubID, models.SessionStatusPlaying)
		if err != nil {
			return mapStoreError(err, "failed to count open sessions")
		}
		stats.OpenSessions = count
		return nil
	})
	g.Go(func() error {
		// Сессии сегодняшнего дня по времени чек-ина.
		sessions, err := s.sessionRepo.List(gCtx, repositories.ListSessionsFilter{ClubID: clubID, From: &dayStart})
		if err != nil {
			return mapStoreError(err, "failed to load today's sessions")
		}
		for _, session := range sessions {
			if session.Status == models.SessionStatusFinished {
				stats.FinishedToday++
				stats.RevenueToday += session.Total
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, err
	}
	return stats, nil
}

// loadSnapshot параллельно стягивает все три источника отчёта.
func (s *reportService) loadSnapshot(ctx context.Context, clubID int, from time.Time) (reports.Snapshot, error) {
	var snap reports.Snapshot
	fromPtr := &from

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Выручка атрибутируется по времени чек-аута, поэтому сессии
		// отбираются по активности: давний чек-ин со свежим чек-аутом
		// всё ещё принадлежит окну отчёта.
		sessions, err := s.sessionRepo.List(gCtx, repositories.ListSessionsFilter{ClubID: clubID, ActiveFrom: fromPtr})
		if err != nil {
			return mapStoreError(err, "failed to load sessions for report")
		}
		snap.Sessions = sessions
		return nil
	})
	g.Go(func() error {
		payments, err := s.paymentRepo.List(gCtx, repositories.ListMembershipPaymentsFilter{ClubID: clubID, From: fromPtr})
		if err != nil {
			return mapStoreError(err, "failed to load membership payments for report")
		}
		snap.MembershipPayments = payments
		return nil
	})
	g.Go(func() error {
		expenses, err := s.expenseRepo.List(gCtx, repositories.ListExpensesFilter{ClubID: clubID, From: fromPtr})
		if err != nil {
			return mapStoreError(err, "failed to load expenses for report")
		}
		snap.Expenses = expenses
		return nil
	})
	if err := g.Wait(); err != nil {
		return reports.Snapshot{}, err
	}
	return snap, nil
}
