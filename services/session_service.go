package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/club-billing/billing"
	"github.com/Dosada05/club-billing/live"
	"github.com/Dosada05/club-billing/models"
	"github.com/Dosada05/club-billing/repositories"
)

// SessionService владеет жизненным циклом сессии: playing -> finished,
// ровно один переход, без пути назад.
type SessionService interface {
	CheckIn(ctx context.Context, clubID, playerID int) (*models.Session, error)
	// CheckOut пересчитывает итог на сервере из сохранённых позиций.
	// expectedTotal опционален: если передан, несовпадение с пересчётом —
	// ошибка валидации (устаревшая витрина), а не повод доверять клиенту.
	CheckOut(ctx context.Context, clubID, sessionID int, expectedTotal *int64) (*models.Session, error)
	GetSession(ctx context.Context, clubID, sessionID int) (*models.Session, error)
	ListSessions(ctx context.Context, filter repositories.ListSessionsFilter) ([]models.Session, error)
}

type sessionService struct {
	db           *sql.DB
	sessionRepo  repositories.SessionRepository
	playerRepo   repositories.PlayerRepository
	lineItemRepo repositories.LineItemRepository
	hub          *live.Hub
	logger       *slog.Logger
}

func NewSessionService(
	db *sql.DB,
	sessionRepo repositories.SessionRepository,
	playerRepo repositories.PlayerRepository,
	lineItemRepo repositories.LineItemRepository,
	hub *live.Hub,
	logger *slog.Logger,
) SessionService {
	return &sessionService{
		db:           db,
		sessionRepo:  sessionRepo,
		playerRepo:   playerRepo,
		lineItemRepo: lineItemRepo,
		hub:          hub,
		logger:       logger,
	}
}

func (s *sessionService) CheckIn(ctx context.Context, clubID, playerID int) (*models.Session, error) {
	player, err := s.playerRepo.GetByID(ctx, clubID, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, mapStoreError(err, fmt.Sprintf("failed to load player %d", playerID))
	}

	session := &models.Session{
		ClubID:      clubID,
		PlayerID:    player.ID,
		CheckInTime: time.Now(),
		Status:      models.SessionStatusPlaying,
		Total:       0,
	}

	// Инвариант "не больше одной открытой сессии на игрока" держит
	// частичный уникальный индекс; гонку двух чек-инов решает БД,
	// проигравший получает конфликт, а не вторую сессию.
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		if errors.Is(err, repositories.ErrSessionPlayingConflict) {
			return nil, ErrPlayerAlreadyCheckedIn
		}
		if errors.Is(err, repositories.ErrSessionInvalidPlayer) {
			return nil, ErrPlayerNotFound
		}
		return nil, mapStoreError(err, "failed to create session")
	}

	session.Player = player
	session.LineItems = []models.SessionLineItem{}

	if s.hub != nil {
		s.hub.BroadcastToClub(clubID, live.Event{
			Type:    live.EventSessionOpened,
			ClubID:  clubID,
			Payload: session,
		})
	}
	return session, nil
}

func (s *sessionService) CheckOut(ctx context.Context, clubID, sessionID int, expectedTotal *int64) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, clubID, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, mapStoreError(err, fmt.Sprintf("failed to load session %d", sessionID))
	}
	if session.Status != models.SessionStatusPlaying {
		// Повторный чек-аут — ошибка, не no-op: молчание прятало бы
		// double-submit на стойке.
		return nil, ErrSessionAlreadyFinished
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapStoreError(err, "failed to begin checkout transaction")
	}
	defer tx.Rollback()

	// Блокировка строки сессии: параллельный чек-аут встаёт здесь и
	// после коммита видит finished, а сумма позиций и guard-апдейт
	// ниже работают с одним и тем же состоянием.
	locked, err := s.sessionRepo.GetForUpdate(ctx, tx, session.ClubID, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, mapStoreError(err, fmt.Sprintf("failed to lock session %d", sessionID))
	}
	if locked.Status != models.SessionStatusPlaying {
		return nil, ErrSessionAlreadyFinished
	}

	total, err := s.lineItemRepo.SumBySession(ctx, tx, session.ClubID, sessionID)
	if err != nil {
		return nil, mapStoreError(err, "failed to sum line items at checkout")
	}
	if expectedTotal != nil && *expectedTotal != total {
		s.logger.WarnContext(ctx, "checkout total mismatch",
			slog.Int("session_id", sessionID),
			slog.Int64("expected", *expectedTotal),
			slog.Int64("recomputed", total),
		)
		return nil, ErrCheckoutTotalMismatch
	}

	checkOutTime := time.Now()
	// Запись идёт по конкретному клубу сессии: вызывающий с супер-ролью
	// передаёт clubID == 0, который write-запросы не принимают.
	if err := s.sessionRepo.Finish(ctx, tx, session.ClubID, sessionID, total, checkOutTime); err != nil {
		if errors.Is(err, repositories.ErrSessionNotPlaying) {
			// Кто-то закрыл сессию между чтением и guard-апдейтом.
			return nil, ErrSessionAlreadyFinished
		}
		return nil, mapStoreError(err, "failed to finish session")
	}

	if err := tx.Commit(); err != nil {
		return nil, mapStoreError(err, "failed to commit checkout")
	}

	session.Status = models.SessionStatusFinished
	session.CheckOutTime = &checkOutTime
	session.Total = total
	session.RunningTotal = total

	if s.hub != nil {
		s.hub.BroadcastToClub(session.ClubID, live.Event{
			Type:    live.EventSessionClosed,
			ClubID:  session.ClubID,
			Payload: session,
		})
	}
	return session, nil
}

func (s *sessionService) GetSession(ctx context.Context, clubID, sessionID int) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, clubID, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, mapStoreError(err, fmt.Sprintf("failed to get session %d", sessionID))
	}
	attachRunningTotal(session)
	return session, nil
}

func (s *sessionService) ListSessions(ctx context.Context, filter repositories.ListSessionsFilter) ([]models.Session, error) {
	sessions, err := s.sessionRepo.List(ctx, filter)
	if err != nil {
		return nil, mapStoreError(err, "failed to list sessions")
	}
	for i := range sessions {
		attachRunningTotal(&sessions[i])
	}
	return sessions, nil
}

// attachRunningTotal проставляет read-time проекцию текущей суммы.
// Для закрытой сессии это зафиксированный Total.
func attachRunningTotal(session *models.Session) {
	if session.Status == models.SessionStatusFinished {
		session.RunningTotal = session.Total
		return
	}
	session.RunningTotal = billing.SessionRunningTotal(session.LineItems)
}
