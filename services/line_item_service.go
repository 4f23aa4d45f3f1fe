package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/club-billing/billing"
	"github.com/Dosada05/club-billing/live"
	"github.com/Dosada05/club-billing/models"
	"github.com/Dosada05/club-billing/repositories"
)

// LineItemService управляет позициями счёта открытой сессии. Любая
// мутация разрешена только пока родительская сессия playing; после
// чек-аута история неизменяема.
type LineItemService interface {
	AddLineItem(ctx context.Context, input AddLineItemInput) (*LineItemResult, error)
	// AdjustQuantity меняет количество на delta. Если новое количество
	// опускается до нуля или ниже, позиция удаляется целиком — это
	// канонический способ убрать позицию кнопками количества.
	AdjustQuantity(ctx context.Context, clubID, lineItemID, delta int) (*LineItemResult, error)
	RemoveLineItem(ctx context.Context, clubID, lineItemID int) (*LineItemResult, error)
}

type AddLineItemInput struct {
	ClubID    int
	SessionID int
	ServiceID int
	Quantity  int
	// Override подтверждает добавление неактивной услуги или кортового
	// времени игроку с действующим членством. Решение оператора, не UI.
	Override bool
}

// LineItemResult — позиция после мутации и свежая текущая сумма сессии.
// Removed=true означает, что позиция удалена (Item тогда nil).
type LineItemResult struct {
	Item         *models.SessionLineItem `json:"item,omitempty"`
	Removed      bool                    `json:"removed"`
	SessionID    int                     `json:"session_id"`
	RunningTotal int64                   `json:"running_total"`
}

type lineItemService struct {
	lineItemRepo repositories.LineItemRepository
	sessionRepo  repositories.SessionRepository
	serviceRepo  repositories.ServiceRepository
	playerRepo   repositories.PlayerRepository
	hub          *live.Hub
}

func NewLineItemService(
	lineItemRepo repositories.LineItemRepository,
	sessionRepo repositories.SessionRepository,
	serviceRepo repositories.ServiceRepository,
	playerRepo repositories.PlayerRepository,
	hub *live.Hub,
) LineItemService {
	return &lineItemService{
		lineItemRepo: lineItemRepo,
		sessionRepo:  sessionRepo,
		serviceRepo:  serviceRepo,
		playerRepo:   playerRepo,
		hub:          hub,
	}
}

func (s *lineItemService) AddLineItem(ctx context.Context, input AddLineItemInput) (*LineItemResult, error) {
	session, err := s.playingSession(ctx, input.ClubID, input.SessionID)
	if err != nil {
		return nil, err
	}
	// Дальше работаем в клубе сессии: супер-роль передаёт clubID == 0,
	// а позиция обязана жить в том же клубе, что и сессия.
	clubID := session.ClubID

	service, err := s.serviceRepo.GetByID(ctx, clubID, input.ServiceID)
	if err != nil {
		if errors.Is(err, repositories.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, mapStoreError(err, fmt.Sprintf("failed to load service %d", input.ServiceID))
	}

	if service.Status != models.ServiceStatusActive && !input.Override {
		return nil, ErrServiceInactive
	}

	if service.TimeBased && !input.Override {
		player, err := s.playerRepo.GetByID(ctx, clubID, session.PlayerID)
		if err != nil {
			return nil, mapStoreError(err, fmt.Sprintf("failed to load player %d", session.PlayerID))
		}
		if player.HasActiveMembership(time.Now()) {
			return nil, ErrMembershipCoversService
		}
	}

	total, err := billing.LineItemTotal(input.Quantity, service.UnitPrice)
	if err != nil {
		if errors.Is(err, billing.ErrQuantityNotPositive) {
			return nil, ErrQuantityNotPositive
		}
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	// Цена и имя фиксируются на момент продажи: последующие правки
	// каталога историю не трогают.
	item := &models.SessionLineItem{
		ClubID:      clubID,
		SessionID:   session.ID,
		ServiceID:   service.ID,
		ServiceName: service.Name,
		Quantity:    input.Quantity,
		UnitPrice:   service.UnitPrice,
		Total:       total,
	}
	if err := s.lineItemRepo.Create(ctx, item); err != nil {
		if errors.Is(err, repositories.ErrLineItemInvalidSession) {
			return nil, ErrSessionNotFound
		}
		if errors.Is(err, repositories.ErrLineItemInvalidService) {
			return nil, ErrServiceNotFound
		}
		return nil, mapStoreError(err, "failed to create line item")
	}

	return s.result(ctx, clubID, session.ID, item, false)
}

func (s *lineItemService) AdjustQuantity(ctx context.Context, clubID, lineItemID, delta int) (*LineItemResult, error) {
	item, err := s.lineItemRepo.GetByID(ctx, clubID, lineItemID)
	if err != nil {
		if errors.Is(err, repositories.ErrLineItemNotFound) {
			return nil, ErrLineItemNotFound
		}
		return nil, mapStoreError(err, fmt.Sprintf("failed to load line item %d", lineItemID))
	}
	if _, err := s.playingSession(ctx, item.ClubID, item.SessionID); err != nil {
		return nil, err
	}

	newQuantity := item.Quantity + delta
	if newQuantity <= 0 {
		if err := s.lineItemRepo.Delete(ctx, item.ClubID, item.ID); err != nil {
			if errors.Is(err, repositories.ErrLineItemNotFound) {
				return nil, ErrLineItemNotFound
			}
			return nil, mapStoreError(err, "failed to delete line item")
		}
		return s.result(ctx, item.ClubID, item.SessionID, nil, true)
	}

	// Пересчёт по сохранённой цене, не по текущему каталогу.
	total, err := billing.LineItemTotal(newQuantity, item.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	if err := s.lineItemRepo.UpdateQuantity(ctx, item.ClubID, item.ID, newQuantity, total); err != nil {
		if errors.Is(err, repositories.ErrLineItemNotFound) {
			return nil, ErrLineItemNotFound
		}
		return nil, mapStoreError(err, "failed to update line item quantity")
	}

	item.Quantity = newQuantity
	item.Total = total
	return s.result(ctx, item.ClubID, item.SessionID, item, false)
}

func (s *lineItemService) RemoveLineItem(ctx context.Context, clubID, lineItemID int) (*LineItemResult, error) {
	item, err := s.lineItemRepo.GetByID(ctx, clubID, lineItemID)
	if err != nil {
		if errors.Is(err, repositories.ErrLineItemNotFound) {
			return nil, ErrLineItemNotFound
		}
		return nil, mapStoreError(err, fmt.Sprintf("failed to load line item %d", lineItemID))
	}
	if _, err := s.playingSession(ctx, item.ClubID, item.SessionID); err != nil {
		return nil, err
	}

	if err := s.lineItemRepo.Delete(ctx, item.ClubID, item.ID); err != nil {
		if errors.Is(err, repositories.ErrLineItemNotFound) {
			return nil, ErrLineItemNotFound
		}
		return nil, mapStoreError(err, "failed to delete line item")
	}
	return s.result(ctx, item.ClubID, item.SessionID, nil, true)
}

func (s *lineItemService) playingSession(ctx context.Context, clubID, sessionID int) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, clubID, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, mapStoreError(err, fmt.Sprintf("failed to load session %d", sessionID))
	}
	if session.Status != models.SessionStatusPlaying {
		return nil, ErrSessionNotPlaying
	}
	return session, nil
}

// result собирает свежую текущую сумму и рассылает её подписчикам клуба.
// Персистентный Session.Total при этом не трогается до чек-аута.
func (s *lineItemService) result(ctx context.Context, clubID, sessionID int, item *models.SessionLineItem, removed bool) (*LineItemResult, error) {
	items, err := s.lineItemRepo.ListBySession(ctx, clubID, sessionID)
	if err != nil {
		return nil, mapStoreError(err, "failed to reload session line items")
	}
	res := &LineItemResult{
		Item:         item,
		Removed:      removed,
		SessionID:    sessionID,
		RunningTotal: billing.SessionRunningTotal(items),
	}
	if s.hub != nil {
		s.hub.BroadcastToClub(clubID, live.Event{
			Type:    live.EventSessionTotalUpdated,
			ClubID:  clubID,
			Payload: res,
		})
	}
	return res, nil
}
