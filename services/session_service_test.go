package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/club-billing/models"
	"github.com/Dosada05/club-billing/repositories"
)

type sessionFixture struct {
	svc      SessionService
	players  *fakePlayerRepo
	sessions *fakeSessionRepo
	items    *fakeLineItemRepo
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	items := newFakeLineItemRepo()
	sessions := newFakeSessionRepo(items)
	players := newFakePlayerRepo()
	svc := NewSessionService(txDB(t), sessions, players, items, nil, slog.Default())
	return &sessionFixture{svc: svc, players: players, sessions: sessions, items: items}
}

func TestCheckIn(t *testing.T) {
	f := newSessionFixture(t)
	player := f.players.add(models.Player{ClubID: 1, FullName: "Aliya", Tier: models.TierBeginner})

	session, err := f.svc.CheckIn(context.Background(), 1, player.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusPlaying, session.Status)
	assert.Equal(t, player.ID, session.PlayerID)
	assert.Zero(t, session.Total)
	assert.Empty(t, session.LineItems)
	assert.False(t, session.CheckInTime.IsZero())
}

func TestCheckInUnknownPlayer(t *testing.T) {
	f := newSessionFixture(t)
	_, err := f.svc.CheckIn(context.Background(), 1, 99)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestCheckInPlayerFromAnotherClub(t *testing.T) {
	f := newSessionFixture(t)
	player := f.players.add(models.Player{ClubID: 2, FullName: "Aliya", Tier: models.TierBeginner})

	_, err := f.svc.CheckIn(context.Background(), 1, player.ID)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestCheckInSecondOpenSessionConflicts(t *testing.T) {
	f := newSessionFixture(t)
	player := f.players.add(models.Player{ClubID: 1, FullName: "Aliya", Tier: models.TierBeginner})

	_, err := f.svc.CheckIn(context.Background(), 1, player.ID)
	require.NoError(t, err)

	_, err = f.svc.CheckIn(context.Background(), 1, player.ID)
	assert.ErrorIs(t, err, ErrPlayerAlreadyCheckedIn)
}

func TestCheckInAllowedAfterCheckOut(t *testing.T) {
	f := newSessionFixture(t)
	player := f.players.add(models.Player{ClubID: 1, FullName: "Aliya", Tier: models.TierBeginner})

	first, err := f.svc.CheckIn(context.Background(), 1, player.ID)
	require.NoError(t, err)
	_, err = f.svc.CheckOut(context.Background(), 1, first.ID, nil)
	require.NoError(t, err)

	second, err := f.svc.CheckIn(context.Background(), 1, player.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCheckOutRecomputesTotal(t *testing.T) {
	f := newSessionFixture(t)
	player := f.players.add(models.Player{ClubID: 1, FullName: "Aliya", Tier: models.TierBeginner})
	session, err := f.svc.CheckIn(context.Background(), 1, player.ID)
	require.NoError(t, err)

	require.NoError(t, f.items.Create(context.Background(), &models.SessionLineItem{
		ClubID: 1, SessionID: session.ID, ServiceName: "Court time", Quantity: 2, UnitPrice: 1500, Total: 3000,
	}))
	require.NoError(t, f.items.Create(context.Background(), &models.SessionLineItem{
		ClubID: 1, SessionID: session.ID, ServiceName: "Water", Quantity: 1, UnitPrice: 300, Total: 300,
	}))

	closed, err := f.svc.CheckOut(context.Background(), 1, session.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusFinished, closed.Status)
	assert.Equal(t, int64(3300), closed.Total)
	assert.Equal(t, int64(3300), closed.RunningTotal)
	require.NotNil(t, closed.CheckOutTime)
}

func TestCheckOutEmptySession(t *testing.T) {
	f := newSessionFixture(t)
	player := f.players.add(models.Player{ClubID: 1, FullName: "Aliya", Tier: models.TierBeginner})
	session, err := f.svc.CheckIn(context.Background(), 1, player.ID)
	require.NoError(t, err)

	closed, err := f.svc.CheckOut(context.Background(), 1, session.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, closed.Total)
}

func TestCheckOutExpectedTotalMismatch(t *testing.T) {
	f := newSessionFixture(t)
	player := f.players.add(models.Player{ClubID: 1, FullName: "Aliya", Tier: models.TierBeginner})
	session, err := f.svc.CheckIn(context.Background(), 1, player.ID)
	require.NoError(t, err)

	require.NoError(t, f.items.Create(context.Background(), &models.SessionLineItem{
		ClubID: 1, SessionID: session.ID, ServiceName: "Court time", Quantity: 1, UnitPrice: 1500, Total: 1500,
	}))

	stale := int64(1000)
	_, err = f.svc.CheckOut(context.Background(), 1, session.ID, &stale)
	assert.ErrorIs(t, err, ErrCheckoutTotalMismatch)

	// Сессия осталась открытой, правильная сумма закрывает её.
	expected := int64(1500)
	closed, err := f.svc.CheckOut(context.Background(), 1, session.ID, &expected)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), closed.Total)
}

func TestDoubleCheckOut(t *testing.T) {
	f := newSessionFixture(t)
	player := f.players.add(models.Player{ClubID: 1, FullName: "Aliya", Tier: models.TierBeginner})
	session, err := f.svc.CheckIn(context.Background(), 1, player.ID)
	require.NoError(t, err)

	_, err = f.svc.CheckOut(context.Background(), 1, session.ID, nil)
	require.NoError(t, err)

	_, err = f.svc.CheckOut(context.Background(), 1, session.ID, nil)
	assert.ErrorIs(t, err, ErrSessionAlreadyFinished)
}

func TestGetSessionRunningTotal(t *testing.T) {
	f := newSessionFixture(t)
	player := f.players.add(models.Player{ClubID: 1, FullName: "Aliya", Tier: models.TierBeginner})
	session, err := f.svc.CheckIn(context.Background(), 1, player.ID)
	require.NoError(t, err)

	require.NoError(t, f.items.Create(context.Background(), &models.SessionLineItem{
		ClubID: 1, SessionID: session.ID, ServiceName: "Court time", Quantity: 2, UnitPrice: 1500, Total: 3000,
	}))

	got, err := f.svc.GetSession(context.Background(), 1, session.ID)
	require.NoError(t, err)
	// Пока сессия открыта, Total не авторитетен, текущая сумма по позициям.
	assert.Zero(t, got.Total)
	assert.Equal(t, int64(3000), got.RunningTotal)
}

func TestListSessionsFilterByStatus(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	p1 := f.players.add(models.Player{ClubID: 1, FullName: "Aliya", Tier: models.TierBeginner})
	p2 := f.players.add(models.Player{ClubID: 1, FullName: "Bekzat", Tier: models.TierAdvanced})

	s1, err := f.svc.CheckIn(ctx, 1, p1.ID)
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, 1, p2.ID)
	require.NoError(t, err)
	_, err = f.svc.CheckOut(ctx, 1, s1.ID, nil)
	require.NoError(t, err)

	playing := models.SessionStatusPlaying
	open, err := f.svc.ListSessions(ctx, repositories.ListSessionsFilter{ClubID: 1, Status: &playing})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, p2.ID, open[0].PlayerID)
}

func TestCheckOutWithCrossClubScope(t *testing.T) {
	f := newSessionFixture(t)
	player := f.players.add(models.Player{ClubID: 2, FullName: "Aliya", Tier: models.TierBeginner})
	session, err := f.svc.CheckIn(context.Background(), 2, player.ID)
	require.NoError(t, err)

	require.NoError(t, f.items.Create(context.Background(), &models.SessionLineItem{
		ClubID: 2, SessionID: session.ID, ServiceName: "Court time", Quantity: 1, UnitPrice: 1500, Total: 1500,
	}))

	// Супер-роль без привязки к клубу передаёт clubID == 0; запись при
	// этом идёт в клуб самой сессии, а не в несуществующий клуб 0.
	closed, err := f.svc.CheckOut(context.Background(), 0, session.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusFinished, closed.Status)
	assert.Equal(t, int64(1500), closed.Total)
	assert.Equal(t, 2, closed.ClubID)
}

// finishOnLockSessionRepo имитирует конкурента, успевшего закрыть сессию
// между первым чтением и взятием блокировки строки.
type finishOnLockSessionRepo struct {
	*fakeSessionRepo
}

func (r *finishOnLockSessionRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, clubID, id int) (*models.Session, error) {
	if s, ok := r.sessions[id]; ok && s.Status == models.SessionStatusPlaying {
		_ = r.fakeSessionRepo.Finish(ctx, exec, s.ClubID, id, 0, time.Now())
	}
	return r.fakeSessionRepo.GetForUpdate(ctx, exec, clubID, id)
}

func TestCheckOutConcurrentlyFinishedSession(t *testing.T) {
	items := newFakeLineItemRepo()
	sessions := &finishOnLockSessionRepo{fakeSessionRepo: newFakeSessionRepo(items)}
	players := newFakePlayerRepo()
	svc := NewSessionService(txDB(t), sessions, players, items, nil, slog.Default())

	player := players.add(models.Player{ClubID: 1, FullName: "Aliya", Tier: models.TierBeginner})
	session, err := svc.CheckIn(context.Background(), 1, player.ID)
	require.NoError(t, err)

	_, err = svc.CheckOut(context.Background(), 1, session.ID, nil)
	assert.ErrorIs(t, err, ErrSessionAlreadyFinished)
}

func TestCheckOutTimeIsServerSide(t *testing.T) {
	f := newSessionFixture(t)
	player := f.players.add(models.Player{ClubID: 1, FullName: "Aliya", Tier: models.TierBeginner})
	session, err := f.svc.CheckIn(context.Background(), 1, player.ID)
	require.NoError(t, err)

	before := time.Now()
	closed, err := f.svc.CheckOut(context.Background(), 1, session.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, closed.CheckOutTime)
	assert.False(t, closed.CheckOutTime.Before(before))
}
