package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/club-billing/models"
)

type lineItemFixture struct {
	svc       LineItemService
	sessions  SessionService
	players   *fakePlayerRepo
	services  *fakeServiceRepo
	items     *fakeLineItemRepo
	sessRepo  *fakeSessionRepo
	player    *models.Player
	courtTime *models.Service
	water     *models.Service
}

func newLineItemFixture(t *testing.T) *lineItemFixture {
	t.Helper()
	items := newFakeLineItemRepo()
	sessRepo := newFakeSessionRepo(items)
	players := newFakePlayerRepo()
	serviceRepo := newFakeServiceRepo()

	f := &lineItemFixture{
		svc:      NewLineItemService(items, sessRepo, serviceRepo, players, nil),
		sessions: NewSessionService(txDB(t), sessRepo, players, items, nil, slog.Default()),
		players:  players,
		services: serviceRepo,
		items:    items,
		sessRepo: sessRepo,
	}
	f.player = players.add(models.Player{ClubID: 1, FullName: "Aliya", Tier: models.TierBeginner})
	f.courtTime = serviceRepo.add(models.Service{
		ClubID: 1, Name: "Court time", UnitPrice: 1500, UnitLabel: "hour",
		Status: models.ServiceStatusActive, TimeBased: true,
	})
	f.water = serviceRepo.add(models.Service{
		ClubID: 1, Name: "Water", UnitPrice: 300, UnitLabel: "bottle",
		Status: models.ServiceStatusActive,
	})
	return f
}

func (f *lineItemFixture) openSession(t *testing.T) *models.Session {
	t.Helper()
	session, err := f.sessions.CheckIn(context.Background(), 1, f.player.ID)
	require.NoError(t, err)
	return session
}

func TestAddLineItemCapturesPriceSnapshot(t *testing.T) {
	f := newLineItemFixture(t)
	session := f.openSession(t)

	res, err := f.svc.AddLineItem(context.Background(), AddLineItemInput{
		ClubID: 1, SessionID: session.ID, ServiceID: f.water.ID, Quantity: 2,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Item)
	assert.Equal(t, "Water", res.Item.ServiceName)
	assert.Equal(t, int64(300), res.Item.UnitPrice)
	assert.Equal(t, int64(600), res.Item.Total)
	assert.Equal(t, int64(600), res.RunningTotal)
}

func TestAddLineItemPriceChangeDoesNotAffectHistory(t *testing.T) {
	f := newLineItemFixture(t)
	session := f.openSession(t)

	res, err := f.svc.AddLineItem(context.Background(), AddLineItemInput{
		ClubID: 1, SessionID: session.ID, ServiceID: f.water.ID, Quantity: 1,
	})
	require.NoError(t, err)

	// Повышение цены в каталоге не трогает уже проданную позицию.
	updated := *f.water
	updated.UnitPrice = 500
	require.NoError(t, f.services.Update(context.Background(), &updated))

	item, err := f.items.GetByID(context.Background(), 1, res.Item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(300), item.UnitPrice)
	assert.Equal(t, int64(300), item.Total)

	// И пересчёт количества идёт по зафиксированной цене.
	adjusted, err := f.svc.AdjustQuantity(context.Background(), 1, res.Item.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(900), adjusted.Item.Total)
	assert.Equal(t, int64(300), adjusted.Item.UnitPrice)
}

func TestAddLineItemQuantityMustBePositive(t *testing.T) {
	f := newLineItemFixture(t)
	session := f.openSession(t)

	_, err := f.svc.AddLineItem(context.Background(), AddLineItemInput{
		ClubID: 1, SessionID: session.ID, ServiceID: f.water.ID, Quantity: 0,
	})
	assert.ErrorIs(t, err, ErrQuantityNotPositive)
}

func TestAddLineItemToFinishedSession(t *testing.T) {
	f := newLineItemFixture(t)
	session := f.openSession(t)
	_, err := f.sessions.CheckOut(context.Background(), 1, session.ID, nil)
	require.NoError(t, err)

	_, err = f.svc.AddLineItem(context.Background(), AddLineItemInput{
		ClubID: 1, SessionID: session.ID, ServiceID: f.water.ID, Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrSessionNotPlaying)
}

func TestAddLineItemInactiveServiceNeedsOverride(t *testing.T) {
	f := newLineItemFixture(t)
	session := f.openSession(t)

	retired := *f.water
	retired.Status = models.ServiceStatusInactive
	require.NoError(t, f.services.Update(context.Background(), &retired))

	_, err := f.svc.AddLineItem(context.Background(), AddLineItemInput{
		ClubID: 1, SessionID: session.ID, ServiceID: f.water.ID, Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrServiceInactive)

	res, err := f.svc.AddLineItem(context.Background(), AddLineItemInput{
		ClubID: 1, SessionID: session.ID, ServiceID: f.water.ID, Quantity: 1, Override: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(300), res.Item.Total)
}

func TestAddTimeBasedServiceToMemberNeedsOverride(t *testing.T) {
	f := newLineItemFixture(t)
	end := time.Now().AddDate(0, 1, 0)
	f.players.players[f.player.ID].MembershipEndDate = &end
	session := f.openSession(t)

	_, err := f.svc.AddLineItem(context.Background(), AddLineItemInput{
		ClubID: 1, SessionID: session.ID, ServiceID: f.courtTime.ID, Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrMembershipCoversService)

	// Оверрайд оператора пробивает правило, нечленских услуг оно не касается.
	res, err := f.svc.AddLineItem(context.Background(), AddLineItemInput{
		ClubID: 1, SessionID: session.ID, ServiceID: f.courtTime.ID, Quantity: 1, Override: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1500), res.Item.Total)

	_, err = f.svc.AddLineItem(context.Background(), AddLineItemInput{
		ClubID: 1, SessionID: session.ID, ServiceID: f.water.ID, Quantity: 1,
	})
	require.NoError(t, err)
}

func TestExpiredMembershipDoesNotBlockTimeBased(t *testing.T) {
	f := newLineItemFixture(t)
	end := time.Now().AddDate(0, 0, -1)
	f.players.players[f.player.ID].MembershipEndDate = &end
	session := f.openSession(t)

	_, err := f.svc.AddLineItem(context.Background(), AddLineItemInput{
		ClubID: 1, SessionID: session.ID, ServiceID: f.courtTime.ID, Quantity: 1,
	})
	require.NoError(t, err)
}

func TestAdjustQuantityToZeroRemovesItem(t *testing.T) {
	f := newLineItemFixture(t)
	session := f.openSession(t)

	res, err := f.svc.AddLineItem(context.Background(), AddLineItemInput{
		ClubID: 1, SessionID: session.ID, ServiceID: f.water.ID, Quantity: 1,
	})
	require.NoError(t, err)

	removed, err := f.svc.AdjustQuantity(context.Background(), 1, res.Item.ID, -1)
	require.NoError(t, err)
	assert.True(t, removed.Removed)
	assert.Nil(t, removed.Item)
	assert.Zero(t, removed.RunningTotal)

	_, err = f.items.GetByID(context.Background(), 1, res.Item.ID)
	assert.Error(t, err)
}

func TestAdjustQuantityOnFinishedSession(t *testing.T) {
	f := newLineItemFixture(t)
	session := f.openSession(t)
	res, err := f.svc.AddLineItem(context.Background(), AddLineItemInput{
		ClubID: 1, SessionID: session.ID, ServiceID: f.water.ID, Quantity: 1,
	})
	require.NoError(t, err)
	_, err = f.sessions.CheckOut(context.Background(), 1, session.ID, nil)
	require.NoError(t, err)

	_, err = f.svc.AdjustQuantity(context.Background(), 1, res.Item.ID, 1)
	assert.ErrorIs(t, err, ErrSessionNotPlaying)
}

func TestRemoveLineItem(t *testing.T) {
	f := newLineItemFixture(t)
	session := f.openSession(t)

	first, err := f.svc.AddLineItem(context.Background(), AddLineItemInput{
		ClubID: 1, SessionID: session.ID, ServiceID: f.water.ID, Quantity: 2,
	})
	require.NoError(t, err)
	_, err = f.svc.AddLineItem(context.Background(), AddLineItemInput{
		ClubID: 1, SessionID: session.ID, ServiceID: f.courtTime.ID, Quantity: 1,
	})
	require.NoError(t, err)

	res, err := f.svc.RemoveLineItem(context.Background(), 1, first.Item.ID)
	require.NoError(t, err)
	assert.True(t, res.Removed)
	assert.Equal(t, int64(1500), res.RunningTotal)
}

func TestLineItemMutationsWithCrossClubScope(t *testing.T) {
	f := newLineItemFixture(t)
	session := f.openSession(t)

	// Супер-роль передаёт clubID == 0: позиция всё равно создаётся в
	// клубе сессии, и последующие правки идут туда же.
	res, err := f.svc.AddLineItem(context.Background(), AddLineItemInput{
		ClubID: 0, SessionID: session.ID, ServiceID: f.water.ID, Quantity: 1,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Item)
	assert.Equal(t, 1, res.Item.ClubID)

	adjusted, err := f.svc.AdjustQuantity(context.Background(), 0, res.Item.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, adjusted.Item.Quantity)
	assert.Equal(t, int64(900), adjusted.RunningTotal)

	removed, err := f.svc.RemoveLineItem(context.Background(), 0, res.Item.ID)
	require.NoError(t, err)
	assert.True(t, removed.Removed)
	assert.Zero(t, removed.RunningTotal)
}

func TestRemoveLineItemUnknown(t *testing.T) {
	f := newLineItemFixture(t)
	_, err := f.svc.RemoveLineItem(context.Background(), 1, 42)
	assert.ErrorIs(t, err, ErrLineItemNotFound)
}
