package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/Dosada05/club-billing/models"
	"github.com/Dosada05/club-billing/repositories"
)

// txDB возвращает *sql.DB над фиктивным драйвером: BeginTx/Commit/Rollback
// работают, но никуда не пишут. Фейковые репозитории игнорируют exec.
func txDB(t *testing.T) *sql.DB {
	t.Helper()
	db := sql.OpenDB(nopConnector{})
	t.Cleanup(func() { db.Close() })
	return db
}

type nopConnector struct{}

func (nopConnector) Connect(context.Context) (driver.Conn, error) { return nopConn{}, nil }
func (nopConnector) Driver() driver.Driver                        { return nopDriver{} }

type nopDriver struct{}

func (nopDriver) Open(string) (driver.Conn, error) { return nopConn{}, nil }

type nopConn struct{}

func (nopConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (nopConn) Close() error                        { return nil }
func (nopConn) Begin() (driver.Tx, error)           { return nopTx{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

type fakePlayerRepo struct {
	players map[int]*models.Player
	nextID  int
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[int]*models.Player), nextID: 1}
}

func (r *fakePlayerRepo) add(p models.Player) *models.Player {
	p.ID = r.nextID
	r.nextID++
	r.players[p.ID] = &p
	return &p
}

func (r *fakePlayerRepo) Create(_ context.Context, player *models.Player) error {
	for _, existing := range r.players {
		if existing.ClubID == player.ClubID && existing.Phone != nil && player.Phone != nil && *existing.Phone == *player.Phone {
			return repositories.ErrPlayerPhoneConflict
		}
	}
	player.ID = r.nextID
	r.nextID++
	stored := *player
	r.players[player.ID] = &stored
	return nil
}

func (r *fakePlayerRepo) GetByID(_ context.Context, clubID, id int) (*models.Player, error) {
	p, ok := r.players[id]
	if !ok || (clubID != 0 && p.ClubID != clubID) {
		return nil, repositories.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePlayerRepo) List(_ context.Context, filter repositories.ListPlayersFilter) ([]models.Player, error) {
	var out []models.Player
	for _, p := range r.players {
		if filter.ClubID != 0 && p.ClubID != filter.ClubID {
			continue
		}
		if filter.Tier != nil && p.Tier != *filter.Tier {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePlayerRepo) Update(_ context.Context, player *models.Player) error {
	existing, ok := r.players[player.ID]
	if !ok || existing.ClubID != player.ClubID {
		return repositories.ErrPlayerNotFound
	}
	stored := *player
	r.players[player.ID] = &stored
	return nil
}

func (r *fakePlayerRepo) UpdateMembershipEndDate(_ context.Context, _ repositories.SQLExecutor, clubID, playerID int, endDate time.Time) error {
	p, ok := r.players[playerID]
	if !ok || p.ClubID != clubID {
		return repositories.ErrPlayerNotFound
	}
	end := endDate
	p.MembershipEndDate = &end
	return nil
}

func (r *fakePlayerRepo) UpdatePhotoKey(_ context.Context, clubID, playerID int, photoKey *string) error {
	p, ok := r.players[playerID]
	if !ok || p.ClubID != clubID {
		return repositories.ErrPlayerNotFound
	}
	p.PhotoKey = photoKey
	return nil
}

func (r *fakePlayerRepo) Count(_ context.Context, clubID int) (int, error) {
	n := 0
	for _, p := range r.players {
		if clubID == 0 || p.ClubID == clubID {
			n++
		}
	}
	return n, nil
}

func (r *fakePlayerRepo) CountActiveMemberships(_ context.Context, clubID int, at time.Time) (int, error) {
	n := 0
	for _, p := range r.players {
		if (clubID == 0 || p.ClubID == clubID) && p.HasActiveMembership(at) {
			n++
		}
	}
	return n, nil
}

type fakeServiceRepo struct {
	services map[int]*models.Service
	nextID   int
}

func newFakeServiceRepo() *fakeServiceRepo {
	return &fakeServiceRepo{services: make(map[int]*models.Service), nextID: 1}
}

func (r *fakeServiceRepo) add(s models.Service) *models.Service {
	s.ID = r.nextID
	r.nextID++
	r.services[s.ID] = &s
	return &s
}

func (r *fakeServiceRepo) Create(_ context.Context, service *models.Service) error {
	for _, existing := range r.services {
		if existing.ClubID == service.ClubID && existing.Name == service.Name {
			return repositories.ErrServiceNameConflict
		}
	}
	service.ID = r.nextID
	r.nextID++
	stored := *service
	r.services[service.ID] = &stored
	return nil
}

func (r *fakeServiceRepo) GetByID(_ context.Context, clubID, id int) (*models.Service, error) {
	s, ok := r.services[id]
	if !ok || (clubID != 0 && s.ClubID != clubID) {
		return nil, repositories.ErrServiceNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeServiceRepo) List(_ context.Context, filter repositories.ListServicesFilter) ([]models.Service, error) {
	var out []models.Service
	for _, s := range r.services {
		if filter.ClubID != 0 && s.ClubID != filter.ClubID {
			continue
		}
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeServiceRepo) Update(_ context.Context, service *models.Service) error {
	existing, ok := r.services[service.ID]
	if !ok || existing.ClubID != service.ClubID {
		return repositories.ErrServiceNotFound
	}
	stored := *service
	r.services[service.ID] = &stored
	return nil
}

type fakeLineItemRepo struct {
	items  map[int]*models.SessionLineItem
	nextID int
}

func newFakeLineItemRepo() *fakeLineItemRepo {
	return &fakeLineItemRepo{items: make(map[int]*models.SessionLineItem), nextID: 1}
}

func (r *fakeLineItemRepo) Create(_ context.Context, item *models.SessionLineItem) error {
	item.ID = r.nextID
	r.nextID++
	item.CreatedAt = time.Now()
	stored := *item
	r.items[item.ID] = &stored
	return nil
}

func (r *fakeLineItemRepo) GetByID(_ context.Context, clubID, id int) (*models.SessionLineItem, error) {
	item, ok := r.items[id]
	if !ok || (clubID != 0 && item.ClubID != clubID) {
		return nil, repositories.ErrLineItemNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *fakeLineItemRepo) ListBySession(_ context.Context, clubID, sessionID int) ([]models.SessionLineItem, error) {
	var out []models.SessionLineItem
	for _, item := range r.items {
		if item.SessionID != sessionID {
			continue
		}
		if clubID != 0 && item.ClubID != clubID {
			continue
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeLineItemRepo) UpdateQuantity(_ context.Context, clubID, id, quantity int, total int64) error {
	item, ok := r.items[id]
	if !ok || item.ClubID != clubID {
		return repositories.ErrLineItemNotFound
	}
	item.Quantity = quantity
	item.Total = total
	return nil
}

func (r *fakeLineItemRepo) Delete(_ context.Context, clubID, id int) error {
	item, ok := r.items[id]
	if !ok || item.ClubID != clubID {
		return repositories.ErrLineItemNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeLineItemRepo) SumBySession(_ context.Context, _ repositories.SQLExecutor, clubID, sessionID int) (int64, error) {
	var total int64
	for _, item := range r.items {
		if item.SessionID == sessionID && (clubID == 0 || item.ClubID == clubID) {
			total += item.Total
		}
	}
	return total, nil
}

type fakeSessionRepo struct {
	sessions map[int]*models.Session
	items    *fakeLineItemRepo
	nextID   int
}

func newFakeSessionRepo(items *fakeLineItemRepo) *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[int]*models.Session), items: items, nextID: 1}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *models.Session) error {
	for _, existing := range r.sessions {
		if existing.ClubID == session.ClubID && existing.PlayerID == session.PlayerID &&
			existing.Status == models.SessionStatusPlaying {
			return repositories.ErrSessionPlayingConflict
		}
	}
	session.ID = r.nextID
	r.nextID++
	stored := *session
	r.sessions[session.ID] = &stored
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, clubID, id int) (*models.Session, error) {
	s, ok := r.sessions[id]
	if !ok || (clubID != 0 && s.ClubID != clubID) {
		return nil, repositories.ErrSessionNotFound
	}
	cp := *s
	if r.items != nil {
		cp.LineItems, _ = r.items.ListBySession(ctx, clubID, id)
	}
	return &cp, nil
}

func (r *fakeSessionRepo) List(ctx context.Context, filter repositories.ListSessionsFilter) ([]models.Session, error) {
	var out []models.Session
	for _, s := range r.sessions {
		if filter.ClubID != 0 && s.ClubID != filter.ClubID {
			continue
		}
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		if filter.PlayerID != nil && s.PlayerID != *filter.PlayerID {
			continue
		}
		if filter.From != nil && s.CheckInTime.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !s.CheckInTime.Before(*filter.To) {
			continue
		}
		if filter.ActiveFrom != nil {
			checkedIn := !s.CheckInTime.Before(*filter.ActiveFrom)
			checkedOut := s.CheckOutTime != nil && !s.CheckOutTime.Before(*filter.ActiveFrom)
			if !checkedIn && !checkedOut {
				continue
			}
		}
		cp := *s
		if r.items != nil {
			cp.LineItems, _ = r.items.ListBySession(ctx, filter.ClubID, s.ID)
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSessionRepo) GetForUpdate(_ context.Context, _ repositories.SQLExecutor, clubID, id int) (*models.Session, error) {
	s, ok := r.sessions[id]
	if !ok || (clubID != 0 && s.ClubID != clubID) {
		return nil, repositories.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) Finish(_ context.Context, _ repositories.SQLExecutor, clubID, id int, total int64, checkOutTime time.Time) error {
	s, ok := r.sessions[id]
	// Зеркало guard-апдейта: WHERE club_id = $n AND status = 'playing'
	// не различает причин нулевого совпадения, и wildcard-нуля у записи нет.
	if !ok || s.ClubID != clubID || s.Status != models.SessionStatusPlaying {
		return repositories.ErrSessionNotPlaying
	}
	s.Status = models.SessionStatusFinished
	s.Total = total
	out := checkOutTime
	s.CheckOutTime = &out
	return nil
}

func (r *fakeSessionRepo) CountByStatus(_ context.Context, clubID int, status models.SessionStatus) (int, error) {
	n := 0
	for _, s := range r.sessions {
		if (clubID == 0 || s.ClubID == clubID) && s.Status == status {
			n++
		}
	}
	return n, nil
}

type fakeMembershipRepo struct {
	payments []models.MembershipPayment
	nextID   int
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{nextID: 1}
}

func (r *fakeMembershipRepo) Create(_ context.Context, _ repositories.SQLExecutor, payment *models.MembershipPayment) error {
	payment.ID = r.nextID
	r.nextID++
	payment.CreatedAt = time.Now()
	r.payments = append(r.payments, *payment)
	return nil
}

func (r *fakeMembershipRepo) List(_ context.Context, filter repositories.ListMembershipPaymentsFilter) ([]models.MembershipPayment, error) {
	var out []models.MembershipPayment
	for _, p := range r.payments {
		if filter.ClubID != 0 && p.ClubID != filter.ClubID {
			continue
		}
		if filter.PlayerID != nil && p.PlayerID != *filter.PlayerID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type fakeExpenseRepo struct {
	expenses map[int]*models.Expense
	nextID   int
}

func newFakeExpenseRepo() *fakeExpenseRepo {
	return &fakeExpenseRepo{expenses: make(map[int]*models.Expense), nextID: 1}
}

func (r *fakeExpenseRepo) Create(_ context.Context, expense *models.Expense) error {
	expense.ID = r.nextID
	r.nextID++
	expense.CreatedAt = time.Now()
	stored := *expense
	r.expenses[expense.ID] = &stored
	return nil
}

func (r *fakeExpenseRepo) GetByID(_ context.Context, clubID, id int) (*models.Expense, error) {
	e, ok := r.expenses[id]
	if !ok || (clubID != 0 && e.ClubID != clubID) {
		return nil, repositories.ErrExpenseNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeExpenseRepo) List(_ context.Context, filter repositories.ListExpensesFilter) ([]models.Expense, error) {
	var out []models.Expense
	for _, e := range r.expenses {
		if filter.ClubID != 0 && e.ClubID != filter.ClubID {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeExpenseRepo) Update(_ context.Context, expense *models.Expense) error {
	existing, ok := r.expenses[expense.ID]
	if !ok || existing.ClubID != expense.ClubID {
		return repositories.ErrExpenseNotFound
	}
	stored := *expense
	r.expenses[expense.ID] = &stored
	return nil
}

func (r *fakeExpenseRepo) Delete(_ context.Context, clubID, id int) error {
	e, ok := r.expenses[id]
	if !ok || e.ClubID != clubID {
		return repositories.ErrExpenseNotFound
	}
	delete(r.expenses, id)
	return nil
}

type fakeStaffRepo struct {
	users  map[int]*models.StaffUser
	nextID int
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{users: make(map[int]*models.StaffUser), nextID: 1}
}

func (r *fakeStaffRepo) Create(_ context.Context, user *models.StaffUser) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repositories.ErrStaffEmailConflict
		}
	}
	user.ID = r.nextID
	r.nextID++
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeStaffRepo) GetByID(_ context.Context, id int) (*models.StaffUser, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrStaffNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeStaffRepo) GetByEmail(_ context.Context, email string) (*models.StaffUser, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrStaffNotFound
}
