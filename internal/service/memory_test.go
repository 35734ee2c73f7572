package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ali-plastic-pos/internal/model"
	"ali-plastic-pos/internal/repository"
	"ali-plastic-pos/internal/ws"
)

// memoryStore backs every fake repository. WithinTransaction snapshots it and
// restores the snapshot when fn fails, like a database rollback.
type memoryStore struct {
	mu        sync.Mutex
	products  map[uuid.UUID]model.Product
	sales     []model.Sale
	movements []model.StockMovement
	deductErr map[uuid.UUID]error
	saleErr   error
	now       time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		products:  make(map[uuid.UUID]model.Product),
		deductErr: make(map[uuid.UUID]error),
		now:       time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local),
	}
}

func (s *memoryStore) repos() repository.Repositories {
	return repository.Repositories{
		Products:  &memoryProducts{s},
		Sales:     &memorySales{s},
		Movements: &memoryMovements{s},
	}
}

func (s *memoryStore) WithinTransaction(ctx context.Context, fn func(repository.Repositories) error) error {
	s.mu.Lock()
	products := make(map[uuid.UUID]model.Product, len(s.products))
	for k, v := range s.products {
		products[k] = v
	}
	sales := append([]model.Sale(nil), s.sales...)
	movements := append([]model.StockMovement(nil), s.movements...)
	s.mu.Unlock()

	if err := fn(s.repos()); err != nil {
		s.mu.Lock()
		s.products, s.sales, s.movements = products, sales, movements
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memoryStore) put(p model.Product) model.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		s.now = s.now.Add(time.Second)
		p.CreatedAt = s.now
	}
	s.products[p.ID] = p
	return p
}

func (s *memoryStore) product(id uuid.UUID) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id]
}

type memoryProducts struct{ s *memoryStore }

func (r *memoryProducts) Create(ctx context.Context, p *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.products {
		if existing.ProdName == p.ProdName && existing.UnitVal.Equal(p.UnitVal) && existing.UnitType == p.UnitType {
			return gorm.ErrDuplicatedKey
		}
	}
	stored := r.s.put(*p)
	*p = stored
	return nil
}

func (r *memoryProducts) FindAll(ctx context.Context) ([]model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryProducts) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *memoryProducts) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *memoryProducts) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryProducts) FindByIdentity(ctx context.Context, name string, unitVal decimal.Decimal, unitType string) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.ProdName == name && p.UnitVal.Equal(unitVal) && p.UnitType == unitType {
			found := p
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryProducts) Update(ctx context.Context, p *model.Product, columns ...string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r *memoryProducts) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.products, id)
	return nil
}

func (r *memoryProducts) Restock(ctx context.Context, id uuid.UUID, in repository.RestockInput) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.TotalItems = p.TotalItems.Add(in.AddedItems)
	p.UnitCost, p.SellPrice, p.Profit = in.UnitCost, in.SellPrice, in.Profit
	p.UpdatedBy = in.UpdatedBy
	r.s.products[id] = p
	return nil
}

func (r *memoryProducts) DeductStock(ctx context.Context, id uuid.UUID, qty decimal.Decimal, allowNegative bool, updatedBy string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.deductErr[id]; err != nil {
		return err
	}
	p, ok := r.s.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if !allowNegative && p.TotalItems.LessThan(qty) {
		return repository.ErrInsufficientStock
	}
	p.TotalItems = p.TotalItems.Sub(qty)
	p.UpdatedBy = updatedBy
	r.s.products[id] = p
	return nil
}

type memorySales struct{ s *memoryStore }

func (r *memorySales) Create(ctx context.Context, sale *model.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.saleErr != nil {
		return r.s.saleErr
	}
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	r.s.sales = append(r.s.sales, *sale)
	return nil
}

func (r *memorySales) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sale := range r.s.sales {
		if sale.ID == id {
			found := sale
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memorySales) FindAll(ctx context.Context, limit int) ([]model.Sale, error) {
	r.s.mu.Lock()
	out := append([]model.Sale(nil), r.s.sales...)
	r.s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memorySales) FindBetween(ctx context.Context, start, end time.Time) ([]model.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Sale
	for _, sale := range r.s.sales {
		if !sale.CreatedAt.Before(start) && !sale.CreatedAt.After(end) {
			out = append(out, sale)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memoryMovements struct{ s *memoryStore }

func (r *memoryMovements) Create(ctx context.Context, movements ...*model.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range movements {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = r.s.now
		}
		r.s.movements = append(r.s.movements, *m)
	}
	return nil
}

func (r *memoryMovements) GetStockMovement(ctx context.Context, start, end time.Time) ([]repository.StockMovementData, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byDay := map[string]*repository.StockMovementData{}
	var days []string
	for _, m := range r.s.movements {
		if m.CreatedAt.Before(start) || m.CreatedAt.After(end) {
			continue
		}
		day := m.CreatedAt.Format("2006-01-02")
		d, ok := byDay[day]
		if !ok {
			d = &repository.StockMovementData{Date: day}
			byDay[day] = d
			days = append(days, day)
		}
		if m.Quantity.IsPositive() {
			d.Inbound = d.Inbound.Add(m.Quantity)
		} else {
			d.Outbound = d.Outbound.Sub(m.Quantity)
		}
	}
	sort.Strings(days)
	out := make([]repository.StockMovementData, 0, len(days))
	for _, day := range days {
		out = append(out, *byDay[day])
	}
	return out, nil
}

type memoryUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
	roles *memoryRoles
}

func newMemoryUsers(roles *memoryRoles) *memoryUsers {
	return &memoryUsers{users: make(map[uuid.UUID]model.User), roles: roles}
}

func (r *memoryUsers) withRole(u model.User) *model.User {
	if u.RoleID != nil && r.roles != nil {
		if role, ok := r.roles.byID[*u.RoleID]; ok {
			u.Role = &role
		}
	}
	return &u
}

func (r *memoryUsers) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return r.withRole(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryUsers) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.withRole(u), nil
}

func (r *memoryUsers) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUsers) Update(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUsers) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *memoryUsers) UpdatePrivileges(ctx context.Context, userID uuid.UUID, privileges []model.Privilege) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Privileges = privileges
	r.users[userID] = u
	return nil
}

func (r *memoryUsers) SetAuthorized(ctx context.Context, userID uuid.UUID, authorized bool, updatedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.IsAuthorized = authorized
	u.UpdatedBy = updatedBy
	r.users[userID] = u
	return nil
}

func (r *memoryUsers) FindAll(ctx context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *r.withRole(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *memoryUsers) UpdateTokenVersion(ctx context.Context, userID uuid.UUID, version string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.TokenVersion = version
	r.users[userID] = u
	return nil
}

type memoryRoles struct {
	byID map[uint]model.Role
}

func newMemoryRoles() *memoryRoles {
	view := model.Privilege{ID: 1, Code: model.PrivProductView}
	sale := model.Privilege{ID: 2, Code: model.PrivSaleCreate}
	approve := model.Privilege{ID: 3, Code: model.PrivUserApprove}
	return &memoryRoles{byID: map[uint]model.Role{
		1: {ID: 1, Code: model.RoleOwner, Privileges: []model.Privilege{view, sale, approve}},
		2: {ID: 2, Code: model.RoleCashier, Privileges: []model.Privilege{view, sale}},
	}}
}

func (r *memoryRoles) FindAll(ctx context.Context) ([]model.Role, error) {
	out := make([]model.Role, 0, len(r.byID))
	for _, role := range r.byID {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRoles) FindByID(ctx context.Context, id uint) (*model.Role, error) {
	role, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &role, nil
}

func (r *memoryRoles) FindByCode(ctx context.Context, code string) (*model.Role, error) {
	for _, role := range r.byID {
		if role.Code == code {
			found := role
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryRoles) AssignPrivileges(ctx context.Context, role *model.Role, privileges []model.Privilege) error {
	role.Privileges = privileges
	r.byID[role.ID] = *role
	return nil
}

func (r *memoryRoles) SeedDefaults(ctx context.Context) error { return nil }

type recordingPublisher struct {
	mu     sync.Mutex
	events []ws.Event
}

func (p *recordingPublisher) Publish(ev ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) ofType(t string) []ws.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []ws.Event
	for _, ev := range p.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type recordingScheduler struct {
	calls [][]uuid.UUID
}

func (s *recordingScheduler) EnqueueLowStockScan(ctx context.Context, ids []uuid.UUID) error {
	s.calls = append(s.calls, ids)
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var (
	_ repository.Transactor        = (*memoryStore)(nil)
	_ repository.ProductRepository = (*memoryProducts)(nil)
	_ repository.SaleRepository    = (*memorySales)(nil)
	_ repository.UserRepository    = (*memoryUsers)(nil)
	_ repository.RoleRepository    = (*memoryRoles)(nil)
)
