//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-menu-builder/internal/domain"
	"telegram-menu-builder/internal/domain/model"
	"telegram-menu-builder/internal/domain/ports/adapter"
	"telegram-menu-builder/internal/domain/ports/repository"
)

// =============================
// In-memory storage
// =============================

// memData holds value copies only, so a snapshot is a plain clone.
type memData struct {
	nextID  int64
	tenants []model.Tenant
	users   []model.EndUser
	menus   []model.Menu
	buttons []model.Button
	steps   []model.ActionStep
}

func (d memData) clone() memData {
	out := memData{nextID: d.nextID}
	out.tenants = append([]model.Tenant(nil), d.tenants...)
	out.menus = append([]model.Menu(nil), d.menus...)
	out.buttons = append([]model.Button(nil), d.buttons...)
	out.steps = append([]model.ActionStep(nil), d.steps...)
	out.users = make([]model.EndUser, len(d.users))
	for i, u := range d.users {
		u.Path = append(model.Path(nil), u.Path...)
		out.users[i] = u
	}
	return out
}

type memStore struct {
	mu sync.Mutex
	d  memData
}

func newMemStore() *memStore { return &memStore{} }

func (s *memStore) id() int64 {
	s.d.nextID++
	return s.d.nextID
}

func (s *memStore) snapshot() memData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.clone()
}

func (s *memStore) restore(d memData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d = d
}

// =============================
// Repositories
// =============================

// ---- Tenants ----

type MockTenantRepo struct {
	s *memStore

	SaveFunc func(ctx context.Context, tx repository.Tx, t *model.Tenant) error
}

var _ repository.TenantRepository = (*MockTenantRepo)(nil)

func NewMockTenantRepo(s *memStore) *MockTenantRepo { return &MockTenantRepo{s: s} }

func (r *MockTenantRepo) Save(ctx context.Context, tx repository.Tx, t *model.Tenant) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, t)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.d.tenants {
		if x.Token == t.Token {
			return domain.ErrAlreadyExists
		}
	}
	t.ID = r.s.id()
	r.s.d.tenants = append(r.s.d.tenants, *t)
	return nil
}

func (r *MockTenantRepo) FindByToken(ctx context.Context, tx repository.Tx, token string) (*model.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.d.tenants {
		if x.Token == token {
			t := x
			return &t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockTenantRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.d.tenants {
		if x.ID == id {
			t := x
			return &t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockTenantRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*model.Tenant, 0, len(r.s.d.tenants))
	for _, x := range r.s.d.tenants {
		t := x
		out = append(out, &t)
	}
	return out, nil
}

// ---- End users ----

type MockEndUserRepo struct {
	s *memStore
}

var _ repository.EndUserRepository = (*MockEndUserRepo)(nil)

func NewMockEndUserRepo(s *memStore) *MockEndUserRepo { return &MockEndUserRepo{s: s} }

func (r *MockEndUserRepo) FindOrCreate(ctx context.Context, tx repository.Tx, tenantID, telegramID int64) (*model.EndUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.d.users {
		if u.TenantID == tenantID && u.TelegramID == telegramID {
			out := u
			out.Path = append(model.Path(nil), u.Path...)
			return &out, nil
		}
	}
	u := model.NewEndUser(tenantID, telegramID)
	u.ID = r.s.id()
	r.s.d.users = append(r.s.d.users, *u)
	return u, nil
}

func (r *MockEndUserRepo) UpdatePath(ctx context.Context, tx repository.Tx, id int64, path model.Path) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.d.users {
		if r.s.d.users[i].ID == id {
			r.s.d.users[i].Path = append(model.Path(nil), path...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// PathOf is a test helper reading the stored path directly.
func (r *MockEndUserRepo) PathOf(tenantID, telegramID int64) string {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.d.users {
		if u.TenantID == tenantID && u.TelegramID == telegramID {
			return u.Path.String()
		}
	}
	return ""
}

// ---- Menus and buttons ----

type MockMenuRepo struct {
	s *memStore
}

var _ repository.MenuRepository = (*MockMenuRepo)(nil)

func NewMockMenuRepo(s *memStore) *MockMenuRepo { return &MockMenuRepo{s: s} }

func (r *MockMenuRepo) CreateMenu(ctx context.Context, tx repository.Tx, m *model.Menu) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.d.menus {
		if x.TenantID == m.TenantID && x.Name == m.Name {
			return domain.ErrAlreadyExists
		}
	}
	m.ID = r.s.id()
	r.s.d.menus = append(r.s.d.menus, *m)
	return nil
}

func (r *MockMenuRepo) FindMenu(ctx context.Context, tx repository.Tx, tenantID int64, name string) (*model.Menu, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.d.menus {
		if x.TenantID == tenantID && x.Name == name {
			m := x
			return &m, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockMenuRepo) ListMenus(ctx context.Context, tx repository.Tx, tenantID int64) ([]*model.Menu, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Menu
	for _, x := range r.s.d.menus {
		if x.TenantID == tenantID {
			m := x
			out = append(out, &m)
		}
	}
	return out, nil
}

func (r *MockMenuRepo) CreateButton(ctx context.Context, tx repository.Tx, b *model.Button) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.d.buttons {
		if x.MenuID == b.MenuID && x.Label == b.Label {
			return domain.ErrAlreadyExists
		}
	}
	b.ID = r.s.id()
	r.s.d.buttons = append(r.s.d.buttons, *b)
	return nil
}

func (r *MockMenuRepo) ListButtons(ctx context.Context, tx repository.Tx, menuID int64) ([]*model.Button, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Button
	for _, x := range r.s.d.buttons {
		if x.MenuID == menuID {
			b := x
			out = append(out, &b)
		}
	}
	return out, nil
}

func (r *MockMenuRepo) CountReferences(ctx context.Context, tx repository.Tx, tenantID int64, kind model.ButtonKind, reference string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	menus := map[int64]bool{}
	for _, m := range r.s.d.menus {
		if m.TenantID == tenantID {
			menus[m.ID] = true
		}
	}
	n := 0
	for _, b := range r.s.d.buttons {
		if menus[b.MenuID] && b.Kind == kind && b.Reference == reference {
			n++
		}
	}
	return n, nil
}

// ---- Actions ----

type MockActionRepo struct {
	s *memStore

	AppendStepFunc func(ctx context.Context, tx repository.Tx, tenantID int64, name, text string) (*model.ActionStep, error)
}

var _ repository.ActionRepository = (*MockActionRepo)(nil)

func NewMockActionRepo(s *memStore) *MockActionRepo { return &MockActionRepo{s: s} }

func (r *MockActionRepo) AppendStep(ctx context.Context, tx repository.Tx, tenantID int64, name, text string) (*model.ActionStep, error) {
	if r.AppendStepFunc != nil {
		return r.AppendStepFunc(ctx, tx, tenantID, name, text)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	next := 0
	for _, x := range r.s.d.steps {
		if x.TenantID == tenantID && x.Name == name && x.StepOrder >= next {
			next = x.StepOrder + 1
		}
	}
	st := model.ActionStep{ID: r.s.id(), TenantID: tenantID, Name: name, StepOrder: next, Text: text}
	r.s.d.steps = append(r.s.d.steps, st)
	return &st, nil
}

func (r *MockActionRepo) ListSteps(ctx context.Context, tx repository.Tx, tenantID int64, name string) ([]*model.ActionStep, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.ActionStep{}
	for _, x := range r.s.d.steps {
		if x.TenantID == tenantID && x.Name == name {
			st := x
			out = append(out, &st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StepOrder < out[j].StepOrder })
	return out, nil
}

func (r *MockActionRepo) ListActions(ctx context.Context, tx repository.Tx, tenantID int64) ([]model.ActionSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.ActionSummary
	idx := map[string]int{}
	for _, x := range r.s.d.steps {
		if x.TenantID != tenantID {
			continue
		}
		if i, ok := idx[x.Name]; ok {
			out[i].Steps++
			continue
		}
		idx[x.Name] = len(out)
		out = append(out, model.ActionSummary{Name: x.Name, Steps: 1})
	}
	return out, nil
}

func (r *MockActionRepo) Delete(ctx context.Context, tx repository.Tx, tenantID int64, name string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.d.steps[:0:0]
	var n int64
	for _, x := range r.s.d.steps {
		if x.TenantID == tenantID && x.Name == name {
			n++
			continue
		}
		kept = append(kept, x)
	}
	r.s.d.steps = kept
	return n, nil
}

// ---- Mock TransactionManager ----

// MockTxManager restores the store when fn fails, mirroring a rollback.
type MockTxManager struct {
	store *memStore

	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager(store *memStore) *MockTxManager {
	return &MockTxManager{store: store}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	if m.store == nil {
		return fn(ctx, repository.NoTX)
	}
	snap := m.store.snapshot()
	if err := fn(ctx, repository.NoTX); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// =============================
// Adapters
// =============================

// ---- Mock Messenger ----

type SentMessage struct {
	Credential string
	ChatID     int64
	Text       string
	Keyboard   []string
}

type MockMessenger struct {
	mu       sync.Mutex
	Sent     []SentMessage
	Webhooks map[string]string

	SendMessageFunc func(ctx context.Context, credential string, chatID int64, text string, keyboard []string) error
	SetWebhookFunc  func(ctx context.Context, credential, url string) error
	GetMeFunc       func(ctx context.Context, credential string) (bool, error)
}

var _ adapter.Messenger = (*MockMessenger)(nil)

func NewMockMessenger() *MockMessenger {
	return &MockMessenger{Webhooks: map[string]string{}}
}

func (m *MockMessenger) SendMessage(ctx context.Context, credential string, chatID int64, text string, keyboard []string) error {
	if m.SendMessageFunc != nil {
		if err := m.SendMessageFunc(ctx, credential, chatID, text, keyboard); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentMessage{Credential: credential, ChatID: chatID, Text: text, Keyboard: keyboard})
	return nil
}

func (m *MockMessenger) SetWebhook(ctx context.Context, credential, url string) error {
	if m.SetWebhookFunc != nil {
		if err := m.SetWebhookFunc(ctx, credential, url); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Webhooks[credential] = url
	return nil
}

func (m *MockMessenger) GetMe(ctx context.Context, credential string) (bool, error) {
	if m.GetMeFunc != nil {
		return m.GetMeFunc(ctx, credential)
	}
	return strings.Contains(credential, ":"), nil
}

// Drain returns and forgets everything sent so far.
func (m *MockMessenger) Drain() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.Sent
	m.Sent = nil
	return out
}

// ---- In-memory Locker ----

type MockLocker struct {
	mu    sync.Mutex
	held  map[string]string
	Taken []string
	ErrOn map[string]error
}

var _ adapter.Locker = (*MockLocker)(nil)

func NewMockLocker() *MockLocker {
	return &MockLocker{held: map[string]string{}, ErrOn: map[string]error{}}
}

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err, bad := l.ErrOn[key]; bad {
		return "", err
	}
	if tok, ok := l.held[key]; ok && tok != "" {
		return "", domain.ErrLockBusy
	}
	tok := uuid.NewString()
	l.held[key] = tok
	l.Taken = append(l.Taken, key)
	return tok, nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		return nil
	}
	return errors.New("unlock token mismatch")
}

func (l *MockLocker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
