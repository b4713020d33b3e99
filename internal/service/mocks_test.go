package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"blupr/internal/domain"
	"blupr/internal/repository"
)

type mockUserRepo struct {
	mu      sync.Mutex
	byID    map[string]domain.User
	byEmail map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[user.Email]; ok {
		return repository.ErrUserExists
	}
	m.byID[user.ID] = user
	m.byEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.byEmail[email]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

type mockResponseRepo struct {
	mu        sync.Mutex
	records   []domain.ResponseRecord
	appendErr error
	listErr   error
	listDelay time.Duration
}

func (m *mockResponseRepo) Append(_ context.Context, record domain.ResponseRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.records = append(m.records, record)
	return nil
}

func (m *mockResponseRepo) ListByIdentity(_ context.Context, identity string) ([]domain.ResponseRecord, error) {
	if m.listDelay > 0 {
		time.Sleep(m.listDelay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.ResponseRecord
	for _, r := range m.records {
		if r.Identity == identity {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockProfileRepo struct {
	mu         sync.Mutex
	profiles   map[string]domain.Profile
	creates    int
	upserts    int
	createErr  error
	nearestErr error
	lastLimit  int
}

func newMockProfileRepo(profiles ...domain.Profile) *mockProfileRepo {
	m := &mockProfileRepo{profiles: make(map[string]domain.Profile)}
	for _, p := range profiles {
		m.profiles[p.Identity] = p
	}
	return m
}

func (m *mockProfileRepo) Create(_ context.Context, profile domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.profiles[profile.Identity]; ok {
		return repository.ErrProfileExists
	}
	m.profiles[profile.Identity] = profile
	return nil
}

func (m *mockProfileRepo) Upsert(_ context.Context, profile domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	m.profiles[profile.Identity] = profile
	return nil
}

func (m *mockProfileRepo) GetByIdentity(_ context.Context, identity string) (domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[identity]
	if !ok {
		return domain.Profile{}, pgx.ErrNoRows
	}
	return p, nil
}

// Nearest ignora el vector: devuelve los candidatos ordenados por identidad.
func (m *mockProfileRepo) Nearest(_ context.Context, _ domain.BeliefVector, excludeIdentity string, limit int) ([]domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nearestErr != nil {
		return nil, m.nearestErr
	}
	m.lastLimit = limit
	ids := make([]string, 0, len(m.profiles))
	for id := range m.profiles {
		if id != excludeIdentity {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]domain.Profile, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.profiles[id])
	}
	return out, nil
}
