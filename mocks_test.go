package keygate_test

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	keygate "github.com/keygate/keygate"
)

// memoryUsers is an in-memory Users store with the same semantics as the bun
// repository: unique emails, a single refresh-token slot per user.
type memoryUsers struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*keygate.User
	byEmail map[string]uuid.UUID
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{
		byID:    map[uuid.UUID]*keygate.User{},
		byEmail: map[string]uuid.UUID{},
	}
}

var _ keygate.Users = (*memoryUsers)(nil)

func (m *memoryUsers) Create(ctx context.Context, user *keygate.User) (*keygate.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[user.Email]; exists {
		return nil, keygate.ErrEmailTaken
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = keygate.RoleUser
	}

	cp := *user
	m.byID[cp.ID] = &cp
	m.byEmail[cp.Email] = cp.ID
	return user, nil
}

func (m *memoryUsers) GetByEmail(ctx context.Context, email string) (*keygate.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, keygate.ErrUserNotFound
	}
	cp := *m.byID[id]
	return &cp, nil
}

func (m *memoryUsers) GetByID(ctx context.Context, id uuid.UUID) (*keygate.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.byID[id]
	if !ok {
		return nil, keygate.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *memoryUsers) Delete(ctx context.Context, id uuid.UUID) (*keygate.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.byID[id]
	if !ok {
		return nil, keygate.ErrUserNotFound
	}
	delete(m.byID, id)
	delete(m.byEmail, user.Email)
	return user, nil
}

func (m *memoryUsers) SaveRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	return m.setRefreshToken(id, token)
}

func (m *memoryUsers) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	return m.setRefreshToken(id, "")
}

func (m *memoryUsers) setRefreshToken(id uuid.UUID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.byID[id]
	if !ok {
		return keygate.ErrUserNotFound
	}
	user.RefreshToken = token
	return nil
}

func (m *memoryUsers) storedRefreshToken(id uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.byID[id]; ok {
		return user.RefreshToken
	}
	return ""
}

func (m *memoryUsers) setRole(id uuid.UUID, role keygate.UserRole) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.byID[id]; ok {
		user.Role = role
	}
}

// MockLogger implements keygate.Logger for assertions on log calls.
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, args ...any) { m.Called(msg, args) }
func (m *MockLogger) Info(msg string, args ...any)  { m.Called(msg, args) }
func (m *MockLogger) Warn(msg string, args ...any)  { m.Called(msg, args) }
func (m *MockLogger) Error(msg string, args ...any) { m.Called(msg, args) }

// nopLogger swallows everything; used where log output is irrelevant.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
