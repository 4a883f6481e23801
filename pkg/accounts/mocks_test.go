package accounts

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"musicosbooking.pt/api/pkg/models"
)

// MockUserStore is an in-memory UserStore
type MockUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
	Err   error
}

func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[string]*models.User)}
}

func (m *MockUserStore) Create(_ context.Context, user *models.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return "", ErrEmailTaken
		}
		if user.NIF != "" && u.NIF == user.NIF {
			return "", ErrNIFTaken
		}
	}
	user.ID = bson.NewObjectID()
	stored := *user
	m.users[user.UID()] = &stored
	return user.UID(), nil
}

func (m *MockUserStore) ByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockUserStore) ByID(_ context.Context, uid string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[uid]
	if !ok {
		return nil, ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (m *MockUserStore) RecordLogin(_ context.Context, uid string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[uid]
	if !ok {
		return ErrUserNotFound
	}
	u.LoginCount++
	u.LastLogin = &at
	return nil
}

func (m *MockUserStore) UpdateProfile(_ context.Context, uid string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[uid]
	if !ok {
		return ErrUserNotFound
	}
	for k, v := range fields {
		switch k {
		case "nome":
			u.Name = v.(string)
		case "telefone":
			u.Phone = v.(string)
		case "updated_at":
			u.UpdatedAt = v.(time.Time)
		default:
			return errors.New("unexpected field " + k)
		}
	}
	return nil
}

func (m *MockUserStore) Deactivate(uid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[uid].Active = false
}

type session struct {
	id  models.Identity
	ttl time.Duration
}

// MockSessionStore keeps sessions and reset tokens in maps
type MockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]session
	resets   map[string]string
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{sessions: make(map[string]session), resets: make(map[string]string)}
}

func (m *MockSessionStore) Create(_ context.Context, token string, id models.Identity, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = session{id: id, ttl: ttl}
	return nil
}

func (m *MockSessionStore) Lookup(_ context.Context, token string) (models.Identity, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	return s.id, ok, nil
}

func (m *MockSessionStore) Revoke(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *MockSessionStore) SaveResetToken(_ context.Context, token, uid string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets[token] = uid
	return nil
}
