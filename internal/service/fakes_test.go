package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudyy74/teams-api/internal/models"
	"github.com/cloudyy74/teams-api/internal/storage"
)

type fakeTx struct {
	runFn func(context.Context, func(context.Context) error) error
}

func (f fakeTx) Run(ctx context.Context, fn func(context.Context) error) error {
	if f.runFn != nil {
		return f.runFn(ctx, fn)
	}
	return fn(ctx)
}

type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) {
	if len(plain) > 72 {
		return "", errors.New("unexpected long password")
	}
	return "hashed:" + plain, nil
}

func (fakeHasher) Compare(hash, plain string) bool {
	return hash != "" && hash == "hashed:"+plain
}

type fakeTeamChecker struct {
	existsFn func(context.Context, int64) (bool, error)
}

func (f fakeTeamChecker) ExistsTeam(ctx context.Context, id int64) (bool, error) {
	if f.existsFn != nil {
		return f.existsFn(ctx, id)
	}
	return true, nil
}

// memUsers is an in-memory stand-in for the user storage.
type memUsers struct {
	users     map[int64]*models.User
	nextID    int64
	lastLogin map[int64]time.Time
	failWith  error
}

func newMemUsers(users ...*models.User) *memUsers {
	m := &memUsers{users: map[int64]*models.User{}, lastLogin: map[int64]time.Time{}}
	for _, u := range users {
		m.users[u.ID] = u
		if u.ID > m.nextID {
			m.nextID = u.ID
		}
	}
	return m
}

func (m *memUsers) CreateUser(_ context.Context, u *models.User) (*models.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, storage.ErrEmailTaken
		}
	}
	m.nextID++
	created := *u
	created.ID = m.nextID
	created.DateJoined = time.Now()
	m.users[created.ID] = &created
	out := created
	return &out, nil
}

func (m *memUsers) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			out := *u
			return &out, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *memUsers) SetLastLogin(_ context.Context, id int64, at time.Time) error {
	m.lastLogin[id] = at
	return nil
}

func (m *memUsers) ListUsers(_ context.Context, _ models.UserFilter, limit, offset int) ([]*models.User, error) {
	out := []*models.User{}
	for id := int64(1); id <= m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	if offset < 0 || offset >= len(out) {
		return []*models.User{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memUsers) CountUsers(context.Context, models.UserFilter) (int64, error) {
	return int64(len(m.users)), nil
}

func (m *memUsers) UpdateUser(_ context.Context, u *models.User) (*models.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	if _, ok := m.users[u.ID]; !ok {
		return nil, storage.ErrUserNotFound
	}
	for id, existing := range m.users {
		if id != u.ID && strings.EqualFold(existing.Email, u.Email) {
			return nil, storage.ErrEmailTaken
		}
	}
	saved := *u
	m.users[u.ID] = &saved
	out := saved
	return &out, nil
}

func (m *memUsers) DeleteUser(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return storage.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
