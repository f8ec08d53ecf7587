package fakeuserrepo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	autherrors "github.com/securenotes/auth-service/internal/errors"
	"github.com/securenotes/auth-service/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory credential store used by tests and by
// the server when no MongoDB is configured.
type FakeUserRepo struct {
	users       map[string]*users.User
	usernameIds map[string]string // username to user id
	lock        sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:       make(map[string]*users.User),
		usernameIds: make(map[string]string),
	}
}

func (ur *FakeUserRepo) Create(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, ok := ur.usernameIds[user.Username]; ok {
		return autherrors.ErrDuplicateUser
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	ur.users[user.ID] = &stored
	ur.usernameIds[user.Username] = user.ID
	return nil
}

func (ur *FakeUserRepo) GetByUsername(_ context.Context, username string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userID, ok := ur.usernameIds[username]
	if !ok {
		return nil, autherrors.ErrUserNotFound
	}
	return ur.copyUser(userID)
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	return ur.copyUser(id)
}

func (ur *FakeUserRepo) SetTOTPSecret(_ context.Context, id, secret string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return autherrors.ErrUserNotFound
	}
	user.TOTPSecret = secret
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (ur *FakeUserRepo) copyUser(id string) (*users.User, error) {
	user, ok := ur.users[id]
	if !ok {
		return nil, autherrors.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}
