package users

import "context"

// Repo is the credential store. Create must be atomic with respect to
// the username uniqueness check: under concurrent signup with the same
// username exactly one Create succeeds, the rest return
// errors.ErrDuplicateUser.
type Repo interface {
	Create(ctx context.Context, user *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	SetTOTPSecret(ctx context.Context, id, secret string) error
}
