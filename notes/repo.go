package notes

import "context"

// Repo persists notes. Reads and writes always filter by owner, so a
// valid token for one user can never reach another user's notes.
type Repo interface {
	Create(ctx context.Context, note *Note) error
	ListByOwner(ctx context.Context, ownerID string) ([]*Note, error)
	Update(ctx context.Context, ownerID, id string, update Update) (*Note, error)
	Delete(ctx context.Context, ownerID, id string) error
}
