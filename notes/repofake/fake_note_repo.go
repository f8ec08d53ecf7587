package fakenoterepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	autherrors "github.com/securenotes/auth-service/internal/errors"
	"github.com/securenotes/auth-service/notes"
)

var _ notes.Repo = (*FakeNoteRepo)(nil)

// FakeNoteRepo is an in-memory notes store used by tests and by the
// server when no MongoDB is configured.
type FakeNoteRepo struct {
	notes map[string]*notes.Note
	lock  sync.RWMutex
}

func NewFakeNoteRepo() *FakeNoteRepo {
	return &FakeNoteRepo{
		notes: make(map[string]*notes.Note),
	}
}

func (nr *FakeNoteRepo) Create(_ context.Context, note *notes.Note) error {
	nr.lock.Lock()
	defer nr.lock.Unlock()

	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now

	stored := *note
	nr.notes[note.ID] = &stored
	return nil
}

func (nr *FakeNoteRepo) ListByOwner(_ context.Context, ownerID string) ([]*notes.Note, error) {
	nr.lock.RLock()
	defer nr.lock.RUnlock()

	owned := make([]*notes.Note, 0)
	for _, note := range nr.notes {
		if note.OwnerID != ownerID {
			continue
		}
		copied := *note
		owned = append(owned, &copied)
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.Before(owned[j].CreatedAt)
	})
	return owned, nil
}

func (nr *FakeNoteRepo) Update(_ context.Context, ownerID, id string, update notes.Update) (*notes.Note, error) {
	nr.lock.Lock()
	defer nr.lock.Unlock()

	note, ok := nr.notes[id]
	if !ok || note.OwnerID != ownerID {
		return nil, autherrors.ErrNotFound
	}

	note.Title = update.Title
	note.Content = update.Content
	note.Tags = update.Tags
	note.UpdatedAt = time.Now().UTC()

	copied := *note
	return &copied, nil
}

func (nr *FakeNoteRepo) Delete(_ context.Context, ownerID, id string) error {
	nr.lock.Lock()
	defer nr.lock.Unlock()

	note, ok := nr.notes[id]
	if !ok || note.OwnerID != ownerID {
		return autherrors.ErrNotFound
	}
	delete(nr.notes, id)
	return nil
}
