package mongonoterepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	autherrors "github.com/securenotes/auth-service/internal/errors"
	"github.com/securenotes/auth-service/notes"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "notes"

var _ notes.Repo = (*NoteRepo)(nil)

// NoteRepo persists notes in MongoDB, indexed by owner.
type NoteRepo struct {
	coll *mongo.Collection
}

func New(ctx context.Context, db *mongo.Database) (*NoteRepo, error) {
	coll := db.Collection(collectionName)

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "[mongonoterepo.New] failed to ensure owner index")
	}

	return &NoteRepo{coll: coll}, nil
}

func (nr *NoteRepo) Create(ctx context.Context, note *notes.Note) error {
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now

	if _, err := nr.coll.InsertOne(ctx, note); err != nil {
		return errors.Wrap(err, "[NoteRepo.Create] InsertOne")
	}
	return nil
}

func (nr *NoteRepo) ListByOwner(ctx context.Context, ownerID string) ([]*notes.Note, error) {
	cursor, err := nr.coll.Find(ctx, bson.M{"owner_id": ownerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "[NoteRepo.ListByOwner] Find")
	}
	defer cursor.Close(ctx)

	owned := make([]*notes.Note, 0)
	if err := cursor.All(ctx, &owned); err != nil {
		return nil, errors.Wrap(err, "[NoteRepo.ListByOwner] cursor.All")
	}
	return owned, nil
}

func (nr *NoteRepo) Update(ctx context.Context, ownerID, id string, update notes.Update) (*notes.Note, error) {
	var updated notes.Note
	err := nr.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "owner_id": ownerID},
		bson.M{"$set": bson.M{
			"title":      update.Title,
			"content":    update.Content,
			"tags":       update.Tags,
			"updated_at": time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, autherrors.ErrNotFound
		}
		return nil, errors.Wrap(err, "[NoteRepo.Update] FindOneAndUpdate")
	}
	return &updated, nil
}

func (nr *NoteRepo) Delete(ctx context.Context, ownerID, id string) error {
	res, err := nr.coll.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return errors.Wrap(err, "[NoteRepo.Delete] DeleteOne")
	}
	if res.DeletedCount == 0 {
		return autherrors.ErrNotFound
	}
	return nil
}
