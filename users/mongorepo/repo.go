package mongouserrepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	autherrors "github.com/securenotes/auth-service/internal/errors"
	"github.com/securenotes/auth-service/users"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "users"

var _ users.Repo = (*UserRepo)(nil)

// UserRepo persists users in MongoDB. The unique index on username
// makes the duplicate check and insert a single atomic operation, so
// concurrent signups with the same username cannot both succeed.
type UserRepo struct {
	coll *mongo.Collection
}

func New(ctx context.Context, db *mongo.Database) (*UserRepo, error) {
	coll := db.Collection(collectionName)

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "[mongouserrepo.New] failed to ensure username index")
	}

	return &UserRepo{coll: coll}, nil
}

func (ur *UserRepo) Create(ctx context.Context, user *users.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := ur.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return autherrors.ErrDuplicateUser
		}
		return errors.Wrap(err, "[UserRepo.Create] InsertOne")
	}
	return nil
}

func (ur *UserRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	return ur.findOne(ctx, bson.M{"username": username})
}

func (ur *UserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return ur.findOne(ctx, bson.M{"_id": id})
}

func (ur *UserRepo) SetTOTPSecret(ctx context.Context, id, secret string) error {
	res, err := ur.coll.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"totp_secret": secret,
			"updated_at":  time.Now().UTC(),
		},
	})
	if err != nil {
		return errors.Wrap(err, "[UserRepo.SetTOTPSecret] UpdateByID")
	}
	if res.MatchedCount == 0 {
		return autherrors.ErrUserNotFound
	}
	return nil
}

func (ur *UserRepo) findOne(ctx context.Context, filter bson.M) (*users.User, error) {
	var user users.User
	err := ur.coll.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, autherrors.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "[UserRepo.findOne] FindOne")
	}
	return &user, nil
}
