package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/user"
)

const identitiesCollection = "identities"

type identityDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Role         string    `bson:"role"`
	IsActive     bool      `bson:"is_active"`
	PasswordHash []byte    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type userRepository struct {
	coll *mongo.Collection
}

// NewUserRepository stores identities in the `identities` collection, keyed by ID.
func NewUserRepository(db *mongo.Database) user.Writer {
	return &userRepository{coll: db.Collection(identitiesCollection)}
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var doc identityDoc
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, storeError(err, "finding identity")
	}
	return user.User{
		ID:           doc.ID,
		Name:         doc.Name,
		Role:         user.Role(doc.Role),
		IsActive:     doc.IsActive,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt.UTC(),
		UpdatedAt:    doc.UpdatedAt.UTC(),
	}, nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	doc := identityDoc{
		ID:           usr.ID,
		Name:         usr.Name,
		Role:         string(usr.Role),
		IsActive:     usr.IsActive,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
	}
	if _, err := repo.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrIDExists
		}
		return user.User{}, storeError(err, "inserting identity")
	}
	return usr, nil
}

func (repo *userRepository) UpdatePassword(ctx context.Context, id string, hash []byte, updatedAt time.Time) error {
	res, err := repo.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"password_hash": hash, "updated_at": updatedAt}})
	if err != nil {
		return storeError(err, "updating password")
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

// storeError wraps err. A disconnected client never reconnects, so the server is asked to shut down.
func storeError(err error, msg string) error {
	if errors.Is(err, mongo.ErrClientDisconnected) {
		return core.NewShutdownError(msg + ": credential store client is disconnected")
	}
	return errors.Wrap(err, msg)
}
