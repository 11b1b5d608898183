package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Neeraj110/chatApp/internal/model"
)

// ErrDuplicateEmail is returned when creating or updating a user with an email
// that already exists.
var ErrDuplicateEmail = errors.New("a user with this email already exists")

// UserStore persists users.
type UserStore struct {
	c *mongo.Collection
}

// NewUserStore returns a store over the users collection.
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID. Returns mongo.ErrNoDocuments if absent.
func (s *UserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	var u model.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by normalized email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing fields and stamping timestamps.
func (s *UserStore) Create(ctx context.Context, u model.User) (model.User, error) {
	u.ID = primitive.NewObjectID()
	u.Email = normalizeEmail(u.Email)
	u.Name = strings.TrimSpace(u.Name)
	if u.AuthType == "" {
		u.AuthType = model.AuthTypeLocal
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if IsDup(err) {
			return model.User{}, ErrDuplicateEmail
		}
		return model.User{}, err
	}
	return u, nil
}

// UpdateProfile sets the provided name and/or email; empty strings leave the
// field unchanged. Returns the updated document.
func (s *UserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string) (*model.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if strings.TrimSpace(name) != "" {
		set["name"] = strings.TrimSpace(name)
	}
	if strings.TrimSpace(email) != "" {
		set["email"] = normalizeEmail(email)
	}

	var u model.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		if IsDup(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return &u, nil
}

// EmailInUseByOther reports whether email belongs to an account other than id.
func (s *UserStore) EmailInUseByOther(ctx context.Context, email string, id primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"email": normalizeEmail(email),
		"_id":   bson.M{"$ne": id},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetAvatar replaces the user's avatar locator and returns the updated
// document.
func (s *UserStore) SetAvatar(ctx context.Context, id primitive.ObjectID, avatar string) (*model.User, error) {
	var u model.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"avatar": avatar, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Delete removes a user record. Conversations and messages referencing the
// account are left in place.
func (s *UserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// ListOthers returns every user except the given one, for the contact picker.
func (s *UserStore) ListOthers(ctx context.Context, id primitive.ObjectID) ([]model.User, error) {
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$ne": id}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CountByIDs returns how many of the given ids resolve to existing users.
func (s *UserStore) CountByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.c.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// GetByIDs loads all users in ids, in no particular order.
func (s *UserStore) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
