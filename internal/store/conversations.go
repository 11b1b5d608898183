package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Neeraj110/chatApp/internal/model"
)

// ConversationStore persists conversations.
type ConversationStore struct {
	c *mongo.Collection
}

// NewConversationStore returns a store over the conversations collection.
func NewConversationStore(db *mongo.Database) *ConversationStore {
	return &ConversationStore{c: db.Collection("conversations")}
}

// GetByID loads a conversation. Returns mongo.ErrNoDocuments if absent.
func (s *ConversationStore) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Conversation, error) {
	var c model.Conversation
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindDirect looks up the direct conversation whose participant set is exactly
// {a, b}. Returns mongo.ErrNoDocuments when no such thread exists.
func (s *ConversationStore) FindDirect(ctx context.Context, a, b primitive.ObjectID) (*model.Conversation, error) {
	var c model.Conversation
	err := s.c.FindOne(ctx, bson.M{
		"kind":         model.KindDirect,
		"participants": bson.M{"$all": bson.A{a, b}, "$size": 2},
	}).Decode(&c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a conversation and stamps its id and timestamps.
func (s *ConversationStore) Create(ctx context.Context, c model.Conversation) (model.Conversation, error) {
	c.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return model.Conversation{}, err
	}
	return c, nil
}

// ListForUser returns every conversation the user participates in, most
// recently updated first.
func (s *ConversationStore) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]model.Conversation, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"participants": userID},
		options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var convs []model.Conversation
	if err := cur.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// SetLastMessage points the conversation at its most recent message and bumps
// updatedAt so list ordering follows activity.
func (s *ConversationStore) SetLastMessage(ctx context.Context, id, messageID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"lastMessage": messageID,
		"updatedAt":   time.Now().UTC(),
	}})
	return err
}

// AddParticipants appends ids to the participant set and returns the updated
// record.
func (s *ConversationStore) AddParticipants(ctx context.Context, id primitive.ObjectID, ids []primitive.ObjectID) (*model.Conversation, error) {
	return s.findAndUpdate(ctx, id, bson.M{
		"$addToSet": bson.M{"participants": bson.M{"$each": ids}},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
}

// SetParticipants replaces the participant set and returns the updated record.
func (s *ConversationStore) SetParticipants(ctx context.Context, id primitive.ObjectID, ids []primitive.ObjectID) (*model.Conversation, error) {
	return s.findAndUpdate(ctx, id, bson.M{"$set": bson.M{
		"participants": ids,
		"updatedAt":    time.Now().UTC(),
	}})
}

// UpdateGroupInfo sets the group name and/or avatar; nil pointers leave the
// field unchanged.
func (s *ConversationStore) UpdateGroupInfo(ctx context.Context, id primitive.ObjectID, name, avatar *string) (*model.Conversation, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if name != nil {
		set["groupName"] = *name
	}
	if avatar != nil {
		set["groupAvatar"] = *avatar
	}
	return s.findAndUpdate(ctx, id, bson.M{"$set": set})
}

func (s *ConversationStore) findAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*model.Conversation, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c model.Conversation
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes a conversation record.
func (s *ConversationStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
