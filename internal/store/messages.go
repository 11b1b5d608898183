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

// MessageStore persists messages.
type MessageStore struct {
	c *mongo.Collection
}

// NewMessageStore returns a store over the messages collection.
func NewMessageStore(db *mongo.Database) *MessageStore {
	return &MessageStore{c: db.Collection("messages")}
}

// Insert stamps and stores a message.
func (s *MessageStore) Insert(ctx context.Context, m model.Message) (model.Message, error) {
	m.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return model.Message{}, err
	}
	return m, nil
}

// ListByConversation returns the conversation's full history in creation
// order.
func (s *MessageStore) ListByConversation(ctx context.Context, conversationID primitive.ObjectID) ([]model.Message, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"conversationId": conversationID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var msgs []model.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// GetByID loads a single message.
func (s *MessageStore) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Message, error) {
	var m model.Message
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByIDs loads all messages in ids, in no particular order. Used to
// populate lastMessage pointers in one query.
func (s *MessageStore) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Message, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var msgs []model.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// DeleteByConversation removes every message belonging to a conversation.
// Returns the number of documents deleted.
func (s *MessageStore) DeleteByConversation(ctx context.Context, conversationID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"conversationId": conversationID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
