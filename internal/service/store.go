package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Neeraj110/chatApp/internal/model"
)

// UserStore is the persistence surface the services need for users.
// *store.UserStore satisfies it; tests substitute in-memory fakes.
type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u model.User) (model.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string) (*model.User, error)
	EmailInUseByOther(ctx context.Context, email string, id primitive.ObjectID) (bool, error)
	SetAvatar(ctx context.Context, id primitive.ObjectID, avatar string) (*model.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListOthers(ctx context.Context, id primitive.ObjectID) ([]model.User, error)
	CountByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.User, error)
}

// ConversationStore is the persistence surface for conversations.
type ConversationStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Conversation, error)
	FindDirect(ctx context.Context, a, b primitive.ObjectID) (*model.Conversation, error)
	Create(ctx context.Context, c model.Conversation) (model.Conversation, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]model.Conversation, error)
	SetLastMessage(ctx context.Context, id, messageID primitive.ObjectID) error
	AddParticipants(ctx context.Context, id primitive.ObjectID, ids []primitive.ObjectID) (*model.Conversation, error)
	SetParticipants(ctx context.Context, id primitive.ObjectID, ids []primitive.ObjectID) (*model.Conversation, error)
	UpdateGroupInfo(ctx context.Context, id primitive.ObjectID, name, avatar *string) (*model.Conversation, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MessageStore is the persistence surface for messages.
type MessageStore interface {
	Insert(ctx context.Context, m model.Message) (model.Message, error)
	ListByConversation(ctx context.Context, conversationID primitive.ObjectID) ([]model.Message, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Message, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Message, error)
	DeleteByConversation(ctx context.Context, conversationID primitive.ObjectID) (int64, error)
}

// Broadcaster delivers realtime events to rooms after a mutation commits.
// Delivery is fire-and-forget; a lost event never fails the request.
type Broadcaster interface {
	// Emit sends the event to one room: a conversation id or a user id
	// (personal room).
	Emit(room string, event model.EventType, data any)
	// EmitAll sends the event to every connected client.
	EmitAll(event model.EventType, data any)
}
