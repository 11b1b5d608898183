// Package testutil provides in-memory store implementations and request
// helpers for tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Neeraj110/chatApp/internal/model"
	"github.com/Neeraj110/chatApp/internal/store"
)

// UserStore is an in-memory service.UserStore.
type UserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]model.User
}

// NewUserStore returns an empty in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[primitive.ObjectID]model.User)}
}

// Seed inserts a user directly, stamping an id if absent.
func (s *UserStore) Seed(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.users[u.ID] = u
	return u
}

func (s *UserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *UserStore) Create(ctx context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return model.User{}, store.ErrDuplicateEmail
		}
	}
	u.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.AuthType == "" {
		u.AuthType = model.AuthTypeLocal
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *UserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if name != "" {
		u.Name = name
	}
	if email != "" {
		u.Email = email
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return &u, nil
}

func (s *UserStore) EmailInUseByOther(ctx context.Context, email string, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email && u.ID != id {
			return true, nil
		}
	}
	return false, nil
}

func (s *UserStore) SetAvatar(ctx context.Context, id primitive.ObjectID, avatar string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	u.Avatar = avatar
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return &u, nil
}

func (s *UserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

func (s *UserStore) ListOthers(ctx context.Context, id primitive.ObjectID) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.User
	for _, u := range s.users {
		if u.ID != id {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (s *UserStore) CountByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := s.users[id]; ok {
			n++
		}
	}
	return n, nil
}

func (s *UserStore) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// ConversationStore is an in-memory service.ConversationStore.
type ConversationStore struct {
	mu    sync.Mutex
	convs map[primitive.ObjectID]model.Conversation
}

// NewConversationStore returns an empty in-memory conversation store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{convs: make(map[primitive.ObjectID]model.Conversation)}
}

// Seed inserts a conversation directly, stamping an id if absent.
func (s *ConversationStore) Seed(c model.Conversation) model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	s.convs[c.ID] = c
	return c
}

func (s *ConversationStore) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &c, nil
}

func (s *ConversationStore) FindDirect(ctx context.Context, a, b primitive.ObjectID) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.convs {
		if c.Kind != model.KindDirect || len(c.Participants) != 2 {
			continue
		}
		if (c.Participants[0] == a && c.Participants[1] == b) ||
			(c.Participants[0] == b && c.Participants[1] == a) {
			c := c
			return &c, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *ConversationStore) Create(ctx context.Context, c model.Conversation) (model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.convs[c.ID] = c
	return c, nil
}

func (s *ConversationStore) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Conversation
	for _, c := range s.convs {
		for _, p := range c.Participants {
			if p == userID {
				out = append(out, c)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *ConversationStore) SetLastMessage(ctx context.Context, id, messageID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	c.LastMessage = messageID
	c.UpdatedAt = time.Now().UTC()
	s.convs[id] = c
	return nil
}

func (s *ConversationStore) AddParticipants(ctx context.Context, id primitive.ObjectID, ids []primitive.ObjectID) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	existing := make(map[primitive.ObjectID]bool, len(c.Participants))
	for _, p := range c.Participants {
		existing[p] = true
	}
	for _, p := range ids {
		if !existing[p] {
			c.Participants = append(c.Participants, p)
		}
	}
	c.UpdatedAt = time.Now().UTC()
	s.convs[id] = c
	return &c, nil
}

func (s *ConversationStore) SetParticipants(ctx context.Context, id primitive.ObjectID, ids []primitive.ObjectID) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	c.Participants = ids
	c.UpdatedAt = time.Now().UTC()
	s.convs[id] = c
	return &c, nil
}

func (s *ConversationStore) UpdateGroupInfo(ctx context.Context, id primitive.ObjectID, name, avatar *string) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if name != nil {
		c.GroupName = *name
	}
	if avatar != nil {
		c.GroupAvatar = *avatar
	}
	c.UpdatedAt = time.Now().UTC()
	s.convs[id] = c
	return &c, nil
}

func (s *ConversationStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convs, id)
	return nil
}

// MessageStore is an in-memory service.MessageStore.
type MessageStore struct {
	mu   sync.Mutex
	msgs []model.Message
}

// NewMessageStore returns an empty in-memory message store.
func NewMessageStore() *MessageStore {
	return &MessageStore{}
}

func (s *MessageStore) Insert(ctx context.Context, m model.Message) (model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	s.msgs = append(s.msgs, m)
	return m, nil
}

func (s *MessageStore) ListByConversation(ctx context.Context, conversationID primitive.ObjectID) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Message
	for _, m := range s.msgs {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MessageStore) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.msgs {
		if m.ID == id {
			m := m
			return &m, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *MessageStore) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Message
	for _, m := range s.msgs {
		if want[m.ID] {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MessageStore) DeleteByConversation(ctx context.Context, conversationID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []model.Message
	var removed int64
	for _, m := range s.msgs {
		if m.ConversationID == conversationID {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	s.msgs = kept
	return removed, nil
}

// Emitted records one broadcast call.
type Emitted struct {
	Room  string
	Event model.EventType
	Data  any
}

// Broadcaster records emitted events instead of publishing them.
type Broadcaster struct {
	mu     sync.Mutex
	Events []Emitted
}

// NewBroadcaster returns an empty recording broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

func (b *Broadcaster) Emit(room string, event model.EventType, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Events = append(b.Events, Emitted{Room: room, Event: event, Data: data})
}

func (b *Broadcaster) EmitAll(event model.EventType, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Events = append(b.Events, Emitted{Event: event, Data: data})
}

// ByEvent returns the recorded emissions with the given event type.
func (b *Broadcaster) ByEvent(event model.EventType) []Emitted {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Emitted
	for _, e := range b.Events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
