package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConversationKind distinguishes the two conversation shapes. Direct threads
// carry exactly two participants and no group fields; groups carry a name, an
// admin, and at least two participants.
type ConversationKind string

const (
	KindDirect ConversationKind = "direct"
	KindGroup  ConversationKind = "group"
)

// Conversation is a thread record in the conversations collection.
// LastMessage is a display back-reference, not a lifecycle dependency.
type Conversation struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Kind         ConversationKind     `bson:"kind"`
	Participants []primitive.ObjectID `bson:"participants"`
	GroupName    string               `bson:"groupName,omitempty"`
	GroupAvatar  string               `bson:"groupAvatar,omitempty"`
	GroupAdmin   primitive.ObjectID   `bson:"groupAdmin,omitempty"`
	LastMessage  primitive.ObjectID   `bson:"lastMessage,omitempty"`

	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// IsParticipant reports whether id is a member of the conversation.
func (c *Conversation) IsParticipant(id primitive.ObjectID) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// ConversationView is the wire shape of a conversation document, used in
// mutation responses and broadcast events. Participants are raw ids; list
// endpoints resolve them via summaries instead.
type ConversationView struct {
	ID           string    `json:"_id"`
	IsGroup      bool      `json:"isGroup"`
	Participants []string  `json:"participants"`
	GroupName    string    `json:"groupName,omitempty"`
	GroupAvatar  string    `json:"groupAvatar,omitempty"`
	GroupAdmin   string    `json:"groupAdmin,omitempty"`
	LastMessage  string    `json:"lastMessage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// View projects the conversation to its wire shape.
func (c *Conversation) View() ConversationView {
	v := ConversationView{
		ID:           c.ID.Hex(),
		IsGroup:      c.Kind == KindGroup,
		Participants: make([]string, 0, len(c.Participants)),
		GroupName:    c.GroupName,
		GroupAvatar:  c.GroupAvatar,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	for _, p := range c.Participants {
		v.Participants = append(v.Participants, p.Hex())
	}
	if !c.GroupAdmin.IsZero() {
		v.GroupAdmin = c.GroupAdmin.Hex()
	}
	if !c.LastMessage.IsZero() {
		v.LastMessage = c.LastMessage.Hex()
	}
	return v
}

// LastMessageView is the populated lastMessage pointer in conversation lists.
type LastMessageView struct {
	ID        string    `json:"_id"`
	Content   string    `json:"content,omitempty"`
	Sender    string    `json:"sender"`
	CreatedAt time.Time `json:"createdAt"`
}

// DirectSummary is the list shape for a two-party thread: the raw participant
// list is replaced by the other participant's public profile.
type DirectSummary struct {
	ID          string           `json:"_id"`
	IsGroup     bool             `json:"isGroup"`
	Participant *PublicUser      `json:"participants"`
	LastMessage *LastMessageView `json:"lastMessage"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// GroupSummary is the list shape for a group thread.
type GroupSummary struct {
	ID                string           `json:"_id"`
	IsGroup           bool             `json:"isGroup"`
	GroupName         string           `json:"groupName"`
	GroupAvatar       string           `json:"groupAvatar,omitempty"`
	GroupAdmin        *PublicUser      `json:"groupAdmin,omitempty"`
	Participants      []PublicUser     `json:"participants"`
	ParticipantsCount int              `json:"participantsCount"`
	LastMessage       *LastMessageView `json:"lastMessage"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}
