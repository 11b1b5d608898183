package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxContentLength is the longest accepted message body after trimming.
const MaxContentLength = 2000

// Message is an immutable record in the messages collection. A message holds
// trimmed text, a media locator, or both; never neither.
type Message struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	ConversationID primitive.ObjectID `bson:"conversationId"`
	Sender         primitive.ObjectID `bson:"sender"`
	Content        string             `bson:"content,omitempty"`
	FileID         string             `bson:"fileId,omitempty"`

	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MessageView is the wire shape of a message with the sender resolved to
// public profile fields.
type MessageView struct {
	ID             string     `json:"_id"`
	ConversationID string     `json:"conversationId"`
	Sender         PublicUser `json:"sender"`
	Content        string     `json:"content,omitempty"`
	FileID         string     `json:"fileId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// View resolves the message against its sender's profile.
func (m *Message) View(sender PublicUser) MessageView {
	return MessageView{
		ID:             m.ID.Hex(),
		ConversationID: m.ConversationID.Hex(),
		Sender:         sender,
		Content:        m.Content,
		FileID:         m.FileID,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
