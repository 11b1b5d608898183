package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Neeraj110/chatApp/internal/media"
	"github.com/Neeraj110/chatApp/internal/model"
	"github.com/Neeraj110/chatApp/pkg/logger"
	"github.com/Neeraj110/chatApp/pkg/metrics"
)

// MessageService handles sending and reading messages within a conversation.
type MessageService struct {
	msgs   MessageStore
	convs  ConversationStore
	users  UserStore
	media  media.Store
	events Broadcaster
	logger *logger.Logger
}

// NewMessageService creates a new message service.
func NewMessageService(msgs MessageStore, convs ConversationStore, users UserStore, mediaStore media.Store, events Broadcaster, log *logger.Logger) *MessageService {
	return &MessageService{
		msgs:   msgs,
		convs:  convs,
		users:  users,
		media:  mediaStore,
		events: events,
		logger: log,
	}
}

// Send persists a message and broadcasts it to the conversation room. A
// message needs text, media, or both; media is validated and uploaded before
// anything is written so a rejected file leaves no partial state.
func (s *MessageService) Send(ctx context.Context, requester *model.User, convID primitive.ObjectID, content string, file multipart.File, header *multipart.FileHeader) (model.MessageView, error) {
	conv, err := s.convs.GetByID(ctx, convID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.MessageView{}, notFound("Conversation not found")
		}
		return model.MessageView{}, err
	}
	if !conv.IsParticipant(requester.ID) {
		return model.MessageView{}, forbidden("User not part of this conversation")
	}

	content = strings.TrimSpace(content)
	if content == "" && file == nil {
		return model.MessageView{}, invalid("Message must contain text or media")
	}
	if utf8.RuneCountInString(content) > model.MaxContentLength {
		return model.MessageView{}, invalid("Message content exceeds maximum length")
	}

	var fileURL string
	if file != nil {
		mimeType, err := media.DetectType(file, header)
		if err != nil {
			return model.MessageView{}, upstream("Failed to read media file")
		}
		if !media.Allowed(mimeType, media.MessageTypes) {
			return model.MessageView{}, invalid("Unsupported file type. Only JPEG, PNG, GIF, MP4, and WebM are allowed.")
		}
		fileURL, err = s.media.Upload(ctx, file, header, "messages")
		if err != nil {
			return model.MessageView{}, upstream("Failed to upload media")
		}
	}

	msg, err := s.msgs.Insert(ctx, model.Message{
		ConversationID: convID,
		Sender:         requester.ID,
		Content:        content,
		FileID:         fileURL,
	})
	if err != nil {
		return model.MessageView{}, err
	}

	if err := s.convs.SetLastMessage(ctx, convID, msg.ID); err != nil {
		s.logger.Error("failed to update last message",
			zap.String("conversation_id", convID.Hex()), zap.Error(err))
	}

	view := msg.View(requester.Public())
	s.events.Emit(convID.Hex(), model.EventNewMessage, view)
	metrics.RecordMessage(fileURL != "")
	return view, nil
}

// List returns a conversation's messages oldest first, with senders resolved
// to public profiles in one batch.
func (s *MessageService) List(ctx context.Context, requester *model.User, convID primitive.ObjectID) ([]model.MessageView, error) {
	conv, err := s.convs.GetByID(ctx, convID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("Conversation not found")
		}
		return nil, err
	}
	if !conv.IsParticipant(requester.ID) {
		return nil, forbidden("User not part of this conversation")
	}

	msgs, err := s.msgs.ListByConversation(ctx, convID)
	if err != nil {
		return nil, err
	}

	var senderIDs []primitive.ObjectID
	seen := map[primitive.ObjectID]bool{}
	for i := range msgs {
		if !seen[msgs[i].Sender] {
			seen[msgs[i].Sender] = true
			senderIDs = append(senderIDs, msgs[i].Sender)
		}
	}
	senders, err := s.users.GetByIDs(ctx, senderIDs)
	if err != nil {
		return nil, err
	}
	profiles := make(map[primitive.ObjectID]model.PublicUser, len(senders))
	for i := range senders {
		profiles[senders[i].ID] = senders[i].Public()
	}

	views := make([]model.MessageView, 0, len(msgs))
	for i := range msgs {
		views = append(views, msgs[i].View(profiles[msgs[i].Sender]))
	}
	return views, nil
}
