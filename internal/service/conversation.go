package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Neeraj110/chatApp/internal/media"
	"github.com/Neeraj110/chatApp/internal/model"
	"github.com/Neeraj110/chatApp/pkg/logger"
	"github.com/Neeraj110/chatApp/pkg/metrics"
)

// ConversationService owns the conversation lifecycle: direct threads here,
// group operations in group.go.
type ConversationService struct {
	convs  ConversationStore
	msgs   MessageStore
	users  UserStore
	media  media.Store
	events Broadcaster
	logger *logger.Logger
}

// NewConversationService creates a new conversation service.
func NewConversationService(convs ConversationStore, msgs MessageStore, users UserStore, mediaStore media.Store, events Broadcaster, log *logger.Logger) *ConversationService {
	return &ConversationService{
		convs:  convs,
		msgs:   msgs,
		users:  users,
		media:  mediaStore,
		events: events,
		logger: log,
	}
}

// Start finds or creates the direct thread between requester and recipient.
// The returned bool is true when a new conversation was created.
func (s *ConversationService) Start(ctx context.Context, requester *model.User, recipientID primitive.ObjectID) (model.ConversationView, bool, error) {
	if recipientID == requester.ID {
		return model.ConversationView{}, false, invalid("Cannot start conversation with yourself")
	}

	if _, err := s.users.GetByID(ctx, recipientID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.ConversationView{}, false, notFound("Recipient not found")
		}
		return model.ConversationView{}, false, err
	}

	existing, err := s.convs.FindDirect(ctx, requester.ID, recipientID)
	if err == nil {
		return existing.View(), false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return model.ConversationView{}, false, err
	}

	conv, err := s.convs.Create(ctx, model.Conversation{
		Kind:         model.KindDirect,
		Participants: []primitive.ObjectID{requester.ID, recipientID},
	})
	if err != nil {
		return model.ConversationView{}, false, err
	}

	view := conv.View()
	s.events.Emit(requester.ID.Hex(), model.EventNewConversation, view)
	s.events.Emit(recipientID.Hex(), model.EventNewConversation, view)
	metrics.ConversationsTotal.WithLabelValues(string(model.KindDirect)).Inc()

	s.logger.Info("conversation started",
		zap.String("conversation_id", conv.ID.Hex()),
		zap.String("user_id", requester.ID.Hex()),
	)
	return view, true, nil
}

// List returns the requester's conversations, most recently active first.
// Direct threads collapse the participant list to the other party; groups
// carry the full resolved list plus a count.
func (s *ConversationService) List(ctx context.Context, userID primitive.ObjectID) ([]any, error) {
	convs, err := s.convs.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var userIDs, msgIDs []primitive.ObjectID
	seen := map[primitive.ObjectID]bool{}
	for i := range convs {
		for _, p := range convs[i].Participants {
			if !seen[p] {
				seen[p] = true
				userIDs = append(userIDs, p)
			}
		}
		if a := convs[i].GroupAdmin; !a.IsZero() && !seen[a] {
			seen[a] = true
			userIDs = append(userIDs, a)
		}
		if m := convs[i].LastMessage; !m.IsZero() {
			msgIDs = append(msgIDs, m)
		}
	}

	profiles, err := s.resolveProfiles(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	lastMsgs, err := s.resolveLastMessages(ctx, msgIDs)
	if err != nil {
		return nil, err
	}

	out := make([]any, 0, len(convs))
	for i := range convs {
		c := &convs[i]
		last := lastMsgs[c.LastMessage]

		switch c.Kind {
		case model.KindGroup:
			g := model.GroupSummary{
				ID:                c.ID.Hex(),
				IsGroup:           true,
				GroupName:         c.GroupName,
				GroupAvatar:       c.GroupAvatar,
				Participants:      make([]model.PublicUser, 0, len(c.Participants)),
				ParticipantsCount: len(c.Participants),
				LastMessage:       last,
				UpdatedAt:         c.UpdatedAt,
			}
			for _, p := range c.Participants {
				g.Participants = append(g.Participants, profiles[p])
			}
			if admin, ok := profiles[c.GroupAdmin]; ok {
				g.GroupAdmin = &admin
			}
			out = append(out, g)

		case model.KindDirect:
			d := model.DirectSummary{
				ID:          c.ID.Hex(),
				IsGroup:     false,
				LastMessage: last,
				UpdatedAt:   c.UpdatedAt,
			}
			for _, p := range c.Participants {
				if p != userID {
					other := profiles[p]
					d.Participant = &other
					break
				}
			}
			out = append(out, d)
		}
	}
	return out, nil
}

// Delete removes a conversation and all of its messages as one logical unit.
// Any participant may delete a direct thread; groups additionally go through
// DeleteGroup for the admin check.
func (s *ConversationService) Delete(ctx context.Context, requester *model.User, convID primitive.ObjectID) error {
	conv, err := s.loadConversation(ctx, convID)
	if err != nil {
		return err
	}
	if !conv.IsParticipant(requester.ID) {
		return forbidden("User not part of this conversation")
	}

	if err := s.deleteWithMessages(ctx, conv); err != nil {
		return err
	}

	s.events.Emit(requester.ID.Hex(), model.EventConversationDeleted, convID.Hex())
	return nil
}

func (s *ConversationService) loadConversation(ctx context.Context, id primitive.ObjectID) (*model.Conversation, error) {
	conv, err := s.convs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("Conversation not found")
		}
		return nil, err
	}
	return conv, nil
}

// deleteWithMessages removes the record and its history. The two writes are
// independent; a crash between them orphans messages but never resurrects the
// conversation.
func (s *ConversationService) deleteWithMessages(ctx context.Context, conv *model.Conversation) error {
	if err := s.convs.Delete(ctx, conv.ID); err != nil {
		return err
	}
	if n, err := s.msgs.DeleteByConversation(ctx, conv.ID); err != nil {
		s.logger.Error("failed to delete conversation messages",
			zap.String("conversation_id", conv.ID.Hex()), zap.Error(err))
	} else {
		s.logger.Info("conversation deleted",
			zap.String("conversation_id", conv.ID.Hex()), zap.Int64("messages", n))
	}
	return nil
}

func (s *ConversationService) resolveProfiles(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]model.PublicUser, error) {
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]model.PublicUser, len(users))
	for i := range users {
		out[users[i].ID] = users[i].Public()
	}
	return out, nil
}

func (s *ConversationService) resolveLastMessages(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.LastMessageView, error) {
	msgs, err := s.msgs.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]*model.LastMessageView, len(msgs))
	for i := range msgs {
		m := &msgs[i]
		out[m.ID] = &model.LastMessageView{
			ID:        m.ID.Hex(),
			Content:   m.Content,
			Sender:    m.Sender.Hex(),
			CreatedAt: m.CreatedAt,
		}
	}
	return out, nil
}
