package service

import (
	"context"
	"mime/multipart"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Neeraj110/chatApp/internal/media"
	"github.com/Neeraj110/chatApp/internal/model"
	"github.com/Neeraj110/chatApp/pkg/metrics"
)

// CreateGroup creates a group conversation with the requester as admin. The
// requester is always included; the final roster must hold at least two
// distinct members.
func (s *ConversationService) CreateGroup(ctx context.Context, requester *model.User, name string, participantIDs []primitive.ObjectID, avatar multipart.File, avatarHeader *multipart.FileHeader) (model.ConversationView, error) {
	roster := dedupeIDs(append([]primitive.ObjectID{requester.ID}, participantIDs...))
	if len(roster) < 2 {
		return model.ConversationView{}, invalid("Group must have at least 2 members")
	}

	n, err := s.users.CountByIDs(ctx, roster)
	if err != nil {
		return model.ConversationView{}, err
	}
	if n != int64(len(roster)) {
		return model.ConversationView{}, invalid("One or more users not found")
	}

	var avatarURL string
	if avatar != nil {
		avatarURL, err = s.uploadGroupAvatar(ctx, avatar, avatarHeader)
		if err != nil {
			return model.ConversationView{}, err
		}
	}

	conv, err := s.convs.Create(ctx, model.Conversation{
		Kind:         model.KindGroup,
		Participants: roster,
		GroupName:    name,
		GroupAvatar:  avatarURL,
		GroupAdmin:   requester.ID,
	})
	if err != nil {
		return model.ConversationView{}, err
	}

	view := conv.View()
	for _, p := range roster {
		s.events.Emit(p.Hex(), model.EventNewGroup, view)
	}
	metrics.ConversationsTotal.WithLabelValues(string(model.KindGroup)).Inc()

	s.logger.Info("group created",
		zap.String("conversation_id", conv.ID.Hex()),
		zap.String("admin_id", requester.ID.Hex()),
		zap.Int("members", len(roster)),
	)
	return view, nil
}

// AddMembers adds users to a group. A request where every candidate is
// already a member is rejected rather than treated as a no-op.
func (s *ConversationService) AddMembers(ctx context.Context, requester *model.User, convID primitive.ObjectID, userIDs []primitive.ObjectID) (model.ConversationView, error) {
	conv, err := s.loadGroup(ctx, requester, convID)
	if err != nil {
		return model.ConversationView{}, err
	}

	current := map[primitive.ObjectID]bool{}
	for _, p := range conv.Participants {
		current[p] = true
	}
	var added []primitive.ObjectID
	for _, id := range dedupeIDs(userIDs) {
		if !current[id] {
			added = append(added, id)
		}
	}
	if len(added) == 0 {
		return model.ConversationView{}, invalid("All users are already in the group")
	}

	n, err := s.users.CountByIDs(ctx, added)
	if err != nil {
		return model.ConversationView{}, err
	}
	if n != int64(len(added)) {
		return model.ConversationView{}, invalid("One or more users not found")
	}

	updated, err := s.convs.AddParticipants(ctx, convID, added)
	if err != nil {
		return model.ConversationView{}, err
	}

	view := updated.View()
	for _, id := range added {
		s.events.Emit(id.Hex(), model.EventAddedToGroup, view)
	}
	s.events.Emit(convID.Hex(), model.EventGroupUpdated, view)
	return view, nil
}

// RemoveMembers removes users from a group. Self-removal goes through
// LeaveGroup instead, and the group may never shrink below two members; a
// request that would do so is rejected whole.
func (s *ConversationService) RemoveMembers(ctx context.Context, requester *model.User, convID primitive.ObjectID, userIDs []primitive.ObjectID) (model.ConversationView, error) {
	conv, err := s.loadGroup(ctx, requester, convID)
	if err != nil {
		return model.ConversationView{}, err
	}

	removing := map[primitive.ObjectID]bool{}
	for _, id := range userIDs {
		if id == requester.ID {
			return model.ConversationView{}, invalid("Cannot remove yourself from the group")
		}
		removing[id] = true
	}

	var remaining, removed []primitive.ObjectID
	for _, p := range conv.Participants {
		if removing[p] {
			removed = append(removed, p)
		} else {
			remaining = append(remaining, p)
		}
	}
	if len(removed) == 0 {
		return model.ConversationView{}, invalid("One or more users not found")
	}
	if len(remaining) < 2 {
		return model.ConversationView{}, invalid("Group must have at least 2 members")
	}

	updated, err := s.convs.SetParticipants(ctx, convID, remaining)
	if err != nil {
		return model.ConversationView{}, err
	}

	view := updated.View()
	for _, id := range removed {
		s.events.Emit(id.Hex(), model.EventRemovedFromGroup, convID.Hex())
	}
	s.events.Emit(convID.Hex(), model.EventGroupUpdated, view)
	return view, nil
}

// UpdateGroup changes a group's name and/or avatar. Any participant may
// update; blank fields leave the current value in place.
func (s *ConversationService) UpdateGroup(ctx context.Context, requester *model.User, convID primitive.ObjectID, name string, avatar multipart.File, avatarHeader *multipart.FileHeader) (model.ConversationView, error) {
	conv, err := s.loadGroup(ctx, requester, convID)
	if err != nil {
		return model.ConversationView{}, err
	}

	var namePtr, avatarPtr *string
	if name != "" {
		namePtr = &name
	}
	if avatar != nil {
		url, err := s.uploadGroupAvatar(ctx, avatar, avatarHeader)
		if err != nil {
			return model.ConversationView{}, err
		}
		if conv.GroupAvatar != "" {
			if err := s.media.Delete(ctx, conv.GroupAvatar); err != nil {
				s.logger.Warn("failed to delete old group avatar",
					zap.String("conversation_id", convID.Hex()), zap.Error(err))
			}
		}
		avatarPtr = &url
	}
	if namePtr == nil && avatarPtr == nil {
		return model.ConversationView{}, invalid("Nothing to update")
	}

	updated, err := s.convs.UpdateGroupInfo(ctx, convID, namePtr, avatarPtr)
	if err != nil {
		return model.ConversationView{}, err
	}

	view := updated.View()
	s.events.Emit(convID.Hex(), model.EventGroupUpdated, view)
	return view, nil
}

// LeaveGroup removes the requester from a group. When fewer than two members
// would remain the group is dissolved along with its messages. The returned
// bool is true when the group was dissolved.
func (s *ConversationService) LeaveGroup(ctx context.Context, requester *model.User, convID primitive.ObjectID) (bool, error) {
	conv, err := s.loadGroup(ctx, requester, convID)
	if err != nil {
		return false, err
	}

	var remaining []primitive.ObjectID
	for _, p := range conv.Participants {
		if p != requester.ID {
			remaining = append(remaining, p)
		}
	}

	if len(remaining) < 2 {
		if err := s.deleteWithMessages(ctx, conv); err != nil {
			return false, err
		}
		s.events.Emit(convID.Hex(), model.EventGroupDeleted, convID.Hex())
		return true, nil
	}

	updated, err := s.convs.SetParticipants(ctx, convID, remaining)
	if err != nil {
		return false, err
	}
	s.events.Emit(convID.Hex(), model.EventGroupUpdated, updated.View())
	return false, nil
}

// DeleteGroup dissolves a group. Only the admin may do this; every former
// participant is notified on their personal room so clients that never joined
// the conversation room still learn of the deletion.
func (s *ConversationService) DeleteGroup(ctx context.Context, requester *model.User, convID primitive.ObjectID) error {
	conv, err := s.loadConversation(ctx, convID)
	if err != nil {
		return err
	}
	if conv.Kind != model.KindGroup {
		return invalid("Conversation is not a group")
	}
	if conv.GroupAdmin != requester.ID {
		return forbidden("Only group admin can delete the group")
	}

	if conv.GroupAvatar != "" {
		if err := s.media.Delete(ctx, conv.GroupAvatar); err != nil {
			s.logger.Warn("failed to delete group avatar",
				zap.String("conversation_id", convID.Hex()), zap.Error(err))
		}
	}

	participants := conv.Participants
	if err := s.deleteWithMessages(ctx, conv); err != nil {
		return err
	}

	s.events.Emit(convID.Hex(), model.EventGroupDeleted, convID.Hex())
	for _, p := range participants {
		s.events.Emit(p.Hex(), model.EventGroupDeleted, convID.Hex())
	}
	return nil
}

// loadGroup loads a conversation and checks it is a group the requester
// belongs to.
func (s *ConversationService) loadGroup(ctx context.Context, requester *model.User, convID primitive.ObjectID) (*model.Conversation, error) {
	conv, err := s.loadConversation(ctx, convID)
	if err != nil {
		return nil, err
	}
	if conv.Kind != model.KindGroup {
		return nil, invalid("Conversation is not a group")
	}
	if !conv.IsParticipant(requester.ID) {
		return nil, forbidden("User not part of this group")
	}
	return conv, nil
}

func (s *ConversationService) uploadGroupAvatar(ctx context.Context, file multipart.File, header *multipart.FileHeader) (string, error) {
	mimeType, err := media.DetectType(file, header)
	if err != nil {
		return "", upstream("Failed to read avatar file")
	}
	if !media.Allowed(mimeType, media.AvatarTypes) {
		return "", invalid("Only JPEG, PNG, WEBP images allowed for avatar")
	}
	url, err := s.media.Upload(ctx, file, header, "group-avatars")
	if err != nil {
		return "", upstream("Failed to upload group avatar")
	}
	return url, nil
}

func dedupeIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
