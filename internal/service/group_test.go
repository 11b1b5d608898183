package service_test

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Neeraj110/chatApp/internal/model"
	"github.com/Neeraj110/chatApp/internal/service"
)

func (f *convFixture) seedGroup(admin model.User, members ...model.User) model.Conversation {
	ids := []primitive.ObjectID{admin.ID}
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return f.convs.Seed(model.Conversation{
		Kind:         model.KindGroup,
		GroupName:    "test group",
		GroupAdmin:   admin.ID,
		Participants: ids,
	})
}

func TestCreateGroup(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()

	conv, err := f.svc.CreateGroup(ctx, &f.alice, "weekend plans",
		[]primitive.ObjectID{f.bob.ID, f.cara.ID}, nil, nil)
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	if !conv.IsGroup {
		t.Error("CreateGroup() produced a non-group conversation")
	}
	if len(conv.Participants) != 3 {
		t.Errorf("CreateGroup() participants = %d, want 3", len(conv.Participants))
	}
	if conv.GroupAdmin != f.alice.ID.Hex() {
		t.Errorf("CreateGroup() admin = %s, want requester", conv.GroupAdmin)
	}

	if got := f.events.ByEvent(model.EventNewGroup); len(got) != 3 {
		t.Errorf("newGroup emitted %d times, want 3", len(got))
	}
}

func TestCreateGroupRequesterIncludedOnce(t *testing.T) {
	f := newConvFixture(t)

	// Requester listed explicitly must not be duplicated.
	conv, err := f.svc.CreateGroup(context.Background(), &f.alice, "dup check",
		[]primitive.ObjectID{f.alice.ID, f.bob.ID}, nil, nil)
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	if len(conv.Participants) != 2 {
		t.Errorf("CreateGroup() participants = %d, want 2", len(conv.Participants))
	}
}

func TestCreateGroupTooSmall(t *testing.T) {
	f := newConvFixture(t)

	_, err := f.svc.CreateGroup(context.Background(), &f.alice, "just me", nil, nil, nil)
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("CreateGroup() with no members error = %v, want ErrValidation", err)
	}
}

func TestCreateGroupUnknownParticipant(t *testing.T) {
	f := newConvFixture(t)

	_, err := f.svc.CreateGroup(context.Background(), &f.alice, "ghosts",
		[]primitive.ObjectID{f.bob.ID, primitive.NewObjectID()}, nil, nil)
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("CreateGroup() error = %v, want ErrValidation", err)
	}
}

func TestAddMembers(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()
	conv := f.seedGroup(f.alice, f.bob)

	updated, err := f.svc.AddMembers(ctx, &f.alice, conv.ID, []primitive.ObjectID{f.cara.ID})
	if err != nil {
		t.Fatalf("AddMembers() error = %v", err)
	}
	if len(updated.Participants) != 3 {
		t.Errorf("AddMembers() participants = %d, want 3", len(updated.Participants))
	}

	// New member's personal room plus the conversation room.
	if got := f.events.ByEvent(model.EventAddedToGroup); len(got) != 1 || got[0].Room != f.cara.ID.Hex() {
		t.Errorf("addedToGroup emissions = %v", got)
	}
	if got := f.events.ByEvent(model.EventGroupUpdated); len(got) != 1 || got[0].Room != conv.ID.Hex() {
		t.Errorf("groupUpdated emissions = %v", got)
	}
}

func TestAddMembersAllRedundant(t *testing.T) {
	f := newConvFixture(t)
	conv := f.seedGroup(f.alice, f.bob)

	_, err := f.svc.AddMembers(context.Background(), &f.alice, conv.ID, []primitive.ObjectID{f.bob.ID})
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("AddMembers() fully redundant error = %v, want ErrValidation", err)
	}
	if err.Error() != "All users are already in the group" {
		t.Errorf("AddMembers() message = %q", err.Error())
	}
}

func TestAddMembersOutsider(t *testing.T) {
	f := newConvFixture(t)
	conv := f.seedGroup(f.alice, f.bob)

	_, err := f.svc.AddMembers(context.Background(), &f.cara, conv.ID, []primitive.ObjectID{f.cara.ID})
	if !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("AddMembers() by outsider error = %v, want ErrForbidden", err)
	}
}

func TestRemoveMembers(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()
	conv := f.seedGroup(f.alice, f.bob, f.cara)

	updated, err := f.svc.RemoveMembers(ctx, &f.alice, conv.ID, []primitive.ObjectID{f.cara.ID})
	if err != nil {
		t.Fatalf("RemoveMembers() error = %v", err)
	}
	if len(updated.Participants) != 2 {
		t.Errorf("RemoveMembers() participants = %d, want 2", len(updated.Participants))
	}
	if got := f.events.ByEvent(model.EventRemovedFromGroup); len(got) != 1 || got[0].Room != f.cara.ID.Hex() {
		t.Errorf("removedFromGroup emissions = %v", got)
	}
}

func TestRemoveMembersRejectsSelf(t *testing.T) {
	f := newConvFixture(t)
	conv := f.seedGroup(f.alice, f.bob, f.cara)

	_, err := f.svc.RemoveMembers(context.Background(), &f.alice, conv.ID, []primitive.ObjectID{f.alice.ID})
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("RemoveMembers() self error = %v, want ErrValidation", err)
	}
}

func TestRemoveMembersBelowMinimum(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()
	conv := f.seedGroup(f.alice, f.bob, f.cara)

	// Removing two of three would leave one member; the whole request is
	// rejected, not partially applied.
	_, err := f.svc.RemoveMembers(ctx, &f.alice, conv.ID, []primitive.ObjectID{f.bob.ID, f.cara.ID})
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("RemoveMembers() error = %v, want ErrValidation", err)
	}
	got, _ := f.convs.GetByID(ctx, conv.ID)
	if len(got.Participants) != 3 {
		t.Errorf("RemoveMembers() partially applied: %d participants", len(got.Participants))
	}
}

func TestUpdateGroupAnyParticipant(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()
	conv := f.seedGroup(f.alice, f.bob)

	// A non-admin participant may rename the group.
	updated, err := f.svc.UpdateGroup(ctx, &f.bob, conv.ID, "new name", nil, nil)
	if err != nil {
		t.Fatalf("UpdateGroup() error = %v", err)
	}
	if updated.GroupName != "new name" {
		t.Errorf("UpdateGroup() name = %q", updated.GroupName)
	}

	if _, err := f.svc.UpdateGroup(ctx, &f.cara, conv.ID, "x", nil, nil); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("UpdateGroup() by outsider error = %v, want ErrForbidden", err)
	}
}

func TestUpdateGroupAvatarUploadFailure(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()

	conv := f.convs.Seed(model.Conversation{
		Kind:         model.KindGroup,
		GroupName:    "test group",
		GroupAdmin:   f.alice.ID,
		GroupAvatar:  "http://media.test/group-avatars/old",
		Participants: []primitive.ObjectID{f.alice.ID, f.bob.ID, f.cara.ID},
	})
	f.media.FailUpload = true

	file, header := formFile(t, "avatar.png", pngBytes())
	if _, err := f.svc.UpdateGroup(ctx, &f.alice, conv.ID, "", file, header); !errors.Is(err, service.ErrUpstream) {
		t.Fatalf("UpdateGroup() with failing storage error = %v, want ErrUpstream", err)
	}

	// The new object is uploaded before the old one goes away, so a failed
	// upload leaves the group pointing at an object that still exists.
	got, _ := f.convs.GetByID(ctx, conv.ID)
	if got.GroupAvatar != "http://media.test/group-avatars/old" {
		t.Errorf("groupAvatar = %q after failed upload, want the old URL", got.GroupAvatar)
	}
	if len(f.media.Deleted) != 0 {
		t.Errorf("old avatar objects deleted after failed upload: %v", f.media.Deleted)
	}
}

func TestLeaveGroup(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()
	conv := f.seedGroup(f.alice, f.bob, f.cara)

	deleted, err := f.svc.LeaveGroup(ctx, &f.cara, conv.ID)
	if err != nil {
		t.Fatalf("LeaveGroup() error = %v", err)
	}
	if deleted {
		t.Error("LeaveGroup() dissolved a three-member group")
	}
	got, _ := f.convs.GetByID(ctx, conv.ID)
	if len(got.Participants) != 2 {
		t.Errorf("LeaveGroup() participants = %d, want 2", len(got.Participants))
	}
}

func TestLeaveGroupDissolvesBelowMinimum(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()
	conv := f.seedGroup(f.alice, f.bob)
	f.msgs.Insert(ctx, model.Message{ConversationID: conv.ID, Sender: f.alice.ID, Content: "bye"})

	deleted, err := f.svc.LeaveGroup(ctx, &f.bob, conv.ID)
	if err != nil {
		t.Fatalf("LeaveGroup() error = %v", err)
	}
	if !deleted {
		t.Fatal("LeaveGroup() should dissolve a group dropping below 2 members")
	}
	if _, err := f.convs.GetByID(ctx, conv.ID); err == nil {
		t.Error("LeaveGroup() left the conversation record")
	}
	if msgs, _ := f.msgs.ListByConversation(ctx, conv.ID); len(msgs) != 0 {
		t.Errorf("LeaveGroup() left %d messages", len(msgs))
	}
	if got := f.events.ByEvent(model.EventGroupDeleted); len(got) != 1 || got[0].Room != conv.ID.Hex() {
		t.Errorf("groupDeleted emissions = %v", got)
	}
}

func TestDeleteGroupAdminOnly(t *testing.T) {
	f := newConvFixture(t)
	ctx := context.Background()
	conv := f.seedGroup(f.alice, f.bob, f.cara)

	if err := f.svc.DeleteGroup(ctx, &f.bob, conv.ID); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("DeleteGroup() by non-admin error = %v, want ErrForbidden", err)
	}

	if err := f.svc.DeleteGroup(ctx, &f.alice, conv.ID); err != nil {
		t.Fatalf("DeleteGroup() error = %v", err)
	}
	if _, err := f.convs.GetByID(ctx, conv.ID); err == nil {
		t.Error("DeleteGroup() left the conversation record")
	}

	// Conversation room plus every former participant's personal room.
	got := f.events.ByEvent(model.EventGroupDeleted)
	if len(got) != 4 {
		t.Fatalf("groupDeleted emitted %d times, want 4", len(got))
	}
	rooms := map[string]bool{}
	for _, e := range got {
		rooms[e.Room] = true
	}
	for _, want := range []string{conv.ID.Hex(), f.alice.ID.Hex(), f.bob.ID.Hex(), f.cara.ID.Hex()} {
		if !rooms[want] {
			t.Errorf("groupDeleted missing room %s", want)
		}
	}
}
