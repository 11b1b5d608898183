package service_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Neeraj110/chatApp/internal/model"
	"github.com/Neeraj110/chatApp/internal/service"
	"github.com/Neeraj110/chatApp/pkg/logger"
)

func newMessageService(f *convFixture) *service.MessageService {
	return service.NewMessageService(f.msgs, f.convs, f.users, f.media, f.events, logger.NewNop())
}

// formFile builds a multipart.File from raw bytes, the same shape the HTTP
// layer hands the service.
func formFile(t *testing.T, filename string, data []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("media", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write(data)
	mw.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	file, header, err := req.FormFile("media")
	if err != nil {
		t.Fatalf("FormFile: %v", err)
	}
	t.Cleanup(func() { file.Close() })
	return file, header
}

func pngBytes() []byte {
	return append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)
}

func TestSendMessage(t *testing.T) {
	f := newConvFixture(t)
	svc := newMessageService(f)
	ctx := context.Background()

	conv := f.convs.Seed(model.Conversation{
		Kind:         model.KindDirect,
		Participants: []primitive.ObjectID{f.alice.ID, f.bob.ID},
	})

	view, err := svc.Send(ctx, &f.alice, conv.ID, "  hello  ", nil, nil)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if view.Content != "hello" {
		t.Errorf("Send() content = %q, want trimmed %q", view.Content, "hello")
	}
	if view.Sender.ID != f.alice.ID.Hex() {
		t.Errorf("Send() sender = %s", view.Sender.ID)
	}

	// lastMessage follows the send.
	got, _ := f.convs.GetByID(ctx, conv.ID)
	if got.LastMessage.Hex() != view.ID {
		t.Errorf("lastMessage = %s, want %s", got.LastMessage.Hex(), view.ID)
	}

	// The conversation room hears about it after the write.
	emitted := f.events.ByEvent(model.EventNewMessage)
	if len(emitted) != 1 || emitted[0].Room != conv.ID.Hex() {
		t.Errorf("newMessage emissions = %v", emitted)
	}
}

func TestSendMessageWithMedia(t *testing.T) {
	f := newConvFixture(t)
	svc := newMessageService(f)
	ctx := context.Background()

	conv := f.convs.Seed(model.Conversation{
		Kind:         model.KindDirect,
		Participants: []primitive.ObjectID{f.alice.ID, f.bob.ID},
	})

	file, header := formFile(t, "photo.png", pngBytes())
	view, err := svc.Send(ctx, &f.alice, conv.ID, "", file, header)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if view.FileID == "" {
		t.Error("Send() returned no file URL for a media message")
	}
	if view.Content != "" {
		t.Errorf("Send() content = %q, want empty", view.Content)
	}
}

func TestSendMessageRejectsUnsupportedMedia(t *testing.T) {
	f := newConvFixture(t)
	svc := newMessageService(f)
	ctx := context.Background()

	conv := f.convs.Seed(model.Conversation{
		Kind:         model.KindDirect,
		Participants: []primitive.ObjectID{f.alice.ID, f.bob.ID},
	})

	// Content sniffing sees a PDF regardless of the declared name.
	file, header := formFile(t, "photo.png", []byte("%PDF-1.4 fake document body"))
	_, err := svc.Send(ctx, &f.alice, conv.ID, "", file, header)
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("Send() with a pdf error = %v, want ErrValidation", err)
	}

	// Rejection happens before any write.
	if msgs, _ := f.msgs.ListByConversation(ctx, conv.ID); len(msgs) != 0 {
		t.Errorf("Send() persisted %d messages after rejecting the file", len(msgs))
	}
	got, _ := f.convs.GetByID(ctx, conv.ID)
	if !got.LastMessage.IsZero() {
		t.Errorf("lastMessage = %s after rejection, want unset", got.LastMessage.Hex())
	}
}

func TestSendMessageUploadFailure(t *testing.T) {
	f := newConvFixture(t)
	svc := newMessageService(f)
	ctx := context.Background()

	conv := f.convs.Seed(model.Conversation{
		Kind:         model.KindDirect,
		Participants: []primitive.ObjectID{f.alice.ID, f.bob.ID},
	})
	f.media.FailUpload = true

	file, header := formFile(t, "photo.png", pngBytes())
	_, err := svc.Send(ctx, &f.alice, conv.ID, "look at this", file, header)
	if !errors.Is(err, service.ErrUpstream) {
		t.Fatalf("Send() with failing storage error = %v, want ErrUpstream", err)
	}

	// A failed upload commits nothing and tells no one.
	if msgs, _ := f.msgs.ListByConversation(ctx, conv.ID); len(msgs) != 0 {
		t.Errorf("Send() persisted %d messages after upload failure", len(msgs))
	}
	got, _ := f.convs.GetByID(ctx, conv.ID)
	if !got.LastMessage.IsZero() {
		t.Errorf("lastMessage = %s after upload failure, want unset", got.LastMessage.Hex())
	}
	if emitted := f.events.ByEvent(model.EventNewMessage); len(emitted) != 0 {
		t.Errorf("Send() emitted %d newMessage events after upload failure", len(emitted))
	}
}

func TestSendMessageRequiresTextOrMedia(t *testing.T) {
	f := newConvFixture(t)
	svc := newMessageService(f)
	ctx := context.Background()

	conv := f.convs.Seed(model.Conversation{
		Kind:         model.KindDirect,
		Participants: []primitive.ObjectID{f.alice.ID, f.bob.ID},
	})

	_, err := svc.Send(ctx, &f.alice, conv.ID, "   ", nil, nil)
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("Send() with blank content error = %v, want ErrValidation", err)
	}
	if msgs, _ := f.msgs.ListByConversation(ctx, conv.ID); len(msgs) != 0 {
		t.Errorf("Send() persisted %d messages after rejection", len(msgs))
	}
}

func TestSendMessageContentTooLong(t *testing.T) {
	f := newConvFixture(t)
	svc := newMessageService(f)

	conv := f.convs.Seed(model.Conversation{
		Kind:         model.KindDirect,
		Participants: []primitive.ObjectID{f.alice.ID, f.bob.ID},
	})

	long := strings.Repeat("a", model.MaxContentLength+1)
	_, err := svc.Send(context.Background(), &f.alice, conv.ID, long, nil, nil)
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("Send() over-length error = %v, want ErrValidation", err)
	}
}

func TestSendMessageMembership(t *testing.T) {
	f := newConvFixture(t)
	svc := newMessageService(f)
	ctx := context.Background()

	conv := f.convs.Seed(model.Conversation{
		Kind:         model.KindDirect,
		Participants: []primitive.ObjectID{f.alice.ID, f.bob.ID},
	})

	if _, err := svc.Send(ctx, &f.cara, conv.ID, "hi", nil, nil); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("Send() by outsider error = %v, want ErrForbidden", err)
	}
	if _, err := svc.Send(ctx, &f.alice, primitive.NewObjectID(), "hi", nil, nil); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Send() to missing conversation error = %v, want ErrNotFound", err)
	}
}

func TestListMessages(t *testing.T) {
	f := newConvFixture(t)
	svc := newMessageService(f)
	ctx := context.Background()

	conv := f.convs.Seed(model.Conversation{
		Kind:         model.KindDirect,
		Participants: []primitive.ObjectID{f.alice.ID, f.bob.ID},
	})
	if _, err := svc.Send(ctx, &f.alice, conv.ID, "one", nil, nil); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if _, err := svc.Send(ctx, &f.bob, conv.ID, "two", nil, nil); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	views, err := svc.List(ctx, &f.alice, conv.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("List() returned %d messages, want 2", len(views))
	}
	if views[0].Content != "one" || views[1].Content != "two" {
		t.Errorf("List() order = %q, %q", views[0].Content, views[1].Content)
	}
	if views[1].Sender.Name != "Bob" {
		t.Errorf("List() sender resolution = %q", views[1].Sender.Name)
	}

	if _, err := svc.List(ctx, &f.cara, conv.ID); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("List() by outsider error = %v, want ErrForbidden", err)
	}
}
