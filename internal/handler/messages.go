package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Neeraj110/chatApp/internal/middleware"
	"github.com/Neeraj110/chatApp/internal/service"
)

// maxMediaBytes bounds message media uploads; video needs more headroom than
// avatars.
const maxMediaBytes = 25 << 20

// MessageHandler handles message endpoints.
type MessageHandler struct {
	msgs *service.MessageService
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(msgs *service.MessageService) *MessageHandler {
	return &MessageHandler{msgs: msgs}
}

// Send handles POST /api/messages/send, a multipart request with
// conversationId and content fields plus an optional "media" file field.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if err := r.ParseMultipartForm(maxMediaBytes); err != nil {
		writeValidationError(w, "Invalid request body")
		return
	}

	convID, err := middleware.ValidateObjectID(r.FormValue("conversationId"), "conversation ID")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	content := r.FormValue("content")
	if err := middleware.ValidateContent(content); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	var file multipart.File
	var header *multipart.FileHeader
	if f, fh, err := r.FormFile("media"); err == nil {
		file = f
		header = fh
		defer f.Close()
	}

	view, err := h.msgs.Send(r.Context(), user, convID, content, file, header)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{
		Success: true,
		Message: "Message sent successfully",
		Data:    view,
	})
}

// List handles GET /api/messages/{conversationId}.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	convID, err := middleware.ValidateObjectID(chi.URLParam(r, "conversationId"), "conversation ID")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	views, err := h.msgs.List(r.Context(), user, convID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success:  true,
		Messages: views,
	})
}
