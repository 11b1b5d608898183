package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Neeraj110/chatApp/internal/middleware"
	"github.com/Neeraj110/chatApp/internal/service"
)

// ConversationHandler handles direct-thread endpoints.
type ConversationHandler struct {
	convs *service.ConversationService
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(convs *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{convs: convs}
}

// List handles GET /api/messages/getConversations.
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	summaries, err := h.convs.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success:       true,
		Message:       "Conversations fetched successfully",
		Conversations: summaries,
	})
}

// Start handles POST /api/messages/startConversation. Starting an already
// existing thread returns it with a 200 instead of creating a duplicate.
func (h *ConversationHandler) Start(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req struct {
		RecipientID string `json:"recipientId"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, "Invalid request body")
		return
	}
	recipientID, err := middleware.ValidateObjectID(req.RecipientID, "user ID")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	conv, created, err := h.convs.Start(r.Context(), user, recipientID)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	message := "Conversation already exists"
	if created {
		status = http.StatusCreated
		message = "Conversation started successfully"
	}
	writeJSON(w, status, response{
		Success:      true,
		Message:      message,
		Conversation: conv,
	})
}

// Delete handles DELETE /api/messages/{conversationId}.
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	convID, err := middleware.ValidateObjectID(chi.URLParam(r, "conversationId"), "conversation ID")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	if err := h.convs.Delete(r.Context(), user, convID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Conversation deleted successfully",
	})
}
