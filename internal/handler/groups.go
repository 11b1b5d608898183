package handler

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Neeraj110/chatApp/internal/middleware"
	"github.com/Neeraj110/chatApp/internal/service"
)

var errInvalidParticipants = errors.New("Group must have at least 2 participants")

// GroupHandler handles group conversation endpoints.
type GroupHandler struct {
	convs *service.ConversationService
}

// NewGroupHandler creates a new group handler.
func NewGroupHandler(convs *service.ConversationService) *GroupHandler {
	return &GroupHandler{convs: convs}
}

// Create handles POST /api/messages/group, a multipart request with
// groupName and participants fields plus an optional "groupAvatar" file.
// Participants is a JSON array of user ids.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		writeValidationError(w, "Invalid request body")
		return
	}

	name, err := middleware.ValidateGroupName(r.FormValue("groupName"))
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	participants, err := parseParticipants(r.FormValue("participants"))
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	var file multipart.File
	var header *multipart.FileHeader
	if f, fh, err := r.FormFile("groupAvatar"); err == nil {
		file = f
		header = fh
		defer f.Close()
	}

	conv, err := h.convs.CreateGroup(r.Context(), user, name, participants, file, header)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{
		Success:      true,
		Message:      "Group created successfully",
		Conversation: conv,
	})
}

// Update handles PATCH /api/messages/group, a multipart request carrying
// conversationId plus an optional groupName field and "groupAvatar" file.
func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		writeValidationError(w, "Invalid request body")
		return
	}

	convID, err := middleware.ValidateObjectID(r.FormValue("conversationId"), "conversation ID")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	name := r.FormValue("groupName")
	if name != "" {
		if name, err = middleware.ValidateGroupName(name); err != nil {
			writeValidationError(w, err.Error())
			return
		}
	}

	var file multipart.File
	var header *multipart.FileHeader
	if f, fh, err := r.FormFile("groupAvatar"); err == nil {
		file = f
		header = fh
		defer f.Close()
	}

	if name == "" && file == nil {
		writeValidationError(w, "At least one of groupName or groupAvatar is required")
		return
	}

	conv, err := h.convs.UpdateGroup(r.Context(), user, convID, name, file, header)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success:      true,
		Message:      "Group updated successfully",
		Conversation: conv,
	})
}

// AddMembers handles PATCH /api/messages/group/members/add.
func (h *GroupHandler) AddMembers(w http.ResponseWriter, r *http.Request) {
	h.changeMembers(w, r, true)
}

// RemoveMembers handles PATCH /api/messages/group/members/remove.
func (h *GroupHandler) RemoveMembers(w http.ResponseWriter, r *http.Request) {
	h.changeMembers(w, r, false)
}

func (h *GroupHandler) changeMembers(w http.ResponseWriter, r *http.Request, add bool) {
	user := middleware.GetUser(r.Context())

	var req struct {
		ConversationID string   `json:"conversationId"`
		Participants   []string `json:"participants"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, "Invalid request body")
		return
	}
	convID, err := middleware.ValidateObjectID(req.ConversationID, "conversation ID")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if len(req.Participants) == 0 {
		if add {
			writeValidationError(w, "At least one participant must be added")
		} else {
			writeValidationError(w, "At least one participant must be removed")
		}
		return
	}
	ids := make([]primitive.ObjectID, 0, len(req.Participants))
	for _, raw := range req.Participants {
		id, err := middleware.ValidateObjectID(raw, "user ID")
		if err != nil {
			writeValidationError(w, err.Error())
			return
		}
		ids = append(ids, id)
	}

	var conv any
	var message string
	if add {
		conv, err = h.convs.AddMembers(r.Context(), user, convID, ids)
		message = "Members added successfully"
	} else {
		conv, err = h.convs.RemoveMembers(r.Context(), user, convID, ids)
		message = "Members removed successfully"
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success:      true,
		Message:      message,
		Conversation: conv,
	})
}

// Leave handles POST /api/messages/group/leave/{conversationId}.
func (h *GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	convID, err := middleware.ValidateObjectID(chi.URLParam(r, "conversationId"), "conversation ID")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	deleted, err := h.convs.LeaveGroup(r.Context(), user, convID)
	if err != nil {
		writeError(w, err)
		return
	}

	message := "Left group successfully"
	if deleted {
		message = "You left the group. Group deleted as it had less than 2 members."
	}
	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: message,
	})
}

// Delete handles DELETE /api/messages/group/{conversationId}.
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	convID, err := middleware.ValidateObjectID(chi.URLParam(r, "conversationId"), "conversation ID")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	if err := h.convs.DeleteGroup(r.Context(), user, convID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Group deleted successfully",
	})
}

// parseParticipants accepts either a JSON array of ids or a single id per
// repeated form value serialized as JSON.
func parseParticipants(raw string) ([]primitive.ObjectID, error) {
	if raw == "" {
		return nil, errInvalidParticipants
	}
	var hexIDs []string
	if err := json.Unmarshal([]byte(raw), &hexIDs); err != nil {
		// Not an array; treat the value as one id.
		hexIDs = []string{raw}
	}
	ids := make([]primitive.ObjectID, 0, len(hexIDs))
	for _, h := range hexIDs {
		id, err := middleware.ValidateObjectID(h, "user ID")
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
