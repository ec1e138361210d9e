package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/maya-ai/engine/internal/api/types"
	"github.com/maya-ai/engine/internal/services"
)

// maxChatUpload bounds the multipart form, image included.
const maxChatUpload = 10 << 20

type ChatsHandler struct {
	chats    services.ChatService
	validate interface{ Struct(any) error }
}

func NewChatsHandler(chats services.ChatService, v interface{ Struct(any) error }) *ChatsHandler {
	return &ChatsHandler{chats: chats, validate: v}
}

func (h *ChatsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.chats.ListChats(r.Context(), currentUserID(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items})
}

func (h *ChatsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.ChatCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	c, err := h.chats.CreateChat(r.Context(), currentUserID(r), req.Title)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: c})
}

func (h *ChatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	c, msgs, err := h.chats.GetChat(r.Context(), id, currentUserID(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: map[string]any{
		"chat":     c,
		"messages": msgs,
	}})
}

func (h *ChatsHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req types.ChatRenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.chats.RenameChat(r.Context(), id, currentUserID(r), req.Title)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: c})
}

func (h *ChatsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.chats.DeleteChat(r.Context(), id, currentUserID(r)); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true})
}

// SendMessage accepts multipart/form-data with a "message" field and an
// optional "input_image" file.
func (h *ChatsHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxChatUpload); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	input := services.ChatInput{Message: r.FormValue("message")}
	if file, header, err := r.FormFile("input_image"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			writeErrorStr(w, http.StatusBadRequest, "reading image upload failed")
			return
		}
		input.Image = data
		input.ImageFilename = header.Filename
	}

	msg, err := h.chats.SendMessage(r.Context(), id, currentUserID(r), &input)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: msg})
}
