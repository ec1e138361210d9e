package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/maya-ai/engine/internal/api/types"
	"github.com/maya-ai/engine/internal/services"
	appErr "github.com/maya-ai/engine/pkg/errors"
)

type ExteriorsHandler struct {
	workspace services.WorkspaceService
	validate  interface{ Struct(any) error }
}

func NewExteriorsHandler(ws services.WorkspaceService, v interface{ Struct(any) error }) *ExteriorsHandler {
	return &ExteriorsHandler{workspace: ws, validate: v}
}

func (h *ExteriorsHandler) LatestByProject(w http.ResponseWriter, r *http.Request) {
	pid, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	ext, err := h.workspace.LatestExterior(r.Context(), pid, currentUserID(r))
	if err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			// no preview yet is a normal state, not an error
			writeJSON(w, http.StatusOK, types.APIResponse{Success: true})
			return
		}
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: ext})
}

func (h *ExteriorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID string `json:"project_id" validate:"required,uuid4"`
		types.ExteriorCreateRequest
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}
	pid, _ := uuid.Parse(req.ProjectID)
	ext, err := h.workspace.GenerateExterior(r.Context(), pid, currentUserID(r), &services.ExteriorInput{
		FacadeStyle: req.FacadeStyle,
		Material:    req.Material,
		LandSize:    req.LandSize,
		Prompt:      req.Prompt,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: ext})
}
