package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/maya-ai/engine/internal/api/types"
	"github.com/maya-ai/engine/internal/models"
	"github.com/maya-ai/engine/internal/repository"
	"github.com/maya-ai/engine/internal/services"
	"github.com/maya-ai/engine/internal/workspace"
	appErr "github.com/maya-ai/engine/pkg/errors"
)

type FloorsHandler struct {
	floors    repository.FloorRepository
	projects  repository.ProjectRepository
	workspace services.WorkspaceService
	validate  interface{ Struct(any) error }
}

func NewFloorsHandler(floors repository.FloorRepository, projects repository.ProjectRepository, ws services.WorkspaceService, v interface{ Struct(any) error }) *FloorsHandler {
	return &FloorsHandler{floors: floors, projects: projects, workspace: ws, validate: v}
}

func (h *FloorsHandler) ownedProject(r *http.Request, projectID uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := h.projects.GetByID(r.Context(), projectID, &p); err != nil {
		return nil, err
	}
	if p.UserID != currentUserID(r) {
		return nil, appErr.New(appErr.CodeUnauthorized, "user does not own project")
	}
	return &p, nil
}

func (h *FloorsHandler) GetByProject(w http.ResponseWriter, r *http.Request) {
	pid, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.ownedProject(r, pid); err != nil {
		writeAppError(w, err)
		return
	}
	var f models.Floor
	if err := h.floors.GetByProject(r.Context(), pid, &f); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: f})
}

func (h *FloorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.FloorCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}
	pid, _ := uuid.Parse(req.ProjectID)
	if _, err := h.ownedProject(r, pid); err != nil {
		writeAppError(w, err)
		return
	}
	name := req.Name
	if name == "" {
		name = "Main Floor"
	}
	f := models.Floor{ProjectID: pid, Name: name}
	if err := h.floors.Create(r.Context(), &f); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: f})
}

func (h *FloorsHandler) Rooms(w http.ResponseWriter, r *http.Request) {
	fid, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var f models.Floor
	if err := h.floors.GetByID(r.Context(), fid, &f); err != nil {
		writeAppError(w, err)
		return
	}
	if _, err := h.ownedProject(r, f.ProjectID); err != nil {
		writeAppError(w, err)
		return
	}
	rooms, err := h.floors.ListRooms(r.Context(), fid)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: rooms})
}

// SaveRooms persists the room inventory and seeds interior instances in one
// call.
func (h *FloorsHandler) SaveRooms(w http.ResponseWriter, r *http.Request) {
	var req types.SaveRoomsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}
	pid, _ := uuid.Parse(req.ProjectID)
	quantities := make([]workspace.RoomQuantity, 0, len(req.Rooms))
	for _, q := range req.Rooms {
		quantities = append(quantities, workspace.RoomQuantity{Name: q.Name, Quantity: q.Quantity})
	}
	result, err := h.workspace.SaveRooms(r.Context(), pid, currentUserID(r), quantities)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: result})
}
