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

type InteriorsHandler struct {
	interiors repository.InteriorRepository
	projects  repository.ProjectRepository
	workspace services.WorkspaceService
	validate  interface{ Struct(any) error }
}

func NewInteriorsHandler(interiors repository.InteriorRepository, projects repository.ProjectRepository, ws services.WorkspaceService, v interface{ Struct(any) error }) *InteriorsHandler {
	return &InteriorsHandler{interiors: interiors, projects: projects, workspace: ws, validate: v}
}

func (h *InteriorsHandler) ownedProject(r *http.Request, projectID uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := h.projects.GetByID(r.Context(), projectID, &p); err != nil {
		return nil, err
	}
	if p.UserID != currentUserID(r) {
		return nil, appErr.New(appErr.CodeUnauthorized, "user does not own project")
	}
	return &p, nil
}

func (h *InteriorsHandler) GetByProject(w http.ResponseWriter, r *http.Request) {
	pid, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.ownedProject(r, pid); err != nil {
		writeAppError(w, err)
		return
	}
	var in models.Interior
	if err := h.interiors.GetByProject(r.Context(), pid, &in); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: in})
}

func (h *InteriorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.InteriorCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}
	pid, _ := uuid.Parse(req.ProjectID)
	p, err := h.ownedProject(r, pid)
	if err != nil {
		writeAppError(w, err)
		return
	}
	name := req.Name
	if name == "" {
		name = p.Name
	}
	in := models.Interior{ProjectID: pid, Name: name}
	if err := h.interiors.Create(r.Context(), &in); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: in})
}

func (h *InteriorsHandler) Rooms(w http.ResponseWriter, r *http.Request) {
	iid, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var in models.Interior
	if err := h.interiors.GetByID(r.Context(), iid, &in); err != nil {
		writeAppError(w, err)
		return
	}
	if _, err := h.ownedProject(r, in.ProjectID); err != nil {
		writeAppError(w, err)
		return
	}
	rooms, err := h.interiors.ListRooms(r.Context(), iid)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: rooms})
}

// SaveRooms persists room design selections. With ?generate=true each
// submitted room also gets a freshly generated image, one upstream call per
// room; without it only changed selections are written.
func (h *InteriorsHandler) SaveRooms(w http.ResponseWriter, r *http.Request) {
	iid, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var in models.Interior
	if err := h.interiors.GetByID(r.Context(), iid, &in); err != nil {
		writeAppError(w, err)
		return
	}

	var req types.SaveRoomDesignsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	designs := make([]workspace.RoomDesign, 0, len(req.Rooms))
	for _, d := range req.Rooms {
		designs = append(designs, workspace.RoomDesign{Name: d.Name, Color: d.Color, Style: d.Style})
	}

	uid := currentUserID(r)
	if r.URL.Query().Get("generate") == "true" {
		out := make([]models.InteriorRoom, 0, len(designs))
		for _, d := range designs {
			room, err := h.workspace.GenerateRoomImage(r.Context(), in.ProjectID, uid, d)
			if err != nil {
				writeAppError(w, err)
				return
			}
			out = append(out, *room)
		}
		writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: out})
		return
	}

	rooms, err := h.workspace.SaveRoomDesigns(r.Context(), in.ProjectID, uid, designs)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: rooms})
}
