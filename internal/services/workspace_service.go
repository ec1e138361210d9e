package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/maya-ai/engine/internal/aiclient"
	"github.com/maya-ai/engine/internal/imageurl"
	"github.com/maya-ai/engine/internal/models"
	"github.com/maya-ai/engine/internal/repository"
	"github.com/maya-ai/engine/internal/workspace"
	appErr "github.com/maya-ai/engine/pkg/errors"
	"github.com/maya-ai/engine/pkg/logger"
	"go.uber.org/zap"
)

const defaultFloorName = "Main Floor"

// WorkspaceService sequences a project through its three design stages:
// floor plan -> interior -> exterior. All image URLs it returns or stores
// are normalized to absolute form.
type WorkspaceService interface {
	LoadWorkspace(ctx context.Context, projectID, userID uuid.UUID) (*WorkspaceView, error)
	SaveRooms(ctx context.Context, projectID, userID uuid.UUID, quantities []workspace.RoomQuantity) (*SaveRoomsResult, error)
	GenerateRoomImage(ctx context.Context, projectID, userID uuid.UUID, design workspace.RoomDesign) (*models.InteriorRoom, error)
	SaveRoomDesigns(ctx context.Context, projectID, userID uuid.UUID, pending []workspace.RoomDesign) ([]models.InteriorRoom, error)
	GenerateExterior(ctx context.Context, projectID, userID uuid.UUID, input *ExteriorInput) (*models.Exterior, error)
	LatestExterior(ctx context.Context, projectID, userID uuid.UUID) (*models.Exterior, error)
}

// WorkspaceView is everything the workspace needs on mount.
type WorkspaceView struct {
	Project   *models.Project          `json:"project"`
	Floor     *models.Floor            `json:"floor"`
	Rooms     []workspace.RoomQuantity `json:"rooms"`
	Interior  *models.Interior         `json:"interior"`
	RoomViews []models.InteriorRoom    `json:"room_views"`
	Exterior  *models.Exterior         `json:"exterior,omitempty"`
	Stage     workspace.Stage          `json:"stage"`
}

// SaveRoomsResult reports both halves of the save-rooms sequence.
type SaveRoomsResult struct {
	Rooms     []workspace.RoomQuantity `json:"rooms"`
	RoomViews []models.InteriorRoom    `json:"room_views"`
	Stage     workspace.Stage          `json:"stage"`
}

// ExteriorInput is the single-shot exterior form.
type ExteriorInput struct {
	FacadeStyle string
	Material    string
	LandSize    string
	Prompt      string
}

type workspaceService struct {
	projectRepo  repository.ProjectRepository
	floorRepo    repository.FloorRepository
	interiorRepo repository.InteriorRepository
	exteriorRepo repository.ExteriorRepository
	ai           aiclient.Client
	urls         imageurl.Normalizer
}

func NewWorkspaceService(
	projectRepo repository.ProjectRepository,
	floorRepo repository.FloorRepository,
	interiorRepo repository.InteriorRepository,
	exteriorRepo repository.ExteriorRepository,
	ai aiclient.Client,
	urls imageurl.Normalizer,
) WorkspaceService {
	return &workspaceService{
		projectRepo:  projectRepo,
		floorRepo:    floorRepo,
		interiorRepo: interiorRepo,
		exteriorRepo: exteriorRepo,
		ai:           ai,
		urls:         urls,
	}
}

var _ WorkspaceService = (*workspaceService)(nil)

func (s *workspaceService) ownedProject(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := s.projectRepo.GetByID(ctx, projectID, &p); err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, appErr.New(appErr.CodeUnauthorized, "user does not own project")
	}
	return &p, nil
}

// ensureFloor fetches the project's floor, creating "Main Floor" if none
// exists yet. Get-before-create keeps the floor singular per project.
func (s *workspaceService) ensureFloor(ctx context.Context, projectID uuid.UUID) (*models.Floor, error) {
	var f models.Floor
	err := s.floorRepo.GetByProject(ctx, projectID, &f)
	if err == nil {
		return &f, nil
	}
	if !appErr.IsCode(err, appErr.CodeNotFound) {
		return nil, err
	}
	f = models.Floor{ProjectID: projectID, Name: defaultFloorName}
	if err := s.floorRepo.Create(ctx, &f); err != nil {
		return nil, err
	}
	logger.L().Info("floor created", zap.String("project_id", projectID.String()), zap.String("floor_id", f.ID.String()))
	return &f, nil
}

// ensureInterior mirrors ensureFloor; the interior is named after the project.
func (s *workspaceService) ensureInterior(ctx context.Context, project *models.Project) (*models.Interior, error) {
	var in models.Interior
	err := s.interiorRepo.GetByProject(ctx, project.ID, &in)
	if err == nil {
		return &in, nil
	}
	if !appErr.IsCode(err, appErr.CodeNotFound) {
		return nil, err
	}
	in = models.Interior{ProjectID: project.ID, Name: project.Name}
	if err := s.interiorRepo.Create(ctx, &in); err != nil {
		return nil, err
	}
	logger.L().Info("interior created", zap.String("project_id", project.ID.String()), zap.String("interior_id", in.ID.String()))
	return &in, nil
}

func (s *workspaceService) normalizeRooms(rooms []models.InteriorRoom) []models.InteriorRoom {
	for i := range rooms {
		rooms[i].ImageURL = s.urls.Normalize(rooms[i].ImageURL)
	}
	return rooms
}

// LoadWorkspace bootstraps the workspace for a project. Authorization
// failures are fatal; everything downstream degrades: a missing exterior is
// simply absent and the workspace still renders from whatever loaded.
func (s *workspaceService) LoadWorkspace(ctx context.Context, projectID, userID uuid.UUID) (*WorkspaceView, error) {
	p, err := s.ownedProject(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	view := &WorkspaceView{
		Project: p,
		Rooms:   workspace.MergeQuantities(nil),
		Stage:   workspace.Stage(p.Stage),
	}
	if !view.Stage.Valid() {
		view.Stage = workspace.StageFloorPlan
	}

	floor, err := s.ensureFloor(ctx, projectID)
	if err != nil {
		logger.L().Warn("floor bootstrap failed", zap.String("project_id", projectID.String()), zap.Error(err))
	} else {
		view.Floor = floor
		if rows, err := s.floorRepo.ListRooms(ctx, floor.ID); err == nil {
			persisted := make([]workspace.RoomQuantity, 0, len(rows))
			for _, r := range rows {
				persisted = append(persisted, workspace.RoomQuantity{Name: r.Name, Quantity: r.Quantity})
			}
			view.Rooms = workspace.MergeQuantities(persisted)
		} else {
			logger.L().Warn("floor rooms load failed", zap.String("floor_id", floor.ID.String()), zap.Error(err))
		}
	}

	interior, err := s.ensureInterior(ctx, p)
	if err != nil {
		logger.L().Warn("interior bootstrap failed", zap.String("project_id", projectID.String()), zap.Error(err))
	} else {
		view.Interior = interior
		if rooms, err := s.interiorRepo.ListRooms(ctx, interior.ID); err == nil {
			view.RoomViews = s.normalizeRooms(rooms)
		} else {
			logger.L().Warn("interior rooms load failed", zap.String("interior_id", interior.ID.String()), zap.Error(err))
		}
	}

	// latest exterior is best effort; failures are swallowed
	var ext models.Exterior
	if err := s.exteriorRepo.GetLatestByProject(ctx, projectID, &ext); err == nil {
		ext.ImageURL = s.urls.Normalize(ext.ImageURL)
		view.Exterior = &ext
	}

	return view, nil
}

// SaveRooms persists the room inventory and seeds interior instances.
// The two writes are sequential and deliberately not transactional across
// each other: if seeding fails the room save stays committed and the error
// surfaces to the caller.
func (s *workspaceService) SaveRooms(ctx context.Context, projectID, userID uuid.UUID, quantities []workspace.RoomQuantity) (*SaveRoomsResult, error) {
	p, err := s.ownedProject(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	floor, err := s.ensureFloor(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var rows []models.FloorRoom
	for _, q := range quantities {
		qty := workspace.ApplyQuantityDelta(q.Quantity, 0) // clamp
		if qty > 0 {
			rows = append(rows, models.FloorRoom{Name: q.Name, Quantity: qty})
		}
	}

	saved, err := s.floorRepo.ReplaceRooms(ctx, floor.ID, rows)
	if err != nil {
		return nil, err
	}

	// re-sync quantities from the authoritative rows
	persisted := make([]workspace.RoomQuantity, 0, len(saved))
	for _, r := range saved {
		persisted = append(persisted, workspace.RoomQuantity{Name: r.Name, Quantity: r.Quantity})
	}
	result := &SaveRoomsResult{Rooms: workspace.MergeQuantities(persisted)}

	interior, err := s.ensureInterior(ctx, p)
	if err != nil {
		return result, err
	}

	names := workspace.ExpandRoomInstances(persisted)
	seeded, err := s.interiorRepo.SeedRooms(ctx, interior.ID, names)
	if err != nil {
		// room save stays committed; surface the seed failure as-is
		return result, err
	}
	result.RoomViews = s.normalizeRooms(seeded)

	stage, err := workspace.Stage(p.Stage).Advance(workspace.StageInterior)
	if err == nil && stage != workspace.Stage(p.Stage) {
		if uerr := s.projectRepo.UpdateStage(ctx, projectID, string(stage)); uerr != nil {
			logger.L().Warn("stage advance failed", zap.String("project_id", projectID.String()), zap.Error(uerr))
		}
	}
	if err == nil {
		result.Stage = stage
	} else {
		result.Stage = workspace.Stage(p.Stage)
	}

	logger.L().Info("rooms saved",
		zap.String("project_id", projectID.String()),
		zap.Int("room_types", len(persisted)),
		zap.Int("instances", len(names)),
	)
	return result, nil
}

// GenerateRoomImage generates the image for exactly one room instance and
// updates only that row; siblings are untouched. Calls for different rooms
// may run concurrently, each with its own outcome.
func (s *workspaceService) GenerateRoomImage(ctx context.Context, projectID, userID uuid.UUID, design workspace.RoomDesign) (*models.InteriorRoom, error) {
	p, err := s.ownedProject(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	interior, err := s.ensureInterior(ctx, p)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.ai.GenerateInterior(ctx, aiclient.InteriorRequest{
		Room:  design.Name,
		Color: design.Color,
		Style: design.Style,
	})
	if err != nil {
		return nil, err
	}

	room := models.InteriorRoom{
		InteriorID: interior.ID,
		Name:       design.Name,
		Color:      design.Color,
		Style:      design.Style,
		ImageURL:   s.urls.Normalize(imageURL),
	}
	if err := s.interiorRepo.UpsertRoom(ctx, &room); err != nil {
		return nil, err
	}
	room.ImageURL = s.urls.Normalize(room.ImageURL)

	logger.L().Info("room image generated",
		zap.String("project_id", projectID.String()),
		zap.String("room", design.Name),
	)
	return &room, nil
}

// SaveRoomDesigns writes only the selections that differ from server state,
// then advances the stage to exterior whether or not anything needed saving.
func (s *workspaceService) SaveRoomDesigns(ctx context.Context, projectID, userID uuid.UUID, pending []workspace.RoomDesign) ([]models.InteriorRoom, error) {
	p, err := s.ownedProject(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	interior, err := s.ensureInterior(ctx, p)
	if err != nil {
		return nil, err
	}

	existing, err := s.interiorRepo.ListRooms(ctx, interior.ID)
	if err != nil {
		return nil, err
	}
	server := make(map[string]workspace.RoomDesign, len(existing))
	for _, r := range existing {
		server[r.Name] = workspace.RoomDesign{Name: r.Name, Color: r.Color, Style: r.Style}
	}

	diff := workspace.DiffRoomDesigns(server, pending)
	for _, d := range diff {
		room := models.InteriorRoom{InteriorID: interior.ID, Name: d.Name, Color: d.Color, Style: d.Style}
		if err := s.interiorRepo.UpsertRoom(ctx, &room); err != nil {
			return nil, err
		}
	}

	stage, serr := workspace.Stage(p.Stage).Advance(workspace.StageExterior)
	if serr == nil && stage != workspace.Stage(p.Stage) {
		if uerr := s.projectRepo.UpdateStage(ctx, projectID, string(stage)); uerr != nil {
			logger.L().Warn("stage advance failed", zap.String("project_id", projectID.String()), zap.Error(uerr))
		}
	}

	rooms, err := s.interiorRepo.ListRooms(ctx, interior.ID)
	if err != nil {
		return nil, err
	}
	return s.normalizeRooms(rooms), nil
}

// GenerateExterior creates a fresh exterior row per attempt. Earlier rows
// are superseded rather than mutated, so a failed generation never corrupts
// the last good preview.
func (s *workspaceService) GenerateExterior(ctx context.Context, projectID, userID uuid.UUID, input *ExteriorInput) (*models.Exterior, error) {
	if _, err := s.ownedProject(ctx, projectID, userID); err != nil {
		return nil, err
	}

	imageURL, err := s.ai.GenerateExterior(ctx, aiclient.ExteriorRequest{
		FacadeStyle: input.FacadeStyle,
		Material:    input.Material,
		LandSize:    input.LandSize,
		Prompt:      input.Prompt,
	})
	if err != nil {
		return nil, err
	}

	ext := models.Exterior{
		ProjectID:   projectID,
		FacadeStyle: input.FacadeStyle,
		Material:    input.Material,
		LandSize:    input.LandSize,
		Prompt:      input.Prompt,
		ImageURL:    s.urls.Normalize(imageURL),
	}
	if err := s.exteriorRepo.Create(ctx, &ext); err != nil {
		return nil, err
	}

	logger.L().Info("exterior generated",
		zap.String("project_id", projectID.String()),
		zap.String("exterior_id", ext.ID.String()),
	)
	ext.ImageURL = s.urls.Normalize(ext.ImageURL)
	return &ext, nil
}

func (s *workspaceService) LatestExterior(ctx context.Context, projectID, userID uuid.UUID) (*models.Exterior, error) {
	if _, err := s.ownedProject(ctx, projectID, userID); err != nil {
		return nil, err
	}
	var ext models.Exterior
	if err := s.exteriorRepo.GetLatestByProject(ctx, projectID, &ext); err != nil {
		return nil, err
	}
	ext.ImageURL = s.urls.Normalize(ext.ImageURL)
	return &ext, nil
}
