package services

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maya-ai/engine/internal/aiclient"
	"github.com/maya-ai/engine/internal/imageurl"
	"github.com/maya-ai/engine/internal/models"
	"github.com/maya-ai/engine/internal/workspace"
	appErr "github.com/maya-ai/engine/pkg/errors"
	"github.com/maya-ai/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests (required by services)
	_, err := logger.Init("info", "json")
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

// Mock implementations
type mockProjectRepo struct {
	mock.Mock
}

func (m *mockProjectRepo) Create(ctx context.Context, obj *models.Project) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockProjectRepo) GetByID(ctx context.Context, id any, dest *models.Project) error {
	args := m.Called(ctx, id, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.Project)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockProjectRepo) Update(ctx context.Context, obj *models.Project) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockProjectRepo) Delete(ctx context.Context, id any) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProjectRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]models.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProjectRepo) List(ctx context.Context) ([]models.Project, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]models.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProjectRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProjectRepo) UpdateStage(ctx context.Context, projectID uuid.UUID, stage string) error {
	args := m.Called(ctx, projectID, stage)
	return args.Error(0)
}

type mockFloorRepo struct {
	mock.Mock
}

func (m *mockFloorRepo) Create(ctx context.Context, obj *models.Floor) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockFloorRepo) GetByID(ctx context.Context, id any, dest *models.Floor) error {
	args := m.Called(ctx, id, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.Floor)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockFloorRepo) Update(ctx context.Context, obj *models.Floor) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockFloorRepo) Delete(ctx context.Context, id any) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockFloorRepo) GetByProject(ctx context.Context, projectID uuid.UUID, dest *models.Floor) error {
	args := m.Called(ctx, projectID, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.Floor)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockFloorRepo) ListRooms(ctx context.Context, floorID uuid.UUID) ([]models.FloorRoom, error) {
	args := m.Called(ctx, floorID)
	if v := args.Get(0); v != nil {
		return v.([]models.FloorRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFloorRepo) ReplaceRooms(ctx context.Context, floorID uuid.UUID, rooms []models.FloorRoom) ([]models.FloorRoom, error) {
	args := m.Called(ctx, floorID, rooms)
	if v := args.Get(0); v != nil {
		return v.([]models.FloorRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockInteriorRepo struct {
	mock.Mock
}

func (m *mockInteriorRepo) Create(ctx context.Context, obj *models.Interior) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockInteriorRepo) GetByID(ctx context.Context, id any, dest *models.Interior) error {
	args := m.Called(ctx, id, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.Interior)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockInteriorRepo) Update(ctx context.Context, obj *models.Interior) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockInteriorRepo) Delete(ctx context.Context, id any) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockInteriorRepo) GetByProject(ctx context.Context, projectID uuid.UUID, dest *models.Interior) error {
	args := m.Called(ctx, projectID, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.Interior)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockInteriorRepo) ListRooms(ctx context.Context, interiorID uuid.UUID) ([]models.InteriorRoom, error) {
	args := m.Called(ctx, interiorID)
	if v := args.Get(0); v != nil {
		return v.([]models.InteriorRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInteriorRepo) GetRoomByName(ctx context.Context, interiorID uuid.UUID, name string, dest *models.InteriorRoom) error {
	args := m.Called(ctx, interiorID, name, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.InteriorRoom)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockInteriorRepo) UpsertRoom(ctx context.Context, room *models.InteriorRoom) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *mockInteriorRepo) SeedRooms(ctx context.Context, interiorID uuid.UUID, names []string) ([]models.InteriorRoom, error) {
	args := m.Called(ctx, interiorID, names)
	if v := args.Get(0); v != nil {
		return v.([]models.InteriorRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockExteriorRepo struct {
	mock.Mock
}

func (m *mockExteriorRepo) Create(ctx context.Context, obj *models.Exterior) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockExteriorRepo) GetByID(ctx context.Context, id any, dest *models.Exterior) error {
	args := m.Called(ctx, id, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.Exterior)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockExteriorRepo) Update(ctx context.Context, obj *models.Exterior) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockExteriorRepo) Delete(ctx context.Context, id any) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockExteriorRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Exterior, error) {
	args := m.Called(ctx, projectID)
	if v := args.Get(0); v != nil {
		return v.([]models.Exterior), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockExteriorRepo) GetLatestByProject(ctx context.Context, projectID uuid.UUID, dest *models.Exterior) error {
	args := m.Called(ctx, projectID, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.Exterior)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockExteriorRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockGenClient struct {
	mock.Mock
}

func (m *mockGenClient) GenerateInterior(ctx context.Context, req aiclient.InteriorRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockGenClient) GenerateExterior(ctx context.Context, req aiclient.ExteriorRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockGenClient) Chat(ctx context.Context, req aiclient.ChatRequest) (*aiclient.ChatReply, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*aiclient.ChatReply), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGenClient) DownloadImage(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	if v := args.Get(0); v != nil {
		return v.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

var testURLs = imageurl.New("https://ai.example.com", "https://api.example.com")

func TestWorkspaceService_SaveRoomsThenGenerate(t *testing.T) {
	projectID := uuid.New()
	userID := uuid.New()
	floorID := uuid.New()
	interiorID := uuid.New()

	projectRepo := &mockProjectRepo{}
	floorRepo := &mockFloorRepo{}
	interiorRepo := &mockInteriorRepo{}
	exteriorRepo := &mockExteriorRepo{}
	ai := &mockGenClient{}

	svc := NewWorkspaceService(projectRepo, floorRepo, interiorRepo, exteriorRepo, ai, testURLs)

	project := &models.Project{ID: projectID, UserID: userID, Name: "lakeside-villa", Stage: string(workspace.StageFloorPlan)}
	projectRepo.On("GetByID", mock.Anything, projectID, &models.Project{}).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*models.Project)
			*dest = *project
		}).Return(nil, project)

	// save 2 bedrooms + 1 kitchen
	floor := &models.Floor{ID: floorID, ProjectID: projectID, Name: "Main Floor"}
	floorRepo.On("GetByProject", mock.Anything, projectID, &models.Floor{}).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*models.Floor)
			*dest = *floor
		}).Return(nil, floor)

	saved := []models.FloorRoom{
		{FloorID: floorID, Name: "Bedroom", Quantity: 2},
		{FloorID: floorID, Name: "Kitchen", Quantity: 1},
	}
	floorRepo.On("ReplaceRooms", mock.Anything, floorID, mock.MatchedBy(func(rooms []models.FloorRoom) bool {
		return len(rooms) == 2
	})).Return(saved, nil).Once()

	interior := &models.Interior{ID: interiorID, ProjectID: projectID, Name: "lakeside-villa"}
	interiorRepo.On("GetByProject", mock.Anything, projectID, &models.Interior{}).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*models.Interior)
			*dest = *interior
		}).Return(nil, interior)

	// instances expand to Bedroom 1, Bedroom 2, Kitchen; none has an image yet
	seeded := []models.InteriorRoom{
		{InteriorID: interiorID, Name: "Bedroom 1"},
		{InteriorID: interiorID, Name: "Bedroom 2"},
		{InteriorID: interiorID, Name: "Kitchen"},
	}
	interiorRepo.On("SeedRooms", mock.Anything, interiorID, []string{"Bedroom 1", "Bedroom 2", "Kitchen"}).
		Return(seeded, nil).Once()

	projectRepo.On("UpdateStage", mock.Anything, projectID, string(workspace.StageInterior)).Return(nil).Once()

	result, err := svc.SaveRooms(context.Background(), projectID, userID, []workspace.RoomQuantity{
		{Name: "Bedroom", Quantity: 2},
		{Name: "Kitchen", Quantity: 1},
	})
	require.NoError(t, err)
	require.Equal(t, workspace.StageInterior, result.Stage)
	require.Len(t, result.RoomViews, 3)
	for _, rv := range result.RoomViews {
		require.Empty(t, rv.ImageURL)
	}

	// generating Bedroom 1 touches only that row
	ai.On("GenerateInterior", mock.Anything, aiclient.InteriorRequest{
		Room:  "Bedroom 1",
		Color: "green",
		Style: "scandinavian",
	}).Return("/images/bedroom1.png", nil).Once()

	interiorRepo.On("UpsertRoom", mock.Anything, mock.MatchedBy(func(room *models.InteriorRoom) bool {
		return room.Name == "Bedroom 1" &&
			room.InteriorID == interiorID &&
			room.ImageURL == "https://ai.example.com/images/bedroom1.png"
	})).Return(nil).Once()

	room, err := svc.GenerateRoomImage(context.Background(), projectID, userID, workspace.RoomDesign{
		Name:  "Bedroom 1",
		Color: "green",
		Style: "scandinavian",
	})
	require.NoError(t, err)
	require.Equal(t, "Bedroom 1", room.Name)
	require.Equal(t, "https://ai.example.com/images/bedroom1.png", room.ImageURL)

	mock.AssertExpectationsForObjects(t, projectRepo, floorRepo, interiorRepo, exteriorRepo, ai)
}

func TestWorkspaceService_SaveRoomDesignsDiffOnly(t *testing.T) {
	projectID := uuid.New()
	userID := uuid.New()
	interiorID := uuid.New()

	projectRepo := &mockProjectRepo{}
	floorRepo := &mockFloorRepo{}
	interiorRepo := &mockInteriorRepo{}
	exteriorRepo := &mockExteriorRepo{}
	ai := &mockGenClient{}

	svc := NewWorkspaceService(projectRepo, floorRepo, interiorRepo, exteriorRepo, ai, testURLs)

	project := &models.Project{ID: projectID, UserID: userID, Name: "p", Stage: string(workspace.StageInterior)}
	projectRepo.On("GetByID", mock.Anything, projectID, &models.Project{}).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*models.Project)
			*dest = *project
		}).Return(nil, project)

	interior := &models.Interior{ID: interiorID, ProjectID: projectID, Name: "p"}
	interiorRepo.On("GetByProject", mock.Anything, projectID, &models.Interior{}).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*models.Interior)
			*dest = *interior
		}).Return(nil, interior)

	existing := []models.InteriorRoom{
		{InteriorID: interiorID, Name: "Bedroom 1", Color: "green", Style: "scandinavian"},
		{InteriorID: interiorID, Name: "Kitchen", Color: "", Style: ""},
	}
	interiorRepo.On("ListRooms", mock.Anything, interiorID).Return(existing, nil)

	// only Kitchen changed; Bedroom 1 matches server state and is skipped
	interiorRepo.On("UpsertRoom", mock.Anything, mock.MatchedBy(func(room *models.InteriorRoom) bool {
		return room.Name == "Kitchen" && room.Color == "white"
	})).Return(nil).Once()

	projectRepo.On("UpdateStage", mock.Anything, projectID, string(workspace.StageExterior)).Return(nil).Once()

	_, err := svc.SaveRoomDesigns(context.Background(), projectID, userID, []workspace.RoomDesign{
		{Name: "Bedroom 1", Color: "green", Style: "scandinavian"},
		{Name: "Kitchen", Color: "white", Style: "modern"},
	})
	require.NoError(t, err)

	mock.AssertExpectationsForObjects(t, projectRepo, floorRepo, interiorRepo, exteriorRepo, ai)
}

func TestWorkspaceService_GenerateExteriorFailureLeavesHistory(t *testing.T) {
	projectID := uuid.New()
	userID := uuid.New()

	projectRepo := &mockProjectRepo{}
	floorRepo := &mockFloorRepo{}
	interiorRepo := &mockInteriorRepo{}
	exteriorRepo := &mockExteriorRepo{}
	ai := &mockGenClient{}

	svc := NewWorkspaceService(projectRepo, floorRepo, interiorRepo, exteriorRepo, ai, testURLs)

	project := &models.Project{ID: projectID, UserID: userID, Stage: string(workspace.StageExterior)}
	projectRepo.On("GetByID", mock.Anything, projectID, &models.Project{}).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*models.Project)
			*dest = *project
		}).Return(nil, project)

	ai.On("GenerateExterior", mock.Anything, mock.Anything).
		Return("", appErr.New(appErr.CodeUpstream, "generation service error")).Once()

	_, err := svc.GenerateExterior(context.Background(), projectID, userID, &ExteriorInput{
		FacadeStyle: "modern",
		Material:    "brick",
	})
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeUpstream))

	// no Exterior row is created on upstream failure
	exteriorRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	mock.AssertExpectationsForObjects(t, projectRepo, floorRepo, interiorRepo, exteriorRepo, ai)
}

func TestWorkspaceService_OwnershipEnforced(t *testing.T) {
	projectID := uuid.New()
	owner := uuid.New()
	intruder := uuid.New()

	projectRepo := &mockProjectRepo{}
	svc := NewWorkspaceService(projectRepo, &mockFloorRepo{}, &mockInteriorRepo{}, &mockExteriorRepo{}, &mockGenClient{}, testURLs)

	project := &models.Project{ID: projectID, UserID: owner, Stage: string(workspace.StageFloorPlan)}
	projectRepo.On("GetByID", mock.Anything, projectID, &models.Project{}).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*models.Project)
			*dest = *project
		}).Return(nil, project)

	_, err := svc.LoadWorkspace(context.Background(), projectID, intruder)
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeUnauthorized))
}
