package tasks

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maya-ai/engine/internal/aiclient"
	"github.com/maya-ai/engine/internal/imageurl"
	"github.com/maya-ai/engine/internal/models"
	"github.com/maya-ai/engine/internal/services"
	appErr "github.com/maya-ai/engine/pkg/errors"
	"github.com/maya-ai/engine/pkg/logger"
	"github.com/maya-ai/engine/pkg/utils"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests (required by tasks)
	_, err := logger.Init("info", "json")
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

// Mock implementations
type mockExportRepository struct {
	mock.Mock
}

func (m *mockExportRepository) Create(ctx context.Context, obj *models.Export) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockExportRepository) GetByID(ctx context.Context, id any, dest *models.Export) error {
	args := m.Called(ctx, id, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.Export)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockExportRepository) Update(ctx context.Context, obj *models.Export) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockExportRepository) Delete(ctx context.Context, id any) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockExportRepository) GetLatestByProject(ctx context.Context, projectID uuid.UUID, dest *models.Export) error {
	args := m.Called(ctx, projectID, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.Export)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockExportRepository) UpdateStatus(ctx context.Context, exportID uuid.UUID, status string) error {
	args := m.Called(ctx, exportID, status)
	return args.Error(0)
}

func (m *mockExportRepository) Complete(ctx context.Context, exportID uuid.UUID, archivePath, checksum string, manifest []byte) error {
	args := m.Called(ctx, exportID, archivePath, checksum, manifest)
	return args.Error(0)
}

func (m *mockExportRepository) Fail(ctx context.Context, exportID uuid.UUID, msg string) error {
	args := m.Called(ctx, exportID, msg)
	return args.Error(0)
}

type mockProjectRepository struct {
	mock.Mock
}

func (m *mockProjectRepository) Create(ctx context.Context, obj *models.Project) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockProjectRepository) GetByID(ctx context.Context, id any, dest *models.Project) error {
	args := m.Called(ctx, id, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.Project)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockProjectRepository) Update(ctx context.Context, obj *models.Project) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockProjectRepository) Delete(ctx context.Context, id any) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProjectRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]models.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProjectRepository) List(ctx context.Context) ([]models.Project, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]models.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProjectRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProjectRepository) UpdateStage(ctx context.Context, projectID uuid.UUID, stage string) error {
	args := m.Called(ctx, projectID, stage)
	return args.Error(0)
}

type mockInteriorRepository struct {
	mock.Mock
}

func (m *mockInteriorRepository) Create(ctx context.Context, obj *models.Interior) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockInteriorRepository) GetByID(ctx context.Context, id any, dest *models.Interior) error {
	args := m.Called(ctx, id, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.Interior)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockInteriorRepository) Update(ctx context.Context, obj *models.Interior) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockInteriorRepository) Delete(ctx context.Context, id any) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockInteriorRepository) GetByProject(ctx context.Context, projectID uuid.UUID, dest *models.Interior) error {
	args := m.Called(ctx, projectID, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.Interior)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockInteriorRepository) ListRooms(ctx context.Context, interiorID uuid.UUID) ([]models.InteriorRoom, error) {
	args := m.Called(ctx, interiorID)
	if v := args.Get(0); v != nil {
		return v.([]models.InteriorRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInteriorRepository) GetRoomByName(ctx context.Context, interiorID uuid.UUID, name string, dest *models.InteriorRoom) error {
	args := m.Called(ctx, interiorID, name, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.InteriorRoom)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockInteriorRepository) UpsertRoom(ctx context.Context, room *models.InteriorRoom) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *mockInteriorRepository) SeedRooms(ctx context.Context, interiorID uuid.UUID, names []string) ([]models.InteriorRoom, error) {
	args := m.Called(ctx, interiorID, names)
	if v := args.Get(0); v != nil {
		return v.([]models.InteriorRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockExteriorRepository struct {
	mock.Mock
}

func (m *mockExteriorRepository) Create(ctx context.Context, obj *models.Exterior) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockExteriorRepository) GetByID(ctx context.Context, id any, dest *models.Exterior) error {
	args := m.Called(ctx, id, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.Exterior)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockExteriorRepository) Update(ctx context.Context, obj *models.Exterior) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockExteriorRepository) Delete(ctx context.Context, id any) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockExteriorRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Exterior, error) {
	args := m.Called(ctx, projectID)
	if v := args.Get(0); v != nil {
		return v.([]models.Exterior), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockExteriorRepository) GetLatestByProject(ctx context.Context, projectID uuid.UUID, dest *models.Exterior) error {
	args := m.Called(ctx, projectID, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.Exterior)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockExteriorRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockAIClient struct {
	mock.Mock
}

func (m *mockAIClient) GenerateInterior(ctx context.Context, req aiclient.InteriorRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockAIClient) GenerateExterior(ctx context.Context, req aiclient.ExteriorRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockAIClient) Chat(ctx context.Context, req aiclient.ChatRequest) (*aiclient.ChatReply, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*aiclient.ChatReply), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAIClient) DownloadImage(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	if v := args.Get(0); v != nil {
		return v.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestExportTaskHandler_HandleExport(t *testing.T) {
	exportID := uuid.New()
	projectID := uuid.New()
	interiorID := uuid.New()

	urls := imageurl.New("https://ai.example.com", "https://api.example.com")

	t.Run("successful export", func(t *testing.T) {
		exportRepo := &mockExportRepository{}
		projectRepo := &mockProjectRepository{}
		interiorRepo := &mockInteriorRepository{}
		exteriorRepo := &mockExteriorRepository{}
		ai := &mockAIClient{}
		dir := t.TempDir()

		handler := NewExportTaskHandler(exportRepo, projectRepo, interiorRepo, exteriorRepo, ai, urls, dir)

		payload := services.ExportPayload{ExportID: exportID.String()}
		payloadBytes, _ := json.Marshal(payload)
		task := asynq.NewTask(services.TaskTypeExport, payloadBytes)

		export := &models.Export{ID: exportID, ProjectID: projectID, Status: models.ExportStatusPending}
		exportRepo.On("GetByID", mock.Anything, exportID, &models.Export{}).
			Run(func(args mock.Arguments) {
				dest := args.Get(2).(*models.Export)
				*dest = *export
			}).Return(nil, export).Once()
		exportRepo.On("UpdateStatus", mock.Anything, exportID, models.ExportStatusPackaging).Return(nil).Once()

		project := &models.Project{ID: projectID, Name: "lakeside-villa", Stage: "exterior"}
		projectRepo.On("GetByID", mock.Anything, projectID, &models.Project{}).
			Run(func(args mock.Arguments) {
				dest := args.Get(2).(*models.Project)
				*dest = *project
			}).Return(nil, project).Once()

		interior := &models.Interior{ID: interiorID, ProjectID: projectID, Name: "lakeside-villa"}
		interiorRepo.On("GetByProject", mock.Anything, projectID, &models.Interior{}).
			Run(func(args mock.Arguments) {
				dest := args.Get(2).(*models.Interior)
				*dest = *interior
			}).Return(nil, interior).Once()
		interiorRepo.On("ListRooms", mock.Anything, interiorID).Return([]models.InteriorRoom{
			{InteriorID: interiorID, Name: "Bedroom 1", ImageURL: "/images/bedroom1.png"},
			{InteriorID: interiorID, Name: "Kitchen"}, // no image yet, skipped
		}, nil).Once()

		exterior := &models.Exterior{ProjectID: projectID, ImageURL: "https://ai.example.com/images/facade.jpg"}
		exteriorRepo.On("GetLatestByProject", mock.Anything, projectID, &models.Exterior{}).
			Run(func(args mock.Arguments) {
				dest := args.Get(2).(*models.Exterior)
				*dest = *exterior
			}).Return(nil, exterior).Once()

		bedroomData := []byte("bedroom-bytes")
		facadeData := []byte("facade-bytes")
		ai.On("DownloadImage", mock.Anything, "https://ai.example.com/images/bedroom1.png").Return(bedroomData, nil).Once()
		ai.On("DownloadImage", mock.Anything, "https://ai.example.com/images/facade.jpg").Return(facadeData, nil).Once()

		var gotPath, gotChecksum string
		var gotManifest []byte
		exportRepo.On("Complete", mock.Anything, exportID, mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.AnythingOfType("[]uint8")).
			Run(func(args mock.Arguments) {
				gotPath = args.String(2)
				gotChecksum = args.String(3)
				gotManifest = args.Get(4).([]byte)
			}).Return(nil).Once()

		err := handler.HandleExport(context.Background(), task)
		require.NoError(t, err)

		// archive exists, checksum matches its bytes
		data, err := os.ReadFile(gotPath)
		require.NoError(t, err)
		require.Equal(t, utils.ChecksumHex(data), gotChecksum)

		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)
		names := make([]string, 0, len(zr.File))
		for _, f := range zr.File {
			names = append(names, f.Name)
		}
		require.Contains(t, names, "manifest.json")
		require.Contains(t, names, "interior/Bedroom 1.png")
		require.Contains(t, names, "exterior/exterior.jpg")
		require.Len(t, names, 3)

		var manifest map[string]any
		require.NoError(t, json.Unmarshal(gotManifest, &manifest))
		require.Equal(t, float64(2), manifest["images"])

		mock.AssertExpectationsForObjects(t, exportRepo, projectRepo, interiorRepo, exteriorRepo, ai)
	})

	t.Run("download failure marks export failed", func(t *testing.T) {
		exportRepo := &mockExportRepository{}
		projectRepo := &mockProjectRepository{}
		interiorRepo := &mockInteriorRepository{}
		exteriorRepo := &mockExteriorRepository{}
		ai := &mockAIClient{}

		handler := NewExportTaskHandler(exportRepo, projectRepo, interiorRepo, exteriorRepo, ai, urls, t.TempDir())

		payload := services.ExportPayload{ExportID: exportID.String()}
		payloadBytes, _ := json.Marshal(payload)
		task := asynq.NewTask(services.TaskTypeExport, payloadBytes)

		export := &models.Export{ID: exportID, ProjectID: projectID, Status: models.ExportStatusPending}
		exportRepo.On("GetByID", mock.Anything, exportID, &models.Export{}).
			Run(func(args mock.Arguments) {
				dest := args.Get(2).(*models.Export)
				*dest = *export
			}).Return(nil, export).Once()
		exportRepo.On("UpdateStatus", mock.Anything, exportID, models.ExportStatusPackaging).Return(nil).Once()

		project := &models.Project{ID: projectID, Name: "lakeside-villa"}
		projectRepo.On("GetByID", mock.Anything, projectID, &models.Project{}).
			Run(func(args mock.Arguments) {
				dest := args.Get(2).(*models.Project)
				*dest = *project
			}).Return(nil, project).Once()

		interior := &models.Interior{ID: interiorID, ProjectID: projectID}
		interiorRepo.On("GetByProject", mock.Anything, projectID, &models.Interior{}).
			Run(func(args mock.Arguments) {
				dest := args.Get(2).(*models.Interior)
				*dest = *interior
			}).Return(nil, interior).Once()
		interiorRepo.On("ListRooms", mock.Anything, interiorID).Return([]models.InteriorRoom{
			{InteriorID: interiorID, Name: "Bedroom 1", ImageURL: "/images/bedroom1.png"},
		}, nil).Once()

		downloadErr := context.DeadlineExceeded
		ai.On("DownloadImage", mock.Anything, "https://ai.example.com/images/bedroom1.png").Return(nil, downloadErr).Once()
		exportRepo.On("Fail", mock.Anything, exportID, mock.AnythingOfType("string")).Return(nil).Once()

		err := handler.HandleExport(context.Background(), task)
		require.Error(t, err)

		mock.AssertExpectationsForObjects(t, exportRepo, projectRepo, interiorRepo, exteriorRepo, ai)
	})

	t.Run("no images fails the export", func(t *testing.T) {
		exportRepo := &mockExportRepository{}
		projectRepo := &mockProjectRepository{}
		interiorRepo := &mockInteriorRepository{}
		exteriorRepo := &mockExteriorRepository{}
		ai := &mockAIClient{}

		handler := NewExportTaskHandler(exportRepo, projectRepo, interiorRepo, exteriorRepo, ai, urls, t.TempDir())

		payload := services.ExportPayload{ExportID: exportID.String()}
		payloadBytes, _ := json.Marshal(payload)
		task := asynq.NewTask(services.TaskTypeExport, payloadBytes)

		export := &models.Export{ID: exportID, ProjectID: projectID, Status: models.ExportStatusPending}
		exportRepo.On("GetByID", mock.Anything, exportID, &models.Export{}).
			Run(func(args mock.Arguments) {
				dest := args.Get(2).(*models.Export)
				*dest = *export
			}).Return(nil, export).Once()
		exportRepo.On("UpdateStatus", mock.Anything, exportID, models.ExportStatusPackaging).Return(nil).Once()

		project := &models.Project{ID: projectID, Name: "empty-project"}
		projectRepo.On("GetByID", mock.Anything, projectID, &models.Project{}).
			Run(func(args mock.Arguments) {
				dest := args.Get(2).(*models.Project)
				*dest = *project
			}).Return(nil, project).Once()

		interior := &models.Interior{ID: interiorID, ProjectID: projectID}
		interiorRepo.On("GetByProject", mock.Anything, projectID, &models.Interior{}).
			Run(func(args mock.Arguments) {
				dest := args.Get(2).(*models.Interior)
				*dest = *interior
			}).Return(nil, interior).Once()
		interiorRepo.On("ListRooms", mock.Anything, interiorID).Return([]models.InteriorRoom{}, nil).Once()

		exteriorRepo.On("GetLatestByProject", mock.Anything, projectID, &models.Exterior{}).
			Return(appErr.New(appErr.CodeNotFound, "no exteriors found"), nil).Once()

		exportRepo.On("Fail", mock.Anything, exportID, mock.AnythingOfType("string")).Return(nil).Once()

		err := handler.HandleExport(context.Background(), task)
		require.Error(t, err)

		mock.AssertExpectationsForObjects(t, exportRepo, projectRepo, interiorRepo, exteriorRepo, ai)
	})
}
