package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/maya-ai/engine/internal/models"
	"github.com/maya-ai/engine/internal/repository"
	appErr "github.com/maya-ai/engine/pkg/errors"
	"github.com/maya-ai/engine/pkg/logger"
	"go.uber.org/zap"
)

// TaskTypeExport is the asynq task type for export packaging runs.
const TaskTypeExport = "project:export"

// ExportPayload is the task payload for export tasks.
type ExportPayload struct {
	ExportID string `json:"export_id"`
}

// ExportService creates packaging runs and hands them to the worker. The
// archive itself is assembled asynchronously; callers poll LatestExport.
type ExportService interface {
	CreateExport(ctx context.Context, projectID, userID uuid.UUID) (*models.Export, error)
	LatestExport(ctx context.Context, projectID, userID uuid.UUID) (*models.Export, error)
}

type exportService struct {
	projectRepo repository.ProjectRepository
	exportRepo  repository.ExportRepository
	asynqClient *asynq.Client
}

func NewExportService(projectRepo repository.ProjectRepository, exportRepo repository.ExportRepository, client *asynq.Client) ExportService {
	return &exportService{projectRepo: projectRepo, exportRepo: exportRepo, asynqClient: client}
}

var _ ExportService = (*exportService)(nil)

func (s *exportService) CreateExport(ctx context.Context, projectID, userID uuid.UUID) (*models.Export, error) {
	var p models.Project
	if err := s.projectRepo.GetByID(ctx, projectID, &p); err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, appErr.New(appErr.CodeUnauthorized, "user does not own project")
	}

	e := models.Export{ProjectID: projectID, Status: models.ExportStatusPending}
	if err := s.exportRepo.Create(ctx, &e); err != nil {
		return nil, err
	}

	pb, err := json.Marshal(ExportPayload{ExportID: e.ID.String()})
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "marshal export payload failed")
	}
	task := asynq.NewTask(TaskTypeExport, pb)
	if s.asynqClient == nil {
		logger.L().Warn("asynq client not configured, skipping enqueue", zap.String("export_id", e.ID.String()))
	} else {
		if _, err := s.asynqClient.EnqueueContext(ctx, task); err != nil {
			logger.L().Error("enqueue export task failed", zap.Error(err), zap.String("export_id", e.ID.String()))
			_ = s.exportRepo.Fail(ctx, e.ID, "enqueue failed")
			return nil, appErr.Wrap(err, appErr.CodeInternal, "enqueue export task failed")
		}
	}

	logger.L().Info("export created and enqueued", zap.String("export_id", e.ID.String()), zap.String("project_id", projectID.String()))
	return &e, nil
}

func (s *exportService) LatestExport(ctx context.Context, projectID, userID uuid.UUID) (*models.Export, error) {
	var p models.Project
	if err := s.projectRepo.GetByID(ctx, projectID, &p); err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, appErr.New(appErr.CodeUnauthorized, "user does not own project")
	}
	var e models.Export
	if err := s.exportRepo.GetLatestByProject(ctx, projectID, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
