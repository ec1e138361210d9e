package tasks

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/maya-ai/engine/internal/aiclient"
	"github.com/maya-ai/engine/internal/imageurl"
	"github.com/maya-ai/engine/internal/models"
	"github.com/maya-ai/engine/internal/repository"
	"github.com/maya-ai/engine/internal/services"
	appErr "github.com/maya-ai/engine/pkg/errors"
	"github.com/maya-ai/engine/pkg/logger"
	"github.com/maya-ai/engine/pkg/utils"
	"go.uber.org/zap"
)

// ExportTaskHandler packages a project's generated images into a zip
// archive. Statuses move pending -> packaging -> completed/failed; the row
// is updated at each step so pollers see progress.
type ExportTaskHandler struct {
	exportRepo   repository.ExportRepository
	projectRepo  repository.ProjectRepository
	interiorRepo repository.InteriorRepository
	exteriorRepo repository.ExteriorRepository
	ai           aiclient.Client
	urls         imageurl.Normalizer
	exportDir    string
}

func NewExportTaskHandler(
	exportRepo repository.ExportRepository,
	projectRepo repository.ProjectRepository,
	interiorRepo repository.InteriorRepository,
	exteriorRepo repository.ExteriorRepository,
	ai aiclient.Client,
	urls imageurl.Normalizer,
	exportDir string,
) *ExportTaskHandler {
	return &ExportTaskHandler{
		exportRepo:   exportRepo,
		projectRepo:  projectRepo,
		interiorRepo: interiorRepo,
		exteriorRepo: exteriorRepo,
		ai:           ai,
		urls:         urls,
		exportDir:    exportDir,
	}
}

func (h *ExportTaskHandler) HandleExport(ctx context.Context, t *asynq.Task) error {
	var p services.ExportPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.L().Error("invalid export task payload", zap.Error(err))
		return err
	}
	id, err := uuid.Parse(p.ExportID)
	if err != nil {
		logger.L().Error("invalid export id in task", zap.Error(err))
		return err
	}

	logger.L().Info("handling export task", zap.String("export_id", id.String()))

	var e models.Export
	if err := h.exportRepo.GetByID(ctx, id, &e); err != nil {
		logger.L().Error("get export failed", zap.Error(err))
		return err
	}

	if err := h.exportRepo.UpdateStatus(ctx, id, models.ExportStatusPackaging); err != nil {
		logger.L().Warn("update status packaging failed", zap.Error(err))
	}

	var proj models.Project
	if err := h.projectRepo.GetByID(ctx, e.ProjectID, &proj); err != nil {
		logger.L().Error("get project failed", zap.Error(err))
		_ = h.exportRepo.Fail(ctx, id, "project not found")
		return err
	}

	entries, err := h.collectImages(ctx, e.ProjectID)
	if err != nil {
		logger.L().Error("collect images failed", zap.Error(err))
		_ = h.exportRepo.Fail(ctx, id, fmt.Sprintf("collect images: %v", err))
		return err
	}
	if len(entries) == 0 {
		err := appErr.New(appErr.CodeInvalid, "project has no generated images to export")
		_ = h.exportRepo.Fail(ctx, id, err.Message)
		return err
	}

	manifest := map[string]any{
		"project_id":   proj.ID.String(),
		"project_name": proj.Name,
		"stage":        proj.Stage,
		"images":       len(entries),
	}
	mb, _ := json.MarshalIndent(manifest, "", "  ")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if w, err := zw.Create("manifest.json"); err == nil {
		_, _ = w.Write(mb)
	}
	for _, en := range entries {
		w, err := zw.Create(en.name)
		if err != nil {
			_ = h.exportRepo.Fail(ctx, id, fmt.Sprintf("archive write: %v", err))
			return appErr.Wrap(err, appErr.CodeInternal, "archive write failed")
		}
		if _, err := w.Write(en.data); err != nil {
			_ = h.exportRepo.Fail(ctx, id, fmt.Sprintf("archive write: %v", err))
			return appErr.Wrap(err, appErr.CodeInternal, "archive write failed")
		}
	}
	if err := zw.Close(); err != nil {
		_ = h.exportRepo.Fail(ctx, id, fmt.Sprintf("archive close: %v", err))
		return appErr.Wrap(err, appErr.CodeInternal, "archive close failed")
	}

	if err := os.MkdirAll(h.exportDir, 0o755); err != nil {
		_ = h.exportRepo.Fail(ctx, id, fmt.Sprintf("export dir: %v", err))
		return appErr.Wrap(err, appErr.CodeInternal, "create export dir failed")
	}
	archivePath := filepath.Join(h.exportDir, fmt.Sprintf("%s.zip", id))
	if err := os.WriteFile(archivePath, buf.Bytes(), 0o644); err != nil {
		_ = h.exportRepo.Fail(ctx, id, fmt.Sprintf("write archive: %v", err))
		return appErr.Wrap(err, appErr.CodeInternal, "write archive failed")
	}

	checksum := utils.ChecksumHex(buf.Bytes())
	if err := h.exportRepo.Complete(ctx, id, archivePath, checksum, mb); err != nil {
		logger.L().Error("complete export failed", zap.Error(err))
		return err
	}

	logger.L().Info("export completed",
		zap.String("export_id", id.String()),
		zap.String("archive", archivePath),
		zap.Int("images", len(entries)),
	)
	return nil
}

type archiveEntry struct {
	name string
	data []byte
}

// collectImages gathers interior room images plus the latest exterior.
// Rooms without a generated image are skipped, not errors.
func (h *ExportTaskHandler) collectImages(ctx context.Context, projectID uuid.UUID) ([]archiveEntry, error) {
	var entries []archiveEntry

	var in models.Interior
	if err := h.interiorRepo.GetByProject(ctx, projectID, &in); err == nil {
		rooms, err := h.interiorRepo.ListRooms(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		for _, r := range rooms {
			if r.ImageURL == "" {
				continue
			}
			data, err := h.ai.DownloadImage(ctx, h.urls.Normalize(r.ImageURL))
			if err != nil {
				return nil, err
			}
			entries = append(entries, archiveEntry{name: path.Join("interior", archiveFileName(r.Name, r.ImageURL)), data: data})
		}
	} else if !appErr.IsCode(err, appErr.CodeNotFound) {
		return nil, err
	}

	var ext models.Exterior
	if err := h.exteriorRepo.GetLatestByProject(ctx, projectID, &ext); err == nil {
		if ext.ImageURL != "" {
			data, err := h.ai.DownloadImage(ctx, h.urls.Normalize(ext.ImageURL))
			if err != nil {
				return nil, err
			}
			entries = append(entries, archiveEntry{name: path.Join("exterior", archiveFileName("exterior", ext.ImageURL)), data: data})
		}
	} else if !appErr.IsCode(err, appErr.CodeNotFound) {
		return nil, err
	}

	return entries, nil
}

// archiveFileName derives a stable entry name from the room and the source
// URL's extension, defaulting to .png when the URL carries none.
func archiveFileName(room, url string) string {
	ext := path.Ext(url)
	if ext == "" || len(ext) > 5 {
		ext = ".png"
	}
	return room + ext
}
