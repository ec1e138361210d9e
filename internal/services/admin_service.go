package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/maya-ai/engine/internal/models"
	"github.com/maya-ai/engine/internal/repository"
	appErr "github.com/maya-ai/engine/pkg/errors"
	"github.com/maya-ai/engine/pkg/logger"
	"go.uber.org/zap"
)

// AdminService is the management surface behind the admin role. It sees
// every user's data; the role check itself happens in middleware.
type AdminService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, userID uuid.UUID, role string) (*models.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
	ListProjects(ctx context.Context) ([]models.Project, error)
	DeleteProject(ctx context.Context, projectID uuid.UUID) error
	ListChats(ctx context.Context) ([]models.Chat, error)
	DeleteChats(ctx context.Context, chatIDs []uuid.UUID) (int, error)
	MetricsSummary(ctx context.Context) (*MetricsSummary, error)
	ListSettings(ctx context.Context) ([]models.Setting, error)
	PutSetting(ctx context.Context, key, value string) (*models.Setting, error)
	DeleteSetting(ctx context.Context, key string) error
}

// MetricsSummary is the admin dashboard headline counts.
type MetricsSummary struct {
	Users     int64 `json:"users"`
	Projects  int64 `json:"projects"`
	Chats     int64 `json:"chats"`
	Exteriors int64 `json:"exteriors"`
}

type adminService struct {
	userRepo     repository.UserRepository
	projectRepo  repository.ProjectRepository
	chatRepo     repository.ChatRepository
	exteriorRepo repository.ExteriorRepository
	settingRepo  repository.SettingRepository
}

func NewAdminService(
	userRepo repository.UserRepository,
	projectRepo repository.ProjectRepository,
	chatRepo repository.ChatRepository,
	exteriorRepo repository.ExteriorRepository,
	settingRepo repository.SettingRepository,
) AdminService {
	return &adminService{
		userRepo:     userRepo,
		projectRepo:  projectRepo,
		chatRepo:     chatRepo,
		exteriorRepo: exteriorRepo,
		settingRepo:  settingRepo,
	}
}

var _ AdminService = (*adminService)(nil)

func (s *adminService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *adminService) UpdateUserRole(ctx context.Context, userID uuid.UUID, role string) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, appErr.New(appErr.CodeInvalid, "unknown role")
	}
	var u models.User
	if err := s.userRepo.GetByID(ctx, userID, &u); err != nil {
		return nil, err
	}
	u.Role = role
	if err := s.userRepo.Update(ctx, &u); err != nil {
		return nil, err
	}
	logger.L().Info("user role updated", zap.String("user_id", userID.String()), zap.String("role", role))
	return &u, nil
}

func (s *adminService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	var u models.User
	if err := s.userRepo.GetByID(ctx, userID, &u); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, userID)
}

func (s *adminService) ListProjects(ctx context.Context) ([]models.Project, error) {
	return s.projectRepo.List(ctx)
}

func (s *adminService) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	var p models.Project
	if err := s.projectRepo.GetByID(ctx, projectID, &p); err != nil {
		return err
	}
	return s.projectRepo.Delete(ctx, projectID)
}

func (s *adminService) ListChats(ctx context.Context) ([]models.Chat, error) {
	return s.chatRepo.List(ctx)
}

// DeleteChats removes each chat independently; a missing ID is skipped
// rather than failing the batch.
func (s *adminService) DeleteChats(ctx context.Context, chatIDs []uuid.UUID) (int, error) {
	deleted := 0
	for _, id := range chatIDs {
		var c models.Chat
		if err := s.chatRepo.GetByID(ctx, id, &c); err != nil {
			if appErr.IsCode(err, appErr.CodeNotFound) {
				continue
			}
			return deleted, err
		}
		if err := s.chatRepo.Delete(ctx, id); err != nil {
			return deleted, err
		}
		deleted++
	}
	logger.L().Info("chats deleted", zap.Int("requested", len(chatIDs)), zap.Int("deleted", deleted))
	return deleted, nil
}

func (s *adminService) MetricsSummary(ctx context.Context) (*MetricsSummary, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := s.projectRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	chats, err := s.chatRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	exteriors, err := s.exteriorRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &MetricsSummary{Users: users, Projects: projects, Chats: chats, Exteriors: exteriors}, nil
}

func (s *adminService) ListSettings(ctx context.Context) ([]models.Setting, error) {
	return s.settingRepo.List(ctx)
}

func (s *adminService) PutSetting(ctx context.Context, key, value string) (*models.Setting, error) {
	if key == "" {
		return nil, appErr.New(appErr.CodeInvalid, "setting key is required")
	}
	return s.settingRepo.Set(ctx, key, value)
}

func (s *adminService) DeleteSetting(ctx context.Context, key string) error {
	return s.settingRepo.Delete(ctx, key)
}
