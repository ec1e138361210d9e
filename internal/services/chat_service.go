package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/maya-ai/engine/internal/aiclient"
	"github.com/maya-ai/engine/internal/imageurl"
	"github.com/maya-ai/engine/internal/models"
	"github.com/maya-ai/engine/internal/repository"
	appErr "github.com/maya-ai/engine/pkg/errors"
	"github.com/maya-ai/engine/pkg/logger"
	"go.uber.org/zap"
)

// ChatService owns assistant conversations. Every message exchange is
// persisted before and after the assistant call, so a failed upstream turn
// still leaves the user's message in history.
type ChatService interface {
	CreateChat(ctx context.Context, userID uuid.UUID, title string) (*models.Chat, error)
	GetChat(ctx context.Context, chatID, userID uuid.UUID) (*models.Chat, []models.ChatMessage, error)
	ListChats(ctx context.Context, userID uuid.UUID) ([]models.Chat, error)
	RenameChat(ctx context.Context, chatID, userID uuid.UUID, title string) (*models.Chat, error)
	DeleteChat(ctx context.Context, chatID, userID uuid.UUID) error
	SendMessage(ctx context.Context, chatID, userID uuid.UUID, input *ChatInput) (*models.ChatMessage, error)
}

// ChatInput is one user turn; Image is an optional attachment forwarded to
// the assistant as-is.
type ChatInput struct {
	Message       string
	Image         []byte
	ImageFilename string
}

type chatService struct {
	chatRepo repository.ChatRepository
	ai       aiclient.Client
	urls     imageurl.Normalizer
}

func NewChatService(chatRepo repository.ChatRepository, ai aiclient.Client, urls imageurl.Normalizer) ChatService {
	return &chatService{chatRepo: chatRepo, ai: ai, urls: urls}
}

var _ ChatService = (*chatService)(nil)

func (s *chatService) ownedChat(ctx context.Context, chatID, userID uuid.UUID) (*models.Chat, error) {
	var c models.Chat
	if err := s.chatRepo.GetByID(ctx, chatID, &c); err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, appErr.New(appErr.CodeUnauthorized, "user does not own chat")
	}
	return &c, nil
}

func (s *chatService) CreateChat(ctx context.Context, userID uuid.UUID, title string) (*models.Chat, error) {
	if title == "" {
		title = "New chat"
	}
	c := models.Chat{UserID: userID, Title: title}
	if err := s.chatRepo.Create(ctx, &c); err != nil {
		return nil, err
	}
	logger.L().Info("chat created", zap.String("chat_id", c.ID.String()), zap.String("user_id", userID.String()))
	return &c, nil
}

func (s *chatService) GetChat(ctx context.Context, chatID, userID uuid.UUID) (*models.Chat, []models.ChatMessage, error) {
	c, err := s.ownedChat(ctx, chatID, userID)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.chatRepo.ListMessages(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}
	for i := range msgs {
		msgs[i].ImageURL = s.urls.Normalize(msgs[i].ImageURL)
	}
	return c, msgs, nil
}

func (s *chatService) ListChats(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	return s.chatRepo.ListByUser(ctx, userID)
}

func (s *chatService) RenameChat(ctx context.Context, chatID, userID uuid.UUID, title string) (*models.Chat, error) {
	c, err := s.ownedChat(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	if title == "" {
		return nil, appErr.New(appErr.CodeInvalid, "title is required")
	}
	c.Title = title
	if err := s.chatRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *chatService) DeleteChat(ctx context.Context, chatID, userID uuid.UUID) error {
	if _, err := s.ownedChat(ctx, chatID, userID); err != nil {
		return err
	}
	return s.chatRepo.Delete(ctx, chatID)
}

// SendMessage appends the user's turn, asks the assistant, then appends the
// reply. Image URLs in the reply are normalized before storage so history
// replays without another normalization pass.
func (s *chatService) SendMessage(ctx context.Context, chatID, userID uuid.UUID, input *ChatInput) (*models.ChatMessage, error) {
	if _, err := s.ownedChat(ctx, chatID, userID); err != nil {
		return nil, err
	}
	if input.Message == "" && len(input.Image) == 0 {
		return nil, appErr.New(appErr.CodeInvalid, "message or image is required")
	}

	userMsg := models.ChatMessage{ChatID: chatID, Role: models.MessageRoleUser, Content: input.Message}
	if err := s.chatRepo.AppendMessage(ctx, &userMsg); err != nil {
		return nil, err
	}

	reply, err := s.ai.Chat(ctx, aiclient.ChatRequest{
		Message:       input.Message,
		Image:         input.Image,
		ImageFilename: input.ImageFilename,
	})
	if err != nil {
		return nil, err
	}

	assistantMsg := models.ChatMessage{
		ChatID:   chatID,
		Role:     models.MessageRoleAssistant,
		Content:  reply.Reply,
		ImageURL: s.urls.Normalize(reply.ImageURL),
	}
	if err := s.chatRepo.AppendMessage(ctx, &assistantMsg); err != nil {
		return nil, err
	}

	logger.L().Info("chat message exchanged",
		zap.String("chat_id", chatID.String()),
		zap.Bool("with_image", len(input.Image) > 0),
	)
	return &assistantMsg, nil
}
