package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/maya-ai/engine/internal/models"
	"github.com/maya-ai/engine/internal/repository"
	appErr "github.com/maya-ai/engine/pkg/errors"
)

const resetTokenTTL = 30 * time.Minute

type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}

type authService struct {
	userRepo   repository.UserRepository
	hmacSecret []byte
}

func NewAuthService(userRepo repository.UserRepository, secret []byte) AuthService {
	return &authService{
		userRepo:   userRepo,
		hmacSecret: secret,
	}
}

func (s *authService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	ph, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "hash password failed")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(ph),
		Name:         name,
		Role:         models.RoleUser,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeConflict, "email already exists")
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var user models.User
	if err := s.userRepo.GetByEmail(ctx, email, &user); err != nil {
		return "", nil, appErr.New(appErr.CodeUnauthorized, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, appErr.New(appErr.CodeUnauthorized, "invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString(s.hmacSecret)
	if err != nil {
		return "", nil, appErr.Wrap(err, appErr.CodeInternal, "sign token failed")
	}

	return tokenString, &user, nil
}

// RequestPasswordReset issues a single-use token for the account. The token
// is returned to the caller for delivery; an unknown email yields the same
// success shape so account existence is not revealed.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	var user models.User
	if err := s.userRepo.GetByEmail(ctx, email, &user); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return "", nil
		}
		return "", err
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", appErr.Wrap(err, appErr.CodeInternal, "generate reset token failed")
	}
	token := hex.EncodeToString(buf)

	reset := &models.PasswordReset{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.userRepo.CreatePasswordReset(ctx, reset); err != nil {
		return "", err
	}
	return token, nil
}

func (s *authService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	var reset models.PasswordReset
	if err := s.userRepo.GetPasswordReset(ctx, token, &reset); err != nil {
		return appErr.New(appErr.CodeInvalid, "invalid or expired reset token")
	}
	if reset.UsedAt != nil || time.Now().After(reset.ExpiresAt) {
		return appErr.New(appErr.CodeInvalid, "invalid or expired reset token")
	}

	var user models.User
	if err := s.userRepo.GetByID(ctx, reset.UserID, &user); err != nil {
		return err
	}

	ph, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "hash password failed")
	}
	user.PasswordHash = string(ph)
	if err := s.userRepo.Update(ctx, &user); err != nil {
		return err
	}
	return s.userRepo.MarkPasswordResetUsed(ctx, reset.ID)
}
