package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"mymoney/internal/dto"
	"mymoney/internal/models"
	"mymoney/pkg/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserStore is the persistence dependency of AuthService.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CodeMailer delivers one-time verification codes.
type CodeMailer interface {
	SendVerificationCode(to, name, subject string, code int) error
}

type AuthService struct {
	userRepo   UserStore
	jwtManager *auth.JWTManager
	mailer     CodeMailer
	logger     *zap.Logger
}

func NewAuthService(userRepo UserStore, jwtManager *auth.JWTManager, mailer CodeMailer, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		mailer:     mailer,
		logger:     logger,
	}
}

// Signup creates an unverified user and emails a verification code.
// If the email cannot be delivered the user is rolled back, so a
// retried signup with the same address is not rejected as a duplicate.
func (s *AuthService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	existingUser, _ := s.userRepo.GetByEmail(ctx, req.Email)
	if existingUser != nil {
		return nil, ErrUserExists
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	code, err := generateCode()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:               uuid.New(),
		Name:             req.Name,
		Email:            req.Email,
		Password:         hashedPassword,
		EmailVerified:    false,
		VerificationCode: code,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.mailer.SendVerificationCode(user.Email, user.Name, "MyMoney Email Verification", user.VerificationCode); err != nil {
		if delErr := s.userRepo.Delete(ctx, user.ID); delErr != nil {
			s.logger.Error("Failed to roll back user after mail failure", zap.Error(delErr))
		}
		return nil, err
	}

	token, err := s.jwtManager.GenerateToken(user.ID.String())
	if err != nil {
		return nil, err
	}

	return s.authResponse(token, user), nil
}

// VerifyEmail checks the submitted code against the stored one. A
// mismatch deletes the pending user, matching the signup flow where an
// unverifiable account must be re-created.
func (s *AuthService) VerifyEmail(ctx context.Context, userID uuid.UUID, code int) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	if code != user.VerificationCode {
		if delErr := s.userRepo.Delete(ctx, user.ID); delErr != nil {
			s.logger.Error("Failed to delete user after code mismatch", zap.Error(delErr))
		}
		return ErrInvalidCode
	}

	user.EmailVerified = true
	user.UpdatedAt = time.Now()
	return s.userRepo.Update(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if !auth.CheckPasswordHash(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	token, err := s.jwtManager.GenerateToken(user.ID.String())
	if err != nil {
		return nil, err
	}

	return s.authResponse(token, user), nil
}

// ForgotPassword issues a fresh code by email and returns a token for
// the subsequent reset call.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrUserNotFound
	}

	code, err := generateCode()
	if err != nil {
		return nil, err
	}

	user.VerificationCode = code
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if err := s.mailer.SendVerificationCode(user.Email, user.Name, "Forgot Password", user.VerificationCode); err != nil {
		return nil, err
	}

	token, err := s.jwtManager.GenerateToken(user.ID.String())
	if err != nil {
		return nil, err
	}

	return s.authResponse(token, user), nil
}

func (s *AuthService) ResetPassword(ctx context.Context, userID uuid.UUID, password string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	user.UpdatedAt = time.Now()
	return s.userRepo.Update(ctx, user)
}

func (s *AuthService) authResponse(token string, user *models.User) *dto.AuthResponse {
	return &dto.AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.jwtManager.GetTokenDuration().Seconds()),
		User: dto.UserResponse{
			ID:            user.ID.String(),
			Name:          user.Name,
			Email:         user.Email,
			EmailVerified: user.EmailVerified,
		},
	}
}

// generateCode returns a 6-digit one-time verification code. A source
// failure is surfaced rather than degraded into a predictable code.
func generateCode() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return 0, fmt.Errorf("failed to generate verification code: %w", err)
	}
	return int(n.Int64()) + 100000, nil
}
