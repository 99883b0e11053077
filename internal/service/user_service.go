package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Kosench/tinyapp/internal/auth"
	apperrors "github.com/Kosench/tinyapp/internal/errors"
	"github.com/Kosench/tinyapp/internal/model"
	"github.com/Kosench/tinyapp/internal/repository"
	"github.com/Kosench/tinyapp/internal/utils"
)

type UserService struct {
	userRepo   repository.UserRepository
	hasher     auth.Hasher
	maxRetries int
	logger     zerolog.Logger
	now        func() time.Time
}

func NewUserService(userRepo repository.UserRepository, hasher auth.Hasher, maxRetries int, logger zerolog.Logger) *UserService {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	return &UserService{
		userRepo:   userRepo,
		hasher:     hasher,
		maxRetries: maxRetries,
		logger:     logger.With().Str("component", "user_service").Logger(),
		now:        time.Now,
	}
}

func (s *UserService) Register(ctx context.Context, req *model.CredentialsRequest) (*model.UserResponse, error) {
	email := strings.TrimSpace(req.Email)
	if err := utils.ValidateCredentials(email, req.Password); err != nil {
		return nil, err
	}

	_, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperrors.ErrEmailTaken
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.createWithUniqueID(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user registered")

	return &model.UserResponse{ID: user.ID, Email: user.Email}, nil
}

// Login не различает неизвестный email и неверный пароль
func (s *UserService) Login(ctx context.Context, req *model.CredentialsRequest) (*model.UserResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, apperrors.NewValidationError("email", "email cannot be empty")
	}
	if req.Password == "" {
		return nil, apperrors.NewValidationError("password", "password cannot be empty")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.logger.Debug().Str("user_id", user.ID).Msg("password mismatch")
		return nil, apperrors.ErrInvalidCredentials
	}

	return &model.UserResponse{ID: user.ID, Email: user.Email}, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*model.UserResponse, error) {
	if id == "" {
		return nil, apperrors.ErrUserNotFound
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.UserResponse{ID: user.ID, Email: user.Email}, nil
}

func (s *UserService) createWithUniqueID(ctx context.Context, user *model.User) error {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		id, err := utils.GenerateShortCode()
		if err != nil {
			return fmt.Errorf("failed to generate user ID: %w", err)
		}

		user.ID = id
		err = s.userRepo.Create(ctx, user)
		if err == nil {
			return nil
		}

		if !errors.Is(err, apperrors.ErrUserIDExists) {
			return err
		}
	}

	return apperrors.ErrIDGeneration
}
