package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/Kosench/tinyapp/internal/errors"
	"github.com/Kosench/tinyapp/internal/model"
	"github.com/Kosench/tinyapp/internal/repository"
	"github.com/Kosench/tinyapp/internal/utils"
)

const defaultMaxRetries = 5

type URLServiceConfig struct {
	BaseURL         string
	ShortCodeLength int
	MaxRetries      int
}

type URLService struct {
	urlRepo    repository.URLRepository
	visitRepo  repository.VisitRepository
	baseURL    string
	codeLength int
	maxRetries int
	logger     zerolog.Logger
	now        func() time.Time
}

func NewURLService(urlRepo repository.URLRepository, visitRepo repository.VisitRepository, cfg URLServiceConfig, logger zerolog.Logger) *URLService {
	s := &URLService{
		urlRepo:    urlRepo,
		visitRepo:  visitRepo,
		baseURL:    cfg.BaseURL,
		codeLength: cfg.ShortCodeLength,
		maxRetries: cfg.MaxRetries,
		logger:     logger.With().Str("component", "url_service").Logger(),
		now:        time.Now,
	}

	if s.codeLength <= 0 {
		s.codeLength = utils.DefaultIDLength
	}
	if s.maxRetries <= 0 {
		s.maxRetries = defaultMaxRetries
	}

	return s
}

func (s *URLService) CreateShortURL(ctx context.Context, ownerID string, req *model.CreateURLRequest) (*model.URLResponse, error) {
	if ownerID == "" {
		return nil, apperrors.ErrOwnerRequired
	}

	longURL := utils.SanitizeInput(req.LongURL)
	if err := utils.ValidateURL(longURL); err != nil {
		return nil, err
	}

	url := &model.URL{
		LongURL:   longURL,
		OwnerID:   ownerID,
		CreatedAt: s.now().UTC(),
	}

	if err := s.createWithUniqueCode(ctx, url); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("short_code", url.ShortCode).
		Str("owner_id", ownerID).
		Msg("short URL created")

	return s.toResponse(url), nil
}

// ListURLs возвращает только ссылки пользователя в порядке создания
func (s *URLService) ListURLs(ctx context.Context, userID string) ([]model.URL, error) {
	if userID == "" {
		return nil, apperrors.ErrOwnerRequired
	}

	urls, err := s.urlRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list URLs: %w", err)
	}

	return urls, nil
}

func (s *URLService) GetDetails(ctx context.Context, userID, shortCode string) (*model.URLDetails, error) {
	url, err := s.ownedURL(ctx, userID, shortCode)
	if err != nil {
		return nil, err
	}

	visits, err := s.visitRepo.VisitsFor(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load visits: %w", err)
	}

	unique, err := s.visitRepo.UniqueVisitorCount(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("failed to count visitors: %w", err)
	}

	return &model.URLDetails{
		ID:             url.ShortCode,
		LongURL:        url.LongURL,
		ShortURL:       s.buildShortURL(url.ShortCode),
		User:           url.OwnerID,
		Visits:         visits,
		TotalVisits:    len(visits),
		UniqueVisitors: unique,
	}, nil
}

func (s *URLService) UpdateURL(ctx context.Context, userID, shortCode string, req *model.UpdateURLRequest) (*model.URLResponse, error) {
	url, err := s.ownedURL(ctx, userID, shortCode)
	if err != nil {
		return nil, err
	}

	longURL := utils.SanitizeInput(req.LongURL)
	if err := utils.ValidateURL(longURL); err != nil {
		return nil, err
	}

	if err := s.urlRepo.Update(ctx, shortCode, longURL); err != nil {
		return nil, err
	}

	url.LongURL = longURL
	return s.toResponse(url), nil
}

func (s *URLService) DeleteURL(ctx context.Context, userID, shortCode string) error {
	if _, err := s.ownedURL(ctx, userID, shortCode); err != nil {
		return err
	}

	if err := s.urlRepo.Delete(ctx, shortCode); err != nil {
		return err
	}

	// Ссылка уже удалена, поэтому ошибка очистки журнала только логируется
	if err := s.visitRepo.DeleteFor(ctx, shortCode); err != nil {
		s.logger.Error().Err(err).Str("short_code", shortCode).Msg("failed to purge visits")
	}

	s.logger.Info().Str("short_code", shortCode).Str("owner_id", userID).Msg("short URL deleted")
	return nil
}

// Resolve - публичный поиск длинного URL для редиректа, без проверки владельца
func (s *URLService) Resolve(ctx context.Context, shortCode string) (string, error) {
	if shortCode == "" {
		return "", apperrors.NewValidationError("short_code", "short code cannot be empty")
	}

	url, err := s.urlRepo.Get(ctx, shortCode)
	if err != nil {
		return "", err
	}

	return url.LongURL, nil
}

func (s *URLService) RecordVisit(ctx context.Context, shortCode, visitorID string) error {
	if shortCode == "" {
		return apperrors.NewValidationError("short_code", "short code cannot be empty")
	}
	if visitorID == "" {
		return apperrors.NewValidationError("visitor_id", "visitor ID cannot be empty")
	}

	visit := model.Visit{
		ShortCode:       shortCode,
		VisitorID:       visitorID,
		TimestampMillis: s.now().UnixMilli(),
	}

	if err := s.visitRepo.Append(ctx, visit); err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}

	return nil
}

// ownedURL: сначала личность, потом существование, потом владение
func (s *URLService) ownedURL(ctx context.Context, userID, shortCode string) (*model.URL, error) {
	if userID == "" {
		return nil, apperrors.ErrOwnerRequired
	}

	if shortCode == "" {
		return nil, apperrors.ErrURLNotFound
	}

	url, err := s.urlRepo.Get(ctx, shortCode)
	if err != nil {
		return nil, err
	}

	if url.OwnerID != userID {
		return nil, apperrors.ErrNotOwner
	}

	return url, nil
}

func (s *URLService) createWithUniqueCode(ctx context.Context, url *model.URL) error {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		code, err := utils.GenerateID(s.codeLength)
		if err != nil {
			return fmt.Errorf("failed to generate code: %w", err)
		}

		url.ShortCode = code
		err = s.urlRepo.Create(ctx, url)
		if err == nil {
			return nil
		}

		if !errors.Is(err, apperrors.ErrShortCodeExists) {
			return fmt.Errorf("failed to create URL: %w", err)
		}

		s.logger.Debug().Str("short_code", code).Int("attempt", attempt+1).Msg("short code collision")
	}

	s.logger.Error().Int("attempts", s.maxRetries).Msg("short code space exhausted")
	return apperrors.ErrShortCodeGeneration
}

func (s *URLService) toResponse(url *model.URL) *model.URLResponse {
	return &model.URLResponse{
		ShortCode: url.ShortCode,
		LongURL:   url.LongURL,
		ShortURL:  s.buildShortURL(url.ShortCode),
		OwnerID:   url.OwnerID,
		CreatedAt: url.CreatedAt,
	}
}

func (s *URLService) buildShortURL(shortCode string) string {
	return fmt.Sprintf("%s/u/%s", s.baseURL, shortCode)
}
