package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewRequestService(repo domain.Repository, logger *zerolog.Logger) *RequestService {
	return &RequestService{repo: repo, logger: nopLogger(logger)}
}

func (s *RequestService) CreateRequest(ctx context.Context, userID int64, description string) (*models.Request, error) {
	if strings.TrimSpace(description) == "" {
		return nil, domain.BadRequest("Request description must not be blank")
	}
	if utf8.RuneCountInString(description) > models.MaxRequestDescriptionLength {
		return nil, domain.BadRequest("Request description must be at most %d characters", models.MaxRequestDescriptionLength)
	}
	if _, err := loadUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}

	request := &models.Request{Description: description, RequesterID: userID}
	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	request.Items = []models.Item{}
	return request, nil
}

func (s *RequestService) GetRequest(ctx context.Context, userID, requestID int64) (*models.Request, error) {
	if _, err := loadUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}
	request, err := loadRequest(ctx, s.repo, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, []*models.Request{request}); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *RequestService) ListOwnRequests(ctx context.Context, userID int64, page *models.Page) ([]*models.Request, error) {
	if _, err := loadUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}
	requests, err := s.repo.ListRequestsByRequester(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return requests, s.attachItems(ctx, requests)
}

func (s *RequestService) ListOtherRequests(ctx context.Context, userID int64, page *models.Page) ([]*models.Request, error) {
	if _, err := loadUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}
	requests, err := s.repo.ListRequestsExcludingRequester(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return requests, s.attachItems(ctx, requests)
}

// attachItems loads the answering items of all requests in one query.
func (s *RequestService) attachItems(ctx context.Context, requests []*models.Request) error {
	if len(requests) == 0 {
		return nil
	}
	ids := make([]int64, len(requests))
	for i, r := range requests {
		ids[i] = r.ID
	}

	byRequest, err := s.repo.ListItemsByRequests(ctx, ids)
	if err != nil {
		return err
	}
	for _, r := range requests {
		r.Items = byRequest[r.ID]
		if r.Items == nil {
			r.Items = []models.Item{}
		}
	}
	return nil
}
