package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	repo   domain.Repository
	outbox domain.SyncWorker
	logger *zerolog.Logger
	now    func() time.Time
}

func NewItemService(repo domain.Repository, outbox domain.SyncWorker, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		repo:   repo,
		outbox: outbox,
		logger: nopLogger(logger),
		now:    time.Now,
	}
}

// ListOwnerItems returns the user's items, each with its nearest bookings and comments.
func (s *ItemService) ListOwnerItems(ctx context.Context, userID int64, page *models.Page) ([]*models.ItemDetails, error) {
	if _, err := loadUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}

	items, err := s.repo.ListItemsByOwner(ctx, userID, page)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]*models.ItemDetails, 0, len(items))
	for _, it := range items {
		details, err := s.details(ctx, it, userID, now)
		if err != nil {
			return nil, err
		}
		out = append(out, details)
	}
	return out, nil
}

func (s *ItemService) GetItem(ctx context.Context, userID, itemID int64) (*models.ItemDetails, error) {
	if _, err := loadUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}
	item, err := loadItem(ctx, s.repo, itemID)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, item, userID, s.now())
}

// details attaches last/next bookings, skipping the viewer's own bookings.
func (s *ItemService) details(ctx context.Context, item *models.Item, viewerID int64, now time.Time) (*models.ItemDetails, error) {
	last, err := s.repo.GetLastBooking(ctx, item.ID, viewerID, now)
	if err != nil {
		return nil, err
	}
	next, err := s.repo.GetNextBooking(ctx, item.ID, viewerID, now)
	if err != nil {
		return nil, err
	}
	comments, err := s.repo.ListCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	return &models.ItemDetails{Item: *item, LastBooking: last, NextBooking: next, Comments: comments}, nil
}

func (s *ItemService) CreateItem(ctx context.Context, userID int64, item *models.Item) (*models.Item, error) {
	if _, err := loadUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}
	if item.RequestID != nil {
		if _, err := loadRequest(ctx, s.repo, *item.RequestID); err != nil {
			return nil, err
		}
	}

	item.OwnerID = userID
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", userID).Msg("item created")
	return item, nil
}

func (s *ItemService) UpdateItem(ctx context.Context, userID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	if _, err := loadUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}
	item, err := loadItem(ctx, s.repo, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != userID {
		return nil, domain.NotFound("Item %d not found for owner %d", itemID, userID)
	}

	if !patch.Apply(item) {
		return item, nil
	}
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, domain.NotFound("Item %d not found", itemID)
		}
		return nil, err
	}
	return item, nil
}

func (s *ItemService) DeleteItem(ctx context.Context, userID, itemID int64) error {
	if _, err := loadUser(ctx, s.repo, userID); err != nil {
		return err
	}
	if _, err := loadItem(ctx, s.repo, itemID); err != nil {
		return err
	}

	bookingIDs, err := s.repo.DeleteItem(ctx, userID, itemID)
	if errors.Is(err, database.ErrNotFound) {
		return domain.NotFound("Item %d not found for owner %d", itemID, userID)
	}
	if err != nil {
		return err
	}

	s.logger.Info().
		Int64("item_id", itemID).
		Int64("owner_id", userID).
		Int("bookings", len(bookingIDs)).
		Msg("item deleted")
	enqueueLedgerDeletes(ctx, s.outbox, s.logger, bookingIDs)
	return nil
}

// SearchItems returns nothing for blank text rather than every item.
func (s *ItemService) SearchItems(ctx context.Context, text string, page *models.Page) ([]*models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}
	return s.repo.SearchItems(ctx, text, page)
}

// AddComment requires the author to have finished an approved booking of the item.
func (s *ItemService) AddComment(ctx context.Context, userID, itemID int64, text string) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.BadRequest("Comment text must not be blank")
	}
	user, err := loadUser(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if _, err := loadItem(ctx, s.repo, itemID); err != nil {
		return nil, err
	}

	ok, err := s.repo.HasFinishedApprovedBooking(ctx, userID, itemID, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.BadRequest("User %d has no finished booking of item %d", userID, itemID)
	}

	comment := &models.Comment{Text: text, ItemID: itemID, AuthorID: userID, AuthorName: user.Name}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
