package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Skotchmaster/tradefund/services/notification/internal/models"
	"github.com/Skotchmaster/tradefund/services/notification/internal/repo"
)

var ErrNotFound = errors.New("not found")

type NotificationService struct {
	Repo *repo.GormRepo
	Now  func() time.Time
}

func (s *NotificationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, offset, limit int) (int64, []models.Notification, error) {
	return s.Repo.List(ctx, userID, unreadOnly, offset, limit)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.Repo.UnreadCount(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.Repo.MarkRead(ctx, userID, id, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: notification", ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.Repo.MarkAllRead(ctx, userID, s.now())
}

func (s *NotificationService) store(ctx context.Context, items []models.Notification) error {
	return s.Repo.CreateMany(ctx, items)
}

// note builds a notification carrying the raw event payload.
func note(eventID string, eventType string, payload []byte, userID uuid.UUID, title, body, link string) models.Notification {
	return models.Notification{
		UserID:  userID,
		EventID: eventID,
		Type:    eventType,
		Title:   title,
		Body:    body,
		Link:    link,
		Payload: datatypes.JSON(payload),
	}
}
