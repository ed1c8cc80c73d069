package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/tradefund/services/chat/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) InTx(ctx context.Context, fn func(tx *GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

// CreateChat stores the chat together with its participants.
func (r *GormRepo) CreateChat(ctx context.Context, c *models.Chat) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) GetChat(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	var c models.Chat
	if err := r.DB.WithContext(ctx).Preload("Participants").First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByRef returns the chat of the given kind attached to an order or project, or gorm.ErrRecordNotFound.
func (r *GormRepo) FindByRef(ctx context.Context, kind models.ChatKind, ref uuid.UUID) (*models.Chat, error) {
	var c models.Chat
	err := r.DB.WithContext(ctx).Preload("Participants").
		Where("kind = ? AND ref_id = ?", kind, ref).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) AddParticipants(ctx context.Context, chatID uuid.UUID, users []uuid.UUID) error {
	if len(users) == 0 {
		return nil
	}
	rows := make([]models.Participant, 0, len(users))
	for _, u := range users {
		rows = append(rows, models.Participant{ChatID: chatID, UserID: u})
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (r *GormRepo) IsParticipant(ctx context.Context, chatID, userID uuid.UUID) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Participant{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).Count(&n).Error
	return n > 0, err
}

// ListChats returns the chats the user takes part in, most recently active first.
func (r *GormRepo) ListChats(ctx context.Context, userID uuid.UUID, offset, limit int) (int64, []models.Chat, error) {
	q := r.DB.WithContext(ctx).Model(&models.Chat{}).
		Joins("JOIN chat_participants p ON p.chat_id = chats.id AND p.user_id = ?", userID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}
	items := make([]models.Chat, 0, limit)
	err := q.Preload("Participants").
		Order("chats.updated_at DESC").Order("chats.id ASC").
		Offset(offset).Limit(limit).Find(&items).Error
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// ListChatsByKind is the staff view over every chat of one kind.
func (r *GormRepo) ListChatsByKind(ctx context.Context, kind models.ChatKind, offset, limit int) (int64, []models.Chat, error) {
	q := r.DB.WithContext(ctx).Model(&models.Chat{}).Where("kind = ?", kind)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}
	items := make([]models.Chat, 0, limit)
	err := q.Preload("Participants").Order("updated_at DESC").Order("id ASC").
		Offset(offset).Limit(limit).Find(&items).Error
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// AddMessage stores a message and bumps the chat's activity time.
func (r *GormRepo) AddMessage(ctx context.Context, m *models.Message) error {
	if err := r.DB.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Model(&models.Chat{}).Where("id = ?", m.ChatID).
		Update("updated_at", m.CreatedAt).Error
}

// Messages pages backwards from before (exclusive); zero before means newest.
func (r *GormRepo) Messages(ctx context.Context, chatID uuid.UUID, before time.Time, limit int) ([]models.Message, error) {
	q := r.DB.WithContext(ctx).Where("chat_id = ?", chatID)
	if !before.IsZero() {
		q = q.Where("created_at < ?", before)
	}
	items := make([]models.Message, 0, limit)
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) LastMessage(ctx context.Context, chatID uuid.UUID) (*models.Message, error) {
	var m models.Message
	err := r.DB.WithContext(ctx).Where("chat_id = ?", chatID).
		Order("created_at DESC").Order("id DESC").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Unread counts messages from others newer than the participant's last_read_at.
func (r *GormRepo) Unread(ctx context.Context, chatID, userID uuid.UUID) (int64, error) {
	var p models.Participant
	if err := r.DB.WithContext(ctx).Where("chat_id = ? AND user_id = ?", chatID, userID).First(&p).Error; err != nil {
		return 0, err
	}
	q := r.DB.WithContext(ctx).Model(&models.Message{}).
		Where("chat_id = ? AND sender_id <> ?", chatID, userID)
	if p.LastReadAt != nil {
		q = q.Where("created_at > ?", *p.LastReadAt)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (r *GormRepo) MarkRead(ctx context.Context, chatID, userID uuid.UUID, at time.Time) error {
	res := r.DB.WithContext(ctx).Model(&models.Participant{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Update("last_read_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ChatIDs lists every chat id the user participates in.
func (r *GormRepo) ChatIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.DB.WithContext(ctx).Model(&models.Participant{}).
		Where("user_id = ?", userID).Pluck("chat_id", &ids).Error
	return ids, err
}
