package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/tradefund/pkg/events"
	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/services/chat/internal/models"
	"github.com/Skotchmaster/tradefund/services/chat/internal/realtime"
	"github.com/Skotchmaster/tradefund/services/chat/internal/repo"
	"github.com/Skotchmaster/tradefund/services/chat/internal/transport"
)

const (
	maxBodyLen      = 4000
	maxParticipants = 50
)

// SystemSender marks messages written by the platform itself.
var SystemSender = uuid.Nil

type ChatService struct {
	Repo    *repo.GormRepo
	Hub     *realtime.Hub
	Effects *events.BestEffort
	Now     func() time.Time
}

func (s *ChatService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *ChatService) CreateChat(ctx context.Context, a Actor, req transport.CreateChatRequest) (*models.Chat, error) {
	kind := models.ChatKind(strings.ToUpper(strings.TrimSpace(req.Kind)))
	if kind == "" {
		kind = models.ChatDirect
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown chat kind", ErrValidation)
	}
	if kind == models.ChatDirect && req.RefID != nil {
		return nil, fmt.Errorf("%w: direct chats have no ref_id", ErrValidation)
	}
	if kind != models.ChatDirect && req.RefID == nil {
		return nil, fmt.Errorf("%w: ref_id is required for %s chats", ErrValidation, strings.ToLower(string(kind)))
	}
	if kind == models.ChatOrder && !a.StaffFor(kind) {
		return nil, fmt.Errorf("%w: order chats are opened by the trading desk", ErrForbidden)
	}

	members := uniq(append([]uuid.UUID{a.ID}, req.ParticipantIDs...))
	if len(members) < 2 {
		return nil, fmt.Errorf("%w: a chat needs another participant", ErrValidation)
	}
	if len(members) > maxParticipants {
		return nil, fmt.Errorf("%w: at most %d participants", ErrValidation, maxParticipants)
	}

	if req.RefID != nil {
		existing, err := s.Repo.FindByRef(ctx, kind, *req.RefID)
		switch {
		case err == nil:
			if !s.canRead(a, existing) {
				return nil, fmt.Errorf("%w: chat exists and you are not in it", ErrForbidden)
			}
			if err := s.Repo.AddParticipants(ctx, existing.ID, members); err != nil {
				return nil, err
			}
			return s.Repo.GetChat(ctx, existing.ID)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}

	c := &models.Chat{Kind: kind, RefID: req.RefID, Title: strings.TrimSpace(req.Title), CreatedBy: a.ID}
	for _, m := range members {
		c.Participants = append(c.Participants, models.Participant{UserID: m})
	}
	if err := s.Repo.CreateChat(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// OpenOrderChat makes sure the order has a chat with the buyer and sellers and greets them once.
func (s *ChatService) OpenOrderChat(ctx context.Context, orderID, buyerID uuid.UUID, sellerIDs []uuid.UUID) (*models.Chat, error) {
	existing, err := s.Repo.FindByRef(ctx, models.ChatOrder, orderID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	ref := orderID
	c := &models.Chat{
		Kind:      models.ChatOrder,
		RefID:     &ref,
		Title:     "Order " + orderID.String()[:8],
		CreatedBy: buyerID,
	}
	for _, m := range uniq(append([]uuid.UUID{buyerID}, sellerIDs...)) {
		c.Participants = append(c.Participants, models.Participant{UserID: m})
	}
	greeting := &models.Message{
		SenderID:  SystemSender,
		CreatedAt: s.now(),
		Body:      "Order received. The trading desk will confirm fixed prices in this chat.",
	}
	err = s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		if err := tx.CreateChat(ctx, c); err != nil {
			return err
		}
		greeting.ChatID = c.ID
		return tx.AddMessage(ctx, greeting)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ChatService) canRead(a Actor, c *models.Chat) bool {
	return isParticipant(*c, a.ID) || a.StaffFor(c.Kind)
}

func (s *ChatService) load(ctx context.Context, a Actor, id uuid.UUID) (*models.Chat, error) {
	c, err := s.Repo.GetChat(ctx, id)
	if err != nil {
		return nil, notFound(err, "chat")
	}
	if !s.canRead(a, c) {
		return nil, fmt.Errorf("%w: not a participant", ErrForbidden)
	}
	return c, nil
}

// CanJoin lets a socket subscribe to the rooms the user may read.
func (s *ChatService) CanJoin(ctx context.Context, userID uuid.UUID, role string, chatID uuid.UUID) error {
	_, err := s.load(ctx, Actor{ID: userID, Role: role}, chatID)
	return err
}

func (s *ChatService) GetChat(ctx context.Context, a Actor, id uuid.UUID) (*models.Summary, error) {
	c, err := s.load(ctx, a, id)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, a, *c)
}

// ListChats lists the actor's chats; staff may pass a kind to see every chat of it.
func (s *ChatService) ListChats(ctx context.Context, a Actor, kind string, offset, limit int) (int64, []models.Summary, error) {
	var (
		total int64
		chats []models.Chat
		err   error
	)
	if k := models.ChatKind(strings.ToUpper(kind)); kind != "" {
		if !k.Valid() {
			return 0, nil, fmt.Errorf("%w: unknown chat kind", ErrValidation)
		}
		if !a.StaffFor(k) {
			return 0, nil, fmt.Errorf("%w: listing all %s chats is staff only", ErrForbidden, strings.ToLower(kind))
		}
		total, chats, err = s.Repo.ListChatsByKind(ctx, k, offset, limit)
	} else {
		total, chats, err = s.Repo.ListChats(ctx, a.ID, offset, limit)
	}
	if err != nil {
		return 0, nil, err
	}

	out := make([]models.Summary, 0, len(chats))
	for _, c := range chats {
		sum, err := s.summarize(ctx, a, c)
		if err != nil {
			return 0, nil, err
		}
		out = append(out, *sum)
	}
	return total, out, nil
}

func (s *ChatService) summarize(ctx context.Context, a Actor, c models.Chat) (*models.Summary, error) {
	sum := &models.Summary{Chat: c}
	last, err := s.Repo.LastMessage(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	sum.LastMessage = last
	if isParticipant(c, a.ID) {
		if sum.Unread, err = s.Repo.Unread(ctx, c.ID, a.ID); err != nil {
			return nil, err
		}
	}
	return sum, nil
}

func (s *ChatService) Messages(ctx context.Context, a Actor, chatID uuid.UUID, before time.Time, limit int) ([]models.Message, error) {
	if _, err := s.load(ctx, a, chatID); err != nil {
		return nil, err
	}
	return s.Repo.Messages(ctx, chatID, before, limit)
}

// Send stores the message, then relays it to every socket in the room.
// Staff who write into a chat they only watch become participants.
func (s *ChatService) Send(ctx context.Context, a Actor, chatID uuid.UUID, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: body is required", ErrValidation)
	}
	if utf8.RuneCountInString(body) > maxBodyLen {
		return nil, fmt.Errorf("%w: body longer than %d characters", ErrValidation, maxBodyLen)
	}
	c, err := s.load(ctx, a, chatID)
	if err != nil {
		return nil, err
	}

	m := &models.Message{ChatID: chatID, SenderID: a.ID, Body: body, CreatedAt: s.now()}
	err = s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		if !isParticipant(*c, a.ID) {
			if err := tx.AddParticipants(ctx, chatID, []uuid.UUID{a.ID}); err != nil {
				return err
			}
		}
		if err := tx.AddMessage(ctx, m); err != nil {
			return err
		}
		return tx.MarkRead(ctx, chatID, a.ID, m.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	s.relay(ctx, realtime.Frame{Type: realtime.FrameMessage, ChatID: chatID, UserID: a.ID, Message: m, At: m.CreatedAt})
	return m, nil
}

func (s *ChatService) MarkRead(ctx context.Context, a Actor, chatID uuid.UUID) error {
	c, err := s.load(ctx, a, chatID)
	if err != nil {
		return err
	}
	if !isParticipant(*c, a.ID) {
		return nil
	}
	at := s.now()
	if err := s.Repo.MarkRead(ctx, chatID, a.ID, at); err != nil {
		return notFound(err, "participant")
	}
	s.relay(ctx, realtime.Frame{Type: realtime.FrameRead, ChatID: chatID, UserID: a.ID, At: at})
	return nil
}

// UnreadTotal sums unread messages over every chat of the user.
func (s *ChatService) UnreadTotal(ctx context.Context, a Actor) (int64, map[uuid.UUID]int64, error) {
	ids, err := s.Repo.ChatIDs(ctx, a.ID)
	if err != nil {
		return 0, nil, err
	}
	var total int64
	per := make(map[uuid.UUID]int64, len(ids))
	for _, id := range ids {
		n, err := s.Repo.Unread(ctx, id, a.ID)
		if err != nil {
			return 0, nil, err
		}
		if n > 0 {
			per[id] = n
		}
		total += n
	}
	return total, per, nil
}

func (s *ChatService) relay(ctx context.Context, f realtime.Frame) {
	if s.Hub == nil {
		return
	}
	s.Effects.Do(ctx, "chat_broadcast", func(ctx context.Context) error {
		return s.Hub.Broadcast(ctx, f)
	})
}

// Router seeds order chats from trading events.
func (s *ChatService) Router() *events.Router {
	return events.NewRouter("chat").On(events.OrderCreated, func(ctx context.Context, env events.Envelope) error {
		p, err := events.DecodePayload[events.OrderPlaced](env)
		if err != nil {
			logging.FromContext(ctx).Warn("order_chat_bad_payload", "event_id", env.EventID, "error", err)
			return nil
		}
		_, err = s.OpenOrderChat(ctx, p.OrderID, p.BuyerID, p.SellerIDs)
		return err
	})
}

func isParticipant(c models.Chat, userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

func uniq(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
