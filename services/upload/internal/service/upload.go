package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/Skotchmaster/tradefund/pkg/logging"
)

var (
	ErrValidation = errors.New("validation")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
)

type Actor struct {
	ID   uuid.UUID
	Role string
}

// Store persists file bytes under a category directory.
type Store interface {
	Put(category, name string, data []byte) error
}

type Stored struct {
	URL      string `json:"url"`
	Category string `json:"category"`
	Filename string `json:"filename"`
	MIME     string `json:"mime"`
	Size     int64  `json:"size"`
}

type UploadService struct {
	Store Store
	Now   func() time.Time
	Rand  io.Reader
}

func (s *UploadService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *UploadService) token() (string, error) {
	r := s.Rand
	if r == nil {
		r = rand.Reader
	}
	b := make([]byte, 8)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Upload sniffs the content, checks it against the category rules and stores it
// as {category}-{unixmillis}-{random hex}{ext}.
func (s *UploadService) Upload(ctx context.Context, a Actor, category string, r io.Reader) (*Stored, error) {
	cat, ok := Lookup(category)
	if !ok {
		return nil, fmt.Errorf("%w: unknown upload category %q", ErrNotFound, category)
	}
	if !cat.permits(a.Role) {
		return nil, fmt.Errorf("%w: role %s cannot upload %s files", ErrForbidden, a.Role, cat.Name)
	}

	data, err := io.ReadAll(io.LimitReader(r, cat.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrValidation)
	}
	if int64(len(data)) > cat.MaxBytes {
		return nil, fmt.Errorf("%w: file larger than %d MB", ErrValidation, cat.MaxBytes/mb)
	}

	mt := mimetype.Detect(data)
	if !allowed(mt, cat.Allowed) {
		return nil, fmt.Errorf("%w: %s files are not accepted for %s", ErrValidation, mt.String(), cat.Name)
	}

	tok, err := s.token()
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s-%d-%s%s", cat.Name, s.now().UnixMilli(), tok, mt.Extension())
	if err := s.Store.Put(cat.Name, name, data); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("file_stored", "category", cat.Name, "file", name, "mime", mt.String(), "size", len(data), "user_id", a.ID)
	return &Stored{
		URL:      "/uploads/" + cat.Name + "/" + name,
		Category: cat.Name,
		Filename: name,
		MIME:     mt.String(),
		Size:     int64(len(data)),
	}, nil
}

func allowed(mt *mimetype.MIME, list []string) bool {
	for _, m := range list {
		if mt.Is(m) {
			return true
		}
	}
	return false
}
