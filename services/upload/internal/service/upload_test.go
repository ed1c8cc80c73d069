package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/tradefund/pkg/roles"
)

var (
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n")
)

type memStore struct {
	files map[string][]byte
	err   error
}

func (m *memStore) Put(category, name string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.files[category+"/"+name] = data
	return nil
}

func newService() (*UploadService, *memStore) {
	st := &memStore{files: map[string][]byte{}}
	return &UploadService{
		Store: st,
		Now:   func() time.Time { return time.UnixMilli(1767225600123).UTC() },
		Rand:  bytes.NewReader(bytes.Repeat([]byte{0xab}, 64)),
	}, st
}

func TestUpload_StoresWithGeneratedName(t *testing.T) {
	t.Parallel()

	s, st := newService()
	seller := Actor{ID: uuid.New(), Role: roles.Seller}

	got, err := s.Upload(context.Background(), seller, "product-image", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.Equal(t, "product-image-1767225600123-abababababababab.png", got.Filename)
	assert.Equal(t, "/uploads/product-image/"+got.Filename, got.URL)
	assert.Equal(t, "image/png", got.MIME)
	assert.EqualValues(t, len(pngBytes), got.Size)
	assert.Equal(t, pngBytes, st.files["product-image/"+got.Filename])
}

func TestUpload_Rules(t *testing.T) {
	t.Parallel()

	investor := Actor{ID: uuid.New(), Role: roles.Investor}
	owner := Actor{ID: uuid.New(), Role: roles.ProjectOwner}
	super := Actor{ID: uuid.New(), Role: roles.SuperAdmin}

	cases := []struct {
		name     string
		actor    Actor
		category string
		data     []byte
		want     error
	}{
		{"kyc pdf by anyone", investor, "kyc", pdfBytes, nil},
		{"transfer proof image", investor, "transfer-proof", pngBytes, nil},
		{"prospectus by owner", owner, "prospectus", pdfBytes, nil},
		{"super admin anywhere", super, "company-logo", pngBytes, nil},
		{"unknown category", investor, "avatars", pngBytes, ErrNotFound},
		{"wrong role", investor, "prospectus", pdfBytes, ErrForbidden},
		{"image as prospectus", owner, "prospectus", pngBytes, ErrValidation},
		{"plain text", investor, "kyc", []byte("just some text"), ErrValidation},
		{"empty", investor, "kyc", nil, ErrValidation},
		{"too large", investor, "kyc", append(append([]byte{}, pdfBytes...), make([]byte, 5*mb)...), ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s, _ := newService()
			_, err := s.Upload(context.Background(), tc.actor, tc.category, bytes.NewReader(tc.data))
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUpload_StoreFailure(t *testing.T) {
	t.Parallel()

	s, st := newService()
	st.err = errors.New("disk full")
	_, err := s.Upload(context.Background(), Actor{ID: uuid.New(), Role: roles.Buyer}, "kyc", bytes.NewReader(pdfBytes))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "disk full"))
}

func TestCategories(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"kyc", "transfer-proof", "prospectus", "financial-report", "product-image", "company-logo", "company-profile"}, CategoryNames())
	assert.EqualValues(t, 10*mb, MaxUploadBytes())
}
