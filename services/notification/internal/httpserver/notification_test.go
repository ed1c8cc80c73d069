package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/tradefund/pkg/events"
	"github.com/Skotchmaster/tradefund/pkg/roles"
	"github.com/Skotchmaster/tradefund/pkg/testutil"
	"github.com/Skotchmaster/tradefund/pkg/tokens"
	"github.com/Skotchmaster/tradefund/services/notification/internal/models"
	"github.com/Skotchmaster/tradefund/services/notification/internal/repo"
	"github.com/Skotchmaster/tradefund/services/notification/internal/service"
)

var secret = []byte("notification-secret")

func setup(t *testing.T) (*echo.Echo, *service.NotificationService) {
	t.Helper()
	svc := &service.NotificationService{Repo: &repo.GormRepo{DB: testutil.NewDB(t, &models.Notification{})}}
	e := echo.New()
	Register(e, &Deps{NotificationHandler: &NotificationHTTP{Svc: svc}, JWTSecret: secret})
	return e, svc
}

func bearer(t *testing.T, id uuid.UUID) string {
	t.Helper()
	tok, err := tokens.SignAccess(tokens.AccessClaims{
		Role: roles.Buyer,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, secret)
	require.NoError(t, err)
	return tok
}

func do(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestNotificationHTTP_ReadFlow(t *testing.T) {
	e, svc := setup(t)
	user := uuid.New()
	tok := bearer(t, user)

	for i := 0; i < 2; i++ {
		env, err := events.NewEnvelope(events.OrderPricesFixed, "trading", "", events.OrderPriced{
			OrderID: uuid.New(), BuyerID: user,
		})
		require.NoError(t, err)
		require.NoError(t, svc.Router().Handle(context.Background(), env))
	}

	rec := do(e, http.MethodGet, "/notifications/unread-count", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"unread":2}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/notifications?unread=true", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []models.Notification `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.EqualValues(t, 2, body.Meta.Total)

	rec = do(e, http.MethodPost, "/notifications/"+body.Data[0].ID.String()+"/read", tok)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(e, http.MethodPost, "/notifications/"+body.Data[0].ID.String()+"/read", bearer(t, uuid.New()))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, "/notifications/read-all", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"marked":1}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/notifications?unread=true", tok)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Data)
}

func TestNotificationHTTP_Errors(t *testing.T) {
	e, _ := setup(t)

	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/notifications", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/notifications/nope/read", bearer(t, uuid.New())).Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodPost, "/notifications/"+uuid.NewString()+"/read", bearer(t, uuid.New())).Code)
}
