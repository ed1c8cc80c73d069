package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/tradefund/pkg/roles"
	"github.com/Skotchmaster/tradefund/pkg/testutil"
	"github.com/Skotchmaster/tradefund/pkg/tokens"
	"github.com/Skotchmaster/tradefund/services/chat/internal/models"
	"github.com/Skotchmaster/tradefund/services/chat/internal/realtime"
	"github.com/Skotchmaster/tradefund/services/chat/internal/repo"
	"github.com/Skotchmaster/tradefund/services/chat/internal/service"
)

var secret = []byte("chat-secret")

func newTestServer(t *testing.T, realtimeOn bool) *echo.Echo {
	t.Helper()
	svc := &service.ChatService{Repo: &repo.GormRepo{DB: testutil.NewDB(t, models.All()...)}}
	var sockets *SocketHTTP
	if realtimeOn {
		svc.Hub = realtime.NewHub(context.Background(), realtime.NewMemoryBroker())
		sockets = NewSocketHTTP(svc.Hub, svc, nil)
	}
	e := echo.New()
	Register(e, &Deps{ChatHandler: &ChatHTTP{Svc: svc}, SocketHandler: sockets, JWTSecret: secret})
	return e
}

func bearer(t *testing.T, id uuid.UUID, role string) string {
	t.Helper()
	tok, err := tokens.SignAccess(tokens.AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, secret)
	require.NoError(t, err)
	return tok
}

func do(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func createChat(t *testing.T, e *echo.Echo, token string, with uuid.UUID) models.Chat {
	t.Helper()
	rec := do(e, http.MethodPost, "/chat/chats", `{"participant_ids":["`+with.String()+`"],"title":"coffee"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var c models.Chat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	return c
}

func TestChatHTTP_RestFlow(t *testing.T) {
	e := newTestServer(t, false)
	buyerID, sellerID := uuid.New(), uuid.New()
	buyer, seller := bearer(t, buyerID, roles.Buyer), bearer(t, sellerID, roles.Seller)

	c := createChat(t, e, buyer, sellerID)
	base := "/chat/chats/" + c.ID.String()

	rec := do(e, http.MethodPost, base+"/messages", `{"body":"price for 2 tons?"}`, buyer)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/chat/chats/unread", "", seller)
	require.Equal(t, http.StatusOK, rec.Code)
	var unread struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &unread))
	assert.EqualValues(t, 1, unread.Total)

	rec = do(e, http.MethodGet, base+"/messages?limit=5", "", seller)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "price for 2 tons?")

	require.Equal(t, http.StatusNoContent, do(e, http.MethodPost, base+"/read", "", seller).Code)
	rec = do(e, http.MethodGet, "/chat/chats", "", seller)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unread":0`)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		token  string
		want   int
	}{
		{"no token", http.MethodGet, "/chat/chats", "", "", http.StatusUnauthorized},
		{"bad id", http.MethodGet, "/chat/chats/x", "", buyer, http.StatusBadRequest},
		{"unknown chat", http.MethodGet, "/chat/chats/" + uuid.NewString(), "", buyer, http.StatusNotFound},
		{"outsider", http.MethodGet, base, "", bearer(t, uuid.New(), roles.Buyer), http.StatusForbidden},
		{"empty body", http.MethodPost, base + "/messages", `{"body":""}`, buyer, http.StatusBadRequest},
		{"bad before", http.MethodGet, base + "/messages?before=yesterday", "", buyer, http.StatusBadRequest},
		{"socket disabled", http.MethodGet, "/chat/ws", "", buyer, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, do(e, tc.method, tc.path, tc.body, tc.token).Code)
		})
	}
}

func TestChatHTTP_SocketReceivesMessagesAndTyping(t *testing.T) {
	e := newTestServer(t, true)
	srv := httptest.NewServer(e)
	defer srv.Close()

	buyerID, sellerID := uuid.New(), uuid.New()
	buyer, seller := bearer(t, buyerID, roles.Buyer), bearer(t, sellerID, roles.Seller)
	c := createChat(t, e, buyer, sellerID)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat/ws?access_token=" + seller
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var f realtime.Frame
	require.NoError(t, conn.WriteJSON(realtime.Frame{Type: realtime.FrameJoin, ChatID: uuid.New()}))
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, realtime.FrameError, f.Type)

	require.NoError(t, conn.WriteJSON(realtime.Frame{Type: realtime.FrameJoin, ChatID: c.ID}))
	require.NoError(t, conn.ReadJSON(&f))
	require.Equal(t, realtime.FrameJoined, f.Type)

	rec := do(e, http.MethodPost, "/chat/chats/"+c.ID.String()+"/messages", `{"body":"hello over the wire"}`, buyer)
	require.Equal(t, http.StatusCreated, rec.Code)

	var msg struct {
		Type    string         `json:"type"`
		UserID  uuid.UUID      `json:"user_id"`
		Message models.Message `json:"message"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, realtime.FrameMessage, msg.Type)
	assert.Equal(t, buyerID, msg.UserID)
	assert.Equal(t, "hello over the wire", msg.Message.Body)

	require.NoError(t, conn.WriteJSON(realtime.Frame{Type: realtime.FrameTyping, ChatID: c.ID}))
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, realtime.FrameTyping, f.Type)
	assert.Equal(t, sellerID, f.UserID)
}

func TestChatHTTP_SocketRequiresToken(t *testing.T) {
	e := newTestServer(t, true)
	srv := httptest.NewServer(e)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/chat/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
