package httpserver

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
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
	"github.com/Skotchmaster/tradefund/services/billing/internal/models"
	"github.com/Skotchmaster/tradefund/services/billing/internal/repo"
	"github.com/Skotchmaster/tradefund/services/billing/internal/service"
)

var (
	secret   = []byte("billing-secret")
	cbSecret = []byte("provider-secret")
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	r := &repo.GormRepo{DB: testutil.NewDB(t, models.All()...)}
	require.NoError(t, r.SeedPlans(t.Context(), models.DefaultPlans()))
	e := echo.New()
	Register(e, &Deps{
		BillingHandler: &BillingHTTP{Svc: &service.BillingService{
			Repo:           r,
			Events:         events.NewBestEffort(&events.MemoryPublisher{}, "billing"),
			Providers:      []string{"midtrans"},
			CallbackSecret: cbSecret,
		}},
		JWTSecret: secret,
	})
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

func do(e *echo.Echo, method, path, body, token string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func sign(body string) string {
	return hex.EncodeToString(service.Sign(cbSecret, []byte(body)))
}

func TestBillingHTTP_SubscribeAndPay(t *testing.T) {
	e := newTestServer(t)
	sellerID := uuid.New()
	seller := bearer(t, sellerID, roles.Seller)
	admin := bearer(t, uuid.New(), roles.SuperAdmin)

	rec := do(e, http.MethodGet, "/subscription/plans", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "seller-pro")

	rec = do(e, http.MethodPost, "/subscription", `{"plan_code":"seller-pro","provider":"midtrans"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = do(e, http.MethodPost, "/subscription", `{"plan_code":"seller-pro","provider":"midtrans"}`, admin)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, http.MethodPost, "/subscription", `{"plan_code":"seller-pro","provider":"midtrans"}`, seller)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out service.Checkout
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotNil(t, out.Payment)

	body := `{"provider_ref":"` + out.Payment.ProviderRef + `","status":"PAID"}`
	rec = do(e, http.MethodPost, "/subscription/callbacks/midtrans", body, "", SignatureHeader, "00ff")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, "/subscription/callbacks/midtrans", body, "", SignatureHeader, sign(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"ACTIVE"`)

	rec = do(e, http.MethodGet, "/subscription/mine", "", seller)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine struct {
		Data []models.Subscription `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	require.Len(t, mine.Data, 1)
	assert.Equal(t, models.SubscriptionActive, mine.Data[0].Status)

	subPath := "/subscription/" + out.Subscription.ID.String()
	rec = do(e, http.MethodGet, subPath, "", bearer(t, uuid.New(), roles.Seller))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(e, http.MethodGet, subPath, "", seller)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/subscription/admin/payments?status=PAID", "", seller)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(e, http.MethodGet, "/subscription/admin/payments?status=PAID&user_id="+sellerID.String(), "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), out.Payment.ProviderRef)

	rec = do(e, http.MethodPost, subPath+"/cancel", "", seller)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"CANCELLED"`)
	rec = do(e, http.MethodPost, subPath+"/cancel", "", seller)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBillingHTTP_BadInput(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)
	seller := bearer(t, uuid.New(), roles.Seller)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown provider", http.MethodPost, "/subscription", `{"plan_code":"seller-pro","provider":"paypal"}`, http.StatusBadRequest},
		{"unknown plan", http.MethodPost, "/subscription", `{"plan_code":"nope","provider":"midtrans"}`, http.StatusNotFound},
		{"bad id", http.MethodGet, "/subscription/not-a-uuid", ``, http.StatusBadRequest},
		{"missing", http.MethodGet, "/subscription/" + uuid.NewString(), ``, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(e, tc.method, tc.path, tc.body, seller)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
}
