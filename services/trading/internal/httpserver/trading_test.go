package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/tradefund/pkg/events"
	"github.com/Skotchmaster/tradefund/pkg/roles"
	"github.com/Skotchmaster/tradefund/pkg/testutil"
	"github.com/Skotchmaster/tradefund/pkg/tokens"
	"github.com/Skotchmaster/tradefund/services/trading/internal/models"
	"github.com/Skotchmaster/tradefund/services/trading/internal/repo"
	"github.com/Skotchmaster/tradefund/services/trading/internal/service"
)

var secret = []byte("trading-secret")

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	db := testutil.NewDB(t, models.All()...)
	r := &repo.GormRepo{DB: db}
	fx := events.NewBestEffort(&events.MemoryPublisher{}, "trading")
	orders := &service.OrderService{Repo: r, Events: fx}
	shipments := &service.ShipmentService{Repo: r, Events: fx}

	e := echo.New()
	Register(e, &Deps{
		CatalogHandler:  &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Events: fx}},
		OrderHandler:    &OrderHTTP{Svc: orders, Shipments: shipments},
		ShipmentHandler: &ShipmentHTTP{Svc: shipments},
		SellerHandler:   &SellerHTTP{Svc: &service.SellerService{Repo: r}},
		CartHandler:     &CartHTTP{Svc: &service.CartService{Repo: r, Orders: orders}},
		JWTSecret:       secret,
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

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type listBody[T any] struct {
	Data []T `json:"data"`
	Meta struct {
		Total int64 `json:"total"`
	} `json:"meta"`
}

func TestTradingHTTP_ProductToFixedPriceFlow(t *testing.T) {
	e := newTestServer(t)
	seller := bearer(t, uuid.New(), roles.Seller)
	buyer := bearer(t, uuid.New(), roles.Buyer)
	admin := bearer(t, uuid.New(), roles.TradingAdmin)

	rec := do(e, http.MethodPost, "/trading/products", `{"name":"Kopi","prices":[{"currency":"IDR","amount":"100000"},{"currency":"USD","amount":"10"}]}`, buyer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, http.MethodPost, "/trading/products", `{"name":"Kopi","prices":[{"currency":"IDR","amount":"100000"},{"currency":"USD","amount":"10"}]}`, seller)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	product := decode[models.Product](t, rec)
	assert.Equal(t, models.ProductPending, product.Status)

	rec = do(e, http.MethodGet, "/trading/products/"+product.ID.String(), "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "pending products are hidden from the public")
	rec = do(e, http.MethodGet, "/trading/products/"+product.ID.String(), "", seller)
	assert.Equal(t, http.StatusOK, rec.Code, "but visible to their seller")

	rec = do(e, http.MethodPost, "/trading/admin/products/"+product.ID.String()+"/approve", "", seller)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(e, http.MethodPost, "/trading/admin/products/"+product.ID.String()+"/approve", "", admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(e, http.MethodPost, "/trading/admin/products/"+product.ID.String()+"/approve", "", admin)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(e, http.MethodGet, "/trading/products", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[listBody[models.Product]](t, rec)
	assert.EqualValues(t, 1, list.Meta.Total)

	rec = do(e, http.MethodPost, "/trading/orders", fmt.Sprintf(`{"product_id":%q,"quantity":3,"currency":"USD"}`, product.ID), buyer)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[models.Order](t, rec)
	require.Len(t, order.Totals, 1)
	assert.True(t, order.Totals[0].Amount.Equal(decimal.NewFromInt(30)))

	body := fmt.Sprintf(`{"items":[{"item_id":%q,"fixed_unit_price":"9"}]}`, order.Items[0].ID)
	rec = do(e, http.MethodPut, "/trading/orders/"+order.ID.String()+"/fixed-prices", body, buyer)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(e, http.MethodPut, "/trading/orders/"+order.ID.String()+"/fixed-prices", body, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/trading/orders/"+order.ID.String(), "", buyer)
	require.Equal(t, http.StatusOK, rec.Code)
	order = decode[models.Order](t, rec)
	assert.Equal(t, models.PriceFixed, order.PriceMode)
	assert.Equal(t, models.OrderPriceSet, order.Status)
	assert.True(t, order.Totals[0].Amount.Equal(decimal.NewFromInt(27)))

	rec = do(e, http.MethodGet, "/trading/orders/"+order.ID.String(), "", bearer(t, uuid.New(), roles.Buyer))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTradingHTTP_Errors(t *testing.T) {
	e := newTestServer(t)
	buyer := bearer(t, uuid.New(), roles.Buyer)
	admin := bearer(t, uuid.New(), roles.TradingAdmin)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		token  string
		want   int
	}{
		{"orders need auth", http.MethodGet, "/trading/orders", "", "", http.StatusUnauthorized},
		{"bad id", http.MethodGet, "/trading/orders/nope", "", buyer, http.StatusBadRequest},
		{"missing order", http.MethodGet, "/trading/orders/" + uuid.NewString(), "", buyer, http.StatusNotFound},
		{"bad body", http.MethodPost, "/trading/orders", `{"quantity":"many"}`, buyer, http.StatusBadRequest},
		{"empty search", http.MethodGet, "/trading/products/search", "", "", http.StatusBadRequest},
		{"reject without reason", http.MethodPost, "/trading/admin/products/" + uuid.NewString() + "/reject", `{}`, admin, http.StatusBadRequest},
		{"cart is buyers only", http.MethodGet, "/trading/cart", "", admin, http.StatusForbidden},
		{"empty checkout", http.MethodPost, "/trading/cart/checkout", `{}`, buyer, http.StatusBadRequest},
		{"shipments are staff only", http.MethodPost, "/trading/shipments", `{}`, buyer, http.StatusForbidden},
		{"health", http.MethodGet, "/health/ready", "", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, tt.method, tt.path, tt.body, tt.token)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestTradingHTTP_SellerProfile(t *testing.T) {
	e := newTestServer(t)
	sellerID := uuid.New()
	seller := bearer(t, sellerID, roles.Seller)

	rec := do(e, http.MethodGet, "/trading/sellers/"+sellerID.String()+"/profile", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPut, "/trading/seller-profile", `{"company_name":"PT Kopi","country":"ID"}`, seller)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/trading/sellers/"+sellerID.String()+"/profile", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[models.SellerProfile](t, rec)
	assert.Equal(t, "PT Kopi", got.CompanyName)
}
