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
	"github.com/Skotchmaster/tradefund/services/investment/internal/models"
	"github.com/Skotchmaster/tradefund/services/investment/internal/repo"
	"github.com/Skotchmaster/tradefund/services/investment/internal/service"
)

var secret = []byte("investment-secret")

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	r := &repo.GormRepo{DB: testutil.NewDB(t, models.All()...)}
	fx := events.NewBestEffort(&events.MemoryPublisher{}, "investment")
	e := echo.New()
	Register(e, &Deps{
		ProjectHandler:    &ProjectHTTP{Svc: &service.ProjectService{Repo: r, Events: fx}},
		InvestmentHandler: &InvestmentHTTP{Svc: &service.InvestmentService{Repo: r, Events: fx}},
		DividendHandler:   &DividendHTTP{Svc: &service.DividendService{Repo: r, Events: fx}},
		ReportHandler:     &ReportHTTP{Svc: &service.ReportService{Repo: r, Events: fx}},
		JWTSecret:         secret,
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

func TestInvestmentHTTP_FundraisingFlow(t *testing.T) {
	e := newTestServer(t)
	owner := bearer(t, uuid.New(), roles.ProjectOwner)
	investor := bearer(t, uuid.New(), roles.Investor)
	admin := bearer(t, uuid.New(), roles.InvestmentAdmin)

	rec := do(e, http.MethodPost, "/investment/projects",
		`{"title":"Fish farm","currency":"USD","target_amount":"500","min_investment":"50","prospectus_url":"/uploads/prospectus/p.pdf"}`, owner)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p models.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	base := "/investment/projects/" + p.ID.String()

	rec = do(e, http.MethodGet, base, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, base+"/submit", "", owner)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(e, http.MethodPost, "/investment/admin/projects/"+p.ID.String()+"/approve", "", owner)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(e, http.MethodPost, "/investment/admin/projects/"+p.ID.String()+"/approve", "", admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/investment/projects", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), p.ID.String())

	rec = do(e, http.MethodPost, base+"/investments", `{"amount":"500","transfer_proof_url":"/uploads/transfer-proof/t.png"}`, investor)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var inv models.Investment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inv))

	rec = do(e, http.MethodPost, fmt.Sprintf("/investment/admin/investments/%s/confirm", inv.ID), "", admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, base, "", investor)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, models.ProjectFunded, p.Status)
	assert.True(t, p.RaisedAmount.Equal(decimal.NewFromInt(500)))

	rec = do(e, http.MethodPost, base+"/dividends", `{"amount":"25","period":"2026-09"}`, owner)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/investment/payouts/mine", "", investor)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)
}

func TestInvestmentHTTP_Errors(t *testing.T) {
	e := newTestServer(t)
	investor := bearer(t, uuid.New(), roles.Investor)
	admin := bearer(t, uuid.New(), roles.InvestmentAdmin)

	tests := []struct {
		name         string
		method, path string
		body, token  string
		want         int
	}{
		{"create needs owner", http.MethodPost, "/investment/projects", `{}`, investor, http.StatusForbidden},
		{"admin queue needs staff", http.MethodGet, "/investment/admin/projects", "", investor, http.StatusForbidden},
		{"admin queue", http.MethodGet, "/investment/admin/projects", "", admin, http.StatusOK},
		{"missing project", http.MethodPost, "/investment/projects/" + uuid.NewString() + "/investments", `{"amount":"1","transfer_proof_url":"/uploads/transfer-proof/x.png"}`, investor, http.StatusNotFound},
		{"bad id", http.MethodGet, "/investment/investments/abc", "", investor, http.StatusBadRequest},
		{"private status filter", http.MethodGet, "/investment/projects?status=draft", "", "", http.StatusBadRequest},
		{"auth required", http.MethodGet, "/investment/investments/mine", "", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, tt.method, tt.path, tt.body, tt.token)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}
