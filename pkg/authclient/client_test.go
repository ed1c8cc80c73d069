package authclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_RefreshTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/refresh", r.URL.Path)
		ck, err := r.Cookie("refreshToken")
		require.NoError(t, err)
		assert.Equal(t, "old-refresh", ck.Value)
		_ = json.NewEncoder(w).Encode(RefreshResponse{AccessToken: "a", RefreshToken: "r", Role: "BUYER"})
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL+"/").RefreshTokens(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "a", res.AccessToken)
	assert.Equal(t, "BUYER", res.Role)
}

func TestClient_RefreshTokens_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).RefreshTokens(context.Background(), "x")
	require.Error(t, err)
}
