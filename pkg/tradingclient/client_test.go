package tradingclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTrading struct {
	mu         sync.Mutex
	draftCode  int
	draftBody  string
	failAfter  int
	orders     []orderRequest
	draftCalls int
}

func (f *fakeTrading) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.URL.Path {
	case "/trading/orders/draft":
		f.draftCalls++
		if f.draftCode != 0 {
			w.WriteHeader(f.draftCode)
			return
		}
		w.WriteHeader(http.StatusCreated)
		if f.draftBody != "" {
			_, _ = w.Write([]byte(f.draftBody))
			return
		}
		_ = json.NewEncoder(w).Encode(orderResponse{ID: uuid.New()})
	case "/trading/orders":
		if f.failAfter > 0 && len(f.orders) >= f.failAfter {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"product has no EUR price"}`))
			return
		}
		var req orderRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.orders = append(f.orders, req)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(orderResponse{ID: uuid.New()})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func draft() DraftRequest {
	return DraftRequest{
		Items: []Line{
			{ProductID: uuid.New(), Quantity: 2, Currency: "USD"},
			{ProductID: uuid.New(), Quantity: 1, Currency: "IDR"},
		},
		Destination: Destination{Country: "ID", City: "Jakarta", Address: "Jl. Sudirman 1", Incoterm: "fob"},
		Notes:       "call before delivery",
	}
}

func TestPlaceOrders_UsesDraftEndpoint(t *testing.T) {
	t.Parallel()

	f := &fakeTrading{}
	srv := httptest.NewServer(f)
	defer srv.Close()

	ids, err := NewClient(srv.URL).PlaceOrders(context.Background(), "tok", draft())
	require.NoError(t, err)
	assert.Len(t, ids, 1)
	assert.Empty(t, f.orders)
}

func TestPlaceOrders_FallsBackWhenDraftUnavailable(t *testing.T) {
	t.Parallel()

	for _, code := range []int{http.StatusNotFound, http.StatusMethodNotAllowed, http.StatusNotImplemented} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			t.Parallel()

			f := &fakeTrading{draftCode: code}
			srv := httptest.NewServer(f)
			defer srv.Close()

			req := draft()
			ids, err := NewClient(srv.URL).PlaceOrders(context.Background(), "tok", req)
			require.NoError(t, err)
			require.Len(t, ids, 2)
			require.Len(t, f.orders, 2)
			for i, o := range f.orders {
				assert.Equal(t, req.Items[i].ProductID, o.ProductID)
				assert.Equal(t, req.Items[i].Currency, o.Currency)
				assert.Equal(t, "Ship to: Jl. Sudirman 1, Jakarta, ID (FOB)\ncall before delivery", o.Notes)
			}
		})
	}
}

func TestPlaceOrders_ValidationErrorDoesNotFallBack(t *testing.T) {
	t.Parallel()

	f := &fakeTrading{draftCode: http.StatusBadRequest}
	srv := httptest.NewServer(f)
	defer srv.Close()

	ids, err := NewClient(srv.URL).PlaceOrders(context.Background(), "tok", draft())
	require.Error(t, err)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Nil(t, ids)
	assert.Empty(t, f.orders)
}

func TestPlaceOrders_FallbackReportsPartialResult(t *testing.T) {
	t.Parallel()

	f := &fakeTrading{draftCode: http.StatusNotImplemented, failAfter: 1}
	srv := httptest.NewServer(f)
	defer srv.Close()

	ids, err := NewClient(srv.URL).PlaceOrders(context.Background(), "tok", draft())
	require.Error(t, err)
	assert.Len(t, ids, 1, "orders created before the failure are returned")
}

func TestDestination_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", Destination{}.String())
	assert.Equal(t, "(CIF)", Destination{Incoterm: "cif"}.String())
	assert.Equal(t, "Surabaya, ID", Destination{City: "Surabaya", Country: "ID"}.String())
}

func TestPlaceOrders_TransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(&fakeTrading{})
	url := srv.URL
	srv.Close()

	ids, err := NewClient(url).PlaceOrders(context.Background(), "tok", draft())
	require.Error(t, err, "fallback is attempted and fails the same way")
	assert.Empty(t, ids)
}

func TestPlaceOrders_UnreadableDraftReplyDoesNotFallBack(t *testing.T) {
	t.Parallel()

	f := &fakeTrading{draftBody: "<html>ok</html>"}
	srv := httptest.NewServer(f)
	defer srv.Close()

	ids, err := NewClient(srv.URL).PlaceOrders(context.Background(), "tok", draft())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
	assert.Empty(t, ids)
	assert.Equal(t, 1, f.draftCalls)
	assert.Empty(t, f.orders, "the draft order already exists")
}

func TestPlaceOrders_DroppedConnectionDoesNotFallBack(t *testing.T) {
	t.Parallel()

	var singles int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/trading/orders" {
			mu.Lock()
			singles++
			mu.Unlock()
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(orderResponse{ID: uuid.New()})
			return
		}
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			_ = conn.Close()
		}
	}))
	defer srv.Close()

	ids, err := NewClient(srv.URL).PlaceOrders(context.Background(), "tok", draft())
	require.Error(t, err)
	assert.Empty(t, ids)
	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, singles)
}
