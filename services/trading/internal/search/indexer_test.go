package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/tradefund/services/trading/internal/models"
)

type recorded struct {
	method string
	path   string
	body   string
}

func newFakeES(t *testing.T, searchResponse string) (*ESIndexer, *[]recorded) {
	t.Helper()
	var mu sync.Mutex
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, recorded{method: r.Method, path: r.URL.Path, body: string(b)})
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/_search"):
			_, _ = w.Write([]byte(searchResponse))
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"result":"not_found"}`))
		default:
			_, _ = w.Write([]byte(`{"result":"created"}`))
		}
	}))
	t.Cleanup(srv.Close)

	es, err := NewClient(srv.URL, "", "")
	require.NoError(t, err)
	return &ESIndexer{ES: es, IndexName: "products"}, &calls
}

func TestESIndexer_IndexSendsDocument(t *testing.T) {
	t.Parallel()

	ix, calls := newFakeES(t, `{}`)
	p := &models.Product{
		ID:       uuid.New(),
		SellerID: uuid.New(),
		Name:     "Palm sugar",
		Unit:     "kg",
		Prices:   []models.ProductPrice{{Currency: "IDR", Amount: decimal.NewFromInt(100000)}},
	}
	require.NoError(t, ix.Index(context.Background(), p))

	require.Len(t, *calls, 1)
	got := (*calls)[0]
	assert.Equal(t, "/products/_doc/"+p.ID.String(), got.path)

	var doc document
	require.NoError(t, json.Unmarshal([]byte(got.body), &doc))
	assert.Equal(t, "Palm sugar", doc.Name)
	assert.Equal(t, []string{"IDR"}, doc.Currencies)
}

func TestESIndexer_RemoveMissingIsNotAnError(t *testing.T) {
	t.Parallel()

	ix, calls := newFakeES(t, `{}`)
	id := uuid.New()
	require.NoError(t, ix.Remove(context.Background(), id))

	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodDelete, (*calls)[0].method)
	assert.Equal(t, "/products/_doc/"+id.String(), (*calls)[0].path)
}

func TestESIndexer_SearchReturnsIDs(t *testing.T) {
	t.Parallel()

	a, b := uuid.New(), uuid.New()
	ix, calls := newFakeES(t, `{"hits":{"total":{"value":2},"hits":[{"_id":"`+a.String()+`"},{"_id":"bogus"},{"_id":"`+b.String()+`"}]}}`)

	total, ids, err := ix.Search(context.Background(), "sugar", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []uuid.UUID{a, b}, ids)
	assert.Equal(t, "/products/_search", (*calls)[0].path)
	assert.Contains(t, (*calls)[0].body, `"multi_match"`)
}
