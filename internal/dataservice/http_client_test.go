package dataservice

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPClient(server.URL+"/", 5*time.Second, zerolog.Nop())
}

func TestHTTPClient_ListWithFilter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/carts", r.URL.Path)
		assert.Equal(t, "u1", r.URL.Query().Get("userId"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"c1","name":"a","price":10},{"id":"c2","name":"b","price":20}]`))
	})

	items, err := ListAs[widget](context.Background(), client, "carts", Filter{"userId": "u1"})

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "c1", items[0].ID)
	assert.Equal(t, int64(20), items[1].Price)
}

func TestHTTPClient_GetNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/missing", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	})

	doc, err := client.Get(context.Background(), "products", "missing")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, doc)
}

func TestHTTPClient_CreateSendsJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "lamp", body["name"])

		body["id"] = "w1"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(body)
	})

	created, err := CreateAs[widget](context.Background(), client, "widgets", widget{Name: "lamp", Price: 5})

	require.NoError(t, err)
	assert.Equal(t, "w1", created.ID)
	assert.Equal(t, "lamp", created.Name)
}

func TestHTTPClient_PatchAndReplace(t *testing.T) {
	var methods []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		assert.Equal(t, "/widgets/w1", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		w.Write(body)
	})

	ctx := context.Background()
	_, err := client.Patch(ctx, "widgets", "w1", map[string]any{"price": 7})
	require.NoError(t, err)

	replaced, err := ReplaceAs[widget](ctx, client, "widgets", "w1", widget{ID: "w1", Name: "desk", Price: 9})
	require.NoError(t, err)
	assert.Equal(t, "desk", replaced.Name)

	assert.Equal(t, []string{http.MethodPatch, http.MethodPut}, methods)
}

func TestHTTPClient_DeleteWithEmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusOK)
	})

	err := client.Delete(context.Background(), "widgets", "w1")
	assert.NoError(t, err)
}

func TestHTTPClient_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.List(context.Background(), "products", nil)

	require.Error(t, err)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, "boom", statusErr.Body)
}

func TestHTTPClient_Unreachable(t *testing.T) {
	client := NewHTTPClient("http://127.0.0.1:1", time.Second, zerolog.Nop())

	_, err := client.List(context.Background(), "products", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "data service GET /products")
}
