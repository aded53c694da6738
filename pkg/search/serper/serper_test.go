package serper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRequestShapeAndParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "climate in africa", req["q"])

		w.Write([]byte(`{"organic":[{"title":"T1","link":"https://a","snippet":"s1"},{"title":"T2","link":"https://b","snippet":"s2"}]}`))
	}))
	defer srv.Close()

	client := New("test-key", srv.URL)
	results, err := client.Search(context.Background(), "climate in africa")

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "T1", results[0].Title)
	assert.Equal(t, "https://b", results[1].Link)
	assert.Equal(t, "s2", results[1].Snippet)
}

func TestSearchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	client := New("bad-key", srv.URL)
	_, err := client.Search(context.Background(), "anything")
	assert.Error(t, err)
}
