package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appstrap/appstrap/internal/mysql"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db := mysql.NewManager(mysql.Config{})
	return NewRouter(NewHandler(db))
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want map[string]string
	}{
		{path: "/", want: map[string]string{"message": "Hello from appstrap"}},
		{path: "/health", want: map[string]string{"status": "ok"}},
		{path: "/josh", want: map[string]string{"message": "Hello Josh"}},
	}

	h := newTestRouter(t)
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			rec := get(t, h, tt.path)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var got map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenAPI(t *testing.T) {
	t.Parallel()

	rec := get(t, newTestRouter(t), "/openapi.json")
	require.Equal(t, http.StatusOK, rec.Code)

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "appstrap", doc.Info.Title)
	for _, path := range []string{"/", "/health", "/josh"} {
		item := doc.Paths.Value(path)
		require.NotNil(t, item, "missing path %s", path)
		assert.NotNil(t, item.Get, "missing GET for %s", path)
	}
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)
	// Serve a request first so the counter has something to report
	get(t, h, "/health")

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "appstrap_http_requests_total")
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	rec := get(t, newTestRouter(t), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
