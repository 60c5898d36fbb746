package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "New York", r.URL.Query().Get("q"))
		assert.Equal(t, "k", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"New York","main":{"temp":21.5}}`))
	}))
	defer srv.Close()

	body, err := NewClient(srv.URL+"/", "k").Current(context.Background(), "New York")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"New York","main":{"temp":21.5}}`, string(body))
}

func TestCurrentErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("q") {
		case "nowhere":
			http.Error(w, `{"cod":"404"}`, http.StatusNotFound)
		case "broken":
			_, _ = w.Write([]byte("<html>"))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	_, err := c.Current(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Current(context.Background(), "broken")
	assert.Error(t, err)

	_, err = c.Current(context.Background(), "Paris")
	assert.ErrorContains(t, err, "401")

	_, err = c.Current(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNoLocation)

	_, err = NewClient(srv.URL, "").Current(context.Background(), "Paris")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
