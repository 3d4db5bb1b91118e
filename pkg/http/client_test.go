package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PostForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ContentTypeForm, r.Header.Get("Content-Type"))
		assert.Equal(t, "weights-test", r.Header.Get("User-Agent"))
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("node") == "broken" {
			http.Error(w, "collector down", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(WithTimeout(time.Second), WithUserAgent("weights-test"))

	status, err := c.PostForm(context.Background(), srv.URL, map[string]string{"node": "a", "logs": "x&y=z"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, status)

	status, err = c.PostForm(context.Background(), srv.URL, map[string]string{"node": "broken"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, err.Error(), "collector down")
}
