package apify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse-ai/internal/apperr"
)

func TestRunActor(t *testing.T) {
	var input map[string]any
	var auth string
	polls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/acts/user~tweets/runs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &input)
		_, _ = io.WriteString(w, `{"data": {"id": "run1", "status": "RUNNING", "defaultDatasetId": "ds1"}}`)
	})
	mux.HandleFunc("/v2/actor-runs/run1", func(w http.ResponseWriter, r *http.Request) {
		polls++
		_, _ = io.WriteString(w, `{"data": {"id": "run1", "status": "SUCCEEDED", "defaultDatasetId": "ds1"}}`)
	})
	mux.HandleFunc("/v2/datasets/ds1/items", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"text": "hello"}, {"id": 2}]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, "tok", nil)
	items, err := c.RunActor(context.Background(), "user/tweets", map[string]any{"searchTerms": []string{"GTC"}})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, 1, polls)
	assert.Equal(t, []any{"GTC"}, input["searchTerms"])
	require.Len(t, items, 2)
	assert.Equal(t, "hello", items[0]["text"])
}

func TestRunActorUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error": {"type": "token-not-valid"}}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "bad", nil).RunActor(context.Background(), "a", nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
	assert.Equal(t, http.StatusUnauthorized, apperr.HTTPStatus(err))
}

func TestRunActorFailedRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data": {"id": "r", "status": "FAILED"}}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "tok", nil).RunActor(context.Background(), "a", nil)
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
}

func TestRunActorWithoutToken(t *testing.T) {
	_, err := New("", "", nil).RunActor(context.Background(), "a", nil)
	assert.True(t, apperr.Is(err, apperr.KindConfiguration))
}
