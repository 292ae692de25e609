package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "tipfusion/1", r.Header.Get("User-Agent"))
		assert.Equal(t, "k1", r.Header.Get("X-Api-Key"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"match_id":"m1"}`, string(body))
		_, _ = w.Write([]byte(`{"prob_home":0.5}`))
	}))
	defer srv.Close()

	c := NewClient(WithHeader("X-Api-Key", "k1"))
	var out struct {
		ProbHome float64 `json:"prob_home"`
	}
	require.NoError(t, c.PostJSON(context.Background(), srv.URL, map[string]string{"match_id": "m1"}, &out))
	assert.Equal(t, 0.5, out.ProbHome)
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer srv.Close()

	err := NewClient().GetJSON(context.Background(), srv.URL+"/events/m1/odds", nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Len(t, se.Body, errorBodyLimit)
	assert.ErrorContains(t, err, "404")
}

func TestClient_QueryAndRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "kombi", r.URL.Query().Get("pool"))
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	var raw []byte
	err := NewClient().SendAndParse(context.Background(), &RequestOptions{
		Method:      MethodPost,
		URL:         srv.URL,
		QueryParams: map[string][]string{"pool": {"kombi"}},
		Body:        "ping",
	}, &raw)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(raw))
}
