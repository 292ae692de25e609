package oddsfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedServer(t *testing.T, frames ...string) *httptest.Server {
	t.Helper()
	up := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var sub map[string]any
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		for _, f := range frames {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(f))
		}
		time.Sleep(200 * time.Millisecond)
	}))
}

func TestClient_ReadsEnvelopeAndSingleUpdates(t *testing.T) {
	srv := feedServer(t,
		`{"type":"odds","data":[{"match_id":"m1","odds":{"home":1.9,"draw":3.4,"away":4.2},"live":true}]}`,
		`{"type":"heartbeat"}`,
		`{"match_id":"m2","odds":{"home":2.5}}`,
		`not json`,
	)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c := New("ws"+strings.TrimPrefix(srv.URL, "http"), time.Millisecond, time.Second)
	require.NoError(t, c.Connect(ctx))
	require.NoError(t, c.Subscribe(ctx))
	assert.True(t, c.IsConnected())

	updates, _ := c.Read(ctx)
	first := <-updates
	require.NotNil(t, first)
	assert.Equal(t, "m1", first.EventID)
	assert.Equal(t, 1.9, first.Odds.Home)
	assert.False(t, first.Timestamp.IsZero())

	second := <-updates
	require.NotNil(t, second)
	assert.Equal(t, "m2", second.EventID)

	require.NoError(t, c.Close())
	assert.False(t, c.IsConnected())
}

func TestDecode(t *testing.T) {
	assert.Len(t, decode([]byte(`{"type":"odds","data":[{"match_id":"a"},{"match_id":"b"}]}`)), 2)
	assert.Nil(t, decode([]byte(`{"type":"ping"}`)))
	assert.Nil(t, decode([]byte(`{"odds":{}}`)))
}

func TestSubscribe_NotConnected(t *testing.T) {
	c := New("ws://127.0.0.1:1", 0, 0)
	assert.Error(t, c.Subscribe(context.Background()))
}
