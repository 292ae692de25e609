package clickhouse

import (
	"testing"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresHost(t *testing.T) {
	_, err := NewClient(WithPort(9000))
	require.ErrorIs(t, err, ErrNoHost)
}

func TestBuildOptions(t *testing.T) {
	cfg := defaultClientConfig()
	for _, o := range []ClientOption{
		WithHost("ch.local"),
		WithDatabase("tipfusion"),
		WithCredentials("", "secret"),
		WithTimeouts(0, 3*time.Second, 0),
		WithAsyncInsert(true, false),
		WithMaxExecutionTime(90 * time.Second),
	} {
		o(cfg)
	}
	opt := buildOptions(cfg)

	assert.Equal(t, []string{"ch.local:9000"}, opt.Addr)
	assert.Equal(t, "tipfusion", opt.Auth.Database)
	assert.Equal(t, "default", opt.Auth.Username)
	assert.Equal(t, "secret", opt.Auth.Password)
	assert.Equal(t, ch.Native, opt.Protocol)
	assert.Equal(t, 5*time.Second, opt.DialTimeout)
	assert.Equal(t, 3*time.Second, opt.ReadTimeout)
	assert.Equal(t, 90, opt.Settings["max_execution_time"])
	assert.Equal(t, 1, opt.Settings["async_insert"])
	assert.Equal(t, 0, opt.Settings["wait_for_async_insert"])
}

func TestBuildOptions_HTTP(t *testing.T) {
	cfg := defaultClientConfig()
	WithHost("ch.local")(cfg)
	WithPort(8123)(cfg)
	WithHTTP(true)(cfg)
	opt := buildOptions(cfg)

	assert.Equal(t, ch.HTTP, opt.Protocol)
	assert.Equal(t, []string{"ch.local:8123"}, opt.Addr)
	assert.Equal(t, ch.CompressionGZIP, opt.Compression.Method)
	assert.Empty(t, opt.Settings)
}
