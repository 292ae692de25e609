package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TipFusion/pkg/logger"
)

type settle struct {
	EventID string  `json:"event_id"`
	Stake   float64 `json:"stake"`
}

type noopJob struct{ typ string }

func (j noopJob) Name() string                             { return "noop_" + j.typ }
func (j noopJob) Type() string                             { return j.typ }
func (j noopJob) Handle(context.Context, interface{}) error { return nil }

func TestParsePayload(t *testing.T) {
	p, err := ParsePayload[settle](map[string]interface{}{"event_id": "m1", "stake": 12.5})
	require.NoError(t, err)
	assert.Equal(t, settle{EventID: "m1", Stake: 12.5}, *p)

	p, err = ParsePayload[settle](json.RawMessage(`{"event_id":"m2"}`))
	require.NoError(t, err)
	assert.Equal(t, "m2", p.EventID)

	direct := settle{EventID: "m3"}
	p, err = ParsePayload[settle](&direct)
	require.NoError(t, err)
	assert.Same(t, &direct, p)

	_, err = ParsePayload[settle](42)
	assert.Error(t, err)
}

func TestRedisQueue_KeysAndRegistration(t *testing.T) {
	q := NewRedisQueue(logger.Nop(), nil, nil, ModeConsumerOnly)
	assert.Equal(t, "tipfusion:queue:messages", q.getQueueKey())
	assert.Equal(t, "tipfusion:queue:retry", q.getRetryKey())
	assert.Equal(t, "tipfusion:queue:dlq", q.getDeadLetterKey())
	assert.Equal(t, 1, q.config.Workers)

	q.RegisterJob(noopJob{typ: "bankroll.settle"})
	q.RegisterJob(noopJob{typ: "bankroll.settle"})
	assert.Len(t, q.jobs, 1)

	pub := NewRedisQueue(logger.Nop(), nil, nil, ModeProducerOnly, WithKeyPrefix("custom"))
	pub.RegisterJob(noopJob{typ: "x"})
	assert.Empty(t, pub.jobs)
	assert.Equal(t, "custom:messages", pub.getQueueKey())
}

func TestRedisQueue_ConvertPayload(t *testing.T) {
	q := NewRedisQueue(logger.Nop(), nil, nil, ModeConsumerOnly)
	out := q.convertPayload(map[string]interface{}{"event_id": "m1"})
	raw, ok := out.(json.RawMessage)
	require.True(t, ok)
	assert.JSONEq(t, `{"event_id":"m1"}`, string(raw))

	assert.Equal(t, "plain", q.convertPayload("plain"))
}

func TestRedisQueue_RetryDelayDoublesUpToCap(t *testing.T) {
	q := NewRedisQueue(logger.Nop(), &QueueConfig{RetryDelay: time.Second, MaxRetryDelay: 5 * time.Second}, nil, ModeConsumerOnly)
	assert.Equal(t, time.Second, q.retryDelay(1))
	assert.Equal(t, 2*time.Second, q.retryDelay(2))
	assert.Equal(t, 4*time.Second, q.retryDelay(3))
	assert.Equal(t, 5*time.Second, q.retryDelay(4))
	assert.Equal(t, 5*time.Second, q.retryDelay(10))
}

func TestRedisQueue_EnqueueRequiresStart(t *testing.T) {
	q := NewRedisQueue(logger.Nop(), nil, nil, ModeConsumerOnly)
	assert.EqualError(t, q.Enqueue(context.Background(), "bankroll.settle", nil), "queue not running")
	assert.NoError(t, q.Stop(context.Background()))
	assert.Equal(t, "consumer-only", q.mode.String())
}
