package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Publisher enqueues a typed payload. logger.Collector ships through it.
type Publisher interface {
	PublishMessage(ctx context.Context, msgType string, payload interface{}) error
}

// Queue is a publisher whose depth can be inspected.
type Queue interface {
	Publisher
	Stats(ctx context.Context) (Stats, error)
}

// QueueConfig tunes the consumer side. RetryDelay doubles on every attempt
// up to MaxRetryDelay.
type QueueConfig struct {
	Workers       int
	QueueSize     int
	RetryLimit    int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// Message is the JSON envelope stored in Redis.
type Message struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Attempts  int         `json:"attempts"`
	Timestamp time.Time   `json:"timestamp"`
	LastError string      `json:"last_error,omitempty"`
}

// ParsePayload converts a decoded payload back into T. Payloads read from
// Redis arrive as generic JSON values, in-process ones as T or *T.
func ParsePayload[T any](payload interface{}) (*T, error) {
	switch p := payload.(type) {
	case *T:
		return p, nil
	case T:
		return &p, nil
	case json.RawMessage:
		return decodePayload[T](p)
	case []byte:
		return decodePayload[T](p)
	case map[string]interface{}, []interface{}:
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("re-encode payload: %w", err)
		}
		return decodePayload[T](raw)
	default:
		return nil, fmt.Errorf("invalid payload type: %T", payload)
	}
}

func decodePayload[T any](raw []byte) (*T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &out, nil
}

var _ Queue = (*RedisQueue)(nil)
