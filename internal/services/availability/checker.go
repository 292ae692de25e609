// Package availability asks the bookmaker service whether an event is on offer.
package availability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"TipFusion/internal/domain/models"
	domsvc "TipFusion/internal/domain/service"
	"TipFusion/internal/service/cache"
	xhttp "TipFusion/pkg/http"
)

type offer struct {
	odds    models.Odds
	offered bool
}

type offerResponse struct {
	Offered bool        `json:"offered"`
	Odds    models.Odds `json:"odds"`
}

// HTTPChecker looks up GET {base}/events/{id}/odds. A 404 means the event is
// not offered. Answers are cached for the configured TTL.
type HTTPChecker struct {
	baseURL  string
	attempts int
	client   *xhttp.Client
	cache    *cache.TTLCache[offer]
}

type Option func(*HTTPChecker)

func WithTimeout(d time.Duration) Option {
	return func(c *HTTPChecker) {
		if d > 0 {
			c.client = xhttp.NewClient(xhttp.WithTimeout(d))
		}
	}
}

func WithAttempts(n int) Option {
	return func(c *HTTPChecker) { c.attempts = max(n, 1) }
}

func WithCacheTTL(d time.Duration) Option {
	return func(c *HTTPChecker) { c.cache = cache.NewTTLCache[offer](d) }
}

func New(baseURL string, opts ...Option) *HTTPChecker {
	c := &HTTPChecker{
		baseURL:  baseURL,
		attempts: 2,
		client:   xhttp.NewClient(xhttp.WithTimeout(3 * time.Second)),
		cache:    cache.NewTTLCache[offer](2 * time.Minute),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *HTTPChecker) Offered(ctx context.Context, eventID string) (models.Odds, bool, error) {
	if o, ok := c.cache.Get(eventID); ok {
		return o.odds, o.offered, nil
	}
	var (
		o   offer
		err error
	)
	for i := 1; i <= c.attempts; i++ {
		if o, err = c.fetch(ctx, eventID); err == nil {
			break
		}
		if i == c.attempts {
			return models.Odds{}, false, err
		}
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return models.Odds{}, false, ctx.Err()
		}
	}
	c.cache.Set(eventID, o)
	return o.odds, o.offered, nil
}

func (c *HTTPChecker) fetch(ctx context.Context, eventID string) (offer, error) {
	var r offerResponse
	err := c.client.GetJSON(ctx, c.baseURL+"/events/"+url.PathEscape(eventID)+"/odds", &r)
	var se *xhttp.StatusError
	switch {
	case errors.As(err, &se) && se.Code == http.StatusNotFound:
		return offer{}, nil
	case err != nil:
		return offer{}, fmt.Errorf("availability %s: %w", eventID, err)
	}
	// an offer without any price cannot be crosschecked
	return offer{odds: r.Odds, offered: r.Offered && r.Odds.Max() > 0}, nil
}

// Sweep drops expired offers and returns how many were removed.
func (c *HTTPChecker) Sweep() int { return c.cache.Sweep() }

var _ domsvc.AvailabilityChecker = (*HTTPChecker)(nil)
