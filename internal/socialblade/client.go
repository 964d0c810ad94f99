package socialblade

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/rosterpulse/rosterpulse/internal/setup/config"
	"github.com/rosterpulse/rosterpulse/pkg/utils"
	"go.uber.org/zap"
)

var (
	// ErrInvalidHandle indicates the provider rejected the handle. Not retried.
	ErrInvalidHandle = errors.New("invalid or unknown handle")
	// ErrProviderUnavailable indicates the provider kept failing after all retries.
	ErrProviderUnavailable = errors.New("metrics provider unavailable")
)

// Window selects how much history the provider returns.
type Window string

const (
	// WindowDefault covers the trailing 30 days, used for routine updates.
	WindowDefault Window = "default"
	// WindowExtended covers the trailing 12 months, used for first-time backfill.
	WindowExtended Window = "extended"
)

// Client fetches normalized metric samples from the SocialBlade matrix API.
type Client struct {
	http      *resty.Client
	clientID  string
	token     string
	retryOpts utils.RetryOptions
	logger    *zap.Logger
}

// NewClient creates a metrics client from provider and retry configuration.
func NewClient(cfg *config.SocialBlade, retryCfg *config.Retry, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.RequestTimeout) * time.Millisecond)

	retryOpts := utils.GetFetchRetryOptions()
	if retryCfg.MaxRetries > 0 {
		retryOpts.MaxRetries = retryCfg.MaxRetries
	}

	if retryCfg.Delay > 0 {
		retryOpts.InitialInterval = time.Duration(retryCfg.Delay) * time.Millisecond
	}

	if retryCfg.MaxDelay > 0 {
		retryOpts.MaxInterval = time.Duration(retryCfg.MaxDelay) * time.Millisecond
	}

	return &Client{
		http:      httpClient,
		clientID:  cfg.ClientID,
		token:     cfg.Token,
		retryOpts: retryOpts,
		logger:    logger.Named("socialblade"),
	}
}

// FetchWindow retrieves dated metric samples for a handle on one platform.
// Transient provider failures are retried with exponential backoff; an
// invalid handle surfaces immediately as ErrInvalidHandle.
func (c *Client) FetchWindow(ctx context.Context, p Platform, handle string, w Window) ([]*Sample, error) {
	payload, err := utils.WithRetry(ctx, func() (map[string]any, error) {
		return c.fetch(ctx, p, handle, w)
	}, c.retryOpts)
	if err != nil {
		if errors.Is(err, ErrInvalidHandle) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %s %s: %w", ErrProviderUnavailable, p, handle, err)
	}

	samples := c.parseSamples(p, payload)
	c.logger.Debug("Fetched metric samples",
		zap.String("platform", string(p)),
		zap.String("handle", handle),
		zap.String("window", string(w)),
		zap.Int("samples", len(samples)))

	return samples, nil
}

// fetch performs one provider call. The returned error decides retry
// behavior: transient failures are plain errors, handle rejections are
// wrapped with backoff.Permanent.
func (c *Client) fetch(ctx context.Context, p Platform, handle string, w Window) (map[string]any, error) {
	var payload map[string]any

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("query", handle).
		SetHeader("history", string(w)).
		SetHeader("clientid", c.clientID).
		SetHeader("token", c.token).
		SetResult(&payload).
		Get(p.statisticsPath())
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= http.StatusInternalServerError:
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode())
	case resp.IsError():
		return nil, backoff.Permanent(
			fmt.Errorf("%w: %s on %s: status %d", ErrInvalidHandle, handle, p, resp.StatusCode()))
	}

	return payload, nil
}

// parseSamples normalizes a provider payload into samples. Payloads with a
// history array yield one sample per point; snapshot payloads yield one.
func (c *Client) parseSamples(p Platform, payload map[string]any) []*Sample {
	points, ok := payload["history"].([]any)
	if !ok {
		return []*Sample{sampleFromPoint(p, payload)}
	}

	samples := make([]*Sample, 0, len(points))

	for _, raw := range points {
		point, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		samples = append(samples, sampleFromPoint(p, point))
	}

	return samples
}

// sampleFromPoint maps one payload point onto the platform's counter set,
// defaulting any counter the provider omitted to zero.
func sampleFromPoint(p Platform, point map[string]any) *Sample {
	sample := newSample(p, time.Now().UTC())

	for _, counter := range p.Counters() {
		sample.Counters[counter.Column] = asInt64(point[counter.Field])
	}

	sample.EngagementRate = asFloat64(point["engagement_rate"])

	if ts, ok := asTime(point); ok {
		sample.Timestamp = ts
	}

	return sample
}

func asInt64(v any) int64 {
	switch value := v.(type) {
	case float64:
		return int64(value)
	case int64:
		return value
	case string:
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0
		}

		return parsed
	default:
		return 0
	}
}

func asFloat64(v any) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0
		}

		return parsed
	default:
		return 0
	}
}

// asTime extracts the sample timestamp from a payload point. The provider
// dates history points with "date" (YYYY-MM-DD) and snapshots with
// "timestamp" (RFC 3339 or unix seconds).
func asTime(point map[string]any) (time.Time, bool) {
	if raw, ok := point["date"].(string); ok {
		if ts, err := time.Parse("2006-01-02", raw); err == nil {
			return ts.UTC(), true
		}
	}

	switch raw := point["timestamp"].(type) {
	case string:
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			return ts.UTC(), true
		}
	case float64:
		return time.Unix(int64(raw), 0).UTC(), true
	}

	return time.Time{}, false
}
