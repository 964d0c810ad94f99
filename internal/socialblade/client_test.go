package socialblade_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rosterpulse/rosterpulse/internal/setup/config"
	"github.com/rosterpulse/rosterpulse/internal/socialblade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, baseURL string) *socialblade.Client {
	t.Helper()

	return socialblade.NewClient(
		&config.SocialBlade{
			ClientID:       "test-client",
			Token:          "test-token",
			BaseURL:        baseURL,
			RequestTimeout: 2000,
		},
		&config.Retry{MaxRetries: 3, Delay: 1, MaxDelay: 5},
		zaptest.NewLogger(t),
	)
}

func TestFetchWindowParsesHistory(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/b/twitter/statistics", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"history": [
				{"date": "2025-05-20", "followers": 100, "following": 50, "tweets": 2000, "engagement_rate": 1.5},
				{"date": "2025-05-21", "followers": 110}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	samples, err := client.FetchWindow(
		t.Context(), socialblade.PlatformTwitter, "testuser", socialblade.WindowDefault)
	require.NoError(t, err)
	require.Len(t, samples, 2)

	first := samples[0]
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, socialblade.PlatformTwitter, first.Platform)
	assert.Equal(t, int64(100), first.Counters["followers"])
	assert.Equal(t, int64(50), first.Counters["following"])
	assert.Equal(t, int64(2000), first.Counters["tweets"])
	assert.InDelta(t, 1.5, first.EngagementRate, 0.001)
	assert.Equal(t, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), first.Timestamp)

	// Counters the provider omitted default to zero
	second := samples[1]
	assert.Equal(t, int64(110), second.Counters["followers"])
	assert.Equal(t, int64(0), second.Counters["following"])
	assert.Equal(t, int64(0), second.Counters["tweets"])
	assert.InDelta(t, 0.0, second.EngagementRate, 0.001)
}

func TestFetchWindowSnapshotPayload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"followers": 42, "following": 7, "posts": 300, "engagement_rate": 2.25}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	samples, err := client.FetchWindow(
		t.Context(), socialblade.PlatformInstagram, "testuser", socialblade.WindowDefault)
	require.NoError(t, err)
	require.Len(t, samples, 1)

	assert.Equal(t, int64(42), samples[0].Counters["followers"])
	assert.Equal(t, int64(300), samples[0].Counters["posts"])
	assert.InDelta(t, 2.25, samples[0].EngagementRate, 0.001)
}

func TestFetchWindowMapsProviderFields(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"history": [{"date": "2025-05-20", "subscribers": 10, "views": 999, "videos": 3}]
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	samples, err := client.FetchWindow(
		t.Context(), socialblade.PlatformYouTube, "testchannel", socialblade.WindowDefault)
	require.NoError(t, err)
	require.Len(t, samples, 1)

	// The provider's "views" lands in the total_views column
	assert.Equal(t, int64(999), samples[0].Counters["total_views"])
	assert.Equal(t, int64(10), samples[0].Counters["subscribers"])
}

func TestFetchWindowSendsCredentialHeaders(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "testuser", r.Header.Get("query"))
		assert.Equal(t, "extended", r.Header.Get("history"))
		assert.Equal(t, "test-client", r.Header.Get("clientid"))
		assert.Equal(t, "test-token", r.Header.Get("token"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"history": []}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	samples, err := client.FetchWindow(
		t.Context(), socialblade.PlatformTikTok, "testuser", socialblade.WindowExtended)
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestFetchWindowRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"history": [{"date": "2025-05-20", "followers": 5}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	samples, err := client.FetchWindow(
		t.Context(), socialblade.PlatformTwitter, "testuser", socialblade.WindowDefault)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 3, calls)
	assert.Equal(t, int64(5), samples[0].Counters["followers"])
}

func TestFetchWindowExhaustsRetries(t *testing.T) {
	t.Parallel()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.FetchWindow(
		t.Context(), socialblade.PlatformTwitter, "testuser", socialblade.WindowDefault)
	require.Error(t, err)
	require.ErrorIs(t, err, socialblade.ErrProviderUnavailable)
	assert.Equal(t, 4, calls) // Initial + 3 retries
}

func TestFetchWindowInvalidHandleNotRetried(t *testing.T) {
	t.Parallel()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.FetchWindow(
		t.Context(), socialblade.PlatformTwitter, "nosuchuser", socialblade.WindowDefault)
	require.Error(t, err)
	require.ErrorIs(t, err, socialblade.ErrInvalidHandle)
	assert.Equal(t, 1, calls)
}
