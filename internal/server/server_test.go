package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-last-sunday/internal/config"
	"github.com/tartampluch/go-last-sunday/internal/engine"
)

// sampleSnapshot has three boxes, one of them lived.
func sampleSnapshot() engine.Snapshot {
	d := func(day int) time.Time { return time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC) }
	return engine.Snapshot{
		Name:      "Ada",
		EndYear:   2025,
		Remaining: 2,
		Years: []engine.YearColumn{{
			Year:  2025,
			Weeks: []engine.Week{{Date: d(1), Past: true}, {Date: d(8)}, {Date: d(15)}},
		}},
	}
}

func serve(srv *FeedServer, method, path string, header http.Header) *http.Response {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w.Result()
}

// -----------------------------------------------------------------------------
// Unit Tests (Handler Logic)
// -----------------------------------------------------------------------------

func TestHandler_ServingFeed(t *testing.T) {
	srv := NewFeedServer("0")
	expectedICS := []byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR")
	require.NoError(t, srv.Publish(expectedICS, sampleSnapshot()))

	resp := serve(srv, http.MethodGet, config.RouteFeed, nil)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
	assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
	assert.Contains(t, resp.Header.Get(config.HeaderCacheControl), "no-cache")
	assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))
	assert.NotEmpty(t, resp.Header.Get(config.HeaderLastModified))

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, expectedICS, body)
}

func TestHandler_HeadHasNoBody(t *testing.T) {
	srv := NewFeedServer("0")
	require.NoError(t, srv.Publish([]byte("BEGIN:VCALENDAR"), sampleSnapshot()))

	resp := serve(srv, http.MethodHead, config.RouteFeed, nil)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)
}

func TestHandler_Status(t *testing.T) {
	srv := NewFeedServer("0")
	require.NoError(t, srv.Publish([]byte("BEGIN:VCALENDAR"), sampleSnapshot()))

	resp := serve(srv, http.MethodGet, config.RouteStatus, nil)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeJSON, resp.Header.Get(config.HeaderContentType))

	var status Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, Status{Name: "Ada", Remaining: 2, EndYear: 2025, Lived: 1, Total: 3}, status)
}

// TestHandler_Caching verifies that the server respects ETag headers (If-None-Match)
// and returns 304 Not Modified to save bandwidth.
func TestHandler_Caching(t *testing.T) {
	srv := NewFeedServer("0")
	require.NoError(t, srv.Publish([]byte("DATA_VERSION_1"), sampleSnapshot()))

	resp1 := serve(srv, http.MethodGet, config.RouteFeed, nil)
	_ = resp1.Body.Close()
	etag := resp1.Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag, "Server must provide an ETag")

	resp2 := serve(srv, http.MethodGet, config.RouteFeed, http.Header{config.HeaderIfNoneMatch: {etag}})
	defer func() { _ = resp2.Body.Close() }()

	assert.Equal(t, http.StatusNotModified, resp2.StatusCode)
	body, _ := io.ReadAll(resp2.Body)
	assert.Empty(t, body, "Body must be empty on 304 Not Modified")

	require.NoError(t, srv.Publish([]byte("DATA_VERSION_2"), sampleSnapshot()))
	resp3 := serve(srv, http.MethodGet, config.RouteFeed, http.Header{config.HeaderIfNoneMatch: {etag}})
	defer func() { _ = resp3.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp3.StatusCode, "New content invalidates the old ETag")
}

func TestHandler_IfModifiedSince(t *testing.T) {
	srv := NewFeedServer("0")
	require.NoError(t, srv.Publish([]byte("DATA"), sampleSnapshot()))

	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	resp := serve(srv, http.MethodGet, config.RouteFeed, http.Header{config.HeaderIfModifiedSince: {future}})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)

	past := time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat)
	resp2 := serve(srv, http.MethodGet, config.RouteFeed, http.Header{config.HeaderIfModifiedSince: {past}})
	defer func() { _ = resp2.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

// TestHandler_MethodNotAllowed ensures strictly GET and HEAD are accepted.
func TestHandler_MethodNotAllowed(t *testing.T) {
	srv := NewFeedServer("0")

	for _, path := range []string{config.RouteFeed, config.RouteStatus} {
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
			resp := serve(srv, method, path, nil)
			_ = resp.Body.Close()

			assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, "%s %s", method, path)
			assert.Equal(t, config.AllowedMethods, resp.Header.Get(config.HeaderAllow))
		}
	}
}

// TestHandler_Initializing verifies the 503 behavior when data is not yet ready.
func TestHandler_Initializing(t *testing.T) {
	srv := NewFeedServer("0")

	for _, path := range []string{config.RouteFeed, config.RouteStatus} {
		resp := serve(srv, http.MethodGet, path, nil)
		_ = resp.Body.Close()

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, config.RetryAfterSeconds, resp.Header.Get(config.HeaderRetryAfter))
	}
}

func TestHandler_UnknownRoute(t *testing.T) {
	srv := NewFeedServer("0")
	require.NoError(t, srv.Publish([]byte("DATA"), sampleSnapshot()))

	resp := serve(srv, http.MethodGet, "/other.ics", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// -----------------------------------------------------------------------------
// Concurrency Tests (Race Detection)
// -----------------------------------------------------------------------------

// TestServer_RaceCondition runs writers and readers concurrently.
// Run this with `go test -race`.
func TestServer_RaceCondition(t *testing.T) {
	srv := NewFeedServer("0")
	handler := srv.Handler()
	var wg sync.WaitGroup

	end := time.Now().Add(500 * time.Millisecond)

	for w := 0; w < 5; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			i := 0
			for time.Now().Before(end) {
				snap := sampleSnapshot()
				snap.Remaining = i
				_ = srv.Publish([]byte(fmt.Sprintf("VERSION:%d-%d", id, i)), snap)
				i++
				time.Sleep(1 * time.Microsecond)
			}
		}(w)
	}

	for r := 0; r < 20; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			path := config.RouteFeed
			if r%2 == 0 {
				path = config.RouteStatus
			}
			for time.Now().Before(end) {
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

				if w.Code != http.StatusOK && w.Code != http.StatusServiceUnavailable {
					t.Errorf("Unexpected status code during race test: %d", w.Code)
				}
			}
		}(r)
	}

	wg.Wait()
}

// -----------------------------------------------------------------------------
// Integration Tests (Real TCP Lifecycle)
// -----------------------------------------------------------------------------

// TestServer_Lifecycle spins up the actual TCP listener to verify network binding
// and graceful shutdown logic.
func TestServer_Lifecycle(t *testing.T) {
	const port = "18099"

	srv := NewFeedServer(port)
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() {
		errChan <- srv.Start(ctx)
	}()

	url := "http://127.0.0.1:" + port + config.RouteFeed

	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, 2*time.Second, 50*time.Millisecond, "Server failed to bind/listen in time")

	resp, err := http.Get(url)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()

	require.NoError(t, srv.Publish([]byte("BEGIN:VCALENDAR\nEND:VCALENDAR"), sampleSnapshot()))

	resp, err = http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))

	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "BEGIN:VCALENDAR")

	cancel()

	select {
	case err := <-errChan:
		assert.NoError(t, err, "Server should shutdown gracefully without error")
	case <-time.After(5 * time.Second):
		t.Fatal("Server shutdown timed out")
	}
}

func TestServer_PortRequired(t *testing.T) {
	err := NewFeedServer("").Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrPortRequired)
}
