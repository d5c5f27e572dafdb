package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-last-sunday/internal/config"
	"github.com/tartampluch/go-last-sunday/internal/engine"
)

// cacheItem stores a rendered payload and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// Status is the JSON document served on config.RouteStatus.
type Status struct {
	Name      string `json:"name"`
	Remaining int    `json:"remaining"`
	EndYear   int    `json:"endYear"`
	Lived     int    `json:"lived"`
	Total     int    `json:"total"`
}

// FeedServer serves the generated Sundays feed and a small status document
// on the loopback interface.
type FeedServer struct {
	// Both payloads are replaced wholesale on each refresh; readers never lock.
	feed   atomic.Pointer[cacheItem]
	status atomic.Pointer[cacheItem]
	Port   string
}

// NewFeedServer creates a new instance of the server.
func NewFeedServer(port string) *FeedServer {
	return &FeedServer{
		Port: port,
	}
}

// Handler returns the routes served by the feed server.
func (s *FeedServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteFeed, s.handleFeed)
	mux.HandleFunc(config.RouteStatus, s.handleStatus)
	return mux
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *FeedServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return fmt.Errorf(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Publish atomically replaces the served feed and the status derived from snap.
func (s *FeedServer) Publish(feed []byte, snap engine.Snapshot) error {
	status, err := json.Marshal(Status{
		Name:      snap.Name,
		Remaining: snap.Remaining,
		EndYear:   snap.EndYear,
		Lived:     snap.Lived(),
		Total:     snap.Total(),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrStatusEncode, err)
	}

	now := time.Now()
	item := newCacheItem(feed, now)
	s.feed.Store(item)
	s.status.Store(newCacheItem(status, now))

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(feed),
		config.LogKeyETag, item.etag,
	)
	return nil
}

func newCacheItem(data []byte, at time.Time) *cacheItem {
	hash := sha256.Sum256(data)
	return &cacheItem{
		data:         data,
		etag:         fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:])),
		lastModified: at.UTC().Format(http.TimeFormat),
	}
}

func (s *FeedServer) handleFeed(w http.ResponseWriter, r *http.Request) {
	serveCached(w, r, s.feed.Load(), config.MimeTextCalendar)
}

func (s *FeedServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	serveCached(w, r, s.status.Load(), config.MimeJSON)
}

// serveCached writes item with HTTP caching support. A nil item means the
// first refresh has not completed yet.
func serveCached(w http.ResponseWriter, r *http.Request, item *cacheItem, contentType string) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, contentType)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}
