package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/forgo/petzadopt/internal/model"
)

// IdempotencyKeyHeader carries the client's retry key
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 255

// replayedHeaders are the handler-set headers restored on a replay. Headers
// from outer middleware (request id, rate limit) describe the new request.
var replayedHeaders = []string{"Content-Type", "Location"}

var errKeyReused = errors.New("idempotency key reused with a different request")

// IdempotencyStore remembers responses by (client, key, method, path) so a
// retried mutation replays the first result instead of running twice.
type IdempotencyStore struct {
	mu       sync.Mutex
	entries  map[string]*idempotencyEntry
	ttl      time.Duration
	stopOnce sync.Once
	stopChan chan struct{}
}

type idempotencyEntry struct {
	fingerprint string
	status      int
	headers     http.Header
	body        []byte
	expiresAt   time.Time
	inFlight    bool
	done        chan struct{}
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	TTL     time.Duration // How long to keep idempotency results (default 24h)
	Cleanup time.Duration // Cleanup interval (default 1h)
}

// NewIdempotencyStore creates a new idempotency store
func NewIdempotencyStore(cfg IdempotencyConfig) *IdempotencyStore {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Cleanup <= 0 {
		cfg.Cleanup = time.Hour
	}

	store := &IdempotencyStore{
		entries:  make(map[string]*idempotencyEntry),
		ttl:      cfg.TTL,
		stopChan: make(chan struct{}),
	}

	go store.cleanupLoop(cfg.Cleanup)

	return store
}

// Stop stops the cleanup goroutine. Safe to call more than once.
func (s *IdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *IdempotencyStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup(time.Now())
		case <-s.stopChan:
			return
		}
	}
}

func (s *IdempotencyStore) cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.entries {
		if !entry.inFlight && entry.expiresAt.Before(now) {
			delete(s.entries, key)
		}
	}
}

// acquire returns either a completed entry to replay (owner false) or a fresh
// in-flight entry the caller must finish or release (owner true). Concurrent
// requests with the same key wait for the first one.
func (s *IdempotencyStore) acquire(ctx context.Context, key, fingerprint string) (*idempotencyEntry, bool, error) {
	for {
		s.mu.Lock()
		entry, ok := s.entries[key]
		if ok && !entry.inFlight && entry.expiresAt.Before(time.Now()) {
			delete(s.entries, key)
			ok = false
		}

		if !ok {
			entry = &idempotencyEntry{
				fingerprint: fingerprint,
				inFlight:    true,
				done:        make(chan struct{}),
			}
			s.entries[key] = entry
			s.mu.Unlock()
			return entry, true, nil
		}

		if entry.fingerprint != fingerprint {
			s.mu.Unlock()
			return nil, false, errKeyReused
		}
		if !entry.inFlight {
			s.mu.Unlock()
			return entry, false, nil
		}

		done := entry.done
		s.mu.Unlock()

		select {
		case <-done:
			// Completed or released; look again
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}

// finish records the response for replay
func (s *IdempotencyStore) finish(entry *idempotencyEntry, status int, headers http.Header, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.status = status
	entry.headers = headers
	entry.body = body
	entry.expiresAt = time.Now().Add(s.ttl)
	entry.inFlight = false
	close(entry.done)
}

// release forgets an in-flight entry so the next attempt runs again
func (s *IdempotencyStore) release(key string, entry *idempotencyEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries[key] == entry {
		delete(s.entries, key)
	}
	entry.inFlight = false
	close(entry.done)
}

// cacheable reports whether a response is final. Server failures and rate
// limit rejections are worth retrying with the same key.
func cacheable(status int) bool {
	return status < http.StatusInternalServerError && status != http.StatusTooManyRequests
}

func storeKey(client, idempotencyKey, method, path string) string {
	h := sha256.New()
	for _, part := range []string{client, idempotencyKey, method, path} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// idempotencyResponseWriter captures the response for caching
type idempotencyResponseWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *idempotencyResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *idempotencyResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func replay(w http.ResponseWriter, entry *idempotencyEntry) {
	for _, name := range replayedHeaders {
		if v := entry.headers.Values(name); len(v) > 0 {
			w.Header()[name] = v
		}
	}
	w.Header().Set("X-Idempotency-Replayed", "true")
	w.WriteHeader(entry.status)
	_, _ = w.Write(entry.body)
}

// Idempotency returns middleware that honours Idempotency-Key on POST, PUT
// and PATCH. Reusing a key with a different body is a 409.
func Idempotency(store *IdempotencyStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
			default:
				next.ServeHTTP(w, r)
				return
			}

			idempotencyKey := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			if idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(idempotencyKey) > maxIdempotencyKeyLength {
				model.NewBadRequestError("Idempotency-Key must be at most 255 characters").WriteJSON(w)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				model.NewBadRequestError("Request body could not be read").WriteJSON(w)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := storeKey(ClientKey(r), idempotencyKey, r.Method, r.URL.Path)
			entry, owner, err := store.acquire(r.Context(), key, fingerprint(body))
			switch {
			case errors.Is(err, errKeyReused):
				model.NewConflictError("Idempotency-Key was already used with a different request").WriteJSON(w)
				return
			case err != nil:
				// Client went away while waiting
				return
			case !owner:
				replay(w, entry)
				return
			}

			completed := false
			defer func() {
				if !completed {
					store.release(key, entry)
				}
			}()

			irw := &idempotencyResponseWriter{
				ResponseWriter: w,
				status:         http.StatusOK,
			}
			next.ServeHTTP(irw, r)

			if !cacheable(irw.status) {
				return
			}
			store.finish(entry, irw.status, irw.Header().Clone(), bytes.Clone(irw.body.Bytes()))
			completed = true
		})
	}
}
