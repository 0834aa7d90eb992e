package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"creditflow-backend/internal/infrastructure/logger"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"
	HeaderActorID   = "Ax-Actor-Id"
	HeaderReplay    = "Ax-Idempotent-Replay"

	// inProgressTTL bounds how long a crashed handler can block its key.
	inProgressTTL = 60 * time.Second
	maxClockSkew  = 10 * time.Minute
	storeTimeout  = 2 * time.Second
)

type replayEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	ContentType string    `json:"content_type,omitempty"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// teeWriter copies the response into buf while passing it through.
type teeWriter struct {
	http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (w *teeWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *teeWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// ActorID returns the acting employee or client id sent with the request.
func ActorID(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get(HeaderActorID))
}

func errJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

// IdempotencyMiddleware answers a repeated mutating request (same route,
// actor and request id) with the response stored for the first one. Reusing
// a request id with another body is a conflict. 5xx responses are not
// stored, so clients may retry them.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration, log logger.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = logger.NewNop()
	}
	store := replayStore{rdb: rdb, ttl: ttl}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			meta, err := readRequestMeta(req.Header, time.Now().UTC())
			if err != nil {
				return errJSON(c, http.StatusBadRequest, err.Error())
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			sum := fingerprint(body)

			key := meta.key(req.Method, c.Path())
			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()

			base := replayEntry{
				BodySHA256:  sum,
				RequestID:   meta.RequestID,
				RequestAtMS: meta.At.UnixMilli(),
			}
			pending := base
			pending.InProgress = true
			pending.CreatedAt = time.Now().UTC()

			fresh, err := store.reserve(ctx, key, pending)
			if err != nil {
				log.Error("idempotency store unavailable", map[string]any{"key": key, "error": err})
				return errJSON(c, http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if !fresh {
				return replay(ctx, c, store, key, sum, log)
			}

			tee := &teeWriter{ResponseWriter: c.Response().Writer, code: http.StatusOK}
			c.Response().Writer = tee
			if err := next(c); err != nil {
				c.Error(err)
			}

			detached := context.WithoutCancel(ctx)
			if tee.code >= http.StatusInternalServerError {
				if err := store.drop(detached, key); err != nil {
					log.Warn("idempotency entry not dropped", map[string]any{"key": key, "error": err})
				}
				return nil
			}
			done := base
			done.Code = tee.code
			done.ContentType = tee.Header().Get(echo.HeaderContentType)
			done.Body = tee.buf.Bytes()
			done.CreatedAt = time.Now().UTC()
			if err := store.finish(detached, key, done); err != nil {
				log.Warn("idempotency entry not saved", map[string]any{"key": key, "error": err})
			}
			return nil
		}
	}
}

func replay(ctx context.Context, c echo.Context, store replayStore, key, sum string, log logger.Logger) error {
	cur, err := store.load(ctx, key)
	if err != nil {
		log.Warn("idempotency entry not loaded", map[string]any{"key": key, "error": err})
	}
	if cur.BodySHA256 != "" && cur.BodySHA256 != sum {
		return errJSON(c, http.StatusConflict, HeaderRequestID+" reused with different body")
	}
	if cur.InProgress || cur.Code == 0 {
		return errJSON(c, http.StatusConflict, "request is already in progress")
	}
	ct := cur.ContentType
	if ct == "" {
		ct = echo.MIMEApplicationJSON
	}
	c.Response().Header().Set(HeaderReplay, "true")
	return c.Blob(cur.Code, ct, cur.Body)
}
