package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "idemp:creditflow:"

var (
	reRequestUUID = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)
	reRequestHex  = regexp.MustCompile(`^[a-f0-9]{32}$`)
	reActor       = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// requestMeta is what a mutating request must carry to be replayable.
type requestMeta struct {
	RequestID string
	Actor     string
	At        time.Time
}

func (m requestMeta) key(method, route string) string {
	return keyPrefix + strings.ToLower(method) + ":" + route + ":" + m.Actor + ":" + m.RequestID
}

func validRequestID(id string) bool {
	id = strings.ToLower(strings.TrimSpace(id))
	return reRequestUUID.MatchString(id) || reRequestHex.MatchString(id)
}

func validActorID(id string) bool { return reActor.MatchString(id) }

// readRequestMeta checks the replay headers against now. The returned error
// text goes back to the client as is.
func readRequestMeta(h http.Header, now time.Time) (requestMeta, error) {
	var m requestMeta

	m.RequestID = strings.TrimSpace(h.Get(HeaderRequestID))
	switch {
	case m.RequestID == "":
		return m, errors.New("missing " + HeaderRequestID)
	case !validRequestID(m.RequestID):
		return m, errors.New("invalid " + HeaderRequestID + " format")
	}

	at, err := parseRequestTime(h.Get(HeaderRequestAt))
	if err != nil {
		return m, err
	}
	if at.Before(now.Add(-maxClockSkew)) || at.After(now.Add(maxClockSkew)) {
		return m, errors.New(HeaderRequestAt + " too skewed")
	}
	m.At = at

	m.Actor = strings.TrimSpace(h.Get(HeaderActorID))
	switch {
	case m.Actor == "":
		return m, errors.New("missing " + HeaderActorID)
	case !validActorID(m.Actor):
		return m, errors.New("invalid " + HeaderActorID)
	}
	return m, nil
}

// parseRequestTime takes epoch seconds, epoch milliseconds or RFC3339 with
// an explicit zone. Zoneless timestamps are refused.
func parseRequestTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%s must be epoch (s/ms) or RFC3339 with timezone", HeaderRequestAt)
}

func fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// replayStore keeps one entry per request key: a short in-progress marker
// first, then the finished response for ttl.
type replayStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func (s replayStore) reserve(ctx context.Context, key string, e replayEntry) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, inProgressTTL).Result()
}

func (s replayStore) load(ctx context.Context, key string) (replayEntry, error) {
	var e replayEntry
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	err = json.Unmarshal(raw, &e)
	return e, err
}

func (s replayStore) finish(ctx context.Context, key string, e replayEntry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, s.ttl).Err()
}

func (s replayStore) drop(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
