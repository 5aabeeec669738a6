// Package cache holds the read cache in front of the CRM API.
//
// Reads are keyed by the full request URL and the session that issued them.
// Mutations never write into the cache: on success they bump the version of
// the tags they affect, which makes every older entry unreachable.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"creatorpulse/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/singleflight"
)

// Tags group cached reads by the entity they return.
const (
	TagClients   = "clients"
	TagCreators  = "creators"
	TagLogs      = "logs"
	TagTemplates = "templates"
	TagInbox     = "inbox"
	TagTweets    = "tweets"
	TagReplies   = "replies"
	TagProfile   = "profile"
)

// Key identifies one cached read. A nil *Key means "not ready to fetch".
type Key struct {
	Tag   string
	Scope string
	URL   string
}

// NewKey is a convenience for the common non-nil case.
func NewKey(tag, scope, url string) *Key {
	return &Key{Tag: tag, Scope: scope, URL: url}
}

// LoadFunc performs the upstream read on a cache miss.
type LoadFunc func(ctx context.Context) (interface{}, error)

// counter is implemented by storages that can bump a number atomically.
type counter interface {
	Incr(key string) (uint64, error)
}

// Tag versions live in the storage next to the entries, so every process
// sharing it sees an invalidation and a restart does not reuse old entries.
const versionPrefix = "ver:"

type Fetcher struct {
	storage fiber.Storage
	ttl     time.Duration
	group   singleflight.Group
	mu      sync.Mutex
}

func NewFetcher(storage fiber.Storage, ttl time.Duration) *Fetcher {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Fetcher{
		storage: storage,
		ttl:     ttl,
	}
}

func (f *Fetcher) version(tag string) (string, error) {
	raw, err := f.storage.Get(versionPrefix + tag)
	if err != nil {
		return "", fmt.Errorf("read version of %s: %w", tag, err)
	}
	if raw == nil {
		return "0", nil
	}
	return string(raw), nil
}

func (f *Fetcher) storageKey(key *Key) (string, error) {
	version, err := f.version(key.Tag)
	if err != nil {
		return "", err
	}
	return key.Tag + ":" + version + ":" + key.Scope + ":" + key.URL, nil
}

// Fetch fills dst from the cache or, on a miss, from load. A nil key
// suppresses the request entirely and leaves dst untouched. Concurrent
// misses for the same key share one load. Failed loads are not cached.
//
// The shared load is detached from the caller's cancellation: a caller that
// gives up returns ctx.Err() while the others still get the result. The API
// client bounds the load with its own timeout.
func (f *Fetcher) Fetch(ctx context.Context, key *Key, dst interface{}, load LoadFunc) error {
	if key == nil {
		return nil
	}

	sk, err := f.storageKey(key)
	if err != nil {
		utils.Logger("cache").WithError(err).WithField("tag", key.Tag).Warn("cache bypassed")
		value, err := load(ctx)
		if err != nil {
			return err
		}
		payload, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key.URL, err)
		}
		return json.Unmarshal(payload, dst)
	}

	if raw, err := f.storage.Get(sk); err != nil {
		utils.Logger("cache").WithError(err).WithField("key", sk).Warn("cache read failed")
	} else if raw != nil {
		return json.Unmarshal(raw, dst)
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := f.group.DoChan(sk, func() (interface{}, error) {
		value, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key.URL, err)
		}
		if err := f.storage.Set(sk, payload, f.ttl); err != nil {
			utils.Logger("cache").WithError(err).WithField("key", sk).Warn("cache write failed")
		}
		return payload, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dst)
	}
}

// Peek reads a cached entry without loading. It reports whether one existed.
func (f *Fetcher) Peek(key *Key, dst interface{}) (bool, error) {
	if key == nil {
		return false, nil
	}
	sk, err := f.storageKey(key)
	if err != nil {
		return false, err
	}
	raw, err := f.storage.Get(sk)
	if err != nil || raw == nil {
		return false, err
	}
	return true, json.Unmarshal(raw, dst)
}

// Replace overwrites a cached entry with a confirmed value, e.g. a list with
// a deleted row spliced out after the API acknowledged the delete.
func (f *Fetcher) Replace(key *Key, value interface{}) error {
	if key == nil {
		return nil
	}
	sk, err := f.storageKey(key)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return f.storage.Set(sk, payload, f.ttl)
}

// Forget drops the entry under key so the next Fetch goes upstream.
func (f *Fetcher) Forget(key *Key) error {
	if key == nil {
		return nil
	}
	sk, err := f.storageKey(key)
	if err != nil {
		return err
	}
	return f.storage.Delete(sk)
}

// Invalidate makes every entry under the given tags stale.
func (f *Fetcher) Invalidate(tags ...string) {
	for _, tag := range tags {
		if err := f.bump(tag); err != nil {
			utils.Logger("cache").WithError(err).WithField("tag", tag).Error("cache invalidation failed")
		}
	}
}

func (f *Fetcher) bump(tag string) error {
	key := versionPrefix + tag
	if c, ok := f.storage.(counter); ok {
		_, err := c.Incr(key)
		return err
	}

	// Read-modify-write is only atomic within this process.
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, err := f.storage.Get(key)
	if err != nil {
		return err
	}
	n, _ := strconv.ParseUint(string(raw), 10, 64)
	return f.storage.Set(key, []byte(strconv.FormatUint(n+1, 10)), 0)
}
