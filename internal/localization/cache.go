package localization

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	cachePrefix = "i18n:"
	// missMarker caches a negative lookup so absent translations do not hit
	// the database on every request.
	missMarker = "\x00"
)

// CachedResolver is a read-through Redis cache in front of the database
// resolver. Redis failures degrade to the database. Failed database reads
// are never cached.
type CachedResolver struct {
	next *DBResolver
	rdb  redis.UniversalClient
	ttl  time.Duration
}

func NewCachedResolver(next *DBResolver, rdb redis.UniversalClient, ttl time.Duration) *CachedResolver {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedResolver{next: next, rdb: rdb, ttl: ttl}
}

func singleKey(languageCode, key string) string {
	return cachePrefix + languageCode + ":" + key
}

func listKey(key string) string {
	return cachePrefix + "*:" + key
}

func (c *CachedResolver) Resolve(ctx context.Context, key, languageCode string) (string, bool) {
	if key == "" || languageCode == "" {
		return "", false
	}
	ck := singleKey(languageCode, key)
	cached, err := c.rdb.Get(ctx, ck).Result()
	switch {
	case err == nil:
		if cached == missMarker {
			return "", false
		}
		return cached, true
	case !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Str("key", key).Msg("Localization cache read failed")
	}

	val, ok, err := c.next.lookup(ctx, key, languageCode)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Str("language", languageCode).Msg("Translation lookup failed, using source text")
		return "", false
	}
	store := val
	if !ok {
		store = missMarker
	}
	c.write(ctx, map[string]any{ck: store})
	return val, ok
}

func (c *CachedResolver) ResolveAll(ctx context.Context, key string) []Value {
	if key == "" {
		return nil
	}
	ck := listKey(key)
	cached, err := c.rdb.Get(ctx, ck).Bytes()
	if err == nil {
		var vals []Value
		if jsonErr := json.Unmarshal(cached, &vals); jsonErr == nil {
			return vals
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Str("key", key).Msg("Localization cache read failed")
	}

	vals, err := c.next.lookupAll(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Translation list lookup failed, using source text")
		return nil
	}
	if raw, jsonErr := json.Marshal(vals); jsonErr == nil {
		c.write(ctx, map[string]any{ck: raw})
	}
	return vals
}

func (c *CachedResolver) ResolveMany(ctx context.Context, keys []string, languageCode string) map[string]string {
	out := make(map[string]string, len(keys))
	keys = nonEmpty(keys)
	if len(keys) == 0 || languageCode == "" {
		return out
	}
	cacheKeys := make([]string, len(keys))
	for i, k := range keys {
		cacheKeys[i] = singleKey(languageCode, k)
	}
	var missing []string
	cached, err := c.rdb.MGet(ctx, cacheKeys...).Result()
	if err != nil {
		log.Warn().Err(err).Int("keys", len(keys)).Msg("Localization cache read failed")
		missing = keys
	} else {
		for i, v := range cached {
			s, ok := v.(string)
			switch {
			case !ok:
				missing = append(missing, keys[i])
			case s != missMarker:
				out[keys[i]] = s
			}
		}
	}
	if len(missing) == 0 {
		return out
	}

	found, err := c.next.lookupMany(ctx, missing, languageCode)
	if err != nil {
		log.Warn().Err(err).Int("keys", len(missing)).Str("language", languageCode).Msg("Batch translation lookup failed")
		return nil
	}
	writes := make(map[string]any, len(missing))
	for _, k := range missing {
		if val, ok := found[k]; ok {
			out[k] = val
			writes[singleKey(languageCode, k)] = val
		} else {
			writes[singleKey(languageCode, k)] = missMarker
		}
	}
	c.write(ctx, writes)
	return out
}

func (c *CachedResolver) ResolveAllMany(ctx context.Context, keys []string) map[string][]Value {
	out := make(map[string][]Value, len(keys))
	keys = nonEmpty(keys)
	if len(keys) == 0 {
		return out
	}
	cacheKeys := make([]string, len(keys))
	for i, k := range keys {
		cacheKeys[i] = listKey(k)
	}
	var missing []string
	cached, err := c.rdb.MGet(ctx, cacheKeys...).Result()
	if err != nil {
		log.Warn().Err(err).Int("keys", len(keys)).Msg("Localization cache read failed")
		missing = keys
	} else {
		for i, v := range cached {
			s, ok := v.(string)
			if !ok {
				missing = append(missing, keys[i])
				continue
			}
			var vals []Value
			if jsonErr := json.Unmarshal([]byte(s), &vals); jsonErr != nil {
				missing = append(missing, keys[i])
				continue
			}
			out[keys[i]] = vals
		}
	}
	if len(missing) == 0 {
		return out
	}

	found, err := c.next.lookupAllMany(ctx, missing)
	if err != nil {
		log.Warn().Err(err).Int("keys", len(missing)).Msg("Batch translation list lookup failed")
		return nil
	}
	writes := make(map[string]any, len(missing))
	for _, k := range missing {
		vals := found[k]
		out[k] = vals
		if raw, jsonErr := json.Marshal(vals); jsonErr == nil {
			writes[listKey(k)] = raw
		}
	}
	c.write(ctx, writes)
	return out
}

func (c *CachedResolver) write(ctx context.Context, entries map[string]any) {
	if len(entries) == 0 {
		return
	}
	_, err := c.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for k, v := range entries {
			p.Set(ctx, k, v, c.ttl)
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Int("keys", len(entries)).Msg("Localization cache write failed")
	}
}
