// Package schedule resolves the validity options of a dispatch.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/openbuilders/campaign-api/internal/types"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "campaign:time_separators"

type Store interface {
	TimeSeparators(ctx context.Context) ([]types.TimeSeparator, error)
}

type Config struct {
	// DefaultLiveTimeID is used when no validity is requested or the
	// requested minutes match no separator.
	DefaultLiveTimeID int64
	CacheTTL          time.Duration
}

// Catalog serves time separators from Redis, falling back to the store. A nil
// redis client disables caching.
type Catalog struct {
	config *Config
	store  Store
	redis  redis.UniversalClient
	log    *slog.Logger
}

func NewCatalog(config *Config, store Store, rdb redis.UniversalClient) *Catalog {
	return &Catalog{
		config: config,
		store:  store,
		redis:  rdb,
		log:    slog.With("component", "schedule"),
	}
}

// Separators returns every separator ordered by minutes.
func (c *Catalog) Separators(ctx context.Context) ([]types.TimeSeparator, error) {
	if c.redis != nil {
		seps, err := c.cached(ctx)
		if err == nil && len(seps) > 0 {
			return seps, nil
		}
		if err != nil {
			c.log.Warn("time separators cache read failed", "error", err)
		}
	}

	seps, err := c.store.TimeSeparators(ctx)
	if err != nil {
		return nil, fmt.Errorf("load time separators: %w", err)
	}

	if c.redis != nil && len(seps) > 0 {
		if err := c.fill(ctx, seps); err != nil {
			c.log.Warn("time separators cache write failed", "error", err)
		}
	}

	return seps, nil
}

// Minutes lists the allowed validity values.
func (c *Catalog) Minutes(ctx context.Context) ([]int, error) {
	seps, err := c.Separators(ctx)
	if err != nil {
		return nil, err
	}

	minutes := make([]int, len(seps))
	for i, sep := range seps {
		minutes[i] = sep.Minutes
	}

	return minutes, nil
}

// LiveTimeID maps requested validity minutes to a separator id.
func (c *Catalog) LiveTimeID(ctx context.Context, minutes *int) (int64, error) {
	if minutes == nil {
		return c.config.DefaultLiveTimeID, nil
	}

	seps, err := c.Separators(ctx)
	if err != nil {
		return 0, err
	}

	for _, sep := range seps {
		if sep.Minutes == *minutes {
			return sep.ID, nil
		}
	}

	return c.config.DefaultLiveTimeID, nil
}

func (c *Catalog) cached(ctx context.Context) ([]types.TimeSeparator, error) {
	values, err := c.redis.HGetAll(ctx, cacheKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	seps := make([]types.TimeSeparator, 0, len(values))
	for minutes, id := range values {
		m, err := strconv.Atoi(minutes)
		if err != nil {
			return nil, fmt.Errorf("bad cached minutes %q: %w", minutes, err)
		}
		sepID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad cached id %q: %w", id, err)
		}
		seps = append(seps, types.TimeSeparator{ID: sepID, Minutes: m})
	}

	sort.Slice(seps, func(i, j int) bool { return seps[i].Minutes < seps[j].Minutes })

	return seps, nil
}

func (c *Catalog) fill(ctx context.Context, seps []types.TimeSeparator) error {
	fields := make(map[string]interface{}, len(seps))
	for _, sep := range seps {
		fields[strconv.Itoa(sep.Minutes)] = strconv.FormatInt(sep.ID, 10)
	}

	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, cacheKey)
		pipe.HSet(ctx, cacheKey, fields)
		pipe.Expire(ctx, cacheKey, c.config.CacheTTL)
		return nil
	})

	return err
}
