package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

type Config struct {
	RedisCheckInterval time.Duration
	DBCheckInterval    time.Duration
	ID                 string
}

type Component string

const (
	ComponentRedis Component = "redis"
	ComponentDB    Component = "db"
	ComponentQueue Component = "queue"
)

type CheckResult struct {
	Timestamp time.Time `json:"timestamp"`
	Result    bool      `json:"result"`
}

type HealthChecks map[Component]CheckResult

type HealthStatus struct {
	Healthy bool         `json:"healthy"`
	Checks  HealthChecks `json:"checks"`
}

type Database interface {
	IsUpAndRunning(ctx context.Context) error
}

type Queue interface {
	Connected() bool
}

// Checker periodically checks the dependencies of the service. A nil redis
// client or queue is not checked.
type Checker struct {
	config *Config
	redis  redis.UniversalClient
	db     Database
	queue  Queue
	log    *slog.Logger

	mu     sync.RWMutex
	checks HealthChecks
}

func NewChecker(rdb redis.UniversalClient, db Database, queue Queue, config *Config) *Checker {
	c := &Checker{
		config: config,
		redis:  rdb,
		db:     db,
		queue:  queue,
		log:    slog.With("pod", config.ID, "component", "health"),
		checks: HealthChecks{
			// the service only starts after the initial checks passed
			ComponentDB: CheckResult{Timestamp: time.Now(), Result: true},
		},
	}

	if rdb != nil {
		c.checks[ComponentRedis] = CheckResult{Timestamp: time.Now(), Result: true}
	}

	return c
}

func (c *Checker) Run(ctx context.Context) {
	c.log.Debug("Starting the health checker...")

	redisTicker := time.NewTicker(c.config.RedisCheckInterval)
	defer redisTicker.Stop()
	dbTicker := time.NewTicker(c.config.DBCheckInterval)
	defer dbTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Debug("Stopping health checker ...")
			return
		case <-redisTicker.C:
			c.CheckRedis(ctx)
		case <-dbTicker.C:
			c.CheckDB(ctx)
		}
	}
}

func (c *Checker) CheckRedis(ctx context.Context) {
	if c.redis == nil {
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	err := c.redis.Ping(checkCtx).Err()
	c.set(ComponentRedis, err == nil)
}

func (c *Checker) CheckDB(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	err := c.db.IsUpAndRunning(checkCtx)
	c.set(ComponentDB, err == nil)
}

func (c *Checker) set(component Component, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checks[component] = CheckResult{Timestamp: time.Now(), Result: ok}
}

func (c *Checker) GetHealthStatus() HealthStatus {
	c.mu.RLock()
	checks := make(HealthChecks, len(c.checks)+1)
	for component, check := range c.checks {
		checks[component] = check
	}
	c.mu.RUnlock()

	// the queue reconnects on its own, so its state is read live
	if c.queue != nil {
		checks[ComponentQueue] = CheckResult{Timestamp: time.Now(), Result: c.queue.Connected()}
	}

	healthy := true
	for component, check := range checks {
		if !check.Result {
			healthy = false
			c.log.Error("Component health check failed", "component", component)
		}
	}

	return HealthStatus{
		Healthy: healthy,
		Checks:  checks,
	}
}
