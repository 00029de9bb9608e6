// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"database/sql"
	"time"
)

const checkTimeout = 3 * time.Second

func truncateError(err error) string {
	msg := err.Error()
	if len(msg) > 50 {
		msg = msg[:50]
	}
	return msg
}

// SQLChecker pings the relational database.
type SQLChecker struct {
	db *sql.DB
}

// NewSQLChecker creates a checker over an opened database handle.
func NewSQLChecker(db *sql.DB) *SQLChecker {
	return &SQLChecker{db: db}
}

func (c *SQLChecker) Name() string { return "database" }

func (c *SQLChecker) Check(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if _, err := c.db.ExecContext(ctx, "SELECT 1"); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: truncateError(err)}
	}
	return CheckResult{Status: StatusHealthy, Message: "connected"}
}

// CollectionLister is satisfied by the Qdrant client.
type CollectionLister interface {
	Collections(ctx context.Context) ([]string, error)
}

// QdrantChecker verifies the vector store responds. A nil client reports
// "not configured" without degrading readiness.
type QdrantChecker struct {
	client CollectionLister
}

// NewQdrantChecker creates a vector store checker.
func NewQdrantChecker(client CollectionLister) *QdrantChecker {
	return &QdrantChecker{client: client}
}

func (c *QdrantChecker) Name() string { return "qdrant" }

func (c *QdrantChecker) Check(ctx context.Context) CheckResult {
	if c.client == nil {
		return CheckResult{Status: StatusHealthy, Message: "not_configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if _, err := c.client.Collections(ctx); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: truncateError(err)}
	}
	return CheckResult{Status: StatusHealthy, Message: "connected"}
}

// Pinger is satisfied by the Redis cache.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// RedisChecker verifies the cache backend responds.
type RedisChecker struct {
	cache Pinger
}

// NewRedisChecker creates a cache checker.
func NewRedisChecker(cache Pinger) *RedisChecker {
	return &RedisChecker{cache: cache}
}

func (c *RedisChecker) Name() string { return "cache" }

func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	if c.cache == nil {
		return CheckResult{Status: StatusHealthy, Message: "in_memory"}
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := c.cache.HealthCheck(ctx); err != nil {
		// A broken cache degrades performance, not correctness.
		return CheckResult{Status: StatusDegraded, Error: truncateError(err)}
	}
	return CheckResult{Status: StatusHealthy, Message: "connected"}
}
