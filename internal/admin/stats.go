// AngelaMos | 2026
// stats.go

package admin

import (
	"database/sql"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nhpc-ltd/blog-api/internal/post"
)

type SystemStatsResponse struct {
	Database StoreStatus[DBPoolStats]    `json:"database"`
	Redis    StoreStatus[RedisPoolStats] `json:"redis"`
	Runtime  RuntimeStatsResponse        `json:"runtime"`
}

type StoreStatus[T any] struct {
	Healthy bool `json:"healthy"`
	Stats   *T   `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
	MaxIdleClosed      int64  `json:"max_idle_closed"`
	MaxLifetimeClosed  int64  `json:"max_lifetime_closed"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
}

type RuntimeStatsResponse struct {
	GoVersion  string `json:"go_version"`
	Uptime     string `json:"uptime"`
	Goroutines int    `json:"goroutines"`
	HeapBytes  uint64 `json:"heap_bytes"`
	NumGC      uint32 `json:"num_gc"`
}

type PostCounts struct {
	Total       int `json:"total"`
	UnderReview int `json:"under_review"`
	Published   int `json:"published"`
	Rejected    int `json:"rejected"`
}

type ContentStats struct {
	Posts      PostCounts `json:"posts"`
	Users      int        `json:"users"`
	Categories int        `json:"categories"`
	Likes      int        `json:"likes"`
}

func postCounts(byStatus map[post.Status]int) PostCounts {
	c := PostCounts{
		UnderReview: byStatus[post.UnderReview],
		Published:   byStatus[post.Published],
		Rejected:    byStatus[post.Rejected],
	}
	c.Total = c.UnderReview + c.Published + c.Rejected
	return c
}

func dbPoolStats(fn func() sql.DBStats) *DBPoolStats {
	if fn == nil {
		return nil
	}
	s := fn()
	return &DBPoolStats{
		MaxOpenConnections: s.MaxOpenConnections,
		OpenConnections:    s.OpenConnections,
		InUse:              s.InUse,
		Idle:               s.Idle,
		WaitCount:          s.WaitCount,
		WaitDuration:       s.WaitDuration.String(),
		MaxIdleClosed:      s.MaxIdleClosed,
		MaxLifetimeClosed:  s.MaxLifetimeClosed,
	}
}

func redisPoolStats(fn func() *redis.PoolStats) *RedisPoolStats {
	if fn == nil {
		return nil
	}
	s := fn()
	if s == nil {
		return nil
	}
	return &RedisPoolStats{
		Hits:       s.Hits,
		Misses:     s.Misses,
		Timeouts:   s.Timeouts,
		TotalConns: s.TotalConns,
		IdleConns:  s.IdleConns,
	}
}

func readRuntimeStats(started time.Time) RuntimeStatsResponse {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return RuntimeStatsResponse{
		GoVersion:  runtime.Version(),
		Uptime:     time.Since(started).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		HeapBytes:  m.HeapAlloc,
		NumGC:      m.NumGC,
	}
}
