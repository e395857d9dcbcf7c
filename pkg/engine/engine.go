// Package engine orchestrates a metrics query: validate, check the
// whole-range cache entry, plan the chunk schedule, fetch each chunk (its
// own cache entry first), and reassemble the results into one table.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/vjranagit/apmfetch/pkg/cache"
	"github.com/vjranagit/apmfetch/pkg/plan"
	"github.com/vjranagit/apmfetch/pkg/types"
)

var (
	// ErrNoMetrics is returned when a request names no metrics.
	ErrNoMetrics = errors.New("at least one metric name is required")

	// ErrNoValues is returned when a request names no value fields.
	ErrNoValues = errors.New("at least one value name is required")
)

// Fetcher fetches a single chunk of metric data from the remote service.
type Fetcher interface {
	FetchChunk(ctx context.Context, appID int, spec types.QuerySpec) (types.Table, error)
}

// Request describes one metrics query.
type Request struct {
	AccountID int
	AppID     int
	Duration  time.Duration
	EndTime   time.Time // zero means "now"
	Period    time.Duration
	Metrics   []string
	Values    []string
	UseCache  bool
	Progress  Progress
}

// Engine runs metrics queries. Cache may be nil to disable caching
// entirely; Clock and Logger default when nil.
type Engine struct {
	Fetcher Fetcher
	Cache   *cache.Cache
	Clock   Clock
	Logger  *log.Logger
}

// New creates an engine over a fetcher and an optional cache.
func New(fetcher Fetcher, c *cache.Cache) *Engine {
	return &Engine{Fetcher: fetcher, Cache: c}
}

// Query runs one metrics query to completion. Chunks are fetched
// sequentially; any fetch failure aborts the query with no partial table.
// Cache failures are logged and never abort the query.
func (e *Engine) Query(ctx context.Context, req Request) (types.Table, error) {
	if len(req.Metrics) == 0 {
		return nil, ErrNoMetrics
	}
	if len(req.Values) == 0 {
		return nil, ErrNoValues
	}

	now := e.now()
	end := req.EndTime
	if end.IsZero() {
		end = now
	}
	start := end.Add(-req.Duration)

	if err := plan.Validate(start, req.Period, now); err != nil {
		return nil, err
	}

	spec := types.QuerySpec{
		Metrics: req.Metrics,
		Values:  req.Values,
		Period:  req.Period,
		Start:   start,
		End:     end,
	}

	useCache := req.UseCache && e.Cache != nil
	wholeFP := cache.Fingerprint(spec)
	if useCache {
		if table, ok := e.cacheGet(wholeFP); ok {
			return table, nil
		}
	}

	chunks, err := plan.Windows(start, end, req.Period)
	if err != nil {
		return nil, err
	}

	var table types.Table
	for i, chunk := range chunks {
		part, err := e.fetchChunk(ctx, req.AppID, spec.SubRange(chunk.Start, chunk.End), useCache)
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d [%s, %s): %w",
				i+1, len(chunks),
				chunk.Start.Format(time.RFC3339), chunk.End.Format(time.RFC3339), err)
		}
		table = table.Append(part)

		if req.Progress != nil {
			req.Progress.Notify(i+1, len(chunks))
		}
	}

	if useCache {
		e.cachePut(wholeFP, table)
	}
	return table, nil
}

// fetchChunk serves one chunk, consulting the chunk-level cache entry
// before going to the network.
func (e *Engine) fetchChunk(ctx context.Context, appID int, spec types.QuerySpec, useCache bool) (types.Table, error) {
	fp := cache.Fingerprint(spec)
	if useCache {
		if table, ok := e.cacheGet(fp); ok {
			return table, nil
		}
	}

	table, err := e.Fetcher.FetchChunk(ctx, appID, spec)
	if err != nil {
		return nil, err
	}

	if useCache {
		e.cachePut(fp, table)
	}
	return table, nil
}

func (e *Engine) cacheGet(fp string) (types.Table, bool) {
	table, ok, err := e.Cache.GetTable(fp)
	if err != nil {
		e.logger().Printf("cache read failed for %s: %v", fp, err)
		return nil, false
	}
	return table, ok
}

func (e *Engine) cachePut(fp string, table types.Table) {
	if err := e.Cache.PutTable(fp, table); err != nil {
		e.logger().Printf("cache write failed for %s: %v", fp, err)
	}
}

func (e *Engine) now() time.Time {
	if e.Clock != nil {
		return e.Clock.Now()
	}
	return realClock{}.Now()
}

func (e *Engine) logger() *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return log.Default()
}
