// Package plan computes the chunk schedule for a metrics query: the ordered
// sub-windows that cover a requested time range without exceeding the
// service's maximum span per call.
package plan

import (
	"errors"
	"fmt"
	"time"

	"github.com/vjranagit/apmfetch/pkg/types"
)

// Span limits imposed by the remote service, selected by sampling period.
// These mirror the service's data retention tiers and may need updating if
// the service changes its limits.
const (
	MinPeriod = 60 * time.Second

	SpanHourly  = 7 * 24 * time.Hour // period >= 1h
	SpanCoarse  = 24 * time.Hour     // period >= 10m
	SpanFine    = 3 * time.Hour      // period >= 60s
	MaxFineAge  = 8 * 24 * time.Hour // sub-hour periods only reach back this far
	coarseFloor = 10 * time.Minute
)

var (
	// ErrInvalidPeriod is returned for sampling periods below one minute.
	ErrInvalidPeriod = errors.New("sampling period must be at least 60 seconds")

	// ErrIncompatibleHistoricalPeriod is returned when a sub-hour period is
	// requested for data older than the service retains at that resolution.
	ErrIncompatibleHistoricalPeriod = errors.New("sub-hour sampling period requested for data older than 8 days")
)

// MaxSpan returns the maximum time span the service allows per call for the
// given sampling period. A zero period means the service chooses its own
// resolution and the whole range fits one call, reported here as zero.
func MaxSpan(period time.Duration) (time.Duration, error) {
	switch {
	case period == 0:
		return 0, nil
	case period < MinPeriod:
		return 0, fmt.Errorf("%w: got %s", ErrInvalidPeriod, period)
	case period >= time.Hour:
		return SpanHourly, nil
	case period >= coarseFloor:
		return SpanCoarse, nil
	default:
		return SpanFine, nil
	}
}

// Validate checks a (start, period) pair against the service's limits using
// the supplied current time. It fails before any chunking happens so callers
// can reject a query without side effects.
func Validate(start time.Time, period time.Duration, now time.Time) error {
	if period != 0 && period < MinPeriod {
		return fmt.Errorf("%w: got %s", ErrInvalidPeriod, period)
	}
	if period != 0 && period < time.Hour && now.Sub(start) > MaxFineAge {
		return fmt.Errorf("%w: start %s", ErrIncompatibleHistoricalPeriod, start.Format(time.RFC3339))
	}
	return nil
}

// Windows splits [start, end) into ordered chunks of at most the maximum
// span for the period. Chunks are contiguous and non-overlapping; the final
// chunk is clipped to end exactly at the requested end time.
func Windows(start, end time.Time, period time.Duration) ([]types.Chunk, error) {
	maxSpan, err := MaxSpan(period)
	if err != nil {
		return nil, err
	}

	if maxSpan == 0 || end.Sub(start) <= maxSpan {
		return []types.Chunk{{Start: start, End: end}}, nil
	}

	chunks := make([]types.Chunk, 0, Count(end.Sub(start), maxSpan))
	for cursor := start; cursor.Before(end); {
		next := cursor.Add(maxSpan)
		if next.After(end) {
			next = end
		}
		chunks = append(chunks, types.Chunk{Start: cursor, End: next})
		cursor = next
	}
	return chunks, nil
}

// Count returns how many chunks a duration needs at the given span. Used
// for progress reporting totals.
func Count(total, maxSpan time.Duration) int {
	if maxSpan <= 0 || total <= maxSpan {
		return 1
	}
	n := int(total / maxSpan)
	if total%maxSpan != 0 {
		n++
	}
	return n
}
