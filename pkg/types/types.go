package types

import "time"

// QuerySpec describes one metrics request against the remote API.
// Period of zero means "no explicit sampling period"; the service then
// picks a resolution on its own and the whole range fits a single call.
type QuerySpec struct {
	Metrics []string
	Values  []string
	Period  time.Duration
	Start   time.Time
	End     time.Time
}

// SubRange returns a copy of the query narrowed to [start, end).
func (s QuerySpec) SubRange(start, end time.Time) QuerySpec {
	s.Start = start
	s.End = end
	return s
}

// Chunk is one contiguous sub-window of a requested time range, sized to
// respect the service's per-call span limit.
type Chunk struct {
	Start time.Time
	End   time.Time
}

// Duration returns the chunk's span.
func (c Chunk) Duration() time.Duration {
	return c.End.Sub(c.Start)
}

// Row is one metric observation: a single timeslice of a single metric,
// with one numeric column per requested value name.
type Row struct {
	Metric string             `json:"metric"`
	From   time.Time          `json:"from"`
	Values map[string]float64 `json:"values"`
}

// Table is an ordered sequence of rows. Row order is chunk order, then
// timeslice order within the chunk.
type Table []Row

// Append concatenates another table onto this one, preserving order.
func (t Table) Append(other Table) Table {
	return append(t, other...)
}

// Application is one entry from the application listing endpoint.
type Application struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Throughput   float64 `json:"throughput"`
	ResponseTime float64 `json:"response_time"`
	ErrorRate    float64 `json:"error_rate"`
	Reporting    bool    `json:"reporting"`
}
