// Package mockapi serves a deterministic copy of the metrics REST API.
// It backs the below-1 application id path of the client and the
// end-to-end tests: timeslice values are a pure function of the metric
// name and slice index, so repeated queries always see identical data.
package mockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Server implements the mock metrics API server.
type Server struct {
	addr   string
	server *http.Server
}

// NewServer creates a new mock API server.
func NewServer(addr string) *Server {
	return &Server{addr: addr}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Handler returns the server's routes. Exposed so tests can mount them on
// an httptest server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/applications.json", s.handleApplications)
	mux.HandleFunc("/v2/applications/", s.handleMetricData)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// handleMetricData serves /v2/applications/{id}/metrics/data.json with
// one timeslice per period across [from, to).
func (s *Server) handleMetricData(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/metrics/data.json") {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	names := q["names[]"]
	values := q["values[]"]
	if len(names) == 0 || len(values) == 0 {
		writeJSON(w, map[string]string{
			"error": "missing names[] or values[] parameter",
		})
		return
	}

	from, err := time.Parse("2006-01-02T15:04:05-07:00", q.Get("from"))
	if err != nil {
		writeJSON(w, map[string]string{
			"error": fmt.Sprintf("invalid from timestamp: %v", err),
		})
		return
	}
	to, err := time.Parse("2006-01-02T15:04:05-07:00", q.Get("to"))
	if err != nil {
		writeJSON(w, map[string]string{
			"error": fmt.Sprintf("invalid to timestamp: %v", err),
		})
		return
	}

	period := 60 * time.Second
	if p := q.Get("period"); p != "" {
		secs, err := strconv.Atoi(p)
		if err != nil || secs <= 0 {
			writeJSON(w, map[string]string{
				"error": fmt.Sprintf("invalid period: %q", p),
			})
			return
		}
		period = time.Duration(secs) * time.Second
	}

	metrics := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		var slices []map[string]interface{}
		i := 0
		for cursor := from; cursor.Before(to); cursor = cursor.Add(period) {
			vals := make(map[string]float64, len(values))
			for _, value := range values {
				vals[value] = sliceValue(name, value, i)
			}
			slices = append(slices, map[string]interface{}{
				"from":   cursor.Format(time.RFC3339),
				"values": vals,
			})
			i++
		}
		metrics = append(metrics, map[string]interface{}{
			"name":       name,
			"timeslices": slices,
		})
	}

	writeJSON(w, map[string]interface{}{
		"metric_data": map[string]interface{}{
			"metrics": metrics,
		},
	})
}

// sliceValue generates the deterministic value for one timeslice.
func sliceValue(metric, value string, index int) float64 {
	seed := 0
	for _, b := range []byte(metric + "/" + value) {
		seed += int(b)
	}
	return float64(seed%100) + float64(index)
}

// handleApplications serves a fixed application list, including entries
// the client is expected to filter out.
func (s *Server) handleApplications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"applications": []map[string]interface{}{
			{"id": 101, "name": "storefront", "throughput": 820.5, "response_time": 120.0, "error_rate": 0.4, "reporting": true},
			{"id": 102, "name": "billing", "throughput": 64.2, "response_time": 310.0, "error_rate": 1.2, "reporting": true},
			{"id": 103, "name": "legacy-batch", "throughput": 0.0, "response_time": 0.0, "error_rate": 0.0, "reporting": false},
			{"id": 104, "name": "checkout", "throughput": 1310.9, "response_time": 95.0, "error_rate": 0.1, "reporting": true},
		},
	})
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status": "healthy",
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
