package engine

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vjranagit/apmfetch/pkg/client"
	"github.com/vjranagit/apmfetch/pkg/mockapi"
)

// mockMetricServer serves the deterministic mock API over httptest and
// counts the requests it receives.
type mockMetricServer struct {
	ts       *httptest.Server
	requests int
}

func newMockMetricServer(t *testing.T) *mockMetricServer {
	t.Helper()

	srv := &mockMetricServer{}
	handler := mockapi.NewServer("").Handler()
	srv.ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.requests++
		handler.ServeHTTP(w, r)
	}))
	return srv
}

func (s *mockMetricServer) Close() {
	s.ts.Close()
}

func newMockClient(t *testing.T, srv *mockMetricServer) *client.Client {
	t.Helper()

	c := client.NewClient("unused.example.com", "test-key", 5*time.Second)
	c.SetMockURL(srv.ts.URL + "/v2/applications/0/metrics/data.json")
	return c
}
