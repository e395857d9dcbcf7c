// Package client talks to the remote metrics REST API: one metric data
// fetch per chunk, plus the application listing endpoint.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/vjranagit/apmfetch/pkg/types"
)

const (
	metricDataPath   = "/v2/applications/%d/metrics/data.json"
	applicationsPath = "/v2/applications.json"
	applicationsPage = 200

	// DefaultMockURL is the metric data endpoint used for application ids
	// below 1. It serves deterministic timeslices so queries can be
	// exercised without live credentials (see pkg/mockapi).
	DefaultMockURL = "http://localhost:8780/v2/applications/0/metrics/data.json"
)

// RemoteAPIError is returned when the service responds with an error
// payload instead of metric data.
type RemoteAPIError struct {
	Message string
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("remote API error: %s", e.Message)
}

// Client issues requests against one metrics API host.
type Client struct {
	client  *http.Client
	scheme  string
	host    string
	apiKey  string
	mockURL string
}

// NewClient creates a new Client. Timeout bounds every request; the client
// performs no retries.
func NewClient(host, apiKey string, timeout time.Duration) *Client {
	return &Client{
		client:  &http.Client{Timeout: timeout},
		scheme:  "https",
		host:    host,
		apiKey:  apiKey,
		mockURL: DefaultMockURL,
	}
}

// SetMockURL overrides the endpoint used for application ids below 1.
func (c *Client) SetMockURL(u string) {
	c.mockURL = u
}

// metricDataResponse is the wire shape of the metric data endpoint.
type metricDataResponse struct {
	MetricData struct {
		Metrics []struct {
			Name       string `json:"name"`
			Timeslices []struct {
				From   string             `json:"from"`
				Values map[string]float64 `json:"values"`
			} `json:"timeslices"`
		} `json:"metrics"`
	} `json:"metric_data"`
	Error string `json:"error"`
}

// FetchChunk fetches one chunk's worth of metric data and returns it as a
// table ordered by metric name, then timeslice. An application id below 1
// targets the mock endpoint instead of the live host.
func (c *Client) FetchChunk(ctx context.Context, appID int, spec types.QuerySpec) (types.Table, error) {
	u, err := c.metricDataURL(appID)
	if err != nil {
		return nil, err
	}
	u.RawQuery = encodeQuery(spec)

	body, err := c.get(ctx, u.String())
	if err != nil {
		return nil, err
	}

	var resp metricDataResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode metric data response: %w", err)
	}
	if resp.Error != "" {
		return nil, &RemoteAPIError{Message: resp.Error}
	}

	var table types.Table
	for _, metric := range resp.MetricData.Metrics {
		for _, slice := range metric.Timeslices {
			from, err := time.Parse(time.RFC3339, slice.From)
			if err != nil {
				return nil, fmt.Errorf("failed to parse timeslice start %q: %w", slice.From, err)
			}
			table = append(table, types.Row{
				Metric: metric.Name,
				From:   from,
				Values: slice.Values,
			})
		}
	}
	return table, nil
}

// applicationsResponse is the wire shape of the application listing
// endpoint.
type applicationsResponse struct {
	Applications []types.Application `json:"applications"`
	Error        string              `json:"error"`
}

// Applications lists the account's applications: pages through the listing
// endpoint until a short page, keeps apps with positive throughput, and
// sorts descending by throughput.
func (c *Client) Applications(ctx context.Context) ([]types.Application, error) {
	var apps []types.Application

	for page := 1; ; page++ {
		u := url.URL{Scheme: c.scheme, Host: c.host, Path: applicationsPath}
		u.RawQuery = url.Values{"page": []string{strconv.Itoa(page)}}.Encode()

		body, err := c.get(ctx, u.String())
		if err != nil {
			return nil, err
		}

		var resp applicationsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode applications response: %w", err)
		}
		if resp.Error != "" {
			return nil, &RemoteAPIError{Message: resp.Error}
		}

		for _, app := range resp.Applications {
			if app.Throughput > 0 {
				apps = append(apps, app)
			}
		}

		if len(resp.Applications) < applicationsPage {
			break
		}
	}

	sort.Slice(apps, func(i, j int) bool {
		return apps[i].Throughput > apps[j].Throughput
	})
	return apps, nil
}

// get performs one GET with the API key header and returns the body.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

func (c *Client) metricDataURL(appID int) (*url.URL, error) {
	if appID < 1 {
		u, err := url.Parse(c.mockURL)
		if err != nil {
			return nil, fmt.Errorf("invalid mock URL: %w", err)
		}
		return u, nil
	}
	return &url.URL{
		Scheme: c.scheme,
		Host:   c.host,
		Path:   fmt.Sprintf(metricDataPath, appID),
	}, nil
}

// encodeQuery builds the repeated-key query string the service expects:
// one names[] per metric, one values[] per value, minute-truncated
// from/to with the local offset preserved, period in seconds, raw=true.
func encodeQuery(spec types.QuerySpec) string {
	params := url.Values{}
	for _, name := range spec.Metrics {
		params.Add("names[]", name)
	}
	for _, value := range spec.Values {
		params.Add("values[]", value)
	}
	params.Set("from", FormatTimestamp(spec.Start))
	params.Set("to", FormatTimestamp(spec.End))
	if spec.Period > 0 {
		params.Set("period", strconv.Itoa(int(spec.Period.Seconds())))
	}
	params.Set("raw", "true")
	return params.Encode()
}

// FormatTimestamp renders a timestamp the way the service expects:
// truncated to the minute, local offset preserved.
func FormatTimestamp(t time.Time) string {
	return t.Truncate(time.Minute).Format("2006-01-02T15:04:05-07:00")
}
