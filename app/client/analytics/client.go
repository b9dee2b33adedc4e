package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"nova/app/config"

	"github.com/samber/do"
	"github.com/samber/oops"
)

const queryPath = "/api/influencer/query"

type Client struct {
	httpClient *http.Client
	queryURL   string
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Analytics.Timeout(),
		},
		queryURL: cfg.Analytics.BaseURL + queryPath,
	}, nil
}

// Query posts a structured query to the unified analytics endpoint. Any
// transport error, non-2xx status or malformed body collapses into a single
// user-facing *Error for the named endpoint.
func (c *Client) Query(ctx context.Context, query Query, endpointName string) (Payload, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, oops.Errorf("failed to marshal query: %w", err)
	}

	slog.Info("Querying analytics API",
		"endpoint", endpointName,
		"source", query.Source,
		"view", query.View,
		"filters", query.Filters,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.queryURL, bytes.NewReader(body))
	if err != nil {
		return nil, oops.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Analytics API connection error",
			"endpoint", endpointName,
			"error", err,
		)
		return nil, &Error{Endpoint: endpointName}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Error("Analytics API returned error status",
			"endpoint", endpointName,
			"status", resp.StatusCode,
		)
		return nil, &Error{Endpoint: endpointName}
	}

	var payload Payload
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		slog.Error("Analytics API returned malformed body",
			"endpoint", endpointName,
			"error", err,
		)
		return nil, &Error{Endpoint: endpointName}
	}

	return payload, nil
}
