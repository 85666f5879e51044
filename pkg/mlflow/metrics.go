package mlflow

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hashicorp/go-multierror"
)

// Server limits on a single log-batch request.
const (
	maxBatchMetrics = 1000
	maxBatchParams  = 100
	maxBatchTags    = 100
	maxBatchTotal   = 1000
)

// LogMetric logs one metric value at the given timestamp and step.
// Non-finite values are rejected before any request is sent.
func (c *Client) LogMetric(ctx context.Context, runID string, metric Metric) error {
	if err := validateKey(runID); err != nil {
		return fmt.Errorf("invalid run id: %w", err)
	}
	if err := validateMetric(metric); err != nil {
		return err
	}

	body := struct {
		RunID     string  `json:"run_id"`
		Key       string  `json:"key"`
		Value     float64 `json:"value"`
		Timestamp int64   `json:"timestamp"`
		Step      int64   `json:"step,omitempty"`
	}{runID, metric.Key, metric.Value, metric.Timestamp, metric.Step}

	if err := c.do(ctx, http.MethodPost, "runs/log-metric", nil, body, nil); err != nil {
		return fmt.Errorf("failed to log metric: %w", err)
	}

	return nil
}

// LogParam logs one param. Params are immutable on the server; relogging a
// key with a different value passes the server's error through.
func (c *Client) LogParam(ctx context.Context, runID, key, value string) error {
	if err := validateKey(runID); err != nil {
		return fmt.Errorf("invalid run id: %w", err)
	}
	if err := validateParam(Param{Key: key, Value: value}); err != nil {
		return err
	}

	body := struct {
		RunID string `json:"run_id"`
		Key   string `json:"key"`
		Value string `json:"value"`
	}{runID, key, value}

	if err := c.do(ctx, http.MethodPost, "runs/log-parameter", nil, body, nil); err != nil {
		return fmt.Errorf("failed to log param: %w", err)
	}

	return nil
}

// SetTag sets a tag on a run.
func (c *Client) SetTag(ctx context.Context, runID, key, value string) error {
	if err := validateKey(runID); err != nil {
		return fmt.Errorf("invalid run id: %w", err)
	}
	if err := validateRunTag(RunTag{Key: key, Value: value}); err != nil {
		return err
	}

	body := struct {
		RunID string `json:"run_id"`
		Key   string `json:"key"`
		Value string `json:"value"`
	}{runID, key, value}

	if err := c.do(ctx, http.MethodPost, "runs/set-tag", nil, body, nil); err != nil {
		return fmt.Errorf("failed to set tag: %w", err)
	}

	return nil
}

// DeleteTag removes a tag from a run. Deleting a missing key passes the
// server's error through.
func (c *Client) DeleteTag(ctx context.Context, runID, key string) error {
	if err := validateKey(runID); err != nil {
		return fmt.Errorf("invalid run id: %w", err)
	}
	if err := validateKey(key); err != nil {
		return fmt.Errorf("invalid tag key: %w", err)
	}

	body := struct {
		RunID string `json:"run_id"`
		Key   string `json:"key"`
	}{runID, key}

	if err := c.do(ctx, http.MethodPost, "runs/delete-tag", nil, body, nil); err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	return nil
}

// LogBatch logs metrics, params, and tags in a single request. Every entry
// is validated first; validation failures accumulate and no request is
// sent unless the whole batch is clean.
func (c *Client) LogBatch(ctx context.Context, runID string, metrics []Metric, params []Param, tags []RunTag) error {
	if err := validateKey(runID); err != nil {
		return fmt.Errorf("invalid run id: %w", err)
	}

	var result *multierror.Error
	if len(metrics) > maxBatchMetrics {
		result = multierror.Append(result,
			fmt.Errorf("batch exceeds %d metrics", maxBatchMetrics))
	}
	if len(params) > maxBatchParams {
		result = multierror.Append(result,
			fmt.Errorf("batch exceeds %d params", maxBatchParams))
	}
	if len(tags) > maxBatchTags {
		result = multierror.Append(result,
			fmt.Errorf("batch exceeds %d tags", maxBatchTags))
	}
	if total := len(metrics) + len(params) + len(tags); total > maxBatchTotal {
		result = multierror.Append(result,
			fmt.Errorf("batch exceeds %d total entries", maxBatchTotal))
	}

	for i, m := range metrics {
		if err := validateMetric(m); err != nil {
			result = multierror.Append(result, fmt.Errorf("metric %d (%q): %w", i, m.Key, err))
		}
	}
	for i, p := range params {
		if err := validateParam(p); err != nil {
			result = multierror.Append(result, fmt.Errorf("param %d (%q): %w", i, p.Key, err))
		}
	}
	for i, t := range tags {
		if err := validateRunTag(t); err != nil {
			result = multierror.Append(result, fmt.Errorf("tag %d (%q): %w", i, t.Key, err))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("invalid batch: %w", err)
	}

	body := struct {
		RunID   string   `json:"run_id"`
		Metrics []Metric `json:"metrics,omitempty"`
		Params  []Param  `json:"params,omitempty"`
		Tags    []RunTag `json:"tags,omitempty"`
	}{runID, metrics, params, tags}

	if err := c.do(ctx, http.MethodPost, "runs/log-batch", nil, body, nil); err != nil {
		return fmt.Errorf("failed to log batch: %w", err)
	}

	return nil
}

// MetricHistoryRequest pages through the full series of one metric key.
type MetricHistoryRequest struct {
	MaxResults int64
	PageToken  string
}

// MetricPage is one page of metric history.
type MetricPage struct {
	Metrics       []Metric `json:"metrics"`
	NextPageToken string   `json:"next_page_token,omitempty"`
}

// GetMetricHistory returns one page of all logged values for a metric key.
func (c *Client) GetMetricHistory(ctx context.Context, runID, key string, req MetricHistoryRequest) (*MetricPage, error) {
	if err := validateKey(runID); err != nil {
		return nil, fmt.Errorf("invalid run id: %w", err)
	}
	if err := validateKey(key); err != nil {
		return nil, fmt.Errorf("invalid metric key: %w", err)
	}

	query := url.Values{}
	query.Set("run_id", runID)
	query.Set("metric_key", key)
	if req.MaxResults > 0 {
		query.Set("max_results", strconv.FormatInt(req.MaxResults, 10))
	}
	if req.PageToken != "" {
		query.Set("page_token", req.PageToken)
	}

	var page MetricPage
	if err := c.do(ctx, http.MethodGet, "metrics/get-history", query, nil, &page); err != nil {
		return nil, fmt.Errorf("failed to get metric history: %w", err)
	}

	return &page, nil
}

// GetMetricHistoryAll follows page tokens until the history is exhausted.
func (c *Client) GetMetricHistoryAll(ctx context.Context, runID, key string) ([]Metric, error) {
	var all []Metric
	var req MetricHistoryRequest
	for {
		page, err := c.GetMetricHistory(ctx, runID, key, req)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Metrics...)

		if page.NextPageToken == "" || page.NextPageToken == req.PageToken {
			return all, nil
		}
		req.PageToken = page.NextPageToken
	}
}

func validateMetric(m Metric) error {
	if err := validateKey(m.Key); err != nil {
		return fmt.Errorf("invalid metric key: %w", err)
	}
	if err := validateMetricValue(m.Value); err != nil {
		return fmt.Errorf("invalid metric value: %w", err)
	}
	return nil
}

func validateParam(p Param) error {
	if err := validateKey(p.Key); err != nil {
		return fmt.Errorf("invalid param key: %w", err)
	}
	if err := validateParamValue(p.Value); err != nil {
		return fmt.Errorf("invalid param value: %w", err)
	}
	return nil
}

func validateRunTag(t RunTag) error {
	if err := validateKey(t.Key); err != nil {
		return fmt.Errorf("invalid tag key: %w", err)
	}
	if err := validateTagValue(t.Value); err != nil {
		return fmt.Errorf("invalid tag value: %w", err)
	}
	return nil
}
