package mlflow

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogMetric(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/2.0/mlflow/runs/log-metric", r.URL.Path)

		var reqBody struct {
			RunID     string  `json:"run_id"`
			Key       string  `json:"key"`
			Value     float64 `json:"value"`
			Timestamp int64   `json:"timestamp"`
			Step      int64   `json:"step"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "abc123", reqBody.RunID)
		assert.Equal(t, "loss", reqBody.Key)
		assert.Equal(t, 0.42, reqBody.Value)
		assert.Equal(t, int64(5), reqBody.Step)

		w.WriteHeader(http.StatusOK)
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	err := client.LogMetric(context.Background(), "abc123", Metric{
		Key:       "loss",
		Value:     0.42,
		Timestamp: 1714000000000,
		Step:      5,
	})
	require.NoError(t, err)
}

func TestLogMetric_RejectsNonFiniteValues(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should be sent for a non-finite value")
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)
	ctx := context.Background()

	for _, value := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := client.LogMetric(ctx, "abc123", Metric{Key: "loss", Value: value})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "finite")
	}
}

func TestLogParam_ValueTooLong(t *testing.T) {
	client := newTestClient(t, "http://unused.invalid")

	err := client.LogParam(context.Background(), "abc123", "config", strings.Repeat("x", maxParamValueLength+1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid param value")
}

func TestSetAndDeleteTag(t *testing.T) {
	var paths []string
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)
	ctx := context.Background()

	require.NoError(t, client.SetTag(ctx, "abc123", "model", "resnet"))
	require.NoError(t, client.DeleteTag(ctx, "abc123", "model"))

	assert.Equal(t, []string{
		"/api/2.0/mlflow/runs/set-tag",
		"/api/2.0/mlflow/runs/delete-tag",
	}, paths)
}

func TestLogBatch(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/2.0/mlflow/runs/log-batch", r.URL.Path)

		var reqBody struct {
			RunID   string   `json:"run_id"`
			Metrics []Metric `json:"metrics"`
			Params  []Param  `json:"params"`
			Tags    []RunTag `json:"tags"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "abc123", reqBody.RunID)
		assert.Len(t, reqBody.Metrics, 2)
		assert.Len(t, reqBody.Params, 1)
		assert.Len(t, reqBody.Tags, 1)

		w.WriteHeader(http.StatusOK)
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	err := client.LogBatch(context.Background(), "abc123",
		[]Metric{
			{Key: "loss", Value: 0.42, Step: 1},
			{Key: "loss", Value: 0.40, Step: 2},
		},
		[]Param{{Key: "lr", Value: "0.001"}},
		[]RunTag{{Key: "model", Value: "resnet"}},
	)
	require.NoError(t, err)
}

func TestLogBatch_AccumulatesValidationErrors(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should be sent for an invalid batch")
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	err := client.LogBatch(context.Background(), "abc123",
		[]Metric{
			{Key: "", Value: 1},
			{Key: "loss", Value: math.NaN()},
		},
		[]Param{{Key: "lr", Value: strings.Repeat("x", maxParamValueLength+1)}},
		nil,
	)
	require.Error(t, err)
	// All three bad entries are reported at once.
	assert.Contains(t, err.Error(), "metric 0")
	assert.Contains(t, err.Error(), "metric 1")
	assert.Contains(t, err.Error(), "param 0")
}

func TestLogBatch_SizeLimits(t *testing.T) {
	client := newTestClient(t, "http://unused.invalid")

	params := make([]Param, maxBatchParams+1)
	for i := range params {
		params[i] = Param{Key: "k", Value: "v"}
	}

	err := client.LogBatch(context.Background(), "abc123", nil, params, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 100 params")
}

func TestGetMetricHistoryAll_Pagination(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/api/2.0/mlflow/metrics/get-history", r.URL.Path)
		assert.Equal(t, "abc123", r.URL.Query().Get("run_id"))
		assert.Equal(t, "loss", r.URL.Query().Get("metric_key"))

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page_token") == "" {
			json.NewEncoder(w).Encode(MetricPage{
				Metrics:       []Metric{{Key: "loss", Value: 0.5, Step: 1}},
				NextPageToken: "next",
			})
			return
		}
		json.NewEncoder(w).Encode(MetricPage{
			Metrics: []Metric{{Key: "loss", Value: 0.4, Step: 2}},
		})
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	metrics, err := client.GetMetricHistoryAll(context.Background(), "abc123", "loss")
	require.NoError(t, err)
	require.Len(t, metrics, 2)
	assert.Equal(t, int64(2), metrics[1].Step)
}
