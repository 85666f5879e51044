package mlflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRun(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/2.0/mlflow/runs/create", r.URL.Path)

		var reqBody struct {
			ExperimentID string   `json:"experiment_id"`
			RunName      string   `json:"run_name"`
			StartTime    int64    `json:"start_time"`
			Tags         []RunTag `json:"tags"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "7", reqBody.ExperimentID)
		assert.Equal(t, "resnet-baseline", reqBody.RunName)
		assert.Equal(t, int64(1714000000000), reqBody.StartTime)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"run": Run{
				Info: RunInfo{
					RunID:        "abc123",
					ExperimentID: "7",
					RunName:      "resnet-baseline",
					Status:       RunStatusRunning,
					StartTime:    1714000000000,
				},
			},
		})
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	run, err := client.CreateRun(context.Background(), "7", &CreateRunRequest{
		RunName:   "resnet-baseline",
		StartTime: 1714000000000,
	})
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "abc123", run.Info.RunID)
	assert.Equal(t, RunStatusRunning, run.Info.Status)
}

func TestStartRun_FillsStartTime(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody struct {
			StartTime int64 `json:"start_time"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Greater(t, reqBody.StartTime, int64(0))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"run": Run{Info: RunInfo{RunID: "abc123"}},
		})
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	run, err := client.StartRun(context.Background(), "7", nil)
	require.NoError(t, err)
	assert.Equal(t, "abc123", run.Info.RunID)
}

func TestGetRun(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/api/2.0/mlflow/runs/get", r.URL.Path)
		assert.Equal(t, "abc123", r.URL.Query().Get("run_id"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"run": Run{
				Info: RunInfo{RunID: "abc123", Status: RunStatusFinished},
				Data: RunData{
					Metrics: []Metric{{Key: "accuracy", Value: 0.93, Step: 10}},
					Params:  []Param{{Key: "lr", Value: "0.001"}},
					Tags:    []RunTag{{Key: "model", Value: "resnet"}},
				},
			},
		})
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	run, err := client.GetRun(context.Background(), "abc123")
	require.NoError(t, err)
	require.Len(t, run.Data.Metrics, 1)
	assert.Equal(t, 0.93, run.Data.Metrics[0].Value)
	assert.Equal(t, "0.001", run.Data.Params[0].Value)
	assert.Equal(t, "resnet", run.Data.Tags[0].Value)
}

func TestUpdateRun(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/2.0/mlflow/runs/update", r.URL.Path)

		var reqBody struct {
			RunID   string `json:"run_id"`
			Status  string `json:"status"`
			EndTime int64  `json:"end_time"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "abc123", reqBody.RunID)
		assert.Equal(t, "FINISHED", reqBody.Status)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"run_info": RunInfo{RunID: "abc123", Status: RunStatusFinished, EndTime: reqBody.EndTime},
		})
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	info, err := client.UpdateRun(context.Background(), "abc123", UpdateRunRequest{
		Status:  RunStatusFinished,
		EndTime: 1714000500000,
	})
	require.NoError(t, err)
	assert.Equal(t, RunStatusFinished, info.Status)
}

func TestEndRun_RejectsNonTerminalStatus(t *testing.T) {
	client := newTestClient(t, "http://unused.invalid")

	_, err := client.EndRun(context.Background(), "abc123", RunStatusRunning)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a terminal run status")
}

func TestSearchRuns_RequiresExperimentIDs(t *testing.T) {
	client := newTestClient(t, "http://unused.invalid")

	_, err := client.SearchRuns(context.Background(), SearchRunsRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one experiment id")
}

func TestSearchAllRuns_Pagination(t *testing.T) {
	var requests int
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/api/2.0/mlflow/runs/search", r.URL.Path)

		var reqBody SearchRunsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, []string{"7"}, reqBody.ExperimentIDs)
		assert.Equal(t, "metrics.accuracy > 0.9", reqBody.Filter)

		w.Header().Set("Content-Type", "application/json")
		if reqBody.PageToken == "" {
			json.NewEncoder(w).Encode(RunPage{
				Runs:          []Run{{Info: RunInfo{RunID: "a"}}, {Info: RunInfo{RunID: "b"}}},
				NextPageToken: "next",
			})
			return
		}
		json.NewEncoder(w).Encode(RunPage{Runs: []Run{{Info: RunInfo{RunID: "c"}}}})
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	runs, err := client.SearchAllRuns(context.Background(), SearchRunsRequest{
		ExperimentIDs: []string{"7"},
		Filter:        "metrics.accuracy > 0.9",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
	require.Len(t, runs, 3)
	assert.Equal(t, "c", runs[2].Info.RunID)
}

func TestDeleteAndRestoreRun(t *testing.T) {
	var paths []string
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)

		var reqBody map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "abc123", reqBody["run_id"])

		w.WriteHeader(http.StatusOK)
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)
	ctx := context.Background()

	require.NoError(t, client.DeleteRun(ctx, "abc123"))
	require.NoError(t, client.RestoreRun(ctx, "abc123"))

	assert.Equal(t, []string{
		"/api/2.0/mlflow/runs/delete",
		"/api/2.0/mlflow/runs/restore",
	}, paths)
}
