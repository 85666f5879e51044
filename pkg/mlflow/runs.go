package mlflow

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// CreateRunRequest holds the optional fields of run creation. The server
// assigns the run id.
type CreateRunRequest struct {
	RunName   string
	UserID    string
	StartTime int64 // epoch millis; zero lets StartRun fill in now
	Tags      []RunTag
}

// CreateRun creates a run under an experiment.
func (c *Client) CreateRun(ctx context.Context, experimentID string, req *CreateRunRequest) (*Run, error) {
	if err := validateKey(experimentID); err != nil {
		return nil, fmt.Errorf("invalid experiment id: %w", err)
	}

	body := struct {
		ExperimentID string   `json:"experiment_id"`
		UserID       string   `json:"user_id,omitempty"`
		RunName      string   `json:"run_name,omitempty"`
		StartTime    int64    `json:"start_time,omitempty"`
		Tags         []RunTag `json:"tags,omitempty"`
	}{ExperimentID: experimentID}
	if req != nil {
		body.UserID = req.UserID
		body.RunName = req.RunName
		body.StartTime = req.StartTime
		body.Tags = req.Tags
	}

	var resp struct {
		Run *Run `json:"run"`
	}
	if err := c.do(ctx, http.MethodPost, "runs/create", nil, body, &resp); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return resp.Run, nil
}

// StartRun creates a run with its start time set to now.
func (c *Client) StartRun(ctx context.Context, experimentID string, req *CreateRunRequest) (*Run, error) {
	if req == nil {
		req = &CreateRunRequest{}
	}
	if req.StartTime == 0 {
		req.StartTime = time.Now().UnixMilli()
	}

	return c.CreateRun(ctx, experimentID, req)
}

// GetRun fetches a run by id, including its latest metrics, params, and
// tags.
func (c *Client) GetRun(ctx context.Context, runID string) (*Run, error) {
	if err := validateKey(runID); err != nil {
		return nil, fmt.Errorf("invalid run id: %w", err)
	}

	query := url.Values{}
	query.Set("run_id", runID)

	var resp struct {
		Run *Run `json:"run"`
	}
	if err := c.do(ctx, http.MethodGet, "runs/get", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return resp.Run, nil
}

// UpdateRunRequest carries the mutable fields of a run. Zero values are
// omitted from the request.
type UpdateRunRequest struct {
	Status  RunStatus
	EndTime int64 // epoch millis
	RunName string
}

// UpdateRun updates run metadata and returns the refreshed info.
func (c *Client) UpdateRun(ctx context.Context, runID string, req UpdateRunRequest) (*RunInfo, error) {
	if err := validateKey(runID); err != nil {
		return nil, fmt.Errorf("invalid run id: %w", err)
	}

	body := struct {
		RunID   string    `json:"run_id"`
		Status  RunStatus `json:"status,omitempty"`
		EndTime int64     `json:"end_time,omitempty"`
		RunName string    `json:"run_name,omitempty"`
	}{runID, req.Status, req.EndTime, req.RunName}

	var resp struct {
		RunInfo *RunInfo `json:"run_info"`
	}
	if err := c.do(ctx, http.MethodPost, "runs/update", nil, body, &resp); err != nil {
		return nil, fmt.Errorf("failed to update run: %w", err)
	}

	return resp.RunInfo, nil
}

// EndRun marks a run finished with the given terminal status and an end
// time of now. Passing an empty status finishes the run as FINISHED.
func (c *Client) EndRun(ctx context.Context, runID string, status RunStatus) (*RunInfo, error) {
	if status == "" {
		status = RunStatusFinished
	}
	if !status.Terminal() {
		return nil, fmt.Errorf("status %s is not a terminal run status", status)
	}

	return c.UpdateRun(ctx, runID, UpdateRunRequest{
		Status:  status,
		EndTime: time.Now().UnixMilli(),
	})
}

// DeleteRun marks a run deleted.
func (c *Client) DeleteRun(ctx context.Context, runID string) error {
	if err := validateKey(runID); err != nil {
		return fmt.Errorf("invalid run id: %w", err)
	}

	body := struct {
		RunID string `json:"run_id"`
	}{runID}

	if err := c.do(ctx, http.MethodPost, "runs/delete", nil, body, nil); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	return nil
}

// RestoreRun restores a deleted run.
func (c *Client) RestoreRun(ctx context.Context, runID string) error {
	if err := validateKey(runID); err != nil {
		return fmt.Errorf("invalid run id: %w", err)
	}

	body := struct {
		RunID string `json:"run_id"`
	}{runID}

	if err := c.do(ctx, http.MethodPost, "runs/restore", nil, body, nil); err != nil {
		return fmt.Errorf("failed to restore run: %w", err)
	}

	return nil
}

// SearchRunsRequest selects and orders runs across experiments.
type SearchRunsRequest struct {
	ExperimentIDs []string `json:"experiment_ids"`
	// Filter is a search expression, e.g.
	// `metrics.accuracy > 0.9 and params.model = 'resnet'`.
	Filter      string   `json:"filter,omitempty"`
	RunViewType ViewType `json:"run_view_type,omitempty"`
	MaxResults  int64    `json:"max_results,omitempty"`
	OrderBy     []string `json:"order_by,omitempty"`
	PageToken   string   `json:"page_token,omitempty"`
}

// RunPage is one page of search results.
type RunPage struct {
	Runs          []Run  `json:"runs"`
	NextPageToken string `json:"next_page_token,omitempty"`
}

// SearchRuns returns one page of runs matching the request.
func (c *Client) SearchRuns(ctx context.Context, req SearchRunsRequest) (*RunPage, error) {
	if len(req.ExperimentIDs) == 0 {
		return nil, fmt.Errorf("at least one experiment id is required")
	}

	var page RunPage
	if err := c.do(ctx, http.MethodPost, "runs/search", nil, req, &page); err != nil {
		return nil, fmt.Errorf("failed to search runs: %w", err)
	}

	return &page, nil
}

// SearchAllRuns follows page tokens until the search is exhausted.
func (c *Client) SearchAllRuns(ctx context.Context, req SearchRunsRequest) ([]Run, error) {
	var all []Run
	for {
		page, err := c.SearchRuns(ctx, req)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Runs...)

		if page.NextPageToken == "" || page.NextPageToken == req.PageToken {
			return all, nil
		}
		req.PageToken = page.NextPageToken
	}
}
