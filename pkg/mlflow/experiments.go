package mlflow

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// CreateExperimentRequest holds the optional fields of experiment creation.
type CreateExperimentRequest struct {
	// ArtifactLocation is where the server stores run artifacts. Empty
	// lets the server pick its default location.
	ArtifactLocation string
	Tags             []ExperimentTag
}

// CreateExperiment creates a named experiment and returns its id. Names
// are unique per server; creating an existing name returns an error for
// which IsAlreadyExists reports true.
func (c *Client) CreateExperiment(ctx context.Context, name string, req *CreateExperimentRequest) (string, error) {
	if err := validateKey(name); err != nil {
		return "", fmt.Errorf("invalid experiment name: %w", err)
	}

	body := struct {
		Name             string          `json:"name"`
		ArtifactLocation string          `json:"artifact_location,omitempty"`
		Tags             []ExperimentTag `json:"tags,omitempty"`
	}{Name: name}
	if req != nil {
		body.ArtifactLocation = req.ArtifactLocation
		body.Tags = req.Tags
	}

	var resp struct {
		ExperimentID string `json:"experiment_id"`
	}
	if err := c.do(ctx, http.MethodPost, "experiments/create", nil, body, &resp); err != nil {
		return "", fmt.Errorf("failed to create experiment: %w", err)
	}

	return resp.ExperimentID, nil
}

// GetExperiment fetches an experiment by id.
func (c *Client) GetExperiment(ctx context.Context, experimentID string) (*Experiment, error) {
	if err := validateKey(experimentID); err != nil {
		return nil, fmt.Errorf("invalid experiment id: %w", err)
	}

	query := url.Values{}
	query.Set("experiment_id", experimentID)

	var resp struct {
		Experiment *Experiment `json:"experiment"`
	}
	if err := c.do(ctx, http.MethodGet, "experiments/get", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}

	return resp.Experiment, nil
}

// GetExperimentByName fetches an experiment by name. A missing name passes
// the server's RESOURCE_DOES_NOT_EXIST error through.
func (c *Client) GetExperimentByName(ctx context.Context, name string) (*Experiment, error) {
	if err := validateKey(name); err != nil {
		return nil, fmt.Errorf("invalid experiment name: %w", err)
	}

	query := url.Values{}
	query.Set("experiment_name", name)

	var resp struct {
		Experiment *Experiment `json:"experiment"`
	}
	if err := c.do(ctx, http.MethodGet, "experiments/get-by-name", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get experiment by name: %w", err)
	}

	return resp.Experiment, nil
}

// GetOrCreateExperiment fetches the experiment with the given name,
// creating it when it does not exist. A concurrent creation of the same
// name is resolved by re-fetching, so the call is idempotent.
func (c *Client) GetOrCreateExperiment(ctx context.Context, name string, req *CreateExperimentRequest) (*Experiment, error) {
	experiment, err := c.GetExperimentByName(ctx, name)
	if err == nil {
		return experiment, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	if _, err := c.CreateExperiment(ctx, name, req); err != nil {
		// Lost a creation race - the experiment exists now.
		if !IsAlreadyExists(err) {
			return nil, err
		}
	}

	return c.GetExperimentByName(ctx, name)
}

// UpdateExperiment renames an experiment.
func (c *Client) UpdateExperiment(ctx context.Context, experimentID, newName string) error {
	if err := validateKey(experimentID); err != nil {
		return fmt.Errorf("invalid experiment id: %w", err)
	}
	if err := validateKey(newName); err != nil {
		return fmt.Errorf("invalid experiment name: %w", err)
	}

	body := struct {
		ExperimentID string `json:"experiment_id"`
		NewName      string `json:"new_name"`
	}{experimentID, newName}

	if err := c.do(ctx, http.MethodPost, "experiments/update", nil, body, nil); err != nil {
		return fmt.Errorf("failed to update experiment: %w", err)
	}

	return nil
}

// DeleteExperiment marks an experiment deleted. The server owns retention;
// deleted experiments remain fetchable with ViewDeletedOnly until purged.
func (c *Client) DeleteExperiment(ctx context.Context, experimentID string) error {
	if err := validateKey(experimentID); err != nil {
		return fmt.Errorf("invalid experiment id: %w", err)
	}

	body := struct {
		ExperimentID string `json:"experiment_id"`
	}{experimentID}

	if err := c.do(ctx, http.MethodPost, "experiments/delete", nil, body, nil); err != nil {
		return fmt.Errorf("failed to delete experiment: %w", err)
	}

	return nil
}

// RestoreExperiment restores a deleted experiment.
func (c *Client) RestoreExperiment(ctx context.Context, experimentID string) error {
	if err := validateKey(experimentID); err != nil {
		return fmt.Errorf("invalid experiment id: %w", err)
	}

	body := struct {
		ExperimentID string `json:"experiment_id"`
	}{experimentID}

	if err := c.do(ctx, http.MethodPost, "experiments/restore", nil, body, nil); err != nil {
		return fmt.Errorf("failed to restore experiment: %w", err)
	}

	return nil
}

// SetExperimentTag sets a tag on an experiment.
func (c *Client) SetExperimentTag(ctx context.Context, experimentID, key, value string) error {
	if err := validateKey(experimentID); err != nil {
		return fmt.Errorf("invalid experiment id: %w", err)
	}
	if err := validateKey(key); err != nil {
		return fmt.Errorf("invalid tag key: %w", err)
	}
	if err := validateTagValue(value); err != nil {
		return fmt.Errorf("invalid tag value: %w", err)
	}

	body := struct {
		ExperimentID string `json:"experiment_id"`
		Key          string `json:"key"`
		Value        string `json:"value"`
	}{experimentID, key, value}

	if err := c.do(ctx, http.MethodPost, "experiments/set-experiment-tag", nil, body, nil); err != nil {
		return fmt.Errorf("failed to set experiment tag: %w", err)
	}

	return nil
}

// SearchExperimentsRequest selects and orders experiments.
type SearchExperimentsRequest struct {
	// Filter is a search expression, e.g. `name LIKE 'nightly-%'`.
	Filter string `json:"filter,omitempty"`
	// ViewType defaults to ACTIVE_ONLY on the server.
	ViewType   ViewType `json:"view_type,omitempty"`
	MaxResults int64    `json:"max_results,omitempty"`
	OrderBy    []string `json:"order_by,omitempty"`
	PageToken  string   `json:"page_token,omitempty"`
}

// ExperimentPage is one page of search results.
type ExperimentPage struct {
	Experiments   []Experiment `json:"experiments"`
	NextPageToken string       `json:"next_page_token,omitempty"`
}

// SearchExperiments returns one page of experiments matching the request.
func (c *Client) SearchExperiments(ctx context.Context, req SearchExperimentsRequest) (*ExperimentPage, error) {
	var page ExperimentPage
	if err := c.do(ctx, http.MethodPost, "experiments/search", nil, req, &page); err != nil {
		return nil, fmt.Errorf("failed to search experiments: %w", err)
	}

	return &page, nil
}

// SearchAllExperiments follows page tokens until the search is exhausted.
func (c *Client) SearchAllExperiments(ctx context.Context, req SearchExperimentsRequest) ([]Experiment, error) {
	var all []Experiment
	for {
		page, err := c.SearchExperiments(ctx, req)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Experiments...)

		if page.NextPageToken == "" || page.NextPageToken == req.PageToken {
			return all, nil
		}
		req.PageToken = page.NextPageToken
	}
}
