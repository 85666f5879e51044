package mlflow

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// User and experiment permission operations require a tracking server
// running with auth enabled. On servers without it these endpoints 404.

// CreateUser creates an account and returns its record.
func (c *Client) CreateUser(ctx context.Context, username, password string) (*User, error) {
	if err := validateKey(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}

	var resp struct {
		User *User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "users/create", nil, body, &resp); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return resp.User, nil
}

// GetUser fetches an account by username.
func (c *Client) GetUser(ctx context.Context, username string) (*User, error) {
	if err := validateKey(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}

	query := url.Values{}
	query.Set("username", username)

	var resp struct {
		User *User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "users/get", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return resp.User, nil
}

// UpdateUserPassword changes an account's password.
func (c *Client) UpdateUserPassword(ctx context.Context, username, password string) error {
	if err := validateKey(username); err != nil {
		return fmt.Errorf("invalid username: %w", err)
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}

	if err := c.do(ctx, http.MethodPatch, "users/update-password", nil, body, nil); err != nil {
		return fmt.Errorf("failed to update user password: %w", err)
	}

	return nil
}

// UpdateUserAdmin grants or revokes admin on an account.
func (c *Client) UpdateUserAdmin(ctx context.Context, username string, isAdmin bool) error {
	if err := validateKey(username); err != nil {
		return fmt.Errorf("invalid username: %w", err)
	}

	body := struct {
		Username string `json:"username"`
		IsAdmin  bool   `json:"is_admin"`
	}{username, isAdmin}

	if err := c.do(ctx, http.MethodPatch, "users/update-admin", nil, body, nil); err != nil {
		return fmt.Errorf("failed to update user admin flag: %w", err)
	}

	return nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, username string) error {
	if err := validateKey(username); err != nil {
		return fmt.Errorf("invalid username: %w", err)
	}

	body := struct {
		Username string `json:"username"`
	}{username}

	if err := c.do(ctx, http.MethodDelete, "users/delete", nil, body, nil); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}

func validatePermission(permission string) error {
	switch permission {
	case PermissionRead, PermissionEdit, PermissionManage, PermissionNoPermissions:
		return nil
	}
	return fmt.Errorf("unknown permission %q", permission)
}

// CreateExperimentPermission grants a user a permission level on an
// experiment.
func (c *Client) CreateExperimentPermission(ctx context.Context, experimentID, username, permission string) (*ExperimentPermission, error) {
	if err := validateKey(experimentID); err != nil {
		return nil, fmt.Errorf("invalid experiment id: %w", err)
	}
	if err := validateKey(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if err := validatePermission(permission); err != nil {
		return nil, err
	}

	body := struct {
		ExperimentID string `json:"experiment_id"`
		Username     string `json:"username"`
		Permission   string `json:"permission"`
	}{experimentID, username, permission}

	var resp struct {
		ExperimentPermission *ExperimentPermission `json:"experiment_permission"`
	}
	if err := c.do(ctx, http.MethodPost, "experiments/permissions/create", nil, body, &resp); err != nil {
		return nil, fmt.Errorf("failed to create experiment permission: %w", err)
	}

	return resp.ExperimentPermission, nil
}

// GetExperimentPermission fetches a user's permission on an experiment.
func (c *Client) GetExperimentPermission(ctx context.Context, experimentID, username string) (*ExperimentPermission, error) {
	if err := validateKey(experimentID); err != nil {
		return nil, fmt.Errorf("invalid experiment id: %w", err)
	}
	if err := validateKey(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}

	query := url.Values{}
	query.Set("experiment_id", experimentID)
	query.Set("username", username)

	var resp struct {
		ExperimentPermission *ExperimentPermission `json:"experiment_permission"`
	}
	if err := c.do(ctx, http.MethodGet, "experiments/permissions/get", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get experiment permission: %w", err)
	}

	return resp.ExperimentPermission, nil
}

// UpdateExperimentPermission changes a user's permission level.
func (c *Client) UpdateExperimentPermission(ctx context.Context, experimentID, username, permission string) error {
	if err := validateKey(experimentID); err != nil {
		return fmt.Errorf("invalid experiment id: %w", err)
	}
	if err := validateKey(username); err != nil {
		return fmt.Errorf("invalid username: %w", err)
	}
	if err := validatePermission(permission); err != nil {
		return err
	}

	body := struct {
		ExperimentID string `json:"experiment_id"`
		Username     string `json:"username"`
		Permission   string `json:"permission"`
	}{experimentID, username, permission}

	if err := c.do(ctx, http.MethodPatch, "experiments/permissions/update", nil, body, nil); err != nil {
		return fmt.Errorf("failed to update experiment permission: %w", err)
	}

	return nil
}

// DeleteExperimentPermission revokes a user's permission on an experiment.
func (c *Client) DeleteExperimentPermission(ctx context.Context, experimentID, username string) error {
	if err := validateKey(experimentID); err != nil {
		return fmt.Errorf("invalid experiment id: %w", err)
	}
	if err := validateKey(username); err != nil {
		return fmt.Errorf("invalid username: %w", err)
	}

	body := struct {
		ExperimentID string `json:"experiment_id"`
		Username     string `json:"username"`
	}{experimentID, username}

	if err := c.do(ctx, http.MethodDelete, "experiments/permissions/delete", nil, body, nil); err != nil {
		return fmt.Errorf("failed to delete experiment permission: %w", err)
	}

	return nil
}
