package mlflow

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/spf13/afero"
)

// ArtifactPage is one page of an artifact listing.
type ArtifactPage struct {
	RootURI       string     `json:"root_uri,omitempty"`
	Files         []FileInfo `json:"files"`
	NextPageToken string     `json:"next_page_token,omitempty"`
}

// ListArtifacts lists artifacts under a run-relative path. An empty path
// lists the artifact root.
func (c *Client) ListArtifacts(ctx context.Context, runID, path, pageToken string) (*ArtifactPage, error) {
	if err := validateKey(runID); err != nil {
		return nil, fmt.Errorf("invalid run id: %w", err)
	}

	query := url.Values{}
	query.Set("run_id", runID)
	if path != "" {
		query.Set("path", path)
	}
	if pageToken != "" {
		query.Set("page_token", pageToken)
	}

	var page ArtifactPage
	if err := c.do(ctx, http.MethodGet, "artifacts/list", query, nil, &page); err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	return &page, nil
}

// ListAllArtifacts follows page tokens until the listing is exhausted.
func (c *Client) ListAllArtifacts(ctx context.Context, runID, path string) ([]FileInfo, error) {
	var all []FileInfo
	var token string
	for {
		page, err := c.ListArtifacts(ctx, runID, path, token)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Files...)

		if page.NextPageToken == "" || page.NextPageToken == token {
			return all, nil
		}
		token = page.NextPageToken
	}
}

// DownloadArtifact streams one artifact's bytes from the tracking server
// to dest on the given filesystem, creating parent directories as needed.
func (c *Client) DownloadArtifact(ctx context.Context, runID, path string, fs afero.Fs, dest string) error {
	if err := validateKey(runID); err != nil {
		return fmt.Errorf("invalid run id: %w", err)
	}
	if path == "" {
		return fmt.Errorf("artifact path is required")
	}

	query := url.Values{}
	query.Set("run_uuid", runID)
	query.Set("path", path)

	body, err := c.rawGet(ctx, "/get-artifact", query)
	if err != nil {
		return fmt.Errorf("failed to download artifact: %w", err)
	}
	defer body.Close()

	if dir := filepath.Dir(dest); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create destination directory: %w", err)
		}
	}

	out, err := fs.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, body); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}

	return nil
}
