package mlflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient creates a client pointed at a mock server.
func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()

	client, err := NewClient(&Config{
		TrackingURL: serverURL,
		Timeout:     10 * time.Second,
		Logger:      hclog.NewNullLogger(),
	})
	require.NoError(t, err)

	return client
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(&Config{TrackingURL: ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid tracking config")

	_, err = NewClient(&Config{TrackingURL: "ftp://mlflow.example.com"})
	require.Error(t, err)
}

func TestClient_BearerTokenWinsOverBasicAuth(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"experiment": map[string]any{"experiment_id": "1"}})
	}))
	defer mockServer.Close()

	client, err := NewClient(&Config{
		TrackingURL: mockServer.URL,
		Username:    "alice",
		Password:    "hunter2",
		Token:       "secret-token",
		Logger:      hclog.NewNullLogger(),
	})
	require.NoError(t, err)

	_, err = client.GetExperiment(context.Background(), "1")
	require.NoError(t, err)
}

func TestClient_BasicAuthPassThrough(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "alice", user)
		assert.Equal(t, "hunter2", pass)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"experiment": map[string]any{"experiment_id": "1"}})
	}))
	defer mockServer.Close()

	client, err := NewClient(&Config{
		TrackingURL: mockServer.URL,
		Username:    "alice",
		Password:    "hunter2",
		Logger:      hclog.NewNullLogger(),
	})
	require.NoError(t, err)

	_, err = client.GetExperiment(context.Background(), "1")
	require.NoError(t, err)
}

func TestClient_APIErrorDecoding(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"error_code": "RESOURCE_DOES_NOT_EXIST",
			"message":    "Could not find experiment with ID 42",
		})
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	_, err := client.GetExperiment(context.Background(), "42")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsAlreadyExists(err))
	assert.Contains(t, err.Error(), "RESOURCE_DOES_NOT_EXIST")
	assert.Contains(t, err.Error(), "Could not find experiment with ID 42")
}

func TestClient_NonJSONErrorBody(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	_, err := client.GetRun(context.Background(), "abc")
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "status 502")
	assert.Contains(t, err.Error(), "upstream unavailable")
}

func TestClient_TrailingSlashTrimmed(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/2.0/mlflow/experiments/get", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"experiment": map[string]any{"experiment_id": "1"}})
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL+"/")

	_, err := client.GetExperiment(context.Background(), "1")
	require.NoError(t, err)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("MLFLOW_TRACKING_URI", "https://mlflow.example.com")
	t.Setenv("MLFLOW_TRACKING_TOKEN", "tok")
	t.Setenv("MLFLOW_TRACKING_INSECURE_TLS", "true")

	cfg := ConfigFromEnv()
	assert.Equal(t, "https://mlflow.example.com", cfg.TrackingURL)
	assert.Equal(t, "tok", cfg.Token)
	require.NotNil(t, cfg.TLSVerify)
	assert.False(t, *cfg.TLSVerify)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}
