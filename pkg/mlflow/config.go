package mlflow

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
)

// Config contains configuration for the tracking client.
//
// Example configuration (HCL):
//
//	tracking {
//	  url      = "https://mlflow.example.com"
//	  token    = env("MLFLOW_TRACKING_TOKEN")
//	  timeout  = "30s"
//	}
type Config struct {
	// TrackingURL is the base URL of the tracking server.
	// Example: "https://mlflow.example.com"
	TrackingURL string `hcl:"url" json:"url"`

	// Username and Password are passed through as HTTP basic auth.
	Username string `hcl:"username,optional" json:"username,omitempty"`
	Password string `hcl:"password,optional" json:"-"`

	// Token is passed through as a Bearer token. When both a token and
	// basic auth credentials are set, the token wins.
	Token string `hcl:"token,optional" json:"-"`

	// TLSVerify controls TLS certificate verification.
	// Set to false only for development with self-signed certs.
	TLSVerify *bool `hcl:"tls_verify,optional" json:"tlsVerify,omitempty"`

	// Timeout for API requests.
	// Default: 30 seconds.
	Timeout time.Duration `hcl:"timeout,optional" json:"timeout,omitempty"`

	// Logger receives request-level debug logging. Optional, never set
	// from config files.
	Logger hclog.Logger `json:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	tlsVerify := true
	return &Config{
		TLSVerify: &tlsVerify,
		Timeout:   30 * time.Second,
	}
}

// ConfigFromEnv builds a Config from the conventional tracking environment
// variables: MLFLOW_TRACKING_URI, MLFLOW_TRACKING_USERNAME,
// MLFLOW_TRACKING_PASSWORD, MLFLOW_TRACKING_TOKEN, and
// MLFLOW_TRACKING_INSECURE_TLS.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	cfg.TrackingURL = os.Getenv("MLFLOW_TRACKING_URI")
	cfg.Username = os.Getenv("MLFLOW_TRACKING_USERNAME")
	cfg.Password = os.Getenv("MLFLOW_TRACKING_PASSWORD")
	cfg.Token = os.Getenv("MLFLOW_TRACKING_TOKEN")

	if os.Getenv("MLFLOW_TRACKING_INSECURE_TLS") == "true" {
		tlsVerify := false
		cfg.TLSVerify = &tlsVerify
	}

	return cfg
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TrackingURL, validation.Required, validation.By(checkTrackingURL)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

func checkTrackingURL(value interface{}) error {
	raw, _ := value.(string)

	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errSchemeRequired
	}

	return nil
}

// NewHTTPClient creates a configured HTTP client for this config.
func (c *Config) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	if c.TLSVerify != nil && !*c.TLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	return &http.Client{
		Timeout:   c.Timeout,
		Transport: transport,
	}
}
