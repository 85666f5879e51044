// Package config loads the CLI configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/hashicorp-forge/mlflow-client-go/pkg/mlflow"
)

// File is the CLI configuration from HCL.
//
//	tracking {
//	  url      = "https://mlflow.example.com"
//	  username = "alice"
//	  password = "..."
//	  timeout  = "30s"
//	}
//	log_level = "info"
type File struct {
	Tracking *TrackingConfig `hcl:"tracking,block"`
	LogLevel string          `hcl:"log_level,optional"`
}

// TrackingConfig is the tracking server connection block.
type TrackingConfig struct {
	URL       string `hcl:"url"`
	Username  string `hcl:"username,optional"`
	Password  string `hcl:"password,optional"`
	Token     string `hcl:"token,optional"`
	TLSVerify *bool  `hcl:"tls_verify,optional"`
	Timeout   string `hcl:"timeout,optional"`
}

// Load reads an HCL configuration file. An empty path falls back to the
// MLFLOW_CONFIG environment variable; when neither is set, Load returns a
// config built from the tracking environment variables.
func Load(path string) (*File, error) {
	if path == "" {
		path = os.Getenv("MLFLOW_CONFIG")
	}
	if path == "" {
		return &File{}, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", path)
	}

	var f File
	if err := hclsimple.DecodeFile(path, nil, &f); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}

	return &f, nil
}

// ClientConfig converts the file into a client config, filling unset
// fields from the environment.
func (f *File) ClientConfig() (*mlflow.Config, error) {
	cfg := mlflow.ConfigFromEnv()
	if f.Tracking == nil {
		return cfg, nil
	}

	if f.Tracking.URL != "" {
		cfg.TrackingURL = f.Tracking.URL
	}
	if f.Tracking.Username != "" {
		cfg.Username = f.Tracking.Username
	}
	if f.Tracking.Password != "" {
		cfg.Password = f.Tracking.Password
	}
	if f.Tracking.Token != "" {
		cfg.Token = f.Tracking.Token
	}
	if f.Tracking.TLSVerify != nil {
		cfg.TLSVerify = f.Tracking.TLSVerify
	}
	if f.Tracking.Timeout != "" {
		timeout, err := time.ParseDuration(f.Tracking.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", f.Tracking.Timeout, err)
		}
		cfg.Timeout = timeout
	}

	return cfg, nil
}
