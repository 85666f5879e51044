// Package base carries the state shared by every CLI command.
package base

import (
	"flag"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/mlflow-client-go/internal/config"
	"github.com/hashicorp-forge/mlflow-client-go/pkg/mlflow"
)

// Command is embedded by all CLI commands.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui

	flagConfig string
}

// FlagSet returns a flag set with the global flags registered.
func (c *Command) FlagSet(name string) *flag.FlagSet {
	f := flag.NewFlagSet(name, flag.ContinueOnError)
	f.Usage = func() {}
	f.StringVar(&c.flagConfig, "config", "",
		"Path to an HCL configuration file (default: $MLFLOW_CONFIG)")
	return f
}

// Client builds a tracking client from the configuration file, the
// environment, or both.
func (c *Command) Client() (*mlflow.Client, error) {
	f, err := config.Load(c.flagConfig)
	if err != nil {
		return nil, err
	}

	cfg, err := f.ClientConfig()
	if err != nil {
		return nil, err
	}
	cfg.Logger = c.Log

	client, err := mlflow.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("set a tracking server with -config or MLFLOW_TRACKING_URI: %w", err)
	}

	return client, nil
}
