// Package versioncmd implements the `version` command.
package versioncmd

import (
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/mlflow-client-go/internal/version"
)

type Command struct {
	UI cli.Ui
}

func (c *Command) Synopsis() string {
	return "Print the CLI version"
}

func (c *Command) Help() string {
	return `Usage: mlflow version`
}

func (c *Command) Run(args []string) int {
	c.UI.Output(version.Version)
	return 0
}
