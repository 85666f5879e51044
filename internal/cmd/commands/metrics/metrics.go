// Package metrics implements the `metrics` command group.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/mlflow-client-go/internal/cmd/base"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Inspect logged metrics"
}

func (c *Command) Help() string {
	return `Usage: mlflow metrics <subcommand> [options] [args]`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

// HistoryCommand prints the full series for one metric key.
type HistoryCommand struct {
	*base.Command
}

func (c *HistoryCommand) Synopsis() string {
	return "Show the full history of a metric"
}

func (c *HistoryCommand) Help() string {
	return `Usage: mlflow metrics history [options] <run-id> <metric-key>

  Prints every logged value of a metric, following pagination until the
  history is exhausted. One line per value: step, timestamp, value.`
}

func (c *HistoryCommand) Run(args []string) int {
	f := c.FlagSet("metrics history")
	if err := f.Parse(args); err != nil || len(f.Args()) != 2 {
		c.UI.Error(c.Help())
		return 1
	}

	client, err := c.Client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	metrics, err := client.GetMetricHistoryAll(context.Background(), f.Args()[0], f.Args()[1])
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	for _, m := range metrics {
		at := time.UnixMilli(m.Timestamp).UTC().Format(time.RFC3339)
		c.UI.Output(fmt.Sprintf("%d\t%s\t%g", m.Step, at, m.Value))
	}
	return 0
}
