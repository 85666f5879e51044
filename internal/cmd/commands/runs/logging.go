package runs

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp-forge/mlflow-client-go/internal/cmd/base"
	"github.com/hashicorp-forge/mlflow-client-go/pkg/mlflow"
)

// FinishCommand ends a run.
type FinishCommand struct {
	*base.Command

	flagStatus string
}

func (c *FinishCommand) Synopsis() string {
	return "Finish a run"
}

func (c *FinishCommand) Help() string {
	return `Usage: mlflow runs finish [options] <run-id>

  Marks a run finished with the end time set to now.

Options:

  -status=<status>  Terminal status: FINISHED (default), FAILED, or KILLED.`
}

func (c *FinishCommand) Run(args []string) int {
	f := c.FlagSet("runs finish")
	f.StringVar(&c.flagStatus, "status", "", "")
	if err := f.Parse(args); err != nil || len(f.Args()) != 1 {
		c.UI.Error(c.Help())
		return 1
	}

	client, err := c.Client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	status := mlflow.RunStatus(strings.ToUpper(c.flagStatus))
	info, err := client.EndRun(context.Background(), f.Args()[0], status)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	c.UI.Output(fmt.Sprintf("%s\t%s", info.RunID, info.Status))
	return 0
}

// DeleteCommand marks a run deleted.
type DeleteCommand struct {
	*base.Command
}

func (c *DeleteCommand) Synopsis() string {
	return "Delete a run"
}

func (c *DeleteCommand) Help() string {
	return `Usage: mlflow runs delete [options] <run-id>`
}

func (c *DeleteCommand) Run(args []string) int {
	f := c.FlagSet("runs delete")
	if err := f.Parse(args); err != nil || len(f.Args()) != 1 {
		c.UI.Error(c.Help())
		return 1
	}

	client, err := c.Client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	if err := client.DeleteRun(context.Background(), f.Args()[0]); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}

// RestoreCommand restores a deleted run.
type RestoreCommand struct {
	*base.Command
}

func (c *RestoreCommand) Synopsis() string {
	return "Restore a deleted run"
}

func (c *RestoreCommand) Help() string {
	return `Usage: mlflow runs restore [options] <run-id>`
}

func (c *RestoreCommand) Run(args []string) int {
	f := c.FlagSet("runs restore")
	if err := f.Parse(args); err != nil || len(f.Args()) != 1 {
		c.UI.Error(c.Help())
		return 1
	}

	client, err := c.Client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	if err := client.RestoreRun(context.Background(), f.Args()[0]); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}

// SetTagCommand sets a tag on a run.
type SetTagCommand struct {
	*base.Command
}

func (c *SetTagCommand) Synopsis() string {
	return "Set a tag on a run"
}

func (c *SetTagCommand) Help() string {
	return `Usage: mlflow runs set-tag [options] <run-id> <key> <value>`
}

func (c *SetTagCommand) Run(args []string) int {
	f := c.FlagSet("runs set-tag")
	if err := f.Parse(args); err != nil || len(f.Args()) != 3 {
		c.UI.Error(c.Help())
		return 1
	}

	client, err := c.Client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	rest := f.Args()
	if err := client.SetTag(context.Background(), rest[0], rest[1], rest[2]); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}

// LogMetricCommand logs one metric value.
type LogMetricCommand struct {
	*base.Command

	flagStep int64
}

func (c *LogMetricCommand) Synopsis() string {
	return "Log a metric value to a run"
}

func (c *LogMetricCommand) Help() string {
	return `Usage: mlflow runs log-metric [options] <run-id> <key> <value>

  Logs one metric value with the timestamp set to now.

Options:

  -step=<n>  Training step for this value. Default 0.`
}

func (c *LogMetricCommand) Run(args []string) int {
	f := c.FlagSet("runs log-metric")
	f.Int64Var(&c.flagStep, "step", 0, "")
	if err := f.Parse(args); err != nil || len(f.Args()) != 3 {
		c.UI.Error(c.Help())
		return 1
	}
	rest := f.Args()

	value, err := strconv.ParseFloat(rest[2], 64)
	if err != nil {
		c.UI.Error(fmt.Sprintf("invalid metric value %q: %s", rest[2], err))
		return 1
	}

	client, err := c.Client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	err = client.LogMetric(context.Background(), rest[0], mlflow.Metric{
		Key:       rest[1],
		Value:     value,
		Timestamp: time.Now().UnixMilli(),
		Step:      c.flagStep,
	})
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}

// LogParamCommand logs one param.
type LogParamCommand struct {
	*base.Command
}

func (c *LogParamCommand) Synopsis() string {
	return "Log a param to a run"
}

func (c *LogParamCommand) Help() string {
	return `Usage: mlflow runs log-param [options] <run-id> <key> <value>`
}

func (c *LogParamCommand) Run(args []string) int {
	f := c.FlagSet("runs log-param")
	if err := f.Parse(args); err != nil || len(f.Args()) != 3 {
		c.UI.Error(c.Help())
		return 1
	}

	client, err := c.Client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	rest := f.Args()
	if err := client.LogParam(context.Background(), rest[0], rest[1], rest[2]); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}
