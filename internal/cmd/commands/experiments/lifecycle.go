package experiments

import (
	"context"
	"fmt"

	"github.com/hashicorp-forge/mlflow-client-go/internal/cmd/base"
)

// RenameCommand renames an experiment.
type RenameCommand struct {
	*base.Command
}

func (c *RenameCommand) Synopsis() string {
	return "Rename an experiment"
}

func (c *RenameCommand) Help() string {
	return `Usage: mlflow experiments rename [options] <experiment-id> <new-name>`
}

func (c *RenameCommand) Run(args []string) int {
	f := c.FlagSet("experiments rename")
	if err := f.Parse(args); err != nil || len(f.Args()) != 2 {
		c.UI.Error(c.Help())
		return 1
	}

	client, err := c.Client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	if err := client.UpdateExperiment(context.Background(), f.Args()[0], f.Args()[1]); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}

// DeleteCommand marks an experiment deleted.
type DeleteCommand struct {
	*base.Command
}

func (c *DeleteCommand) Synopsis() string {
	return "Delete an experiment"
}

func (c *DeleteCommand) Help() string {
	return `Usage: mlflow experiments delete [options] <experiment-id>

  Marks an experiment deleted. Retention is owned by the server; restore
  with 'mlflow experiments restore' until the server purges it.`
}

func (c *DeleteCommand) Run(args []string) int {
	f := c.FlagSet("experiments delete")
	if err := f.Parse(args); err != nil || len(f.Args()) != 1 {
		c.UI.Error(c.Help())
		return 1
	}

	client, err := c.Client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	if err := client.DeleteExperiment(context.Background(), f.Args()[0]); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}

// RestoreCommand restores a deleted experiment.
type RestoreCommand struct {
	*base.Command
}

func (c *RestoreCommand) Synopsis() string {
	return "Restore a deleted experiment"
}

func (c *RestoreCommand) Help() string {
	return `Usage: mlflow experiments restore [options] <experiment-id>`
}

func (c *RestoreCommand) Run(args []string) int {
	f := c.FlagSet("experiments restore")
	if err := f.Parse(args); err != nil || len(f.Args()) != 1 {
		c.UI.Error(c.Help())
		return 1
	}

	client, err := c.Client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	if err := client.RestoreExperiment(context.Background(), f.Args()[0]); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	return 0
}

// SetTagCommand sets a tag on an experiment.
type SetTagCommand struct {
	*base.Command
}

func (c *SetTagCommand) Synopsis() string {
	return "Set a tag on an experiment"
}

func (c *SetTagCommand) Help() string {
	return `Usage: mlflow experiments set-tag [options] <experiment-id> <key> <value>`
}

func (c *SetTagCommand) Run(args []string) int {
	f := c.FlagSet("experiments set-tag")
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
	if err := client.SetExperimentTag(context.Background(), rest[0], rest[1], rest[2]); err != nil {
		c.UI.Error(fmt.Sprintf("failed to set tag: %s", err))
		return 1
	}
	return 0
}
