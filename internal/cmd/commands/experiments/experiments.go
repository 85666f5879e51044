// Package experiments implements the `experiments` command group.
package experiments

import (
	"context"
	"fmt"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/mlflow-client-go/internal/cmd/base"
	"github.com/hashicorp-forge/mlflow-client-go/pkg/mlflow"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Manage experiments on the tracking server"
}

func (c *Command) Help() string {
	return `Usage: mlflow experiments <subcommand> [options] [args]

  This command groups subcommands for working with experiments.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

// ListCommand searches experiments.
type ListCommand struct {
	*base.Command

	flagFilter  string
	flagView    string
	flagOrderBy string
	flagMax     int64
}

func (c *ListCommand) Synopsis() string {
	return "List experiments"
}

func (c *ListCommand) Help() string {
	return `Usage: mlflow experiments list [options]

  Lists experiments, following pagination until the search is exhausted.

Options:

  -filter=<expr>    Search filter, e.g. "name LIKE 'nightly-%'".
  -view=<type>      ACTIVE_ONLY (default), DELETED_ONLY, or ALL.
  -order-by=<key>   Ordering clause, e.g. "creation_time DESC".
  -max=<n>          Page size requested from the server.`
}

func (c *ListCommand) Run(args []string) int {
	f := c.FlagSet("experiments list")
	f.StringVar(&c.flagFilter, "filter", "", "")
	f.StringVar(&c.flagView, "view", "", "")
	f.StringVar(&c.flagOrderBy, "order-by", "", "")
	f.Int64Var(&c.flagMax, "max", 0, "")
	if err := f.Parse(args); err != nil {
		c.UI.Error(c.Help())
		return 1
	}

	client, err := c.Client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	req := mlflow.SearchExperimentsRequest{
		Filter:     c.flagFilter,
		ViewType:   mlflow.ViewType(strings.ToUpper(c.flagView)),
		MaxResults: c.flagMax,
	}
	if c.flagOrderBy != "" {
		req.OrderBy = []string{c.flagOrderBy}
	}

	experiments, err := client.SearchAllExperiments(context.Background(), req)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	for _, e := range experiments {
		c.UI.Output(fmt.Sprintf("%s\t%s\t%s", e.ExperimentID, e.LifecycleStage, e.Name))
	}
	return 0
}

// GetCommand fetches one experiment by id or name.
type GetCommand struct {
	*base.Command

	flagName string
}

func (c *GetCommand) Synopsis() string {
	return "Show one experiment"
}

func (c *GetCommand) Help() string {
	return `Usage: mlflow experiments get [options] <experiment-id>

  Shows an experiment. With -name, looks the experiment up by name instead
  of id.

Options:

  -name=<name>   Look up by experiment name.`
}

func (c *GetCommand) Run(args []string) int {
	f := c.FlagSet("experiments get")
	f.StringVar(&c.flagName, "name", "", "")
	if err := f.Parse(args); err != nil {
		c.UI.Error(c.Help())
		return 1
	}

	client, err := c.Client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	var experiment *mlflow.Experiment
	switch {
	case c.flagName != "":
		experiment, err = client.GetExperimentByName(context.Background(), c.flagName)
	case len(f.Args()) == 1:
		experiment, err = client.GetExperiment(context.Background(), f.Args()[0])
	default:
		c.UI.Error(c.Help())
		return 1
	}
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	c.UI.Output(fmt.Sprintf("ID:                %s", experiment.ExperimentID))
	c.UI.Output(fmt.Sprintf("Name:              %s", experiment.Name))
	c.UI.Output(fmt.Sprintf("Lifecycle stage:   %s", experiment.LifecycleStage))
	c.UI.Output(fmt.Sprintf("Artifact location: %s", experiment.ArtifactLocation))
	for _, tag := range experiment.Tags {
		c.UI.Output(fmt.Sprintf("Tag:               %s=%s", tag.Key, tag.Value))
	}
	return 0
}

// CreateCommand creates an experiment (idempotently with -get-or-create).
type CreateCommand struct {
	*base.Command

	flagArtifactLocation string
	flagGetOrCreate      bool
	flagTags             stringSliceFlag
}

func (c *CreateCommand) Synopsis() string {
	return "Create an experiment"
}

func (c *CreateCommand) Help() string {
	return `Usage: mlflow experiments create [options] <name>

  Creates a named experiment and prints its id.

Options:

  -artifact-location=<uri>  Where the server stores run artifacts.
  -tag=<key=value>          Experiment tag. May be repeated.
  -get-or-create            Reuse an existing experiment with this name
                            instead of failing.`
}

func (c *CreateCommand) Run(args []string) int {
	f := c.FlagSet("experiments create")
	f.StringVar(&c.flagArtifactLocation, "artifact-location", "", "")
	f.BoolVar(&c.flagGetOrCreate, "get-or-create", false, "")
	f.Var(&c.flagTags, "tag", "")
	if err := f.Parse(args); err != nil || len(f.Args()) != 1 {
		c.UI.Error(c.Help())
		return 1
	}
	name := f.Args()[0]

	tags, err := c.flagTags.experimentTags()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	client, err := c.Client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	req := &mlflow.CreateExperimentRequest{
		ArtifactLocation: c.flagArtifactLocation,
		Tags:             tags,
	}

	if c.flagGetOrCreate {
		experiment, err := client.GetOrCreateExperiment(context.Background(), name, req)
		if err != nil {
			c.UI.Error(err.Error())
			return 1
		}
		c.UI.Output(experiment.ExperimentID)
		return 0
	}

	id, err := client.CreateExperiment(context.Background(), name, req)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	c.UI.Output(id)
	return 0
}

// stringSliceFlag collects repeated -tag key=value flags.
type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func (s stringSliceFlag) pairs() ([][2]string, error) {
	out := make([][2]string, 0, len(s))
	for _, raw := range s {
		key, value, ok := strings.Cut(raw, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid tag %q, expected key=value", raw)
		}
		out = append(out, [2]string{key, value})
	}
	return out, nil
}

func (s stringSliceFlag) experimentTags() ([]mlflow.ExperimentTag, error) {
	pairs, err := s.pairs()
	if err != nil {
		return nil, err
	}
	tags := make([]mlflow.ExperimentTag, len(pairs))
	for i, p := range pairs {
		tags[i] = mlflow.ExperimentTag{Key: p[0], Value: p[1]}
	}
	return tags, nil
}
