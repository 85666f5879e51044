// Package runs implements the `runs` command group.
package runs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/mlflow-client-go/internal/cmd/base"
	"github.com/hashicorp-forge/mlflow-client-go/pkg/mlflow"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Manage runs on the tracking server"
}

func (c *Command) Help() string {
	return `Usage: mlflow runs <subcommand> [options] [args]

  This command groups subcommands for working with runs.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

// ListCommand searches runs within experiments.
type ListCommand struct {
	*base.Command

	flagFilter        string
	flagView          string
	flagOrderBy       string
	flagMax           int64
	flagStartedAfter  string
	flagStartedBefore string
}

func (c *ListCommand) Synopsis() string {
	return "List runs in one or more experiments"
}

func (c *ListCommand) Help() string {
	return `Usage: mlflow runs list [options] <experiment-id> [<experiment-id>...]

  Lists runs, following pagination until the search is exhausted.

Options:

  -filter=<expr>          Search filter, e.g. "metrics.accuracy > 0.9".
  -view=<type>            ACTIVE_ONLY (default), DELETED_ONLY, or ALL.
  -order-by=<key>         Ordering clause, e.g. "attributes.start_time DESC".
  -max=<n>                Page size requested from the server.
  -started-after=<time>   Only runs started after this time. Accepts most
                          formats, e.g. "2024-04-25", "Apr 25 5pm".
  -started-before=<time>  Only runs started before this time.`
}

func (c *ListCommand) Run(args []string) int {
	f := c.FlagSet("runs list")
	f.StringVar(&c.flagFilter, "filter", "", "")
	f.StringVar(&c.flagView, "view", "", "")
	f.StringVar(&c.flagOrderBy, "order-by", "", "")
	f.Int64Var(&c.flagMax, "max", 0, "")
	f.StringVar(&c.flagStartedAfter, "started-after", "", "")
	f.StringVar(&c.flagStartedBefore, "started-before", "", "")
	if err := f.Parse(args); err != nil || len(f.Args()) == 0 {
		c.UI.Error(c.Help())
		return 1
	}

	filter, err := c.buildFilter()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	client, err := c.Client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	req := mlflow.SearchRunsRequest{
		ExperimentIDs: f.Args(),
		Filter:        filter,
		RunViewType:   mlflow.ViewType(strings.ToUpper(c.flagView)),
		MaxResults:    c.flagMax,
	}
	if c.flagOrderBy != "" {
		req.OrderBy = []string{c.flagOrderBy}
	}

	runs, err := client.SearchAllRuns(context.Background(), req)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	for _, r := range runs {
		started := time.UnixMilli(r.Info.StartTime).UTC().Format(time.RFC3339)
		c.UI.Output(fmt.Sprintf("%s\t%s\t%s\t%s",
			r.Info.RunID, r.Info.Status, started, r.Info.RunName))
	}
	return 0
}

// buildFilter folds the time flags into the filter expression; explicit
// -filter clauses are ANDed in front.
func (c *ListCommand) buildFilter() (string, error) {
	clauses := []string{}
	if c.flagFilter != "" {
		clauses = append(clauses, c.flagFilter)
	}

	if c.flagStartedAfter != "" {
		at, err := dateparse.ParseAny(c.flagStartedAfter)
		if err != nil {
			return "", fmt.Errorf("invalid -started-after time %q: %w", c.flagStartedAfter, err)
		}
		clauses = append(clauses, fmt.Sprintf("attributes.start_time > %d", at.UnixMilli()))
	}
	if c.flagStartedBefore != "" {
		at, err := dateparse.ParseAny(c.flagStartedBefore)
		if err != nil {
			return "", fmt.Errorf("invalid -started-before time %q: %w", c.flagStartedBefore, err)
		}
		clauses = append(clauses, fmt.Sprintf("attributes.start_time < %d", at.UnixMilli()))
	}

	return strings.Join(clauses, " and "), nil
}

// GetCommand shows one run.
type GetCommand struct {
	*base.Command
}

func (c *GetCommand) Synopsis() string {
	return "Show one run"
}

func (c *GetCommand) Help() string {
	return `Usage: mlflow runs get [options] <run-id>

  Shows a run's metadata and its latest metrics, params, and tags.`
}

func (c *GetCommand) Run(args []string) int {
	f := c.FlagSet("runs get")
	if err := f.Parse(args); err != nil || len(f.Args()) != 1 {
		c.UI.Error(c.Help())
		return 1
	}

	client, err := c.Client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	run, err := client.GetRun(context.Background(), f.Args()[0])
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	info := run.Info
	c.UI.Output(fmt.Sprintf("Run ID:       %s", info.RunID))
	c.UI.Output(fmt.Sprintf("Name:         %s", info.RunName))
	c.UI.Output(fmt.Sprintf("Experiment:   %s", info.ExperimentID))
	c.UI.Output(fmt.Sprintf("Status:       %s", info.Status))
	c.UI.Output(fmt.Sprintf("Artifact URI: %s", info.ArtifactURI))
	for _, m := range run.Data.Metrics {
		c.UI.Output(fmt.Sprintf("Metric:       %s=%g (step %d)", m.Key, m.Value, m.Step))
	}
	for _, p := range run.Data.Params {
		c.UI.Output(fmt.Sprintf("Param:        %s=%s", p.Key, p.Value))
	}
	for _, t := range run.Data.Tags {
		c.UI.Output(fmt.Sprintf("Tag:          %s=%s", t.Key, t.Value))
	}
	return 0
}

// CreateCommand starts a new run.
type CreateCommand struct {
	*base.Command

	flagName string
	flagTags tagSliceFlag
}

func (c *CreateCommand) Synopsis() string {
	return "Start a new run"
}

func (c *CreateCommand) Help() string {
	return `Usage: mlflow runs create [options] <experiment-id>

  Starts a run with its start time set to now and prints the run id.

Options:

  -name=<name>      Run name. Defaults to a generated "run-<id>" name.
  -tag=<key=value>  Run tag. May be repeated.`
}

func (c *CreateCommand) Run(args []string) int {
	f := c.FlagSet("runs create")
	f.StringVar(&c.flagName, "name", "", "")
	f.Var(&c.flagTags, "tag", "")
	if err := f.Parse(args); err != nil || len(f.Args()) != 1 {
		c.UI.Error(c.Help())
		return 1
	}

	name := c.flagName
	if name == "" {
		name = "run-" + uuid.NewString()[:8]
	}

	tags, err := c.flagTags.runTags()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	client, err := c.Client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	run, err := client.StartRun(context.Background(), f.Args()[0], &mlflow.CreateRunRequest{
		RunName: name,
		Tags:    tags,
	})
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	c.UI.Output(run.Info.RunID)
	return 0
}

// tagSliceFlag collects repeated -tag key=value flags.
type tagSliceFlag []string

func (s *tagSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *tagSliceFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func (s tagSliceFlag) runTags() ([]mlflow.RunTag, error) {
	tags := make([]mlflow.RunTag, 0, len(s))
	for _, raw := range s {
		key, value, ok := strings.Cut(raw, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid tag %q, expected key=value", raw)
		}
		tags = append(tags, mlflow.RunTag{Key: key, Value: value})
	}
	return tags, nil
}
