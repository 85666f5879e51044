// Package artifacts implements the `artifacts` command group.
package artifacts

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mitchellh/cli"
	"github.com/spf13/afero"

	"github.com/hashicorp-forge/mlflow-client-go/internal/cmd/base"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Work with run artifacts"
}

func (c *Command) Help() string {
	return `Usage: mlflow artifacts <subcommand> [options] [args]`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

// ListCommand lists a run's artifacts.
type ListCommand struct {
	*base.Command

	flagPath string
}

func (c *ListCommand) Synopsis() string {
	return "List a run's artifacts"
}

func (c *ListCommand) Help() string {
	return `Usage: mlflow artifacts list [options] <run-id>

  Lists artifacts, following pagination until the listing is exhausted.

Options:

  -path=<path>  Run-relative directory to list. Default: artifact root.`
}

func (c *ListCommand) Run(args []string) int {
	f := c.FlagSet("artifacts list")
	f.StringVar(&c.flagPath, "path", "", "")
	if err := f.Parse(args); err != nil || len(f.Args()) != 1 {
		c.UI.Error(c.Help())
		return 1
	}

	client, err := c.Client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	files, err := client.ListAllArtifacts(context.Background(), f.Args()[0], c.flagPath)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	for _, file := range files {
		if file.IsDir {
			c.UI.Output(fmt.Sprintf("dir\t-\t%s", file.Path))
			continue
		}
		c.UI.Output(fmt.Sprintf("file\t%d\t%s", file.FileSize, file.Path))
	}
	return 0
}

// DownloadCommand fetches one artifact to the local filesystem.
type DownloadCommand struct {
	*base.Command

	flagOutput string

	// FS is swapped for a memory filesystem in tests.
	FS afero.Fs
}

func (c *DownloadCommand) Synopsis() string {
	return "Download an artifact"
}

func (c *DownloadCommand) Help() string {
	return `Usage: mlflow artifacts download [options] <run-id> <artifact-path>

  Streams one artifact from the tracking server to a local file.

Options:

  -output=<path>  Destination file. Defaults to the artifact's base name
                  in the current directory.`
}

func (c *DownloadCommand) Run(args []string) int {
	f := c.FlagSet("artifacts download")
	f.StringVar(&c.flagOutput, "output", "", "")
	if err := f.Parse(args); err != nil || len(f.Args()) != 2 {
		c.UI.Error(c.Help())
		return 1
	}
	runID, artifactPath := f.Args()[0], f.Args()[1]

	dest := c.flagOutput
	if dest == "" {
		dest = filepath.Base(artifactPath)
	}

	fs := c.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}

	client, err := c.Client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	if err := client.DownloadArtifact(context.Background(), runID, artifactPath, fs, dest); err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	c.UI.Output(dest)
	return 0
}
