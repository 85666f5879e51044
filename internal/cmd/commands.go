package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/mlflow-client-go/internal/cmd/base"
	"github.com/hashicorp-forge/mlflow-client-go/internal/cmd/commands/artifacts"
	"github.com/hashicorp-forge/mlflow-client-go/internal/cmd/commands/experiments"
	"github.com/hashicorp-forge/mlflow-client-go/internal/cmd/commands/metrics"
	"github.com/hashicorp-forge/mlflow-client-go/internal/cmd/commands/runs"
	"github.com/hashicorp-forge/mlflow-client-go/internal/cmd/commands/versioncmd"
)

// Commands is the mapping of all available CLI commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	baseCommand := func(name string) *base.Command {
		return &base.Command{
			Log: log.Named(name),
			UI:  ui,
		}
	}

	Commands = map[string]cli.CommandFactory{
		"experiments": func() (cli.Command, error) {
			return &experiments.Command{Command: baseCommand("experiments")}, nil
		},
		"experiments list": func() (cli.Command, error) {
			return &experiments.ListCommand{Command: baseCommand("experiments.list")}, nil
		},
		"experiments get": func() (cli.Command, error) {
			return &experiments.GetCommand{Command: baseCommand("experiments.get")}, nil
		},
		"experiments create": func() (cli.Command, error) {
			return &experiments.CreateCommand{Command: baseCommand("experiments.create")}, nil
		},
		"experiments rename": func() (cli.Command, error) {
			return &experiments.RenameCommand{Command: baseCommand("experiments.rename")}, nil
		},
		"experiments delete": func() (cli.Command, error) {
			return &experiments.DeleteCommand{Command: baseCommand("experiments.delete")}, nil
		},
		"experiments restore": func() (cli.Command, error) {
			return &experiments.RestoreCommand{Command: baseCommand("experiments.restore")}, nil
		},
		"experiments set-tag": func() (cli.Command, error) {
			return &experiments.SetTagCommand{Command: baseCommand("experiments.set-tag")}, nil
		},
		"runs": func() (cli.Command, error) {
			return &runs.Command{Command: baseCommand("runs")}, nil
		},
		"runs list": func() (cli.Command, error) {
			return &runs.ListCommand{Command: baseCommand("runs.list")}, nil
		},
		"runs get": func() (cli.Command, error) {
			return &runs.GetCommand{Command: baseCommand("runs.get")}, nil
		},
		"runs create": func() (cli.Command, error) {
			return &runs.CreateCommand{Command: baseCommand("runs.create")}, nil
		},
		"runs finish": func() (cli.Command, error) {
			return &runs.FinishCommand{Command: baseCommand("runs.finish")}, nil
		},
		"runs delete": func() (cli.Command, error) {
			return &runs.DeleteCommand{Command: baseCommand("runs.delete")}, nil
		},
		"runs restore": func() (cli.Command, error) {
			return &runs.RestoreCommand{Command: baseCommand("runs.restore")}, nil
		},
		"runs set-tag": func() (cli.Command, error) {
			return &runs.SetTagCommand{Command: baseCommand("runs.set-tag")}, nil
		},
		"runs log-metric": func() (cli.Command, error) {
			return &runs.LogMetricCommand{Command: baseCommand("runs.log-metric")}, nil
		},
		"runs log-param": func() (cli.Command, error) {
			return &runs.LogParamCommand{Command: baseCommand("runs.log-param")}, nil
		},
		"metrics": func() (cli.Command, error) {
			return &metrics.Command{Command: baseCommand("metrics")}, nil
		},
		"metrics history": func() (cli.Command, error) {
			return &metrics.HistoryCommand{Command: baseCommand("metrics.history")}, nil
		},
		"artifacts": func() (cli.Command, error) {
			return &artifacts.Command{Command: baseCommand("artifacts")}, nil
		},
		"artifacts list": func() (cli.Command, error) {
			return &artifacts.ListCommand{Command: baseCommand("artifacts.list")}, nil
		},
		"artifacts download": func() (cli.Command, error) {
			return &artifacts.DownloadCommand{Command: baseCommand("artifacts.download")}, nil
		},
		"version": func() (cli.Command, error) {
			return &versioncmd.Command{UI: ui}, nil
		},
	}
}
