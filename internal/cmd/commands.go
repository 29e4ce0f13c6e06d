package cmd

import (
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/tomblancdev/aiproxy-go/internal/cmd/base"
	"github.com/tomblancdev/aiproxy-go/internal/cmd/commands/chat"
	"github.com/tomblancdev/aiproxy-go/internal/cmd/commands/health"
	"github.com/tomblancdev/aiproxy-go/internal/cmd/commands/keys"
	"github.com/tomblancdev/aiproxy-go/internal/cmd/commands/models"
	"github.com/tomblancdev/aiproxy-go/internal/cmd/commands/version"
)

// Commands returns the command factories of the CLI.
func Commands(log hclog.Logger, ui cli.Ui, out io.Writer) map[string]cli.CommandFactory {
	b := func() *base.Command { return base.NewCommand(log, ui, out) }

	return map[string]cli.CommandFactory{
		"chat": func() (cli.Command, error) {
			return &chat.Command{Command: b()}, nil
		},
		"health": func() (cli.Command, error) {
			return &health.Command{Command: b()}, nil
		},
		"keys": func() (cli.Command, error) {
			return &keys.Command{Command: b()}, nil
		},
		"keys list": func() (cli.Command, error) {
			return &keys.ListCommand{Command: b()}, nil
		},
		"models": func() (cli.Command, error) {
			return &models.Command{Command: b()}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b()}, nil
		},
	}
}
