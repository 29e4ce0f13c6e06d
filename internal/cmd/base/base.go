// Package base holds what every CLI command shares: logger, UI, flags and
// client construction.
package base

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/tomblancdev/aiproxy-go"
	"github.com/tomblancdev/aiproxy-go/internal/config"
)

// Command is embedded by every CLI command.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui

	// Out receives unbuffered output such as streamed completions.
	Out io.Writer

	flagConfig string
}

// NewCommand returns a Command writing to ui and out.
func NewCommand(log hclog.Logger, ui cli.Ui, out io.Writer) *Command {
	return &Command{Log: log, UI: ui, Out: out}
}

// FlagSet wraps flag.FlagSet with help rendering.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet wraps f. Parse errors are returned rather than exiting.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	f.SetOutput(io.Discard)
	return &FlagSet{FlagSet: f}
}

// Help renders the flags for a command's help text.
func (f *FlagSet) Help() string {
	var b strings.Builder
	b.WriteString("\n\nOptions:\n")
	f.VisitAll(func(fl *flag.Flag) {
		fmt.Fprintf(&b, "\n  -%s", fl.Name)
		if fl.DefValue != "" {
			fmt.Fprintf(&b, "=%s", fl.DefValue)
		}
		fmt.Fprintf(&b, "\n      %s\n", fl.Usage)
	})
	return b.String()
}

// ConfigFlag registers the shared -config flag on f.
func (c *Command) ConfigFlag(f *FlagSet) {
	f.StringVar(&c.flagConfig, "config", "",
		"Path to the YAML config file. Defaults to $AIPROXY_CONFIG or the user config directory.")
}

// Client loads the configuration, adjusts the log level and builds a client.
func (c *Command) Client() (*aiproxy.Client, *config.Config, error) {
	cfg, err := config.Load(c.flagConfig)
	if err != nil {
		return nil, nil, err
	}
	c.Log.SetLevel(hclog.LevelFromString(cfg.LogLevel))

	client, err := aiproxy.NewClient(cfg.ClientOptions(c.Log)...)
	if err != nil {
		return nil, nil, fmt.Errorf("creating client: %w", err)
	}
	return client, cfg, nil
}

// Fail reports err and returns the exit code for a failed command. Gateway
// errors include their request id.
func (c *Command) Fail(action string, err error) int {
	if apiErr, ok := aiproxy.AsError(err); ok && apiErr.RequestID != "" {
		c.UI.Error(fmt.Sprintf("error %s: %v (request id %s)", action, err, apiErr.RequestID))
		return 1
	}
	c.UI.Error(fmt.Sprintf("error %s: %v", action, err))
	return 1
}
