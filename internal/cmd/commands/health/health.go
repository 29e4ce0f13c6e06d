package health

import (
	"context"
	"flag"
	"fmt"

	"github.com/tomblancdev/aiproxy-go/internal/cmd/base"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Check gateway health and version compatibility"
}

func (c *Command) Help() string {
	return `Usage: aiproxy health [options]

  This command reports the gateway status, its components and whether the
  gateway version is supported by this client.` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("health", flag.ContinueOnError))
	c.ConfigFlag(f)
	return f
}

func (c *Command) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	client, _, err := c.Client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	health, err := client.Health(context.Background())
	if err != nil {
		return c.Fail("checking health", err)
	}

	c.UI.Output(fmt.Sprintf("Status:  %s", health.Status))
	c.UI.Output(fmt.Sprintf("Version: %s", health.Version))
	for _, comp := range health.Components {
		line := fmt.Sprintf("  %s: %s", comp.Name, comp.Status)
		if comp.Error != "" {
			line += " (" + comp.Error + ")"
		}
		c.UI.Output(line)
	}

	if compat := health.Compatibility(); !compat.IsCompatible() {
		c.UI.Warn(compat.Message)
	}
	if !health.IsHealthy() {
		return 2
	}
	return 0
}
