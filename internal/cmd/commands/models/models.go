package models

import (
	"context"
	"flag"
	"fmt"
	"sort"

	"github.com/tomblancdev/aiproxy-go/internal/cmd/base"
)

type Command struct {
	*base.Command

	flagOwner string
}

func (c *Command) Synopsis() string {
	return "List the models available to your credentials"
}

func (c *Command) Help() string {
	return `Usage: aiproxy models [options]

  This command lists model ids accepted by the chat command.` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("models", flag.ContinueOnError))
	c.ConfigFlag(f)
	f.StringVar(&c.flagOwner, "owner", "", "Only list models from this provider.")
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

	models, err := client.ListModels(context.Background())
	if err != nil {
		return c.Fail("listing models", err)
	}

	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	for _, m := range models {
		if c.flagOwner != "" && m.OwnedBy != c.flagOwner {
			continue
		}
		c.UI.Output(m.ID)
	}
	return 0
}
