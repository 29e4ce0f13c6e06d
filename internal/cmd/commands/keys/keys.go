package keys

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/mitchellh/cli"

	"github.com/tomblancdev/aiproxy-go"
	"github.com/tomblancdev/aiproxy-go/internal/cmd/base"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Manage proxy keys"
}

func (c *Command) Help() string {
	return `Usage: aiproxy keys <subcommand> [options] [args]

  This command groups subcommands for managing proxy keys.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

type ListCommand struct {
	*base.Command

	flagLimit  int64
	flagOffset int64
}

func (c *ListCommand) Synopsis() string {
	return "List proxy keys"
}

func (c *ListCommand) Help() string {
	return `Usage: aiproxy keys list [options]

  This command lists proxy keys, one page at a time.` +
		c.Flags().Help()
}

func (c *ListCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("keys list", flag.ContinueOnError))
	c.ConfigFlag(f)
	f.Int64Var(&c.flagLimit, "limit", 20, "Number of keys per page (1-100).")
	f.Int64Var(&c.flagOffset, "offset", 0, "Number of keys to skip.")
	return f
}

func (c *ListCommand) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	client, _, err := c.Client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	list, err := client.ListKeys(context.Background(), &aiproxy.ListKeysParams{
		Limit:  swag.Int64(c.flagLimit),
		Offset: swag.Int64(c.flagOffset),
	})
	if err != nil {
		return c.Fail("listing keys", err)
	}

	w := tabwriter.NewWriter(c.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPREFIX\tSTATUS\tCREATED")
	now := strfmt.DateTime(time.Now())
	for _, k := range list.Data {
		status := "active"
		switch {
		case k.Disabled:
			status = "disabled"
		case k.IsExpired(now):
			status = "expired"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			k.ID, k.Name, k.Prefix, status, time.Time(k.CreatedAt).Format(time.DateOnly))
	}
	if err := w.Flush(); err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	if list.HasMore() {
		c.UI.Info(fmt.Sprintf("Showing %d of %d keys; use -offset %d for more.",
			len(list.Data), list.Total, list.Offset+int64(len(list.Data))))
	}
	return 0
}
