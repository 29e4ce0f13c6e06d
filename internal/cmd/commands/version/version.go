package version

import (
	"fmt"

	"github.com/tomblancdev/aiproxy-go"
	"github.com/tomblancdev/aiproxy-go/internal/cmd/base"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the client version"
}

func (c *Command) Help() string {
	return "Usage: aiproxy version"
}

func (c *Command) Run(args []string) int {
	c.UI.Output(fmt.Sprintf("aiproxy %s (gateway API %s, supports %s)",
		aiproxy.Version, aiproxy.APIVersion, aiproxy.APIVersionRange))
	return 0
}
