package chat

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/go-openapi/swag"

	"github.com/tomblancdev/aiproxy-go"
	"github.com/tomblancdev/aiproxy-go/internal/cmd/base"
)

type Command struct {
	*base.Command

	flagModel       string
	flagSystem      string
	flagTemperature float64
	flagMaxTokens   int64
	flagNoStream    bool
}

func (c *Command) Synopsis() string {
	return "Send a prompt and print the completion"
}

func (c *Command) Help() string {
	return `Usage: aiproxy chat [options] <prompt>

  This command sends a single-turn chat completion request and prints the
  answer as it is generated. The model defaults to default_model from the
  config file or $AIPROXY_MODEL.` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("chat", flag.ContinueOnError))
	c.ConfigFlag(f)
	f.StringVar(&c.flagModel, "model", "", "Model id, e.g. openai/gpt-4o-mini.")
	f.StringVar(&c.flagSystem, "system", "", "Optional system prompt.")
	f.Float64Var(&c.flagTemperature, "temperature", -1, "Sampling temperature (0-2). Negative leaves the provider default.")
	f.Int64Var(&c.flagMaxTokens, "max-tokens", 0, "Maximum tokens to generate. 0 leaves the provider default.")
	f.BoolVar(&c.flagNoStream, "no-stream", false, "Wait for the full answer instead of streaming it.")
	return f
}

func (c *Command) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	prompt := strings.TrimSpace(strings.Join(flags.Args(), " "))
	if prompt == "" {
		c.UI.Error("a prompt is required")
		return 1
	}

	client, cfg, err := c.Client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	model := c.flagModel
	if model == "" {
		model = cfg.DefaultModel
	}
	if model == "" {
		c.UI.Error("no model given: use -model or set default_model")
		return 1
	}

	req := &aiproxy.ChatCompletionRequest{Model: model}
	if c.flagSystem != "" {
		req.Messages = append(req.Messages, aiproxy.ChatMessage{Role: aiproxy.RoleSystem, Content: c.flagSystem})
	}
	req.Messages = append(req.Messages, aiproxy.ChatMessage{Role: aiproxy.RoleUser, Content: prompt})
	if c.flagTemperature >= 0 {
		req.Temperature = swag.Float64(c.flagTemperature)
	}
	if c.flagMaxTokens > 0 {
		req.MaxTokens = swag.Int64(c.flagMaxTokens)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if c.flagNoStream {
		completion, err := client.CreateChatCompletion(ctx, req)
		if err != nil {
			return c.Fail("creating completion", err)
		}
		c.UI.Output(completion.Content())
		return 0
	}

	stream, err := client.StreamChatCompletion(ctx, req)
	if err != nil {
		return c.Fail("opening stream", err)
	}
	for chunk, err := range stream.All() {
		if err != nil {
			fmt.Fprintln(c.Out)
			return c.Fail("reading stream", err)
		}
		fmt.Fprint(c.Out, chunk.Content())
	}
	fmt.Fprintln(c.Out)
	return 0
}
