// Package anthropic provides a generation agent backed by the Anthropic
// Messages API. It issues one non-streaming message per request and
// concatenates the response's text blocks as the generated content.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"genmesh/agent"
	"genmesh/core"
)

// Options configure the Anthropic generation agent (agent name, model id,
// temperature, max tokens, API key).
type Options struct {
	// Name is the agent's registry name. Defaults to "anthropic".
	Name string
	// Model selects the message model.
	Model anthropic.Model
	// Temperature defaults to 0.7.
	Temperature float64
	// MaxTokens defaults to 4096.
	MaxTokens int64
	// APIKey overrides the ANTHROPIC_API_KEY environment variable.
	APIKey string
}

// Generator implements core.Agent on the Anthropic API.
type Generator struct {
	client *anthropic.Client
	opts   Options
}

// NewGenerator creates a generator using the official client.
func NewGenerator(optFns ...func(o *Options)) *Generator {
	opts := defaultOptions(optFns)

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Generator{client: &client, opts: opts}
}

// NewGeneratorFromClient creates a generator from an existing client.
func NewGeneratorFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Generator {
	return &Generator{client: client, opts: defaultOptions(optFns)}
}

func defaultOptions(optFns []func(o *Options)) Options {
	opts := Options{
		Name:        "anthropic",
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// Name implements core.Agent.
func (g *Generator) Name() string { return g.opts.Name }

// Process implements core.Agent.
func (g *Generator) Process(ctx context.Context, req *core.Request) (*core.AgentResponse, error) {
	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       g.opts.Model,
		MaxTokens:   g.opts.MaxTokens,
		Temperature: anthropic.Float(g.opts.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: agent.SystemPrompt(req)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(agent.UserPrompt(req))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("anthropic response contains no text blocks")
	}

	return &core.AgentResponse{
		Success:   true,
		Content:   sb.String(),
		AgentName: g.opts.Name,
	}, nil
}
