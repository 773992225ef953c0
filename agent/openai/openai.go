// Package openai provides a generation agent backed by the OpenAI Chat
// Completions API. It issues one non-streaming completion per request
// and returns the assistant text as the generated content.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"genmesh/agent"
	"genmesh/core"
)

// Options configure the OpenAI generation agent. Fields mirror a minimal
// subset of Chat Completion parameters; extend via functional options
// without breaking callers.
type Options struct {
	// Name is the agent's registry name. Defaults to "openai".
	Name string
	// Model selects the chat model. Defaults to gpt-4o-mini.
	Model string
	// Temperature defaults to 0.7.
	Temperature float64
	// MaxCompletionTokens defaults to 4096.
	MaxCompletionTokens int64
	// APIKey overrides the OPENAI_API_KEY environment variable.
	APIKey string
}

// Generator implements core.Agent on the OpenAI API.
type Generator struct {
	client openai.Client
	opts   Options
}

// NewGenerator creates a generator using the official client.
func NewGenerator(optFns ...func(o *Options)) *Generator {
	opts := defaultOptions(optFns)

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	return &Generator{client: openai.NewClient(clientOpts...), opts: opts}
}

// NewGeneratorFromClient creates a generator from an existing client.
func NewGeneratorFromClient(client openai.Client, optFns ...func(o *Options)) *Generator {
	return &Generator{client: client, opts: defaultOptions(optFns)}
}

func defaultOptions(optFns []func(o *Options)) Options {
	opts := Options{
		Name:                "openai",
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
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
	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.opts.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(agent.SystemPrompt(req)),
			openai.UserMessage(agent.UserPrompt(req)),
		},
		Temperature:         openai.Float(g.opts.Temperature),
		MaxCompletionTokens: openai.Int(g.opts.MaxCompletionTokens),
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("openai chat completion returned no choices")
	}

	return &core.AgentResponse{
		Success:   true,
		Content:   completion.Choices[0].Message.Content,
		AgentName: g.opts.Name,
	}, nil
}
