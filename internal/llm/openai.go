package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIOptions configures the OpenAI-compatible client.
type OpenAIOptions struct {
	// APIKey authenticates against the endpoint.
	APIKey string

	// BaseURL overrides the endpoint. Empty means api.openai.com; any
	// OpenAI-compatible server (e.g. a local Ollama at
	// http://127.0.0.1:11434/v1) works here.
	BaseURL string

	// Model is the model name sent with every request.
	Model string

	// Temperature is the sampling temperature. The chat orchestrator
	// runs with a low value for more deterministic plans.
	Temperature float64

	// Logger receives request diagnostics.
	Logger *slog.Logger
}

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client      openai.Client
	model       string
	temperature float64
	logger      *slog.Logger
}

// NewOpenAIClient creates a client for the configured endpoint.
func NewOpenAIClient(opts OpenAIOptions) *OpenAIClient {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &OpenAIClient{
		client:      openai.NewClient(reqOpts...),
		model:       opts.Model,
		temperature: opts.Temperature,
		logger:      logger.With("component", "llm", "model", opts.Model),
	}
}

// Complete sends a chat completion request and returns the reply.
// Failures are wrapped in *ModelError so the session loop can treat
// them as recoverable.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message, tools []map[string]any) (*Reply, error) {
	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    toMessageParams(messages),
		Temperature: openai.Float(c.temperature),
	}

	if len(tools) > 0 {
		toolParams, err := toToolParams(tools)
		if err != nil {
			return nil, &ModelError{Err: err}
		}
		params.Tools = toolParams
	}

	c.logger.Debug("chat completion request",
		"messages", len(messages),
		"tools", len(tools),
	)

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, &ModelError{Err: err}
	}
	if len(completion.Choices) == 0 {
		return nil, &ModelError{Err: fmt.Errorf("endpoint returned no choices")}
	}

	msg := completion.Choices[0].Message
	reply := &Reply{
		Message: Message{
			Role:    RoleAssistant,
			Content: msg.Content,
		},
		InputTokens:  int(completion.Usage.PromptTokens),
		OutputTokens: int(completion.Usage.CompletionTokens),
	}

	for _, tc := range msg.ToolCalls {
		reply.Message.ToolCalls = append(reply.Message.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	c.logger.Debug("chat completion response",
		"tool_calls", len(reply.Message.ToolCalls),
		"input_tokens", reply.InputTokens,
		"output_tokens", reply.OutputTokens,
	)

	return reply, nil
}

// toMessageParams converts neutral messages to SDK message params.
// Assistant messages with tool calls and tool-result messages need the
// full union form so the endpoint can correlate call and result.
func toMessageParams(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		case RoleAssistant:
			if len(m.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(m.Content))
				continue
			}

			assistant := openai.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				assistant.Content.OfString = openai.String(m.Content)
			}
			for _, tc := range m.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: tc.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      tc.Name,
							Arguments: tc.Arguments,
						},
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		}
	}
	return out
}

// toToolParams converts registry tool schemas (OpenAI function-tool
// JSON shape) to SDK tool params.
func toToolParams(tools []map[string]any) ([]openai.ChatCompletionToolUnionParam, error) {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		fn, ok := t["function"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("tool definition missing function object: %v", t)
		}
		name, _ := fn["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("tool definition missing name: %v", t)
		}
		desc, _ := fn["description"].(string)

		def := openai.FunctionDefinitionParam{
			Name:        name,
			Description: openai.String(desc),
		}
		if params, ok := fn["parameters"].(map[string]any); ok {
			def.Parameters = openai.FunctionParameters(params)
		}

		out = append(out, openai.ChatCompletionToolUnionParam{
			OfFunction: &openai.ChatCompletionFunctionToolParam{Function: def},
		})
	}
	return out, nil
}
