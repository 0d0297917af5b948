// File: internal/infra/adapters/ai/openai_classifier.go
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"

	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/adapter"
	"omnimap-agent/internal/infra/metrics"
)

var _ adapter.Classifier = (*OpenAIClassifier)(nil)
var _ adapter.ChatResponder = (*OpenAIClassifier)(nil)

// OpenAIClassifier implements classification via Chat Completions function
// calling: the model is forced to call exactly one classify_as_* tool and
// the first tool call is taken as the decision. It also serves as the chat
// responder for the conversation handler.
type OpenAIClassifier struct {
	client openai.Client
	model  string
	tools  []openai.ChatCompletionToolUnionParam
	enc    *tiktoken.Tiktoken
	log    *zerolog.Logger
}

func NewOpenAIClassifier(apiKey, modelName string, log *zerolog.Logger) (*OpenAIClassifier, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}

	// Token accounting is best effort; a missing encoding only disables
	// the metric.
	enc, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		enc, _ = tiktoken.GetEncoding("cl100k_base")
	}

	return &OpenAIClassifier{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  modelName,
		tools:  buildOpenAITools(),
		enc:    enc,
		log:    log,
	}, nil
}

func buildOpenAITools() []openai.ChatCompletionToolUnionParam {
	tools := make([]openai.ChatCompletionToolUnionParam, 0, len(classificationFunctions))
	for _, fn := range classificationFunctions {
		props := make(map[string]any, len(fn.fields))
		for _, f := range fn.fields {
			p := map[string]any{"type": f.typ, "description": f.desc}
			if f.typ == "array" {
				p["items"] = map[string]any{"type": "string"}
			}
			if len(f.enum) > 0 {
				p["enum"] = f.enum
			}
			props[f.name] = p
		}
		tools = append(tools, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        fn.name,
			Description: openai.String(fn.desc),
			Parameters: shared.FunctionParameters{
				"type":       "object",
				"properties": props,
				"required":   fn.required,
			},
		}))
	}
	return tools
}

func (c *OpenAIClassifier) Classify(ctx context.Context, text, transcript string) (*model.Classification, error) {
	system := buildClassificationPrompt(transcript)
	c.observePromptTokens(system + "\n" + text)

	start := time.Now()
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(text),
		},
		Tools: c.tools,
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String("required"),
		},
	})
	metrics.ObserveClassifierLatency("openai", time.Since(start).Seconds())

	if err != nil {
		metrics.IncClassifierCall("openai", "error")
		return nil, fmt.Errorf("openai classify: %w", err)
	}
	if len(completion.Choices) == 0 {
		metrics.IncClassifierCall("openai", "empty")
		return nil, errors.New("openai classify: no choices")
	}

	toolCalls := completion.Choices[0].Message.ToolCalls
	if len(toolCalls) == 0 {
		// The model answered in prose despite the forced tool choice.
		metrics.IncClassifierCall("openai", "no_tool_call")
		c.log.Warn().Msg("classification returned no tool call")
		return model.FallbackClassification(text, 0.5, "unclear"), nil
	}

	tc := toolCalls[0]
	var args map[string]any
	if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
		metrics.IncClassifierCall("openai", "bad_arguments")
		return nil, fmt.Errorf("openai classify: decode arguments: %w", err)
	}

	metrics.IncClassifierCall("openai", "ok")
	c.log.Debug().Str("function", tc.Function.Name).Msg("classification tool call")
	return parseClassification(tc.Function.Name, args), nil
}

// Respond generates a short contextual reply for conversation messages.
func (c *OpenAIClassifier) Respond(ctx context.Context, text, transcript string) (string, error) {
	system := buildConversationPrompt(transcript)
	c.observePromptTokens(system + "\n" + text)

	start := time.Now()
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(text),
		},
	})
	metrics.ObserveClassifierLatency("openai", time.Since(start).Seconds())

	if err != nil {
		return "", fmt.Errorf("openai respond: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", errors.New("openai respond: empty completion")
	}
	return completion.Choices[0].Message.Content, nil
}

func (c *OpenAIClassifier) observePromptTokens(prompt string) {
	if c.enc == nil {
		return
	}
	metrics.ObserveClassifierPromptTokens("openai", len(c.enc.Encode(prompt, nil, nil)))
}
