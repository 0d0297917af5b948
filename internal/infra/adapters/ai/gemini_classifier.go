// File: internal/infra/adapters/ai/gemini_classifier.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/rs/zerolog"

	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/adapter"
	"omnimap-agent/internal/infra/metrics"
)

var _ adapter.Classifier = (*GeminiClassifier)(nil)
var _ adapter.ChatResponder = (*GeminiClassifier)(nil)

// GeminiClassifier is the alternative classification backend, selected by
// configuration when a Gemini key is present. Same function-calling
// surface as the OpenAI classifier, expressed through the genai SDK.
type GeminiClassifier struct {
	client *genai.Client
	model  string
	tools  []*genai.Tool
	log    *zerolog.Logger
}

func NewGeminiClassifier(ctx context.Context, apiKey, baseURL, modelName string, log *zerolog.Logger) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key empty")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiClassifier{
		client: client,
		model:  modelName,
		tools:  buildGeminiTools(),
		log:    log,
	}, nil
}

func buildGeminiTools() []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(classificationFunctions))
	for _, fn := range classificationFunctions {
		props := make(map[string]*genai.Schema, len(fn.fields))
		for _, f := range fn.fields {
			s := &genai.Schema{Description: f.desc}
			switch f.typ {
			case "number":
				s.Type = genai.TypeNumber
			case "array":
				s.Type = genai.TypeArray
				s.Items = &genai.Schema{Type: genai.TypeString}
			default:
				s.Type = genai.TypeString
			}
			if len(f.enum) > 0 {
				s.Enum = f.enum
			}
			props[f.name] = s
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        fn.name,
			Description: fn.desc,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   fn.required,
			},
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func (c *GeminiClassifier) Classify(ctx context.Context, text, transcript string) (*model.Classification, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(buildClassificationPrompt(transcript), genai.RoleUser),
		Tools:             c.tools,
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode: genai.FunctionCallingConfigModeAny,
			},
		},
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(text), cfg)
	metrics.ObserveClassifierLatency("gemini", time.Since(start).Seconds())

	if err != nil {
		metrics.IncClassifierCall("gemini", "error")
		return nil, fmt.Errorf("gemini classify: %w", err)
	}

	calls := resp.FunctionCalls()
	if len(calls) == 0 {
		metrics.IncClassifierCall("gemini", "no_tool_call")
		c.log.Warn().Msg("classification returned no function call")
		return model.FallbackClassification(text, 0.5, "unclear"), nil
	}

	metrics.IncClassifierCall("gemini", "ok")
	c.log.Debug().Str("function", calls[0].Name).Msg("classification function call")
	return parseClassification(calls[0].Name, calls[0].Args), nil
}

func (c *GeminiClassifier) Respond(ctx context.Context, text, transcript string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(buildConversationPrompt(transcript), genai.RoleUser),
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(text), cfg)
	metrics.ObserveClassifierLatency("gemini", time.Since(start).Seconds())

	if err != nil {
		return "", fmt.Errorf("gemini respond: %w", err)
	}
	reply := resp.Text()
	if reply == "" {
		return "", errors.New("gemini respond: empty response")
	}
	return reply, nil
}
