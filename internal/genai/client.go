// Package genai is the boundary to the external generation service: prompt in,
// schema-checked structured object out. Everything semantic the system cannot
// verify itself crosses this boundary.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"

	"github.com/copyforge/copyforge/internal/config"
)

// ErrStructural marks a response that failed schema validation even after the
// repair round-trip. Callers treat it like any other service failure.
var ErrStructural = errors.New("generation response failed structural validation")

// Request is one structured generation call.
type Request struct {
	System     string
	Prompt     string
	SchemaName string
	Schema     string // JSON schema the response must satisfy
	Out        any    // pointer the response is decoded into
}

// Client produces structured objects from the generation service.
type Client interface {
	Generate(ctx context.Context, req Request) error
}

type serviceClient struct {
	api         openai.Client
	model       string
	maxTokens   int
	temperature *float64
}

// New builds the service-backed client from configuration.
func New(cfg config.ServiceConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("generation service api key missing; set service.api_key or COPYFORGE_API_KEY")
	}
	if cfg.Model == "" {
		return nil, errors.New("generation service model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 8192
	}
	return &serviceClient{
		api:         openai.NewClient(opts...),
		model:       cfg.Model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Generate calls the service and decodes the response into req.Out. A response
// that fails schema validation is sent back once with a repair instruction;
// a second failure surfaces as ErrStructural.
func (c *serviceClient) Generate(ctx context.Context, req Request) error {
	content, err := c.complete(ctx, req.System, req.Prompt, req.SchemaName, req.Schema)
	if err != nil {
		return err
	}

	if validationErr := checkSchema(req.Schema, content); validationErr != nil {
		log.Warn().Str("schema", req.SchemaName).Err(validationErr).
			Msg("response failed schema check, attempting repair")
		repairPrompt := fmt.Sprintf(
			"The following output does not satisfy its JSON schema. Fix it into valid structure. Change nothing except what the schema requires.\n\nSchema:\n%s\n\nOutput:\n%s",
			req.Schema, content)
		content, err = c.complete(ctx, "You repair malformed JSON output. Respond with the corrected JSON only.", repairPrompt, req.SchemaName, req.Schema)
		if err != nil {
			return err
		}
		if validationErr := checkSchema(req.Schema, content); validationErr != nil {
			return fmt.Errorf("%w after repair attempt: %v", ErrStructural, validationErr)
		}
	}

	if err := json.Unmarshal([]byte(content), req.Out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrStructural, req.SchemaName, err)
	}
	return nil
}

func (c *serviceClient) complete(ctx context.Context, system, prompt, schemaName, schema string) (string, error) {
	var schemaValue map[string]any
	if err := json.Unmarshal([]byte(schema), &schemaValue); err != nil {
		return "", fmt.Errorf("parse %s schema: %w", schemaName, err)
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		MaxTokens: openai.Int(int64(c.maxTokens)),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        schemaName,
					Description: openai.String("Structured response schema"),
					Schema:      schemaValue,
					Strict:      openai.Bool(true),
				},
			},
		},
	}
	if c.temperature != nil {
		params.Temperature = openai.Float(*c.temperature)
	}

	start := time.Now()
	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("generation service: %w", err)
	}
	log.Debug().
		Str("model", c.model).
		Str("schema", schemaName).
		Dur("duration", time.Since(start)).
		Int64("prompt_tokens", resp.Usage.PromptTokens).
		Int64("completion_tokens", resp.Usage.CompletionTokens).
		Msg("generation completed")

	if len(resp.Choices) == 0 {
		return "", errors.New("generation service: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func checkSchema(schema, document string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(document),
	)
	if err != nil {
		return fmt.Errorf("run schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, schemaErr := range result.Errors() {
		msgs = append(msgs, schemaErr.String())
	}
	return fmt.Errorf("schema violations: %v", msgs)
}
