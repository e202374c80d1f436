package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

var (
	// ErrMissingCredentials means no API key was configured for the
	// text-generation backend. Submitting work without one fails fast.
	ErrMissingCredentials = errors.New("GROQ_API_KEY is not configured")

	// ErrGenerationFailed wraps unusable model output (empty response,
	// non-JSON body). Retrying with the same inputs is safe: nothing
	// is persisted until the output validates.
	ErrGenerationFailed = errors.New("text generation returned unusable output")

	// ErrIncompleteMapping means a template mapping result is missing
	// required variable keys. It is never auto-patched; the caller
	// decides whether to retry or flag for manual completion.
	ErrIncompleteMapping = errors.New("template mapping is missing required variables")

	// ErrWordBudgetExceeded means a regenerated scene stayed over its
	// word ceiling after re-requests. The overlength text is never
	// returned or truncated.
	ErrWordBudgetExceeded = errors.New("regenerated scene exceeds its word budget")
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// Generator produces structured text from a prompt pair. The returned
// string is untrusted and must be parse-and-validated by the caller.
type Generator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	CompleteWithSchema(ctx context.Context, systemPrompt, userPrompt, schemaName string, schema interface{}) (string, error)
}

// GroqGenerator calls Groq's OpenAI-compatible chat completions API.
type GroqGenerator struct {
	client openai.Client
	apiKey string
	model  string
}

func NewGroqGenerator(apiKey, model string) *GroqGenerator {
	return &GroqGenerator{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(groqBaseURL),
		),
		apiKey: apiKey,
		model:  model,
	}
}

// Complete runs a chat completion in JSON-object mode. Used when the
// output key set is dynamic (template variables) and no static schema
// can be declared.
func (g *GroqGenerator) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if g.apiKey == "" {
		return "", ErrMissingCredentials
	}

	chatCompletion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model: g.model,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", fmt.Errorf("groq API error: %w", err)
	}

	return contentFromCompletion(chatCompletion)
}

// CompleteWithSchema runs a chat completion with JSON schema
// enforcement, for outputs whose shape is known at compile time.
func (g *GroqGenerator) CompleteWithSchema(ctx context.Context, systemPrompt, userPrompt, schemaName string, schema interface{}) (string, error) {
	if g.apiKey == "" {
		return "", ErrMissingCredentials
	}

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        schemaName,
		Description: openai.String("Structured data response"),
		Schema:      schema,
		Strict:      openai.Bool(true),
	}

	chatCompletion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model: g.model,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("groq API error: %w", err)
	}

	return contentFromCompletion(chatCompletion)
}

func contentFromCompletion(chatCompletion *openai.ChatCompletion) (string, error) {
	if len(chatCompletion.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrGenerationFailed)
	}

	rawResponse := chatCompletion.Choices[0].Message.Content
	if rawResponse == "" {
		return "", fmt.Errorf("%w: empty response, finish reason: %s",
			ErrGenerationFailed, chatCompletion.Choices[0].FinishReason)
	}

	return rawResponse, nil
}

// GenerateSchema generates a JSON schema for structured outputs.
// Structured Outputs uses a subset of JSON schema; these flags are
// necessary to comply with the subset.
func GenerateSchema[T any]() interface{} {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schema
}
