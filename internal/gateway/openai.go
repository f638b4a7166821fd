package gateway

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// wrapKey holds array results, since OpenAI structured output requires an
// object at the top level.
const wrapKey = "items"

// OpenAI serves both request shapes from the OpenAI chat completions API.
type OpenAI struct {
	client *openai.Client
}

// NewOpenAI creates an OpenAI-backed gateway. baseURL may be empty.
func NewOpenAI(apiKey, baseURL string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg)}
}

func (o *OpenAI) Discover(ctx context.Context, req DiscoverRequest) (*DiscoverResponse, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt + locationHint(req.Location)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "gateway: openai discover")
	}
	if len(resp.Choices) == 0 {
		return nil, eris.New("gateway: openai discover: no choices")
	}
	logOpenAIUsage(req.Model, "discover", resp.Usage)

	return &DiscoverResponse{Text: resp.Choices[0].Message.Content}, nil
}

func (o *OpenAI) Complete(ctx context.Context, req StructuredRequest) ([]byte, error) {
	if req.Schema == nil {
		return nil, eris.New("gateway: openai complete: schema is required")
	}

	schema := req.Schema
	wrapped := schema.Type == TypeArray
	if wrapped {
		schema = &Schema{
			Type:       TypeObject,
			Properties: map[string]*Schema{wrapKey: req.Schema},
			Required:   []string{wrapKey},
		}
	}
	raw, err := schema.JSONSchema()
	if err != nil {
		return nil, err
	}

	cr := openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "result",
				Schema: raw,
			},
		},
	}
	if req.Temperature != nil {
		cr.Temperature = float32(*req.Temperature)
	}

	resp, err := o.client.CreateChatCompletion(ctx, cr)
	if err != nil {
		return nil, eris.Wrap(err, "gateway: openai complete")
	}
	if len(resp.Choices) == 0 {
		return nil, eris.New("gateway: openai complete: no choices")
	}
	logOpenAIUsage(req.Model, "complete", resp.Usage)

	text := resp.Choices[0].Message.Content
	if !wrapped {
		return []byte(text), nil
	}
	items := gjson.Get(text, wrapKey)
	if !items.Exists() || !items.IsArray() {
		return nil, eris.New("gateway: openai complete: missing items array")
	}
	return []byte(items.Raw), nil
}

func logOpenAIUsage(modelID, phase string, u openai.Usage) {
	zap.L().Debug("gateway call complete",
		zap.String("provider", "openai"),
		zap.String("model", modelID),
		zap.String("phase", phase),
		zap.Int("prompt_tokens", u.PromptTokens),
		zap.Int("output_tokens", u.CompletionTokens),
	)
}
