package gateway

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-cli/pkg/anthropic"
)

const jsonOnlyInstruction = "Respond with JSON only, no prose and no code fences. The JSON must conform to this JSON Schema:\n"

// Anthropic serves both request shapes from Claude. It has no maps grounding,
// so discovery returns no citations and the location is passed in the prompt.
type Anthropic struct {
	client    anthropic.Client
	maxTokens int64
}

// NewAnthropic creates an Anthropic-backed gateway.
func NewAnthropic(client anthropic.Client, maxTokens int64) *Anthropic {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &Anthropic{client: client, maxTokens: maxTokens}
}

func (a *Anthropic) Discover(ctx context.Context, req DiscoverRequest) (*DiscoverResponse, error) {
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     req.Model,
		MaxTokens: a.maxTokens,
		Messages:  []anthropic.Message{{Role: "user", Content: req.Prompt + locationHint(req.Location)}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "gateway: anthropic discover")
	}
	resp.Usage.LogCost(req.Model, "discover")

	return &DiscoverResponse{Text: resp.Text()}, nil
}

func (a *Anthropic) Complete(ctx context.Context, req StructuredRequest) ([]byte, error) {
	if req.Schema == nil {
		return nil, eris.New("gateway: anthropic complete: schema is required")
	}
	schema, err := req.Schema.JSONSchema()
	if err != nil {
		return nil, err
	}

	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       req.Model,
		MaxTokens:   a.maxTokens,
		System:      []anthropic.SystemBlock{{Text: jsonOnlyInstruction + string(schema)}},
		Messages:    []anthropic.Message{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, eris.Wrap(err, "gateway: anthropic complete")
	}
	resp.Usage.LogCost(req.Model, "complete")

	text := cleanJSON(resp.Text())
	if text == "" {
		return nil, eris.New("gateway: anthropic complete: empty response")
	}
	return []byte(text), nil
}
