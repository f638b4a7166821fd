package gateway

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/model"
	"github.com/sells-group/lead-cli/pkg/gemini"
)

// Gemini serves both request shapes from the Gemini API. Discovery is
// grounded with the Google Maps tool.
type Gemini struct {
	client gemini.Client
}

// NewGemini creates a Gemini-backed gateway.
func NewGemini(client gemini.Client) *Gemini {
	return &Gemini{client: client}
}

func (g *Gemini) Discover(ctx context.Context, req DiscoverRequest) (*DiscoverResponse, error) {
	gr := gemini.GenerateContentRequest{
		Contents: []gemini.Content{gemini.UserText(req.Prompt)},
		Tools:    []gemini.Tool{{GoogleMaps: &gemini.GoogleMaps{}}},
	}
	if req.Location != nil {
		gr.ToolConfig = &gemini.ToolConfig{
			RetrievalConfig: &gemini.RetrievalConfig{
				LatLng: &gemini.LatLng{Latitude: req.Location.Latitude, Longitude: req.Location.Longitude},
			},
		}
	}

	start := time.Now()
	resp, err := g.client.GenerateContent(ctx, req.Model, gr)
	if err != nil {
		return nil, eris.Wrap(err, "gateway: gemini discover")
	}
	logUsage("gemini", req.Model, "discover", resp, start)

	chunks := resp.GroundingChunks()
	citations := make([]model.GroundingLink, 0, len(chunks))
	for _, c := range chunks {
		link := model.GroundingLink{Title: DefaultCitationTitle, URI: model.PlaceholderURI}
		if c.Maps != nil {
			if c.Maps.Title != "" {
				link.Title = c.Maps.Title
			}
			if c.Maps.URI != "" {
				link.URI = c.Maps.URI
			}
		}
		citations = append(citations, link)
	}

	return &DiscoverResponse{Text: resp.Text(), Citations: citations}, nil
}

func (g *Gemini) Complete(ctx context.Context, req StructuredRequest) ([]byte, error) {
	if req.Schema == nil {
		return nil, eris.New("gateway: gemini complete: schema is required")
	}
	schema, err := req.Schema.Gemini()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := g.client.GenerateContent(ctx, req.Model, gemini.GenerateContentRequest{
		Contents: []gemini.Content{gemini.UserText(req.Prompt)},
		GenerationConfig: &gemini.GenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
			Temperature:      req.Temperature,
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "gateway: gemini complete")
	}
	logUsage("gemini", req.Model, "complete", resp, start)

	text := resp.Text()
	if text == "" {
		return nil, eris.New("gateway: gemini complete: empty response")
	}
	return []byte(text), nil
}

func logUsage(provider, modelID, phase string, resp *gemini.GenerateContentResponse, start time.Time) {
	zap.L().Debug("gateway call complete",
		zap.String("provider", provider),
		zap.String("model", modelID),
		zap.String("phase", phase),
		zap.Int("prompt_tokens", resp.UsageMetadata.PromptTokenCount),
		zap.Int("output_tokens", resp.UsageMetadata.CandidatesTokenCount),
		zap.Duration("elapsed", time.Since(start)),
	)
}
