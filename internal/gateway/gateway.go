// Package gateway is the boundary to generative-AI completion providers. It
// exposes two request shapes: open-ended grounded discovery, and
// schema-constrained structured completion.
package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/lead-cli/internal/model"
)

// DefaultCitationTitle is used when a grounding source has no title.
const DefaultCitationTitle = "View on Maps"

// DiscoverRequest is an open-ended, location-grounded prompt.
type DiscoverRequest struct {
	Model    string
	Prompt   string
	Location *model.Location
}

// DiscoverResponse is the narrative answer plus the sources it cites.
// Citations keep provider order and may include placeholder links.
type DiscoverResponse struct {
	Text      string
	Citations []model.GroundingLink
}

// StructuredRequest asks for JSON conforming to Schema. A nil Temperature
// keeps the provider default.
type StructuredRequest struct {
	Model       string
	Prompt      string
	Schema      *Schema
	Temperature *float64
}

// Gateway is a generative-AI completion service.
type Gateway interface {
	Discover(ctx context.Context, req DiscoverRequest) (*DiscoverResponse, error)
	// Complete returns the raw JSON text produced for req.Schema.
	Complete(ctx context.Context, req StructuredRequest) ([]byte, error)
}

// Router sends discovery and structuring requests to different providers.
type Router struct {
	Discovery   Gateway
	Structuring Gateway
}

func (r *Router) Discover(ctx context.Context, req DiscoverRequest) (*DiscoverResponse, error) {
	return r.Discovery.Discover(ctx, req)
}

func (r *Router) Complete(ctx context.Context, req StructuredRequest) ([]byte, error) {
	return r.Structuring.Complete(ctx, req)
}

// tempered fills in a default temperature for structured completions.
type tempered struct {
	Gateway
	temperature float64
}

// WithTemperature makes gw use t for structured completions that do not set
// their own. A nil t returns gw unchanged.
func WithTemperature(gw Gateway, t *float64) Gateway {
	if t == nil {
		return gw
	}
	return &tempered{Gateway: gw, temperature: *t}
}

func (t *tempered) Complete(ctx context.Context, req StructuredRequest) ([]byte, error) {
	if req.Temperature == nil {
		temp := t.temperature
		req.Temperature = &temp
	}
	return t.Gateway.Complete(ctx, req)
}

// limited throttles calls to the wrapped gateway. It does not retry.
type limited struct {
	next    Gateway
	limiter *rate.Limiter
}

// Limited wraps gw so that at most rps requests start per second. A
// non-positive rps disables throttling.
func Limited(gw Gateway, rps float64) Gateway {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &limited{next: gw, limiter: rate.NewLimiter(limit, 1)}
}

func (l *limited) Discover(ctx context.Context, req DiscoverRequest) (*DiscoverResponse, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "gateway: rate limit")
	}
	return l.next.Discover(ctx, req)
}

func (l *limited) Complete(ctx context.Context, req StructuredRequest) ([]byte, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "gateway: rate limit")
	}
	return l.next.Complete(ctx, req)
}

// locationHint is appended to prompts for providers without native location
// grounding.
func locationHint(loc *model.Location) string {
	if loc == nil {
		return ""
	}
	return fmt.Sprintf("\n\nFocus on businesses near latitude %.5f, longitude %.5f.", loc.Latitude, loc.Longitude)
}

// cleanJSON extracts a JSON object or array from text that may contain
// markdown code fences or surrounding prose.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	text = strings.TrimSpace(text)

	opener, closer := "{", "}"
	if a, o := strings.Index(text, "["), strings.Index(text, "{"); a >= 0 && (o < 0 || a < o) {
		opener, closer = "[", "]"
	}
	start := strings.Index(text, opener)
	end := strings.LastIndex(text, closer)
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
