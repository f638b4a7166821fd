package gateway

import (
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-cli/internal/config"
	"github.com/sells-group/lead-cli/pkg/anthropic"
	"github.com/sells-group/lead-cli/pkg/gemini"
)

// New builds the configured gateway: a rate-limited router over the
// discovery and structuring providers.
func New(cfg *config.Config) (Gateway, error) {
	built := make(map[string]Gateway, 2)
	provider := func(name string) (Gateway, error) {
		if gw, ok := built[name]; ok {
			return gw, nil
		}
		gw, err := newProvider(cfg, name)
		if err != nil {
			return nil, err
		}
		built[name] = gw
		return gw, nil
	}

	discovery, err := provider(cfg.Gateway.DiscoveryProvider)
	if err != nil {
		return nil, err
	}
	structuring, err := provider(cfg.Gateway.StructuringProvider)
	if err != nil {
		return nil, err
	}

	router := &Router{Discovery: discovery, Structuring: structuring}
	return Limited(WithTemperature(router, cfg.Gateway.Temperature), cfg.Gateway.RequestsPerSecond), nil
}

func newProvider(cfg *config.Config, name string) (Gateway, error) {
	switch name {
	case "gemini":
		hc := &http.Client{Timeout: time.Duration(cfg.Gateway.TimeoutSecs) * time.Second}
		return NewGemini(gemini.NewClient(cfg.Gemini.Key,
			gemini.WithBaseURL(cfg.Gemini.BaseURL),
			gemini.WithHTTPClient(hc),
		)), nil
	case "anthropic":
		return NewAnthropic(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic.MaxTokens), nil
	case "openai":
		return NewOpenAI(cfg.OpenAI.Key, cfg.OpenAI.BaseURL), nil
	default:
		return nil, eris.Errorf("gateway: unknown provider %q", name)
	}
}
