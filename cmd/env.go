package main

import (
	"context"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/gateway"
	"github.com/sells-group/lead-cli/internal/geo"
	"github.com/sells-group/lead-cli/internal/leads"
	"github.com/sells-group/lead-cli/internal/proposal"
	"github.com/sells-group/lead-cli/internal/search"
	"github.com/sells-group/lead-cli/internal/secrets"
	"github.com/sells-group/lead-cli/internal/store"
)

// appEnv holds the repository and, when requested, the AI components.
type appEnv struct {
	KV        store.KV
	Repo      *leads.Repository
	Searcher  *search.Orchestrator
	Proposals *proposal.Generator
}

// Close releases the store.
func (e *appEnv) Close() {
	if e.KV != nil {
		_ = e.KV.Close()
	}
}

// initRepo opens the store and loads the saved lead list.
func initRepo(ctx context.Context, command string) (*appEnv, error) {
	if err := cfg.Validate(command); err != nil {
		return nil, err
	}

	kv, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}

	repo := leads.Open(ctx, kv, cfg.Store.LeadsKey)
	zap.L().Debug("lead repository loaded",
		zap.String("driver", cfg.Store.Driver),
		zap.Int("leads", repo.Len()),
	)
	return &appEnv{KV: kv, Repo: repo}, nil
}

// initEnv opens the repository and builds the gateway-backed components.
// Provider keys missing from config are read from the OS keychain.
func initEnv(ctx context.Context, command string) (*appEnv, error) {
	secrets.Apply(cfg)

	env, err := initRepo(ctx, command)
	if err != nil {
		return nil, err
	}

	gw, err := gateway.New(cfg)
	if err != nil {
		env.Close()
		return nil, err
	}

	env.Searcher = search.New(gw, nil, search.Config{
		DiscoveryModel:   cfg.Gateway.DiscoveryModel,
		StructuringModel: cfg.Gateway.StructuringModel,
		ProbeTimeout:     cfg.Geo.Timeout(),
	})
	env.Proposals = proposal.NewGenerator(gw, cfg.Gateway.ProposalModel)
	return env, nil
}

// nearLocator geocodes a free-text place with the configured Google key.
func nearLocator(place string) geo.Locator {
	return geo.NewGeocoder(cfg.Geo.GoogleKey, place,
		geo.WithGeocodeHTTPClient(&http.Client{Timeout: cfg.Geo.Timeout()}))
}
