// Package search finds local businesses in two passes: a grounded discovery
// request that returns a narrative, then a schema-constrained request that
// turns the narrative into candidate leads.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/gateway"
	"github.com/sells-group/lead-cli/internal/geo"
	"github.com/sells-group/lead-cli/internal/model"
)

// Config selects models and bounds the location probe.
type Config struct {
	DiscoveryModel   string
	StructuringModel string
	ProbeTimeout     time.Duration
}

// Discovery is the output of the first pass.
type Discovery struct {
	Narrative string
	Citations []model.GroundingLink
}

// Orchestrator runs searches.
type Orchestrator struct {
	gw      gateway.Gateway
	locator geo.Locator
	cfg     Config
}

// New creates an Orchestrator. locator may be nil, in which case searches
// without an explicit location run unbiased.
func New(gw gateway.Gateway, locator geo.Locator, cfg Config) *Orchestrator {
	return &Orchestrator{gw: gw, locator: locator, cfg: cfg}
}

// Search finds businesses matching query near loc. When loc is nil the
// locator is probed; failure to locate never aborts the search.
func (o *Orchestrator) Search(ctx context.Context, query string, loc *model.Location) (*model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	log := zap.L().With(zap.String("component", "search"), zap.String("query", query))

	if loc == nil {
		loc = geo.Probe(ctx, o.locator, o.cfg.ProbeTimeout)
	}
	if loc != nil {
		log = log.With(zap.Float64("lat", loc.Latitude), zap.Float64("lng", loc.Longitude))
	}

	start := time.Now()
	disc, err := o.Discover(ctx, query, loc)
	if err != nil {
		log.Warn("discovery failed", zap.Error(err))
		return nil, err
	}

	leads, err := o.Structure(ctx, disc.Narrative)
	if err != nil {
		log.Warn("structuring failed", zap.Error(err))
		return nil, err
	}

	links := FilterLinks(disc.Citations)
	log.Info("search complete",
		zap.Int("leads", len(leads)),
		zap.Int("links", len(links)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &model.SearchResult{Leads: leads, GroundingLinks: links}, nil
}

// Discover runs the grounded first pass.
func (o *Orchestrator) Discover(ctx context.Context, query string, loc *model.Location) (*Discovery, error) {
	resp, err := o.gw.Discover(ctx, gateway.DiscoverRequest{
		Model:    o.cfg.DiscoveryModel,
		Prompt:   DiscoveryPrompt(query),
		Location: loc,
	})
	if err != nil {
		return nil, &Error{Stage: StageDiscover, Err: err}
	}
	return &Discovery{Narrative: resp.Text, Citations: resp.Citations}, nil
}

// Structure converts a discovery narrative into candidate leads, each with
// status new and derived potential services.
func (o *Orchestrator) Structure(ctx context.Context, narrative string) ([]model.BusinessLead, error) {
	raw, err := o.gw.Complete(ctx, gateway.StructuredRequest{
		Model:  o.cfg.StructuringModel,
		Prompt: StructuringPrompt(narrative),
		Schema: LeadSchema(),
	})
	if err != nil {
		return nil, &Error{Stage: StageStructure, Err: err}
	}

	leads, err := ParseCandidates(raw)
	if err != nil {
		return nil, &Error{Stage: StageParse, Err: err}
	}
	return leads, nil
}

// FilterLinks keeps citations with a usable link, in order. Duplicates are
// kept.
func FilterLinks(in []model.GroundingLink) []model.GroundingLink {
	out := make([]model.GroundingLink, 0, len(in))
	for _, l := range in {
		if l.Usable() {
			out = append(out, l)
		}
	}
	return out
}

// DiscoveryPrompt is the first-pass instruction.
func DiscoveryPrompt(query string) string {
	return fmt.Sprintf("Find businesses matching %q in the area. Identify their contact details, "+
		"if they have a website, and their general online reputation. Return a structured list.", query)
}

// StructuringPrompt is the second-pass instruction.
func StructuringPrompt(narrative string) string {
	return fmt.Sprintf("Based on this information about businesses: %q, output a JSON array of business objects. "+
		"Each object must have: id (string), name (string), address (string), rating (number), "+
		"reviewCount (number), phoneNumber (string), website (string), mapsUrl (string). "+
		"If a field is unknown, use null or empty string.", narrative)
}

// LeadSchema is the candidate array schema.
func LeadSchema() *gateway.Schema {
	str := func() *gateway.Schema { return &gateway.Schema{Type: gateway.TypeString} }
	nullable := func(t gateway.Type) *gateway.Schema { return &gateway.Schema{Type: t, Nullable: true} }

	return &gateway.Schema{
		Type: gateway.TypeArray,
		Items: &gateway.Schema{
			Type: gateway.TypeObject,
			Properties: map[string]*gateway.Schema{
				"id":          str(),
				"name":        str(),
				"address":     str(),
				"rating":      nullable(gateway.TypeNumber),
				"reviewCount": nullable(gateway.TypeNumber),
				"phoneNumber": nullable(gateway.TypeString),
				"website":     nullable(gateway.TypeString),
				"mapsUrl":     nullable(gateway.TypeString),
			},
			Order:    []string{"id", "name", "address", "rating", "reviewCount", "phoneNumber", "website", "mapsUrl"},
			Required: []string{"id", "name", "address"},
		},
	}
}

type candidate struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Rating      *float64 `json:"rating"`
	ReviewCount *float64 `json:"reviewCount"`
	PhoneNumber *string  `json:"phoneNumber"`
	Website     *string  `json:"website"`
	MapsURL     *string  `json:"mapsUrl"`
}

// ParseCandidates decodes the structuring reply. Order is preserved. The
// reply must be a JSON array; null or any other value is rejected.
func ParseCandidates(raw []byte) ([]model.BusinessLead, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		return nil, eris.New("search: reply is not an array")
	}

	var cands []candidate
	if err := json.Unmarshal(raw, &cands); err != nil {
		return nil, eris.Wrap(err, "search: decode candidates")
	}

	leads := make([]model.BusinessLead, 0, len(cands))
	for _, c := range cands {
		lead := model.BusinessLead{
			ID:          strings.TrimSpace(c.ID),
			Name:        c.Name,
			Address:     c.Address,
			Rating:      c.Rating,
			PhoneNumber: emptyToNil(c.PhoneNumber),
			Website:     emptyToNil(c.Website),
			Status:      model.LeadStatusNew,
		}
		if lead.ID == "" {
			lead.ID = uuid.NewString()
		}
		// Negative counts are treated as unknown.
		if c.ReviewCount != nil && *c.ReviewCount >= 0 {
			n := int(math.Round(*c.ReviewCount))
			lead.ReviewCount = &n
		}
		if c.MapsURL != nil {
			lead.MapsURL = *c.MapsURL
		}
		lead.PotentialServices = model.PotentialServicesFor(lead.Website)
		leads = append(leads, lead)
	}
	return leads, nil
}

// emptyToNil drops only the empty string. Whitespace is kept so website
// presence matches a plain non-empty check.
func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
