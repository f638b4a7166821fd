// Package proposal generates IT-services sales proposals for saved leads.
package proposal

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/gateway"
	"github.com/sells-group/lead-cli/internal/model"
)

// ErrProposalFailed matches every generation failure.
var ErrProposalFailed = eris.New("proposal generation failed")

// Error is a failed generation. No proposal accompanies it.
type Error struct {
	LeadID string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("proposal generation failed for lead %s: %v", e.LeadID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is ErrProposalFailed.
func (e *Error) Is(target error) bool { return target == ErrProposalFailed }

// Generator produces proposals. Every call is a fresh request.
type Generator struct {
	gw    gateway.Gateway
	model string
}

// NewGenerator creates a Generator that calls modelID through gw.
func NewGenerator(gw gateway.Gateway, modelID string) *Generator {
	return &Generator{gw: gw, model: modelID}
}

// Generate writes a proposal for lead.
func (g *Generator) Generate(ctx context.Context, lead model.BusinessLead) (*model.Proposal, error) {
	log := zap.L().With(zap.String("component", "proposal"), zap.String("lead_id", lead.ID))
	start := time.Now()

	raw, err := g.gw.Complete(ctx, gateway.StructuredRequest{
		Model:  g.model,
		Prompt: Prompt(lead),
		Schema: Schema(),
	})
	if err != nil {
		log.Warn("proposal request failed", zap.Error(err))
		return nil, &Error{LeadID: lead.ID, Err: err}
	}

	p, err := decode(raw)
	if err != nil {
		log.Warn("proposal reply malformed", zap.Error(err))
		return nil, &Error{LeadID: lead.ID, Err: err}
	}
	p.LeadID = lead.ID

	log.Info("proposal generated",
		zap.Int("services", len(p.ProposedServices)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return p, nil
}

// decode parses a proposal reply. A null reply, a non-object, or an object
// with neither a business name nor services is rejected.
func decode(raw []byte) (*model.Proposal, error) {
	var p *model.Proposal
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, eris.Wrap(err, "proposal: decode reply")
	}
	if p == nil {
		return nil, eris.New("proposal: reply is null")
	}
	if strings.TrimSpace(p.BusinessName) == "" && len(p.ProposedServices) == 0 {
		return nil, eris.New("proposal: reply has no content")
	}
	return p, nil
}

// Prompt builds the generation instruction for lead.
func Prompt(lead model.BusinessLead) string {
	website := "No website found"
	if lead.HasWebsite() {
		website = *lead.Website
	}
	rating := "unknown"
	if lead.Rating != nil {
		rating = strconv.FormatFloat(*lead.Rating, 'f', -1, 64)
	}
	reviews := "unknown"
	if lead.ReviewCount != nil {
		reviews = strconv.Itoa(*lead.ReviewCount)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a professional IT services proposal for a business named %q.\n", lead.Name)
	b.WriteString("Details:\n")
	fmt.Fprintf(&b, "- Address: %s\n", lead.Address)
	fmt.Fprintf(&b, "- Website: %s\n", website)
	fmt.Fprintf(&b, "- Rating: %s/5 from %s reviews.\n\n", rating, reviews)
	b.WriteString("The proposal should focus on how IT services (Website, Stock Management, Online Orders, " +
		"Delivery Assist, Marketing) can help them grow.\n")
	b.WriteString("Be persuasive but professional.")
	return b.String()
}

// Schema is the proposal object schema.
func Schema() *gateway.Schema {
	str := func() *gateway.Schema { return &gateway.Schema{Type: gateway.TypeString} }
	return &gateway.Schema{
		Type: gateway.TypeObject,
		Properties: map[string]*gateway.Schema{
			"businessName": str(),
			"introduction": str(),
			"gapAnalysis":  str(),
			"proposedServices": {
				Type: gateway.TypeArray,
				Items: &gateway.Schema{
					Type: gateway.TypeObject,
					Properties: map[string]*gateway.Schema{
						"title":       str(),
						"description": str(),
						"benefit":     str(),
					},
					Order: []string{"title", "description", "benefit"},
				},
			},
			"pricingStrategy": str(),
			"cta":             str(),
		},
		Order: []string{"businessName", "introduction", "gapAnalysis", "proposedServices", "pricingStrategy", "cta"},
	}
}
