package model

// ProposedService is one line item in a proposal.
type ProposedService struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Benefit     string `json:"benefit" yaml:"benefit"`
}

// Proposal is a generated sales document for a single lead. Proposals are
// never persisted; each generation replaces the previous one.
type Proposal struct {
	LeadID           string            `json:"leadId" yaml:"lead_id"`
	BusinessName     string            `json:"businessName" yaml:"business_name"`
	Introduction     string            `json:"introduction" yaml:"introduction"`
	GapAnalysis      string            `json:"gapAnalysis" yaml:"gap_analysis"`
	ProposedServices []ProposedService `json:"proposedServices" yaml:"proposed_services"`
	PricingStrategy  string            `json:"pricingStrategy" yaml:"pricing_strategy"`
	CTA              string            `json:"cta" yaml:"cta"`
}
