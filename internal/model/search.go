package model

// PlaceholderURI marks a citation without a usable link.
const PlaceholderURI = "#"

// Location is a latitude/longitude pair used to bias discovery.
type Location struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// GroundingLink is a source citation attached to a discovery answer.
type GroundingLink struct {
	Title string `json:"title" yaml:"title"`
	URI   string `json:"uri" yaml:"uri"`
}

// Usable reports whether the link points somewhere real.
func (g GroundingLink) Usable() bool {
	return g.URI != "" && g.URI != PlaceholderURI
}

// SearchResult is the ephemeral output of one search. Leads are not yet saved.
type SearchResult struct {
	Leads          []BusinessLead  `json:"leads"`
	GroundingLinks []GroundingLink `json:"groundingLinks"`
}
