package model

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// LeadStatus is the sales stage of a saved lead.
type LeadStatus string

const (
	LeadStatusNew        LeadStatus = "new"
	LeadStatusContacted  LeadStatus = "contacted"
	LeadStatusInterested LeadStatus = "interested"
	LeadStatusConverted  LeadStatus = "converted"
)

// LeadStatuses lists every valid status in pipeline order.
var LeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusInterested,
	LeadStatusConverted,
}

// Valid reports whether s is one of the known statuses.
func (s LeadStatus) Valid() bool {
	for _, v := range LeadStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseLeadStatus converts user input into a LeadStatus.
func ParseLeadStatus(s string) (LeadStatus, error) {
	st := LeadStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", eris.Errorf("model: invalid lead status %q", s)
	}
	return st, nil
}

// Service labels offered to a lead, keyed off whether it already has a website.
var (
	ServicesWithWebsite    = []string{"SEO Optimization", "App Development"}
	ServicesWithoutWebsite = []string{"Website Creation", "Digital Presence"}
)

// BusinessLead is a prospective customer found by search and optionally saved.
type BusinessLead struct {
	ID                string     `json:"id" yaml:"id"`
	Name              string     `json:"name" yaml:"name"`
	Address           string     `json:"address" yaml:"address"`
	Rating            *float64   `json:"rating,omitempty" yaml:"rating,omitempty"`
	ReviewCount       *int       `json:"reviewCount,omitempty" yaml:"review_count,omitempty"`
	PhoneNumber       *string    `json:"phoneNumber,omitempty" yaml:"phone_number,omitempty"`
	Website           *string    `json:"website,omitempty" yaml:"website,omitempty"`
	Email             *string    `json:"email,omitempty" yaml:"email,omitempty"`
	MapsURL           string     `json:"mapsUrl" yaml:"maps_url"`
	PotentialServices []string   `json:"potentialServices" yaml:"potential_services"`
	Status            LeadStatus `json:"status" yaml:"status"`
	LastAnalyzed      *time.Time `json:"lastAnalyzed,omitempty" yaml:"last_analyzed,omitempty"`
}

// HasWebsite reports whether the lead has a non-empty website.
func (l BusinessLead) HasWebsite() bool {
	return l.Website != nil && *l.Website != ""
}

// Clone returns a deep copy so callers cannot mutate repository state.
func (l BusinessLead) Clone() BusinessLead {
	out := l
	out.Rating = clonePtr(l.Rating)
	out.ReviewCount = clonePtr(l.ReviewCount)
	out.PhoneNumber = clonePtr(l.PhoneNumber)
	out.Website = clonePtr(l.Website)
	out.Email = clonePtr(l.Email)
	out.LastAnalyzed = clonePtr(l.LastAnalyzed)
	if l.PotentialServices != nil {
		out.PotentialServices = append([]string(nil), l.PotentialServices...)
	}
	return out
}

// PotentialServicesFor derives the service pitch from website presence.
// An empty string counts as no website.
func PotentialServicesFor(website *string) []string {
	if website != nil && *website != "" {
		return append([]string(nil), ServicesWithWebsite...)
	}
	return append([]string(nil), ServicesWithoutWebsite...)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
