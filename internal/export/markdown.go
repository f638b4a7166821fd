package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-cli/internal/model"
)

// ProposalMarkdown renders p as a printable Markdown document. lead may be
// nil; when set its contact details are included in the header.
func ProposalMarkdown(w io.Writer, p *model.Proposal, lead *model.BusinessLead) error {
	if p == nil {
		return eris.New("export: nil proposal")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Proposal for %s\n\n", p.BusinessName)
	if lead != nil {
		fmt.Fprintf(&b, "_%s_", lead.Address)
		if lead.HasWebsite() {
			fmt.Fprintf(&b, " · %s", *lead.Website)
		}
		b.WriteString("\n\n")
	}

	section(&b, "Introduction", p.Introduction)
	section(&b, "Gap Analysis", p.GapAnalysis)

	if len(p.ProposedServices) > 0 {
		b.WriteString("## Proposed Services\n\n")
		for i, s := range p.ProposedServices {
			fmt.Fprintf(&b, "### %d. %s\n\n", i+1, s.Title)
			if s.Description != "" {
				fmt.Fprintf(&b, "%s\n\n", s.Description)
			}
			if s.Benefit != "" {
				fmt.Fprintf(&b, "**Benefit:** %s\n\n", s.Benefit)
			}
		}
	}

	section(&b, "Investment", p.PricingStrategy)
	section(&b, "Next Steps", p.CTA)

	_, err := io.WriteString(w, strings.TrimRight(b.String(), "\n")+"\n")
	return eris.Wrap(err, "export: write markdown")
}

func section(b *strings.Builder, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	fmt.Fprintf(b, "## %s\n\n%s\n\n", title, strings.TrimSpace(body))
}
