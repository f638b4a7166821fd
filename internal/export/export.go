// Package export writes saved leads and proposals in hand-off formats.
package export

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/lead-cli/internal/model"
)

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name. "yml" is accepted for yaml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", eris.Errorf("export: unknown format %q (want json, yaml, or xlsx)", s)
	}
}

// Leads writes leads to w in format f.
func Leads(w io.Writer, f Format, leads []model.BusinessLead) error {
	if leads == nil {
		leads = []model.BusinessLead{}
	}
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(leads), "export: encode json")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(leads); err != nil {
			return eris.Wrap(err, "export: encode yaml")
		}
		return eris.Wrap(enc.Close(), "export: close yaml encoder")
	case FormatXLSX:
		return writeXLSX(w, leads)
	default:
		return eris.Errorf("export: unknown format %q", f)
	}
}

// Columns is the spreadsheet header row.
var Columns = []string{
	"ID", "Name", "Address", "Rating", "Reviews", "Phone", "Website", "Email", "Maps URL", "Services", "Status",
}

func writeXLSX(w io.Writer, leads []model.BusinessLead) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, c := range Columns {
		header.AddCell().SetString(c)
	}

	for _, l := range leads {
		row := sheet.AddRow()
		row.AddCell().SetString(l.ID)
		row.AddCell().SetString(l.Name)
		row.AddCell().SetString(l.Address)
		if l.Rating != nil {
			row.AddCell().SetFloat(*l.Rating)
		} else {
			row.AddCell()
		}
		if l.ReviewCount != nil {
			row.AddCell().SetInt(*l.ReviewCount)
		} else {
			row.AddCell()
		}
		row.AddCell().SetString(deref(l.PhoneNumber))
		row.AddCell().SetString(deref(l.Website))
		row.AddCell().SetString(deref(l.Email))
		row.AddCell().SetString(l.MapsURL)
		row.AddCell().SetString(strings.Join(l.PotentialServices, ", "))
		row.AddCell().SetString(StatusLabel(l.Status))
	}

	return eris.Wrap(file.Write(w), "export: write xlsx")
}

var titler = cases.Title(language.English)

// StatusLabel is the display form of a status ("contacted" -> "Contacted").
func StatusLabel(s model.LeadStatus) string {
	return titler.String(string(s))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
