package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-cli/internal/export"
	"github.com/sells-group/lead-cli/internal/model"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Manage saved leads",
}

var (
	leadsListStatus string
	leadsListJSON   bool
)

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initRepo(cmd.Context(), "leads")
		if err != nil {
			return err
		}
		defer env.Close()

		all, err := filterByStatus(env.Repo.List(), leadsListStatus)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if leadsListJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(all)
		}
		if len(all) == 0 {
			fmt.Fprintln(out, "No saved leads.")
			return nil
		}
		printLeads(out, all)
		return nil
	},
}

func filterByStatus(all []model.BusinessLead, status string) ([]model.BusinessLead, error) {
	if status == "" {
		return all, nil
	}
	want, err := model.ParseLeadStatus(status)
	if err != nil {
		return nil, err
	}
	out := make([]model.BusinessLead, 0, len(all))
	for _, l := range all {
		if l.Status == want {
			out = append(out, l)
		}
	}
	return out, nil
}

var (
	addID      string
	addName    string
	addAddress string
	addPhone   string
	addWebsite string
	addEmail   string
	addMapsURL string
	addRating  float64
	addReviews int
	addFile    string
)

var leadsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a lead from flags or a JSON file",
	Long:  "Saves a lead. Use --file to read a lead object (or array of them) as JSON, \"-\" for stdin. Saving an id that already exists does nothing.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var toAdd []model.BusinessLead
		if addFile != "" {
			var err error
			toAdd, err = readLeadsFile(cmd.InOrStdin(), addFile)
			if err != nil {
				return err
			}
		} else {
			if addName == "" {
				return eris.New("leads add: --name is required")
			}
			toAdd = []model.BusinessLead{leadFromFlags(cmd)}
		}

		env, err := initRepo(cmd.Context(), "leads")
		if err != nil {
			return err
		}
		defer env.Close()

		out := cmd.OutOrStdout()
		for _, l := range toAdd {
			added, err := env.Repo.Add(cmd.Context(), l)
			if err != nil {
				return eris.Wrapf(err, "leads add: %s", l.ID)
			}
			if added {
				fmt.Fprintf(out, "saved %s (%s)\n", l.ID, l.Name)
			} else {
				fmt.Fprintf(out, "already saved %s (%s)\n", l.ID, l.Name)
			}
		}
		return nil
	},
}

func leadFromFlags(cmd *cobra.Command) model.BusinessLead {
	l := model.BusinessLead{
		ID:          addID,
		Name:        addName,
		Address:     addAddress,
		PhoneNumber: optional(addPhone),
		Website:     optional(addWebsite),
		Email:       optional(addEmail),
		MapsURL:     addMapsURL,
		Status:      model.LeadStatusNew,
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if cmd.Flags().Changed("rating") {
		r := addRating
		l.Rating = &r
	}
	if cmd.Flags().Changed("reviews") {
		n := addReviews
		l.ReviewCount = &n
	}
	l.PotentialServices = model.PotentialServicesFor(l.Website)
	return l
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// readLeadsFile decodes a lead or an array of leads. Missing ids, status, and
// potential services are filled in.
func readLeadsFile(stdin io.Reader, path string) ([]model.BusinessLead, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, eris.Wrap(err, "leads add: read input")
	}

	var list []model.BusinessLead
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		err = json.Unmarshal(data, &list)
	} else {
		var one model.BusinessLead
		err = json.Unmarshal(data, &one)
		list = []model.BusinessLead{one}
	}
	if err != nil {
		return nil, eris.Wrap(err, "leads add: decode input")
	}

	for i := range list {
		l := &list[i]
		if l.Name == "" {
			return nil, eris.Errorf("leads add: entry %d has no name", i)
		}
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		if l.Status == "" {
			l.Status = model.LeadStatusNew
		}
		if !l.Status.Valid() {
			return nil, eris.Errorf("leads add: entry %d has invalid status %q", i, l.Status)
		}
		if l.PotentialServices == nil {
			l.PotentialServices = model.PotentialServicesFor(l.Website)
		}
	}
	return list, nil
}

var leadsStatusCmd = &cobra.Command{
	Use:   "status <id> <new|contacted|interested|converted>",
	Short: "Change a saved lead's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := model.ParseLeadStatus(args[1])
		if err != nil {
			return err
		}

		env, err := initRepo(cmd.Context(), "leads")
		if err != nil {
			return err
		}
		defer env.Close()

		updated, err := env.Repo.UpdateStatus(cmd.Context(), args[0], status)
		if err != nil {
			return err
		}
		if !updated {
			return eris.Errorf("leads status: no saved lead with id %q", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], status)
		return nil
	},
}

var leadsStatsJSON bool

var leadsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize saved leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initRepo(cmd.Context(), "leads")
		if err != nil {
			return err
		}
		defer env.Close()

		stats := env.Repo.Stats()
		out := cmd.OutOrStdout()
		if leadsStatsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Total leads\t%d\n", stats.Total)
		fmt.Fprintf(w, "Interested\t%d\n", stats.Interested)
		fmt.Fprintf(w, "Converted\t%d\n", stats.Converted)
		fmt.Fprintf(w, "No website\t%d\n", stats.NoWebsite)
		return w.Flush()
	},
}

var (
	exportFormat string
	exportOut    string
	exportStatus string
)

var leadsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved leads as json, yaml, or xlsx",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		if format == export.FormatXLSX && exportOut == "" {
			return eris.New("leads export: --out is required for xlsx")
		}

		env, err := initRepo(cmd.Context(), "leads")
		if err != nil {
			return err
		}
		defer env.Close()

		list, err := filterByStatus(env.Repo.List(), exportStatus)
		if err != nil {
			return err
		}

		return writeOutput(cmd.OutOrStdout(), exportOut, func(w io.Writer) error {
			return export.Leads(w, format, list)
		})
	},
}

// writeOutput runs write against path, or against stdout when path is empty.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "create output file")
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrap(f.Close(), "close output file")
}

func init() {
	leadsListCmd.Flags().StringVar(&leadsListStatus, "status", "", "only list leads with this status")
	leadsListCmd.Flags().BoolVar(&leadsListJSON, "json", false, "print leads as JSON")

	leadsAddCmd.Flags().StringVar(&addID, "id", "", "lead id (generated when empty)")
	leadsAddCmd.Flags().StringVar(&addName, "name", "", "business name")
	leadsAddCmd.Flags().StringVar(&addAddress, "address", "", "street address")
	leadsAddCmd.Flags().StringVar(&addPhone, "phone", "", "phone number")
	leadsAddCmd.Flags().StringVar(&addWebsite, "website", "", "website url")
	leadsAddCmd.Flags().StringVar(&addEmail, "email", "", "contact email")
	leadsAddCmd.Flags().StringVar(&addMapsURL, "maps-url", "", "maps listing url")
	leadsAddCmd.Flags().Float64Var(&addRating, "rating", 0, "rating out of 5")
	leadsAddCmd.Flags().IntVar(&addReviews, "reviews", 0, "review count")
	leadsAddCmd.Flags().StringVar(&addFile, "file", "", "read lead JSON from file (\"-\" for stdin)")

	leadsStatsCmd.Flags().BoolVar(&leadsStatsJSON, "json", false, "print stats as JSON")

	leadsExportCmd.Flags().StringVar(&exportFormat, "format", "json", "json, yaml, or xlsx")
	leadsExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	leadsExportCmd.Flags().StringVar(&exportStatus, "status", "", "only export leads with this status")

	leadsCmd.AddCommand(leadsListCmd, leadsAddCmd, leadsStatusCmd, leadsStatsCmd, leadsExportCmd)
	rootCmd.AddCommand(leadsCmd)
}
