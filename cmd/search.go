package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/geo"
	"github.com/sells-group/lead-cli/internal/model"
)

var (
	searchSave bool
	searchLat  float64
	searchLng  float64
	searchNear string
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find businesses matching a query",
	Long:  "Runs grounded discovery for the query, structures the results into candidate leads, and prints them. With --save every candidate is added to the saved lead list.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "search")
		if err != nil {
			return err
		}
		defer env.Close()

		loc, err := searchLocation(ctx, cmd)
		if err != nil {
			return err
		}

		query := strings.Join(args, " ")
		res, err := env.Searcher.Search(ctx, query, loc)
		if err != nil {
			return err
		}

		if searchSave {
			added, err := saveAll(ctx, env, res.Leads)
			if err != nil {
				return err
			}
			zap.L().Info("search results saved", zap.Int("added", added), zap.Int("found", len(res.Leads)))
		}

		out := cmd.OutOrStdout()
		if searchJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		printSearchResult(out, res)
		return nil
	},
}

// searchLocation resolves --lat/--lng or --near. Neither set means no bias.
func searchLocation(ctx context.Context, cmd *cobra.Command) (*model.Location, error) {
	latSet, lngSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lng")
	if latSet != lngSet {
		return nil, eris.New("search: --lat and --lng must be given together")
	}
	if latSet {
		return geo.Static{Latitude: searchLat, Longitude: searchLng}.Locate(ctx)
	}
	if searchNear != "" {
		return geo.Probe(ctx, nearLocator(searchNear), cfg.Geo.Timeout()), nil
	}
	return nil, nil
}

// saveAll adds each lead through the repository. Duplicates are skipped.
func saveAll(ctx context.Context, env *appEnv, found []model.BusinessLead) (int, error) {
	added := 0
	for _, l := range found {
		ok, err := env.Repo.Add(ctx, l)
		if err != nil {
			return added, eris.Wrapf(err, "save lead %s", l.ID)
		}
		if ok {
			added++
		}
	}
	return added, nil
}

func printSearchResult(out io.Writer, res *model.SearchResult) {
	if len(res.Leads) == 0 {
		fmt.Fprintln(out, "No businesses found.")
	} else {
		printLeads(out, res.Leads)
	}

	if len(res.GroundingLinks) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Sources:")
		for _, l := range res.GroundingLinks {
			fmt.Fprintf(out, "  %s  %s\n", l.Title, l.URI)
		}
	}
}

func printLeads(out io.Writer, leads []model.BusinessLead) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tRATING\tWEBSITE\tSTATUS\tSERVICES")
	for _, l := range leads {
		rating := "-"
		if l.Rating != nil {
			rating = fmt.Sprintf("%.1f", *l.Rating)
			if l.ReviewCount != nil {
				rating += fmt.Sprintf(" (%d)", *l.ReviewCount)
			}
		}
		website := "-"
		if l.HasWebsite() {
			website = *l.Website
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, l.Name, rating, website, l.Status, strings.Join(l.PotentialServices, ", "))
	}
	_ = w.Flush()
}

func init() {
	searchCmd.Flags().BoolVar(&searchSave, "save", false, "save every found lead")
	searchCmd.Flags().Float64Var(&searchLat, "lat", 0, "latitude to bias results toward")
	searchCmd.Flags().Float64Var(&searchLng, "lng", 0, "longitude to bias results toward")
	searchCmd.Flags().StringVar(&searchNear, "near", "", "place to bias results toward, e.g. \"Denver, CO\"")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(searchCmd)
}
