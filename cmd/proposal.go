package main

import (
	"encoding/json"
	"io"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-cli/internal/export"
)

var (
	proposalFormat string
	proposalOut    string
)

var proposalCmd = &cobra.Command{
	Use:   "proposal <lead-id>",
	Short: "Write an IT-services proposal for a saved lead",
	Long:  "Generates a fresh proposal for the saved lead on every call. Proposals are printed or written to a file; they are not stored.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if proposalFormat != "markdown" && proposalFormat != "json" {
			return eris.Errorf("proposal: unknown format %q (want markdown or json)", proposalFormat)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "proposal")
		if err != nil {
			return err
		}
		defer env.Close()

		lead, ok := env.Repo.Get(args[0])
		if !ok {
			return eris.Errorf("proposal: no saved lead with id %q", args[0])
		}

		p, err := env.Proposals.Generate(ctx, lead)
		if err != nil {
			return err
		}

		return writeOutput(cmd.OutOrStdout(), proposalOut, func(w io.Writer) error {
			if proposalFormat == "json" {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			}
			return export.ProposalMarkdown(w, p, &lead)
		})
	},
}

func init() {
	proposalCmd.Flags().StringVar(&proposalFormat, "format", "markdown", "markdown or json")
	proposalCmd.Flags().StringVarP(&proposalOut, "out", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(proposalCmd)
}
