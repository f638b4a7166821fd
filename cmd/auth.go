package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-cli/internal/secrets"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Store provider API keys in the OS keychain",
	Long:  "Keys set here are used when the matching config value and LEADS_* environment variable are empty. Accounts: " + strings.Join(secrets.Accounts, ", ") + ".",
}

var authValue string

var authSetCmd = &cobra.Command{
	Use:   "set <account>",
	Short: "Store a key (read from --value or the first line of stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value := authValue
		if value == "" {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return eris.Wrap(err, "auth set: read key from stdin")
			}
			value = strings.TrimSpace(line)
		}
		if err := secrets.Set(args[0], value); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored %s key\n", args[0])
		return nil
	},
}

var authDeleteCmd = &cobra.Command{
	Use:   "delete <account>",
	Short: "Remove a stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := secrets.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s key\n", args[0])
		return nil
	},
}

func init() {
	authSetCmd.Flags().StringVar(&authValue, "value", "", "key value (prompted from stdin when empty)")
	authCmd.AddCommand(authSetCmd, authDeleteCmd)
	rootCmd.AddCommand(authCmd)
}
