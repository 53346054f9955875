package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List connected accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		accounts, err := c.ListAccounts(cmd.Context())
		if err != nil {
			return err
		}

		if isJSON() {
			return printJSON(accounts)
		}

		rows := make([][]string, 0, len(accounts))
		for _, a := range accounts {
			email := a.PreferredEmail
			if email == "" && len(a.Emails) > 0 {
				email = a.Emails[0]
			}
			rows = append(rows, []string{
				a.ID,
				a.Name,
				email,
				a.IntegrationID,
				strings.Join(a.IntegrationGroups, ","),
			})
		}
		renderTable([]string{"id", "name", "email", "integration", "groups"}, rows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountsCmd)
}
