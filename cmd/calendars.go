package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var calendarsCmd = &cobra.Command{
	Use:   "calendars",
	Short: "Manage calendars",
}

var calendarsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all calendars",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		calendars, err := c.ListCalendars(cmd.Context())
		if err != nil {
			return err
		}

		if isJSON() {
			return printJSON(calendars)
		}

		rows := make([][]string, 0, len(calendars))
		for _, cal := range calendars {
			rows = append(rows, []string{
				cal.EffectiveID(),
				cal.Name,
				cal.AccountID,
				fmt.Sprint(cal.IsWritable()),
				activeFlag(cal.IsActiveByDefault),
			})
		}
		renderTable([]string{"id", "name", "accountId", "writable", "active"}, rows)
		return nil
	},
}

var calendarsUpdateCmd = &cobra.Command{
	Use:   "update <calendar-id>",
	Short: "Update calendar properties",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}

		payload := map[string]any{"id": args[0]}
		if accountID, _ := cmd.Flags().GetString("account-id"); accountID != "" {
			payload["accountId"] = accountID
		}
		if cmd.Flags().Changed("busy") {
			busy, _ := cmd.Flags().GetBool("busy")
			payload["busy"] = busy
		}

		cal, err := c.UpdateCalendar(cmd.Context(), payload)
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(cal)
		}
		cmd.Println("Updated calendar", args[0])
		return nil
	},
}

func activeFlag(b *bool) string {
	if b != nil && *b {
		return "yes"
	}
	return "no"
}

func init() {
	calendarsUpdateCmd.Flags().String("account-id", "", "owning account id")
	calendarsUpdateCmd.Flags().Bool("busy", false, "treat events as busy time")
	calendarsCmd.AddCommand(calendarsListCmd)
	calendarsCmd.AddCommand(calendarsUpdateCmd)
	rootCmd.AddCommand(calendarsCmd)
}
