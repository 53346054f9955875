package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gutenmorgen/gm/internal/enrich"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Manage calendar events",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events across accounts in a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		filter, err := resolveCalendarFilter()
		if err != nil {
			return err
		}

		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")

		events, err := c.ListAllEvents(cmd.Context(), start, end, filter)
		if err != nil {
			return err
		}
		enriched := enrich.Events(events)

		if isJSON() {
			return printJSON(enriched)
		}

		rows := make([][]string, 0, len(enriched))
		for _, e := range enriched {
			rows = append(rows, []string{
				shortID(e.ID),
				e.Title,
				e.Start,
				e.Duration,
				e.ParticipantsDisplay,
				e.LocationDisplay,
			})
		}
		renderTable([]string{"id", "title", "start", "duration", "participants", "location"}, rows)
		return nil
	},
}

var eventsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an event",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}

		payload := map[string]any{}
		for flag, key := range map[string]string{
			"title":       "title",
			"start":       "start",
			"duration":    "duration",
			"calendar-id": "calendarId",
			"account-id":  "accountId",
			"timezone":    "timeZone",
			"description": "description",
		} {
			if v, _ := cmd.Flags().GetString(flag); v != "" {
				payload[key] = v
			}
		}
		if allDay, _ := cmd.Flags().GetBool("all-day"); allDay {
			payload["showWithoutTime"] = true
		}

		event, err := c.CreateEvent(cmd.Context(), payload)
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(event)
		}
		if event != nil {
			cmd.Println("Created event", event.ID)
		}
		return nil
	},
}

var eventsUpdateCmd = &cobra.Command{
	Use:   "update <event-id>",
	Short: "Update an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}

		payload := map[string]any{"id": args[0]}
		for flag, key := range map[string]string{
			"title":       "title",
			"start":       "start",
			"duration":    "duration",
			"calendar-id": "calendarId",
			"account-id":  "accountId",
			"description": "description",
		} {
			if v, _ := cmd.Flags().GetString(flag); v != "" {
				payload[key] = v
			}
		}

		event, err := c.UpdateEvent(cmd.Context(), payload)
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(event)
		}
		cmd.Println("Updated event", args[0])
		return nil
	},
}

var eventsDeleteCmd = &cobra.Command{
	Use:   "delete <event-id>",
	Short: "Delete an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}

		payload := map[string]any{"id": args[0]}
		if calID, _ := cmd.Flags().GetString("calendar-id"); calID != "" {
			payload["calendarId"] = calID
		}
		if accID, _ := cmd.Flags().GetString("account-id"); accID != "" {
			payload["accountId"] = accID
		}

		if err := c.DeleteEvent(cmd.Context(), payload); err != nil {
			return err
		}
		cmd.Println("Deleted event", args[0])
		return nil
	},
}

var eventsRSVPCmd = &cobra.Command{
	Use:   "rsvp <event-id> <accepted|declined|tentative>",
	Short: "Respond to an event invitation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}

		payload := map[string]any{"id": args[0], "response": args[1]}
		if calID, _ := cmd.Flags().GetString("calendar-id"); calID != "" {
			payload["calendarId"] = calID
		}
		if accID, _ := cmd.Flags().GetString("account-id"); accID != "" {
			payload["accountId"] = accID
		}

		event, err := c.RSVPEvent(cmd.Context(), payload)
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(event)
		}
		cmd.Println("RSVP recorded for", args[0])
		return nil
	},
}

func init() {
	eventsListCmd.Flags().String("start", "", "range start (ISO-8601)")
	eventsListCmd.Flags().String("end", "", "range end (ISO-8601)")
	_ = eventsListCmd.MarkFlagRequired("start")
	_ = eventsListCmd.MarkFlagRequired("end")

	for _, c := range []*cobra.Command{eventsCreateCmd, eventsUpdateCmd} {
		c.Flags().String("title", "", "event title")
		c.Flags().String("start", "", "start time (local-naive ISO-8601)")
		c.Flags().String("duration", "", "ISO-8601 duration, e.g. PT30M")
		c.Flags().String("calendar-id", "", "target calendar id")
		c.Flags().String("account-id", "", "owning account id")
		c.Flags().String("description", "", "event description")
	}
	eventsCreateCmd.Flags().String("timezone", "", "IANA timezone (defaults to system zone)")
	eventsCreateCmd.Flags().Bool("all-day", false, "create an all-day event")

	for _, c := range []*cobra.Command{eventsDeleteCmd, eventsRSVPCmd} {
		c.Flags().String("calendar-id", "", "calendar id")
		c.Flags().String("account-id", "", "account id")
	}

	eventsCmd.AddCommand(eventsListCmd, eventsCreateCmd, eventsUpdateCmd, eventsDeleteCmd, eventsRSVPCmd)
	rootCmd.AddCommand(eventsCmd)
}
