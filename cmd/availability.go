package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gutenmorgen/gm/internal/avail"
	"github.com/gutenmorgen/gm/internal/timeutil"
)

var availabilityCmd = &cobra.Command{
	Use:   "availability",
	Short: "Find free time slots on a given date",
	Long: `Scan the day's events across all (or a group's) calendars and list
the gaps inside working hours that are long enough to be useful.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		filter, err := resolveCalendarFilter()
		if err != nil {
			return err
		}

		date, _ := cmd.Flags().GetString("date")
		minDuration, _ := cmd.Flags().GetInt("min-duration")
		windowStart, _ := cmd.Flags().GetString("start")
		windowEnd, _ := cmd.Flags().GetString("end")

		dayStart := date + "T00:00:00"
		dayEnd := date + "T23:59:59"
		events, err := c.ListAllEvents(cmd.Context(), dayStart, dayEnd, filter)
		if err != nil {
			return err
		}

		slots, err := avail.ComputeFreeSlots(events, date, windowStart, windowEnd, minDuration)
		if err != nil {
			return err
		}

		if isJSON() {
			return printJSON(slots)
		}

		rows := make([][]string, 0, len(slots))
		for _, s := range slots {
			rows = append(rows, []string{
				s.Start,
				s.End,
				fmt.Sprintf("%s (%d min)", timeutil.FormatDurationMinutes(s.DurationMinutes), s.DurationMinutes),
			})
		}
		renderTable([]string{"start", "end", "duration"}, rows)
		return nil
	},
}

func init() {
	availabilityCmd.Flags().String("date", "", "date to check (YYYY-MM-DD)")
	availabilityCmd.Flags().Int("min-duration", 30, "minimum slot duration in minutes")
	availabilityCmd.Flags().String("start", "09:00", "working hours start (HH:MM)")
	availabilityCmd.Flags().String("end", "18:00", "working hours end (HH:MM)")
	_ = availabilityCmd.MarkFlagRequired("date")
	rootCmd.AddCommand(availabilityCmd)
}
