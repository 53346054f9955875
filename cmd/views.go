package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/gutenmorgen/gm/internal/enrich"
	"github.com/gutenmorgen/gm/internal/timeutil"
)

// runEventView lists events for a time range, enriched and sorted by
// start. The quick views (today, next, week) share it.
func runEventView(cmd *cobra.Command, start, end string, limit int) error {
	c, err := getClient()
	if err != nil {
		return err
	}
	filter, err := resolveCalendarFilter()
	if err != nil {
		return err
	}

	events, err := c.ListAllEvents(cmd.Context(), start, end, filter)
	if err != nil {
		return err
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Start < events[j].Start })
	if limit > 0 && len(events) > limit {
		events = events[:limit]
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
		})
	}
	renderTable([]string{"id", "title", "start", "duration", "participants"}, rows)
	return nil
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "List today's events",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, end := timeutil.TodayRange(time.Now())
		return runEventView(cmd, start, end, 0)
	},
}

var nextCmd = &cobra.Command{
	Use:   "next [count]",
	Short: "Show the next few upcoming events",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("count")
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid count %q", args[0])
			}
			limit = n
		}
		now := time.Now().UTC()
		start := now.Format("2006-01-02T15:04:05Z07:00")
		return runEventView(cmd, start, timeutil.EndOfNextDay(now), limit)
	},
}

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "List this week's events",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, end := timeutil.ThisWeekRange(time.Now())
		return runEventView(cmd, start, end, 0)
	},
}

var monthCmd = &cobra.Command{
	Use:   "month",
	Short: "List this month's events",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, end := timeutil.ThisMonthRange(time.Now())
		return runEventView(cmd, start, end, 0)
	},
}

func init() {
	nextCmd.Flags().Int("count", 3, "number of events to show")
	rootCmd.AddCommand(todayCmd, nextCmd, weekCmd, monthCmd)
}
