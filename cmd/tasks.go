package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gutenmorgen/gm/internal/client"
	"github.com/gutenmorgen/gm/internal/enrich"
	"github.com/gutenmorgen/gm/models"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage tasks across all connected sources",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, merged across sources and normalized",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}

		source, _ := cmd.Flags().GetString("source")
		allSources, _ := cmd.Flags().GetBool("all-sources")
		limit, _ := cmd.Flags().GetInt("limit")
		if !allSources && source == "" {
			source = models.SourceMorgen
		}
		if allSources {
			source = ""
		}

		result, err := c.ListAllTasks(cmd.Context(), source, limit)
		if err != nil {
			return err
		}

		// Tag names only exist for native tasks; a failed lookup just
		// leaves tag ids unresolved.
		tags, err := c.ListTags(cmd.Context())
		if err != nil {
			tags = nil
		}

		enriched := enrich.Tasks(result.Tasks, result.LabelDefs, tags)

		if isJSON() {
			return printJSON(enriched)
		}

		rows := make([][]string, 0, len(enriched))
		for _, t := range enriched {
			rows = append(rows, []string{
				shortID(t.ID),
				t.Title,
				t.Progress,
				t.Due,
				strings.Join(t.TagNames, ","),
				t.Source,
				t.SourceStatus,
			})
		}
		renderTable([]string{"id", "title", "progress", "due", "tags", "source", "status"}, rows)
		return nil
	},
}

var tasksGetCmd = &cobra.Command{
	Use:   "get <task-id>",
	Short: "Show one task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		task, err := c.GetTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(task)
	},
}

var tasksCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a task",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}

		payload := map[string]any{}
		for flag, key := range map[string]string{
			"title":       "title",
			"description": "description",
			"due":         "due",
			"list-id":     "taskListId",
			"duration":    "estimatedDuration",
		} {
			if v, _ := cmd.Flags().GetString(flag); v != "" {
				payload[key] = v
			}
		}
		if priority, _ := cmd.Flags().GetInt("priority"); priority > 0 {
			payload["priority"] = priority
		}
		if tagIDs, _ := cmd.Flags().GetStringSlice("tag-id"); len(tagIDs) > 0 {
			payload["tags"] = tagIDs
		}

		task, err := c.CreateTask(cmd.Context(), payload)
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(task)
		}
		if task != nil {
			cmd.Println("Created task", task.ID)
		}
		return nil
	},
}

var tasksUpdateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Update a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}

		payload := map[string]any{"id": args[0]}
		for flag, key := range map[string]string{
			"title":       "title",
			"description": "description",
			"due":         "due",
			"list-id":     "taskListId",
			"duration":    "estimatedDuration",
			"progress":    "progress",
		} {
			if v, _ := cmd.Flags().GetString(flag); v != "" {
				payload[key] = v
			}
		}
		if cmd.Flags().Changed("priority") {
			priority, _ := cmd.Flags().GetInt("priority")
			payload["priority"] = priority
		}

		task, err := c.UpdateTask(cmd.Context(), payload)
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(task)
		}
		cmd.Println("Updated task", args[0])
		return nil
	},
}

var tasksCloseCmd = &cobra.Command{
	Use:   "close <task-id>",
	Short: "Mark a task completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		task, err := c.CloseTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(task)
		}
		cmd.Println("Closed task", args[0])
		return nil
	},
}

var tasksReopenCmd = &cobra.Command{
	Use:   "reopen <task-id>",
	Short: "Reopen a completed task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		task, err := c.ReopenTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(task)
		}
		cmd.Println("Reopened task", args[0])
		return nil
	},
}

var tasksMoveCmd = &cobra.Command{
	Use:   "move <task-id>",
	Short: "Reorder or nest a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		after, _ := cmd.Flags().GetString("after")
		parent, _ := cmd.Flags().GetString("parent")
		task, err := c.MoveTask(cmd.Context(), args[0], after, parent)
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(task)
		}
		cmd.Println("Moved task", args[0])
		return nil
	},
}

var tasksScheduleCmd = &cobra.Command{
	Use:   "schedule <task-id>",
	Short: "Schedule a task as a linked calendar event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}

		start, _ := cmd.Flags().GetString("start")
		calendarID, _ := cmd.Flags().GetString("calendar-id")
		accountID, _ := cmd.Flags().GetString("account-id")
		duration, _ := cmd.Flags().GetInt("duration")
		tz, _ := cmd.Flags().GetString("timezone")

		event, err := c.ScheduleTask(cmd.Context(), args[0], start, calendarID, accountID,
			client.ScheduleTaskOptions{DurationMinutes: duration, TimeZone: tz})
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(event)
		}
		if event != nil {
			cmd.Println("Scheduled task", args[0], "as event", event.ID)
		}
		return nil
	},
}

var tasksDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		if err := c.DeleteTask(cmd.Context(), args[0]); err != nil {
			return err
		}
		cmd.Println("Deleted task", args[0])
		return nil
	},
}

func init() {
	tasksListCmd.Flags().String("source", "", fmt.Sprintf("only one source (e.g. %q, \"linear\")", models.SourceMorgen))
	tasksListCmd.Flags().Bool("all-sources", false, "merge every connected task source")
	tasksListCmd.Flags().Int("limit", 100, "maximum tasks per source")

	tasksCreateCmd.Flags().String("title", "", "task title")
	tasksCreateCmd.Flags().String("description", "", "task description")
	tasksCreateCmd.Flags().String("due", "", "due date (YYYY-MM-DD)")
	tasksCreateCmd.Flags().String("list-id", "", "task list id")
	tasksCreateCmd.Flags().String("duration", "", "estimated duration (ISO-8601)")
	tasksCreateCmd.Flags().Int("priority", 0, "priority (1 high .. 9 low)")
	tasksCreateCmd.Flags().StringSlice("tag-id", nil, "tag ids to attach")
	_ = tasksCreateCmd.MarkFlagRequired("title")

	tasksUpdateCmd.Flags().String("title", "", "task title")
	tasksUpdateCmd.Flags().String("description", "", "task description")
	tasksUpdateCmd.Flags().String("due", "", "due date (YYYY-MM-DD)")
	tasksUpdateCmd.Flags().String("list-id", "", "task list id")
	tasksUpdateCmd.Flags().String("duration", "", "estimated duration (ISO-8601)")
	tasksUpdateCmd.Flags().String("progress", "", "progress state")
	tasksUpdateCmd.Flags().Int("priority", 0, "priority (1 high .. 9 low)")

	tasksMoveCmd.Flags().String("after", "", "place after this task id")
	tasksMoveCmd.Flags().String("parent", "", "nest under this task id")

	tasksScheduleCmd.Flags().String("start", "", "event start (local-naive ISO-8601)")
	tasksScheduleCmd.Flags().String("calendar-id", "", "target calendar id")
	tasksScheduleCmd.Flags().String("account-id", "", "owning account id")
	tasksScheduleCmd.Flags().Int("duration", 0, "override duration in minutes")
	tasksScheduleCmd.Flags().String("timezone", "", "IANA timezone")
	_ = tasksScheduleCmd.MarkFlagRequired("start")
	_ = tasksScheduleCmd.MarkFlagRequired("calendar-id")
	_ = tasksScheduleCmd.MarkFlagRequired("account-id")

	tasksCmd.AddCommand(tasksListCmd, tasksGetCmd, tasksCreateCmd, tasksUpdateCmd,
		tasksCloseCmd, tasksReopenCmd, tasksMoveCmd, tasksScheduleCmd, tasksDeleteCmd)
	rootCmd.AddCommand(tasksCmd)
}
