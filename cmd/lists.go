package cmd

import (
	"github.com/spf13/cobra"
)

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Manage task lists",
}

var listsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List task lists",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		lists, err := c.ListTaskLists(cmd.Context())
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(lists)
		}
		rows := make([][]string, 0, len(lists))
		for _, l := range lists {
			rows = append(rows, []string{shortID(l.ID), l.Name, l.Color, l.ServiceName})
		}
		renderTable([]string{"id", "name", "color", "service"}, rows)
		return nil
	},
}

var listsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a task list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		payload := map[string]any{"name": args[0]}
		if color, _ := cmd.Flags().GetString("color"); color != "" {
			payload["color"] = color
		}
		list, err := c.CreateTaskList(cmd.Context(), payload)
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(list)
		}
		if list != nil {
			cmd.Println("Created list", list.ID)
		}
		return nil
	},
}

var listsUpdateCmd = &cobra.Command{
	Use:   "update <list-id>",
	Short: "Update a task list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		payload := map[string]any{"id": args[0]}
		if name, _ := cmd.Flags().GetString("name"); name != "" {
			payload["name"] = name
		}
		if color, _ := cmd.Flags().GetString("color"); color != "" {
			payload["color"] = color
		}
		list, err := c.UpdateTaskList(cmd.Context(), payload)
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(list)
		}
		cmd.Println("Updated list", args[0])
		return nil
	},
}

var listsDeleteCmd = &cobra.Command{
	Use:   "delete <list-id>",
	Short: "Delete a task list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		if err := c.DeleteTaskList(cmd.Context(), args[0]); err != nil {
			return err
		}
		cmd.Println("Deleted list", args[0])
		return nil
	},
}

func init() {
	listsCreateCmd.Flags().String("color", "", "list color (hex)")
	listsUpdateCmd.Flags().String("name", "", "new name")
	listsUpdateCmd.Flags().String("color", "", "new color (hex)")
	listsCmd.AddCommand(listsListCmd, listsCreateCmd, listsUpdateCmd, listsDeleteCmd)
	rootCmd.AddCommand(listsCmd)
}
