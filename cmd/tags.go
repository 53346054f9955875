package cmd

import (
	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Manage task tags",
}

var tagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		tags, err := c.ListTags(cmd.Context())
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(tags)
		}
		rows := make([][]string, 0, len(tags))
		for _, t := range tags {
			rows = append(rows, []string{shortID(t.ID), t.Name, t.Color})
		}
		renderTable([]string{"id", "name", "color"}, rows)
		return nil
	},
}

var tagsGetCmd = &cobra.Command{
	Use:   "get <tag-id>",
	Short: "Show one tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		tag, err := c.GetTag(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(tag)
	},
}

var tagsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a tag",
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
		tag, err := c.CreateTag(cmd.Context(), payload)
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(tag)
		}
		if tag != nil {
			cmd.Println("Created tag", tag.ID)
		}
		return nil
	},
}

var tagsUpdateCmd = &cobra.Command{
	Use:   "update <tag-id>",
	Short: "Update a tag",
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
		tag, err := c.UpdateTag(cmd.Context(), payload)
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(tag)
		}
		cmd.Println("Updated tag", args[0])
		return nil
	},
}

var tagsDeleteCmd = &cobra.Command{
	Use:   "delete <tag-id>",
	Short: "Delete a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		if err := c.DeleteTag(cmd.Context(), args[0]); err != nil {
			return err
		}
		cmd.Println("Deleted tag", args[0])
		return nil
	},
}

func init() {
	tagsCreateCmd.Flags().String("color", "", "tag color (hex)")
	tagsUpdateCmd.Flags().String("name", "", "new name")
	tagsUpdateCmd.Flags().String("color", "", "new color (hex)")
	tagsCmd.AddCommand(tagsListCmd, tagsGetCmd, tagsCreateCmd, tagsUpdateCmd, tagsDeleteCmd)
	rootCmd.AddCommand(tagsCmd)
}
