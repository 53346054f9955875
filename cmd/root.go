package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// cfgFile is the path to the configuration file, set via --config.
	cfgFile string
	// version is the application version.
	version = "0.3.0"
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:     "gm",
	Short:   "gm is a fast CLI for the Morgen calendar and task API.",
	Version: version,
	Long: `gm talks to the Morgen API from the command line: list events and
tasks across every connected account, find free time slots, and manage
tags and task lists. Reads are served from a local TTL cache so agent
workflows stay well under the API rate limit.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Subcommands return errors unrendered;
// this is the single place they become the structured stderr object.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		outputError(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/gm/gm.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON instead of tables")
	rootCmd.PersistentFlags().Bool("no-cache", false, "bypass the local response cache")
	rootCmd.PersistentFlags().StringP("group", "g", "", "calendar group to scope event reads ('all' disables grouping)")
	rootCmd.PersistentFlags().Bool("all-calendars", false, "include calendars that are not active by default")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("no_cache", rootCmd.PersistentFlags().Lookup("no-cache"))
	_ = viper.BindPFlag("group", rootCmd.PersistentFlags().Lookup("group"))
	_ = viper.BindPFlag("all_calendars", rootCmd.PersistentFlags().Lookup("all-calendars"))
}
