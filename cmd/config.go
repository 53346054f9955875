package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/gutenmorgen/gm/types"
)

const (
	configName = "gm"
	envPrefix  = "GM"
)

// GlobalAppConfig holds the resolved application configuration.
var GlobalAppConfig types.AppConfig

var validate = validator.New()

// InitConfig reads the config file and GM_* environment variables.
// Called by cobra before every command runs.
func InitConfig() {
	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix) // GM_API_KEY, GM_VERBOSE, ...
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(configName)
		viper.AddConfigPath(configDir())
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		if cfgFile != "" || viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}

	viper.SetDefault("api.base_url", "https://api.morgen.so/v3")
	viper.SetDefault("api.timeout_seconds", 30)
	viper.SetDefault("cache.dir", defaultCacheDir())

	if err := viper.Unmarshal(&GlobalAppConfig); err != nil {
		fmt.Fprintln(os.Stderr, "Error parsing configuration:", err)
	}
}

// configDir returns the XDG-style gm config directory.
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gm")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "gm")
}

// groupsFilePath returns the calendar-group configuration file path.
func groupsFilePath() string {
	if p := viper.GetString("groups_file"); p != "" {
		return p
	}
	return filepath.Join(configDir(), "groups.toml")
}

func defaultCacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "gm")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "gm-cache")
	}
	return filepath.Join(home, ".cache", "gm")
}

// requireAPIConfig validates the pieces of configuration every API call
// needs.
func requireAPIConfig() error {
	if GlobalAppConfig.API.Key == "" {
		return &types.ConfigError{Message: "No API key configured"}
	}
	if err := validate.Struct(GlobalAppConfig.API); err != nil {
		return &types.ConfigError{Message: "Invalid API configuration: " + err.Error()}
	}
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage gm configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		dir := configDir()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir %s: %w", dir, err)
		}
		path := filepath.Join(dir, configName+".yaml")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}

		sample := map[string]any{
			"api": map[string]any{
				"key":             "YOUR_MORGEN_API_KEY",
				"base_url":        "https://api.morgen.so/v3",
				"timeout_seconds": 30,
			},
			"cache": map[string]any{
				"dir":      defaultCacheDir(),
				"disabled": false,
			},
		}
		raw, err := yaml.Marshal(sample)
		if err != nil {
			return fmt.Errorf("encode sample config: %w", err)
		}
		if err := os.WriteFile(path, raw, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		cmd.Println("Wrote", path)
		cmd.Println("Set your API key there or export GM_API_KEY.")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		redacted := GlobalAppConfig
		if redacted.API.Key != "" {
			redacted.API.Key = "***"
		}
		return printJSON(redacted)
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
