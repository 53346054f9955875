package types

// AppConfig is the complete application configuration, unmarshaled from
// viper (config file + GM_* environment variables + flags).
type AppConfig struct {
	Verbose bool        `mapstructure:"verbose"`
	JSON    bool        `mapstructure:"json"`
	NoCache bool        `mapstructure:"no_cache"`
	API     APIConfig   `mapstructure:"api" validate:"required"`
	Cache   CacheConfig `mapstructure:"cache"`
}

// APIConfig holds the origin transport settings. The key is the only
// required piece of configuration; everything else has a default.
type APIConfig struct {
	Key            string `mapstructure:"key" validate:"required,min=1"`
	BaseURL        string `mapstructure:"base_url" validate:"required,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"min=1,max=300"`
}

// CacheConfig holds the local response cache settings.
type CacheConfig struct {
	// Dir is the cache directory. Empty means the platform default
	// (~/.cache/gm).
	Dir string `mapstructure:"dir"`
	// Disabled turns the cache off entirely; every read goes to the
	// origin.
	Disabled bool `mapstructure:"disabled"`
}
