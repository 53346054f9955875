package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gutenmorgen/gm/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the local response cache",
}

// openCacheStore opens the cache even when --no-cache is set; the
// operational commands always address the real store.
func openCacheStore() (*store.CacheStore, error) {
	dir := GlobalAppConfig.Cache.Dir
	if dir == "" {
		dir = defaultCacheDir()
	}
	return store.NewOsStore(dir)
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached API responses",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openCacheStore()
		if err != nil {
			return err
		}
		if err := s.Clear(); err != nil {
			return err
		}
		cmd.Println("Cache cleared.")
		return nil
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache contents and freshness",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openCacheStore()
		if err != nil {
			return err
		}
		stats := s.Stats()

		if isJSON() {
			return printJSON(stats)
		}

		cmd.Printf("%d entries in %s\n", stats.Entries, stats.CacheDir)
		keys := make([]string, 0, len(stats.Keys))
		for k := range stats.Keys {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			ks := stats.Keys[k]
			state := fmt.Sprintf("%.0fs left", ks.RemainingSeconds)
			if ks.Expired {
				state = "expired"
			}
			rows = append(rows, []string{
				k,
				fmt.Sprintf("%.0fs", ks.AgeSeconds),
				fmt.Sprintf("%ds", ks.TTL),
				state,
				fmt.Sprintf("%d", ks.SizeBytes),
			})
		}
		renderTable([]string{"key", "age", "ttl", "state", "bytes"}, rows)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd, cacheStatsCmd)
	rootCmd.AddCommand(cacheCmd)
}
