package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/gutenmorgen/gm/internal/client"
	"github.com/gutenmorgen/gm/internal/groups"
	"github.com/gutenmorgen/gm/internal/ui"
	"github.com/gutenmorgen/gm/store"
	"github.com/gutenmorgen/gm/types"
)

func isJSON() bool {
	return viper.GetBool("json")
}

func isVerbose() bool {
	return viper.GetBool("verbose")
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// outputError writes the structured error object to stderr. This is the
// single shape agents parse, so it is emitted regardless of --json.
func outputError(err error) {
	detail := types.Describe(err)
	raw, jerr := json.Marshal(map[string]types.ErrorDetail{"error": detail})
	if jerr != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Fprintln(os.Stderr, string(raw))
}

// getCacheStore opens the configured cache. Returns nil when caching is
// disabled; callers treat a nil store as cache-off.
func getCacheStore() (*store.CacheStore, error) {
	if GlobalAppConfig.Cache.Disabled || viper.GetBool("no_cache") {
		return nil, nil
	}
	dir := GlobalAppConfig.Cache.Dir
	if dir == "" {
		dir = defaultCacheDir()
	}
	return store.NewOsStore(dir)
}

// getClient builds an API client from the resolved configuration.
func getClient() (*client.Client, error) {
	if err := requireAPIConfig(); err != nil {
		return nil, err
	}
	opts := []client.Option{client.WithVerbose(isVerbose())}
	cache, err := getCacheStore()
	if err != nil {
		// A cache that cannot be opened must not block API access.
		if isVerbose() {
			fmt.Fprintln(os.Stderr, "gm: cache unavailable:", err)
		}
	} else if cache != nil {
		opts = append(opts, client.WithCache(cache))
	}
	return client.New(GlobalAppConfig.API, opts...), nil
}

// resolveCalendarFilter loads the group config and applies the --group /
// --all-calendars flags.
func resolveCalendarFilter() (groups.CalendarFilter, error) {
	cfg, err := groups.Load(afero.NewOsFs(), groupsFilePath())
	if err != nil {
		return groups.CalendarFilter{}, err
	}
	return groups.ResolveFilter(cfg, viper.GetString("group"), viper.GetBool("all_calendars"))
}

// shortID elides long opaque ids for table rows.
func shortID(id string) string {
	return ui.TruncateID(id, 16)
}

// renderTable prints rows as a terminal table, or "No results." when
// empty.
func renderTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Println("No results.")
		return
	}
	t := ui.Table{Headers: headers, Rows: rows, MaxWidth: ui.TerminalWidth() / len(headers)}
	fmt.Print(t.Render())
}
