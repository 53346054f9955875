// Package groups loads named calendar-group configuration and resolves
// CLI options into the account/calendar filter the aggregator applies.
package groups

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"

	"github.com/gutenmorgen/gm/models"
	"github.com/gutenmorgen/gm/types"
)

// GroupConfig is one named calendar group.
type GroupConfig struct {
	// Accounts holds "email" or "email:integration" keys.
	Accounts []string `toml:"accounts"`
	// Calendars is an optional calendar-name allow-list.
	Calendars []string `toml:"calendars"`
}

// Config is the top-level group configuration file.
type Config struct {
	DefaultGroup        string                 `toml:"default_group"`
	ActiveOnly          bool                   `toml:"active_only"`
	TaskCalendar        string                 `toml:"task_calendar"`
	TaskCalendarAccount string                 `toml:"task_calendar_account"`
	Groups              map[string]GroupConfig `toml:"groups"`
}

// CalendarFilter is the resolved filter applied when listing events.
// Nil slices mean "no filtering" on that axis.
type CalendarFilter struct {
	AccountKeys   []string
	CalendarNames []string
	ActiveOnly    bool
}

// Load reads a group configuration file. A missing file yields zero-value
// defaults, not an error; everything keeps working without one.
func Load(fs afero.Fs, path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	exists, err := afero.Exists(fs, path)
	if err != nil || !exists {
		return Config{}, nil
	}
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return Config{}, fmt.Errorf("read group config %s: %w", path, err)
	}
	var cfg Config
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse group config %s: %w", path, err)
	}
	return cfg, nil
}

// ResolveFilter turns CLI options into a CalendarFilter. The literal
// group name "all" disables account/calendar filtering; allCalendars
// additionally defeats the config's active_only default.
func ResolveFilter(cfg Config, group string, allCalendars bool) (CalendarFilter, error) {
	activeOnly := cfg.ActiveOnly && !allCalendars

	if group == "all" {
		return CalendarFilter{ActiveOnly: activeOnly}, nil
	}

	name := group
	if name == "" {
		name = cfg.DefaultGroup
	}
	if name == "" {
		return CalendarFilter{ActiveOnly: activeOnly}, nil
	}

	gc, ok := cfg.Groups[name]
	if !ok {
		available := make([]string, 0, len(cfg.Groups))
		for n := range cfg.Groups {
			available = append(available, n)
		}
		sort.Strings(available)
		suggestions := []string{"No groups configured - run `gm config init`"}
		if len(available) > 0 {
			suggestions = []string{"Available groups: " + strings.Join(available, ", ")}
		}
		return CalendarFilter{}, &types.GroupNotFoundError{
			Message:     fmt.Sprintf("Unknown group %q", name),
			Suggestions: suggestions,
		}
	}

	return CalendarFilter{
		AccountKeys:   gc.Accounts,
		CalendarNames: gc.Calendars,
		ActiveOnly:    activeOnly,
	}, nil
}

// MatchAccount reports whether an account matches an "email" or
// "email:integration" key. The email is checked against the preferred
// email first and then the additional-emails list; Google accounts often
// leave preferredEmail empty and only populate the list.
func MatchAccount(account models.Account, key string) bool {
	email, integration, hasIntegration := strings.Cut(key, ":")

	if hasIntegration && account.IntegrationID != integration {
		return false
	}
	if account.PreferredEmail == email {
		return true
	}
	for _, e := range account.Emails {
		if e == email {
			return true
		}
	}
	return false
}
