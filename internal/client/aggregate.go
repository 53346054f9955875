package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gutenmorgen/gm/internal/groups"
	"github.com/gutenmorgen/gm/models"
	"github.com/gutenmorgen/gm/store"
)

// syncedCopyMarker tags events Morgen mirrored from another account.
// Substring matching is a known heuristic carried over for
// compatibility: an event legitimately titled with this text would be
// dropped too.
const syncedCopyMarker = "(via Morgen)"

// ListAllEvents fans out event listing across every calendar-capable
// account and deduplicates synced copies. Failures on the account or
// calendar listings propagate; there is no fallback path.
func (c *Client) ListAllEvents(ctx context.Context, start, end string, filter groups.CalendarFilter) ([]models.Event, error) {
	accounts, err := c.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	calendars, err := c.ListCalendars(ctx)
	if err != nil {
		return nil, err
	}

	if len(filter.AccountKeys) > 0 {
		matched := accounts[:0:0]
		for _, a := range accounts {
			for _, key := range filter.AccountKeys {
				if groups.MatchAccount(a, key) {
					matched = append(matched, a)
					break
				}
			}
		}
		accounts = matched
	}

	// An explicit calendar-name allow-list takes priority over the
	// active-only flag.
	switch {
	case len(filter.CalendarNames) > 0:
		names := make(map[string]bool, len(filter.CalendarNames))
		for _, n := range filter.CalendarNames {
			names[n] = true
		}
		kept := calendars[:0:0]
		for _, cal := range calendars {
			if names[cal.Name] {
				kept = append(kept, cal)
			}
		}
		calendars = kept
	case filter.ActiveOnly:
		kept := calendars[:0:0]
		for _, cal := range calendars {
			if cal.IsActiveByDefault != nil && *cal.IsActiveByDefault {
				kept = append(kept, cal)
			}
		}
		calendars = kept
	}

	calsByAccount := map[string][]string{}
	for _, cal := range calendars {
		if cal.AccountID == "" || cal.EffectiveID() == "" {
			continue
		}
		calsByAccount[cal.AccountID] = append(calsByAccount[cal.AccountID], cal.EffectiveID())
	}

	var all []models.Event
	for _, account := range accounts {
		if !account.HasGroup("calendars") {
			continue
		}
		calIDs := calsByAccount[account.ID]
		if len(calIDs) == 0 {
			continue
		}
		events, err := c.ListEvents(ctx, account.ID, calIDs, start, end)
		if err != nil {
			return nil, err
		}
		all = append(all, events...)
	}

	// Dedup runs after the merge so originals survive no matter which
	// account order the fan-out used.
	deduped := all[:0:0]
	for _, e := range all {
		if strings.Contains(e.Title, syncedCopyMarker) {
			continue
		}
		deduped = append(deduped, e)
	}
	return deduped, nil
}

// taskPayload is the inner shape of a per-account task listing, cached
// whole so label definitions survive alongside their tasks.
type taskPayload struct {
	Tasks     []models.Task     `json:"tasks"`
	LabelDefs []models.LabelDef `json:"labelDefs,omitempty"`
	Spaces    []models.Space    `json:"spaces,omitempty"`
}

// ListAllTasks lists tasks across all connected sources, optionally
// scoped to one integration id ("morgen" means native tasks only).
//
// A failing external account is isolated: its contribution is dropped
// and everything else is still returned. Disconnected integrations 404
// upstream and must not take the whole listing down with them.
func (c *Client) ListAllTasks(ctx context.Context, source string, limit int) (models.TaskListResponse, error) {
	result := models.TaskListResponse{Tasks: []models.Task{}}

	if source == "" || source == models.SourceMorgen {
		native, err := c.ListTasks(ctx, limit, "")
		if err != nil {
			return result, err
		}
		for _, t := range native {
			if t.IntegrationID == "" {
				t.IntegrationID = models.SourceMorgen
			}
			result.Tasks = append(result.Tasks, t)
		}
	}

	taskAccounts, err := c.ListTaskAccounts(ctx)
	if err != nil {
		return result, err
	}

	for _, account := range taskAccounts {
		if source != "" && account.IntegrationID != source {
			continue
		}
		if account.ID == "" {
			continue
		}

		payload, err := c.listAccountTasks(ctx, account.ID, limit)
		if err != nil {
			c.logf("gm: skipping task account %s (%s): %v", account.ID, account.IntegrationID, err)
			continue
		}
		result.Tasks = append(result.Tasks, payload.Tasks...)
		result.LabelDefs = append(result.LabelDefs, payload.LabelDefs...)
		result.Spaces = append(result.Spaces, payload.Spaces...)
	}

	return result, nil
}

// listAccountTasks fetches one external account's tasks together with
// the label definitions and spaces scoped to that response.
func (c *Client) listAccountTasks(ctx context.Context, accountID string, limit int) (taskPayload, error) {
	cacheKey := "tasks/" + accountID
	if raw, ok := c.cacheGet(cacheKey); ok {
		var payload taskPayload
		if err := json.Unmarshal(raw, &payload); err == nil {
			return payload, nil
		}
	}

	q := url.Values{
		"accountId": {accountID},
		"limit":     {fmt.Sprint(limit)},
	}
	raw, err := c.request(ctx, http.MethodGet, "/tasks/list", q, nil)
	if err != nil {
		return taskPayload{}, err
	}

	inner, err := decodeSingle[taskPayload](raw, "")
	if err != nil {
		return taskPayload{}, err
	}
	if inner == nil {
		return taskPayload{}, nil
	}
	if enc, err := json.Marshal(inner); err == nil {
		c.cacheSet(cacheKey, enc, store.TTLTasks)
	}
	return *inner, nil
}
