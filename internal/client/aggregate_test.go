package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gutenmorgen/gm/internal/groups"
	"github.com/gutenmorgen/gm/models"
)

// aggregateFixture serves a two-account world: a Google calendar account
// and a Linear task account.
func aggregateFixture(t *testing.T, opts ...Option) *Client {
	t.Helper()
	active := true
	inactive := false

	accounts := []models.Account{
		{
			ID:                "acct-g",
			PreferredEmail:    "me@corp.com",
			IntegrationID:     "google",
			IntegrationGroups: []string{"calendars"},
		},
		{
			ID:                "acct-o",
			PreferredEmail:    "me@home.net",
			IntegrationID:     "o365",
			IntegrationGroups: []string{"calendars"},
		},
		{
			ID:                "acct-l",
			IntegrationID:     "linear",
			IntegrationGroups: []string{"tasks"},
		},
	}
	calendars := []models.Calendar{
		{ID: "cal-g1", AccountID: "acct-g", Name: "Team", IsActiveByDefault: &active},
		{ID: "cal-g2", AccountID: "acct-g", Name: "Archive", IsActiveByDefault: &inactive},
		{ID: "cal-o1", AccountID: "acct-o", Name: "Home", IsActiveByDefault: &active},
	}
	eventsByAccount := map[string][]models.Event{
		"acct-g": {
			{ID: "e1", Title: "Standup", AccountID: "acct-g"},
			{ID: "e2", Title: "Standup (via Morgen)", AccountID: "acct-g"},
		},
		"acct-o": {
			{ID: "e3", Title: "Dentist", AccountID: "acct-o"},
		},
	}

	return newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/integrations/accounts/list":
			_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"accounts": accounts}})
		case "/calendars/list":
			_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"calendars": calendars}})
		case "/events/list":
			acct := r.URL.Query().Get("accountId")
			_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"events": eventsByAccount[acct]}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}, opts...)
}

func eventIDs(events []models.Event) []string {
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestListAllEvents_MergesAndDedupes(t *testing.T) {
	c := aggregateFixture(t)
	events, err := c.ListAllEvents(context.Background(), "2026-02-20", "2026-02-21", groups.CalendarFilter{})
	if err != nil {
		t.Fatalf("ListAllEvents failed: %v", err)
	}
	got := eventIDs(events)
	if len(got) != 2 || got[0] != "e1" || got[1] != "e3" {
		t.Errorf("events = %v, want [e1 e3]", got)
	}
}

func TestListAllEvents_AccountKeyFilter(t *testing.T) {
	c := aggregateFixture(t)
	filter := groups.CalendarFilter{AccountKeys: []string{"me@home.net"}}
	events, err := c.ListAllEvents(context.Background(), "2026-02-20", "2026-02-21", filter)
	if err != nil {
		t.Fatalf("ListAllEvents failed: %v", err)
	}
	got := eventIDs(events)
	if len(got) != 1 || got[0] != "e3" {
		t.Errorf("events = %v, want [e3]", got)
	}
}

func TestListAllEvents_AccountKeyWithIntegration(t *testing.T) {
	c := aggregateFixture(t)
	filter := groups.CalendarFilter{AccountKeys: []string{"me@corp.com:o365"}}
	events, err := c.ListAllEvents(context.Background(), "2026-02-20", "2026-02-21", filter)
	if err != nil {
		t.Fatalf("ListAllEvents failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("mismatched integration should match nothing, got %v", eventIDs(events))
	}
}

func TestListAllEvents_CalendarNameFilter(t *testing.T) {
	c := aggregateFixture(t)
	filter := groups.CalendarFilter{CalendarNames: []string{"Team"}}
	events, err := c.ListAllEvents(context.Background(), "2026-02-20", "2026-02-21", filter)
	if err != nil {
		t.Fatalf("ListAllEvents failed: %v", err)
	}
	got := eventIDs(events)
	if len(got) != 1 || got[0] != "e1" {
		t.Errorf("events = %v, want [e1]", got)
	}
}

func TestListAllEvents_ActiveOnly(t *testing.T) {
	// With ActiveOnly the inactive "Archive" calendar drops out but both
	// accounts still contribute their active calendars.
	c := aggregateFixture(t)
	filter := groups.CalendarFilter{ActiveOnly: true}
	events, err := c.ListAllEvents(context.Background(), "2026-02-20", "2026-02-21", filter)
	if err != nil {
		t.Fatalf("ListAllEvents failed: %v", err)
	}
	got := eventIDs(events)
	if len(got) != 2 || got[0] != "e1" || got[1] != "e3" {
		t.Errorf("events = %v, want [e1 e3]", got)
	}
}

func TestListAllEvents_NameFilterBeatsActiveOnly(t *testing.T) {
	c := aggregateFixture(t)
	filter := groups.CalendarFilter{CalendarNames: []string{"Archive"}, ActiveOnly: true}
	events, err := c.ListAllEvents(context.Background(), "2026-02-20", "2026-02-21", filter)
	if err != nil {
		t.Fatalf("ListAllEvents failed: %v", err)
	}
	// "Archive" is inactive; the explicit name list still selects it. The
	// fixture serves the same payload per account regardless of calendar
	// ids, so acct-g's events come back.
	got := eventIDs(events)
	if len(got) != 1 || got[0] != "e1" {
		t.Errorf("events = %v, want [e1]", got)
	}
}

func taskFixture(t *testing.T, failLinear bool) *Client {
	t.Helper()
	accounts := []models.Account{
		{ID: "acct-l", IntegrationID: "linear", IntegrationGroups: []string{"tasks"}},
		{ID: "acct-n", IntegrationID: "notion", IntegrationGroups: []string{"tasks"}},
	}
	return newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/integrations/accounts/list":
			_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"accounts": accounts}})
		case "/tasks/list":
			switch r.URL.Query().Get("accountId") {
			case "":
				_, _ = w.Write([]byte(`{"data":{"tasks":[{"id":"native-1","title":"Native"}]}}`))
			case "acct-l":
				if failLinear {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				_, _ = w.Write([]byte(`{"data":{"tasks":[{"id":"lin-1","integrationId":"linear"}],"labelDefs":[{"id":"state"}]}}`))
			case "acct-n":
				_, _ = w.Write([]byte(`{"data":{"tasks":[{"id":"not-1","integrationId":"notion"}],"spaces":[{"id":"sp1","name":"Eng"}]}}`))
			}
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
}

func taskIDs(tasks []models.Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, tk := range tasks {
		ids = append(ids, tk.ID)
	}
	return ids
}

func TestListAllTasks_AllSources(t *testing.T) {
	c := taskFixture(t, false)
	resp, err := c.ListAllTasks(context.Background(), "", 100)
	if err != nil {
		t.Fatalf("ListAllTasks failed: %v", err)
	}
	got := taskIDs(resp.Tasks)
	if len(got) != 3 || got[0] != "native-1" || got[1] != "lin-1" || got[2] != "not-1" {
		t.Errorf("tasks = %v", got)
	}
	if resp.Tasks[0].IntegrationID != models.SourceMorgen {
		t.Errorf("native task integration = %q, want %q", resp.Tasks[0].IntegrationID, models.SourceMorgen)
	}
	if len(resp.LabelDefs) != 1 || resp.LabelDefs[0].ID != "state" {
		t.Errorf("label defs = %+v", resp.LabelDefs)
	}
	if len(resp.Spaces) != 1 || resp.Spaces[0].Name != "Eng" {
		t.Errorf("spaces = %+v", resp.Spaces)
	}
}

func TestListAllTasks_NativeOnly(t *testing.T) {
	c := taskFixture(t, false)
	resp, err := c.ListAllTasks(context.Background(), models.SourceMorgen, 100)
	if err != nil {
		t.Fatalf("ListAllTasks failed: %v", err)
	}
	got := taskIDs(resp.Tasks)
	if len(got) != 1 || got[0] != "native-1" {
		t.Errorf("tasks = %v, want [native-1]", got)
	}
}

func TestListAllTasks_SingleExternalSource(t *testing.T) {
	c := taskFixture(t, false)
	resp, err := c.ListAllTasks(context.Background(), "linear", 100)
	if err != nil {
		t.Fatalf("ListAllTasks failed: %v", err)
	}
	got := taskIDs(resp.Tasks)
	if len(got) != 1 || got[0] != "lin-1" {
		t.Errorf("tasks = %v, want [lin-1]", got)
	}
}

func TestListAllTasks_FailingAccountIsIsolated(t *testing.T) {
	c := taskFixture(t, true)
	resp, err := c.ListAllTasks(context.Background(), "", 100)
	if err != nil {
		t.Fatalf("ListAllTasks should not fail when one account does: %v", err)
	}
	got := taskIDs(resp.Tasks)
	if len(got) != 2 || got[0] != "native-1" || got[1] != "not-1" {
		t.Errorf("tasks = %v, want [native-1 not-1]", got)
	}
}

func TestListAccountTasks_CachesWholePayload(t *testing.T) {
	hits := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{"data":{"tasks":[{"id":"lin-1"}],"labelDefs":[{"id":"state"}]}}`))
	}, WithCache(newTestCache(t)))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		payload, err := c.listAccountTasks(ctx, "acct-l", 100)
		if err != nil {
			t.Fatalf("listAccountTasks failed: %v", err)
		}
		if len(payload.Tasks) != 1 || len(payload.LabelDefs) != 1 {
			t.Errorf("payload = %+v", payload)
		}
	}
	if hits != 1 {
		t.Errorf("origin hit %d times, want 1", hits)
	}
}
