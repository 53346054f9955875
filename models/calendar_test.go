package models

import (
	"encoding/json"
	"testing"
)

func TestCalendarEffectiveID(t *testing.T) {
	if got := (Calendar{ID: "a", CalendarID: "b"}).EffectiveID(); got != "a" {
		t.Errorf("EffectiveID = %q, want a", got)
	}
	if got := (Calendar{CalendarID: "b"}).EffectiveID(); got != "b" {
		t.Errorf("EffectiveID = %q, want b", got)
	}
}

func TestCalendarIsWritable(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"writable flag true", `{"writable":true}`, true},
		{"writable flag false", `{"writable":false}`, false},
		{"myRights object", `{"myRights":{"mayUpdateItems":true}}`, true},
		{"myRights denies", `{"myRights":{"mayUpdateItems":false}}`, false},
		{"myRights bool", `{"myRights":true}`, false},
		{"nothing", `{}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var c Calendar
			if err := json.Unmarshal([]byte(tc.raw), &c); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := c.IsWritable(); got != tc.want {
				t.Errorf("IsWritable = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAccountHasGroup(t *testing.T) {
	a := Account{IntegrationGroups: []string{"calendars", "tasks"}}
	if !a.HasGroup("tasks") {
		t.Error("HasGroup(tasks) = false")
	}
	if a.HasGroup("contacts") {
		t.Error("HasGroup(contacts) = true")
	}
	if (Account{}).HasGroup("calendars") {
		t.Error("empty account claims a capability")
	}
}

func TestTaskSource(t *testing.T) {
	if got := (Task{}).Source(); got != SourceMorgen {
		t.Errorf("Source = %q, want %q", got, SourceMorgen)
	}
	if got := (Task{IntegrationID: "linear"}).Source(); got != "linear" {
		t.Errorf("Source = %q, want linear", got)
	}
}

func TestEventMetadataKey(t *testing.T) {
	raw := `{"id":"e1","morgen.so:metadata":{"taskId":"t1"}}`
	var e Event
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Metadata["taskId"] != "t1" {
		t.Errorf("metadata = %v", e.Metadata)
	}
}
