// Package enrich post-processes aggregated events and tasks into the
// uniform shapes the output layer renders. Every transform here is pure:
// inputs are never mutated and absent metadata produces absent derived
// fields, never an error.
package enrich

import (
	"sort"
	"strings"

	"github.com/gutenmorgen/gm/models"
)

// statusLabelIDs is the ordered list of label ids that carry a task's
// status, one per external integration convention (Linear uses "state",
// Notion a URL-encoded property id). Adding an integration is a data
// change here, not new branching.
var statusLabelIDs = []string{
	"state",
	"notion%3A%2F%2Fprojects%2Fstatus_property",
}

// identifierLabelID carries the external short id (e.g. Linear's
// "ENG-123").
const identifierLabelID = "identifier"

// Event is an event plus its derived display strings.
type Event struct {
	models.Event
	ParticipantsDisplay string `json:"participants_display"`
	LocationDisplay     string `json:"location_display"`
}

// Events derives display strings for a list of events.
func Events(events []models.Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		out = append(out, Event{
			Event:               e,
			ParticipantsDisplay: FormatParticipants(e.Participants),
			LocationDisplay:     FormatLocations(e.Locations),
		})
	}
	return out
}

// FormatParticipants joins participant names, falling back to email and
// skipping resource participants (rooms, equipment).
func FormatParticipants(participants map[string]models.Participant) string {
	if len(participants) == 0 {
		return ""
	}
	names := make([]string, 0, len(participants))
	for _, p := range sortedValues(participants) {
		if p.Kind == "resource" {
			continue
		}
		name := p.Name
		if name == "" {
			name = p.Email
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

// FormatLocations joins every named location.
func FormatLocations(locations map[string]models.Location) string {
	if len(locations) == 0 {
		return ""
	}
	names := make([]string, 0, len(locations))
	for _, loc := range sortedLocationValues(locations) {
		if loc.Name != "" {
			names = append(names, loc.Name)
		}
	}
	return strings.Join(names, ", ")
}

// Task is a task normalized into the uniform source shape, so callers
// never need to learn integration-specific schemas.
type Task struct {
	models.Task
	Source       string   `json:"source"`
	SourceID     string   `json:"source_id,omitempty"`
	SourceURL    string   `json:"source_url,omitempty"`
	SourceStatus string   `json:"source_status,omitempty"`
	TagNames     []string `json:"tag_names"`
}

// Tasks normalizes tasks using the label definitions and tags scoped to
// the listing that produced them. Nil labelDefs and tags are fine.
func Tasks(tasks []models.Task, labelDefs []models.LabelDef, tags []models.Tag) []Task {
	tagNames := make(map[string]string, len(tags))
	for _, tag := range tags {
		if tag.ID != "" && tag.Name != "" {
			tagNames[tag.ID] = tag.Name
		}
	}

	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		enriched := Task{
			Task:     t,
			Source:   t.Source(),
			SourceID: labelValue(t.Labels, identifierLabelID),
			TagNames: []string{},
		}

		if original, ok := t.Links["original"]; ok {
			enriched.SourceURL = original.Href
		}

		enriched.SourceStatus = resolveStatus(t.Labels, labelDefs)

		for _, tid := range t.Tags {
			if name, ok := tagNames[tid]; ok {
				enriched.TagNames = append(enriched.TagNames, name)
			}
		}

		out = append(out, enriched)
	}
	return out
}

// sortedValues yields participants in stable map-key order so display
// strings do not shuffle between runs.
func sortedValues(m map[string]models.Participant) []models.Participant {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]models.Participant, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func sortedLocationValues(m map[string]models.Location) []models.Location {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]models.Location, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// resolveStatus finds the first known status label on the task and maps
// its opaque value through the matching label definition. An unmapped
// value comes back verbatim rather than absent.
func resolveStatus(labels []models.Label, defs []models.LabelDef) string {
	for _, id := range statusLabelIDs {
		raw, ok := findLabel(labels, id)
		if !ok {
			continue
		}
		return displayValue(defs, id, raw)
	}
	return ""
}

func labelValue(labels []models.Label, id string) string {
	v, _ := findLabel(labels, id)
	return v
}

func findLabel(labels []models.Label, id string) (string, bool) {
	for _, l := range labels {
		if l.ID == id {
			return l.Value, true
		}
	}
	return "", false
}

// displayValue looks (id, value) up in the definition tables, falling
// back to the raw value when no definition entry matches.
func displayValue(defs []models.LabelDef, id, value string) string {
	for _, def := range defs {
		if def.ID != id {
			continue
		}
		for _, dv := range def.Values {
			if dv.Value == value {
				return dv.Label
			}
		}
	}
	return value
}
