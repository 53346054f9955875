package ui

import (
	"strings"
	"testing"
)

func TestTruncateID(t *testing.T) {
	cases := []struct {
		id     string
		length int
		want   string
	}{
		{"short", 16, "short"},
		{"abcdefghijklmnopqrstuvwxyz", 16, "abcdefg..tuvwxyz"},
		{"abcdefghij", 4, "abcdefghij"}, // below the useful minimum
		{"exactly-sixteen!", 16, "exactly-sixteen!"},
	}
	for _, tc := range cases {
		if got := TruncateID(tc.id, tc.length); got != tc.want {
			t.Errorf("TruncateID(%q, %d) = %q, want %q", tc.id, tc.length, got, tc.want)
		}
	}
}

func TestTableRender(t *testing.T) {
	tbl := Table{
		Headers: []string{"id", "title"},
		Rows: [][]string{
			{"e1", "Standup"},
			{"e2", "Planning"},
		},
	}
	out := tbl.Render()
	if !strings.Contains(out, "Standup") || !strings.Contains(out, "Planning") {
		t.Errorf("rendered table missing rows:\n%s", out)
	}
	if !strings.Contains(out, "id") || !strings.Contains(out, "title") {
		t.Errorf("rendered table missing headers:\n%s", out)
	}
	if got := strings.Count(out, "\n"); got != 4 {
		t.Errorf("expected 4 lines (header, separator, 2 rows), got %d:\n%s", got, out)
	}
}

func TestTableRender_TruncatesWideCells(t *testing.T) {
	tbl := Table{
		Headers:  []string{"title"},
		Rows:     [][]string{{"a very long title that should not fit"}},
		MaxWidth: 10,
	}
	out := tbl.Render()
	if !strings.Contains(out, "~") {
		t.Errorf("expected truncation marker in:\n%s", out)
	}
	if strings.Contains(out, "should not fit") {
		t.Errorf("cell was not truncated:\n%s", out)
	}
}

func TestTableRender_ShortRowPadsMissingCells(t *testing.T) {
	tbl := Table{
		Headers: []string{"a", "b"},
		Rows:    [][]string{{"only"}},
	}
	out := tbl.Render()
	if !strings.Contains(out, "only") {
		t.Errorf("row content missing:\n%s", out)
	}
}

func TestTableRender_NoHeaders(t *testing.T) {
	tbl := Table{}
	if out := tbl.Render(); out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}
