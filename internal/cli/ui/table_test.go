package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestTableRender(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"FIELD", "TYPE", "CONSTRAINTS"}, true)
	table.AddRow("name", "string", "min_length=3")
	table.AddRow("age", "int32", "ge=0, le=150")
	table.Render()

	out := buf.String()
	for _, want := range []string{"FIELD", "TYPE", "name", "string", "ge=0, le=150"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected table to contain %q, got:\n%s", want, out)
		}
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Errorf("expected header, divider, and 2 rows, got %d lines", len(lines))
	}
}

func TestTableColumnAlignment(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"A", "B"}, true)
	table.AddRow("longer-cell", "x")
	table.Render()

	lines := strings.Split(buf.String(), "\n")
	// Header cell must be padded to the widest cell in its column, so "B"
	// lands after 11 characters of column A plus the 2-space gutter.
	if idx := strings.Index(lines[0], "B"); idx != 13 {
		t.Errorf("expected second column at offset 13, got %d in %q", idx, lines[0])
	}
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	kv := NewKeyValueTable(&buf, true)
	kv.AddRow("Message", "demo.User")
	kv.AddRow("Fields", "4")
	kv.Render()

	out := buf.String()
	if !strings.Contains(out, "Message:") || !strings.Contains(out, "demo.User") {
		t.Errorf("unexpected key-value output:\n%s", out)
	}
	// Keys are padded to align values.
	if !strings.Contains(out, "Fields:  4") {
		t.Errorf("expected aligned value column, got:\n%s", out)
	}
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Models", true)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 || lines[0] != "Models" {
		t.Fatalf("unexpected header output: %q", lines)
	}
	if len([]rune(lines[1])) != len("Models") {
		t.Errorf("expected divider matching title width, got %q", lines[1])
	}
}
