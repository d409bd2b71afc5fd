package msgcat

import (
    "os"
    "path/filepath"
    "strings"
    "testing"
)

func TestDefaultCatalogRenders(t *testing.T) {
    c := MustDefault()
    got, err := c.Render("state.finished", map[string]any{"Winner": "alice"})
    if err != nil { t.Fatalf("Render: %v", err) }
    if got != "Game over! Winner: alice" { t.Fatalf("got %q", got) }
    if c.Text("errors.not_your_turn", nil) != "Not your turn" {
        t.Fatalf("unexpected not_your_turn text")
    }
}

func TestRenderMissingKeyAndData(t *testing.T) {
    c := MustDefault()
    if _, err := c.Render("state.nope", nil); err == nil {
        t.Fatalf("expected error for unknown key")
    }
    if _, err := c.Render("state.finished", map[string]any{}); err == nil {
        t.Fatalf("expected error for missing template data")
    }
    if got := c.Text("state.nope", nil); got != "state.nope" {
        t.Fatalf("Text fallback = %q", got)
    }
}

func TestOverridesApplyAndDetectDuplicates(t *testing.T) {
    dir := t.TempDir()
    if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("state:\n  turn_light: \"White to move\"\n"), 0o644); err != nil {
        t.Fatal(err)
    }
    c, err := New(dir)
    if err != nil { t.Fatalf("New: %v", err) }
    if got := c.Text("state.turn_light", nil); got != "White to move" {
        t.Fatalf("override not applied: %q", got)
    }
    if got := c.Text("state.turn_dark", nil); got != "Turn of dark" {
        t.Fatalf("default lost: %q", got)
    }

    if err := os.WriteFile(filepath.Join(dir, "b.yml"), []byte("state:\n  turn_light: \"again\"\n"), 0o644); err != nil {
        t.Fatal(err)
    }
    if _, err := New(dir); err == nil || !strings.Contains(err.Error(), "duplicate") {
        t.Fatalf("expected duplicate key error, got %v", err)
    }
}

func TestNonStringLeafRejected(t *testing.T) {
    if _, err := parseYAMLToFlat([]byte("a:\n  b: 3\n")); err == nil {
        t.Fatalf("expected error for numeric leaf")
    }
}
