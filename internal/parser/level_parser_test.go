package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/siege-game/backend/internal/models"
)

func TestParseLevelJSON(t *testing.T) {
	content := `{
  "map": [
    [1, 1, 1],
    [1, 2, 3]
  ],
  "legend": {"1": "wall", "2": "floor", "3": "door"}
}`
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "small_keep.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	level, err := ParseLevel(path)
	if err != nil {
		t.Fatalf("ParseLevel failed: %v", err)
	}

	if level.Name != "small_keep" {
		t.Errorf("expected name small_keep, got %s", level.Name)
	}
	w, h := level.Dimensions()
	if w != 3 || h != 2 {
		t.Errorf("expected 3x2, got %dx%d", w, h)
	}
	if level.Grid[1][2] != 3 {
		t.Errorf("expected grid[1][2] = 3, got %d", level.Grid[1][2])
	}
	if level.Legend["2"] != "floor" {
		t.Errorf("expected legend 2 -> floor, got %q", level.Legend["2"])
	}
}

func TestParseLevelFlatLegend(t *testing.T) {
	// Older level files keep legend entries next to "map".
	content := `{"map": [[0, 1]], "0": "entrance", "1": "softWall", "author": "someone"}`

	level, err := ParseLevelFromReader(strings.NewReader(content), "json")
	if err != nil {
		t.Fatalf("ParseLevelFromReader failed: %v", err)
	}
	if len(level.Legend) != 2 {
		t.Fatalf("expected 2 legend entries, got %v", level.Legend)
	}
	if level.Legend["0"] != "entrance" || level.Legend["1"] != "softWall" {
		t.Errorf("unexpected legend: %v", level.Legend)
	}
}

func TestParseLevelExplicitLegendWins(t *testing.T) {
	content := `{"map": [[1]], "1": "floor", "legend": {"1": "wall"}}`

	level, err := ParseLevelFromReader(strings.NewReader(content), "json")
	if err != nil {
		t.Fatal(err)
	}
	if level.Legend["1"] != "wall" {
		t.Errorf("expected explicit legend to win, got %q", level.Legend["1"])
	}
}

func TestParseLevelIntegerLikeCells(t *testing.T) {
	content := `{"map": [[1.0, "2", 3]], "legend": {"1": "wall", "2": "floor", "3": "window"}}`

	level, err := ParseLevelFromReader(strings.NewReader(content), "json")
	if err != nil {
		t.Fatalf("ParseLevelFromReader failed: %v", err)
	}
	want := []int{1, 2, 3}
	for i, v := range want {
		if level.Grid[0][i] != v {
			t.Errorf("cell %d: expected %d, got %d", i, v, level.Grid[0][i])
		}
	}
}

func TestParseLevelMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing map", `{"legend": {"1": "wall"}}`},
		{"map not array", `{"map": 5}`},
		{"row not array", `{"map": [1, 2]}`},
		{"fractional cell", `{"map": [[1.5]]}`},
		{"text cell", `{"map": [["wall"]]}`},
		{"null cell", `{"map": [[null]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLevelFromReader(strings.NewReader(tt.content), "json")
			if !errors.Is(err, models.ErrMalformedGrid) {
				t.Errorf("expected ErrMalformedGrid, got %v", err)
			}
		})
	}
}

func TestParseLevelInvalidJSON(t *testing.T) {
	_, err := ParseLevelFromReader(strings.NewReader(`{"map": [[1]`), "json")
	if err == nil {
		t.Fatal("expected error for truncated json")
	}
	if errors.Is(err, models.ErrMalformedGrid) {
		t.Errorf("syntax errors should not be reported as malformed grids: %v", err)
	}

	if _, err := ParseLevelFromReader(strings.NewReader(`[1, 2]`), "json"); err == nil {
		t.Error("expected error for non-object document")
	}
}

func TestParseLevelYAML(t *testing.T) {
	content := `
name: courtyard
map:
  - [1, 2]
  - [3, 1]
legend:
  1: wall
  2: barrier
  3: entrance
`
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "courtyard_v2.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	level, err := ParseLevel(path)
	if err != nil {
		t.Fatalf("ParseLevel failed: %v", err)
	}
	if level.Name != "courtyard" {
		t.Errorf("expected name from document, got %s", level.Name)
	}
	if level.Grid[1][0] != 3 {
		t.Errorf("expected grid[1][0] = 3, got %d", level.Grid[1][0])
	}
	if level.Legend["2"] != "barrier" {
		t.Errorf("expected legend 2 -> barrier, got %q", level.Legend["2"])
	}
}

func TestParseLevelYAMLNonStringLegendValue(t *testing.T) {
	content := "map: [[1]]\nlegend:\n  1: 42\n"

	level, err := ParseLevelFromReader(strings.NewReader(content), "yaml")
	if err != nil {
		t.Fatal(err)
	}
	if level.Legend["1"] != "42" {
		t.Errorf("expected non-string legend value to be kept as text, got %q", level.Legend["1"])
	}
}

func TestParseLevelUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.txt")
	if err := os.WriteFile(path, []byte(`{"map": [[1]]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseLevel(path); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestLegendIDs(t *testing.T) {
	ids := LegendIDs(map[string]string{"10": "wall", "2": "floor", "1": "door"})
	want := []string{"1", "2", "10"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}
}
