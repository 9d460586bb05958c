package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/siege-game/backend/internal/models"
)

// LevelParser decodes one on-disk level format into a RawLevel.
type LevelParser interface {
	// Name returns the unique name of the parser.
	Name() string
	// Extensions lists the file extensions (with dot, lower case) this parser handles.
	Extensions() []string
	// CanParse returns true if this parser can handle the given file.
	CanParse(filePath string) bool
	// Parse decodes a level document.
	Parse(r io.Reader) (*models.RawLevel, error)
}

// Top-level document fields. Any other top-level key that reads as an integer
// is treated as a legend entry, which is how older level files store the legend.
const (
	fieldMap    = "map"
	fieldLegend = "legend"
	fieldName   = "name"
)

func hasExtension(p LevelParser, filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, e := range p.Extensions() {
		if e == ext {
			return true
		}
	}
	return false
}

// levelFromDocument converts a generic decoded document into a RawLevel.
func levelFromDocument(doc map[string]any) (*models.RawLevel, error) {
	rawGrid, ok := doc[fieldMap]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q field", models.ErrMalformedGrid, fieldMap)
	}
	grid, err := gridFromValue(rawGrid)
	if err != nil {
		return nil, err
	}

	legend, err := legendFromDocument(doc)
	if err != nil {
		return nil, err
	}

	level := &models.RawLevel{
		Grid:   grid,
		Legend: legend,
	}
	if name, ok := doc[fieldName].(string); ok {
		level.Name = name
	}
	return level, nil
}

func gridFromValue(v any) ([][]int, error) {
	rows, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be an array of rows", models.ErrMalformedGrid, fieldMap)
	}

	grid := make([][]int, len(rows))
	for y, r := range rows {
		cells, ok := r.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: row %d is not an array", models.ErrMalformedGrid, y)
		}
		row := make([]int, len(cells))
		for x, c := range cells {
			id, err := cellID(c)
			if err != nil {
				return nil, fmt.Errorf("%w: cell (%d, %d): %v", models.ErrMalformedGrid, x, y, err)
			}
			row[x] = id
		}
		grid[y] = row
	}
	return grid, nil
}

// cellID accepts integers, integral floats and numeric strings.
func cellID(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		if n > math.MaxInt {
			return 0, fmt.Errorf("value %d out of range", n)
		}
		return int(n), nil
	case float64:
		return integralFloat(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", n.String())
		}
		return integralFloat(f)
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.Atoi(s); err == nil {
			return i, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return integralFloat(f)
		}
		return 0, fmt.Errorf("%q is not an integer", n)
	case nil:
		return 0, fmt.Errorf("null cell")
	default:
		return 0, fmt.Errorf("unsupported cell value %v (%T)", v, v)
	}
}

func integralFloat(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%v out of range", f)
	}
	return int(f), nil
}

func legendFromDocument(doc map[string]any) (map[string]string, error) {
	legend := make(map[string]string)

	// Flat entries first so an explicit legend object wins on conflicts.
	for key, v := range doc {
		if key == fieldMap || key == fieldLegend || key == fieldName {
			continue
		}
		if _, err := strconv.Atoi(strings.TrimSpace(key)); err != nil {
			continue
		}
		legend[strings.TrimSpace(key)] = legendValue(v)
	}

	raw, ok := doc[fieldLegend]
	if !ok {
		return legend, nil
	}
	entries, ok := normalize(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%q must be an object", fieldLegend)
	}
	for key, v := range entries {
		legend[strings.TrimSpace(key)] = legendValue(v)
	}
	return legend, nil
}

// legendValue keeps strings as they are; anything else is rendered so the
// builder can report it as an unknown tile type.
func legendValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// normalize converts YAML's map[any]any into map[string]any recursively.
func normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}

// LegendIDs returns the legend keys in numeric order, for diagnostics.
func LegendIDs(legend map[string]string) []string {
	ids := make([]string, 0, len(legend))
	for id := range legend {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return ids[i] < ids[j]
	})
	return ids
}
