package builder

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/siege-game/backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource map[string]*models.RawLevel

func (s stubSource) Load(_ context.Context, name string) (*models.RawLevel, error) {
	level, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("level not found: %s", name)
	}
	return level, nil
}

func newTestBuilder(source LevelSource) (*Builder, *test.Hook) {
	log, hook := test.NewNullLogger()
	return New(source, log), hook
}

func allKindsLegend() map[string]string {
	return map[string]string{
		"0": "floor",
		"1": "wall",
		"2": "softWall",
		"3": "window",
		"4": "door",
		"5": "entrance",
		"6": "barrier",
	}
}

func TestBuildCoordinateConvention(t *testing.T) {
	level := &models.RawLevel{
		Name:   "square",
		Grid:   [][]int{{1, 2}, {3, 4}},
		Legend: map[string]string{"1": "wall", "2": "floor", "3": "door", "4": "wall"},
	}
	b, _ := newTestBuilder(nil)

	m, err := b.Build(level, models.DefaultSquadLimits)
	require.NoError(t, err)

	want := map[models.Location]models.TileKind{
		{X: 0, Y: 0}: models.TileWall,
		{X: 1, Y: 0}: models.TileFloor,
		{X: 0, Y: 1}: models.TileDoor,
		{X: 1, Y: 1}: models.TileWall,
	}
	assert.Equal(t, want, m.Kinds())
}

func TestBuildEveryLocationPopulated(t *testing.T) {
	level := &models.RawLevel{
		Name: "keep",
		Grid: [][]int{
			{1, 1, 1, 1, 1},
			{1, 0, 2, 0, 3},
			{5, 0, 4, 0, 1},
			{1, 6, 6, 1, 1},
		},
		Legend: allKindsLegend(),
	}
	b, _ := newTestBuilder(nil)

	m, err := b.Build(level, models.SquadLimits{Defend: 3, Attack: 7})
	require.NoError(t, err)

	assert.Equal(t, 5, m.Width())
	assert.Equal(t, 4, m.Height())
	assert.Equal(t, m.Width()*m.Height(), m.Len())
	assert.Equal(t, models.SquadLimits{Defend: 3, Attack: 7}, m.Limits())

	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			tile, ok := m.TileAt(x, y)
			require.True(t, ok, "missing tile at (%d, %d)", x, y)
			assert.Equal(t, models.NewLocation(x, y), tile.Location())
		}
	}

	entrance, _ := m.TileAt(0, 2)
	assert.Equal(t, models.TileEntrance, entrance.Kind())
	soft, _ := m.TileAt(2, 1)
	assert.True(t, soft.IsBreakable())
	window, _ := m.TileAt(4, 1)
	assert.False(t, window.IsBreakable())
}

func TestBuildUnknownTileID(t *testing.T) {
	level := &models.RawLevel{
		Name:   "holes",
		Grid:   [][]int{{1, 1}, {1, 9}},
		Legend: map[string]string{"1": "wall"},
	}
	b, _ := newTestBuilder(nil)

	m, err := b.Build(level, models.DefaultSquadLimits)
	require.Error(t, err)
	assert.Nil(t, m)
	assert.True(t, errors.Is(err, models.ErrUnknownTileID))
	assert.False(t, errors.Is(err, models.ErrUnknownTileType))

	var bErr *BuildError
	require.True(t, errors.As(err, &bErr))
	assert.Equal(t, 9, bErr.ID)
	assert.Equal(t, models.NewLocation(1, 1), bErr.Location)
	assert.Equal(t, "holes", bErr.Level)
	assert.Equal(t, `build level "holes": unknown tile id 9 at (1, 1)`, err.Error())
}

func TestBuildUnknownTileType(t *testing.T) {
	tests := []struct {
		name     string
		typeName string
	}{
		{"unrecognised name", "lava"},
		{"wrong case", "Wall"},
		{"snake case", "soft_wall"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level := &models.RawLevel{
				Grid:   [][]int{{1, 2}},
				Legend: map[string]string{"1": "floor", "2": tt.typeName},
			}

			m, err := Build(level, models.DefaultSquadLimits)
			assert.Nil(t, m)
			assert.ErrorIs(t, err, models.ErrUnknownTileType)

			var bErr *BuildError
			require.ErrorAs(t, err, &bErr)
			assert.Equal(t, tt.typeName, bErr.TypeName)
			assert.Equal(t, 2, bErr.ID)
			assert.Equal(t, models.NewLocation(1, 0), bErr.Location)
		})
	}
}

func TestBuildUnusedLegendEntriesIgnored(t *testing.T) {
	level := &models.RawLevel{
		Grid:   [][]int{{1}},
		Legend: map[string]string{"1": "wall", "2": "lava"},
	}

	m, err := Build(level, models.DefaultSquadLimits)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
}

func TestBuildMalformedGrid(t *testing.T) {
	tests := []struct {
		name  string
		level *models.RawLevel
	}{
		{"nil level", nil},
		{"no rows", &models.RawLevel{Grid: [][]int{}, Legend: allKindsLegend()}},
		{"empty first row", &models.RawLevel{Grid: [][]int{{}}, Legend: allKindsLegend()}},
		{"short row", &models.RawLevel{Grid: [][]int{{1, 1, 1}, {1, 1}}, Legend: allKindsLegend()}},
		{"long row", &models.RawLevel{Grid: [][]int{{1, 1}, {1, 1, 1}}, Legend: allKindsLegend()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Build(tt.level, models.DefaultSquadLimits)
			assert.Nil(t, m)
			assert.ErrorIs(t, err, models.ErrMalformedGrid)
		})
	}
}

func TestBuildIdempotent(t *testing.T) {
	level := &models.RawLevel{
		Grid:   [][]int{{1, 2, 5}, {0, 4, 6}},
		Legend: allKindsLegend(),
	}

	first, err := Build(level, models.DefaultSquadLimits)
	require.NoError(t, err)
	second, err := Build(level, models.DefaultSquadLimits)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, first.Kinds(), second.Kinds())

	a, _ := first.TileAt(1, 0)
	b, _ := second.TileAt(1, 0)
	assert.NotSame(t, a, b)

	a.SetBreakable(false)
	assert.True(t, b.IsBreakable(), "maps must not share tiles")
}

func TestBuildLevelFromSource(t *testing.T) {
	source := stubSource{
		"map_example": {
			Grid:   [][]int{{1, 5, 1}},
			Legend: allKindsLegend(),
		},
	}
	b, hook := newTestBuilder(source)

	m, err := b.BuildLevel(context.Background(), "map_example", models.DefaultSquadLimits)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())

	var messages []string
	for _, e := range hook.AllEntries() {
		assert.Equal(t, logrus.InfoLevel, e.Level)
		assert.Equal(t, "map_example", e.Data["level"])
		messages = append(messages, e.Message)
	}
	assert.Equal(t, []string{
		"Raw map file loaded",
		"Map size loaded 3 * 1",
		"Map ID -> tile objects done",
	}, messages)
}

func TestBuildLevelSourceError(t *testing.T) {
	b, _ := newTestBuilder(stubSource{})

	_, err := b.BuildLevel(context.Background(), "missing", models.DefaultSquadLimits)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `loading level "missing"`)

	_, err = New(nil, nil).BuildLevel(context.Background(), "any", models.DefaultSquadLimits)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	b, _ := newTestBuilder(nil)

	assert.NoError(t, b.Validate(&models.RawLevel{Grid: [][]int{{0}}, Legend: allKindsLegend()}))
	assert.ErrorIs(t, b.Validate(&models.RawLevel{Grid: [][]int{{7}}, Legend: allKindsLegend()}), models.ErrUnknownTileID)
}
