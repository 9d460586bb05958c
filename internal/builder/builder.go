// Package builder turns raw level descriptions into GameMaps.
package builder

import (
	"context"
	"fmt"
	"strconv"

	"github.com/siege-game/backend/internal/logger"
	"github.com/siege-game/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// LevelSource resolves a level name to raw level data.
type LevelSource interface {
	Load(ctx context.Context, name string) (*models.RawLevel, error)
}

// Builder loads levels from a source and builds maps from them.
// A Builder holds no per-build state and may be shared.
type Builder struct {
	source LevelSource
	log    logrus.FieldLogger
}

// New creates a Builder. A nil log uses the global logger.
func New(source LevelSource, log logrus.FieldLogger) *Builder {
	if log == nil {
		log = logger.WithComponent("builder")
	}
	return &Builder{
		source: source,
		log:    log,
	}
}

// BuildLevel loads the named level and builds it.
func (b *Builder) BuildLevel(ctx context.Context, name string, limits models.SquadLimits) (*models.GameMap, error) {
	if b.source == nil {
		return nil, fmt.Errorf("build level %q: no level source configured", name)
	}

	level, err := b.source.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loading level %q: %w", name, err)
	}
	if level != nil && level.Name == "" {
		level.Name = name
	}
	b.log.WithField("level", name).Info("Raw map file loaded")

	return b.Build(level, limits)
}

// Build constructs a GameMap from level. Grid[row][col] becomes the tile at
// Location{X: col, Y: row}. Any invalid cell aborts the whole build.
func (b *Builder) Build(level *models.RawLevel, limits models.SquadLimits) (*models.GameMap, error) {
	if level == nil {
		return nil, malformed("", "no level data")
	}
	log := b.log.WithField("level", level.Name)

	width, height, err := checkGrid(level)
	if err != nil {
		return nil, err
	}
	log.Infof("Map size loaded %d * %d", width, height)

	resolved := make(map[int]models.TileKind)
	tiles := make(map[models.Location]*models.Tile, width*height)

	for y, row := range level.Grid {
		for x, id := range row {
			loc := models.NewLocation(x, y)

			kind, ok := resolved[id]
			if !ok {
				var bErr *BuildError
				kind, bErr = resolveKind(level.Legend, id)
				if bErr != nil {
					bErr.Level = level.Name
					bErr.Location = loc
					return nil, bErr
				}
				resolved[id] = kind
			}

			tiles[loc] = models.NewTile(kind, loc)
		}
	}

	log.WithField("tiles", len(tiles)).Info("Map ID -> tile objects done")
	return models.NewGameMap(tiles, width, height, limits), nil
}

// Validate reports whether level would build, without keeping the result.
func (b *Builder) Validate(level *models.RawLevel) error {
	_, err := b.Build(level, models.DefaultSquadLimits)
	return err
}

// Build is a convenience wrapper around a Builder without a level source.
func Build(level *models.RawLevel, limits models.SquadLimits) (*models.GameMap, error) {
	return New(nil, nil).Build(level, limits)
}

// checkGrid enforces a non-empty rectangular grid and returns its dimensions.
func checkGrid(level *models.RawLevel) (width, height int, err error) {
	width, height = level.Dimensions()
	if height == 0 {
		return 0, 0, malformed(level.Name, "grid has no rows")
	}
	if width == 0 {
		return 0, 0, malformed(level.Name, "row 0 is empty")
	}
	for y, row := range level.Grid {
		if len(row) != width {
			return 0, 0, malformed(level.Name, "row %d has %d cells, expected %d", y, len(row), width)
		}
	}
	return width, height, nil
}

func resolveKind(legend map[string]string, id int) (models.TileKind, *BuildError) {
	typeName, ok := legend[strconv.Itoa(id)]
	if !ok {
		return 0, &BuildError{Kind: models.ErrUnknownTileID, ID: id}
	}
	kind, ok := models.ParseTileKind(typeName)
	if !ok {
		return 0, &BuildError{Kind: models.ErrUnknownTileType, ID: id, TypeName: typeName}
	}
	return kind, nil
}
