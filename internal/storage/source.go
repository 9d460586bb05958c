package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/siege-game/backend/internal/models"
	"github.com/siege-game/backend/internal/parser"
)

// ErrLevelNotFound is returned when no source knows a level name.
var ErrLevelNotFound = errors.New("level not found")

// Level origins reported in models.LevelInfo.Source.
const (
	OriginEmbedded  = "embedded"
	OriginDirectory = "directory"
	OriginUpload    = "upload"
)

// LevelSource resolves level names to raw level data.
type LevelSource interface {
	Load(ctx context.Context, name string) (*models.RawLevel, error)
	List() ([]models.LevelInfo, error)
}

// FSSource reads "<name>.<ext>" level files from the root of a filesystem,
// trying each extension the parser registry knows.
type FSSource struct {
	fsys     fs.FS
	origin   string
	registry *parser.Registry
}

// NewFSSource creates a source over fsys.
func NewFSSource(fsys fs.FS, origin string) *FSSource {
	return &FSSource{
		fsys:     fsys,
		origin:   origin,
		registry: parser.GetGlobalRegistry(),
	}
}

// NewDirSource creates a source over a levels directory on disk.
func NewDirSource(dir string) *FSSource {
	return NewFSSource(os.DirFS(dir), OriginDirectory)
}

// Load reads and parses the named level.
func (s *FSSource) Load(ctx context.Context, name string) (*models.RawLevel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !fs.ValidPath(name) || name == "." {
		return nil, fmt.Errorf("%w: invalid name %q", ErrLevelNotFound, name)
	}

	for _, ext := range s.registry.Extensions() {
		fileName := name + ext
		data, err := fs.ReadFile(s.fsys, fileName)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", fileName, err)
		}

		level, err := parser.ParseLevelBytes(fileName, data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", fileName, err)
		}
		return level, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, name)
}

// List returns the levels at the root of the filesystem, sorted by name.
func (s *FSSource) List() ([]models.LevelInfo, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("listing levels: %w", err)
	}

	seen := make(map[string]bool)
	var infos []models.LevelInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := s.registry.FindParser(e.Name()); err != nil {
			continue
		}
		name := parser.LevelName(e.Name())
		if seen[name] {
			continue
		}
		seen[name] = true
		infos = append(infos, models.LevelInfo{Name: name, Source: s.origin})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos, nil
}

// ChainSource tries each source in order; the first that knows a level wins.
type ChainSource []LevelSource

func (c ChainSource) Load(ctx context.Context, name string) (*models.RawLevel, error) {
	for _, s := range c {
		level, err := s.Load(ctx, name)
		if errors.Is(err, ErrLevelNotFound) {
			continue
		}
		return level, err
	}
	return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, name)
}

// List merges the sources' listings. Names shadowed by an earlier source are dropped.
func (c ChainSource) List() ([]models.LevelInfo, error) {
	seen := make(map[string]bool)
	var infos []models.LevelInfo
	for _, s := range c {
		list, err := s.List()
		if err != nil {
			return nil, err
		}
		for _, info := range list {
			key := info.Name
			if info.ID != "" {
				key = info.ID
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			infos = append(infos, info)
		}
	}
	return infos, nil
}
