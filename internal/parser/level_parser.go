package parser

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/siege-game/backend/internal/models"
)

// ParseLevel parses a level file, picking the format from its extension.
// The level name defaults to the file name without extension.
func ParseLevel(filePath string) (*models.RawLevel, error) {
	p, err := globalRegistry.FindParser(filePath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	level, err := p.Parse(file)
	if err != nil {
		return nil, err
	}
	if level.Name == "" {
		level.Name = LevelName(filePath)
	}
	return level, nil
}

// ParseLevelFromReader parses a level in the named format ("json" or "yaml").
func ParseLevelFromReader(r io.Reader, format string) (*models.RawLevel, error) {
	p, err := globalRegistry.GetParserByName(format)
	if err != nil {
		return nil, err
	}
	return p.Parse(r)
}

// ParseLevelBytes parses level data whose format is inferred from fileName.
func ParseLevelBytes(fileName string, data []byte) (*models.RawLevel, error) {
	p, err := globalRegistry.FindParser(fileName)
	if err != nil {
		return nil, err
	}
	level, err := p.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if level.Name == "" {
		level.Name = LevelName(fileName)
	}
	return level, nil
}

// LevelName strips directory and extension: "data/levels/map_example.json" -> "map_example".
func LevelName(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
