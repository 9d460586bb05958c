package parser

import (
	"fmt"
	"strings"
)

// Registry holds all available level parsers and picks one per file.
type Registry struct {
	parsers []LevelParser
}

// Global registry instance
var globalRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		parsers: []LevelParser{
			NewJSONLevelParser(),
			NewYAMLLevelParser(),
		},
	}
}

// GetGlobalRegistry returns the singleton registry.
func GetGlobalRegistry() *Registry {
	return globalRegistry
}

// Register adds a new parser to the registry.
func (r *Registry) Register(p LevelParser) {
	r.parsers = append(r.parsers, p)
}

// FindParser detects the correct parser for a file by its extension.
func (r *Registry) FindParser(filePath string) (LevelParser, error) {
	for _, p := range r.parsers {
		if p.CanParse(filePath) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no suitable parser found for file: %s", filePath)
}

// GetParserByName returns a parser by its name.
func (r *Registry) GetParserByName(name string) (LevelParser, error) {
	name = strings.ToLower(name)
	for _, p := range r.parsers {
		if strings.ToLower(p.Name()) == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("parser not found: %s", name)
}

// Extensions returns every file extension some parser handles.
func (r *Registry) Extensions() []string {
	var exts []string
	for _, p := range r.parsers {
		exts = append(exts, p.Extensions()...)
	}
	return exts
}
