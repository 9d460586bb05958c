package parser

import (
	"fmt"
	"io"

	"github.com/siege-game/backend/internal/models"
	"gopkg.in/yaml.v3"
)

type yamlLevelParser struct{}

// NewYAMLLevelParser returns the parser for .yaml/.yml level files.
func NewYAMLLevelParser() LevelParser {
	return yamlLevelParser{}
}

func (yamlLevelParser) Name() string         { return "yaml" }
func (yamlLevelParser) Extensions() []string { return []string{".yaml", ".yml"} }

func (p yamlLevelParser) CanParse(filePath string) bool {
	return hasExtension(p, filePath)
}

func (yamlLevelParser) Parse(r io.Reader) (*models.RawLevel, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding level yaml: %w", err)
	}
	doc, ok := normalize(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decoding level yaml: document is not a mapping")
	}
	return levelFromDocument(doc)
}
