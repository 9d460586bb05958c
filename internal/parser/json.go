package parser

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/siege-game/backend/internal/models"
)

type jsonLevelParser struct{}

// NewJSONLevelParser returns the parser for .json level files.
func NewJSONLevelParser() LevelParser {
	return jsonLevelParser{}
}

func (jsonLevelParser) Name() string         { return "json" }
func (jsonLevelParser) Extensions() []string { return []string{".json"} }

func (p jsonLevelParser) CanParse(filePath string) bool {
	return hasExtension(p, filePath)
}

func (jsonLevelParser) Parse(r io.Reader) (*models.RawLevel, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding level json: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("decoding level json: document is not an object")
	}
	return levelFromDocument(doc)
}
