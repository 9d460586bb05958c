package models

// RawLevel is a level description as read from disk, before any tile is built.
// Grid[row][col] holds the cell ID; Legend maps the decimal form of each ID to a
// tile type name.
type RawLevel struct {
	Name   string            `json:"name" yaml:"name"`
	Grid   [][]int           `json:"map" yaml:"map"`
	Legend map[string]string `json:"legend" yaml:"legend"`
}

// Dimensions returns width (length of row 0) and height (number of rows).
func (l *RawLevel) Dimensions() (width, height int) {
	if len(l.Grid) == 0 {
		return 0, 0
	}
	return len(l.Grid[0]), len(l.Grid)
}

// LevelInfo describes a level available to start sessions from.
type LevelInfo struct {
	Name   string `json:"name"`
	Source string `json:"source"` // "embedded", "directory" or "upload"
	ID     string `json:"id,omitempty"`
}
