package models

import "errors"

// Level build failures. Every failure aborts the build; no partial map is produced.
var (
	// ErrUnknownTileID: a grid cell's ID has no legend entry.
	ErrUnknownTileID = errors.New("unknown tile id")
	// ErrUnknownTileType: a legend entry names a type outside the tile catalog.
	ErrUnknownTileType = errors.New("unknown tile type")
	// ErrMalformedGrid: the grid is empty, ragged, or holds non-integer cells.
	ErrMalformedGrid = errors.New("malformed grid")
)
