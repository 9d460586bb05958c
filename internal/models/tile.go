package models

import (
	"encoding/json"
	"fmt"
)

// TileKind identifies the variant of a map tile.
type TileKind uint8

const (
	TileWall TileKind = iota
	TileSoftWall
	TileFloor
	TileWindow
	TileDoor
	TileEntrance
	TileBarrier
)

type tileKindInfo struct {
	name       string // display name
	legendName string // name used in level legends
	breakable  bool   // default breakability
}

var tileKinds = [...]tileKindInfo{
	TileWall:     {name: "Wall", legendName: "wall"},
	TileSoftWall: {name: "SoftWall", legendName: "softWall", breakable: true},
	TileFloor:    {name: "Floor", legendName: "floor"},
	TileWindow:   {name: "Window", legendName: "window"},
	TileDoor:     {name: "Door", legendName: "door"},
	TileEntrance: {name: "Entrance", legendName: "entrance"},
	TileBarrier:  {name: "Barrier", legendName: "barrier"},
}

var legendKinds = func() map[string]TileKind {
	m := make(map[string]TileKind, len(tileKinds))
	for k, info := range tileKinds {
		m[info.legendName] = TileKind(k)
	}
	return m
}()

// TileKinds returns every tile kind in declaration order.
func TileKinds() []TileKind {
	kinds := make([]TileKind, len(tileKinds))
	for i := range tileKinds {
		kinds[i] = TileKind(i)
	}
	return kinds
}

// ParseTileKind maps a legend type name ("wall", "softWall", ...) to its kind.
// Matching is case-sensitive.
func ParseTileKind(legendName string) (TileKind, bool) {
	k, ok := legendKinds[legendName]
	return k, ok
}

// Valid reports whether k is one of the declared kinds.
func (k TileKind) Valid() bool {
	return int(k) < len(tileKinds)
}

func (k TileKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("TileKind(%d)", uint8(k))
	}
	return tileKinds[k].name
}

// LegendName returns the name used for k in level legends.
func (k TileKind) LegendName() string {
	if !k.Valid() {
		return ""
	}
	return tileKinds[k].legendName
}

// DefaultBreakable returns the breakability a new tile of kind k starts with.
func (k TileKind) DefaultBreakable() bool {
	return k.Valid() && tileKinds[k].breakable
}

func (k TileKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.LegendName())
}

func (k *TileKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, ok := ParseTileKind(name)
	if !ok {
		return fmt.Errorf("unknown tile kind %q", name)
	}
	*k = parsed
	return nil
}

// Tile is one cell's typed content. Its location is fixed at construction;
// breakability may change afterwards. Tiles are not safe for concurrent mutation.
type Tile struct {
	kind      TileKind
	location  Location
	breakable bool
}

// NewTile creates a tile of the given kind with the kind's default breakability.
func NewTile(kind TileKind, loc Location) *Tile {
	return &Tile{
		kind:      kind,
		location:  loc,
		breakable: kind.DefaultBreakable(),
	}
}

func NewWall(loc Location) *Tile     { return NewTile(TileWall, loc) }
func NewSoftWall(loc Location) *Tile { return NewTile(TileSoftWall, loc) }
func NewFloor(loc Location) *Tile    { return NewTile(TileFloor, loc) }
func NewWindow(loc Location) *Tile   { return NewTile(TileWindow, loc) }
func NewDoor(loc Location) *Tile     { return NewTile(TileDoor, loc) }
func NewEntrance(loc Location) *Tile { return NewTile(TileEntrance, loc) }
func NewBarrier(loc Location) *Tile  { return NewTile(TileBarrier, loc) }

func (t *Tile) Kind() TileKind     { return t.kind }
func (t *Tile) Location() Location { return t.location }
func (t *Tile) IsBreakable() bool  { return t.breakable }

// SetBreakable overrides the tile's breakability.
func (t *Tile) SetBreakable(breakable bool) {
	t.breakable = breakable
}

// String renders "<Kind> (<location>)", e.g. "Wall ((0, 1))".
func (t *Tile) String() string {
	return fmt.Sprintf("%s (%s)", t.kind, t.location)
}
