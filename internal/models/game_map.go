package models

import "sort"

// SquadLimits carries the two capacity parameters a map is created with.
// They are opaque to the loader and passed through to session consumers.
type SquadLimits struct {
	Defend int `json:"defend" msgpack:"defend" xml:"DefendSquadSize"`
	Attack int `json:"attack" msgpack:"attack" xml:"AttackSquadSize"`
}

// DefaultSquadLimits matches the limits every level was built with originally.
var DefaultSquadLimits = SquadLimits{Defend: 5, Attack: 5}

// GameMap is a fully built grid of tiles. It owns its tiles exclusively and is
// read-only after construction apart from per-tile breakability.
type GameMap struct {
	tiles  map[Location]*Tile
	width  int
	height int
	limits SquadLimits
}

// NewGameMap takes ownership of tiles. Callers must not retain the map.
func NewGameMap(tiles map[Location]*Tile, width, height int, limits SquadLimits) *GameMap {
	return &GameMap{
		tiles:  tiles,
		width:  width,
		height: height,
		limits: limits,
	}
}

func (m *GameMap) Width() int          { return m.width }
func (m *GameMap) Height() int         { return m.height }
func (m *GameMap) Limits() SquadLimits { return m.limits }

// Len returns the number of tiles on the map.
func (m *GameMap) Len() int { return len(m.tiles) }

// Tile returns the tile at loc.
func (m *GameMap) Tile(loc Location) (*Tile, bool) {
	t, ok := m.tiles[loc]
	return t, ok
}

// TileAt is shorthand for Tile(Location{x, y}).
func (m *GameMap) TileAt(x, y int) (*Tile, bool) {
	return m.Tile(Location{X: x, Y: y})
}

// InBounds reports whether loc lies inside the map.
func (m *GameMap) InBounds(loc Location) bool {
	return loc.X >= 0 && loc.X < m.width && loc.Y >= 0 && loc.Y < m.height
}

// Locations returns every populated location in row-major order.
func (m *GameMap) Locations() []Location {
	locs := make([]Location, 0, len(m.tiles))
	for loc := range m.tiles {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool {
		return locs[i].Less(locs[j])
	})
	return locs
}

// Kinds returns a snapshot of the location -> kind layout.
func (m *GameMap) Kinds() map[Location]TileKind {
	kinds := make(map[Location]TileKind, len(m.tiles))
	for loc, t := range m.tiles {
		kinds[loc] = t.Kind()
	}
	return kinds
}

// CountKinds returns how many tiles of each kind the map holds.
func (m *GameMap) CountKinds() map[TileKind]int {
	counts := make(map[TileKind]int)
	for _, t := range m.tiles {
		counts[t.Kind()]++
	}
	return counts
}

// Entrances returns the locations of all Entrance tiles in row-major order.
func (m *GameMap) Entrances() []Location {
	var locs []Location
	for _, loc := range m.Locations() {
		if m.tiles[loc].Kind() == TileEntrance {
			locs = append(locs, loc)
		}
	}
	return locs
}

// MapView is the serialisable form of a GameMap used by the HTTP API.
type MapView struct {
	Width     int            `json:"width" msgpack:"width"`
	Height    int            `json:"height" msgpack:"height"`
	Limits    SquadLimits    `json:"limits" msgpack:"limits"`
	Rows      [][]string     `json:"rows" msgpack:"rows"`           // legend names, Rows[y][x]
	Breakable []Location     `json:"breakable" msgpack:"breakable"` // tiles currently breakable
	Counts    map[string]int `json:"counts" msgpack:"counts"`
}

// View builds a MapView snapshot.
func (m *GameMap) View() MapView {
	view := MapView{
		Width:     m.width,
		Height:    m.height,
		Limits:    m.limits,
		Rows:      make([][]string, m.height),
		Breakable: make([]Location, 0),
		Counts:    make(map[string]int),
	}
	for y := 0; y < m.height; y++ {
		row := make([]string, m.width)
		for x := 0; x < m.width; x++ {
			t, ok := m.tiles[Location{X: x, Y: y}]
			if !ok {
				continue
			}
			row[x] = t.Kind().LegendName()
			view.Counts[row[x]]++
			if t.IsBreakable() {
				view.Breakable = append(view.Breakable, t.Location())
			}
		}
		view.Rows[y] = row
	}
	return view
}

// TileView is the serialisable form of a single tile.
type TileView struct {
	Kind      TileKind `json:"kind" msgpack:"kind"`
	Name      string   `json:"name" msgpack:"name"`
	Location  Location `json:"location" msgpack:"location"`
	Breakable bool     `json:"breakable" msgpack:"breakable"`
}

// View builds a TileView snapshot.
func (t *Tile) View() TileView {
	return TileView{
		Kind:      t.kind,
		Name:      t.String(),
		Location:  t.location,
		Breakable: t.breakable,
	}
}
