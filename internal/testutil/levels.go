package testutil

import "github.com/siege-game/backend/internal/models"

// SquareLevel is the 2x2 level used to pin down the coordinate convention:
// Wall at (0,0), Floor at (1,0), Door at (0,1), Wall at (1,1).
func SquareLevel() *models.RawLevel {
	return &models.RawLevel{
		Name:   "square",
		Grid:   [][]int{{1, 2}, {3, 4}},
		Legend: map[string]string{"1": "wall", "2": "floor", "3": "door", "4": "wall"},
	}
}

// KeepLevel is a small level using every tile kind.
func KeepLevel() *models.RawLevel {
	return &models.RawLevel{
		Name: "keep",
		Grid: [][]int{
			{1, 1, 3, 1, 1},
			{5, 0, 2, 0, 5},
			{1, 6, 4, 6, 1},
		},
		Legend: map[string]string{
			"0": "floor",
			"1": "wall",
			"2": "softWall",
			"3": "window",
			"4": "door",
			"5": "entrance",
			"6": "barrier",
		},
	}
}

// LavaLevel references a tile type outside the catalog.
func LavaLevel() *models.RawLevel {
	return &models.RawLevel{
		Name:   "lava",
		Grid:   [][]int{{1, 7}},
		Legend: map[string]string{"1": "wall", "7": "lava"},
	}
}

// CloneLevel deep-copies a raw level.
func CloneLevel(l *models.RawLevel) *models.RawLevel {
	c := &models.RawLevel{
		Name:   l.Name,
		Grid:   make([][]int, len(l.Grid)),
		Legend: make(map[string]string, len(l.Legend)),
	}
	for i, row := range l.Grid {
		c.Grid[i] = append([]int(nil), row...)
	}
	for k, v := range l.Legend {
		c.Legend[k] = v
	}
	return c
}
