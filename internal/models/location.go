// Package models contains domain types for the siege level loader.
package models

import "fmt"

// Location is a grid coordinate. X is the column (0 = leftmost), Y is the row (0 = topmost).
type Location struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
}

// NewLocation creates a Location from column and row.
func NewLocation(x, y int) Location {
	return Location{X: x, Y: y}
}

func (l Location) String() string {
	return fmt.Sprintf("(%d, %d)", l.X, l.Y)
}

// Less orders locations row-major: top row first, then left to right.
func (l Location) Less(other Location) bool {
	if l.Y != other.Y {
		return l.Y < other.Y
	}
	return l.X < other.X
}
