package builder

import (
	"fmt"

	"github.com/siege-game/backend/internal/models"
)

// BuildError describes why a level could not be turned into a map.
// Kind is one of models.ErrUnknownTileID, models.ErrUnknownTileType or
// models.ErrMalformedGrid, so callers can use errors.Is on the result.
type BuildError struct {
	Kind     error
	Level    string
	Location models.Location
	ID       int
	TypeName string
	Reason   string
}

func (e *BuildError) Error() string {
	prefix := "build"
	if e.Level != "" {
		prefix = fmt.Sprintf("build level %q", e.Level)
	}

	switch e.Kind {
	case models.ErrUnknownTileID:
		return fmt.Sprintf("%s: %v %d at %s", prefix, e.Kind, e.ID, e.Location)
	case models.ErrUnknownTileType:
		return fmt.Sprintf("%s: %v %q for id %d at %s", prefix, e.Kind, e.TypeName, e.ID, e.Location)
	default:
		return fmt.Sprintf("%s: %v: %s", prefix, e.Kind, e.Reason)
	}
}

func (e *BuildError) Unwrap() error {
	return e.Kind
}

func malformed(level, format string, args ...any) *BuildError {
	return &BuildError{
		Kind:   models.ErrMalformedGrid,
		Level:  level,
		Reason: fmt.Sprintf(format, args...),
	}
}
