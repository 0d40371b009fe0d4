package datastructure

import (
	"fmt"
	"strings"
)

// CardinalDirection is the compass heading of a road, seen from its source intersection.
type CardinalDirection uint8

const (
	NORTH CardinalDirection = iota
	SOUTH
	EAST
	WEST
)

// ParseDirection maps a map-file direction token (N, S, E, W) to a CardinalDirection.
func ParseDirection(token string) (CardinalDirection, error) {
	switch strings.TrimSpace(token) {
	case "N":
		return NORTH, nil
	case "S":
		return SOUTH, nil
	case "E":
		return EAST, nil
	case "W":
		return WEST, nil
	default:
		return NORTH, fmt.Errorf("%w: unrecognized direction token %q", ErrConfig, token)
	}
}

// Swap returns the opposite heading. North returns South, East returns West.
func (d CardinalDirection) Swap() CardinalDirection {
	switch d {
	case NORTH:
		return SOUTH
	case SOUTH:
		return NORTH
	case EAST:
		return WEST
	default:
		return EAST
	}
}

func (d CardinalDirection) String() string {
	switch d {
	case NORTH:
		return "North"
	case SOUTH:
		return "South"
	case EAST:
		return "East"
	case WEST:
		return "West"
	default:
		return fmt.Sprintf("CardinalDirection(%d)", uint8(d))
	}
}

// Token is the single-letter form used by the map file.
func (d CardinalDirection) Token() string {
	return d.String()[:1]
}

// IsVertical reports whether the heading lies on the north/south axis.
func (d CardinalDirection) IsVertical() bool {
	return d == NORTH || d == SOUTH
}
