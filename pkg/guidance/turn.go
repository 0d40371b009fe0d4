package guidance

import (
	"lintang/cityrouter/pkg/datastructure"
)

// instruction signs
const (
	U_TURN_UNKNOWN     = -999
	TURN_LEFT          = -2
	CONTINUE_ON_STREET = 0
	TURN_RIGHT         = 2
	FINISH             = 4
	START              = 101
)

// Turn is the maneuver between two consecutive road headings.
type Turn uint8

const (
	FORWARD Turn = iota
	BACK
	LEFT
	RIGHT
)

func (t Turn) String() string {
	switch t {
	case FORWARD:
		return "forward"
	case BACK:
		return "back"
	case LEFT:
		return "left"
	default:
		return "right"
	}
}

// Sign maps the turn to its instruction sign.
func (t Turn) Sign() int {
	switch t {
	case FORWARD:
		return CONTINUE_ON_STREET
	case BACK:
		return U_TURN_UNKNOWN
	case LEFT:
		return TURN_LEFT
	default:
		return TURN_RIGHT
	}
}

// TurnBetween is the maneuver needed to go from heading `from` to heading `to`.
//
//	        N
//	        |
//	  W ----+---- E
//	        |
//	        S
//
// Heading North then East is a right turn, heading East then North is a left turn.
func TurnBetween(from, to datastructure.CardinalDirection) Turn {
	if from == to {
		return FORWARD
	}
	if from.Swap() == to {
		return BACK
	}

	switch from {
	case datastructure.NORTH:
		if to == datastructure.EAST {
			return RIGHT
		}
		return LEFT
	case datastructure.SOUTH:
		if to == datastructure.EAST {
			return LEFT
		}
		return RIGHT
	case datastructure.EAST:
		if to == datastructure.NORTH {
			return LEFT
		}
		return RIGHT
	default: // WEST
		if to == datastructure.NORTH {
			return RIGHT
		}
		return LEFT
	}
}
