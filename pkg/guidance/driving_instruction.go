package guidance

import (
	"fmt"
	"strconv"
	"strings"

	"lintang/cityrouter/pkg/datastructure"
)

const invalidRoute = "Invalid Route"

type Instruction struct {
	Sign    int
	Turn    Turn
	Heading datastructure.CardinalDirection // heading after the maneuver
	// Distance is the meters driven before this instruction applies. For FINISH it is the length
	// of the last straight stretch.
	Distance float64
	NodeID   int // intersection the instruction applies at
}

func (instr Instruction) GetTurnDescription() string {
	switch instr.Sign {
	case START:
		return fmt.Sprintf("Head %s from Location %d", instr.Heading, instr.NodeID)
	case FINISH:
		return fmt.Sprintf("Arrive at Location %d after %s meters", instr.NodeID, formatMeters(instr.Distance))
	case U_TURN_UNKNOWN:
		return fmt.Sprintf("Make U-turn at %d after %s meters", instr.NodeID, formatMeters(instr.Distance))
	default:
		return fmt.Sprintf("Turn %s at %d after %s meters, heading %s", instr.Turn, instr.NodeID,
			formatMeters(instr.Distance), instr.Heading)
	}
}

// InstructionsFromRoute merges straight stretches of a route and emits one instruction per turn.
type InstructionsFromRoute struct {
	g *datastructure.Graph
}

func NewInstructionsFromRoute(g *datastructure.Graph) *InstructionsFromRoute {
	return &InstructionsFromRoute{g: g}
}

// GetInstructions returns START, one instruction per non-forward maneuver, then FINISH.
func (ifr *InstructionsFromRoute) GetInstructions(route datastructure.Route) ([]Instruction, error) {
	if err := route.Validate(ifr.g); err != nil {
		return nil, err
	}

	ids := route.IDs()
	edges := route.Edges(ifr.g)

	ways := make([]Instruction, 0)
	var currentDir datastructure.CardinalDirection
	accumulator := 0.0
	for i, edge := range edges {
		baseNode, _ := ifr.g.NodeIndex(ids[i])
		newDir := ifr.g.DirectionFrom(edge, baseNode)

		if i == 0 {
			ways = append(ways, Instruction{Sign: START, Turn: FORWARD, Heading: newDir, NodeID: ids[0]})
			currentDir = newDir
			accumulator = edge.Length
			continue
		}

		turn := TurnBetween(currentDir, newDir)
		if turn == FORWARD {
			accumulator += edge.Length
		} else {
			ways = append(ways, Instruction{
				Sign:     turn.Sign(),
				Turn:     turn,
				Heading:  newDir,
				Distance: accumulator,
				NodeID:   ids[i],
			})
			accumulator = edge.Length
		}
		currentDir = newDir
	}

	ways = append(ways, Instruction{
		Sign:     FINISH,
		Turn:     FORWARD,
		Heading:  currentDir,
		Distance: accumulator,
		NodeID:   ids[len(ids)-1],
	})
	return ways, nil
}

func GetTurnDescriptions(instructions []Instruction) []string {
	turnDescriptions := make([]string, 0, len(instructions))
	for _, instr := range instructions {
		turnDescriptions = append(turnDescriptions, instr.GetTurnDescription())
	}
	return turnDescriptions
}

// Directions renders the route as one sentence, e.g.
// "Head North from Location 1, then turn left after 300 meters onto Location 5".
// Routes that do not follow roads of g render as "Invalid Route".
func Directions(g *datastructure.Graph, route datastructure.Route) string {
	ways, err := NewInstructionsFromRoute(g).GetInstructions(route)
	if err != nil {
		return invalidRoute
	}

	var sb strings.Builder
	for _, instr := range ways {
		switch instr.Sign {
		case START:
			fmt.Fprintf(&sb, "Head %s from Location %d", instr.Heading, instr.NodeID)
		case FINISH:
			fmt.Fprintf(&sb, " onto Location %d", instr.NodeID)
		default:
			fmt.Fprintf(&sb, ", then turn %s after %s meters", instr.Turn, formatMeters(instr.Distance))
		}
	}
	return sb.String()
}

func formatMeters(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}
