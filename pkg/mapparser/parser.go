package mapparser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"lintang/cityrouter/pkg/datastructure"
)

const (
	intersectionTag = "I"
	roadTag         = "R"

	intersectionFields = 2 // location flag, id
	roadFields         = 5 // source, destination, length, speed, direction
)

// ParseFile reads a map file from disk. See Parse for the format.
func ParseFile(path string) (*datastructure.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open map file %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse builds a graph from whitespace separated records:
//
//	I <0|1> <id>
//	R <src> <dst> <lengthMeters> <speedKmh> <N|S|E|W>
//
// Intersections must be declared before the roads that reference them. Every failure wraps
// datastructure.ErrConfig and names the offset of the offending token.
func Parse(r io.Reader) (*datastructure.Graph, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(bufio.ScanWords)

	tokens := &tokenReader{scanner: scanner}
	builder := datastructure.NewGraphBuilder()

	for {
		tag, ok, err := tokens.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		switch tag {
		case intersectionTag:
			if err := parseIntersection(tokens, builder); err != nil {
				return nil, err
			}
		case roadTag:
			if err := parseRoad(tokens, builder); err != nil {
				return nil, err
			}
		default:
			return nil, tokens.errorf("unknown record tag %q", tag)
		}
	}

	return builder.Build(), nil
}

func parseIntersection(tokens *tokenReader, builder *datastructure.GraphBuilder) error {
	fields, err := tokens.take(intersectionTag, intersectionFields)
	if err != nil {
		return err
	}

	var isLocation bool
	switch fields[0] {
	case "0":
		isLocation = false
	case "1":
		isLocation = true
	default:
		return tokens.errorf("location flag must be 0 or 1, got %q", fields[0])
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return tokens.errorf("malformed intersection id %q", fields[1])
	}

	if err := builder.AddIntersection(id, isLocation); err != nil {
		return tokens.wrap(err)
	}
	return nil
}

func parseRoad(tokens *tokenReader, builder *datastructure.GraphBuilder) error {
	fields, err := tokens.take(roadTag, roadFields)
	if err != nil {
		return err
	}

	from, err := strconv.Atoi(fields[0])
	if err != nil {
		return tokens.errorf("malformed road source %q", fields[0])
	}
	to, err := strconv.Atoi(fields[1])
	if err != nil {
		return tokens.errorf("malformed road destination %q", fields[1])
	}
	length, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return tokens.errorf("malformed road length %q", fields[2])
	}
	speed, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return tokens.errorf("malformed road speed limit %q", fields[3])
	}
	direction, err := datastructure.ParseDirection(fields[4])
	if err != nil {
		return tokens.wrap(err)
	}

	if err := builder.AddRoad(from, to, length, speed, direction); err != nil {
		return tokens.wrap(err)
	}
	return nil
}

// tokenReader tracks the offset of the last token read for error messages.
type tokenReader struct {
	scanner *bufio.Scanner
	offset  int
}

func (t *tokenReader) next() (string, bool, error) {
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return "", false, fmt.Errorf("read map: %w", err)
		}
		return "", false, nil
	}
	t.offset++
	return t.scanner.Text(), true, nil
}

func (t *tokenReader) take(tag string, n int) ([]string, error) {
	fields := make([]string, 0, n)
	for len(fields) < n {
		tok, ok, err := t.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, t.errorf("truncated %s record: want %d fields, got %d", tag, n, len(fields))
		}
		fields = append(fields, tok)
	}
	return fields, nil
}

func (t *tokenReader) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: token %d: %s", datastructure.ErrConfig, t.offset, fmt.Sprintf(format, args...))
}

func (t *tokenReader) wrap(err error) error {
	return fmt.Errorf("token %d: %w", t.offset, err)
}
