package fieldpath

import (
	"fmt"
	"strconv"
	"strings"
)

// SegmentKind distinguishes the two variants of a path segment.
type SegmentKind int

const (
	// SegmentField addresses a struct field by name.
	SegmentField SegmentKind = iota

	// SegmentIndex addresses an element of a slice or array.
	SegmentIndex
)

// Segment is one atomic token of a parsed path: either a field name or a
// non-negative sequence index.
type Segment struct {
	Kind  SegmentKind
	Name  string
	Index int
}

func fieldSegment(name string) Segment {
	return Segment{Kind: SegmentField, Name: name}
}

func indexSegment(index int) Segment {
	return Segment{Kind: SegmentIndex, Index: index}
}

func (s Segment) String() string {
	if s.Kind == SegmentIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}

	return s.Name
}

// Parse splits a path into its segments. Dots separate field names outside of
// brackets; brackets enclose a non-negative decimal index. "items[2].name"
// parses to the field "items", the index 2 and the field "name".
//
// Empty or non-numeric bracket content and unterminated brackets are parse
// errors. The empty path parses to an empty segment list; all package
// operations reject it.
func Parse(path string) ([]Segment, error) {
	var segments []Segment

	var field strings.Builder
	var index strings.Builder
	inBrackets := false

	flushField := func() {
		if field.Len() > 0 {
			segments = append(segments, fieldSegment(field.String()))
			field.Reset()
		}
	}

	for i := 0; i < len(path); i++ {
		c := path[i]

		switch {
		case c == '[' && !inBrackets:
			flushField()
			inBrackets = true
			index.Reset()

		case c == ']' && inBrackets:
			parsed, err := strconv.Atoi(index.String())
			if err != nil || parsed < 0 {
				return nil, fmt.Errorf("invalid index %q in path %q", index.String(), path)
			}

			segments = append(segments, indexSegment(parsed))
			inBrackets = false

		case c == '.' && !inBrackets:
			flushField()

		case inBrackets:
			index.WriteByte(c)

		default:
			field.WriteByte(c)
		}
	}

	if inBrackets {
		return nil, fmt.Errorf("unterminated index in path %q", path)
	}

	flushField()

	return segments, nil
}

// ParseDots is the legacy dot-only parse mode. It splits purely on dots and
// ignores empty parts. It never produces index segments: brackets are
// ordinary name characters here.
func ParseDots(path string) []Segment {
	var segments []Segment

	for _, part := range strings.Split(path, ".") {
		if part != "" {
			segments = append(segments, fieldSegment(part))
		}
	}

	return segments
}
