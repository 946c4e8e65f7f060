package diff

import (
	"regexp"
	"strconv"
	"strings"
)

// LineKind classifies a single line inside a hunk.
type LineKind int

const (
	// Context lines carry unchanged text around a change.
	Context LineKind = iota
	// Add lines are inserted into the target file.
	Add
	// Remove lines are deleted from the target file.
	Remove
)

// Line is one body line of a hunk, stripped of its leading marker.
type Line struct {
	Kind    LineKind
	Content string
}

// Hunk is one contiguous change region. StartLine and NewStartLine are
// 1-based line numbers in the original and resulting file; the counts default
// to 1 when the header omits them.
type Hunk struct {
	StartLine    int
	LineCount    int
	NewStartLine int
	NewLineCount int
	Lines        []Line
}

// Chunk holds every hunk targeting one file. Malformed records hunk header
// lines that failed to parse; those headers produce no Hunk, matching the
// lenient behavior of the format's common emitters, but callers can inspect
// them instead of losing the information.
type Chunk struct {
	File      string
	Hunks     []Hunk
	Malformed []string
}

const fileHeaderPrefix = "--- a/"

var hunkHeaderPattern = regexp.MustCompile(`@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Parse converts unified-diff text into chunks, one per "--- a/" header, in
// document order. A file section with no hunks yields a chunk with an empty
// hunk list. Parse never fails; it is a pure function of its input.
func Parse(input string) []Chunk {
	cur := newCursor(splitLines(input))
	var chunks []Chunk
	for {
		line, ok := cur.next()
		if !ok {
			break
		}
		switch {
		case strings.HasPrefix(line, fileHeaderPrefix):
			chunks = append(chunks, Chunk{File: line[len(fileHeaderPrefix):]})
		case strings.HasPrefix(line, "@@"):
			if len(chunks) == 0 {
				// Hunk before any file header has no home; skip it.
				continue
			}
			chunk := &chunks[len(chunks)-1]
			hunk, ok := parseHunkHeader(line)
			if !ok {
				chunk.Malformed = append(chunk.Malformed, line)
				continue
			}
			hunk.Lines = consumeBody(cur)
			chunk.Hunks = append(chunk.Hunks, hunk)
		}
	}
	return chunks
}

func parseHunkHeader(line string) (Hunk, bool) {
	match := hunkHeaderPattern.FindStringSubmatch(line)
	if match == nil {
		return Hunk{}, false
	}
	return Hunk{
		StartLine:    mustAtoi(match[1]),
		LineCount:    atoiDefault(match[2], 1),
		NewStartLine: mustAtoi(match[3]),
		NewLineCount: atoiDefault(match[4], 1),
	}, true
}

// consumeBody greedily takes lines until end of input, the next hunk header,
// or the next file header.
func consumeBody(cur *cursor) []Line {
	var lines []Line
	for {
		raw, ok := cur.peek()
		if !ok || strings.HasPrefix(raw, "@@") || strings.HasPrefix(raw, "---") {
			return lines
		}
		cur.next()
		lines = append(lines, classifyLine(raw))
	}
}

func classifyLine(raw string) Line {
	if raw == "" {
		return Line{Kind: Context}
	}
	switch raw[0] {
	case '-':
		return Line{Kind: Remove, Content: raw[1:]}
	case '+':
		return Line{Kind: Add, Content: raw[1:]}
	case ' ':
		return Line{Kind: Context, Content: raw[1:]}
	default:
		// Unmarked lines are tolerated as context.
		return Line{Kind: Context, Content: raw}
	}
}

type cursor struct {
	lines []string
	pos   int
}

func newCursor(lines []string) *cursor {
	return &cursor{lines: lines}
}

func (c *cursor) next() (string, bool) {
	line, ok := c.peek()
	if ok {
		c.pos++
	}
	return line, ok
}

func (c *cursor) peek() (string, bool) {
	if c.pos >= len(c.lines) {
		return "", false
	}
	return c.lines[c.pos], true
}

func splitLines(input string) []string {
	normalized := strings.ReplaceAll(input, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.Split(normalized, "\n")
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atoiDefault(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	return mustAtoi(s)
}
