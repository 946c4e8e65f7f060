package diff

import (
	"fmt"
	"strings"
)

// ApplyOptions control how hunks are matched against file content.
type ApplyOptions struct {
	// VerifyContext checks context and remove lines against the actual file
	// content before mutating it and returns a *ConflictError on mismatch.
	// When false the engine trusts the diff: positions that run past the end
	// of the file clip silently, exactly like a diff applied to the content
	// it was computed from.
	VerifyContext bool
}

// ConflictError reports a context or remove line that did not match the file
// content at the position the hunk arithmetic selected.
type ConflictError struct {
	Path     string
	Hunk     int // 1-based index within the chunk
	Line     int // 1-based line number in the current content
	Expected string
	Actual   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict in %s, hunk %d at line %d: expected %q, found %q",
		e.Path, e.Hunk, e.Line, e.Expected, e.Actual)
}

// ApplyToContent applies one chunk's hunks to the file's full original text
// and returns the new text.
//
// Hunk start lines refer to the original file, so a running offset tracks the
// net lines inserted and removed by earlier hunks in the same chunk. Within a
// hunk the lines are walked in order: context advances the position, remove
// deletes at the position, add inserts at the position. Applying a chunk to
// content that already received it is undefined; the arithmetic assumes the
// original file.
func ApplyToContent(content string, chunk Chunk, opts ApplyOptions) (string, error) {
	lines := strings.Split(content, "\n")
	offset := 0
	for i, hunk := range chunk.Hunks {
		start := clampIndex(hunk.StartLine-1+offset, len(lines))
		updated, err := applyHunk(lines, start, chunk.File, i+1, hunk, opts)
		if err != nil {
			return "", err
		}
		lines = updated
		added, removed := hunkCounts(hunk)
		offset += added - removed
	}
	return strings.Join(lines, "\n"), nil
}

func applyHunk(lines []string, start int, path string, number int, hunk Hunk, opts ApplyOptions) ([]string, error) {
	pos := start
	for _, line := range hunk.Lines {
		switch line.Kind {
		case Context:
			if opts.VerifyContext {
				if err := verifyLine(lines, pos, path, number, line.Content); err != nil {
					return nil, err
				}
			}
			if pos < len(lines) {
				pos++
			}
		case Remove:
			if opts.VerifyContext {
				if err := verifyLine(lines, pos, path, number, line.Content); err != nil {
					return nil, err
				}
			}
			if pos < len(lines) {
				lines = splice(lines, pos, 1, nil)
			}
		case Add:
			lines = splice(lines, pos, 0, []string{line.Content})
			pos++
		}
	}
	return lines, nil
}

func verifyLine(lines []string, pos int, path string, number int, expected string) error {
	if pos >= len(lines) {
		return &ConflictError{
			Path:     path,
			Hunk:     number,
			Line:     pos + 1,
			Expected: expected,
			Actual:   "<end of file>",
		}
	}
	if lines[pos] != expected {
		return &ConflictError{
			Path:     path,
			Hunk:     number,
			Line:     pos + 1,
			Expected: expected,
			Actual:   lines[pos],
		}
	}
	return nil
}

func hunkCounts(hunk Hunk) (added, removed int) {
	for _, line := range hunk.Lines {
		switch line.Kind {
		case Add:
			added++
		case Remove:
			removed++
		}
	}
	return added, removed
}

// Stats totals the added and removed lines across chunks.
func Stats(chunks []Chunk) (added, removed int) {
	for _, chunk := range chunks {
		for _, hunk := range chunk.Hunks {
			a, r := hunkCounts(hunk)
			added += a
			removed += r
		}
	}
	return added, removed
}

func splice(target []string, index, deleteCount int, replacement []string) []string {
	index = clampIndex(index, len(target))
	if deleteCount > len(target)-index {
		deleteCount = len(target) - index
	}
	if deleteCount == 0 && len(replacement) == 0 {
		return target
	}
	result := make([]string, 0, len(target)-deleteCount+len(replacement))
	result = append(result, target[:index]...)
	result = append(result, replacement...)
	result = append(result, target[index+deleteCount:]...)
	return result
}

func clampIndex(index, length int) int {
	if index < 0 {
		return 0
	}
	if index > length {
		return length
	}
	return index
}
