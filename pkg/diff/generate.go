package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContextLines is the number of unchanged lines emitted around each
// change when generating a diff.
const DefaultContextLines = 3

type edit struct {
	kind byte // ' ', '-' or '+'
	text string
}

type hunkGroup struct {
	oldStart, oldCount int
	newStart, newCount int
	lines              []edit
}

// Generate produces unified-diff text that transforms oldText into newText,
// using path in both file headers. It returns "" when the contents are equal.
// The output is re-parsable by Parse and applies cleanly to oldText, context
// verification included.
func Generate(oldText, newText, path string, contextLines int) string {
	if oldText == newText {
		return ""
	}
	if contextLines < 0 {
		contextLines = DefaultContextLines
	}
	hunks := groupHunks(editScript(oldText, newText), contextLines)
	if len(hunks) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n", path)
	fmt.Fprintf(&b, "+++ b/%s\n", path)
	for _, h := range hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.oldStart, h.oldCount, h.newStart, h.newCount)
		for _, e := range h.lines {
			b.WriteByte(e.kind)
			b.WriteString(e.text)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// editScript computes a line-level edit script between the two texts. The
// trailing newline added before diffing keeps every line, including a final
// empty one, addressable as a whole line.
func editScript(oldText, newText string) []edit {
	dmp := diffmatchpatch.New()
	chars1, chars2, lineArray := dmp.DiffLinesToChars(oldText+"\n", newText+"\n")
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(chars1, chars2, false), lineArray)

	var script []edit
	var pendingAdds []edit
	for _, d := range diffs {
		lines := splitDiffText(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			script = append(script, pendingAdds...)
			pendingAdds = pendingAdds[:0]
			for _, l := range lines {
				script = append(script, edit{' ', l})
			}
		case diffmatchpatch.DiffDelete:
			for _, l := range lines {
				script = append(script, edit{'-', l})
			}
		case diffmatchpatch.DiffInsert:
			// Buffered so removals come first within a change block.
			for _, l := range lines {
				pendingAdds = append(pendingAdds, edit{'+', l})
			}
		}
	}
	return append(script, pendingAdds...)
}

func splitDiffText(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func groupHunks(script []edit, context int) []hunkGroup {
	var hunks []hunkGroup
	prevEnd := 0
	i := 0
	for i < len(script) {
		if script[i].kind == ' ' {
			i++
			continue
		}
		start := i - context
		if start < prevEnd {
			start = prevEnd
		}
		// Extend across changes separated by at most 2*context unchanged
		// lines, so neighboring hunks never overlap.
		end := i + 1
		gap := 0
		for j := end; j < len(script); j++ {
			if script[j].kind != ' ' {
				end = j + 1
				gap = 0
				continue
			}
			gap++
			if gap > 2*context {
				break
			}
		}
		tail := end + context
		if tail > len(script) {
			tail = len(script)
		}

		h := hunkGroup{lines: script[start:tail]}
		oldBefore, newBefore := 0, 0
		for t := 0; t < start; t++ {
			if script[t].kind != '+' {
				oldBefore++
			}
			if script[t].kind != '-' {
				newBefore++
			}
		}
		h.oldStart = oldBefore + 1
		h.newStart = newBefore + 1
		for _, e := range h.lines {
			if e.kind != '+' {
				h.oldCount++
			}
			if e.kind != '-' {
				h.newCount++
			}
		}
		hunks = append(hunks, h)
		prevEnd = tail
		i = tail
	}
	return hunks
}
