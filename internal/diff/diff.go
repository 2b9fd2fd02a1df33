// Package diff renders unified diffs for change previews.
package diff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// contextLines is the number of unchanged lines shown around each hunk.
const contextLines = 3

// Unified returns the unified diff between oldText and newText, labeled
// a/<label> and b/<label>. Pure and deterministic: the same inputs always
// produce the same text. An empty oldText renders entirely as additions;
// file creation is not a special mode.
func Unified(oldText, newText, label string) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        splitLines(oldText),
		B:        splitLines(newText),
		FromFile: "a/" + label,
		ToFile:   "b/" + label,
		Context:  contextLines,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", fmt.Errorf("failed to render diff: %w", err)
	}
	return strings.TrimRight(text, "\n"), nil
}

// splitLines splits text into newline-terminated lines. Unlike
// difflib.SplitLines it maps empty input to no lines at all instead of one
// empty line, and never invents a phantom trailing line for input that
// already ends in a newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if last := lines[len(lines)-1]; last == "" {
		lines = lines[:len(lines)-1]
	} else {
		// Terminate the final line so hunk rendering stays line-aligned.
		lines[len(lines)-1] = last + "\n"
	}
	return lines
}
