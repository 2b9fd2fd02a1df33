package change

import (
	"os"
	"runtime"
	"strings"
)

// LineEnding is the line-ending convention to apply when a payload is
// written to disk.
type LineEnding string

const (
	LineEndingLF   LineEnding = "lf"
	LineEndingCRLF LineEnding = "crlf"
)

// DetectLineEnding inspects an existing file and returns its dominant
// line-ending convention. Files with no line breaks report LF.
func DetectLineEnding(path string) (LineEnding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LineEndingLF, err
	}

	crlf := strings.Count(string(data), "\r\n")
	lf := strings.Count(string(data), "\n") - crlf
	if crlf > lf {
		return LineEndingCRLF, nil
	}
	return LineEndingLF, nil
}

// DefaultLineEnding returns the convention for files that do not exist yet:
// the configured value if set, otherwise the platform default.
func DefaultLineEnding(configured LineEnding) LineEnding {
	if configured == LineEndingLF || configured == LineEndingCRLF {
		return configured
	}
	if runtime.GOOS == "windows" {
		return LineEndingCRLF
	}
	return LineEndingLF
}

// ApplyLineEnding normalizes text to LF and then converts it to the given
// convention. Diffing and storage always operate on the normalized form;
// conversion happens only at write time.
func ApplyLineEnding(text string, style LineEnding) string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	if style == LineEndingCRLF {
		return strings.ReplaceAll(normalized, "\n", "\r\n")
	}
	return normalized
}
