package change

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind distinguishes proposal types.
type Kind string

const (
	// KindWrite proposes a whole-file content replacement.
	KindWrite Kind = "write"
)

// KnownKinds lists all valid proposal kinds. "edit" (patch-style) is the
// expected next entry.
var KnownKinds = []Kind{KindWrite}

// ValidKind reports whether k is a known proposal kind.
func ValidKind(k Kind) bool {
	for _, known := range KnownKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Record is a persisted, not-yet-applied description of a single file
// mutation. Records are immutable once created: approval or rejection
// consumes and removes them, there is no amend.
type Record struct {
	ID          string     `json:"id"`
	Kind        Kind       `json:"kind"`
	TargetPath  string     `json:"target_path"`
	Payload     string     `json:"payload"`
	Description string     `json:"description"`
	SessionID   string     `json:"session_id"`
	LineEnding  LineEnding `json:"line_ending_style"`
	CreatedAt   int64      `json:"created_at"`
}

// NewID generates a new ULID.
func NewID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Summary returns a short single-line description for listings.
func (r *Record) Summary() string {
	desc := strings.TrimSpace(r.Description)
	if desc == "" {
		desc = "(no description)"
	}
	if i := strings.IndexByte(desc, '\n'); i >= 0 {
		desc = desc[:i]
	}
	return desc
}
