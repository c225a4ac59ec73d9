// Package snapshot defines the portable document that captures the whole
// local state (settings + marks), used for file backup and as the payload of
// the remote sync document. Decoding validates the format version and
// sanitizes records; merging lives in the sync engine, not here.
package snapshot

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"lifeweeks/internal/common"
)

// FormatVersion is the only snapshot format this build reads and writes.
const FormatVersion = 1

// Mark kinds form a closed enumeration; anything else is coerced to
// KindNote during sanitization.
const (
	KindMilestone = "milestone"
	KindPlan      = "plan"
	KindNote      = "note"
)

// Mark is a user annotation anchored to one week of the grid. Date is the
// calendar day the mark refers to (YYYY-MM-DD); WeekIndex is frozen at the
// time the mark was last written relative to the then-current birth date.
type Mark struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Kind      string `json:"kind"`
	Date      string `json:"date"`
	WeekIndex int    `json:"weekIndex"`
	Tag       string `json:"tag,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Snapshot is the complete exportable state.
type Snapshot struct {
	FormatVersion       int    `json:"formatVersion"`
	BirthDate           string `json:"birthDate"`
	LifeExpectancyYears int    `json:"lifeExpectancyYears"`
	Marks               []Mark `json:"marks"`
}

// ValidKind reports whether k is one of the closed mark kinds.
func ValidKind(k string) bool {
	return k == KindMilestone || k == KindPlan || k == KindNote
}

// Encode serializes a snapshot, stamping the current format version.
func Encode(s *Snapshot) ([]byte, error) {
	s.FormatVersion = FormatVersion
	if s.Marks == nil {
		s.Marks = []Mark{}
	}
	return json.MarshalIndent(s, "", "  ")
}

// Decode parses and validates a snapshot document. Malformed JSON or a
// document that is not snapshot-shaped fails with ErrMalformedSnapshot; a
// format version other than FormatVersion fails with ErrUnsupportedVersion.
// On success the snapshot has been sanitized (see Sanitize).
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedSnapshot, err)
	}
	if s.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: %d", common.ErrUnsupportedVersion, s.FormatVersion)
	}
	Sanitize(&s)
	return &s, nil
}

// Sanitize repairs field-level damage without rejecting the document:
// unknown or missing kinds become notes, negative week indices become 0,
// missing ids get a fresh uuid. Marks whose title is empty after trimming
// are dropped entirely.
func Sanitize(s *Snapshot) {
	kept := make([]Mark, 0, len(s.Marks))
	for _, m := range s.Marks {
		m.Title = strings.TrimSpace(m.Title)
		if m.Title == "" {
			continue
		}
		if !ValidKind(m.Kind) {
			m.Kind = KindNote
		}
		if m.WeekIndex < 0 {
			m.WeekIndex = 0
		}
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		kept = append(kept, m)
	}
	s.Marks = kept

	if s.LifeExpectancyYears == 0 {
		s.LifeExpectancyYears = DefaultLifeExpectancyYears
	}
}

// Life expectancy policy shared by the store and the codec.
const (
	DefaultLifeExpectancyYears = 80
	MinLifeExpectancyYears     = 60
	MaxLifeExpectancyYears     = 110
)

// ValidExpectancy reports whether years is inside the allowed horizon.
func ValidExpectancy(years int) bool {
	return years >= MinLifeExpectancyYears && years <= MaxLifeExpectancyYears
}
