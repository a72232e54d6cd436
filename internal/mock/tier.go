// Package mock derives mock identifiers and difficulty tiers and draws the
// question set for a mock.
package mock

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stemsi/mockprep-backend/internal/model"
)

const (
	// idSeparator joins subject id and mock number: "{subjectId}-mock-{N}".
	idSeparator = "-mock-"

	// CatalogSize is the number of mocks offered per subject.
	CatalogSize = 20

	// DefaultNumber is used when a mock id carries no parseable number.
	DefaultNumber = 1

	maxEasy   = 5
	maxMedium = 15
)

// Tier maps a mock number to its difficulty: 1-5 Easy, 6-15 Medium, 16+ Hard.
// Numbers below 1 are treated as DefaultNumber.
func Tier(n int) model.Difficulty {
	switch {
	case n > maxMedium:
		return model.DifficultyHard
	case n > maxEasy:
		return model.DifficultyMedium
	default:
		return model.DifficultyEasy
	}
}

// FormatID builds the persisted mock identifier for subjectID and n.
func FormatID(subjectID string, n int) string {
	return fmt.Sprintf("%s%s%d", subjectID, idSeparator, n)
}

// ParseNumber extracts N from "{subjectId}-mock-{N}". Anything unparseable,
// including a missing separator or N < 1, yields DefaultNumber.
func ParseNumber(mockID string) int {
	i := strings.LastIndex(mockID, idSeparator)
	if i < 0 {
		return DefaultNumber
	}
	n, err := strconv.Atoi(mockID[i+len(idSeparator):])
	if err != nil || n < 1 {
		return DefaultNumber
	}
	return n
}

// SubjectID returns the subject prefix of a mock id, or "" when the id has
// no mock separator.
func SubjectID(mockID string) string {
	i := strings.LastIndex(mockID, idSeparator)
	if i < 0 {
		return ""
	}
	return mockID[:i]
}

// TierOf resolves the difficulty a mock id targets.
func TierOf(mockID string) model.Difficulty {
	return Tier(ParseNumber(mockID))
}

// Entry is one mock of a subject catalog.
type Entry struct {
	ID         string
	Number     int
	Difficulty model.Difficulty
}

// Catalog lists mocks 1..CatalogSize for a subject.
func Catalog(subjectID string) []Entry {
	entries := make([]Entry, 0, CatalogSize)
	for n := 1; n <= CatalogSize; n++ {
		entries = append(entries, Entry{
			ID:         FormatID(subjectID, n),
			Number:     n,
			Difficulty: Tier(n),
		})
	}
	return entries
}
