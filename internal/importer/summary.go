package importer

import (
	"fmt"
	"strings"
)

// MaxErrorMessages caps the row errors kept in a Summary.
const MaxErrorMessages = 10

// Summary reports the outcome of one import batch.
type Summary struct {
	Imported int
	Skipped  int
	Errors   int
	Messages []string
}

func (s *Summary) addError(format string, args ...any) {
	s.Errors++
	if len(s.Messages) < MaxErrorMessages {
		s.Messages = append(s.Messages, fmt.Sprintf(format, args...))
	}
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "imported=%d skipped=%d errors=%d", s.Imported, s.Skipped, s.Errors)
	for _, m := range s.Messages {
		b.WriteString("\n  ")
		b.WriteString(m)
	}
	if hidden := s.Errors - len(s.Messages); hidden > 0 {
		fmt.Fprintf(&b, "\n  ... and %d more", hidden)
	}
	return b.String()
}
