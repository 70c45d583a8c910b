package usecase

import (
	"regexp"
	"strings"

	"github.com/kirillkom/fichepro/internal/core/domain"
)

// SpecsExtractor turns unstructured text into ordered name/value
// pairs. Malformed lines are skipped, never fatal.
type SpecsExtractor struct{}

func NewSpecsExtractor() *SpecsExtractor {
	return &SpecsExtractor{}
}

var multiSpaceSeparator = regexp.MustCompile(`\s{2,}`)

func (e *SpecsExtractor) Extract(raw string) []domain.Spec {
	lines := strings.Split(raw, "\n")

	specs := make([]domain.Spec, 0, len(lines))
	index := make(map[string]int)

	for _, line := range lines {
		line = trimLineMarkup(line)
		if line == "" {
			continue
		}

		name, value, ok := splitSpecLine(line)
		if !ok {
			continue
		}

		// Duplicate names keep their position but take the last value.
		if at, seen := index[name]; seen {
			specs[at].Value = value
			continue
		}
		index[name] = len(specs)
		specs = append(specs, domain.Spec{Name: name, Value: value})
	}
	return specs
}

// splitSpecLine tries separators in preference order: colon, tab,
// a run of spaces, dash with surrounding spaces.
func splitSpecLine(line string) (string, string, bool) {
	if name, value, ok := splitOnFirst(line, ":"); ok {
		return name, value, true
	}
	if name, value, ok := splitOnFirst(line, "\t"); ok {
		return name, value, true
	}
	if loc := multiSpaceSeparator.FindStringIndex(line); loc != nil {
		name := strings.TrimSpace(line[:loc[0]])
		value := strings.TrimSpace(line[loc[1]:])
		if name != "" && value != "" {
			return name, value, true
		}
	}
	if name, value, ok := splitOnFirst(line, " - "); ok {
		return name, value, true
	}
	return "", "", false
}

func splitOnFirst(line, separator string) (string, string, bool) {
	at := strings.Index(line, separator)
	if at < 0 {
		return "", "", false
	}
	name := strings.TrimSpace(line[:at])
	value := strings.TrimSpace(line[at+len(separator):])
	if name == "" || value == "" {
		return "", "", false
	}
	return name, value, true
}

func trimLineMarkup(line string) string {
	line = strings.TrimSpace(line)
	line = strings.Trim(line, "|")
	line = strings.TrimLeft(line, "-*•· ")
	return strings.TrimSpace(line)
}
