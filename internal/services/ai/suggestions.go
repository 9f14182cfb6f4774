package ai

import (
	"regexp"
	"strings"
)

var (
	// enumerationMarker matches leading list decorations the model adds
	// despite being told not to: "1.", "2)", "-", "*", "•".
	enumerationMarker = regexp.MustCompile(`^\s*(?:\d+[.)]\s*|[-*•]\s*)`)

	// suggestionShape keeps only lines plausibly of the form "<N>분 <activity>".
	suggestionShape = regexp.MustCompile(`^[1-9][0-9]*분\s+\S`)
)

// ParseSuggestions extracts usable habit suggestions from raw model output:
// strips enumeration markers, trims whitespace, drops empty lines and lines
// that do not look like "<N>분 <activity>". Capped at MaxSuggestions.
func ParseSuggestions(raw string) []string {
	var suggestions []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		line = enumerationMarker.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !suggestionShape.MatchString(line) {
			continue
		}
		suggestions = append(suggestions, line)
		if len(suggestions) == MaxSuggestions {
			break
		}
	}
	return suggestions
}

// PadSuggestions tops a suggestion list up to MinSuggestions from the
// built-in pool, skipping duplicates, and caps it at MaxSuggestions.
func PadSuggestions(suggestions []string) []string {
	if len(suggestions) > MaxSuggestions {
		suggestions = suggestions[:MaxSuggestions]
	}
	for _, candidate := range fallbackCandidates {
		if len(suggestions) >= MinSuggestions {
			break
		}
		if !contains(suggestions, candidate) {
			suggestions = append(suggestions, candidate)
		}
	}
	return suggestions
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
