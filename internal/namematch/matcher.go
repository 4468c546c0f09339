package namematch

import (
	"errors"
	"strings"
)

// ErrNoNameAfterCleaning is returned when stripping title prefixes
// leaves nothing to match on; the caller skips the faculty.
var ErrNoNameAfterCleaning = errors.New("name is empty after stripping title prefixes")

// titlePrefixes are checked in order; the first one that matches is
// stripped and the rest are not consulted.
var titlePrefixes = []string{
	"dr.", "dr ",
	"assistant professor",
	"associate professor",
	"senior professor",
	"prof.", "prof ",
	"professor",
	"dean",
	"hod",
	"mr.", "mr ",
	"mrs.", "mrs ",
	"ms.", "ms ",
}

// Candidate is one external author record offered for matching
type Candidate struct {
	ID          string
	DisplayName string
}

// CleanName strips a leading title prefix from a display name. The
// first prefix in the fixed list that matches wins.
func CleanName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	lower := strings.ToLower(trimmed)

	for _, prefix := range titlePrefixes {
		if strings.HasPrefix(lower, prefix) {
			trimmed = strings.TrimSpace(trimmed[len(prefix):])
			break
		}
	}

	if trimmed == "" {
		return "", ErrNoNameAfterCleaning
	}
	return trimmed, nil
}

// tokenize lower-cases a name, strips dots and commas, and splits it
// into a set of non-empty tokens.
func tokenize(name string) map[string]bool {
	cleaned := strings.NewReplacer(".", "", ",", "").Replace(strings.ToLower(name))

	tokens := make(map[string]bool)
	for _, token := range strings.Fields(cleaned) {
		tokens[token] = true
	}
	return tokens
}

// Match finds the external author record for a faculty display name.
// Candidates are tried in the order supplied and the first one that
// satisfies a structural rule wins; there is no global best-score pass.
// Returns nil when nothing matches.
func Match(facultyName string, candidates []Candidate) (*Candidate, error) {
	cleaned, err := CleanName(facultyName)
	if err != nil {
		return nil, err
	}

	facultyTokens := tokenize(cleaned)
	if len(facultyTokens) == 0 {
		return nil, ErrNoNameAfterCleaning
	}

	for i := range candidates {
		candidateTokens := tokenize(candidates[i].DisplayName)
		if len(candidateTokens) == 0 {
			continue
		}

		if exactMatch(facultyTokens, candidateTokens) ||
			subsetMatch(facultyTokens, candidateTokens) ||
			initialMatch(facultyTokens, candidateTokens) {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

// exactMatch requires the two token sets to be identical
func exactMatch(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for token := range a {
		if !b[token] {
			return false
		}
	}
	return true
}

// subsetMatch accepts when one token set contains the other. The
// overlap must cover the smaller set entirely, so a partial overlap
// never qualifies.
func subsetMatch(a, b map[string]bool) bool {
	smaller, larger := a, b
	if len(b) < len(a) {
		smaller, larger = b, a
	}

	overlap := 0
	for token := range smaller {
		if larger[token] {
			overlap++
		}
	}
	return overlap == len(smaller)
}

// initialMatch handles abbreviated author names like "A V Turukmane".
// Every multi-character candidate token must appear verbatim among the
// faculty tokens; every single-character token must be the initial of
// some faculty token; and the candidate's longest token must be a
// verbatim faculty token, so a candidate of bare initials cannot match.
func initialMatch(facultyTokens, candidateTokens map[string]bool) bool {
	longest := ""
	for token := range candidateTokens {
		if len(token) > len(longest) {
			longest = token
		}

		if len(token) > 1 {
			if !facultyTokens[token] {
				return false
			}
			continue
		}

		matched := false
		for facultyToken := range facultyTokens {
			if strings.HasPrefix(facultyToken, token) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return facultyTokens[longest]
}
