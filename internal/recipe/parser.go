package recipe

import (
	"strings"
)

// HeaderStyle selects how candidate header lines are detected in a
// suggestion completion. Model responses number their suggestions, but the
// numbering format drifts between completions, so both observed strategies
// are kept as configuration.
type HeaderStyle int

const (
	// HeaderDigit treats a line as a header iff its first rune is an ASCII
	// digit 0-9.
	HeaderDigit HeaderStyle = iota
	// HeaderOrdinal treats a line as a header iff it starts with one of the
	// literal digits "1".."5".
	HeaderOrdinal
)

// titleSeparators, tried in order: full-width colon first, then ASCII colon.
var titleSeparators = []string{"：", ":"}

// ParseSuggestions extracts an ordered sequence of candidates from raw
// completion text. It never fails: malformed input yields an empty set,
// which callers treat as a recoverable "no usable suggestions" condition.
func ParseSuggestions(raw string, style HeaderStyle) SuggestionSet {
	var (
		candidates []Candidate
		reasons    []string // pending reason lines for the last candidate
		seen       = make(map[string]struct{})
		dropped    = false // last header was an empty/duplicate title
	)

	flush := func() {
		if len(candidates) == 0 || len(reasons) == 0 {
			reasons = nil
			return
		}
		candidates[len(candidates)-1].Reason = strings.TrimSpace(strings.Join(reasons, " "))
		reasons = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if !isHeaderLine(line, style) {
			// Continuation line: accumulate into the current candidate's
			// reason, unless its header was dropped or none exists yet.
			if len(candidates) > 0 && !dropped {
				reasons = append(reasons, line)
			}
			continue
		}

		flush()

		title := NormalizeTitle(splitHeader(line))
		if title == "" {
			dropped = true
			continue
		}
		if _, dup := seen[title]; dup {
			// A duplicate is dropped, never replacing the earlier candidate.
			dropped = true
			continue
		}
		seen[title] = struct{}{}
		candidates = append(candidates, Candidate{Title: title})
		dropped = false
	}
	flush()

	set := SuggestionSet{Candidates: candidates}

	// A trailing overview line shows up as the final candidate's reason.
	// Extract it as the set summary instead of keeping a phantom candidate.
	if n := len(set.Candidates); n > 0 {
		if rest, ok := strings.CutPrefix(set.Candidates[n-1].Reason, SummaryMarker); ok {
			set.Summary = strings.TrimSpace(rest)
			set.Candidates = set.Candidates[:n-1]
		}
	}

	if len(set.Candidates) > MaxCandidates {
		set.Candidates = set.Candidates[:MaxCandidates]
	}

	return set
}

// isHeaderLine reports whether a trimmed, non-empty line starts a new
// candidate under the given style.
func isHeaderLine(line string, style HeaderStyle) bool {
	switch style {
	case HeaderOrdinal:
		return line[0] >= '1' && line[0] <= '5'
	default:
		return line[0] >= '0' && line[0] <= '9'
	}
}

// splitHeader returns the title portion of a header line: the text after the
// first full-width colon, else after the first ASCII colon, else the whole
// line.
func splitHeader(line string) string {
	for _, sep := range titleSeparators {
		if _, after, ok := strings.Cut(line, sep); ok {
			return after
		}
	}
	return line
}

// NormalizeTitle strips a leading ordinal marker ("1. ", "2：", ...), cuts the
// title at the first sentence terminator to drop explanatory clauses captured
// by accident, and truncates to the display limit. Normalization is
// idempotent: applying it to an already-normalized title is a no-op.
func NormalizeTitle(s string) string {
	s = strings.TrimSpace(s)
	s = stripOrdinal(s)

	// Cut at the first ideographic or ASCII period. Done after ordinal
	// stripping so "1. 明太子パスタ" keeps its title instead of collapsing
	// to "1".
	if before, _, ok := strings.Cut(s, "。"); ok {
		s = before
	}
	if before, _, ok := strings.Cut(s, "."); ok {
		s = before
	}

	s = strings.TrimSpace(s)

	if runes := []rune(s); len(runes) > MaxTitleRunes {
		s = string(runes[:MaxTitleRunes])
	}
	return s
}

// stripOrdinal removes a leading run of digits followed by any mix of
// periods, colons, and whitespace.
func stripOrdinal(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return s
	}
	rest := s[i:]
	for {
		switch {
		case strings.HasPrefix(rest, "."), strings.HasPrefix(rest, ":"), strings.HasPrefix(rest, " "), strings.HasPrefix(rest, "\t"):
			rest = rest[1:]
		case strings.HasPrefix(rest, "："):
			rest = rest[len("："):]
		case strings.HasPrefix(rest, "　"): // ideographic space
			rest = rest[len("　"):]
		default:
			return rest
		}
	}
}
