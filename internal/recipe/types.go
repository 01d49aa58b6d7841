// Package recipe contains the suggestion data model, the prompt builders for
// the completion service, and the parser that turns raw completion text into
// structured candidates.
package recipe

// MaxCandidates is the upper bound on candidates offered per suggestion set.
const MaxCandidates = 5

// MaxTitleRunes is the display truncation limit for normalized titles.
const MaxTitleRunes = 20

// SummaryMarker prefixes the trailing overview line in suggestion responses.
const SummaryMarker = "全体の傾向："

// Candidate is one suggested dish.
type Candidate struct {
	// Title is the normalized dish name: leading ordinal markers stripped,
	// cut at the first sentence terminator, truncated for display.
	Title string `json:"title"`
	// Reason is the free text accumulated from the lines following the
	// candidate's header line.
	Reason string `json:"reason"`
}

// SuggestionSet is an ordered sequence of at most MaxCandidates candidates,
// optionally paired with a one-sentence overview extracted from the response.
type SuggestionSet struct {
	Candidates []Candidate `json:"candidates"`
	Summary    string      `json:"summary,omitempty"`
}

// Empty reports whether the set holds no usable candidates.
func (s SuggestionSet) Empty() bool {
	return len(s.Candidates) == 0
}

// At returns the candidate at index i and whether the index is valid.
func (s SuggestionSet) At(i int) (Candidate, bool) {
	if i < 0 || i >= len(s.Candidates) {
		return Candidate{}, false
	}
	return s.Candidates[i], true
}
