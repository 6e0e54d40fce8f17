package intent

import (
	"sort"
	"strings"
)

// Combinator selects how multiple attraction predicates are combined.
type Combinator int

const (
	CombinatorOr Combinator = iota
	CombinatorAnd
)

func (c Combinator) String() string {
	if c == CombinatorAnd {
		return "and"
	}
	return "or"
}

// FeeFilter is the detected fee preference, if any.
type FeeFilter string

const (
	FeeNone FeeFilter = ""
	FeeFree FeeFilter = "free"
	FeePaid FeeFilter = "paid"
)

// Entities is the extraction result for one message. Built fresh per request
// and never cached; extraction is pure, so identical input always yields an
// identical tuple.
type Entities struct {
	States      []string
	Attractions []string
	Combinator  Combinator
	Fee         FeeFilter
}

// stateAlias maps a recognized name to its canonical state. Aliases are
// scanned as case-insensitive substrings; synonyms canonicalize to the
// official spelling.
type stateAlias struct {
	alias     string
	canonical string
}

var stateAliases = []stateAlias{
	{"johor", "Johor"},
	{"kedah", "Kedah"},
	{"kelantan", "Kelantan"},
	{"melaka", "Melaka"},
	{"malacca", "Melaka"},
	{"negeri sembilan", "Negeri Sembilan"},
	{"pahang", "Pahang"},
	{"perak", "Perak"},
	{"perlis", "Perlis"},
	{"pulau pinang", "Pulau Pinang"},
	{"penang", "Pulau Pinang"},
	{"sabah", "Sabah"},
	{"sarawak", "Sarawak"},
	{"selangor", "Selangor"},
	{"terengganu", "Terengganu"},
	{"kuala lumpur", "Kuala Lumpur"},
	{"labuan", "Labuan"},
	{"putrajaya", "Putrajaya"},
}

// attractionKeywords is the fixed keyword list matched against messages and
// campsite tags.
var attractionKeywords = []string{"wildlife", "beach", "river", "lake", "waterfall", "cave"}

// DetectStates returns canonicalized state names mentioned in the message, in
// order of first appearance. Each matching alias contributes one entry, so a
// message naming the same state under two spellings yields two entries; the
// caller treats >1 entry as a multi-state message.
func DetectStates(message string) []string {
	lower := strings.ToLower(message)
	type hit struct {
		pos       int
		canonical string
	}
	var hits []hit
	for _, sa := range stateAliases {
		if i := strings.Index(lower, sa.alias); i >= 0 {
			hits = append(hits, hit{pos: i, canonical: sa.canonical})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].pos < hits[b].pos })
	states := make([]string, 0, len(hits))
	for _, h := range hits {
		states = append(states, h.canonical)
	}
	return states
}

// DetectAttractions returns the subset of the fixed keyword list present as
// case-insensitive substrings of the message, in keyword-list order.
func DetectAttractions(message string) []string {
	lower := strings.ToLower(message)
	var found []string
	for _, kw := range attractionKeywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}

// DetectCombinator returns the AND/OR mode for combining attraction
// predicates. The " or " check runs before the " and "/"all" check, so a
// message containing both resolves to OR. This check order is the contract;
// do not reorder it. "all" matches as a whole word only, otherwise
// "waterfall" would flip every such message to AND.
func DetectCombinator(message string) Combinator {
	lower := strings.ToLower(message)
	if strings.Contains(lower, " or ") {
		return CombinatorOr
	}
	if strings.Contains(lower, " and ") || containsWord(lower, "all") {
		return CombinatorAnd
	}
	return CombinatorOr
}

// containsWord reports whether word appears as a standalone token in s.
func containsWord(s, word string) bool {
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9')
	}) {
		if f == word {
			return true
		}
	}
	return false
}

// DetectFee returns the fee preference. "free" is checked before "paid", so a
// message containing both resolves to free.
func DetectFee(message string) FeeFilter {
	lower := strings.ToLower(message)
	if strings.Contains(lower, "free") {
		return FeeFree
	}
	if strings.Contains(lower, "paid") {
		return FeePaid
	}
	return FeeNone
}

// Extract runs every detector over the message and returns the combined tuple.
func Extract(message string) Entities {
	return Entities{
		States:      DetectStates(message),
		Attractions: DetectAttractions(message),
		Combinator:  DetectCombinator(message),
		Fee:         DetectFee(message),
	}
}
