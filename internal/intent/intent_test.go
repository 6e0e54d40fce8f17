package intent

import (
	"reflect"
	"testing"
)

// TestDetectStates verifies canonicalization, synonym handling, and
// first-appearance ordering.
func TestDetectStates(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "single state",
			in:   "any campsites in Pahang?",
			want: []string{"Pahang"},
		},
		{
			name: "case insensitive",
			in:   "show me SELANGOR spots",
			want: []string{"Selangor"},
		},
		{
			name: "synonym canonicalized",
			in:   "somewhere in Penang please",
			want: []string{"Pulau Pinang"},
		},
		{
			name: "malacca synonym",
			in:   "camping near malacca",
			want: []string{"Melaka"},
		},
		{
			name: "order of first appearance",
			in:   "Sabah or Kedah or Johor",
			want: []string{"Sabah", "Kedah", "Johor"},
		},
		{
			name: "same state via two spellings yields two entries",
			in:   "Melaka, also known as Malacca",
			want: []string{"Melaka", "Melaka"},
		},
		{
			name: "no states",
			in:   "any campsite with a river?",
			want: nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectStates(tc.in)
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("DetectStates(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestDetectAttractions(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "single keyword",
			in:   "I want a waterfall nearby",
			want: []string{"waterfall"},
		},
		{
			name: "multiple keywords in list order",
			in:   "a cave next to a beach",
			want: []string{"beach", "cave"},
		},
		{
			name: "case insensitive substring",
			in:   "RIVERside camping",
			want: []string{"river"},
		},
		{
			name: "none",
			in:   "cheap camping please",
			want: nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectAttractions(tc.in)
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("DetectAttractions(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

// TestDetectCombinator pins the check order: " or " wins over " and "/"all",
// and the default with neither token is OR.
func TestDetectCombinator(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Combinator
	}{
		{name: "explicit or", in: "beach or lake", want: CombinatorOr},
		{name: "explicit and", in: "beach and lake", want: CombinatorAnd},
		{name: "all implies and", in: "all of wildlife, beach", want: CombinatorAnd},
		{name: "both tokens resolve to or", in: "beach or lake and river", want: CombinatorOr},
		{name: "default is or", in: "beach lake river", want: CombinatorOr},
		{name: "and needs surrounding spaces", in: "sandy beaches", want: CombinatorOr},
		{name: "waterfall does not trigger all", in: "a waterfall campsite", want: CombinatorOr},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectCombinator(tc.in); got != tc.want {
				t.Fatalf("DetectCombinator(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestDetectFee(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want FeeFilter
	}{
		{name: "free", in: "free campsites", want: FeeFree},
		{name: "paid", in: "paid campsites", want: FeePaid},
		{name: "free wins over paid", in: "free or paid, anything", want: FeeFree},
		{name: "neither", in: "campsites in Perak", want: FeeNone},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectFee(tc.in); got != tc.want {
				t.Fatalf("DetectFee(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

// TestExtract_Deterministic verifies the extraction tuple is stable across
// repeated calls for the same input.
func TestExtract_Deterministic(t *testing.T) {
	in := "Tell me about free campsites in Pahang with a waterfall"
	first := Extract(in)
	if !reflect.DeepEqual(first.States, []string{"Pahang"}) {
		t.Fatalf("states = %v, want [Pahang]", first.States)
	}
	if !reflect.DeepEqual(first.Attractions, []string{"waterfall"}) {
		t.Fatalf("attractions = %v, want [waterfall]", first.Attractions)
	}
	if first.Combinator != CombinatorOr {
		t.Fatalf("combinator = %v, want or", first.Combinator)
	}
	if first.Fee != FeeFree {
		t.Fatalf("fee = %q, want free", first.Fee)
	}
	for i := 0; i < 5; i++ {
		if got := Extract(in); !reflect.DeepEqual(got, first) {
			t.Fatalf("extraction not deterministic: %v vs %v", got, first)
		}
	}
}
