// Package episodes parses episode selections such as "1-3,6,8".
package episodes

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Set is a selection of episode sort numbers kept as sorted, disjoint
// inclusive spans, so "1-999999999" costs one span. The zero Set selects every
// episode.
type Set struct {
	spans []span
}

type span struct{ lo, hi int }

// Parse reads a comma-separated list of numbers and inclusive ranges.
// Blank input returns the zero Set.
func Parse(text string) (Set, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Set{}, nil
	}
	var spans []span
	for _, token := range strings.Split(text, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return Set{}, fmt.Errorf("episode list %q: empty entry", text)
		}
		lo, hi, isRange := strings.Cut(token, "-")
		start, err := parseNumber(lo)
		if err != nil {
			return Set{}, fmt.Errorf("episode list %q: %w", text, err)
		}
		end := start
		if isRange {
			if end, err = parseNumber(hi); err != nil {
				return Set{}, fmt.Errorf("episode list %q: %w", text, err)
			}
			if end < start {
				return Set{}, fmt.Errorf("episode list %q: descending range %s", text, token)
			}
		}
		spans = append(spans, span{start, end})
	}
	return Set{spans: merge(spans)}, nil
}

func parseNumber(value string) (int, error) {
	value = strings.TrimSpace(value)
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid episode number %q", value)
	}
	if n <= 0 {
		return 0, fmt.Errorf("episode number %d must be positive", n)
	}
	return n, nil
}

// Of builds a Set from explicit numbers.
func Of(numbers ...int) Set {
	spans := make([]span, len(numbers))
	for i, n := range numbers {
		spans[i] = span{n, n}
	}
	return Set{spans: merge(spans)}
}

// merge sorts spans and joins overlapping or adjacent ones.
func merge(spans []span) []span {
	slices.SortFunc(spans, func(a, b span) int { return cmp.Compare(a.lo, b.lo) })
	out := spans[:0]
	for _, s := range spans {
		if n := len(out); n > 0 && s.lo <= out[n-1].hi+1 {
			out[n-1].hi = max(out[n-1].hi, s.hi)
			continue
		}
		out = append(out, s)
	}
	return out
}

// Contains reports whether sortNumber is selected. The zero Set contains all.
func (s Set) Contains(sortNumber int) bool {
	if len(s.spans) == 0 {
		return true
	}
	_, found := slices.BinarySearchFunc(s.spans, sortNumber, func(sp span, n int) int {
		switch {
		case sp.hi < n:
			return -1
		case sp.lo > n:
			return 1
		}
		return 0
	})
	return found
}

// String renders the set back in compact range syntax.
func (s Set) String() string {
	if len(s.spans) == 0 {
		return "all"
	}
	parts := make([]string, len(s.spans))
	for i, sp := range s.spans {
		parts[i] = strconv.Itoa(sp.lo)
		if sp.hi > sp.lo {
			parts[i] += "-" + strconv.Itoa(sp.hi)
		}
	}
	return strings.Join(parts, ",")
}
