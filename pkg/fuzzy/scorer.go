// Package fuzzy finds the closest textual match for a value among a set of
// candidate descriptions. Scores are normalized to [0,1] and deterministic.
package fuzzy

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Weights applied when combining the partial and token metrics
const (
	tokenScale          = 0.95
	partialScale        = 0.9
	longPartialScale    = 0.6
	partialLenRatio     = 1.5
	longPartialLenRatio = 8.0
)

// prepared is a string reduced to the forms the metrics compare
type prepared struct {
	norm   string
	tokens []string // sorted, deduplicated
	sorted string   // all tokens sorted and rejoined
	length int      // rune count of norm
}

func prepare(s string) prepared {
	norm := normalize(s)
	fields := strings.Fields(norm)
	sort.Strings(fields)

	set := make([]string, 0, len(fields))
	for i, f := range fields {
		if i == 0 || f != fields[i-1] {
			set = append(set, f)
		}
	}

	return prepared{
		norm:   norm,
		tokens: set,
		sorted: strings.Join(fields, " "),
		length: utf8.RuneCountInString(norm),
	}
}

// normalize lower-cases s, replaces anything that is not a letter or digit
// with a space and collapses runs of whitespace.
func normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// Score compares two strings with a weighted combination of the plain,
// token-sort, token-set and partial ratios.
func Score(a, b string) float64 {
	return weightedRatio(prepare(a), prepare(b))
}

func weightedRatio(a, b prepared) float64 {
	if a.length == 0 || b.length == 0 {
		return 0
	}

	base := ratio(a.norm, b.norm)

	longer, shorter := a.length, b.length
	if shorter > longer {
		longer, shorter = shorter, longer
	}
	lenRatio := float64(longer) / float64(shorter)

	if lenRatio < partialLenRatio {
		token := maxFloat(ratio(a.sorted, b.sorted), tokenSetRatio(a, b, ratio))
		return maxFloat(base, token*tokenScale)
	}

	scale := partialScale
	if lenRatio > longPartialLenRatio {
		scale = longPartialScale
	}
	partial := partialRatio(a.norm, b.norm)
	partialToken := maxFloat(partialRatio(a.sorted, b.sorted), tokenSetRatio(a, b, partialRatio))

	return maxFloat(base, partial*scale, partialToken*scale*tokenScale)
}

// ratio is the Levenshtein similarity 1 - distance/maxLen over runes
func ratio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}

// partialRatio slides the shorter string over the longer one and keeps the best window
func partialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		return 0
	}
	if len(ra) == len(rb) {
		return ratio(a, b)
	}

	short := string(ra)
	best := 0.0
	for start := 0; start+len(ra) <= len(rb); start++ {
		score := ratio(short, string(rb[start:start+len(ra)]))
		if score > best {
			best = score
			if best == 1 {
				break
			}
		}
	}
	return best
}

// tokenSetRatio compares the shared tokens against each side's full token set.
// When one token set contains the other the strings are treated as equal.
func tokenSetRatio(a, b prepared, metric func(string, string) float64) float64 {
	var common, onlyA, onlyB []string
	i, j := 0, 0
	for i < len(a.tokens) && j < len(b.tokens) {
		switch {
		case a.tokens[i] == b.tokens[j]:
			common = append(common, a.tokens[i])
			i++
			j++
		case a.tokens[i] < b.tokens[j]:
			onlyA = append(onlyA, a.tokens[i])
			i++
		default:
			onlyB = append(onlyB, b.tokens[j])
			j++
		}
	}
	onlyA = append(onlyA, a.tokens[i:]...)
	onlyB = append(onlyB, b.tokens[j:]...)

	if len(common) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 1
	}

	base := strings.Join(common, " ")
	withA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	withB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := metric(withA, withB)
	if base != "" {
		best = maxFloat(best, metric(base, withA), metric(base, withB))
	}
	return best
}

func maxFloat(first float64, rest ...float64) float64 {
	m := first
	for _, v := range rest {
		if v > m {
			m = v
		}
	}
	return m
}
