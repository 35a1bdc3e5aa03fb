package fuzzy

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// StrictThreshold is the default cutoff for a direct best match
	StrictThreshold = 0.85
	// TopographyThreshold is the default cutoff used by the auto-corrector
	TopographyThreshold = 0.7
)

// Result is the outcome of one lookup
type Result struct {
	Value      string
	Confidence float64
	OK         bool
}

// CandidateSet is a named, pre-normalized list of candidates.
// The name identifies the set in the matcher memo.
type CandidateSet struct {
	name     string
	raw      []string
	prepared []prepared
}

// NewCandidateSet prepares candidates for repeated matching
func NewCandidateSet(name string, candidates []string) *CandidateSet {
	set := &CandidateSet{
		name:     name,
		raw:      append([]string(nil), candidates...),
		prepared: make([]prepared, len(candidates)),
	}
	for i, c := range candidates {
		set.prepared[i] = prepare(c)
	}
	return set
}

// Name returns the set name
func (s *CandidateSet) Name() string { return s.name }

// Len returns the number of candidates
func (s *CandidateSet) Len() int { return len(s.raw) }

// best scans every candidate; the first candidate holding the top score wins
func (s *CandidateSet) best(input string, threshold float64) Result {
	in := prepare(input)
	if in.length == 0 || len(s.raw) == 0 {
		return Result{}
	}

	bestIdx, bestScore := -1, 0.0
	for i := range s.prepared {
		score := weightedRatio(in, s.prepared[i])
		if bestIdx < 0 || score > bestScore {
			bestIdx, bestScore = i, score
		}
	}

	if bestScore < threshold {
		return Result{}
	}
	return Result{Value: s.raw[bestIdx], Confidence: bestScore, OK: true}
}

// Match returns the candidate closest to input when its score reaches threshold.
// Empty input or an empty candidate list never matches.
func Match(input string, candidates []string, threshold float64) (string, float64, bool) {
	r := NewCandidateSet("", candidates).best(input, threshold)
	return r.Value, r.Confidence, r.OK
}

type memoKey struct {
	set       string
	input     string
	threshold float64
}

// Matcher matches against candidate sets and remembers recent results.
// It is safe for concurrent use.
type Matcher struct {
	memo *lru.Cache[memoKey, Result]
}

// NewMatcher creates a matcher. A memoSize of zero disables the memo.
func NewMatcher(memoSize int) (*Matcher, error) {
	m := &Matcher{}
	if memoSize > 0 {
		memo, err := lru.New[memoKey, Result](memoSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create match memo: %w", err)
		}
		m.memo = memo
	}
	return m, nil
}

// Best returns the closest candidate of set for input
func (m *Matcher) Best(input string, set *CandidateSet, threshold float64) Result {
	if m.memo == nil || set.name == "" {
		return set.best(input, threshold)
	}

	key := memoKey{set: set.name, input: input, threshold: threshold}
	if r, ok := m.memo.Get(key); ok {
		return r
	}
	r := set.best(input, threshold)
	m.memo.Add(key, r)
	return r
}
