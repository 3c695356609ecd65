package analyzer

import (
	"regexp"
	"strings"
	"sync"
)

// earlySignals, recentSignals, midSignals, and eventTerms are the weighted
// lexicons from continuous_temporal_search.py's analyze_temporal_intent,
// carried over verbatim — these specific weights are what the golden
// query fixtures in the retrieval pack pin against.
var earlySignals = map[string]float64{
	"first": 0.1, "initial": 0.1, "earliest": 0.0, "beginning": 0.1, "start": 0.1,
	"origin": 0.0, "genesis": 0.0, "inception": 0.0, "original": 0.1,
	"early on": 0.1, "at first": 0.1, "in the beginning": 0.0,
	"initially": 0.1, "long ago": 0.1, "originally": 0.1, "before": 0.2,
}

var recentSignals = map[string]float64{
	"recent": 0.9, "latest": 1.0, "newest": 1.0, "current": 0.9, "last": 0.9,
	"now": 0.9, "ongoing": 0.8, "present": 0.9, "final": 0.9, "most recent": 1.0,
	"currently": 0.9, "these days": 0.9, "nowadays": 0.9, "at the moment": 0.9,
	"recently": 0.9, "later": 0.8, "after": 0.7, "eventually": 0.8,
}

var midSignals = map[string]float64{
	"during": 0.5, "middle": 0.5, "midst": 0.5, "meanwhile": 0.5, "while": 0.5,
	"throughout": 0.5, "subsequently": 0.6, "then": 0.6, "next": 0.6,
	"following": 0.6, "after that": 0.6, "afterwards": 0.6, "ensuing": 0.6,
}

var eventTerms = map[string]float64{
	"begin": 0.2, "start": 0.2, "commence": 0.2, "initiate": 0.2,
	"conclude": 0.8, "end": 0.8, "finish": 0.8, "complete": 0.8,
	"happen": 0.5, "occur": 0.5, "take place": 0.5, "event": 0.5,
	"change": 0.6, "turn": 0.6, "shift": 0.6, "evolve": 0.7,
	"cause": 0.4, "lead to": 0.6, "result in": 0.7, "aftermath": 0.8,
}

var (
	wordBoundaryMu    sync.Mutex
	wordBoundaryCache = map[string]*regexp.Regexp{}
)

func wordBoundary(signal string) *regexp.Regexp {
	wordBoundaryMu.Lock()
	defer wordBoundaryMu.Unlock()
	if re, ok := wordBoundaryCache[signal]; ok {
		return re
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(signal) + `\b`)
	wordBoundaryCache[signal] = re
	return re
}

func containsSignal(textLower, signal string) bool {
	return wordBoundary(signal).MatchString(textLower)
}

// TemporalIntent scores a query's temporal intent on a continuous [0,1]
// scale: 0 strongly favors early chunks, 0.5 is neutral, 1 strongly
// favors recent chunks. Grounded on analyze_temporal_intent.
func TemporalIntent(text string) float64 {
	lower := strings.ToLower(text)
	score := 0.5
	signalsFound := 0

	for signal, weight := range earlySignals {
		if containsSignal(lower, signal) {
			if weight < score {
				score = weight
			}
			signalsFound++
		}
	}

	for signal, weight := range recentSignals {
		if containsSignal(lower, signal) {
			if weight > score {
				score = weight
			}
			signalsFound++
		}
	}

	if signalsFound == 0 {
		for signal, weight := range midSignals {
			if containsSignal(lower, signal) {
				score = weight
				signalsFound++
			}
		}
	}

	if signalsFound > 1 {
		score = 0.5 + (score-0.5)*0.8
	}

	for term, bias := range eventTerms {
		if containsSignal(lower, term) {
			score = score*0.8 + bias*0.2
		}
	}

	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
