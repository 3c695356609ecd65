package rerank

import (
	"context"
	"math"
	"regexp"
	"strings"
)

var sentenceBoundary = regexp.MustCompile(`(?:[.?!])\s+`)

// splitIntoSentences breaks text on .?!-boundaries, mirroring
// cross_encoder.py's _split_into_sentences.
// Each sentence keeps its terminating punctuation.
func splitIntoSentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		if p := strings.TrimSpace(text[start : loc[0]+1]); p != "" {
			out = append(out, p)
		}
		start = loc[1]
	}
	if p := strings.TrimSpace(text[start:]); p != "" {
		out = append(out, p)
	}
	return out
}

// packWindows greedily packs sentences into windows no longer than
// maxChars (the same rough max_length*4 character estimate the original
// uses in place of a tokenizer), then inserts an overlap window between
// each consecutive pair built from the tail of one window and the head of
// the next, sized by overlapWords.
func packWindows(sentences []string, maxChars, overlapWords int) []string {
	var chunks []string
	var current []string
	currentLen := 0

	for _, s := range sentences {
		if currentLen+len(s) > maxChars && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = nil
			currentLen = 0
		}
		current = append(current, s)
		currentLen += len(s)
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	if len(chunks) <= 1 {
		return chunks
	}

	windows := make([]string, 0, len(chunks)*2-1)
	for i, chunk := range chunks {
		windows = append(windows, chunk)
		if i < len(chunks)-1 {
			windows = append(windows, overlapWindow(chunk, chunks[i+1], overlapWords))
		}
	}
	return windows
}

func overlapWindow(left, right string, overlapWords int) string {
	if overlapWords <= 0 {
		overlapWords = 1
	}
	leftWords := strings.Fields(left)
	rightWords := strings.Fields(right)

	tailStart := len(leftWords) - overlapWords
	if tailStart < 0 {
		tailStart = 0
	}
	headEnd := overlapWords
	if headEnd > len(rightWords) {
		headEnd = len(rightWords)
	}

	combined := append(append([]string{}, leftWords[tailStart:]...), rightWords[:headEnd]...)
	return strings.Join(combined, " ")
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// normalizeScore applies a sigmoid when the raw model score escapes
// [0,1], matching the original's "normalize with sigmoid if needed".
func normalizeScore(raw float64) float64 {
	if raw >= 0 && raw <= 1 {
		return raw
	}
	return sigmoid(raw)
}

// scorePairWithSlidingWindow scores a single (query, passage) pair,
// splitting into overlapping sentence-aligned windows and taking the
// maximum window score when the passage is long enough to exceed the
// estimated model context (maxLength*4 characters, the same rough
// estimate cross_encoder.py uses in place of a tokenizer call).
func scorePairWithSlidingWindow(ctx context.Context, scorer PairScorer, query, passage string, maxLength, overlapWords int) (float64, error) {
	charBudget := maxLength * 4
	if len(passage) < charBudget {
		raw, err := scorer.ScorePair(ctx, query, passage)
		if err != nil {
			return 0, err
		}
		return normalizeScore(raw), nil
	}

	sentences := splitIntoSentences(passage)
	var windows []string
	if len(sentences) <= 1 {
		windows = chunkByChars(passage, charBudget*2)
	} else {
		windows = packWindows(sentences, charBudget, overlapWords)
	}
	if len(windows) == 0 {
		windows = []string{passage}
	}

	best := 0.0
	found := false
	var lastErr error
	for _, w := range windows {
		raw, err := scorer.ScorePair(ctx, query, w)
		if err != nil {
			lastErr = err
			continue
		}
		score := normalizeScore(raw)
		if !found || score > best {
			best = score
			found = true
		}
	}
	if !found {
		return 0, lastErr
	}
	return best, nil
}

func chunkByChars(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	var out []string
	for len(text) > width {
		out = append(out, text[:width])
		text = text[width:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}
