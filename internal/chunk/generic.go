package chunk

import "strings"

// sentenceTerminators are checked in the second half of a window when no
// paragraph break is available. "。" covers CJK-style full stops, matching
// the Tokenizer's intent to handle mixed-script corpora gracefully.
var sentenceTerminators = []rune{'.', '!', '?', '。'}

// splitWindow breaks text into overlapping windows of roughly size
// characters. When a window boundary would fall mid-paragraph or
// mid-sentence, the break point backs up to the nearest paragraph break
// in the second half of the window, then the nearest sentence
// terminator, before giving up and cutting at the hard boundary. overlap
// characters from the end of one window are repeated at the start of the
// next so local context survives a chunk boundary.
func splitWindow(text string, size, overlap int) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var windows []string
	start := 0
	for start < n {
		end := start + size
		if end >= n {
			end = n
		} else {
			end = findBreak(runes, start, end)
		}

		windows = append(windows, strings.TrimSpace(string(runes[start:end])))

		if end >= n {
			break
		}
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	// Drop windows that trimmed down to nothing (can happen at the tail
	// when overlap lands entirely on whitespace).
	out := windows[:0]
	for _, w := range windows {
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// findBreak looks for a better cut point than the hard window boundary,
// searching the second half of [start, end) for a paragraph break first,
// then a sentence terminator.
func findBreak(runes []rune, start, end int) int {
	mid := start + (end-start)/2

	lastParagraph := -1
	for i := mid; i < end-1; i++ {
		if runes[i] == '\n' && runes[i+1] == '\n' {
			lastParagraph = i + 2
		}
	}
	if lastParagraph > start {
		return lastParagraph
	}

	lastSentence := -1
	for i := mid; i < end; i++ {
		for _, term := range sentenceTerminators {
			if runes[i] == term {
				lastSentence = i + 1
			}
		}
	}
	if lastSentence > start {
		return lastSentence
	}

	return end
}
