package common

import (
	"strings"
	"unicode/utf8"
)

// ChunkLines splits s into pieces of at most size bytes, preferring to cut at
// a newline. A single line longer than size is cut at the last space, or hard
// at a rune boundary when it has none. Only the newline or space a cut is made
// at is dropped, so indentation at the start of a chunk is kept.
func ChunkLines(s string, size int) []string {
	if size <= 0 || len(s) <= size {
		if s == "" {
			return nil
		}
		return []string{s}
	}

	var chunks []string
	appendChunk := func(chunk string) {
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
	}

	for len(s) > size {
		splitAt := strings.LastIndex(s[:size], "\n")
		if splitAt <= 0 {
			splitAt = strings.LastIndex(s[:size], " ")
		}
		if splitAt > 0 {
			appendChunk(s[:splitAt])
			s = s[splitAt+1:]
			continue
		}

		splitAt = size
		for splitAt > 0 && !utf8.RuneStart(s[splitAt]) {
			splitAt--
		}
		if splitAt == 0 {
			// size is smaller than the first rune
			_, splitAt = utf8.DecodeRuneInString(s)
		}
		appendChunk(s[:splitAt])
		s = s[splitAt:]
	}
	appendChunk(s)
	return chunks
}
