package generation

// SplitChunks cuts text into contiguous, non-overlapping windows of at most
// size characters, preserving order; the last chunk may be shorter. Cuts land
// wherever the window ends, including mid-sentence.
func SplitChunks(text string, size int) []string {
	if size <= 0 {
		return []string{text}
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// NumChunks is ceil(len/size) without materializing the chunks.
func NumChunks(textLen, size int) int {
	if size <= 0 {
		return 1
	}
	return (textLen + size - 1) / size
}
