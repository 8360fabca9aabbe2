package utils

// SplitText splits a long string into chunks of approximately 'chunkSize'
// characters with an 'overlap' preserving context at the boundaries.
// Splitting is rune-based so multi-byte scripts are never cut mid-character.
func SplitText(text string, chunkSize int, overlap int) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	totalLen := len(runes)
	if totalLen <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	var chunks []string
	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}
