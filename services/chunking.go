package services

// ChunkText splits text into consecutive rune windows of length chunkSize,
// each window after the first starting chunkSize-overlap runes after the
// previous window's start. Purely character-count based, not word or
// sentence aware. Chunk order is document order; callers must not reorder,
// since chunks are paired with a page number but carry no index of their own.
//
// Whitespace-only windows are not filtered here; the ingestion pipeline
// discards them before embedding.
func ChunkText(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := chunkSize - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
