package transcript

// Chunking defaults. Sized so a chunk plus its prompt fits comfortably in
// the generator's context window; both are configurable policy.
const (
	DefaultChunkSize = 18000
	DefaultMaxChunks = 6
)

// Chunk splits text into at most maxChunks substrings of at most size
// characters by straight offset slicing. Boundaries may fall mid-sentence;
// that is an accepted approximation, not a sentence-aware splitter. Text
// beyond maxChunks*size is dropped.
func Chunk(text string, size, maxChunks int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}
	if text == "" {
		return nil
	}

	var chunks []string
	for start := 0; start < len(text) && len(chunks) < maxChunks; start += size {
		end := min(start+size, len(text))
		chunks = append(chunks, text[start:end])
	}
	return chunks
}
