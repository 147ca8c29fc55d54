package llm

import "context"

// EmbeddingDims is the length of vectors produced by HashEmbedder.
const EmbeddingDims = 384

// HashEmbedder is a deterministic offline embedder. Each rune adds
// codepoint/1000 to slot i%EmbeddingDims, so identical texts always map
// to identical vectors.
type HashEmbedder struct{}

func (HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return HashEmbed(text), nil
}

// HashEmbed is the pure form of HashEmbedder.Embed.
func HashEmbed(text string) []float32 {
	v := make([]float32, EmbeddingDims)
	i := 0
	for _, r := range text {
		v[i%EmbeddingDims] += float32(r) / 1000
		i++
	}
	return v
}
