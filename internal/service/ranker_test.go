package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsage-ai/docsage/internal/domain"
)

func TestCosineSimilarity_IdenticalVectors(t *testing.T) {
	v := []float32{0.5, 0.25, 0.125}

	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
}

func TestCosineSimilarity_OppositeVectors(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-1, -2, -3}

	assert.InDelta(t, -1.0, CosineSimilarity(a, b), 1e-9)
}

func TestCosineSimilarity_OrthogonalVectors(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}

	assert.InDelta(t, 0.0, CosineSimilarity(a, b), 1e-9)
}

func TestCosineSimilarity_ZeroMagnitude(t *testing.T) {
	a := []float32{0, 0, 0}
	b := []float32{1, 2, 3}

	assert.Equal(t, 0.0, CosineSimilarity(a, b))
	assert.Equal(t, 0.0, CosineSimilarity(b, a))
}

func TestCosineSimilarity_DimensionMismatch(t *testing.T) {
	a := []float32{1, 2}
	b := []float32{1, 2, 3}

	assert.Equal(t, 0.0, CosineSimilarity(a, b))
}

func TestCosineSimilarity_EmptyVectors(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{}, []float32{}))
}

func TestCosineSimilarity_Bounded(t *testing.T) {
	a := []float32{0.3, -0.7, 0.2, 0.9}
	b := []float32{-0.1, 0.4, 0.8, -0.5}

	score := CosineSimilarity(a, b)
	assert.GreaterOrEqual(t, score, -1.0)
	assert.LessOrEqual(t, score, 1.0)
}

// embeddingWithScore builds a chunk embedding whose cosine against the unit
// query vector {1, 0} is exactly score, for score in [0, 1].
func embeddingWithScore(index int, text string, score float64) domain.ChunkEmbedding {
	y := 1 - score*score
	if y < 0 {
		y = 0
	}
	return domain.ChunkEmbedding{
		Index:  index,
		Chunk:  text,
		Vector: []float32{float32(score), float32(math.Sqrt(y))},
	}
}

var query = []float32{1, 0}

func TestScoreChunks_SortedByScoreDescending(t *testing.T) {
	embeddings := []domain.ChunkEmbedding{
		embeddingWithScore(0, "low", 0.3),
		embeddingWithScore(1, "high", 0.9),
		embeddingWithScore(2, "mid", 0.6),
	}

	scored := ScoreChunks(query, embeddings)

	require.Len(t, scored, 3)
	assert.Equal(t, "high", scored[0].Chunk)
	assert.Equal(t, "mid", scored[1].Chunk)
	assert.Equal(t, "low", scored[2].Chunk)
}

func TestScoreChunks_TieBrokenByIndex(t *testing.T) {
	embeddings := []domain.ChunkEmbedding{
		embeddingWithScore(2, "third", 0.5),
		embeddingWithScore(0, "first", 0.5),
		embeddingWithScore(1, "second", 0.5),
	}

	scored := ScoreChunks(query, embeddings)

	require.Len(t, scored, 3)
	assert.Equal(t, "first", scored[0].Chunk)
	assert.Equal(t, "second", scored[1].Chunk)
	assert.Equal(t, "third", scored[2].Chunk)
}

func TestRankChunks_CapThenFilter(t *testing.T) {
	embeddings := []domain.ChunkEmbedding{
		embeddingWithScore(0, "a", 0.9),
		embeddingWithScore(1, "b", 0.7),
		embeddingWithScore(2, "c", 0.5),
		embeddingWithScore(3, "d", 0.3),
	}

	cfg := RankerConfig{TopN: 2, Threshold: 0.6, Order: SelectionCapThenFilter}
	selected := RankChunks(query, embeddings, cfg)

	assert.Equal(t, []string{"a", "b"}, selected)
}

func TestRankChunks_CapThenFilter_DropsBorderline(t *testing.T) {
	// With cap-then-filter the sub-threshold chunk inside the top 3 is dropped
	// and NOT replaced by the next best.
	embeddings := []domain.ChunkEmbedding{
		embeddingWithScore(0, "a", 0.9),
		embeddingWithScore(1, "b", 0.5),
		embeddingWithScore(2, "c", 0.45),
		embeddingWithScore(3, "d", 0.44),
	}

	cfg := RankerConfig{TopN: 3, Threshold: 0.48, Order: SelectionCapThenFilter}
	selected := RankChunks(query, embeddings, cfg)

	assert.Equal(t, []string{"a", "b"}, selected)
}

func TestRankChunks_FilterThenCap_BackfillsFromBelowCap(t *testing.T) {
	embeddings := []domain.ChunkEmbedding{
		embeddingWithScore(0, "a", 0.9),
		embeddingWithScore(1, "b", 0.8),
		embeddingWithScore(2, "c", 0.7),
		embeddingWithScore(3, "d", 0.6),
	}

	cfg := RankerConfig{TopN: 3, Threshold: 0.5, Order: SelectionFilterThenCap}
	selected := RankChunks(query, embeddings, cfg)

	assert.Equal(t, []string{"a", "b", "c"}, selected)
}

func TestRankChunks_ThresholdIsExclusive(t *testing.T) {
	// {3, 4} against {1, 0} scores exactly 3/5; a chunk at the threshold is
	// excluded, not kept.
	embeddings := []domain.ChunkEmbedding{
		{Index: 0, Chunk: "at_threshold", Vector: []float32{3, 4}},
		{Index: 1, Chunk: "above", Vector: []float32{1, 0}},
	}

	cfg := RankerConfig{TopN: 5, Threshold: 3.0 / 5.0, Order: SelectionCapThenFilter}
	selected := RankChunks(query, embeddings, cfg)

	assert.Equal(t, []string{"above"}, selected)
}

func TestRankChunks_EmptyEmbeddings(t *testing.T) {
	cfg := DefaultRankerConfig()

	assert.Empty(t, RankChunks(query, nil, cfg))
}

func TestRankChunks_AllBelowThreshold(t *testing.T) {
	embeddings := []domain.ChunkEmbedding{
		embeddingWithScore(0, "a", 0.1),
		embeddingWithScore(1, "b", 0.2),
	}

	selected := RankChunks(query, embeddings, DefaultRankerConfig())

	assert.Empty(t, selected)
}

func TestRankChunks_ZeroTopNUsesDefault(t *testing.T) {
	embeddings := make([]domain.ChunkEmbedding, 10)
	for i := range embeddings {
		embeddings[i] = embeddingWithScore(i, "chunk", 0.9)
	}

	cfg := RankerConfig{TopN: 0, Threshold: 0.4, Order: SelectionCapThenFilter}
	selected := RankChunks(query, embeddings, cfg)

	assert.Len(t, selected, DefaultRankerConfig().TopN)
}

func TestNormalizeSelectionOrder(t *testing.T) {
	assert.Equal(t, SelectionFilterThenCap, NormalizeSelectionOrder("filter_then_cap"))
	assert.Equal(t, SelectionCapThenFilter, NormalizeSelectionOrder("cap_then_filter"))
	assert.Equal(t, SelectionCapThenFilter, NormalizeSelectionOrder(""))
	assert.Equal(t, SelectionCapThenFilter, NormalizeSelectionOrder("bogus"))
}
