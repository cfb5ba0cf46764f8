package service

import (
	"math"
	"sort"

	"github.com/docsage-ai/docsage/internal/domain"
)

// SelectionOrder controls how the top-N cap and the relevance threshold
// combine. The two orders can return different counts when borderline scores
// cluster near the cap.
type SelectionOrder string

const (
	// SelectionCapThenFilter takes the best N chunks first, then drops any at
	// or below the threshold: "best-effort top N, but only if good enough".
	SelectionCapThenFilter SelectionOrder = "cap_then_filter"
	// SelectionFilterThenCap drops sub-threshold chunks first, then caps.
	SelectionFilterThenCap SelectionOrder = "filter_then_cap"
)

// RankerConfig controls chunk selection.
type RankerConfig struct {
	TopN      int
	Threshold float64
	Order     SelectionOrder
}

// DefaultRankerConfig returns the default ranking configuration.
func DefaultRankerConfig() RankerConfig {
	return RankerConfig{
		TopN:      5,
		Threshold: 0.4,
		Order:     SelectionCapThenFilter,
	}
}

// NormalizeSelectionOrder maps free-form configuration to a SelectionOrder,
// defaulting to cap-then-filter.
func NormalizeSelectionOrder(value string) SelectionOrder {
	if SelectionOrder(value) == SelectionFilterThenCap {
		return SelectionFilterThenCap
	}
	return SelectionCapThenFilter
}

// CosineSimilarity returns the normalized dot product of two vectors. It is
// defined as 0 when either vector has zero magnitude or when the
// dimensionalities differ, keeping ranking total over all inputs.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// RankChunks scores every chunk embedding against the query vector and selects
// chunk texts per the configured cap/threshold policy. Scoring is pure and
// deterministic: chunks sort by descending similarity with ties broken by
// ascending chunk index.
func RankChunks(queryVector []float32, embeddings []domain.ChunkEmbedding, cfg RankerConfig) []string {
	scored := ScoreChunks(queryVector, embeddings)

	topN := cfg.TopN
	if topN <= 0 {
		topN = DefaultRankerConfig().TopN
	}

	if cfg.Order == SelectionFilterThenCap {
		kept := scored[:0]
		for _, s := range scored {
			if s.Score > cfg.Threshold {
				kept = append(kept, s)
			}
		}
		scored = kept
		if len(scored) > topN {
			scored = scored[:topN]
		}
	} else {
		if len(scored) > topN {
			scored = scored[:topN]
		}
		kept := scored[:0]
		for _, s := range scored {
			if s.Score > cfg.Threshold {
				kept = append(kept, s)
			}
		}
		scored = kept
	}

	selected := make([]string, len(scored))
	for i, s := range scored {
		selected[i] = s.Chunk
	}
	return selected
}

// ScoreChunks computes the similarity of every chunk against the query vector
// and returns the chunks sorted by descending score, index ascending on ties.
func ScoreChunks(queryVector []float32, embeddings []domain.ChunkEmbedding) []domain.ScoredChunk {
	scored := make([]domain.ScoredChunk, len(embeddings))
	for i, e := range embeddings {
		scored[i] = domain.ScoredChunk{
			Index: e.Index,
			Chunk: e.Chunk,
			Score: CosineSimilarity(queryVector, e.Vector),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Index < scored[j].Index
	})

	return scored
}
