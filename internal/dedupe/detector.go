// Package dedupe detects semantic duplicates between newly generated stories
// and the existing issue corpus using text embeddings and cosine similarity.
package dedupe

import (
	"context"

	"github.com/planbeam/storyforge/internal/embedding"
	"github.com/planbeam/storyforge/internal/types"
)

const (
	// DefaultSimilarityThreshold is the cosine similarity at or above which a
	// new story is reported as a duplicate of an existing issue. Heuristic
	// tuning value; override via NewDetectorWithThreshold.
	DefaultSimilarityThreshold = 0.85
	// maxCriteriaPerEmbedText caps how many acceptance criteria contribute to
	// the embedded comparison text.
	maxCriteriaPerEmbedText = 6
)

// Detector compares story batches against an existing corpus.
type Detector struct {
	embedder  embedding.Embedder
	threshold float64
}

// NewDetector creates a Detector with the default similarity threshold.
func NewDetector(embedder embedding.Embedder) *Detector {
	return NewDetectorWithThreshold(embedder, DefaultSimilarityThreshold)
}

// NewDetectorWithThreshold creates a Detector with a custom threshold.
func NewDetectorWithThreshold(embedder embedding.Embedder, threshold float64) *Detector {
	return &Detector{embedder: embedder, threshold: threshold}
}

// FindDuplicates compares each new story against every corpus item and reports
// the stories whose best match crosses the threshold. O(new x existing), fine
// because both sets are bounded (at most 12 new, corpus capped by the caller).
func (d *Detector) FindDuplicates(ctx context.Context, stories []types.Story, corpus []types.CorpusItem) []types.DuplicateMatch {
	if len(stories) == 0 || len(corpus) == 0 {
		return nil
	}

	// One batched embed call for both sets: corpus first, then new stories.
	texts := make([]string, 0, len(corpus)+len(stories))
	for _, item := range corpus {
		texts = append(texts, item.EmbeddingText(maxCriteriaPerEmbedText))
	}
	for _, story := range stories {
		texts = append(texts, story.EmbeddingText(maxCriteriaPerEmbedText))
	}
	vectors := d.embedder.Embed(ctx, texts)
	corpusVecs, storyVecs := vectors[:len(corpus)], vectors[len(corpus):]

	return d.match(stories, storyVecs, corpus, corpusVecs)
}

// FindDuplicatesIncremental embeds only the given stories and reuses cached
// corpus embeddings keyed by item id, backfilling cache misses. The cache is an
// explicit caller-owned map, updated in place. Used for single-story
// regeneration where the rest of the corpus is unchanged.
func (d *Detector) FindDuplicatesIncremental(ctx context.Context, stories []types.Story, corpus []types.CorpusItem, cache embedding.Cache) []types.DuplicateMatch {
	if len(stories) == 0 || len(corpus) == 0 {
		return nil
	}
	if cache == nil {
		cache = embedding.Cache{}
	}

	var missing []types.CorpusItem
	for _, item := range corpus {
		if _, ok := cache[item.ID]; !ok {
			missing = append(missing, item)
		}
	}
	if len(missing) > 0 {
		texts := make([]string, len(missing))
		for i, item := range missing {
			texts[i] = item.EmbeddingText(maxCriteriaPerEmbedText)
		}
		vectors := d.embedder.Embed(ctx, texts)
		for i, item := range missing {
			cache[item.ID] = vectors[i]
		}
	}

	corpusVecs := make([][]float32, len(corpus))
	for i, item := range corpus {
		corpusVecs[i] = cache[item.ID]
	}

	storyTexts := make([]string, len(stories))
	for i, story := range stories {
		storyTexts[i] = story.EmbeddingText(maxCriteriaPerEmbedText)
	}
	storyVecs := d.embedder.Embed(ctx, storyTexts)

	return d.match(stories, storyVecs, corpus, corpusVecs)
}

// match finds, per story, the corpus item with maximum cosine similarity and
// emits a DuplicateMatch when that maximum crosses the threshold.
func (d *Detector) match(stories []types.Story, storyVecs [][]float32, corpus []types.CorpusItem, corpusVecs [][]float32) []types.DuplicateMatch {
	var matches []types.DuplicateMatch
	for i, story := range stories {
		best := -1.0
		bestTitle := ""
		for j, item := range corpus {
			sim := embedding.Cosine(storyVecs[i], corpusVecs[j])
			if sim > best {
				best = sim
				bestTitle = item.Title
			}
		}
		if best >= d.threshold {
			matches = append(matches, types.DuplicateMatch{
				StoryIndex:    i,
				StoryTitle:    story.Title,
				ExistingTitle: bestTitle,
				Similarity:    best,
			})
		}
	}
	return matches
}
