// Package embedding turns text into fixed-length vectors for semantic
// similarity checks. A Gemini-backed implementation is used when an API key is
// configured; otherwise (or on call failure) texts map to deterministic
// pseudo-vectors so the pipeline degrades without failing.
package embedding

import (
	"context"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"
)

const (
	// DefaultModel is the Gemini embedding model used for similarity.
	DefaultModel = "gemini-embedding-001"
	// DefaultBatchSize bounds a single provider call. Gemini allows larger
	// batches; small batches keep individual call latency down.
	DefaultBatchSize = 32
	// embedConcurrency bounds concurrent batch calls to the provider.
	embedConcurrency = 4
)

// Embedder produces one vector per input text, same length and order as the
// input. Implementations are total: provider failures are healed per item with
// deterministic pseudo-vectors, never surfaced as errors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) [][]float32
}

// Cache is an embedding cache keyed by an external entity id (e.g. issue id).
// It is an explicit parameter passed by callers, not shared module state.
type Cache map[string][]float32

// GeminiEmbedder calls the Gemini embeddings API in bounded batches.
type GeminiEmbedder struct {
	client    *genai.Client
	model     string
	batchSize int
}

// NewGeminiEmbedder creates an Embedder backed by the Gemini API. An empty
// model name selects DefaultModel.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string) (*GeminiEmbedder, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiEmbedder{client: client, model: model, batchSize: DefaultBatchSize}, nil
}

// Close releases the underlying API client.
func (e *GeminiEmbedder) Close() error {
	return e.client.Close()
}

// Embed returns one vector per text. Batches run concurrently; a failed batch
// or an empty per-item result is substituted with a pseudo-vector for the
// affected texts only.
func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) [][]float32 {
	if len(texts) == 0 {
		return nil
	}
	results := make([][]float32, len(texts))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		start, batch := start, texts[start:end]
		g.Go(func() error {
			vectors := e.embedBatch(gCtx, batch)
			copy(results[start:], vectors)
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors; failures heal in place

	for i, vec := range results {
		if len(vec) == 0 {
			results[i] = PseudoVector(texts[i])
		}
	}
	return results
}

// embedBatch performs one provider call. On failure the whole batch falls back
// to pseudo-vectors.
func (e *GeminiEmbedder) embedBatch(ctx context.Context, texts []string) [][]float32 {
	em := e.client.EmbeddingModel(e.model)
	em.TaskType = genai.TaskTypeSemanticSimilarity

	batch := em.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return pseudoVectors(texts)
	}

	vectors := make([][]float32, len(texts))
	for i := range texts {
		if i < len(resp.Embeddings) && resp.Embeddings[i] != nil {
			vectors[i] = resp.Embeddings[i].Values
		}
	}
	return vectors
}

// PseudoEmbedder maps every text to its deterministic pseudo-vector. Used when
// no provider is configured and in tests.
type PseudoEmbedder struct{}

// Embed implements Embedder.
func (PseudoEmbedder) Embed(_ context.Context, texts []string) [][]float32 {
	return pseudoVectors(texts)
}

func pseudoVectors(texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = PseudoVector(text)
	}
	return out
}
