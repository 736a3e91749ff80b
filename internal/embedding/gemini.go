package embedding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
)

// Gemini embeds text using the Google AI embedding API via Genkit.
// The googlegenai plugin reads GEMINI_API_KEY from the environment.
//
// Gemini is safe for concurrent use.
type Gemini struct {
	embedder  ai.Embedder
	model     string
	dimension int
	logger    *slog.Logger
}

// NewGemini creates a Gemini embedder for the given model.
// g must have been initialized with the googlegenai plugin:
//
//	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
//	emb := embedding.NewGemini(g, "text-embedding-004", 768, logger)
func NewGemini(g *genkit.Genkit, model string, dimension int, logger *slog.Logger) (*Gemini, error) {
	if logger == nil {
		logger = slog.Default()
	}

	embedder := googlegenai.GoogleAIEmbedder(g, model)
	if embedder == nil {
		return nil, fmt.Errorf("embedder %q not registered by googlegenai plugin", model)
	}

	return &Gemini{
		embedder:  embedder,
		model:     model,
		dimension: dimension,
		logger:    logger,
	}, nil
}

// Embed generates the embedding for a single text.
func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := g.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for the given texts in input order.
func (g *Gemini) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	input := make([]*ai.Document, len(texts))
	for i, text := range texts {
		input[i] = ai.DocumentFromText(text, nil)
	}

	resp, err := g.embedder.Embed(ctx, &ai.EmbedRequest{Input: input})
	if err != nil {
		return nil, fmt.Errorf("embedding %d texts with %s: %w", len(texts), g.model, err)
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vectors[i] = emb.Embedding
	}

	if err := checkDimensions(vectors, len(texts), g.dimension); err != nil {
		return nil, err
	}

	g.logger.Debug("generated embeddings", "model", g.model, "count", len(vectors))
	return vectors, nil
}

// Dimension returns the embedding vector dimension.
func (g *Gemini) Dimension() int { return g.dimension }

// ModelName returns the name of the embedding model.
func (g *Gemini) ModelName() string { return g.model }
