package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"

	"github.com/docuchat/docuchat/internal/embedding"
	"github.com/docuchat/docuchat/internal/log"
)

// SetupGemini creates a live Gemini embedder for integration tests.
// Skips the test when GEMINI_API_KEY is not set.
func SetupGemini(t *testing.T, model string, dimension int) *embedding.Gemini {
	t.Helper()

	if os.Getenv("GEMINI_API_KEY") == "" {
		t.Skip("GEMINI_API_KEY not set, skipping live embedder test")
	}

	g := genkit.Init(context.Background(), genkit.WithPlugins(&googlegenai.GoogleAI{}))

	emb, err := embedding.NewGemini(g, model, dimension, log.NewNop())
	if err != nil {
		t.Fatalf("creating Gemini embedder: %v", err)
	}
	return emb
}
