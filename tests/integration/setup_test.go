package integration

import (
	"context"
	"hash/fnv"
	"os"
	"strings"
	"testing"

	"github.com/ersonp/resilience-core/internal/infrastructure/config"
	embedder "github.com/ersonp/resilience-core/internal/infrastructure/embedder/openai"
	"github.com/ersonp/resilience-core/internal/infrastructure/vectordb/qdrant"
)

const (
	testQdrantHost = "localhost"
	testQdrantPort = 6334
	testCollection = "resil_integration_test"
)

var testIndex *qdrant.Repository

func TestMain(m *testing.M) {
	// Skip if INTEGRATION_TEST is not set
	if os.Getenv("INTEGRATION_TEST") != "1" {
		os.Exit(0)
	}

	cfg := config.QdrantConfig{
		Host:       testQdrantHost,
		Port:       testQdrantPort,
		Collection: testCollection,
	}

	var err error
	testIndex, err = qdrant.NewRepository(cfg)
	if err != nil {
		panic("failed to create repository: " + err.Error())
	}

	ctx := context.Background()
	_ = testIndex.DeleteCollection(ctx) // Ignore error if collection doesn't exist
	if err := testIndex.EnsureCollection(ctx, uint64(embedder.VectorSize)); err != nil {
		panic("failed to create collection: " + err.Error())
	}

	code := m.Run()

	_ = testIndex.DeleteCollection(ctx)
	testIndex.Close()

	os.Exit(code)
}

// resetCollection empties the shared collection between tests.
func resetCollection(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if err := testIndex.DeleteCollection(ctx); err != nil {
		t.Fatalf("failed to drop collection: %v", err)
	}
	if err := testIndex.EnsureCollection(ctx, uint64(embedder.VectorSize)); err != nil {
		t.Fatalf("failed to recreate collection: %v", err)
	}
}

// wordEmbedder hashes each word into one dimension, so texts sharing words
// score higher under cosine distance.
type wordEmbedder struct{}

func (wordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, embedder.VectorSize)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(word, ".,:;!?\"'")))
		v[h.Sum32()%embedder.VectorSize]++
	}
	// Qdrant rejects zero vectors under cosine distance.
	v[0] += 0.01
	return v, nil
}

func (wordEmbedder) Dimensions() uint64 {
	return embedder.VectorSize
}

func (e wordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
