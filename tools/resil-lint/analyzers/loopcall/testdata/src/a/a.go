package a

import "context"

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type Briefer interface {
	BriefScenario(ctx context.Context, id string) (string, error)
}

func bad(ctx context.Context, items []string, e Embedder, b Briefer) {
	for _, item := range items {
		e.Embed(ctx, item)         // want "Embed called inside loop - use EmbedBatch"
		b.BriefScenario(ctx, item) // want "BriefScenario called inside loop - one remote call per item"
	}
}

func good(ctx context.Context, items []string, e Embedder) {
	_, _ = e.EmbedBatch(ctx, items)

	var fns []func()
	for _, item := range items {
		fns = append(fns, func() { _, _ = e.Embed(ctx, item) })
	}
	_ = fns
}
