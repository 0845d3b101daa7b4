package recommender

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/dustin/shop-recommender/pkg/logger"
	"github.com/dustin/shop-recommender/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Engine rebuilds the recommendation index from a fresh catalog snapshot
type Engine struct {
	loader      *SnapshotLoader
	index       *Index
	parallelism int
	logger      *logger.Logger
}

// NewEngine creates a rebuild engine publishing into the given index
func NewEngine(loader *SnapshotLoader, index *Index, log *logger.Logger) *Engine {
	return &Engine{
		loader:      loader,
		index:       index,
		parallelism: runtime.GOMAXPROCS(0),
		logger:      log.WithComponent("rebuild-engine"),
	}
}

// Rebuild pulls the full catalog, scores every product pair and publishes
// the new mapping in one atomic swap. If the catalog is unreachable the
// rebuild aborts and the previously published index keeps serving queries:
// stale recommendations beat none. A partial snapshot still publishes
// (degraded rebuild) and is flagged on the result.
func (e *Engine) Rebuild(ctx context.Context) (*RebuildResult, error) {
	start := time.Now()
	e.logger.Info("Starting recommendation index rebuild")

	snapshot, err := e.loader.Load(ctx)
	if err != nil {
		metrics.RebuildsTotal.WithLabelValues("failed").Inc()
		e.logger.Error("Rebuild aborted, keeping previous index: " + err.Error())
		return nil, fmt.Errorf("failed to load catalog snapshot: %w", err)
	}

	mapping := e.buildMapping(ctx, snapshot.Products)

	edges := 0
	for _, ranked := range mapping {
		edges += len(ranked)
	}

	e.index.publish(mapping)

	result := &RebuildResult{
		Products: len(snapshot.Products),
		Edges:    edges,
		Partial:  snapshot.Partial,
		Duration: time.Since(start),
	}

	metrics.RebuildDuration.Observe(result.Duration.Seconds())
	metrics.IndexedProducts.Set(float64(result.Products))
	if result.Partial {
		metrics.RebuildsTotal.WithLabelValues("partial").Inc()
		e.logger.Warn(fmt.Sprintf("Rebuild published from a partial catalog snapshot: %d products, %d edges in %v", result.Products, result.Edges, result.Duration))
	} else {
		metrics.RebuildsTotal.WithLabelValues("success").Inc()
		e.logger.Info(fmt.Sprintf("Rebuild complete: %d products, %d edges in %v", result.Products, result.Edges, result.Duration))
	}

	return result, nil
}

// buildMapping computes each product's ranked list into a fresh snapshot.
// The O(N^2) pairwise pass is split per product across a bounded worker
// group; each worker writes only its own slot.
func (e *Engine) buildMapping(ctx context.Context, products []ProductFeatures) indexSnapshot {
	ranked := make([][]RankedProduct, len(products))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i := range products {
		i := i
		g.Go(func() error {
			ranked[i] = rankAgainst(&products[i], products)
			return nil
		})
	}
	// workers never fail; Wait only fences completion
	_ = g.Wait()

	mapping := make(indexSnapshot, len(products))
	for i := range products {
		if len(ranked[i]) > 0 {
			mapping[products[i].ID] = ranked[i]
		}
	}
	return mapping
}

// rankAgainst scores one product against the rest of the snapshot, keeps
// edges above MinSimilarity and sorts them by descending score. Ties break
// on ascending product id so rankings are deterministic.
func rankAgainst(p *ProductFeatures, all []ProductFeatures) []RankedProduct {
	var edges []RankedProduct
	for i := range all {
		q := &all[i]
		if q.ID == p.ID {
			continue
		}
		if _, excluded := p.excludedIDs[q.ID]; excluded {
			continue
		}
		if score := Score(p, q); score > MinSimilarity {
			edges = append(edges, RankedProduct{ProductID: q.ID, Score: score})
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Score != edges[j].Score {
			return edges[i].Score > edges[j].Score
		}
		return edges[i].ProductID < edges[j].ProductID
	})

	return edges
}
