package recommender

import (
	"context"
	"fmt"

	"github.com/dustin/shop-recommender/internal/catalog"
	"github.com/dustin/shop-recommender/pkg/logger"
)

const (
	defaultPageSize = 100
	defaultMaxPages = 1000
)

// SnapshotLoader pulls the complete product catalog from the catalog
// service, one page at a time
type SnapshotLoader struct {
	source   catalog.Source
	pageSize int
	maxPages int
	logger   *logger.Logger
}

// NewSnapshotLoader creates a snapshot loader with validation and defaults
func NewSnapshotLoader(source catalog.Source, pageSize, maxPages int, log *logger.Logger) *SnapshotLoader {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	return &SnapshotLoader{
		source:   source,
		pageSize: pageSize,
		maxPages: maxPages,
		logger:   log.WithComponent("snapshot-loader"),
	}
}

// Load fetches pages sorted by ascending id until the catalog reports the
// last page, capped at maxPages in case the source never does. A failure on
// the first page aborts; a failure after that returns whatever was fetched
// with Partial set. The catalog may grow or shrink between page requests, so
// a product seen twice is kept once (latest record wins).
func (l *SnapshotLoader) Load(ctx context.Context) (*Snapshot, error) {
	var products []ProductFeatures
	seen := make(map[int64]int)
	partial := false

	for page := 0; ; page++ {
		if page >= l.maxPages {
			l.logger.Warn(fmt.Sprintf("Catalog pagination hit the safety cap of %d pages, treating snapshot as partial", l.maxPages))
			partial = true
			break
		}

		resp, err := l.source.FetchPage(ctx, page, l.pageSize, catalog.SortByID, catalog.SortAscending)
		if err != nil {
			if page == 0 {
				return nil, fmt.Errorf("failed to fetch first catalog page: %w", err)
			}
			l.logger.Warn(fmt.Sprintf("Catalog became unavailable at page %d, proceeding with %d products: %s", page, len(products), err.Error()))
			partial = true
			break
		}

		for _, item := range resp.Items {
			features := NewProductFeatures(item)
			if idx, ok := seen[features.ID]; ok {
				products[idx] = features
				continue
			}
			seen[features.ID] = len(products)
			products = append(products, features)
		}

		if resp.IsLastPage {
			break
		}
	}

	l.logger.Info(fmt.Sprintf("Catalog snapshot loaded: %d products (partial=%t)", len(products), partial))

	return &Snapshot{Products: products, Partial: partial}, nil
}
