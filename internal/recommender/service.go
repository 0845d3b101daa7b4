package recommender

import (
	"context"
	"fmt"

	"github.com/dustin/shop-recommender/internal/catalog"
	"github.com/dustin/shop-recommender/pkg/logger"
)

const maxLimit = 100

// service implements the Service interface
type service struct {
	index  *Index
	source catalog.Source
	logger *logger.Logger
}

// NewService creates a recommendation query service reading from the
// published index and resolving display records through the catalog
func NewService(index *Index, source catalog.Source, log *logger.Logger) Service {
	return &service{
		index:  index,
		source: source,
		logger: log.WithComponent("recommendation-service"),
	}
}

// GetRecommendations returns the top ranked products similar to productID,
// resolved to full catalog records in a single batched lookup. A product the
// index does not know yields an empty result, not an error.
func (s *service) GetRecommendations(ctx context.Context, productID int64, limit int) ([]RecommendedProduct, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	edges := s.index.Get(productID)
	if len(edges) == 0 {
		return []RecommendedProduct{}, nil
	}
	if len(edges) > limit {
		edges = edges[:limit]
	}

	ids := make([]int64, len(edges))
	for i, edge := range edges {
		ids[i] = edge.ProductID
	}

	records, err := s.source.FetchByIDs(ctx, ids)
	if err != nil {
		s.logger.Error(fmt.Sprintf("Failed to resolve %d recommended products for product %d: %s", len(ids), productID, err.Error()))
		return nil, fmt.Errorf("failed to resolve recommended products: %w", err)
	}

	byID := make(map[int64]catalog.Product, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}

	// keep the index ranking; products the catalog no longer returns are skipped
	recommendations := make([]RecommendedProduct, 0, len(edges))
	for _, edge := range edges {
		record, ok := byID[edge.ProductID]
		if !ok {
			continue
		}
		recommendations = append(recommendations, RecommendedProduct{
			Product: record,
			Score:   edge.Score,
		})
	}

	return recommendations, nil
}
