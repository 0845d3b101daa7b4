package recommender

import (
	"context"
	"errors"
	"time"

	"github.com/dustin/shop-recommender/internal/catalog"
)

// ErrInvalidLimit is returned when a non-positive limit is requested
var ErrInvalidLimit = errors.New("limit must be a positive integer")

// ProductFeatures is the per-rebuild feature set for one catalog product.
// Token sets are computed once at construction and never mutated afterwards.
type ProductFeatures struct {
	ID    int64
	Price float64

	nameTokens  map[string]struct{}
	descTokens  map[string]struct{}
	categoryIDs map[int64]struct{}
	excludedIDs map[int64]struct{}
}

// NewProductFeatures builds a feature set from a catalog product record.
// The product's own related products become its excluded ids: recommending
// them would duplicate what the catalog already shows.
func NewProductFeatures(p catalog.Product) ProductFeatures {
	categories := make(map[int64]struct{}, len(p.CategoryIDs))
	for _, id := range p.CategoryIDs {
		categories[id] = struct{}{}
	}

	excluded := make(map[int64]struct{}, len(p.RelatedProductIDs))
	for _, id := range p.RelatedProductIDs {
		excluded[id] = struct{}{}
	}

	return ProductFeatures{
		ID:          p.ID,
		Price:       p.Price,
		nameTokens:  Tokenize(p.Name),
		descTokens:  Tokenize(p.Description),
		categoryIDs: categories,
		excludedIDs: excluded,
	}
}

// RankedProduct is one edge in a product's ranked similarity list
type RankedProduct struct {
	ProductID int64   `json:"product_id"`
	Score     float64 `json:"score"`
}

// RecommendedProduct is a ranked edge resolved to its display record
type RecommendedProduct struct {
	Product catalog.Product `json:"product"`
	Score   float64         `json:"score"`
}

// Snapshot is the full catalog state fetched for one rebuild.
// Partial is set when the source became unavailable mid-pagination.
type Snapshot struct {
	Products []ProductFeatures
	Partial  bool
}

// RebuildResult summarizes one completed index rebuild
type RebuildResult struct {
	Products int
	Edges    int
	Partial  bool
	Duration time.Duration
}

// Service defines the interface for recommendation queries
type Service interface {
	GetRecommendations(ctx context.Context, productID int64, limit int) ([]RecommendedProduct, error)
}

// RecommendationResponse is the HTTP payload for a recommendations query
type RecommendationResponse struct {
	ProductID       int64                `json:"product_id"`
	Recommendations []RecommendedProduct `json:"recommendations"`
	Count           int                  `json:"count"`
	GeneratedAt     time.Time            `json:"generated_at"`
}

// BuildRecommendationResponse converts resolved recommendations to the HTTP payload
func BuildRecommendationResponse(recommendations []RecommendedProduct, productID int64) *RecommendationResponse {
	return &RecommendationResponse{
		ProductID:       productID,
		Recommendations: recommendations,
		Count:           len(recommendations),
		GeneratedAt:     time.Now(),
	}
}
