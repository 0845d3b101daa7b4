package recommender

import (
	"context"
	"fmt"
	"testing"

	"github.com/dustin/shop-recommender/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, *mockSource) {
	t.Helper()

	source := newMockSource([][]catalog.Product{mugCatalog()})
	engine, index := newTestEngine(source)
	_, err := engine.Rebuild(context.Background())
	require.NoError(t, err)

	return NewService(index, source, testLogger()), source
}

func TestGetRecommendations(t *testing.T) {
	t.Run("Returns ranked products resolved to catalog records", func(t *testing.T) {
		service, source := newTestService(t)

		recommendations, err := service.GetRecommendations(context.Background(), 1, 10)

		require.NoError(t, err)
		require.Len(t, recommendations, 2)
		assert.Equal(t, "Green Mug", recommendations[0].Product.Name)
		assert.Equal(t, "Blue Mug", recommendations[1].Product.Name)
		assert.Greater(t, recommendations[0].Score, recommendations[1].Score)

		// all ids resolve in one batched round trip
		assert.Equal(t, 1, source.batchCalls)
	})

	t.Run("Limit truncates the ranked list", func(t *testing.T) {
		service, _ := newTestService(t)

		recommendations, err := service.GetRecommendations(context.Background(), 1, 1)

		require.NoError(t, err)
		require.Len(t, recommendations, 1)
		assert.Equal(t, int64(3), recommendations[0].Product.ID)
	})

	t.Run("Limit beyond the available edges is clamped, not an error", func(t *testing.T) {
		service, _ := newTestService(t)

		recommendations, err := service.GetRecommendations(context.Background(), 1, 50)

		require.NoError(t, err)
		assert.Len(t, recommendations, 2)
	})

	t.Run("Unknown product yields an empty result", func(t *testing.T) {
		service, source := newTestService(t)

		recommendations, err := service.GetRecommendations(context.Background(), 9999, 5)

		require.NoError(t, err)
		assert.Empty(t, recommendations)
		// nothing to resolve, so the catalog is not called
		assert.Zero(t, source.batchCalls)
	})

	t.Run("Non-positive limits are rejected", func(t *testing.T) {
		service, _ := newTestService(t)

		_, err := service.GetRecommendations(context.Background(), 1, 0)
		assert.ErrorIs(t, err, ErrInvalidLimit)

		_, err = service.GetRecommendations(context.Background(), 1, -3)
		assert.ErrorIs(t, err, ErrInvalidLimit)
	})

	t.Run("Resolve failure surfaces as catalog unavailable", func(t *testing.T) {
		service, source := newTestService(t)
		source.batchErr = fmt.Errorf("%w: connection refused", catalog.ErrUnavailable)

		_, err := service.GetRecommendations(context.Background(), 1, 5)

		assert.ErrorIs(t, err, catalog.ErrUnavailable)
	})

	t.Run("Products the catalog no longer returns are skipped", func(t *testing.T) {
		service, source := newTestService(t)
		delete(source.records, 3)

		recommendations, err := service.GetRecommendations(context.Background(), 1, 10)

		require.NoError(t, err)
		require.Len(t, recommendations, 1)
		assert.Equal(t, int64(2), recommendations[0].Product.ID)
	})
}
