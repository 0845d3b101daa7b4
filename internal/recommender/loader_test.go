package recommender

import (
	"context"
	"testing"

	"github.com/dustin/shop-recommender/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotLoader(t *testing.T) {
	log := testLogger()

	t.Run("Fetches pages until the last one", func(t *testing.T) {
		products := mugCatalog()
		source := newMockSource([][]catalog.Product{
			products[:2],
			products[2:],
		})
		loader := NewSnapshotLoader(source, 2, 0, log)

		snapshot, err := loader.Load(context.Background())

		require.NoError(t, err)
		assert.False(t, snapshot.Partial)
		assert.Len(t, snapshot.Products, 4)
		assert.Equal(t, 2, source.pageCalls)
	})

	t.Run("First page failure aborts with unavailable", func(t *testing.T) {
		source := newMockSource([][]catalog.Product{mugCatalog()})
		source.failFrom = 0
		loader := NewSnapshotLoader(source, 2, 0, log)

		snapshot, err := loader.Load(context.Background())

		assert.Nil(t, snapshot)
		assert.ErrorIs(t, err, catalog.ErrUnavailable)
	})

	t.Run("Mid-pagination failure returns a partial snapshot", func(t *testing.T) {
		products := mugCatalog()
		source := newMockSource([][]catalog.Product{
			products[:2],
			products[2:],
		})
		source.failFrom = 1
		loader := NewSnapshotLoader(source, 2, 0, log)

		snapshot, err := loader.Load(context.Background())

		require.NoError(t, err)
		assert.True(t, snapshot.Partial)
		assert.Len(t, snapshot.Products, 2)
	})

	t.Run("Safety cap stops a source that never reports completion", func(t *testing.T) {
		source := newMockSource([][]catalog.Product{mugCatalog()})
		source.neverLast = true
		loader := NewSnapshotLoader(source, 4, 7, log)

		snapshot, err := loader.Load(context.Background())

		require.NoError(t, err)
		assert.True(t, snapshot.Partial)
		assert.Equal(t, 7, source.pageCalls)
	})

	t.Run("Duplicate ids across pages keep the latest record", func(t *testing.T) {
		// the catalog shifted between page requests: product 2 shows up twice
		source := newMockSource([][]catalog.Product{
			{
				{ID: 1, Name: "Red Mug", Price: 100, CategoryIDs: []int64{7}},
				{ID: 2, Name: "Blue Mug", Price: 110, CategoryIDs: []int64{7}},
			},
			{
				{ID: 2, Name: "Blue Mug XL", Price: 130, CategoryIDs: []int64{7}},
				{ID: 3, Name: "Green Mug", Price: 100, CategoryIDs: []int64{7}},
			},
		})
		loader := NewSnapshotLoader(source, 2, 0, log)

		snapshot, err := loader.Load(context.Background())

		require.NoError(t, err)
		require.Len(t, snapshot.Products, 3)

		var blue *ProductFeatures
		for i := range snapshot.Products {
			if snapshot.Products[i].ID == 2 {
				blue = &snapshot.Products[i]
			}
		}
		require.NotNil(t, blue)
		assert.Equal(t, 130.0, blue.Price)
	})
}
