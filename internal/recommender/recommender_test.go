package recommender

import (
	"context"
	"fmt"
	"sync"

	"github.com/dustin/shop-recommender/config"
	"github.com/dustin/shop-recommender/internal/catalog"
	"github.com/dustin/shop-recommender/pkg/logger"
)

// testLogger returns a quiet logger for tests
func testLogger() *logger.Logger {
	log, err := logger.NewLogger(&config.LoggingConfig{Level: "error"})
	if err != nil {
		panic(err)
	}
	return log
}

// mockSource is a scriptable catalog.Source for tests
type mockSource struct {
	mu sync.Mutex

	pages     [][]catalog.Product
	failFrom  int // FetchPage fails for page >= failFrom; -1 disables
	neverLast bool

	records  map[int64]catalog.Product
	batchErr error

	pageCalls  int
	batchCalls int
}

func newMockSource(pages [][]catalog.Product) *mockSource {
	records := make(map[int64]catalog.Product)
	for _, page := range pages {
		for _, p := range page {
			records[p.ID] = p
		}
	}
	return &mockSource{
		pages:    pages,
		failFrom: -1,
		records:  records,
	}
}

func (m *mockSource) FetchPage(_ context.Context, page, _ int, _, _ string) (*catalog.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pageCalls++
	if m.failFrom >= 0 && page >= m.failFrom {
		return nil, fmt.Errorf("%w: connection refused", catalog.ErrUnavailable)
	}
	if m.neverLast {
		return &catalog.Page{Items: m.pages[0], Number: page, IsLastPage: false}, nil
	}
	if page >= len(m.pages) {
		return &catalog.Page{Number: page, IsLastPage: true}, nil
	}
	return &catalog.Page{
		Items:      m.pages[page],
		Number:     page,
		IsLastPage: page == len(m.pages)-1,
	}, nil
}

func (m *mockSource) FetchByIDs(_ context.Context, ids []int64) ([]catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.batchCalls++
	if m.batchErr != nil {
		return nil, m.batchErr
	}

	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if record, ok := m.records[id]; ok {
			out = append(out, record)
		}
	}
	return out, nil
}

// mugCatalog is the shared fixture: three mugs in category 7 and one
// unrelated product with no category. Product 3 declares product 1 as
// related, so 1 must never be recommended for 3.
func mugCatalog() []catalog.Product {
	return []catalog.Product{
		{ID: 1, Name: "Red Mug", Price: 100, CategoryIDs: []int64{7}},
		{ID: 2, Name: "Blue Mug", Price: 110, CategoryIDs: []int64{7}},
		{ID: 3, Name: "Green Mug", Price: 100, CategoryIDs: []int64{7}, RelatedProductIDs: []int64{1}},
		{ID: 4, Name: "Lawn Chair", Price: 900},
	}
}
