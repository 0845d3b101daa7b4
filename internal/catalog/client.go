package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
)

// Sort parameters accepted by the catalog service product listing.
const (
	SortByID      = "id"
	SortAscending = "asc"
)

// ErrUnavailable indicates the catalog service could not be reached or
// returned a server-side failure. Callers check it with errors.Is.
var ErrUnavailable = errors.New("catalog service unavailable")

// Product is the product record returned by the catalog service.
type Product struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Price             float64 `json:"price"`
	CategoryIDs       []int64 `json:"category_ids"`
	RelatedProductIDs []int64 `json:"related_product_ids"`
}

// Page is one page of the product listing.
type Page struct {
	Items      []Product `json:"items"`
	Number     int       `json:"number"`
	IsLastPage bool      `json:"is_last_page"`
}

// Source defines the catalog operations the recommender depends on
type Source interface {
	FetchPage(ctx context.Context, page, size int, sortAttribute, sortDirection string) (*Page, error)
	FetchByIDs(ctx context.Context, ids []int64) ([]Product, error)
}

// Client handles communication with the catalog service
type Client struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewClient creates a new catalog service client with a request timeout
// and a circuit breaker around all outbound calls
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "catalog-service",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
	}

	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// batchRequest represents a batch product lookup request
type batchRequest struct {
	IDs []int64 `json:"ids"`
}

// batchResponse represents the batch product lookup response
type batchResponse struct {
	Items []Product `json:"items"`
}

// FetchPage retrieves one page of the product listing sorted by the given attribute
func (c *Client) FetchPage(ctx context.Context, page, size int, sortAttribute, sortDirection string) (*Page, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(size))
	params.Set("sort", sortAttribute)
	params.Set("direction", sortDirection)

	body, err := c.get(ctx, "/products?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var pageResp Page
	if err := json.Unmarshal(body, &pageResp); err != nil {
		return nil, fmt.Errorf("failed to decode page response: %w", err)
	}

	return &pageResp, nil
}

// FetchByIDs resolves a set of product ids to full records in a single round trip
func (c *Client) FetchByIDs(ctx context.Context, ids []int64) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}

	reqBody := batchRequest{IDs: ids}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch request: %w", err)
	}

	body, err := c.post(ctx, "/products/batch", jsonData)
	if err != nil {
		return nil, err
	}

	var batchResp batchResponse
	if err := json.Unmarshal(body, &batchResp); err != nil {
		return nil, fmt.Errorf("failed to decode batch response: %w", err)
	}

	return batchResp.Items, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, jsonData []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// do executes the request through the circuit breaker. Transport failures
// and 5xx responses count as breaker failures and map to ErrUnavailable.
func (c *Client) do(req *http.Request) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("catalog service error (status %d): %s", resp.StatusCode, string(body))
		}

		return body, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open", ErrUnavailable)
		}
		return nil, err
	}

	return result.([]byte), nil
}

// BreakerState reports the circuit breaker state for health reporting
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}
