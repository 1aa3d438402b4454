package catalog

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/readlog/readlog-server/internal/metrics"
)

const (
	// fetchCount is how many records are requested; most are filtered out.
	fetchCount = 50
	// MaxCandidates caps the records returned to the caller.
	MaxCandidates = 5

	breakerName = "catalog"
)

// Client searches the catalog.
type Client struct {
	baseURL      string
	bookCategory string
	httpClient   *http.Client
	rateLimiter  *rate.Limiter
	breaker      *gobreaker.CircuitBreaker[[]Candidate]
	logger       *slog.Logger
}

// NewClient creates a catalog client. Requests are limited to one per second with a burst of 3.
func NewClient(baseURL, bookCategory string, logger *slog.Logger) *Client {
	metrics.SetBreakerOpen(breakerName, false)
	return &Client{
		baseURL:      baseURL,
		bookCategory: bookCategory,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 3),
		breaker: gobreaker.NewCircuitBreaker[[]Candidate](gobreaker.Settings{
			Name:        breakerName,
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
				metrics.SetBreakerOpen(name, to != gobreaker.StateClosed)
			},
		}),
		logger: logger,
	}
}

// SearchByTitle returns up to MaxCandidates book records whose title contains title.
func (c *Client) SearchByTitle(ctx context.Context, title string) ([]Candidate, error) {
	candidates, err := c.breaker.Execute(func() ([]Candidate, error) {
		return c.search(ctx, title)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordCatalogRequest("circuit_open")
		return nil, fmt.Errorf("catalog unavailable: %w", err)
	case err != nil:
		metrics.RecordCatalogRequest("error")
		return nil, err
	}
	metrics.RecordCatalogRequest("ok")
	return candidates, nil
}

func (c *Client) search(ctx context.Context, title string) ([]Candidate, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("title", title)
	params.Set("cnt", strconv.Itoa(fetchCount))
	searchURL := c.baseURL + "?" + params.Encode()

	c.logger.Debug("searching catalog", "title", title, "url", searchURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	var feed rssFeed
	dec := xml.NewDecoder(resp.Body)
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&feed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	candidates := c.filter(feed.Items, title)
	c.logger.Debug("catalog search results", "title", title, "items", len(feed.Items), "candidates", len(candidates))
	return candidates, nil
}

// filter keeps book records whose normalized title contains the normalized query.
func (c *Client) filter(items []rssItem, query string) []Candidate {
	keyword := normalizeTitle(query)
	candidates := []Candidate{}

	for _, item := range items {
		if !slices.Contains(item.Categories, c.bookCategory) {
			continue
		}
		itemTitle := strings.TrimSpace(item.Title)
		if itemTitle == "" || !strings.Contains(normalizeTitle(itemTitle), keyword) {
			continue
		}

		candidates = append(candidates, Candidate{
			Title:         itemTitle,
			Author:        joinAuthors(item.Creators),
			Publisher:     strings.TrimSpace(item.Publisher),
			PublishedYear: extractYear(item.Issued),
		})
		if len(candidates) >= MaxCandidates {
			break
		}
	}
	return candidates
}
