// Package brickset scrapes the community price-reference listing pages and
// extracts minifig records from their raw HTML.
package brickset

import (
	"context"
	"fmt"

	"github.com/figdex/figdex/internal/fetcher"
)

// Config configures the Brickset scraper.
type Config struct {
	BaseURL    string `mapstructure:"base_url"`
	TotalPages int    `mapstructure:"total_pages"`
}

// Client fetches Star Wars minifig listing pages.
type Client struct {
	fetcher fetcher.Fetcher
	cfg     Config
}

// NewClient creates a Brickset client.
func NewClient(f fetcher.Fetcher, cfg Config) *Client {
	return &Client{fetcher: f, cfg: cfg}
}

// TotalPages returns the configured number of listing pages.
func (c *Client) TotalPages() int { return c.cfg.TotalPages }

// ListingPage fetches the raw HTML of one listing page (1-based).
func (c *Client) ListingPage(ctx context.Context, page int) (string, error) {
	url := fmt.Sprintf("%s/minifigs/category-Star-Wars/page-%d", c.cfg.BaseURL, page)
	return c.fetcher.FetchText(ctx, url)
}
