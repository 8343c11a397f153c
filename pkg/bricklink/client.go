// Package bricklink fetches sold and stock price guides from the BrickLink
// store API using OAuth 1.0 request signing.
package bricklink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.bricklink.com/api/store/v1"

// ErrUnauthorized marks a credential rejection by the API. Callers treat it
// as fatal rather than as a missing price.
var ErrUnauthorized = errors.New("bricklink: unauthorized")

type Config struct {
	BaseURL     string
	Credentials Credentials
	// PairDelay separates the New and Used guide requests for one item.
	PairDelay time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PairDelay == 0 {
		cfg.PairDelay = 300 * time.Millisecond
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 20 * time.Second},
	}
}

// PriceResult carries the average sale prices for one minifig, in the
// guide's native currency rounded to cents. A nil field means the guide had
// no usable data for that condition.
type PriceResult struct {
	AvgNew  *float64
	AvgUsed *float64
}

type envelope struct {
	Meta struct {
		Code        int    `json:"code"`
		Message     string `json:"message"`
		Description string `json:"description"`
	} `json:"meta"`
	Data json.RawMessage `json:"data"`
}

type priceGuide struct {
	AvgPrice    string `json:"avg_price"`
	QtyAvgPrice string `json:"qty_avg_price"`
	UnitsSold   int    `json:"total_quantity"`
}

// PriceFor fetches the New and Used price guides for one minifig number.
// Sold listings are preferred; when neither condition has sold data the
// current stock guide is tried instead. Missing data yields nil fields, and
// only credential rejections surface as errors.
func (c *Client) PriceFor(ctx context.Context, id string) (PriceResult, error) {
	avgNew, err := c.guideAverage(ctx, id, "sold", "N")
	if err != nil {
		return PriceResult{}, err
	}
	select {
	case <-ctx.Done():
		return PriceResult{}, ctx.Err()
	case <-time.After(c.cfg.PairDelay):
	}
	avgUsed, err := c.guideAverage(ctx, id, "sold", "U")
	if err != nil {
		return PriceResult{}, err
	}

	if avgNew == nil && avgUsed == nil {
		zap.L().Debug("bricklink: no sold data, trying stock guide", zap.String("id", id))
		avgNew, err = c.guideAverage(ctx, id, "stock", "N")
		if err != nil {
			return PriceResult{}, err
		}
		select {
		case <-ctx.Done():
			return PriceResult{}, ctx.Err()
		case <-time.After(c.cfg.PairDelay):
		}
		avgUsed, err = c.guideAverage(ctx, id, "stock", "U")
		if err != nil {
			return PriceResult{}, err
		}
	}

	return PriceResult{AvgNew: avgNew, AvgUsed: avgUsed}, nil
}

// guideAverage returns the rounded average price for one guide, or nil when
// the guide exists but holds no positive price. Transport and API errors
// other than credential rejections are logged and treated as no data.
func (c *Client) guideAverage(ctx context.Context, id, guideType, condition string) (*float64, error) {
	guide, err := c.fetchGuide(ctx, id, guideType, condition)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		zap.L().Debug("bricklink: guide fetch failed",
			zap.String("id", id),
			zap.String("guide_type", guideType),
			zap.String("condition", condition),
			zap.Error(err))
		return nil, nil
	}
	return guideValue(guide, guideType), nil
}

func (c *Client) fetchGuide(ctx context.Context, id, guideType, condition string) (*priceGuide, error) {
	url := fmt.Sprintf("%s/items/MINIFIG/%s/price", c.cfg.BaseURL, id)
	query := map[string]string{
		"guide_type":    guideType,
		"new_or_used":   condition,
		"currency_code": "USD",
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "bricklink: build request")
	}
	q := req.URL.Query()
	for k, v := range query {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", authHeader(http.MethodGet, url, query, c.cfg.Credentials))
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "bricklink: request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, eris.Wrapf(ErrUnauthorized, "status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, eris.Wrap(err, "bricklink: read response")
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, eris.Wrapf(err, "bricklink: decode response, status %d", resp.StatusCode)
	}
	if env.Meta.Code == http.StatusUnauthorized || env.Meta.Code == http.StatusForbidden {
		return nil, eris.Wrapf(ErrUnauthorized, "api code %d: %s", env.Meta.Code, env.Meta.Description)
	}
	if env.Meta.Code != http.StatusOK {
		return nil, eris.Errorf("bricklink: api code %d: %s", env.Meta.Code, env.Meta.Message)
	}

	var guide priceGuide
	if err := json.Unmarshal(env.Data, &guide); err != nil {
		return nil, eris.Wrap(err, "bricklink: decode price guide")
	}
	return &guide, nil
}

// guideValue picks the price field for the guide type, rounded to cents.
// Sold guides prefer the quantity-weighted average with the plain average as
// backup; stock guides read the plain average only, since their quantity
// average reflects asking volume rather than sales.
func guideValue(g *priceGuide, guideType string) *float64 {
	candidates := []string{g.AvgPrice}
	if guideType == "sold" {
		candidates = []string{g.QtyAvgPrice, g.AvgPrice}
	}
	for _, raw := range candidates {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			continue
		}
		rounded := math.Round(v*100) / 100
		return &rounded
	}
	return nil
}
