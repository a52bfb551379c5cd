package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"CoinSentry/internal/domain/models"
	drepo "CoinSentry/internal/domain/repository"
	svccache "CoinSentry/internal/service/cache"
	"CoinSentry/internal/service/ratelimit"
	pkghttp "CoinSentry/pkg/http"
	applogger "CoinSentry/pkg/logger"
)

const (
	defaultBaseURL = "https://api.coingecko.com/api/v3"

	// The OHLC endpoint carries no volume column, so bars get a
	// notional volume proportional to the close.
	volumeProxyMultiplier = 1e6

	rateKey          = "coingecko"
	rateBurst        = 10
	rateRefillPerSec = 0.5

	// Raw payload cache TTL; upstream buckets change at most every
	// half hour, one minute keeps repeated scans off the API.
	rawCacheTTL = time.Minute
)

// Client implements BarProvider over the CoinGecko OHLC REST endpoint.
type Client struct {
	baseURL string
	apiKey  string
	coinIDs map[string]string // symbol -> coin id, e.g. BTCUSDT -> bitcoin
	http    *pkghttp.Client
	limiter *ratelimit.Limiter
	raw     svccache.BytesCache
	l       *applogger.Logger
}

// Option configures the Client.
type Option func(*Client)

func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }
func WithAPIKey(k string) Option  { return func(c *Client) { c.apiKey = k } }
func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.l = l }
}

// WithRawCache caches raw OHLC payloads between calls.
func WithRawCache(bc svccache.BytesCache) Option {
	return func(c *Client) { c.raw = bc }
}

// New creates a CoinGecko-backed bar provider. coinIDs maps exchange
// symbols to CoinGecko coin identifiers.
func New(coinIDs map[string]string, httpClient *pkghttp.Client, limiter *ratelimit.Limiter, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		coinIDs: coinIDs,
		http:    httpClient,
		limiter: limiter,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) GetBars(ctx context.Context, symbol string, from, to time.Time, tf drepo.Timeframe) ([]models.Bar, error) {
	days := int(to.Sub(from).Hours()/24) + 1
	bars, err := c.fetchOHLC(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	out := make([]models.Bar, 0, len(bars))
	for _, b := range bars {
		if b.Bucket.Before(from) || b.Bucket.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (c *Client) GetLatestNBars(ctx context.Context, symbol string, n int, tf drepo.Timeframe) ([]models.Bar, error) {
	// The endpoint returns ~30-minute buckets for day ranges; one day
	// covers 48 bars. Over-fetch rather than paginate.
	days := n/48 + 1
	bars, err := c.fetchOHLC(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	if len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	return bars, nil
}

func (c *Client) fetchOHLC(ctx context.Context, symbol string, days int) ([]models.Bar, error) {
	if !c.limiter.Allow(rateKey, rateBurst, rateRefillPerSec) {
		return nil, fmt.Errorf("coingecko rate limited: %w", models.ErrDataUnavailable)
	}
	id, ok := c.coinIDs[strings.ToUpper(symbol)]
	if !ok {
		return nil, fmt.Errorf("coingecko: unmapped symbol %q: %w", symbol, models.ErrDataUnavailable)
	}
	if days < 1 {
		days = 1
	}

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["x-cg-demo-api-key"] = c.apiKey
	}

	start := time.Now()
	cacheKey := fmt.Sprintf("ohlc:%s:%d", id, days)
	var body []byte
	if c.raw != nil {
		if b, ok, err := c.raw.GetBytes(cacheKey); err == nil && ok {
			body = b
		}
	}
	if body == nil {
		err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
			Method: pkghttp.MethodGet,
			URL:    fmt.Sprintf("%s/coins/%s/ohlc", c.baseURL, id),
			QueryParams: map[string][]string{
				"vs_currency": {"usd"},
				"days":        {strconv.Itoa(days)},
			},
			Headers: headers,
		}, &body)
		if err != nil {
			if c.l != nil {
				c.l.Error("coingecko ohlc fetch error",
					applogger.String("symbol", symbol),
					applogger.String("coin_id", id),
					applogger.Int("days", days),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("coingecko ohlc: %w", models.ErrDataUnavailable)
		}
		if c.raw != nil {
			_ = c.raw.SetBytes(cacheKey, body, rawCacheTTL)
		}
	}

	var raw [][]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("coingecko ohlc decode: %w", models.ErrDataUnavailable)
	}

	bars := make([]models.Bar, 0, len(raw))
	for _, row := range raw {
		if len(row) < 5 {
			continue
		}
		closePx := row[4]
		bars = append(bars, models.Bar{
			Bucket: time.UnixMilli(int64(row[0])),
			Symbol: strings.ToUpper(symbol),
			Open:   row[1],
			High:   row[2],
			Low:    row[3],
			Close:  closePx,
			Volume: closePx * volumeProxyMultiplier,
		})
	}
	if c.l != nil {
		c.l.Info("coingecko ohlc ok",
			applogger.String("symbol", symbol),
			applogger.String("coin_id", id),
			applogger.Int("days", days),
			applogger.Int("rows", len(bars)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return bars, nil
}

var _ drepo.BarProvider = (*Client)(nil)
