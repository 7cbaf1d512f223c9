package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/foodmap/food-radar/internal/backoff"
	"github.com/foodmap/food-radar/internal/models"
)

const (
	// DefaultRadius replaces a search radius outside [MinRadius, MaxRadius].
	DefaultRadius = 1000
	MinRadius     = 50
	MaxRadius     = 50_000

	// DefaultLimit replaces a result limit outside [1, MaxLimit].
	DefaultLimit = 10
	MaxLimit     = 50
)

// Config carries the connection parameters for the maps provider.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	RetryBase  time.Duration
}

// Client talks to the geodata provider: geocoding, place search, place detail
// and static map URLs. All network calls share one retry policy that backs
// off on transport failures and stops immediately on semantic rejections.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	retry   backoff.Policy
	log     *slog.Logger
}

// New builds a Client. A nil logger discards output.
func New(cfg Config, log *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = time.Second
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		retry: backoff.Policy{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   cfg.RetryBase,
			Retryable:   Retryable,
		},
		log: log,
	}
}

// envelope is the provider's common response wrapper. A non-zero status is a
// semantic rejection of the request.
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
	Results json.RawMessage `json:"results"`
}

// Geocode resolves a free-text address to a coordinate.
func (c *Client) Geocode(ctx context.Context, address string) (models.Coordinate, error) {
	c.log.Info("geocoding address", slog.String("address", address))

	params := url.Values{}
	params.Set("address", address)

	var loc struct {
		Location models.Coordinate `json:"location"`
	}
	err := c.retry.Do(ctx, func() error {
		env, err := c.getJSON(ctx, "/geocoding/v3/", params)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(env.Result, &loc); err != nil {
			return &TransportError{Op: "/geocoding/v3/", Err: fmt.Errorf("decode result: %w", err)}
		}
		return nil
	})
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("geocode %q: %w", address, err)
	}

	c.log.Info("geocoded address", slog.String("address", address))
	return loc.Location, nil
}

// SearchParams narrows a place search. Optional filters are sent upstream
// only when set.
type SearchParams struct {
	Query        string
	Center       models.Coordinate
	Radius       int
	Limit        int
	Tag          string
	PriceSection string
	SortName     string
	SortRule     *int
	Groupon      bool
	Discount     bool
}

// Search returns raw candidate venues around a coordinate. Out-of-range
// radius and limit values are corrected to defaults with a warning rather
// than failing the call.
func (c *Client) Search(ctx context.Context, p SearchParams) ([]models.RawDetail, error) {
	if p.Radius < MinRadius || p.Radius > MaxRadius {
		c.log.Warn("search radius out of range, using default",
			slog.Int("radius", p.Radius),
			slog.Int("default", DefaultRadius),
		)
		p.Radius = DefaultRadius
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		c.log.Warn("search limit out of range, using default",
			slog.Int("limit", p.Limit),
			slog.Int("default", DefaultLimit),
		)
		p.Limit = DefaultLimit
	}

	c.log.Info("searching places",
		slog.String("query", p.Query),
		slog.Float64("lat", p.Center.Lat),
		slog.Float64("lng", p.Center.Lng),
		slog.Int("radius", p.Radius),
	)

	params := url.Values{}
	params.Set("query", p.Query)
	params.Set("location", fmt.Sprintf("%f,%f", p.Center.Lat, p.Center.Lng))
	params.Set("radius", strconv.Itoa(p.Radius))
	params.Set("scope", "2")
	params.Set("filter", "industry_type:cater")
	if p.Tag != "" {
		params.Set("tag", p.Tag)
	}
	if p.PriceSection != "" {
		params.Set("price_section", p.PriceSection)
	}
	if p.SortName != "" {
		params.Set("sort_name", p.SortName)
	}
	if p.SortRule != nil {
		params.Set("sort_rule", strconv.Itoa(*p.SortRule))
	}
	if p.Groupon {
		params.Set("groupon", "1")
	}
	if p.Discount {
		params.Set("discount", "1")
	}

	var results []models.RawDetail
	err := c.retry.Do(ctx, func() error {
		env, err := c.getJSON(ctx, "/place/v2/search", params)
		if err != nil {
			return err
		}
		results = nil
		if len(env.Results) > 0 {
			if err := json.Unmarshal(env.Results, &results); err != nil {
				return &TransportError{Op: "/place/v2/search", Err: fmt.Errorf("decode results: %w", err)}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", p.Query, err)
	}

	if len(results) > p.Limit {
		results = results[:p.Limit]
	}
	c.log.Info("search completed", slog.Int("results", len(results)))
	return results, nil
}

// Detail fetches the full record for one venue id.
func (c *Client) Detail(ctx context.Context, uid string) (models.RawDetail, error) {
	params := url.Values{}
	params.Set("uid", uid)
	params.Set("scope", "2")

	var result models.RawDetail
	err := c.retry.Do(ctx, func() error {
		env, err := c.getJSON(ctx, "/place/v2/detail", params)
		if err != nil {
			return err
		}
		result = nil
		if len(env.Result) > 0 {
			if err := json.Unmarshal(env.Result, &result); err != nil {
				return &TransportError{Op: "/place/v2/detail", Err: fmt.Errorf("decode result: %w", err)}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("detail %q: %w", uid, err)
	}

	return result, nil
}

// StaticMapURL builds a static map image URL centered on center with one
// marker per point. No network call is made.
func (c *Client) StaticMapURL(center models.Coordinate, width, height, zoom int, markers []models.Coordinate) string {
	points := make([]string, 0, len(markers))
	for _, m := range markers {
		points = append(points, fmt.Sprintf("%f,%f", m.Lng, m.Lat))
	}

	params := url.Values{}
	params.Set("ak", c.apiKey)
	params.Set("center", fmt.Sprintf("%f,%f", center.Lng, center.Lat))
	params.Set("width", strconv.Itoa(width))
	params.Set("height", strconv.Itoa(height))
	params.Set("zoom", strconv.Itoa(zoom))
	params.Set("markers", strings.Join(points, "|"))
	params.Set("markerStyles", "l,A")

	return c.baseURL + "/staticimage/v2?" + params.Encode()
}

// getJSON performs one GET against the provider and decodes the envelope.
// Everything that keeps the call from completing is transport-class; a
// non-zero provider status is a semantic rejection.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values) (*envelope, error) {
	q := url.Values{}
	for k, vs := range params {
		q[k] = vs
	}
	q.Set("ak", c.apiKey)
	q.Set("output", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, &TransportError{Op: path, Err: err}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &TransportError{Op: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Op: path, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &TransportError{Op: path, Err: fmt.Errorf("decode response: %w", err)}
	}

	if env.Status != 0 {
		return nil, &UpstreamError{Status: env.Status, Message: env.Message}
	}

	return &env, nil
}
