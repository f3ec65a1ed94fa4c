package data

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"gridpulse/internal/model"
)

// Client is a thin wrapper around the Grid Status API. It fetches raw
// interval rows without interpreting them; field-name resolution happens
// later in the reconstruction parser. Requests are rate limited client-side
// to stay under the provider's per-key quota.
type Client struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client

	limiter *rate.Limiter
}

// NewClient creates a Grid Status API client. If baseURL is empty, defaults
// to "https://api.gridstatus.io".
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.gridstatus.io"
	}
	return &Client{
		APIKey:  apiKey,
		BaseURL: baseURL,
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
		// 1 rps with burst 2, conservative for the free tier.
		limiter: rate.NewLimiter(rate.Limit(1), 2),
	}
}

// QueryParams defines parameters for fetching one dataset/location/day.
type QueryParams struct {
	DatasetID  string    // e.g. "caiso_lmp_day_ahead_hourly"
	LocationID string    // e.g. "TH_SP15_GEN-APND"
	Date       time.Time // the trading day
	Timezone   string    // query timezone (default: "market")
}

// APIError represents an error from the Grid Status API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter string // for rate limit errors
}

func (e *APIError) Error() string {
	return e.Message
}

type feedResponse struct {
	StatusCode int                    `json:"status_code"`
	Data       []model.RawPriceRecord `json:"data"`
}

// QueryDay fetches all raw interval rows for one dataset, location and
// trading day.
func (c *Client) QueryDay(ctx context.Context, params QueryParams) ([]model.RawPriceRecord, error) {
	if err := c.validate(params); err != nil {
		return nil, err
	}

	if cache := GetCache(); cache != nil {
		key := cacheKey(params)
		if cached, found := cache.Get(key); found {
			log.Debug().
				Str("dataset", params.DatasetID).
				Str("location", params.LocationID).
				Int("records", len(cached)).
				Msg("feed cache hit")
			return cached, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	u, err := c.buildURL(params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	log.Info().
		Str("dataset", params.DatasetID).
		Str("location", params.LocationID).
		Str("date", params.Date.Format("2006-01-02")).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("grid status query")

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var result feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if cache := GetCache(); cache != nil {
		cache.Set(cacheKey(params), result.Data)
	}
	return result.Data, nil
}

// DayFeeds holds the two raw feeds needed to reconstruct one trading day.
type DayFeeds struct {
	DayAhead []model.RawPriceRecord
	RealTime []model.RawPriceRecord
}

// FetchDay issues the day-ahead and real-time queries concurrently and
// joins them before handing the feeds to reconstruction. This is the only
// concurrency in the pipeline; everything downstream is a synchronous
// computation.
func (c *Client) FetchDay(ctx context.Context, daDataset, rtDataset, locationID string, date time.Time) (*DayFeeds, error) {
	var (
		wg    sync.WaitGroup
		feeds DayFeeds
		daErr error
		rtErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		feeds.DayAhead, daErr = c.QueryDay(ctx, QueryParams{
			DatasetID: daDataset, LocationID: locationID, Date: date,
		})
	}()
	go func() {
		defer wg.Done()
		feeds.RealTime, rtErr = c.QueryDay(ctx, QueryParams{
			DatasetID: rtDataset, LocationID: locationID, Date: date,
		})
	}()
	wg.Wait()

	if daErr != nil {
		return nil, fmt.Errorf("day-ahead fetch: %w", daErr)
	}
	if rtErr != nil {
		return nil, fmt.Errorf("real-time fetch: %w", rtErr)
	}
	return &feeds, nil
}

func (c *Client) validate(params QueryParams) error {
	if c.APIKey == "" {
		return &APIError{Code: "MISSING_API_KEY", Message: "API key is required"}
	}
	if len(c.APIKey) < 10 {
		return &APIError{Code: "INVALID_API_KEY_FORMAT", Message: "API key appears to be invalid (too short)"}
	}
	if params.DatasetID == "" {
		return fmt.Errorf("dataset_id is required")
	}
	if params.LocationID == "" {
		return fmt.Errorf("location_id is required")
	}
	if params.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	return nil
}

func (c *Client) buildURL(params QueryParams) (string, error) {
	path := fmt.Sprintf("/v1/datasets/%s/query/location/%s", params.DatasetID, params.LocationID)
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	q := u.Query()
	q.Set("start_time", params.Date.Format("2006-01-02"))
	q.Set("end_time", params.Date.AddDate(0, 0, 1).Format("2006-01-02"))
	if params.Timezone != "" {
		q.Set("timezone", params.Timezone)
	} else {
		q.Set("timezone", "market")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func checkStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       "UNAUTHORIZED",
			Message:    "Unauthorized: Invalid API key",
		}
	case http.StatusForbidden:
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       "INVALID_API_KEY",
			Message:    "Invalid API key or insufficient permissions",
		}
	case http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    fmt.Sprintf("Rate limit exceeded. Retry after: %s", retryAfter),
			RetryAfter: retryAfter,
		}
	default:
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("API returned status %d: %s", resp.StatusCode, resp.Status),
		}
	}
}
