package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gridpulse/internal/api/models"
	"gridpulse/internal/config"
	"gridpulse/internal/data"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{Code: code, Message: message},
	})
}

// respondAPIError maps a provider error to an HTTP response. Returns true
// if err was a provider error and a response was written.
func respondAPIError(c *gin.Context, err error) bool {
	var apiErr *data.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	status := http.StatusBadRequest
	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		status = http.StatusUnauthorized
	case http.StatusTooManyRequests:
		status = http.StatusTooManyRequests
	}
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: map[string]any{
				"status_code": apiErr.StatusCode,
				"retry_after": apiErr.RetryAfter,
			},
		},
	})
	return true
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// fetchFeeds pulls both raw feeds for one day from the provider. On failure
// it writes the error response and returns nil.
func fetchFeeds(c *gin.Context, cfg *config.Config, f *models.FetchConfig, date time.Time) *data.DayFeeds {
	daDataset := f.DayAheadDataset
	if daDataset == "" {
		daDataset = cfg.Market.DayAheadDataset
	}
	rtDataset := f.RealTimeDataset
	if rtDataset == "" {
		rtDataset = cfg.Market.RealTimeDataset
	}

	client := data.NewClient(f.APIKey, "")
	feeds, err := client.FetchDay(c.Request.Context(), daDataset, rtDataset, f.LocationID, date)
	if err != nil {
		if !respondAPIError(c, err) {
			respondError(c, http.StatusBadRequest, "DATA_FETCH_ERROR", err.Error())
		}
		return nil
	}
	return feeds
}
