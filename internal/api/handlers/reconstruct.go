package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gridpulse/internal/api/models"
	"gridpulse/internal/config"
	"gridpulse/internal/observability/metrics"
	"gridpulse/internal/reconstruct"
)

// ReconstructHandler handles price-day reconstruction requests.
type ReconstructHandler struct {
	cfg *config.Config
}

func NewReconstructHandler(cfg *config.Config) *ReconstructHandler {
	return &ReconstructHandler{cfg: cfg}
}

// Reconstruct handles POST /api/v1/reconstruct.
func (h *ReconstructHandler) Reconstruct(c *gin.Context) {
	var req models.ReconstructRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD")
		return
	}

	sourceTZ := req.SourceTimezone
	if sourceTZ == "" {
		sourceTZ = h.cfg.Market.SourceTimezone
	}
	targetTZ := req.Timezone
	if targetTZ == "" {
		targetTZ = h.cfg.Market.TargetTimezone
	}

	rawDA, rawRT := req.DayAhead, req.RealTime
	if req.Fetch != nil {
		feeds := fetchFeeds(c, h.cfg, req.Fetch, date)
		if feeds == nil {
			return
		}
		rawDA, rawRT = feeds.DayAhead, feeds.RealTime
	}

	result, err := reconstruct.Reconstruct(rawDA, rawRT, sourceTZ, targetTZ, date)
	if err != nil {
		if errors.Is(err, reconstruct.ErrDataUnavailable) {
			respondError(c, http.StatusNotFound, "DATA_UNAVAILABLE", "no price data for this date")
			return
		}
		respondError(c, http.StatusBadRequest, "RECONSTRUCTION_ERROR", err.Error())
		return
	}

	skipped := len(rawDA) + len(rawRT) - result.Metadata.TotalRecords.DayAhead - result.Metadata.TotalRecords.RealTime
	if skipped > 0 {
		metrics.RecordsSkipped.Add(float64(skipped))
	}

	c.JSON(http.StatusOK, result)
}
