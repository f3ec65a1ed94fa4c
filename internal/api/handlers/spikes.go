package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gridpulse/internal/api/models"
	"gridpulse/internal/config"
	"gridpulse/internal/data"
	"gridpulse/internal/model"
	"gridpulse/internal/observability/metrics"
	"gridpulse/internal/reconstruct"
	"gridpulse/internal/spikes"
)

// SpikesHandler handles spike detection requests.
type SpikesHandler struct {
	cfg       *config.Config
	locations *data.LocationList // optional registry, orders series for the distance proxy
}

func NewSpikesHandler(cfg *config.Config, locations *data.LocationList) *SpikesHandler {
	return &SpikesHandler{cfg: cfg, locations: locations}
}

// Detect handles POST /api/v1/spikes.
func (h *SpikesHandler) Detect(c *gin.Context) {
	var req models.SpikesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	series := req.Series
	if len(series) == 0 && len(req.Records) > 0 {
		sourceTZ := req.SourceTimezone
		if sourceTZ == "" {
			sourceTZ = h.cfg.Market.SourceTimezone
		}
		var err error
		series, err = reconstruct.ParseSeries(req.Records, sourceTZ, "UNKNOWN")
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
	}
	if h.locations != nil {
		h.locations.OrderSeries(series)
	}

	// Request thresholds win; otherwise the configured ones apply. Zero
	// fields in either take the documented defaults inside Detect.
	thresholds := h.cfg.Detector
	if req.Thresholds != nil {
		thresholds = *req.Thresholds
	}

	detected, err := spikes.Detect(series, thresholds)
	if err != nil {
		if errors.Is(err, spikes.ErrNoSeries) {
			respondError(c, http.StatusBadRequest, "INVALID_INPUT", "at least one location series is required")
			return
		}
		respondError(c, http.StatusInternalServerError, "DETECTION_ERROR", err.Error())
		return
	}
	metrics.SpikesDetected.Add(float64(len(detected)))

	events := []model.GridEvent{}
	if len(detected) > 0 {
		eventDate := detected[0].Timestamp.UTC()
		if req.Date != "" {
			if d, err := parseDate(req.Date); err == nil {
				eventDate = d
			}
		}
		events = spikes.SynthesizeEvents(detected, eventDate)
	}

	c.JSON(http.StatusOK, models.SpikesResponse{Spikes: detected, Events: events})
}
