package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gridpulse/internal/api/models"
	"gridpulse/internal/config"
	"gridpulse/internal/model"
	"gridpulse/internal/observability/metrics"
	"gridpulse/internal/reconstruct"
	"gridpulse/internal/settlement"
)

// maxBidsPerHour caps the batch at the API boundary; the engine itself does
// not enforce it.
const maxBidsPerHour = 10

// SettleHandler handles bid settlement requests.
type SettleHandler struct {
	cfg *config.Config
}

func NewSettleHandler(cfg *config.Config) *SettleHandler {
	return &SettleHandler{cfg: cfg}
}

// Settle handles POST /api/v1/settle.
func (h *SettleHandler) Settle(c *gin.Context) {
	var req models.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	bids, err := toBids(req.Bids)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_BIDS", err.Error())
		return
	}

	dayAhead, realTime := req.DayAheadPrices, req.RealTimePrices
	var meta *model.ReconstructionMetadata

	if len(dayAhead) == 0 || len(realTime) == 0 {
		result, ok := h.reconstructDay(c, &req)
		if !ok {
			return
		}
		dayAhead, realTime = result.DayAhead, result.RealTime
		meta = &result.Metadata
	}

	settled := settlement.Settle(bids, dayAhead, realTime)
	for _, t := range settled.Trades {
		outcome := "rejected"
		if t.Executed {
			outcome = "executed"
		}
		metrics.BidsSettled.WithLabelValues(outcome).Inc()
	}

	c.JSON(http.StatusOK, models.SettleResponse{Result: settled, Metadata: meta})
}

// toBids validates the per-hour cap and assigns IDs where missing.
func toBids(inputs []models.BidInput) ([]model.Bid, error) {
	perHour := map[int]int{}
	bids := make([]model.Bid, 0, len(inputs))
	for _, in := range inputs {
		perHour[in.Hour]++
		if perHour[in.Hour] > maxBidsPerHour {
			return nil, fmt.Errorf("more than %d bids for hour %d", maxBidsPerHour, in.Hour)
		}
		id := in.ID
		if id == "" {
			id = uuid.NewString()
		}
		bids = append(bids, model.Bid{
			ID:       id,
			Hour:     in.Hour,
			Side:     model.BidSide(in.Side),
			Price:    in.Price,
			Quantity: in.Quantity,
		})
	}
	return bids, nil
}

func (h *SettleHandler) reconstructDay(c *gin.Context, req *models.SettleRequest) (*reconstruct.Result, bool) {
	if req.Date == "" {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST",
			"either reconstructed prices or a date with raw feeds is required")
		return nil, false
	}
	date, err := parseDate(req.Date)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD")
		return nil, false
	}

	sourceTZ := req.SourceTimezone
	if sourceTZ == "" {
		sourceTZ = h.cfg.Market.SourceTimezone
	}
	targetTZ := req.Timezone
	if targetTZ == "" {
		targetTZ = h.cfg.Market.TargetTimezone
	}

	rawDA, rawRT := req.RawDayAhead, req.RawRealTime
	if req.Fetch != nil {
		feeds := fetchFeeds(c, h.cfg, req.Fetch, date)
		if feeds == nil {
			return nil, false
		}
		rawDA, rawRT = feeds.DayAhead, feeds.RealTime
	}

	result, err := reconstruct.Reconstruct(rawDA, rawRT, sourceTZ, targetTZ, date)
	if err != nil {
		if errors.Is(err, reconstruct.ErrDataUnavailable) {
			respondError(c, http.StatusNotFound, "DATA_UNAVAILABLE", "no price data for this date")
			return nil, false
		}
		respondError(c, http.StatusBadRequest, "RECONSTRUCTION_ERROR", err.Error())
		return nil, false
	}
	return result, true
}
