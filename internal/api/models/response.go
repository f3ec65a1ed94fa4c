package models

import (
	"gridpulse/internal/model"
	"gridpulse/internal/settlement"
)

// SpikesResponse carries detected spikes and the events synthesized from
// them.
type SpikesResponse struct {
	Spikes []model.Spike     `json:"spikes"`
	Events []model.GridEvent `json:"events"`
}

// SettleResponse is a settlement result, optionally with the reconstruction
// metadata when the price day was built from raw feeds.
type SettleResponse struct {
	settlement.Result
	Metadata *model.ReconstructionMetadata `json:"metadata,omitempty"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
