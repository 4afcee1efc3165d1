package server

import "github.com/vortex-fintech/go-mask/preset"

// PatternSpec selects how values are formatted. At most one of Mask, Masks
// and Preset may be set; none means values are returned unchanged.
type PatternSpec struct {
	Mask      string   `json:"mask,omitempty" validate:"omitempty,mask"`
	Masks     []string `json:"masks,omitempty" validate:"omitempty,max=16,dive,mask"`
	Preset    string   `json:"preset,omitempty" validate:"omitempty,max=64"`
	Masked    *bool    `json:"masked,omitempty"`
	Normalize bool     `json:"normalize,omitempty"`
}

// FormatRequest is the body of POST /v1/format.
type FormatRequest struct {
	Value string `json:"value"`
	PatternSpec
}

// BatchRequest is the body of POST /v1/format/batch.
type BatchRequest struct {
	Values []string `json:"values" validate:"required"`
	PatternSpec
}

type FormatResponse struct {
	Result string `json:"result"`
}

type BatchResponse struct {
	Results []string `json:"results"`
}

type PresetsResponse struct {
	Presets []preset.Preset `json:"presets"`
}
