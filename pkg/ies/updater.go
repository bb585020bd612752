package ies

import (
	"gonum.org/v1/gonum/floats"
)

// UpdateRequest describes an adjustment applied to an existing record
type UpdateRequest struct {
	// IntensityScale multiplies every candela value. Sign and range are
	// not checked here; that is the caller's policy
	IntensityScale float64 `json:"intensityScale"`
}

// DefaultUpdateRequest leaves the record unchanged
func DefaultUpdateRequest() UpdateRequest {
	return UpdateRequest{IntensityScale: 1}
}

// Update applies req to a copy of rec and returns the copy. rec itself is
// never modified, so other holders of it are unaffected
func Update(rec *Record, req UpdateRequest) (*Record, error) {
	if err := rec.validate(); err != nil {
		return nil, newError(InvalidDataInIESFile, "update", "", err)
	}

	out := rec.Clone()
	if req.IntensityScale != 1 {
		floats.Scale(req.IntensityScale, out.CandelaValues)
	}
	return out, nil
}
