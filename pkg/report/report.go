// Package report holds the domain model for hazard reports.
package report

import "time"

// HazardType enumerates the hazard categories reporters can submit.
type HazardType string

const (
	HazardPothole  HazardType = "pothole"
	HazardDebris   HazardType = "debris"
	HazardFlooding HazardType = "flooding"
	HazardAccident HazardType = "accident"
	HazardIce      HazardType = "ice"
	HazardOther    HazardType = "other"
)

// Code returns the numeric hazard code carried in on-chain payloads.
func (h HazardType) Code() uint8 {
	switch h {
	case HazardPothole:
		return 1
	case HazardDebris:
		return 2
	case HazardFlooding:
		return 3
	case HazardAccident:
		return 4
	case HazardIce:
		return 5
	default:
		return 0
	}
}

// Status represents the anchoring state of a report.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAnchored Status = "anchored"
	StatusFailed   Status = "failed"
)

// Report is a road hazard report attributed to a reporter commitment. The
// scaled coordinates are the fixed-point values used on-chain; the float
// values are kept for display.
type Report struct {
	ID                 string     `json:"id"`
	ReporterCommitment string     `json:"reporter_commitment"`
	Hazard             HazardType `json:"hazard_type"`
	Latitude           float64    `json:"latitude"`
	Longitude          float64    `json:"longitude"`
	ScaledLat          int64      `json:"scaled_lat"`
	ScaledLon          int64      `json:"scaled_lon"`
	Description        string     `json:"description,omitempty"`
	Status             Status     `json:"status"`
	AnchorTxHash       string     `json:"anchor_tx_hash,omitempty"`
	ErrorMessage       string     `json:"error_message,omitempty"`
	RetryCount         int        `json:"retry_count"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	AnchoredAt         *time.Time `json:"anchored_at,omitempty"`
}

// SubmitRequest is the payload for submitting a hazard report.
type SubmitRequest struct {
	Hazard      string  `json:"hazard_type" validate:"required,oneof=pothole debris flooding accident ice other"`
	Latitude    float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude   float64 `json:"longitude" validate:"min=-180,max=180"`
	Description string  `json:"description" validate:"max=500"`
}

// SubmitResponse is returned for an accepted report.
type SubmitResponse struct {
	ID                 string `json:"id"`
	Status             string `json:"status"`
	ReporterCommitment string `json:"reporter_commitment"`
	ScaledLat          int64  `json:"scaled_lat"`
	ScaledLon          int64  `json:"scaled_lon"`
}
