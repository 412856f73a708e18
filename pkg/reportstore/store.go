// Package reportstore persists hazard reports and tracks their anchoring state.
package reportstore

import (
	"context"
	"errors"

	"github.com/roadguard/reporter-middleware/pkg/report"
)

// ErrReportNotFound is returned when a report lookup finds no matching record.
var ErrReportNotFound = errors.New("report not found")

// Store defines the interface for hazard report persistence.
type Store interface {
	CreateReport(ctx context.Context, r *report.Report) error
	GetReport(ctx context.Context, id string) (*report.Report, error)
	ListReports(ctx context.Context, opts ...QueryOption) ([]*report.Report, error)
	// MarkReportAnchored records a successful anchor transaction.
	MarkReportAnchored(ctx context.Context, id, txHash string) error
	// RecordAnchorFailure increments the retry counter, keeping the report pending.
	RecordAnchorFailure(ctx context.Context, id, errMsg string) error
	// MarkReportFailed moves the report to the terminal failed state.
	MarkReportFailed(ctx context.Context, id, errMsg string) error
}

// QueryOptions defines options for querying reports.
type QueryOptions struct {
	Status             *report.Status
	ReporterCommitment *string
	Limit              int
}

// QueryOption is a functional option for querying reports.
type QueryOption func(*QueryOptions)

// WithStatus filters reports by anchoring status.
func WithStatus(status report.Status) QueryOption {
	return func(opts *QueryOptions) {
		opts.Status = &status
	}
}

// WithReporterCommitment filters reports by reporter commitment.
func WithReporterCommitment(commitment string) QueryOption {
	return func(opts *QueryOptions) {
		opts.ReporterCommitment = &commitment
	}
}

// WithLimit caps the number of returned reports.
func WithLimit(limit int) QueryOption {
	return func(opts *QueryOptions) {
		opts.Limit = limit
	}
}
