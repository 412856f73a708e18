// Package service implements hazard report submission and lookup.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roadguard/reporter-middleware/internal/metrics"
	apperrors "github.com/roadguard/reporter-middleware/pkg/app/errors"
	"github.com/roadguard/reporter-middleware/pkg/geo"
	"github.com/roadguard/reporter-middleware/pkg/report"
	"github.com/roadguard/reporter-middleware/pkg/reportstore"
)

// Service defines report operations exposed over HTTP.
type Service interface {
	Submit(ctx context.Context, reporterCommitment string, req *report.SubmitRequest) (*report.SubmitResponse, error)
	Get(ctx context.Context, id string) (*report.Report, error)
	List(ctx context.Context, opts ...reportstore.QueryOption) ([]*report.Report, error)
}

type service struct {
	store    reportstore.Store
	validate *validator.Validate
	logger   *zap.Logger
}

// NewService creates a report service backed by the given store.
func NewService(store reportstore.Store, logger *zap.Logger) Service {
	return &service{
		store:    store,
		validate: validator.New(),
		logger:   logger,
	}
}

// Submit validates the request, scales coordinates to fixed-point integers
// and records the report as pending for the anchor worker to pick up.
func (s *service) Submit(ctx context.Context, reporterCommitment string, req *report.SubmitRequest) (*report.SubmitResponse, error) {
	if reporterCommitment == "" {
		return nil, apperrors.UnAuthorizedError(nil, "reporter identity required")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid report")
	}

	r := &report.Report{
		ID:                 uuid.NewString(),
		ReporterCommitment: reporterCommitment,
		Hazard:             report.HazardType(req.Hazard),
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		ScaledLat:          geo.ScaleCoordinate(req.Latitude),
		ScaledLon:          geo.ScaleCoordinate(req.Longitude),
		Description:        req.Description,
		Status:             report.StatusPending,
	}

	if err := s.store.CreateReport(ctx, r); err != nil {
		return nil, apperrors.GeneralError(fmt.Errorf("failed to store report: %w", err))
	}

	metrics.ReportsSubmitted.WithLabelValues(string(r.Hazard)).Inc()
	s.logger.Info("Hazard report submitted",
		zap.String("id", r.ID),
		zap.String("hazard", string(r.Hazard)),
		zap.Int64("scaled_lat", r.ScaledLat),
		zap.Int64("scaled_lon", r.ScaledLon))

	return &report.SubmitResponse{
		ID:                 r.ID,
		Status:             string(r.Status),
		ReporterCommitment: r.ReporterCommitment,
		ScaledLat:          r.ScaledLat,
		ScaledLon:          r.ScaledLon,
	}, nil
}

// Get returns a single report by ID.
func (s *service) Get(ctx context.Context, id string) (*report.Report, error) {
	r, err := s.store.GetReport(ctx, id)
	if errors.Is(err, reportstore.ErrReportNotFound) {
		return nil, apperrors.ResourceNotFoundError(err, "report not found")
	}
	if err != nil {
		return nil, apperrors.GeneralError(err)
	}
	return r, nil
}

// List returns reports matching the given query options.
func (s *service) List(ctx context.Context, opts ...reportstore.QueryOption) ([]*report.Report, error) {
	reports, err := s.store.ListReports(ctx, opts...)
	if err != nil {
		return nil, apperrors.GeneralError(err)
	}
	return reports, nil
}
