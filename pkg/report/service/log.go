package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/roadguard/reporter-middleware/pkg/report"
	"github.com/roadguard/reporter-middleware/pkg/reportstore"
)

const serviceName = "ReportService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the report Service.
// It logs method entry/exit, duration and errors.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) Submit(ctx context.Context, reporterCommitment string, req *report.SubmitRequest) (resp *report.SubmitResponse, err error) {
	start := time.Now()
	ls.logger.Debug("Submit called",
		zap.String("service", serviceName),
		zap.String("hazard", req.Hazard))
	defer func() {
		fields := []zap.Field{
			zap.String("service", serviceName),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			ls.logger.Warn("Submit failed", append(fields, zap.Error(err))...)
			return
		}
		ls.logger.Debug("Submit completed", append(fields, zap.String("id", resp.ID))...)
	}()
	return ls.svc.Submit(ctx, reporterCommitment, req)
}

func (ls *logService) Get(ctx context.Context, id string) (resp *report.Report, err error) {
	start := time.Now()
	defer func() {
		fields := []zap.Field{
			zap.String("service", serviceName),
			zap.String("id", id),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			ls.logger.Debug("Get failed", append(fields, zap.Error(err))...)
			return
		}
		ls.logger.Debug("Get completed", fields...)
	}()
	return ls.svc.Get(ctx, id)
}

func (ls *logService) List(ctx context.Context, opts ...reportstore.QueryOption) (resp []*report.Report, err error) {
	start := time.Now()
	defer func() {
		fields := []zap.Field{
			zap.String("service", serviceName),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			ls.logger.Debug("List failed", append(fields, zap.Error(err))...)
			return
		}
		ls.logger.Debug("List completed", append(fields, zap.Int("count", len(resp)))...)
	}()
	return ls.svc.List(ctx, opts...)
}
