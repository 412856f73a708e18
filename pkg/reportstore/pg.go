package reportstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/roadguard/reporter-middleware/pkg/report"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the report store.
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) CreateReport(ctx context.Context, r *report.Report) error {
	dao := toReportDao(r)

	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	return nil
}

func (s *pgStore) GetReport(ctx context.Context, id string) (*report.Report, error) {
	dao := new(ReportDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return toReport(dao), nil
}

func (s *pgStore) ListReports(ctx context.Context, opts ...QueryOption) ([]*report.Report, error) {
	options := &QueryOptions{}
	for _, opt := range opts {
		opt(options)
	}

	var daos []ReportDao
	query := s.db.NewSelect().Model(&daos).Order("created_at ASC")

	if options.Status != nil {
		query = query.Where("status = ?", string(*options.Status))
	}
	if options.ReporterCommitment != nil {
		query = query.Where("reporter_commitment = ?", *options.ReporterCommitment)
	}
	if options.Limit > 0 {
		query = query.Limit(options.Limit)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := make([]*report.Report, len(daos))
	for i := range daos {
		reports[i] = toReport(&daos[i])
	}
	return reports, nil
}

func (s *pgStore) MarkReportAnchored(ctx context.Context, id, txHash string) error {
	now := time.Now()
	res, err := s.db.NewUpdate().
		Model((*ReportDao)(nil)).
		Set("status = ?", string(report.StatusAnchored)).
		Set("anchor_tx_hash = ?", txHash).
		Set("anchored_at = ?", now).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark report anchored: %w", err)
	}
	return requireRow(res)
}

func (s *pgStore) RecordAnchorFailure(ctx context.Context, id, errMsg string) error {
	res, err := s.db.NewUpdate().
		Model((*ReportDao)(nil)).
		Set("retry_count = retry_count + 1").
		Set("error_message = ?", errMsg).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to record anchor failure: %w", err)
	}
	return requireRow(res)
}

func (s *pgStore) MarkReportFailed(ctx context.Context, id, errMsg string) error {
	res, err := s.db.NewUpdate().
		Model((*ReportDao)(nil)).
		Set("status = ?", string(report.StatusFailed)).
		Set("error_message = ?", errMsg).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark report failed: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrReportNotFound
	}
	return nil
}
