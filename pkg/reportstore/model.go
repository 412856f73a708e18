package reportstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/roadguard/reporter-middleware/pkg/report"
)

// ReportDao is a data access object that maps directly to the 'reports' table in PostgreSQL.
type ReportDao struct {
	bun.BaseModel      `bun:"table:reports,alias:r"`
	ID                 string     `bun:"id,pk,type:varchar(36)"`
	ReporterCommitment string     `bun:"reporter_commitment,notnull,type:varchar(66)"`
	Hazard             string     `bun:"hazard,notnull,type:varchar(32)"`
	Latitude           float64    `bun:"latitude,notnull"`
	Longitude          float64    `bun:"longitude,notnull"`
	ScaledLat          int64      `bun:"scaled_lat,notnull"`
	ScaledLon          int64      `bun:"scaled_lon,notnull"`
	Description        *string    `bun:"description,type:varchar(500)"`
	Status             string     `bun:"status,notnull,type:varchar(16)"`
	AnchorTxHash       *string    `bun:"anchor_tx_hash,type:varchar(66)"`
	ErrorMessage       *string    `bun:"error_message,type:text"`
	RetryCount         int        `bun:"retry_count,notnull,default:0"`
	CreatedAt          time.Time  `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt          time.Time  `bun:"updated_at,nullzero,default:current_timestamp"`
	AnchoredAt         *time.Time `bun:"anchored_at"`
}

// toReportDao converts a report.Report to ReportDao.
func toReportDao(r *report.Report) *ReportDao {
	dao := &ReportDao{
		ID:                 r.ID,
		ReporterCommitment: r.ReporterCommitment,
		Hazard:             string(r.Hazard),
		Latitude:           r.Latitude,
		Longitude:          r.Longitude,
		ScaledLat:          r.ScaledLat,
		ScaledLon:          r.ScaledLon,
		Status:             string(r.Status),
		RetryCount:         r.RetryCount,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}

	if r.Description != "" {
		dao.Description = &r.Description
	}
	if r.AnchorTxHash != "" {
		dao.AnchorTxHash = &r.AnchorTxHash
	}
	if r.ErrorMessage != "" {
		dao.ErrorMessage = &r.ErrorMessage
	}
	if r.AnchoredAt != nil {
		dao.AnchoredAt = r.AnchoredAt
	}

	return dao
}

// toReport converts a ReportDao to report.Report.
func toReport(dao *ReportDao) *report.Report {
	r := &report.Report{
		ID:                 dao.ID,
		ReporterCommitment: dao.ReporterCommitment,
		Hazard:             report.HazardType(dao.Hazard),
		Latitude:           dao.Latitude,
		Longitude:          dao.Longitude,
		ScaledLat:          dao.ScaledLat,
		ScaledLon:          dao.ScaledLon,
		Status:             report.Status(dao.Status),
		RetryCount:         dao.RetryCount,
		CreatedAt:          dao.CreatedAt,
		UpdatedAt:          dao.UpdatedAt,
	}

	if dao.Description != nil {
		r.Description = *dao.Description
	}
	if dao.AnchorTxHash != nil {
		r.AnchorTxHash = *dao.AnchorTxHash
	}
	if dao.ErrorMessage != nil {
		r.ErrorMessage = *dao.ErrorMessage
	}
	if dao.AnchoredAt != nil {
		r.AnchoredAt = dao.AnchoredAt
	}

	return r
}
