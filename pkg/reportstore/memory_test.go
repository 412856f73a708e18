package reportstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roadguard/reporter-middleware/pkg/report"
)

func newTestReport(id, commitment string, status report.Status, created time.Time) *report.Report {
	return &report.Report{
		ID:                 id,
		ReporterCommitment: commitment,
		Hazard:             report.HazardPothole,
		Latitude:           40.7128,
		Longitude:          -74.006,
		ScaledLat:          4071280000,
		ScaledLon:          -7400600000,
		Status:             status,
		CreatedAt:          created,
		UpdatedAt:          created,
	}
}

func TestMemoryStoreCreateGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	want := newTestReport("r1", "0xaaa", report.StatusPending, time.Now())
	if err := store.CreateReport(ctx, want); err != nil {
		t.Fatalf("CreateReport failed: %v", err)
	}

	got, err := store.GetReport(ctx, "r1")
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if got.ID != want.ID || got.ScaledLat != want.ScaledLat || got.Status != report.StatusPending {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if _, err := store.GetReport(ctx, "missing"); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("expected ErrReportNotFound, got %v", err)
	}
}

func TestMemoryStoreListFilters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Now()

	_ = store.CreateReport(ctx, newTestReport("r1", "0xaaa", report.StatusPending, base))
	_ = store.CreateReport(ctx, newTestReport("r2", "0xbbb", report.StatusPending, base.Add(time.Second)))
	_ = store.CreateReport(ctx, newTestReport("r3", "0xaaa", report.StatusAnchored, base.Add(2*time.Second)))

	pending, err := store.ListReports(ctx, WithStatus(report.StatusPending))
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending reports, got %d", len(pending))
	}
	if pending[0].ID != "r1" || pending[1].ID != "r2" {
		t.Errorf("pending reports out of creation order: %s, %s", pending[0].ID, pending[1].ID)
	}

	mine, err := store.ListReports(ctx, WithReporterCommitment("0xaaa"))
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 reports for commitment, got %d", len(mine))
	}

	limited, err := store.ListReports(ctx, WithLimit(1))
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "r1" {
		t.Errorf("limit should return the oldest report, got %+v", limited)
	}
}

func TestMemoryStoreStatusTransitions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.CreateReport(ctx, newTestReport("r1", "0xaaa", report.StatusPending, time.Now()))

	if err := store.RecordAnchorFailure(ctx, "r1", "rpc timeout"); err != nil {
		t.Fatalf("RecordAnchorFailure failed: %v", err)
	}
	r, _ := store.GetReport(ctx, "r1")
	if r.RetryCount != 1 || r.Status != report.StatusPending || r.ErrorMessage != "rpc timeout" {
		t.Errorf("unexpected state after failure: %+v", r)
	}

	if err := store.MarkReportAnchored(ctx, "r1", "0xtxhash"); err != nil {
		t.Fatalf("MarkReportAnchored failed: %v", err)
	}
	r, _ = store.GetReport(ctx, "r1")
	if r.Status != report.StatusAnchored || r.AnchorTxHash != "0xtxhash" || r.AnchoredAt == nil {
		t.Errorf("unexpected state after anchor: %+v", r)
	}

	if err := store.MarkReportFailed(ctx, "r1", "gave up"); err != nil {
		t.Fatalf("MarkReportFailed failed: %v", err)
	}
	r, _ = store.GetReport(ctx, "r1")
	if r.Status != report.StatusFailed || r.ErrorMessage != "gave up" {
		t.Errorf("unexpected state after failed: %+v", r)
	}

	for _, err := range []error{
		store.MarkReportAnchored(ctx, "nope", "0x1"),
		store.RecordAnchorFailure(ctx, "nope", "x"),
		store.MarkReportFailed(ctx, "nope", "x"),
	} {
		if !errors.Is(err, ErrReportNotFound) {
			t.Errorf("expected ErrReportNotFound, got %v", err)
		}
	}
}
