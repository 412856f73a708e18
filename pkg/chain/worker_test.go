package chain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/roadguard/reporter-middleware/pkg/report"
	"github.com/roadguard/reporter-middleware/pkg/reportstore"
)

type fakeAnchorer struct {
	calls   int
	failing bool
}

func (f *fakeAnchorer) AnchorReport(_ context.Context, digest common.Hash) (common.Hash, error) {
	f.calls++
	if f.failing {
		return common.Hash{}, errors.New("rpc unreachable")
	}
	return crypto.Keccak256Hash(digest.Bytes()), nil
}

func newWorkerFixture(t *testing.T, anchorer Anchorer) (*Worker, *reportstore.MemoryStore) {
	t.Helper()
	store := reportstore.NewMemoryStore()
	w, err := NewWorker(WorkerConfig{MaxRetries: 2}, store, anchorer, zap.NewNop())
	if err != nil {
		t.Fatalf("NewWorker() failed: %v", err)
	}
	return w, store
}

func seedPending(t *testing.T, store *reportstore.MemoryStore, id string) {
	t.Helper()
	r := sampleReport()
	r.ID = id
	r.Status = report.StatusPending
	if err := store.CreateReport(context.Background(), r); err != nil {
		t.Fatalf("CreateReport() failed: %v", err)
	}
}

func TestWorkerDefaults(t *testing.T) {
	w, _ := newWorkerFixture(t, &fakeAnchorer{})

	if w.config.Interval.Seconds() != 30 {
		t.Errorf("expected default interval 30s, got %s", w.config.Interval)
	}
	if w.config.BatchSize != 25 {
		t.Errorf("expected default batch size 25, got %d", w.config.BatchSize)
	}
	// Explicit values survive default application.
	if w.config.MaxRetries != 2 {
		t.Errorf("expected max retries 2, got %d", w.config.MaxRetries)
	}
}

func TestAnchorPendingMarksReportsAnchored(t *testing.T) {
	anchorer := &fakeAnchorer{}
	w, store := newWorkerFixture(t, anchorer)
	ctx := context.Background()

	seedPending(t, store, "r1")
	seedPending(t, store, "r2")

	if err := w.anchorPending(ctx); err != nil {
		t.Fatalf("anchorPending() failed: %v", err)
	}
	if anchorer.calls != 2 {
		t.Errorf("expected 2 anchor calls, got %d", anchorer.calls)
	}

	for _, id := range []string{"r1", "r2"} {
		r, err := store.GetReport(ctx, id)
		if err != nil {
			t.Fatalf("GetReport(%s) failed: %v", id, err)
		}
		if r.Status != report.StatusAnchored {
			t.Errorf("report %s: expected status anchored, got %s", id, r.Status)
		}
		if r.AnchorTxHash == "" {
			t.Errorf("report %s: expected a tx hash", id)
		}
		if r.AnchoredAt == nil {
			t.Errorf("report %s: expected anchored timestamp", id)
		}
	}
}

func TestAnchorPendingRetriesThenFails(t *testing.T) {
	anchorer := &fakeAnchorer{failing: true}
	w, store := newWorkerFixture(t, anchorer)
	ctx := context.Background()

	seedPending(t, store, "r1")

	// First attempt records a failure but the report stays pending.
	if err := w.anchorPending(ctx); err != nil {
		t.Fatalf("anchorPending() failed: %v", err)
	}
	r, err := store.GetReport(ctx, "r1")
	if err != nil {
		t.Fatalf("GetReport() failed: %v", err)
	}
	if r.Status != report.StatusPending {
		t.Fatalf("expected status pending after first failure, got %s", r.Status)
	}
	if r.RetryCount != 1 {
		t.Fatalf("expected retry count 1, got %d", r.RetryCount)
	}
	if r.ErrorMessage == "" {
		t.Error("expected recorded error message")
	}

	// Second attempt exhausts MaxRetries=2 and fails the report.
	if err := w.anchorPending(ctx); err != nil {
		t.Fatalf("anchorPending() failed: %v", err)
	}
	r, err = store.GetReport(ctx, "r1")
	if err != nil {
		t.Fatalf("GetReport() failed: %v", err)
	}
	if r.Status != report.StatusFailed {
		t.Fatalf("expected status failed after retries exhausted, got %s", r.Status)
	}

	// Failed reports are no longer picked up.
	if err := w.anchorPending(ctx); err != nil {
		t.Fatalf("anchorPending() failed: %v", err)
	}
	if anchorer.calls != 2 {
		t.Errorf("expected no further anchor calls, got %d total", anchorer.calls)
	}
}

func TestAnchorPendingFailsUnencodableReport(t *testing.T) {
	anchorer := &fakeAnchorer{}
	w, store := newWorkerFixture(t, anchorer)
	ctx := context.Background()

	r := sampleReport()
	r.ID = "broken"
	r.ReporterCommitment = ""
	r.Status = report.StatusPending
	if err := store.CreateReport(ctx, r); err != nil {
		t.Fatalf("CreateReport() failed: %v", err)
	}

	if err := w.anchorPending(ctx); err != nil {
		t.Fatalf("anchorPending() failed: %v", err)
	}
	stored, err := store.GetReport(ctx, "broken")
	if err != nil {
		t.Fatalf("GetReport() failed: %v", err)
	}
	if stored.Status != report.StatusFailed {
		t.Errorf("expected status failed, got %s", stored.Status)
	}
	if anchorer.calls != 0 {
		t.Errorf("expected no anchor calls for unencodable report, got %d", anchorer.calls)
	}
}

func TestAnchorPendingRespectsBatchSize(t *testing.T) {
	anchorer := &fakeAnchorer{}
	store := reportstore.NewMemoryStore()
	w, err := NewWorker(WorkerConfig{BatchSize: 2}, store, anchorer, zap.NewNop())
	if err != nil {
		t.Fatalf("NewWorker() failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		seedPending(t, store, fmt.Sprintf("r%d", i))
	}

	if err := w.anchorPending(context.Background()); err != nil {
		t.Fatalf("anchorPending() failed: %v", err)
	}
	if anchorer.calls != 2 {
		t.Errorf("expected batch of 2 anchor calls, got %d", anchorer.calls)
	}
}
