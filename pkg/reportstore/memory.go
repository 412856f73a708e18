package reportstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/roadguard/reporter-middleware/pkg/report"
)

// MemoryStore implements Store using in-memory storage (for testing).
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]*report.Report
}

// NewMemoryStore creates a new in-memory report store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]*report.Report)}
}

func (s *MemoryStore) CreateReport(_ context.Context, r *report.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *r
	s.reports[r.ID] = &clone
	return nil
}

func (s *MemoryStore) GetReport(_ context.Context, id string) (*report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	clone := *r
	return &clone, nil
}

func (s *MemoryStore) ListReports(_ context.Context, opts ...QueryOption) ([]*report.Report, error) {
	options := &QueryOptions{}
	for _, opt := range opts {
		opt(options)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*report.Report
	for _, r := range s.reports {
		if options.Status != nil && r.Status != *options.Status {
			continue
		}
		if options.ReporterCommitment != nil && r.ReporterCommitment != *options.ReporterCommitment {
			continue
		}
		clone := *r
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })

	if options.Limit > 0 && len(out) > options.Limit {
		out = out[:options.Limit]
	}
	return out, nil
}

func (s *MemoryStore) MarkReportAnchored(_ context.Context, id, txHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return ErrReportNotFound
	}
	now := time.Now()
	r.Status = report.StatusAnchored
	r.AnchorTxHash = txHash
	r.AnchoredAt = &now
	r.UpdatedAt = now
	return nil
}

func (s *MemoryStore) RecordAnchorFailure(_ context.Context, id, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return ErrReportNotFound
	}
	r.RetryCount++
	r.ErrorMessage = errMsg
	r.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) MarkReportFailed(_ context.Context, id, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return ErrReportNotFound
	}
	r.Status = report.StatusFailed
	r.ErrorMessage = errMsg
	r.UpdatedAt = time.Now()
	return nil
}
