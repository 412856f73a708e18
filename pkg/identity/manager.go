// Package identity manages the reporter identity lifecycle against a
// persistent key-value slot. At most one identity exists at a time; creating
// a new one overwrites the slot, clearing deletes it.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/roadguard/reporter-middleware/internal/metrics"
	"github.com/roadguard/reporter-middleware/pkg/commitment"
	"github.com/roadguard/reporter-middleware/pkg/kvstore"
)

// SlotKey is the reserved store key holding the serialized identity.
const SlotKey = "roadguard_identity"

// ErrStorageUnavailable wraps store failures during create/clear. The
// in-memory state transition has already happened when it is returned, so
// callers can keep serving from memory in degraded environments.
var ErrStorageUnavailable = errors.New("identity storage unavailable")

// Manager holds the current reporter identity and keeps it in sync with the
// store slot. Safe for concurrent use; concurrent writes are last-write-wins.
type Manager struct {
	store  kvstore.Store
	logger *zap.Logger

	mu       sync.RWMutex
	identity *commitment.Identity
}

// NewManager creates a manager and loads any persisted identity from the
// store slot. A slot that is missing, unreadable, or does not parse as a
// stored identity leaves the manager in the no-identity state; malformed
// data is discarded with a warning rather than surfaced as an error.
func NewManager(ctx context.Context, store kvstore.Store, logger *zap.Logger) *Manager {
	m := &Manager{store: store, logger: logger}

	raw, ok, err := store.Get(ctx, SlotKey)
	if err != nil {
		logger.Warn("Failed to read identity slot, starting without identity", zap.Error(err))
		return m
	}
	if !ok {
		return m
	}

	var id commitment.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		logger.Warn("Discarding malformed identity slot", zap.Error(err))
		return m
	}
	if !id.WellFormed() {
		logger.Warn("Discarding identity slot with invalid fields", zap.String("key", SlotKey))
		return m
	}

	m.identity = &id
	logger.Info("Loaded reporter identity", zap.String("commitment", id.Commitment))
	return m
}

// Identity returns a copy of the current identity, or nil when absent.
func (m *Manager) Identity() *commitment.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == nil {
		return nil
	}
	id := *m.identity
	return &id
}

// HasIdentity reports whether an identity is currently registered.
func (m *Manager) HasIdentity() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity != nil
}

// Commitment returns the current public commitment, if any.
func (m *Manager) Commitment() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == nil {
		return "", false
	}
	return m.identity.Commitment, true
}

// CreateIdentity derives a fresh identity from the passphrase, replaces any
// existing one and persists it to the store slot. When the store write fails
// the returned identity is still installed in memory and the error wraps
// ErrStorageUnavailable.
func (m *Manager) CreateIdentity(ctx context.Context, passphrase string) (*commitment.Identity, error) {
	id, err := commitment.Generate(passphrase)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.identity = &id
	m.mu.Unlock()
	metrics.IdentitiesCreated.Inc()

	payload, err := json.Marshal(id)
	if err != nil {
		return &id, fmt.Errorf("serialize identity: %w", err)
	}
	if err := m.store.Set(ctx, SlotKey, string(payload)); err != nil {
		m.logger.Error("Failed to persist identity, continuing in memory only", zap.Error(err))
		metrics.IdentityStorageErrors.WithLabelValues("set").Inc()
		return &id, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	m.logger.Info("Reporter identity created", zap.String("commitment", id.Commitment))
	return &id, nil
}

// ClearIdentity forgets the identity and deletes the store slot. The delete
// is issued even when no identity is registered, so clearing is idempotent.
func (m *Manager) ClearIdentity(ctx context.Context) error {
	m.mu.Lock()
	had := m.identity != nil
	m.identity = nil
	m.mu.Unlock()
	metrics.IdentitiesCleared.Inc()

	if err := m.store.Remove(ctx, SlotKey); err != nil {
		m.logger.Error("Failed to delete identity slot", zap.Error(err))
		metrics.IdentityStorageErrors.WithLabelValues("remove").Inc()
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if had {
		m.logger.Info("Reporter identity cleared")
	}
	return nil
}
