package identity

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/roadguard/reporter-middleware/pkg/commitment"
	"github.com/roadguard/reporter-middleware/pkg/kvstore"
)

// failingStore rejects all writes while still serving reads from the wrapped store.
type failingStore struct {
	kvstore.Store
	err error
}

func (f *failingStore) Set(context.Context, string, string) error { return f.err }
func (f *failingStore) Remove(context.Context, string) error      { return f.err }

func TestManagerStartsEmpty(t *testing.T) {
	ctx := context.Background()
	m := NewManager(ctx, kvstore.NewMemory(), zap.NewNop())

	if m.HasIdentity() {
		t.Error("expected no identity on empty store")
	}
	if m.Identity() != nil {
		t.Error("expected nil identity on empty store")
	}
}

func TestManagerCreateIdentity(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	m := NewManager(ctx, store, zap.NewNop())

	id, err := m.CreateIdentity(ctx, "test_passphrase")
	if err != nil {
		t.Fatalf("CreateIdentity failed: %v", err)
	}
	if !id.WellFormed() {
		t.Errorf("created identity has malformed fields: %+v", id)
	}
	if !m.HasIdentity() {
		t.Error("HasIdentity should be true after create")
	}

	raw, ok, err := store.Get(ctx, SlotKey)
	if err != nil || !ok {
		t.Fatalf("identity slot missing after create: ok=%v err=%v", ok, err)
	}
	var stored commitment.Identity
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatalf("stored slot is not valid JSON: %v", err)
	}
	if stored != *id {
		t.Errorf("stored identity %+v differs from returned %+v", stored, *id)
	}
}

func TestManagerCreateReplacesExisting(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	m := NewManager(ctx, store, zap.NewNop())

	first, err := m.CreateIdentity(ctx, "first")
	if err != nil {
		t.Fatalf("CreateIdentity failed: %v", err)
	}
	second, err := m.CreateIdentity(ctx, "second")
	if err != nil {
		t.Fatalf("CreateIdentity failed: %v", err)
	}
	if first.Commitment == second.Commitment {
		t.Fatal("replacement identity should differ")
	}
	if got := m.Identity(); got == nil || got.Commitment != second.Commitment {
		t.Errorf("manager should hold the replacement identity, got %+v", got)
	}
}

func TestManagerReloadsPersistedIdentity(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()

	want, err := commitment.Generate("persisted")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	payload, _ := json.Marshal(want)
	if err := store.Set(ctx, SlotKey, string(payload)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	m := NewManager(ctx, store, zap.NewNop())
	if !m.HasIdentity() {
		t.Fatal("expected identity loaded from store")
	}
	got := m.Identity()
	if *got != want {
		t.Errorf("loaded identity %+v, want %+v", *got, want)
	}
}

func TestManagerClearIdentity(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	m := NewManager(ctx, store, zap.NewNop())

	if _, err := m.CreateIdentity(ctx, "to-clear"); err != nil {
		t.Fatalf("CreateIdentity failed: %v", err)
	}
	if err := m.ClearIdentity(ctx); err != nil {
		t.Fatalf("ClearIdentity failed: %v", err)
	}

	if m.HasIdentity() {
		t.Error("identity should be absent after clear")
	}
	if _, ok, _ := store.Get(ctx, SlotKey); ok {
		t.Error("slot should be deleted after clear")
	}

	// Clearing again is a no-op, not an error.
	if err := m.ClearIdentity(ctx); err != nil {
		t.Errorf("ClearIdentity on empty manager failed: %v", err)
	}
}

func TestManagerMalformedSlot(t *testing.T) {
	ctx := context.Background()
	cases := map[string]string{
		"not JSON":       "}{ not json",
		"missing fields": `{"something":"else"}`,
		"bad format":     `{"secret":"0x1234","commitment":"nope"}`,
	}
	for name, raw := range cases {
		store := kvstore.NewMemory()
		_ = store.Set(ctx, SlotKey, raw)

		m := NewManager(ctx, store, zap.NewNop())
		if m.HasIdentity() {
			t.Errorf("%s: malformed slot should yield no identity", name)
		}
	}
}

func TestManagerStorageFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("quota exceeded")
	store := &failingStore{Store: kvstore.NewMemory(), err: boom}
	m := NewManager(ctx, store, zap.NewNop())

	id, err := m.CreateIdentity(ctx, "degraded")
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if id == nil || !m.HasIdentity() {
		t.Fatal("in-memory identity should be installed despite store failure")
	}

	if err := m.ClearIdentity(ctx); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable on clear, got %v", err)
	}
	if m.HasIdentity() {
		t.Error("in-memory identity should be cleared despite store failure")
	}
}

func TestManagerEmptyPassphrase(t *testing.T) {
	ctx := context.Background()
	m := NewManager(ctx, kvstore.NewMemory(), zap.NewNop())

	if _, err := m.CreateIdentity(ctx, ""); !errors.Is(err, commitment.ErrEmptyPassphrase) {
		t.Fatalf("expected ErrEmptyPassphrase, got %v", err)
	}
	if m.HasIdentity() {
		t.Error("failed create must not install an identity")
	}
}
