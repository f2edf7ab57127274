package sandbox

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/appforge-io/appforge-backend/internal/projects/domain"
)

// RefStore is the slice of the project store the manager needs: the sandbox
// reference fields on the project record.
type RefStore interface {
	SandboxRef(ctx context.Context, projectID string) (*string, *time.Time, error)
	SaveSandboxRef(ctx context.Context, projectID, sandboxID string, expiresAt time.Time) error
	ClearSandboxRef(ctx context.Context, projectID string) error
	ExpiredSandboxRefs(ctx context.Context, now time.Time) ([]string, error)
}

// Manager owns the project -> sandbox mapping: reuse when the stored
// reference is possibly live, otherwise recreate and resync.
type Manager struct {
	provider Provider
	store    RefStore
	template string
	ttl      time.Duration

	now func() time.Time
}

func NewManager(provider Provider, store RefStore, template string, ttl time.Duration) *Manager {
	return &Manager{
		provider: provider,
		store:    store,
		template: template,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Acquisition is a live sandbox plus how it was obtained.
type Acquisition struct {
	Handle Handle
	Reused bool
}

// PossiblyLive reports whether a stored reference might still point at a
// running sandbox. Pure: it never contacts the remote side, so a true result
// is an optimistic estimate, not a guarantee.
func PossiblyLive(id *string, expiry *time.Time, now time.Time) bool {
	if id == nil || *id == "" || expiry == nil {
		return false
	}
	return now.Before(*expiry)
}

// Acquire returns a live sandbox for the project. A possibly-live stored
// reference is connected to and reused as-is; on any connect error, or when
// no live reference exists, a fresh sandbox is created, the prior snapshot
// is resynced into it, and the new reference is persisted.
//
// Resync failures are fatal: a fresh sandbox without its prior files is
// useless for iterative work, so the error propagates and no reference is
// saved.
func (m *Manager) Acquire(ctx context.Context, projectID string, snapshot domain.FileSet) (*Acquisition, error) {
	storedID, storedExpiry, err := m.store.SandboxRef(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("read sandbox ref: %w", err)
	}

	if PossiblyLive(storedID, storedExpiry, m.now()) {
		handle, err := m.provider.Connect(ctx, *storedID)
		if err == nil {
			return &Acquisition{Handle: handle, Reused: true}, nil
		}
		// The estimate was wrong or the sandbox is unreachable; recreate.
		log.Printf("sandbox %s connect failed, recreating: %v", *storedID, err)
	}

	handle, err := m.provider.Create(ctx, m.template)
	if err != nil {
		return nil, fmt.Errorf("create sandbox: %w", err)
	}

	if len(snapshot) > 0 {
		for path, content := range snapshot {
			if err := handle.WriteFile(ctx, path, content); err != nil {
				return nil, fmt.Errorf("resync %s: %w", path, err)
			}
		}
	}

	expiresAt := m.now().Add(m.ttl)
	if err := m.store.SaveSandboxRef(ctx, projectID, handle.ID(), expiresAt); err != nil {
		return nil, fmt.Errorf("save sandbox ref: %w", err)
	}

	return &Acquisition{Handle: handle, Reused: false}, nil
}

// Cleanup forgets references to sandboxes past their expiry. It never
// contacts the remote side, since the provider tears sandboxes down on its
// own, and it is idempotent: a second pass over the same projects clears
// nothing.
func (m *Manager) Cleanup(ctx context.Context) (int, error) {
	expired, err := m.store.ExpiredSandboxRefs(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("list expired sandbox refs: %w", err)
	}

	cleared := 0
	for _, projectID := range expired {
		if err := m.store.ClearSandboxRef(ctx, projectID); err != nil {
			return cleared, fmt.Errorf("clear sandbox ref for %s: %w", projectID, err)
		}
		cleared++
	}
	return cleared, nil
}
