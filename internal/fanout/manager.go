package fanout

import (
	"context"
	"fmt"
	"sync"

	"classbook/shared/constant"

	"github.com/rs/zerolog/log"
)

// Identity scopes what a listener set may see.
type Identity struct {
	UserID string
	Role   string
}

// Listener receives the deduplicated snapshot of one collection after every
// change, and stream errors for that collection only.
type Listener struct {
	OnSnapshot func(records []Record)
	OnError    func(err error)
}

// Manager owns the subscription set for exactly one signed-in identity.
// Switching identity tears down every prior subscription before any new one
// is established; re-activating the same identity is a no-op.
type Manager struct {
	stream  Stream
	sources map[string]SnapshotSource

	mu       sync.Mutex
	identity *Identity
	cancels  map[string]func()
	wg       sync.WaitGroup
}

func NewManager(stream Stream, sources map[string]SnapshotSource) *Manager {
	return &Manager{
		stream:  stream,
		sources: sources,
		cancels: map[string]func(){},
	}
}

// Activate establishes one subscription per requested collection for the
// given identity. An already-active identical identity keeps its
// subscriptions untouched. Every requested collection must have a registered
// snapshot source; an unknown name fails the whole call before any existing
// subscription is dropped.
func (m *Manager) Activate(ctx context.Context, identity Identity, listeners map[string]Listener) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for collection := range listeners {
		if _, ok := m.sources[collection]; !ok {
			return fmt.Errorf("no snapshot source registered for collection %q", collection)
		}
	}

	if m.identity != nil && *m.identity == identity && len(m.cancels) > 0 {
		return nil
	}

	m.teardownLocked()
	m.identity = &identity

	for collection, listener := range listeners {
		source := m.sources[collection]

		events, cancel, err := m.stream.Subscribe(ctx, collection)
		if err != nil {
			m.teardownLocked()

			return err
		}

		m.cancels[collection] = cancel

		m.wg.Add(1)

		go m.pump(ctx, identity, collection, source, events, listener)
	}

	return nil
}

// Teardown drops every active subscription. Safe to call repeatedly.
func (m *Manager) Teardown() {
	m.mu.Lock()
	m.teardownLocked()
	m.identity = nil
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *Manager) teardownLocked() {
	for collection, cancel := range m.cancels {
		cancel()
		delete(m.cancels, collection)
	}
}

func (m *Manager) pump(ctx context.Context, identity Identity, collection string, source SnapshotSource, events <-chan ChangeEvent, listener Listener) {
	defer m.wg.Done()

	// Deliver the current state immediately; changes follow as they commit.
	m.deliver(ctx, identity, collection, source, listener)

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}

			m.deliver(ctx, identity, collection, source, listener)
		}
	}
}

func (m *Manager) deliver(ctx context.Context, identity Identity, collection string, source SnapshotSource, listener Listener) {
	records, err := source.Snapshot(ctx)
	if err != nil {
		// An error on one collection never crashes sibling subscriptions.
		if listener.OnError != nil {
			listener.OnError(err)
		}

		return
	}

	records = dedupe(collection, records)
	records = scope(identity, records)

	if listener.OnSnapshot != nil {
		listener.OnSnapshot(records)
	}
}

// dedupe drops later duplicates of a record id within one snapshot. The
// underlying stream is at-least-once; redelivered records showed up as
// double counts in derived statistics before this guard existed.
func dedupe(collection string, records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := records[:0]

	for _, record := range records {
		if _, dup := seen[record.ID]; dup {
			log.Warn().
				Str("collection", collection).
				Str("record_id", record.ID).
				Msg("dropping duplicate record in snapshot")

			continue
		}

		seen[record.ID] = struct{}{}
		out = append(out, record)
	}

	return out
}

// scope filters a snapshot per role: admins see the whole collection,
// everyone else only records they own. Unowned records are public.
func scope(identity Identity, records []Record) []Record {
	if identity.Role == constant.RoleAdmin {
		return records
	}

	out := records[:0]

	for _, record := range records {
		if record.OwnerID == "" || record.OwnerID == identity.UserID {
			out = append(out, record)
		}
	}

	return out
}
