package notifications

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/adrena/backend/internal/models"
	"github.com/google/uuid"
)

// FeedSource is where a Feed loads from and deletes through
type FeedSource interface {
	List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// Feed is one connection's live copy of a user's notifications. It is seeded
// from the store and then kept current by applying change events in the order
// they arrive.
type Feed struct {
	mu     sync.Mutex
	userID uuid.UUID
	source FeedSource
	limit  int
	items  []models.Notification
}

func NewFeed(userID uuid.UUID, source FeedSource) *Feed {
	return &Feed{userID: userID, source: source, limit: DefaultLimit}
}

// Load replaces the local list with the stored one
func (f *Feed) Load(ctx context.Context) error {
	items, err := f.source.List(ctx, f.userID, f.limit)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.items = items
	f.mu.Unlock()
	return nil
}

// Items returns a copy of the current list, newest first
func (f *Feed) Items() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Notification, len(f.items))
	copy(out, f.items)
	return out
}

func (f *Feed) UnreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, it := range f.items {
		if !it.Read {
			n++
		}
	}
	return n
}

// Apply splices a notifications change into the list by id. Changes for other
// tables or users, and records that fail to decode, are ignored. It reports
// whether the list changed.
func (f *Feed) Apply(change models.ChangeEvent) bool {
	if change.Table != models.TableNotifications || change.UserID != f.userID {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.indexOf(change.RecordID)
	switch change.Type {
	case models.ChangeInsert:
		if idx >= 0 {
			return false
		}
		n, ok := decodeRecord(change.Record)
		if !ok {
			return false
		}
		f.items = append([]models.Notification{n}, f.items...)
		if len(f.items) > f.limit {
			f.items = f.items[:f.limit]
		}
		return true
	case models.ChangeUpdate:
		if idx < 0 {
			return false
		}
		n, ok := decodeRecord(change.Record)
		if !ok {
			return false
		}
		f.items[idx] = n
		return true
	case models.ChangeDelete:
		if idx < 0 {
			return false
		}
		f.items = append(f.items[:idx], f.items[idx+1:]...)
		return true
	}
	return false
}

// Delete removes id locally before asking the store. If the store refuses,
// the list is reloaded so the notification shows up again, and the store
// error is returned.
func (f *Feed) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	if idx := f.indexOf(id); idx >= 0 {
		f.items = append(f.items[:idx], f.items[idx+1:]...)
	}
	f.mu.Unlock()

	err := f.source.Delete(ctx, f.userID, id)
	if err == nil {
		return nil
	}
	if lerr := f.Load(ctx); lerr != nil {
		return lerr
	}
	return err
}

func (f *Feed) indexOf(id uuid.UUID) int {
	for i := range f.items {
		if f.items[i].ID == id {
			return i
		}
	}
	return -1
}

func decodeRecord(raw json.RawMessage) (models.Notification, bool) {
	var n models.Notification
	if len(raw) == 0 {
		return n, false
	}
	if err := json.Unmarshal(raw, &n); err != nil {
		return n, false
	}
	return n, true
}
