package auth

import (
	"testing"
	"time"
)

func TestMemoryStoreTouchSkipsExpiredRecords(t *testing.T) {
	store := NewMemorySessionStore()
	start := time.Unix(1700000000, 0)
	if err := store.Save(SessionRecord{Token: "t", UserID: 3, LastActivity: start}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	// Cutoff after the record's last activity: the session is already idle
	// and the touch must not refresh it.
	if err := store.Touch("t", start.Add(2*time.Hour), start.Add(time.Hour)); err != nil {
		t.Fatalf("Touch returned error: %v", err)
	}
	record, ok, _ := store.Get("t")
	if !ok {
		t.Fatal("expected record to remain present")
	}
	if !record.LastActivity.Equal(start) {
		t.Fatalf("expected last activity unchanged, got %v", record.LastActivity)
	}
}

func TestMemoryStoreTouchMissingToken(t *testing.T) {
	store := NewMemorySessionStore()
	if err := store.Touch("missing", time.Now(), time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("Touch returned error: %v", err)
	}
	if _, ok, _ := store.Get("missing"); ok {
		t.Fatal("expected touch not to create a record")
	}
}

func TestMemoryStorePurgeIdle(t *testing.T) {
	store := NewMemorySessionStore()
	base := time.Unix(1700000000, 0)
	_ = store.Save(SessionRecord{Token: "old", UserID: 1, LastActivity: base})
	_ = store.Save(SessionRecord{Token: "new", UserID: 2, LastActivity: base.Add(time.Hour)})

	if err := store.PurgeIdle(base.Add(30 * time.Minute)); err != nil {
		t.Fatalf("PurgeIdle returned error: %v", err)
	}
	if _, ok, _ := store.Get("old"); ok {
		t.Fatal("expected idle record to be purged")
	}
	if _, ok, _ := store.Get("new"); !ok {
		t.Fatal("expected active record to survive")
	}
}
