package control

import (
	"errors"
	"sync"
	"testing"

	"stagelink/internal/models"
)

func TestSnapshotSeesCurrentWiring(t *testing.T) {
	port := NewPort()
	if port.Snapshot().SendKeyEvent != nil {
		t.Fatal("expected fresh port to have nothing wired")
	}

	var got string
	port.Wire(func(h *Handlers) {
		h.SendKeyEvent = func(key string) { got = key }
	})
	snapshot := port.Snapshot()
	if snapshot.SendKeyEvent == nil {
		t.Fatal("expected SendKeyEvent to be wired")
	}
	snapshot.SendKeyEvent("enter")
	if got != "enter" {
		t.Fatalf("expected handler invocation, got %q", got)
	}

	// Unwiring must be visible to the next snapshot.
	port.Wire(func(h *Handlers) { h.SendKeyEvent = nil })
	if port.Snapshot().SendKeyEvent != nil {
		t.Fatal("expected SendKeyEvent to be unwired")
	}
}

func TestWireConcurrentWithSnapshot(t *testing.T) {
	port := NewPort()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			port.Wire(func(h *Handlers) {
				h.CurrentSongID = func() int { return 1 }
			})
			port.Wire(func(h *Handlers) { h.CurrentSongID = nil })
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if h := port.Snapshot().CurrentSongID; h != nil {
				_ = h()
			}
		}
	}()
	wg.Wait()
}

func TestValidationError(t *testing.T) {
	err := func() error {
		return Validation("playlist 999 does not exist")
	}()

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Message != "playlist 999 does not exist" {
		t.Fatalf("unexpected message %q", verr.Message)
	}
	if err.Error() != verr.Message {
		t.Fatalf("expected Error() to return the message, got %q", err.Error())
	}
}

func TestHandlersAreIndependent(t *testing.T) {
	port := NewPort()
	port.Wire(func(h *Handlers) {
		h.Song = func(id int) models.Song { return models.Song{ID: id} }
	})
	snapshot := port.Snapshot()
	if snapshot.AllSongs != nil {
		t.Fatal("expected AllSongs to stay unwired")
	}
	if song := snapshot.Song(3); song.ID != 3 {
		t.Fatalf("expected song 3, got %d", song.ID)
	}
}
