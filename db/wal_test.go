package db

import (
	"path/filepath"
	"testing"
)

func TestWALAppendAndRecover(t *testing.T) {
	dir := t.TempDir()
	walPath := filepath.Join(dir, "test.wal")

	wal, err := OpenWAL(walPath)
	if err != nil {
		t.Fatalf("OpenWAL() failed: %v", err)
	}

	store := NewStore()
	store.AttachWAL(wal)
	store.Add(NewObject(0, 0))

	txn := store.Begin()
	txn.Get(0).Name = "durable"
	if err := txn.Commit(); err != nil {
		t.Fatalf("Commit() failed: %v", err)
	}
	if err := wal.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	// Simulate a restart: fresh store, reopen the same WAL, replay it.
	recovered := NewStore()
	wal2, err := OpenWAL(walPath)
	if err != nil {
		t.Fatalf("reopen OpenWAL() failed: %v", err)
	}
	defer wal2.Close()

	if err := wal2.Recover(recovered); err != nil {
		t.Fatalf("Recover() failed: %v", err)
	}

	obj := recovered.Get(0)
	if obj == nil {
		t.Fatal("recovered store missing object #0")
	}
	if obj.Name != "durable" {
		t.Errorf("recovered object Name = %q, want %q", obj.Name, "durable")
	}
}

func TestWALCheckpointTruncatesLog(t *testing.T) {
	dir := t.TempDir()
	walPath := filepath.Join(dir, "test.wal")

	wal, err := OpenWAL(walPath)
	if err != nil {
		t.Fatalf("OpenWAL() failed: %v", err)
	}
	defer wal.Close()

	store := NewStore()
	store.AttachWAL(wal)
	store.Add(NewObject(0, 0))

	txn := store.Begin()
	txn.Get(0).Name = "before-checkpoint"
	if err := txn.Commit(); err != nil {
		t.Fatalf("Commit() failed: %v", err)
	}

	if err := wal.Checkpoint(); err != nil {
		t.Fatalf("Checkpoint() failed: %v", err)
	}

	// After a checkpoint, replaying the (now-empty) log into a fresh store
	// must not reconstruct the pre-checkpoint state — the full dump the
	// caller writes alongside Checkpoint is the source of truth for it.
	postCheckpoint := NewStore()
	if err := wal.Recover(postCheckpoint); err != nil {
		t.Fatalf("Recover() after checkpoint failed: %v", err)
	}
	if postCheckpoint.Valid(0) {
		t.Error("replaying a truncated log should not resurrect pre-checkpoint writes")
	}

	// New writes after the checkpoint still append normally.
	txn2 := store.Begin()
	txn2.Get(0).Name = "after-checkpoint"
	if err := txn2.Commit(); err != nil {
		t.Fatalf("second Commit() failed: %v", err)
	}

	postCheckpoint2 := NewStore()
	if err := wal.Recover(postCheckpoint2); err != nil {
		t.Fatalf("Recover() failed: %v", err)
	}
	// Each WAL record carries a whole-object after-image, not a diff, so
	// replaying just the post-checkpoint tail fully reconstructs the object
	// without needing the truncated pre-checkpoint records.
	obj := postCheckpoint2.Get(0)
	if obj == nil {
		t.Fatal("replaying the post-checkpoint tail should reconstruct object #0")
	}
	if obj.Name != "after-checkpoint" {
		t.Errorf("Get(0).Name = %q, want %q", obj.Name, "after-checkpoint")
	}
}
