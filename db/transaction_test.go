package db

import (
	"mooworld/types"
	"testing"
)

func TestTransactionIsolation(t *testing.T) {
	store := NewStore()
	store.Add(NewObject(0, 0))

	txn := store.Begin()
	obj := txn.Get(0)
	obj.Name = "in-progress"

	// The live store must not observe the uncommitted write.
	if live := store.Get(0); live.Name == "in-progress" {
		t.Fatalf("uncommitted transaction write leaked into live store")
	}

	if err := txn.Commit(); err != nil {
		t.Fatalf("Commit() failed: %v", err)
	}

	if live := store.Get(0); live.Name != "in-progress" {
		t.Errorf("Get(0).Name = %q after commit, want %q", live.Name, "in-progress")
	}
}

func TestTransactionWriteWriteConflict(t *testing.T) {
	store := NewStore()
	store.Add(NewObject(0, 0))

	a := store.Begin()
	b := store.Begin()

	a.Get(0).Name = "from-a"
	b.Get(0).Name = "from-b"

	if err := a.Commit(); err != nil {
		t.Fatalf("a.Commit() failed: %v", err)
	}

	err := b.Commit()
	if err == nil {
		t.Fatal("b.Commit() succeeded, want conflict")
	}
	if _, ok := err.(*ErrConflict); !ok {
		t.Errorf("b.Commit() error = %T, want *ErrConflict", err)
	}

	if got := store.Get(0).Name; got != "from-a" {
		t.Errorf("Get(0).Name = %q, want %q (a's write should stick)", got, "from-a")
	}
}

func TestTransactionIdempotentWriteOptimization(t *testing.T) {
	store := NewStore()
	obj := NewObject(0, 0)
	obj.Flags = obj.Flags.Set(FlagUser)
	store.Add(obj)

	a := store.Begin()
	b := store.Begin()

	// Both tasks compute the identical target value.
	a.Get(0).Name = "converged"
	b.Get(0).Name = "converged"

	if err := a.Commit(); err != nil {
		t.Fatalf("a.Commit() failed: %v", err)
	}
	if err := b.Commit(); err != nil {
		t.Errorf("b.Commit() failed, want success under idempotent-write optimization: %v", err)
	}

	if got := store.Get(0).Name; got != "converged" {
		t.Errorf("Get(0).Name = %q, want %q", got, "converged")
	}
}

func TestTransactionRecycleVisibility(t *testing.T) {
	store := NewStore()
	store.Add(NewObject(0, 0))

	txn := store.Begin()
	if err := txn.Recycle(0); err != nil {
		t.Fatalf("Recycle() failed: %v", err)
	}
	if txn.Get(0) != nil {
		t.Error("Get(0) after Recycle() within same transaction should be nil")
	}
	if store.Get(0) == nil {
		t.Error("live store should still see #0 before commit")
	}

	if err := txn.Commit(); err != nil {
		t.Fatalf("Commit() failed: %v", err)
	}
	if store.Get(0) != nil {
		t.Error("Get(0) after commit of Recycle() should be nil")
	}
	if !store.IsRecycled(0) {
		t.Error("IsRecycled(0) should be true after commit")
	}
}

func TestTransactionAddIsNotRetroactivelyVisibleBeforeCommit(t *testing.T) {
	store := NewStore()

	txn := store.Begin()
	newObj := NewObject(txn.NextID(), 0)
	if err := txn.Add(newObj); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	if store.Valid(newObj.ID) {
		t.Error("new object should not be valid in the live store before commit")
	}
	if err := txn.Commit(); err != nil {
		t.Fatalf("Commit() failed: %v", err)
	}
	if !store.Valid(newObj.ID) {
		t.Error("new object should be valid in the live store after commit")
	}
}

func TestTransactionFindVerbSeesOwnUncommittedVerb(t *testing.T) {
	store := NewStore()
	obj := NewObject(0, 0)
	store.Add(obj)

	txn := store.Begin()
	o := txn.Get(0)
	o.Verbs["greet"] = &Verb{Name: "greet", Names: []string{"greet"}}

	verb, defObjID, err := txn.FindVerb(0, "greet")
	if err != nil {
		t.Fatalf("FindVerb() failed: %v", err)
	}
	if verb.Name != "greet" || defObjID != types.ObjID(0) {
		t.Errorf("FindVerb() = (%v, %v), want (greet, #0)", verb, defObjID)
	}

	// Not committed yet, so the live store must not resolve it.
	if _, _, err := store.FindVerb(0, "greet"); err == nil {
		t.Error("live store resolved an uncommitted verb")
	}
}
