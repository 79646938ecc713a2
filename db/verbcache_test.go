package db

import (
	"mooworld/types"
	"testing"
)

func TestFindVerbCacheServesRepeatedLookups(t *testing.T) {
	store := NewStore()
	parent := NewObject(0, 0)
	parent.Verbs["greet"] = &Verb{Name: "greet", Names: []string{"greet"}}
	store.Add(parent)

	child := NewObject(1, 0)
	child.Parents = []types.ObjID{}
	store.Add(child)

	// First call misses the cache and walks the chain; second should be
	// served from the LRU without re-walking.
	verb1, defObjID1, err := store.FindVerb(0, "greet")
	if err != nil {
		t.Fatalf("FindVerb() failed: %v", err)
	}
	verb2, defObjID2, err := store.FindVerb(0, "greet")
	if err != nil {
		t.Fatalf("FindVerb() (cached) failed: %v", err)
	}
	if verb1 != verb2 || defObjID1 != defObjID2 {
		t.Errorf("cached FindVerb() result differs from first call")
	}
}

func TestFindVerbCacheInvalidatedOnVerbDelete(t *testing.T) {
	store := NewStore()
	obj := NewObject(0, 0)
	obj.Verbs["greet"] = &Verb{Name: "greet", Names: []string{"greet"}}
	store.Add(obj)

	if _, _, err := store.FindVerb(0, "greet"); err != nil {
		t.Fatalf("FindVerb() failed: %v", err)
	}

	// Simulate delete_verb's effect plus the cache-clear it now triggers.
	delete(obj.Verbs, "greet")
	store.NoteVerbCacheClear()

	if _, _, err := store.FindVerb(0, "greet"); err == nil {
		t.Error("FindVerb() found a deleted verb served from a stale cache entry")
	}
}

func TestFindVerbCacheInvalidatedOnReparent(t *testing.T) {
	store := NewStore()
	parentA := NewObject(0, 0)
	parentA.Verbs["hail"] = &Verb{Name: "hail", Names: []string{"hail"}}
	store.Add(parentA)

	parentB := NewObject(1, 0)
	store.Add(parentB)

	child := NewObject(2, 0)
	child.Parents = []types.ObjID{0}
	store.Add(child)

	if _, defObjID, err := store.FindVerb(2, "hail"); err != nil || defObjID != 0 {
		t.Fatalf("FindVerb() = (_, %v, %v), want (_, #0, nil)", defObjID, err)
	}

	// Reparent child away from parentA, matching what chparent does before
	// purging the cache.
	child.Parents = []types.ObjID{1}
	store.NoteVerbCacheClear()

	if _, _, err := store.FindVerb(2, "hail"); err == nil {
		t.Error("FindVerb() resolved a verb through a parent the object no longer has")
	}
}
