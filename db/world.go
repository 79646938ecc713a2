package db

import "mooworld/types"

// World is the object-storage contract shared by Store (the live, root
// database) and Transaction (a per-task, snapshot-isolated view over it).
// Builtins, the VM, the evaluator, and the command matcher are written
// against World rather than a concrete type, so the exact same code runs
// whether it's handed the live Store directly (tests, the offline CLI
// introspection tools in cmd/) or a Transaction (normal task execution via
// the scheduler). *Store and *Transaction both satisfy this interface.
type World interface {
	Get(id types.ObjID) *Object
	GetUnsafe(id types.ObjID) *Object
	Add(obj *Object) error
	NextID() types.ObjID
	MaxObject() types.ObjID
	Valid(id types.ObjID) bool
	IsRecycled(id types.ObjID) bool
	Recycle(id types.ObjID) error
	Recreate(id types.ObjID, parent types.ObjID, owner types.ObjID) error
	All() []*Object
	Players() []types.ObjID
	GetAnonymousObjects() []*Object
	LowestFreeID() types.ObjID
	Renumber(oldID, newID types.ObjID) error
	FindVerb(objID types.ObjID, verbName string) (*Verb, types.ObjID, error)
	RegisterFlyweight(classID types.ObjID, w *types.FlyweightValue)
	FlyweightCount() int
	FlyweightCountByClass() map[types.ObjID]int
	InvalidateAnonymousChildren(parentID types.ObjID)
	NoteVerbCacheClear()
	NoteVerbCacheMiss()
	ConsumeVerbCacheStats() []int64
	ResetMaxObject()
}

var (
	_ World = (*Store)(nil)
	_ World = (*Transaction)(nil)
)
