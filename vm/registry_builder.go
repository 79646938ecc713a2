package vm

import (
	"mooworld/builtins"
	"mooworld/db"
)

// BuildVMRegistry assembles a fresh builtin function registry bound to
// store. Every task execution gets its own registry (store-dependent
// builtins close over the current Transaction, not the live Store), so
// this is called once per task rather than once at server startup — see
// Scheduler.runTask.
func BuildVMRegistry(store db.World) *builtins.Registry {
	r := builtins.NewRegistry()
	r.RegisterObjectBuiltins(store)
	r.RegisterPropertyBuiltins(store)
	r.RegisterVerbBuiltins(store)
	r.RegisterCryptoBuiltins(store)
	r.RegisterSystemBuiltins(store)
	r.RegisterStubBuiltins()
	return r
}
