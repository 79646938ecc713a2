package builtins

import (
	"mooworld/db"
	"mooworld/types"
)

// callerIsWizard reports whether the task's effective programmer is a
// wizard, checking both the cached context flag and the object's own bit
// (set_task_perms can change ctx.Programmer without refreshing ctx.IsWizard).
func callerIsWizard(ctx *types.TaskContext, store db.World) bool {
	if ctx == nil {
		return true
	}
	return ctx.IsWizard || isPlayerWizard(store, ctx.Programmer)
}

// checkOwnerPerm enforces the owner-or-wizard rule shared by the verb and
// object management builtins: only a wizard or the entity's own owner may
// reconfigure it.
func checkOwnerPerm(ctx *types.TaskContext, store db.World, owner types.ObjID) types.ErrorCode {
	if callerIsWizard(ctx, store) || owner == ctx.Programmer {
		return types.E_NONE
	}
	return types.E_PERM
}

// checkPropertyReadPerm mirrors vm.(*VM).checkPropertyReadPerm for the
// builtin-function surface (properties(), property_info(), ...): wizards
// and the property's owner always pass; everyone else needs the 'r' bit.
func checkPropertyReadPerm(ctx *types.TaskContext, store db.World, prop *db.Property) types.ErrorCode {
	if callerIsWizard(ctx, store) || prop.Owner == ctx.Programmer {
		return types.E_NONE
	}
	if !prop.Perms.Has(db.PropRead) {
		return types.E_PERM
	}
	return types.E_NONE
}

// checkPropertyWritePerm mirrors vm.(*VM).checkPropertyWritePerm for the
// builtin-function surface (add_property(), set_property_info(), ...).
func checkPropertyWritePerm(ctx *types.TaskContext, store db.World, prop *db.Property) types.ErrorCode {
	if callerIsWizard(ctx, store) || prop.Owner == ctx.Programmer {
		return types.E_NONE
	}
	if !prop.Perms.Has(db.PropWrite) {
		return types.E_PERM
	}
	return types.E_NONE
}

// checkObjectReadPerm enforces the object-level 'r' bit (or owner/wizard
// bypass) used by properties() and verbs() to list an object's definitions.
func checkObjectReadPerm(ctx *types.TaskContext, store db.World, obj *db.Object) types.ErrorCode {
	if callerIsWizard(ctx, store) || obj.Owner == ctx.Programmer {
		return types.E_NONE
	}
	if !obj.Flags.Has(db.FlagRead) {
		return types.E_PERM
	}
	return types.E_NONE
}

// checkObjectWritePerm enforces the object-level 'w' bit (or owner/wizard
// bypass) used by chparent/chparents/recycle to reconfigure an object.
func checkObjectWritePerm(ctx *types.TaskContext, store db.World, obj *db.Object) types.ErrorCode {
	if callerIsWizard(ctx, store) || obj.Owner == ctx.Programmer {
		return types.E_NONE
	}
	if !obj.Flags.Has(db.FlagWrite) {
		return types.E_PERM
	}
	return types.E_NONE
}

// checkVerbWritePerm enforces the owner-or-wizard rule for verb metadata and
// code changes (delete_verb, set_verb_info, set_verb_args, set_verb_code).
func checkVerbWritePerm(ctx *types.TaskContext, store db.World, verb *db.Verb) types.ErrorCode {
	return checkOwnerPerm(ctx, store, verb.Owner)
}
