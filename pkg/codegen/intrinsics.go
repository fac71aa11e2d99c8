package codegen

import "github.com/nlsfnr/timber/pkg/vm"

// ---------------------------------------------------------------------------
// Entry stub and intrinsics library
// ---------------------------------------------------------------------------

// entryStub returns the program prologue: it initializes the TOS pointer to
// the base virtual-stack address, calls main, and halts when main returns.
func entryStub() *Unit {
	return NewUnit().
		Comment("entrypoint {").
		Push(StackBase).
		Push(TOSPtrAddr).
		Store().
		CallSym("main").
		Halt().
		Comment("} entrypoint")
}

// binaryIntrinsics lists the builtin two-operand subroutines in emission
// order.
var binaryIntrinsics = []struct {
	name string
	kind vm.Kind
}{
	{"add", vm.Add},
	{"sub", vm.Sub},
	{"shl", vm.Shl},
	{"shr", vm.Shr},
	{"and", vm.And},
	{"or", vm.Or},
}

// appendIntrinsics emits the builtin subroutine library at the end of u.
// Every compiled program carries the full library, so user code always has
// a label for each builtin.
//
// Binary ops load operand slots 0 and 1 in that order, so the left operand
// of the machine instruction is the first call argument. All intrinsics
// share the user calling convention: arguments staged in the virtual-stack
// slots above TOS, result swapped beneath the return address before Ret.
func appendIntrinsics(u *Unit) {
	for _, in := range binaryIntrinsics {
		u.Comment("def " + in.name + " {").
			Label(in.name).
			LoadTOS(0).
			LoadTOS(1).
			emit(in.kind).
			Rot().
			Ret().
			Comment("} def " + in.name)
	}
	u.Comment("def print {").
		Label("print").
		LoadTOS(0).
		Print().
		Push(0). // placeholder result; every call site expects one value
		Rot().
		Ret().
		Comment("} def print")
	u.Comment("def exit {").
		Label("exit").
		Pop(). // discard the return address
		LoadTOS(0).
		Halt().
		Comment("} def exit")
	u.Comment("def return {").
		Label("return").
		LoadTOS(0).
		Rot().
		Pop(). // discard return's own return address
		Rot().
		Ret(). // transfer control back past the enclosing function
		Comment("} def return")
}
