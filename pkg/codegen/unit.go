package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nlsfnr/timber/pkg/vm"
)

// Memory layout constants of the target machine. Address 0 holds the TOS
// pointer; addresses 1-7 are reserved; virtual-stack slots start at 8.
const (
	TOSPtrAddr = 0
	StackBase  = 8
)

// UnresolvedAddr is the operand sentinel carried by jump and call
// instructions until the link pass overwrites it.
const UnresolvedAddr = -9999999

// ---------------------------------------------------------------------------
// Unit: symbolic assembler buffer
// ---------------------------------------------------------------------------

// Unit is an append-only instruction buffer with symbolic labels, deferred
// jump targets, and debug annotations. Units compose out of order via
// Insert, which rebases the inserted unit's addresses; Link then resolves
// every deferred target on the fully assembled top-level unit.
//
// Mutating methods return the receiver for chaining. A unit has a single
// logical owner during construction; it is not safe for concurrent use.
type Unit struct {
	instrs         vm.Program
	labels         map[string]int
	jumps          map[int]string
	comments       map[int]string
	inlineComments map[int]string
	linked         bool
}

// NewUnit creates an empty unit.
func NewUnit() *Unit {
	return &Unit{
		labels:         map[string]int{},
		jumps:          map[int]string{},
		comments:       map[int]string{},
		inlineComments: map[int]string{},
	}
}

// Len returns the number of instructions in the unit.
func (u *Unit) Len() int {
	return len(u.instrs)
}

// Program returns the instruction sequence. Call after Link; before linking
// the jump and call operands still hold UnresolvedAddr.
func (u *Unit) Program() vm.Program {
	return u.instrs
}

func (u *Unit) emit(k vm.Kind) *Unit {
	u.instrs = append(u.instrs, vm.Instr{Kind: k})
	return u
}

func (u *Unit) emitArg(k vm.Kind, arg int64) *Unit {
	u.instrs = append(u.instrs, vm.Instr{Kind: k, Arg: arg, HasArg: true})
	return u
}

// Label binds name to the index of the next instruction appended. Binding
// the same name again rebinds it; on Insert, the inserted unit's bindings
// win over the receiver's.
func (u *Unit) Label(name string) *Unit {
	u.labels[name] = len(u.instrs)
	return u
}

// Comment attaches a debug comment line above the next instruction appended.
func (u *Unit) Comment(text string) *Unit {
	at := len(u.instrs)
	if existing, ok := u.comments[at]; ok {
		u.comments[at] = existing + "\n" + text
	} else {
		u.comments[at] = text
	}
	return u
}

// InlineComment attaches a debug comment to the most recently appended
// instruction.
func (u *Unit) InlineComment(text string) *Unit {
	at := len(u.instrs) - 1
	if existing, ok := u.inlineComments[at]; ok {
		u.inlineComments[at] = existing + "; " + text
	} else {
		u.inlineComments[at] = text
	}
	return u
}

// Insert appends the whole content of other at the end of u, rewriting the
// inserted labels, deferred jumps, and comment positions by u's current
// length. Comments landing on the boundary index are merged rather than
// overwritten. The inserted unit is left untouched.
func (u *Unit) Insert(other *Unit) *Unit {
	offset := len(u.instrs)
	for name, addr := range other.labels {
		u.labels[name] = addr + offset
	}
	for addr, name := range other.jumps {
		u.jumps[addr+offset] = name
	}
	for addr, text := range other.comments {
		if merged, ok := u.comments[addr+offset]; ok {
			text = merged + "\n" + text
		}
		u.comments[addr+offset] = text
	}
	for addr, text := range other.inlineComments {
		if merged, ok := u.inlineComments[addr+offset]; ok {
			text = merged + "; " + text
		}
		u.inlineComments[addr+offset] = text
	}
	u.instrs = append(u.instrs, other.instrs...)
	return u
}

// Link resolves every deferred jump against the accumulated label table,
// overwriting each target operand with the label's instruction index minus
// one (the machine increments its program counter before dispatch).
//
// Link runs exactly once, on the fully assembled top-level unit. Sub-units
// carry rebased label names, so linking one before insertion is unsupported.
func (u *Unit) Link() error {
	if u.linked {
		return fmt.Errorf("unit already linked")
	}
	for addr, name := range u.jumps {
		target, ok := u.labels[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownLabel, name)
		}
		in := &u.instrs[addr]
		if !in.Kind.IsJump() {
			return fmt.Errorf("deferred jump at %d is a %s instruction", addr, in.Kind)
		}
		if in.Arg != UnresolvedAddr {
			return fmt.Errorf("deferred jump at %d already resolved", addr)
		}
		in.Arg = int64(target - 1)
	}
	u.linked = true
	return nil
}

// ---------------------------------------------------------------------------
// Instruction appenders
// ---------------------------------------------------------------------------

// Push appends a push of an immediate value.
func (u *Unit) Push(v int64) *Unit { return u.emitArg(vm.Push, v) }

// Pop appends a discard of the stack top.
func (u *Unit) Pop() *Unit { return u.emit(vm.Pop) }

// Dup appends a duplication of the stack top.
func (u *Unit) Dup() *Unit { return u.emit(vm.Dup) }

// Rot appends the rotation that carries a return address past a result.
func (u *Unit) Rot() *Unit { return u.emit(vm.Rot) }

// Load appends a memory load through the address on the stack top.
func (u *Unit) Load() *Unit { return u.emit(vm.Load) }

// Store appends a memory store: address on top, value beneath.
func (u *Unit) Store() *Unit { return u.emit(vm.Store) }

// Add appends an addition. Sub, Shl, Shr, And and Or follow suit.
func (u *Unit) Add() *Unit { return u.emit(vm.Add) }

// Sub appends a subtraction.
func (u *Unit) Sub() *Unit { return u.emit(vm.Sub) }

// Shl appends a left shift.
func (u *Unit) Shl() *Unit { return u.emit(vm.Shl) }

// Shr appends a right shift.
func (u *Unit) Shr() *Unit { return u.emit(vm.Shr) }

// And appends a bitwise and.
func (u *Unit) And() *Unit { return u.emit(vm.And) }

// Or appends a bitwise or.
func (u *Unit) Or() *Unit { return u.emit(vm.Or) }

// Ret appends a subroutine return.
func (u *Unit) Ret() *Unit { return u.emit(vm.Ret) }

// Print appends a pop-and-output.
func (u *Unit) Print() *Unit { return u.emit(vm.Print) }

// Halt appends a machine stop.
func (u *Unit) Halt() *Unit { return u.emit(vm.Halt) }

// Nop appends a no-op.
func (u *Unit) Nop() *Unit { return u.emit(vm.Nop) }

// CallSym appends a call to a symbolic target, deferred until Link.
func (u *Unit) CallSym(name string) *Unit {
	u.jumps[len(u.instrs)] = name
	return u.emitArg(vm.Call, UnresolvedAddr)
}

// Jmp appends an unconditional jump to a symbolic target.
func (u *Unit) Jmp(name string) *Unit {
	u.jumps[len(u.instrs)] = name
	return u.emitArg(vm.Jmp, UnresolvedAddr)
}

// JmpT appends a jump-if-true to a symbolic target.
func (u *Unit) JmpT(name string) *Unit {
	u.jumps[len(u.instrs)] = name
	return u.emitArg(vm.JmpT, UnresolvedAddr)
}

// JmpF appends a jump-if-false to a symbolic target.
func (u *Unit) JmpF(name string) *Unit {
	u.jumps[len(u.instrs)] = name
	return u.emitArg(vm.JmpF, UnresolvedAddr)
}

// ---------------------------------------------------------------------------
// Virtual-stack access helpers
// ---------------------------------------------------------------------------

// LoadTOSPtr leaves TOS - offset on the operand stack.
func (u *Unit) LoadTOSPtr(offset int64) *Unit {
	u.Push(TOSPtrAddr).Load()
	if offset != 0 {
		u.Push(offset).Sub()
	}
	return u
}

// StoreTOSPtr writes the stack top into the TOS pointer cell.
func (u *Unit) StoreTOSPtr() *Unit {
	return u.Push(TOSPtrAddr).Store()
}

// LoadTOS loads the virtual-stack slot at TOS - offset.
func (u *Unit) LoadTOS(offset int64) *Unit {
	return u.LoadTOSPtr(offset).Load().
		InlineComment(fmt.Sprintf("load TOS[%d]", offset))
}

// StoreTOS stores the stack top into the virtual-stack slot at TOS - offset.
func (u *Unit) StoreTOS(offset int64) *Unit {
	return u.LoadTOSPtr(offset).Store().
		InlineComment(fmt.Sprintf("store TOS[%d]", offset))
}

// IncrTOS advances the TOS pointer by a compile-time constant. A zero delta
// emits nothing; the address arithmetic would be dead.
func (u *Unit) IncrTOS(delta int64) *Unit {
	if delta == 0 {
		return u
	}
	return u.LoadTOSPtr(0).Push(delta).Add().StoreTOSPtr().
		InlineComment(fmt.Sprintf("TOS += %d", delta))
}

// DecrTOS retreats the TOS pointer by a compile-time constant, skipping a
// zero delta like IncrTOS.
func (u *Unit) DecrTOS(delta int64) *Unit {
	if delta < 0 {
		panic(fmt.Sprintf("codegen: negative TOS decrement %d", delta))
	}
	if delta == 0 {
		return u
	}
	return u.LoadTOSPtr(0).Push(delta).Sub().StoreTOSPtr().
		InlineComment(fmt.Sprintf("TOS -= %d", delta))
}

// PushTOS commits the stack top into the next free virtual slot and
// advances the TOS pointer.
func (u *Unit) PushTOS() *Unit {
	return u.Comment("push TOS {").StoreTOS(0).IncrTOS(1).Comment("} push TOS")
}

// PopTOS retreats the TOS pointer and loads the exposed slot onto the stack.
func (u *Unit) PopTOS() *Unit {
	return u.Comment("pop TOS {").DecrTOS(1).LoadTOS(0).Comment("} pop TOS")
}

// ---------------------------------------------------------------------------
// Listing
// ---------------------------------------------------------------------------

// Listing returns a human-readable instruction listing annotated with the
// unit's comments. The format is diagnostic only and carries no
// compatibility guarantee.
func (u *Unit) Listing() string {
	var sb strings.Builder
	for i, in := range u.instrs {
		if text, ok := u.comments[i]; ok {
			for _, line := range strings.Split(text, "\n") {
				sb.WriteString(fmt.Sprintf("; %s\n", line))
			}
		}
		arg := ""
		if in.HasArg {
			arg = fmt.Sprintf("%d", in.Arg)
		}
		line := fmt.Sprintf("  %03d %-6s %-4s", i, in.Kind, arg)
		if text, ok := u.inlineComments[i]; ok {
			line = fmt.Sprintf("%s      ; %s", line, text)
		}
		sb.WriteString(strings.TrimRight(line, " "))
		sb.WriteByte('\n')
	}
	if text, ok := u.comments[len(u.instrs)]; ok {
		for _, line := range strings.Split(text, "\n") {
			sb.WriteString(fmt.Sprintf("; %s\n", line))
		}
	}
	return sb.String()
}

// Labels returns the label table sorted by name, for diagnostics.
func (u *Unit) Labels() []string {
	names := make([]string, 0, len(u.labels))
	for name := range u.labels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
