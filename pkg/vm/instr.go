package vm

import "fmt"

// ---------------------------------------------------------------------------
// Instruction set for the Timber abstract machine
// ---------------------------------------------------------------------------

// Kind identifies an abstract machine instruction.
type Kind uint8

const (
	// Stack manipulation
	Push Kind = iota // Push <imm>: push immediate onto the operand stack
	Pop              // discard top of stack
	Dup              // duplicate top of stack
	Rot              // exchange the two values atop the stack (result and return address)

	// Memory access
	Load  // pop address, push value at address
	Store // pop address then value, write value to address

	// Arithmetic / bitwise: pop right then left, push left OP right
	Add
	Sub
	Shl
	Shr
	And
	Or

	// Control transfer. Operands are resolved instruction addresses,
	// encoded as target index minus one: the machine increments the
	// program counter before dispatch.
	Call // push return address, jump
	Ret  // pop return address, jump to it
	Jmp  // unconditional jump
	JmpT // pop condition, jump if non-zero
	JmpF // pop condition, jump if zero

	// I/O and termination
	Print // pop and output value
	Halt  // stop execution; exit value popped from the stack if present

	// Debugging
	Nop // no effect
)

var kindNames = map[Kind]string{
	Push:  "Push",
	Pop:   "Pop",
	Dup:   "Dup",
	Rot:   "Rot",
	Load:  "Load",
	Store: "Store",
	Add:   "Add",
	Sub:   "Sub",
	Shl:   "Shl",
	Shr:   "Shr",
	And:   "And",
	Or:    "Or",
	Call:  "Call",
	Ret:   "Ret",
	Jmp:   "Jmp",
	JmpT:  "JmpT",
	JmpF:  "JmpF",
	Print: "Print",
	Halt:  "Halt",
	Nop:   "Nop",
}

// String implements the Stringer interface.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsJump reports whether the kind carries a jump or call target operand.
func (k Kind) IsJump() bool {
	switch k {
	case Call, Jmp, JmpT, JmpF:
		return true
	}
	return false
}

// Instr is a single abstract machine instruction: a kind plus an optional
// immediate operand.
type Instr struct {
	Kind   Kind
	Arg    int64
	HasArg bool
}

// String implements the Stringer interface.
func (i Instr) String() string {
	if i.HasArg {
		return fmt.Sprintf("%s %d", i.Kind, i.Arg)
	}
	return i.Kind.String()
}

// Program is an ordered, index-addressable instruction sequence; the sole
// unit of compiler output.
type Program []Instr
