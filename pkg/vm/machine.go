package vm

import (
	"fmt"
	"io"
)

// DefaultMaxSteps bounds a single Run. Generated programs terminate, but a
// hand-built or corrupted program may loop; the limit keeps Run total.
const DefaultMaxSteps = 1 << 22

// Machine executes a Program. It owns an operand stack and a word-addressed
// memory; address 0 holds the virtual-stack pointer by convention, but the
// machine itself treats all addresses uniformly.
type Machine struct {
	stack    []int64
	mem      []int64
	out      io.Writer
	maxSteps int
}

// NewMachine creates a machine writing Print output to out.
func NewMachine(out io.Writer) *Machine {
	return &Machine{
		stack:    make([]int64, 0, 64),
		mem:      make([]int64, 64),
		out:      out,
		maxSteps: DefaultMaxSteps,
	}
}

// SetMaxSteps overrides the execution step limit. Values below 1 are ignored.
func (m *Machine) SetMaxSteps(n int) {
	if n >= 1 {
		m.maxSteps = n
	}
}

func (m *Machine) push(v int64) {
	m.stack = append(m.stack, v)
}

func (m *Machine) pop() (int64, error) {
	if len(m.stack) == 0 {
		return 0, fmt.Errorf("stack underflow")
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

// popPair pops the right then the left operand of a binary instruction.
func (m *Machine) popPair() (left, right int64, err error) {
	if right, err = m.pop(); err != nil {
		return 0, 0, err
	}
	if left, err = m.pop(); err != nil {
		return 0, 0, err
	}
	return left, right, nil
}

func (m *Machine) load(addr int64) (int64, error) {
	if addr < 0 {
		return 0, fmt.Errorf("load from negative address %d", addr)
	}
	if addr >= int64(len(m.mem)) {
		return 0, nil
	}
	return m.mem[addr], nil
}

func (m *Machine) store(addr, v int64) error {
	if addr < 0 {
		return fmt.Errorf("store to negative address %d", addr)
	}
	for addr >= int64(len(m.mem)) {
		m.mem = append(m.mem, make([]int64, len(m.mem))...)
	}
	m.mem[addr] = v
	return nil
}

// Run executes prog from its first instruction until a Halt, returning the
// exit value. The program counter is incremented before dispatch, so jump
// and call operands hold the target index minus one.
func (m *Machine) Run(prog Program) (int64, error) {
	pc := -1
	for steps := 0; steps < m.maxSteps; steps++ {
		pc++
		if pc < 0 || pc >= len(prog) {
			return 0, fmt.Errorf("program counter %d out of range (%d instructions)", pc, len(prog))
		}
		in := prog[pc]
		switch in.Kind {
		case Push:
			if !in.HasArg {
				return 0, fmt.Errorf("at %d: Push without operand", pc)
			}
			m.push(in.Arg)
		case Pop:
			if _, err := m.pop(); err != nil {
				return 0, fmt.Errorf("at %d: %w", pc, err)
			}
		case Dup:
			if len(m.stack) == 0 {
				return 0, fmt.Errorf("at %d: stack underflow", pc)
			}
			m.push(m.stack[len(m.stack)-1])
		case Rot:
			if len(m.stack) < 2 {
				return 0, fmt.Errorf("at %d: stack underflow", pc)
			}
			n := len(m.stack)
			m.stack[n-1], m.stack[n-2] = m.stack[n-2], m.stack[n-1]
		case Load:
			addr, err := m.pop()
			if err != nil {
				return 0, fmt.Errorf("at %d: %w", pc, err)
			}
			v, err := m.load(addr)
			if err != nil {
				return 0, fmt.Errorf("at %d: %w", pc, err)
			}
			m.push(v)
		case Store:
			addr, err := m.pop()
			if err != nil {
				return 0, fmt.Errorf("at %d: %w", pc, err)
			}
			v, err := m.pop()
			if err != nil {
				return 0, fmt.Errorf("at %d: %w", pc, err)
			}
			if err := m.store(addr, v); err != nil {
				return 0, fmt.Errorf("at %d: %w", pc, err)
			}
		case Add, Sub, Shl, Shr, And, Or:
			left, right, err := m.popPair()
			if err != nil {
				return 0, fmt.Errorf("at %d: %w", pc, err)
			}
			v, err := binaryOp(in.Kind, left, right)
			if err != nil {
				return 0, fmt.Errorf("at %d: %w", pc, err)
			}
			m.push(v)
		case Call:
			m.push(int64(pc))
			pc = int(in.Arg)
		case Ret:
			addr, err := m.pop()
			if err != nil {
				return 0, fmt.Errorf("at %d: %w", pc, err)
			}
			pc = int(addr)
		case Jmp:
			pc = int(in.Arg)
		case JmpT:
			cond, err := m.pop()
			if err != nil {
				return 0, fmt.Errorf("at %d: %w", pc, err)
			}
			if cond != 0 {
				pc = int(in.Arg)
			}
		case JmpF:
			cond, err := m.pop()
			if err != nil {
				return 0, fmt.Errorf("at %d: %w", pc, err)
			}
			if cond == 0 {
				pc = int(in.Arg)
			}
		case Print:
			v, err := m.pop()
			if err != nil {
				return 0, fmt.Errorf("at %d: %w", pc, err)
			}
			if _, err := fmt.Fprintln(m.out, v); err != nil {
				return 0, fmt.Errorf("at %d: print: %w", pc, err)
			}
		case Halt:
			if in.HasArg {
				return in.Arg, nil
			}
			if len(m.stack) > 0 {
				v, _ := m.pop()
				return v, nil
			}
			return 0, nil
		case Nop:
			// nothing
		default:
			return 0, fmt.Errorf("at %d: unknown instruction kind %d", pc, in.Kind)
		}
	}
	return 0, fmt.Errorf("execution exceeded %d steps", m.maxSteps)
}

func binaryOp(k Kind, left, right int64) (int64, error) {
	switch k {
	case Add:
		return left + right, nil
	case Sub:
		return left - right, nil
	case Shl, Shr:
		if right < 0 {
			return 0, fmt.Errorf("negative shift count %d", right)
		}
		if right > 63 {
			return 0, nil
		}
		if k == Shl {
			return left << uint(right), nil
		}
		return left >> uint(right), nil
	case And:
		return left & right, nil
	case Or:
		return left | right, nil
	}
	return 0, fmt.Errorf("not a binary op: %s", k)
}
