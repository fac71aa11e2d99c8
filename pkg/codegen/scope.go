package codegen

import "fmt"

// ---------------------------------------------------------------------------
// Lexical scope resolver
// ---------------------------------------------------------------------------

// Scope maps variable names to frame-relative virtual-stack slots. It is a
// stack of frames mirroring the AST's block nesting: a frame is pushed when
// a block, loop guard, loop body, or function body is entered and popped on
// exit. Lookup walks frames innermost to outermost, so inner declarations
// shadow outer ones.
//
// A slot index is the live depth at declaration time plus one. Frames do
// not renumber on pop, so within one frame stack indices only grow; sibling
// frames entered after a pop reuse the retired indices, which is what lets
// the frame size analyzer take the maximum over disjoint nested scopes.
type Scope struct {
	frames []map[string]int
}

// NewScope creates an empty resolver with no frames. A frame must be pushed
// before any declaration.
func NewScope() *Scope {
	return &Scope{}
}

// Push opens a new innermost frame.
func (s *Scope) Push() {
	s.frames = append(s.frames, map[string]int{})
}

// Pop closes the innermost frame; its bindings become unreachable.
func (s *Scope) Pop() {
	if len(s.frames) == 0 {
		panic("codegen: pop on empty scope stack")
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// Depth returns the number of live bindings across all frames.
func (s *Scope) Depth() int {
	n := 0
	for _, f := range s.frames {
		n += len(f)
	}
	return n
}

// Add binds each name, in order, to the next depth-derived slot in the
// innermost frame. Redeclaring a name bound in that exact frame fails.
func (s *Scope) Add(names ...string) error {
	if len(s.frames) == 0 {
		panic("codegen: add on empty scope stack")
	}
	top := s.frames[len(s.frames)-1]
	for _, name := range names {
		if _, exists := top[name]; exists {
			return fmt.Errorf("%q %w", name, ErrRedeclared)
		}
		top[name] = s.Depth() + 1
	}
	return nil
}

// Get resolves a name to its slot index, innermost frame first.
func (s *Scope) Get(name string) (int, error) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if slot, ok := s.frames[i][name]; ok {
			return slot, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownIdentifier, name)
}
