package codegen

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/nlsfnr/timber/pkg/vm"
)

func TestUnitInsertRewritesOffsets(t *testing.T) {
	callee := NewUnit()
	callee.Label("target").Push(1).Ret()

	caller := NewUnit()
	caller.CallSym("target").Halt()
	caller.Insert(callee)

	if err := caller.Link(); err != nil {
		t.Fatalf("Link: %v", err)
	}
	prog := caller.Program()
	// "target" lands at index 2 after insertion; the call operand is the
	// target index minus one.
	if got := prog[0].Arg; got != 1 {
		t.Errorf("call operand = %d, want 1", got)
	}
}

func TestUnitInsertLeavesSourceUntouched(t *testing.T) {
	src := NewUnit()
	src.Label("l").Push(1)

	dst := NewUnit()
	dst.Nop().Nop().Insert(src)

	if src.Len() != 1 {
		t.Errorf("source grew to %d instructions", src.Len())
	}
	if err := src.Jmp("l").Link(); err != nil {
		t.Errorf("source label moved: %v", err)
	}
}

func TestUnitInsertLaterLabelWins(t *testing.T) {
	a := NewUnit()
	a.Label("main").Push(1).Halt()

	b := NewUnit()
	b.Label("main").Push(2).Halt()

	top := NewUnit()
	top.Jmp("main").Insert(a).Insert(b)
	if err := top.Link(); err != nil {
		t.Fatalf("Link: %v", err)
	}

	got, err := vm.NewMachine(nil).Run(top.Program())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != 2 {
		t.Errorf("jumped to first binding: got %d, want 2", got)
	}
}

func TestUnitCommentsMergeAtBoundary(t *testing.T) {
	a := NewUnit()
	a.Push(1).Comment("tail of a")

	b := NewUnit()
	b.Comment("head of b").Push(2)

	a.Insert(b)
	listing := a.Listing()
	if !strings.Contains(listing, "tail of a") || !strings.Contains(listing, "head of b") {
		t.Errorf("boundary comment lost:\n%s", listing)
	}
}

func TestUnitInlineCommentsMerge(t *testing.T) {
	u := NewUnit()
	u.Push(1).InlineComment("first").InlineComment("second")
	if !strings.Contains(u.Listing(), "first; second") {
		t.Errorf("inline comments not merged:\n%s", u.Listing())
	}
}

func TestUnitLinkUnknownLabel(t *testing.T) {
	u := NewUnit()
	u.Jmp("nowhere").Halt()
	if err := u.Link(); !errors.Is(err, ErrUnknownLabel) {
		t.Errorf("got %v, want ErrUnknownLabel", err)
	}
}

func TestUnitLinkOnce(t *testing.T) {
	u := NewUnit()
	u.Label("end").Halt()
	if err := u.Link(); err != nil {
		t.Fatalf("first Link: %v", err)
	}
	if err := u.Link(); err == nil {
		t.Error("second Link succeeded, want error")
	}
}

func TestUnitTOSHelpers(t *testing.T) {
	// Initialize TOS to 10, push two values through the virtual stack,
	// pop them back in LIFO order, and subtract.
	u := NewUnit()
	u.Push(10).StoreTOSPtr()
	u.Push(7).PushTOS()
	u.Push(3).PushTOS()
	u.PopTOS() // 3
	u.PopTOS() // 7
	u.Sub()    // 3 - 7
	u.Halt()
	if err := u.Link(); err != nil {
		t.Fatalf("Link: %v", err)
	}
	got, err := vm.NewMachine(nil).Run(u.Program())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != -4 {
		t.Errorf("got %d, want -4", got)
	}
}

func TestUnitLabels(t *testing.T) {
	u := NewUnit()
	u.Label("zz").Nop().Label("aa").Nop()

	sub := NewUnit()
	sub.Label("mm").Nop()
	u.Insert(sub)

	if got := u.Labels(); !reflect.DeepEqual(got, []string{"aa", "mm", "zz"}) {
		t.Errorf("Labels = %v, want sorted [aa mm zz]", got)
	}
}

func TestUnitZeroDeltaEmitsNothing(t *testing.T) {
	u := NewUnit()
	u.IncrTOS(0).DecrTOS(0)
	if u.Len() != 0 {
		t.Errorf("zero delta emitted %d instructions", u.Len())
	}
}
