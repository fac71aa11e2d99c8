package codegen

import "errors"

// The two fatal compilation error kinds, plus redeclaration. All abort
// generation immediately with the offending name attached; match them with
// errors.Is.
var (
	// ErrUnknownIdentifier: a variable name has no binding in any active scope.
	ErrUnknownIdentifier = errors.New("unknown identifier")

	// ErrUnknownLabel: a jump or call targets a name that was never labeled.
	// Detected at link time, not at emission time.
	ErrUnknownLabel = errors.New("unknown label")

	// ErrRedeclared: a name was declared twice in the same scope frame.
	// Shadowing an outer frame is legal; redeclaration within one is not.
	ErrRedeclared = errors.New("redeclared in this scope")
)
