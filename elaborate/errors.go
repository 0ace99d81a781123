// ----------------------------------------------------------------------------
// FILE: elaborate/errors.go
// ----------------------------------------------------------------------------
package elaborate

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/amoghasbhardwaj/langfront/token"
)

// SemKind is the closed SemanticError taxonomy (spec §7) — faults the
// Elaborator detects that are not plain "name not found" resolution
// failures (those are reported as symtab.Error instead).
type SemKind int

const (
	NotAType SemKind = iota
	NotAnExpr
	NotACtor
	CtorArityMismatch
	InvalidProjection
	DuplicateBinding
)

type Error struct {
	Kind SemKind
	Msg  string
	Span token.Span
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s", e.Msg, e.Span)
}

func newSemError(kind SemKind, span token.Span, msg string) error {
	return errors.WithStack(&Error{Kind: kind, Msg: msg, Span: span})
}
