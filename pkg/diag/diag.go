// Package diag defines the error taxonomy shared by every compilation stage.
//
// All failures are local and synchronous: they abort compilation of the
// current file and carry the source position of the offending statement.
// Use errors.Is with the sentinel errors below to classify them.
package diag

import (
	"errors"
	"fmt"

	"github.com/zurustar/mccompiled/pkg/compiler/token"
)

// Kind classifies a compilation error.
type Kind int

const (
	KindUnknown Kind = iota
	KindSyntax
	KindUndefined
	KindAttributeMisuse
	KindParameterBinding
	KindTypeConversion
	KindBindingTarget
	KindSchedulingConflict
)

// Sentinel errors, one per Kind.
var (
	ErrUnknown            = errors.New("error")
	ErrSyntax             = errors.New("syntax error")
	ErrUndefined          = errors.New("undefined name")
	ErrAttributeMisuse    = errors.New("attribute misuse")
	ErrParameterBinding   = errors.New("parameter binding")
	ErrTypeConversion     = errors.New("type conversion")
	ErrBindingTarget      = errors.New("binding target")
	ErrSchedulingConflict = errors.New("scheduling conflict")
)

var sentinels = map[Kind]error{
	KindUnknown:            ErrUnknown,
	KindSyntax:             ErrSyntax,
	KindUndefined:          ErrUndefined,
	KindAttributeMisuse:    ErrAttributeMisuse,
	KindParameterBinding:   ErrParameterBinding,
	KindTypeConversion:     ErrTypeConversion,
	KindBindingTarget:      ErrBindingTarget,
	KindSchedulingConflict: ErrSchedulingConflict,
}

// String returns the human readable name of the kind.
func (k Kind) String() string {
	if err, ok := sentinels[k]; ok {
		return err.Error()
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a statement-scoped compilation error.
type Error struct {
	Kind    Kind
	Pos     token.Position // zero when not yet attached to a statement
	Message string
	Err     error // optional cause
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%s at line %d, column %d: %s", e.Kind, e.Pos.Line, e.Pos.Column, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the error's kind.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// Errorf creates an error of the given kind without a position.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ErrorAt creates an error of the given kind at pos.
func ErrorAt(kind Kind, pos token.Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind and message to a cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// At attaches pos to err. Errors that already carry a position keep it;
// foreign errors are wrapped as KindUnknown.
func At(pos token.Position, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		if de.Pos.Line > 0 {
			return err
		}
		cp := *de
		cp.Pos = pos
		return &cp
	}
	return &Error{Kind: KindUnknown, Pos: pos, Err: err}
}

// KindOf returns the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// PositionOf returns the position carried by err, if any.
func PositionOf(err error) (token.Position, bool) {
	var de *Error
	if errors.As(err, &de) && de.Pos.Line > 0 {
		return de.Pos, true
	}
	return token.Position{}, false
}
