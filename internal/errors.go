package internal

import (
	"fmt"
	"strings"
)

// Kind categorizes a runtime error.
type Kind string

// Error kinds.
const (
	// KindContext indicates a built-in invoked outside a live object, or
	// chain invoked outside a method body.
	KindContext Kind = "context"
	// KindUsage indicates a wrong argument count or shape.
	KindUsage Kind = "usage"
	// KindUnknownOption indicates a name that does not resolve to a public
	// variable or delegated option.
	KindUnknownOption Kind = "unknown_option"
	// KindMissingValue indicates a trailing option with no value in a bulk
	// configure.
	KindMissingValue Kind = "missing_value"
	// KindHook indicates a failed configuration hook. The written value has
	// been rolled back.
	KindHook Kind = "hook"
	// KindUnresolvedClass indicates a class name that could not be found,
	// even after an attempted lazy load.
	KindUnresolvedClass Kind = "unresolved_class"
	// KindUnknownMethod indicates a method name that neither the virtual
	// table nor any delegation can serve.
	KindUnknownMethod Kind = "unknown_method"
	// KindAccess indicates a call to a protected or private member from a
	// context that cannot see it.
	KindAccess Kind = "access"
	// KindDeclaration indicates an inconsistent class declaration.
	KindDeclaration Kind = "declaration"
)

// Error is the error type produced by the object runtime.
type Error struct {
	// Cause is the underlying error, if any. For hook errors, it is the
	// hook's own failure.
	Cause error
	// Kind is the category of the error.
	Kind Kind
	// Detail is the human-readable message.
	Detail string
	// Option is the fully qualified name of the public variable whose
	// configuration failed, if any.
	Option string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	switch {
	case e.Detail != "":
		b.WriteString(e.Detail)
		if e.Cause != nil {
			b.WriteString(": ")
			b.WriteString(e.Cause.Error())
		}
	case e.Cause != nil:
		b.WriteString(e.Cause.Error())
	default:
		b.WriteString(string(e.Kind))
	}
	if e.Option != "" {
		b.WriteString("\n    (error in configuration of public variable \"")
		b.WriteString(e.Option)
		b.WriteString("\")")
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinel errors for use with errors.Is.
var (
	ErrContext         = &Error{Kind: KindContext}
	ErrUsage           = &Error{Kind: KindUsage}
	ErrUnknownOption   = &Error{Kind: KindUnknownOption}
	ErrMissingValue    = &Error{Kind: KindMissingValue}
	ErrHook            = &Error{Kind: KindHook}
	ErrUnresolvedClass = &Error{Kind: KindUnresolvedClass}
	ErrUnknownMethod   = &Error{Kind: KindUnknownMethod}
	ErrAccess          = &Error{Kind: KindAccess}
	ErrDeclaration     = &Error{Kind: KindDeclaration}
)

// errorf creates an *Error of the given kind with a formatted detail.
func errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// unknownOption creates the error for an option name that does not resolve.
func unknownOption(name string) *Error {
	return errorf(KindUnknownOption, "unknown option %q", name)
}
