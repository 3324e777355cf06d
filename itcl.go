package itcl

import (
	"go.uber.org/zap"

	"github.com/zephyrtronium/itcl/internal"
)

// An Interp holds classes, objects, and the execution context stack.
type Interp = internal.Interp

// A Class is a class definition.
type Class = internal.Class

// An Object is an instance of a class.
//
// Always use Interp.New to obtain objects. Creating objects directly will
// result in arbitrary failures.
type Object = internal.Object

// A Function is a method, proc, constructor, or destructor.
type Function = internal.Function

// A Variable is a per-object variable declared by a class.
type Variable = internal.Variable

// A ComponentSlot declares a named component of a class.
type ComponentSlot = internal.ComponentSlot

// A Component is a proxy for a handle bound to a component slot.
type Component = internal.Component

// A Delegation forwards a method, proc, or option to a component.
type Delegation = internal.Delegation

// A Handle is an external command-bearing resource.
type Handle = internal.Handle

// OptionDefaulter is implemented by handles that report option defaults.
type OptionDefaulter = internal.OptionDefaulter

// OptionLister is implemented by handles that list their options.
type OptionLister = internal.OptionLister

// A Call is an execution context.
type Call = internal.Call

// A Body is executable code attached to a function or configuration hook.
type Body = internal.Body

// BodyFunc adapts a Go function to a Body.
type BodyFunc = internal.BodyFunc

// A CommandFunc is a host command callable through Interp.Exec.
type CommandFunc = internal.CommandFunc

// A Loader lazily declares classes by name.
type Loader = internal.Loader

// LoaderFunc adapts a function to a Loader.
type LoaderFunc = internal.LoaderFunc

// Loaders consults each loader in order.
type Loaders = internal.Loaders

// A DefaultSource supplies option defaults.
type DefaultSource = internal.DefaultSource

// A HullFactory creates widget hulls.
type HullFactory = internal.HullFactory

// WidgetConfigureFunc replaces configure and cget for widget objects.
type WidgetConfigureFunc = internal.WidgetConfigureFunc

// OptionInfo describes one configuration option.
type OptionInfo = internal.OptionInfo

// VarLookup records how a variable name resolves from a class.
type VarLookup = internal.VarLookup

// Error is the error type produced by the runtime.
type Error = internal.Error

// Kind categorizes errors.
type Kind = internal.Kind

// Enumerations.
type (
	Role         = internal.Role
	Flags        = internal.Flags
	Protection   = internal.Protection
	MemberKind   = internal.MemberKind
	DelegateKind = internal.DelegateKind
	HullKind     = internal.HullKind
)

// Class roles.
const (
	RoleClass         = internal.RoleClass
	RoleWidget        = internal.RoleWidget
	RoleWidgetAdaptor = internal.RoleWidgetAdaptor
)

// Class flags.
const (
	FlagFrame    = internal.FlagFrame
	FlagToplevel = internal.FlagToplevel
)

// Protection levels.
const (
	Public    = internal.Public
	Protected = internal.Protected
	Private   = internal.Private
)

// Function kinds.
const (
	MemberMethod      = internal.MemberMethod
	MemberProc        = internal.MemberProc
	MemberConstructor = internal.MemberConstructor
	MemberDestructor  = internal.MemberDestructor
)

// Delegation kinds.
const (
	DelegateMethod = internal.DelegateMethod
	DelegateProc   = internal.DelegateProc
	DelegateOption = internal.DelegateOption
)

// Hull kinds.
const (
	HullFrame    = internal.HullFrame
	HullToplevel = internal.HullToplevel
)

// Error kinds.
const (
	KindContext         = internal.KindContext
	KindUsage           = internal.KindUsage
	KindUnknownOption   = internal.KindUnknownOption
	KindMissingValue    = internal.KindMissingValue
	KindHook            = internal.KindHook
	KindUnresolvedClass = internal.KindUnresolvedClass
	KindUnknownMethod   = internal.KindUnknownMethod
	KindAccess          = internal.KindAccess
	KindDeclaration     = internal.KindDeclaration
)

// Sentinel errors for use with errors.Is.
var (
	ErrContext         = internal.ErrContext
	ErrUsage           = internal.ErrUsage
	ErrUnknownOption   = internal.ErrUnknownOption
	ErrMissingValue    = internal.ErrMissingValue
	ErrHook            = internal.ErrHook
	ErrUnresolvedClass = internal.ErrUnresolvedClass
	ErrUnknownMethod   = internal.ErrUnknownMethod
	ErrAccess          = internal.ErrAccess
	ErrDeclaration     = internal.ErrDeclaration
)

// Placeholder is reported for options with no value.
const Placeholder = internal.Placeholder

// Names of the members widget roles insert.
const (
	HullComponent  = internal.HullComponent
	OptionsVarName = internal.OptionsVarName
)

// NewInterp creates an interpreter and runs all registered extensions on it.
func NewInterp() *Interp {
	return internal.NewInterp()
}

// Register registers an interpreter extension. Register should be called from
// within init funcs. Panics if NewInterp has been called.
func Register(f func(*Interp)) {
	internal.Register(f)
}

// Logger returns the package logger.
func Logger() *zap.Logger {
	return internal.Logger()
}

// SetLogger replaces the package logger.
func SetLogger(l *zap.Logger) {
	internal.SetLogger(l)
}

// Qualify returns name as a fully qualified namespace path.
func Qualify(name string) string {
	return internal.Qualify(name)
}

// FormatList formats elems as a list.
func FormatList(elems ...string) string {
	return internal.FormatList(elems...)
}

// SplitList splits a list into its elements.
func SplitList(s string) ([]string, error) {
	return internal.SplitList(s)
}
