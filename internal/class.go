package internal

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// Role selects the construction behavior of a class.
type Role int

// Class roles.
const (
	// RoleClass is an ordinary class.
	RoleClass Role = iota
	// RoleWidget is a class whose objects receive a hull frame or toplevel
	// before their constructors run.
	RoleWidget
	// RoleWidgetAdaptor is a class whose constructors must install a hull
	// themselves.
	RoleWidgetAdaptor
)

func (r Role) String() string {
	switch r {
	case RoleClass:
		return "class"
	case RoleWidget:
		return "widget"
	case RoleWidgetAdaptor:
		return "widgetadaptor"
	}
	return "role(" + strconv.Itoa(int(r)) + ")"
}

// Flags holds the frame and toplevel flags of a widget class.
type Flags uint8

// Class flags.
const (
	FlagFrame Flags = 1 << iota
	FlagToplevel
)

// Protection is the visibility of a class member.
type Protection int

// Protection levels.
const (
	Public Protection = iota
	Protected
	Private
)

func (p Protection) String() string {
	switch p {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case Private:
		return "private"
	}
	return "protection(" + strconv.Itoa(int(p)) + ")"
}

// MemberKind distinguishes the kinds of functions a class holds.
type MemberKind int

// Function kinds.
const (
	MemberMethod MemberKind = iota
	MemberProc
	MemberConstructor
	MemberDestructor
)

func (k MemberKind) String() string {
	switch k {
	case MemberMethod:
		return "method"
	case MemberProc:
		return "proc"
	case MemberConstructor:
		return "constructor"
	case MemberDestructor:
		return "destructor"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Body is executable code attached to a function or a configuration hook.
type Body interface {
	// Exec runs the body in the given call context and returns its result.
	Exec(c *Call) (string, error)
}

// BodyFunc adapts a Go function to a Body.
type BodyFunc func(c *Call) (string, error)

// Exec calls f(c).
func (f BodyFunc) Exec(c *Call) (string, error) {
	return f(c)
}

// Function is a method, proc, constructor, or destructor of a class.
type Function struct {
	// Name is the simple name of the function. Constructors and destructors
	// are named "constructor" and "destructor".
	Name string
	// Kind is the kind of function.
	Kind MemberKind
	// Protection is the function's visibility.
	Protection Protection
	// Params names the formal arguments. A final "args" collects the rest.
	Params []string
	// Usage is the argument summary reported in error messages. If empty,
	// it is derived from Params.
	Usage string
	// Body is the implementation. A nil body is declared but undefined.
	Body Body

	class   *Class
	builtin bool
}

// Class returns the class that declared f.
func (f *Function) Class() *Class {
	return f.class
}

// FullName returns the fully qualified name of f.
func (f *Function) FullName() string {
	return f.class.Name + "::" + f.Name
}

// Builtin reports whether f was installed by the runtime.
func (f *Function) Builtin() bool {
	return f.builtin
}

// usage returns the argument summary of f.
func (f *Function) usage() string {
	if f.Usage != "" || len(f.Params) == 0 {
		return f.Usage
	}
	args := make([]string, len(f.Params))
	for i, p := range f.Params {
		if p == "args" && i == len(f.Params)-1 {
			args[i] = "?arg arg ...?"
		} else {
			args[i] = p
		}
	}
	return strings.Join(args, " ")
}

// Variable is a per-object variable declared by a class.
type Variable struct {
	// Name is the simple name of the variable.
	Name string
	// Protection is the variable's visibility. Only public variables are
	// configuration options.
	Protection Protection
	// Init is the initial value, valid if HasInit is set.
	Init    string
	HasInit bool
	// Array marks an array variable. Array variables have no scalar value.
	Array bool
	// Hook runs after configure writes the variable. It may be nil.
	Hook Body

	class *Class
}

// Class returns the class that declared v.
func (v *Variable) Class() *Class {
	return v.class
}

// FullName returns the fully qualified name of v.
func (v *Variable) FullName() string {
	return v.class.Name + "::" + v.Name
}

// ComponentSlot declares a named component of a class.
type ComponentSlot struct {
	Name string

	class *Class
}

// Class returns the class that declared s.
func (s *ComponentSlot) Class() *Class {
	return s.class
}

// Class is a class definition.
type Class struct {
	// Name is the fully qualified name of the class, e.g. "::ns::Widget".
	Name string
	// Role is the class role.
	Role Role
	// Flags holds frame and toplevel flags for widget roles.
	Flags Flags

	interp *Interp
	id     uintptr
	bases  []*Class

	functions map[string]*Function
	funcOrder []string
	variables map[string]*Variable
	varOrder  []string
	slots     map[string]*ComponentSlot
	slotOrder []string

	delegates  [delegateKinds]map[string]*Delegation
	delegOrder [delegateKinds][]string

	// Components bound at the class level, for proc delegation.
	classComponents map[string]*Component

	finalized bool

	// Caches valid while gen matches the interpreter's generation.
	gen      uint64
	heritage []*Class
	vtable   map[string]*Function
	vars     map[string]*VarLookup
}

var classIDs uintptr

// NewClass declares a new class with the given name, role, and bases.
// Unqualified names are placed in the global namespace.
func (i *Interp) NewClass(name string, role Role, bases ...*Class) (*Class, error) {
	name = Qualify(name)
	if name == "::" {
		return nil, errorf(KindDeclaration, "invalid class name %q", name)
	}
	if _, ok := i.classes[name]; ok {
		return nil, errorf(KindDeclaration, "class %q already exists", name)
	}
	c := &Class{
		Name:      name,
		Role:      role,
		interp:    i,
		id:        atomic.AddUintptr(&classIDs, 1),
		functions: make(map[string]*Function),
		variables: make(map[string]*Variable),
		slots:     make(map[string]*ComponentSlot),
	}
	for k := range c.delegates {
		c.delegates[k] = make(map[string]*Delegation)
	}
	for _, b := range bases {
		if err := c.Inherit(b); err != nil {
			return nil, err
		}
	}
	i.classes[name] = c
	i.classOrder = append(i.classOrder, name)
	i.touch()
	i.log().Debug("declare class", zapClass(c))
	return c, nil
}

// Interp returns the interpreter that owns c.
func (c *Class) Interp() *Interp {
	return c.interp
}

// UniqueID returns an identifier for c that is unique across interpreters.
func (c *Class) UniqueID() uintptr {
	return c.id
}

// SimpleName returns the last component of c's qualified name.
func (c *Class) SimpleName() string {
	return c.Name[strings.LastIndex(c.Name, "::")+2:]
}

// Bases returns the direct bases of c in declaration order.
func (c *Class) Bases() []*Class {
	return append([]*Class(nil), c.bases...)
}

// Finalized reports whether c has been finalized.
func (c *Class) Finalized() bool {
	return c.finalized
}

// Inherit appends b to the bases of c.
func (c *Class) Inherit(b *Class) error {
	if b == nil {
		return errorf(KindDeclaration, "nil base class for %s", c.Name)
	}
	if b.interp != c.interp {
		return errorf(KindDeclaration, "class %s belongs to another interpreter", b.Name)
	}
	for _, k := range b.Heritage() {
		if k == c {
			return errorf(KindDeclaration, "class %q cannot inherit from itself", c.Name)
		}
	}
	for _, k := range c.bases {
		if k == b {
			return errorf(KindDeclaration, "class %q cannot inherit from %q more than once", c.Name, b.Name)
		}
	}
	c.bases = append(c.bases, b)
	c.interp.touch()
	return nil
}

// AddFunction adds a function to c's table. The function must not already
// belong to a class.
func (c *Class) AddFunction(f *Function) error {
	if f.class != nil {
		return errorf(KindDeclaration, "function %q already belongs to %s", f.Name, f.class.Name)
	}
	switch f.Kind {
	case MemberConstructor:
		f.Name = "constructor"
	case MemberDestructor:
		f.Name = "destructor"
	}
	if f.Name == "" || strings.Contains(f.Name, "::") {
		return errorf(KindDeclaration, "bad function name %q in %s", f.Name, c.Name)
	}
	if _, ok := c.functions[f.Name]; ok {
		return errorf(KindDeclaration, "%q already defined in class %q", f.Name, c.Name)
	}
	if _, ok := c.slots[f.Name]; ok {
		return errorf(KindDeclaration, "%q already defined in class %q", f.Name, c.Name)
	}
	f.class = c
	c.functions[f.Name] = f
	c.funcOrder = append(c.funcOrder, f.Name)
	c.interp.touch()
	return nil
}

// AddVariable adds a variable to c's table. The variable must not already
// belong to a class.
func (c *Class) AddVariable(v *Variable) error {
	if v.class != nil {
		return errorf(KindDeclaration, "variable %q already belongs to %s", v.Name, v.class.Name)
	}
	if v.Name == "" || strings.Contains(v.Name, "::") {
		return errorf(KindDeclaration, "bad variable name %q", v.Name)
	}
	if _, ok := c.variables[v.Name]; ok {
		return errorf(KindDeclaration, "variable name %q already defined in class %q", v.Name, c.Name)
	}
	v.class = c
	c.variables[v.Name] = v
	c.varOrder = append(c.varOrder, v.Name)
	c.interp.touch()
	return nil
}

// AddComponent declares a component slot named name in c.
func (c *Class) AddComponent(name string) (*ComponentSlot, error) {
	if name == "" || strings.Contains(name, "::") {
		return nil, errorf(KindDeclaration, "bad component name %q", name)
	}
	if _, ok := c.slots[name]; ok {
		return nil, errorf(KindDeclaration, "component %q already defined in class %q", name, c.Name)
	}
	s := &ComponentSlot{Name: name, class: c}
	c.slots[name] = s
	c.slotOrder = append(c.slotOrder, name)
	c.interp.touch()
	return s, nil
}

// Function returns the function named name declared directly by c.
func (c *Class) Function(name string) *Function {
	return c.functions[name]
}

// Functions returns the functions declared directly by c in declaration
// order.
func (c *Class) Functions() []*Function {
	r := make([]*Function, len(c.funcOrder))
	for i, name := range c.funcOrder {
		r[i] = c.functions[name]
	}
	return r
}

// Variable returns the variable named name declared directly by c.
func (c *Class) Variable(name string) *Variable {
	return c.variables[name]
}

// Variables returns the variables declared directly by c in declaration
// order.
func (c *Class) Variables() []*Variable {
	r := make([]*Variable, len(c.varOrder))
	for i, name := range c.varOrder {
		r[i] = c.variables[name]
	}
	return r
}

// Component returns the component slot named name declared by c or any of
// its ancestors.
func (c *Class) Component(name string) *ComponentSlot {
	for _, k := range c.Heritage() {
		if s := k.slots[name]; s != nil {
			return s
		}
	}
	return nil
}

// Components returns the component slots declared directly by c.
func (c *Class) Components() []*ComponentSlot {
	r := make([]*ComponentSlot, len(c.slotOrder))
	for i, name := range c.slotOrder {
		r[i] = c.slots[name]
	}
	return r
}

// Isa reports whether c is k or derives from k.
func (c *Class) Isa(k *Class) bool {
	for _, h := range c.Heritage() {
		if h == k {
			return true
		}
	}
	return false
}

// Finalize completes the declaration of c. It applies the widget role,
// installs built-in methods, checks delegations, and rebuilds virtual
// tables. Finalizing twice is a no-op.
func (c *Class) Finalize() error {
	if c.finalized {
		return nil
	}
	if err := c.applyRole(); err != nil {
		return err
	}
	if err := c.checkDelegations(); err != nil {
		return err
	}
	c.InstallBuiltins()
	c.finalized = true
	c.interp.touch()
	c.refresh()
	c.interp.log().Debug("finalize class", zapClass(c))
	return nil
}

// Qualify returns name as a fully qualified namespace path.
func Qualify(name string) string {
	if strings.HasPrefix(name, "::") {
		return name
	}
	return "::" + name
}

// qualNames returns the names by which a member of class c can be
// referenced, from least to most qualified.
func qualNames(c *Class, member string) []string {
	parts := strings.Split(strings.TrimPrefix(c.Name, "::"), "::")
	r := make([]string, 0, len(parts)+2)
	r = append(r, member)
	for i := len(parts) - 1; i >= 0; i-- {
		r = append(r, strings.Join(parts[i:], "::")+"::"+member)
	}
	r = append(r, c.Name+"::"+member)
	return r
}
