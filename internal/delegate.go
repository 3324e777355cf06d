package internal

import (
	"strings"

	"go.uber.org/zap"
)

// DelegateKind is the kind of name a delegation forwards.
type DelegateKind int

// Delegation kinds.
const (
	DelegateMethod DelegateKind = iota
	DelegateProc
	DelegateOption

	delegateKinds
)

func (k DelegateKind) String() string {
	switch k {
	case DelegateMethod:
		return "method"
	case DelegateProc:
		return "proc"
	case DelegateOption:
		return "option"
	}
	return "delegation"
}

// Delegation forwards a method, proc, or option to a component.
type Delegation struct {
	// Kind is the kind of name forwarded.
	Kind DelegateKind
	// Name is the forwarded name, or "*" for every name not otherwise
	// defined. Option names may carry a leading dash.
	Name string
	// Component is the slot name of the target. If empty, the target is
	// resolved when the call is made, and Using is required.
	Component string
	// As renames the forwarded call. For methods, it may be several words.
	As []string
	// Using is a command template. Its words are expanded with %% for a
	// percent sign, %c for the component identity, %m for the forwarded
	// method name, %n and %s for the object name, and %t for the class name.
	// Caller arguments follow the expanded words.
	Using string
	// Except lists names a wildcard delegation does not forward.
	Except []string

	class  *Class
	except map[string]bool
}

// Class returns the class that declared d.
func (d *Delegation) Class() *Class {
	return d.class
}

// Excepts reports whether a wildcard delegation excludes name.
func (d *Delegation) Excepts(name string) bool {
	return d.except[name]
}

// target returns the forwarded name for name.
func (d *Delegation) target(name string) string {
	if len(d.As) > 0 {
		return strings.Join(d.As, " ")
	}
	return name
}

// Delegate adds a delegation to c.
func (c *Class) Delegate(d *Delegation) error {
	if d.class != nil {
		return errorf(KindDeclaration, "delegation %q already belongs to %s", d.Name, d.class.Name)
	}
	if d.Kind < 0 || d.Kind >= delegateKinds {
		return errorf(KindDeclaration, "bad delegation kind %d", int(d.Kind))
	}
	if d.Kind == DelegateOption {
		d.Name = strings.TrimPrefix(d.Name, "-")
		for i, as := range d.As {
			d.As[i] = strings.TrimPrefix(as, "-")
		}
		for i, ex := range d.Except {
			d.Except[i] = strings.TrimPrefix(ex, "-")
		}
		if len(d.As) > 1 {
			return errorf(KindDeclaration, "option %q can be delegated as only one option", d.Name)
		}
	}
	switch {
	case d.Name == "":
		return errorf(KindDeclaration, "empty delegated %s name in %s", d.Kind, c.Name)
	case d.Name == "*" && len(d.As) > 0:
		return errorf(KindDeclaration, "cannot use \"as\" with \"*\" in %s", c.Name)
	case d.Name != "*" && len(d.Except) > 0:
		return errorf(KindDeclaration, "can only use \"except\" with \"*\" in %s", c.Name)
	}
	if _, ok := c.delegates[d.Kind][d.Name]; ok {
		return errorf(KindDeclaration, "%s %q is already delegated in %s", d.Kind, d.Name, c.Name)
	}
	if d.Kind != DelegateOption && d.Name != "*" {
		if _, ok := c.functions[d.Name]; ok {
			return errorf(KindDeclaration, "cannot delegate %s %q: already defined in %s", d.Kind, d.Name, c.Name)
		}
	}
	if c.finalized {
		if err := c.checkDelegation(d); err != nil {
			return err
		}
	}
	d.except = make(map[string]bool, len(d.Except))
	for _, ex := range d.Except {
		d.except[ex] = true
	}
	d.class = c
	c.delegates[d.Kind][d.Name] = d
	c.delegOrder[d.Kind] = append(c.delegOrder[d.Kind], d.Name)
	c.interp.touch()
	return nil
}

// Delegations returns the delegations of the given kind declared directly by
// c, in declaration order.
func (c *Class) Delegations(kind DelegateKind) []*Delegation {
	r := make([]*Delegation, len(c.delegOrder[kind]))
	for i, name := range c.delegOrder[kind] {
		r[i] = c.delegates[kind][name]
	}
	return r
}

// checkDelegations verifies that every delegation of c has a target.
func (c *Class) checkDelegations() error {
	for kind := DelegateKind(0); kind < delegateKinds; kind++ {
		for _, d := range c.Delegations(kind) {
			if err := c.checkDelegation(d); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkDelegation verifies that d names a declared component or, for methods
// and procs, carries a using template.
func (c *Class) checkDelegation(d *Delegation) error {
	if d.Component == "" {
		if d.Kind == DelegateOption {
			return errorf(KindDeclaration, "option %q in %s must be delegated to a component", d.Name, c.Name)
		}
		if d.Using == "" {
			return errorf(KindDeclaration, "%s %q in %s has no component and no \"using\" template", d.Kind, d.Name, c.Name)
		}
		return nil
	}
	if c.Component(d.Component) == nil {
		return errorf(KindDeclaration, "cannot delegate %s %q to undefined component %q in %s", d.Kind, d.Name, d.Component, c.Name)
	}
	return nil
}

// delegation finds the delegation of kind that serves name. Exact specs
// anywhere in the hierarchy take precedence over wildcard specs. The most
// specific wildcard decides; if it excepts name, nothing is delegated.
func (c *Class) delegation(kind DelegateKind, name string) *Delegation {
	if name == "*" {
		return nil
	}
	h := c.Heritage()
	for _, k := range h {
		if d := k.delegates[kind][name]; d != nil {
			return d
		}
	}
	for _, k := range h {
		if d := k.delegates[kind]["*"]; d != nil {
			if d.except[name] {
				return nil
			}
			return d
		}
	}
	return nil
}

// optionDelegations returns the exact and wildcard option delegations
// reachable from c, most specific first, without duplicate names. If comp
// is not empty, only delegations to that component are returned.
func (c *Class) optionDelegations(comp string) []*Delegation {
	var r []*Delegation
	seen := make(map[string]bool)
	for _, k := range c.Heritage() {
		for _, name := range k.delegOrder[DelegateOption] {
			if seen[name] {
				continue
			}
			seen[name] = true
			d := k.delegates[DelegateOption][name]
			if comp == "" || d.Component == comp {
				r = append(r, d)
			}
		}
	}
	return r
}

// expand builds the forwarded command words for a call of name. Using takes
// precedence over As; when both are present, As supplies %m.
func (d *Delegation) expand(name, identity, self, class string, args []string) []string {
	target := d.As
	if len(target) == 0 {
		target = []string{name}
	}
	var out []string
	if d.Using == "" {
		out = make([]string, 0, len(target)+len(args))
		out = append(out, target...)
		return append(out, args...)
	}
	words := strings.Fields(d.Using)
	out = make([]string, 0, len(words)+len(args))
	for _, w := range words {
		if w == "%m" {
			out = append(out, target...)
			continue
		}
		out = append(out, substitute(w, identity, strings.Join(target, " "), self, class))
	}
	return append(out, args...)
}

// substitute expands percent sequences in one template word.
func substitute(w, c, m, s, t string) string {
	if !strings.Contains(w, "%") {
		return w
	}
	var b strings.Builder
	for i := 0; i < len(w); i++ {
		if w[i] != '%' || i == len(w)-1 {
			b.WriteByte(w[i])
			continue
		}
		i++
		switch w[i] {
		case '%':
			b.WriteByte('%')
		case 'c':
			b.WriteString(c)
		case 'm':
			b.WriteString(m)
		case 'n', 's':
			b.WriteString(s)
		case 't':
			b.WriteString(t)
		default:
			b.WriteByte('%')
			b.WriteByte(w[i])
		}
	}
	return b.String()
}

// forward runs a delegated method call.
func (o *Object) forward(d *Delegation, name string, args []string) (string, error) {
	var comp *Component
	if d.Component != "" {
		comp = o.components[d.Component]
		if comp == nil {
			return "", errorf(KindUsage, "component %q is not installed in %q", d.Component, o.name)
		}
	}
	argv := d.expand(name, comp.Identity(), o.name, o.class.Name, args)
	o.interp.log().Debug("delegate method",
		zap.String("object", o.name),
		zap.String("method", name),
		zap.Strings("argv", argv),
	)
	if d.Using == "" {
		if comp == nil {
			return "", errorf(KindUsage, "method %q of %q has no component and no \"using\" template", name, o.name)
		}
		return comp.Invoke(argv...)
	}
	return o.interp.Exec(argv...)
}

// forwardProc runs a delegated proc call.
func (c *Class) forwardProc(d *Delegation, name string, args []string) (string, error) {
	var comp *Component
	if d.Component != "" {
		comp = c.classComponent(d.Component)
		if comp == nil {
			return "", errorf(KindUsage, "component %q is not installed in class %q", d.Component, c.Name)
		}
	}
	argv := d.expand(name, comp.Identity(), c.Name, c.Name, args)
	c.interp.log().Debug("delegate proc",
		zap.String("class", c.Name),
		zap.String("proc", name),
		zap.Strings("argv", argv),
	)
	if d.Using == "" {
		if comp == nil {
			return "", errorf(KindUsage, "proc %q of class %q has no component and no \"using\" template", name, c.Name)
		}
		return comp.Invoke(argv...)
	}
	return c.interp.Exec(argv...)
}

// Call invokes the proc name on c without an object. Built-in methods and
// ordinary methods called this way run without an instance.
func (c *Class) Call(name string, args ...string) (string, error) {
	if err := c.Finalize(); err != nil {
		return "", err
	}
	if f := c.Resolve(name); f != nil && f.Kind != MemberConstructor && f.Kind != MemberDestructor {
		if f.Kind == MemberMethod && !f.builtin {
			return "", errorf(KindContext, "cannot access object-specific info without an object context")
		}
		if !c.interp.canAccess(f.class, f.Protection, nil) {
			return "", errorf(KindAccess, "can't access %q: %s %s", name, f.Protection, f.Kind)
		}
		return c.interp.invoke(f, nil, f.FullName(), args)
	}
	if d := c.delegation(DelegateProc, name); d != nil {
		return c.forwardProc(d, name, args)
	}
	return "", errorf(KindUnknownMethod, "unknown proc %q in class %q", name, c.Name)
}
