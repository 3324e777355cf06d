package internal

import (
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
)

// Object is an instance of a class.
//
// Always use Interp.New to obtain objects. Creating objects directly will
// result in arbitrary failures.
type Object struct {
	name   string
	class  *Class
	interp *Interp

	// scalars holds the values of scalar instance variables. A variable with
	// no entry has never been set.
	scalars map[varKey]string
	// arrays holds the elements of array instance variables.
	arrays map[varKey]map[string]string
	// components holds bound component proxies by slot name.
	components map[string]*Component

	// vtable is the object's virtual table, valid while vgen matches the
	// interpreter's generation.
	vtable map[string]*Function
	vgen   uint64

	alive    bool
	deleting bool

	id uintptr
}

// varKey identifies one instance variable storage location. Variables of
// the same simple name in different classes are distinct.
type varKey struct {
	class *Class
	name  string
}

// objectIDs is the global object ID counter.
var objectIDs uintptr

// autoIDs numbers objects created with an automatic name.
var autoIDs uint64

// New creates an object of class c named name, passing args to its
// constructor. If no class in the hierarchy defines a constructor, args are
// treated as configure options. A name containing "#auto" has that part
// replaced by an automatically generated name.
func (i *Interp) New(c *Class, name string, args ...string) (*Object, error) {
	if c == nil || c.interp != i {
		return nil, errorf(KindUsage, "class does not belong to this interpreter")
	}
	if strings.Contains(name, "#auto") {
		auto := strings.ToLower(c.SimpleName()[:1]) + c.SimpleName()[1:] + strconv.FormatUint(atomic.AddUint64(&autoIDs, 1), 10)
		name = strings.Replace(name, "#auto", auto, -1)
	}
	if name == "" {
		return nil, errorf(KindUsage, "object name must not be empty")
	}
	if i.objects[name] != nil || i.Commands[name] != nil {
		return nil, errorf(KindUsage, "command %q already exists in namespace \"::\"", name)
	}
	if err := c.Finalize(); err != nil {
		return nil, err
	}
	o := &Object{
		name:       name,
		class:      c,
		interp:     i,
		scalars:    make(map[varKey]string),
		arrays:     make(map[varKey]map[string]string),
		components: make(map[string]*Component),
		alive:      true,
		id:         atomic.AddUintptr(&objectIDs, 1),
	}
	for _, k := range c.Heritage() {
		for _, vn := range k.varOrder {
			v := k.variables[vn]
			key := varKey{k, vn}
			switch {
			case v.Array:
				o.arrays[key] = make(map[string]string)
			case v.HasInit:
				o.scalars[key] = v.Init
			}
		}
	}
	o.virtual()
	i.objects[name] = o
	log := i.log().With(zap.String("object", name), zapClass(c))

	if c.Role == RoleWidget {
		if err := o.createHull(); err != nil {
			o.release()
			return nil, err
		}
	}
	if ctor := c.Resolve("constructor"); ctor != nil {
		if _, err := i.invoke(ctor, o, name, args); err != nil {
			log.Debug("constructor failed", zap.Error(err))
			o.release()
			return nil, err
		}
	} else if len(args) > 0 {
		if _, err := o.Invoke("configure", args...); err != nil {
			o.release()
			return nil, err
		}
	}
	if c.Role == RoleWidgetAdaptor && o.components["hull"] == nil {
		o.destroy(true)
		return nil, errorf(KindUsage, "widgetadaptor %q did not install a hull", name)
	}
	log.Debug("new object")
	return o, nil
}

// Name returns the name of the object. For widgets, it is the window path.
func (o *Object) Name() string {
	return o.name
}

// Class returns the class of the object.
func (o *Object) Class() *Class {
	return o.class
}

// Interp returns the interpreter that owns the object.
func (o *Object) Interp() *Interp {
	return o.interp
}

// UniqueID returns the object's unique ID.
func (o *Object) UniqueID() uintptr {
	return o.id
}

// Alive reports whether the object has not yet been deleted.
func (o *Object) Alive() bool {
	return o.alive
}

// Isa reports whether the object's class is k or derives from k.
func (o *Object) Isa(k *Class) bool {
	return o.class.Isa(k)
}

// Component returns the component bound to slot name, or nil.
func (o *Object) Component(name string) *Component {
	return o.components[name]
}

// virtual returns the object's virtual table, rebuilding it if any class
// has changed since it was last built.
func (o *Object) virtual() map[string]*Function {
	if o.vtable == nil || o.vgen != o.interp.gen {
		o.vtable = o.class.VirtualTable()
		o.vgen = o.interp.gen
	}
	return o.vtable
}

// Lookup returns the function that Invoke would run for name, or nil if the
// name is not in the object's virtual table.
func (o *Object) Lookup(name string) *Function {
	if f := o.virtual()[name]; f != nil {
		return f
	}
	if strings.Contains(name, "::") {
		return o.class.Resolve(name)
	}
	return nil
}

// Responds reports whether Invoke can serve name through the virtual table
// or a method delegation.
func (o *Object) Responds(name string) bool {
	return o.Lookup(name) != nil || o.class.delegation(DelegateMethod, name) != nil
}

// Invoke calls the method name on the object. Names not in the virtual
// table are offered to method delegations.
func (o *Object) Invoke(name string, args ...string) (string, error) {
	if !o.alive {
		return "", errorf(KindContext, "object %q has been deleted", o.name)
	}
	if f := o.Lookup(name); f != nil {
		if !o.interp.canAccess(f.class, f.Protection, o) {
			return "", errorf(KindAccess, "can't access %q: %s %s", name, f.Protection, f.Kind)
		}
		return o.interp.invoke(f, o, name, args)
	}
	if d := o.class.delegation(DelegateMethod, name); d != nil {
		return o.forward(d, name, args)
	}
	return "", o.unknownMethod(name)
}

// unknownMethod builds the error for a method name the object cannot serve.
func (o *Object) unknownMethod(name string) error {
	vt := o.virtual()
	names := make([]string, 0, len(vt))
	for n, f := range vt {
		if f.Protection == Public {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString("bad option \"")
	b.WriteString(name)
	b.WriteString("\": should be one of...")
	for _, n := range names {
		b.WriteString("\n  ")
		b.WriteString(o.name)
		b.WriteByte(' ')
		b.WriteString(n)
		if u := vt[n].usage(); u != "" {
			b.WriteByte(' ')
			b.WriteString(u)
		}
	}
	return &Error{Kind: KindUnknownMethod, Detail: b.String()}
}

// Var returns the value of the variable named name, resolved from the
// object's class. The second result is false if the name does not resolve
// or the variable has no value.
func (o *Object) Var(name string) (string, bool) {
	lookup := o.class.ResolveVar(name)
	if lookup == nil {
		return "", false
	}
	return o.value(lookup.Var)
}

// SetVar sets the variable named name, resolved from the object's class,
// without running any configuration hook.
func (o *Object) SetVar(name, value string) error {
	lookup := o.class.ResolveVar(name)
	if lookup == nil {
		return errorf(KindUsage, "can't set %q: no such variable", name)
	}
	return o.setValue(lookup.Var, value)
}

// value returns the scalar value of v.
func (o *Object) value(v *Variable) (string, bool) {
	if v.Array {
		return "", false
	}
	s, ok := o.scalars[varKey{v.class, v.Name}]
	return s, ok
}

// setValue writes the scalar value of v.
func (o *Object) setValue(v *Variable, value string) error {
	if v.Array {
		return errorf(KindUsage, "can't set %q: variable is array", v.Name)
	}
	o.scalars[varKey{v.class, v.Name}] = value
	return nil
}

// setElem writes one element of the array variable v.
func (o *Object) setElem(v *Variable, key, value string) {
	k := varKey{v.class, v.Name}
	m := o.arrays[k]
	if m == nil {
		m = make(map[string]string)
		o.arrays[k] = m
	}
	m[key] = value
}

// Array returns a copy of the elements of the array variable named name.
func (o *Object) Array(name string) map[string]string {
	lookup := o.class.ResolveVar(name)
	if lookup == nil || !lookup.Var.Array {
		return nil
	}
	src := o.arrays[varKey{lookup.Var.class, lookup.Var.Name}]
	r := make(map[string]string, len(src))
	for k, v := range src {
		r[k] = v
	}
	return r
}

// Delete runs the object's destructors, most derived first, and removes the
// object. If a destructor fails, the object is left alive and the error is
// returned. Deleting a deleted object does nothing.
func (o *Object) Delete() error {
	return o.destroy(false)
}

// destroy runs destructors and releases the object. If force is set,
// destructor errors are logged and destruction continues.
func (o *Object) destroy(force bool) error {
	if !o.alive || o.deleting {
		return nil
	}
	o.deleting = true
	for _, k := range o.class.Heritage() {
		f := k.functions["destructor"]
		if f == nil {
			continue
		}
		if _, err := o.interp.invoke(f, o, o.name, nil); err != nil {
			if !force {
				o.deleting = false
				return err
			}
			o.interp.log().Warn("destructor failed",
				zap.String("object", o.name),
				zap.String("destructor", f.FullName()),
				zap.Error(err),
			)
		}
	}
	o.release()
	return nil
}

// release detaches the object's components and removes it from the
// interpreter.
func (o *Object) release() {
	for _, c := range o.components {
		c.detach()
	}
	if o.interp.objects[o.name] == o {
		delete(o.interp.objects, o.name)
	}
	o.alive = false
	o.deleting = false
	o.interp.log().Debug("delete object", zap.String("object", o.name))
}
