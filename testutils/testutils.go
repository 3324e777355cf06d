// Package testutils provides utilities for testing code that uses the itcl
// runtime.
package testutils

import (
	"errors"
	"sort"
	"testing"

	"github.com/zephyrtronium/itcl"
)

// Interp returns a fresh interpreter for testing. Its hull factory creates
// Recorder handles.
func Interp() *itcl.Interp {
	i := itcl.NewInterp()
	i.Hulls = &Hulls{}
	return i
}

// Must fails the test immediately if err is not nil.
func Must(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

// Returns is a body that returns s.
func Returns(s string) itcl.BodyFunc {
	return func(*itcl.Call) (string, error) {
		return s, nil
	}
}

// Fails is a body that fails with msg.
func Fails(msg string) itcl.BodyFunc {
	return func(*itcl.Call) (string, error) {
		return "", errors.New(msg)
	}
}

// Method creates a public method.
func Method(name string, body itcl.Body, params ...string) *itcl.Function {
	return &itcl.Function{Name: name, Kind: itcl.MemberMethod, Protection: itcl.Public, Params: params, Body: body}
}

// Proc creates a public proc.
func Proc(name string, body itcl.Body, params ...string) *itcl.Function {
	return &itcl.Function{Name: name, Kind: itcl.MemberProc, Protection: itcl.Public, Params: params, Body: body}
}

// Constructor creates a constructor.
func Constructor(body itcl.Body, params ...string) *itcl.Function {
	return &itcl.Function{Kind: itcl.MemberConstructor, Protection: itcl.Public, Params: params, Body: body}
}

// Destructor creates a destructor.
func Destructor(body itcl.Body) *itcl.Function {
	return &itcl.Function{Kind: itcl.MemberDestructor, Protection: itcl.Public, Body: body}
}

// PublicVar creates a public variable with an optional initial value.
func PublicVar(name string, init ...string) *itcl.Variable {
	v := &itcl.Variable{Name: name, Protection: itcl.Public}
	if len(init) > 0 {
		v.Init = init[0]
		v.HasInit = true
	}
	return v
}

// Class declares a class, failing the test on error.
func Class(t testing.TB, i *itcl.Interp, name string, bases ...*itcl.Class) *itcl.Class {
	t.Helper()
	c, err := i.NewClass(name, itcl.RoleClass, bases...)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// Diamond declares the hierarchy D(B, C), B(A), C(A), where each class
// defines the method "who" returning its own name and A alone defines "root".
func Diamond(t testing.TB, i *itcl.Interp) (a, b, c, d *itcl.Class) {
	t.Helper()
	a = Class(t, i, "A")
	b = Class(t, i, "B", a)
	c = Class(t, i, "C", a)
	d = Class(t, i, "D", b, c)
	for _, k := range []*itcl.Class{a, b, c, d} {
		Must(t, k.AddFunction(Method("who", Returns(k.Name))))
	}
	Must(t, a.AddFunction(Method("root", Returns("root"))))
	return a, b, c, d
}

// New creates an object, failing the test on error.
func New(t testing.TB, i *itcl.Interp, c *itcl.Class, name string, args ...string) *itcl.Object {
	t.Helper()
	o, err := i.New(c, name, args...)
	if err != nil {
		t.Fatal(err)
	}
	return o
}

// Invoke calls a method, failing the test on error.
func Invoke(t testing.TB, o *itcl.Object, name string, args ...string) string {
	t.Helper()
	r, err := o.Invoke(name, args...)
	if err != nil {
		t.Fatalf("%s %s %v: %v", o.Name(), name, args, err)
	}
	return r
}

// Recorder is an in-memory Handle that records the commands it receives. It
// understands configure, cget, and destroy; other commands return their
// arguments as a list.
type Recorder struct {
	// ID is the handle's identity.
	ID string
	// Calls holds the arguments of each Invoke call.
	Calls [][]string
	// Destroyed is set once the handle has been destroyed.
	Destroyed bool

	options   map[string]string
	defaults  map[string]string
	order     []string
	observers map[int]func()
	next      int
}

// NewRecorder creates a Recorder with options given as name-default pairs.
// Option names are given without dashes.
func NewRecorder(id string, opts ...string) *Recorder {
	r := &Recorder{
		ID:        id,
		options:   make(map[string]string),
		defaults:  make(map[string]string),
		observers: make(map[int]func()),
	}
	for k := 0; k+1 < len(opts); k += 2 {
		r.order = append(r.order, opts[k])
		r.options[opts[k]] = opts[k+1]
		r.defaults[opts[k]] = opts[k+1]
	}
	return r
}

// Identity implements itcl.Handle.
func (r *Recorder) Identity() string {
	return r.ID
}

// Invoke implements itcl.Handle.
func (r *Recorder) Invoke(args ...string) (string, error) {
	r.Calls = append(r.Calls, append([]string(nil), args...))
	if r.Destroyed {
		return "", errors.New("invalid command name \"" + r.ID + "\"")
	}
	if len(args) == 0 {
		return "", errors.New("wrong # args")
	}
	switch args[0] {
	case "configure":
		return r.configure(args[1:])
	case "cget":
		if len(args) != 2 || len(args[1]) < 2 {
			return "", errors.New("wrong # args: should be \"cget option\"")
		}
		v, ok := r.options[args[1][1:]]
		if !ok {
			return "", errors.New("unknown option \"" + args[1] + "\"")
		}
		return v, nil
	case "destroy":
		r.Destroy()
		return "", nil
	}
	return itcl.FormatList(args...), nil
}

func (r *Recorder) configure(args []string) (string, error) {
	if len(args) == 0 {
		l := make([]string, len(r.order))
		for k, name := range r.order {
			l[k] = itcl.FormatList("-"+name, r.defaults[name], r.options[name])
		}
		return itcl.FormatList(l...), nil
	}
	for k := 0; k < len(args); k += 2 {
		if len(args[k]) < 2 {
			return "", errors.New("unknown option \"" + args[k] + "\"")
		}
		name := args[k][1:]
		if _, ok := r.options[name]; !ok {
			return "", errors.New("unknown option \"" + args[k] + "\"")
		}
		if k+1 >= len(args) {
			return itcl.FormatList("-"+name, r.defaults[name], r.options[name]), nil
		}
		r.options[name] = args[k+1]
	}
	return "", nil
}

// Option returns the current value of the option name, given without a dash.
func (r *Recorder) Option(name string) string {
	return r.options[name]
}

// OnDestroy implements itcl.Handle.
func (r *Recorder) OnDestroy(f func()) func() {
	id := r.next
	r.next++
	r.observers[id] = f
	return func() { delete(r.observers, id) }
}

// Observers returns the number of registered destruction observers.
func (r *Recorder) Observers() int {
	return len(r.observers)
}

// Destroy destroys the handle and notifies its observers.
func (r *Recorder) Destroy() {
	if r.Destroyed {
		return
	}
	r.Destroyed = true
	ids := make([]int, 0, len(r.observers))
	for id := range r.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if f := r.observers[id]; f != nil {
			delete(r.observers, id)
			f()
		}
	}
}

// OptionDefault implements itcl.OptionDefaulter.
func (r *Recorder) OptionDefault(name string) (string, bool) {
	v, ok := r.defaults[name]
	return v, ok
}

// OptionNames implements itcl.OptionLister.
func (r *Recorder) OptionNames() []string {
	return append([]string(nil), r.order...)
}

// Hulls is a HullFactory that creates Recorder handles with frame options.
type Hulls struct {
	// Made holds every hull created, in order.
	Made []*Recorder
	// Kinds holds the kind of each hull created.
	Kinds []itcl.HullKind
	// Err, if not nil, is returned by CreateHull.
	Err error
}

// CreateHull implements itcl.HullFactory.
func (h *Hulls) CreateHull(path string, kind itcl.HullKind, class string) (itcl.Handle, error) {
	if h.Err != nil {
		return nil, h.Err
	}
	r := NewRecorder("hull"+path, "background", "#d9d9d9", "borderwidth", "0", "class", class)
	h.Made = append(h.Made, r)
	h.Kinds = append(h.Kinds, kind)
	return r, nil
}

// Last returns the most recently created hull, or nil.
func (h *Hulls) Last() *Recorder {
	if len(h.Made) == 0 {
		return nil
	}
	return h.Made[len(h.Made)-1]
}
