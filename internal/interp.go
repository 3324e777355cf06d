package internal

import (
	"io"
	"os"
	"sort"

	"go.uber.org/zap"
)

// Interp is an object runtime holding classes, objects, and the execution
// context stack.
type Interp struct {
	// Loader resolves class names that are not yet declared. It may be nil.
	Loader Loader
	// Defaults supplies default option values for delegated options when a
	// component is bound. It may be nil.
	Defaults DefaultSource
	// Hulls creates the hull frames and toplevels of widget objects. It must
	// be set before any widget-role object is created.
	Hulls HullFactory
	// Commands holds host commands reachable through Exec.
	Commands map[string]CommandFunc
	// Stdout receives output written by bodies. Defaults to os.Stdout.
	Stdout io.Writer
	// Log is the interpreter's logger. If nil, the package logger is used.
	Log *zap.Logger

	classes    map[string]*Class
	classOrder []string
	objects    map[string]*Object
	handles    map[string]*Component
	loading    map[string]bool

	// frames is the call context stack.
	frames []*Call
	// gen is the table generation. It changes whenever any class changes.
	gen uint64

	widgetConfigure map[*Class]WidgetConfigureFunc
	anyConfigure    WidgetConfigureFunc
}

// CommandFunc is a host command callable through Exec.
type CommandFunc func(i *Interp, args []string) (string, error)

// DefaultSource supplies option defaults.
type DefaultSource interface {
	// LookupDefault returns the default value of an option for the window
	// with the given path.
	LookupDefault(window, option string) (string, bool)
}

// NewInterp creates an interpreter and runs all registered extensions on it.
func NewInterp() *Interp {
	haveInterp = true
	i := &Interp{
		Commands:        make(map[string]CommandFunc),
		Stdout:          os.Stdout,
		classes:         make(map[string]*Class),
		objects:         make(map[string]*Object),
		handles:         make(map[string]*Component),
		loading:         make(map[string]bool),
		widgetConfigure: make(map[*Class]WidgetConfigureFunc),
	}
	for _, ext := range extensions {
		ext(i)
	}
	return i
}

// Register registers an interpreter extension. Each function is called in
// the order it is registered on every new interpreter. Register should be
// called from within init funcs. Panics if NewInterp has been called.
func Register(f func(*Interp)) {
	if haveInterp {
		panic("itcl/internal: Register must be called before any Interp is created")
	}
	extensions = append(extensions, f)
}

// extensions is a list of extensions that have been registered.
var extensions = make([]func(*Interp), 0, 4)

// haveInterp becomes true once NewInterp has been called.
var haveInterp = false

// Class returns the declared class with the given name, or nil.
func (i *Interp) Class(name string) *Class {
	return i.classes[Qualify(name)]
}

// Classes returns all declared classes in declaration order.
func (i *Interp) Classes() []*Class {
	r := make([]*Class, 0, len(i.classOrder))
	for _, name := range i.classOrder {
		r = append(r, i.classes[name])
	}
	return r
}

// FindClass returns the class with the given name. If the class is not
// declared and autoload is set, the interpreter's Loader is asked to
// declare it first.
func (i *Interp) FindClass(name string, autoload bool) (*Class, error) {
	qn := Qualify(name)
	if c := i.classes[qn]; c != nil {
		return c, nil
	}
	if autoload && i.Loader != nil && !i.loading[qn] {
		i.loading[qn] = true
		err := i.Loader.LoadClass(i, qn)
		delete(i.loading, qn)
		if err != nil {
			i.log().Warn("class load failed", zap.String("class", qn), zap.Error(err))
			return nil, &Error{Kind: KindUnresolvedClass, Detail: "class \"" + name + "\" not found", Cause: err}
		}
		if c := i.classes[qn]; c != nil {
			i.log().Debug("loaded class", zapClass(c))
			return c, nil
		}
	}
	return nil, errorf(KindUnresolvedClass, "class %q not found", name)
}

// Object returns the live object with the given name, or nil.
func (i *Interp) Object(name string) *Object {
	return i.objects[name]
}

// Objects returns the names of all live objects in sorted order.
func (i *Interp) Objects() []string {
	r := make([]string, 0, len(i.objects))
	for name := range i.objects {
		r = append(r, name)
	}
	sort.Strings(r)
	return r
}

// Exec runs the command named by argv[0]. Host commands take precedence,
// followed by objects, bound component identities, and classes.
func (i *Interp) Exec(argv ...string) (string, error) {
	if len(argv) == 0 {
		return "", nil
	}
	name, args := argv[0], argv[1:]
	if f := i.Commands[name]; f != nil {
		return f(i, args)
	}
	if o := i.objects[name]; o != nil {
		if len(args) == 0 {
			return "", errorf(KindUsage, "wrong # args: should be \"%s option ?arg arg ...?\"", name)
		}
		return o.Invoke(args[0], args[1:]...)
	}
	if h := i.handles[name]; h != nil {
		return h.Invoke(args...)
	}
	if c := i.classes[Qualify(name)]; c != nil {
		if len(args) == 0 {
			return "", errorf(KindUsage, "wrong # args: should be \"%s name ?arg arg ...?\"", name)
		}
		return c.Call(args[0], args[1:]...)
	}
	return "", errorf(KindUsage, "invalid command name %q", name)
}

// Context returns the innermost call context, or nil if nothing is running.
func (i *Interp) Context() *Call {
	if len(i.frames) == 0 {
		return nil
	}
	return i.frames[len(i.frames)-1]
}

// push adds a call context to the stack.
func (i *Interp) push(c *Call) {
	c.parent = i.Context()
	i.frames = append(i.frames, c)
}

// pop removes the innermost call context.
func (i *Interp) pop() {
	i.frames[len(i.frames)-1] = nil
	i.frames = i.frames[:len(i.frames)-1]
}

// invoke runs f directly with the given instance and invocation name. There
// is no virtual re-resolution.
func (i *Interp) invoke(f *Function, o *Object, name string, args []string) (string, error) {
	if f.Body == nil {
		return "", errorf(KindUsage, "member function %q is not defined and cannot be autoloaded", f.FullName())
	}
	if f.Kind == MemberProc {
		o = nil
	}
	c := &Call{
		Interp:   i,
		Class:    f.class,
		Object:   o,
		Function: f,
		Name:     name,
		Args:     args,
	}
	i.push(c)
	defer i.pop()
	return f.Body.Exec(c)
}

// canAccess reports whether a member of class owner with protection p is
// visible from the current context. Protected members of an object are
// visible to every class in the object's hierarchy.
func (i *Interp) canAccess(owner *Class, p Protection, o *Object) bool {
	switch p {
	case Public:
		return true
	case Protected:
		ctx := i.Context()
		if ctx == nil || ctx.Class == nil {
			return false
		}
		return ctx.Class.Isa(owner) || o != nil && o.class.Isa(ctx.Class)
	default:
		ctx := i.Context()
		return ctx != nil && ctx.Class == owner
	}
}

func zapClass(c *Class) zap.Field {
	return zap.String("class", c.Name)
}
