// Package hull provides an in-memory window tree whose frames and toplevels
// serve as the hulls of widget objects.
//
// Windows understand the configure, cget, and destroy commands with the
// standard frame options. Destroying a window destroys its descendants
// first, and the owners of their hulls are deleted in turn.
package hull

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/zephyrtronium/itcl"
)

// option describes one window option.
type option struct {
	name, class, def string
}

// frameOptions are the options of every window, in listing order.
var frameOptions = []option{
	{"background", "Background", "#d9d9d9"},
	{"borderwidth", "BorderWidth", "0"},
	{"class", "Class", "Frame"},
	{"cursor", "Cursor", ""},
	{"height", "Height", "0"},
	{"relief", "Relief", "flat"},
	{"width", "Width", "0"},
}

// toplevelOptions are the additional options of toplevels.
var toplevelOptions = []option{
	{"menu", "Menu", ""},
	{"screen", "Screen", ""},
}

// Tree is a tree of windows rooted at ".". Tree implements itcl.HullFactory.
type Tree struct {
	// Log receives window lifecycle messages. If nil, the logger of the
	// interpreter the tree is registered with is used, then the itcl package
	// logger.
	Log *zap.Logger

	interp  *itcl.Interp
	windows map[string]*Window
	serial  int
}

// New creates an empty window tree.
func New() *Tree {
	return &Tree{windows: make(map[string]*Window)}
}

func (t *Tree) log() *zap.Logger {
	if t.Log != nil {
		return t.Log
	}
	if t.interp != nil && t.interp.Log != nil {
		return t.interp.Log
	}
	return itcl.Logger()
}

// CreateHull implements itcl.HullFactory.
func (t *Tree) CreateHull(path string, kind itcl.HullKind, class string) (itcl.Handle, error) {
	return t.Create(path, kind, class)
}

// Create creates a window. The parent of path must exist unless it is the
// root.
func (t *Tree) Create(path string, kind itcl.HullKind, class string) (*Window, error) {
	if !strings.HasPrefix(path, ".") || path == "." || strings.HasSuffix(path, ".") {
		return nil, &itcl.Error{Kind: itcl.KindUsage, Detail: fmt.Sprintf("bad window path name %q", path)}
	}
	if t.windows[path] != nil {
		return nil, &itcl.Error{Kind: itcl.KindUsage, Detail: fmt.Sprintf("window name %q already exists in parent", path[strings.LastIndexByte(path, '.')+1:])}
	}
	if p := parent(path); p != "." && t.windows[p] == nil {
		return nil, &itcl.Error{Kind: itcl.KindUsage, Detail: fmt.Sprintf("bad window path name %q", p)}
	}
	opts := frameOptions
	if kind == itcl.HullToplevel {
		opts = append(append([]option(nil), frameOptions...), toplevelOptions...)
	}
	if class == "" {
		class = "Frame"
		if kind == itcl.HullToplevel {
			class = "Toplevel"
		}
	}
	t.serial++
	w := &Window{
		tree:      t,
		path:      path,
		kind:      kind,
		id:        "hull" + strconv.Itoa(t.serial) + path,
		opts:      opts,
		values:    make(map[string]string, len(opts)),
		observers: make(map[int]func()),
	}
	for _, o := range opts {
		w.values[o.name] = o.def
	}
	w.values["class"] = class
	t.windows[path] = w
	t.log().Debug("create window", zap.String("path", path), zap.Stringer("kind", kind), zap.String("class", class))
	return w, nil
}

// Window returns the live window at path, or nil.
func (t *Tree) Window(path string) *Window {
	return t.windows[path]
}

// Paths returns the paths of all live windows in sorted order.
func (t *Tree) Paths() []string {
	r := make([]string, 0, len(t.windows))
	for p := range t.windows {
		r = append(r, p)
	}
	sort.Strings(r)
	return r
}

// Children returns the paths of the direct children of path in sorted order.
func (t *Tree) Children(path string) []string {
	var r []string
	for _, p := range t.Paths() {
		if parent(p) == path {
			r = append(r, p)
		}
	}
	return r
}

// Destroy destroys the window at path and its descendants.
func (t *Tree) Destroy(path string) error {
	w := t.windows[path]
	if w == nil {
		return &itcl.Error{Kind: itcl.KindUsage, Detail: fmt.Sprintf("bad window path name %q", path)}
	}
	w.Destroy()
	return nil
}

func parent(path string) string {
	k := strings.LastIndexByte(path, '.')
	if k <= 0 {
		return "."
	}
	return path[:k]
}

// Window is one window of a Tree. Window implements itcl.Handle,
// itcl.OptionDefaulter, and itcl.OptionLister.
type Window struct {
	tree *Tree
	path string
	kind itcl.HullKind
	id   string

	opts      []option
	values    map[string]string
	observers map[int]func()
	next      int
	destroyed bool
}

// Path returns the window's path name.
func (w *Window) Path() string {
	return w.path
}

// Kind returns whether the window is a frame or a toplevel.
func (w *Window) Kind() itcl.HullKind {
	return w.kind
}

// Destroyed reports whether the window has been destroyed.
func (w *Window) Destroyed() bool {
	return w.destroyed
}

// Identity implements itcl.Handle.
func (w *Window) Identity() string {
	return w.id
}

// Get returns the current value of an option given without a dash.
func (w *Window) Get(name string) (string, bool) {
	v, ok := w.values[name]
	return v, ok
}

// Invoke implements itcl.Handle.
func (w *Window) Invoke(args ...string) (string, error) {
	if w.destroyed {
		return "", &itcl.Error{Kind: itcl.KindUsage, Detail: fmt.Sprintf("invalid command name %q", w.id)}
	}
	if len(args) == 0 {
		return "", &itcl.Error{Kind: itcl.KindUsage, Detail: "wrong # args: should be \"" + w.path + " option ?arg ...?\""}
	}
	switch args[0] {
	case "configure":
		return w.configure(args[1:])
	case "cget":
		if len(args) != 2 {
			return "", &itcl.Error{Kind: itcl.KindUsage, Detail: "wrong # args: should be \"" + w.path + " cget option\""}
		}
		o, err := w.option(args[1])
		if err != nil {
			return "", err
		}
		return w.values[o.name], nil
	case "destroy":
		w.Destroy()
		return "", nil
	}
	return "", &itcl.Error{Kind: itcl.KindUnknownMethod, Detail: fmt.Sprintf("bad option %q: must be cget, configure, or destroy", args[0])}
}

// option finds the option named by a dashed name.
func (w *Window) option(name string) (option, error) {
	if strings.HasPrefix(name, "-") {
		for _, o := range w.opts {
			if o.name == name[1:] {
				return o, nil
			}
		}
	}
	return option{}, &itcl.Error{Kind: itcl.KindUnknownOption, Detail: fmt.Sprintf("unknown option %q", name)}
}

func (w *Window) describe(o option) string {
	return itcl.FormatList("-"+o.name, o.name, o.class, o.def, w.values[o.name])
}

func (w *Window) configure(args []string) (string, error) {
	if len(args) == 0 {
		l := make([]string, len(w.opts))
		for k, o := range w.opts {
			l[k] = w.describe(o)
		}
		return itcl.FormatList(l...), nil
	}
	if len(args) == 1 {
		o, err := w.option(args[0])
		if err != nil {
			return "", err
		}
		return w.describe(o), nil
	}
	if len(args)%2 != 0 {
		return "", &itcl.Error{Kind: itcl.KindMissingValue, Detail: fmt.Sprintf("value for %q missing", args[len(args)-1])}
	}
	for k := 0; k < len(args); k += 2 {
		o, err := w.option(args[k])
		if err != nil {
			return "", err
		}
		if o.name == "class" || o.name == "screen" {
			return "", &itcl.Error{Kind: itcl.KindUsage, Detail: fmt.Sprintf("can't modify -%s option after widget is created", o.name)}
		}
		w.values[o.name] = args[k+1]
	}
	return "", nil
}

// OnDestroy implements itcl.Handle.
func (w *Window) OnDestroy(f func()) func() {
	id := w.next
	w.next++
	w.observers[id] = f
	return func() { delete(w.observers, id) }
}

// OptionDefault implements itcl.OptionDefaulter.
func (w *Window) OptionDefault(name string) (string, bool) {
	for _, o := range w.opts {
		if o.name == name {
			return o.def, true
		}
	}
	return "", false
}

// OptionNames implements itcl.OptionLister.
func (w *Window) OptionNames() []string {
	r := make([]string, len(w.opts))
	for k, o := range w.opts {
		r[k] = o.name
	}
	return r
}

// Destroy destroys the window's descendants, then the window, notifying
// observers of each in registration order.
func (w *Window) Destroy() {
	if w.destroyed {
		return
	}
	w.destroyed = true
	for _, p := range w.tree.Children(w.path) {
		if c := w.tree.windows[p]; c != nil {
			c.Destroy()
		}
	}
	if w.tree.windows[w.path] == w {
		delete(w.tree.windows, w.path)
	}
	w.tree.log().Debug("destroy window", zap.String("path", w.path))
	ids := make([]int, 0, len(w.observers))
	for id := range w.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if f := w.observers[id]; f != nil {
			delete(w.observers, id)
			f()
		}
	}
}

func init() {
	itcl.Register(func(i *itcl.Interp) {
		t := New()
		t.interp = i
		if i.Hulls == nil {
			i.Hulls = t
		}
		i.Commands["destroy"] = t.destroyCommand
		i.Commands["winfo"] = t.winfoCommand
	})
}

// destroy ?window ...?
//
// Arguments that are not windows but name objects delete those objects.
func (t *Tree) destroyCommand(i *itcl.Interp, args []string) (string, error) {
	for _, name := range args {
		if t.windows[name] != nil {
			t.Destroy(name)
			continue
		}
		if o := i.Object(name); o != nil {
			if err := o.Delete(); err != nil {
				return "", err
			}
			continue
		}
		return "", &itcl.Error{Kind: itcl.KindUsage, Detail: fmt.Sprintf("bad window path name %q", name)}
	}
	return "", nil
}

// winfo children|class|exists window
func (t *Tree) winfoCommand(i *itcl.Interp, args []string) (string, error) {
	if len(args) != 2 {
		return "", &itcl.Error{Kind: itcl.KindUsage, Detail: "wrong # args: should be \"winfo option window\""}
	}
	w := t.windows[args[1]]
	switch args[0] {
	case "exists":
		if w != nil {
			return "1", nil
		}
		return "0", nil
	case "children":
		if w == nil && args[1] != "." {
			break
		}
		return itcl.FormatList(t.Children(args[1])...), nil
	case "class":
		if w == nil {
			break
		}
		return w.values["class"], nil
	default:
		return "", &itcl.Error{Kind: itcl.KindUsage, Detail: fmt.Sprintf("bad option %q: must be children, class, or exists", args[0])}
	}
	return "", &itcl.Error{Kind: itcl.KindUsage, Detail: fmt.Sprintf("bad window path name %q", args[1])}
}
