package hull_test

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zephyrtronium/itcl"
	"github.com/zephyrtronium/itcl/coreext/hull"
	"github.com/zephyrtronium/itcl/testutils"
)

// TestCreate tests window creation and its errors.
func TestCreate(t *testing.T) {
	cases := map[string]struct {
		path string
		ok   bool
	}{
		"Child":     {".a.b", true},
		"TopChild":  {".c", true},
		"Relative":  {"a", false},
		"Root":      {".", false},
		"Trailing":  {".a.", false},
		"Duplicate": {".a", false},
		"NoParent":  {".x.y", false},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			tr := hull.New()
			if _, err := tr.Create(".a", itcl.HullFrame, "Frame"); err != nil {
				t.Fatal(err)
			}
			w, err := tr.Create(c.path, itcl.HullFrame, "Frame")
			if !c.ok {
				if !errors.Is(err, itcl.ErrUsage) {
					t.Errorf("wrong error: have %v, want %v", err, itcl.ErrUsage)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if tr.Window(c.path) != w || w.Path() != c.path {
				t.Errorf("window not registered at %s", c.path)
			}
		})
	}
}

// TestOptions tests configure and cget on windows.
func TestOptions(t *testing.T) {
	w, err := hull.New().Create(".f", itcl.HullFrame, "Panel")
	testutils.Must(t, err)
	cases := map[string]struct {
		args []string
		want string
		err  error
	}{
		"Cget":         {[]string{"cget", "-background"}, "#d9d9d9", nil},
		"CgetClass":    {[]string{"cget", "-class"}, "Panel", nil},
		"Query":        {[]string{"configure", "-relief"}, "-relief relief Relief flat flat", nil},
		"QueryEmpty":   {[]string{"configure", "-cursor"}, "-cursor cursor Cursor {} {}", nil},
		"Unknown":      {[]string{"cget", "-menu"}, "", itcl.ErrUnknownOption},
		"NoDash":       {[]string{"cget", "background"}, "", itcl.ErrUnknownOption},
		"CgetArgs":     {[]string{"cget"}, "", itcl.ErrUsage},
		"Missing":      {[]string{"configure", "-width", "1", "-height"}, "", itcl.ErrMissingValue},
		"Class":        {[]string{"configure", "-class", "Other"}, "", itcl.ErrUsage},
		"UnknownCmd":   {[]string{"flash"}, "", itcl.ErrUnknownMethod},
		"UnknownWrite": {[]string{"configure", "-nope", "1"}, "", itcl.ErrUnknownOption},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := w.Invoke(c.args...)
			if c.err != nil {
				if !errors.Is(err, c.err) {
					t.Errorf("wrong error: have %v, want %v", err, c.err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if r != c.want {
				t.Errorf("wrong result: have %q, want %q", r, c.want)
			}
		})
	}
	if _, err := w.Invoke("configure", "-background", "red", "-width", "10"); err != nil {
		t.Fatal(err)
	}
	if v, _ := w.Get("background"); v != "red" {
		t.Errorf("wrong background: have %q, want %q", v, "red")
	}
	if v, _ := w.OptionDefault("background"); v != "#d9d9d9" {
		t.Errorf("wrong default: have %q", v)
	}
	all, err := w.Invoke("configure")
	testutils.Must(t, err)
	l, err := itcl.SplitList(all)
	testutils.Must(t, err)
	if len(l) != len(w.OptionNames()) || len(l) != 7 {
		t.Errorf("wrong number of options: have %d, listed %d", len(l), len(w.OptionNames()))
	}
}

// TestToplevel tests the additional options of toplevels.
func TestToplevel(t *testing.T) {
	w, err := hull.New().Create(".top", itcl.HullToplevel, "")
	testutils.Must(t, err)
	if len(w.OptionNames()) != 9 {
		t.Errorf("wrong options: %v", w.OptionNames())
	}
	if v, _ := w.Get("class"); v != "Toplevel" {
		t.Errorf("wrong default class: have %q, want %q", v, "Toplevel")
	}
	if _, err := w.Invoke("configure", "-screen", ":1"); !errors.Is(err, itcl.ErrUsage) {
		t.Errorf("wrong error: have %v, want %v", err, itcl.ErrUsage)
	}
}

// TestDestroy tests that destroying a window destroys its descendants first.
func TestDestroy(t *testing.T) {
	tr := hull.New()
	var order []string
	for _, p := range []string{".a", ".a.b", ".a.b.c", ".d"} {
		w, err := tr.Create(p, itcl.HullFrame, "Frame")
		testutils.Must(t, err)
		p := p
		w.OnDestroy(func() { order = append(order, p) })
	}
	cancel := tr.Window(".d").OnDestroy(func() { t.Error("cancelled observer called") })
	cancel()
	testutils.Must(t, tr.Destroy(".a"))
	want := []string{".a.b.c", ".a.b", ".a"}
	if len(order) != len(want) {
		t.Fatalf("wrong destruction order: have %v, want %v", order, want)
	}
	for k := range want {
		if order[k] != want[k] {
			t.Errorf("wrong destruction order: have %v, want %v", order, want)
			break
		}
	}
	if paths := tr.Paths(); len(paths) != 1 || paths[0] != ".d" {
		t.Errorf("wrong remaining windows: %v", paths)
	}
	if err := tr.Destroy(".a"); !errors.Is(err, itcl.ErrUsage) {
		t.Errorf("wrong error destroying twice: have %v, want %v", err, itcl.ErrUsage)
	}
	testutils.Must(t, tr.Destroy(".d"))
}

// TestWidgets tests the tree as the hull factory of an interpreter.
func TestWidgets(t *testing.T) {
	i := itcl.NewInterp()
	tr, ok := i.Hulls.(*hull.Tree)
	if !ok {
		t.Fatalf("wrong hull factory: %T", i.Hulls)
	}
	k, err := i.NewClass("Panel", itcl.RoleWidget)
	testutils.Must(t, err)
	testutils.Must(t, k.Delegate(&itcl.Delegation{Kind: itcl.DelegateOption, Name: "*", Component: itcl.HullComponent, Except: []string{"class"}}))
	p := testutils.New(t, i, k, ".p")
	q := testutils.New(t, i, k, ".p.q")
	testutils.Invoke(t, p, "configure", "-background", "navy")
	if v, _ := tr.Window(".p").Get("background"); v != "navy" {
		t.Errorf("wrong background: have %q, want %q", v, "navy")
	}
	cases := []struct {
		argv []string
		want string
	}{
		{[]string{"winfo", "class", ".p"}, "Panel"},
		{[]string{"winfo", "exists", ".p.q"}, "1"},
		{[]string{"winfo", "children", "."}, ".p"},
		{[]string{"winfo", "children", ".p"}, ".p.q"},
	}
	for _, c := range cases {
		r, err := i.Exec(c.argv...)
		if err != nil {
			t.Errorf("%v: %v", c.argv, err)
			continue
		}
		if r != c.want {
			t.Errorf("%v: have %q, want %q", c.argv, r, c.want)
		}
	}
	if _, err := i.Exec("destroy", ".p"); err != nil {
		t.Fatal(err)
	}
	if p.Alive() || q.Alive() {
		t.Errorf("objects survived hull destruction: %v %v", p.Alive(), q.Alive())
	}
	if r, _ := i.Exec("winfo", "exists", ".p.q"); r != "0" {
		t.Errorf("window survived destruction")
	}
	if _, err := i.Exec("destroy", ".nope"); !errors.Is(err, itcl.ErrUsage) {
		t.Errorf("wrong error: have %v, want %v", err, itcl.ErrUsage)
	}
}

// TestDestroyObject tests that destroy deletes objects that are not windows.
func TestDestroyObject(t *testing.T) {
	i := itcl.NewInterp()
	k, err := i.NewClass("Plain", itcl.RoleClass)
	testutils.Must(t, err)
	o := testutils.New(t, i, k, "plain")
	if _, err := i.Exec("destroy", "plain"); err != nil {
		t.Fatal(err)
	}
	if o.Alive() {
		t.Error("object survived destroy")
	}
}

// TestLogger tests that the tree logs through a logger set on its interpreter
// after creation.
func TestLogger(t *testing.T) {
	i := itcl.NewInterp()
	core, logs := observer.New(zap.DebugLevel)
	i.Log = zap.New(core)
	tr, ok := i.Hulls.(*hull.Tree)
	if !ok {
		t.Fatalf("wrong hull factory: %T", i.Hulls)
	}
	_, err := tr.Create(".w", itcl.HullFrame, "")
	testutils.Must(t, err)
	testutils.Must(t, tr.Destroy(".w"))
	if n := logs.FilterMessage("create window").Len(); n != 1 {
		t.Errorf("wrong number of create messages: have %d, want 1", n)
	}
	if n := logs.FilterMessage("destroy window").Len(); n != 1 {
		t.Errorf("wrong number of destroy messages: have %d, want 1", n)
	}
}
