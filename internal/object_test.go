package internal_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/zephyrtronium/itcl"
	"github.com/zephyrtronium/itcl/testutils"
)

// TestInvoke tests virtual dispatch through objects.
func TestInvoke(t *testing.T) {
	i := testutils.Interp()
	a, b, _, d := testutils.Diamond(t, i)
	cases := map[string]struct {
		c      *itcl.Class
		method string
		want   string
	}{
		"Own":       {d, "who", "::D"},
		"Inherited": {d, "root", "root"},
		"Base":      {b, "who", "::B"},
		"Root":      {a, "who", "::A"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			o := testutils.New(t, i, c.c, "#auto")
			if have := testutils.Invoke(t, o, c.method); have != c.want {
				t.Errorf("wrong result: have %q, want %q", have, c.want)
			}
		})
	}
}

// TestInvokeUnknown tests the error for methods an object does not have.
func TestInvokeUnknown(t *testing.T) {
	i := testutils.Interp()
	a := testutils.Class(t, i, "A")
	testutils.Must(t, a.AddFunction(testutils.Method("go", testutils.Returns(""), "x", "args")))
	o := testutils.New(t, i, a, "o")
	_, err := o.Invoke("nope")
	if !errors.Is(err, itcl.ErrUnknownMethod) {
		t.Fatalf("wrong error: have %v, want unknown method", err)
	}
	want := strings.Join([]string{
		`bad option "nope": should be one of...`,
		"  o cget -option",
		"  o configure ?-option? ?value -option value...?",
		"  o go x ?arg arg ...?",
		"  o info option ?arg arg ...?",
		"  o isa className",
	}, "\n")
	if err.Error() != want {
		t.Errorf("wrong message:\nhave %s\nwant %s", err.Error(), want)
	}
}

// TestProtection tests that protected and private methods are callable only
// from suitable class contexts.
func TestProtection(t *testing.T) {
	i := testutils.Interp()
	a := testutils.Class(t, i, "A")
	b := testutils.Class(t, i, "B", a)
	prot := testutils.Method("prot", testutils.Returns("prot"))
	prot.Protection = itcl.Protected
	priv := testutils.Method("priv", testutils.Returns("priv"))
	priv.Protection = itcl.Private
	testutils.Must(t, b.AddFunction(prot))
	testutils.Must(t, b.AddFunction(priv))
	call := func(name string) itcl.BodyFunc {
		return func(c *itcl.Call) (string, error) {
			return c.Object.Invoke(name)
		}
	}
	testutils.Must(t, a.AddFunction(testutils.Method("fromA", call("prot"))))
	testutils.Must(t, a.AddFunction(testutils.Method("privFromA", call("priv"))))
	testutils.Must(t, b.AddFunction(testutils.Method("fromB", call("priv"))))
	o := testutils.New(t, i, b, "o")
	cases := map[string]struct {
		method string
		want   string
		err    error
	}{
		"ProtectedOutside": {"prot", "", itcl.ErrAccess},
		"PrivateOutside":   {"priv", "", itcl.ErrAccess},
		"ProtectedFromA":   {"fromA", "prot", nil},
		"PrivateFromA":     {"privFromA", "", itcl.ErrAccess},
		"PrivateFromB":     {"fromB", "priv", nil},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := o.Invoke(c.method)
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
}

// TestObjectLifecycle tests construction and destruction order.
func TestObjectLifecycle(t *testing.T) {
	i := testutils.Interp()
	a := testutils.Class(t, i, "A")
	b := testutils.Class(t, i, "B", a)
	var log []string
	rec := func(s string) itcl.BodyFunc {
		return func(c *itcl.Call) (string, error) {
			log = append(log, s+":"+c.Name)
			return "", nil
		}
	}
	testutils.Must(t, a.AddFunction(testutils.Destructor(rec("~A"))))
	testutils.Must(t, b.AddFunction(testutils.Destructor(rec("~B"))))
	testutils.Must(t, b.AddFunction(testutils.Constructor(rec("B"))))
	o := testutils.New(t, i, b, "obj")
	if i.Object("obj") != o {
		t.Error("object is not registered")
	}
	if _, err := i.New(b, "obj"); !errors.Is(err, itcl.ErrUsage) {
		t.Errorf("duplicate name: have %v, want usage error", err)
	}
	testutils.Must(t, o.Delete())
	if have, want := strings.Join(log, " "), "B:obj ~B:obj ~A:obj"; have != want {
		t.Errorf("wrong lifecycle: have %q, want %q", have, want)
	}
	if o.Alive() || i.Object("obj") != nil {
		t.Error("object still alive after delete")
	}
	testutils.Must(t, o.Delete())
	if len(log) != 3 {
		t.Errorf("second delete ran destructors: %v", log)
	}
	if _, err := o.Invoke("cget", "-x"); !errors.Is(err, itcl.ErrContext) {
		t.Errorf("invoke on deleted object: have %v, want context error", err)
	}
}

// TestConstructorFailure tests that a failing constructor leaves no object.
func TestConstructorFailure(t *testing.T) {
	i := testutils.Interp()
	a := testutils.Class(t, i, "A")
	testutils.Must(t, a.AddFunction(testutils.Constructor(testutils.Fails("no"))))
	_, err := i.New(a, "obj")
	if err == nil || err.Error() != "no" {
		t.Errorf("wrong error: have %v, want no", err)
	}
	if i.Object("obj") != nil {
		t.Error("failed object is registered")
	}
}

// TestDestructorFailure tests that a failing destructor keeps the object.
func TestDestructorFailure(t *testing.T) {
	i := testutils.Interp()
	a := testutils.Class(t, i, "A")
	testutils.Must(t, a.AddFunction(testutils.Destructor(testutils.Fails("busy"))))
	o := testutils.New(t, i, a, "obj")
	if err := o.Delete(); err == nil {
		t.Fatal("delete succeeded")
	}
	if !o.Alive() {
		t.Error("object died despite destructor failure")
	}
}

// TestNewWithoutConstructor tests that creation arguments configure the
// object when no constructor exists.
func TestNewWithoutConstructor(t *testing.T) {
	i := testutils.Interp()
	a := testutils.Class(t, i, "A")
	testutils.Must(t, a.AddVariable(testutils.PublicVar("x", "1")))
	o := testutils.New(t, i, a, "obj", "-x", "2")
	if v, _ := o.Var("x"); v != "2" {
		t.Errorf("wrong x: have %q, want %q", v, "2")
	}
	if _, err := i.New(a, "bad", "-y", "2"); !errors.Is(err, itcl.ErrUnknownOption) {
		t.Errorf("wrong error: have %v, want unknown option", err)
	}
	if i.Object("bad") != nil {
		t.Error("failed object is registered")
	}
}

// TestAutoName tests automatic object names.
func TestAutoName(t *testing.T) {
	i := testutils.Interp()
	a := testutils.Class(t, i, "Thing")
	o1 := testutils.New(t, i, a, "#auto")
	o2 := testutils.New(t, i, a, "x.#auto")
	if !strings.HasPrefix(o1.Name(), "thing") {
		t.Errorf("wrong auto name %q", o1.Name())
	}
	if !strings.HasPrefix(o2.Name(), "x.thing") || o1.Name() == o2.Name()[2:] {
		t.Errorf("wrong auto name %q", o2.Name())
	}
}

// TestSeparateStorage tests that same-named variables of different classes
// are stored separately.
func TestSeparateStorage(t *testing.T) {
	i := testutils.Interp()
	a := testutils.Class(t, i, "A")
	b := testutils.Class(t, i, "B")
	c := testutils.Class(t, i, "C", a, b)
	testutils.Must(t, a.AddVariable(testutils.PublicVar("v", "a")))
	testutils.Must(t, b.AddVariable(testutils.PublicVar("v", "b")))
	o := testutils.New(t, i, c, "o")
	testutils.Must(t, o.SetVar("B::v", "changed"))
	if v, _ := o.Var("v"); v != "a" {
		t.Errorf("wrong v: have %q, want %q", v, "a")
	}
	if v, _ := o.Var("B::v"); v != "changed" {
		t.Errorf("wrong B::v: have %q, want %q", v, "changed")
	}
}
