package decl_test

import (
	"errors"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zephyrtronium/itcl"
	"github.com/zephyrtronium/itcl/coreext/decl"
	"github.com/zephyrtronium/itcl/testutils"
)

const shapes = `
classes:
  - name: Shape
    variables:
      - {name: color, protection: public, init: red}
      - {name: sides, init: "0"}
    methods:
      - name: describe
        body: return "$this is $color"
      - name: grow
        args: ["{by 1}"]
        body: incr sides $by
  - name: Square
    inherit: [Shape]
    constructor:
      args: [args]
      body: |
        set sides 4
        configure {*}$args
    methods:
      - name: describe
        body: return "square [chain]"
`

func load(t *testing.T, i *itcl.Interp, src string) []*itcl.Class {
	t.Helper()
	classes, err := decl.Load(i, strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return classes
}

// TestLoad tests declaring classes and running their scripts.
func TestLoad(t *testing.T) {
	i := testutils.Interp()
	classes := load(t, i, shapes)
	if len(classes) != 2 || classes[0].Name != "::Shape" || classes[1].Name != "::Square" {
		t.Fatalf("wrong classes: %v", classes)
	}
	sq := classes[1]
	if h := sq.Heritage(); len(h) != 2 || h[1] != classes[0] {
		t.Errorf("wrong heritage: %v", h)
	}
	if v := classes[0].Variable("sides"); v == nil || v.Protection != itcl.Protected {
		t.Errorf("wrong default variable protection: %+v", v)
	}
	o := testutils.New(t, i, sq, "sq", "-color", "blue")
	if have := testutils.Invoke(t, o, "describe"); have != "square sq is blue" {
		t.Errorf("wrong description: have %q", have)
	}
	if have := testutils.Invoke(t, o, "grow", "2"); have != "6" {
		t.Errorf("wrong growth: have %q, want %q", have, "6")
	}
}

// TestLoadWidget tests widget declarations with delegated options.
func TestLoadWidget(t *testing.T) {
	i := testutils.Interp()
	classes := load(t, i, `
classes:
  - name: Panel
    kind: widget
    toplevel: true
    delegate:
      - {option: -background, to: hull}
      - {method: "*", to: hull, except: [destroy]}
`)
	k := classes[0]
	if k.Role != itcl.RoleWidget || k.Flags != itcl.FlagToplevel {
		t.Errorf("wrong role or flags: %v %v", k.Role, k.Flags)
	}
	o := testutils.New(t, i, k, ".p")
	if have := testutils.Invoke(t, o, "cget", "-background"); have != "#d9d9d9" {
		t.Errorf("wrong background: have %q", have)
	}
	if have := testutils.Invoke(t, o, "raise", "x"); have != "raise x" {
		t.Errorf("wrong forwarded result: have %q", have)
	}
}

// TestLoadErrors tests malformed declarations.
func TestLoadErrors(t *testing.T) {
	cases := map[string]struct {
		src string
		err error
	}{
		"UnknownField": {"classes: [{name: A, colour: red}]", itcl.ErrDeclaration},
		"Kind":         {"classes: [{name: A, kind: gadget}]", itcl.ErrDeclaration},
		"Protection":   {"classes: [{name: A, methods: [{name: m, protection: secret}]}]", itcl.ErrDeclaration},
		"Delegate":     {"classes: [{name: A, components: [c], delegate: [{method: m, option: o, to: c}]}]", itcl.ErrDeclaration},
		"Component":    {"classes: [{name: A, delegate: [{method: m, to: nowhere}]}]", itcl.ErrDeclaration},
		"Duplicate":    {"classes: [{name: A}, {name: A}]", itcl.ErrDeclaration},
		"Base":         {"classes: [{name: A, inherit: [Missing]}]", itcl.ErrUnresolvedClass},
		"Body":         {"classes: [{name: A, methods: [{name: m, body: 'set x {'}]}]", itcl.ErrUsage},
		"Hook":         {"classes: [{name: A, variables: [{name: v, config: '\"'}]}]", itcl.ErrUsage},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decl.Load(testutils.Interp(), strings.NewReader(c.src))
			if !errors.Is(err, c.err) {
				t.Errorf("wrong error: have %v, want %v", err, c.err)
			}
		})
	}
}

// TestDir tests loading base classes on demand from a directory.
func TestDir(t *testing.T) {
	dir := t.TempDir()
	base := "classes: [{name: Base, methods: [{name: hello, body: return hi}]}]"
	testutils.Must(t, ioutil.WriteFile(filepath.Join(dir, "Base.yaml"), []byte(base), 0o644))
	i := testutils.Interp()
	i.Loader = decl.Dir(dir)
	classes := load(t, i, "classes: [{name: Derived, inherit: [Base]}]")
	o := testutils.New(t, i, classes[0], "d")
	if have := testutils.Invoke(t, o, "hello"); have != "hi" {
		t.Errorf("wrong result: have %q, want %q", have, "hi")
	}
	if have := testutils.Invoke(t, o, "isa", "Base"); have != "1" {
		t.Errorf("wrong isa: have %q, want %q", have, "1")
	}
	if _, err := i.FindClass("Other", true); !errors.Is(err, itcl.ErrUnresolvedClass) {
		t.Errorf("wrong error for missing file: have %v, want %v", err, itcl.ErrUnresolvedClass)
	}
}

// TestSource tests the source command.
func TestSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shapes.yaml")
	testutils.Must(t, ioutil.WriteFile(path, []byte(shapes), 0o644))
	i := testutils.Interp()
	r, err := i.Exec("source", path)
	if err != nil {
		t.Fatal(err)
	}
	if r != "::Shape ::Square" {
		t.Errorf("wrong result: have %q, want %q", r, "::Shape ::Square")
	}
	if _, err := i.Exec("source"); !errors.Is(err, itcl.ErrUsage) {
		t.Errorf("wrong error: have %v, want %v", err, itcl.ErrUsage)
	}
}
