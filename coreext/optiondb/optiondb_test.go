package optiondb_test

import (
	"errors"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zephyrtronium/itcl"
	"github.com/zephyrtronium/itcl/coreext/optiondb"
	"github.com/zephyrtronium/itcl/testutils"
)

// classes maps window paths to classes for lookups.
var classes = map[string]string{
	".tb":     "Frame",
	".tb.ok":  "Button",
	".tb.lbl": "Label",
}

func newDB(t *testing.T, patterns ...string) *optiondb.DB {
	t.Helper()
	db := optiondb.New()
	db.ClassOf = func(path string) string { return classes[path] }
	for k := 0; k+1 < len(patterns); k += 2 {
		testutils.Must(t, db.Add(patterns[k], patterns[k+1]))
	}
	return db
}

// TestGet tests pattern precedence.
func TestGet(t *testing.T) {
	cases := map[string]struct {
		patterns []string
		path     string
		name     string
		want     string
		ok       bool
	}{
		"Empty":      {nil, ".tb.ok", "background", "", false},
		"Loose":      {[]string{"*background", "gray"}, ".tb.ok", "background", "gray", true},
		"LooseClass": {[]string{"*Background", "gray"}, ".tb.ok", "background", "gray", true},
		"Tight":      {[]string{"background", "gray"}, ".tb.ok", "background", "", false},
		"ClassLevel": {[]string{"*background", "gray", "*Button.background", "red"}, ".tb.ok", "background", "red", true},
		"OtherClass": {[]string{"*background", "gray", "*Button.background", "red"}, ".tb.lbl", "background", "gray", true},
		"NameBeatsClass": {
			[]string{"*ok.background", "blue", "*Button.background", "red"},
			".tb.ok", "background", "blue", true,
		},
		"Exact": {
			[]string{".tb.ok.background", "green", "*Button.background", "red", "*background", "gray"},
			".tb.ok", "background", "green", true,
		},
		"Any":        {[]string{".tb.?.background", "any", "*background", "gray"}, ".tb.lbl", "background", "any", true},
		"LaterWins":  {[]string{"*background", "gray", "*background", "white"}, ".tb", "background", "white", true},
		"TightBeats": {[]string{"*tb*background", "loose", ".tb*background", "tight"}, ".tb.ok", "background", "tight", true},
		"Derived":    {[]string{"*Frame.Foreground", "black"}, ".tb", "foreground", "black", true},
		"DefaultCls": {[]string{"*Other.background", "pink"}, ".other", "background", "pink", true},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			db := newDB(t, c.patterns...)
			v, ok := db.LookupDefault(c.path, c.name)
			if v != c.want || ok != c.ok {
				t.Errorf("wrong result: have %q %v, want %q %v", v, ok, c.want, c.ok)
			}
		})
	}
}

// TestPriority tests that priority outranks specificity.
func TestPriority(t *testing.T) {
	db := newDB(t)
	testutils.Must(t, db.AddPriority(".tb.ok.background", "widget", optiondb.WidgetDefault))
	testutils.Must(t, db.AddPriority("*background", "user", optiondb.UserDefault))
	if v, _ := db.Get(".tb.ok", "background", "Background"); v != "user" {
		t.Errorf("wrong result: have %q, want %q", v, "user")
	}
}

// TestAddErrors tests malformed patterns.
func TestAddErrors(t *testing.T) {
	cases := map[string]string{
		"Empty":    "",
		"Trailing": "*Button.",
		"Blank":    "*Button. background",
		"Any":      "*Button.?",
		"Only":     "*",
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			if err := optiondb.New().Add(p, "x"); !errors.Is(err, itcl.ErrUsage) {
				t.Errorf("wrong error: have %v, want %v", err, itcl.ErrUsage)
			}
		})
	}
}

// TestClass tests deriving option classes from names.
func TestClass(t *testing.T) {
	cases := map[string]string{
		"background":  "Background",
		"borderWidth": "BorderWidth",
		"x":           "X",
	}
	for name, want := range cases {
		if have := optiondb.Class(name); have != want {
			t.Errorf("wrong class for %q: have %q, want %q", name, have, want)
		}
	}
}

const resources = `! a comment
# another comment

*Button.background: red
*font: \
	Helvetica 12
*text: line\none
`

// TestRead tests reading resource files.
func TestRead(t *testing.T) {
	db := newDB(t)
	testutils.Must(t, db.Read(strings.NewReader(resources), optiondb.StartupFile))
	if db.Len() != 3 {
		t.Fatalf("wrong number of patterns: have %d, want 3", db.Len())
	}
	cases := map[string]string{
		"background": "red",
		"font":       "Helvetica 12",
		"text":       "line\none",
	}
	for name, want := range cases {
		if v, _ := db.LookupDefault(".tb.ok", name); v != want {
			t.Errorf("wrong %s: have %q, want %q", name, v, want)
		}
	}
	err := db.Read(strings.NewReader("*a: b\nnocolon\n"), optiondb.StartupFile)
	if !errors.Is(err, itcl.ErrUsage) {
		t.Errorf("wrong error: have %v, want %v", err, itcl.ErrUsage)
	}
}

// TestCommand tests the option command and its use for component defaults.
func TestCommand(t *testing.T) {
	i := testutils.Interp()
	if _, ok := i.Defaults.(*optiondb.DB); !ok {
		t.Fatalf("wrong default source: %T", i.Defaults)
	}
	path := filepath.Join(t.TempDir(), "app.ad")
	testutils.Must(t, ioutil.WriteFile(path, []byte("*Panel.borderwidth: 2\n"), 0o644))
	cmds := [][]string{
		{"option", "add", "*Panel.background", "navy", "userDefault"},
		{"option", "readfile", path, "startupFile"},
	}
	for _, cmd := range cmds {
		if _, err := i.Exec(cmd...); err != nil {
			t.Fatalf("%v: %v", cmd, err)
		}
	}
	if r, err := i.Exec("option", "get", ".p", "background", "Background"); err != nil || r != "" {
		t.Errorf("window class resolved without an object: %q %v", r, err)
	}
	k, err := i.NewClass("Panel", itcl.RoleWidget)
	testutils.Must(t, err)
	testutils.Must(t, k.Delegate(&itcl.Delegation{Kind: itcl.DelegateOption, Name: "-background", Component: itcl.HullComponent}))
	testutils.Must(t, k.Delegate(&itcl.Delegation{Kind: itcl.DelegateOption, Name: "-borderwidth", Component: itcl.HullComponent}))
	testutils.New(t, i, k, ".p")
	hull := i.Hulls.(*testutils.Hulls).Last()
	if have := hull.Option("background"); have != "navy" {
		t.Errorf("wrong background: have %q, want %q", have, "navy")
	}
	if have := hull.Option("borderwidth"); have != "2" {
		t.Errorf("wrong borderwidth: have %q, want %q", have, "2")
	}
	if r, _ := i.Exec("option", "get", ".p", "background", "Background"); r != "navy" {
		t.Errorf("wrong option get: have %q, want %q", r, "navy")
	}
	if _, err := i.Exec("option", "add", "*x", "y", "loud"); !errors.Is(err, itcl.ErrUsage) {
		t.Errorf("wrong error for priority: have %v, want %v", err, itcl.ErrUsage)
	}
	if _, err := i.Exec("option", "clear"); err != nil {
		t.Fatal(err)
	}
	if r, _ := i.Exec("option", "get", ".p", "background", "Background"); r != "" {
		t.Errorf("option survived clear: %q", r)
	}
}
