package internal_test

import (
	"reflect"
	"testing"

	"github.com/zephyrtronium/itcl"
)

// TestFormatList tests list quoting.
func TestFormatList(t *testing.T) {
	cases := map[string]struct {
		elems []string
		want  string
	}{
		"Empty":     {nil, ""},
		"Bare":      {[]string{"-x", "1"}, "-x 1"},
		"EmptyElem": {[]string{"a", ""}, "a {}"},
		"Space":     {[]string{"a b", "c"}, "{a b} c"},
		"Nested":    {[]string{"{a b}"}, "{{a b}}"},
		"Unbalance": {[]string{"a{"}, `a\{`},
		"Hash":      {[]string{"#x"}, "{#x}"},
		"Dollar":    {[]string{"$v"}, "{$v}"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if have := itcl.FormatList(c.elems...); have != c.want {
				t.Errorf("wrong list: have %q, want %q", have, c.want)
			}
		})
	}
}

// TestSplitList tests list splitting, including elements produced by
// FormatList.
func TestSplitList(t *testing.T) {
	cases := map[string]struct {
		s    string
		want []string
		err  bool
	}{
		"Empty":    {"", nil, false},
		"Bare":     {"a  b\tc", []string{"a", "b", "c"}, false},
		"Braced":   {"{a b} {} c", []string{"a b", "", "c"}, false},
		"Nested":   {"{a {b c}}", []string{"a {b c}"}, false},
		"Quoted":   {`"a b" "c\"d"`, []string{"a b", `c"d`}, false},
		"Escape":   {`a\{ b\ c`, []string{"a{", "b c"}, false},
		"Unclosed": {"{a", nil, true},
		"Trailing": {"{a}b", nil, true},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			have, err := itcl.SplitList(c.s)
			if c.err {
				if err == nil {
					t.Errorf("no error for %q", c.s)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(have, c.want) {
				t.Errorf("wrong elements: have %q, want %q", have, c.want)
			}
		})
	}
	elems := []string{"-x", "", "a b", "{c}", "d{", "$e", "f\\"}
	have, err := itcl.SplitList(itcl.FormatList(elems...))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(have, elems) {
		t.Errorf("round trip: have %q, want %q", have, elems)
	}
}
