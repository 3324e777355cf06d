// Package decl declares classes from YAML files.
//
// A declaration file holds a list of classes:
//
//	classes:
//	  - name: Counter
//	    inherit: [Base]
//	    variables:
//	      - {name: count, protection: public, init: "0", config: "..."}
//	    methods:
//	      - {name: bump, args: ["{by 1}"], body: "incr count $by"}
//	    delegate:
//	      - {method: "*", to: inner, except: [destroy]}
//
// Bodies and configuration hooks are scripts in the language of package
// script. Base classes that are not yet declared are resolved through the
// interpreter's Loader.
package decl

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/zephyrtronium/itcl"
	"github.com/zephyrtronium/itcl/coreext/script"
)

// File is the top level of a declaration file.
type File struct {
	Classes []Class `yaml:"classes"`
}

// Class declares one class.
type Class struct {
	Name string `yaml:"name"`

	// Kind is class, widget, or widgetadaptor. Empty means class.
	Kind     string   `yaml:"kind"`
	Frame    bool     `yaml:"frame"`
	Toplevel bool     `yaml:"toplevel"`
	Inherit  []string `yaml:"inherit"`

	Variables   []Variable `yaml:"variables"`
	Methods     []Function `yaml:"methods"`
	Procs       []Function `yaml:"procs"`
	Constructor *Function  `yaml:"constructor"`
	Destructor  *Function  `yaml:"destructor"`
	Components  []string   `yaml:"components"`
	Delegate    []Delegate `yaml:"delegate"`
}

// Variable declares an instance variable. Variables are protected unless
// stated otherwise.
type Variable struct {
	Name       string  `yaml:"name"`
	Protection string  `yaml:"protection"`
	Init       *string `yaml:"init"`
	Array      bool    `yaml:"array"`
	// Config is the configuration hook script.
	Config     string  `yaml:"config"`
}

// Function declares a method, proc, constructor, or destructor. Functions
// are public unless stated otherwise.
type Function struct {
	Name       string   `yaml:"name"`
	Protection string   `yaml:"protection"`
	Args       []string `yaml:"args"`
	Body       string   `yaml:"body"`
}

// Delegate declares a delegation. Exactly one of Method, Proc, and Option
// names what is delegated.
type Delegate struct {
	Method string   `yaml:"method"`
	Proc   string   `yaml:"proc"`
	Option string   `yaml:"option"`
	// To is the component slot.
	To     string   `yaml:"to"`
	As     string   `yaml:"as"`
	Using  string   `yaml:"using"`
	Except []string `yaml:"except"`
}

// Load reads declarations from r and declares their classes in i, in order.
// It returns the classes declared.
func Load(i *itcl.Interp, r io.Reader) ([]*itcl.Class, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.UnmarshalStrict(b, &f); err != nil {
		return nil, &itcl.Error{Kind: itcl.KindDeclaration, Detail: "bad declaration file", Cause: err}
	}
	classes := make([]*itcl.Class, 0, len(f.Classes))
	for k := range f.Classes {
		c, err := f.Classes[k].Declare(i)
		if err != nil {
			return classes, err
		}
		classes = append(classes, c)
	}
	return classes, nil
}

// LoadFile reads declarations from the file at path.
func LoadFile(i *itcl.Interp, path string) ([]*itcl.Class, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	logger(i).Debug("load declarations", zap.String("file", path))
	classes, err := Load(i, bytes.NewReader(b))
	if err != nil {
		return classes, fmt.Errorf("%s: %w", path, err)
	}
	return classes, nil
}

// Declare declares the class in i.
func (d *Class) Declare(i *itcl.Interp) (*itcl.Class, error) {
	r, err := parseRole(d.Kind)
	if err != nil {
		return nil, err
	}
	bases := make([]*itcl.Class, 0, len(d.Inherit))
	for _, name := range d.Inherit {
		b, err := i.FindClass(name, true)
		if err != nil {
			return nil, err
		}
		bases = append(bases, b)
	}
	c, err := i.NewClass(d.Name, r, bases...)
	if err != nil {
		return nil, err
	}
	if d.Frame {
		c.Flags |= itcl.FlagFrame
	}
	if d.Toplevel {
		c.Flags |= itcl.FlagToplevel
	}
	for k := range d.Variables {
		v, err := d.Variables[k].variable()
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", d.Name, err)
		}
		if err := c.AddVariable(v); err != nil {
			return nil, err
		}
	}
	if err := addFunctions(c, itcl.MemberMethod, d.Methods); err != nil {
		return nil, err
	}
	if err := addFunctions(c, itcl.MemberProc, d.Procs); err != nil {
		return nil, err
	}
	if d.Constructor != nil {
		if err := addFunctions(c, itcl.MemberConstructor, []Function{*d.Constructor}); err != nil {
			return nil, err
		}
	}
	if d.Destructor != nil {
		if err := addFunctions(c, itcl.MemberDestructor, []Function{*d.Destructor}); err != nil {
			return nil, err
		}
	}
	for _, name := range d.Components {
		if _, err := c.AddComponent(name); err != nil {
			return nil, err
		}
	}
	for k := range d.Delegate {
		dl, err := d.Delegate[k].delegation()
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", d.Name, err)
		}
		if err := c.Delegate(dl); err != nil {
			return nil, err
		}
	}
	if err := c.Finalize(); err != nil {
		return nil, err
	}
	logger(i).Debug("declared class", zap.String("class", c.Name), zap.Stringer("role", c.Role))
	return c, nil
}

func addFunctions(c *itcl.Class, kind itcl.MemberKind, fns []Function) error {
	for k := range fns {
		f, err := fns[k].function(kind)
		if err != nil {
			return fmt.Errorf("class %s: %w", c.Name, err)
		}
		if err := c.AddFunction(f); err != nil {
			return err
		}
	}
	return nil
}

func (v *Variable) variable() (*itcl.Variable, error) {
	p, err := protection(v.Protection, itcl.Protected)
	if err != nil {
		return nil, err
	}
	r := &itcl.Variable{Name: v.Name, Protection: p, Array: v.Array}
	if v.Init != nil {
		r.Init, r.HasInit = *v.Init, true
	}
	if v.Config != "" {
		s, err := script.Parse(v.Config)
		if err != nil {
			return nil, fmt.Errorf("config hook of %s: %w", v.Name, err)
		}
		r.Hook = s
	}
	return r, nil
}

func (f *Function) function(kind itcl.MemberKind) (*itcl.Function, error) {
	p, err := protection(f.Protection, itcl.Public)
	if err != nil {
		return nil, err
	}
	s, err := script.Parse(f.Body)
	if err != nil {
		return nil, fmt.Errorf("body of %s %s: %w", kind, f.Name, err)
	}
	return &itcl.Function{Name: f.Name, Kind: kind, Protection: p, Params: f.Args, Body: s}, nil
}

func (d *Delegate) delegation() (*itcl.Delegation, error) {
	r := &itcl.Delegation{Component: d.To, Using: d.Using, Except: d.Except}
	n := 0
	if d.Method != "" {
		r.Kind, r.Name = itcl.DelegateMethod, d.Method
		n++
	}
	if d.Proc != "" {
		r.Kind, r.Name = itcl.DelegateProc, d.Proc
		n++
	}
	if d.Option != "" {
		r.Kind, r.Name = itcl.DelegateOption, d.Option
		n++
	}
	if n != 1 {
		return nil, &itcl.Error{Kind: itcl.KindDeclaration, Detail: "delegate entry must name exactly one of method, proc, or option"}
	}
	if d.As != "" {
		r.As = strings.Fields(d.As)
	}
	return r, nil
}

func parseRole(kind string) (itcl.Role, error) {
	switch kind {
	case "", "class":
		return itcl.RoleClass, nil
	case "widget":
		return itcl.RoleWidget, nil
	case "widgetadaptor":
		return itcl.RoleWidgetAdaptor, nil
	}
	return 0, &itcl.Error{Kind: itcl.KindDeclaration, Detail: fmt.Sprintf("bad class kind %q: must be class, widget, or widgetadaptor", kind)}
}

func protection(s string, def itcl.Protection) (itcl.Protection, error) {
	switch s {
	case "":
		return def, nil
	case "public":
		return itcl.Public, nil
	case "protected":
		return itcl.Protected, nil
	case "private":
		return itcl.Private, nil
	}
	return 0, &itcl.Error{Kind: itcl.KindDeclaration, Detail: fmt.Sprintf("bad protection %q", s)}
}

// Dir is a Loader that declares a class from the file named after the class's
// simple name with the extension .yaml in the directory.
type Dir string

// LoadClass implements itcl.Loader. A missing file is not an error; the
// class simply remains undeclared.
func (d Dir) LoadClass(i *itcl.Interp, name string) error {
	tail := name
	if k := strings.LastIndex(name, "::"); k >= 0 {
		tail = name[k+2:]
	}
	path := filepath.Join(string(d), tail+".yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	_, err := LoadFile(i, path)
	return err
}

func logger(i *itcl.Interp) *zap.Logger {
	if i.Log != nil {
		return i.Log
	}
	return itcl.Logger()
}

func init() {
	itcl.Register(func(i *itcl.Interp) {
		i.Commands["source"] = source
	})
}

// source file ?file ...?
func source(i *itcl.Interp, args []string) (string, error) {
	if len(args) == 0 {
		return "", &itcl.Error{Kind: itcl.KindUsage, Detail: "wrong # args: should be \"source fileName ?fileName ...?\""}
	}
	var names []string
	for _, path := range args {
		classes, err := LoadFile(i, path)
		for _, c := range classes {
			names = append(names, c.Name)
		}
		if err != nil {
			return itcl.FormatList(names...), err
		}
	}
	return itcl.FormatList(names...), nil
}
