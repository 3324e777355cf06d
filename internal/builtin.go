package internal

import (
	"strings"

	"go.uber.org/zap"
)

// builtin describes a method the runtime installs in every class that does
// not define it.
type builtin struct {
	name  string
	usage string
	body  BodyFunc
}

// builtins is the fixed set of built-in methods, in installation order.
var builtins = [...]builtin{
	{"cget", "-option", biCget},
	{"configure", "?-option? ?value -option value...?", biConfigure},
	{"info", "option ?arg arg ...?", biInfo},
	{"isa", "className", biIsa},
}

// InstallBuiltins adds each built-in method to c unless c or any of its
// ancestors already defines a function with that name.
func (c *Class) InstallBuiltins() {
	h := linearize(c)
	for _, b := range builtins {
		if defined(h, b.name) {
			continue
		}
		f := &Function{
			Name:       b.name,
			Kind:       MemberMethod,
			Protection: Public,
			Usage:      b.usage,
			Body:       b.body,
			class:      c,
			builtin:    true,
		}
		c.functions[b.name] = f
		c.funcOrder = append(c.funcOrder, b.name)
		c.interp.log().Debug("install builtin", zapClass(c), zap.String("method", b.name))
	}
	c.interp.touch()
}

// defined reports whether any class in h defines name in its own table.
func defined(h []*Class, name string) bool {
	for _, k := range h {
		if _, ok := k.functions[name]; ok {
			return true
		}
	}
	return false
}

// IsBuiltin reports whether name is one of the built-in method names.
func IsBuiltin(name string) bool {
	for _, b := range builtins {
		if b.name == name {
			return true
		}
	}
	return false
}

func biIsa(c *Call) (string, error) {
	if c.Object == nil {
		return "", errorf(KindContext, "improper usage: should be \"object isa className\"")
	}
	if len(c.Args) != 1 {
		return "", errorf(KindUsage, "wrong # args: should be \"object isa className\"")
	}
	k, err := c.Interp.FindClass(c.Args[0], true)
	if err != nil {
		return "", err
	}
	if c.Object.Isa(k) {
		return "1", nil
	}
	return "0", nil
}

func biCget(c *Call) (string, error) {
	if c.Object == nil {
		return "", errorf(KindContext, "improper usage: should be \"object cget -option\"")
	}
	if f := c.Interp.configureOverride(c.Object.class); f != nil {
		return f(c, "cget", c.Args)
	}
	if len(c.Args) != 1 {
		return "", errorf(KindUsage, "improper usage: should be \"object cget -option\"")
	}
	return c.Object.Cget(c.Args[0])
}

func biConfigure(c *Call) (string, error) {
	if c.Object == nil {
		return "", errorf(KindContext, "improper usage: should be \"object configure ?-option? ?value -option value...?\"")
	}
	o := c.Object
	if f := c.Interp.configureOverride(o.class); f != nil {
		return f(c, "configure", c.Args)
	}
	switch len(c.Args) {
	case 0:
		opts, err := o.Options()
		if err != nil {
			return "", err
		}
		r := make([]string, len(opts))
		for i, opt := range opts {
			r[i] = opt.List()
		}
		return FormatList(r...), nil
	case 1:
		if !strings.HasPrefix(c.Args[0], "-") {
			return "", errorf(KindUsage, "improper usage: should be \"object configure ?-option? ?value -option value...?\"")
		}
		opt, err := o.Option(c.Args[0])
		if err != nil {
			return "", err
		}
		return opt.List(), nil
	}
	return "", o.Configure(c.Args...)
}

func biInfo(c *Call) (string, error) {
	k := c.Class
	if c.Object != nil {
		k = c.Object.class
	}
	if k == nil {
		return "", errorf(KindContext, "improper usage: should be \"object info option ?arg arg ...?\"")
	}
	if len(c.Args) == 0 {
		return "", errorf(KindUsage, "wrong # args: should be \"info option ?arg arg ...?\"")
	}
	sub, args := c.Args[0], c.Args[1:]
	switch sub {
	case "class":
		return k.Name, nil
	case "inherit":
		var r []string
		for _, b := range k.bases {
			r = append(r, b.Name)
		}
		return FormatList(r...), nil
	case "heritage":
		var r []string
		for _, b := range k.Heritage() {
			r = append(r, b.Name)
		}
		return FormatList(r...), nil
	case "function":
		return infoFunction(k, args)
	case "variable":
		return infoVariable(c.Object, k, args)
	case "component":
		return infoComponent(c.Object, k, args)
	case "delegated":
		return infoDelegated(k, args)
	}
	return "", errorf(KindUsage, "bad option %q: should be one of...\n  info class\n  info component ?name?\n  info delegated method|option\n  info function ?name?\n  info heritage\n  info inherit\n  info variable ?name?", sub)
}

func infoFunction(k *Class, args []string) (string, error) {
	switch len(args) {
	case 0:
		var r []string
		for _, h := range k.Heritage() {
			for _, name := range h.funcOrder {
				r = append(r, h.functions[name].FullName())
			}
		}
		return FormatList(r...), nil
	case 1:
		f := k.Resolve(args[0])
		if f == nil {
			return "", errorf(KindUsage, "%q isn't a member function in class %q", args[0], k.Name)
		}
		return FormatList(f.Protection.String(), f.Kind.String(), f.FullName(), f.usage()), nil
	}
	return "", errorf(KindUsage, "wrong # args: should be \"info function ?name?\"")
}

func infoVariable(o *Object, k *Class, args []string) (string, error) {
	switch len(args) {
	case 0:
		var r []string
		for _, h := range k.Heritage() {
			for _, name := range h.varOrder {
				r = append(r, h.variables[name].FullName())
			}
		}
		return FormatList(r...), nil
	case 1:
		lookup := k.ResolveVar(args[0])
		if lookup == nil {
			return "", errorf(KindUsage, "%q isn't a variable in class %q", args[0], k.Name)
		}
		v := lookup.Var
		init, cur := Placeholder, Placeholder
		if v.HasInit && !v.Array {
			init = v.Init
		}
		if o != nil {
			if val, ok := o.value(v); ok {
				cur = val
			}
		}
		return FormatList(v.Protection.String(), "variable", v.FullName(), init, cur), nil
	}
	return "", errorf(KindUsage, "wrong # args: should be \"info variable ?name?\"")
}

func infoComponent(o *Object, k *Class, args []string) (string, error) {
	switch len(args) {
	case 0:
		var r []string
		for _, h := range k.Heritage() {
			r = append(r, h.slotOrder...)
		}
		return FormatList(r...), nil
	case 1:
		if k.Component(args[0]) == nil {
			return "", errorf(KindUsage, "%q isn't a component in class %q", args[0], k.Name)
		}
		if o == nil {
			return k.classComponent(args[0]).Identity(), nil
		}
		return o.components[args[0]].Identity(), nil
	}
	return "", errorf(KindUsage, "wrong # args: should be \"info component ?name?\"")
}

func infoDelegated(k *Class, args []string) (string, error) {
	if len(args) != 1 {
		return "", errorf(KindUsage, "wrong # args: should be \"info delegated method|option\"")
	}
	var kind DelegateKind
	switch args[0] {
	case "method":
		kind = DelegateMethod
	case "proc":
		kind = DelegateProc
	case "option":
		kind = DelegateOption
	default:
		return "", errorf(KindUsage, "bad option %q: should be method, option, or proc", args[0])
	}
	var r []string
	seen := make(map[string]bool)
	for _, h := range k.Heritage() {
		for _, name := range h.delegOrder[kind] {
			if seen[name] {
				continue
			}
			seen[name] = true
			d := h.delegates[kind][name]
			label := name
			if kind == DelegateOption && name != "*" {
				label = "-" + name
			}
			entry := []string{label, d.Component}
			if len(d.Except) > 0 {
				entry = append(entry, strings.Join(d.Except, " "))
			}
			r = append(r, FormatList(entry...))
		}
	}
	return FormatList(r...), nil
}
