package internal

import (
	"strings"

	"go.uber.org/zap"
)

// Placeholder is reported for options with no initial or current value.
const Placeholder = "<undefined>"

// OptionInfo describes one configuration option of an object.
type OptionInfo struct {
	// Label is the option name with its leading dash.
	Label string
	// Init is the initial value, or Placeholder.
	Init string
	// Current is the current value, or Placeholder.
	Current string
}

// List formats the option as a three-element list.
func (o OptionInfo) List() string {
	return FormatList(o.Label, o.Init, o.Current)
}

// Options enumerates the configuration options of o: every public variable
// reachable from its class, in hierarchy order, followed by delegated
// options not shadowed by a variable. Options bypasses widget configure
// overrides; invoke "configure" to honor them.
func (o *Object) Options() ([]OptionInfo, error) {
	var r []OptionInfo
	seen := make(map[string]bool)
	for _, k := range o.class.Heritage() {
		for _, name := range k.varOrder {
			v := k.variables[name]
			if v.Protection != Public {
				continue
			}
			info := o.varOption(v)
			if seen[info.Label] {
				continue
			}
			seen[info.Label] = true
			r = append(r, info)
		}
	}
	for _, d := range o.class.optionDelegations("") {
		if d.Name == "*" {
			names, err := o.wildcardOptions(d)
			if err != nil {
				return nil, err
			}
			for _, name := range names {
				if seen["-"+name] || o.class.delegation(DelegateOption, name) != d {
					continue
				}
				seen["-"+name] = true
				info, err := o.delegatedOption(d, name)
				if err != nil {
					return nil, err
				}
				r = append(r, info)
			}
			continue
		}
		if seen["-"+d.Name] {
			continue
		}
		seen["-"+d.Name] = true
		info, err := o.delegatedOption(d, d.Name)
		if err != nil {
			return nil, err
		}
		r = append(r, info)
	}
	return r, nil
}

// Option describes the single option name, which must begin with a dash.
func (o *Object) Option(name string) (OptionInfo, error) {
	if !strings.HasPrefix(name, "-") {
		return OptionInfo{}, unknownOption(name)
	}
	if v := o.publicVar(name[1:]); v != nil {
		return o.varOption(v), nil
	}
	if d := o.class.delegation(DelegateOption, name[1:]); d != nil {
		return o.delegatedOption(d, name[1:])
	}
	return OptionInfo{}, unknownOption(name)
}

// Cget returns the current value of the option name, or Placeholder if it
// has none. Cget bypasses widget configure overrides.
func (o *Object) Cget(name string) (string, error) {
	if !strings.HasPrefix(name, "-") {
		return "", unknownOption(name)
	}
	if v := o.publicVar(name[1:]); v != nil {
		if val, ok := o.value(v); ok {
			return val, nil
		}
		return Placeholder, nil
	}
	if d := o.class.delegation(DelegateOption, name[1:]); d != nil {
		comp := o.components[d.Component]
		if comp == nil {
			return Placeholder, nil
		}
		return comp.Invoke("cget", "-"+d.target(name[1:]))
	}
	return "", unknownOption(name)
}

// Configure sets options from name-value pairs in order. Each value is
// written and then the variable's hook runs in the context of the class
// that declared the variable. If a hook fails, the value is restored,
// the remaining pairs are not processed, and the hook's error is returned
// annotated with the variable's name. Configure bypasses widget configure
// overrides.
func (o *Object) Configure(args ...string) error {
	for k := 0; k < len(args); k += 2 {
		name := args[k]
		var v *Variable
		var d *Delegation
		if strings.HasPrefix(name, "-") {
			if v = o.publicVar(name[1:]); v == nil {
				d = o.class.delegation(DelegateOption, name[1:])
			}
		}
		if v == nil && d == nil {
			return unknownOption(name)
		}
		if k+1 >= len(args) {
			return errorf(KindMissingValue, "value for %q missing", name)
		}
		val := args[k+1]
		if d != nil {
			if err := o.configureDelegated(d, name[1:], val); err != nil {
				return err
			}
			continue
		}
		if err := o.configureVar(v, val); err != nil {
			return err
		}
	}
	return nil
}

// configureVar writes v and runs its hook, rolling back on failure.
func (o *Object) configureVar(v *Variable, val string) error {
	if v.Array {
		return &Error{
			Kind:   KindUsage,
			Detail: "can't set \"" + v.Name + "\": variable is array",
			Option: v.FullName(),
		}
	}
	key := varKey{v.class, v.Name}
	old, had := o.scalars[key]
	o.scalars[key] = val
	if v.Hook == nil {
		return nil
	}
	c := &Call{
		Interp:   o.interp,
		Class:    v.class,
		Object:   o,
		Variable: v,
		Name:     v.FullName(),
	}
	_, err := o.runHook(c)
	if err == nil {
		return nil
	}
	if had {
		o.scalars[key] = old
	} else {
		delete(o.scalars, key)
	}
	o.interp.log().Warn("configuration hook failed",
		zap.String("object", o.name),
		zap.String("variable", v.FullName()),
		zap.Error(err),
	)
	return &Error{Kind: KindHook, Cause: err, Option: v.FullName()}
}

// runHook executes the hook of c.Variable with c as the current context.
func (o *Object) runHook(c *Call) (string, error) {
	o.interp.push(c)
	defer o.interp.pop()
	return c.Variable.Hook.Exec(c)
}

// configureDelegated forwards an option write to its component and records
// the value in the itcl_options array when the class has one.
func (o *Object) configureDelegated(d *Delegation, name, val string) error {
	comp := o.components[d.Component]
	if comp == nil {
		return errorf(KindUsage, "component %q is not installed in %q", d.Component, o.name)
	}
	if _, err := comp.Invoke("configure", "-"+d.target(name), val); err != nil {
		return err
	}
	if lookup := o.class.ResolveVar(OptionsVarName); lookup != nil && lookup.Var.Array {
		o.setElem(lookup.Var, "-"+name, val)
	}
	return nil
}

// publicVar resolves name to a public variable of o's class.
func (o *Object) publicVar(name string) *Variable {
	lookup := o.class.ResolveVar(name)
	if lookup == nil || lookup.Var.Protection != Public {
		return nil
	}
	return lookup.Var
}

// varOption reports the option for the public variable v.
func (o *Object) varOption(v *Variable) OptionInfo {
	info := OptionInfo{Label: "-" + v.Name, Init: Placeholder, Current: Placeholder}
	if lookup := o.class.ResolveVar(v.FullName()); lookup != nil {
		info.Label = "-" + lookup.LeastQualName
	}
	if v.HasInit && !v.Array {
		info.Init = v.Init
	}
	if val, ok := o.value(v); ok {
		info.Current = val
	}
	return info
}

// delegatedOption reports the option name delegated through d by querying
// the target component.
func (o *Object) delegatedOption(d *Delegation, name string) (OptionInfo, error) {
	info := OptionInfo{Label: "-" + name, Init: Placeholder, Current: Placeholder}
	comp := o.components[d.Component]
	if comp == nil {
		return info, nil
	}
	target := d.target(name)
	if def, ok := comp.Handle().(OptionDefaulter); ok {
		if val, ok := def.OptionDefault(target); ok {
			info.Init = val
		}
	}
	val, err := comp.Invoke("cget", "-"+target)
	if err != nil {
		return info, err
	}
	info.Current = val
	return info, nil
}

// wildcardOptions lists the option names a wildcard delegation can serve.
func (o *Object) wildcardOptions(d *Delegation) ([]string, error) {
	comp := o.components[d.Component]
	if comp == nil {
		return nil, nil
	}
	lister, ok := comp.Handle().(OptionLister)
	if !ok {
		return nil, nil
	}
	var r []string
	for _, name := range lister.OptionNames() {
		if !d.except[name] {
			r = append(r, name)
		}
	}
	return r, nil
}
