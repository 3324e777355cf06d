package internal

import (
	"go.uber.org/zap"
)

// Call is an execution context: the class whose body is running, the
// instance it runs on, and the function being executed.
type Call struct {
	// Interp is the interpreter running the call.
	Interp *Interp
	// Class is the class that declared the running body.
	Class *Class
	// Object is the instance, or nil for procs and class-level calls.
	Object *Object
	// Function is the running function, or nil for configuration hooks.
	Function *Function
	// Variable is the variable whose hook is running, or nil.
	Variable *Variable
	// Name is the name the call was invoked by. For constructors, it is the
	// name of the object being constructed.
	Name string
	// Args are the arguments of the call, not including Name.
	Args []string

	parent *Call
}

// Parent returns the calling context, or nil.
func (c *Call) Parent() *Call {
	return c.parent
}

// Chain invokes the next implementation of the running function in the
// linearized hierarchy and returns its result. If no further class
// implements it, Chain does nothing and returns an empty result.
func (c *Call) Chain(args ...string) (string, error) {
	if c == nil || c.Class == nil || c.Function == nil {
		return "", errorf(KindContext, "cannot chain functions outside of a class context")
	}
	name := c.Function.Name
	var rest []*Class
	if c.Object != nil {
		h := c.Object.class.Heritage()
		for i, k := range h {
			if k == c.Class {
				rest = h[i+1:]
				break
			}
		}
	} else {
		rest = c.Class.Heritage()[1:]
	}
	for _, k := range rest {
		f := k.functions[name]
		if f == nil {
			continue
		}
		callName := f.FullName()
		if f.Kind == MemberConstructor && c.Object != nil {
			callName = c.Object.name
		}
		c.Interp.log().Debug("chain",
			zap.String("from", c.Function.FullName()),
			zap.String("to", f.FullName()),
		)
		return c.Interp.invoke(f, c.Object, callName, args)
	}
	return "", nil
}

// lookupVar resolves a variable name in c's context.
func (c *Call) lookupVar(name string) *Variable {
	if c.Object == nil || c.Class == nil {
		return nil
	}
	if v := c.Class.variables[name]; v != nil {
		return v
	}
	if lookup := c.Object.class.ResolveVar(name); lookup != nil {
		if lookup.Var.Protection == Private && lookup.Var.class != c.Class {
			return nil
		}
		return lookup.Var
	}
	return nil
}

// HasVar reports whether name resolves to an instance variable in c's
// context.
func (c *Call) HasVar(name string) bool {
	return c.lookupVar(name) != nil
}

// Var returns the value of the instance variable name as seen from c's
// context.
func (c *Call) Var(name string) (string, bool) {
	v := c.lookupVar(name)
	if v == nil {
		return "", false
	}
	return c.Object.value(v)
}

// SetVar sets the instance variable name as seen from c's context.
func (c *Call) SetVar(name, value string) error {
	v := c.lookupVar(name)
	if v == nil {
		return errorf(KindUsage, "can't set %q: no such variable", name)
	}
	return c.Object.setValue(v, value)
}

// ArrayVar returns the element key of the array variable name.
func (c *Call) ArrayVar(name, key string) (string, bool) {
	v := c.lookupVar(name)
	if v == nil || !v.Array {
		return "", false
	}
	val, ok := c.Object.arrays[varKey{v.class, v.Name}][key]
	return val, ok
}

// SetArrayVar sets the element key of the array variable name.
func (c *Call) SetArrayVar(name, key, value string) error {
	v := c.lookupVar(name)
	if v == nil || !v.Array {
		return errorf(KindUsage, "can't set \"%s(%s)\": variable isn't array", name, key)
	}
	c.Object.setElem(v, key, value)
	return nil
}

// Install binds h to the component slot name of the running instance.
func (c *Call) Install(name string, h Handle) (*Component, error) {
	if c.Object == nil {
		return nil, errorf(KindContext, "cannot install component %q without an object context", name)
	}
	return c.Object.Bind(name, h)
}
