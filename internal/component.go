package internal

import (
	"go.uber.org/zap"
)

// Handle is an external command-bearing resource, such as a widget, that can
// be bound to a component slot.
type Handle interface {
	// Identity returns the command name of the resource.
	Identity() string
	// Invoke runs a command on the resource.
	Invoke(args ...string) (string, error)
	// OnDestroy registers f to be called when the resource is destroyed
	// externally. The returned function cancels the registration.
	OnDestroy(f func()) (cancel func())
}

// OptionDefaulter is implemented by handles that can report the default
// value of their options.
type OptionDefaulter interface {
	OptionDefault(option string) (string, bool)
}

// OptionLister is implemented by handles that can list their option names,
// without leading dashes.
type OptionLister interface {
	OptionNames() []string
}

// Component is a proxy for a handle bound to a component slot. It gives the
// resource a stable identity within the runtime and ties the lifetime of
// the owning object to the lifetime of the resource.
type Component struct {
	// Name is the slot name.
	Name string

	handle Handle
	owner  *Object
	class  *Class
	cancel func()
}

// Handle returns the bound handle, or nil if the component is detached.
func (c *Component) Handle() Handle {
	return c.handle
}

// Identity returns the command name of the bound handle. It is empty for a
// nil or detached component.
func (c *Component) Identity() string {
	if c == nil || c.handle == nil {
		return ""
	}
	return c.handle.Identity()
}

// Owner returns the object that owns the component, or nil for components
// bound to a class.
func (c *Component) Owner() *Object {
	return c.owner
}

// Invoke forwards a command to the bound handle.
func (c *Component) Invoke(args ...string) (string, error) {
	if c.handle == nil {
		return "", errorf(KindUsage, "component %q is not bound", c.Name)
	}
	return c.handle.Invoke(args...)
}

// detach cancels the destruction observer and unregisters the identity.
func (c *Component) detach() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.handle == nil {
		return
	}
	i := c.interp()
	if i.handles[c.handle.Identity()] == c {
		delete(i.handles, c.handle.Identity())
	}
	c.handle = nil
}

func (c *Component) interp() *Interp {
	if c.owner != nil {
		return c.owner.interp
	}
	return c.class.interp
}

// Bind installs h in the component slot name of o. A previously bound handle
// is released first. When h is destroyed externally, o is deleted. Default
// values from the interpreter's option database are applied to options
// delegated to the slot.
func (o *Object) Bind(name string, h Handle) (*Component, error) {
	if !o.alive {
		return nil, errorf(KindContext, "object %q has been deleted", o.name)
	}
	if o.class.Component(name) == nil {
		return nil, errorf(KindDeclaration, "class %q has no component %q", o.class.Name, name)
	}
	if old := o.components[name]; old != nil {
		old.detach()
	}
	c := &Component{Name: name, handle: h, owner: o}
	o.components[name] = c
	o.interp.handles[h.Identity()] = c
	c.cancel = h.OnDestroy(func() { o.componentDestroyed(c) })
	o.interp.log().Debug("bind component",
		zap.String("object", o.name),
		zap.String("component", name),
		zap.String("identity", h.Identity()),
	)
	if err := o.applyDefaults(c); err != nil {
		return c, err
	}
	return c, nil
}

// componentDestroyed deletes o after its component's resource has been
// destroyed outside the runtime.
func (o *Object) componentDestroyed(c *Component) {
	if o.components[c.Name] != c || !o.alive {
		return
	}
	o.interp.log().Info("component destroyed externally",
		zap.String("object", o.name),
		zap.String("component", c.Name),
	)
	// The handle is already gone, so its observer must not be cancelled.
	c.cancel = nil
	o.destroy(true)
}

// applyDefaults configures every option delegated to c whose default is
// present in the option database.
func (o *Object) applyDefaults(c *Component) error {
	db := o.interp.Defaults
	if db == nil {
		return nil
	}
	for _, d := range o.class.optionDelegations(c.Name) {
		if d.Name == "*" {
			continue
		}
		val, ok := db.LookupDefault(o.name, d.Name)
		if !ok {
			continue
		}
		if _, err := c.Invoke("configure", "-"+d.target(d.Name), val); err != nil {
			return err
		}
	}
	return nil
}

// BindComponent installs h in the component slot name at the class level.
// Class-level components serve proc delegations.
func (c *Class) BindComponent(name string, h Handle) (*Component, error) {
	if c.Component(name) == nil {
		return nil, errorf(KindDeclaration, "class %q has no component %q", c.Name, name)
	}
	if c.classComponents == nil {
		c.classComponents = make(map[string]*Component)
	}
	if old := c.classComponents[name]; old != nil {
		old.detach()
	}
	comp := &Component{Name: name, handle: h, class: c}
	c.classComponents[name] = comp
	c.interp.handles[h.Identity()] = comp
	comp.cancel = h.OnDestroy(func() {
		if c.classComponents[name] == comp {
			comp.cancel = nil
			comp.detach()
			delete(c.classComponents, name)
		}
	})
	return comp, nil
}

// classComponent finds a class-level component named name in the hierarchy
// of c.
func (c *Class) classComponent(name string) *Component {
	for _, k := range c.Heritage() {
		if comp := k.classComponents[name]; comp != nil {
			return comp
		}
	}
	return nil
}
