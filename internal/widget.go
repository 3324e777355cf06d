package internal

import "go.uber.org/zap"

// HullKind selects the kind of external resource a widget wraps.
type HullKind int

// Hull kinds.
const (
	HullFrame HullKind = iota
	HullToplevel
)

func (k HullKind) String() string {
	if k == HullToplevel {
		return "toplevel"
	}
	return "frame"
}

// HullFactory creates the hull resources of widget objects.
type HullFactory interface {
	// CreateHull creates a resource of the given kind for the window path.
	// class is the window class reported to option lookups.
	CreateHull(path string, kind HullKind, class string) (Handle, error)
}

// WidgetConfigureFunc replaces the configure and cget built-ins for
// widget-role objects. method is "configure" or "cget" and args are the
// arguments of the call.
type WidgetConfigureFunc func(c *Call, method string, args []string) (string, error)

// SetWidgetConfigure registers f as the configure override for objects of
// class c. If c is nil, f applies to every widget-role class without its own
// override. A nil f removes the override.
func (i *Interp) SetWidgetConfigure(c *Class, f WidgetConfigureFunc) {
	if c == nil {
		i.anyConfigure = f
		return
	}
	if f == nil {
		delete(i.widgetConfigure, c)
		return
	}
	i.widgetConfigure[c] = f
}

// configureOverride returns the configure override for objects of class c.
func (i *Interp) configureOverride(c *Class) WidgetConfigureFunc {
	if c.Role == RoleClass {
		return nil
	}
	if f := i.widgetConfigure[c]; f != nil {
		return f
	}
	return i.anyConfigure
}

// Names of the members the widget roles insert.
const (
	HullComponent  = "hull"
	OptionsVarName = "itcl_options"
)

// applyRole inserts the members required by widget roles.
func (c *Class) applyRole() error {
	if c.Role == RoleClass {
		return nil
	}
	if c.Role == RoleWidget && c.Flags&(FlagFrame|FlagToplevel) == 0 {
		c.Flags |= FlagFrame
	}
	if c.slots[HullComponent] == nil {
		if _, err := c.AddComponent(HullComponent); err != nil {
			return err
		}
	}
	if c.variables[OptionsVarName] == nil {
		err := c.AddVariable(&Variable{Name: OptionsVarName, Protection: Public, Array: true})
		if err != nil {
			return err
		}
	}
	c.interp.touch()
	return nil
}

// createHull creates the hull of a widget object and binds it.
func (o *Object) createHull() error {
	i := o.interp
	if i.Hulls == nil {
		return errorf(KindUsage, "cannot create widget %q: no hull factory", o.name)
	}
	kind := HullFrame
	if o.class.Flags&FlagToplevel != 0 {
		kind = HullToplevel
	}
	h, err := i.Hulls.CreateHull(o.name, kind, o.class.SimpleName())
	if err != nil {
		return err
	}
	i.log().Debug("create hull", zap.String("object", o.name), zap.Stringer("kind", kind))
	_, err = o.Bind(HullComponent, h)
	return err
}
