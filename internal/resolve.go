package internal

import "strings"

// VarLookup records how a variable name resolves from some class.
type VarLookup struct {
	// Var is the resolved variable.
	Var *Variable
	// LeastQualName is the shortest name by which Var is uniquely visible
	// from the resolving class.
	LeastQualName string
	// Accessible reports whether Var can be reached from the resolving
	// class. Private variables of ancestors are not accessible.
	Accessible bool
}

// Resolve returns the most specific function named name reachable from c,
// or nil if no class in the hierarchy of c defines it.
func (c *Class) Resolve(name string) *Function {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		return c.resolveQualified(name[:i], name[i+2:])
	}
	for _, k := range c.Heritage() {
		if f := k.functions[name]; f != nil {
			return f
		}
	}
	return nil
}

// resolveQualified finds the function named member declared by the class in
// the hierarchy of c whose name ends with the namespace path ns.
func (c *Class) resolveQualified(ns, member string) *Function {
	for _, k := range c.Heritage() {
		if k.Name == Qualify(ns) || strings.HasSuffix(k.Name, "::"+strings.TrimPrefix(ns, "::")) {
			return k.functions[member]
		}
	}
	return nil
}

// ResolveVar returns the lookup record for the variable name as seen from c,
// or nil if nothing in the hierarchy of c claims it. name may be simple or
// qualified.
func (c *Class) ResolveVar(name string) *VarLookup {
	c.Heritage()
	return c.vars[name]
}

// VirtualTable returns a copy of the virtual method table of c, mapping each
// callable name to its most specific implementation.
func (c *Class) VirtualTable() map[string]*Function {
	c.Heritage()
	r := make(map[string]*Function, len(c.vtable))
	for k, v := range c.vtable {
		r[k] = v
	}
	return r
}

// lookup returns the most specific callable function named name.
func (c *Class) lookup(name string) *Function {
	c.Heritage()
	if f := c.vtable[name]; f != nil {
		return f
	}
	if strings.Contains(name, "::") {
		// Qualified names bypass virtual resolution.
		return c.Resolve(name)
	}
	return nil
}

// buildVirtualTable maps each callable name to its most-derived
// implementation. Constructors and destructors are never callable by name,
// and private functions are visible only to their own class.
func buildVirtualTable(c *Class, heritage []*Class) map[string]*Function {
	vt := make(map[string]*Function)
	for _, k := range heritage {
		for _, name := range k.funcOrder {
			f := k.functions[name]
			if f.Kind == MemberConstructor || f.Kind == MemberDestructor {
				continue
			}
			if f.Protection == Private && k != c {
				continue
			}
			if _, ok := vt[name]; !ok {
				vt[name] = f
			}
		}
	}
	return vt
}

// resolveVars builds the variable name table of c. Each variable registers
// its names from least to most qualified; the first variable to claim a name
// keeps it.
func resolveVars(c *Class, heritage []*Class) map[string]*VarLookup {
	vars := make(map[string]*VarLookup)
	for _, k := range heritage {
		for _, name := range k.varOrder {
			v := k.variables[name]
			var lookup *VarLookup
			for _, qn := range qualNames(k, name) {
				if _, ok := vars[qn]; ok {
					continue
				}
				if lookup == nil {
					lookup = &VarLookup{
						Var:           v,
						LeastQualName: qn,
						Accessible:    v.Protection != Private || k == c,
					}
				}
				vars[qn] = lookup
			}
		}
	}
	return vars
}
