package internal

import "github.com/zephyrtronium/contains"

// Heritage returns the linearized hierarchy of c: c itself followed by its
// ancestors in depth-first, left-to-right order, each class appearing once at
// the position of its first encounter. The result is cached until any class
// in the interpreter changes and must not be modified.
func (c *Class) Heritage() []*Class {
	if c.gen != c.interp.gen || c.heritage == nil {
		c.refresh()
	}
	return c.heritage
}

// refresh recomputes all cached tables of c.
func (c *Class) refresh() {
	c.heritage = linearize(c)
	c.vtable = buildVirtualTable(c, c.heritage)
	c.vars = resolveVars(c, c.heritage)
	c.gen = c.interp.gen
}

// linearize walks the inheritance graph of c depth-first, left to right.
func linearize(c *Class) []*Class {
	var r []*Class
	set := contains.Set{}
	stack := []*Class{c}
	for len(stack) > 0 {
		k := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !set.Add(k.id) {
			continue
		}
		r = append(r, k)
		// Push in reverse so the leftmost base is visited first.
		for i := len(k.bases) - 1; i >= 0; i-- {
			stack = append(stack, k.bases[i])
		}
	}
	return r
}

// touch invalidates every cached table in the interpreter.
func (i *Interp) touch() {
	i.gen++
}
