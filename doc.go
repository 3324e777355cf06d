/*
Package itcl implements an object runtime with classes, multiple inheritance,
components, and option delegation, in the manner of incr Tcl.

The runtime is the part of an object system that does not care about syntax.
Classes are declared as tables of functions, variables, component slots, and
delegations; the runtime linearizes the inheritance graph, resolves names to
their most specific definitions, and exposes public variables as options that
can be listed, read, and written with configure and cget. Declaration files,
script bodies, option databases, and widget hulls are provided by the
packages under coreext, and any of them may be replaced by the embedding
program.

To start, create an interpreter with NewInterp, declare classes with its
NewClass method, and create objects with New:

	interp := itcl.NewInterp()
	c, _ := interp.NewClass("Counter", itcl.RoleClass)
	c.AddVariable(&itcl.Variable{Name: "count", Protection: itcl.Public, Init: "0", HasInit: true})
	obj, _ := interp.New(c, "ctr")
	obj.Invoke("configure", "-count", "3")
	v, _ := obj.Invoke("cget", "-count") // "3"

Hierarchy

The hierarchy of a class is its linearization: the class itself, then its
ancestors in depth-first, left-to-right order of declared bases, each
appearing once at the position where it is first reached. Method lookup
takes the first definition in the hierarchy, so the most derived
implementation wins. Within a method, Call.Chain runs the next
implementation after the running class in the hierarchy of the object.

Every class receives the built-in methods cget, configure, info, and isa
unless some class in its hierarchy already defines them.

Options

Each public variable is an option. configure with no arguments lists every
option as a list {-name init current}, where -name is the shortest name that
identifies the variable from the object's class and missing values are
reported as <undefined>. configure with pairs writes each value in order and
runs the variable's configuration hook; if a hook fails, the value is restored
and the remaining pairs are not written. Options delegated to components are
listed and written through the component.

Widgets

A class with RoleWidget receives a hull component and a public itcl_options
array. Its objects are given a frame or toplevel hull by the interpreter's
HullFactory before any constructor runs. A RoleWidgetAdaptor class has the
same members but its constructor must install the hull itself. When the hull
is destroyed from outside the runtime, the object is deleted.
*/
package itcl
