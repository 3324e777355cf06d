package itcl_test

import (
	"fmt"

	"github.com/zephyrtronium/itcl"
)

func Example() {
	interp := itcl.NewInterp()
	c, _ := interp.NewClass("Counter", itcl.RoleClass)
	c.AddVariable(&itcl.Variable{Name: "count", Protection: itcl.Public, Init: "0", HasInit: true})
	obj, _ := interp.New(c, "ctr")
	obj.Invoke("configure", "-count", "3")
	v, _ := obj.Invoke("cget", "-count")
	fmt.Println(v)
	opts, _ := obj.Invoke("configure")
	fmt.Println(opts)
	// Output:
	// 3
	// {-count 0 3}
}

func ExampleCall_Chain() {
	interp := itcl.NewInterp()
	a, _ := interp.NewClass("A", itcl.RoleClass)
	b, _ := interp.NewClass("B", itcl.RoleClass, a)
	a.AddFunction(&itcl.Function{
		Name:       "hello",
		Kind:       itcl.MemberMethod,
		Protection: itcl.Public,
		Body: itcl.BodyFunc(func(c *itcl.Call) (string, error) {
			return "A", nil
		}),
	})
	b.AddFunction(&itcl.Function{
		Name:       "hello",
		Kind:       itcl.MemberMethod,
		Protection: itcl.Public,
		Body: itcl.BodyFunc(func(c *itcl.Call) (string, error) {
			r, err := c.Chain()
			return "B " + r, err
		}),
	})
	obj, _ := interp.New(b, "obj")
	r, _ := obj.Invoke("hello")
	fmt.Println(r)
	// Output: B A
}
