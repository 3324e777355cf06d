// Package script implements a small command language for function bodies and
// configuration hooks.
//
// The language follows Tcl's word rules: words are separated by blanks,
// commands by newlines and semicolons, braces quote without substitution, and
// double quotes group with substitution. $name and ${name} read variables,
// $name(key) reads an element of an array instance variable, [cmd] is
// replaced by the result of cmd, and {*} expands a word as a list. Within a
// method, variable names resolve to locals first and then to instance
// variables, and command names resolve to methods of the object, procs of the
// class, and finally commands of the interpreter.
package script

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zephyrtronium/itcl"
)

// Script is a parsed body. It implements itcl.Body.
type Script struct {
	src  string
	cmds []command
}

// Parse parses src into a Script.
func Parse(src string) (*Script, error) {
	cmds, err := parse(src)
	if err != nil {
		return nil, err
	}
	return &Script{src: src, cmds: cmds}, nil
}

// MustParse parses src and panics if it is not well formed.
func MustParse(src string) *Script {
	s, err := Parse(src)
	if err != nil {
		panic(fmt.Errorf("script: %w", err))
	}
	return s
}

// String returns the source text of the script.
func (s *Script) String() string {
	return s.src
}

// Exec runs the script in the call context c. The call's arguments are bound
// to the function's parameters as local variables.
func (s *Script) Exec(c *itcl.Call) (string, error) {
	f := &frame{call: c, locals: make(map[string]string)}
	if err := f.bind(); err != nil {
		return "", err
	}
	return f.run(s.cmds)
}

// Complete reports whether src has no unclosed braces, quotes, or brackets.
// A complete script may still be malformed in other ways.
func Complete(src string) bool {
	_, err := parse(src)
	var e *itcl.Error
	return !errors.As(err, &e) || !strings.HasPrefix(e.Detail, "missing")
}

// Eval parses and runs src at the top level of i, outside of any class.
func Eval(i *itcl.Interp, src string) (string, error) {
	s, err := Parse(src)
	if err != nil {
		return "", err
	}
	return s.Exec(&itcl.Call{Interp: i})
}

// frame holds the local state of one running script.
type frame struct {
	call   *itcl.Call
	locals map[string]string
	// done is set once return has run, and ret holds its value.
	done bool
	ret  string
}

// bind assigns call arguments to locals.
func (f *frame) bind() error {
	c := f.call
	if c.Object != nil {
		f.locals["this"] = c.Object.Name()
		if c.Object.Class().Role != itcl.RoleClass {
			f.locals["win"] = c.Object.Name()
		}
	}
	if c.Function == nil {
		return nil
	}
	params := c.Function.Params
	if len(params) == 0 {
		if len(c.Args) > 0 {
			f.locals["args"] = itcl.FormatList(c.Args...)
		}
		return nil
	}
	args := c.Args
	for k, p := range params {
		if p == "args" && k == len(params)-1 {
			f.locals["args"] = itcl.FormatList(args...)
			return nil
		}
		name, def, hasDef := param(p)
		switch {
		case len(args) > 0:
			f.locals[name] = args[0]
			args = args[1:]
		case hasDef:
			f.locals[name] = def
		default:
			return f.wrongArgs()
		}
	}
	if len(args) > 0 {
		return f.wrongArgs()
	}
	return nil
}

// param splits a parameter into its name and default value. Both "by 1" and
// "{by 1}" name by with the default 1.
func param(p string) (name, def string, ok bool) {
	l, err := itcl.SplitList(p)
	if err == nil && len(l) == 1 && l[0] != p {
		l, err = itcl.SplitList(l[0])
	}
	if err != nil || len(l) != 2 {
		return p, "", false
	}
	return l[0], l[1], true
}

func (f *frame) wrongArgs() error {
	fn := f.call.Function
	var b strings.Builder
	b.WriteString(f.call.Name)
	for k, p := range fn.Params {
		b.WriteByte(' ')
		if p == "args" && k == len(fn.Params)-1 {
			b.WriteString("?arg arg ...?")
			continue
		}
		name, _, hasDef := param(p)
		if hasDef {
			b.WriteString("?" + name + "?")
		} else {
			b.WriteString(name)
		}
	}
	return &itcl.Error{Kind: itcl.KindUsage, Detail: "wrong # args: should be \"" + b.String() + "\""}
}

// run executes commands in order and returns the result of the last one.
func (f *frame) run(cmds []command) (string, error) {
	var r string
	for _, cmd := range cmds {
		argv, err := f.words(cmd.words)
		if err != nil {
			return "", err
		}
		if len(argv) == 0 {
			continue
		}
		r, err = f.exec(argv)
		if err != nil {
			return "", err
		}
		if f.done {
			return f.ret, nil
		}
	}
	return r, nil
}

// eval parses and runs src in the frame.
func (f *frame) eval(src string) (string, error) {
	cmds, err := parse(src)
	if err != nil {
		return "", err
	}
	return f.run(cmds)
}

// words substitutes the words of a command.
func (f *frame) words(ws []word) ([]string, error) {
	argv := make([]string, 0, len(ws))
	for _, w := range ws {
		s := w.text
		if w.kind != braced {
			var err error
			s, err = f.subst(s)
			if err != nil {
				return nil, err
			}
		}
		if !w.expand {
			argv = append(argv, s)
			continue
		}
		l, err := itcl.SplitList(s)
		if err != nil {
			return nil, err
		}
		argv = append(argv, l...)
	}
	return argv, nil
}

// subst performs backslash, variable, and command substitution on s.
func (f *frame) subst(s string) (string, error) {
	if !strings.ContainsAny(s, "\\$[") {
		return s, nil
	}
	var b strings.Builder
	for k := 0; k < len(s); k++ {
		switch s[k] {
		case '\\':
			n := backslash(&b, s, k)
			k = n - 1
		case '$':
			v, n, err := f.variable(s, k)
			if err != nil {
				return "", err
			}
			b.WriteString(v)
			k = n - 1
		case '[':
			end, err := matchBracket(s, k)
			if err != nil {
				return "", err
			}
			r, err := f.eval(s[k+1 : end-1])
			if err != nil {
				return "", err
			}
			b.WriteString(r)
			k = end - 1
		default:
			b.WriteByte(s[k])
		}
	}
	return b.String(), nil
}

// backslash writes the escape sequence starting at s[k] and returns the index
// after it.
func backslash(b *strings.Builder, s string, k int) int {
	if k+1 >= len(s) {
		b.WriteByte('\\')
		return k + 1
	}
	k++
	switch s[k] {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case '\n':
		b.WriteByte(' ')
		for k+1 < len(s) && (s[k+1] == ' ' || s[k+1] == '\t') {
			k++
		}
	default:
		b.WriteByte(s[k])
	}
	return k + 1
}

func isNameChar(c byte) bool {
	return c == '_' || c == ':' || '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

// variable reads the variable reference starting at s[k] and returns its
// value and the index after the reference.
func (f *frame) variable(s string, k int) (string, int, error) {
	start := k + 1
	if start < len(s) && s[start] == '{' {
		end := strings.IndexByte(s[start:], '}')
		if end < 0 {
			return "", 0, errors.New("missing close-brace for variable name")
		}
		v, err := f.get(s[start+1 : start+end])
		return v, start + end + 1, err
	}
	n := start
	for n < len(s) && isNameChar(s[n]) {
		n++
	}
	if n == start {
		return "$", start, nil
	}
	name := s[start:n]
	if n < len(s) && s[n] == '(' {
		end := strings.IndexByte(s[n:], ')')
		if end < 0 {
			return "", 0, errors.New("missing )")
		}
		key, err := f.subst(s[n+1 : n+end])
		if err != nil {
			return "", 0, err
		}
		v, err := f.elem(name, key)
		return v, n + end + 1, err
	}
	v, err := f.get(name)
	return v, n, err
}

// get reads a scalar variable.
func (f *frame) get(name string) (string, error) {
	if v, ok := f.locals[name]; ok {
		return v, nil
	}
	if f.call.HasVar(name) {
		if v, ok := f.call.Var(name); ok {
			return v, nil
		}
		return "", fmt.Errorf("can't read %q: no value", name)
	}
	return "", fmt.Errorf("can't read %q: no such variable", name)
}

// elem reads an element of an array instance variable.
func (f *frame) elem(name, key string) (string, error) {
	if v, ok := f.call.ArrayVar(name, key); ok {
		return v, nil
	}
	return "", fmt.Errorf("can't read \"%s(%s)\": no such element in array", name, key)
}

// set writes a variable. Names already local stay local; otherwise names of
// instance variables write the instance.
func (f *frame) set(name, val string) error {
	if k := strings.IndexByte(name, '('); k > 0 && strings.HasSuffix(name, ")") {
		return f.call.SetArrayVar(name[:k], name[k+1:len(name)-1], val)
	}
	if _, ok := f.locals[name]; !ok && f.call.HasVar(name) {
		return f.call.SetVar(name, val)
	}
	f.locals[name] = val
	return nil
}

// exec runs one substituted command.
func (f *frame) exec(argv []string) (string, error) {
	if cmd := commands[argv[0]]; cmd != nil {
		return cmd(f, argv[1:])
	}
	c := f.call
	if c.Object != nil && c.Object.Alive() && c.Object.Responds(argv[0]) {
		return c.Object.Invoke(argv[0], argv[1:]...)
	}
	if c.Class != nil {
		if fn := c.Class.Resolve(argv[0]); fn != nil && fn.Kind == itcl.MemberProc {
			return c.Class.Call(argv[0], argv[1:]...)
		}
	}
	return c.Interp.Exec(argv...)
}

// commands are the commands built into the language.
var commands map[string]func(f *frame, args []string) (string, error)

func init() {
	commands = map[string]func(f *frame, args []string) (string, error){
		"set":         cmdSet,
		"return":      cmdReturn,
		"error":       cmdError,
		"chain":       cmdChain,
		"puts":        cmdPuts,
		"list":        cmdList,
		"eval":        cmdEval,
		"incr":        cmdIncr,
		"if":          cmdIf,
		"foreach":     cmdForeach,
		"installhull": cmdInstallHull,
		"install":     cmdInstall,
	}
}

func usage(format string) error {
	return &itcl.Error{Kind: itcl.KindUsage, Detail: "wrong # args: should be \"" + format + "\""}
}

func cmdSet(f *frame, args []string) (string, error) {
	switch len(args) {
	case 1:
		if k := strings.IndexByte(args[0], '('); k > 0 && strings.HasSuffix(args[0], ")") {
			return f.elem(args[0][:k], args[0][k+1:len(args[0])-1])
		}
		return f.get(args[0])
	case 2:
		if err := f.set(args[0], args[1]); err != nil {
			return "", err
		}
		return args[1], nil
	}
	return "", usage("set varName ?newValue?")
}

func cmdReturn(f *frame, args []string) (string, error) {
	if len(args) > 1 {
		return "", usage("return ?value?")
	}
	f.done = true
	f.ret = ""
	if len(args) == 1 {
		f.ret = args[0]
	}
	return f.ret, nil
}

func cmdError(f *frame, args []string) (string, error) {
	if len(args) != 1 {
		return "", usage("error message")
	}
	return "", errors.New(args[0])
}

func cmdChain(f *frame, args []string) (string, error) {
	return f.call.Chain(args...)
}

func cmdPuts(f *frame, args []string) (string, error) {
	nl := "\n"
	if len(args) == 2 && args[0] == "-nonewline" {
		nl = ""
		args = args[1:]
	}
	if len(args) != 1 {
		return "", usage("puts ?-nonewline? string")
	}
	var w io.Writer = f.call.Interp.Stdout
	if w == nil {
		return "", nil
	}
	_, err := io.WriteString(w, args[0]+nl)
	return "", err
}

func cmdList(f *frame, args []string) (string, error) {
	return itcl.FormatList(args...), nil
}

func cmdEval(f *frame, args []string) (string, error) {
	if len(args) == 0 {
		return "", usage("eval arg ?arg ...?")
	}
	return f.eval(strings.Join(args, " "))
}

func cmdIncr(f *frame, args []string) (string, error) {
	if len(args) < 1 || len(args) > 2 {
		return "", usage("incr varName ?increment?")
	}
	by := 1
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return "", fmt.Errorf("expected integer but got %q", args[1])
		}
		by = n
	}
	cur := 0
	if v, err := f.get(args[0]); err == nil {
		n, err := strconv.Atoi(v)
		if err != nil {
			return "", fmt.Errorf("expected integer but got %q", v)
		}
		cur = n
	}
	r := strconv.Itoa(cur + by)
	return r, f.set(args[0], r)
}

func cmdIf(f *frame, args []string) (string, error) {
	for len(args) >= 2 {
		ok, err := f.cond(args[0])
		if err != nil {
			return "", err
		}
		body := args[1]
		args = args[2:]
		if ok {
			return f.eval(body)
		}
		switch {
		case len(args) == 0:
			return "", nil
		case args[0] == "elseif":
			args = args[1:]
		case args[0] == "else" && len(args) == 2:
			return f.eval(args[1])
		default:
			return "", usage("if cond body ?elseif cond body ...? ?else body?")
		}
	}
	return "", usage("if cond body ?elseif cond body ...? ?else body?")
}

// cond evaluates a condition: a single truthy value, "! value", or a
// comparison between two values.
func (f *frame) cond(src string) (bool, error) {
	cmds, err := parse(src)
	if err != nil {
		return false, err
	}
	if len(cmds) != 1 {
		return false, fmt.Errorf("bad condition %q", src)
	}
	w, err := f.words(cmds[0].words)
	if err != nil {
		return false, err
	}
	switch len(w) {
	case 1:
		return truth(w[0])
	case 2:
		if w[0] == "!" {
			t, err := truth(w[1])
			return !t, err
		}
	case 3:
		return compare(w[0], w[1], w[2])
	}
	return false, fmt.Errorf("bad condition %q", src)
}

func truth(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off", "":
		return false, nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n != 0, nil
	}
	return false, fmt.Errorf("expected boolean value but got %q", s)
}

func compare(a, op, b string) (bool, error) {
	var c int
	x, errx := strconv.ParseFloat(a, 64)
	y, erry := strconv.ParseFloat(b, 64)
	switch {
	case errx == nil && erry == nil && x < y:
		c = -1
	case errx == nil && erry == nil && x > y:
		c = 1
	case errx == nil && erry == nil:
		c = 0
	default:
		c = strings.Compare(a, b)
	}
	switch op {
	case "==", "eq":
		return c == 0, nil
	case "!=", "ne":
		return c != 0, nil
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	case ">=":
		return c >= 0, nil
	}
	return false, fmt.Errorf("unknown operator %q", op)
}

func cmdForeach(f *frame, args []string) (string, error) {
	if len(args) != 3 {
		return "", usage("foreach varName list body")
	}
	l, err := itcl.SplitList(args[1])
	if err != nil {
		return "", err
	}
	cmds, err := parse(args[2])
	if err != nil {
		return "", err
	}
	for _, v := range l {
		if err := f.set(args[0], v); err != nil {
			return "", err
		}
		if _, err := f.run(cmds); err != nil {
			return "", err
		}
		if f.done {
			break
		}
	}
	return "", nil
}

// hullKind parses a hull type name.
func hullKind(s string) (itcl.HullKind, error) {
	switch s {
	case "frame":
		return itcl.HullFrame, nil
	case "toplevel":
		return itcl.HullToplevel, nil
	}
	return 0, fmt.Errorf("bad hull type %q: must be frame or toplevel", s)
}

// installhull using frame|toplevel ?-option value ...?
func cmdInstallHull(f *frame, args []string) (string, error) {
	if len(args) < 2 || args[0] != "using" {
		return "", usage("installhull using frame|toplevel ?-option value ...?")
	}
	c := f.call
	if c.Object == nil {
		return "", &itcl.Error{Kind: itcl.KindContext, Detail: "cannot install a hull without an object context"}
	}
	return f.install(itcl.HullComponent, args[1], c.Object.Name(), args[2:])
}

// install component using frame|toplevel path ?-option value ...?
func cmdInstall(f *frame, args []string) (string, error) {
	if len(args) < 4 || args[1] != "using" {
		return "", usage("install component using frame|toplevel path ?-option value ...?")
	}
	return f.install(args[0], args[2], args[3], args[4:])
}

func (f *frame) install(slot, kind, path string, opts []string) (string, error) {
	c := f.call
	if c.Object == nil {
		return "", &itcl.Error{Kind: itcl.KindContext, Detail: "cannot install component \"" + slot + "\" without an object context"}
	}
	k, err := hullKind(kind)
	if err != nil {
		return "", err
	}
	if c.Interp.Hulls == nil {
		return "", &itcl.Error{Kind: itcl.KindUsage, Detail: "no hull factory to create " + kind + " " + path}
	}
	h, err := c.Interp.Hulls.CreateHull(path, k, c.Object.Class().SimpleName())
	if err != nil {
		return "", err
	}
	comp, err := c.Install(slot, h)
	if err != nil {
		return "", err
	}
	if len(opts) > 0 {
		if _, err := comp.Invoke(append([]string{"configure"}, opts...)...); err != nil {
			return "", err
		}
	}
	return path, nil
}
