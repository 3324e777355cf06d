package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/docopt/docopt-go"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/zephyrtronium/itcl"
	"github.com/zephyrtronium/itcl/coreext/decl"
	"github.com/zephyrtronium/itcl/coreext/optiondb"
	"github.com/zephyrtronium/itcl/coreext/script"

	// import for side effects
	_ "github.com/zephyrtronium/itcl/coreext"
)

const usage = `itcl

Usage:
  itcl [-v] [-I DIR]... [-o FILE]... [DECL...]
  itcl -h

Arguments:
  DECL  Declaration file to load before reading commands.

Options:
  -I DIR      Load undeclared classes from DIR/<class>.yaml.
  -o FILE     Read option defaults from the resource file FILE.
  -v          Log to stderr.
  -h, --help  Display this help.

Commands are read from stdin. If stdin is a terminal, they are read with
line editing and history.
`

func main() {
	opts, err := docopt.ParseDoc(usage)
	if err != nil {
		// Error in the usage doc.
		panic(err.Error())
	}
	if verbose, _ := opts.Bool("-v"); verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		defer l.Sync()
		itcl.SetLogger(l)
	}

	i := itcl.NewInterp()
	if dirs, _ := opts["-I"].([]string); len(dirs) > 0 {
		var loaders itcl.Loaders
		for _, dir := range dirs {
			loaders = append(loaders, decl.Dir(dir))
		}
		i.Loader = loaders
	}
	if db, ok := i.Defaults.(*optiondb.DB); ok {
		files, _ := opts["-o"].([]string)
		for _, f := range files {
			if err := db.ReadFile(f, optiondb.UserDefault); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		}
	}
	running := true
	i.Commands["new"] = cmdNew
	i.Commands["delete"] = cmdDelete
	i.Commands["classes"] = cmdClasses
	i.Commands["objects"] = cmdObjects
	i.Commands["exit"] = func(*itcl.Interp, []string) (string, error) {
		running = false
		return "", nil
	}
	files, _ := opts["DECL"].([]string)
	for _, f := range files {
		if _, err := decl.LoadFile(i, f); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		interactive(i, &running)
		return
	}
	if !batch(i, os.Stdin, &running) {
		os.Exit(1)
	}
}

// interactive reads commands with line editing until exit or end of input.
func interactive(i *itcl.Interp, running *bool) {
	cli := liner.NewLiner()
	defer cli.Close()
	cli.SetCtrlCAborts(true)
	var src strings.Builder
	for *running {
		prompt := "itcl> "
		if src.Len() > 0 {
			prompt = "..... "
		}
		line, err := cli.Prompt(prompt)
		switch err {
		case nil:
		case liner.ErrPromptAborted:
			src.Reset()
			continue
		default:
			fmt.Println()
			return
		}
		src.WriteString(line)
		src.WriteByte('\n')
		if !script.Complete(src.String()) {
			continue
		}
		cli.AppendHistory(strings.TrimSpace(src.String()))
		run(i, src.String())
		src.Reset()
	}
}

// batch reads commands from r and reports whether all of them succeeded.
func batch(i *itcl.Interp, r io.Reader, running *bool) bool {
	sc := bufio.NewScanner(r)
	ok := true
	var src strings.Builder
	for *running && sc.Scan() {
		src.WriteString(sc.Text())
		src.WriteByte('\n')
		if !script.Complete(src.String()) {
			continue
		}
		ok = run(i, src.String()) && ok
		src.Reset()
	}
	if src.Len() > 0 {
		ok = run(i, src.String()) && ok
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}
	return ok
}

// run evaluates one complete command and prints its result or error.
func run(i *itcl.Interp, src string) bool {
	r, err := script.Eval(i, src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return false
	}
	if r != "" {
		fmt.Fprintln(i.Stdout, r)
	}
	return true
}

// new className objName ?arg ...?
func cmdNew(i *itcl.Interp, args []string) (string, error) {
	if len(args) < 2 {
		return "", &itcl.Error{Kind: itcl.KindUsage, Detail: "wrong # args: should be \"new className objName ?arg ...?\""}
	}
	c, err := i.FindClass(args[0], true)
	if err != nil {
		return "", err
	}
	o, err := i.New(c, args[1], args[2:]...)
	if err != nil {
		return "", err
	}
	return o.Name(), nil
}

// delete ?objName ...?
func cmdDelete(i *itcl.Interp, args []string) (string, error) {
	for _, name := range args {
		o := i.Object(name)
		if o == nil {
			return "", &itcl.Error{Kind: itcl.KindUsage, Detail: fmt.Sprintf("object %q not found", name)}
		}
		if err := o.Delete(); err != nil {
			return "", err
		}
	}
	return "", nil
}

func cmdClasses(i *itcl.Interp, args []string) (string, error) {
	var names []string
	for _, c := range i.Classes() {
		names = append(names, c.Name)
	}
	return itcl.FormatList(names...), nil
}

func cmdObjects(i *itcl.Interp, args []string) (string, error) {
	return itcl.FormatList(i.Objects()...), nil
}
