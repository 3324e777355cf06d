// Package optiondb implements an option database in the manner of the X
// resource manager.
//
// Patterns name a sequence of window levels ending in an option, separated by
// "." for a tight binding or "*" for a loose binding that skips any number of
// levels. Each level may be given as a name, a class, or "?" for any single
// level:
//
//	*Button.background: red
//	.toolbar*Foreground: blue
//	.toolbar.?.relief: raised
//
// A pattern matching a level by name beats one matching it by class, which
// beats "?", which beats skipping the level with a loose binding. Among
// patterns that match equally well, the one added last wins.
package optiondb

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/zephyrtronium/itcl"
)

// Standard priorities.
const (
	WidgetDefault = 20
	StartupFile   = 40
	UserDefault   = 60
	Interactive   = 80
)

// DB is an option database. DB implements itcl.DefaultSource.
type DB struct {
	// ClassOf returns the class of the window at path. If it is nil or
	// returns the empty string, the class is the last path component with
	// its first letter capitalized.
	ClassOf func(path string) string

	entries []entry
	seq     int
}

// entry is one pattern in the database.
type entry struct {
	elems    []elem
	value    string
	priority int
	seq      int
}

// elem is one level of a pattern.
type elem struct {
	text  string
	loose bool
}

// level is one level of a lookup.
type level struct {
	name, class string
}

// New creates an empty database.
func New() *DB {
	return &DB{}
}

// Class returns the class name conventionally associated with name.
func Class(name string) string {
	return cases.Title(language.Und, cases.NoLower).String(name)
}

// Add adds a pattern with the given value at the Interactive priority.
func (db *DB) Add(pattern, value string) error {
	return db.AddPriority(pattern, value, Interactive)
}

// AddPriority adds a pattern with the given value and priority. A match with
// a higher priority always beats one with a lower priority.
func (db *DB) AddPriority(pattern, value string, priority int) error {
	elems, err := parsePattern(pattern)
	if err != nil {
		return err
	}
	db.seq++
	db.entries = append(db.entries, entry{elems: elems, value: value, priority: priority, seq: db.seq})
	return nil
}

// Clear removes every pattern.
func (db *DB) Clear() {
	db.entries = nil
}

// Len returns the number of patterns in the database.
func (db *DB) Len() int {
	return len(db.entries)
}

func parsePattern(pattern string) ([]elem, error) {
	p := strings.TrimSpace(pattern)
	if p == "" {
		return nil, &itcl.Error{Kind: itcl.KindUsage, Detail: "empty option pattern"}
	}
	var elems []elem
	loose := false
	start := 0
	for k := 0; k <= len(p); k++ {
		if k < len(p) && p[k] != '.' && p[k] != '*' {
			if p[k] == ' ' || p[k] == '\t' {
				return nil, &itcl.Error{Kind: itcl.KindUsage, Detail: fmt.Sprintf("bad option pattern %q", pattern)}
			}
			continue
		}
		if k > start {
			elems = append(elems, elem{text: p[start:k], loose: loose})
			loose = false
		} else if k == len(p) {
			return nil, &itcl.Error{Kind: itcl.KindUsage, Detail: fmt.Sprintf("option pattern %q has no option name", pattern)}
		}
		if k < len(p) && p[k] == '*' {
			loose = true
		}
		start = k + 1
	}
	if last := elems[len(elems)-1].text; last == "?" {
		return nil, &itcl.Error{Kind: itcl.KindUsage, Detail: fmt.Sprintf("option pattern %q has no option name", pattern)}
	}
	return elems, nil
}

// Get returns the value of the option with the given name and class for the
// window at path.
func (db *DB) Get(path, name, class string) (string, bool) {
	levels := db.levels(path)
	levels = append(levels, level{name: name, class: class})
	var best *entry
	var bestScore []int
	for k := range db.entries {
		e := &db.entries[k]
		s, ok := match(e.elems, levels, make([]int, 0, len(levels)))
		if !ok {
			continue
		}
		if best == nil || e.priority > best.priority || e.priority == best.priority && !less(s, bestScore) {
			best, bestScore = e, s
		}
	}
	if best == nil {
		return "", false
	}
	return best.value, true
}

// LookupDefault implements itcl.DefaultSource. The option class is derived
// from its name.
func (db *DB) LookupDefault(window, option string) (string, bool) {
	return db.Get(window, option, Class(option))
}

// levels returns the name and class of each window level of path.
func (db *DB) levels(path string) []level {
	if path == "" || path == "." {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(path, "."), ".")
	r := make([]level, len(parts))
	for k, name := range parts {
		r[k] = level{name: name, class: db.class("." + strings.Join(parts[:k+1], "."))}
	}
	return r
}

func (db *DB) class(path string) string {
	if db.ClassOf != nil {
		if c := db.ClassOf(path); c != "" {
			return c
		}
	}
	return Class(path[strings.LastIndexByte(path, '.')+1:])
}

// Scores per level. Odd scores mark tight bindings.
const (
	skipped = 0
	anyName = 2
	byClass = 4
	byName  = 6
)

// match matches a pattern against levels and returns the best score vector.
func match(p []elem, l []level, score []int) ([]int, bool) {
	if len(p) == 0 {
		return score, len(l) == 0
	}
	if len(l) == 0 {
		return nil, false
	}
	var best []int
	found := false
	e := p[0]
	m := skipped
	switch e.text {
	case l[0].name:
		m = byName
	case l[0].class:
		m = byClass
	case "?":
		if len(p) > 1 {
			m = anyName
		}
	}
	if m != skipped {
		if !e.loose {
			m++
		}
		if s, ok := match(p[1:], l[1:], append(score[:len(score):len(score)], m)); ok {
			best, found = s, true
		}
	}
	if e.loose && len(l) > 1 {
		if s, ok := match(p, l[1:], append(score[:len(score):len(score)], skipped)); ok && (!found || less(best, s)) {
			best, found = s, true
		}
	}
	return best, found
}

// less reports whether score a ranks below b.
func less(a, b []int) bool {
	for k := 0; k < len(a) && k < len(b); k++ {
		if a[k] != b[k] {
			return a[k] < b[k]
		}
	}
	return len(a) < len(b)
}

// Read adds the patterns of an X resource file at the given priority. Lines
// have the form "pattern: value"; lines beginning with "!" or "#" are
// comments, and a backslash at the end of a line continues it.
func (db *DB) Read(r io.Reader, priority int) error {
	sc := bufio.NewScanner(r)
	lineno := 0
	var line strings.Builder
	start := 0
	for sc.Scan() {
		lineno++
		text := sc.Text()
		if line.Len() == 0 {
			start = lineno
		}
		if strings.HasSuffix(text, "\\") && !strings.HasSuffix(text, "\\\\") {
			line.WriteString(strings.TrimSuffix(text, "\\"))
			continue
		}
		line.WriteString(text)
		s := strings.TrimSpace(line.String())
		line.Reset()
		if s == "" || s[0] == '!' || s[0] == '#' {
			continue
		}
		k := strings.IndexByte(s, ':')
		if k < 0 {
			return &itcl.Error{Kind: itcl.KindUsage, Detail: "missing colon on line " + strconv.Itoa(start)}
		}
		if err := db.AddPriority(s[:k], unescape(strings.TrimSpace(s[k+1:])), priority); err != nil {
			return fmt.Errorf("line %d: %w", start, err)
		}
	}
	return sc.Err()
}

// unescape interprets the escapes of resource file values.
func unescape(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var b strings.Builder
	for k := 0; k < len(s); k++ {
		if s[k] != '\\' || k+1 == len(s) {
			b.WriteByte(s[k])
			continue
		}
		k++
		switch s[k] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(s[k])
		}
	}
	return b.String()
}

// ReadFile adds the patterns of the resource file at path.
func (db *DB) ReadFile(path string, priority int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := db.Read(f, priority); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// parsePriority parses a priority given by name or number.
func parsePriority(s string) (int, error) {
	switch s {
	case "widgetDefault":
		return WidgetDefault, nil
	case "startupFile":
		return StartupFile, nil
	case "userDefault":
		return UserDefault, nil
	case "interactive":
		return Interactive, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 100 {
		return 0, &itcl.Error{Kind: itcl.KindUsage, Detail: fmt.Sprintf("bad priority level %q: must be widgetDefault, startupFile, userDefault, interactive, or a number between 0 and 100", s)}
	}
	return n, nil
}

func init() {
	itcl.Register(func(i *itcl.Interp) {
		db := New()
		db.ClassOf = func(path string) string {
			if o := i.Object(path); o != nil {
				return o.Class().SimpleName()
			}
			return ""
		}
		if i.Defaults == nil {
			i.Defaults = db
		}
		i.Commands["option"] = db.command
	})
}

// command implements the option command:
//
//	option add pattern value ?priority?
//	option clear
//	option get window name class
//	option readfile fileName ?priority?
func (db *DB) command(i *itcl.Interp, args []string) (string, error) {
	if len(args) == 0 {
		return "", &itcl.Error{Kind: itcl.KindUsage, Detail: "wrong # args: should be \"option cmd arg ?arg ...?\""}
	}
	switch args[0] {
	case "add":
		if len(args) != 3 && len(args) != 4 {
			return "", &itcl.Error{Kind: itcl.KindUsage, Detail: "wrong # args: should be \"option add pattern value ?priority?\""}
		}
		p := Interactive
		if len(args) == 4 {
			var err error
			if p, err = parsePriority(args[3]); err != nil {
				return "", err
			}
		}
		return "", db.AddPriority(args[1], args[2], p)
	case "clear":
		db.Clear()
		return "", nil
	case "get":
		if len(args) != 4 {
			return "", &itcl.Error{Kind: itcl.KindUsage, Detail: "wrong # args: should be \"option get window name class\""}
		}
		v, _ := db.Get(args[1], args[2], args[3])
		return v, nil
	case "readfile":
		if len(args) != 2 && len(args) != 3 {
			return "", &itcl.Error{Kind: itcl.KindUsage, Detail: "wrong # args: should be \"option readfile fileName ?priority?\""}
		}
		p := Interactive
		if len(args) == 3 {
			var err error
			if p, err = parsePriority(args[2]); err != nil {
				return "", err
			}
		}
		return "", db.ReadFile(args[1], p)
	}
	return "", &itcl.Error{Kind: itcl.KindUsage, Detail: fmt.Sprintf("bad option %q: must be add, clear, get, or readfile", args[0])}
}
