package script

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zephyrtronium/itcl"
)

// wordKind is the quoting form of a word.
type wordKind int

const (
	bare wordKind = iota
	braced
	quoted
)

// word is one unsubstituted word of a command.
type word struct {
	text string
	kind wordKind
	// expand is set for words prefixed with {*}.
	expand bool
}

// command is a parsed command and the line on which it begins.
type command struct {
	words []word
	line  int
}

// parser splits source text into commands.
type parser struct {
	src  string
	pos  int
	line int
}

func syntaxError(line int, format string, args ...interface{}) error {
	return &itcl.Error{
		Kind:   itcl.KindUsage,
		Detail: fmt.Sprintf(format, args...) + " (line " + strconv.Itoa(line) + ")",
	}
}

// parse parses an entire script.
func parse(src string) ([]command, error) {
	p := parser{src: src, line: 1}
	var cmds []command
	for {
		p.skipSeparators()
		if p.pos >= len(p.src) {
			return cmds, nil
		}
		if p.src[p.pos] == '#' {
			p.skipComment()
			continue
		}
		cmd, err := p.command()
		if err != nil {
			return nil, err
		}
		if len(cmd.words) > 0 {
			cmds = append(cmds, cmd)
		}
	}
}

func (p *parser) skipSeparators() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '\n':
			p.line++
		case ' ', '\t', '\r', ';':
		default:
			return
		}
		p.pos++
	}
}

func (p *parser) skipComment() {
	for p.pos < len(p.src) && p.src[p.pos] != '\n' {
		if p.src[p.pos] == '\\' && p.pos+1 < len(p.src) {
			if p.src[p.pos+1] == '\n' {
				p.line++
			}
			p.pos++
		}
		p.pos++
	}
}

// command parses words up to the end of a command.
func (p *parser) command() (command, error) {
	cmd := command{line: p.line}
	for {
		// Skip blanks within the command, including escaped newlines.
		for p.pos < len(p.src) {
			c := p.src[p.pos]
			if c == ' ' || c == '\t' || c == '\r' {
				p.pos++
				continue
			}
			if c == '\\' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '\n' {
				p.pos += 2
				p.line++
				continue
			}
			break
		}
		if p.pos >= len(p.src) || p.src[p.pos] == '\n' || p.src[p.pos] == ';' {
			return cmd, nil
		}
		w, err := p.word()
		if err != nil {
			return cmd, err
		}
		cmd.words = append(cmd.words, w)
	}
}

// word parses one word.
func (p *parser) word() (word, error) {
	switch {
	case strings.HasPrefix(p.src[p.pos:], "{*}") && p.pos+3 < len(p.src) && !isBlank(p.src[p.pos+3]):
		p.pos += 3
		w, err := p.word()
		if err != nil {
			return w, err
		}
		w.expand = true
		return w, nil
	case p.src[p.pos] == '{':
		return p.braced()
	case p.src[p.pos] == '"':
		return p.quoted()
	}
	return p.bare()
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == ';'
}

func (p *parser) braced() (word, error) {
	start, line := p.pos+1, p.line
	depth := 0
	for ; p.pos < len(p.src); p.pos++ {
		switch p.src[p.pos] {
		case '\\':
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '\n' {
				p.line++
			}
			p.pos++
		case '\n':
			p.line++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				text := p.src[start:p.pos]
				p.pos++
				if p.pos < len(p.src) && !isBlank(p.src[p.pos]) {
					return word{}, syntaxError(p.line, "extra characters after close-brace")
				}
				return word{text: text, kind: braced}, nil
			}
		}
	}
	return word{}, syntaxError(line, "missing close-brace")
}

func (p *parser) quoted() (word, error) {
	p.pos++
	start, line := p.pos, p.line
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '\\':
			p.pos++
		case '\n':
			p.line++
		case '[':
			if err := p.skipBracket(); err != nil {
				return word{}, err
			}
			continue
		case '"':
			text := p.src[start:p.pos]
			p.pos++
			if p.pos < len(p.src) && !isBlank(p.src[p.pos]) {
				return word{}, syntaxError(p.line, "extra characters after close-quote")
			}
			return word{text: text, kind: quoted}, nil
		}
		p.pos++
	}
	return word{}, syntaxError(line, "missing \"")
}

func (p *parser) bare() (word, error) {
	start := p.pos
	for p.pos < len(p.src) && !isBlank(p.src[p.pos]) {
		switch p.src[p.pos] {
		case '\\':
			p.pos++
		case '[':
			if err := p.skipBracket(); err != nil {
				return word{}, err
			}
			continue
		}
		p.pos++
	}
	if p.pos > len(p.src) {
		p.pos = len(p.src)
	}
	return word{text: p.src[start:p.pos], kind: bare}, nil
}

// skipBracket advances past a command substitution starting at p.pos.
func (p *parser) skipBracket() error {
	end, err := matchBracket(p.src, p.pos)
	if err != nil {
		return syntaxError(p.line, "%v", err)
	}
	p.line += strings.Count(p.src[p.pos:end], "\n")
	p.pos = end
	return nil
}

// matchBracket returns the index just past the bracket that closes the one
// at s[i].
func matchBracket(s string, i int) (int, error) {
	depth := 0
	braces := 0
	for ; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			braces++
		case '}':
			if braces > 0 {
				braces--
			}
		case '[':
			if braces == 0 {
				depth++
			}
		case ']':
			if braces == 0 {
				depth--
				if depth == 0 {
					return i + 1, nil
				}
			}
		}
	}
	return 0, errors.New("missing close-bracket")
}
