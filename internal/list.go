package internal

import "strings"

// FormatList formats elems as a list in which each element can be recovered
// by SplitList.
func FormatList(elems ...string) string {
	var b strings.Builder
	for i, e := range elems {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(quoteElement(e))
	}
	return b.String()
}

// quoteElement quotes a single list element.
func quoteElement(e string) string {
	if e == "" {
		return "{}"
	}
	if !strings.ContainsAny(e, " \t\n\r{}\"\\[]$;") && e[0] != '#' {
		return e
	}
	if bracesBalanced(e) && !strings.HasSuffix(e, "\\") {
		return "{" + e + "}"
	}
	var b strings.Builder
	for i := 0; i < len(e); i++ {
		switch c := e[i]; c {
		case ' ', '{', '}', '"', '\\', '[', ']', '$', ';':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func bracesBalanced(e string) bool {
	depth := 0
	for i := 0; i < len(e); i++ {
		switch e[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// SplitList splits a list into its elements.
func SplitList(s string) ([]string, error) {
	var r []string
	i := 0
	for {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			return r, nil
		}
		var elem string
		var err error
		switch s[i] {
		case '{':
			elem, i, err = splitBraced(s, i)
		case '"':
			elem, i, err = splitQuoted(s, i)
		default:
			elem, i = splitBare(s, i)
		}
		if err != nil {
			return nil, err
		}
		r = append(r, elem)
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func splitBraced(s string, i int) (string, int, error) {
	depth := 0
	start := i + 1
	for ; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				if i+1 < len(s) && !isSpace(s[i+1]) {
					return "", 0, errorf(KindUsage, "list element in braces followed by %q instead of space", s[i+1:i+2])
				}
				return s[start:i], i + 1, nil
			}
		}
	}
	return "", 0, errorf(KindUsage, "unmatched open brace in list")
}

func splitQuoted(s string, i int) (string, int, error) {
	var b strings.Builder
	for i++; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(unescape(s[i]))
			}
		case '"':
			if i+1 < len(s) && !isSpace(s[i+1]) {
				return "", 0, errorf(KindUsage, "list element in quotes followed by %q instead of space", s[i+1:i+2])
			}
			return b.String(), i + 1, nil
		default:
			b.WriteByte(s[i])
		}
	}
	return "", 0, errorf(KindUsage, "unmatched open quote in list")
}

func splitBare(s string, i int) (string, int) {
	var b strings.Builder
	for ; i < len(s) && !isSpace(s[i]); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			b.WriteByte(unescape(s[i]))
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String(), i
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	}
	return c
}
