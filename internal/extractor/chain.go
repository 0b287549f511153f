package extractor

// segment is one ".method(args)" call of a chain suffix
type segment struct {
	method string
	args   string
}

// chain is the modifier suffix that follows a column's base type call
type chain struct {
	raw      string
	segments []segment
}

// arg returns the arguments of the first segment calling method.
func (c chain) arg(method string) (string, bool) {
	for _, s := range c.segments {
		if s.method == method {
			return s.args, true
		}
	}
	return "", false
}

// scanChain consumes ".method(args)" segments from the start of s. Parentheses
// must balance; quoted strings may contain any character. It returns the
// chain, the unconsumed remainder and false if a segment is left open.
func scanChain(s string) (chain, string, bool) {
	var c chain

	i := 0
	for {
		j := skipSpace(s, i)
		if j >= len(s) || s[j] != '.' {
			break
		}
		j++

		start := j
		for j < len(s) && isIdentByte(s[j]) {
			j++
		}
		if j == start || j >= len(s) || s[j] != '(' {
			return chain{}, "", false
		}
		method := s[start:j]

		end, ok := matchParen(s, j)
		if !ok {
			return chain{}, "", false
		}

		c.segments = append(c.segments, segment{method: method, args: s[j+1 : end]})
		i = end + 1
	}

	c.raw = s[:i]
	return c, s[i:], true
}

// matchParen returns the index of the parenthesis closing the one at open.
func matchParen(s string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, true
			}
		case '\'', '"', '`':
			end := skipQuoted(s, i)
			if end < 0 {
				return 0, false
			}
			i = end
		}
	}
	return 0, false
}

// skipQuoted returns the index of the quote closing the one at i, or -1.
func skipQuoted(s string, i int) int {
	q := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case q:
			return j
		}
	}
	return -1
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
