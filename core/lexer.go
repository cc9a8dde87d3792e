package core

import (
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Lexer splits PDF syntax held in memory into tokens. Scalar values come
// back as their Object types; everything else, delimiters included, is a
// keyword.
type Lexer struct {
	data []byte
	pos  int
}

// NewLexer returns a Lexer positioned at the start of data.
func NewLexer(data []byte) *Lexer {
	return &Lexer{data: data}
}

// Pos returns the offset of the next unread byte.
func (l *Lexer) Pos() int { return l.pos }

// SetPos moves the lexer to offset pos.
func (l *Lexer) SetPos(pos int) { l.pos = pos }

func isWhite(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(c byte) bool { return !isWhite(c) && !isDelim(c) }

// skipSpace moves past white space and comments.
func (l *Lexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case isWhite(c):
			l.pos++
		case c == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		default:
			return
		}
	}
}

// Next returns the next token, or io.EOF at the end of the data.
func (l *Lexer) Next() (Object, error) {
	l.skipSpace()
	if l.pos >= len(l.data) {
		return nil, io.EOF
	}

	switch c := l.data[l.pos]; c {
	case '(':
		return l.literalString()
	case '<':
		if l.peek(1) == '<' {
			l.pos += 2
			return keyword("<<"), nil
		}
		return l.hexString()
	case '>':
		if l.peek(1) == '>' {
			l.pos += 2
			return keyword(">>"), nil
		}
		return nil, fmt.Errorf("unexpected '>' at offset %d", l.pos)
	case '[', ']', '{', '}':
		l.pos++
		return keyword(string(c)), nil
	case ')':
		return nil, fmt.Errorf("unbalanced ')' at offset %d", l.pos)
	case '/':
		return l.name(), nil
	}

	start := l.pos
	for l.pos < len(l.data) && isRegular(l.data[l.pos]) {
		l.pos++
	}
	return bareToken(string(l.data[start:l.pos])), nil
}

func (l *Lexer) peek(n int) byte {
	if l.pos+n < len(l.data) {
		return l.data[l.pos+n]
	}
	return 0
}

// bareToken classifies a run of regular characters.
func bareToken(tok string) Object {
	switch tok {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	case "null":
		return Null{}
	}
	if num, ok := parseNumber(tok); ok {
		return num
	}
	return keyword(tok)
}

// parseNumber reads PDF integers and reals ("12", "-3", "+.5", "4.").
// Integers too large for int64 become reals.
func parseNumber(tok string) (Object, bool) {
	digits := tok
	if digits[0] == '+' || digits[0] == '-' {
		digits = digits[1:]
	}
	if digits == "" {
		return nil, false
	}

	dots := 0
	for i := 0; i < len(digits); i++ {
		switch c := digits[i]; {
		case c == '.':
			dots++
		case c < '0' || c > '9':
			return nil, false
		}
	}
	if dots > 1 || digits == "." {
		return nil, false
	}

	if dots == 0 {
		if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
			return Int(i), true
		}
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, false
	}
	return Real(f), true
}

// name reads a /Name, decoding #xx escapes.
func (l *Lexer) name() Name {
	l.pos++
	var buf []byte
	for l.pos < len(l.data) && isRegular(l.data[l.pos]) {
		c := l.data[l.pos]
		if c == '#' && l.pos+2 < len(l.data) {
			hi, ok1 := unhex(l.data[l.pos+1])
			lo, ok2 := unhex(l.data[l.pos+2])
			if ok1 && ok2 {
				buf = append(buf, hi<<4|lo)
				l.pos += 3
				continue
			}
		}
		buf = append(buf, c)
		l.pos++
	}
	return Name(buf)
}

// literalString reads a (string) with balanced parentheses. End of line
// sequences inside the string read as a single '\n'.
func (l *Lexer) literalString() (Object, error) {
	start := l.pos
	l.pos++

	var buf []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++

		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return String(buf), nil
			}
		case '\r':
			if l.pos < len(l.data) && l.data[l.pos] == '\n' {
				l.pos++
			}
			c = '\n'
		case '\\':
			var ok bool
			if c, ok = l.escape(); !ok {
				continue
			}
		}
		buf = append(buf, c)
	}

	return nil, fmt.Errorf("unterminated string starting at offset %d", start)
}

// escape decodes the sequence after a backslash. It reports false for a
// line continuation, which produces no byte.
func (l *Lexer) escape() (byte, bool) {
	if l.pos >= len(l.data) {
		return 0, false
	}
	c := l.data[l.pos]
	l.pos++

	switch c {
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case '\r':
		if l.pos < len(l.data) && l.data[l.pos] == '\n' {
			l.pos++
		}
		return 0, false
	case '\n':
		return 0, false
	}

	if c >= '0' && c <= '7' {
		v := int(c - '0')
		for n := 1; n < 3 && l.pos < len(l.data); n++ {
			d := l.data[l.pos]
			if d < '0' || d > '7' {
				break
			}
			v = v*8 + int(d-'0')
			l.pos++
		}
		return byte(v), true
	}

	// \( \) \\ and unknown escapes stand for the character itself
	return c, true
}

// hexString reads a <hex string>. White space is ignored and an odd
// final digit is padded with 0.
func (l *Lexer) hexString() (Object, error) {
	start := l.pos
	l.pos++

	var buf []byte
	var hi byte
	half := false
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++

		if c == '>' {
			if half {
				buf = append(buf, hi<<4)
			}
			return String(buf), nil
		}
		if isWhite(c) {
			continue
		}

		v, ok := unhex(c)
		if !ok {
			return nil, fmt.Errorf("invalid hex digit %q in string at offset %d", c, start)
		}
		if half {
			buf = append(buf, hi<<4|v)
		} else {
			hi = v
		}
		half = !half
	}

	return nil, fmt.Errorf("unterminated hex string starting at offset %d", start)
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
