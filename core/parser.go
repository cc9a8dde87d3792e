package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// maxNesting bounds array and dictionary nesting in hostile files.
const maxNesting = 256

// ReferenceResolver resolves indirect references met while parsing, such
// as a stream /Length stored in another object.
type ReferenceResolver interface {
	ResolveReference(ref IndirectRef) (Object, error)
}

// Parser builds objects from PDF syntax held in memory.
type Parser struct {
	lex      *Lexer
	resolver ReferenceResolver
	depth    int
}

// NewParser returns a Parser reading data from its start.
func NewParser(data []byte) *Parser {
	return &Parser{lex: NewLexer(data)}
}

// SetReferenceResolver sets the resolver used for indirect stream lengths.
// Without one, stream extents are found by searching for "endstream".
func (p *Parser) SetReferenceResolver(r ReferenceResolver) {
	p.resolver = r
}

// Pos returns the offset of the next unread byte.
func (p *Parser) Pos() int { return p.lex.Pos() }

// ParseObject parses the next object. An "N G R" sequence yields an
// IndirectRef.
func (p *Parser) ParseObject() (Object, error) {
	tok, err := p.lex.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return p.value(tok)
}

// value completes the object that starts with tok.
func (p *Parser) value(tok Object) (Object, error) {
	switch t := tok.(type) {
	case Int:
		if ref, ok := p.reference(t); ok {
			return ref, nil
		}
		return t, nil
	case keyword:
		switch t {
		case "[":
			return p.array()
		case "<<":
			return p.dict()
		}
		return nil, fmt.Errorf("unexpected %q at offset %d", string(t), p.lex.Pos())
	}
	return tok, nil
}

// reference looks past num for "G R", rewinding when they are absent.
func (p *Parser) reference(num Int) (IndirectRef, bool) {
	mark := p.lex.Pos()
	gen, err := p.lex.Next()
	if g, ok := gen.(Int); err == nil && ok && g >= 0 {
		if r, err := p.lex.Next(); err == nil && r == keyword("R") {
			return IndirectRef{Number: int(num), Generation: int(g)}, true
		}
	}
	p.lex.SetPos(mark)
	return IndirectRef{}, false
}

func (p *Parser) nest() error {
	p.depth++
	if p.depth > maxNesting {
		return fmt.Errorf("objects nested deeper than %d levels", maxNesting)
	}
	return nil
}

func (p *Parser) array() (Object, error) {
	defer func() { p.depth-- }()
	if err := p.nest(); err != nil {
		return nil, err
	}

	arr := Array{}
	for {
		tok, err := p.lex.Next()
		if err != nil {
			return nil, fmt.Errorf("unterminated array: %w", err)
		}
		if tok == keyword("]") {
			return arr, nil
		}
		v, err := p.value(tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

func (p *Parser) dict() (Object, error) {
	defer func() { p.depth-- }()
	if err := p.nest(); err != nil {
		return nil, err
	}

	d := Dict{}
	for {
		tok, err := p.lex.Next()
		if err != nil {
			return nil, fmt.Errorf("unterminated dictionary: %w", err)
		}
		if tok == keyword(">>") {
			return d, nil
		}

		key, ok := tok.(Name)
		if !ok {
			return nil, fmt.Errorf("dictionary key is %s, not a name", tok)
		}

		tok, err = p.lex.Next()
		if err != nil {
			return nil, fmt.Errorf("unterminated dictionary: %w", err)
		}
		if tok == keyword(">>") {
			// Key without a value
			d[string(key)] = Null{}
			return d, nil
		}
		v, err := p.value(tok)
		if err != nil {
			return nil, fmt.Errorf("value of /%s: %w", key, err)
		}
		d[string(key)] = v
	}
}

// ParseIndirectObject parses "N G obj <object> endobj". A dictionary
// followed by "stream" becomes a *Stream. A missing endobj is tolerated.
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	num, err1 := p.lex.Next()
	gen, err2 := p.lex.Next()
	kw, err3 := p.lex.Next()
	n, ok1 := num.(Int)
	g, ok2 := gen.(Int)
	if err := errors.Join(err1, err2, err3); err != nil || !ok1 || !ok2 || kw != keyword("obj") {
		return nil, fmt.Errorf("missing object header")
	}

	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", n, err)
	}

	if dict, ok := obj.(Dict); ok {
		mark := p.lex.Pos()
		if tok, err := p.lex.Next(); err == nil && tok == keyword("stream") {
			if obj, err = p.stream(dict); err != nil {
				return nil, fmt.Errorf("object %d: %w", n, err)
			}
		} else {
			p.lex.SetPos(mark)
		}
	}

	mark := p.lex.Pos()
	if tok, err := p.lex.Next(); err != nil || tok != keyword("endobj") {
		p.lex.SetPos(mark)
	}

	return &IndirectObject{
		Ref:    IndirectRef{Number: int(n), Generation: int(g)},
		Object: obj,
	}, nil
}

var endstream = []byte("endstream")

// stream reads the data following the "stream" keyword. A /Length that is
// missing, unresolvable or not followed by endstream is replaced by a
// search for the endstream keyword.
func (p *Parser) stream(dict Dict) (*Stream, error) {
	data := p.lex.data
	start := p.lex.Pos()
	if start < len(data) && data[start] == '\r' {
		start++
	}
	if start < len(data) && data[start] == '\n' {
		start++
	}

	end, ok := p.declaredEnd(dict, start)
	if !ok {
		idx := bytes.Index(data[start:], endstream)
		if idx < 0 {
			return nil, fmt.Errorf("stream has no endstream")
		}
		end = start + idx
		afterData := end
		if end > start && data[end-1] == '\n' {
			end--
		}
		if end > start && data[end-1] == '\r' {
			end--
		}
		p.lex.SetPos(afterData + len(endstream))
	}

	return &Stream{
		Dict: dict,
		Data: append([]byte(nil), data[start:end]...),
	}, nil
}

// declaredEnd checks /Length against the data. On success the lexer is left
// after the endstream keyword.
func (p *Parser) declaredEnd(dict Dict, start int) (int, bool) {
	length := dict.Get("Length")
	if ref, ok := length.(IndirectRef); ok {
		if p.resolver == nil {
			return 0, false
		}
		obj, err := p.resolver.ResolveReference(ref)
		if err != nil {
			return 0, false
		}
		length = obj
	}

	n, ok := length.(Int)
	if !ok || n < 0 || int64(start)+int64(n) > int64(len(p.lex.data)) {
		return 0, false
	}
	end := start + int(n)

	p.lex.SetPos(end)
	if tok, err := p.lex.Next(); err != nil || tok != keyword("endstream") {
		return 0, false
	}
	return end, true
}
