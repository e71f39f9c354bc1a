package header

import "solver/internal/types"

// maxNesting stops runaway recursion on adversarial input before the pattern
// engine's own depth limit is reached.
const maxNesting = 512

// Parser is a recursive-descent parser for impl headers and type expressions.
type Parser struct {
	lx    *Lexer
	depth int
}

// ParseType parses a standalone type expression such as `B<&mut i32>`.
func ParseType(src string) (*Type, error) {
	p := &Parser{lx: NewLexer(src)}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return t, nil
}

// ParseImpl parses `impl <type> [as <path>] [;]`.
func ParseImpl(src string) (*Impl, error) {
	p := &Parser{lx: NewLexer(src)}
	kw := p.lx.Next()
	if kw.Kind != KwImpl {
		return nil, errorf(kw.Pos, "expected 'impl', found %s", kw.Kind)
	}
	implementor, err := p.parseType()
	if err != nil {
		return nil, err
	}
	im := &Impl{Pos: kw.Pos, Implementor: implementor}
	if p.lx.Peek().Kind == KwAs {
		p.lx.Next()
		tok := p.lx.Peek()
		if tok.Kind != Ident {
			return nil, errorf(tok.Pos, "expected trait name after 'as', found %s", tok.Kind)
		}
		if im.Trait, err = p.parsePath(); err != nil {
			return nil, err
		}
	}
	if p.lx.Peek().Kind == Semicolon {
		p.lx.Next()
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return im, nil
}

func (p *Parser) expectEnd() error {
	if tok := p.lx.Peek(); tok.Kind != EOF {
		return errorf(tok.Pos, "unexpected %s after header", tok.Kind)
	}
	return nil
}

func (p *Parser) parseType() (*Type, error) {
	p.depth++
	defer func() { p.depth-- }()
	tok := p.lx.Next()
	if p.depth > maxNesting {
		return nil, errorf(tok.Pos, "type is nested too deeply")
	}

	switch tok.Kind {
	case LParen:
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(RParen); err != nil {
			return nil, err
		}
		return inner, nil
	case Bang:
		return &Type{Kind: TypeNever, Pos: tok.Pos}, nil
	case Underscore:
		return &Type{Kind: TypePlaceholder, Pos: tok.Pos}, nil
	case Question:
		return &Type{Kind: TypeInferred, Pos: tok.Pos}, nil
	case LBracket:
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(RBracket); err != nil {
			return nil, err
		}
		return &Type{Kind: TypeSlice, Pos: tok.Pos, Elem: elem}, nil
	case Amp:
		qual := types.RefPlain
		switch p.lx.Peek().Kind {
		case KwMut:
			p.lx.Next()
			qual = types.RefMut
		case KwDrop:
			p.lx.Next()
			qual = types.RefDrop
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &Type{Kind: TypeRef, Pos: tok.Pos, RefQual: qual, Elem: elem}, nil
	case Star:
		qual := types.PtrPlain
		if p.lx.Peek().Kind == KwMut {
			p.lx.Next()
			qual = types.PtrMut
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &Type{Kind: TypePtr, Pos: tok.Pos, PtrQual: qual, Elem: elem}, nil
	case Ident:
		path, err := p.parsePathAfter(tok)
		if err != nil {
			return nil, err
		}
		return &Type{Kind: TypePath, Pos: tok.Pos, Path: path}, nil
	default:
		return nil, errorf(tok.Pos, "expected type, found %s", tok.Kind)
	}
}

func (p *Parser) parsePath() (*Path, error) {
	return p.parsePathAfter(p.lx.Next())
}

// parsePathAfter parses the optional `<...>` following an identifier.
func (p *Parser) parsePathAfter(ident Token) (*Path, error) {
	path := &Path{Pos: ident.Pos, Name: ident.Text}
	if p.lx.Peek().Kind != Lt {
		return path, nil
	}
	p.lx.Next()
	for {
		if p.lx.Peek().Kind == Gt && len(path.Args) > 0 {
			break // trailing comma
		}
		arg, err := p.parseType()
		if err != nil {
			return nil, err
		}
		path.Args = append(path.Args, arg)
		if p.lx.Peek().Kind != Comma {
			break
		}
		p.lx.Next()
	}
	if err := p.expect(Gt); err != nil {
		return nil, err
	}
	return path, nil
}

func (p *Parser) expect(kind TokenKind) error {
	tok := p.lx.Next()
	if tok.Kind != kind {
		return errorf(tok.Pos, "expected %s, found %s", kind, tok.Kind)
	}
	return nil
}
