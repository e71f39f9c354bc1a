package header

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Lexer splits header text into tokens. After EOF it keeps returning EOF.
type Lexer struct {
	src  string
	off  int
	look *Token
}

// NewLexer constructs a lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() Token {
	if lx.look == nil {
		tok := lx.scan()
		lx.look = &tok
	}
	return *lx.look
}

// Next consumes and returns the next token.
func (lx *Lexer) Next() Token {
	tok := lx.Peek()
	lx.look = nil
	return tok
}

func (lx *Lexer) scan() Token {
	lx.skipSpace()
	if lx.off >= len(lx.src) {
		return Token{Kind: EOF, Pos: lx.off}
	}
	start := lx.off
	r, size := utf8.DecodeRuneInString(lx.src[lx.off:])

	if r == '_' {
		// a lone underscore is the placeholder, "_x" is an identifier
		if next, _ := utf8.DecodeRuneInString(lx.src[lx.off+size:]); lx.off+size >= len(lx.src) || !isIdentContinue(next) {
			lx.off += size
			return Token{Kind: Underscore, Pos: start, Text: "_"}
		}
	}
	if r == '_' || unicode.IsLetter(r) {
		return lx.scanIdent(start)
	}

	lx.off += size
	kind := Invalid
	switch r {
	case '<':
		kind = Lt
	case '>':
		kind = Gt
	case ',':
		kind = Comma
	case '[':
		kind = LBracket
	case ']':
		kind = RBracket
	case '(':
		kind = LParen
	case ')':
		kind = RParen
	case '&':
		kind = Amp
	case '*':
		kind = Star
	case '!':
		kind = Bang
	case '?':
		kind = Question
	case ';':
		kind = Semicolon
	}
	return Token{Kind: kind, Pos: start, Text: lx.src[start:lx.off]}
}

func (lx *Lexer) scanIdent(start int) Token {
	for lx.off < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[lx.off:])
		if !isIdentContinue(r) {
			break
		}
		lx.off += size
	}
	text := norm.NFC.String(lx.src[start:lx.off])
	if kw, ok := keywords[text]; ok {
		return Token{Kind: kw, Pos: start, Text: text}
	}
	return Token{Kind: Ident, Pos: start, Text: text}
}

func (lx *Lexer) skipSpace() {
	for lx.off < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[lx.off:])
		if !unicode.IsSpace(r) {
			return
		}
		lx.off += size
	}
}

func isIdentContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// IsIdent reports whether name lexes as exactly one non-keyword identifier.
func IsIdent(name string) bool {
	if strings.TrimSpace(name) != name {
		return false
	}
	lx := NewLexer(name)
	return lx.Next().Kind == Ident && lx.Next().Kind == EOF
}
