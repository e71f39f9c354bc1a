package header

import "fmt"

// TokenKind enumerates the tokens of the impl-header grammar.
type TokenKind uint8

const (
	Invalid TokenKind = iota
	EOF
	Ident
	KwImpl
	KwAs
	KwMut
	KwDrop
	Lt         // <
	Gt         // >
	Comma      // ,
	LBracket   // [
	RBracket   // ]
	LParen     // (
	RParen     // )
	Amp        // &
	Star       // *
	Bang       // !
	Underscore // _
	Question   // ?
	Semicolon  // ;
)

var tokenNames = [...]string{
	Invalid:    "invalid",
	EOF:        "end of input",
	Ident:      "identifier",
	KwImpl:     "'impl'",
	KwAs:       "'as'",
	KwMut:      "'mut'",
	KwDrop:     "'drop'",
	Lt:         "'<'",
	Gt:         "'>'",
	Comma:      "','",
	LBracket:   "'['",
	RBracket:   "']'",
	LParen:     "'('",
	RParen:     "')'",
	Amp:        "'&'",
	Star:       "'*'",
	Bang:       "'!'",
	Underscore: "'_'",
	Question:   "'?'",
	Semicolon:  "';'",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", k)
}

var keywords = map[string]TokenKind{
	"impl": KwImpl,
	"as":   KwAs,
	"mut":  KwMut,
	"drop": KwDrop,
}

// Token is a lexeme with its byte offset in the header text.
type Token struct {
	Kind TokenKind
	Pos  int
	Text string
}

// ErrorKind classifies header errors.
type ErrorKind uint8

const (
	// SyntaxError is malformed header text.
	SyntaxError ErrorKind = iota
	// ResolveError is an unknown name or an arity mismatch.
	ResolveError
	// ShapeError is a header that lowers but does not form a valid impl pattern.
	ShapeError
)

// Error reports a malformed or unresolvable header.
type Error struct {
	Pos  int
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Pos, e.Msg)
}

func errorf(pos int, format string, args ...any) *Error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func resolvef(pos int, format string, args ...any) *Error {
	return &Error{Pos: pos, Kind: ResolveError, Msg: fmt.Sprintf(format, args...)}
}
