// Package lexer turns model DSL source text into a token stream for the
// parser.
package lexer

import (
	"strings"

	"github.com/AaronC81/hiloz/simerr"
)

// Lexer scans one input string into Tokens on demand.
type Lexer struct {
	input        string
	position     int // index of ch
	readPosition int // index of the next byte
	ch           byte
	line         int
	column       int
}

// New returns a Lexer positioned at the start of input.
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) pos() simerr.Position {
	return simerr.Position{Line: l.line, Column: l.column, Offset: l.position}
}

func isLetter(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

// Next scans and returns the next token. It returns a *simerr.Error
// (Kind == simerr.KindParse) in place of ok on an unrecognized
// character; the returned token is then zero-valued.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespaceAndComments()
	startPos := l.pos()

	switch {
	case l.ch == 0:
		return Token{Type: TEOF, Position: startPos}, nil

	case isLetter(l.ch):
		start := l.position
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		text := l.input[start:l.position]
		if text == "H" || text == "L" || text == "X" {
			return Token{Type: TLogic, Text: text, Position: startPos}, nil
		}
		if kw, ok := keywords[text]; ok {
			return Token{Type: kw, Text: text, Position: startPos}, nil
		}
		return Token{Type: TIdent, Text: text, Position: startPos}, nil

	case isDigit(l.ch):
		start := l.position
		for isDigit(l.ch) {
			l.readChar()
		}
		return Token{Type: TInteger, Text: l.input[start:l.position], Position: startPos}, nil
	}

	single := func(t TokenType) (Token, error) {
		text := string(l.ch)
		l.readChar()
		return Token{Type: t, Text: text, Position: startPos}, nil
	}
	double := func(t TokenType) (Token, error) {
		text := l.input[l.position : l.position+2]
		l.readChar()
		l.readChar()
		return Token{Type: t, Text: text, Position: startPos}, nil
	}

	switch l.ch {
	case '{':
		return single(TLBrace)
	case '}':
		return single(TRBrace)
	case '(':
		return single(TLParen)
	case ')':
		return single(TRParen)
	case ';':
		return single(TSemicolon)
	case ',':
		return single(TComma)
	case '.':
		return single(TDot)
	case '+':
		return single(TPlus)
	case '-':
		return single(TMinus)
	case '*':
		return single(TStar)
	case '/':
		return single(TSlash)
	case '!':
		return single(TNot)
	case '=':
		if l.peekChar() == '=' {
			return double(TEqEq)
		}
		return single(TAssign)
	case '<':
		if l.peekChar() == '-' {
			return double(TArrow)
		}
	case '|':
		if l.peekChar() == '|' {
			return double(TOrOr)
		}
	case '&':
		if l.peekChar() == '&' {
			return double(TAndAnd)
		}
	}

	return Token{}, simerr.NewParseError(startPos, "unexpected character %q", string(l.ch))
}

// All drains the lexer to EOF, returning every token (EOF included) or
// the first error encountered.
func (l *Lexer) All() ([]Token, error) {
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == TEOF {
			return toks, nil
		}
	}
}

// TrimmedSource strips a leading shebang line so model files can be made
// directly executable.
func TrimmedSource(src string) string {
	if strings.HasPrefix(src, "#!") {
		if idx := strings.IndexByte(src, '\n'); idx >= 0 {
			return src[idx+1:]
		}
		return ""
	}
	return src
}
