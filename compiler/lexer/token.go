package lexer

import (
	"fmt"

	"github.com/AaronC81/hiloz/simerr"
)

// TokenType enumerates the DSL's token kinds.
type TokenType int

const (
	TEOF TokenType = iota
	TIdent
	TInteger
	TLogic // H, L, or X

	// Keywords
	TDefine
	TComponent
	TPin
	TScript
	TConstructor
	TFn
	TConnect
	TVar
	TSleep
	TTrigger
	TDump
	TLoop
	TIf
	TBreak

	// Punctuation and operators
	TLBrace
	TRBrace
	TLParen
	TRParen
	TSemicolon
	TComma
	TDot
	TAssign
	TArrow // <-
	TNot
	TOrOr
	TAndAnd
	TEqEq
	TPlus
	TMinus
	TStar
	TSlash
)

var tokenNames = map[TokenType]string{
	TEOF: "EOF", TIdent: "ident", TInteger: "integer", TLogic: "logic",
	TDefine: "define", TComponent: "component", TPin: "pin", TScript: "script",
	TConstructor: "constructor", TFn: "fn", TConnect: "connect", TVar: "var",
	TSleep: "sleep", TTrigger: "trigger", TDump: "_dump", TLoop: "loop",
	TIf: "if", TBreak: "break",
	TLBrace: "{", TRBrace: "}", TLParen: "(", TRParen: ")", TSemicolon: ";",
	TComma: ",", TDot: ".", TAssign: "=", TArrow: "<-", TNot: "!",
	TOrOr: "||", TAndAnd: "&&", TEqEq: "==", TPlus: "+", TMinus: "-",
	TStar: "*", TSlash: "/",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

var keywords = map[string]TokenType{
	"define": TDefine, "component": TComponent, "pin": TPin,
	"script": TScript, "constructor": TConstructor, "fn": TFn,
	"connect": TConnect, "var": TVar, "sleep": TSleep,
	"trigger": TTrigger, "_dump": TDump, "loop": TLoop,
	"if": TIf, "break": TBreak,
}

// Token is one lexical unit: its kind, the literal text it came from,
// and where it started.
type Token struct {
	Type     TokenType
	Text     string
	Position simerr.Position
}

func (t Token) String() string {
	return fmt.Sprintf("Token{%s %q @ %s}", t.Type, t.Text, t.Position)
}
