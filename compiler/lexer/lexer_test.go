package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTypes(t *testing.T, src string) []TokenType {
	t.Helper()
	toks, err := New(src).All()
	require.NoError(t, err)
	var types []TokenType
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	return types
}

func TestLexesComponentSkeleton(t *testing.T) {
	src := `define component NotGate { pin in; pin out; script { trigger; } }`
	types := tokenTypes(t, src)
	assert.Equal(t, []TokenType{
		TDefine, TComponent, TIdent,
		TLBrace,
		TPin, TIdent, TSemicolon,
		TPin, TIdent, TSemicolon,
		TScript, TLBrace, TTrigger, TSemicolon, TRBrace,
		TRBrace,
		TEOF,
	}, types)
}

func TestLexesLogicLiteralsDistinctFromIdents(t *testing.T) {
	toks, err := New("H L X Hx").All()
	require.NoError(t, err)
	require.Len(t, toks, 5) // H, L, X, Hx, EOF
	assert.Equal(t, TLogic, toks[0].Type)
	assert.Equal(t, TLogic, toks[1].Type)
	assert.Equal(t, TLogic, toks[2].Type)
	assert.Equal(t, TIdent, toks[3].Type)
}

func TestLexesOperators(t *testing.T) {
	types := tokenTypes(t, `<- = == ! || && + - * /`)
	assert.Equal(t, []TokenType{
		TArrow, TAssign, TEqEq, TNot, TOrOr, TAndAnd, TPlus, TMinus, TStar, TSlash, TEOF,
	}, types)
}

func TestSkipsLineComments(t *testing.T) {
	types := tokenTypes(t, "pin out; // trailing comment\npin in;")
	assert.Equal(t, []TokenType{TPin, TIdent, TSemicolon, TPin, TIdent, TSemicolon, TEOF}, types)
}

func TestUnexpectedCharacterIsParseError(t *testing.T) {
	_, err := New("pin out @ foo;").All()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse error")
}

func TestTrimmedSourceStripsShebang(t *testing.T) {
	assert.Equal(t, "pin out;", TrimmedSource("#!/usr/bin/env hiloz\npin out;"))
	assert.Equal(t, "pin out;", TrimmedSource("pin out;"))
}
