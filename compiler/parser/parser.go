// Package parser implements a recursive-descent, precedence-climbing
// parser for the model DSL, turning a lexer.Lexer's token stream into an
// *ast.File.
package parser

import (
	"strconv"

	"github.com/AaronC81/hiloz/compiler/ast"
	"github.com/AaronC81/hiloz/compiler/lexer"
	"github.com/AaronC81/hiloz/logic"
	"github.com/AaronC81/hiloz/simerr"
)

// Parser holds a two-token lookahead window over a Lexer.
type Parser struct {
	lex  *lexer.Lexer
	cur  lexer.Token
	peek lexer.Token
	err  error
}

// New prepares a Parser over src. It returns a parse error immediately
// if the very first two tokens can't be lexed.
func New(src string) (*Parser, error) {
	p := &Parser{lex: lexer.New(lexer.TrimmedSource(src))}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	p.cur = p.peek
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.peek = tok
	return nil
}

func (p *Parser) at(t lexer.TokenType) bool { return p.cur.Type == t }

func (p *Parser) expect(t lexer.TokenType) (lexer.Token, error) {
	if p.cur.Type != t {
		return lexer.Token{}, simerr.NewParseError(p.cur.Position, "expected %s, found %s %q", t, p.cur.Type, p.cur.Text)
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return lexer.Token{}, err
	}
	return tok, nil
}

// Parse runs the whole file-level grammar: top := (component_def |
// instantiation | connect)*.
func Parse(src string) (*ast.File, error) {
	p, err := New(src)
	if err != nil {
		return nil, err
	}
	return p.parseFile()
}

func (p *Parser) parseFile() (*ast.File, error) {
	file := &ast.File{}
	var errs simerr.List
	for !p.at(lexer.TEOF) {
		decl, err := p.parseTopLevel()
		if err != nil {
			serr, ok := err.(*simerr.Error)
			if !ok {
				return nil, err
			}
			errs.Add(serr)
			if err := p.synchronize(); err != nil {
				return nil, err
			}
			continue
		}
		file.Decls = append(file.Decls, decl)
	}
	if errs.HasErrors() {
		return nil, errs
	}
	return file, nil
}

// synchronize skips tokens up to the start of the next top-level
// declaration, so one malformed declaration doesn't swallow every
// diagnostic after it. parseTopLevel always consumes at least one token
// before failing on a declaration that begins with a keyword, so this
// cannot loop without making progress.
func (p *Parser) synchronize() error {
	for !p.at(lexer.TEOF) && !p.at(lexer.TDefine) && !p.at(lexer.TComponent) && !p.at(lexer.TConnect) {
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseTopLevel() (ast.TopLevel, error) {
	switch p.cur.Type {
	case lexer.TDefine:
		return p.parseComponentDef()
	case lexer.TConnect:
		return p.parseConnect()
	case lexer.TComponent:
		return p.parseInstantiation()
	default:
		return nil, simerr.NewParseError(p.cur.Position, "expected a component definition, instantiation, or connect statement, found %s", p.cur.Type)
	}
}

func (p *Parser) parseComponentDef() (*ast.ComponentDef, error) {
	pos := p.cur.Position
	if _, err := p.expect(lexer.TDefine); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TComponent); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.TIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TLBrace); err != nil {
		return nil, err
	}

	def := &ast.ComponentDef{Name: name.Text}
	def.Position = pos

	for !p.at(lexer.TRBrace) {
		switch p.cur.Type {
		case lexer.TPin:
			pd, err := p.parsePinDef()
			if err != nil {
				return nil, err
			}
			def.Pins = append(def.Pins, pd)
		case lexer.TVar:
			vd, err := p.parseVarMemberDef()
			if err != nil {
				return nil, err
			}
			def.Vars = append(def.Vars, vd)
		case lexer.TScript:
			if def.Script != nil {
				return nil, simerr.NewCompileError(p.cur.Position, "component %q declares more than one script block", name.Text)
			}
			sd, err := p.parseScriptDef()
			if err != nil {
				return nil, err
			}
			def.Script = sd
		case lexer.TConstructor:
			if def.Ctor != nil {
				return nil, simerr.NewCompileError(p.cur.Position, "component %q declares more than one constructor", name.Text)
			}
			cd, err := p.parseCtorDef()
			if err != nil {
				return nil, err
			}
			def.Ctor = cd
		case lexer.TFn:
			fd, err := p.parseFuncDef()
			if err != nil {
				return nil, err
			}
			def.Funcs = append(def.Funcs, fd)
		default:
			return nil, simerr.NewParseError(p.cur.Position, "unexpected token %s inside component body", p.cur.Type)
		}
	}
	if _, err := p.expect(lexer.TRBrace); err != nil {
		return nil, err
	}
	return def, nil
}

func (p *Parser) parsePinDef() (*ast.PinDef, error) {
	pos := p.cur.Position
	if _, err := p.expect(lexer.TPin); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.TIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TSemicolon); err != nil {
		return nil, err
	}
	return &ast.PinDef{Base: ast.At(pos), Name: name.Text}, nil
}

func (p *Parser) parseVarMemberDef() (*ast.VarMemberDef, error) {
	pos := p.cur.Position
	if _, err := p.expect(lexer.TVar); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.TIdent)
	if err != nil {
		return nil, err
	}
	vd := &ast.VarMemberDef{Name: name.Text}
	vd.Position = pos
	if p.at(lexer.TAssign) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		vd.Initial = val
	}
	if _, err := p.expect(lexer.TSemicolon); err != nil {
		return nil, err
	}
	return vd, nil
}

func (p *Parser) parseScriptDef() (*ast.ScriptDef, error) {
	pos := p.cur.Position
	if _, err := p.expect(lexer.TScript); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ScriptDef{Base: ast.At(pos), Body: body}, nil
}

func (p *Parser) parseParamList() ([]string, error) {
	if _, err := p.expect(lexer.TLParen); err != nil {
		return nil, err
	}
	var params []string
	for !p.at(lexer.TRParen) {
		if len(params) > 0 {
			if _, err := p.expect(lexer.TComma); err != nil {
				return nil, err
			}
		}
		name, err := p.expect(lexer.TIdent)
		if err != nil {
			return nil, err
		}
		params = append(params, name.Text)
	}
	if _, err := p.expect(lexer.TRParen); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseCtorDef() (*ast.CtorDef, error) {
	pos := p.cur.Position
	if _, err := p.expect(lexer.TConstructor); err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.CtorDef{Base: ast.At(pos), Parameters: params, Body: body}, nil
}

func (p *Parser) parseFuncDef() (*ast.FuncDef, error) {
	pos := p.cur.Position
	if _, err := p.expect(lexer.TFn); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.TIdent)
	if err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FuncDef{Base: ast.At(pos), Name: name.Text, Parameters: params, Body: body}, nil
}

func (p *Parser) parseInstantiation() (*ast.Instantiation, error) {
	pos := p.cur.Position
	if _, err := p.expect(lexer.TComponent); err != nil {
		return nil, err
	}
	instName, err := p.expect(lexer.TIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TAssign); err != nil {
		return nil, err
	}
	defName, err := p.expect(lexer.TIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TLParen); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.at(lexer.TRParen) {
		if len(args) > 0 {
			if _, err := p.expect(lexer.TComma); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if _, err := p.expect(lexer.TRParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TSemicolon); err != nil {
		return nil, err
	}
	return &ast.Instantiation{Base: ast.At(pos), InstanceName: instName.Text, DefName: defName.Text, Args: args}, nil
}

func (p *Parser) parseAccessor() (*ast.Accessor, error) {
	pos := p.cur.Position
	inst, err := p.expect(lexer.TIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TDot); err != nil {
		return nil, err
	}
	pin, err := p.expect(lexer.TIdent)
	if err != nil {
		return nil, err
	}
	return &ast.Accessor{Base: ast.At(pos), InstanceName: inst.Text, PinName: pin.Text}, nil
}

func (p *Parser) parseConnect() (*ast.Connect, error) {
	pos := p.cur.Position
	if _, err := p.expect(lexer.TConnect); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TLParen); err != nil {
		return nil, err
	}
	var accs []*ast.Accessor
	for {
		acc, err := p.parseAccessor()
		if err != nil {
			return nil, err
		}
		accs = append(accs, acc)
		if !p.at(lexer.TComma) {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.TRParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TSemicolon); err != nil {
		return nil, err
	}
	return &ast.Connect{Base: ast.At(pos), Accessors: accs}, nil
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	pos := p.cur.Position
	if _, err := p.expect(lexer.TLBrace); err != nil {
		return nil, err
	}
	block := &ast.Block{}
	block.Position = pos
	for !p.at(lexer.TRBrace) {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	if _, err := p.expect(lexer.TRBrace); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	pos := p.cur.Position
	switch p.cur.Type {
	case lexer.TVar:
		if err := p.advance(); err != nil {
			return nil, err
		}
		name, err := p.expect(lexer.TIdent)
		if err != nil {
			return nil, err
		}
		decl := &ast.VarDecl{Base: ast.At(pos), Name: name.Text}
		if p.at(lexer.TAssign) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			val, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			decl.Value = val
		}
		if _, err := p.expect(lexer.TSemicolon); err != nil {
			return nil, err
		}
		return decl, nil

	case lexer.TSleep:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TLParen); err != nil {
			return nil, err
		}
		dur, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TRParen); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TSemicolon); err != nil {
			return nil, err
		}
		return &ast.Sleep{Base: ast.At(pos), Duration: dur}, nil

	case lexer.TTrigger:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TSemicolon); err != nil {
			return nil, err
		}
		return &ast.Trigger{Base: ast.At(pos)}, nil

	case lexer.TDump:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TLParen); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TRParen); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TSemicolon); err != nil {
			return nil, err
		}
		return &ast.Dump{Base: ast.At(pos), Value: val}, nil

	case lexer.TLoop:
		if err := p.advance(); err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.Loop{Base: ast.At(pos), Body: body}, nil

	case lexer.TIf:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TLParen); err != nil {
			return nil, err
		}
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TRParen); err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.If{Base: ast.At(pos), Cond: cond, Body: body}, nil

	case lexer.TBreak:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TSemicolon); err != nil {
			return nil, err
		}
		return &ast.Break{Base: ast.At(pos)}, nil

	case lexer.TIdent:
		return p.parseIdentLedStmt()

	default:
		return nil, simerr.NewParseError(p.cur.Position, "unexpected token %s at start of statement", p.cur.Type)
	}
}

// parseIdentLedStmt disambiguates `Ident = expr;`, `Ident <- expr;`, and
// a bare call-expression statement, all of which start with an Ident.
func (p *Parser) parseIdentLedStmt() (ast.Stmt, error) {
	pos := p.cur.Position
	name, err := p.expect(lexer.TIdent)
	if err != nil {
		return nil, err
	}

	switch p.cur.Type {
	case lexer.TAssign:
		if err := p.advance(); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TSemicolon); err != nil {
			return nil, err
		}
		return &ast.Assignment{Base: ast.At(pos), Name: name.Text, Value: val}, nil

	case lexer.TArrow:
		if err := p.advance(); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TSemicolon); err != nil {
			return nil, err
		}
		return &ast.PinAssignment{Base: ast.At(pos), PinName: name.Text, Value: val}, nil

	case lexer.TLParen:
		call, err := p.finishCall(pos, name.Text)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TSemicolon); err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Base: ast.At(pos), Value: call}, nil

	default:
		return nil, simerr.NewParseError(p.cur.Position, "expected '=', '<-' or '(' after identifier %q, found %s", name.Text, p.cur.Type)
	}
}

func (p *Parser) finishCall(pos simerr.Position, name string) (*ast.Call, error) {
	if _, err := p.expect(lexer.TLParen); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.at(lexer.TRParen) {
		if len(args) > 0 {
			if _, err := p.expect(lexer.TComma); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if _, err := p.expect(lexer.TRParen); err != nil {
		return nil, err
	}
	return &ast.Call{Base: ast.At(pos), Name: name, Args: args}, nil
}

// Expression grammar, precedence-climbing from loosest to tightest:
// ||, &&, ==, + -, * /, unary !, atoms.

func (p *Parser) parseExpr() (ast.Expr, error) { return p.parseOr() }

func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.TOrOr) {
		pos := p.cur.Position
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Base: ast.At(pos), Op: "||", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.TAndAnd) {
		pos := p.cur.Position
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Base: ast.At(pos), Op: "&&", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.TEqEq) {
		pos := p.cur.Position
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Base: ast.At(pos), Op: "==", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.TPlus) || p.at(lexer.TMinus) {
		op := "+"
		if p.at(lexer.TMinus) {
			op = "-"
		}
		pos := p.cur.Position
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Base: ast.At(pos), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.TStar) || p.at(lexer.TSlash) {
		op := "*"
		if p.at(lexer.TSlash) {
			op = "/"
		}
		pos := p.cur.Position
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Base: ast.At(pos), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.at(lexer.TNot) {
		pos := p.cur.Position
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryNot{Base: ast.At(pos), Operand: operand}, nil
	}
	if p.at(lexer.TMinus) {
		// Unary minus, e.g. `a + -1`, desugared to `0 - operand` so no
		// separate negation node or opcode is needed.
		pos := p.cur.Position
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		zero := &ast.IntegerLiteral{Base: ast.At(pos), Value: 0}
		return &ast.BinOp{Base: ast.At(pos), Op: "-", Left: zero, Right: operand}, nil
	}
	return p.parseAtom()
}

func (p *Parser) parseAtom() (ast.Expr, error) {
	pos := p.cur.Position
	switch p.cur.Type {
	case lexer.TInteger:
		text := p.cur.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, convErr := strconv.ParseInt(text, 10, 64)
		if convErr != nil {
			return nil, simerr.NewParseError(pos, "malformed integer literal %q", text)
		}
		return &ast.IntegerLiteral{Base: ast.At(pos), Value: n}, nil

	case lexer.TLogic:
		text := p.cur.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		var v logic.Value
		switch text {
		case "H":
			v = logic.High
		case "L":
			v = logic.Low
		default:
			v = logic.Unknown
		}
		return &ast.LogicLiteral{Base: ast.At(pos), Value: v}, nil

	case lexer.TIdent:
		name := p.cur.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		switch p.cur.Type {
		case lexer.TDot:
			if err := p.advance(); err != nil {
				return nil, err
			}
			pin, err := p.expect(lexer.TIdent)
			if err != nil {
				return nil, err
			}
			return &ast.AccessorExpr{Base: ast.At(pos), InstanceName: name, PinName: pin.Text}, nil
		case lexer.TLParen:
			return p.finishCall(pos, name)
		default:
			return &ast.Ident{Base: ast.At(pos), Name: name}, nil
		}

	case lexer.TLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TRParen); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		return nil, simerr.NewParseError(pos, "expected an expression, found %s", p.cur.Type)
	}
}
