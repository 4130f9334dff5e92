package parser

import (
	"github.com/Aelto/tw3-cahirc-language/internal/ast"
	"github.com/Aelto/tw3-cahirc-language/internal/sourcemap"
)

// Parser consumes a flat token stream and builds an ast.Program, assigning
// a Span to every node through sm (spec.md §4.3).
type Parser struct {
	toks      []Token
	pos       int
	prevRight int
	sm        *sourcemap.SpanMaker
}

// Parse tokenizes and parses one preprocessed file's text, registering it
// with spans under path.
func Parse(spans *sourcemap.Store, path, src string) (*ast.Program, error) {
	sm := spans.AddSource(path, src)
	lx := newLexer(src)
	var toks []Token
	for {
		t := lx.Next()
		toks = append(toks, t)
		if t.Kind == TokEOF {
			break
		}
	}
	p := &Parser{toks: toks, sm: sm}
	return p.parseProgram()
}

func (p *Parser) cur() Token { return p.toks[p.pos] }

func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	p.prevRight = t.Right
	return t
}

func (p *Parser) expect(kind Kind, desc string) (Token, error) {
	if p.cur().Kind != kind {
		return Token{}, p.errHere([]string{desc})
	}
	return p.advance(), nil
}

func (p *Parser) expectIdent() (string, error) {
	t, err := p.expect(TokIdent, "identifier")
	if err != nil {
		return "", err
	}
	return t.Text, nil
}

func (p *Parser) errHere(expected []string) error {
	c := p.cur()
	if c.Kind == TokEOF {
		return &Error{Kind: UnrecognizedEOF, Left: c.Left, Expected: expected}
	}
	return &Error{Kind: UnrecognizedToken, Left: c.Left, Right: c.Right, Expected: expected, Found: c.Text}
}

func (p *Parser) spanFrom(startLeft int) sourcemap.Span {
	return p.sm.Span(startLeft, p.prevRight)
}

// parseProgram parses every top-level item until EOF.
func (p *Parser) parseProgram() (*ast.Program, error) {
	var stmts []ast.TopLevel
	for p.cur().Kind != TokEOF {
		item, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, item)
	}
	return &ast.Program{Statements: stmts}, nil
}

func (p *Parser) parseTopLevel() (ast.TopLevel, error) {
	switch p.cur().Kind {
	case TokAt:
		return p.parseAnnotation()
	case TokClass, TokStruct:
		return p.parseClassDecl()
	case TokState:
		return p.parseStateDecl()
	case TokEnum:
		return p.parseEnumDecl()
	case TokFunction, TokTimer, TokEvent, TokEntry, TokLatent, TokExec:
		return p.parseFunctionDecl(ast.AccessDefault)
	default:
		start := p.cur().Left
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokSemicolon, ";"); err != nil {
			return nil, err
		}
		exprStmt := &ast.ExprStatement{Expr: expr}
		exprStmt.Span = p.spanFrom(start)
		return exprStmt, nil
	}
}

func (p *Parser) parseAnnotation() (*ast.Annotation, error) {
	start := p.cur().Left
	p.advance() // '@'
	var kind ast.AnnotationKind
	switch p.cur().Kind {
	case TokReplaceMethod:
		kind = ast.AnnotationReplaceMethod
	case TokWrapMethod:
		kind = ast.AnnotationWrapMethod
	case TokAddMethod:
		kind = ast.AnnotationAddMethod
	case TokAddField:
		kind = ast.AnnotationAddField
	default:
		return nil, p.errHere([]string{"replaceMethod", "wrapMethod", "addMethod", "addField"})
	}
	p.advance()
	if _, err := p.expect(TokLParen, "("); err != nil {
		return nil, err
	}
	target, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRParen, ")"); err != nil {
		return nil, err
	}
	inner, err := p.parseTopLevel()
	if err != nil {
		return nil, err
	}
	return &ast.Annotation{BaseNode: ast.BaseNode{Span: p.spanFrom(start)}, Kind: kind, Target: target, Inner: inner}, nil
}

func (p *Parser) parseFuncKindPrefix() (ast.FuncKind, error) {
	var kind ast.FuncKind
	switch p.cur().Kind {
	case TokTimer:
		kind = ast.FuncTimer
	case TokEvent:
		kind = ast.FuncEvent
	case TokEntry:
		kind = ast.FuncEntry
	case TokLatent:
		kind = ast.FuncLatent
	case TokExec:
		kind = ast.FuncExec
	case TokFunction:
		p.advance()
		return ast.FuncPlain, nil
	default:
		return 0, p.errHere([]string{"function"})
	}
	p.advance()
	if _, err := p.expect(TokFunction, "function"); err != nil {
		return 0, err
	}
	return kind, nil
}

func (p *Parser) parseOptionalGenerics() (*ast.GenericParams, error) {
	if p.cur().Kind != TokLAngle {
		return nil, nil
	}
	p.advance()
	var names []string
	for {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if p.cur().Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokRAngle, ">"); err != nil {
		return nil, err
	}
	return &ast.GenericParams{Names: names}, nil
}

func (p *Parser) parseFunctionDecl(access ast.AccessLevel) (*ast.FunctionDecl, error) {
	start := p.cur().Left
	kind, err := p.parseFuncKindPrefix()
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	generics, err := p.parseOptionalGenerics()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLParen, "("); err != nil {
		return nil, err
	}
	params, err := p.parseParameterList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRParen, ")"); err != nil {
		return nil, err
	}
	var ret ast.TypeExpr
	if p.cur().Kind == TokColon {
		p.advance()
		ret, err = p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokLBrace, "{"); err != nil {
		return nil, err
	}
	body, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRBrace, "}"); err != nil {
		return nil, err
	}
	return &ast.FunctionDecl{
		BaseNode:   ast.BaseNode{Span: p.spanFrom(start)},
		Kind:       kind,
		Name:       name,
		Generics:   generics,
		Parameters: params,
		Return:     ret,
		Body:       body,
		Access:     access,
	}, nil
}

func (p *Parser) parseParameterList() ([]*ast.Parameter, error) {
	if p.cur().Kind == TokRParen {
		return nil, nil
	}
	var params []*ast.Parameter
	for {
		start := p.cur().Left
		kind := ast.ParamCopy
		switch p.cur().Kind {
		case TokOptional:
			kind = ast.ParamOptional
			p.advance()
		case TokOut:
			kind = ast.ParamReference
			p.advance()
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokColon, ":"); err != nil {
			return nil, err
		}
		typ, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.Parameter{BaseNode: ast.BaseNode{Span: p.spanFrom(start)}, Kind: kind, Name: name, Type: typ})
		if p.cur().Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	return params, nil
}

func (p *Parser) parseTypeExpr() (ast.TypeExpr, error) {
	if p.cur().Kind == TokLParen {
		p.advance()
		params, err := p.parseParameterList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen, ")"); err != nil {
			return nil, err
		}
		if _, err := p.expect(TokArrow, "->"); err != nil {
			return nil, err
		}
		ret, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		return &ast.LambdaType{Parameters: params, Return: ret}, nil
	}

	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var args []ast.TypeExpr
	if p.cur().Kind == TokLAngle {
		p.advance()
		for {
			a, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.cur().Kind == TokComma {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(TokRAngle, ">"); err != nil {
			return nil, err
		}
	}
	return &ast.NamedType{Name: name, Args: args}, nil
}

func (p *Parser) parseClassDecl() (*ast.ClassDecl, error) {
	start := p.cur().Left
	var kind ast.CompoundKind
	if p.cur().Kind == TokStruct {
		kind = ast.CompoundStruct
	} else {
		kind = ast.CompoundClass
	}
	p.advance()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	generics, err := p.parseOptionalGenerics()
	if err != nil {
		return nil, err
	}
	extends := ""
	if p.cur().Kind == TokExtends {
		p.advance()
		extends, err = p.expectIdent()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokLBrace, "{"); err != nil {
		return nil, err
	}
	methods, props, err := p.parseClassBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRBrace, "}"); err != nil {
		return nil, err
	}
	return &ast.ClassDecl{
		BaseNode:   ast.BaseNode{Span: p.spanFrom(start)},
		Kind:       kind,
		Name:       name,
		Generics:   generics,
		Extends:    extends,
		Methods:    methods,
		Properties: props,
	}, nil
}

func (p *Parser) parseStateDecl() (*ast.ClassDecl, error) {
	start := p.cur().Left
	p.advance() // 'state'
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokIn, "in"); err != nil {
		return nil, err
	}
	parentClass, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace, "{"); err != nil {
		return nil, err
	}
	methods, props, err := p.parseClassBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRBrace, "}"); err != nil {
		return nil, err
	}
	return &ast.ClassDecl{
		BaseNode:   ast.BaseNode{Span: p.spanFrom(start)},
		Kind:       ast.CompoundState,
		Name:       name,
		StateOf:    parentClass,
		Methods:    methods,
		Properties: props,
	}, nil
}

func isFuncKindStart(k Kind) bool {
	switch k {
	case TokFunction, TokTimer, TokEvent, TokEntry, TokLatent, TokExec:
		return true
	default:
		return false
	}
}

func (p *Parser) parseClassBody() ([]*ast.FunctionDecl, []*ast.Property, error) {
	var methods []*ast.FunctionDecl
	var props []*ast.Property

	for p.cur().Kind != TokRBrace && p.cur().Kind != TokEOF {
		access := ast.AccessDefault
		switch p.cur().Kind {
		case TokPublic:
			access = ast.AccessPublic
			p.advance()
		case TokPrivate:
			access = ast.AccessPrivate
			p.advance()
		case TokProtected:
			access = ast.AccessProtected
			p.advance()
		}

		editable, saved := false, false
		for {
			if p.cur().Kind == TokEditable {
				editable = true
				p.advance()
				continue
			}
			if p.cur().Kind == TokSaved {
				saved = true
				p.advance()
				continue
			}
			break
		}

		if isFuncKindStart(p.cur().Kind) {
			fn, err := p.parseFunctionDecl(access)
			if err != nil {
				return nil, nil, err
			}
			methods = append(methods, fn)
			continue
		}

		if p.cur().Kind == TokVar {
			start := p.cur().Left
			p.advance()
			name, err := p.expectIdent()
			if err != nil {
				return nil, nil, err
			}
			if _, err := p.expect(TokColon, ":"); err != nil {
				return nil, nil, err
			}
			typ, err := p.parseTypeExpr()
			if err != nil {
				return nil, nil, err
			}
			var def ast.Expression
			if p.cur().Kind == TokEq {
				p.advance()
				def, err = p.parseExpression()
				if err != nil {
					return nil, nil, err
				}
			}
			if _, err := p.expect(TokSemicolon, ";"); err != nil {
				return nil, nil, err
			}
			props = append(props, &ast.Property{
				BaseNode: ast.BaseNode{Span: p.spanFrom(start)},
				Name:     name,
				Type:     typ,
				Editable: editable,
				Saved:    saved,
				Access:   access,
				Default:  def,
			})
			continue
		}

		return nil, nil, p.errHere([]string{"method or property declaration"})
	}
	return methods, props, nil
}

func (p *Parser) parseEnumDecl() (*ast.EnumDecl, error) {
	start := p.cur().Left
	p.advance() // 'enum'
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace, "{"); err != nil {
		return nil, err
	}
	var members []ast.EnumMember
	for p.cur().Kind != TokRBrace && p.cur().Kind != TokEOF {
		mstart := p.cur().Left
		mname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		var value ast.Expression
		if p.cur().Kind == TokEq {
			p.advance()
			value, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
		}
		members = append(members, ast.EnumMember{BaseNode: ast.BaseNode{Span: p.spanFrom(mstart)}, Name: mname, Value: value})
		if p.cur().Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokRBrace, "}"); err != nil {
		return nil, err
	}
	return &ast.EnumDecl{BaseNode: ast.BaseNode{Span: p.spanFrom(start)}, Name: name, Members: members}, nil
}
