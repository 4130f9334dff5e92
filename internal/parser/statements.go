package parser

import "github.com/Aelto/tw3-cahirc-language/internal/ast"

func (p *Parser) parseStatements() ([]ast.Statement, error) {
	var stmts []ast.Statement
	for p.cur().Kind != TokRBrace && p.cur().Kind != TokEOF {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.cur().Kind {
	case TokVar:
		return p.parseVarDecl()
	case TokReturn:
		return p.parseReturn()
	case TokIf:
		return p.parseIf()
	case TokWhile:
		return p.parseWhile()
	case TokFor:
		return p.parseForIn()
	case TokSwitch:
		return p.parseSwitch()
	default:
		return p.parseExprOrAssign()
	}
}

func (p *Parser) parseVarDecl() (*ast.VarDecl, error) {
	start := p.cur().Left
	p.advance() // 'var'
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

	var typ ast.TypeExpr
	var infer ast.Expression
	var err error

	if p.cur().Kind == TokColon {
		p.advance()
		typ, err = p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		if p.cur().Kind == TokEq {
			p.advance()
			infer, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
		}
	} else if p.cur().Kind == TokEq {
		p.advance()
		infer, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	} else {
		return nil, p.errHere([]string{":", "="})
	}

	if _, err := p.expect(TokSemicolon, ";"); err != nil {
		return nil, err
	}
	decl := &ast.VarDecl{Names: names, Type: typ, Infer: infer}
	decl.Span = p.spanFrom(start)
	return decl, nil
}

func (p *Parser) parseReturn() (*ast.Return, error) {
	start := p.cur().Left
	p.advance() // 'return'
	var value ast.Expression
	if p.cur().Kind != TokSemicolon {
		v, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		value = v
	}
	if _, err := p.expect(TokSemicolon, ";"); err != nil {
		return nil, err
	}
	ret := &ast.Return{Value: value}
	ret.Span = p.spanFrom(start)
	return ret, nil
}

func (p *Parser) parseIf() (*ast.If, error) {
	start := p.cur().Left
	p.advance() // 'if'
	if _, err := p.expect(TokLParen, "("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRParen, ")"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace, "{"); err != nil {
		return nil, err
	}
	then, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRBrace, "}"); err != nil {
		return nil, err
	}
	var els []ast.Statement
	if p.cur().Kind == TokElse {
		p.advance()
		if _, err := p.expect(TokLBrace, "{"); err != nil {
			return nil, err
		}
		els, err = p.parseStatements()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRBrace, "}"); err != nil {
			return nil, err
		}
	}
	ifStmt := &ast.If{Cond: cond, Then: then, Else: els}
	ifStmt.Span = p.spanFrom(start)
	return ifStmt, nil
}

func (p *Parser) parseWhile() (*ast.While, error) {
	start := p.cur().Left
	p.advance() // 'while'
	if _, err := p.expect(TokLParen, "("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRParen, ")"); err != nil {
		return nil, err
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
	w := &ast.While{Cond: cond, Body: body}
	w.Span = p.spanFrom(start)
	return w, nil
}

func (p *Parser) parseForIn() (*ast.ForIn, error) {
	start := p.cur().Left
	p.advance() // 'for'
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
	if _, err := p.expect(TokIn, "in"); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
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
	forIn := &ast.ForIn{VarName: name, VarType: typ, Iterable: iterable, Body: body}
	forIn.Span = p.spanFrom(start)
	return forIn, nil
}

func (p *Parser) parseSwitch() (*ast.Switch, error) {
	start := p.cur().Left
	p.advance() // 'switch'
	if _, err := p.expect(TokLParen, "("); err != nil {
		return nil, err
	}
	subject, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRParen, ")"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace, "{"); err != nil {
		return nil, err
	}

	var cases []ast.SwitchCase
	var def []ast.Statement
	for p.cur().Kind != TokRBrace && p.cur().Kind != TokEOF {
		switch p.cur().Kind {
		case TokCase:
			cstart := p.cur().Left
			p.advance()
			var values []ast.Expression
			v, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
			for p.cur().Kind == TokComma {
				p.advance()
				v2, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				values = append(values, v2)
			}
			if _, err := p.expect(TokColon, ":"); err != nil {
				return nil, err
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
			cases = append(cases, ast.SwitchCase{BaseNode: ast.BaseNode{Span: p.spanFrom(cstart)}, Values: values, Body: body})

		case TokDefault:
			p.advance()
			if _, err := p.expect(TokColon, ":"); err != nil {
				return nil, err
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
			def = body

		default:
			return nil, p.errHere([]string{"case", "default"})
		}
	}
	if _, err := p.expect(TokRBrace, "}"); err != nil {
		return nil, err
	}
	sw := &ast.Switch{Subject: subject, Cases: cases, Default: def}
	sw.Span = p.spanFrom(start)
	return sw, nil
}

func (p *Parser) parseExprOrAssign() (ast.Statement, error) {
	start := p.cur().Left
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind == TokEq {
		p.advance()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokSemicolon, ";"); err != nil {
			return nil, err
		}
		assign := &ast.Assign{Target: expr, Value: value}
		assign.Span = p.spanFrom(start)
		return assign, nil
	}
	if _, err := p.expect(TokSemicolon, ";"); err != nil {
		return nil, err
	}
	exprStmt := &ast.ExprStatement{Expr: expr}
	exprStmt.Span = p.spanFrom(start)
	return exprStmt, nil
}
