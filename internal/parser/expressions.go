package parser

import "github.com/Aelto/tw3-cahirc-language/internal/ast"

// parseExpression is the entry point into the precedence-climbing ladder,
// loosest-binding first: or, and, equality, comparison, bitwise or/xor/and,
// add/sub, mul/div/mod, unary not, postfix (dot-chains, casts, calls).
func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == TokOrOr {
		start := p.exprStart(left)
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		bin := &ast.Binary{Op: ast.OpOr, Left: left, Right: right}
		bin.Span = p.spanFrom(start)
		left = bin
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expression, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == TokAndAnd {
		start := p.exprStart(left)
		p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		bin := &ast.Binary{Op: ast.OpAnd, Left: left, Right: right}
		bin.Span = p.spanFrom(start)
		left = bin
	}
	return left, nil
}

func (p *Parser) parseEquality() (ast.Expression, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinOp
		switch p.cur().Kind {
		case TokEqEq:
			op = ast.OpEq
		case TokNotEq:
			op = ast.OpNeq
		default:
			return left, nil
		}
		start := p.exprStart(left)
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		bin := &ast.Binary{Op: op, Left: left, Right: right}
		bin.Span = p.spanFrom(start)
		left = bin
	}
}

func (p *Parser) parseComparison() (ast.Expression, error) {
	left, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinOp
		switch p.cur().Kind {
		case TokLAngle:
			op = ast.OpLt
		case TokLe:
			op = ast.OpLte
		case TokRAngle:
			op = ast.OpGt
		case TokGe:
			op = ast.OpGte
		default:
			return left, nil
		}
		start := p.exprStart(left)
		p.advance()
		right, err := p.parseBitOr()
		if err != nil {
			return nil, err
		}
		bin := &ast.Binary{Op: op, Left: left, Right: right}
		bin.Span = p.spanFrom(start)
		left = bin
	}
}

func (p *Parser) parseBitOr() (ast.Expression, error) {
	left, err := p.parseBitXor()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == TokPipe {
		start := p.exprStart(left)
		p.advance()
		right, err := p.parseBitXor()
		if err != nil {
			return nil, err
		}
		bin := &ast.Binary{Op: ast.OpBitOr, Left: left, Right: right}
		bin.Span = p.spanFrom(start)
		left = bin
	}
	return left, nil
}

func (p *Parser) parseBitXor() (ast.Expression, error) {
	left, err := p.parseBitAnd()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == TokCaret {
		start := p.exprStart(left)
		p.advance()
		right, err := p.parseBitAnd()
		if err != nil {
			return nil, err
		}
		bin := &ast.Binary{Op: ast.OpBitXor, Left: left, Right: right}
		bin.Span = p.spanFrom(start)
		left = bin
	}
	return left, nil
}

func (p *Parser) parseBitAnd() (ast.Expression, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == TokAmp {
		start := p.exprStart(left)
		p.advance()
		right, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		bin := &ast.Binary{Op: ast.OpBitAnd, Left: left, Right: right}
		bin.Span = p.spanFrom(start)
		left = bin
	}
	return left, nil
}

func (p *Parser) parseAdd() (ast.Expression, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinOp
		switch p.cur().Kind {
		case TokPlus:
			op = ast.OpAdd
		case TokMinus:
			op = ast.OpSub
		default:
			return left, nil
		}
		start := p.exprStart(left)
		p.advance()
		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		bin := &ast.Binary{Op: op, Left: left, Right: right}
		bin.Span = p.spanFrom(start)
		left = bin
	}
}

func (p *Parser) parseMul() (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinOp
		switch p.cur().Kind {
		case TokStar:
			op = ast.OpMul
		case TokSlash:
			op = ast.OpDiv
		case TokPercent:
			op = ast.OpMod
		default:
			return left, nil
		}
		start := p.exprStart(left)
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		bin := &ast.Binary{Op: op, Left: left, Right: right}
		bin.Span = p.spanFrom(start)
		left = bin
	}
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	if p.cur().Kind == TokBang {
		start := p.cur().Left
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		u := &ast.Unary{Operand: operand}
		u.Span = p.spanFrom(start)
		return u, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Kind {
		case TokDot:
			start := p.exprStart(expr)
			p.advance()
			memberStart := p.cur().Left
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			ident := &ast.Identifier{Name: name}
			ident.Span = p.spanFrom(memberStart)
			right, err := p.parsePostfixTail(ident)
			if err != nil {
				return nil, err
			}
			bin := &ast.Binary{Op: ast.OpDot, Left: expr, Right: right}
			bin.Span = p.spanFrom(start)
			expr = bin

		case TokAs:
			start := p.exprStart(expr)
			p.advance()
			target, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			c := &ast.Cast{Operand: expr, Target: target}
			c.Span = p.spanFrom(start)
			expr = c

		default:
			return expr, nil
		}
	}
}

// parsePostfixTail handles the member immediately following a '.': it may
// itself be a call (member.method(args)) rather than a bare identifier.
func (p *Parser) parsePostfixTail(name *ast.Identifier) (ast.Expression, error) {
	if p.cur().Kind == TokLParen {
		start := name.Pos()
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		call := &ast.Call{Callee: name.Name, Arguments: args}
		call.Span = p.sm.Span(p.sm.Left(start), p.prevRight)
		return call, nil
	}
	return name, nil
}

// exprStart recovers the byte offset an already-parsed expression began at,
// via the sourcemap span cached on its BaseNode.
func (p *Parser) exprStart(e ast.Node) int {
	return p.sm.Left(e.Pos())
}

func (p *Parser) parseArgList() ([]ast.Expression, error) {
	if _, err := p.expect(TokLParen, "("); err != nil {
		return nil, err
	}
	var args []ast.Expression
	if p.cur().Kind == TokRParen {
		p.advance()
		return args, nil
	}
	for {
		a, err := p.parseExpression()
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
	if _, err := p.expect(TokRParen, ")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	start := p.cur().Left

	if lambda, ok, err := p.tryParseLambda(); err != nil {
		return nil, err
	} else if ok {
		return lambda, nil
	}

	switch p.cur().Kind {
	case TokInt:
		t := p.advance()
		lit := &ast.Literal{Kind: ast.LitInt, Value: t.Text}
		lit.Span = p.spanFrom(start)
		return lit, nil

	case TokFloat:
		t := p.advance()
		lit := &ast.Literal{Kind: ast.LitFloat, Value: t.Text}
		lit.Span = p.spanFrom(start)
		return lit, nil

	case TokString:
		t := p.advance()
		lit := &ast.Literal{Kind: ast.LitString, Value: t.Text}
		lit.Span = p.spanFrom(start)
		return lit, nil

	case TokName:
		t := p.advance()
		lit := &ast.Literal{Kind: ast.LitName, Value: t.Text}
		lit.Span = p.spanFrom(start)
		return lit, nil

	case TokTrue:
		p.advance()
		lit := &ast.Literal{Kind: ast.LitName, Value: "true"}
		lit.Span = p.spanFrom(start)
		return lit, nil

	case TokFalse:
		p.advance()
		lit := &ast.Literal{Kind: ast.LitName, Value: "false"}
		lit.Span = p.spanFrom(start)
		return lit, nil

	case TokThis:
		p.advance()
		id := &ast.Identifier{Name: "this"}
		id.Span = p.spanFrom(start)
		return id, nil

	case TokParent:
		p.advance()
		id := &ast.Identifier{Name: "parent"}
		id.Span = p.spanFrom(start)
		return id, nil

	case TokLParen:
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen, ")"); err != nil {
			return nil, err
		}
		g := &ast.Group{Inner: inner}
		g.Span = p.spanFrom(start)
		return g, nil

	case TokLBracket:
		p.advance()
		var elems []ast.Expression
		if p.cur().Kind != TokRBracket {
			for {
				e, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				elems = append(elems, e)
				if p.cur().Kind == TokComma {
					p.advance()
					continue
				}
				break
			}
		}
		if _, err := p.expect(TokRBracket, "]"); err != nil {
			return nil, err
		}
		ll := &ast.ListLit{Elements: elems}
		ll.Span = p.spanFrom(start)
		return ll, nil

	case TokNew:
		p.advance()
		className, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		var typeArgs []ast.TypeExpr
		if p.cur().Kind == TokLAngle {
			args, ok, err := p.tryParseTypeArgs()
			if err != nil {
				return nil, err
			}
			if ok {
				typeArgs = args
			}
		}
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		inst := &ast.Instantiation{ClassName: className, TypeArgs: typeArgs, Arguments: args}
		inst.Span = p.spanFrom(start)
		return inst, nil

	case TokIdent:
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		var typeArgs []ast.TypeExpr
		if p.cur().Kind == TokLAngle {
			args, ok, err := p.tryParseTypeArgs()
			if err != nil {
				return nil, err
			}
			if ok {
				typeArgs = args
			}
		}
		if p.cur().Kind == TokLParen {
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			call := &ast.Call{Callee: name, TypeArgs: typeArgs, Arguments: args}
			call.Span = p.spanFrom(start)
			return call, nil
		}
		id := &ast.Identifier{Name: name}
		id.Span = p.spanFrom(start)
		return id, nil

	default:
		return nil, p.errHere([]string{"expression"})
	}
}

// tryParseTypeArgs attempts to parse a '<' Type (, Type)* '>' generic
// argument list immediately followed by '(', the signal that '<' opened a
// type-argument list rather than meaning less-than. On any failure, or if
// the closing '>' isn't followed by '(', it restores the parser position
// and reports no match so the caller falls back to treating '<' as the
// comparison operator.
func (p *Parser) tryParseTypeArgs() ([]ast.TypeExpr, bool, error) {
	saved := p.pos
	p.advance() // '<'
	var args []ast.TypeExpr
	for {
		a, err := p.parseTypeExpr()
		if err != nil {
			p.pos = saved
			return nil, false, nil
		}
		args = append(args, a)
		if p.cur().Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	if p.cur().Kind != TokRAngle {
		p.pos = saved
		return nil, false, nil
	}
	p.advance() // '>'
	if p.cur().Kind != TokLParen {
		p.pos = saved
		return nil, false, nil
	}
	return args, true, nil
}

// tryParseLambda attempts the lambda-literal production '(' params ')' '->'
// body. It only commits once it has seen the '->' token; any earlier
// mismatch restores the parser position so the caller falls back to an
// ordinary parenthesized group expression.
func (p *Parser) tryParseLambda() (ast.Expression, bool, error) {
	if p.cur().Kind != TokLParen {
		return nil, false, nil
	}
	saved := p.pos
	start := p.cur().Left
	p.advance() // '('

	var params []*ast.Parameter
	if p.cur().Kind != TokRParen {
		for {
			if p.cur().Kind != TokIdent {
				p.pos = saved
				return nil, false, nil
			}
			pstart := p.cur().Left
			pname := p.advance().Text
			if p.cur().Kind != TokColon {
				p.pos = saved
				return nil, false, nil
			}
			p.advance()
			typ, err := p.parseTypeExpr()
			if err != nil {
				p.pos = saved
				return nil, false, nil
			}
			param := &ast.Parameter{Name: pname, Type: typ}
			param.Span = p.spanFrom(pstart)
			params = append(params, param)
			if p.cur().Kind == TokComma {
				p.advance()
				continue
			}
			break
		}
	}
	if p.cur().Kind != TokRParen {
		p.pos = saved
		return nil, false, nil
	}
	p.advance() // ')'

	if p.cur().Kind != TokArrow {
		p.pos = saved
		return nil, false, nil
	}
	p.advance() // '->'

	var ret ast.TypeExpr
	if p.cur().Kind == TokColon {
		p.advance()
		r, err := p.parseTypeExpr()
		if err != nil {
			return nil, false, err
		}
		ret = r
	}

	var body []ast.Statement
	if p.cur().Kind == TokLBrace {
		p.advance()
		b, err := p.parseStatements()
		if err != nil {
			return nil, false, err
		}
		body = b
		if _, err := p.expect(TokRBrace, "}"); err != nil {
			return nil, false, err
		}
	} else {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, false, err
		}
		ret := &ast.Return{Value: expr}
		ret.Span = expr.Pos()
		body = []ast.Statement{ret}
	}

	lambda := &ast.Lambda{Parameters: params, Return: ret, Body: body}
	lambda.Span = p.spanFrom(start)
	return lambda, true, nil
}
