// Package parser builds an ast.Body from template source by recursive
// descent over lexer tokens, per the template/directive/block/expr
// grammar. A grammar failure is reported as a *ParserError; a lexical
// failure inside a directive is returned as the lexer's *lexer.Error.
// For either, the engine substitutes a fixed syntax-error sentinel
// rather than letting a malformed template abort rendering.
package parser

import (
	"fmt"

	"github.com/kasterix/dyntpl/ast"
	"github.com/kasterix/dyntpl/lexer"
)

// ParserError reports where and why parsing failed.
type ParserError struct {
	Message  string
	Position lexer.Position
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d", e.Message, e.Position.Line, e.Position.Column)
}

// Parser drives a Lexer through the template grammar.
type Parser struct {
	lex *lexer.Lexer
}

// New constructs a Parser over the given template source.
func New(src string) *Parser {
	return &Parser{lex: lexer.New(src)}
}

// Parse consumes the entire source and returns the root sibling list.
func (p *Parser) Parse() (ast.Body, error) {
	return p.parseTemplate(false)
}

func toPos(p lexer.Position) ast.Position {
	return ast.Position{Line: p.Line, Column: p.Column, Offset: p.Offset}
}

// parseTemplate implements `template := (html | directive)*`. When
// stopAtBrace is true it is parsing a body and returns as soon as it
// consumes that body's closing "}"; otherwise it runs to end of input.
func (p *Parser) parseTemplate(stopAtBrace bool) (ast.Body, error) {
	var body ast.Body
	for {
		text, reason, pos := p.lex.NextHTML(stopAtBrace)
		if text != "" {
			body = append(body, ast.NewHtmlText(toPos(pos), text))
		}
		switch reason {
		case lexer.StopEOF:
			return body, nil
		case lexer.StopBrace:
			p.lex.ConsumeOne() // the '}'
			return body, nil
		case lexer.StopAt:
			p.lex.ConsumeOne() // the '@'
			node, err := p.parseDirective()
			if err != nil {
				return nil, err
			}
			body = append(body, node)
		}
	}
}

// parseDirective implements `directive := "@" (block | exprAt)`.
func (p *Parser) parseDirective() (ast.Node, error) {
	tok, err := p.lex.NextToken()
	if err != nil {
		return nil, err
	}

	if tok.Type == lexer.TokLBrace {
		// exprAt := "{" expr "}"
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.TokRBrace); err != nil {
			return nil, err
		}
		return expr, nil
	}

	if tok.Type != lexer.TokIdent {
		return nil, &ParserError{Message: "expected a directive name after '@'", Position: tok.Position}
	}

	switch tok.Value {
	case "if":
		return p.parseIfBlock(tok.Position)
	case "unless":
		return p.parseUnlessBlock(tok.Position)
	case "for":
		return p.parseForBlock(tok.Position)
	default:
		return p.parseCallOrVarRef(tok)
	}
}

// parseCallOrVarRef implements `call := IDENT "(" ... ")" ("." memberTail)?`
// and `varRef := IDENT ("." memberTail)?`, dispatched on whether an
// opening "(" or "." follows the identifier. Any other next token is
// left unconsumed (restored), since a bare varRef does not itself
// terminate the surrounding html/directive stream.
func (p *Parser) parseCallOrVarRef(nameTok lexer.Token) (ast.Node, error) {
	snap := p.lex.Snapshot()
	peek, err := p.lex.NextToken()
	if err != nil {
		// Whatever follows isn't lexable as a directive token at all -
		// it's certainly not "(" or ".", so this is a bare varRef and
		// the trailing content is ordinary HTML text for the caller.
		p.lex.Restore(snap)
		return ast.NewVariable(toPos(nameTok.Position), nameTok.Value, nil), nil
	}

	if peek.Type == lexer.TokLParen {
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		member, err := p.tryParseMemberTail()
		if err != nil {
			return nil, err
		}
		return ast.NewHelper(toPos(nameTok.Position), nameTok.Value, args, member), nil
	}

	if peek.Type == lexer.TokDot {
		member, err := p.parseMemberTailBody()
		if err != nil {
			return nil, err
		}
		return ast.NewVariable(toPos(nameTok.Position), nameTok.Value, member), nil
	}

	p.lex.Restore(snap)
	return ast.NewVariable(toPos(nameTok.Position), nameTok.Value, nil), nil
}

func (p *Parser) parseArgList() ([]ast.Node, error) {
	var args []ast.Node
	tok, err := p.lex.NextToken()
	if err != nil {
		return nil, err
	}
	if tok.Type == lexer.TokRParen {
		return args, nil
	}
	for {
		// tok already holds the first token of the next expr.
		expr, err := p.parseExprFrom(tok)
		if err != nil {
			return nil, err
		}
		args = append(args, expr)

		tok, err = p.lex.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == lexer.TokRParen {
			return args, nil
		}
		if tok.Type != lexer.TokComma {
			return nil, &ParserError{Message: "expected ',' or ')' in argument list", Position: tok.Position}
		}
		tok, err = p.lex.NextToken()
		if err != nil {
			return nil, err
		}
	}
}

// tryParseMemberTail peeks for a leading "." and, if present, parses the
// rest of a dotted member chain.
func (p *Parser) tryParseMemberTail() (*ast.Variable, error) {
	snap := p.lex.Snapshot()
	tok, err := p.lex.NextToken()
	if err != nil {
		// Trailing content isn't a directive token at all, so it's
		// certainly not a ".": no member tail here.
		p.lex.Restore(snap)
		return nil, nil
	}
	if tok.Type != lexer.TokDot {
		p.lex.Restore(snap)
		return nil, nil
	}
	return p.parseMemberTailBody()
}

// parseMemberTailBody implements `memberTail := IDENT ("." IDENT)*`
// after the leading "." has already been consumed.
func (p *Parser) parseMemberTailBody() (*ast.Variable, error) {
	tok, err := p.lex.NextToken()
	if err != nil {
		return nil, err
	}
	if tok.Type != lexer.TokIdent {
		return nil, &ParserError{Message: "expected identifier in member access", Position: tok.Position}
	}
	rest, err := p.tryParseMemberTail()
	if err != nil {
		return nil, err
	}
	return ast.NewVariable(toPos(tok.Position), tok.Value, rest), nil
}

// parseIfBlock implements ifBlock after "if" has already been consumed.
func (p *Parser) parseIfBlock(pos lexer.Position) (ast.Node, error) {
	cond, err := p.parseParenExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBody()
	if err != nil {
		return nil, err
	}

	var elseIfs []ast.ElseIf
	var elseBranch ast.Body

	for p.lex.TryKeyword("else") {
		if p.lex.TryKeyword("if") {
			eCond, err := p.parseParenExpr()
			if err != nil {
				return nil, err
			}
			eBody, err := p.parseBody()
			if err != nil {
				return nil, err
			}
			elseIfs = append(elseIfs, ast.ElseIf{Cond: eCond, Body: eBody})
			continue
		}
		elseBranch, err = p.parseBody()
		if err != nil {
			return nil, err
		}
		break
	}

	return ast.NewIf(toPos(pos), cond, then, elseIfs, elseBranch), nil
}

// parseUnlessBlock implements unlessBlk after "unless" has been consumed.
func (p *Parser) parseUnlessBlock(pos lexer.Position) (ast.Node, error) {
	cond, err := p.parseParenExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBody()
	if err != nil {
		return nil, err
	}

	var elseBranch ast.Body
	if p.lex.TryKeyword("else") {
		elseBranch, err = p.parseBody()
		if err != nil {
			return nil, err
		}
	}

	return ast.NewUnless(toPos(pos), cond, then, elseBranch), nil
}

// parseForBlock implements `forBlock := "for" "(" IDENT "in" expr ")" body`.
func (p *Parser) parseForBlock(pos lexer.Position) (ast.Node, error) {
	if err := p.expect(lexer.TokLParen); err != nil {
		return nil, err
	}
	nameTok, err := p.lex.NextToken()
	if err != nil {
		return nil, err
	}
	if nameTok.Type != lexer.TokIdent {
		return nil, &ParserError{Message: "expected loop variable name", Position: nameTok.Position}
	}
	inTok, err := p.lex.NextToken()
	if err != nil {
		return nil, err
	}
	if inTok.Type != lexer.TokIdent || inTok.Value != "in" {
		return nil, &ParserError{Message: "expected 'in' in for loop", Position: inTok.Position}
	}
	listExpr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokRParen); err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return ast.NewForLoop(toPos(pos), nameTok.Value, listExpr, body), nil
}

// parseParenExpr implements "(" expr ")".
func (p *Parser) parseParenExpr() (ast.Node, error) {
	if err := p.expect(lexer.TokLParen); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokRParen); err != nil {
		return nil, err
	}
	return expr, nil
}

// parseBody implements `body := "{" template "}"`.
func (p *Parser) parseBody() (ast.Body, error) {
	if err := p.expect(lexer.TokLBrace); err != nil {
		return nil, err
	}
	return p.parseTemplate(true)
}

func (p *Parser) expect(tt lexer.TokenType) error {
	tok, err := p.lex.NextToken()
	if err != nil {
		return err
	}
	if tok.Type != tt {
		return &ParserError{Message: fmt.Sprintf("expected %v, got %v", tt, tok.Type), Position: tok.Position}
	}
	return nil
}

// parseExpr implements `expr := ternary`.
func (p *Parser) parseExpr() (ast.Node, error) {
	tok, err := p.lex.NextToken()
	if err != nil {
		return nil, err
	}
	return p.parseExprFrom(tok)
}

// parseExprFrom re-enters expression parsing when the first token of
// the expression has already been consumed by a caller's look-ahead.
func (p *Parser) parseExprFrom(first lexer.Token) (ast.Node, error) {
	return p.parseTernaryFrom(first)
}

// parseTernaryFrom implements `ternary := orExpr ( "?" expr ":" expr )?`.
func (p *Parser) parseTernaryFrom(first lexer.Token) (ast.Node, error) {
	cond, err := p.parseOrExprFrom(first)
	if err != nil {
		return nil, err
	}

	snap := p.lex.Snapshot()
	tok, err := p.lex.NextToken()
	if err != nil {
		return nil, err
	}
	if tok.Type != lexer.TokQuestion {
		p.lex.Restore(snap)
		return cond, nil
	}

	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokColon); err != nil {
		return nil, err
	}
	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewTernary(toPos(first.Position), cond, then, els), nil
}

// parseOrExprFrom implements the comparison level:
// `orExpr := cmpExpr ( ("=="|"!="|">="|">"|"<="|"<") cmpExpr )*`.
func (p *Parser) parseOrExprFrom(first lexer.Token) (ast.Node, error) {
	lhs, err := p.parseCmpExprFrom(first)
	if err != nil {
		return nil, err
	}
	for {
		snap := p.lex.Snapshot()
		tok, err := p.lex.NextToken()
		if err != nil {
			return nil, err
		}
		op, ok := comparisonOp(tok.Type)
		if !ok {
			p.lex.Restore(snap)
			return lhs, nil
		}
		rhsFirst, err := p.lex.NextToken()
		if err != nil {
			return nil, err
		}
		rhs, err := p.parseCmpExprFrom(rhsFirst)
		if err != nil {
			return nil, err
		}
		lhs = ast.NewBinaryExpr(toPos(tok.Position), op, lhs, rhs)
	}
}

func comparisonOp(tt lexer.TokenType) (ast.BinaryOp, bool) {
	switch tt {
	case lexer.TokEq:
		return ast.OpEq, true
	case lexer.TokNeq:
		return ast.OpNeq, true
	case lexer.TokGte:
		return ast.OpGte, true
	case lexer.TokGt:
		return ast.OpGt, true
	case lexer.TokLte:
		return ast.OpLte, true
	case lexer.TokLt:
		return ast.OpLt, true
	default:
		return 0, false
	}
}

// parseCmpExprFrom implements `cmpExpr := addExpr ( ("+"|"-") addExpr )*`.
func (p *Parser) parseCmpExprFrom(first lexer.Token) (ast.Node, error) {
	lhs, err := p.parseAddExprFrom(first)
	if err != nil {
		return nil, err
	}
	for {
		snap := p.lex.Snapshot()
		tok, err := p.lex.NextToken()
		if err != nil {
			return nil, err
		}
		var op ast.BinaryOp
		switch tok.Type {
		case lexer.TokPlus:
			op = ast.OpAdd
		case lexer.TokMinus:
			op = ast.OpSub
		default:
			p.lex.Restore(snap)
			return lhs, nil
		}
		rhsFirst, err := p.lex.NextToken()
		if err != nil {
			return nil, err
		}
		rhs, err := p.parseAddExprFrom(rhsFirst)
		if err != nil {
			return nil, err
		}
		lhs = ast.NewBinaryExpr(toPos(tok.Position), op, lhs, rhs)
	}
}

// parseAddExprFrom implements `addExpr := mulExpr ( ("*"|"/") mulExpr )*`.
func (p *Parser) parseAddExprFrom(first lexer.Token) (ast.Node, error) {
	lhs, err := p.parsePrimaryFrom(first)
	if err != nil {
		return nil, err
	}
	for {
		snap := p.lex.Snapshot()
		tok, err := p.lex.NextToken()
		if err != nil {
			return nil, err
		}
		var op ast.BinaryOp
		switch tok.Type {
		case lexer.TokStar:
			op = ast.OpMul
		case lexer.TokSlash:
			op = ast.OpDiv
		default:
			p.lex.Restore(snap)
			return lhs, nil
		}
		rhsFirst, err := p.lex.NextToken()
		if err != nil {
			return nil, err
		}
		rhs, err := p.parsePrimaryFrom(rhsFirst)
		if err != nil {
			return nil, err
		}
		lhs = ast.NewBinaryExpr(toPos(tok.Position), op, lhs, rhs)
	}
}

// parsePrimaryFrom implements
// `primary := INT | STRING | objectLit | call | varRef | "(" expr ")"`.
func (p *Parser) parsePrimaryFrom(tok lexer.Token) (ast.Node, error) {
	switch tok.Type {
	case lexer.TokInt:
		return ast.NewIntLiteral(toPos(tok.Position), tok.IntValue), nil
	case lexer.TokString:
		return ast.NewStringLiteral(toPos(tok.Position), tok.Value), nil
	case lexer.TokLBrace:
		return p.parseObjectLitBody(tok.Position)
	case lexer.TokLParen:
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.TokRParen); err != nil {
			return nil, err
		}
		return expr, nil
	case lexer.TokIdent:
		return p.parseCallOrVarRefExpr(tok)
	default:
		return nil, &ParserError{Message: "unexpected token in expression", Position: tok.Position}
	}
}

// parseCallOrVarRefExpr mirrors parseCallOrVarRef for expression context
// (an identifier nested inside a larger expr rather than directly after
// "@"): the grammar is identical, only the caller differs.
func (p *Parser) parseCallOrVarRefExpr(nameTok lexer.Token) (ast.Node, error) {
	return p.parseCallOrVarRef(nameTok)
}

// parseObjectLitBody implements
// `objectLit := "{" (objMember ("," objMember)*)? "}"` after the
// opening "{" has already been consumed.
func (p *Parser) parseObjectLitBody(pos lexer.Position) (ast.Node, error) {
	var members []ast.ObjectMember

	tok, err := p.lex.NextToken()
	if err != nil {
		return nil, err
	}
	if tok.Type == lexer.TokRBrace {
		return ast.NewObjectLit(toPos(pos), members), nil
	}

	for {
		if tok.Type != lexer.TokIdent {
			return nil, &ParserError{Message: "expected member name in object literal", Position: tok.Position}
		}
		name := tok.Value
		if err := p.expect(lexer.TokColon); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		members = append(members, ast.ObjectMember{Name: name, Value: value})

		tok, err = p.lex.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == lexer.TokRBrace {
			return ast.NewObjectLit(toPos(pos), members), nil
		}
		if tok.Type != lexer.TokComma {
			return nil, &ParserError{Message: "expected ',' or '}' in object literal", Position: tok.Position}
		}
		tok, err = p.lex.NextToken()
		if err != nil {
			return nil, err
		}
	}
}
