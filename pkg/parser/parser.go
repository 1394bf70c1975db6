package parser

import (
	"fmt"
	"strconv"

	"blockpad/pkg/errors"
	"blockpad/pkg/lexer"
	"blockpad/pkg/source"
)

// Parser takes a lexer and builds an AST. Parsing is best-effort: statements
// that fail to parse are captured as BadStatement nodes and reported as
// syntax errors, but the parser keeps going so the caller always receives a
// renderable partial tree.
type Parser struct {
	l      *lexer.Lexer
	source *source.SourceFile
	arena  *ASTArena
	errors []errors.BlockpadError

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

// Parsing functions types for Pratt parser
type (
	prefixParseFn func() Expression
	infixParseFn  func(Expression) Expression // Arg is the left side expression
)

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	ASSIGNMENT  // =
	LOGICAL_OR  // ||
	LOGICAL_AND // &&
	EQUALS      // ==, !=, ===, !==
	LESSGREATER // >, <, >=, <=
	SUM         // + or -
	PRODUCT     // * or /
	PREFIX      // -X or !X
	CALL        // myFunction(X)
	MEMBER      // object.property
)

// Precedences map for operator tokens
var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:        ASSIGNMENT,
	lexer.LOGICAL_OR:    LOGICAL_OR,
	lexer.LOGICAL_AND:   LOGICAL_AND,
	lexer.EQ:            EQUALS,
	lexer.NOT_EQ:        EQUALS,
	lexer.STRICT_EQ:     EQUALS,
	lexer.STRICT_NOT_EQ: EQUALS,
	lexer.LT:            LESSGREATER,
	lexer.GT:            LESSGREATER,
	lexer.LE:            LESSGREATER,
	lexer.GE:            LESSGREATER,
	lexer.PLUS:          SUM,
	lexer.MINUS:         SUM,
	lexer.SLASH:         PRODUCT,
	lexer.ASTERISK:      PRODUCT,
	lexer.LPAREN:        CALL,
	lexer.DOT:           MEMBER,
}

// NewParser creates a parser over src with a fresh arena.
func NewParser(src *source.SourceFile) *Parser {
	return NewParserWithArena(src, NewASTArena())
}

// NewParserWithArena creates a parser that allocates from an existing arena.
// Fragment reparses use this so replacement nodes share the document's
// identity space.
func NewParserWithArena(src *source.SourceFile, arena *ASTArena) *Parser {
	p := &Parser{
		l:      lexer.NewLexer(src.Content),
		source: src,
		arena:  arena,
	}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.NULL, p.parseNullLiteral)
	p.registerPrefix(lexer.UNDEFINED, p.parseUndefinedLiteral)
	p.registerPrefix(lexer.FUNCTION, p.parseFunctionLiteral)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpression)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedOrArrowFunction)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(lexer.LBRACE, p.parseObjectLiteral)
	p.registerPrefix(lexer.LT, p.parseMarkupExpression)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	p.registerInfix(lexer.PLUS, p.parseInfixExpression)
	p.registerInfix(lexer.MINUS, p.parseInfixExpression)
	p.registerInfix(lexer.SLASH, p.parseInfixExpression)
	p.registerInfix(lexer.ASTERISK, p.parseInfixExpression)
	p.registerInfix(lexer.EQ, p.parseInfixExpression)
	p.registerInfix(lexer.NOT_EQ, p.parseInfixExpression)
	p.registerInfix(lexer.STRICT_EQ, p.parseInfixExpression)
	p.registerInfix(lexer.STRICT_NOT_EQ, p.parseInfixExpression)
	p.registerInfix(lexer.LT, p.parseInfixExpression)
	p.registerInfix(lexer.GT, p.parseInfixExpression)
	p.registerInfix(lexer.LE, p.parseInfixExpression)
	p.registerInfix(lexer.GE, p.parseInfixExpression)
	p.registerInfix(lexer.LOGICAL_AND, p.parseInfixExpression)
	p.registerInfix(lexer.LOGICAL_OR, p.parseInfixExpression)
	p.registerInfix(lexer.ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.DOT, p.parseMemberExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// Arena returns the arena this parser allocates nodes from.
func (p *Parser) Arena() *ASTArena {
	return p.arena
}

// Errors returns the syntax errors collected so far.
func (p *Parser) Errors() []errors.BlockpadError {
	return p.errors
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) peekError(t lexer.TokenType) {
	msg := fmt.Sprintf("expected next token to be %s, got %s instead",
		t, p.peekToken.Type)
	p.addError(p.peekToken, msg)
}

func (p *Parser) noPrefixParseFnError(t lexer.TokenType) {
	msg := fmt.Sprintf("no prefix parse function for %s found", t)
	p.addError(p.curToken, msg)
}

func (p *Parser) addError(tok lexer.Token, msg string) {
	// Prevent memory exhaustion from infinite error generation
	const maxErrors = 1000
	if len(p.errors) >= maxErrors {
		return
	}

	syntaxErr := &errors.SyntaxError{
		Position: errors.Position{
			Line:     tok.Line,
			Column:   tok.Column,
			StartPos: tok.StartPos,
			EndPos:   tok.EndPos,
			Source:   p.source,
		},
		Msg: msg,
	}
	p.errors = append(p.errors, syntaxErr)
}

// attach records child's placement; the struct field itself is assigned by
// the caller.
func (p *Parser) attach(child Node, parent Node, slot Slot) {
	Attach(child, parent, slot)
}

// --- Program / statements ---

// ParseProgram parses the whole document. It always returns a Program; when
// errors are present the Program is the best-effort partial tree.
func (p *Parser) ParseProgram() (*Program, []errors.BlockpadError) {
	program := p.arena.NewProgram()
	program.Statements = []Statement{}

	for p.curToken.Type != lexer.EOF {
		stmt := p.parseStatementOrRecover()
		if stmt != nil {
			idx := len(program.Statements)
			program.Statements = append(program.Statements, stmt)
			p.attach(stmt, program, IndexedSlot(SlotStatements, idx))
		}
		if p.curToken.Type != lexer.EOF {
			p.nextToken()
		} else {
			break
		}
	}

	return program, p.errors
}

// parseStatementOrRecover wraps parseStatement with error recovery: a failed
// statement becomes a BadStatement covering the skipped region.
func (p *Parser) parseStatementOrRecover() Statement {
	startTok := p.curToken
	stmt := p.parseStatement()
	if stmt != nil {
		return stmt
	}
	return p.recoverBadStatement(startTok)
}

// recoverBadStatement skips forward to the next statement boundary and
// captures the raw text of the skipped region.
func (p *Parser) recoverBadStatement(startTok lexer.Token) *BadStatement {
	end := startTok.EndPos
	for !p.curTokenIs(lexer.SEMICOLON) && !p.curTokenIs(lexer.EOF) && !p.curTokenIs(lexer.RBRACE) {
		if p.curToken.EndPos > end {
			end = p.curToken.EndPos
		}
		p.nextToken()
	}
	if p.curTokenIs(lexer.SEMICOLON) && p.curToken.EndPos > end {
		end = p.curToken.EndPos
	}
	if end > len(p.source.Content) {
		end = len(p.source.Content)
	}
	start := startTok.StartPos
	if start > end {
		start = end
	}
	bad := p.arena.NewBadStatement()
	bad.Token = startTok
	bad.Raw = p.source.Content[start:end]
	return bad
}

func (p *Parser) parseStatement() Statement {
	switch p.curToken.Type {
	case lexer.LET, lexer.CONST, lexer.VAR:
		return p.parseVarStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.LBRACE:
		return p.parseBlockStatement()
	case lexer.FUNCTION:
		return p.parseFunctionDeclarationStatement()
	case lexer.SEMICOLON:
		// Empty statement; skip without emitting a node.
		return nil
	default:
		return p.parseExpressionStatement()
	}
}

// parseVarStatement parses `let|const|var <name> = <value>;`.
func (p *Parser) parseVarStatement() Statement {
	stmt := p.arena.NewVarStatement()
	stmt.Token = p.curToken

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}

	name := p.arena.NewIdentifier()
	name.Token = p.curToken
	name.Value = p.curToken.Literal
	stmt.Name = name
	p.attach(name, stmt, NamedSlot(SlotName))

	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken() // consume '='
		p.nextToken() // move to the value expression
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		stmt.Value = value
		p.attach(value, stmt, NamedSlot(SlotValue))
	}

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseReturnStatement() Statement {
	stmt := p.arena.NewReturnStatement()
	stmt.Token = p.curToken

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		return stmt
	}
	if p.peekTokenIs(lexer.RBRACE) || p.peekTokenIs(lexer.EOF) {
		return stmt
	}

	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	stmt.ReturnValue = value
	p.attach(value, stmt, NamedSlot(SlotReturnValue))

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

// parseIfStatement parses `if (<cond>) { } [else if ... | else { }]`.
// Chained else-if nests the next IfStatement directly in Alternative.
func (p *Parser) parseIfStatement() Statement {
	stmt := p.arena.NewIfStatement()
	stmt.Token = p.curToken

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if cond == nil {
		return nil
	}
	stmt.Condition = cond
	p.attach(cond, stmt, NamedSlot(SlotCondition))

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	consequence := p.parseBlockStatement()
	block, ok := consequence.(*BlockStatement)
	if !ok {
		return nil
	}
	stmt.Consequence = block
	p.attach(block, stmt, NamedSlot(SlotConsequence))

	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken() // consume 'else'
		if p.peekTokenIs(lexer.IF) {
			p.nextToken()
			alt := p.parseIfStatement()
			if alt == nil {
				return nil
			}
			stmt.Alternative = alt
			p.attach(alt, stmt, NamedSlot(SlotAlternative))
		} else if p.expectPeek(lexer.LBRACE) {
			alt := p.parseBlockStatement()
			altBlock, ok := alt.(*BlockStatement)
			if !ok {
				return nil
			}
			stmt.Alternative = altBlock
			p.attach(altBlock, stmt, NamedSlot(SlotAlternative))
		} else {
			return nil
		}
	}
	return stmt
}

// parseBlockStatement parses `{ <statements> }`; curToken must be '{'.
func (p *Parser) parseBlockStatement() Statement {
	block := p.arena.NewBlockStatement()
	block.Token = p.curToken
	block.Statements = []Statement{}

	p.nextToken()
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatementOrRecover()
		if stmt != nil {
			idx := len(block.Statements)
			block.Statements = append(block.Statements, stmt)
			p.attach(stmt, block, IndexedSlot(SlotStatements, idx))
		}
		// Recovery stops on '}' without consuming it. Advancing past it here
		// would swallow the closing brace and pull every statement after the
		// block inside it.
		if _, isBad := stmt.(*BadStatement); isBad && p.curTokenIs(lexer.RBRACE) {
			break
		}
		p.nextToken()
	}
	if p.curTokenIs(lexer.EOF) {
		p.addError(p.curToken, "expected '}' to close block")
	}
	return block
}

// parseFunctionDeclarationStatement wraps a named function literal in an
// expression statement, so declarations and function expressions share one
// node shape.
func (p *Parser) parseFunctionDeclarationStatement() Statement {
	stmt := p.arena.NewExpressionStatement()
	stmt.Token = p.curToken
	fn := p.parseFunctionLiteral()
	if fn == nil {
		return nil
	}
	stmt.Expression = fn
	p.attach(fn, stmt, NamedSlot(SlotExpression))
	return stmt
}

func (p *Parser) parseExpressionStatement() Statement {
	stmt := p.arena.NewExpressionStatement()
	stmt.Token = p.curToken

	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	stmt.Expression = expr
	p.attach(expr, stmt, NamedSlot(SlotExpression))

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

// --- Expressions ---

func (p *Parser) parseExpression(precedence int) Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil // Prefix parsing failed, propagate nil
	}

	for !p.peekTokenIs(lexer.SEMICOLON) && !p.curTokenIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

func (p *Parser) parseIdentifier() Expression {
	// Single-parameter arrow shorthand: `x => body`
	if p.peekTokenIs(lexer.ARROW) {
		return p.parseSingleParamArrowFunction()
	}
	ident := p.arena.NewIdentifier()
	ident.Token = p.curToken
	ident.Value = p.curToken.Literal
	return ident
}

func (p *Parser) parseNumberLiteral() Expression {
	lit := p.arena.NewNumberLiteral()
	lit.Token = p.curToken
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addError(p.curToken, fmt.Sprintf("could not parse %q as number", p.curToken.Literal))
		return nil
	}
	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() Expression {
	lit := p.arena.NewStringLiteral()
	lit.Token = p.curToken
	lit.Value = p.curToken.Literal
	return lit
}

func (p *Parser) parseBooleanLiteral() Expression {
	lit := p.arena.NewBooleanLiteral()
	lit.Token = p.curToken
	lit.Value = p.curTokenIs(lexer.TRUE)
	return lit
}

func (p *Parser) parseNullLiteral() Expression {
	lit := p.arena.NewNullLiteral()
	lit.Token = p.curToken
	return lit
}

func (p *Parser) parseUndefinedLiteral() Expression {
	lit := p.arena.NewUndefinedLiteral()
	lit.Token = p.curToken
	return lit
}

func (p *Parser) parsePrefixExpression() Expression {
	expr := p.arena.NewPrefixExpression()
	expr.Token = p.curToken
	expr.Operator = p.curToken.Literal

	p.nextToken()
	operand := p.parseExpression(PREFIX)
	if operand == nil {
		return nil
	}
	expr.Operand = operand
	p.attach(operand, expr, NamedSlot(SlotOperand))
	return expr
}

func (p *Parser) parseInfixExpression(left Expression) Expression {
	expr := p.arena.NewInfixExpression()
	expr.Token = p.curToken
	expr.Operator = p.curToken.Literal
	expr.Left = left
	p.attach(left, expr, NamedSlot(SlotLeft))

	precedence := precedences[p.curToken.Type]
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	expr.Right = right
	p.attach(right, expr, NamedSlot(SlotRight))
	return expr
}

func (p *Parser) parseAssignmentExpression(left Expression) Expression {
	switch left.(type) {
	case *Identifier, *MemberExpression:
		// assignable
	default:
		p.addError(p.curToken, "invalid assignment target")
		return nil
	}

	expr := p.arena.NewAssignmentExpression()
	expr.Token = p.curToken
	expr.Operator = p.curToken.Literal
	expr.Left = left
	p.attach(left, expr, NamedSlot(SlotLeft))

	p.nextToken()
	// Right-associative: a = b = c parses as a = (b = c)
	value := p.parseExpression(ASSIGNMENT - 1)
	if value == nil {
		return nil
	}
	expr.Value = value
	p.attach(value, expr, NamedSlot(SlotValue))
	return expr
}

func (p *Parser) parseCallExpression(function Expression) Expression {
	call := p.arena.NewCallExpression()
	call.Token = p.curToken
	call.Function = function
	p.attach(function, call, NamedSlot(SlotCallee))

	args, ok := p.parseExpressionList(lexer.RPAREN)
	if !ok {
		return nil
	}
	call.Arguments = args
	for i, a := range args {
		p.attach(a, call, IndexedSlot(SlotArguments, i))
	}
	return call
}

// parseExpressionList parses a comma-separated expression list until the end
// token; curToken must be the opening delimiter.
func (p *Parser) parseExpressionList(end lexer.TokenType) ([]Expression, bool) {
	list := []Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}

	p.nextToken()
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil, false
	}
	list = append(list, first)

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken() // consume ','
		p.nextToken()
		next := p.parseExpression(LOWEST)
		if next == nil {
			return nil, false
		}
		list = append(list, next)
	}

	if !p.expectPeek(end) {
		return nil, false
	}
	return list, true
}

func (p *Parser) parseMemberExpression(object Expression) Expression {
	member := p.arena.NewMemberExpression()
	member.Token = p.curToken
	member.Object = object
	p.attach(object, member, NamedSlot(SlotObject))

	// Reserved words are legal property names (x.else, a.return), so any
	// word token is accepted here, not only IDENT.
	if !lexer.IsWordToken(p.peekToken.Type) {
		p.peekError(lexer.IDENT)
		return nil
	}
	p.nextToken()
	prop := p.arena.NewIdentifier()
	prop.Token = p.curToken
	prop.Value = p.curToken.Literal
	member.Property = prop
	p.attach(prop, member, NamedSlot(SlotProperty))
	return member
}

func (p *Parser) parseFunctionLiteral() Expression {
	fn := p.arena.NewFunctionLiteral()
	fn.Token = p.curToken

	if p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		name := p.arena.NewIdentifier()
		name.Token = p.curToken
		name.Value = p.curToken.Literal
		fn.Name = name
		p.attach(name, fn, NamedSlot(SlotName))
	}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	params, ok := p.parseFunctionParameters()
	if !ok {
		return nil
	}
	fn.Parameters = params
	for i, param := range params {
		p.attach(param, fn, IndexedSlot(SlotParameters, i))
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	block, ok := body.(*BlockStatement)
	if !ok {
		return nil
	}
	fn.Body = block
	p.attach(block, fn, NamedSlot(SlotBody))
	return fn
}

// parseFunctionParameters parses `(a, b, c)`; curToken must be '('.
func (p *Parser) parseFunctionParameters() ([]*Parameter, bool) {
	params := []*Parameter{}

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params, true
	}

	for {
		if !p.expectPeek(lexer.IDENT) {
			return nil, false
		}
		param := p.arena.NewParameter()
		param.Token = p.curToken
		name := p.arena.NewIdentifier()
		name.Token = p.curToken
		name.Value = p.curToken.Literal
		param.Name = name
		p.attach(name, param, NamedSlot(SlotParamName))
		params = append(params, param)

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil, false
	}
	return params, true
}

// parseGroupedOrArrowFunction disambiguates `(expr)` from `(a, b) => ...`
// by trying the arrow parameter shape first and backtracking on failure.
func (p *Parser) parseGroupedOrArrowFunction() Expression {
	savedCur := p.curToken
	savedPeek := p.peekToken
	savedPos := p.l.CurrentPosition()

	if arrow := p.tryParseArrowFunction(); arrow != nil {
		return arrow
	}

	// Backtrack and parse as a grouped expression.
	p.l.SetPosition(savedPos)
	p.curToken = savedCur
	p.peekToken = savedPeek

	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return expr
}

// tryParseArrowFunction attempts `(a, b) => body`; returns nil without
// reporting errors when the shape does not match.
func (p *Parser) tryParseArrowFunction() Expression {
	// Scan the parameter list without committing.
	var params []*Parameter
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
	} else {
		for {
			if !p.peekTokenIs(lexer.IDENT) {
				return nil
			}
			p.nextToken()
			param := p.arena.NewParameter()
			param.Token = p.curToken
			name := p.arena.NewIdentifier()
			name.Token = p.curToken
			name.Value = p.curToken.Literal
			param.Name = name
			p.attach(name, param, NamedSlot(SlotParamName))
			params = append(params, param)

			if p.peekTokenIs(lexer.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
		if !p.peekTokenIs(lexer.RPAREN) {
			return nil
		}
		p.nextToken()
	}

	if !p.peekTokenIs(lexer.ARROW) {
		return nil
	}
	p.nextToken() // curToken is now '=>'

	return p.finishArrowFunction(params)
}

func (p *Parser) parseSingleParamArrowFunction() Expression {
	param := p.arena.NewParameter()
	param.Token = p.curToken
	name := p.arena.NewIdentifier()
	name.Token = p.curToken
	name.Value = p.curToken.Literal
	param.Name = name
	p.attach(name, param, NamedSlot(SlotParamName))

	p.nextToken() // curToken is now '=>'
	return p.finishArrowFunction([]*Parameter{param})
}

// finishArrowFunction parses the arrow body; curToken must be '=>'.
func (p *Parser) finishArrowFunction(params []*Parameter) Expression {
	arrow := p.arena.NewArrowFunctionLiteral()
	arrow.Token = p.curToken
	arrow.Parameters = params
	for i, param := range params {
		p.attach(param, arrow, IndexedSlot(SlotParameters, i))
	}

	p.nextToken()
	if p.curTokenIs(lexer.LBRACE) {
		body := p.parseBlockStatement()
		block, ok := body.(*BlockStatement)
		if !ok {
			return nil
		}
		arrow.Body = block
		p.attach(block, arrow, NamedSlot(SlotBody))
	} else {
		body := p.parseExpression(LOWEST)
		if body == nil {
			return nil
		}
		arrow.Body = body
		p.attach(body, arrow, NamedSlot(SlotBody))
	}
	return arrow
}

func (p *Parser) parseArrayLiteral() Expression {
	arr := p.arena.NewArrayLiteral()
	arr.Token = p.curToken

	elements, ok := p.parseExpressionList(lexer.RBRACKET)
	if !ok {
		return nil
	}
	arr.Elements = elements
	for i, el := range elements {
		p.attach(el, arr, IndexedSlot(SlotElements, i))
	}
	return arr
}

// parseObjectLiteral parses `{ key: value, shorthand, 'str': value }`.
// Shorthand entries keep Value nil; the single identifier sits in the key
// slot, which keeps renames away from it the same way property names are
// protected.
func (p *Parser) parseObjectLiteral() Expression {
	obj := p.arena.NewObjectLiteral()
	obj.Token = p.curToken

	for !p.peekTokenIs(lexer.RBRACE) {
		if !p.peekTokenIs(lexer.IDENT) && !p.peekTokenIs(lexer.STRING) {
			p.peekError(lexer.IDENT)
			return nil
		}
		p.nextToken()

		prop := p.arena.NewObjectProperty()
		prop.Token = p.curToken

		var key Expression
		if p.curTokenIs(lexer.STRING) {
			k := p.arena.NewStringLiteral()
			k.Token = p.curToken
			k.Value = p.curToken.Literal
			key = k
		} else {
			k := p.arena.NewIdentifier()
			k.Token = p.curToken
			k.Value = p.curToken.Literal
			key = k
		}
		prop.Key = key
		p.attach(key, prop, NamedSlot(SlotKeyName))

		if p.peekTokenIs(lexer.COLON) {
			p.nextToken() // consume ':'
			p.nextToken()
			value := p.parseExpression(LOWEST)
			if value == nil {
				return nil
			}
			prop.Value = value
			p.attach(value, prop, NamedSlot(SlotValue))
		}
		// else: shorthand property, Value stays nil

		idx := len(obj.Properties)
		obj.Properties = append(obj.Properties, prop)
		p.attach(prop, obj, IndexedSlot(SlotProperties, idx))

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return obj
}

// parseMarkupExpression handles '<' in prefix position: an embedded markup
// element. The element is consumed raw via the lexer, then the token window
// is re-primed past it.
func (p *Parser) parseMarkupExpression() Expression {
	startTok := p.curToken
	raw, ok := p.l.ScanMarkupFrom(startTok.StartPos)
	if !ok {
		p.addError(startTok, "unterminated or malformed markup element")
		return nil
	}

	node := p.arena.NewMarkupExpression()
	node.Token = startTok
	node.Raw = raw

	// The lexer is now positioned after the element; rebuild the lookahead.
	p.curToken = lexer.Token{
		Type:     lexer.MARKUP,
		Literal:  raw,
		Line:     startTok.Line,
		Column:   startTok.Column,
		StartPos: startTok.StartPos,
		EndPos:   startTok.StartPos + len(raw),
	}
	p.peekToken = p.l.NextToken()
	return node
}

// --- Convenience entry points ---

// Parse parses text into a best-effort Program. The returned arena owns the
// tree's nodes; fragment reparses against the same document should reuse it.
func Parse(text string) (*Program, *ASTArena, []errors.BlockpadError) {
	p := NewParser(source.NewEditorSource(text))
	program, errs := p.ParseProgram()
	return program, p.arena, errs
}

// ParseExpressionText parses a standalone expression fragment, allocating
// from the given arena. Used to rebuild a single node from edited opaque
// text before replacing it in the live tree.
func ParseExpressionText(arena *ASTArena, text string) (Expression, []errors.BlockpadError) {
	p := NewParserWithArena(source.NewEditorSource(text), arena)
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil, p.errors
	}
	if !p.peekTokenIs(lexer.SEMICOLON) && !p.peekTokenIs(lexer.EOF) {
		p.addError(p.peekToken, "unexpected trailing input after expression")
	}
	return expr, p.errors
}

// ParseStatementText parses a standalone statement fragment, allocating from
// the given arena.
func ParseStatementText(arena *ASTArena, text string) (Statement, []errors.BlockpadError) {
	p := NewParserWithArena(source.NewEditorSource(text), arena)
	stmt := p.parseStatement()
	if stmt == nil {
		return nil, p.errors
	}
	return stmt, p.errors
}
