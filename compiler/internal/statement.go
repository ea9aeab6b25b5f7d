package internal

import "fmt"

// statements: statement*, stops at the first token that does not start a statement.
func (parser *Parser) parseStatements() error {
	for {
		tp, err := parser.peekType()
		if err != nil {
			return err
		}
		statementType, ok := statementTypeOf(tp)
		if !ok {
			return nil
		}
		err = parser.parseStatement(statementType)
		if err != nil {
			return err
		}
	}
}

func (parser *Parser) parseStatement(statementType StatementType) error {
	switch statementType {
	case LetStatementTP:
		return parser.parseLetStatement()
	case IfStatementTP:
		return parser.parseIfStatement()
	case WhileStatementTP:
		return parser.parseWhileStatement()
	case DoStatementTP:
		return parser.parseDoStatement()
	case ReturnStatementTP:
		return parser.parseReturnStatement()
	}
	return fmt.Errorf("unknown statement type %d", statementType)
}

// letStatement: 'let' varName ('[' expression ']')? '=' expression ';'
func (parser *Parser) parseLetStatement() error {
	const production = "letStatement"
	_, err := parser.expectToken(LetTP, production)
	if err != nil {
		return err
	}
	name, err := parser.expectToken(IdentifierTP, production)
	if err != nil {
		return err
	}
	symbol, err := parser.lookup(name, production)
	if err != nil {
		return err
	}
	tp, err := parser.peekType()
	if err != nil {
		return err
	}
	indexed := tp == LeftSquareBracketTP
	if indexed {
		// The target address stays on the stack while the value is computed, the value may index arrays
		// or call subroutines itself. The value is then parked in temp 0 until pointer 1 is set.
		parser.tokenizer.Advance()
		parser.writer.WritePush(symbol.Kind.Segment(), symbol.Index)
		err = parser.parseExpression()
		if err != nil {
			return err
		}
		_, err = parser.expectToken(RightSquareBracketTP, production)
		if err != nil {
			return err
		}
		parser.writer.WriteArithmetic(AddOp)
	}
	_, err = parser.expectToken(EqualTP, production)
	if err != nil {
		return err
	}
	err = parser.parseExpression()
	if err != nil {
		return err
	}
	_, err = parser.expectToken(SemiColonTP, production)
	if err != nil {
		return err
	}
	if !indexed {
		parser.writer.WritePop(symbol.Kind.Segment(), symbol.Index)
		return nil
	}
	parser.writer.WritePop(TempSegment, 0)
	parser.writer.WritePop(PointerSegment, 1)
	parser.writer.WritePush(TempSegment, 0)
	parser.writer.WritePop(ThatSegment, 0)
	return nil
}

// ifStatement: 'if' '(' expression ')' '{' statements '}' ('else' '{' statements '}')?
func (parser *Parser) parseIfStatement() error {
	const production = "ifStatement"
	_, err := parser.expectToken(IfTP, production)
	if err != nil {
		return err
	}
	id := parser.writer.NextUniqueID()
	elseLabel := fmt.Sprintf("IF_ELSE%d", id)
	endLabel := fmt.Sprintf("IF_END%d", id)
	err = parser.parseCondition(production)
	if err != nil {
		return err
	}
	parser.writer.WriteIfGoto(elseLabel)
	err = parser.parseBlock(production)
	if err != nil {
		return err
	}
	parser.writer.WriteGoto(endLabel)
	parser.writer.WriteLabel(elseLabel)
	tp, err := parser.peekType()
	if err != nil {
		return err
	}
	if tp == ElseTP {
		parser.tokenizer.Advance()
		err = parser.parseBlock(production)
		if err != nil {
			return err
		}
	}
	parser.writer.WriteLabel(endLabel)
	return nil
}

// whileStatement: 'while' '(' expression ')' '{' statements '}'
func (parser *Parser) parseWhileStatement() error {
	const production = "whileStatement"
	_, err := parser.expectToken(WhileTP, production)
	if err != nil {
		return err
	}
	id := parser.writer.NextUniqueID()
	expLabel := fmt.Sprintf("WHILE_EXP%d", id)
	endLabel := fmt.Sprintf("WHILE_END%d", id)
	parser.writer.WriteLabel(expLabel)
	err = parser.parseCondition(production)
	if err != nil {
		return err
	}
	parser.writer.WriteIfGoto(endLabel)
	err = parser.parseBlock(production)
	if err != nil {
		return err
	}
	parser.writer.WriteGoto(expLabel)
	parser.writer.WriteLabel(endLabel)
	return nil
}

// parseCondition compiles '(' expression ')' and leaves its negation on the stack.
func (parser *Parser) parseCondition(production string) error {
	_, err := parser.expectToken(LeftParentThesesTP, production)
	if err != nil {
		return err
	}
	err = parser.parseExpression()
	if err != nil {
		return err
	}
	_, err = parser.expectToken(RightParentThesesTP, production)
	if err != nil {
		return err
	}
	parser.writer.WriteArithmetic(NotOp)
	return nil
}

// '{' statements '}'
func (parser *Parser) parseBlock(production string) error {
	_, err := parser.expectToken(LeftBraceTP, production)
	if err != nil {
		return err
	}
	err = parser.parseStatements()
	if err != nil {
		return err
	}
	_, err = parser.expectToken(RightBraceTP, production)
	return err
}

// doStatement: 'do' subroutineCall ';'
func (parser *Parser) parseDoStatement() error {
	const production = "doStatement"
	_, err := parser.expectToken(DoTp, production)
	if err != nil {
		return err
	}
	name, err := parser.expectToken(IdentifierTP, production)
	if err != nil {
		return err
	}
	err = parser.parseSubroutineCall(name)
	if err != nil {
		return err
	}
	_, err = parser.expectToken(SemiColonTP, production)
	if err != nil {
		return err
	}
	parser.writer.WritePop(TempSegment, 0)
	return nil
}

// returnStatement: 'return' expression? ';'
func (parser *Parser) parseReturnStatement() error {
	const production = "returnStatement"
	_, err := parser.expectToken(ReturnTP, production)
	if err != nil {
		return err
	}
	tp, err := parser.peekType()
	if err != nil {
		return err
	}
	if tp == SemiColonTP {
		parser.writer.WritePush(ConstantSegment, 0)
	} else {
		err = parser.parseExpression()
		if err != nil {
			return err
		}
	}
	_, err = parser.expectToken(SemiColonTP, production)
	if err != nil {
		return err
	}
	parser.writer.WriteReturn()
	return nil
}
