package internal

import (
	"fmt"
	"strconv"
)

// expression: term (op term)*
// Jack doesn't have precedence, so every operator is emitted right after its right operand.
func (parser *Parser) parseExpression() error {
	err := parser.parseTerm()
	if err != nil {
		return err
	}
	for {
		tp, err := parser.peekType()
		if err != nil {
			return err
		}
		op, ok := binaryOpOf(tp)
		if !ok {
			return nil
		}
		parser.tokenizer.Advance()
		err = parser.parseTerm()
		if err != nil {
			return err
		}
		parser.writeOp(op)
	}
}

func (parser *Parser) writeOp(op OpCode) {
	switch op {
	case AddOpTP:
		parser.writer.WriteArithmetic(AddOp)
	case MinusOpTP:
		parser.writer.WriteArithmetic(SubOp)
	case MultipleOpTP:
		parser.writer.WriteCall(parser.runtime.Math+".multiply", 2)
	case DivideOpTP:
		parser.writer.WriteCall(parser.runtime.Math+".divide", 2)
	case AndOpTP:
		parser.writer.WriteArithmetic(AndOp)
	case OrOpTP:
		parser.writer.WriteArithmetic(OrOp)
	case LessOpTP:
		parser.writer.WriteArithmetic(LtOp)
	case GreaterOpTP:
		parser.writer.WriteArithmetic(GtOp)
	case EqualOpTp:
		parser.writer.WriteArithmetic(EqOp)
	case NegationOpTP:
		parser.writer.WriteArithmetic(NegOp)
	case BooleanNegationOpTP:
		parser.writer.WriteArithmetic(NotOp)
	}
}

// term: integerConstant | stringConstant | keywordConstant | varName | varName '[' expression ']' |
// subroutineCall | '(' expression ')' | unaryOp term
func (parser *Parser) parseTerm() error {
	const production = "term"
	token, err := parser.advance(production, "term")
	if err != nil {
		return err
	}
	next, err := parser.tokenizer.Peek()
	if err != nil {
		return err
	}
	termType, ok := termTypeOf(token, next)
	if !ok {
		return parser.makeError(token, production, "term")
	}
	switch termType {
	case IntegerConstantTermType:
		value, err := strconv.Atoi(token.content)
		if err != nil {
			return parser.makeError(token, production, "integer constant")
		}
		parser.writer.WritePush(ConstantSegment, value)
	case CharacterConstantTermType:
		parser.writer.WritePush(ConstantSegment, int([]rune(token.content)[0]))
	case StringConstantTermType:
		parser.writeStringConstant(token.content)
	case KeyWordConstantTrueTermType:
		parser.writer.WritePush(ConstantSegment, 1)
		parser.writer.WriteArithmetic(NegOp)
	case KeyWordConstantFalseTermType, KeyWordConstantNullTermType:
		parser.writer.WritePush(ConstantSegment, 0)
	case KeyWordConstantThisTermType:
		parser.writer.WritePush(PointerSegment, 0)
	case VarNameExpressionTermType:
		symbol, err := parser.lookup(token, production)
		if err != nil {
			return err
		}
		parser.writer.WritePush(symbol.Kind.Segment(), symbol.Index)
	case ArrayIndexExpressionTermType:
		return parser.parseArrayIndex(token)
	case SubRoutineCallTermType:
		return parser.parseSubroutineCall(token)
	case SubExpressionTermType:
		err = parser.parseExpression()
		if err != nil {
			return err
		}
		_, err = parser.expectToken(RightParentThesesTP, production)
		return err
	case UnaryTermExpressionTermType:
		op, _ := unaryOpOf(token.tp)
		err = parser.parseTerm()
		if err != nil {
			return err
		}
		parser.writeOp(op)
	}
	return nil
}

// varName '[' expression ']', name is already consumed.
func (parser *Parser) parseArrayIndex(name *Token) error {
	const production = "term"
	symbol, err := parser.lookup(name, production)
	if err != nil {
		return err
	}
	_, err = parser.expectToken(LeftSquareBracketTP, production)
	if err != nil {
		return err
	}
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
	parser.writer.WritePop(PointerSegment, 1)
	parser.writer.WritePush(ThatSegment, 0)
	return nil
}

// subroutineCall: subroutineName '(' expressionList ')' | (className | varName) '.' subroutineName '(' expressionList ')'
// name is already consumed. There are three call shapes:
//   - obj.m(...) with obj a variable: obj is pushed as argument 0, callee is Type.m.
//   - m(...): the current object is pushed as argument 0, callee is CurrentClass.m.
//   - Class.f(...): no receiver.
func (parser *Parser) parseSubroutineCall(name *Token) error {
	const production = "subroutineCall"
	tp, err := parser.peekType()
	if err != nil {
		return err
	}
	var callee string
	receivers := 0
	switch tp {
	case DotTP:
		parser.tokenizer.Advance()
		subroutine, err := parser.expectToken(IdentifierTP, production)
		if err != nil {
			return err
		}
		if symbol, ok := parser.symbols.Lookup(name.content); ok {
			parser.writer.WritePush(symbol.Kind.Segment(), symbol.Index)
			callee, receivers = symbol.DeclaredType+"."+subroutine.content, 1
		} else {
			callee = name.content + "." + subroutine.content
		}
	case LeftParentThesesTP:
		parser.writer.WritePush(PointerSegment, 0)
		callee, receivers = parser.className+"."+name.content, 1
	default:
		next, _ := parser.tokenizer.Peek()
		return parser.makeError(next, production, "( or .")
	}
	argCount, err := parser.parseExpressionList()
	if err != nil {
		return err
	}
	parser.writer.WriteCall(callee, argCount+receivers)
	return nil
}

// expressionList: '(' (expression (',' expression)*)? ')', returns the number of expressions.
func (parser *Parser) parseExpressionList() (int, error) {
	const production = "expressionList"
	_, err := parser.expectToken(LeftParentThesesTP, production)
	if err != nil {
		return 0, err
	}
	tp, err := parser.peekType()
	if err != nil {
		return 0, err
	}
	count := 0
	for tp != RightParentThesesTP {
		err = parser.parseExpression()
		if err != nil {
			return 0, err
		}
		count++
		tp, err = parser.peekType()
		if err != nil {
			return 0, err
		}
		if tp != CommaTP {
			break
		}
		parser.tokenizer.Advance()
	}
	_, err = parser.expectToken(RightParentThesesTP, production)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// writeStringConstant builds the string at runtime: String.new(len) and then one appendChar per character.
func (parser *Parser) writeStringConstant(content string) {
	chars := []rune(content)
	parser.writer.WritePush(ConstantSegment, len(chars))
	parser.writer.WriteCall(fmt.Sprintf("%s.new", parser.runtime.String), 1)
	for _, c := range chars {
		parser.writer.WritePush(ConstantSegment, int(c))
		parser.writer.WriteCall(fmt.Sprintf("%s.appendChar", parser.runtime.String), 2)
	}
}
