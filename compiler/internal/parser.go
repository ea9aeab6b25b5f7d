package internal

import (
	"github.com/pkg/errors"
)

// Parser is a predictive recursive descent parser for jack which emits vm code while it parses, there is
// no ast in between. Every parseXxx method consumes exactly the tokens of its production and writes the
// instructions for it to the VMWriter before returning.
//
// A Parser is the whole mutable state of compiling one unit: the tokenizer cursor, both scopes, the current
// class name and the writer with its label counter. Nothing is shared between two parsers.
type Parser struct {
	tokenizer *Tokenizer
	writer    *VMWriter
	symbols   *SymbolTable
	runtime   Runtime
	className string
}

func NewParser(tokenizer *Tokenizer, writer *VMWriter, runtime Runtime) *Parser {
	return &Parser{
		tokenizer: tokenizer,
		writer:    writer,
		symbols:   NewSymbolTable(),
		runtime:   runtime.withDefaults(),
	}
}

// Parse compiles every class of the input in order. Anything but a class at the root is an error.
func (parser *Parser) Parse() error {
	for {
		token, err := parser.tokenizer.Peek()
		if err != nil {
			return err
		}
		if token == nil {
			break
		}
		if token.tp != ClassTP {
			return parser.makeError(token, "file", ClassTP.String())
		}
		err = parser.parseClass()
		if err != nil {
			return err
		}
	}
	return parser.writer.Err()
}

// class: 'class' className '{' classVarDec* subroutineDec* '}'
func (parser *Parser) parseClass() error {
	const production = "class"
	parser.symbols.StartClass()
	_, err := parser.expectToken(ClassTP, production)
	if err != nil {
		return err
	}
	name, err := parser.expectToken(IdentifierTP, production)
	if err != nil {
		return err
	}
	parser.className = name.content
	_, err = parser.expectToken(LeftBraceTP, production)
	if err != nil {
		return err
	}
	for {
		tp, err := parser.peekType()
		if err != nil {
			return err
		}
		if _, ok := classVarKindOf(tp); !ok {
			break
		}
		err = parser.parseClassVarDec()
		if err != nil {
			return err
		}
	}
	for {
		tp, err := parser.peekType()
		if err != nil {
			return err
		}
		if _, ok := funcTypeOf(tp); !ok {
			break
		}
		err = parser.parseSubroutine()
		if err != nil {
			return err
		}
	}
	_, err = parser.expectToken(RightBraceTP, production)
	return err
}

// classVarDec: ('static' | 'field') type varName (',' varName)* ';'
func (parser *Parser) parseClassVarDec() error {
	const production = "classVarDec"
	token, err := parser.advance(production, "static or field")
	if err != nil {
		return err
	}
	kind, ok := classVarKindOf(token.tp)
	if !ok {
		return parser.makeError(token, production, "static or field")
	}
	declaredType, err := parser.parseType(production, false)
	if err != nil {
		return err
	}
	return parser.parseVarNames(production, declaredType, kind)
}

// subroutineDec: ('constructor' | 'function' | 'method') ('void' | type) subroutineName
// '(' parameterList ')' '{' varDec* statements '}'
func (parser *Parser) parseSubroutine() error {
	const production = "subroutineDec"
	token, err := parser.advance(production, "constructor, function or method")
	if err != nil {
		return err
	}
	funcType, ok := funcTypeOf(token.tp)
	if !ok {
		return parser.makeError(token, production, "constructor, function or method")
	}
	parser.symbols.StartSubroutine()
	_, err = parser.parseType(production, true)
	if err != nil {
		return err
	}
	name, err := parser.expectToken(IdentifierTP, production)
	if err != nil {
		return err
	}
	// The receiver of a method is its argument 0.
	if funcType == ClassMethodType {
		_, err = parser.symbols.Define("this", parser.className, ArgumentKind)
		if err != nil {
			return err
		}
	}
	err = parser.parseParameterList()
	if err != nil {
		return err
	}
	_, err = parser.expectToken(LeftBraceTP, production)
	if err != nil {
		return err
	}
	for {
		tp, err := parser.peekType()
		if err != nil {
			return err
		}
		if tp != VarTP {
			break
		}
		err = parser.parseVarDec()
		if err != nil {
			return err
		}
	}
	localCount := parser.symbols.SubroutineScope().CountByKind(LocalKind)
	parser.writer.WriteFunction(parser.className+"."+name.content, localCount)
	parser.writePrologue(funcType)
	err = parser.parseStatements()
	if err != nil {
		return err
	}
	_, err = parser.expectToken(RightBraceTP, production)
	return err
}

// writePrologue points THIS at the current object: the receiver for a method, a fresh block of one word per
// field for a constructor.
func (parser *Parser) writePrologue(funcType FuncType) {
	switch funcType {
	case ClassMethodType:
		parser.writer.WritePush(ArgumentSegment, 0)
		parser.writer.WritePop(PointerSegment, 0)
	case ClassConstructorType:
		parser.writer.WritePush(ConstantSegment, parser.symbols.ClassScope().CountByKind(FieldKind))
		parser.writer.WriteCall(parser.runtime.Allocator+".alloc", 1)
		parser.writer.WritePop(PointerSegment, 0)
	case ClassFuncType:
	}
}

// parameterList: '(' ((type varName) (',' type varName)*)? ')'
func (parser *Parser) parseParameterList() error {
	const production = "parameterList"
	_, err := parser.expectToken(LeftParentThesesTP, production)
	if err != nil {
		return err
	}
	tp, err := parser.peekType()
	if err != nil {
		return err
	}
	for tp != RightParentThesesTP {
		declaredType, err := parser.parseType(production, false)
		if err != nil {
			return err
		}
		name, err := parser.expectToken(IdentifierTP, production)
		if err != nil {
			return err
		}
		err = parser.define(name, declaredType, ArgumentKind, production)
		if err != nil {
			return err
		}
		tp, err = parser.peekType()
		if err != nil {
			return err
		}
		if tp != CommaTP {
			break
		}
		parser.tokenizer.Advance()
	}
	_, err = parser.expectToken(RightParentThesesTP, production)
	return err
}

// varDec: 'var' type varName (',' varName)* ';'
func (parser *Parser) parseVarDec() error {
	const production = "varDec"
	_, err := parser.expectToken(VarTP, production)
	if err != nil {
		return err
	}
	declaredType, err := parser.parseType(production, false)
	if err != nil {
		return err
	}
	return parser.parseVarNames(production, declaredType, LocalKind)
}

// parseVarNames defines varName (',' varName)* ';' with one type and kind.
func (parser *Parser) parseVarNames(production string, declaredType string, kind SymbolKind) error {
	for {
		name, err := parser.expectToken(IdentifierTP, production)
		if err != nil {
			return err
		}
		err = parser.define(name, declaredType, kind, production)
		if err != nil {
			return err
		}
		tp, err := parser.peekType()
		if err != nil {
			return err
		}
		if tp != CommaTP {
			break
		}
		parser.tokenizer.Advance()
	}
	_, err := parser.expectToken(SemiColonTP, production)
	return err
}

// parseType consumes int, char, boolean, a class name, or void when allowVoid is set.
func (parser *Parser) parseType(production string, allowVoid bool) (string, error) {
	expected := "type"
	if allowVoid {
		expected = "void or type"
	}
	token, err := parser.advance(production, expected)
	if err != nil {
		return "", err
	}
	if isType(token.tp) || (allowVoid && token.tp == VoidTP) {
		return token.content, nil
	}
	return "", parser.makeError(token, production, expected)
}

func (parser *Parser) define(name *Token, declaredType string, kind SymbolKind, production string) error {
	_, err := parser.symbols.Define(name.content, declaredType, kind)
	var duplicate *DuplicateDeclarationError
	if errors.As(err, &duplicate) {
		duplicate.Line, duplicate.Production = name.line, production
	}
	return err
}

func (parser *Parser) lookup(name *Token, production string) (*Symbol, error) {
	symbol, ok := parser.symbols.Lookup(name.content)
	if !ok {
		return nil, &UndefinedSymbolError{Name: name.content, Line: name.line, Production: production}
	}
	return symbol, nil
}

func (parser *Parser) peekType() (TokenType, error) {
	token, err := parser.tokenizer.Peek()
	if err != nil {
		return EndOfInputTP, err
	}
	if token == nil {
		return EndOfInputTP, nil
	}
	return token.tp, nil
}

// advance consumes the next token, running out of tokens is a syntax error of production.
func (parser *Parser) advance(production string, expected string) (*Token, error) {
	token, err := parser.tokenizer.Advance()
	if err == ErrNoMoreTokens {
		return nil, parser.makeError(nil, production, expected)
	}
	return token, err
}

func (parser *Parser) expectToken(tp TokenType, production string) (*Token, error) {
	token, err := parser.advance(production, tp.String())
	if err != nil {
		return nil, err
	}
	if token.tp != tp {
		return nil, parser.makeError(token, production, tp.String())
	}
	return token, nil
}

func (parser *Parser) makeError(token *Token, production string, expected string) error {
	if token == nil {
		return &SyntaxError{Line: parser.tokenizer.CurrentLine(), Production: production, Expected: expected}
	}
	return &SyntaxError{Near: token.content, Line: token.line, Production: production, Expected: expected}
}
