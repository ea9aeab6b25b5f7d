package internal

// In this file, we classify tokens into the alternatives of the jack grammar. Each production of the parser
// dispatches on one of those enumerations with an exhaustive switch, so a token the grammar does not expect
// at some place is always reported instead of falling through silently.

// EndOfInputTP is what peekType reports when no token is left.
const EndOfInputTP TokenType = -1

type FuncType int

const (
	ClassConstructorType FuncType = iota
	ClassMethodType
	ClassFuncType
)

func funcTypeOf(tp TokenType) (FuncType, bool) {
	switch tp {
	case ConstructorTP:
		return ClassConstructorType, true
	case MethodTP:
		return ClassMethodType, true
	case FunctionTP:
		return ClassFuncType, true
	}
	return 0, false
}

func classVarKindOf(tp TokenType) (SymbolKind, bool) {
	switch tp {
	case StaticTP:
		return StaticKind, true
	case FieldTP:
		return FieldKind, true
	}
	return 0, false
}

type StatementType int

const (
	LetStatementTP StatementType = iota
	IfStatementTP
	WhileStatementTP
	DoStatementTP
	ReturnStatementTP
)

func statementTypeOf(tp TokenType) (StatementType, bool) {
	switch tp {
	case LetTP:
		return LetStatementTP, true
	case IfTP:
		return IfStatementTP, true
	case WhileTP:
		return WhileStatementTP, true
	case DoTp:
		return DoStatementTP, true
	case ReturnTP:
		return ReturnStatementTP, true
	}
	return 0, false
}

// OpCode is a binary or unary operator of an expression. Jack has no precedence, operators apply in the
// order they are written.
type OpCode int

const (
	AddOpTP OpCode = iota
	MinusOpTP
	MultipleOpTP
	DivideOpTP
	AndOpTP
	OrOpTP
	LessOpTP
	GreaterOpTP
	EqualOpTp

	// Unary Op
	NegationOpTP
	BooleanNegationOpTP
)

func binaryOpOf(tp TokenType) (OpCode, bool) {
	switch tp {
	case AddTP:
		return AddOpTP, true
	case MinusTP:
		return MinusOpTP, true
	case MultiplyTP:
		return MultipleOpTP, true
	case DivideTP:
		return DivideOpTP, true
	case AndTP:
		return AndOpTP, true
	case OrTP:
		return OrOpTP, true
	case LessTP:
		return LessOpTP, true
	case GreaterTP:
		return GreaterOpTP, true
	case EqualTP:
		return EqualOpTp, true
	}
	return 0, false
}

func unaryOpOf(tp TokenType) (OpCode, bool) {
	switch tp {
	case MinusTP:
		return NegationOpTP, true
	case BooleanNegativeTP:
		return BooleanNegationOpTP, true
	}
	return 0, false
}

type ExpressionTermType int

const (
	IntegerConstantTermType ExpressionTermType = iota
	CharacterConstantTermType
	StringConstantTermType
	KeyWordConstantTrueTermType
	KeyWordConstantFalseTermType
	KeyWordConstantNullTermType
	KeyWordConstantThisTermType
	// varName
	VarNameExpressionTermType
	// varName[expression]
	ArrayIndexExpressionTermType
	// name(...) or name.name(...)
	SubRoutineCallTermType
	// (expression)
	SubExpressionTermType
	// -term or ~term
	UnaryTermExpressionTermType
)

// termTypeOf picks the term alternative from its first token and, for identifiers, the token after it.
func termTypeOf(token *Token, next *Token) (ExpressionTermType, bool) {
	switch token.tp {
	case IntegerTP:
		return IntegerConstantTermType, true
	case CharacterTP:
		return CharacterConstantTermType, true
	case StringTP:
		return StringConstantTermType, true
	case TrueTP:
		return KeyWordConstantTrueTermType, true
	case FalseTP:
		return KeyWordConstantFalseTermType, true
	case NullTP:
		return KeyWordConstantNullTermType, true
	case ThisTP:
		return KeyWordConstantThisTermType, true
	case LeftParentThesesTP:
		return SubExpressionTermType, true
	case MinusTP, BooleanNegativeTP:
		return UnaryTermExpressionTermType, true
	case IdentifierTP:
		if next == nil {
			return VarNameExpressionTermType, true
		}
		switch next.tp {
		case LeftSquareBracketTP:
			return ArrayIndexExpressionTermType, true
		case LeftParentThesesTP, DotTP:
			return SubRoutineCallTermType, true
		}
		return VarNameExpressionTermType, true
	}
	return 0, false
}

// isType reports whether tp can start a variable type: int, char, boolean or a class name.
func isType(tp TokenType) bool {
	switch tp {
	case IntTP, CharTP, BooleanTP, IdentifierTP:
		return true
	}
	return false
}

var tokenTypeNames = map[TokenType]string{
	IntegerTP:    "integer constant",
	StringTP:     "string constant",
	CharacterTP:  "character constant",
	IdentifierTP: "identifier",
	EndOfInputTP: "end of input",
}

func init() {
	for word, tp := range keyWordTokenTPMap {
		tokenTypeNames[tp] = word
	}
	for symbol, tp := range simpleSymbolTokenTPMap {
		tokenTypeNames[tp] = string(symbol)
	}
}

func (tp TokenType) String() string {
	return tokenTypeNames[tp]
}
