package internal

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/xiaobogaga/hack/util"
)

// A demand driven Tokenizer for jack.

// Jack language has those elements:
// * KeyWord: class, constructor, function, method, field, static, var, int, char, boolean, void, true,
// 			false, null, this, let, do, if, else, while, return.
// * Symbol: {, }, (, ), [, ], ., ,, ;, +, -, *, /, &, |, <, >, =, ~, !.
// * Constant: integer (0..32767), string ("xxx"), character ('x'). Characters must be valid utf-8 with a code
// 			no greater than 32767.
// * Identifier: any other run of characters which are neither space nor symbol.
// * Comment: /**/, //. A block comment can span lines.

type TokenType int

const (
	ClassTP              TokenType = iota // class
	ConstructorTP                         // constructor
	FunctionTP                            // function
	MethodTP                              // method
	FieldTP                               // field
	StaticTP                              // static
	VarTP                                 // var
	IntTP                                 // int
	CharTP                                // char
	BooleanTP                             // boolean
	VoidTP                                // void
	TrueTP                                // true
	FalseTP                               // false
	NullTP                                // null
	ThisTP                                // this
	LetTP                                 // let
	DoTp                                  // do
	IfTP                                  // if
	ElseTP                                // else
	WhileTP                               // while
	ReturnTP                              // return
	LeftBraceTP                           // {
	RightBraceTP                          // }
	LeftParentThesesTP                    // (
	RightParentThesesTP                   // )
	LeftSquareBracketTP                   // [
	RightSquareBracketTP                  // ]
	DotTP                                 // .
	CommaTP                               // ,
	SemiColonTP                           // ;
	AddTP                                 // +
	MinusTP                               // -
	MultiplyTP                            // *
	DivideTP                              // /
	AndTP                                 // &
	OrTP                                  // |
	GreaterTP                             // >
	LessTP                                // <
	EqualTP                               // =
	BooleanNegativeTP                     // ~
	ExclamationTP                         // !
	IntegerTP                             // 1010
	StringTP                              // "xxx"
	IdentifierTP                          // varA
	CharacterTP                           // 'a'
)

// TokenKind is the lexical category of a token.
type TokenKind int

const (
	KeywordToken TokenKind = iota
	SymbolToken
	IdentifierToken
	IntegerConstantToken
	StringConstantToken
	CharConstantToken
)

func (kind TokenKind) String() string {
	switch kind {
	case KeywordToken:
		return "keyword"
	case SymbolToken:
		return "symbol"
	case IdentifierToken:
		return "identifier"
	case IntegerConstantToken:
		return "integerConstant"
	case StringConstantToken:
		return "stringConstant"
	case CharConstantToken:
		return "charConstant"
	}
	return ""
}

// MaxIntegerConstant is the largest integer constant an A instruction can load.
const MaxIntegerConstant = 32767

// keyWordTokenTPMap is the mapping from identifier to the corresponding TokenTP.
var keyWordTokenTPMap = map[string]TokenType{
	"class":       ClassTP,
	"constructor": ConstructorTP,
	"function":    FunctionTP,
	"method":      MethodTP,
	"field":       FieldTP,
	"static":      StaticTP,
	"var":         VarTP,
	"int":         IntTP,
	"char":        CharTP,
	"boolean":     BooleanTP,
	"void":        VoidTP,
	"true":        TrueTP,
	"false":       FalseTP,
	"null":        NullTP,
	"this":        ThisTP,
	"let":         LetTP,
	"do":          DoTp,
	"if":          IfTP,
	"else":        ElseTP,
	"while":       WhileTP,
	"return":      ReturnTP,
}

// simpleSymbolTokenTPMap is the mapping from a single character symbol to the corresponding TokenTP.
var simpleSymbolTokenTPMap = map[byte]TokenType{
	'{': LeftBraceTP,
	'}': RightBraceTP,
	'(': LeftParentThesesTP,
	')': RightParentThesesTP,
	'[': LeftSquareBracketTP,
	']': RightSquareBracketTP,
	'.': DotTP,
	',': CommaTP,
	';': SemiColonTP,
	'+': AddTP,
	'-': MinusTP,
	'*': MultiplyTP,
	'/': DivideTP,
	'&': AndTP,
	'|': OrTP,
	'>': GreaterTP,
	'<': LessTP,
	'=': EqualTP,
	'~': BooleanNegativeTP,
	'!': ExclamationTP,
}

// Token is immutable once the tokenizer returned it.
type Token struct {
	content  string
	line     int
	startPos int
	endPos   int
	kind     TokenKind
	tp       TokenType
}

func (t *Token) Text() string {
	return t.content
}

func (t *Token) Kind() TokenKind {
	return t.kind
}

// Type tells which keyword or symbol the token is. For the other kinds it is IdentifierTP, IntegerTP,
// StringTP or CharacterTP.
func (t *Token) Type() TokenType {
	return t.tp
}

func (t *Token) Line() int {
	return t.line
}

// ErrNoMoreTokens is returned by Advance when the input is exhausted.
var ErrNoMoreTokens = errors.New("tokenizer: no more tokens")

type Tokenizer struct {
	reader           *bufio.Reader
	line             []byte
	currentPos       int
	currentLine      int
	eof              bool
	inBlockComment   bool
	blockCommentLine int
	current          *Token
	peeked           *Token
	err              error
}

func NewTokenizer(rd io.Reader) *Tokenizer {
	return &Tokenizer{reader: bufio.NewReader(rd)}
}

// HasMoreTokens reports whether Advance would return a token. It reads ahead but consumes nothing.
// A lexical error makes it false, Err tells the reason.
func (tokenizer *Tokenizer) HasMoreTokens() bool {
	token, err := tokenizer.Peek()
	return err == nil && token != nil
}

// Peek returns the next token without consuming it, or nil at the end of input.
func (tokenizer *Tokenizer) Peek() (*Token, error) {
	if tokenizer.peeked != nil || tokenizer.err != nil {
		return tokenizer.peeked, tokenizer.err
	}
	tokenizer.peeked, tokenizer.err = tokenizer.nextToken()
	return tokenizer.peeked, tokenizer.err
}

// Advance consumes and returns the next token.
func (tokenizer *Tokenizer) Advance() (*Token, error) {
	token, err := tokenizer.Peek()
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, ErrNoMoreTokens
	}
	tokenizer.current, tokenizer.peeked = token, nil
	return token, nil
}

// Current returns the token returned by the last Advance.
func (tokenizer *Tokenizer) Current() *Token {
	return tokenizer.current
}

func (tokenizer *Tokenizer) Err() error {
	return tokenizer.err
}

// CurrentLine is the line the tokenizer has read up to.
func (tokenizer *Tokenizer) CurrentLine() int {
	return tokenizer.currentLine
}

func (tokenizer *Tokenizer) nextToken() (*Token, error) {
	for {
		if !tokenizer.hasRemainCharacters() {
			more, err := tokenizer.readLine()
			if err != nil {
				return nil, err
			}
			if !more {
				break
			}
			continue
		}
		if tokenizer.inBlockComment {
			tokenizer.skipBlockComment()
			continue
		}
		tokenizer.trimSpace()
		if !tokenizer.hasRemainCharacters() {
			continue
		}
		switch {
		case tokenizer.lookingAt("//"):
			tokenizer.currentPos = len(tokenizer.line)
			continue
		case tokenizer.lookingAt("/*"):
			tokenizer.currentPos += 2
			tokenizer.inBlockComment, tokenizer.blockCommentLine = true, tokenizer.currentLine
			continue
		}
		return tokenizer.getNextToken()
	}
	if tokenizer.inBlockComment {
		return nil, tokenizer.makeError("/*", tokenizer.blockCommentLine, "unterminated block comment")
	}
	return nil, nil
}

func (tokenizer *Tokenizer) readLine() (bool, error) {
	if tokenizer.eof {
		return false, nil
	}
	line, err := tokenizer.reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	if err == io.EOF {
		tokenizer.eof = true
		if len(line) == 0 {
			return false, nil
		}
	}
	tokenizer.currentLine++
	tokenizer.line, tokenizer.currentPos = line, 0
	return true, nil
}

// skipBlockComment steps over the rest of an open /* */ comment on the current line.
func (tokenizer *Tokenizer) skipBlockComment() {
	end := bytes.Index(tokenizer.line[tokenizer.currentPos:], []byte("*/"))
	if end == -1 {
		tokenizer.currentPos = len(tokenizer.line)
		return
	}
	tokenizer.currentPos += end + 2
	tokenizer.inBlockComment = false
}

func (tokenizer *Tokenizer) lookingAt(prefix string) bool {
	return bytes.HasPrefix(tokenizer.line[tokenizer.currentPos:], []byte(prefix))
}

// getNextToken returns the token starting at the current position, which must not be a space.
func (tokenizer *Tokenizer) getNextToken() (*Token, error) {
	c := tokenizer.line[tokenizer.currentPos]
	switch {
	case isSymbolByte(c):
		return tokenizer.tokenSimpleSymbol(), nil
	case c == '"':
		return tokenizer.tokenString()
	case c == '\'':
		return tokenizer.tokenCharacter()
	case util.IsNumber(c):
		return tokenizer.tokenNumber()
	default:
		return tokenizer.toKeywordOrIdentifier(), nil
	}
}

// trimSpace will step forward through line and skip all continuous space.
func (tokenizer *Tokenizer) trimSpace() {
	for tokenizer.currentPos < len(tokenizer.line) && util.IsSpace(tokenizer.line[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
}

func (tokenizer *Tokenizer) hasRemainCharacters() bool {
	return tokenizer.currentPos < len(tokenizer.line)
}

func isSymbolByte(c byte) bool {
	_, ok := simpleSymbolTokenTPMap[c]
	return ok
}

func isWordByte(c byte) bool {
	return !util.IsSpace(c) && !isSymbolByte(c) && c != '"' && c != '\''
}

func (tokenizer *Tokenizer) tokenSimpleSymbol() *Token {
	c := tokenizer.line[tokenizer.currentPos]
	token := &Token{
		content:  string(c),
		line:     tokenizer.currentLine,
		kind:     SymbolToken,
		tp:       simpleSymbolTokenTPMap[c],
		startPos: tokenizer.currentPos,
		endPos:   tokenizer.currentPos + 1,
	}
	tokenizer.currentPos++
	return token
}

// tokenCharacter accepts exactly one character between two apostrophes.
func (tokenizer *Tokenizer) tokenCharacter() (*Token, error) {
	line, startPos := tokenizer.line, tokenizer.currentPos
	end := bytes.IndexByte(line[startPos+1:], '\'')
	if end == -1 {
		near := bytes.TrimRight(line[startPos:], "\r\n")
		return nil, tokenizer.makeError(string(near), tokenizer.currentLine, "incorrect character format")
	}
	near, content := line[startPos:startPos+end+2], line[startPos+1:startPos+1+end]
	if !validCharacters(content) {
		return nil, tokenizer.makeError(string(near), tokenizer.currentLine, "character out of range")
	}
	if utf8.RuneCount(content) != 1 {
		return nil, tokenizer.makeError(string(near), tokenizer.currentLine, "incorrect character format")
	}
	tokenizer.currentPos = startPos + end + 2
	return &Token{
		content:  string(content),
		line:     tokenizer.currentLine,
		startPos: startPos + 1,
		endPos:   startPos + 1 + end,
		kind:     CharConstantToken,
		tp:       CharacterTP,
	}, nil
}

// tokenString takes everything up to the next quote on the same line verbatim, there is no escaping.
func (tokenizer *Tokenizer) tokenString() (*Token, error) {
	startPos := tokenizer.currentPos
	end := bytes.IndexByte(tokenizer.line[startPos+1:], '"')
	if end == -1 {
		near := bytes.TrimRight(tokenizer.line[startPos:], "\r\n")
		return nil, tokenizer.makeError(string(near), tokenizer.currentLine, "incorrect string format")
	}
	content := tokenizer.line[startPos+1 : startPos+1+end]
	if !validCharacters(content) {
		return nil, tokenizer.makeError(string(tokenizer.line[startPos:startPos+end+2]), tokenizer.currentLine,
			"character out of range")
	}
	tokenizer.currentPos = startPos + end + 2
	return &Token{
		content:  string(content),
		line:     tokenizer.currentLine,
		startPos: startPos + 1,
		endPos:   startPos + 1 + end,
		kind:     StringConstantToken,
		tp:       StringTP,
	}, nil
}

// validCharacters reports whether every character of content can be pushed as a constant.
func validCharacters(content []byte) bool {
	if !utf8.Valid(content) {
		return false
	}
	for _, c := range string(content) {
		if c > MaxIntegerConstant {
			return false
		}
	}
	return true
}

func (tokenizer *Tokenizer) tokenNumber() (*Token, error) {
	// Look forward to find a continuous number
	startPos := tokenizer.currentPos
	for tokenizer.currentPos < len(tokenizer.line) && util.IsNumber(tokenizer.line[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
	content := string(tokenizer.line[startPos:tokenizer.currentPos])
	value, err := strconv.Atoi(content)
	if err != nil || value > MaxIntegerConstant {
		return nil, tokenizer.makeError(content, tokenizer.currentLine, "integer constant out of range")
	}
	return &Token{
		content:  content,
		line:     tokenizer.currentLine,
		kind:     IntegerConstantToken,
		tp:       IntegerTP,
		startPos: startPos,
		endPos:   tokenizer.currentPos,
	}, nil
}

// toKeywordOrIdentifier takes the longest run of characters which are neither space nor symbol.
func (tokenizer *Tokenizer) toKeywordOrIdentifier() *Token {
	startPos := tokenizer.currentPos
	for tokenizer.currentPos < len(tokenizer.line) && isWordByte(tokenizer.line[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
	word := string(tokenizer.line[startPos:tokenizer.currentPos])
	token := &Token{
		content:  word,
		line:     tokenizer.currentLine,
		startPos: startPos,
		endPos:   tokenizer.currentPos,
	}
	if keyWordTP, isKeyWord := keyWordTokenTPMap[word]; isKeyWord {
		token.kind, token.tp = KeywordToken, keyWordTP
		return token
	}
	token.kind, token.tp = IdentifierToken, IdentifierTP
	return token
}

func (tokenizer *Tokenizer) makeError(near string, line int, msg string) error {
	return &LexicalError{Near: near, Line: line, Msg: msg}
}
