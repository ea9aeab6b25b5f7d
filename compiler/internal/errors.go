package internal

import "fmt"

// LexicalError is a malformed token: a character constant that is not exactly one character, an unterminated
// string constant or block comment, or an integer constant out of range.
type LexicalError struct {
	Near string
	Line int
	Msg  string
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("LexicalError: tokenizer error near %s at line %d, msg: %s", e.Near, e.Line, e.Msg)
}

// SyntaxError is an unexpected token where Production required something else. Near is empty when the
// input ended early.
type SyntaxError struct {
	Near       string
	Line       int
	Production string
	Expected   string
}

func (e *SyntaxError) Error() string {
	near := e.Near
	if near == "" {
		near = "end of input"
	}
	return fmt.Sprintf("SyntaxError: syntax error near %s at line %d while parsing %s, expect %s",
		near, e.Line, e.Production, e.Expected)
}

// UndefinedSymbolError is an identifier that neither the subroutine scope nor the class scope defines.
type UndefinedSymbolError struct {
	Name       string
	Line       int
	Production string
}

func (e *UndefinedSymbolError) Error() string {
	return fmt.Sprintf("UndefinedSymbolError: undefined symbol %s at line %d while parsing %s",
		e.Name, e.Line, e.Production)
}

// DuplicateDeclarationError is a name defined twice in the same scope.
type DuplicateDeclarationError struct {
	Name       string
	Line       int
	Scope      string
	Production string
}

func (e *DuplicateDeclarationError) Error() string {
	return fmt.Sprintf("DuplicateDeclarationError: duplicate declaration of %s in %s scope at line %d while parsing %s",
		e.Name, e.Scope, e.Line, e.Production)
}
