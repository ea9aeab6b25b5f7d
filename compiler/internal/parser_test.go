package internal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileString(content string) (string, error) {
	return Compile(strings.NewReader(content), DefaultRuntime)
}

func vmLines(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func TestParser_Compile(t *testing.T) {
	testData := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:    "empty function",
			content: "class Main { function void main() { return; } }",
			expected: vmLines(
				"function Main.main 0",
				"push constant 0",
				"return",
			),
		},
		{
			name:    "let local",
			content: "class Main { function void main() { var int x; let x = 1 + 2; return; } }",
			expected: vmLines(
				"function Main.main 1",
				"push constant 1",
				"push constant 2",
				"add",
				"pop local 0",
				"push constant 0",
				"return",
			),
		},
		{
			name: "constructor and method",
			content: `
class Point {
    field int x, y;
    static int count;

    constructor Point new(int ax, int ay) {
        let x = ax;
        let y = ay;
        let count = count + 1;
        return this;
    }

    method int getX() { return x; }
}`,
			expected: vmLines(
				"function Point.new 0",
				"push constant 2",
				"call Memory.alloc 1",
				"pop pointer 0",
				"push argument 0",
				"pop this 0",
				"push argument 1",
				"pop this 1",
				"push static 0",
				"push constant 1",
				"add",
				"pop static 0",
				"push pointer 0",
				"return",
				"function Point.getX 0",
				"push argument 0",
				"pop pointer 0",
				"push this 0",
				"return",
			),
		},
		{
			name: "method arguments start after this",
			content: `class Counter {
    method void add(int n, int m) { var int t, u; var boolean b; let u = m; return; }
}`,
			expected: vmLines(
				"function Counter.add 3",
				"push argument 0",
				"pop pointer 0",
				"push argument 2",
				"pop local 1",
				"push constant 0",
				"return",
			),
		},
		{
			name: "if while labels",
			content: `class Main {
    function void f(int n) {
        if (n) { let n = 1; } else { let n = 2; }
        while (n) { let n = n - 1; }
        if (n) { }
        return;
    }
}`,
			expected: vmLines(
				"function Main.f 0",
				"push argument 0",
				"not",
				"if-goto IF_ELSE0",
				"push constant 1",
				"pop argument 0",
				"goto IF_END0",
				"label IF_ELSE0",
				"push constant 2",
				"pop argument 0",
				"label IF_END0",
				"label WHILE_EXP1",
				"push argument 0",
				"not",
				"if-goto WHILE_END1",
				"push argument 0",
				"push constant 1",
				"sub",
				"pop argument 0",
				"goto WHILE_EXP1",
				"label WHILE_END1",
				"push argument 0",
				"not",
				"if-goto IF_ELSE2",
				"goto IF_END2",
				"label IF_ELSE2",
				"label IF_END2",
				"push constant 0",
				"return",
			),
		},
		{
			name:    "no precedence",
			content: "class Main { function int f() { return 1 + 2 * 3 - 4 / 2; } }",
			expected: vmLines(
				"function Main.f 0",
				"push constant 1",
				"push constant 2",
				"add",
				"push constant 3",
				"call Math.multiply 2",
				"push constant 4",
				"sub",
				"push constant 2",
				"call Math.divide 2",
				"return",
			),
		},
		{
			name: "keyword constants and unary",
			content: `class Main {
    function boolean f(int y) {
        var boolean b;
        let b = true;
        let b = false | null;
        let y = -y;
        let b = ~(y < 1) & (y > 2) = b;
        return b;
    }
}`,
			expected: vmLines(
				"function Main.f 1",
				"push constant 1",
				"neg",
				"pop local 0",
				"push constant 0",
				"push constant 0",
				"or",
				"pop local 0",
				"push argument 0",
				"neg",
				"pop argument 0",
				"push argument 0",
				"push constant 1",
				"lt",
				"not",
				"push argument 0",
				"push constant 2",
				"gt",
				"and",
				"push local 0",
				"eq",
				"pop local 0",
				"push local 0",
				"return",
			),
		},
		{
			name:    "string and char constants",
			content: `class Main { function void f() { do Output.printString("Hi"); do Output.printChar('A'); return; } }`,
			expected: vmLines(
				"function Main.f 0",
				"push constant 2",
				"call String.new 1",
				"push constant 72",
				"call String.appendChar 2",
				"push constant 105",
				"call String.appendChar 2",
				"call Output.printString 1",
				"pop temp 0",
				"push constant 65",
				"call Output.printChar 1",
				"pop temp 0",
				"push constant 0",
				"return",
			),
		},
		{
			name:    "array access",
			content: "class Main { function void f() { var Array a, b; var int i, j; let a[i] = b[j]; return; } }",
			expected: vmLines(
				"function Main.f 4",
				"push local 0",
				"push local 2",
				"add",
				"push local 1",
				"push local 3",
				"add",
				"pop pointer 1",
				"push that 0",
				"pop temp 0",
				"pop pointer 1",
				"push temp 0",
				"pop that 0",
				"push constant 0",
				"return",
			),
		},
		{
			name: "subroutine calls",
			content: `class Game {
    field Ball ball;
    method void run() {
        var Ball b;
        do ball.move(1);
        do b.bounce();
        do draw(2, 3);
        do Output.printInt(4);
        let b = Ball.new();
        return;
    }
}`,
			expected: vmLines(
				"function Game.run 1",
				"push argument 0",
				"pop pointer 0",
				"push this 0",
				"push constant 1",
				"call Ball.move 2",
				"pop temp 0",
				"push local 0",
				"call Ball.bounce 1",
				"pop temp 0",
				"push pointer 0",
				"push constant 2",
				"push constant 3",
				"call Game.draw 3",
				"pop temp 0",
				"push constant 4",
				"call Output.printInt 1",
				"pop temp 0",
				"call Ball.new 0",
				"pop local 0",
				"push constant 0",
				"return",
			),
		},
		{
			name: "local shadows field",
			content: `class A {
    field int x;
    method int f() { var int x; let x = 5; return x; }
}`,
			expected: vmLines(
				"function A.f 1",
				"push argument 0",
				"pop pointer 0",
				"push constant 5",
				"pop local 0",
				"push local 0",
				"return",
			),
		},
		{
			name: "several classes in one unit",
			content: `class A { static int s; function void f() { let s = 1; if (s) { } return; } }
class B { static int t, u; function void g() { let u = 2; while (u) { } return; } }`,
			expected: vmLines(
				"function A.f 0",
				"push constant 1",
				"pop static 0",
				"push static 0",
				"not",
				"if-goto IF_ELSE0",
				"goto IF_END0",
				"label IF_ELSE0",
				"label IF_END0",
				"push constant 0",
				"return",
				"function B.g 0",
				"push constant 2",
				"pop static 1",
				"label WHILE_EXP1",
				"push static 1",
				"not",
				"if-goto WHILE_END1",
				"goto WHILE_EXP1",
				"label WHILE_END1",
				"push constant 0",
				"return",
			),
		},
		{
			name:     "empty input",
			content:  "// nothing here\n",
			expected: "",
		},
	}
	for _, data := range testData {
		output, err := compileString(data.content)
		require.NoError(t, err, data.name)
		assert.Equal(t, data.expected, output, data.name)
	}
}

func TestParser_ConstructorPrologue(t *testing.T) {
	content := `class Big {
    field int a, b, c;
    field Array d;
    static int s;
    constructor Big new() { do Output.println(); return this; }
}`
	output, err := compileString(content)
	require.NoError(t, err)
	lines := strings.Split(output, "\n")
	assert.Equal(t, []string{
		"function Big.new 0",
		"push constant 4",
		"call Memory.alloc 1",
		"pop pointer 0",
		"call Output.println 0",
	}, lines[:5])
}

func TestParser_CustomRuntime(t *testing.T) {
	content := `class P { field int x; constructor P new() { var String s; let s = "a"; let x = x * 2; return this; } }`
	output, err := Compile(strings.NewReader(content), Runtime{Allocator: "Heap", String: "Str"})
	require.NoError(t, err)
	assert.Contains(t, output, "call Heap.alloc 1\n")
	assert.Contains(t, output, "call Str.new 1\n")
	assert.Contains(t, output, "call Str.appendChar 2\n")
	assert.Contains(t, output, "call Math.multiply 2\n")
}

func TestParser_IndependentCompiles(t *testing.T) {
	content := "class Main { function void f() { while (true) { } return; } }"
	first, err := compileString(content)
	require.NoError(t, err)
	second, err := compileString(content)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, second, "label WHILE_EXP0\n")
}

func TestParser_SyntaxError(t *testing.T) {
	testData := []struct {
		content    string
		near       string
		line       int
		production string
	}{
		{content: "function void f() { return; }", near: "function", line: 1, production: "file"},
		{content: "class Main {\n function void f() {\n return\n }\n}", near: "}", line: 4, production: "term"},
		{content: "class Main {", near: "", line: 1, production: "class"},
		{content: "class Main { field int x y; }", near: "y", line: 1, production: "classVarDec"},
		{content: "class Main { function f() { return; } }", near: "(", line: 1, production: "subroutineDec"},
		{content: "class Main { function 1 f() { return; } }", near: "1", line: 1, production: "subroutineDec"},
		{content: "class Main { function void f(int) { return; } }", near: ")", line: 1, production: "parameterList"},
		{content: "class Main { function void f() { var int x; let x 1; return; } }", near: "1", line: 1, production: "letStatement"},
		{content: "class Main { function void f() { if 1 { } return; } }", near: "1", line: 1, production: "ifStatement"},
		{content: "class Main { function void f() { do Output; return; } }", near: ";", line: 1, production: "subroutineCall"},
		{content: "class Main { function void f() { do g(1 2); return; } }", near: "2", line: 1, production: "expressionList"},
		{content: "class Main { function void f() { return; } } let", near: "let", line: 1, production: "file"},
	}
	for _, data := range testData {
		output, err := compileString(data.content)
		var syntaxError *SyntaxError
		require.ErrorAs(t, err, &syntaxError, data.content)
		assert.Equal(t, data.near, syntaxError.Near, data.content)
		assert.Equal(t, data.line, syntaxError.Line, data.content)
		assert.Equal(t, data.production, syntaxError.Production, data.content)
		assert.Empty(t, output)
	}
}

func TestParser_UndefinedSymbol(t *testing.T) {
	testData := []struct {
		content    string
		name       string
		line       int
		production string
	}{
		{content: "class Main { function void f() { let y = 1; return; } }", name: "y", line: 1, production: "letStatement"},
		{content: "class Main {\n function int f() {\n return z + 1;\n }\n}", name: "z", line: 3, production: "term"},
		{content: "class Main { function int f() { return a[0]; } }", name: "a", line: 1, production: "term"},
	}
	for _, data := range testData {
		output, err := compileString(data.content)
		var undefined *UndefinedSymbolError
		require.ErrorAs(t, err, &undefined, data.content)
		assert.Equal(t, data.name, undefined.Name)
		assert.Equal(t, data.line, undefined.Line)
		assert.Equal(t, data.production, undefined.Production)
		assert.Empty(t, output)
	}
}

func TestParser_DuplicateDeclaration(t *testing.T) {
	testData := []struct {
		content    string
		name       string
		line       int
		scope      string
		production string
	}{
		{content: "class A {\n field int x;\n static char x;\n}", name: "x", line: 3, scope: "class", production: "classVarDec"},
		{content: "class A {\n function void f(int a) {\n var int a;\n return;\n }\n}", name: "a", line: 3, scope: "subroutine", production: "varDec"},
		{content: "class A { function void f() { var int b, b; return; } }", name: "b", line: 1, scope: "subroutine", production: "varDec"},
		{content: "class A {\n method void f(int a,\n char a) { return; }\n}", name: "a", line: 3, scope: "subroutine", production: "parameterList"},
	}
	for _, data := range testData {
		_, err := compileString(data.content)
		var duplicate *DuplicateDeclarationError
		require.ErrorAs(t, err, &duplicate, data.content)
		assert.Equal(t, data.name, duplicate.Name)
		assert.Equal(t, data.line, duplicate.Line)
		assert.Equal(t, data.scope, duplicate.Scope)
		assert.Equal(t, data.production, duplicate.Production)
	}
}

func TestParser_LexicalError(t *testing.T) {
	testData := []struct {
		content string
		near    string
	}{
		{content: "class Main { function char f() { return 'ab'; } }", near: "'ab'"},
		{content: "class Main { function void f() { do Output.printString(\"\U0001F600\"); return; } }", near: "\"\U0001F600\""},
		{content: "class Main { function void f() { do Output.printString(\"\xc3\"); return; } }", near: "\"\xc3\""},
	}
	for _, data := range testData {
		output, err := compileString(data.content)
		var lexicalError *LexicalError
		require.ErrorAs(t, err, &lexicalError, data.content)
		assert.Equal(t, data.near, lexicalError.Near, data.content)
		assert.Empty(t, output, data.content)
	}
}

func TestParser_WideCharacters(t *testing.T) {
	output, err := compileString("class Main { function void f() { var char c; let c = '\u00e9'; do Output.printString(\"\u00e9\u7fff\"); return; } }")
	require.NoError(t, err)
	assert.Equal(t, vmLines(
		"function Main.f 1",
		"push constant 233",
		"pop local 0",
		"push constant 2",
		"call String.new 1",
		"push constant 233",
		"call String.appendChar 2",
		"push constant 32767",
		"call String.appendChar 2",
		"call Output.printString 1",
		"pop temp 0",
		"push constant 0",
		"return",
	), output)
}

func TestParser_IdentifierRuns(t *testing.T) {
	output, err := compileString("class Main { function void f() { var int x$1, n#2; let x$1 = 0; return; } }")
	require.NoError(t, err)
	assert.Equal(t, vmLines(
		"function Main.f 2",
		"push constant 0",
		"pop local 0",
		"push constant 0",
		"return",
	), output)
}
