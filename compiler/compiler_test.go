package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCompile(t *testing.T) {
	code, err := Compile(strings.NewReader("class Main { function void main() { return; } }"), Options{})
	require.NoError(t, err)
	assert.Equal(t, "function Main.main 0\npush constant 0\nreturn\n", code)
}

func TestCompileFile_WrapsError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Main.jack", "class Main {\n function void main() {\n let x = 1;\n }\n}")
	code, err := CompileFile(path, Options{})
	assert.Empty(t, code)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	var undefined *UndefinedSymbolError
	require.True(t, errors.As(err, &undefined))
	assert.Equal(t, "x", undefined.Name)
	assert.Equal(t, 3, undefined.Line)
}

func TestCompileFile_Missing(t *testing.T) {
	_, err := CompileFile(filepath.Join(t.TempDir(), "None.jack"), Options{})
	assert.True(t, os.IsNotExist(errors.Cause(err)))
}

func TestCompileDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Main.jack", "class Main { function void main() { do Ball.new(); return; } }")
	writeFile(t, dir, "Ball.jack", "class Ball { field int x; constructor Ball new() { return this; } }")
	writeFile(t, dir, "notes.txt", "not jack")

	units, err := CompileDir(dir, Options{Runtime: Runtime{Allocator: "Heap"}})
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, filepath.Join(dir, "Ball.jack"), units[0].Source)
	assert.Contains(t, units[0].Code, "call Heap.alloc 1")
	assert.Equal(t, filepath.Join(dir, "Main.jack"), units[1].Source)
	assert.Contains(t, units[1].Code, "call Ball.new 0")
}

func TestCompileDir_StopsAtFirstError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "A.jack", "class A { function void f() { return; } }")
	writeFile(t, dir, "B.jack", "class B { function void f() { return 'xy'; } }")
	units, err := CompileDir(dir, Options{})
	assert.Nil(t, units)
	var lexicalError *LexicalError
	assert.True(t, errors.As(err, &lexicalError))

	_, err = CompileDir(t.TempDir(), Options{})
	assert.Error(t, err)
}
