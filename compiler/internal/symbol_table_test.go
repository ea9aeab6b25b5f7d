package internal

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_IndexByKind(t *testing.T) {
	scope := NewScope("class")
	kinds := []SymbolKind{StaticKind, FieldKind, FieldKind, StaticKind, FieldKind}
	expectedIndex := []int{0, 0, 1, 1, 2}
	for i, kind := range kinds {
		symbol, err := scope.Define(fmt.Sprintf("v%d", i), "int", kind)
		require.NoError(t, err)
		assert.Equal(t, expectedIndex[i], symbol.Index)
	}
	assert.Equal(t, 2, scope.CountByKind(StaticKind))
	assert.Equal(t, 3, scope.CountByKind(FieldKind))
	assert.Equal(t, 0, scope.CountByKind(LocalKind))
	require.Len(t, scope.Symbols(), 5)
	assert.Equal(t, "v3", scope.Symbols()[3].Name)
}

func TestScope_IndicesAreContiguous(t *testing.T) {
	for _, kind := range []SymbolKind{StaticKind, FieldKind, ArgumentKind, LocalKind} {
		scope := NewScope("subroutine")
		for i := 0; i < 50; i++ {
			symbol, err := scope.Define(fmt.Sprintf("n%d", i), "int", kind)
			require.NoError(t, err)
			assert.Equal(t, i, symbol.Index, kind.String())
		}
		assert.Equal(t, 50, scope.CountByKind(kind))
	}
}

func TestScope_DuplicateDeclaration(t *testing.T) {
	scope := NewScope("subroutine")
	_, err := scope.Define("x", "int", LocalKind)
	require.NoError(t, err)
	_, err = scope.Define("x", "char", ArgumentKind)
	var duplicate *DuplicateDeclarationError
	require.ErrorAs(t, err, &duplicate)
	assert.Equal(t, "x", duplicate.Name)
	assert.Equal(t, "subroutine", duplicate.Scope)
	// the failed define takes no index
	assert.Equal(t, 0, scope.CountByKind(ArgumentKind))
	symbol, ok := scope.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "int", symbol.DeclaredType)
}

func TestSymbolTable_Shadowing(t *testing.T) {
	table := NewSymbolTable()
	table.StartClass()
	_, err := table.Define("x", "int", FieldKind)
	require.NoError(t, err)
	_, err = table.Define("y", "Point", StaticKind)
	require.NoError(t, err)

	table.StartSubroutine()
	_, err = table.Define("x", "boolean", LocalKind)
	require.NoError(t, err)

	kind, ok := table.KindOf("x")
	require.True(t, ok)
	assert.Equal(t, LocalKind, kind)
	tp, _ := table.TypeOf("x")
	assert.Equal(t, "boolean", tp)
	kind, _ = table.KindOf("y")
	assert.Equal(t, StaticKind, kind)

	// a new subroutine sees the class member again
	table.StartSubroutine()
	kind, ok = table.KindOf("x")
	require.True(t, ok)
	assert.Equal(t, FieldKind, kind)
	index, _ := table.IndexOf("x")
	assert.Equal(t, 0, index)

	table.StartClass()
	_, ok = table.Lookup("x")
	assert.False(t, ok)
	_, ok = table.IndexOf("y")
	assert.False(t, ok)
}

func TestSymbolTable_DefinePicksScope(t *testing.T) {
	table := NewSymbolTable()
	table.StartClass()
	table.StartSubroutine()
	for _, data := range []struct {
		name string
		kind SymbolKind
	}{
		{"s", StaticKind}, {"f", FieldKind}, {"a", ArgumentKind}, {"l", LocalKind},
	} {
		_, err := table.Define(data.name, "int", data.kind)
		require.NoError(t, err)
	}
	assert.Len(t, table.ClassScope().Symbols(), 2)
	assert.Len(t, table.SubroutineScope().Symbols(), 2)
}

func TestSymbolKind_Segment(t *testing.T) {
	assert.Equal(t, StaticSegment, StaticKind.Segment())
	assert.Equal(t, ThisSegment, FieldKind.Segment())
	assert.Equal(t, ArgumentSegment, ArgumentKind.Segment())
	assert.Equal(t, LocalSegment, LocalKind.Segment())
}
