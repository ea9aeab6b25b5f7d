// Package compiler translates jack source into vm code in a single pass.
package compiler

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/xiaobogaga/hack/compiler/internal"
	"github.com/xiaobogaga/hack/util"
)

const JackExt = ".jack"

type (
	LexicalError              = internal.LexicalError
	SyntaxError               = internal.SyntaxError
	UndefinedSymbolError      = internal.UndefinedSymbolError
	DuplicateDeclarationError = internal.DuplicateDeclarationError
	Runtime                   = internal.Runtime
)

var DefaultRuntime = internal.DefaultRuntime

type Options struct {
	// Runtime names the classes compiled code calls for allocation, strings and multiplication.
	// Empty names fall back to DefaultRuntime.
	Runtime Runtime
}

// Unit is the vm code compiled from one source file.
type Unit struct {
	Source string
	Code   string
}

// Compile translates a single jack unit. Every class of rd is compiled in order.
func Compile(rd io.Reader, options Options) (string, error) {
	return internal.Compile(rd, options.Runtime)
}

func CompileFile(path string, options Options) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	code, err := Compile(f, options)
	if err != nil {
		return "", errors.Wrapf(err, "compile %s", path)
	}
	return code, nil
}

// CompileDir compiles every .jack file of dir in name order, or path itself when it is a file.
// The first failing file stops the compile and no unit is returned.
func CompileDir(path string, options Options) ([]Unit, error) {
	files, err := util.CollectFiles(path, JackExt)
	if err != nil {
		return nil, errors.Wrapf(err, "collect %s", path)
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no %s file found in %s", JackExt, path)
	}
	units := make([]Unit, 0, len(files))
	for _, file := range files {
		code, err := CompileFile(file, options)
		if err != nil {
			return nil, err
		}
		units = append(units, Unit{Source: file, Code: code})
	}
	return units, nil
}
