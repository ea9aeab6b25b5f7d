package internal

import (
	"bytes"
	"io"
)

// Runtime names the classes providing the primitives compiled code calls into: <Allocator>.alloc,
// <String>.new, <String>.appendChar, <Math>.multiply and <Math>.divide.
type Runtime struct {
	Allocator string
	String    string
	Math      string
}

var DefaultRuntime = Runtime{
	Allocator: "Memory",
	String:    "String",
	Math:      "Math",
}

func (runtime Runtime) withDefaults() Runtime {
	if runtime.Allocator == "" {
		runtime.Allocator = DefaultRuntime.Allocator
	}
	if runtime.String == "" {
		runtime.String = DefaultRuntime.String
	}
	if runtime.Math == "" {
		runtime.Math = DefaultRuntime.Math
	}
	return runtime
}

// Compile translates one jack unit read from rd into vm code. On error nothing is returned, the output of
// a failed compile is never partially valid.
func Compile(rd io.Reader, runtime Runtime) (string, error) {
	buf := &bytes.Buffer{}
	parser := NewParser(NewTokenizer(rd), NewVMWriter(buf), runtime)
	err := parser.Parse()
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
