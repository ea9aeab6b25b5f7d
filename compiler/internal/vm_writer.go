package internal

import (
	"fmt"
	"io"
)

// Segment is a named storage region of the stack machine.
type Segment string

const (
	ConstantSegment Segment = "constant"
	ArgumentSegment Segment = "argument"
	LocalSegment    Segment = "local"
	StaticSegment   Segment = "static"
	ThisSegment     Segment = "this"
	ThatSegment     Segment = "that"
	PointerSegment  Segment = "pointer"
	TempSegment     Segment = "temp"
)

// ArithmeticOp is one of the nine stack arithmetic and logic commands.
type ArithmeticOp int

const (
	AddOp ArithmeticOp = iota
	SubOp
	NegOp
	EqOp
	GtOp
	LtOp
	AndOp
	OrOp
	NotOp
)

func (op ArithmeticOp) String() string {
	switch op {
	case AddOp:
		return "add"
	case SubOp:
		return "sub"
	case NegOp:
		return "neg"
	case EqOp:
		return "eq"
	case GtOp:
		return "gt"
	case LtOp:
		return "lt"
	case AndOp:
		return "and"
	case OrOp:
		return "or"
	case NotOp:
		return "not"
	}
	return ""
}

// VMWriter appends intermediate code, one instruction per line, in the exact order it is called.
// The first write error sticks and later writes are dropped, Err reports it.
type VMWriter struct {
	writer   io.Writer
	uniqueID int
	err      error
}

func NewVMWriter(writer io.Writer) *VMWriter {
	return &VMWriter{writer: writer}
}

// NextUniqueID returns 0, 1, 2... Control flow labels of one compiled unit are built from it.
func (w *VMWriter) NextUniqueID() int {
	id := w.uniqueID
	w.uniqueID++
	return id
}

func (w *VMWriter) WritePush(segment Segment, index int) {
	w.writeOutput(fmt.Sprintf("push %s %d", segment, index))
}

func (w *VMWriter) WritePop(segment Segment, index int) {
	w.writeOutput(fmt.Sprintf("pop %s %d", segment, index))
}

func (w *VMWriter) WriteArithmetic(op ArithmeticOp) {
	w.writeOutput(op.String())
}

func (w *VMWriter) WriteLabel(label string) {
	w.writeOutput("label " + label)
}

func (w *VMWriter) WriteGoto(label string) {
	w.writeOutput("goto " + label)
}

func (w *VMWriter) WriteIfGoto(label string) {
	w.writeOutput("if-goto " + label)
}

func (w *VMWriter) WriteCall(name string, argCount int) {
	w.writeOutput(fmt.Sprintf("call %s %d", name, argCount))
}

func (w *VMWriter) WriteFunction(name string, localCount int) {
	w.writeOutput(fmt.Sprintf("function %s %d", name, localCount))
}

func (w *VMWriter) WriteReturn() {
	w.writeOutput("return")
}

func (w *VMWriter) Err() error {
	return w.err
}

func (w *VMWriter) writeOutput(output string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.writer, output+"\n")
}
