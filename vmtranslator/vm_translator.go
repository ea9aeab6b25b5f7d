// Package vmtranslator transforms vm code into hack assembler code.
package vmtranslator

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xiaobogaga/hack/util"
)

// There are four kinds of vm commands, they are:
// * Arithmetic commands: add, sub, neg, eq, gt, lt, and, or, not.
// * Memory access commands: push segment index, pop segment index, where segment can be
//   argument, local, static, constant, this, that, pointer, temp.
// * Program flow commands: label name, goto name, if-goto name.
// * Function calling commands: function f k, call f n, return.
//
// Every vm command is one line, a `//` starts a comment running to the end of the line. Keywords are case
// insensitive. For each command the translator writes a fixed template of hack assembler code, which only
// uses SP, LCL, ARG, THIS, THAT, R13 and R14 as scratch, besides the segments themselves.

const VMExt = ".vm"

type KeyWordTP int

const (
	PushKeyWordTP KeyWordTP = iota
	PopKeyWordTP
	ArgumentKeyWordTP
	LocalKeyWordTP
	StaticKeyWordTP
	ConstantKeyWordTP
	ThisKeyWordTP
	ThatKeyWordTP
	PointerKeyWordTP
	TempKeyWordTP
	AddKeyWordTP
	SubKeyWordTP
	NegKeyWordTP
	EqKeyWordTP
	GtKeyWordTP
	LtKeyWordTP
	AndKeyWordTP
	OrKeyWordTP
	NotKeyWordTP
	LabelKeyWordTP
	IfGotoKeyWordTP
	GotoKeyWordTP
	FunctionKeyWordTP
	CallKeyWordTP
	ReturnKeyWordTP
)

var keyWordsMap = map[string]KeyWordTP{
	"PUSH":     PushKeyWordTP,
	"POP":      PopKeyWordTP,
	"ARGUMENT": ArgumentKeyWordTP,
	"LOCAL":    LocalKeyWordTP,
	"STATIC":   StaticKeyWordTP,
	"CONSTANT": ConstantKeyWordTP,
	"THIS":     ThisKeyWordTP,
	"THAT":     ThatKeyWordTP,
	"POINTER":  PointerKeyWordTP,
	"TEMP":     TempKeyWordTP,
	"ADD":      AddKeyWordTP,
	"SUB":      SubKeyWordTP,
	"NEG":      NegKeyWordTP,
	"EQ":       EqKeyWordTP,
	"GT":       GtKeyWordTP,
	"LT":       LtKeyWordTP,
	"AND":      AndKeyWordTP,
	"OR":       OrKeyWordTP,
	"NOT":      NotKeyWordTP,
	"LABEL":    LabelKeyWordTP,
	"IF-GOTO":  IfGotoKeyWordTP,
	"GOTO":     GotoKeyWordTP,
	"FUNCTION": FunctionKeyWordTP,
	"CALL":     CallKeyWordTP,
	"RETURN":   ReturnKeyWordTP,
}

// SyntaxError is a vm line the translator does not understand.
type SyntaxError struct {
	File string
	Line int
	Near string
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("SyntaxError: syntax error near %s at line %d of %s, msg: %s", e.Near, e.Line, e.File, e.Msg)
}

type Options struct {
	// StackBase is the address SP starts from.
	StackBase int
	// Entry is the function the bootstrap code calls.
	Entry string
}

var DefaultOptions = Options{
	StackBase: 256,
	Entry:     "Sys.init",
}

type VMTranslator struct {
	options         Options
	fileName        string
	lineCounter     int
	output          bytes.Buffer
	current         *bytes.Buffer
	labelNameID     int
	callCounters    map[string]int
	currentFunction string
}

func NewVMTranslator(options Options) *VMTranslator {
	if options.StackBase == 0 {
		options.StackBase = DefaultOptions.StackBase
	}
	if options.Entry == "" {
		options.Entry = DefaultOptions.Entry
	}
	return &VMTranslator{
		options:      options,
		callCounters: map[string]int{},
	}
}

// Output returns the assembler code of everything translated so far.
func (translator *VMTranslator) Output() string {
	return translator.output.String()
}

func (translator *VMTranslator) SaveTo(path string) error {
	return errors.Wrapf(os.WriteFile(path, translator.output.Bytes(), 0644), "save %s", path)
}

// WriteBootstrap writes the initialize code of a program:
// SP=256
// call Sys.init 0
// ($InfiniteLoop)
// @$InfiniteLoop
// 0;JMP
func (translator *VMTranslator) WriteBootstrap() {
	buf := &bytes.Buffer{}
	translator.current = buf
	translator.writeAsm(
		"// bootstrap",
		"@"+strconv.Itoa(translator.options.StackBase),
		"D=A",
		"@SP",
		"M=D",
	)
	translator.writeCall(translator.options.Entry, 0)
	translator.writeAsm(
		"($InfiniteLoop)",
		"@$InfiniteLoop",
		"0;JMP",
	)
	translator.output.Write(buf.Bytes())
	translator.current = nil
}

// TranslateDir translates every .vm file of path in name order, or path itself when it is a file.
func (translator *VMTranslator) TranslateDir(path string) error {
	files, err := util.CollectFiles(path, VMExt)
	if err != nil {
		return errors.Wrapf(err, "collect %s", path)
	}
	if len(files) == 0 {
		return errors.Errorf("no %s file found in %s", VMExt, path)
	}
	for _, file := range files {
		err = translator.TranslateFile(file)
		if err != nil {
			return err
		}
	}
	return nil
}

func (translator *VMTranslator) TranslateFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return errors.Wrapf(translator.Translate(path, f), "translate %s", path)
}

// Translate appends the assembler code of one vm file. fileName names the static variables of the file,
// its directory and extension are ignored. When an error is returned, nothing of this file is appended.
func (translator *VMTranslator) Translate(fileName string, rd io.Reader) error {
	translator.fileName = util.TrimExt(filepath.Base(fileName))
	translator.lineCounter = 0
	translator.currentFunction = ""
	buf := &bytes.Buffer{}
	translator.current = buf
	defer func() { translator.current = nil }()
	reader := bufio.NewReader(rd)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return err
		}
		if len(line) > 0 {
			translator.lineCounter++
			parseErr := translator.parseLine(string(line))
			if parseErr != nil {
				return parseErr
			}
		}
		if err == io.EOF {
			break
		}
	}
	translator.output.Write(buf.Bytes())
	return nil
}

func (translator *VMTranslator) parseLine(line string) error {
	if i := strings.Index(line, "//"); i != -1 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	keyWordTP, exist := keyWordsMap[strings.ToUpper(fields[0])]
	if !exist {
		return translator.makeError(fields[0], "unknown command")
	}
	args := fields[1:]
	switch keyWordTP {
	case PushKeyWordTP, PopKeyWordTP:
		return translator.parseMemoryAccess(keyWordTP, args)
	case AddKeyWordTP, SubKeyWordTP, NegKeyWordTP, EqKeyWordTP, GtKeyWordTP, LtKeyWordTP, AndKeyWordTP,
		OrKeyWordTP, NotKeyWordTP:
		err := translator.expectArgs(fields[0], args, 0)
		if err != nil {
			return err
		}
		translator.writeArithmetic(keyWordTP)
	case LabelKeyWordTP, IfGotoKeyWordTP, GotoKeyWordTP:
		return translator.parseProgramFlow(keyWordTP, fields[0], args)
	case FunctionKeyWordTP, CallKeyWordTP:
		return translator.parseFunctionOrCall(keyWordTP, fields[0], args)
	case ReturnKeyWordTP:
		err := translator.expectArgs(fields[0], args, 0)
		if err != nil {
			return err
		}
		translator.writeReturn()
	default:
		return translator.makeError(fields[0], "not a command")
	}
	return nil
}

func (translator *VMTranslator) expectArgs(command string, args []string, n int) error {
	if len(args) < n {
		return translator.makeError(command, fmt.Sprintf("expect %d arguments", n))
	}
	if len(args) > n {
		return translator.makeError(args[n], "unexpected content")
	}
	return nil
}

// push|pop segment index
func (translator *VMTranslator) parseMemoryAccess(opTP KeyWordTP, args []string) error {
	command := "push"
	if opTP == PopKeyWordTP {
		command = "pop"
	}
	err := translator.expectArgs(command, args, 2)
	if err != nil {
		return err
	}
	segment, exist := keyWordsMap[strings.ToUpper(args[0])]
	if !exist || segment < ArgumentKeyWordTP || segment > TempKeyWordTP {
		return translator.makeError(args[0], "unknown segment")
	}
	index, err := translator.getIntegerValue(args[1])
	if err != nil {
		return err
	}
	translator.writeAsm(fmt.Sprintf("// %s %s %d", command, strings.ToLower(args[0]), index))
	switch segment {
	case ArgumentKeyWordTP:
		translator.writeIndirect(opTP, "ARG", index)
	case LocalKeyWordTP:
		translator.writeIndirect(opTP, "LCL", index)
	case ThisKeyWordTP:
		translator.writeIndirect(opTP, "THIS", index)
	case ThatKeyWordTP:
		translator.writeIndirect(opTP, "THAT", index)
	case StaticKeyWordTP:
		translator.writeDirect(opTP, fmt.Sprintf("%s.%d", translator.fileName, index))
	case PointerKeyWordTP:
		if index > 1 {
			return translator.makeError(args[1], "pointer index must be 0 or 1")
		}
		translator.writeDirect(opTP, []string{"THIS", "THAT"}[index])
	case TempKeyWordTP:
		if index > 7 {
			return translator.makeError(args[1], "temp index must be in 0..7")
		}
		translator.writeDirect(opTP, fmt.Sprintf("R%d", 5+index))
	case ConstantKeyWordTP:
		translator.writeConstant(opTP, index)
	}
	return nil
}

func (translator *VMTranslator) getIntegerValue(token string) (int, error) {
	value, err := strconv.Atoi(token)
	if err != nil || value < 0 || value > 32767 {
		return -1, translator.makeError(token, "index must be an integer in 0..32767")
	}
	return value, nil
}

// writeIndirect accesses segment[index] where the segment base is stored at base, which is one of ARG, LCL,
// THIS and THAT.
// // push
// @index
// D=A
// @base
// A=M+D
// D=M
// *SP=D, SP++
// // pop
// @index
// D=A
// @base
// D=M+D
// @R13
// M=D
// SP--, D=*SP
// @R13
// A=M
// M=D
func (translator *VMTranslator) writeIndirect(opTP KeyWordTP, base string, index int) {
	if opTP == PushKeyWordTP {
		translator.writeAsm("@"+strconv.Itoa(index), "D=A", "@"+base, "A=M+D", "D=M")
		translator.writePushD()
		return
	}
	translator.writeAsm("@"+strconv.Itoa(index), "D=A", "@"+base, "D=M+D", "@R13", "M=D")
	translator.writePopD()
	translator.writeAsm("@R13", "A=M", "M=D")
}

// writeDirect accesses a fixed address: a static variable, THIS or THAT for pointer, R5..R12 for temp.
func (translator *VMTranslator) writeDirect(opTP KeyWordTP, symbol string) {
	if opTP == PushKeyWordTP {
		translator.writeAsm("@"+symbol, "D=M")
		translator.writePushD()
		return
	}
	translator.writePopD()
	translator.writeAsm("@"+symbol, "M=D")
}

// Constant segment is virtual. push constant i pushes i, pop constant i just drops the topmost element.
func (translator *VMTranslator) writeConstant(opTP KeyWordTP, value int) {
	if opTP == PushKeyWordTP {
		translator.writeAsm("@"+strconv.Itoa(value), "D=A")
		translator.writePushD()
		return
	}
	translator.writeAsm("@SP", "M=M-1")
}

// writePushD pushes D register to the stack.
func (translator *VMTranslator) writePushD() {
	translator.writeAsm("@SP", "A=M", "M=D", "@SP", "M=M+1")
}

// writePopD pops the topmost element to D register.
func (translator *VMTranslator) writePopD() {
	translator.writeAsm("@SP", "AM=M-1", "D=M")
}

// Binary commands pop y, then combine it into x in place:
// @SP
// AM=M-1
// D=M     // D = y
// A=A-1   // M = x
// M=M+D
// Unary commands rewrite the topmost element in place. eq, gt and lt compare x - y with zero and jump to
// a label unique to this translator to set true (-1) or false (0).
func (translator *VMTranslator) writeArithmetic(opTP KeyWordTP) {
	switch opTP {
	case AddKeyWordTP:
		translator.writeBinary("add", "M=M+D")
	case SubKeyWordTP:
		translator.writeBinary("sub", "M=M-D")
	case AndKeyWordTP:
		translator.writeBinary("and", "M=D&M")
	case OrKeyWordTP:
		translator.writeBinary("or", "M=D|M")
	case NegKeyWordTP:
		translator.writeAsm("// neg", "@SP", "A=M-1", "M=-M")
	case NotKeyWordTP:
		translator.writeAsm("// not", "@SP", "A=M-1", "M=!M")
	case EqKeyWordTP:
		translator.writeCompare("eq", "JEQ")
	case GtKeyWordTP:
		translator.writeCompare("gt", "JGT")
	case LtKeyWordTP:
		translator.writeCompare("lt", "JLT")
	}
}

func (translator *VMTranslator) writeBinary(command string, compute string) {
	translator.writeAsm("// "+command, "@SP", "AM=M-1", "D=M", "A=A-1", compute)
}

func (translator *VMTranslator) writeCompare(command string, jump string) {
	trueLabel := fmt.Sprintf("$set_d_true_%d", translator.labelNameID)
	endLabel := fmt.Sprintf("$jump_to_set_sp_%d", translator.labelNameID)
	translator.labelNameID++
	translator.writeAsm(
		"// "+command,
		"@SP",
		"AM=M-1",
		"D=M",
		"A=A-1",
		"D=M-D",
		"@"+trueLabel,
		"D;"+jump,
		"@SP",
		"A=M-1",
		"M=0",
		"@"+endLabel,
		"0;JMP",
		"("+trueLabel+")",
		"@SP",
		"A=M-1",
		"M=-1",
		"("+endLabel+")",
	)
}

// Labels are scoped by the function they appear in, label l inside f becomes (f$l).
func (translator *VMTranslator) parseProgramFlow(opTP KeyWordTP, command string, args []string) error {
	err := translator.expectArgs(command, args, 1)
	if err != nil {
		return err
	}
	label := args[0]
	if !util.IsSymbol(label) {
		return translator.makeError(label, "incorrect label format")
	}
	scope := translator.currentFunction
	if scope == "" {
		scope = translator.fileName
	}
	symbol := scope + "$" + label
	switch opTP {
	case LabelKeyWordTP:
		translator.writeAsm("// label "+label, "("+symbol+")")
	case GotoKeyWordTP:
		translator.writeAsm("// goto "+label, "@"+symbol, "0;JMP")
	case IfGotoKeyWordTP:
		translator.writeAsm("// if-goto " + label)
		translator.writePopD()
		translator.writeAsm("@"+symbol, "D;JNE")
	}
	return nil
}

// function f k | call f n
func (translator *VMTranslator) parseFunctionOrCall(opTP KeyWordTP, command string, args []string) error {
	err := translator.expectArgs(command, args, 2)
	if err != nil {
		return err
	}
	name := args[0]
	if !util.IsSymbol(name) {
		return translator.makeError(name, "incorrect function name format")
	}
	n, err := translator.getIntegerValue(args[1])
	if err != nil {
		return err
	}
	if opTP == FunctionKeyWordTP {
		translator.writeFunction(name, n)
		return nil
	}
	translator.writeCall(name, n)
	return nil
}

// function f k declares f with k local variables, all of them start as 0.
// (f)
// k times: *SP=0, SP++
func (translator *VMTranslator) writeFunction(name string, localCount int) {
	translator.currentFunction = name
	translator.writeAsm(fmt.Sprintf("// function %s %d", name, localCount), "("+name+")")
	for i := 0; i < localCount; i++ {
		translator.writeAsm("@SP", "A=M", "M=0", "@SP", "M=M+1")
	}
}

// call f n, the n arguments have been pushed to stack.
// push return-address    // (f$ret.i), i counts the calls to f
// push LCL
// push ARG
// push THIS
// push THAT
// ARG=SP-n-5
// LCL=SP
// goto f
// (f$ret.i)
func (translator *VMTranslator) writeCall(name string, argCount int) {
	returnLabel := fmt.Sprintf("%s$ret.%d", name, translator.callCounters[name])
	translator.callCounters[name]++
	translator.writeAsm(fmt.Sprintf("// call %s %d", name, argCount), "@"+returnLabel, "D=A")
	translator.writePushD()
	for _, register := range []string{"LCL", "ARG", "THIS", "THAT"} {
		translator.writeAsm("@"+register, "D=M")
		translator.writePushD()
	}
	translator.writeAsm(
		"@SP",
		"D=M",
		"@"+strconv.Itoa(argCount+5),
		"D=D-A",
		"@ARG",
		"M=D",
		"@SP",
		"D=M",
		"@LCL",
		"M=D",
		"@"+name,
		"0;JMP",
		"("+returnLabel+")",
	)
}

// return puts the return value to where the caller's arguments start and restores the caller's frame.
// FRAME=LCL              // R13
// RET=*(FRAME-5)         // R14
// *ARG=pop()
// SP=ARG+1
// THAT=*(FRAME-1)
// THIS=*(FRAME-2)
// ARG=*(FRAME-3)
// LCL=*(FRAME-4)
// goto RET
func (translator *VMTranslator) writeReturn() {
	translator.writeAsm(
		"// return",
		"@LCL",
		"D=M",
		"@R13",
		"M=D",
		"@5",
		"A=D-A",
		"D=M",
		"@R14",
		"M=D",
	)
	translator.writePopD()
	translator.writeAsm("@ARG", "A=M", "M=D", "@ARG", "D=M+1", "@SP", "M=D")
	for _, register := range []string{"THAT", "THIS", "ARG", "LCL"} {
		translator.writeAsm("@R13", "AM=M-1", "D=M", "@"+register, "M=D")
	}
	translator.writeAsm("@R14", "A=M", "0;JMP")
}

func (translator *VMTranslator) writeAsm(lines ...string) {
	for _, line := range lines {
		translator.current.WriteString(line)
		translator.current.WriteByte('\n')
	}
}

func (translator *VMTranslator) makeError(near string, msg string) error {
	return &SyntaxError{File: translator.fileName, Line: translator.lineCounter, Near: near, Msg: msg}
}
