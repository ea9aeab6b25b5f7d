// Package assembler transforms hack assembler code into hack machine code.
package assembler

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xiaobogaga/hack/util"
)

// A two pass assembler. The first pass walks the lines, encodes every constant and C instruction, and
// remembers the instruction address of each (label). The second pass resolves the @symbol instructions,
// because a label can be referenced before it is declared.
//
// An A instruction @something has those types:
// * @10 (decimal value in 0..32767), put this value to the A register.
// * @R[0-15], SP, LCL, ..., a predefined symbol.
// * @label, the instruction address of (label).
// * @variable, any other symbol. Each new variable gets the next data memory address starting from 16.

const (
	AsmExt     = ".asm"
	HackExt    = ".hack"
	ListingExt = ".lst"

	firstVariableAddr = 16
	maxConstant       = 32767
)

var predefinedVariables = map[string]int{
	"SP":     0,
	"LCL":    1,
	"ARG":    2,
	"THIS":   3,
	"THAT":   4,
	"R0":     0,
	"R1":     1,
	"R2":     2,
	"R3":     3,
	"R4":     4,
	"R5":     5,
	"R6":     6,
	"R7":     7,
	"R8":     8,
	"R9":     9,
	"R10":    10,
	"R11":    11,
	"R12":    12,
	"R13":    13,
	"R14":    14,
	"R15":    15,
	"SCREEN": 16384,
	"KBD":    24576,
}

var cCommandCompMap = map[string]string{
	"0":   "0101010",
	"1":   "0111111",
	"-1":  "0111010",
	"D":   "0001100",
	"A":   "0110000",
	"!D":  "0001101",
	"!A":  "0110001",
	"-D":  "0001111",
	"-A":  "0110011",
	"D+1": "0011111",
	"1+D": "0011111",
	"A+1": "0110111",
	"1+A": "0110111",
	"D-1": "0001110",
	"A-1": "0110010",
	"D+A": "0000010",
	"A+D": "0000010",
	"D-A": "0010011",
	"A-D": "0000111",
	"D&A": "0000000",
	"A&D": "0000000",
	"D|A": "0010101",
	"A|D": "0010101",
	"M":   "1110000",
	"!M":  "1110001",
	"-M":  "1110011",
	"M+1": "1110111",
	"1+M": "1110111",
	"M-1": "1110010",
	"D+M": "1000010",
	"M+D": "1000010",
	"D-M": "1010011",
	"M-D": "1000111",
	"D&M": "1000000",
	"M&D": "1000000",
	"D|M": "1010101",
	"M|D": "1010101",
}

var cCommandDestMap = map[string]string{
	"M":   "001",
	"D":   "010",
	"MD":  "011",
	"DM":  "011",
	"A":   "100",
	"AM":  "101",
	"MA":  "101",
	"AD":  "110",
	"DA":  "110",
	"AMD": "111",
	"ADM": "111",
	"DAM": "111",
	"DMA": "111",
	"MAD": "111",
	"MDA": "111",
}

var cCommandJumpMap = map[string]string{
	"JGT": "001",
	"JEQ": "010",
	"JGE": "011",
	"JLT": "100",
	"JNE": "101",
	"JLE": "110",
	"JMP": "111",
}

// SyntaxError is an assembler line which cannot be encoded.
type SyntaxError struct {
	Line int
	Near string
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("SyntaxError: syntax error near %s at line %d, msg: %s", e.Near, e.Line, e.Msg)
}

type CommandType int

const (
	ACommand_Constant CommandType = iota
	ACommand_Label
	ACommand_Variable
	CCommand
)

// Command is one machine instruction: its 16 bit binary code and the source it is encoded from.
type Command struct {
	Tp              CommandType
	Code            string
	Line            int
	OriginalContent string
}

func (command Command) String() string {
	return fmt.Sprintf("Command: {Tp: %d, Code: %s, Line: %d, OriginalContent: %s}", command.Tp, command.Code,
		command.Line, command.OriginalContent)
}

type symbolLocation struct {
	symbol string
	index  int
}

// Assembler assembles one program. Create a new one for every program.
type Assembler struct {
	line                   int
	currentInstructionAddr int
	nextVariableAddr       int
	symbols                map[string]int
	labelLocationMap       map[string]int
	symbolLocations        []symbolLocation
	commands               []Command
}

// NewAssembler creates an assembler knowing the predefined symbols plus extraSymbols, which can add memory
// mapped devices or override a predefined address.
func NewAssembler(extraSymbols map[string]int) *Assembler {
	symbols := make(map[string]int, len(predefinedVariables)+len(extraSymbols))
	for name, addr := range predefinedVariables {
		symbols[name] = addr
	}
	for name, addr := range extraSymbols {
		symbols[name] = addr
	}
	return &Assembler{
		nextVariableAddr: firstVariableAddr,
		symbols:          symbols,
		labelLocationMap: map[string]int{},
	}
}

// Assemble parses the input source which is a sequence of assembler code, and transforms them into a
// sequence of binary code supported by the hack computer. Each returned command is a machine instruction.
func (asm *Assembler) Assemble(rd io.Reader) ([]Command, error) {
	bfReader := bufio.NewReader(rd)
	for {
		line, err := bfReader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if len(line) > 0 {
			asm.line++
			if trimmed, ok := asm.trimLine(line); ok {
				transformErr := asm.transformLine(trimmed)
				if transformErr != nil {
					asm.commands = nil
					return nil, transformErr
				}
			}
		}
		if err == io.EOF {
			break
		}
	}
	asm.updateLabelOrVariableMap()
	return asm.commands, nil
}

// updateLabelOrVariableMap resolves the @label or @variable commands. Those commands point to an address
// we don't know before all labels declaration are parsed.
func (asm *Assembler) updateLabelOrVariableMap() {
	for _, location := range asm.symbolLocations {
		command := &asm.commands[location.index]
		if labelAddr, exist := asm.labelLocationMap[location.symbol]; exist {
			command.Tp = ACommand_Label
			command.Code = formatCode(labelAddr)
			continue
		}
		variableAddr, exist := asm.symbols[location.symbol]
		if !exist {
			variableAddr = asm.nextVariableAddr
			asm.symbols[location.symbol] = variableAddr
			asm.nextVariableAddr++
		}
		command.Tp = ACommand_Variable
		command.Code = formatCode(variableAddr)
	}
	asm.symbolLocations = nil
}

// trimLine removes comments and spaces, then returns whether the line has other characters left.
func (asm *Assembler) trimLine(line []byte) ([]byte, bool) {
	if index := bytes.Index(line, []byte("//")); index != -1 {
		line = line[:index]
	}
	line = bytes.TrimSpace(line)
	return line, len(line) > 0
}

func (asm *Assembler) transformLine(line []byte) error {
	switch line[0] {
	case '@':
		return asm.transformACommand(line)
	case '(':
		return asm.transformLabelCommand(line)
	default:
		return asm.transformCCommand(line)
	}
}

func (asm *Assembler) transformACommand(line []byte) error {
	value := string(line[1:])
	if len(value) > 0 && (util.IsNumber(value[0]) || value[0] == '-') {
		return asm.transformADecimalCommand(line)
	}
	if addr, exist := asm.symbols[value]; exist {
		asm.appendCommand(ACommand_Variable, formatCode(addr), line)
		return nil
	}
	if !util.IsSymbol(value) {
		return asm.makeSyntaxErr(string(line), "wrong variable or label format")
	}
	// A placeholder, the second pass fills the code.
	asm.symbolLocations = append(asm.symbolLocations, symbolLocation{symbol: value, index: len(asm.commands)})
	asm.appendCommand(ACommand_Label, value, line)
	return nil
}

func (asm *Assembler) transformADecimalCommand(line []byte) error {
	value, err := strconv.Atoi(string(line[1:]))
	if err != nil {
		return asm.makeSyntaxErr(string(line), "wrong decimal value format")
	}
	if value < 0 || value > maxConstant {
		return asm.makeSyntaxErr(string(line), "constant out of range 0..32767")
	}
	asm.appendCommand(ACommand_Constant, formatCode(value), line)
	return nil
}

// transformLabelCommand records (label) at the address of the next instruction. A label takes no
// instruction itself.
func (asm *Assembler) transformLabelCommand(line []byte) error {
	if line[len(line)-1] != ')' {
		return asm.makeSyntaxErr(string(line), "wrong label format")
	}
	// We dont allow a label contains space. for example, ( hello ) is not allowed.
	label := string(line[1 : len(line)-1])
	if !util.IsSymbol(label) {
		return asm.makeSyntaxErr(string(line), "wrong label format")
	}
	if _, exist := asm.labelLocationMap[label]; exist {
		return asm.makeSyntaxErr(string(line), "found duplicate label")
	}
	asm.labelLocationMap[label] = asm.currentInstructionAddr
	return nil
}

// transformCCommand encodes dest=comp;jump, where both dest= and ;jump are optional, as 111 a cccccc ddd jjj.
func (asm *Assembler) transformCCommand(line []byte) error {
	content := strings.ReplaceAll(string(line), " ", "")
	destCodeStr, content, err := asm.parseCCommandDestCode(content)
	if err != nil {
		return err
	}
	jumpCodeStr, content, err := asm.parseCCommandJumpCode(content)
	if err != nil {
		return err
	}
	compCodeStr, exist := cCommandCompMap[content]
	if !exist {
		return asm.makeSyntaxErr(content, "wrong c command of comp code format")
	}
	asm.appendCommand(CCommand, "111"+compCodeStr+destCodeStr+jumpCodeStr, line)
	return nil
}

func (asm *Assembler) parseCCommandDestCode(content string) (string, string, error) {
	dest := strings.IndexByte(content, '=')
	if dest == -1 {
		return "000", content, nil
	}
	destCodeStr, exist := cCommandDestMap[content[:dest]]
	if !exist {
		return "", "", asm.makeSyntaxErr(content[:dest], "wrong c command of dest code format")
	}
	return destCodeStr, content[dest+1:], nil
}

func (asm *Assembler) parseCCommandJumpCode(content string) (string, string, error) {
	jump := strings.IndexByte(content, ';')
	if jump == -1 {
		return "000", content, nil
	}
	jumpCodeStr, exist := cCommandJumpMap[content[jump+1:]]
	if !exist {
		return "", "", asm.makeSyntaxErr(content[jump+1:], "wrong c command of jump code format")
	}
	return jumpCodeStr, content[:jump], nil
}

func (asm *Assembler) appendCommand(tp CommandType, code string, line []byte) {
	asm.commands = append(asm.commands, Command{
		Tp:              tp,
		Code:            code,
		Line:            asm.line,
		OriginalContent: string(line),
	})
	asm.currentInstructionAddr++
}

// formatCode transfers the addr to a 16 bit binary code.
func formatCode(addr int) string {
	return fmt.Sprintf("%016b", uint16(addr))
}

func (asm *Assembler) makeSyntaxErr(near string, msg string) error {
	return &SyntaxError{Line: asm.line, Near: near, Msg: msg}
}

// MachineCode is one binary instruction per line, the content of a .hack file.
func (asm *Assembler) MachineCode() string {
	bf := bytes.Buffer{}
	for _, command := range asm.commands {
		bf.WriteString(command.Code)
		bf.WriteByte('\n')
	}
	return bf.String()
}

// Listing shows every instruction as binary, hex and the assembler source it comes from.
func (asm *Assembler) Listing() string {
	bf := bytes.Buffer{}
	for _, command := range asm.commands {
		value, _ := strconv.ParseUint(command.Code, 2, 16)
		bf.WriteString(fmt.Sprintf("%s %04X %s\n", command.Code, value, command.OriginalContent))
	}
	return bf.String()
}

func (asm *Assembler) SaveTo(path string) error {
	return errors.Wrapf(os.WriteFile(path, []byte(asm.MachineCode()), 0644), "save %s", path)
}

func (asm *Assembler) SaveListingTo(path string) error {
	return errors.Wrapf(os.WriteFile(path, []byte(asm.Listing()), 0644), "save %s", path)
}
