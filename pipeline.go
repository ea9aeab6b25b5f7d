package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/xiaobogaga/hack/assembler"
	"github.com/xiaobogaga/hack/compiler"
	"github.com/xiaobogaga/hack/config"
	"github.com/xiaobogaga/hack/util"
	"github.com/xiaobogaga/hack/vmtranslator"
)

// Step is one stage of the toolchain. A pipeline runs consecutive steps, each consuming what the previous
// one produced: jack -> vm -> asm -> hack.
type Step int

const (
	CompileStep Step = iota
	TranslateStep
	AssembleStep
)

var stepNames = map[string]Step{
	"compile":   CompileStep,
	"translate": TranslateStep,
	"assemble":  AssembleStep,
}

func (step Step) String() string {
	switch step {
	case CompileStep:
		return "compile"
	case TranslateStep:
		return "translate"
	case AssembleStep:
		return "assemble"
	}
	return ""
}

// ParseSteps parses a comma separated list like "compile,translate". Steps must follow each other in
// toolchain order.
func ParseSteps(list string) ([]Step, error) {
	var steps []Step
	for _, name := range strings.Split(list, ",") {
		step, ok := stepNames[strings.TrimSpace(strings.ToLower(name))]
		if !ok {
			return nil, errors.Errorf("unknown step %q", name)
		}
		if len(steps) > 0 && step != steps[len(steps)-1]+1 {
			return nil, errors.Errorf("step %s cannot follow %s", step, steps[len(steps)-1])
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// Artifact is one output file of a step.
type Artifact struct {
	Path string
	Text string
}

type Pipeline struct {
	Config    config.Config
	Bootstrap bool
	Verbose   bool
}

func NewPipeline(conf config.Config) *Pipeline {
	return &Pipeline{Config: conf, Bootstrap: conf.Translator.Bootstrap}
}

// Run feeds input, a file or a directory, through steps in memory and returns what the last step produced.
// Nothing is written.
func (p *Pipeline) Run(steps []Step, input string) ([]Artifact, error) {
	var artifacts []Artifact
	var err error
	for i, step := range steps {
		p.logf("%s %s", step, input)
		switch step {
		case CompileStep:
			artifacts, err = p.compile(input)
		case TranslateStep:
			artifacts, err = p.translate(input, artifacts, i == 0)
		case AssembleStep:
			artifacts, err = p.assemble(input, artifacts, i == 0)
		}
		if err != nil {
			return nil, err
		}
	}
	return artifacts, nil
}

func (p *Pipeline) compile(input string) ([]Artifact, error) {
	options := compiler.Options{Runtime: compiler.Runtime{
		Allocator: p.Config.Runtime.Allocator,
		String:    p.Config.Runtime.String,
		Math:      p.Config.Runtime.Math,
	}}
	units, err := compiler.CompileDir(input, options)
	if err != nil {
		return nil, err
	}
	artifacts := make([]Artifact, 0, len(units))
	for _, unit := range units {
		artifacts = append(artifacts, Artifact{Path: util.TrimExt(unit.Source) + vmtranslator.VMExt, Text: unit.Code})
	}
	return artifacts, nil
}

func (p *Pipeline) translate(input string, vmFiles []Artifact, fromDisk bool) ([]Artifact, error) {
	output, err := asmPath(input)
	if err != nil {
		return nil, err
	}
	translator := vmtranslator.NewVMTranslator(vmtranslator.Options{
		StackBase: p.Config.Translator.StackBase,
		Entry:     p.Config.Translator.Entry,
	})
	if p.Bootstrap {
		translator.WriteBootstrap()
	}
	if fromDisk {
		err = translator.TranslateDir(input)
		if err != nil {
			return nil, err
		}
		return []Artifact{{Path: output, Text: translator.Output()}}, nil
	}
	for _, vmFile := range vmFiles {
		err = translator.Translate(vmFile.Path, strings.NewReader(vmFile.Text))
		if err != nil {
			return nil, errors.Wrapf(err, "translate %s", vmFile.Path)
		}
	}
	return []Artifact{{Path: output, Text: translator.Output()}}, nil
}

func (p *Pipeline) assemble(input string, asmFiles []Artifact, fromDisk bool) ([]Artifact, error) {
	source := Artifact{Path: input}
	if fromDisk {
		content, err := os.ReadFile(input)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", input)
		}
		source.Text = string(content)
	} else {
		source = asmFiles[0]
	}
	asm := assembler.NewAssembler(p.Config.Assembler.Symbols)
	_, err := asm.Assemble(strings.NewReader(source.Text))
	if err != nil {
		return nil, errors.Wrapf(err, "assemble %s", source.Path)
	}
	artifacts := []Artifact{{Path: util.TrimExt(source.Path) + assembler.HackExt, Text: asm.MachineCode()}}
	if p.Config.Assembler.Listing {
		artifacts = append(artifacts, Artifact{Path: util.TrimExt(source.Path) + assembler.ListingExt, Text: asm.Listing()})
	}
	return artifacts, nil
}

// asmPath is where a translated program goes: Prog.vm -> Prog.asm, dir/ -> dir/dir.asm.
func asmPath(input string) (string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return "", errors.Wrapf(err, "stat %s", input)
	}
	if info.IsDir() {
		dir := filepath.Clean(input)
		return filepath.Join(dir, filepath.Base(dir)+assembler.AsmExt), nil
	}
	return util.TrimExt(input) + assembler.AsmExt, nil
}

// redirect moves the single main artifact to output, a listing follows it.
func redirect(artifacts []Artifact, output string) ([]Artifact, error) {
	if output == "" {
		return artifacts, nil
	}
	if len(artifacts) == 0 || (len(artifacts) > 1 && filepath.Ext(artifacts[1].Path) != assembler.ListingExt) {
		return nil, errors.New("--output needs a single output file")
	}
	artifacts[0].Path = output
	if len(artifacts) > 1 {
		artifacts[1].Path = util.TrimExt(output) + assembler.ListingExt
	}
	return artifacts, nil
}

func (p *Pipeline) save(artifacts []Artifact) error {
	for _, artifact := range artifacts {
		err := os.WriteFile(artifact.Path, []byte(artifact.Text), 0644)
		if err != nil {
			return errors.Wrapf(err, "write %s", artifact.Path)
		}
		color.Green("wrote %s", artifact.Path)
	}
	return nil
}

func (p *Pipeline) logf(format string, args ...interface{}) {
	if p.Verbose {
		color.Yellow(format, args...)
	}
}
