package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"github.com/xiaobogaga/hack/config"
)

// hack is the toolchain driver: jack source -> vm code -> hack assembler -> hack machine code.

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func newApp() *cli.App {
	outputFlag := &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "The path of the output file",
	}
	noBootstrapFlag := &cli.BoolFlag{
		Name:  "no-bootstrap",
		Usage: "Don't write the bootstrap code which calls the entry function",
	}
	listingFlag := &cli.BoolFlag{
		Name:  "listing",
		Usage: "Also write a .lst file showing every instruction in binary, hex and source",
	}
	return &cli.App{
		Name:                   "hack",
		Usage:                  "Compile jack programs down to hack machine code",
		EnableBashCompletion:   true,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "The path to the config file, " + config.DefaultPath + " is used when it exists",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Print every step",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "compile",
				Usage:     "Compile a .jack file, or every .jack file of a directory, to .vm files next to them",
				ArgsUsage: "<file.jack|dir>",
				Category:  "toolchain",
				Action:    runSteps(CompileStep),
			},
			{
				Name:      "translate",
				Usage:     "Translate a .vm file, or all .vm files of a directory, to one .asm file",
				ArgsUsage: "<file.vm|dir>",
				Category:  "toolchain",
				Flags:     []cli.Flag{outputFlag, noBootstrapFlag},
				Action:    runSteps(TranslateStep),
			},
			{
				Name:      "assemble",
				Usage:     "Assemble a .asm file to a .hack file",
				ArgsUsage: "<file.asm>",
				Category:  "toolchain",
				Flags:     []cli.Flag{outputFlag, listingFlag},
				Action:    runSteps(AssembleStep),
			},
			{
				Name:      "build",
				Usage:     "Run several steps in memory and write only the output of the last one",
				ArgsUsage: "<input>",
				Category:  "toolchain",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "steps",
						Aliases: []string{"s"},
						Value:   "compile,translate,assemble",
						Usage:   "Comma separated steps out of compile, translate and assemble",
					},
					outputFlag,
					noBootstrapFlag,
					listingFlag,
				},
				Action: build,
			},
		},
	}
}

func runSteps(steps ...Step) cli.ActionFunc {
	return func(c *cli.Context) error {
		return execute(c, steps)
	}
}

func build(c *cli.Context) error {
	steps, err := ParseSteps(c.String("steps"))
	if err != nil {
		return cli.Exit(color.RedString("Error: %s", err), 1)
	}
	return execute(c, steps)
}

func execute(c *cli.Context, steps []Step) error {
	input := c.Args().First()
	if input == "" {
		return cli.Exit(color.RedString("Error: No input specified"), 1)
	}
	conf, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(color.RedString("Error loading config: %s", err), 1)
	}
	if c.Bool("listing") {
		conf.Assembler.Listing = true
	}
	pipeline := NewPipeline(conf)
	pipeline.Verbose = c.Bool("verbose")
	if c.Bool("no-bootstrap") {
		pipeline.Bootstrap = false
	}
	artifacts, err := pipeline.Run(steps, input)
	if err != nil {
		return cli.Exit(color.RedString("Error: %s", err), 1)
	}
	artifacts, err = redirect(artifacts, c.String("output"))
	if err != nil {
		return cli.Exit(color.RedString("Error: %s", err), 1)
	}
	err = pipeline.save(artifacts)
	if err != nil {
		return cli.Exit(color.RedString("Error: %s", err), 1)
	}
	return nil
}
