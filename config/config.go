// Package config loads hack.yaml, the toolchain settings shared by all commands.
package config

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "hack.yaml"

type Config struct {
	Runtime    RuntimeConfig    `yaml:"runtime"`
	Translator TranslatorConfig `yaml:"translator"`
	Assembler  AssemblerConfig  `yaml:"assembler"`
}

// RuntimeConfig names the classes which provide the primitives compiled code calls.
type RuntimeConfig struct {
	Allocator string `yaml:"allocator"`
	String    string `yaml:"string"`
	Math      string `yaml:"math"`
}

type TranslatorConfig struct {
	Bootstrap bool   `yaml:"bootstrap"`
	StackBase int    `yaml:"stack_base"`
	Entry     string `yaml:"entry"`
}

type AssemblerConfig struct {
	Listing bool           `yaml:"listing"`
	Symbols map[string]int `yaml:"symbols"`
}

func Default() Config {
	return Config{
		Runtime: RuntimeConfig{
			Allocator: "Memory",
			String:    "String",
			Math:      "Math",
		},
		Translator: TranslatorConfig{
			Bootstrap: true,
			StackBase: 256,
			Entry:     "Sys.init",
		},
	}
}

// Load reads path over the defaults, keys missing from the file keep their default value. When path is
// empty, DefaultPath is read if it exists.
func Load(path string) (Config, error) {
	conf := Default()
	optional := path == ""
	if optional {
		path = DefaultPath
	}
	file, err := os.Open(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return conf, nil
		}
		return Config{}, errors.Wrapf(err, "open config %s", path)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	err = decoder.Decode(&conf)
	if err != nil && err != io.EOF {
		return Config{}, errors.Wrapf(err, "decode config %s", path)
	}
	return conf, conf.Validate()
}

func (c Config) Validate() error {
	if c.Runtime.Allocator == "" || c.Runtime.String == "" || c.Runtime.Math == "" {
		return errors.New("config: runtime class names must not be empty")
	}
	if c.Translator.StackBase <= 0 || c.Translator.StackBase > 32767 {
		return errors.Errorf("config: translator.stack_base %d out of range", c.Translator.StackBase)
	}
	if c.Translator.Entry == "" {
		return errors.New("config: translator.entry must not be empty")
	}
	for name, addr := range c.Assembler.Symbols {
		if addr < 0 || addr > 32767 {
			return errors.Errorf("config: assembler symbol %s address %d out of range", name, addr)
		}
	}
	return nil
}
