package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "hack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	testData := []struct {
		content  string
		expected func(c *Config)
	}{
		{content: "", expected: func(c *Config) {}},
		{
			content: "runtime:\n  allocator: Heap\n",
			expected: func(c *Config) {
				c.Runtime.Allocator = "Heap"
			},
		},
		{
			content: `
translator:
  bootstrap: false
  stack_base: 300
  entry: Main.main
assembler:
  listing: true
  symbols:
    ADDR_UART_RX: 2050
    ADDR_UART_TX: 2051
`,
			expected: func(c *Config) {
				c.Translator = TranslatorConfig{Bootstrap: false, StackBase: 300, Entry: "Main.main"}
				c.Assembler = AssemblerConfig{Listing: true, Symbols: map[string]int{"ADDR_UART_RX": 2050, "ADDR_UART_TX": 2051}}
			},
		},
	}
	for _, data := range testData {
		conf, err := Load(writeConfig(t, data.content))
		require.NoError(t, err, data.content)
		expected := Default()
		data.expected(&expected)
		assert.Equal(t, expected, conf, data.content)
	}
}

func TestLoad_Errors(t *testing.T) {
	testData := []string{
		"translator:\n  stack_base: -1\n",
		"translator:\n  entry: \"\"\n",
		"runtime:\n  math: \"\"\n",
		"assembler:\n  symbols:\n    X: 40000\n",
		"unknown: 1\n",
		"runtime: [1, 2]\n",
	}
	for _, content := range testData {
		_, err := Load(writeConfig(t, content))
		assert.Error(t, err, content)
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_DefaultPathIsOptional(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	conf, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), conf)

	require.NoError(t, os.WriteFile(DefaultPath, []byte("runtime:\n  string: Str\n"), 0644))
	conf, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "Str", conf.Runtime.String)
}
