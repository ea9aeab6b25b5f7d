package util

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func IsNumber(b byte) bool {
	return b >= '0' && b <= '9'
}

func IsUnderScore(b byte) bool {
	return b == '_'
}

func IsLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func IsLetterOrUnderscore(b byte) bool {
	return IsLetter(b) || IsUnderScore(b)
}

func IsLetterOrUnderscoreOrNumber(b byte) bool {
	return IsLetter(b) || IsUnderScore(b) || IsNumber(b)
}

// IsSpace reports the ascii whitespace set the tokenizers skip.
func IsSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// IsSymbolChar reports whether b may appear in a VM label or an assembler symbol after the first
// character: letters, digits, and _ . $ :
func IsSymbolChar(b byte) bool {
	return IsLetterOrUnderscoreOrNumber(b) || b == '.' || b == '$' || b == ':'
}

// IsSymbol reports whether s is a valid label or symbol name, which must not start with a digit.
func IsSymbol(s string) bool {
	if len(s) == 0 || IsNumber(s[0]) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !IsSymbolChar(s[i]) {
			return false
		}
	}
	return true
}

// TrimExt returns path without its extension.
func TrimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// CollectFiles returns path itself when it is a file, or the sorted list of files with
// that extension directly inside path when it is a directory.
func CollectFiles(path string, ext string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ext {
			continue
		}
		files = append(files, filepath.Join(path, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
