// Package wordlist loads word lists from files.
package wordlist

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed words/en.txt
var builtinEnglish []byte

// BuiltinLang is the language available without an installed word list.
const BuiltinLang = "en"

// LoadWords reads one word per line from the provided file path.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	return readWords(file)
}

// Load returns the word list for lang from dir, filtered for the language.
// English falls back to the built-in list when no file is installed.
func Load(dir, lang string) ([]string, error) {
	words, err := LoadWords(filepath.Join(dir, lang+".txt"))
	if err != nil {
		if !os.IsNotExist(err) || lang != BuiltinLang {
			return nil, fmt.Errorf("load word list %q: %w", lang, err)
		}
		if words, err = readWords(bytes.NewReader(builtinEnglish)); err != nil {
			return nil, err
		}
	}
	kept := Clean(words, lang)
	if len(kept) == 0 {
		return nil, fmt.Errorf("word list %q has no usable words", lang)
	}
	return kept, nil
}

// Available lists installed languages in dir plus the built-in one.
func Available(dir string) ([]string, error) {
	seen := map[string]struct{}{BuiltinLang: {}}
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read word list directory: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".txt") {
			continue
		}
		seen[strings.TrimSuffix(name, ".txt")] = struct{}{}
	}
	langs := make([]string, 0, len(seen))
	for lang := range seen {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs, nil
}

func readWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}
