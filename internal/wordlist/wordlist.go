// Package wordlist loads word lists used by the random line sources.
package wordlist

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrEmpty is returned when a word list has no usable words.
var ErrEmpty = errors.New("word list is empty")

//go:embed common.txt
var common string

// Default returns the built-in list of common English words.
func Default() []string {
	words, err := Parse(strings.NewReader(common), nil)
	if err != nil {
		return nil
	}
	return words
}

// Load reads one word per line from path. keep may be nil to accept every word.
func Load(path string, keep FilterFunc) ([]string, error) {
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
	words, err := Parse(file, keep)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

// Parse reads one word per line, skipping blanks and words rejected by keep.
func Parse(r io.Reader, keep FilterFunc) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}
		if keep != nil && !keep(word) {
			continue
		}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrEmpty
	}
	return words, nil
}
