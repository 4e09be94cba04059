package wordlist

import "fmt"

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// FilterByName resolves a filter name from flags or config.
// An empty name or "none" keeps every word.
func FilterByName(name string) (FilterFunc, error) {
	switch name {
	case "", "none":
		return nil, nil
	case "ascii":
		return ASCIILower, nil
	default:
		return nil, fmt.Errorf("unknown word filter %q (want none or ascii)", name)
	}
}

// ASCIILower keeps words made only of lowercase ASCII letters.
func ASCIILower(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}
