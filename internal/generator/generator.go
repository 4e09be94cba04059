// Package generator builds random practice lines from word lists.
package generator

import (
	"math/rand"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Options controls the optional decorations applied to each picked word.
type Options struct {
	CapsPct  float64
	PunctPct float64
	PunctSet []rune
}

// Generator produces randomized practice lines.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Lines builds count lines, appending words while each line stays within
// width. The first word of a line is always kept, even when it is wider.
func (g *Generator) Lines(words []string, count, width int, opts Options) []string {
	if len(words) == 0 || count <= 0 {
		return nil
	}
	lines := make([]string, 0, count)
	for i := 0; i < count; i++ {
		var b strings.Builder
		used := 0
		for {
			word := g.word(words, opts)
			n := utf8.RuneCountInString(word)
			if used == 0 {
				b.WriteString(word)
				used = n
				if used >= width {
					break
				}
				continue
			}
			if used+1+n > width {
				break
			}
			b.WriteByte(' ')
			b.WriteString(word)
			used += 1 + n
		}
		lines = append(lines, b.String())
	}
	return lines
}

// Phrases builds count lines of minWords to maxWords words each.
func (g *Generator) Phrases(words []string, count, minWords, maxWords int, opts Options) []string {
	if len(words) == 0 || count <= 0 {
		return nil
	}
	minWords = max(1, minWords)
	maxWords = max(minWords, maxWords)
	lines := make([]string, 0, count)
	for i := 0; i < count; i++ {
		n := minWords + g.rnd.Intn(maxWords-minWords+1)
		picked := make([]string, n)
		for j := range picked {
			picked[j] = g.word(words, opts)
		}
		lines = append(lines, strings.Join(picked, " "))
	}
	return lines
}

func (g *Generator) word(words []string, opts Options) string {
	word := words[g.rnd.Intn(len(words))]
	word = applyCaps(g.rnd, word, opts.CapsPct)
	return applyPunct(g.rnd, word, opts.PunctPct, opts.PunctSet)
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 {
		return word
	}
	if rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 {
		return word
	}
	if rnd.Float64() > punctPct {
		return word
	}
	punct := punctSet[rnd.Intn(len(punctSet))]
	return word + string(punct)
}
