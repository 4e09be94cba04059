// Package source produces the ordered practice lines for a session.
package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/Larshalvorhansen/termType/internal/generator"
)

// ErrEmpty is returned when a source yields no lines.
var ErrEmpty = errors.New("source has no lines")

// DefaultWidth is the wrap width used when none is configured.
const DefaultWidth = 50

// Source yields practice lines.
type Source interface {
	Name() string
	Lines(ctx context.Context) ([]string, error)
}

// File reads practice text from a file and wraps each paragraph.
type File struct {
	Path  string
	Width int
}

// Name implements Source.
func (f File) Name() string { return "file" }

// Lines implements Source.
func (f File) Lines(ctx context.Context) ([]string, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open text file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only text file.
			_ = cerr
		}
	}()
	lines, err := Wrap(file, f.Width)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%s: %w", f.Path, ErrEmpty)
	}
	return lines, ctx.Err()
}

// Random builds lines from random words.
type Random struct {
	Words   []string
	Count   int
	Width   int
	Options generator.Options
	Gen     *generator.Generator
}

// Name implements Source.
func (r Random) Name() string { return "random" }

// Lines implements Source.
func (r Random) Lines(context.Context) ([]string, error) {
	lines := gen(r.Gen).Lines(r.Words, r.Count, widthOr(r.Width), r.Options)
	if len(lines) == 0 {
		return nil, ErrEmpty
	}
	return lines, nil
}

// Extreme is a fixed header line followed by phrases of 4 to 10 random words.
type Extreme struct {
	Header string
	Words  []string
	// Count includes the header.
	Count int
	Gen   *generator.Generator
}

// Name implements Source.
func (e Extreme) Name() string { return "extreme" }

// Lines implements Source.
func (e Extreme) Lines(context.Context) ([]string, error) {
	var lines []string
	if e.Header != "" {
		lines = append(lines, e.Header)
	}
	lines = append(lines, gen(e.Gen).Phrases(e.Words, e.Count-len(lines), 4, 10, generator.Options{})...)
	if len(lines) == 0 {
		return nil, ErrEmpty
	}
	return lines, nil
}

// Command runs an external program and practices its wrapped output.
type Command struct {
	Program string
	Args    []string
	Width   int
}

// Name implements Source.
func (c Command) Name() string { return "verse" }

// Lines implements Source.
func (c Command) Lines(ctx context.Context) ([]string, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Program, c.Args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s failed: %w: %s", c.Program, err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", c.Program, err)
	}
	lines, err := Wrap(bytes.NewReader(out), c.Width)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%s %s: %w", c.Program, strings.Join(c.Args, " "), ErrEmpty)
	}
	return lines, nil
}

// Wrap trims every input line, drops blank ones and word-wraps the rest at width.
func Wrap(r io.Reader, width int) ([]string, error) {
	width = widthOr(width)
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		text := strings.Join(strings.Fields(scanner.Text()), " ")
		if text == "" {
			continue
		}
		for _, part := range strings.Split(wordwrap.String(text, width), "\n") {
			if part = strings.TrimSpace(part); part != "" {
				lines = append(lines, part)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func widthOr(width int) int {
	if width <= 0 {
		return DefaultWidth
	}
	return width
}

func gen(g *generator.Generator) *generator.Generator {
	if g == nil {
		return generator.New()
	}
	return g
}
