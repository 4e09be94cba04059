package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Larshalvorhansen/termType/internal/config"
	"github.com/Larshalvorhansen/termType/internal/engine"
	"github.com/Larshalvorhansen/termType/internal/generator"
	"github.com/Larshalvorhansen/termType/internal/journal"
	"github.com/Larshalvorhansen/termType/internal/model"
	"github.com/Larshalvorhansen/termType/internal/source"
	"github.com/Larshalvorhansen/termType/internal/stats"
	"github.com/Larshalvorhansen/termType/internal/store"
	"github.com/Larshalvorhansen/termType/internal/tui"
	"github.com/Larshalvorhansen/termType/internal/wordlist"
)

const (
	defaultLines        = 20
	defaultExtremeLines = 50
	defaultVerseCommand = "kjv"
	defaultHeader       = "Name und Vorname? Grzg...."
	debugEnv            = "TERMTYPE_DEBUG"
	debugLogFile        = "termtype-debug.log"
)

const defaultPunctSet = ".,!?;:"

var (
	practiceLineWidth  int
	practiceLines      int
	practiceWordsFile  string
	practiceWordFilter string
	practiceCaps       float64
	practicePunct      float64
	practicePunctSet   string
	practiceJournal    string

	extremeLines     int
	extremeWordsFile string
	extremeHeader    string

	verseCommand string
)

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&practiceLineWidth, "line-width", source.DefaultWidth, "maximum characters per line")
	cmd.Flags().StringVar(&practiceJournal, "journal", "", "results journal path (default: XDG data dir)")
}

func newFileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file PATH",
		Short: "Practice the lines of a text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadPracticeConfig(cmd)
			if err != nil {
				return err
			}
			return runPractice(cmd.Context(), source.File{Path: args[0], Width: cfg.LineWidth}, cfg)
		},
	}
	addCommonFlags(cmd)
	return cmd
}

func newExtremeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extreme",
		Short: "Practice a header line followed by long random phrases",
		Args:  cobra.NoArgs,
		RunE:  runExtremeCmd,
	}
	addCommonFlags(cmd)
	cmd.Flags().IntVar(&extremeLines, "lines", defaultExtremeLines, "number of lines including the header")
	cmd.Flags().StringVar(&extremeWordsFile, "words-file", "", "word list, one word per line (default: built-in list)")
	cmd.Flags().StringVar(&extremeHeader, "header", defaultHeader, "first line of every extreme run")
	return cmd
}

func newVerseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verse REF...",
		Short: "Practice text printed by an external lookup command",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runVerseCmd,
	}
	addCommonFlags(cmd)
	cmd.Flags().StringVar(&verseCommand, "command", defaultVerseCommand, "program that prints the text for REF")
	return cmd
}

func runRandomCmd(cmd *cobra.Command, _ []string) error {
	cfg, fileCfg, err := loadPracticeConfig(cmd)
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "lines", &practiceLines, fileCfg.Practice.Lines)
	applyStringConfig(cmd, "words-file", &practiceWordsFile, fileCfg.Practice.WordsFile)
	applyStringConfig(cmd, "word-filter", &practiceWordFilter, fileCfg.Practice.WordFilter)
	applyFloatConfig(cmd, "caps", &practiceCaps, fileCfg.Practice.CapsPct)
	applyFloatConfig(cmd, "punct", &practicePunct, fileCfg.Practice.PunctPct)
	applyStringConfig(cmd, "punct-set", &practicePunctSet, fileCfg.Practice.PunctSet)

	cfg.Lines = practiceLines
	cfg.WordsFile = practiceWordsFile
	cfg.WordFilter = practiceWordFilter
	cfg.CapsPct = practiceCaps
	cfg.PunctPct = practicePunct
	cfg.PunctSet = practicePunctSet
	if err := validateConfig(cfg); err != nil {
		return err
	}

	words, err := loadWords(cfg.WordsFile, cfg.WordFilter)
	if err != nil {
		return err
	}
	src := source.Random{
		Words: words,
		Count: cfg.Lines,
		Width: cfg.LineWidth,
		Options: generator.Options{
			CapsPct:  cfg.CapsPct,
			PunctPct: cfg.PunctPct,
			PunctSet: []rune(cfg.PunctSet),
		},
		Gen: generator.New(),
	}
	return runPractice(cmd.Context(), src, cfg)
}

func runExtremeCmd(cmd *cobra.Command, _ []string) error {
	cfg, fileCfg, err := loadPracticeConfig(cmd)
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "lines", &extremeLines, fileCfg.Extreme.Lines)
	applyStringConfig(cmd, "words-file", &extremeWordsFile, fileCfg.Extreme.WordsFile)
	applyStringConfig(cmd, "header", &extremeHeader, fileCfg.Extreme.Header)

	ext := model.ExtremeConfig{
		WordsFile: extremeWordsFile,
		Lines:     extremeLines,
		Header:    extremeHeader,
	}
	if ext.Lines <= 0 {
		return fmt.Errorf("--lines must be > 0")
	}
	words, err := loadWords(ext.WordsFile, "")
	if err != nil {
		return err
	}
	src := source.Extreme{
		Header: ext.Header,
		Words:  words,
		Count:  ext.Lines,
		Gen:    generator.New(),
	}
	return runPractice(cmd.Context(), src, cfg)
}

func runVerseCmd(cmd *cobra.Command, args []string) error {
	cfg, fileCfg, err := loadPracticeConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "command", &verseCommand, fileCfg.Verse.Command)
	if verseCommand == "" {
		return fmt.Errorf("--command must not be empty")
	}
	src := source.Command{Program: verseCommand, Args: args, Width: cfg.LineWidth}
	return runPractice(cmd.Context(), src, cfg)
}

// loadPracticeConfig resolves the settings every practice mode shares.
func loadPracticeConfig(cmd *cobra.Command) (model.Config, config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "line-width", &practiceLineWidth, fileCfg.Practice.LineWidth)
	applyStringConfig(cmd, "journal", &practiceJournal, fileCfg.Practice.Journal)

	cfg := model.Config{
		LineWidth: practiceLineWidth,
		Journal:   practiceJournal,
	}
	if cfg.LineWidth <= 0 {
		return model.Config{}, config.FileConfig{}, fmt.Errorf("--line-width must be > 0")
	}
	if cfg.Journal == "" {
		cfg.Journal = config.DefaultJournalPath()
	}
	return cfg, fileCfg, nil
}

func validateConfig(cfg model.Config) error {
	if cfg.Lines <= 0 {
		return fmt.Errorf("--lines must be > 0")
	}
	if cfg.LineWidth <= 0 {
		return fmt.Errorf("--line-width must be > 0")
	}
	if cfg.CapsPct < 0 || cfg.CapsPct > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if cfg.PunctPct < 0 || cfg.PunctPct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	if cfg.PunctPct > 0 && cfg.PunctSet == "" {
		return fmt.Errorf("--punct-set must not be empty")
	}
	if _, err := wordlist.FilterByName(cfg.WordFilter); err != nil {
		return err
	}
	return nil
}

// loadWords reads path, falling back to the user word list and then the built-in one.
func loadWords(path, filterName string) ([]string, error) {
	keep, err := wordlist.FilterByName(filterName)
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = config.DefaultWordsPath()
		if _, err := os.Stat(path); err != nil {
			return wordlist.Default(), nil
		}
	}
	words, err := wordlist.Load(path, keep)
	if err != nil {
		return nil, fmt.Errorf("failed to load word list: %w", err)
	}
	return words, nil
}

func runPractice(ctx context.Context, src source.Source, cfg model.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("termtype needs an interactive terminal")
	}

	lines, err := src.Lines(ctx)
	if err != nil {
		if errors.Is(err, source.ErrEmpty) {
			return fmt.Errorf("nothing to practice: %w", err)
		}
		return err
	}
	session, err := engine.NewSession(lines, engine.WithSource(src.Name()), engine.WithWidth(cfg.LineWidth))
	if err != nil {
		if errors.Is(err, engine.ErrNoLines) {
			return fmt.Errorf("nothing to practice: %w", err)
		}
		return err
	}

	closeLog, err := setupDebugLog()
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if err := os.MkdirAll(filepath.Dir(cfg.Journal), 0o755); err != nil {
		return fmt.Errorf("failed to create journal dir: %w", err)
	}
	j := journal.New(cfg.Journal)

	m := tui.NewModel(session, st, fmt.Sprintf("Stats saved to %s.", j.Path()), st, j)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	report, finished := m.Report()
	if !finished {
		return nil
	}
	printOutcome(report)
	return nil
}

func printOutcome(report model.SessionReport) {
	if len(report.Lines) == 0 {
		logErrln("Quitting early.")
		return
	}
	t := stats.Aggregate(report.Lines)
	status := "Typing complete."
	if report.Aborted {
		status = "Quitting early."
	}
	logErrf("%s %d/%d lines, %d WPM, %d%% accuracy, %s\n",
		status, t.Lines, report.TotalLines, t.WPM, t.Accuracy, stats.FormatSeconds(t.Seconds))
}

// setupDebugLog sends the standard logger to a file when debugging is enabled
// and discards it otherwise, since the TUI owns the terminal.
func setupDebugLog() (func(), error) {
	if os.Getenv(debugEnv) == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(debugLogFile, "termtype")
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log: %w", err)
	}
	return func() {
		if cerr := f.Close(); cerr != nil {
			logErrf("failed to close debug log: %v\n", cerr)
		}
	}, nil
}
