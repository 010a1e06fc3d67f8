// Package main implements the tcab compiler CLI
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dubya62/tcab/pkg/compiler"
	"github.com/dubya62/tcab/pkg/config"
	"github.com/dubya62/tcab/pkg/lexer"
	"github.com/dubya62/tcab/pkg/organizer"
	"github.com/dubya62/tcab/pkg/sourcemap"
	"github.com/dubya62/tcab/pkg/ui"
)

var version = "0.1.0-alpha"

func main() {
	rootCmd := &cobra.Command{
		Use:   "tcab",
		Short: "tcab - a statically checked class-based language, lowered to C",
		Long: `tcab organizes .tcab source files into the compiler's intermediate
representation: classes, functions, directives and use-aliases, with every
operator rewritten into method-call form and every name numbered. All
structural checks happen at compile time; the organized program is the
handoff to C code generation.`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(buildCmd())
	rootCmd.AddCommand(tokensCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		// Error is already printed by cobra
		os.Exit(1)
	}
}

func buildCmd() *cobra.Command {
	var (
		output  string
		watch   bool
		verbose bool
		ext     string
	)

	cmd := &cobra.Command{
		Use:   "build [file.tcab]",
		Short: "Organize tcab source files for code generation",
		Long: `Build runs the front-end over an entry file and everything it imports.

The front-end:
1. Tokenizes the source and assembles logical lines
2. Extracts classes, functions, directives and use-aliases
3. Rewrites every operator into method-call form and numbers each name

Diagnostics are printed after all passes complete. On a clean run the
organized program is written as <file>.org.json with a source map.

Example:
  tcab build main.tcab
  tcab build -o out.json main.tcab
  tcab build --watch main.tcab`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(args, output, watch, verbose, ext)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: <file>.org.json)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Watch for file changes and rebuild")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable per-pass debug logging")
	cmd.Flags().StringVar(&ext, "ext", "", "Source extension used for import resolution (default: from config)")

	return cmd
}

func tokensCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "tokens [file.tcab]",
		Short: "Dump the lexeme stream of a source file",
		Long: `Tokens prints the flat lexeme stream the organizer passes consume,
one lexeme per line. By default the stream is shown after line-continuation
folding and terminator normalization; --raw shows the tokenizer output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokens(args[0], raw)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Dump the stream before normalization")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tcab",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tcab version %s\n", version)
		},
	}
}

func runBuild(files []string, output string, watch, verbose bool, ext string) error {
	overrides := &config.Config{}
	overrides.Build.SourceExtension = ext
	cfg, err := config.Load(overrides)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := zap.NewNop()
	if verbose {
		if dev, err := zap.NewDevelopment(); err == nil {
			logger = dev
		}
	}
	comp := compiler.New(cfg, compiler.WithLogger(logger))

	buildUI := ui.NewBuildOutput()
	buildUI.PrintHeader(version)
	buildUI.PrintBuildStart(len(files))

	buildAll := func() error {
		var lastErr error
		for _, file := range files {
			if err := buildFile(comp, cfg, file, output, buildUI); err != nil {
				lastErr = err
			}
		}
		return lastErr
	}

	err = buildAll()
	if watch {
		return watchAndRebuild(files, cfg, buildUI, buildAll)
	}
	if err != nil {
		buildUI.PrintSummary(false, err.Error())
		return err
	}
	buildUI.PrintSummary(true, "")
	return nil
}

func buildFile(comp *compiler.Compiler, cfg *config.Config, inputPath, outputPath string, buildUI *ui.BuildOutput) error {
	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputPath, cfg.Build.SourceExtension) + ".org.json"
	}
	buildUI.PrintFileStart(inputPath, outputPath)

	organizeStart := time.Now()
	prog, err := comp.CompileFile(inputPath)
	organizeDuration := time.Since(organizeStart)

	if err != nil {
		buildUI.PrintStep(ui.Step{Name: "Organize", Status: ui.StepError, Duration: organizeDuration})
		buildUI.PrintError(err.Error())
		return err
	}
	buildUI.PrintStep(ui.Step{Name: "Organize", Status: ui.StepSuccess, Duration: organizeDuration})

	printDiagnostics(prog, cfg, buildUI)

	if !prog.Diags.Empty() {
		return fmt.Errorf("%d diagnostic(s) in %s", prog.Diags.Len(), inputPath)
	}

	if cfg.Build.OutputFormat == config.FormatNone {
		buildUI.PrintStep(ui.Step{Name: "Write", Status: ui.StepSkipped})
		return nil
	}

	writeStart := time.Now()
	dump, err := prog.Dump()
	if err != nil {
		return fmt.Errorf("failed to serialize organized program: %w", err)
	}
	if err := os.WriteFile(outputPath, dump, 0644); err != nil {
		buildUI.PrintStep(ui.Step{Name: "Write", Status: ui.StepError, Duration: time.Since(writeStart)})
		return fmt.Errorf("failed to write output: %w", err)
	}

	if cfg.SourceMap.Enabled && cfg.SourceMap.Format == config.MapSeparate {
		gen := sourcemap.FromProgram(prog, filepath.Base(outputPath))
		mapJSON, err := gen.MarshalJSON()
		if err == nil {
			err = os.WriteFile(outputPath+".map", mapJSON, 0644)
		}
		if err != nil {
			// Non-fatal: just log warning
			buildUI.PrintInfo(fmt.Sprintf("Warning: failed to write source map: %v", err))
		}
	}

	buildUI.PrintStep(ui.Step{
		Name:     "Write",
		Status:   ui.StepSuccess,
		Duration: time.Since(writeStart),
		Message:  fmt.Sprintf("%d bytes written", len(dump)),
	})
	return nil
}

func printDiagnostics(prog *organizer.Program, cfg *config.Config, buildUI *ui.BuildOutput) {
	items := prog.Diags.Items()
	limit := cfg.Build.MaxDiagnostics
	for i, d := range items {
		if limit > 0 && i >= limit {
			buildUI.PrintInfo(fmt.Sprintf("... and %d more", len(items)-limit))
			break
		}
		buildUI.PrintDiagnostic(d)
	}
}

// watchAndRebuild re-runs the build whenever a source file in one of the
// entry files' directories is written. Rapid save bursts are debounced.
func watchAndRebuild(files []string, cfg *config.Config, buildUI *ui.BuildOutput, rebuild func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	dirs := map[string]bool{}
	for _, f := range files {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	buildUI.PrintInfo("Watching for changes. Ctrl-C to stop.")

	lastBuild := map[string]time.Time{}
	const debounce = 300 * time.Millisecond

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if filepath.Ext(event.Name) != cfg.Build.SourceExtension {
				continue
			}
			if t, seen := lastBuild[event.Name]; seen && time.Since(t) < debounce {
				continue
			}
			lastBuild[event.Name] = time.Now()

			buildUI.PrintInfo(fmt.Sprintf("Change detected: %s", event.Name))
			if err := rebuild(); err != nil {
				buildUI.PrintError(err.Error())
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			buildUI.PrintError(fmt.Sprintf("watch error: %v", err))
		}
	}
}

func runTokens(inputPath string, raw bool) error {
	src, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	toks := lexer.New(src, inputPath, nil).Tokenize()
	if !raw {
		toks = lexer.NormalizeContinuations(toks)
		toks = lexer.NormalizeTerminators(toks)
	}
	fmt.Print(lexer.DumpTokens(toks))
	return nil
}
