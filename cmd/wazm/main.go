package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/wasm-audit/analysis"
	"github.com/wippyai/wasm-audit/codec"
	"github.com/wippyai/wasm-audit/wasm"
)

func main() {
	var (
		verbosity   = flag.String("v", "error", "Log verbosity (debug, info, warn, error)")
		analyze     = flag.Bool("analyze", false, "Analyze the module instead of transforming it")
		sections    = flag.Bool("sections", true, "Include section byte accounting in the analysis")
		functions   = flag.Bool("functions", true, "Include function classification in the analysis")
		operators   = flag.Bool("operators", false, "Include the operator histogram (requires -functions)")
		tree        = flag.Bool("tree", false, "Include the function call tree")
		interactive = flag.Bool("i", false, "Browse the full analysis in an interactive viewer")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: wazm [flags] <file.wasm | file.wz>")
		fmt.Fprintln(os.Stderr, "Files ending in .wz are decompressed; other files are compressed")
		fmt.Fprintln(os.Stderr, "unless -analyze or -i is given.")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := setupLogger(*verbosity); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := analysis.Options{
		Sections:  *sections,
		Functions: *functions,
		Operators: *operators,
		CallTree:  *tree,
	}
	if err := run(flag.Arg(0), *analyze, *interactive, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogger(verbosity string) error {
	level, err := zapcore.ParseLevel(verbosity)
	if err != nil {
		return fmt.Errorf("parse verbosity %q: %w", verbosity, err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	analysis.SetLogger(logger)
	return nil
}

func run(path string, analyze, interactive bool, opts analysis.Options) error {
	switch {
	case interactive:
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode requires a terminal")
		}
		a, err := analyzeFile(path, analysis.Options{
			Sections:  true,
			Functions: true,
			Operators: true,
			CallTree:  true,
		})
		if err != nil {
			return err
		}
		return runInteractive(path, a)

	case analyze:
		a, err := analyzeFile(path, opts)
		if err != nil {
			return err
		}
		fmt.Print(a.Report())
		return nil

	case strings.HasSuffix(path, ".wz"):
		out := strings.TrimSuffix(path, ".wz") + ".wasm"
		n, err := codec.Decompress(context.Background(), path, out)
		if err != nil {
			return err
		}
		fmt.Printf("Decompressed %d bytes to %s\n", n, out)
		return nil

	default:
		out := path + ".wz"
		n, err := codec.Compress(path, out)
		if err != nil {
			return err
		}
		fmt.Printf("Compressed %d bytes to %s\n", n, out)
		return nil
	}
}

func analyzeFile(path string, opts analysis.Options) (*analysis.Analysis, error) {
	m, err := wasm.Load(path)
	if err != nil {
		return nil, err
	}
	return analysis.Analyze(m, opts)
}
