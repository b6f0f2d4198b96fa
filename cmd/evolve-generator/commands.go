package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"evolve-generator/internal/analyze"
	"evolve-generator/internal/diagnostic"
	"evolve-generator/internal/gen"
	"evolve-generator/internal/plan"
	"evolve-generator/internal/schema"
)

var (
	errUsage          = errors.New("missing command")
	errUnknownCommand = errors.New("unknown command")
	errMissingDef     = errors.New("-def is required")
	errDiagnostics    = errors.New("definition has errors")
)

type options struct {
	def     string
	out     string
	debug   string
	verbose bool
	strict  bool
}

func parseFlags(name string, args []string, stderr io.Writer, withOutput bool) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.def, "def", "", "definition file (.yaml, .yml or .toml)")
	fs.BoolVar(&opts.verbose, "v", false, "verbose development logging")
	fs.BoolVar(&opts.strict, "strict", false, "treat warnings as errors")

	if withOutput {
		fs.StringVar(&opts.out, "out", "", "output directory, defaults to the package directory")
		fs.StringVar(&opts.debug, "debug-dir", "", "directory for unformatted output when formatting fails")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.def == "" {
		fs.Usage()
		return nil, errMissingDef
	}

	return opts, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}

func runGen(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags("gen", args, stderr, true)
	if err != nil {
		return err
	}

	logger, err := newLogger(opts.verbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	p, err := resolve(opts, logger, stdout)
	if err != nil {
		return err
	}

	generator := gen.NewGenerator(gen.GeneratorConfig{
		Source:   filepath.Base(opts.def),
		DebugDir: opts.debug,
	})

	files, err := generator.Generate(p)
	if err != nil {
		return fmt.Errorf("generating code: %w", err)
	}

	outDir := opts.out
	if outDir == "" {
		outDir = p.Package.Dir
	}

	written, err := gen.WriteFiles(files, outDir)
	if err != nil {
		return err
	}

	if len(written) == 0 {
		logger.Info("generated code is up to date", zap.String("dir", outDir))
	}

	for _, path := range written {
		logger.Info("wrote generated file",
			zap.String("file", path),
			zap.Int("definitions", len(p.Definitions)))
	}

	return nil
}

func runCheck(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags("check", args, stderr, false)
	if err != nil {
		return err
	}

	logger, err := newLogger(opts.verbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	p, err := resolve(opts, logger, stdout)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "ok: %d definitions in %s\n", len(p.Definitions), p.Package.Path)

	return nil
}

// resolve loads the definition file and the package it names, and resolves
// the chains. Every diagnostic is printed to stdout.
func resolve(opts *options, logger *zap.Logger, stdout io.Writer) (*plan.ResolvedPlan, error) {
	def, err := schema.LoadFile(opts.def)
	if err != nil {
		return nil, err
	}

	logger.Debug("loaded definition file",
		zap.String("path", opts.def),
		zap.String("package", def.Package),
		zap.String("format", def.Format),
		zap.Int("types", len(def.Types)))

	if diags := schema.Validate(def); diags.HasErrors() {
		report(stdout, diags)
		return nil, fmt.Errorf("%w: %w", errDiagnostics, diags.Error())
	}

	analyzer := analyze.NewAnalyzer()
	analyzer.Dir = filepath.Join(filepath.Dir(opts.def), def.Package)
	analyzer.SkipFiles = []string{def.Output}

	graph, err := analyzer.LoadPackages(".")
	if err != nil {
		return nil, err
	}

	logger.Debug("loaded package",
		zap.String("dir", analyzer.Dir),
		zap.Int("types", len(graph.Types)),
		zap.Int("funcs", len(graph.Funcs)))

	cfg := plan.DefaultConfig()
	cfg.StrictMode = opts.strict

	p, err := plan.NewResolver(graph, def, cfg).Resolve()
	if p != nil {
		report(stdout, &p.Diagnostics)
	}

	if err != nil {
		return nil, err
	}

	if p.Diagnostics.HasErrors() {
		logger.Error("resolution failed",
			zap.Strings("codes", p.Diagnostics.Codes()),
			zap.Int("warnings", len(p.Diagnostics.Warnings)))

		return nil, fmt.Errorf("%w: %w", errDiagnostics, p.Diagnostics.Error())
	}

	for i := range p.Definitions {
		d := &p.Definitions[i]
		logger.Debug("resolved definition",
			zap.String("domain", d.Domain),
			zap.String("rep", d.Rep),
			zap.Stringer("mode", d.Mode),
			zap.Int("versions", d.Current()))
	}

	return p, nil
}

func report(w io.Writer, diags *diagnostic.Diagnostics) {
	for _, group := range [][]diagnostic.Diagnostic{diags.Errors, diags.Warnings, diags.Infos} {
		for _, d := range group {
			fmt.Fprintf(w, "%s: %s\n", d.Severity, d)
		}
	}
}
