package gen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"strings"
	"unicode"
	"unicode/utf8"

	"evolve-generator/internal/plan"
)

// Tool names the generator in the header of generated files.
const Tool = "evolve-generator"

// Import paths of the runtime packages used by generated code.
const (
	versionedImport = "evolve-generator/versioned"
	wireImport      = "evolve-generator/wire"
)

// formatFuncs maps wire format names to their constructors in package wire.
var formatFuncs = map[string]string{
	"json": "JSON",
	"yaml": "YAML",
	"toml": "TOML",
}

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// Source names the definition file in the generated header.
	Source string
	// DebugDir receives the unformatted sidecar when go/format fails.
	// Empty uses the package directory of the plan.
	DebugDir string
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{}
}

// Generator generates Go code from a resolved plan.
type Generator struct {
	config GeneratorConfig
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	return &Generator{config: config}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the name of the file (e.g., "versions_gen.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Generate renders all definitions of p into a single file.
func (g *Generator) Generate(p *plan.ResolvedPlan) ([]GeneratedFile, error) {
	if p == nil {
		return nil, errors.New("plan is required")
	}

	if err := p.Diagnostics.Error(); err != nil {
		return nil, fmt.Errorf("plan has errors: %w", err)
	}

	if len(p.Definitions) == 0 {
		return nil, errors.New("plan has no definitions")
	}

	data, err := g.buildFileData(p)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		debugDir := g.config.DebugDir
		if debugDir == "" && p.Package != nil {
			debugDir = p.Package.Dir
		}

		_ = writeDebugUnformatted(debugDir, p.Output, buf.Bytes())

		return []GeneratedFile{{Filename: p.Output, Content: buf.Bytes()}}, fmt.Errorf("formatting code: %w", err)
	}

	return []GeneratedFile{{Filename: p.Output, Content: formatted}}, nil
}

// fileData holds all data needed for the file template.
type fileData struct {
	Header     string
	Package    string
	StdImports []string
	Imports    []string
	Types      []typeData
}

// typeData describes one definition for the template.
type typeData struct {
	Domain      string
	Rep         string
	Tag         string
	Format      string
	FormatFunc  string
	FormatVar   string
	Current     int
	Fallible    bool
	Transparent bool
	Versions    []versionData
	Latest      versionData
	Project     plan.Projection
}

// versionData describes one version for the template.
type versionData struct {
	Domain    string
	Rep       string
	Index     int
	Shape     string
	Variant   string
	IsCurrent bool
	Fallible  bool
	Step      plan.Step
	// Migrate is the composed migration from this version.
	Migrate string
	// Next is the composed migration of the following version, empty for
	// the latest version.
	Next string
}

func (g *Generator) buildFileData(p *plan.ResolvedPlan) (*fileData, error) {
	formatFunc, ok := formatFuncs[p.Format]
	if !ok {
		return nil, fmt.Errorf("unknown wire format %q", p.Format)
	}

	data := &fileData{
		Header:     header(g.config.Source),
		Package:    p.Package.Name,
		StdImports: []string{"fmt"},
	}

	needsVersioned := false
	for i := range p.Definitions {
		def := &p.Definitions[i]
		if def.Fallible() {
			needsVersioned = true
		}

		data.Types = append(data.Types, buildTypeData(def, p.Format, formatFunc))
	}

	if needsVersioned {
		data.Imports = append(data.Imports, versionedImport)
	}

	data.Imports = append(data.Imports, wireImport)

	return data, nil
}

func buildTypeData(def *plan.Definition, format, formatFunc string) typeData {
	prefix := lowerFirst(def.Rep)

	td := typeData{
		Domain:      def.Domain,
		Rep:         def.Rep,
		Tag:         def.Tag,
		Format:      strings.ToUpper(format),
		FormatFunc:  formatFunc,
		FormatVar:   prefix + "Format",
		Current:     def.Current(),
		Fallible:    def.Fallible(),
		Transparent: def.Transparent,
		Project:     def.Project,
	}

	for _, v := range def.Versions {
		vd := versionData{
			Domain:    def.Domain,
			Rep:       def.Rep,
			Index:     v.Index,
			Shape:     v.Shape,
			Variant:   fmt.Sprintf("%sV%d", def.Rep, v.Index),
			IsCurrent: v.Index == def.Current(),
			Fallible:  def.Fallible(),
			Step:      v.Step,
			Migrate:   fmt.Sprintf("%sFromV%d", prefix, v.Index),
		}

		if !vd.IsCurrent {
			vd.Next = fmt.Sprintf("%sFromV%d", prefix, v.Index+1)
		}

		td.Versions = append(td.Versions, vd)
	}

	td.Latest = td.Versions[len(td.Versions)-1]

	return td
}

func header(source string) string {
	if source == "" {
		return fmt.Sprintf("// Code generated by %s. DO NOT EDIT.", Tool)
	}

	return fmt.Sprintf("// Code generated by %s from %s. DO NOT EDIT.", Tool, source)
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return string(unicode.ToLower(r)) + s[size:]
}
