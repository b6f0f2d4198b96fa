package plan

import (
	"errors"
	"fmt"
	"go/types"
	"sort"
	"strings"

	"evolve-generator/internal/analyze"
	"evolve-generator/internal/diagnostic"
	"evolve-generator/internal/match"
	"evolve-generator/internal/schema"
	"evolve-generator/versioned"
)

// Config holds configuration for the resolution process.
type Config struct {
	// MinSuggestionScore is the minimum score of a "did you mean" suggestion.
	MinSuggestionScore float64
	// MaxSuggestions is the maximum number of suggestions per diagnostic.
	MaxSuggestions int
	// StrictMode fails resolution on warnings too.
	StrictMode bool
}

// DefaultConfig returns the default resolution configuration.
func DefaultConfig() Config {
	return Config{
		MinSuggestionScore: match.DefaultMinScore,
		MaxSuggestions:     match.DefaultMaxSuggestions,
	}
}

var errorType = types.Universe.Lookup("error").Type()

// Resolver performs the resolution pipeline.
type Resolver struct {
	graph  *analyze.TypeGraph
	def    *schema.DefinitionFile
	config Config
	pkg    *analyze.PackageInfo
}

// NewResolver creates a new Resolver. The graph must hold exactly the
// package named by the definition file.
func NewResolver(graph *analyze.TypeGraph, def *schema.DefinitionFile, config Config) *Resolver {
	return &Resolver{graph: graph, def: def, config: config}
}

// Resolve runs the full resolution pipeline and returns a ResolvedPlan. An
// error is returned only when resolution could not run; problems of the
// definition itself are reported as diagnostics.
func (r *Resolver) Resolve() (*ResolvedPlan, error) {
	if r.def == nil {
		return nil, errors.New("definition file is required")
	}

	if r.graph == nil {
		return nil, errors.New("type graph is required")
	}

	if len(r.graph.Packages) != 1 {
		return nil, fmt.Errorf("definition must load exactly one package, got %d", len(r.graph.Packages))
	}

	for _, pkg := range r.graph.Packages {
		r.pkg = pkg
	}

	plan := &ResolvedPlan{
		Package: r.pkg,
		Output:  r.def.Output,
		Format:  r.def.Format,
	}

	plan.Diagnostics.Merge(*schema.Validate(r.def))
	if plan.Diagnostics.HasErrors() {
		return plan, nil
	}

	for i := range r.def.Types {
		def, ok := r.resolveType(&r.def.Types[i], &plan.Diagnostics)
		if ok {
			plan.Definitions = append(plan.Definitions, def)
		}
	}

	r.checkGeneratedNames(plan)

	if r.config.StrictMode && len(plan.Diagnostics.Warnings) > 0 {
		return plan, errors.New("strict mode: resolution produced warnings")
	}

	return plan, nil
}

// resolveType checks one type definition. All problems are reported before
// returning so a single run lists every mistake.
func (r *Resolver) resolveType(t *schema.TypeDef, diags *diagnostic.Diagnostics) (Definition, bool) {
	errorsBefore := len(diags.Errors)

	mode, _ := versioned.ParseMode(t.Mode)
	def := Definition{
		Domain:      t.Domain,
		Rep:         t.Rep,
		Tag:         t.Tag,
		Mode:        mode,
		Transparent: t.Transparent,
	}

	domain := r.lookupType(t.Domain, t.Domain, "domain", diags)

	var declaredErr types.Type
	if mode == versioned.ModeFallible {
		declaredErr = r.resolveErrorType(t, diags)
		def.ErrorType = t.Error
	}

	shapes := make([]types.Type, len(t.Chain))
	for i, name := range t.Chain {
		shapes[i] = r.resolveShape(t, i, diags)
		def.Versions = append(def.Versions, Version{Index: i + 1, Shape: name})
	}

	for i := range t.Chain {
		next := domain
		if i+1 < len(shapes) {
			next = shapes[i+1]
		}

		def.Versions[i].Step = r.resolveStep(t, i+1, shapes[i], next, declaredErr, mode, diags)
	}

	def.Project = r.resolveProjection(t, domain, shapes[len(shapes)-1], diags)

	return def, len(diags.Errors) == errorsBefore
}

func (r *Resolver) id(name string) analyze.TypeID {
	return analyze.TypeID{PkgPath: r.pkg.Path, Name: name}
}

// lookupType returns the named type or reports it with suggestions.
func (r *Resolver) lookupType(name, definition, element string, diags *diagnostic.Diagnostics) types.Type {
	info := r.graph.GetType(r.id(name))
	if info == nil {
		diags.AddError(diagnostic.CodeTypeNotFound,
			fmt.Sprintf("type %q not found in package %s", name, r.pkg.Path), definition, element,
			r.suggest(name, r.typeNames())...)

		return nil
	}

	return info.GoType
}

func (r *Resolver) resolveShape(t *schema.TypeDef, i int, diags *diagnostic.Diagnostics) types.Type {
	name := t.Chain[i]
	element := fmt.Sprintf("chain[%d]", i)

	shape := r.lookupType(name, t.Domain, element, diags)
	if shape == nil {
		return nil
	}

	info := r.graph.GetType(r.id(name))
	if info.Kind != analyze.TypeKindStruct {
		diags.AddError(diagnostic.CodeNotAStruct,
			fmt.Sprintf("version %d %q must be a struct, is %s", i+1, name, info.Kind), t.Domain, element)

		return shape
	}

	for _, f := range info.Fields {
		if f.WireName(r.def.Format) == t.Tag {
			diags.AddError(diagnostic.CodeTagConflict,
				fmt.Sprintf("field %s.%s is written as %q, the version tag", name, f.Name, t.Tag), t.Domain, element)
		}
	}

	return shape
}

// resolveErrorType returns the declared error type of a fallible definition.
func (r *Resolver) resolveErrorType(t *schema.TypeDef, diags *diagnostic.Diagnostics) types.Type {
	if t.Error == schema.ErrorBuiltin {
		return errorType
	}

	name, pointer := strings.CutPrefix(t.Error, "*")

	named := r.lookupType(name, t.Domain, "error", diags)
	if named == nil {
		return nil
	}

	declared := named
	if pointer {
		declared = types.NewPointer(named)
	}

	iface := errorType.Underlying().(*types.Interface)
	if !types.Implements(declared, iface) {
		diags.AddError(diagnostic.CodeErrorType, fmt.Sprintf("%s does not implement error", t.Error), t.Domain, "error")
		return nil
	}

	if _, isIface := declared.Underlying().(*types.Interface); !pointer && !isIface {
		diags.AddError(diagnostic.CodeErrorType,
			fmt.Sprintf("%s must be a pointer or interface type to be compared with nil", t.Error), t.Domain, "error")

		return nil
	}

	return declared
}

func (r *Resolver) resolveStep(
	t *schema.TypeDef,
	pos int,
	from, to, declaredErr types.Type,
	mode versioned.Mode,
	diags *diagnostic.Diagnostics,
) Step {
	name := t.StepName(pos)
	element := "steps." + t.Chain[pos-1]
	step := Step{Func: name, From: t.Chain[pos-1], To: t.Next(pos)}

	fn := r.graph.GetFunc(r.id(name))
	if fn == nil {
		suggestions := match.RankFuncs(name, r.funcs(), from, to).
			AboveThreshold(r.config.MinSuggestionScore).
			Top(r.config.MaxSuggestions).
			Names()
		diags.AddError(diagnostic.CodeStepNotFound,
			fmt.Sprintf("step function %q (%s -> %s) not found", name, step.From, step.To), t.Domain, element,
			suggestions...)

		return step
	}

	sig := fn.Signature()
	if sig.Params().Len() != 1 || sig.Variadic() {
		diags.AddError(diagnostic.CodeStepSignature,
			fmt.Sprintf("%s must take exactly one %s", fn, step.From), t.Domain, element)

		return step
	}

	if from != nil && !types.Identical(sig.Params().At(0).Type(), from) {
		diags.AddError(diagnostic.CodeBrokenChain,
			fmt.Sprintf("%s must take %s", fn, step.From), t.Domain, element)
	}

	results := sig.Results()
	if results.Len() < 1 || results.Len() > 2 {
		diags.AddError(diagnostic.CodeStepSignature,
			fmt.Sprintf("%s must return %s, optionally followed by an error", fn, step.To), t.Domain, element)

		return step
	}

	if to != nil && !types.Identical(results.At(0).Type(), to) {
		diags.AddError(diagnostic.CodeBrokenChain,
			fmt.Sprintf("%s must return %s", fn, step.To), t.Domain, element)
	}

	if results.Len() == 2 {
		step.Fallible = true
		r.checkStepError(t, fn, results.At(1).Type(), declaredErr, mode, element, diags)
	}

	return step
}

func (r *Resolver) checkStepError(
	t *schema.TypeDef,
	fn *analyze.FuncInfo,
	got, declared types.Type,
	mode versioned.Mode,
	element string,
	diags *diagnostic.Diagnostics,
) {
	if !types.Implements(got, errorType.Underlying().(*types.Interface)) {
		diags.AddError(diagnostic.CodeStepSignature,
			fmt.Sprintf("second result of %s must be an error", fn), t.Domain, element)

		return
	}

	if mode == versioned.ModeInfallible {
		diags.AddError(diagnostic.CodeFallibleStep,
			fmt.Sprintf("%s may fail but %s is infallible", fn, t.Domain), t.Domain, element)

		return
	}

	if declared == nil {
		return
	}

	if !types.AssignableTo(got, declared) {
		diags.AddError(diagnostic.CodeErrorType,
			fmt.Sprintf("%s returns %s, which is not assignable to %s", fn, types.TypeString(got, r.qualifier), t.Error),
			t.Domain, element)
	}
}

func (r *Resolver) resolveProjection(t *schema.TypeDef, domain, latest types.Type, diags *diagnostic.Diagnostics) Projection {
	proj := Projection{Func: t.Project}

	fn := r.graph.GetFunc(r.id(t.Project))
	if fn == nil {
		suggestions := match.RankFuncs(t.Project, r.funcs(), domain, latest).
			AboveThreshold(r.config.MinSuggestionScore).
			Top(r.config.MaxSuggestions).
			Names()
		diags.AddError(diagnostic.CodeProjectionNotFound,
			fmt.Sprintf("projection %q (%s -> %s) not found", t.Project, t.Domain, t.Latest()), t.Domain, "project",
			suggestions...)

		return proj
	}

	sig := fn.Signature()
	want := fmt.Sprintf("%s must take %s or *%s and return only %s", fn, t.Domain, t.Domain, t.Latest())

	if sig.Params().Len() != 1 || sig.Results().Len() != 1 || sig.Variadic() {
		diags.AddError(diagnostic.CodeProjectionSignature, want, t.Domain, "project")
		return proj
	}

	if domain != nil {
		param := sig.Params().At(0).Type()
		switch {
		case types.Identical(param, domain):
		case types.Identical(param, types.NewPointer(domain)):
			proj.Pointer = true
		default:
			diags.AddError(diagnostic.CodeProjectionSignature, want, t.Domain, "project")
		}
	}

	if latest != nil && !types.Identical(sig.Results().At(0).Type(), latest) {
		diags.AddError(diagnostic.CodeProjectionSignature, want, t.Domain, "project")
	}

	return proj
}

func (r *Resolver) qualifier(p *types.Package) string {
	if p.Path() == r.pkg.Path {
		return ""
	}

	return p.Name()
}

func (r *Resolver) typeNames() []string {
	names := make([]string, 0, len(r.pkg.Types))
	for _, id := range r.pkg.Types {
		names = append(names, id.Name)
	}

	return names
}

func (r *Resolver) funcs() []*analyze.FuncInfo {
	funcs := make([]*analyze.FuncInfo, 0, len(r.pkg.Funcs))
	for _, id := range r.pkg.Funcs {
		funcs = append(funcs, r.graph.GetFunc(id))
	}

	sort.Slice(funcs, func(i, j int) bool { return funcs[i].ID.Name < funcs[j].ID.Name })

	return funcs
}

func (r *Resolver) suggest(name string, names []string) []string {
	return match.Rank(name, names).
		AboveThreshold(r.config.MinSuggestionScore).
		Top(r.config.MaxSuggestions).
		Names()
}
