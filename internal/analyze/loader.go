package analyze

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"path/filepath"
	"reflect"
	"slices"

	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Analyzer loads Go packages and builds a type graph.
type Analyzer struct {
	// Dir is the directory patterns are resolved against. Empty means the
	// current directory.
	Dir string
	// SkipFiles lists file base names whose declarations are ignored. The
	// generator skips its own previous output so a stale file never hides
	// the package.
	SkipFiles []string

	graph     *TypeGraph
	typeCache map[types.Type]*TypeInfo // Cache to handle recursive types
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		graph:     NewTypeGraph(),
		typeCache: make(map[types.Type]*TypeInfo),
	}
}

// LoadPackages loads the specified packages and builds the type graph.
// Patterns are standard Go package patterns (e.g., "./examples/users",
// "evolve-generator/examples/products").
func (a *Analyzer) LoadPackages(patterns ...string) (*TypeGraph, error) {
	cfg := &packages.Config{
		Mode:      LoadMode,
		Dir:       a.Dir,
		ParseFile: a.parseFile,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	for _, pkg := range pkgs {
		a.graph.Packages[pkg.PkgPath] = &PackageInfo{
			Path: pkg.PkgPath,
			Name: pkg.Name,
			Dir:  packageDir(pkg),
		}
	}

	for _, pkg := range pkgs {
		a.processPackage(pkg)
	}

	return a.graph, nil
}

// Graph returns the current type graph.
func (a *Analyzer) Graph() *TypeGraph {
	return a.graph
}

func (a *Analyzer) parseFile(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
	mode := parser.AllErrors | parser.ParseComments
	if slices.Contains(a.SkipFiles, filepath.Base(filename)) {
		mode = parser.PackageClauseOnly
	}

	return parser.ParseFile(fset, filename, src, mode)
}

func packageDir(pkg *packages.Package) string {
	if len(pkg.GoFiles) == 0 {
		return ""
	}

	return filepath.Dir(pkg.GoFiles[0])
}

// processPackage extracts named types and top-level functions.
func (a *Analyzer) processPackage(pkg *packages.Package) {
	pkgInfo := a.graph.Packages[pkg.PkgPath]

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		id := TypeID{PkgPath: pkg.PkgPath, Name: name}
		file := filepath.Base(pkg.Fset.Position(obj.Pos()).Filename)

		switch obj := obj.(type) {
		case *types.TypeName:
			if obj.IsAlias() {
				continue
			}

			if named, ok := obj.Type().(*types.Named); ok && named.TypeParams().Len() > 0 {
				continue
			}

			info := a.analyzeType(obj.Type())
			info.ID = id
			info.File = file

			a.graph.Types[id] = info
			pkgInfo.Types = append(pkgInfo.Types, id)

		case *types.Func:
			sig := obj.Type().(*types.Signature)
			if sig.TypeParams().Len() > 0 {
				continue
			}

			a.graph.Funcs[id] = a.analyzeFunc(id, obj, file)
			pkgInfo.Funcs = append(pkgInfo.Funcs, id)
		}
	}
}

func (a *Analyzer) analyzeFunc(id TypeID, fn *types.Func, file string) *FuncInfo {
	sig := fn.Type().(*types.Signature)

	info := &FuncInfo{ID: id, Object: fn, File: file}
	for i := range sig.Params().Len() {
		info.Params = append(info.Params, a.analyzeType(sig.Params().At(i).Type()))
	}

	for i := range sig.Results().Len() {
		info.Results = append(info.Results, a.analyzeType(sig.Results().At(i).Type()))
	}

	return info
}

// analyzeType recursively analyzes a go/types.Type and returns a TypeInfo.
func (a *Analyzer) analyzeType(t types.Type) *TypeInfo {
	t = types.Unalias(t)

	if cached, ok := a.typeCache[t]; ok {
		return cached
	}

	info := &TypeInfo{
		GoType: t,
	}

	// Pre-cache to handle recursive types (we'll fill in details)
	a.typeCache[t] = info

	switch tt := t.(type) {
	case *types.Named:
		a.analyzeNamedType(tt, info)

	case *types.Basic:
		info.Kind = TypeKindBasic

	case *types.Pointer:
		info.Kind = TypeKindPointer
		info.ElemType = a.analyzeType(tt.Elem())

	case *types.Slice:
		info.Kind = TypeKindSlice
		info.ElemType = a.analyzeType(tt.Elem())

	case *types.Struct:
		info.Kind = TypeKindStruct
		a.analyzeStructFields(tt, info)

	case *types.Interface:
		info.Kind = TypeKindInterface

	default:
		// Maps, channels, signatures, etc.
		info.Kind = TypeKindUnknown
	}

	return info
}

// analyzeNamedType analyzes a named type. Named types of packages outside
// the loaded set stay opaque.
func (a *Analyzer) analyzeNamedType(named *types.Named, info *TypeInfo) {
	obj := named.Obj()
	if obj.Pkg() != nil {
		info.ID = TypeID{PkgPath: obj.Pkg().Path(), Name: obj.Name()}
	} else {
		info.ID = TypeID{Name: obj.Name()}
	}

	switch ut := named.Underlying().(type) {
	case *types.Interface:
		info.Kind = TypeKindInterface

	case *types.Struct:
		if a.isExternalPackage(info.ID.PkgPath) {
			info.Kind = TypeKindExternal
			return
		}

		info.Kind = TypeKindStruct
		a.analyzeStructFields(ut, info)

	default:
		if a.isExternalPackage(info.ID.PkgPath) {
			info.Kind = TypeKindExternal
			return
		}

		info.Kind = TypeKindAlias
		info.ElemType = a.analyzeType(ut)
	}
}

// isExternalPackage returns true if the package is not in our analyzed set.
func (a *Analyzer) isExternalPackage(pkgPath string) bool {
	_, ok := a.graph.Packages[pkgPath]
	return !ok
}

// analyzeStructFields extracts exported fields from a struct type.
func (a *Analyzer) analyzeStructFields(st *types.Struct, info *TypeInfo) {
	for i := range st.NumFields() {
		field := st.Field(i)
		if !field.Exported() {
			continue
		}

		info.Fields = append(info.Fields, FieldInfo{
			Name:     field.Name(),
			Type:     a.analyzeType(field.Type()),
			Tag:      reflect.StructTag(st.Tag(i)),
			Embedded: field.Embedded(),
			Index:    i,
		})
	}
}

// GetStruct returns the TypeInfo for a named struct.
func (a *Analyzer) GetStruct(pkgPath, typeName string) (*TypeInfo, error) {
	id := TypeID{PkgPath: pkgPath, Name: typeName}

	info := a.graph.GetType(id)
	if info == nil {
		return nil, fmt.Errorf("type %s not found", id)
	}

	if info.Kind != TypeKindStruct {
		return nil, fmt.Errorf("type %s is not a struct (kind: %s)", id, info.Kind)
	}

	return info, nil
}
