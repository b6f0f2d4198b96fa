package analyze

import (
	"go/types"
	"reflect"
	"strings"

	"evolve-generator/internal/common"
)

// TypeID uniquely identifies a type or function by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "evolve-generator/examples/users"
	Name    string // e.g., "UserV1"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// TypeKind represents the kind of a type.
type TypeKind int

const (
	TypeKindUnknown   TypeKind = iota
	TypeKindBasic              // int, string, bool, etc.
	TypeKindStruct             // struct type
	TypeKindPointer            // pointer to another type
	TypeKindSlice              // slice of another type
	TypeKindInterface          // interface type, error included
	TypeKindAlias              // named type wrapping a non-struct type
	TypeKindExternal           // external/opaque type (e.g., time.Time)
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case TypeKindBasic:
		return "basic"
	case TypeKindStruct:
		return "struct"
	case TypeKindPointer:
		return "pointer"
	case TypeKindSlice:
		return "slice"
	case TypeKindInterface:
		return "interface"
	case TypeKindAlias:
		return "alias"
	case TypeKindExternal:
		return "external"
	default:
		return common.UnknownStr
	}
}

// TypeInfo describes a Go type in the type graph.
type TypeInfo struct {
	ID       TypeID      // Unique identifier (empty for unnamed types like *T or []T)
	Kind     TypeKind    // Kind of type
	ElemType *TypeInfo   // For pointers and slices, the element type
	Fields   []FieldInfo // For structs, the list of exported fields
	GoType   types.Type  // The original go/types.Type
	File     string      // Base name of the declaring file, named types only
}

// IsNamed returns true if this type has a name (TypeID is set).
func (t *TypeInfo) IsNamed() bool {
	return t.ID.Name != ""
}

// FieldInfo describes a struct field.
type FieldInfo struct {
	Name     string            // Go field name
	Type     *TypeInfo         // Field type
	Tag      reflect.StructTag // Raw struct tag
	Embedded bool              // Whether the field is embedded (anonymous)
	Index    int               // Field index in the struct
}

// JSONName returns the JSON tag name if present, otherwise the field name.
func (f *FieldInfo) JSONName() string {
	return f.WireName("json")
}

// WireName returns the key the field is written under by an encoder that
// honours struct tags named format. yaml and toml fall back to the
// lowercased field name, json to the field name itself.
func (f *FieldInfo) WireName(format string) string {
	if tag := f.Tag.Get(format); tag != "" && tag != "-" {
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			return name
		}
	}

	if format == "yaml" {
		return strings.ToLower(f.Name)
	}

	return f.Name
}

// HasTag returns true if the field has the specified tag.
func (f *FieldInfo) HasTag(key string) bool {
	return f.Tag.Get(key) != ""
}

// FuncInfo describes a top-level function.
type FuncInfo struct {
	ID      TypeID
	Params  []*TypeInfo
	Results []*TypeInfo
	Object  *types.Func
	File    string
}

// Signature returns the go/types signature of the function.
func (f *FuncInfo) Signature() *types.Signature {
	return f.Object.Type().(*types.Signature)
}

// String renders the declaration with package-local type names, e.g.
// "func UserV1ToUserV2(v UserV1) UserV2".
func (f *FuncInfo) String() string {
	return types.ObjectString(f.Object, types.RelativeTo(f.Object.Pkg()))
}

// TypeGraph holds all analyzed types and functions from loaded packages.
type TypeGraph struct {
	// Types maps TypeID to TypeInfo for all named types.
	Types map[TypeID]*TypeInfo
	// Funcs maps TypeID to FuncInfo for all top-level functions.
	Funcs map[TypeID]*FuncInfo
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo
}

// NewTypeGraph creates a new empty TypeGraph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Types:    make(map[TypeID]*TypeInfo),
		Funcs:    make(map[TypeID]*FuncInfo),
		Packages: make(map[string]*PackageInfo),
	}
}

// GetType returns the TypeInfo for a given TypeID, or nil if not found.
func (g *TypeGraph) GetType(id TypeID) *TypeInfo {
	return g.Types[id]
}

// GetFunc returns the FuncInfo for a given TypeID, or nil if not found.
func (g *TypeGraph) GetFunc(id TypeID) *FuncInfo {
	return g.Funcs[id]
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path  string   // Import path
	Name  string   // Package name
	Dir   string   // Directory holding the package sources
	Types []TypeID // Named types defined in this package
	Funcs []TypeID // Top-level functions defined in this package
}
