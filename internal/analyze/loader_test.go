package analyze

import (
	"go/types"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	usersPkg    = "evolve-generator/examples/users"
	productsPkg = "evolve-generator/examples/products"
	accountsPkg = "evolve-generator/examples/accounts"
)

func load(t *testing.T, skip []string, patterns ...string) *TypeGraph {
	t.Helper()

	analyzer := NewAnalyzer()
	analyzer.SkipFiles = skip

	graph, err := analyzer.LoadPackages(patterns...)
	require.NoError(t, err)
	require.NotNil(t, graph)

	return graph
}

func TestAnalyzer_LoadPackages(t *testing.T) {
	graph := load(t, nil, usersPkg, productsPkg)

	require.Contains(t, graph.Packages, usersPkg)
	require.Contains(t, graph.Packages, productsPkg)

	users := graph.Packages[usersPkg]
	assert.Equal(t, "users", users.Name)
	assert.Equal(t, "users", filepath.Base(users.Dir))

	for _, name := range []string{"UserV1", "UserV2", "User"} {
		assert.Contains(t, users.Types, TypeID{PkgPath: usersPkg, Name: name})
	}

	for _, name := range []string{"UserV1ToUserV2", "UserV2ToUser", "UserToUserV2"} {
		assert.Contains(t, users.Funcs, TypeID{PkgPath: usersPkg, Name: name})
	}

	assert.Equal(t, "users.go", graph.GetType(TypeID{PkgPath: usersPkg, Name: "UserV1"}).File)
	assert.Equal(t, "versions_gen.go", graph.GetType(TypeID{PkgPath: usersPkg, Name: "UserVersions"}).File)
}

func TestAnalyzer_SkipFiles(t *testing.T) {
	graph := load(t, []string{"versions_gen.go"}, usersPkg)

	assert.NotNil(t, graph.GetType(TypeID{PkgPath: usersPkg, Name: "User"}))
	assert.Nil(t, graph.GetType(TypeID{PkgPath: usersPkg, Name: "UserVersions"}))
	assert.Nil(t, graph.GetFunc(TypeID{PkgPath: usersPkg, Name: "MarshalUserVersions"}))
	assert.NotNil(t, graph.GetFunc(TypeID{PkgPath: usersPkg, Name: "UserV2ToUser"}))
}

func TestAnalyzer_Fields(t *testing.T) {
	graph := load(t, nil, usersPkg)

	v2 := graph.GetType(TypeID{PkgPath: usersPkg, Name: "UserV2"})
	require.NotNil(t, v2)
	assert.Equal(t, TypeKindStruct, v2.Kind)
	require.Len(t, v2.Fields, 2)

	fullName := v2.Fields[0]
	assert.Equal(t, "FullName", fullName.Name)
	assert.Equal(t, "full_name", fullName.JSONName())
	assert.Equal(t, TypeKindBasic, fullName.Type.Kind)

	email := v2.Fields[1]
	assert.Equal(t, "email", email.JSONName())
	assert.Equal(t, 1, email.Index)
	assert.Equal(t, TypeKindPointer, email.Type.Kind)
	require.NotNil(t, email.Type.ElemType)
	assert.Equal(t, TypeKindBasic, email.Type.ElemType.Kind)
}

func TestAnalyzer_Funcs(t *testing.T) {
	graph := load(t, nil, productsPkg)

	step := graph.GetFunc(TypeID{PkgPath: productsPkg, Name: "ProductV1ToProductV2"})
	require.NotNil(t, step)
	assert.Equal(t, "products.go", step.File)
	assert.Equal(t, "func ProductV1ToProductV2(v ProductV1) (ProductV2, *ProductError)", step.String())

	require.Len(t, step.Params, 1)
	require.Len(t, step.Results, 2)
	assert.Equal(t, "ProductV1", step.Params[0].ID.Name)
	assert.Equal(t, TypeKindPointer, step.Results[1].Kind)
	assert.Equal(t, "ProductError", step.Results[1].ElemType.ID.Name)

	sig := step.Signature()
	assert.Equal(t, 1, sig.Params().Len())
	assert.Equal(t, 2, sig.Results().Len())

	// Methods are not top-level functions.
	assert.Nil(t, graph.GetFunc(TypeID{PkgPath: productsPkg, Name: "Price"}))
}

func TestAnalyzer_NamedNonStruct(t *testing.T) {
	graph := load(t, nil, accountsPkg)

	status := graph.GetType(TypeID{PkgPath: accountsPkg, Name: "Status"})
	require.NotNil(t, status)
	assert.Equal(t, TypeKindAlias, status.Kind)
	require.NotNil(t, status.ElemType)
	assert.Equal(t, TypeKindBasic, status.ElemType.Kind)

	v2 := graph.GetType(TypeID{PkgPath: accountsPkg, Name: "AccountV2"})
	require.NotNil(t, v2)
	assert.Equal(t, TypeKindSlice, v2.Fields[2].Type.Kind)
	assert.Equal(t, "roles", v2.Fields[2].WireName("yaml"))
}

func TestAnalyzer_SkipsGenericsAndKeepsInterfaces(t *testing.T) {
	graph := load(t, nil, "evolve-generator/versioned", "evolve-generator/wire")

	assert.NotNil(t, graph.GetType(TypeID{PkgPath: "evolve-generator/versioned", Name: "Config"}))
	assert.Nil(t, graph.GetType(TypeID{PkgPath: "evolve-generator/versioned", Name: "Chain"}))
	assert.NotNil(t, graph.GetFunc(TypeID{PkgPath: "evolve-generator/versioned", Name: "StepFailed"}))
	assert.Nil(t, graph.GetFunc(TypeID{PkgPath: "evolve-generator/versioned", Name: "Define"}))

	format := graph.GetType(TypeID{PkgPath: "evolve-generator/wire", Name: "Format"})
	require.NotNil(t, format)
	assert.Equal(t, TypeKindInterface, format.Kind)
}

func TestAnalyzer_ExternalTypesStayOpaque(t *testing.T) {
	analyzer := NewAnalyzer()

	pkg := types.NewPackage("time", "time")
	obj := types.NewTypeName(0, pkg, "Time", nil)
	named := types.NewNamed(obj, types.NewStruct(nil, nil), nil)

	info := analyzer.analyzeType(named)
	assert.Equal(t, TypeKindExternal, info.Kind)
	assert.Equal(t, TypeID{PkgPath: "time", Name: "Time"}, info.ID)
	assert.Empty(t, info.Fields)
}

func TestAnalyzer_LoadErrors(t *testing.T) {
	_, err := NewAnalyzer().LoadPackages("evolve-generator/examples/does-not-exist")
	require.Error(t, err)
}

func TestAnalyzer_GetStruct(t *testing.T) {
	analyzer := NewAnalyzer()
	_, err := analyzer.LoadPackages(accountsPkg)
	require.NoError(t, err)

	info, err := analyzer.GetStruct(accountsPkg, "AccountV1")
	require.NoError(t, err)
	assert.Equal(t, "AccountV1", info.ID.Name)

	_, err = analyzer.GetStruct(accountsPkg, "Status")
	require.ErrorContains(t, err, "is not a struct (kind: alias)")

	_, err = analyzer.GetStruct(accountsPkg, "Missing")
	require.ErrorContains(t, err, "not found")
}

func TestTypeID_String(t *testing.T) {
	assert.Equal(t, "evolve-generator/examples/users.User", TypeID{PkgPath: usersPkg, Name: "User"}.String())
	assert.Equal(t, "int", TypeID{Name: "int"}.String())
}

func TestTypeKind_String(t *testing.T) {
	assert.Equal(t, "basic", TypeKindBasic.String())
	assert.Equal(t, "struct", TypeKindStruct.String())
	assert.Equal(t, "pointer", TypeKindPointer.String())
	assert.Equal(t, "slice", TypeKindSlice.String())
	assert.Equal(t, "interface", TypeKindInterface.String())
	assert.Equal(t, "alias", TypeKindAlias.String())
	assert.Equal(t, "external", TypeKindExternal.String())
	assert.Equal(t, "unknown", TypeKindUnknown.String())
}

func TestFieldInfo_WireName(t *testing.T) {
	tests := []struct {
		name   string
		field  FieldInfo
		format string
		want   string
	}{
		{"json tag", FieldInfo{Name: "FullName", Tag: `json:"full_name"`}, "json", "full_name"},
		{"json options only", FieldInfo{Name: "FullName", Tag: `json:",omitempty"`}, "json", "FullName"},
		{"json skipped", FieldInfo{Name: "Secret", Tag: `json:"-"`}, "json", "Secret"},
		{"json untagged", FieldInfo{Name: "Login"}, "json", "Login"},
		{"yaml tag", FieldInfo{Name: "Roles", Tag: `yaml:"roles,omitempty"`}, "yaml", "roles"},
		{"yaml untagged", FieldInfo{Name: "Login"}, "yaml", "login"},
		{"toml untagged", FieldInfo{Name: "Login"}, "toml", "Login"},
		{"toml tag", FieldInfo{Name: "Login", Tag: `toml:"login"`}, "toml", "login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.field.WireName(tt.format))
		})
	}
}

func TestFieldInfo_HasTag(t *testing.T) {
	f := FieldInfo{Name: "Login", Tag: reflect.StructTag(`yaml:"login"`)}
	assert.True(t, f.HasTag("yaml"))
	assert.False(t, f.HasTag("json"))
}
