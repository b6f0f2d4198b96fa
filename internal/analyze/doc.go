// Package analyze provides package loading and type graph extraction.
//
// It uses golang.org/x/tools/go/packages with AST and go/types
// to build an in-memory model of the named types and top-level functions
// a definition file refers to.
//
// Key types:
//   - TypeID: package import path + type or function name
//   - TypeInfo: describes kind (struct/basic/alias/pointer/slice/interface/external)
//   - FieldInfo: describes field name, type, tags, and embedding
//   - FuncInfo: describes parameter and result types of a function
package analyze
