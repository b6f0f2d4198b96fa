package versioned

import (
	"fmt"
	"path"
	"reflect"
	"runtime"
	"strings"

	"evolve-generator/internal/common"
)

var errorType = reflect.TypeFor[error]()

// Step is one migration edge of a chain: a function from one shape to the
// next, or from the latest shape to the domain type.
type Step struct {
	From, To reflect.Type
	// Err is the declared error result type, nil for total steps.
	Err          reflect.Type
	PackageAlias string
	Name         string

	apply func(any) (any, error)
}

// Fallible reports whether the step declares an error result.
func (s Step) Fallible() bool { return s.Err != nil }

func (s Step) String() string {
	return fmt.Sprintf("%s -> %s", typeName(s.From), typeName(s.To))
}

// Edge wraps a total step function.
func Edge[A, B any](fn func(A) B) Step {
	alias, name := funcName(fn)

	return Step{
		From:         reflect.TypeFor[A](),
		To:           reflect.TypeFor[B](),
		PackageAlias: alias,
		Name:         name,
		apply: func(v any) (any, error) {
			return fn(v.(A)), nil
		},
	}
}

// TryEdge wraps a fallible step function.
func TryEdge[A, B any](fn func(A) (B, error)) Step {
	alias, name := funcName(fn)

	return Step{
		From:         reflect.TypeFor[A](),
		To:           reflect.TypeFor[B](),
		Err:          errorType,
		PackageAlias: alias,
		Name:         name,
		apply: func(v any) (any, error) {
			return fn(v.(A))
		},
	}
}

// ParseStep inspects fn and returns the Step it describes. A Step value is
// returned unchanged.
//
// Supports signatures:
//   - func(src A) (dst B)
//   - func(src A) (dst B, E) where E implements error
func ParseStep(fn any) (Step, error) {
	if s, ok := fn.(Step); ok {
		return s, nil
	}

	if fn == nil {
		return Step{}, ErrStepNotAFunction
	}

	fnVal := reflect.ValueOf(fn)
	fnType := fnVal.Type()
	if fnType.Kind() != reflect.Func {
		return Step{}, ErrStepNotAFunction
	}

	if fnType.NumIn() != 1 || fnType.IsVariadic() || fnType.NumOut() == 0 {
		return Step{}, ErrNotAStep
	}

	src, dst := fnType.In(0), fnType.Out(0)
	if isDoublePointer(src) || isDoublePointer(dst) {
		return Step{}, ErrDoublePointer
	}

	alias, name := funcName(fn)
	step := Step{
		From:         src,
		To:           dst,
		PackageAlias: alias,
		Name:         name,
	}

	switch fnType.NumOut() {
	default:
		return Step{}, ErrNotAStep

	case 1:
		step.apply = func(v any) (any, error) {
			out := fnVal.Call([]reflect.Value{valueOf(v, src)})
			return out[0].Interface(), nil
		}

		return step, nil

	case 2:
		last := fnType.Out(1)
		if !last.Implements(errorType) {
			return Step{}, ErrNotAStep
		}

		step.Err = last
		step.apply = func(v any) (any, error) {
			out := fnVal.Call([]reflect.Value{valueOf(v, src)})
			if !out[1].IsZero() {
				return nil, out[1].Interface().(error)
			}

			return out[0].Interface(), nil
		}

		return step, nil
	}
}

func isDoublePointer(t reflect.Type) bool {
	return t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Pointer
}

// valueOf converts v for a call expecting t; nil becomes the zero value.
func valueOf(v any, t reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}

	return reflect.ValueOf(v)
}

func funcName(fn any) (alias, name string) {
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return "", ""
	}

	// "example.com/pkg.Func" -> "pkg", "Func"
	dir, file := path.Split(f.Name())
	pkg, name := common.Unpack2(strings.SplitN(file, ".", 2))

	if dir == "" && name == "" {
		return "", pkg
	}

	return pkg, name
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}

// shapeName is the unqualified name reported in migration errors, the
// spelling generated conversions use.
func shapeName(t reflect.Type) string {
	if t != nil && t.Name() != "" {
		return t.Name()
	}

	return typeName(t)
}
