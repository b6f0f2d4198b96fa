package plan

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"evolve-generator/internal/common"
	"evolve-generator/internal/diagnostic"
)

// GeneratedNames lists the package-level identifiers the generator declares
// for d.
func GeneratedNames(d *Definition) []string {
	prefix := lowerFirst(d.Rep)
	names := []string{
		d.Rep,
		d.Rep + "Current",
		prefix + "Format",
		"Marshal" + d.Rep,
		"Unmarshal" + d.Rep,
		d.Domain + "From" + d.Rep,
		d.Rep + "From" + d.Domain,
	}

	for _, v := range d.Versions {
		names = append(names,
			fmt.Sprintf("%sV%d", d.Rep, v.Index),
			fmt.Sprintf("%sFromV%d", prefix, v.Index),
			d.Rep+"Of"+v.Shape,
		)
	}

	return names
}

// checkGeneratedNames reports generated identifiers declared twice, either
// by two definitions or by the package itself.
func (r *Resolver) checkGeneratedNames(p *ResolvedPlan) {
	owner := map[string]string{}

	var all []string
	for i := range p.Definitions {
		d := &p.Definitions[i]
		for _, name := range GeneratedNames(d) {
			if _, ok := owner[name]; !ok {
				owner[name] = d.Domain
			}

			all = append(all, name)
		}
	}

	for _, name := range common.Duplicates(all) {
		p.Diagnostics.AddError(diagnostic.CodeGeneratedName,
			fmt.Sprintf("generated identifier %q is declared by more than one definition", name), owner[name], "rep")
	}

	for _, name := range all {
		if info := r.graph.GetType(r.id(name)); info != nil {
			p.Diagnostics.AddError(diagnostic.CodeGeneratedName,
				fmt.Sprintf("generated identifier %q is already declared in %s", name, info.File), owner[name], "rep")
		}

		if fn := r.graph.GetFunc(r.id(name)); fn != nil {
			p.Diagnostics.AddError(diagnostic.CodeGeneratedName,
				fmt.Sprintf("generated identifier %q is already declared in %s", name, fn.File), owner[name], "rep")
		}
	}
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return string(unicode.ToLower(r)) + s[size:]
}
