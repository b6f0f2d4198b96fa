package gen

import "text/template"

var fileTemplate = template.Must(template.New("file").Parse(`{{ .Header }}

package {{ .Package }}

import (
{{- range .StdImports }}
	"{{ . }}"
{{- end }}
{{ range .Imports }}
	"{{ . }}"
{{- end }}
)
{{ range .Types }}{{ template "type" . }}{{ end }}`))

func init() {
	template.Must(fileTemplate.New("type").Parse(`
// {{ .Rep }} holds one version of {{ .Domain }}. On the wire it is a flat
// {{ .Format }} object whose {{ printf "%q" .Tag }} key carries the version.
type {{ .Rep }} interface {
	// Version returns the 1-based version.
	Version() uint32
	// IsCurrent reports whether this is the latest version.
	IsCurrent() bool

	is{{ .Rep }}()
}

// {{ .Rep }}Current is the latest version of {{ .Domain }}.
const {{ .Rep }}Current uint32 = {{ .Current }}

var {{ .FormatVar }} = wire.{{ .FormatFunc }}()
{{ range .Versions }}
// {{ .Variant }} holds version {{ .Index }} of {{ .Domain }}.
type {{ .Variant }} struct {
	Value {{ .Shape }}
}

func ({{ .Variant }}) Version() uint32 { return {{ .Index }} }
func ({{ .Variant }}) IsCurrent() bool { return {{ .IsCurrent }} }
func ({{ .Variant }}) is{{ .Rep }}()   {}

// {{ .Rep }}Of{{ .Shape }} wraps v into its variant.
func {{ .Rep }}Of{{ .Shape }}(v {{ .Shape }}) {{ .Rep }} {
	return {{ .Variant }}{Value: v}
}
{{ end }}
// Marshal{{ .Rep }} writes v as a flat object tagged with its version.
func Marshal{{ .Rep }}(v {{ .Rep }}) ([]byte, error) {
	switch v := v.(type) {
{{- range .Versions }}
	case {{ .Variant }}:
		return wire.Encode({{ $.FormatVar }}, {{ printf "%q" $.Tag }}, {{ .Index }}, v.Value)
{{- end }}
	}

	return nil, wire.Wrap({{ .FormatVar }}, wire.OpEncode, fmt.Errorf("%w: %T", wire.ErrUnknownVersion, v))
}

// Unmarshal{{ .Rep }} reads a flat object of any known version.
func Unmarshal{{ .Rep }}(data []byte) ({{ .Rep }}, error) {
	version, err := wire.DecodeVersion({{ .FormatVar }}, data, {{ printf "%q" .Tag }}, int({{ .Rep }}Current))
	if err != nil {
		return nil, err
	}

	switch version {
{{- range .Versions }}
	case {{ .Index }}:
		var v {{ .Shape }}
		if err := wire.DecodePayload({{ $.FormatVar }}, data, &v); err != nil {
			return nil, err
		}

		return {{ .Variant }}{Value: v}, nil
{{- end }}
	}

	return nil, wire.Wrap({{ .FormatVar }}, wire.OpDecode, fmt.Errorf("%w %d", wire.ErrUnknownVersion, version))
}
{{ if .Fallible }}
// {{ .Domain }}From{{ .Rep }} migrates any version into {{ .Domain }}. Steps
// run in version order and the first failure is returned as a
// *versioned.MigrationError.
func {{ .Domain }}From{{ .Rep }}(v {{ .Rep }}) ({{ .Domain }}, error) {
	switch v := v.(type) {
{{- range .Versions }}
	case {{ .Variant }}:
		return {{ .Migrate }}(v.Value)
{{- end }}
	}

	var zero {{ .Domain }}
	return zero, fmt.Errorf("%w: %T", versioned.ErrShapeMismatch, v)
}
{{ range .Versions }}{{ template "fallible" . }}{{ end }}
{{- else }}
// {{ .Domain }}From{{ .Rep }} migrates any version into {{ .Domain }}.
func {{ .Domain }}From{{ .Rep }}(v {{ .Rep }}) {{ .Domain }} {
	switch v := v.(type) {
{{- range .Versions }}
	case {{ .Variant }}:
		return {{ .Migrate }}(v.Value)
{{- end }}
	}

	panic(fmt.Sprintf("unexpected {{ .Rep }} variant %T", v))
}
{{ range .Versions }}{{ template "infallible" . }}{{ end }}
{{- end }}
// {{ .Rep }}From{{ .Domain }} projects d onto the latest version.
func {{ .Rep }}From{{ .Domain }}(d *{{ .Domain }}) {{ .Rep }} {
	return {{ .Latest.Variant }}{Value: {{ .Project.Func }}({{ if .Project.Pointer }}d{{ else }}*d{{ end }})}
}
{{ if .Transparent }}
// MarshalJSON writes d in the latest version of {{ .Rep }}.
func (d {{ .Domain }}) MarshalJSON() ([]byte, error) {
	return Marshal{{ .Rep }}({{ .Rep }}From{{ .Domain }}(&d))
}

// UnmarshalJSON reads any version of {{ .Rep }} into d.
func (d *{{ .Domain }}) UnmarshalJSON(data []byte) error {
	v, err := Unmarshal{{ .Rep }}(data)
	if err != nil {
		return err
	}
{{ if .Fallible }}
	migrated, err := {{ .Domain }}From{{ .Rep }}(v)
	if err != nil {
		return wire.Wrap({{ .FormatVar }}, wire.OpDecode, err)
	}

	*d = migrated
{{ else }}
	*d = {{ .Domain }}From{{ .Rep }}(v)
{{ end }}
	return nil
}
{{ end }}`))

	template.Must(fileTemplate.New("infallible").Parse(`
func {{ .Migrate }}(v{{ .Index }} {{ .Shape }}) {{ .Domain }} {
{{- if .Next }}
	return {{ .Next }}({{ .Step.Func }}(v{{ .Index }}))
{{- else }}
	return {{ .Step.Func }}(v{{ .Index }})
{{- end }}
}
`))

	template.Must(fileTemplate.New("fallible").Parse(`
func {{ .Migrate }}(v{{ .Index }} {{ .Shape }}) ({{ .Domain }}, error) {
{{- if not .Step.Fallible }}
{{- if .Next }}
	return {{ .Next }}({{ .Step.Func }}(v{{ .Index }}))
{{- else }}
	return {{ .Step.Func }}(v{{ .Index }}), nil
{{- end }}
{{- else }}
	next, err := {{ .Step.Func }}(v{{ .Index }})
	if err != nil {
		var zero {{ .Domain }}
		return zero, versioned.StepFailed({{ printf "%q" .Domain }}, {{ .Index }}, {{ printf "%q" .Step.From }}, {{ printf "%q" .Step.To }}, err)
	}
{{ if .Next }}
	return {{ .Next }}(next)
{{- else }}
	return next, nil
{{- end }}
{{- end }}
}
`))
}
