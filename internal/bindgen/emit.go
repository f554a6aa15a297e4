package bindgen

import (
	"bytes"
	"fmt"
	"go/format"
	"text/template"
)

type itemKind string

const (
	itemAlias   itemKind = "alias"
	itemVariant itemKind = "variant"
	itemFunc    itemKind = "func"
	itemVar     itemKind = "var"
)

type member struct {
	Name  string
	CName string
	Value string
}

type variant struct {
	Underlying    string
	Raw           string // parameter type of the FromValue function
	CType         string
	Members       []member
	Distinct      []member
	ValuesFunc    string
	FromValueFunc string
}

// item is one emitted declaration. Fields are used per Kind.
type item struct {
	Kind      itemKind
	GoName    string
	CName     string
	CSpelling string
	Target    string
	Variant   *variant
	Params    string
	Result    string
	Call      string
}

type frame struct {
	Package string
	Source  string
	CFlags  string
	LDFlags string
	Include string
	Imports []string
	Items   []item
}

const moduleTemplate = `// Code generated by ayamsys from {{.Source}}. DO NOT EDIT.

package {{.Package}}

/*
#cgo CFLAGS: {{.CFlags}}
#cgo LDFLAGS: {{.LDFlags}}
#include "{{.Include}}"
*/
import "C"
{{- if .Imports}}

import (
{{- range .Imports}}
	"{{.}}"
{{- end}}
)
{{- end}}
{{range .Items}}
{{- if eq .Kind "alias"}}{{template "alias" .}}
{{- else if eq .Kind "variant"}}{{template "variant" .}}
{{- else if eq .Kind "func"}}{{template "func" .}}
{{- else if eq .Kind "var"}}{{template "var" .}}
{{- end}}
{{- end}}
`

const aliasTemplate = `
// {{.GoName}} is the C type {{.CSpelling}}.
type {{.GoName}} = {{.Target}}
`

const variantTemplate = `
// {{.GoName}} is the closed set of discriminants of the C type {{.CSpelling}}.
type {{.GoName}} {{.Variant.Underlying}}

const (
{{- range .Variant.Members}}
	{{.Name}} {{$.GoName}} = {{.Value}}
{{- end}}
)

// {{.Variant.ValuesFunc}} returns every distinct discriminant of {{.GoName}} in declaration order.
func {{.Variant.ValuesFunc}}() []{{.GoName}} {
	return []{{.GoName}}{ {{- range $i, $m := .Variant.Distinct}}{{if $i}}, {{end}}{{$m.Name}}{{end -}} }
}

// {{.Variant.FromValueFunc}} converts a raw C value, reporting false for values outside the enum.
func {{.Variant.FromValueFunc}}(raw {{.Variant.Raw}}) ({{.GoName}}, bool) {
	switch raw {
	case {{range $i, $m := .Variant.Distinct}}{{if $i}}, {{end}}{{$m.Value}}{{end}}:
		return {{.GoName}}(raw), true
	}
	return 0, false
}

// Valid reports whether v is one of the declared discriminants.
func (v {{.GoName}}) Valid() bool {
	_, ok := {{.Variant.FromValueFunc}}({{.Variant.Raw}}(v))
	return ok
}

// C converts v to the C representation.
func (v {{.GoName}}) C() {{.Variant.CType}} {
	return {{.Variant.CType}}(v)
}

func (v {{.GoName}}) String() string {
	switch v {
{{- range .Variant.Distinct}}
	case {{.Name}}:
		return "{{.CName}}"
{{- end}}
	}
	return "{{.GoName}}(" + {{if eq .Variant.Raw "uint64"}}strconv.FormatUint(uint64(v), 10){{else}}strconv.FormatInt(int64(v), 10){{end}} + ")"
}
`

const funcTemplate = `
// {{.GoName}} calls {{.CName}}.
func {{.GoName}}({{.Params}}){{if .Result}} {{.Result}}{{end}} {
	{{if .Result}}return {{end}}{{.Call}}
}
`

const varTemplate = `
// {{.GoName}} returns the address of the C variable {{.CName}}.
func {{.GoName}}() {{.Result}} {
	return &C.{{.CName}}
}
`

var moduleTmpl = template.Must(template.Must(template.Must(template.Must(template.Must(
	template.New("module").Parse(moduleTemplate)).
	New("alias").Parse(aliasTemplate)).
	New("variant").Parse(variantTemplate)).
	New("func").Parse(funcTemplate)).
	New("var").Parse(varTemplate))

// render executes the module template and gofmts the result.
func render(f frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := moduleTmpl.ExecuteTemplate(&buf, "module", f); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w\n%s", err, buf.Bytes())
	}
	return src, nil
}
