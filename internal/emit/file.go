package emit

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"
)

// importSpec is one import line.
type importSpec struct {
	Alias string
	Path  string
}

// File is one generated Go source file under construction.
type File struct {
	Name    string
	Package string
	// Doc is an optional package comment, written only when non-empty.
	Doc string

	imports map[string]importSpec
	decls   []string
}

// NewFile creates an empty file for package pkg.
func NewFile(name, pkg string) *File {
	return &File{
		Name:    name,
		Package: pkg,
		imports: make(map[string]importSpec),
	}
}

// Import adds an import. Standard library imports may be omitted since
// rendering resolves them.
func (f *File) Import(path string) {
	f.ImportAs("", path)
}

// ImportAs adds an aliased import.
func (f *File) ImportAs(alias, path string) {
	f.imports[path] = importSpec{Alias: alias, Path: path}
}

// Add appends a top-level declaration.
func (f *File) Add(decl string) {
	decl = strings.TrimSpace(decl)
	if decl != "" {
		f.decls = append(f.decls, decl)
	}
}

// Empty reports whether no declarations were added.
func (f *File) Empty() bool {
	return len(f.decls) == 0
}

type fileData struct {
	Doc     string
	Package string
	Imports []importSpec
	Decls   []string
}

var fileTemplate = template.Must(template.New("file").Parse(`// Code generated by codec-generator. DO NOT EDIT.

{{if .Doc}}{{.Doc}}
{{end}}package {{.Package}}

{{if .Imports}}
import (
{{range .Imports}}	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{end}})
{{end}}
{{range .Decls}}
{{.}}
{{end}}`))

// Source renders the file without formatting.
func (f *File) Source() ([]byte, error) {
	data := fileData{Doc: f.Doc, Package: f.Package, Decls: f.decls}

	for _, imp := range f.imports {
		data.Imports = append(data.Imports, imp)
	}

	sort.Slice(data.Imports, func(i, j int) bool {
		return data.Imports[i].Path < data.Imports[j].Path
	})

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	return buf.Bytes(), nil
}

// Render renders and formats the file, dropping unused imports and adding
// missing standard library ones. On a formatting failure the unformatted
// source is returned along with the error.
func (f *File) Render() ([]byte, error) {
	src, err := f.Source()
	if err != nil {
		return nil, err
	}

	formatted, err := imports.Process(f.Name, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: false,
	})
	if err != nil {
		return src, fmt.Errorf("formatting %s: %w", f.Name, err)
	}

	return formatted, nil
}
