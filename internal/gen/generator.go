package gen

import (
	"errors"
	"fmt"
	"sort"

	"github.com/untillpro/goutils/logger"

	"codec-generator/internal/common"
	"codec-generator/internal/diagnostic"
	"codec-generator/internal/emit"
	"codec-generator/internal/errorsgen"
	"codec-generator/internal/hooks"
	"codec-generator/internal/match"
	"codec-generator/internal/model"
	"codec-generator/internal/policy"
	"codec-generator/internal/protocol"
	"codec-generator/internal/protocol/cborproto"
	"codec-generator/internal/protocol/eventstream"
	"codec-generator/internal/protocol/jsonproto"
	"codec-generator/internal/protocol/queryproto"
	"codec-generator/internal/protocol/xmlproto"
	"codec-generator/internal/registry"
	"codec-generator/internal/typesgen"
)

// Generated file names.
const (
	TypesFile         = "types.go"
	SerializersFile   = "serializers.go"
	DeserializersFile = "deserializers.go"
	ErrorsFile        = "errors.go"
	EventStreamFile   = "eventstream.go"
)

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// PackageName is the name of the generated package.
	PackageName string
	// OutputDir is the directory where generated files are written. It also
	// receives unformatted sidecars when rendering fails.
	OutputDir string
	// Service selects the service to generate. Empty picks the first service
	// of the model.
	Service model.ShapeID
	// Protocol is a protocol name known to protocol.Lookup.
	Protocol string
	// Target selects client or server semantics.
	Target policy.Target
	// SuppressDefaults omits scalar members equal to their modeled default.
	SuppressDefaults bool
	// Hooks contribute extra code to generated sections. May be nil.
	Hooks *hooks.Registry
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		PackageName: "generated",
		OutputDir:   "./generated",
		Protocol:    "awsJson1_1",
		Target:      policy.Client,
	}
}

// Generator generates the files of one service package.
type Generator struct {
	config      GeneratorConfig
	diagnostics diagnostic.Diagnostics
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	return &Generator{config: config}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the name of the file (e.g., "types.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Diagnostics returns the findings of the last Generate call.
func (g *Generator) Diagnostics() diagnostic.Diagnostics {
	return g.diagnostics
}

// run is the state of one Generate call.
type run struct {
	ctx   *protocol.Context
	codec protocol.Codec
	ops   []*model.Shape
	// shapes is the closure of the service: operations, their inputs,
	// outputs and errors, and the service errors.
	shapes []model.ShapeID
}

// Generate generates the files of the configured service of m, sorted by
// file name.
func (g *Generator) Generate(m *model.Model) ([]GeneratedFile, error) {
	g.diagnostics = diagnostic.Diagnostics{}

	r, err := g.prepare(m)
	if err != nil {
		return nil, err
	}

	g.inspect(r)

	if g.diagnostics.HasErrors() {
		return nil, g.diagnostics.Error()
	}

	types, err := typesgen.New(r.ctx).Generate(r.shapes)
	if err != nil {
		return nil, fmt.Errorf("generating types: %w", err)
	}

	entries, err := g.entryPoints(r)
	if err != nil {
		return nil, err
	}

	errs, err := g.errorAggregates(r)
	if err != nil {
		return nil, err
	}

	events, err := g.eventStreams(r)
	if err != nil {
		return nil, err
	}

	// Helpers land in the file of their direction. They are collected last
	// since every generator above registers some.
	serializers := entries[registry.Serialize]
	deserializers := entries[registry.Deserialize]

	for _, fn := range r.ctx.Functions.Functions() {
		if fn.Key.Direction == registry.Deserialize {
			deserializers = append(deserializers, fn.Source)
		} else {
			serializers = append(serializers, fn.Source)
		}
	}

	var files []GeneratedFile

	for _, f := range []struct {
		name  string
		decls []string
	}{
		{TypesFile, types},
		{SerializersFile, serializers},
		{DeserializersFile, deserializers},
		{ErrorsFile, errs},
		{EventStreamFile, events},
	} {
		if len(f.decls) == 0 {
			continue
		}

		file, err := g.render(r, f.name, f.decls)
		if err != nil {
			return nil, err
		}

		files = append(files, *file)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Filename < files[j].Filename })

	logger.Info("gen: generated", len(files), "files with", r.ctx.Functions.Len(), "functions for", r.ctx.Service.ID)

	return files, nil
}

// prepare resolves the service and builds the generation context.
func (g *Generator) prepare(m *model.Model) (*run, error) {
	settings, err := protocol.Lookup(g.config.Protocol)
	if err != nil {
		return nil, err
	}

	svc, err := ResolveService(m, g.config.Service)
	if err != nil {
		return nil, err
	}

	ops, err := m.Operations(svc.ID)
	if err != nil {
		return nil, err
	}

	if len(ops) == 0 {
		g.diagnostics.AddWarning(diagnostic.CodeNoOperations, "service has no operations", string(svc.ID), "")
	}

	shapes := Closure(m, svc, ops)

	ctx, err := protocol.NewContext(m, svc, shapes, protocol.Options{
		Protocol:         settings,
		Target:           g.config.Target,
		Hooks:            g.config.Hooks,
		SuppressDefaults: g.config.SuppressDefaults,
	})
	if err != nil {
		return nil, err
	}

	logger.Verbose("gen:", svc.ID, "has", len(ops), "operations and", len(shapes), "shapes")

	return &run{ctx: ctx, codec: Codec(ctx), ops: ops, shapes: shapes}, nil
}

// ResolveService returns the service id names, or the first service of m
// when id is empty.
func ResolveService(m *model.Model, id model.ShapeID) (*model.Shape, error) {
	if id != "" {
		svc, ok := m.Shape(id)
		if !ok {
			var ids []string
			for _, s := range m.Services() {
				ids = append(ids, string(s.ID))
			}

			return nil, fmt.Errorf("service %s not found in model%s", id, match.Hint(string(id), ids))
		}

		if svc.Kind != model.KindService {
			return nil, fmt.Errorf("shape %s is a %s, not a service", svc.ID, svc.Kind)
		}

		return svc, nil
	}

	services := m.Services()

	svc, ok := common.First(services)
	if !ok {
		return nil, errors.New("model has no service")
	}

	if len(services) > 1 {
		logger.Info("gen: model has", len(services), "services, generating", svc.ID)
	}

	return svc, nil
}

// Closure returns the shapes generated for a service, sorted: everything
// reachable from its operations and its service-wide errors.
func Closure(m *model.Model, svc *model.Shape, ops []*model.Shape) []model.ShapeID {
	seen := make(map[model.ShapeID]bool)

	roots := append([]model.ShapeID(nil), svc.Errors...)
	for _, op := range ops {
		roots = append(roots, op.ID)
	}

	for _, root := range roots {
		for _, id := range m.Walk(root) {
			seen[id] = true
		}
	}

	return common.SortedKeys(seen)
}

// Codec returns the document codec of the context's protocol.
func Codec(ctx *protocol.Context) protocol.Codec {
	switch ctx.Protocol.Body {
	case protocol.BodyCBOR:
		return cborproto.New(ctx)
	case protocol.BodyXML:
		return xmlproto.New(ctx, nil)
	case protocol.BodyQuery:
		return queryproto.New(ctx)
	default:
		return jsonproto.New(ctx)
	}
}

// inspect records classification notes and protocol limitations.
func (g *Generator) inspect(r *run) {
	lossyNulls := r.ctx.Protocol.Body == protocol.BodyXML || r.ctx.Protocol.Body == protocol.BodyQuery

	for _, id := range r.shapes {
		s, ok := r.ctx.Model.Shape(id)
		if !ok {
			continue
		}

		switch {
		case s.Kind == model.KindStructure && r.ctx.Builder(s):
			g.diagnostics.AddInfo(diagnostic.CodeBuilder, "parsed through a builder", string(id), "")
		case s.Kind == model.KindBigInteger || s.Kind == model.KindBigDecimal:
			g.diagnostics.AddError(diagnostic.CodeUnsupported, fmt.Sprintf("%s shapes have no codec", s.Kind), string(id), "")
		case lossyNulls && s.Sparse():
			g.diagnostics.AddWarning(diagnostic.CodeSparseNull,
				fmt.Sprintf("%s drops null entries of sparse containers", r.ctx.Protocol.Name), string(id), "")
		}
	}
}

func (g *Generator) entryPoints(r *run) (map[registry.Direction][]string, error) {
	out := make(map[registry.Direction][]string)

	for _, op := range r.ops {
		entries, err := protocol.EntryPoints(r.ctx, r.codec, op)
		if err != nil {
			return nil, err
		}

		for _, e := range entries {
			out[e.Direction] = append(out[e.Direction], e.Source)
		}
	}

	errs, err := errorsgen.New(r.ctx, r.codec).CollectService(r.ops)
	if err != nil {
		return nil, err
	}

	for _, s := range errs {
		e, err := protocol.ErrorSerializerEntry(r.ctx, r.codec, s)
		if err != nil {
			return nil, fmt.Errorf("error %s: %w", s.ID, err)
		}

		out[e.Direction] = append(out[e.Direction], e.Source)
	}

	return out, nil
}

func (g *Generator) errorAggregates(r *run) ([]string, error) {
	eg := errorsgen.New(r.ctx, r.codec)

	var decls []string

	for _, op := range r.ops {
		src, err := eg.Operation(op)
		if err != nil {
			return nil, err
		}

		decls = append(decls, src)
	}

	svc, err := eg.Service(r.ctx.Service, r.ops)
	if err != nil {
		return nil, err
	}

	meta, err := eg.Metadata()
	if err != nil {
		return nil, err
	}

	return append(decls, svc, meta), nil
}

func (g *Generator) eventStreams(r *run) ([]string, error) {
	eg := eventstream.New(r.ctx, r.codec)
	seen := make(map[model.ShapeID]bool)

	var decls []string

	for _, op := range r.ops {
		unions, err := eventstream.Streams(r.ctx.Model, op)
		if err != nil {
			return nil, err
		}

		for _, u := range unions {
			if seen[u.ID] {
				continue
			}

			seen[u.ID] = true

			entries, err := eg.Entries(u)
			if err != nil {
				return nil, err
			}

			for _, e := range entries {
				decls = append(decls, e.Source)
			}
		}
	}

	return decls, nil
}

// render formats one file. On a formatting failure the unformatted source is
// written next to the output to aid debugging.
func (g *Generator) render(r *run, name string, decls []string) (*GeneratedFile, error) {
	f := emit.NewFile(name, g.config.PackageName)
	protocol.AddImports(f)

	if name == TypesFile {
		f.Doc = fmt.Sprintf("// Package %s holds the %s codecs of %s.", g.config.PackageName, r.ctx.Protocol.Name, r.ctx.Service.Name())
	}

	for _, d := range decls {
		f.Add(d)
	}

	content, err := f.Render()
	if err != nil {
		if g.config.OutputDir != "" && content != nil {
			_ = writeDebugUnformatted(g.config.OutputDir, name, content)
		}

		return &GeneratedFile{Filename: name, Content: content}, fmt.Errorf("rendering %s: %w", name, err)
	}

	logger.Verbose("gen: rendered", name, "with", len(decls), "declarations")

	return &GeneratedFile{Filename: name, Content: content}, nil
}
