// Package registry memoizes generated functions by (shape, purpose,
// direction). A function's name is reserved before its body is generated, so
// a body may refer to itself, directly or through other functions, and cyclic
// shape graphs generate in a single pass.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"codec-generator/internal/model"
	"codec-generator/internal/symbol"
)

//go:generate go tool stringer -type=Direction -linecomment -output=direction_string.go

// Direction tells serializers and parsers apart. Its String form prefixes
// generated function names.
type Direction int

const (
	Serialize   Direction = iota // serialize
	Deserialize                  // parse
)

// Key identifies one generated function.
type Key struct {
	Shape     model.ShapeID
	Purpose   string
	Direction Direction
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Shape, k.Purpose, k.Direction)
}

// Function is a generated function. Source is empty while its body is being
// generated.
type Function struct {
	Key    Key
	Name   string
	Source string
}

// BodyFunc generates the complete declaration of the function named name.
type BodyFunc func(name string) (string, error)

// Registry holds the functions of one generated file set. It is not safe for
// concurrent use; generation is single threaded.
type Registry struct {
	symbols *symbol.Provider

	byKey map[Key]*Function
	order []*Function
}

// New creates a Registry that claims function names from symbols, so that
// function names never collide with type names or with each other.
func New(symbols *symbol.Provider) *Registry {
	return &Registry{
		symbols: symbols,
		byKey:   make(map[Key]*Function),
	}
}

// Name returns the name of the function for key without reserving it. The
// name depends only on the key.
func Name(key Key) string {
	return key.Direction.String() + key.Purpose + symbol.Exported(key.Shape.Name())
}

func qualifiedName(key Key) string {
	ns := key.Shape.Namespace()
	if i := strings.LastIndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}

	return key.Direction.String() + key.Purpose + symbol.Exported(ns) + symbol.Exported(key.Shape.Name())
}

// GetOrCreate returns the name of the function for key. The first call
// reserves the name and then runs body with it; later calls, including
// recursive ones made while body runs, return the reserved name without
// running body again.
func (r *Registry) GetOrCreate(key Key, body BodyFunc) (string, error) {
	if fn, ok := r.byKey[key]; ok {
		return fn.Name, nil
	}

	name, err := r.reserve(key)
	if err != nil {
		return "", err
	}

	fn := &Function{Key: key, Name: name}
	r.byKey[key] = fn
	r.order = append(r.order, fn)

	src, err := body(name)
	if err != nil {
		r.drop(fn)
		return "", fmt.Errorf("generating %s: %w", name, err)
	}

	fn.Source = src

	return name, nil
}

// drop forgets a function whose body failed, so that no half-made entry is
// returned or rendered later.
func (r *Registry) drop(fn *Function) {
	delete(r.byKey, fn.Key)

	for i, f := range r.order {
		if f == fn {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *Registry) reserve(key Key) (string, error) {
	owner := key.String()

	name := Name(key)

	err := r.symbols.Reserve(name, owner)
	if err == nil {
		return name, nil
	}

	if !errors.Is(err, symbol.ErrNameCollision) {
		return "", err
	}

	qualified := qualifiedName(key)
	if qerr := r.symbols.Reserve(qualified, owner); qerr != nil {
		return "", fmt.Errorf("function for %s: %w", key, qerr)
	}

	return qualified, nil
}

// Lookup returns the function registered for key.
func (r *Registry) Lookup(key Key) (*Function, bool) {
	fn, ok := r.byKey[key]
	return fn, ok
}

// Functions returns the registered functions in reservation order.
func (r *Registry) Functions() []*Function {
	return append([]*Function(nil), r.order...)
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	return len(r.order)
}
