// Package hooks defines the fixed set of sections where decorators may add to
// the generated output, and the registry that calls them in registration
// order.
package hooks

import (
	"fmt"
	"sort"
	"strings"

	"codec-generator/internal/match"
	"codec-generator/internal/model"
)

// Section is one injection point. The set of sections is closed.
type Section interface {
	section()
	// Name identifies the section kind.
	Name() string
}

// StructSerializerPrologue runs at the top of every structure serializer
// body, after the nil check.
type StructSerializerPrologue struct {
	Protocol string
	Shape    *model.Shape
	// Value is the expression holding the structure pointer.
	Value string
}

// StructParserEpilogue runs after a structure parser populated its fields and
// before it returns.
type StructParserEpilogue struct {
	Protocol string
	Shape    *model.Shape
	// Target is the variable holding the populated value or builder.
	Target string
}

// ErrorTypeImpls adds declarations next to a generated error structure.
type ErrorTypeImpls struct {
	Shape    *model.Shape
	TypeName string
}

// OperationErrorImpls adds declarations next to an operation error set.
type OperationErrorImpls struct {
	Operation *model.Shape
	TypeName  string
}

// UnionVariantWireName decides the discriminator written for a union variant.
// Hooks return a replacement name, or "" to keep Current.
type UnionVariantWireName struct {
	Protocol string
	Union    *model.Shape
	Member   *model.Member
	Current  string
}

func (StructSerializerPrologue) section() {}
func (StructParserEpilogue) section()     {}
func (ErrorTypeImpls) section()           {}
func (OperationErrorImpls) section()      {}
func (UnionVariantWireName) section()     {}

func (StructSerializerPrologue) Name() string { return "StructSerializerPrologue" }
func (StructParserEpilogue) Name() string     { return "StructParserEpilogue" }
func (ErrorTypeImpls) Name() string           { return "ErrorTypeImpls" }
func (OperationErrorImpls) Name() string      { return "OperationErrorImpls" }
func (UnionVariantWireName) Name() string     { return "UnionVariantWireName" }

// Hook produces a code fragment for a section, or "" for nothing.
type Hook interface {
	Write(s Section) string
}

// HookFunc adapts a function to Hook.
type HookFunc func(s Section) string

// Write calls f.
func (f HookFunc) Write(s Section) string { return f(s) }

// Registry holds hooks in registration order. The zero value has no hooks.
type Registry struct {
	hooks []Hook
}

// Register appends a hook.
func (r *Registry) Register(h Hook) {
	r.hooks = append(r.hooks, h)
}

// Len returns the number of registered hooks.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}

	return len(r.hooks)
}

// Write calls every hook for the section and joins the non-empty fragments
// with newlines.
func (r *Registry) Write(s Section) string {
	if r == nil {
		return ""
	}

	var parts []string

	for _, h := range r.hooks {
		if out := h.Write(s); out != "" {
			parts = append(parts, out)
		}
	}

	return strings.Join(parts, "\n")
}

// WireName folds every hook over the variant's wire name: each hook sees the
// name produced by the hooks registered before it.
func (r *Registry) WireName(s UnionVariantWireName) string {
	if r == nil {
		return s.Current
	}

	for _, h := range r.hooks {
		if out := h.Write(s); out != "" {
			s.Current = out
		}
	}

	return s.Current
}

// builtins are the hooks selectable by name from configuration.
var builtins = map[string]func() Hook{
	"fault-predicates": FaultPredicates,
	"lower-union-tags": LowerUnionTags,
}

// Builtin returns a named built-in hook.
func Builtin(name string) (Hook, error) {
	ctor, ok := builtins[name]
	if !ok {
		names := make([]string, 0, len(builtins))
		for n := range builtins {
			names = append(names, n)
		}

		sort.Strings(names)

		return nil, fmt.Errorf("unknown hook %q%s (available: %s)", name, match.Hint(name, names), strings.Join(names, ", "))
	}

	return ctor(), nil
}

// FaultPredicates adds IsClientFault/IsServerFault methods to every error
// structure.
func FaultPredicates() Hook {
	return HookFunc(func(s Section) string {
		sec, ok := s.(ErrorTypeImpls)
		if !ok {
			return ""
		}

		fault, _ := sec.Shape.ErrorFault()

		return fmt.Sprintf(`// IsClientFault reports whether the error is the caller's fault.
func (e *%[1]s) IsClientFault() bool { return %[2]t }

// IsServerFault reports whether the error is the service's fault.
func (e *%[1]s) IsServerFault() bool { return %[3]t }
`, sec.TypeName, fault != "server", fault == "server")
	})
}

// LowerUnionTags writes CBOR union discriminators with a lower-case first
// letter.
func LowerUnionTags() Hook {
	return HookFunc(func(s Section) string {
		sec, ok := s.(UnionVariantWireName)
		if !ok || sec.Protocol != "cbor" || sec.Current == "" {
			return ""
		}

		return strings.ToLower(sec.Current[:1]) + sec.Current[1:]
	})
}
