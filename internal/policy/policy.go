// Package policy centralizes the client/server divergence of generated
// parsers: unknown enum values, unknown union variants, and whether parsed
// structures are returned finished or as builders.
package policy

import "fmt"

//go:generate go tool stringer -type=Target -linecomment -output=target_string.go

// Target is the side the generated code runs on.
type Target int

const (
	// Client code is lenient with what the service sends.
	Client Target = iota // client
	// Server code is strict with what clients send.
	Server // server
)

// ParseTarget parses "client" or "server".
func ParseTarget(s string) (Target, error) {
	switch s {
	case "client", "":
		return Client, nil
	case "server":
		return Server, nil
	default:
		return Client, fmt.Errorf("unknown codegen target %q (want client or server)", s)
	}
}

// UnknownAction is what a parser does with an unrecognized value.
type UnknownAction int

const (
	// KeepUnknown stores the raw value in the unknown sentinel.
	KeepUnknown UnknownAction = iota
	// RejectUnknown fails parsing.
	RejectUnknown
)

// Policy is consulted at the few decision points where client and server
// parsers differ.
type Policy struct {
	target Target
}

// New returns the policy for a target.
func New(target Target) Policy {
	return Policy{target: target}
}

// Target returns the policy's target.
func (p Policy) Target() Target {
	return p.target
}

// UnknownEnum decides what to do with an enum value outside the model.
func (p Policy) UnknownEnum() UnknownAction {
	if p.target == Server {
		return RejectUnknown
	}

	return KeepUnknown
}

// UnknownUnionVariant decides what to do with an unrecognized union
// discriminator.
func (p Policy) UnknownUnionVariant() UnknownAction {
	if p.target == Server {
		return RejectUnknown
	}

	return KeepUnknown
}

// ParseIntoBuilder reports whether structures that reach constrained shapes
// are parsed into builders so validation runs once after parsing.
func (p Policy) ParseIntoBuilder() bool {
	return p.target == Server
}

// EnumsConstrained reports whether enums count as constrained shapes.
func (p Policy) EnumsConstrained() bool {
	return p.target == Server
}
