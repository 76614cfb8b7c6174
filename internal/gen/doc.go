// Package gen turns a Smithy model into the Go source files of one service
// package: types, protocol serializers and parsers, error aggregates and
// event stream framing.
//
// Generation is deterministic: the same model and configuration always yield
// byte-identical files. Every file is rendered through goimports; a file that
// fails to format is written next to the output as <name>.unformatted.go.
//
// Produced files:
//   - types.go: structures, enums, unions, error types and builders
//   - serializers.go / deserializers.go: operation entry points and their helpers
//   - errors.go: per-operation and service error aggregates
//   - eventstream.go: event stream marshallers, when the service streams
package gen
