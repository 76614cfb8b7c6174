// Package queryproto generates the AWS Query and EC2 Query codecs. Response
// and error bodies are XML: the XML generator does the work and only the
// operation-level wrapper elements differ. Request bodies are form encoded.
package queryproto

import (
	"codec-generator/internal/model"
	"codec-generator/internal/protocol"
	"codec-generator/internal/protocol/xmlproto"
)

// AWSFraming wraps response members in <OpResponse><OpResult>.
type AWSFraming struct{}

// InputPath implements xmlproto.Framing.
func (AWSFraming) InputPath(_, s *model.Shape) []string {
	return []string{xmlproto.RootElement(s)}
}

// OutputPath implements xmlproto.Framing.
func (AWSFraming) OutputPath(op, _ *model.Shape) []string {
	return []string{op.Name() + "Response", op.Name() + "Result"}
}

// ErrorPath implements xmlproto.Framing.
func (AWSFraming) ErrorPath(*model.Shape) []string {
	return []string{"ErrorResponse", "Error"}
}

// EC2Framing wraps response members in <OpResponse> only, and errors in
// Response/Errors/Error.
type EC2Framing struct{}

// InputPath implements xmlproto.Framing.
func (EC2Framing) InputPath(_, s *model.Shape) []string {
	return []string{xmlproto.RootElement(s)}
}

// OutputPath implements xmlproto.Framing.
func (EC2Framing) OutputPath(op, _ *model.Shape) []string {
	return []string{op.Name() + "Response"}
}

// ErrorPath implements xmlproto.Framing.
func (EC2Framing) ErrorPath(*model.Shape) []string {
	return []string{"Response", "Errors", "Error"}
}

// Generator is the Query protocol.Codec. Everything but request bodies is
// delegated to the embedded XML generator.
type Generator struct {
	*xmlproto.Generator

	ctx *protocol.Context
	ec2 bool
}

var _ protocol.Codec = (*Generator)(nil)

// New creates a Query generator; the context's protocol settings pick the
// AWS or EC2 flavor.
func New(ctx *protocol.Context) *Generator {
	var framing xmlproto.Framing = AWSFraming{}
	if ctx.Protocol.EC2 {
		framing = EC2Framing{}
	}

	return &Generator{
		Generator: xmlproto.New(ctx, framing),
		ctx:       ctx,
		ec2:       ctx.Protocol.EC2,
	}
}

// ParseInput implements protocol.Codec. Query request bodies are only ever
// written by clients.
func (g *Generator) ParseInput(_, _ *model.Shape, _ bool) (string, error) {
	return "", protocol.ErrNotSupported
}
